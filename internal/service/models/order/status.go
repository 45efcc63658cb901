package order

import (
	"database/sql/driver"
	"strings"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusPreparing Status = "preparing"
	StatusCompleted Status = "completed"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
	StatusMerged    Status = "merged"
)

// statusConfirmed is what the cashier screen sends for an accepted order.
const statusConfirmed = "confirmed"

var transitions = map[Status][]Status{
	StatusPending:   {StatusAccepted, StatusPreparing, StatusCancelled},
	StatusAccepted:  {StatusPreparing, StatusCompleted, StatusCancelled},
	StatusPreparing: {StatusCompleted, StatusCancelled},
	StatusCompleted: {StatusPaid},
}

// mergeRules lists the allowed (parent, child) status pairs.
var mergeRules = [][2]Status{
	{StatusPending, StatusPending},
	{StatusAccepted, StatusPending},
	{StatusAccepted, StatusAccepted},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// ParseStatus converts user input into a Status.
func ParseStatus(s string) (Status, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == statusConfirmed {
		return StatusAccepted, nil
	}

	switch st := Status(s); st {
	case StatusPending, StatusAccepted, StatusPreparing, StatusCompleted,
		StatusPaid, StatusCancelled, StatusMerged:
		return st, nil
	default:
		return "", ErrUnknownStatus
	}
}

// IsTerminal reports whether no further transitions leave s.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether an order in status s may be moved to next.
// Re-applying the current status of a non-terminal order is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Predecessors returns every status from which next can be reached.
func Predecessors(next Status) []Status {
	var result []Status
	for _, from := range []Status{StatusPending, StatusAccepted, StatusPreparing, StatusCompleted} {
		if from.CanTransitionTo(next) {
			result = append(result, from)
		}
	}

	return result
}

// CanMerge reports whether a child order in status child may be merged into a parent in status parent.
func CanMerge(parent, child Status) bool {
	for _, rule := range mergeRules {
		if rule[0] == parent && rule[1] == child {
			return true
		}
	}

	return false
}

// MergeableChildStatuses returns the child statuses accepted by a parent in status parent.
func MergeableChildStatuses(parent Status) []Status {
	var result []Status
	for _, rule := range mergeRules {
		if rule[0] == parent {
			result = append(result, rule[1])
		}
	}

	return result
}

// MergeableStatuses returns the statuses of orders offered as merge candidates.
func MergeableStatuses() []Status {
	return []Status{StatusPending, StatusAccepted}
}

// Strings converts statuses to their database representation.
func Strings(statuses []Status) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = s.String()
	}

	return result
}
