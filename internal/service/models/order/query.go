package order

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Ids          []int64  `json:"ids,omitempty"`
	TableNumbers []int    `json:"tableNumbers,omitempty"`
	Statuses     []Status `json:"statuses,omitempty"`
	ParentIds    []int64  `json:"parentIds,omitempty"`
	// RootOnly restricts the result to orders that were not merged into another one.
	RootOnly bool `json:"rootOnly,omitempty"`
	Limit    int  `json:"limit,omitempty"`
	Offset   int  `json:"offset,omitempty"`
}
