package grpctransport

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"google.golang.org/protobuf/types/known/structpb"
)

func idFromStruct(req *structpb.Struct) (int64, error) {
	v, ok := req.GetFields()["id"]
	if !ok {
		return 0, order.ValidationError{Field: "id", Message: "is required"}
	}

	n := v.GetNumberValue()
	if n <= 0 || n != math.Trunc(n) {
		return 0, order.ValidationError{Field: "id", Message: "must be a positive integer"}
	}

	return int64(n), nil
}

func listOrdersRequestFromStruct(req *structpb.Struct) (order.QueryOrdersModel, error) {
	query := order.QueryOrdersModel{}
	fields := req.GetFields()

	for _, v := range fields["status"].GetListValue().GetValues() {
		s, err := order.ParseStatus(v.GetStringValue())
		if err != nil {
			return order.QueryOrdersModel{}, order.ValidationError{Field: "status", Message: "unknown status"}
		}
		query.Statuses = append(query.Statuses, s)
	}

	for _, v := range fields["tableNumber"].GetListValue().GetValues() {
		n := v.GetNumberValue()
		if n <= 0 || n != math.Trunc(n) {
			return order.QueryOrdersModel{}, order.ValidationError{Field: "tableNumber", Message: "must be a positive integer"}
		}
		query.TableNumbers = append(query.TableNumbers, int(n))
	}

	return query, nil
}

// orderToStruct goes through JSON so the gRPC shape matches the HTTP one.
func orderToStruct(o *order.Order) (*structpb.Struct, error) {
	m, err := toMap(o)
	if err != nil {
		return nil, err
	}

	return structpb.NewStruct(m)
}

func ordersToStruct(orders []order.Order) (*structpb.Struct, error) {
	list := make([]any, len(orders))
	for i := range orders {
		m, err := toMap(&orders[i])
		if err != nil {
			return nil, err
		}
		list[i] = m
	}

	return structpb.NewStruct(map[string]any{"orders": list})
}

func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal: %w", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal: %w", err)
	}

	return m, nil
}
