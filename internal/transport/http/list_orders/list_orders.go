package listorders

import (
	"context"
	"net/http"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/respond"
	"github.com/gorilla/schema"
)

type service interface {
	GetAllOrders(ctx context.Context, query order.QueryOrdersModel) ([]order.Order, error)
}

type queryOrdersRequest struct {
	Statuses     []string `schema:"status"`
	TableNumbers []int    `schema:"tableNumber"`
	Limit        int      `schema:"limit"`
	Offset       int      `schema:"offset"`
}

func (q *queryOrdersRequest) ToModel() (order.QueryOrdersModel, error) {
	statuses := make([]order.Status, 0, len(q.Statuses))
	for _, s := range q.Statuses {
		status, err := order.ParseStatus(s)
		if err != nil {
			return order.QueryOrdersModel{}, order.ValidationError{Field: "status", Message: "unknown status"}
		}
		statuses = append(statuses, status)
	}

	return order.QueryOrdersModel{
		Statuses:     statuses,
		TableNumbers: q.TableNumbers,
		Limit:        q.Limit,
		Offset:       q.Offset,
	}, nil
}

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}()

// ListOrders returns open and historical orders that were not merged into another one.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		respond.BadRequest(w, r, err.Error())

		return
	}

	model, err := query.ToModel()
	if err != nil {
		respond.Error(w, r, err, "listing orders")

		return
	}

	orders, err := service.GetAllOrders(r.Context(), model)
	if err != nil {
		respond.Error(w, r, err, "listing orders")

		return
	}

	respond.JSON(w, r, http.StatusOK, orders)
}
