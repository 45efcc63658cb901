package mergeorders

import (
	"context"
	"net/http"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/respond"
)

type service interface {
	MergeOrders(ctx context.Context, parentID, childID int64) (*order.Order, error)
}

// MergeOrders folds the child order from the URL into the parent order.
func MergeOrders(w http.ResponseWriter, r *http.Request, service service) {
	parentID, err := respond.IDParam(r, "parentId")
	if err != nil {
		respond.Error(w, r, err, "merging orders")

		return
	}
	childID, err := respond.IDParam(r, "childId")
	if err != nil {
		respond.Error(w, r, err, "merging orders")

		return
	}

	merged, err := service.MergeOrders(r.Context(), parentID, childID)
	if err != nil {
		respond.Error(w, r, err, "merging orders")

		return
	}

	respond.JSON(w, r, http.StatusOK, merged)
}
