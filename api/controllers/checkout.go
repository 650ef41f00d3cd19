package controllers

import (
	"net/http"

	"github.com/adiprasetyo/lokalmart-backend/api/responses"
	"github.com/adiprasetyo/lokalmart-backend/internal/checkout"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
)

type checkoutResponse struct {
	Orders []orderView `json:"orders"`
}

// Checkout converts the caller's cart into pending orders, one order per
// cart line, inside a single transaction.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orders, err := svc.Checkout(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{Orders: fromOrders(orders)})
	}
}
