package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hakimskills/marketplace-backend/internal/order"
)

// OrderService is the surface of order.Service the handlers use.
type OrderService interface {
	SubmitCart(ctx context.Context, req order.SubmitCartRequest) ([]order.Order, error)
	Approve(ctx context.Context, orderID, actorID string) (*order.Order, error)
	Ship(ctx context.Context, orderID, actorID string) (*order.Order, error)
	Deliver(ctx context.Context, orderID, actorID string) (*order.Order, error)
	Cancel(ctx context.Context, orderID, actorID string) (*order.Order, error)
	AdminUpdate(ctx context.Context, orderID string, status *order.Status, payment *order.PaymentStatus) (*order.Order, error)
	GetOrder(ctx context.Context, orderID string) (*order.Order, error)
	GetOrdersForSeller(ctx context.Context, sellerID string) ([]order.Order, error)
	GetOrdersForBuyer(ctx context.Context, buyerID string) ([]order.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
}

type OrderHandler struct {
	svc OrderService
}

func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) SubmitCart(w http.ResponseWriter, r *http.Request) {
	var req order.SubmitCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orders, err := h.svc.SubmitCart(ctx, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Orders created successfully",
		"orders":  orders,
	})
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.svc.GetOrder(ctx, orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) ListBySeller(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, func(ctx context.Context) ([]order.Order, error) {
		return h.svc.GetOrdersForSeller(ctx, chi.URLParam(r, "sellerId"))
	})
}

func (h *OrderHandler) ListByBuyer(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, func(ctx context.Context) ([]order.Order, error) {
		return h.svc.GetOrdersForBuyer(ctx, chi.URLParam(r, "buyerId"))
	})
}

func (h *OrderHandler) writeList(w http.ResponseWriter, r *http.Request, load func(ctx context.Context) ([]order.Order, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := load(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *OrderHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Approve)
}

func (h *OrderHandler) Ship(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Ship)
}

func (h *OrderHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Deliver)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Cancel)
}

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, orderID, actorID string) (*order.Order, error)) {
	actorID := ActorID(r.Context())
	if actorID == "" {
		writeError(w, http.StatusBadRequest, "missing required header: "+HeaderUserID)
		return
	}
	orderID := chi.URLParam(r, "orderId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := apply(ctx, orderID, actorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type adminUpdateRequest struct {
	OrderStatus   *order.Status        `json:"orderStatus,omitempty"`
	PaymentStatus *order.PaymentStatus `json:"paymentStatus,omitempty"`
}

func (h *OrderHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	var req adminUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.svc.AdminUpdate(ctx, chi.URLParam(r, "orderId"), req.OrderStatus, req.PaymentStatus)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Order updated successfully",
		"order":   o,
	})
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.DeleteOrder(ctx, chi.URLParam(r, "orderId")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Order deleted successfully"})
}

// writeServiceError maps domain errors to responses carrying only the
// structured fields each error exposes.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		notFound     *order.ProductNotFoundError
		missingInfo  *order.MissingSellerInfoError
		stock        *order.InsufficientStockError
		invalidState *order.InvalidStateError
		unauthorized *order.UnauthorizedError
		validation   *order.ValidationError
	)

	switch {
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":     notFound.Error(),
			"productId": notFound.ProductID,
		})
	case errors.As(err, &missingInfo):
		writeError(w, http.StatusConflict, missingInfo.Error())
	case errors.As(err, &stock):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":     stock.Error(),
			"productId": stock.ProductID,
			"requested": stock.Requested,
			"available": stock.Available,
		})
	case errors.As(err, &invalidState):
		writeError(w, http.StatusConflict, invalidState.Error())
	case errors.As(err, &unauthorized):
		writeError(w, http.StatusForbidden, unauthorized.Error())
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
