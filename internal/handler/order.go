package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lounge-pos/backend/internal/order"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	svc order.Service
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type createOrderRequest struct {
	TableNumber int   `json:"table_number"`
	AdminID     int64 `json:"admin_id"`
}

// CreateOrder opens a new order for a table.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.TableNumber <= 0 {
		http.Error(w, "table_number must be positive", http.StatusBadRequest)
		return
	}

	o, err := h.svc.CreateOrder(r.Context(), req.TableNumber, req.AdminID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNoOpenShift):
			http.Error(w, "no open shift", http.StatusConflict)
		case errors.Is(err, order.ErrTableBusy):
			http.Error(w, "table already has an active order", http.StatusConflict)
		default:
			log.Error().Err(err).Msg("handler: failed to create order")
			http.Error(w, "failed to create order", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, o)
}

// GetActiveOrders lists all active orders.
func (h *OrderHandler) GetActiveOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.GetActiveOrders(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list active orders")
		http.Error(w, "failed to list active orders", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetActiveOrderForTable returns the active order of one table.
func (h *OrderHandler) GetActiveOrderForTable(w http.ResponseWriter, r *http.Request) {
	table, err := strconv.Atoi(chi.URLParam(r, "table"))
	if err != nil {
		http.Error(w, "invalid table number", http.StatusBadRequest)
		return
	}

	o, err := h.svc.GetActiveOrderForTable(r.Context(), table)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			http.Error(w, "no active order for this table", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int("table", table).Msg("handler: failed to get order for table")
		http.Error(w, "failed to get order", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

type addItemRequest struct {
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// AddLineItem adds an item to an order. Adding the same item again
// increments the existing line instead of creating a duplicate.
func (h *OrderHandler) AddLineItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ItemName == "" {
		http.Error(w, "item_name is required", http.StatusBadRequest)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.svc.AddLineItem(r.Context(), orderID, req.ItemName, req.Quantity); err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			http.Error(w, "order not found", http.StatusNotFound)
		case errors.Is(err, order.ErrItemNotInMenu):
			http.Error(w, "item is not in the menu", http.StatusUnprocessableEntity)
		default:
			log.Error().Err(err).Int64("order_id", orderID).Msg("handler: failed to add line item")
			http.Error(w, "failed to add item", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveLineItemUnit removes one unit of an item from an order.
func (h *OrderHandler) RemoveLineItemUnit(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}
	itemName := chi.URLParam(r, "name")
	if itemName == "" {
		http.Error(w, "item name is required", http.StatusBadRequest)
		return
	}

	result, err := h.svc.RemoveOneUnit(r.Context(), orderID, itemName)
	if err != nil {
		if errors.Is(err, order.ErrLineItemNotFound) {
			http.Error(w, "item not found in order", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int64("order_id", orderID).Msg("handler: failed to remove line item unit")
		http.Error(w, "failed to remove item", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"result": string(result)})
}

// GetLineItems lists the items of an order.
func (h *OrderHandler) GetLineItems(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	items, err := h.svc.GetLineItems(r.Context(), orderID)
	if err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("handler: failed to list order items")
		http.Error(w, "failed to list items", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// GetTotal returns the current total of an order.
func (h *OrderHandler) GetTotal(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	total, err := h.svc.ComputeTotal(r.Context(), orderID)
	if err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("handler: failed to compute order total")
		http.Error(w, "failed to compute total", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"total": total})
}

type closeOrderRequest struct {
	PaymentMethod order.PaymentMethod `json:"payment_method"`
}

// CloseOrder settles an order with a payment method.
func (h *OrderHandler) CloseOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req closeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !req.PaymentMethod.Valid() {
		http.Error(w, "invalid payment method", http.StatusBadRequest)
		return
	}

	if err := h.svc.CloseOrder(r.Context(), orderID, req.PaymentMethod); err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			http.Error(w, "order not found", http.StatusNotFound)
		case errors.Is(err, order.ErrOrderNotActive):
			http.Error(w, "order is already closed", http.StatusConflict)
		default:
			log.Error().Err(err).Int64("order_id", orderID).Msg("handler: failed to close order")
			http.Error(w, "failed to close order", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SettleAll closes every active order in one pass before the shift closes.
func (h *OrderHandler) SettleAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SettleAllOrders(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to settle orders")
		http.Error(w, "failed to settle orders", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
