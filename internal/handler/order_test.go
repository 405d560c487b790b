package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/lounge-pos/backend/internal/order"
)

type mockOrderService struct {
	CreateOrderFunc            func(ctx context.Context, tableNumber int, adminID int64) (*order.Order, error)
	AddLineItemFunc            func(ctx context.Context, orderID int64, itemName string, quantity int) error
	RemoveOneUnitFunc          func(ctx context.Context, orderID int64, itemName string) (order.RemovalResult, error)
	GetLineItemsFunc           func(ctx context.Context, orderID int64) ([]order.LineItem, error)
	ComputeTotalFunc           func(ctx context.Context, orderID int64) (int, error)
	CloseOrderFunc             func(ctx context.Context, orderID int64, method order.PaymentMethod) error
	GetActiveOrdersFunc        func(ctx context.Context) ([]order.Order, error)
	GetActiveOrderForTableFunc func(ctx context.Context, tableNumber int) (*order.Order, error)
	SettleAllOrdersFunc        func(ctx context.Context) (*order.SettleResult, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, tableNumber int, adminID int64) (*order.Order, error) {
	return m.CreateOrderFunc(ctx, tableNumber, adminID)
}

func (m *mockOrderService) AddLineItem(ctx context.Context, orderID int64, itemName string, quantity int) error {
	return m.AddLineItemFunc(ctx, orderID, itemName, quantity)
}

func (m *mockOrderService) RemoveOneUnit(ctx context.Context, orderID int64, itemName string) (order.RemovalResult, error) {
	return m.RemoveOneUnitFunc(ctx, orderID, itemName)
}

func (m *mockOrderService) GetLineItems(ctx context.Context, orderID int64) ([]order.LineItem, error) {
	return m.GetLineItemsFunc(ctx, orderID)
}

func (m *mockOrderService) ComputeTotal(ctx context.Context, orderID int64) (int, error) {
	return m.ComputeTotalFunc(ctx, orderID)
}

func (m *mockOrderService) CloseOrder(ctx context.Context, orderID int64, method order.PaymentMethod) error {
	return m.CloseOrderFunc(ctx, orderID, method)
}

func (m *mockOrderService) GetActiveOrders(ctx context.Context) ([]order.Order, error) {
	return m.GetActiveOrdersFunc(ctx)
}

func (m *mockOrderService) GetActiveOrderForTable(ctx context.Context, tableNumber int) (*order.Order, error) {
	return m.GetActiveOrderForTableFunc(ctx, tableNumber)
}

func (m *mockOrderService) SettleAllOrders(ctx context.Context) (*order.SettleResult, error) {
	return m.SettleAllOrdersFunc(ctx)
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		createOrder    func(ctx context.Context, tableNumber int, adminID int64) (*order.Order, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"table_number": 3, "admin_id": 100}`,
			createOrder: func(ctx context.Context, tableNumber int, adminID int64) (*order.Order, error) {
				return &order.Order{ID: 1, TableNumber: tableNumber, AdminID: adminID, ShiftID: 7, Status: order.StatusActive}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "no_open_shift",
			body: `{"table_number": 3, "admin_id": 100}`,
			createOrder: func(ctx context.Context, tableNumber int, adminID int64) (*order.Order, error) {
				return nil, order.ErrNoOpenShift
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "table_busy",
			body: `{"table_number": 3, "admin_id": 100}`,
			createOrder: func(ctx context.Context, tableNumber int, adminID int64) (*order.Order, error) {
				return nil, order.ErrTableBusy
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "invalid_json",
			body:           `{not json}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid_table",
			body:           `{"table_number": 0, "admin_id": 100}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &mockOrderService{CreateOrderFunc: tt.createOrder}
			handler := NewOrderHandler(mockSvc)
			r := chi.NewRouter()
			r.Post("/orders", handler.CreateOrder)

			req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_AddLineItem(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		body           string
		addLineItem    func(ctx context.Context, orderID int64, itemName string, quantity int) error
		expectedStatus int
	}{
		{
			name: "success",
			url:  "/orders/1/items",
			body: `{"item_name": "Чай", "quantity": 2}`,
			addLineItem: func(ctx context.Context, orderID int64, itemName string, quantity int) error {
				assert.Equal(t, int64(1), orderID)
				assert.Equal(t, "Чай", itemName)
				assert.Equal(t, 2, quantity)
				return nil
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "defaults_quantity_to_one",
			url:  "/orders/1/items",
			body: `{"item_name": "Чай"}`,
			addLineItem: func(ctx context.Context, orderID int64, itemName string, quantity int) error {
				assert.Equal(t, 1, quantity)
				return nil
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "item_not_in_menu",
			url:  "/orders/1/items",
			body: `{"item_name": "Пицца"}`,
			addLineItem: func(ctx context.Context, orderID int64, itemName string, quantity int) error {
				return order.ErrItemNotInMenu
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "order_not_found",
			url:  "/orders/99/items",
			body: `{"item_name": "Чай"}`,
			addLineItem: func(ctx context.Context, orderID int64, itemName string, quantity int) error {
				return order.ErrOrderNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing_item_name",
			url:            "/orders/1/items",
			body:           `{"quantity": 2}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid_order_id",
			url:            "/orders/abc/items",
			body:           `{"item_name": "Чай"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &mockOrderService{AddLineItemFunc: tt.addLineItem}
			handler := NewOrderHandler(mockSvc)
			r := chi.NewRouter()
			r.Post("/orders/{id}/items", handler.AddLineItem)

			req := httptest.NewRequest(http.MethodPost, tt.url, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_CloseOrder(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		closeOrder     func(ctx context.Context, orderID int64, method order.PaymentMethod) error
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"payment_method": "cash"}`,
			closeOrder: func(ctx context.Context, orderID int64, method order.PaymentMethod) error {
				assert.Equal(t, order.PaymentCash, method)
				return nil
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "invalid_payment_method",
			body:           `{"payment_method": "bitcoin"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "already_closed",
			body: `{"payment_method": "card"}`,
			closeOrder: func(ctx context.Context, orderID int64, method order.PaymentMethod) error {
				return order.ErrOrderNotActive
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &mockOrderService{CloseOrderFunc: tt.closeOrder}
			handler := NewOrderHandler(mockSvc)
			r := chi.NewRouter()
			r.Post("/orders/{id}/close", handler.CloseOrder)

			req := httptest.NewRequest(http.MethodPost, "/orders/1/close", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_SettleAll(t *testing.T) {
	mockSvc := &mockOrderService{
		SettleAllOrdersFunc: func(ctx context.Context) (*order.SettleResult, error) {
			return &order.SettleResult{SettledCount: 2, SkippedCount: 1, TotalRevenue: 1800}, nil
		},
	}
	handler := NewOrderHandler(mockSvc)
	r := chi.NewRouter()
	r.Post("/orders/settle", handler.SettleAll)

	req := httptest.NewRequest(http.MethodPost, "/orders/settle", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"settled_count":2,"skipped_count":1,"total_revenue":1800}`, w.Body.String())
}
