package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lounge-pos/backend/internal/menu"
)

type mockRepository struct {
	Repository

	CreateFunc           func(ctx context.Context, o *Order) error
	GetByIDFunc          func(ctx context.Context, id int64) (*Order, error)
	ListActiveFunc       func(ctx context.Context) ([]Order, error)
	GetActiveByTableFunc func(ctx context.Context, tableNumber int) (*Order, error)
	CloseFunc            func(ctx context.Context, id int64, method *PaymentMethod, closedAt time.Time) error
	GetItemFunc          func(ctx context.Context, orderID int64, itemName string) (*LineItem, error)
	InsertItemFunc       func(ctx context.Context, item *LineItem) error
	AddItemQuantityFunc  func(ctx context.Context, itemID int64, delta int) error
	SetItemQuantityFunc  func(ctx context.Context, itemID int64, quantity int) error
	DeleteItemFunc       func(ctx context.Context, itemID int64) error
	ListItemsFunc        func(ctx context.Context, orderID int64) ([]LineItem, error)
}

func (m *mockRepository) Create(ctx context.Context, o *Order) error {
	return m.CreateFunc(ctx, o)
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*Order, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockRepository) ListActive(ctx context.Context) ([]Order, error) {
	return m.ListActiveFunc(ctx)
}

func (m *mockRepository) GetActiveByTable(ctx context.Context, tableNumber int) (*Order, error) {
	return m.GetActiveByTableFunc(ctx, tableNumber)
}

func (m *mockRepository) Close(ctx context.Context, id int64, method *PaymentMethod, closedAt time.Time) error {
	return m.CloseFunc(ctx, id, method, closedAt)
}

func (m *mockRepository) GetItem(ctx context.Context, orderID int64, itemName string) (*LineItem, error) {
	return m.GetItemFunc(ctx, orderID, itemName)
}

func (m *mockRepository) InsertItem(ctx context.Context, item *LineItem) error {
	return m.InsertItemFunc(ctx, item)
}

func (m *mockRepository) AddItemQuantity(ctx context.Context, itemID int64, delta int) error {
	return m.AddItemQuantityFunc(ctx, itemID, delta)
}

func (m *mockRepository) SetItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	return m.SetItemQuantityFunc(ctx, itemID, quantity)
}

func (m *mockRepository) DeleteItem(ctx context.Context, itemID int64) error {
	return m.DeleteItemFunc(ctx, itemID)
}

func (m *mockRepository) ListItems(ctx context.Context, orderID int64) ([]LineItem, error) {
	return m.ListItemsFunc(ctx, orderID)
}

type mockCatalog struct {
	GetActiveByNameFunc func(ctx context.Context, name string) (*menu.Item, error)
}

func (m *mockCatalog) GetActiveByName(ctx context.Context, name string) (*menu.Item, error) {
	return m.GetActiveByNameFunc(ctx, name)
}

type mockShiftSource struct {
	ActiveShiftIDFunc func(ctx context.Context) (int64, error)
}

func (m *mockShiftSource) ActiveShiftID(ctx context.Context) (int64, error) {
	return m.ActiveShiftIDFunc(ctx)
}

func TestService_CreateOrder(t *testing.T) {
	tests := []struct {
		name          string
		activeShiftID func(ctx context.Context) (int64, error)
		activeByTable func(ctx context.Context, tableNumber int) (*Order, error)
		create        func(ctx context.Context, o *Order) error
		expectedErr   error
	}{
		{
			name: "success",
			activeShiftID: func(ctx context.Context) (int64, error) {
				return 7, nil
			},
			activeByTable: func(ctx context.Context, tableNumber int) (*Order, error) {
				return nil, ErrOrderNotFound
			},
			create: func(ctx context.Context, o *Order) error {
				o.ID = 42
				return nil
			},
		},
		{
			name: "no_open_shift",
			activeShiftID: func(ctx context.Context) (int64, error) {
				return 0, ErrNoOpenShift
			},
			expectedErr: ErrNoOpenShift,
		},
		{
			name: "table_busy",
			activeShiftID: func(ctx context.Context) (int64, error) {
				return 7, nil
			},
			activeByTable: func(ctx context.Context, tableNumber int) (*Order, error) {
				return &Order{ID: 5, TableNumber: tableNumber, Status: StatusActive}, nil
			},
			expectedErr: ErrTableBusy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{
				GetActiveByTableFunc: tt.activeByTable,
				CreateFunc:           tt.create,
			}
			shifts := &mockShiftSource{ActiveShiftIDFunc: tt.activeShiftID}
			svc := NewService(repo, &mockCatalog{}, shifts, time.UTC)

			o, err := svc.CreateOrder(context.Background(), 3, 100)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, o)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(42), o.ID)
			assert.Equal(t, int64(7), o.ShiftID)
			assert.Equal(t, StatusActive, o.Status)
		})
	}
}

func TestService_AddLineItem(t *testing.T) {
	menuItem := &menu.Item{ID: 1, Name: "Чай", Price: 400, Category: "Чай", IsActive: true}

	t.Run("inserts_new_line", func(t *testing.T) {
		var inserted *LineItem
		repo := &mockRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*Order, error) {
				return &Order{ID: id, Status: StatusActive}, nil
			},
			GetItemFunc: func(ctx context.Context, orderID int64, itemName string) (*LineItem, error) {
				return nil, ErrLineItemNotFound
			},
			InsertItemFunc: func(ctx context.Context, item *LineItem) error {
				inserted = item
				return nil
			},
		}
		catalog := &mockCatalog{
			GetActiveByNameFunc: func(ctx context.Context, name string) (*menu.Item, error) {
				return menuItem, nil
			},
		}
		svc := NewService(repo, catalog, &mockShiftSource{}, time.UTC)

		err := svc.AddLineItem(context.Background(), 1, "Чай", 2)

		require.NoError(t, err)
		require.NotNil(t, inserted)
		assert.Equal(t, "Чай", inserted.ItemName)
		assert.Equal(t, 400, inserted.Price)
		assert.Equal(t, 2, inserted.Quantity)
	})

	t.Run("merges_into_existing_line", func(t *testing.T) {
		var incrementedID int64
		var incrementedBy int
		repo := &mockRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*Order, error) {
				return &Order{ID: id, Status: StatusActive}, nil
			},
			GetItemFunc: func(ctx context.Context, orderID int64, itemName string) (*LineItem, error) {
				return &LineItem{ID: 9, OrderID: orderID, ItemName: itemName, Price: 400, Quantity: 1}, nil
			},
			AddItemQuantityFunc: func(ctx context.Context, itemID int64, delta int) error {
				incrementedID = itemID
				incrementedBy = delta
				return nil
			},
			InsertItemFunc: func(ctx context.Context, item *LineItem) error {
				t.Fatal("expected increment, not insert")
				return nil
			},
		}
		catalog := &mockCatalog{
			GetActiveByNameFunc: func(ctx context.Context, name string) (*menu.Item, error) {
				return menuItem, nil
			},
		}
		svc := NewService(repo, catalog, &mockShiftSource{}, time.UTC)

		err := svc.AddLineItem(context.Background(), 1, "Чай", 3)

		require.NoError(t, err)
		assert.Equal(t, int64(9), incrementedID)
		assert.Equal(t, 3, incrementedBy)
	})

	t.Run("item_not_in_menu", func(t *testing.T) {
		repo := &mockRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*Order, error) {
				return &Order{ID: id, Status: StatusActive}, nil
			},
		}
		catalog := &mockCatalog{
			GetActiveByNameFunc: func(ctx context.Context, name string) (*menu.Item, error) {
				return nil, menu.ErrItemNotFound
			},
		}
		svc := NewService(repo, catalog, &mockShiftSource{}, time.UTC)

		err := svc.AddLineItem(context.Background(), 1, "Пицца", 1)

		assert.ErrorIs(t, err, ErrItemNotInMenu)
	})

	t.Run("rejects_non_positive_quantity", func(t *testing.T) {
		svc := NewService(&mockRepository{}, &mockCatalog{}, &mockShiftSource{}, time.UTC)

		err := svc.AddLineItem(context.Background(), 1, "Чай", 0)

		assert.Error(t, err)
	})
}

func TestService_RemoveOneUnit(t *testing.T) {
	tests := []struct {
		name           string
		getItem        func(ctx context.Context, orderID int64, itemName string) (*LineItem, error)
		expectedResult RemovalResult
		expectedErr    error
	}{
		{
			name: "decrements_when_more_than_one",
			getItem: func(ctx context.Context, orderID int64, itemName string) (*LineItem, error) {
				return &LineItem{ID: 4, Quantity: 3}, nil
			},
			expectedResult: RemovalDecremented,
		},
		{
			name: "deletes_last_unit",
			getItem: func(ctx context.Context, orderID int64, itemName string) (*LineItem, error) {
				return &LineItem{ID: 4, Quantity: 1}, nil
			},
			expectedResult: RemovalDeleted,
		},
		{
			name: "item_not_found",
			getItem: func(ctx context.Context, orderID int64, itemName string) (*LineItem, error) {
				return nil, ErrLineItemNotFound
			},
			expectedErr: ErrLineItemNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{
				GetItemFunc: tt.getItem,
				SetItemQuantityFunc: func(ctx context.Context, itemID int64, quantity int) error {
					assert.Equal(t, 2, quantity)
					return nil
				},
				DeleteItemFunc: func(ctx context.Context, itemID int64) error {
					assert.Equal(t, int64(4), itemID)
					return nil
				},
			}
			svc := NewService(repo, &mockCatalog{}, &mockShiftSource{}, time.UTC)

			result, err := svc.RemoveOneUnit(context.Background(), 1, "Чай")

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedResult, result)
		})
	}
}

func TestService_ComputeTotal(t *testing.T) {
	tests := []struct {
		name     string
		items    []LineItem
		expected int
	}{
		{
			name: "sums_price_times_quantity",
			items: []LineItem{
				{ItemName: "Стандарт", Price: 1000, Quantity: 2},
				{ItemName: "Вода", Price: 100, Quantity: 1},
			},
			expected: 2100,
		},
		{
			name:     "empty_order_is_zero",
			items:    []LineItem{},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{
				ListItemsFunc: func(ctx context.Context, orderID int64) ([]LineItem, error) {
					return tt.items, nil
				},
			}
			svc := NewService(repo, &mockCatalog{}, &mockShiftSource{}, time.UTC)

			total, err := svc.ComputeTotal(context.Background(), 1)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, total)
		})
	}
}

func TestService_CloseOrder(t *testing.T) {
	t.Run("closes_active_order", func(t *testing.T) {
		var closedMethod *PaymentMethod
		repo := &mockRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*Order, error) {
				return &Order{ID: id, Status: StatusActive}, nil
			},
			CloseFunc: func(ctx context.Context, id int64, method *PaymentMethod, closedAt time.Time) error {
				closedMethod = method
				return nil
			},
		}
		svc := NewService(repo, &mockCatalog{}, &mockShiftSource{}, time.UTC)

		err := svc.CloseOrder(context.Background(), 1, PaymentCash)

		require.NoError(t, err)
		require.NotNil(t, closedMethod)
		assert.Equal(t, PaymentCash, *closedMethod)
	})

	t.Run("refuses_closed_order", func(t *testing.T) {
		repo := &mockRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*Order, error) {
				return &Order{ID: id, Status: StatusClosed}, nil
			},
		}
		svc := NewService(repo, &mockCatalog{}, &mockShiftSource{}, time.UTC)

		err := svc.CloseOrder(context.Background(), 1, PaymentCard)

		assert.ErrorIs(t, err, ErrOrderNotActive)
	})

	t.Run("order_not_found", func(t *testing.T) {
		repo := &mockRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*Order, error) {
				return nil, ErrOrderNotFound
			},
		}
		svc := NewService(repo, &mockCatalog{}, &mockShiftSource{}, time.UTC)

		err := svc.CloseOrder(context.Background(), 99, PaymentCard)

		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestService_SettleAllOrders(t *testing.T) {
	itemsByOrder := map[int64][]LineItem{
		1: {{ItemName: "Стандарт", Price: 1000, Quantity: 1}},
		2: {},
		3: {{ItemName: "Чай", Price: 400, Quantity: 2}},
	}

	var closed []int64
	repo := &mockRepository{
		ListActiveFunc: func(ctx context.Context) ([]Order, error) {
			return []Order{{ID: 1}, {ID: 2}, {ID: 3}}, nil
		},
		ListItemsFunc: func(ctx context.Context, orderID int64) ([]LineItem, error) {
			return itemsByOrder[orderID], nil
		},
		CloseFunc: func(ctx context.Context, id int64, method *PaymentMethod, closedAt time.Time) error {
			// Массовый расчёт не назначает способ оплаты
			assert.Nil(t, method)
			closed = append(closed, id)
			return nil
		},
	}
	svc := NewService(repo, &mockCatalog{}, &mockShiftSource{}, time.UTC)

	result, err := svc.SettleAllOrders(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.SettledCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, 1800, result.TotalRevenue)
	assert.Equal(t, []int64{1, 3}, closed)
}
