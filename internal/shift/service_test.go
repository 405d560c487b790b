package shift

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lounge-pos/backend/internal/order"
)

type mockRepository struct {
	Repository

	ReserveNumberFunc    func(ctx context.Context, monthYear string, adminID int64, openedAt time.Time) (*Shift, error)
	InsertWithNumberFunc func(ctx context.Context, s *Shift) error
	NumbersFunc          func(ctx context.Context, monthYear string) ([]int, error)
	ActiveFunc           func(ctx context.Context) (*Shift, error)
	ByNumberAndMonthFunc func(ctx context.Context, number int, monthYear string) (*Shift, error)
	CloseFunc            func(ctx context.Context, id int64, closedAt time.Time, totalRevenue, totalOrders int) error
	ReplaceSalesFunc     func(ctx context.Context, shiftID int64, sales []ItemSales) error
}

func (m *mockRepository) ReserveNumber(ctx context.Context, monthYear string, adminID int64, openedAt time.Time) (*Shift, error) {
	return m.ReserveNumberFunc(ctx, monthYear, adminID, openedAt)
}

func (m *mockRepository) InsertWithNumber(ctx context.Context, s *Shift) error {
	return m.InsertWithNumberFunc(ctx, s)
}

func (m *mockRepository) Numbers(ctx context.Context, monthYear string) ([]int, error) {
	return m.NumbersFunc(ctx, monthYear)
}

func (m *mockRepository) Active(ctx context.Context) (*Shift, error) {
	return m.ActiveFunc(ctx)
}

func (m *mockRepository) ByNumberAndMonth(ctx context.Context, number int, monthYear string) (*Shift, error) {
	return m.ByNumberAndMonthFunc(ctx, number, monthYear)
}

func (m *mockRepository) Close(ctx context.Context, id int64, closedAt time.Time, totalRevenue, totalOrders int) error {
	return m.CloseFunc(ctx, id, closedAt, totalRevenue, totalOrders)
}

func (m *mockRepository) ReplaceSales(ctx context.Context, shiftID int64, sales []ItemSales) error {
	return m.ReplaceSalesFunc(ctx, shiftID, sales)
}

type mockOrderSource struct {
	CountActiveFunc func(ctx context.Context) (int, error)
	ListByShiftFunc func(ctx context.Context, shiftID int64) ([]order.Order, error)
	ListItemsFunc   func(ctx context.Context, orderID int64) ([]order.LineItem, error)
}

func (m *mockOrderSource) CountActive(ctx context.Context) (int, error) {
	return m.CountActiveFunc(ctx)
}

func (m *mockOrderSource) ListByShift(ctx context.Context, shiftID int64) ([]order.Order, error) {
	return m.ListByShiftFunc(ctx, shiftID)
}

func (m *mockOrderSource) ListItems(ctx context.Context, orderID int64) ([]order.LineItem, error) {
	return m.ListItemsFunc(ctx, orderID)
}

type mockUsers struct {
	DisplayNameFunc func(ctx context.Context, id int64) (string, error)
}

func (m *mockUsers) DisplayName(ctx context.Context, id int64) (string, error) {
	return m.DisplayNameFunc(ctx, id)
}

func noActiveOrders() *mockOrderSource {
	return &mockOrderSource{
		CountActiveFunc: func(ctx context.Context) (int, error) {
			return 0, nil
		},
	}
}

func TestService_Open(t *testing.T) {
	t.Run("opens_with_reserved_number", func(t *testing.T) {
		repo := &mockRepository{
			ReserveNumberFunc: func(ctx context.Context, monthYear string, adminID int64, openedAt time.Time) (*Shift, error) {
				return &Shift{ID: 1, Number: 3, MonthYear: monthYear, AdminID: adminID, OpenedAt: openedAt, Status: StatusOpen}, nil
			},
		}
		svc := NewService(repo, noActiveOrders(), &mockUsers{}, time.UTC)

		sh, err := svc.Open(context.Background(), 100)

		require.NoError(t, err)
		assert.Equal(t, 3, sh.Number)
		assert.Equal(t, MonthKey(time.Now().UTC()), sh.MonthYear)
		assert.Equal(t, StatusOpen, sh.Status)
	})

	t.Run("refuses_with_active_orders", func(t *testing.T) {
		orders := &mockOrderSource{
			CountActiveFunc: func(ctx context.Context) (int, error) {
				return 2, nil
			},
		}
		svc := NewService(&mockRepository{}, orders, &mockUsers{}, time.UTC)

		sh, err := svc.Open(context.Background(), 100)

		assert.ErrorIs(t, err, ErrActiveOrdersRemain)
		assert.Nil(t, sh)
	})

	t.Run("falls_back_to_number_scan_after_retries", func(t *testing.T) {
		reserveCalls := 0
		repo := &mockRepository{
			ReserveNumberFunc: func(ctx context.Context, monthYear string, adminID int64, openedAt time.Time) (*Shift, error) {
				reserveCalls++
				return nil, ErrDuplicateShiftNumber
			},
			NumbersFunc: func(ctx context.Context, monthYear string) ([]int, error) {
				return []int{1, 2, 4}, nil
			},
			InsertWithNumberFunc: func(ctx context.Context, s *Shift) error {
				s.ID = 10
				return nil
			},
		}
		svc := NewService(repo, noActiveOrders(), &mockUsers{}, time.UTC)

		sh, err := svc.Open(context.Background(), 100)

		require.NoError(t, err)
		assert.Equal(t, 3, reserveCalls)
		// Первый свободный номер при занятых 1, 2 и 4
		assert.Equal(t, 3, sh.Number)
	})

	t.Run("numbers_exhausted", func(t *testing.T) {
		taken := make([]int, 0, 999)
		for n := 1; n <= 999; n++ {
			taken = append(taken, n)
		}
		repo := &mockRepository{
			ReserveNumberFunc: func(ctx context.Context, monthYear string, adminID int64, openedAt time.Time) (*Shift, error) {
				return nil, ErrDuplicateShiftNumber
			},
			NumbersFunc: func(ctx context.Context, monthYear string) ([]int, error) {
				return taken, nil
			},
		}
		svc := NewService(repo, noActiveOrders(), &mockUsers{}, time.UTC)

		_, err := svc.Open(context.Background(), 100)

		assert.ErrorIs(t, err, ErrNumbersExhausted)
	})
}

func TestService_Close(t *testing.T) {
	t.Run("aggregates_orders_into_summary", func(t *testing.T) {
		opened := time.Date(2026, 8, 1, 18, 0, 0, 0, time.UTC)
		repo := &mockRepository{
			ByNumberAndMonthFunc: func(ctx context.Context, number int, monthYear string) (*Shift, error) {
				return &Shift{ID: 5, Number: number, MonthYear: monthYear, AdminID: 100, OpenedAt: opened, Status: StatusOpen}, nil
			},
			CloseFunc: func(ctx context.Context, id int64, closedAt time.Time, totalRevenue, totalOrders int) error {
				assert.Equal(t, int64(5), id)
				assert.Equal(t, 2100, totalRevenue)
				assert.Equal(t, 1, totalOrders)
				return nil
			},
			ReplaceSalesFunc: func(ctx context.Context, shiftID int64, sales []ItemSales) error {
				assert.Equal(t, int64(5), shiftID)
				return nil
			},
		}
		orders := &mockOrderSource{
			CountActiveFunc: func(ctx context.Context) (int, error) {
				return 0, nil
			},
			ListByShiftFunc: func(ctx context.Context, shiftID int64) ([]order.Order, error) {
				return []order.Order{{ID: 1, ShiftID: shiftID}}, nil
			},
			ListItemsFunc: func(ctx context.Context, orderID int64) ([]order.LineItem, error) {
				return []order.LineItem{
					{ItemName: "Стандарт", Price: 1000, Quantity: 2},
					{ItemName: "Вода", Price: 100, Quantity: 1},
				}, nil
			},
		}
		users := &mockUsers{
			DisplayNameFunc: func(ctx context.Context, id int64) (string, error) {
				return "Анна", nil
			},
		}
		svc := NewService(repo, orders, users, time.UTC)

		summary, err := svc.Close(context.Background(), 3, "2026-08")

		require.NoError(t, err)
		assert.Equal(t, 3, summary.ShiftNumber)
		assert.Equal(t, "2026-08", summary.MonthYear)
		assert.Equal(t, "Анна", summary.AdminName)
		assert.Equal(t, 2100, summary.TotalRevenue)
		assert.Equal(t, 1, summary.TotalOrders)
		require.Len(t, summary.Sales, 2)
		// Сортировка по сумме: дороже выше
		assert.Equal(t, ItemSales{ItemName: "Стандарт", Quantity: 2, TotalAmount: 2000}, summary.Sales[0])
		assert.Equal(t, ItemSales{ItemName: "Вода", Quantity: 1, TotalAmount: 100}, summary.Sales[1])
	})

	t.Run("refuses_with_active_orders", func(t *testing.T) {
		orders := &mockOrderSource{
			CountActiveFunc: func(ctx context.Context) (int, error) {
				return 1, nil
			},
		}
		svc := NewService(&mockRepository{}, orders, &mockUsers{}, time.UTC)

		_, err := svc.Close(context.Background(), 3, "2026-08")

		assert.ErrorIs(t, err, ErrActiveOrdersRemain)
	})

	t.Run("shift_not_found", func(t *testing.T) {
		repo := &mockRepository{
			ByNumberAndMonthFunc: func(ctx context.Context, number int, monthYear string) (*Shift, error) {
				return nil, ErrShiftNotFound
			},
		}
		svc := NewService(repo, noActiveOrders(), &mockUsers{}, time.UTC)

		_, err := svc.Close(context.Background(), 9, "2026-08")

		assert.ErrorIs(t, err, ErrShiftNotFound)
	})

	t.Run("empty_shift_closes_with_zero_totals", func(t *testing.T) {
		repo := &mockRepository{
			ByNumberAndMonthFunc: func(ctx context.Context, number int, monthYear string) (*Shift, error) {
				return &Shift{ID: 5, Number: number, MonthYear: monthYear, AdminID: 100, Status: StatusOpen}, nil
			},
			CloseFunc: func(ctx context.Context, id int64, closedAt time.Time, totalRevenue, totalOrders int) error {
				assert.Zero(t, totalRevenue)
				assert.Zero(t, totalOrders)
				return nil
			},
			ReplaceSalesFunc: func(ctx context.Context, shiftID int64, sales []ItemSales) error {
				assert.Empty(t, sales)
				return nil
			},
		}
		orders := &mockOrderSource{
			CountActiveFunc: func(ctx context.Context) (int, error) {
				return 0, nil
			},
			ListByShiftFunc: func(ctx context.Context, shiftID int64) ([]order.Order, error) {
				return []order.Order{}, nil
			},
		}
		users := &mockUsers{
			DisplayNameFunc: func(ctx context.Context, id int64) (string, error) {
				return "", errors.New("user service down")
			},
		}
		svc := NewService(repo, orders, users, time.UTC)

		summary, err := svc.Close(context.Background(), 3, "2026-08")

		require.NoError(t, err)
		assert.Zero(t, summary.TotalRevenue)
		// Имя оператора не резолвится — остаётся заглушка с id
		assert.Equal(t, "ID: 100", summary.AdminName)
	})
}

func TestService_Active(t *testing.T) {
	t.Run("maps_not_found_to_no_open_shift", func(t *testing.T) {
		repo := &mockRepository{
			ActiveFunc: func(ctx context.Context) (*Shift, error) {
				return nil, ErrShiftNotFound
			},
		}
		svc := NewService(repo, noActiveOrders(), &mockUsers{}, time.UTC)

		_, err := svc.Active(context.Background())

		assert.ErrorIs(t, err, ErrNoOpenShift)
	})

	t.Run("returns_open_shift", func(t *testing.T) {
		repo := &mockRepository{
			ActiveFunc: func(ctx context.Context) (*Shift, error) {
				return &Shift{ID: 7, Number: 2, Status: StatusOpen}, nil
			},
		}
		svc := NewService(repo, noActiveOrders(), &mockUsers{}, time.UTC)

		sh, err := svc.Active(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(7), sh.ID)
	})
}

func TestService_ActiveShiftID(t *testing.T) {
	t.Run("translates_to_order_sentinel", func(t *testing.T) {
		repo := &mockRepository{
			ActiveFunc: func(ctx context.Context) (*Shift, error) {
				return nil, ErrShiftNotFound
			},
		}
		svc := NewService(repo, noActiveOrders(), &mockUsers{}, time.UTC)

		_, err := svc.ActiveShiftID(context.Background())

		assert.ErrorIs(t, err, order.ErrNoOpenShift)
	})

	t.Run("returns_shift_id", func(t *testing.T) {
		repo := &mockRepository{
			ActiveFunc: func(ctx context.Context) (*Shift, error) {
				return &Shift{ID: 7, Status: StatusOpen}, nil
			},
		}
		svc := NewService(repo, noActiveOrders(), &mockUsers{}, time.UTC)

		id, err := svc.ActiveShiftID(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
	})
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2026-08", MonthKey(time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "2026-01", MonthKey(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}
