package shift

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lounge-pos/backend/internal/order"
)

var (
	// ErrActiveOrdersRemain — смену нельзя открыть или закрыть, пока есть
	// активные заказы. Сообщение несёт их число для показа оператору.
	ErrActiveOrdersRemain = errors.New("active orders remain")
	// ErrNumbersExhausted — в месяце не осталось свободных номеров смен.
	ErrNumbersExhausted = errors.New("no free shift numbers left in this month")
	ErrNoOpenShift      = errors.New("no open shift")
)

// Попыток вставки с номером MAX+1 до перехода к линейному поиску.
const reserveAttempts = 3

// Верхняя граница линейного поиска свободного номера.
const maxShiftsPerMonth = 999

// OrderSource — заказы, которые смена считает при закрытии.
// Реализуется репозиторием заказов.
type OrderSource interface {
	CountActive(ctx context.Context) (int, error)
	ListByShift(ctx context.Context, shiftID int64) ([]order.Order, error)
	ListItems(ctx context.Context, orderID int64) ([]order.LineItem, error)
}

// Users отдаёт имя оператора для итоговой сводки.
type Users interface {
	DisplayName(ctx context.Context, id int64) (string, error)
}

type Service interface {
	NextNumber(ctx context.Context, monthYear string) (int, error)
	Open(ctx context.Context, adminID int64) (*Shift, error)
	Close(ctx context.Context, number int, monthYear string) (*Summary, error)
	Active(ctx context.Context) (*Shift, error)
	ByNumberAndMonth(ctx context.Context, number int, monthYear string) (*Shift, error)
	ActiveShiftID(ctx context.Context) (int64, error)
	Summary(ctx context.Context, number int, monthYear string) (*Summary, error)
	ListClosedByMonth(ctx context.Context, monthYear string) ([]Shift, error)
	ClosedYears(ctx context.Context) ([]string, error)
	ClosedMonths(ctx context.Context, year string) ([]string, error)
}

type service struct {
	repo   Repository
	orders OrderSource
	users  Users
	loc    *time.Location
}

func NewService(repo Repository, orders OrderSource, users Users, loc *time.Location) Service {
	return &service{
		repo:   repo,
		orders: orders,
		users:  users,
		loc:    loc,
	}
}

func (s *service) now() time.Time {
	return time.Now().In(s.loc)
}

func (s *service) NextNumber(ctx context.Context, monthYear string) (int, error) {
	return s.repo.NextNumber(ctx, monthYear)
}

// Open открывает смену в текущем месяце. Отказ, если остались активные
// заказы: это признак незакрытой предыдущей смены. Номер выдаётся как
// MAX+1 по месяцу; конфликт уникальности при гонке разрешается повтором,
// затем линейным поиском первого свободного номера.
func (s *service) Open(ctx context.Context, adminID int64) (*Shift, error) {
	activeCount, err := s.orders.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to count active orders: %w", err)
	}
	if activeCount > 0 {
		log.Warn().Int("active_orders", activeCount).Msg("service: shift open refused, active orders remain")
		return nil, fmt.Errorf("%w: %d", ErrActiveOrdersRemain, activeCount)
	}

	openedAt := s.now()
	monthYear := MonthKey(openedAt)

	for attempt := 1; attempt <= reserveAttempts; attempt++ {
		sh, err := s.repo.ReserveNumber(ctx, monthYear, adminID, openedAt)
		if err == nil {
			log.Info().Int("shift_number", sh.Number).Str("month_year", monthYear).Msg("service: shift opened")
			return sh, nil
		}
		if !errors.Is(err, ErrDuplicateShiftNumber) {
			return nil, fmt.Errorf("service: failed to open shift: %w", err)
		}
		log.Warn().Int("attempt", attempt).Str("month_year", monthYear).Msg("service: shift number conflict, retrying")
	}

	// Повторы исчерпаны: ищем первый свободный номер перебором.
	sh, err := s.openWithFreeNumber(ctx, monthYear, adminID, openedAt)
	if err != nil {
		return nil, err
	}

	log.Info().Int("shift_number", sh.Number).Str("month_year", monthYear).Msg("service: shift opened after number scan")
	return sh, nil
}

func (s *service) openWithFreeNumber(ctx context.Context, monthYear string, adminID int64, openedAt time.Time) (*Shift, error) {
	numbers, err := s.repo.Numbers(ctx, monthYear)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list shift numbers: %w", err)
	}

	taken := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		taken[n] = true
	}

	for n := 1; n <= maxShiftsPerMonth; n++ {
		if taken[n] {
			continue
		}
		sh := &Shift{
			Number:    n,
			MonthYear: monthYear,
			AdminID:   adminID,
			OpenedAt:  openedAt,
			Status:    StatusOpen,
		}
		err := s.repo.InsertWithNumber(ctx, sh)
		if err == nil {
			return sh, nil
		}
		if errors.Is(err, ErrDuplicateShiftNumber) {
			// Номер заняли под нами, двигаемся дальше.
			continue
		}
		return nil, fmt.Errorf("service: failed to open shift with number %d: %w", n, err)
	}

	log.Error().Str("month_year", monthYear).Msg("service: shift numbers exhausted")
	return nil, ErrNumbersExhausted
}

// Close закрывает смену: собирает все её заказы, считает выручку и
// количество по позициям, замораживает итоги в строке смены и
// перезаписывает агрегаты продаж. Повторное закрытие пересчитывает
// агрегаты с тем же результатом.
func (s *service) Close(ctx context.Context, number int, monthYear string) (*Summary, error) {
	activeCount, err := s.orders.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to count active orders: %w", err)
	}
	if activeCount > 0 {
		log.Warn().Int("active_orders", activeCount).Msg("service: shift close refused, active orders remain")
		return nil, fmt.Errorf("%w: %d", ErrActiveOrdersRemain, activeCount)
	}

	sh, err := s.repo.ByNumberAndMonth(ctx, number, monthYear)
	if err != nil {
		if errors.Is(err, ErrShiftNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("service: failed to resolve shift #%d (%s): %w", number, monthYear, err)
	}

	shiftOrders, err := s.orders.ListByShift(ctx, sh.ID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list shift orders: %w", err)
	}

	totalRevenue := 0
	salesByItem := make(map[string]*ItemSales)
	for _, o := range shiftOrders {
		items, err := s.orders.ListItems(ctx, o.ID)
		if err != nil {
			return nil, fmt.Errorf("service: failed to list items of order %d: %w", o.ID, err)
		}
		for _, item := range items {
			amount := item.Price * item.Quantity
			totalRevenue += amount

			sale, ok := salesByItem[item.ItemName]
			if !ok {
				sale = &ItemSales{ItemName: item.ItemName}
				salesByItem[item.ItemName] = sale
			}
			sale.Quantity += item.Quantity
			sale.TotalAmount += amount
		}
	}

	closedAt := s.now()
	if err := s.repo.Close(ctx, sh.ID, closedAt, totalRevenue, len(shiftOrders)); err != nil {
		return nil, fmt.Errorf("service: failed to close shift: %w", err)
	}

	sales := make([]ItemSales, 0, len(salesByItem))
	for _, sale := range salesByItem {
		sales = append(sales, *sale)
	}
	sort.Slice(sales, func(i, j int) bool {
		if sales[i].TotalAmount != sales[j].TotalAmount {
			return sales[i].TotalAmount > sales[j].TotalAmount
		}
		return sales[i].ItemName < sales[j].ItemName
	})

	if err := s.repo.ReplaceSales(ctx, sh.ID, sales); err != nil {
		return nil, fmt.Errorf("service: failed to save shift sales: %w", err)
	}

	adminName, err := s.users.DisplayName(ctx, sh.AdminID)
	if err != nil {
		log.Error().Err(err).Int64("admin_id", sh.AdminID).Msg("service: failed to resolve admin name")
		adminName = fmt.Sprintf("ID: %d", sh.AdminID)
	}

	log.Info().
		Int("shift_number", sh.Number).
		Str("month_year", sh.MonthYear).
		Int("total_revenue", totalRevenue).
		Int("total_orders", len(shiftOrders)).
		Msg("service: shift closed")

	return &Summary{
		ShiftNumber:  sh.Number,
		MonthYear:    sh.MonthYear,
		AdminName:    adminName,
		OpenedAt:     sh.OpenedAt,
		ClosedAt:     closedAt,
		TotalRevenue: totalRevenue,
		TotalOrders:  len(shiftOrders),
		Sales:        sales,
	}, nil
}

func (s *service) Active(ctx context.Context) (*Shift, error) {
	sh, err := s.repo.Active(ctx)
	if err != nil {
		if errors.Is(err, ErrShiftNotFound) {
			return nil, ErrNoOpenShift
		}
		return nil, err
	}
	return sh, nil
}

func (s *service) ByNumberAndMonth(ctx context.Context, number int, monthYear string) (*Shift, error) {
	return s.repo.ByNumberAndMonth(ctx, number, monthYear)
}

// Summary восстанавливает сводку уже закрытой смены из замороженных агрегатов.
func (s *service) Summary(ctx context.Context, number int, monthYear string) (*Summary, error) {
	sh, err := s.repo.ByNumberAndMonth(ctx, number, monthYear)
	if err != nil {
		return nil, err
	}

	sales, err := s.repo.SalesByShiftID(ctx, sh.ID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load shift sales: %w", err)
	}

	adminName, err := s.users.DisplayName(ctx, sh.AdminID)
	if err != nil {
		log.Error().Err(err).Int64("admin_id", sh.AdminID).Msg("service: failed to resolve admin name")
		adminName = fmt.Sprintf("ID: %d", sh.AdminID)
	}

	summary := &Summary{
		ShiftNumber:  sh.Number,
		MonthYear:    sh.MonthYear,
		AdminName:    adminName,
		OpenedAt:     sh.OpenedAt,
		TotalRevenue: sh.TotalRevenue,
		TotalOrders:  sh.TotalOrders,
		Sales:        sales,
	}
	if sh.ClosedAt != nil {
		summary.ClosedAt = *sh.ClosedAt
	}
	return summary, nil
}

func (s *service) ListClosedByMonth(ctx context.Context, monthYear string) ([]Shift, error) {
	return s.repo.ListClosedByMonth(ctx, monthYear)
}

func (s *service) ClosedYears(ctx context.Context) ([]string, error) {
	return s.repo.ClosedYears(ctx)
}

func (s *service) ClosedMonths(ctx context.Context, year string) ([]string, error) {
	return s.repo.ClosedMonths(ctx, year)
}

// ActiveShiftID — единственный источник правды о том, открыта ли смена.
// Никакого флага в памяти процесса: после рестарта состояние читается из базы.
func (s *service) ActiveShiftID(ctx context.Context) (int64, error) {
	sh, err := s.Active(ctx)
	if err != nil {
		if errors.Is(err, ErrNoOpenShift) {
			return 0, order.ErrNoOpenShift
		}
		return 0, err
	}
	return sh.ID, nil
}
