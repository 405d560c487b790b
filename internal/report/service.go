package report

import (
	"context"
	"fmt"
	"time"

	"github.com/lounge-pos/backend/internal/menu"
	"github.com/lounge-pos/backend/internal/shift"
)

// Shifts разрешает смену по номеру и месяцу и отдаёт её замороженные агрегаты.
type Shifts interface {
	ByNumberAndMonth(ctx context.Context, number int, monthYear string) (*shift.Shift, error)
	SalesByShiftID(ctx context.Context, shiftID int64) ([]shift.ItemSales, error)
}

// Catalog отдаёт активные позиции меню для раскладки по категориям.
type Catalog interface {
	ListActive(ctx context.Context) ([]menu.Item, error)
}

type Service interface {
	SalesByShift(ctx context.Context, number int, monthYear string) ([]shift.ItemSales, error)
	SalesByMonth(ctx context.Context, monthYear string) ([]shift.ItemSales, error)
	SalesByYear(ctx context.Context, year string) ([]shift.ItemSales, error)
	SalesByPeriod(ctx context.Context, period Period) ([]shift.ItemSales, error)

	RevenueByShift(ctx context.Context, number int, monthYear string) (int, error)
	RevenueByMonth(ctx context.Context, monthYear string) (int, error)
	RevenueByYear(ctx context.Context, year string) (int, error)
	RevenueByPeriod(ctx context.Context, period Period) (int, error)

	PaymentStatsByShift(ctx context.Context, number int, monthYear string) (PaymentStats, error)
	PaymentStatsByMonth(ctx context.Context, monthYear string) (PaymentStats, error)
	PaymentStatsByYear(ctx context.Context, year string) (PaymentStats, error)
	PaymentStatsByPeriod(ctx context.Context, period Period) (PaymentStats, error)

	SpentBonusesByShift(ctx context.Context, number int, monthYear string) (int, error)
	SpentBonusesByMonth(ctx context.Context, monthYear string) (int, error)
	SpentBonusesByYear(ctx context.Context, year string) (int, error)
	SpentBonusesByPeriod(ctx context.Context, period Period) (int, error)

	GroupSalesByCategory(ctx context.Context, sales []shift.ItemSales) (map[string]*CategoryTotals, error)
}

type service struct {
	repo    Repository
	shifts  Shifts
	catalog Catalog
	loc     *time.Location
}

func NewService(repo Repository, shifts Shifts, catalog Catalog, loc *time.Location) Service {
	return &service{
		repo:    repo,
		shifts:  shifts,
		catalog: catalog,
		loc:     loc,
	}
}

func (s *service) now() time.Time {
	return time.Now().In(s.loc)
}

// periodStart — начало текущего месяца или года в часовом поясе заведения.
func (s *service) periodStart(period Period) time.Time {
	now := s.now()
	switch period {
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	case PeriodYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, s.loc)
	}
	return time.Time{}
}

func (s *service) monthBounds(monthYear string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01", monthYear, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("service: invalid month key %q: %w", monthYear, err)
	}
	return t, t.AddDate(0, 1, 0), nil
}

func (s *service) yearBounds(year string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006", year, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("service: invalid year %q: %w", year, err)
	}
	return t, t.AddDate(1, 0, 0), nil
}

func (s *service) SalesByShift(ctx context.Context, number int, monthYear string) ([]shift.ItemSales, error) {
	sh, err := s.shifts.ByNumberAndMonth(ctx, number, monthYear)
	if err != nil {
		return nil, err
	}
	return s.shifts.SalesByShiftID(ctx, sh.ID)
}

func (s *service) SalesByMonth(ctx context.Context, monthYear string) ([]shift.ItemSales, error) {
	return s.repo.SalesByMonth(ctx, monthYear)
}

func (s *service) SalesByYear(ctx context.Context, year string) ([]shift.ItemSales, error) {
	return s.repo.SalesByYear(ctx, year)
}

func (s *service) SalesByPeriod(ctx context.Context, period Period) ([]shift.ItemSales, error) {
	if period == PeriodAll {
		return s.repo.SalesAll(ctx)
	}
	return s.repo.SalesSince(ctx, s.periodStart(period))
}

func (s *service) RevenueByShift(ctx context.Context, number int, monthYear string) (int, error) {
	sh, err := s.shifts.ByNumberAndMonth(ctx, number, monthYear)
	if err != nil {
		return 0, err
	}
	return sh.TotalRevenue, nil
}

func (s *service) RevenueByMonth(ctx context.Context, monthYear string) (int, error) {
	return s.repo.RevenueByMonth(ctx, monthYear)
}

func (s *service) RevenueByYear(ctx context.Context, year string) (int, error) {
	return s.repo.RevenueByYear(ctx, year)
}

func (s *service) RevenueByPeriod(ctx context.Context, period Period) (int, error) {
	if period == PeriodAll {
		return s.repo.RevenueAll(ctx)
	}
	return s.repo.RevenueSince(ctx, s.periodStart(period))
}

func (s *service) PaymentStatsByShift(ctx context.Context, number int, monthYear string) (PaymentStats, error) {
	sh, err := s.shifts.ByNumberAndMonth(ctx, number, monthYear)
	if err != nil {
		return nil, err
	}
	return s.repo.PaymentStatsByShiftID(ctx, sh.ID)
}

func (s *service) PaymentStatsByMonth(ctx context.Context, monthYear string) (PaymentStats, error) {
	from, to, err := s.monthBounds(monthYear)
	if err != nil {
		return nil, err
	}
	return s.repo.PaymentStatsBetween(ctx, from, to)
}

func (s *service) PaymentStatsByYear(ctx context.Context, year string) (PaymentStats, error) {
	from, to, err := s.yearBounds(year)
	if err != nil {
		return nil, err
	}
	return s.repo.PaymentStatsBetween(ctx, from, to)
}

func (s *service) PaymentStatsByPeriod(ctx context.Context, period Period) (PaymentStats, error) {
	if period == PeriodAll {
		return s.repo.PaymentStatsAll(ctx)
	}
	return s.repo.PaymentStatsSince(ctx, s.periodStart(period))
}

// SpentBonusesByShift — списанные бонусы в окне смены: бонусные
// транзакции не привязаны к заказам, поэтому здесь остаётся выборка по
// временному диапазону.
func (s *service) SpentBonusesByShift(ctx context.Context, number int, monthYear string) (int, error) {
	sh, err := s.shifts.ByNumberAndMonth(ctx, number, monthYear)
	if err != nil {
		return 0, err
	}
	if sh.ClosedAt != nil {
		return s.repo.SpentBonusesBetween(ctx, sh.OpenedAt, *sh.ClosedAt)
	}
	return s.repo.SpentBonusesSince(ctx, sh.OpenedAt)
}

func (s *service) SpentBonusesByMonth(ctx context.Context, monthYear string) (int, error) {
	from, to, err := s.monthBounds(monthYear)
	if err != nil {
		return 0, err
	}
	return s.repo.SpentBonusesBetween(ctx, from, to)
}

func (s *service) SpentBonusesByYear(ctx context.Context, year string) (int, error) {
	from, to, err := s.yearBounds(year)
	if err != nil {
		return 0, err
	}
	return s.repo.SpentBonusesBetween(ctx, from, to)
}

func (s *service) SpentBonusesByPeriod(ctx context.Context, period Period) (int, error) {
	if period == PeriodAll {
		return s.repo.SpentBonusesAll(ctx)
	}
	return s.repo.SpentBonusesSince(ctx, s.periodStart(period))
}

func (s *service) GroupSalesByCategory(ctx context.Context, sales []shift.ItemSales) (map[string]*CategoryTotals, error) {
	items, err := s.catalog.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load menu for category grouping: %w", err)
	}

	itemCategories := make(map[string]string, len(items))
	for _, item := range items {
		itemCategories[item.Name] = item.Category
	}

	return GroupByCategory(sales, itemCategories), nil
}
