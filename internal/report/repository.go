package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lounge-pos/backend/internal/shift"
)

// Репозиторий отчётов: только чтение. Продажи по позициям читаются из
// замороженных агрегатов shift_sales, статистика оплат — из живых
// закрытых заказов, списанные бонусы — из журнала транзакций.
type Repository interface {
	SalesByMonth(ctx context.Context, monthYear string) ([]shift.ItemSales, error)
	SalesByYear(ctx context.Context, year string) ([]shift.ItemSales, error)
	SalesSince(ctx context.Context, start time.Time) ([]shift.ItemSales, error)
	SalesAll(ctx context.Context) ([]shift.ItemSales, error)

	RevenueByMonth(ctx context.Context, monthYear string) (int, error)
	RevenueByYear(ctx context.Context, year string) (int, error)
	RevenueSince(ctx context.Context, start time.Time) (int, error)
	RevenueAll(ctx context.Context) (int, error)

	PaymentStatsByShiftID(ctx context.Context, shiftID int64) (PaymentStats, error)
	PaymentStatsBetween(ctx context.Context, from, to time.Time) (PaymentStats, error)
	PaymentStatsSince(ctx context.Context, start time.Time) (PaymentStats, error)
	PaymentStatsAll(ctx context.Context) (PaymentStats, error)

	SpentBonusesBetween(ctx context.Context, from, to time.Time) (int, error)
	SpentBonusesSince(ctx context.Context, start time.Time) (int, error)
	SpentBonusesAll(ctx context.Context) (int, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const salesSelect = `
	SELECT ss.item_name, SUM(ss.quantity), SUM(ss.total_amount)
	FROM shift_sales ss
	JOIN shifts s ON ss.shift_id = s.id
`

const salesTail = `
	GROUP BY ss.item_name
	ORDER BY SUM(ss.total_amount) DESC
`

func (r *postgresRepository) querySales(ctx context.Context, query string, args ...any) ([]shift.ItemSales, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query sales statistics: %w", err)
	}
	defer rows.Close()

	sales := make([]shift.ItemSales, 0)
	for rows.Next() {
		var s shift.ItemSales
		if err := rows.Scan(&s.ItemName, &s.Quantity, &s.TotalAmount); err != nil {
			return nil, fmt.Errorf("repository: failed to scan sales row: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating sales rows: %w", err)
	}

	return sales, nil
}

func (r *postgresRepository) SalesByMonth(ctx context.Context, monthYear string) ([]shift.ItemSales, error) {
	query := salesSelect + ` WHERE s.month_year = $1 AND s.status = 'closed' ` + salesTail
	return r.querySales(ctx, query, monthYear)
}

func (r *postgresRepository) SalesByYear(ctx context.Context, year string) ([]shift.ItemSales, error) {
	query := salesSelect + ` WHERE left(s.month_year, 4) = $1 AND s.status = 'closed' ` + salesTail
	return r.querySales(ctx, query, year)
}

func (r *postgresRepository) SalesSince(ctx context.Context, start time.Time) ([]shift.ItemSales, error) {
	query := salesSelect + ` WHERE s.opened_at >= $1 AND s.status = 'closed' ` + salesTail
	return r.querySales(ctx, query, start)
}

func (r *postgresRepository) SalesAll(ctx context.Context) ([]shift.ItemSales, error) {
	query := salesSelect + ` WHERE s.status = 'closed' ` + salesTail
	return r.querySales(ctx, query)
}

func (r *postgresRepository) queryRevenue(ctx context.Context, query string, args ...any) (int, error) {
	var revenue int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&revenue); err != nil {
		return 0, fmt.Errorf("repository: failed to query revenue: %w", err)
	}
	return revenue, nil
}

func (r *postgresRepository) RevenueByMonth(ctx context.Context, monthYear string) (int, error) {
	query := `SELECT COALESCE(SUM(total_revenue), 0) FROM shifts WHERE month_year = $1 AND status = 'closed'`
	return r.queryRevenue(ctx, query, monthYear)
}

func (r *postgresRepository) RevenueByYear(ctx context.Context, year string) (int, error) {
	query := `SELECT COALESCE(SUM(total_revenue), 0) FROM shifts WHERE left(month_year, 4) = $1 AND status = 'closed'`
	return r.queryRevenue(ctx, query, year)
}

func (r *postgresRepository) RevenueSince(ctx context.Context, start time.Time) (int, error) {
	query := `SELECT COALESCE(SUM(total_revenue), 0) FROM shifts WHERE opened_at >= $1 AND status = 'closed'`
	return r.queryRevenue(ctx, query, start)
}

func (r *postgresRepository) RevenueAll(ctx context.Context) (int, error) {
	query := `SELECT COALESCE(SUM(total_revenue), 0) FROM shifts WHERE status = 'closed'`
	return r.queryRevenue(ctx, query)
}

// Статистика оплат считается по живым заказам, а не по shift_sales:
// способ оплаты есть только на заказе. Заказы без способа оплаты
// (массовый расчёт) в разбивку не попадают.
const paymentSelect = `
	SELECT t.payment_method, COUNT(*), COALESCE(SUM(t.total), 0)
	FROM (
		SELECT o.id, o.payment_method, SUM(oi.price * oi.quantity) AS total
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		WHERE o.status = 'closed' AND o.payment_method IS NOT NULL
`

const paymentTail = `
		GROUP BY o.id, o.payment_method
	) t
	GROUP BY t.payment_method
`

func (r *postgresRepository) queryPaymentStats(ctx context.Context, query string, args ...any) (PaymentStats, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query payment statistics: %w", err)
	}
	defer rows.Close()

	stats := make(PaymentStats)
	for rows.Next() {
		var method string
		var stat PaymentStat
		if err := rows.Scan(&method, &stat.Count, &stat.TotalAmount); err != nil {
			return nil, fmt.Errorf("repository: failed to scan payment stats row: %w", err)
		}
		stats[method] = stat
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating payment stats: %w", err)
	}

	return stats, nil
}

func (r *postgresRepository) PaymentStatsByShiftID(ctx context.Context, shiftID int64) (PaymentStats, error) {
	query := paymentSelect + ` AND o.shift_id = $1 ` + paymentTail
	return r.queryPaymentStats(ctx, query, shiftID)
}

func (r *postgresRepository) PaymentStatsBetween(ctx context.Context, from, to time.Time) (PaymentStats, error) {
	query := paymentSelect + ` AND o.created_at >= $1 AND o.created_at < $2 ` + paymentTail
	return r.queryPaymentStats(ctx, query, from, to)
}

func (r *postgresRepository) PaymentStatsSince(ctx context.Context, start time.Time) (PaymentStats, error) {
	query := paymentSelect + ` AND o.created_at >= $1 ` + paymentTail
	return r.queryPaymentStats(ctx, query, start)
}

func (r *postgresRepository) PaymentStatsAll(ctx context.Context) (PaymentStats, error) {
	return r.queryPaymentStats(ctx, paymentSelect+paymentTail)
}

func (r *postgresRepository) querySpentBonuses(ctx context.Context, query string, args ...any) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("repository: failed to query spent bonuses: %w", err)
	}
	return total, nil
}

func (r *postgresRepository) SpentBonusesBetween(ctx context.Context, from, to time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM bonus_transactions
		WHERE type = 'spend' AND created_at >= $1 AND created_at < $2
	`
	return r.querySpentBonuses(ctx, query, from, to)
}

func (r *postgresRepository) SpentBonusesSince(ctx context.Context, start time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM bonus_transactions
		WHERE type = 'spend' AND created_at >= $1
	`
	return r.querySpentBonuses(ctx, query, start)
}

func (r *postgresRepository) SpentBonusesAll(ctx context.Context) (int, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM bonus_transactions WHERE type = 'spend'`
	return r.querySpentBonuses(ctx, query)
}
