package shift

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrShiftNotFound        = errors.New("shift not found")
	ErrDuplicateShiftNumber = errors.New("shift number already taken for this month")
)

type Repository interface {
	// ReserveNumber вставляет смену с номером MAX+1 по месяцу одним
	// запросом. При гонке двух открытий возвращает ErrDuplicateShiftNumber.
	ReserveNumber(ctx context.Context, monthYear string, adminID int64, openedAt time.Time) (*Shift, error)
	InsertWithNumber(ctx context.Context, s *Shift) error
	Numbers(ctx context.Context, monthYear string) ([]int, error)
	NextNumber(ctx context.Context, monthYear string) (int, error)
	Active(ctx context.Context) (*Shift, error)
	ByNumberAndMonth(ctx context.Context, number int, monthYear string) (*Shift, error)
	Close(ctx context.Context, id int64, closedAt time.Time, totalRevenue, totalOrders int) error
	ReplaceSales(ctx context.Context, shiftID int64, sales []ItemSales) error
	SalesByShiftID(ctx context.Context, shiftID int64) ([]ItemSales, error)
	ListClosedByMonth(ctx context.Context, monthYear string) ([]Shift, error)
	ClosedYears(ctx context.Context) ([]string, error)
	ClosedMonths(ctx context.Context, year string) ([]string, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const shiftColumns = `id, shift_number, month_year, admin_id, opened_at, closed_at, total_revenue, total_orders, status`

func scanShift(row pgx.Row) (*Shift, error) {
	var s Shift
	err := row.Scan(
		&s.ID,
		&s.Number,
		&s.MonthYear,
		&s.AdminID,
		&s.OpenedAt,
		&s.ClosedAt,
		&s.TotalRevenue,
		&s.TotalOrders,
		&s.Status,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepository) ReserveNumber(ctx context.Context, monthYear string, adminID int64, openedAt time.Time) (*Shift, error) {
	query := `
		INSERT INTO shifts (shift_number, month_year, admin_id, opened_at, status)
		SELECT COALESCE(MAX(shift_number), 0) + 1, $1, $2, $3, 'open'
		FROM shifts
		WHERE month_year = $1
		RETURNING id, shift_number
	`

	s := &Shift{
		MonthYear: monthYear,
		AdminID:   adminID,
		OpenedAt:  openedAt,
		Status:    StatusOpen,
	}
	err := r.db.QueryRow(ctx, query, monthYear, adminID, openedAt).Scan(&s.ID, &s.Number)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateShiftNumber
		}
		return nil, fmt.Errorf("repository: failed to reserve shift number for %s: %w", monthYear, err)
	}

	return s, nil
}

func (r *postgresRepository) InsertWithNumber(ctx context.Context, s *Shift) error {
	query := `
		INSERT INTO shifts (shift_number, month_year, admin_id, opened_at, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, s.Number, s.MonthYear, s.AdminID, s.OpenedAt, string(s.Status)).Scan(&s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateShiftNumber
		}
		return fmt.Errorf("repository: failed to insert shift #%d (%s): %w", s.Number, s.MonthYear, err)
	}

	return nil
}

func (r *postgresRepository) Numbers(ctx context.Context, monthYear string) ([]int, error) {
	query := `SELECT shift_number FROM shifts WHERE month_year = $1 ORDER BY shift_number`

	rows, err := r.db.Query(ctx, query, monthYear)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query shift numbers for %s: %w", monthYear, err)
	}
	defer rows.Close()

	numbers := make([]int, 0)
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("repository: failed to scan shift number: %w", err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating shift numbers: %w", err)
	}

	return numbers, nil
}

func (r *postgresRepository) NextNumber(ctx context.Context, monthYear string) (int, error) {
	var maxNumber int
	query := `SELECT COALESCE(MAX(shift_number), 0) FROM shifts WHERE month_year = $1`
	if err := r.db.QueryRow(ctx, query, monthYear).Scan(&maxNumber); err != nil {
		return 0, fmt.Errorf("repository: failed to compute next shift number for %s: %w", monthYear, err)
	}
	return maxNumber + 1, nil
}

func (r *postgresRepository) Active(ctx context.Context) (*Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE status = 'open'
		ORDER BY opened_at DESC
		LIMIT 1
	`

	s, err := scanShift(r.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("repository: failed to select active shift: %w", err)
	}

	return s, nil
}

func (r *postgresRepository) ByNumberAndMonth(ctx context.Context, number int, monthYear string) (*Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE shift_number = $1 AND month_year = $2`

	s, err := scanShift(r.db.QueryRow(ctx, query, number, monthYear))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("repository: failed to select shift #%d (%s): %w", number, monthYear, err)
	}

	return s, nil
}

func (r *postgresRepository) Close(ctx context.Context, id int64, closedAt time.Time, totalRevenue, totalOrders int) error {
	query := `
		UPDATE shifts
		SET closed_at = $1, status = 'closed', total_revenue = $2, total_orders = $3
		WHERE id = $4
	`

	cmdTag, err := r.db.Exec(ctx, query, closedAt, totalRevenue, totalOrders, id)
	if err != nil {
		return fmt.Errorf("repository: failed to close shift %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrShiftNotFound
	}

	return nil
}

// ReplaceSales перезаписывает агрегаты продаж смены целиком: старые строки
// удаляются, новые вставляются в одной транзакции. Повторный запуск с теми
// же данными даёт тот же результат.
func (r *postgresRepository) ReplaceSales(ctx context.Context, shiftID int64, sales []ItemSales) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM shift_sales WHERE shift_id = $1`, shiftID); err != nil {
		return fmt.Errorf("repository: failed to delete old shift sales for shift %d: %w", shiftID, err)
	}

	for _, sale := range sales {
		_, err = tx.Exec(ctx,
			`INSERT INTO shift_sales (shift_id, item_name, quantity, total_amount) VALUES ($1, $2, $3, $4)`,
			shiftID, sale.ItemName, sale.Quantity, sale.TotalAmount,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert shift sales row %q: %w", sale.ItemName, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit shift sales: %w", err)
	}
	return nil
}

func (r *postgresRepository) SalesByShiftID(ctx context.Context, shiftID int64) ([]ItemSales, error) {
	query := `
		SELECT item_name, SUM(quantity), SUM(total_amount)
		FROM shift_sales
		WHERE shift_id = $1
		GROUP BY item_name
		ORDER BY SUM(total_amount) DESC
	`
	return r.querySales(ctx, query, shiftID)
}

func (r *postgresRepository) querySales(ctx context.Context, query string, args ...any) ([]ItemSales, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query shift sales: %w", err)
	}
	defer rows.Close()

	sales := make([]ItemSales, 0)
	for rows.Next() {
		var s ItemSales
		if err := rows.Scan(&s.ItemName, &s.Quantity, &s.TotalAmount); err != nil {
			return nil, fmt.Errorf("repository: failed to scan shift sales row: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating shift sales: %w", err)
	}

	return sales, nil
}

func (r *postgresRepository) queryShifts(ctx context.Context, query string, args ...any) ([]Shift, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query shifts: %w", err)
	}
	defer rows.Close()

	shifts := make([]Shift, 0)
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan shift: %w", err)
		}
		shifts = append(shifts, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating shifts: %w", err)
	}

	return shifts, nil
}

func (r *postgresRepository) ListClosedByMonth(ctx context.Context, monthYear string) ([]Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE month_year = $1 AND status = 'closed'
		ORDER BY shift_number DESC
	`
	return r.queryShifts(ctx, query, monthYear)
}

func (r *postgresRepository) ClosedYears(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT left(month_year, 4) AS year
		FROM shifts
		WHERE status = 'closed'
		ORDER BY year DESC
	`
	return r.queryStrings(ctx, query)
}

func (r *postgresRepository) ClosedMonths(ctx context.Context, year string) ([]string, error) {
	query := `
		SELECT DISTINCT right(month_year, 2) AS month
		FROM shifts
		WHERE left(month_year, 4) = $1 AND status = 'closed'
		ORDER BY month DESC
	`
	return r.queryStrings(ctx, query, year)
}

func (r *postgresRepository) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query: %w", err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("repository: failed to scan value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating values: %w", err)
	}

	return values, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
