package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrLineItemNotFound = errors.New("order line item not found")
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListActive(ctx context.Context) ([]Order, error)
	GetActiveByTable(ctx context.Context, tableNumber int) (*Order, error)
	CountActive(ctx context.Context) (int, error)
	Close(ctx context.Context, id int64, method *PaymentMethod, closedAt time.Time) error
	ListByShift(ctx context.Context, shiftID int64) ([]Order, error)

	GetItem(ctx context.Context, orderID int64, itemName string) (*LineItem, error)
	InsertItem(ctx context.Context, item *LineItem) error
	AddItemQuantity(ctx context.Context, itemID int64, delta int) error
	SetItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, itemID int64) error
	ListItems(ctx context.Context, orderID int64) ([]LineItem, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const orderColumns = `id, table_number, admin_id, COALESCE(shift_id, 0), status, created_at, closed_at, payment_method`

func (r *postgresRepository) Create(ctx context.Context, o *Order) error {
	query := `
		INSERT INTO orders (table_number, admin_id, shift_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		o.TableNumber,
		o.AdminID,
		o.ShiftID,
		string(StatusActive),
		o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}
	o.Status = StatusActive

	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var method *string
	err := row.Scan(
		&o.ID,
		&o.TableNumber,
		&o.AdminID,
		&o.ShiftID,
		&o.Status,
		&o.CreatedAt,
		&o.ClosedAt,
		&method,
	)
	if err != nil {
		return nil, err
	}
	if method != nil {
		pm := PaymentMethod(*method)
		o.PaymentMethod = &pm
	}
	return &o, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %d: %w", id, err)
	}

	return o, nil
}

func (r *postgresRepository) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	return orders, nil
}

func (r *postgresRepository) ListActive(ctx context.Context) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = 'active' ORDER BY created_at DESC`
	return r.queryOrders(ctx, query)
}

func (r *postgresRepository) GetActiveByTable(ctx context.Context, tableNumber int) (*Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE table_number = $1 AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 1
	`

	o, err := scanOrder(r.db.QueryRow(ctx, query, tableNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select active order for table %d: %w", tableNumber, err)
	}

	return o, nil
}

func (r *postgresRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE status = 'active'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count active orders: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) Close(ctx context.Context, id int64, method *PaymentMethod, closedAt time.Time) error {
	query := `
		UPDATE orders
		SET status = 'closed', closed_at = $1, payment_method = $2
		WHERE id = $3
	`

	var methodStr *string
	if method != nil {
		s := string(*method)
		methodStr = &s
	}

	cmdTag, err := r.db.Exec(ctx, query, closedAt, methodStr, id)
	if err != nil {
		return fmt.Errorf("repository: failed to close order %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *postgresRepository) ListByShift(ctx context.Context, shiftID int64) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE shift_id = $1 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, shiftID)
}

func (r *postgresRepository) GetItem(ctx context.Context, orderID int64, itemName string) (*LineItem, error) {
	query := `
		SELECT id, order_id, item_name, price, quantity, added_at
		FROM order_items
		WHERE order_id = $1 AND item_name = $2
		ORDER BY id
		LIMIT 1
	`

	var item LineItem
	err := r.db.QueryRow(ctx, query, orderID, itemName).Scan(
		&item.ID,
		&item.OrderID,
		&item.ItemName,
		&item.Price,
		&item.Quantity,
		&item.AddedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLineItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to select line item %q for order %d: %w", itemName, orderID, err)
	}

	return &item, nil
}

func (r *postgresRepository) InsertItem(ctx context.Context, item *LineItem) error {
	query := `
		INSERT INTO order_items (order_id, item_name, price, quantity, added_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		item.OrderID,
		item.ItemName,
		item.Price,
		item.Quantity,
		item.AddedAt,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to insert line item for order %d: %w", item.OrderID, err)
	}

	return nil
}

func (r *postgresRepository) AddItemQuantity(ctx context.Context, itemID int64, delta int) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE order_items SET quantity = quantity + $1 WHERE id = $2`, delta, itemID)
	if err != nil {
		return fmt.Errorf("repository: failed to change quantity of line item %d: %w", itemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrLineItemNotFound
	}
	return nil
}

func (r *postgresRepository) SetItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE order_items SET quantity = $1 WHERE id = $2`, quantity, itemID)
	if err != nil {
		return fmt.Errorf("repository: failed to set quantity of line item %d: %w", itemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrLineItemNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteItem(ctx context.Context, itemID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("repository: failed to delete line item %d: %w", itemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrLineItemNotFound
	}
	return nil
}

func (r *postgresRepository) ListItems(ctx context.Context, orderID int64) ([]LineItem, error) {
	query := `
		SELECT id, order_id, item_name, price, quantity, added_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query line items for order %d: %w", orderID, err)
	}
	defer rows.Close()

	items := make([]LineItem, 0)
	for rows.Next() {
		var item LineItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ItemName,
			&item.Price,
			&item.Quantity,
			&item.AddedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan line item for order %d: %w", orderID, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating line items for order %d: %w", orderID, err)
	}

	return items, nil
}
