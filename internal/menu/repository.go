package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrItemNotFound  = errors.New("menu item not found")
	ErrDuplicateName = errors.New("menu item with this name already exists")
)

type Repository interface {
	GetByName(ctx context.Context, name string) (*Item, error)
	GetActiveByName(ctx context.Context, name string) (*Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	Categories(ctx context.Context) ([]string, error)
	ItemsByCategory(ctx context.Context, category string) ([]Item, error)
	ListAll(ctx context.Context) ([]Item, error)
	ListActive(ctx context.Context) ([]Item, error)
	ListInactive(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const itemColumns = `id, name, price, category, is_active`

func (r *postgresRepository) scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Price, &it.Category, &it.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to scan menu item: %w", err)
	}
	return &it, nil
}

func (r *postgresRepository) GetByName(ctx context.Context, name string) (*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM menu_items WHERE name = $1`
	return r.scanItem(r.db.QueryRow(ctx, query, name))
}

func (r *postgresRepository) GetActiveByName(ctx context.Context, name string) (*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM menu_items WHERE name = $1 AND is_active = TRUE`
	return r.scanItem(r.db.QueryRow(ctx, query, name))
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM menu_items WHERE id = $1`
	return r.scanItem(r.db.QueryRow(ctx, query, id))
}

func (r *postgresRepository) Categories(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT category FROM menu_items WHERE is_active = TRUE ORDER BY category`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query menu categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("repository: failed to scan menu category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating menu categories: %w", err)
	}

	return categories, nil
}

func (r *postgresRepository) queryItems(ctx context.Context, query string, args ...any) ([]Item, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Price, &it.Category, &it.IsActive); err != nil {
			return nil, fmt.Errorf("repository: failed to scan menu item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating menu items: %w", err)
	}

	return items, nil
}

func (r *postgresRepository) ItemsByCategory(ctx context.Context, category string) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM menu_items WHERE category = $1 AND is_active = TRUE ORDER BY name`
	return r.queryItems(ctx, query, category)
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM menu_items ORDER BY category, name`
	return r.queryItems(ctx, query)
}

func (r *postgresRepository) ListActive(ctx context.Context) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM menu_items WHERE is_active = TRUE ORDER BY category, name`
	return r.queryItems(ctx, query)
}

func (r *postgresRepository) ListInactive(ctx context.Context) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM menu_items WHERE is_active = FALSE ORDER BY category, name`
	return r.queryItems(ctx, query)
}

func (r *postgresRepository) Create(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO menu_items (name, price, category, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, item.Name, item.Price, item.Category).Scan(&item.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("repository: failed to insert menu item: %w", err)
	}
	item.IsActive = true

	return nil
}

func (r *postgresRepository) Update(ctx context.Context, item *Item) error {
	query := `UPDATE menu_items SET name = $1, price = $2, category = $3 WHERE id = $4`

	cmdTag, err := r.db.Exec(ctx, query, item.Name, item.Price, item.Category, item.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("repository: failed to update menu item %d: %w", item.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}

	return nil
}

func (r *postgresRepository) setActive(ctx context.Context, id int64, active bool) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE menu_items SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("repository: failed to set menu item %d active=%t: %w", id, active, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// SoftDelete скрывает позицию из меню, не трогая исторические заказы.
func (r *postgresRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.setActive(ctx, id, false)
}

func (r *postgresRepository) Restore(ctx context.Context, id int64) error {
	return r.setActive(ctx, id, true)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
