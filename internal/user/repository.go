package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

// Репозиторий операторов. Ядро расчётов пользователей не изменяет,
// здесь только чтение для подписей в отчётах.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	DisplayName(ctx context.Context, id int64) (string, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, COALESCE(telegram_id, 0), COALESCE(first_name, ''), COALESCE(last_name, ''),
		       COALESCE(phone, ''), bonus_balance, registered_at, is_active
		FROM users
		WHERE id = $1
	`

	var u User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.TelegramID,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.BonusBalance,
		&u.RegisteredAt,
		&u.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by id %d: %w", id, err)
	}

	return &u, nil
}

// DisplayName собирает имя оператора для отчётов.
// Если пользователь не найден или без имени, возвращает "ID: N".
func (r *postgresRepository) DisplayName(ctx context.Context, id int64) (string, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return fmt.Sprintf("ID: %d", id), nil
		}
		return "", err
	}

	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = fmt.Sprintf("ID: %d", id)
	}
	return name, nil
}
