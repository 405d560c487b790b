package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrInvalidItem = errors.New("invalid menu item")

type Service interface {
	GetByID(ctx context.Context, id int64) (*Item, error)
	GetByName(ctx context.Context, name string) (*Item, error)
	Categories(ctx context.Context) ([]string, error)
	ItemsByCategory(ctx context.Context, category string) ([]Item, error)
	ListAll(ctx context.Context) ([]Item, error)
	ListActive(ctx context.Context) ([]Item, error)
	ListInactive(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validateItem(item *Item) error {
	item.Name = strings.TrimSpace(item.Name)
	item.Category = strings.TrimSpace(item.Category)
	if item.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if item.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidItem)
	}
	if item.Category == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidItem)
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByName(ctx context.Context, name string) (*Item, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *service) ItemsByCategory(ctx context.Context, category string) ([]Item, error) {
	return s.repo.ItemsByCategory(ctx, category)
}

func (s *service) ListAll(ctx context.Context) ([]Item, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) ListActive(ctx context.Context) ([]Item, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) ListInactive(ctx context.Context) ([]Item, error) {
	return s.repo.ListInactive(ctx)
}

func (s *service) Create(ctx context.Context, item *Item) error {
	if err := validateItem(item); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return err
	}

	log.Info().Str("item", item.Name).Int("price", item.Price).Str("category", item.Category).Msg("service: menu item created")
	return nil
}

func (s *service) Update(ctx context.Context, item *Item) error {
	if err := validateItem(item); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return err
	}

	log.Info().Int64("item_id", item.ID).Str("item", item.Name).Msg("service: menu item updated")
	return nil
}

// Delete скрывает позицию из меню. Строка остаётся в базе: на неё
// ссылаются исторические продажи.
func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	log.Info().Int64("item_id", id).Msg("service: menu item deleted")
	return nil
}

func (s *service) Restore(ctx context.Context, id int64) error {
	if err := s.repo.Restore(ctx, id); err != nil {
		return err
	}

	log.Info().Int64("item_id", id).Msg("service: menu item restored")
	return nil
}
