package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lounge-pos/backend/internal/menu"
)

var (
	ErrNoOpenShift    = errors.New("no open shift")
	ErrTableBusy      = errors.New("table already has an active order")
	ErrItemNotInMenu  = errors.New("item is not in the menu")
	ErrOrderNotActive = errors.New("order is already closed")
)

// RemovalResult — исход удаления одной единицы позиции.
type RemovalResult string

const (
	RemovalDecremented RemovalResult = "decremented"
	RemovalDeleted     RemovalResult = "deleted"
)

// Catalog — меню, по которому прайсуются позиции. Нужен только поиск
// активной позиции по названию.
type Catalog interface {
	GetActiveByName(ctx context.Context, name string) (*menu.Item, error)
}

// ShiftSource сообщает id открытой смены. Возвращает ErrNoOpenShift,
// если смена не открыта.
type ShiftSource interface {
	ActiveShiftID(ctx context.Context) (int64, error)
}

type Service interface {
	CreateOrder(ctx context.Context, tableNumber int, adminID int64) (*Order, error)
	AddLineItem(ctx context.Context, orderID int64, itemName string, quantity int) error
	RemoveOneUnit(ctx context.Context, orderID int64, itemName string) (RemovalResult, error)
	GetLineItems(ctx context.Context, orderID int64) ([]LineItem, error)
	ComputeTotal(ctx context.Context, orderID int64) (int, error)
	CloseOrder(ctx context.Context, orderID int64, method PaymentMethod) error
	GetActiveOrders(ctx context.Context) ([]Order, error)
	GetActiveOrderForTable(ctx context.Context, tableNumber int) (*Order, error)
	SettleAllOrders(ctx context.Context) (*SettleResult, error)
}

// SettleResult — итог массового расчёта активных заказов в конце смены.
type SettleResult struct {
	SettledCount int `json:"settled_count"`
	SkippedCount int `json:"skipped_count"`
	TotalRevenue int `json:"total_revenue"`
}

type service struct {
	repo    Repository
	catalog Catalog
	shifts  ShiftSource
	loc     *time.Location
}

func NewService(repo Repository, catalog Catalog, shifts ShiftSource, loc *time.Location) Service {
	return &service{
		repo:    repo,
		catalog: catalog,
		shifts:  shifts,
		loc:     loc,
	}
}

func (s *service) now() time.Time {
	return time.Now().In(s.loc)
}

// CreateOrder открывает счёт стола. Заказ сразу привязывается к открытой
// смене: без открытой смены заказ не попал бы ни в один расчёт.
func (s *service) CreateOrder(ctx context.Context, tableNumber int, adminID int64) (*Order, error) {
	shiftID, err := s.shifts.ActiveShiftID(ctx)
	if err != nil {
		if errors.Is(err, ErrNoOpenShift) {
			log.Warn().Int("table", tableNumber).Msg("service: order creation refused, no open shift")
			return nil, ErrNoOpenShift
		}
		return nil, fmt.Errorf("service: failed to resolve active shift: %w", err)
	}

	existing, err := s.repo.GetActiveByTable(ctx, tableNumber)
	if err != nil && !errors.Is(err, ErrOrderNotFound) {
		return nil, fmt.Errorf("service: failed to check active order for table %d: %w", tableNumber, err)
	}
	if existing != nil {
		log.Warn().Int("table", tableNumber).Int64("order_id", existing.ID).Msg("service: order creation refused, table busy")
		return nil, fmt.Errorf("%w: order %d", ErrTableBusy, existing.ID)
	}

	o := &Order{
		TableNumber: tableNumber,
		AdminID:     adminID,
		ShiftID:     shiftID,
		Status:      StatusActive,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, o); err != nil {
		log.Error().Err(err).Int("table", tableNumber).Msg("service: failed to create order")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Int64("order_id", o.ID).Int("table", tableNumber).Int64("shift_id", shiftID).Msg("service: order created")
	return o, nil
}

// AddLineItem добавляет позицию в заказ, копируя название и цену из меню.
// Повторное добавление той же позиции увеличивает количество существующей
// строки, дубликаты (order_id, item_name) не создаются.
func (s *service) AddLineItem(ctx context.Context, orderID int64, itemName string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("service: quantity must be positive, got %d", quantity)
	}

	if _, err := s.repo.GetByID(ctx, orderID); err != nil {
		return err
	}

	menuItem, err := s.catalog.GetActiveByName(ctx, itemName)
	if err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			log.Warn().Int64("order_id", orderID).Str("item", itemName).Msg("service: item not in menu")
			return ErrItemNotInMenu
		}
		return fmt.Errorf("service: failed to look up menu item %q: %w", itemName, err)
	}

	existing, err := s.repo.GetItem(ctx, orderID, menuItem.Name)
	if err != nil && !errors.Is(err, ErrLineItemNotFound) {
		return fmt.Errorf("service: failed to look up line item %q: %w", itemName, err)
	}
	if existing != nil {
		if err := s.repo.AddItemQuantity(ctx, existing.ID, quantity); err != nil {
			return fmt.Errorf("service: failed to increment line item: %w", err)
		}
		return nil
	}

	item := &LineItem{
		OrderID:  orderID,
		ItemName: menuItem.Name,
		Price:    menuItem.Price,
		Quantity: quantity,
		AddedAt:  s.now(),
	}
	if err := s.repo.InsertItem(ctx, item); err != nil {
		return fmt.Errorf("service: failed to add line item: %w", err)
	}

	return nil
}

// RemoveOneUnit убирает одну единицу позиции: количество уменьшается,
// последняя единица удаляет строку целиком.
func (s *service) RemoveOneUnit(ctx context.Context, orderID int64, itemName string) (RemovalResult, error) {
	item, err := s.repo.GetItem(ctx, orderID, itemName)
	if err != nil {
		if errors.Is(err, ErrLineItemNotFound) {
			return "", ErrLineItemNotFound
		}
		return "", fmt.Errorf("service: failed to look up line item %q: %w", itemName, err)
	}

	if item.Quantity > 1 {
		if err := s.repo.SetItemQuantity(ctx, item.ID, item.Quantity-1); err != nil {
			return "", fmt.Errorf("service: failed to decrement line item: %w", err)
		}
		return RemovalDecremented, nil
	}

	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return "", fmt.Errorf("service: failed to delete line item: %w", err)
	}
	return RemovalDeleted, nil
}

func (s *service) GetLineItems(ctx context.Context, orderID int64) ([]LineItem, error) {
	return s.repo.ListItems(ctx, orderID)
}

// ComputeTotal — сумма price*quantity по позициям. Пустой заказ даёт 0.
func (s *service) ComputeTotal(ctx context.Context, orderID int64) (int, error) {
	items, err := s.repo.ListItems(ctx, orderID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, item := range items {
		total += item.Price * item.Quantity
	}
	return total, nil
}

func (s *service) CloseOrder(ctx context.Context, orderID int64, method PaymentMethod) error {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status != StatusActive {
		return ErrOrderNotActive
	}

	if err := s.repo.Close(ctx, orderID, &method, s.now()); err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("service: failed to close order")
		return fmt.Errorf("service: failed to close order: %w", err)
	}

	log.Info().Int64("order_id", orderID).Str("payment_method", string(method)).Msg("service: order closed")
	return nil
}

func (s *service) GetActiveOrders(ctx context.Context) ([]Order, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) GetActiveOrderForTable(ctx context.Context, tableNumber int) (*Order, error) {
	return s.repo.GetActiveByTable(ctx, tableNumber)
}

// SettleAllOrders закрывает все активные заказы одним проходом, чтобы можно
// было закрыть смену. Заказы без позиций пропускаются, способ оплаты
// остаётся пустым — такие заказы не попадают в статистику по оплате.
func (s *service) SettleAllOrders(ctx context.Context) (*SettleResult, error) {
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	result := &SettleResult{}
	for _, o := range active {
		items, err := s.repo.ListItems(ctx, o.ID)
		if err != nil {
			log.Error().Err(err).Int64("order_id", o.ID).Msg("service: failed to list items during settle")
			result.SkippedCount++
			continue
		}
		if len(items) == 0 {
			result.SkippedCount++
			continue
		}

		total := 0
		for _, item := range items {
			total += item.Price * item.Quantity
		}

		if err := s.repo.Close(ctx, o.ID, nil, s.now()); err != nil {
			log.Error().Err(err).Int64("order_id", o.ID).Msg("service: failed to close order during settle")
			result.SkippedCount++
			continue
		}

		result.SettledCount++
		result.TotalRevenue += total
	}

	log.Info().Int("settled", result.SettledCount).Int("skipped", result.SkippedCount).Int("revenue", result.TotalRevenue).Msg("service: bulk settle finished")
	return result, nil
}
