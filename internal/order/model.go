package order

import "time"

type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

func (s Status) String() string {
	return string(s)
}

// PaymentMethod — способ оплаты заказа. Значения хранятся в базе и
// участвуют в отчётах, менять их нельзя. Отображаемые названия — забота
// слоя представления.
type PaymentMethod string

const (
	PaymentQR       PaymentMethod = "qr"
	PaymentCard     PaymentMethod = "card"
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
)

func (p PaymentMethod) String() string {
	return string(p)
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentQR, PaymentCard, PaymentCash, PaymentTransfer:
		return true
	}
	return false
}

// Label — человекочитаемое название способа оплаты для чеков и отчётов.
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentQR:
		return "Оплата по QR"
	case PaymentCard:
		return "Оплата картой"
	case PaymentCash:
		return "Оплата наличными"
	case PaymentTransfer:
		return "Перевод"
	}
	return string(p)
}

// Order — счёт одного стола за один визит.
type Order struct {
	ID            int64          `json:"id" db:"id"`
	TableNumber   int            `json:"table_number" db:"table_number"`
	AdminID       int64          `json:"admin_id" db:"admin_id"`
	ShiftID       int64          `json:"shift_id" db:"shift_id"`
	Status        Status         `json:"status" db:"status"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	ClosedAt      *time.Time     `json:"closed_at,omitempty" db:"closed_at"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty" db:"payment_method"`
}

// LineItem — позиция внутри заказа. Название и цена копируются из меню
// в момент добавления: исторические заказы не должны меняться при правке меню.
type LineItem struct {
	ID       int64     `json:"id" db:"id"`
	OrderID  int64     `json:"order_id" db:"order_id"`
	ItemName string    `json:"item_name" db:"item_name"`
	Price    int       `json:"price" db:"price"`
	Quantity int       `json:"quantity" db:"quantity"`
	AddedAt  time.Time `json:"added_at" db:"added_at"`
}
