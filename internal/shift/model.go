package shift

import "time"

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// MonthKey — ключ месяца вида "2006-01". Нумерация смен уникальна внутри
// такого ключа и каждый месяц начинается заново с 1.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// Shift — учётный период одного оператора. TotalRevenue и TotalOrders
// денормализованы: считаются и замораживаются при закрытии.
type Shift struct {
	ID           int64      `json:"id" db:"id"`
	Number       int        `json:"shift_number" db:"shift_number"`
	MonthYear    string     `json:"month_year" db:"month_year"`
	AdminID      int64      `json:"admin_id" db:"admin_id"`
	OpenedAt     time.Time  `json:"opened_at" db:"opened_at"`
	ClosedAt     *time.Time `json:"closed_at,omitempty" db:"closed_at"`
	TotalRevenue int        `json:"total_revenue" db:"total_revenue"`
	TotalOrders  int        `json:"total_orders" db:"total_orders"`
	Status       Status     `json:"status" db:"status"`
}

// ItemSales — продажи одной позиции за смену.
type ItemSales struct {
	ItemName    string `json:"item_name" db:"item_name"`
	Quantity    int    `json:"quantity" db:"quantity"`
	TotalAmount int    `json:"total_amount" db:"total_amount"`
}

// Summary — итог закрытия смены для показа оператору.
type Summary struct {
	ShiftNumber  int         `json:"shift_number"`
	MonthYear    string      `json:"month_year"`
	AdminName    string      `json:"admin_name"`
	OpenedAt     time.Time   `json:"opened_at"`
	ClosedAt     time.Time   `json:"closed_at"`
	TotalRevenue int         `json:"total_revenue"`
	TotalOrders  int         `json:"total_orders"`
	Sales        []ItemSales `json:"sales"`
}
