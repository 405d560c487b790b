package report

// Period — отчётный период для сводных проекций.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodAll, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// PaymentStat — количество заказов и сумма по одному способу оплаты.
type PaymentStat struct {
	Count       int `json:"count"`
	TotalAmount int `json:"total_amount"`
}

// PaymentStats — разбивка закрытых заказов по способам оплаты.
type PaymentStats map[string]PaymentStat

// CategoryItemTotals — продажи одной позиции внутри категории.
type CategoryItemTotals struct {
	Quantity    int `json:"quantity"`
	TotalAmount int `json:"total_amount"`
}

// CategoryTotals — итоги одной витринной категории.
type CategoryTotals struct {
	Label         string                        `json:"label"`
	Items         map[string]CategoryItemTotals `json:"items"`
	TotalQuantity int                           `json:"total_quantity"`
	TotalAmount   int                           `json:"total_amount"`
}
