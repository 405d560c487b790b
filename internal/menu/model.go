package menu

// Item — позиция меню. Цена в рублях, целым числом.
type Item struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Price    int    `json:"price" db:"price"`
	Category string `json:"category" db:"category"`
	IsActive bool   `json:"is_active" db:"is_active"`
}
