package report

import (
	"strings"

	"github.com/lounge-pos/backend/internal/shift"
)

// Витринные категории отчётов. Порядок фиксирован для вывода.
const (
	CategoryHookah    = "Кальяны"
	CategoryTea       = "Чай"
	CategoryCocktails = "Коктейли"
	CategoryDrinks    = "Напитки"
	CategoryOther     = "Другое"
)

// CategoryOrder — порядок вывода категорий в отчётах.
var CategoryOrder = []string{CategoryHookah, CategoryTea, CategoryCocktails, CategoryDrinks, CategoryOther}

var categoryLabels = map[string]string{
	CategoryHookah:    "🍁 Кальяны",
	CategoryTea:       "🍵 Чай",
	CategoryCocktails: "🍹 Коктейли",
	CategoryDrinks:    "🥤 Напитки",
	CategoryOther:     "📦 Другое",
}

// Подстроки для угадывания категории, когда позиции нет в справочнике
// меню: исторические продажи переживают удаление и переименование позиций.
var categoryKeywords = map[string][]string{
	CategoryHookah: {
		"кальян", "hookah", "calyan",
		"пенсионный", "стандарт", "премиум", "фруктовая", "сигарный", "парфюм",
	},
	CategoryTea: {
		"чай", "tea", "chai", "пуэр", "габа", "гречишный", "медовая",
		"малина", "мята", "наглый", "фрукт", "вишневый", "марроканский",
		"голубика", "смородиновый", "клубничный", "облепиховый",
	},
	CategoryCocktails: {
		"коктейль", "cocktail", "кокт", "пробирки", "в/кола", "санрайз", "лагуна", "фиеро",
	},
	CategoryDrinks: {
		"напиток", "drink", "сок", "вода", "газировка", "кола", "пиво",
		"энергетик", "фанта", "спрайт",
	},
}

// GroupByCategory раскладывает строки продаж по витринным категориям.
// Категория из справочника меню авторитетна; подбор по ключевым словам —
// только запасной ход для позиций, выпавших из справочника.
func GroupByCategory(sales []shift.ItemSales, itemCategories map[string]string) map[string]*CategoryTotals {
	grouped := make(map[string]*CategoryTotals, len(CategoryOrder))
	for _, key := range CategoryOrder {
		grouped[key] = &CategoryTotals{
			Label: categoryLabels[key],
			Items: make(map[string]CategoryItemTotals),
		}
	}

	for _, sale := range sales {
		category, ok := itemCategories[sale.ItemName]
		if !ok || grouped[category] == nil {
			category = CategoryOther
		}
		if category == CategoryOther {
			category = guessCategory(sale.ItemName)
		}

		bucket := grouped[category]
		totals := bucket.Items[sale.ItemName]
		totals.Quantity += sale.Quantity
		totals.TotalAmount += sale.TotalAmount
		bucket.Items[sale.ItemName] = totals
		bucket.TotalQuantity += sale.Quantity
		bucket.TotalAmount += sale.TotalAmount
	}

	return grouped
}

func guessCategory(itemName string) string {
	lower := strings.ToLower(itemName)
	for _, category := range []string{CategoryHookah, CategoryTea, CategoryCocktails, CategoryDrinks} {
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(lower, keyword) {
				return category
			}
		}
	}
	return CategoryOther
}
