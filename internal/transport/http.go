package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lounge-pos/backend/internal/handler"
	"github.com/lounge-pos/backend/internal/menu"
	"github.com/lounge-pos/backend/internal/order"
	"github.com/lounge-pos/backend/internal/report"
	"github.com/lounge-pos/backend/internal/shift"
	"github.com/lounge-pos/backend/internal/user"
)

// NewRouter собирает репозитории, сервисы и хендлеры в один роутер.
func NewRouter(pool *pgxpool.Pool, loc *time.Location) *chi.Mux {
	menuRepo := menu.NewRepository(pool)
	orderRepo := order.NewRepository(pool)
	shiftRepo := shift.NewRepository(pool)
	userRepo := user.NewRepository(pool)
	reportRepo := report.NewRepository(pool)

	shiftSvc := shift.NewService(shiftRepo, orderRepo, userRepo, loc)
	orderSvc := order.NewService(orderRepo, menuRepo, shiftSvc, loc)
	menuSvc := menu.NewService(menuRepo)
	reportSvc := report.NewService(reportRepo, shiftRepo, menuRepo, loc)

	orderHandler := handler.NewOrderHandler(orderSvc)
	shiftHandler := handler.NewShiftHandler(shiftSvc)
	menuHandler := handler.NewMenuHandler(menuSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orderHandler.CreateOrder)
		r.Get("/active", orderHandler.GetActiveOrders)
		r.Get("/active/table/{table}", orderHandler.GetActiveOrderForTable)
		r.Post("/settle", orderHandler.SettleAll)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/items", orderHandler.GetLineItems)
			r.Post("/items", orderHandler.AddLineItem)
			r.Delete("/items/{name}", orderHandler.RemoveLineItemUnit)
			r.Get("/total", orderHandler.GetTotal)
			r.Post("/close", orderHandler.CloseOrder)
		})
	})

	r.Route("/shifts", func(r chi.Router) {
		r.Post("/", shiftHandler.OpenShift)
		r.Get("/active", shiftHandler.GetActiveShift)
		r.Get("/years", shiftHandler.ListClosedYears)
		r.Get("/years/{year}/months", shiftHandler.ListClosedMonths)
		r.Get("/{month}", shiftHandler.ListClosedByMonth)
		r.Get("/{month}/next-number", shiftHandler.GetNextNumber)
		r.Get("/{month}/{number}", shiftHandler.GetShift)
		r.Get("/{month}/{number}/summary", shiftHandler.GetShiftSummary)
		r.Post("/{month}/{number}/close", shiftHandler.CloseShift)
	})

	r.Route("/menu", func(r chi.Router) {
		r.Get("/", menuHandler.ListItems)
		r.Post("/", menuHandler.CreateItem)
		r.Get("/categories", menuHandler.ListCategories)
		r.Get("/categories/{category}", menuHandler.ListItemsByCategory)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", menuHandler.GetItem)
			r.Put("/", menuHandler.UpdateItem)
			r.Delete("/", menuHandler.DeleteItem)
			r.Post("/restore", menuHandler.RestoreItem)
		})
	})

	r.Route("/reports", func(r chi.Router) {
		r.Route("/sales", func(r chi.Router) {
			r.Get("/shift/{month}/{number}", reportHandler.SalesByShift)
			r.Get("/month/{month}", reportHandler.SalesByMonth)
			r.Get("/year/{year}", reportHandler.SalesByYear)
			r.Get("/period/{period}", reportHandler.SalesByPeriod)
		})
		r.Route("/revenue", func(r chi.Router) {
			r.Get("/shift/{month}/{number}", reportHandler.RevenueByShift)
			r.Get("/month/{month}", reportHandler.RevenueByMonth)
			r.Get("/year/{year}", reportHandler.RevenueByYear)
			r.Get("/period/{period}", reportHandler.RevenueByPeriod)
		})
		r.Route("/payments", func(r chi.Router) {
			r.Get("/shift/{month}/{number}", reportHandler.PaymentStatsByShift)
			r.Get("/month/{month}", reportHandler.PaymentStatsByMonth)
			r.Get("/year/{year}", reportHandler.PaymentStatsByYear)
			r.Get("/period/{period}", reportHandler.PaymentStatsByPeriod)
		})
		r.Route("/bonuses", func(r chi.Router) {
			r.Get("/shift/{month}/{number}", reportHandler.SpentBonusesByShift)
			r.Get("/month/{month}", reportHandler.SpentBonusesByMonth)
			r.Get("/year/{year}", reportHandler.SpentBonusesByYear)
			r.Get("/period/{period}", reportHandler.SpentBonusesByPeriod)
		})
	})

	return r
}
