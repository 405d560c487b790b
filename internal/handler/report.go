package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lounge-pos/backend/internal/order"
	"github.com/lounge-pos/backend/internal/report"
	"github.com/lounge-pos/backend/internal/shift"
)

// ReportHandler handles HTTP requests for settlement reports.
type ReportHandler struct {
	svc report.Service
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(svc report.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// paymentStatView дополняет код способа оплаты человекочитаемым названием.
type paymentStatView struct {
	Label       string `json:"label"`
	Count       int    `json:"count"`
	TotalAmount int    `json:"total_amount"`
}

func paymentStatsView(stats report.PaymentStats) map[string]paymentStatView {
	view := make(map[string]paymentStatView, len(stats))
	for method, stat := range stats {
		view[method] = paymentStatView{
			Label:       order.PaymentMethod(method).Label(),
			Count:       stat.Count,
			TotalAmount: stat.TotalAmount,
		}
	}
	return view
}

// writeSales renders a sales breakdown, optionally grouped by category
// when the request carries ?grouped=true.
func (h *ReportHandler) writeSales(w http.ResponseWriter, r *http.Request, sales []shift.ItemSales) {
	if r.URL.Query().Get("grouped") != "true" {
		writeJSON(w, http.StatusOK, sales)
		return
	}

	grouped, err := h.svc.GroupSalesByCategory(r.Context(), sales)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to group sales by category")
		http.Error(w, "failed to group sales", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, grouped)
}

func (h *ReportHandler) SalesByShift(w http.ResponseWriter, r *http.Request) {
	number, monthYear, ok := shiftParams(w, r)
	if !ok {
		return
	}

	sales, err := h.svc.SalesByShift(r.Context(), number, monthYear)
	if err != nil {
		h.reportError(w, err, "failed to get sales report")
		return
	}
	h.writeSales(w, r, sales)
}

func (h *ReportHandler) SalesByMonth(w http.ResponseWriter, r *http.Request) {
	sales, err := h.svc.SalesByMonth(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		h.reportError(w, err, "failed to get sales report")
		return
	}
	h.writeSales(w, r, sales)
}

func (h *ReportHandler) SalesByYear(w http.ResponseWriter, r *http.Request) {
	sales, err := h.svc.SalesByYear(r.Context(), chi.URLParam(r, "year"))
	if err != nil {
		h.reportError(w, err, "failed to get sales report")
		return
	}
	h.writeSales(w, r, sales)
}

func (h *ReportHandler) SalesByPeriod(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(w, r)
	if !ok {
		return
	}

	sales, err := h.svc.SalesByPeriod(r.Context(), period)
	if err != nil {
		h.reportError(w, err, "failed to get sales report")
		return
	}
	h.writeSales(w, r, sales)
}

func (h *ReportHandler) RevenueByShift(w http.ResponseWriter, r *http.Request) {
	number, monthYear, ok := shiftParams(w, r)
	if !ok {
		return
	}

	revenue, err := h.svc.RevenueByShift(r.Context(), number, monthYear)
	if err != nil {
		h.reportError(w, err, "failed to get revenue report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total_revenue": revenue})
}

func (h *ReportHandler) RevenueByMonth(w http.ResponseWriter, r *http.Request) {
	revenue, err := h.svc.RevenueByMonth(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		h.reportError(w, err, "failed to get revenue report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total_revenue": revenue})
}

func (h *ReportHandler) RevenueByYear(w http.ResponseWriter, r *http.Request) {
	revenue, err := h.svc.RevenueByYear(r.Context(), chi.URLParam(r, "year"))
	if err != nil {
		h.reportError(w, err, "failed to get revenue report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total_revenue": revenue})
}

func (h *ReportHandler) RevenueByPeriod(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(w, r)
	if !ok {
		return
	}

	revenue, err := h.svc.RevenueByPeriod(r.Context(), period)
	if err != nil {
		h.reportError(w, err, "failed to get revenue report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total_revenue": revenue})
}

func (h *ReportHandler) PaymentStatsByShift(w http.ResponseWriter, r *http.Request) {
	number, monthYear, ok := shiftParams(w, r)
	if !ok {
		return
	}

	stats, err := h.svc.PaymentStatsByShift(r.Context(), number, monthYear)
	if err != nil {
		h.reportError(w, err, "failed to get payment statistics")
		return
	}
	writeJSON(w, http.StatusOK, paymentStatsView(stats))
}

func (h *ReportHandler) PaymentStatsByMonth(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.PaymentStatsByMonth(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		h.reportError(w, err, "failed to get payment statistics")
		return
	}
	writeJSON(w, http.StatusOK, paymentStatsView(stats))
}

func (h *ReportHandler) PaymentStatsByYear(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.PaymentStatsByYear(r.Context(), chi.URLParam(r, "year"))
	if err != nil {
		h.reportError(w, err, "failed to get payment statistics")
		return
	}
	writeJSON(w, http.StatusOK, paymentStatsView(stats))
}

func (h *ReportHandler) PaymentStatsByPeriod(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(w, r)
	if !ok {
		return
	}

	stats, err := h.svc.PaymentStatsByPeriod(r.Context(), period)
	if err != nil {
		h.reportError(w, err, "failed to get payment statistics")
		return
	}
	writeJSON(w, http.StatusOK, paymentStatsView(stats))
}

func (h *ReportHandler) SpentBonusesByShift(w http.ResponseWriter, r *http.Request) {
	number, monthYear, ok := shiftParams(w, r)
	if !ok {
		return
	}

	total, err := h.svc.SpentBonusesByShift(r.Context(), number, monthYear)
	if err != nil {
		h.reportError(w, err, "failed to get spent bonuses")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"spent_bonuses": total})
}

func (h *ReportHandler) SpentBonusesByMonth(w http.ResponseWriter, r *http.Request) {
	total, err := h.svc.SpentBonusesByMonth(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		h.reportError(w, err, "failed to get spent bonuses")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"spent_bonuses": total})
}

func (h *ReportHandler) SpentBonusesByYear(w http.ResponseWriter, r *http.Request) {
	total, err := h.svc.SpentBonusesByYear(r.Context(), chi.URLParam(r, "year"))
	if err != nil {
		h.reportError(w, err, "failed to get spent bonuses")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"spent_bonuses": total})
}

func (h *ReportHandler) SpentBonusesByPeriod(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(w, r)
	if !ok {
		return
	}

	total, err := h.svc.SpentBonusesByPeriod(r.Context(), period)
	if err != nil {
		h.reportError(w, err, "failed to get spent bonuses")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"spent_bonuses": total})
}

func (h *ReportHandler) reportError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, shift.ErrShiftNotFound) {
		http.Error(w, "shift not found", http.StatusNotFound)
		return
	}
	log.Error().Err(err).Msg("handler: " + message)
	http.Error(w, message, http.StatusInternalServerError)
}

func periodParam(w http.ResponseWriter, r *http.Request) (report.Period, bool) {
	period := report.Period(chi.URLParam(r, "period"))
	if !period.Valid() {
		http.Error(w, "invalid period, want all, month or year", http.StatusBadRequest)
		return "", false
	}
	return period, true
}
