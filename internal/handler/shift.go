package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lounge-pos/backend/internal/shift"
)

// ShiftHandler handles HTTP requests for shifts.
type ShiftHandler struct {
	svc shift.Service
}

// NewShiftHandler creates a new ShiftHandler.
func NewShiftHandler(svc shift.Service) *ShiftHandler {
	return &ShiftHandler{svc: svc}
}

type openShiftRequest struct {
	AdminID int64 `json:"admin_id"`
}

// OpenShift opens a new shift in the current month.
func (h *ShiftHandler) OpenShift(w http.ResponseWriter, r *http.Request) {
	var req openShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sh, err := h.svc.Open(r.Context(), req.AdminID)
	if err != nil {
		switch {
		case errors.Is(err, shift.ErrActiveOrdersRemain):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, shift.ErrNumbersExhausted):
			http.Error(w, "no free shift numbers left in this month", http.StatusConflict)
		default:
			log.Error().Err(err).Msg("handler: failed to open shift")
			http.Error(w, "failed to open shift", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, sh)
}

// CloseShift closes a shift and returns its settlement summary.
func (h *ShiftHandler) CloseShift(w http.ResponseWriter, r *http.Request) {
	number, monthYear, ok := shiftParams(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.Close(r.Context(), number, monthYear)
	if err != nil {
		switch {
		case errors.Is(err, shift.ErrShiftNotFound):
			http.Error(w, "shift not found", http.StatusNotFound)
		case errors.Is(err, shift.ErrActiveOrdersRemain):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			log.Error().Err(err).Int("shift_number", number).Str("month_year", monthYear).Msg("handler: failed to close shift")
			http.Error(w, "failed to close shift", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// GetActiveShift returns the currently open shift.
func (h *ShiftHandler) GetActiveShift(w http.ResponseWriter, r *http.Request) {
	sh, err := h.svc.Active(r.Context())
	if err != nil {
		if errors.Is(err, shift.ErrNoOpenShift) {
			http.Error(w, "no open shift", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("handler: failed to get active shift")
		http.Error(w, "failed to get active shift", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, sh)
}

// GetShift returns one shift by number and month.
func (h *ShiftHandler) GetShift(w http.ResponseWriter, r *http.Request) {
	number, monthYear, ok := shiftParams(w, r)
	if !ok {
		return
	}

	sh, err := h.svc.ByNumberAndMonth(r.Context(), number, monthYear)
	if err != nil {
		if errors.Is(err, shift.ErrShiftNotFound) {
			http.Error(w, "shift not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int("shift_number", number).Str("month_year", monthYear).Msg("handler: failed to get shift")
		http.Error(w, "failed to get shift", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, sh)
}

// GetShiftSummary returns the frozen settlement summary of a closed shift.
func (h *ShiftHandler) GetShiftSummary(w http.ResponseWriter, r *http.Request) {
	number, monthYear, ok := shiftParams(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.Summary(r.Context(), number, monthYear)
	if err != nil {
		if errors.Is(err, shift.ErrShiftNotFound) {
			http.Error(w, "shift not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int("shift_number", number).Str("month_year", monthYear).Msg("handler: failed to get shift summary")
		http.Error(w, "failed to get shift summary", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// GetNextNumber returns the number the next shift of a month would get.
func (h *ShiftHandler) GetNextNumber(w http.ResponseWriter, r *http.Request) {
	monthYear := chi.URLParam(r, "month")
	if monthYear == "" {
		http.Error(w, "month is required", http.StatusBadRequest)
		return
	}

	number, err := h.svc.NextNumber(r.Context(), monthYear)
	if err != nil {
		log.Error().Err(err).Str("month_year", monthYear).Msg("handler: failed to get next shift number")
		http.Error(w, "failed to get next shift number", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"next_number": number})
}

// ListClosedByMonth lists the closed shifts of one month.
func (h *ShiftHandler) ListClosedByMonth(w http.ResponseWriter, r *http.Request) {
	monthYear := chi.URLParam(r, "month")
	if monthYear == "" {
		http.Error(w, "month is required", http.StatusBadRequest)
		return
	}

	shifts, err := h.svc.ListClosedByMonth(r.Context(), monthYear)
	if err != nil {
		log.Error().Err(err).Str("month_year", monthYear).Msg("handler: failed to list shifts")
		http.Error(w, "failed to list shifts", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, shifts)
}

// ListClosedYears lists years that have at least one closed shift.
func (h *ShiftHandler) ListClosedYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.svc.ClosedYears(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list shift years")
		http.Error(w, "failed to list years", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, years)
}

// ListClosedMonths lists months of a year that have closed shifts.
func (h *ShiftHandler) ListClosedMonths(w http.ResponseWriter, r *http.Request) {
	year := chi.URLParam(r, "year")
	if year == "" {
		http.Error(w, "year is required", http.StatusBadRequest)
		return
	}

	months, err := h.svc.ClosedMonths(r.Context(), year)
	if err != nil {
		log.Error().Err(err).Str("year", year).Msg("handler: failed to list shift months")
		http.Error(w, "failed to list months", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, months)
}

// shiftParams reads the {month}/{number} pair shared by shift routes.
func shiftParams(w http.ResponseWriter, r *http.Request) (int, string, bool) {
	monthYear := chi.URLParam(r, "month")
	if monthYear == "" {
		http.Error(w, "month is required", http.StatusBadRequest)
		return 0, "", false
	}
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		http.Error(w, "invalid shift number", http.StatusBadRequest)
		return 0, "", false
	}
	return number, monthYear, true
}
