package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lounge-pos/backend/internal/menu"
)

// MenuHandler handles HTTP requests for the menu catalog.
type MenuHandler struct {
	svc menu.Service
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(svc menu.Service) *MenuHandler {
	return &MenuHandler{svc: svc}
}

// ListItems lists menu items. The scope query parameter selects between
// active (default), inactive and all items.
func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	var (
		items []menu.Item
		err   error
	)

	switch r.URL.Query().Get("scope") {
	case "", "active":
		items, err = h.svc.ListActive(r.Context())
	case "inactive":
		items, err = h.svc.ListInactive(r.Context())
	case "all":
		items, err = h.svc.ListAll(r.Context())
	default:
		http.Error(w, "invalid scope, want active, inactive or all", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list menu items")
		http.Error(w, "failed to list menu items", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// ListCategories lists the categories that have active items.
func (h *MenuHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list menu categories")
		http.Error(w, "failed to list categories", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

// ListItemsByCategory lists the active items of one category.
func (h *MenuHandler) ListItemsByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if category == "" {
		http.Error(w, "category is required", http.StatusBadRequest)
		return
	}

	items, err := h.svc.ItemsByCategory(r.Context(), category)
	if err != nil {
		log.Error().Err(err).Str("category", category).Msg("handler: failed to list category items")
		http.Error(w, "failed to list items", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// GetItem returns one menu item by id.
func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	item, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			http.Error(w, "menu item not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int64("item_id", id).Msg("handler: failed to get menu item")
		http.Error(w, "failed to get menu item", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// CreateItem adds a new item to the menu.
func (h *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var item menu.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.svc.Create(r.Context(), &item); err != nil {
		switch {
		case errors.Is(err, menu.ErrInvalidItem):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, menu.ErrDuplicateName):
			http.Error(w, "menu item with this name already exists", http.StatusConflict)
		default:
			log.Error().Err(err).Str("item", item.Name).Msg("handler: failed to create menu item")
			http.Error(w, "failed to create menu item", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// UpdateItem changes the name, price or category of a menu item.
func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	var item menu.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	item.ID = id

	if err := h.svc.Update(r.Context(), &item); err != nil {
		switch {
		case errors.Is(err, menu.ErrInvalidItem):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, menu.ErrItemNotFound):
			http.Error(w, "menu item not found", http.StatusNotFound)
		case errors.Is(err, menu.ErrDuplicateName):
			http.Error(w, "menu item with this name already exists", http.StatusConflict)
		default:
			log.Error().Err(err).Int64("item_id", id).Msg("handler: failed to update menu item")
			http.Error(w, "failed to update menu item", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// DeleteItem hides a menu item without touching historical orders.
func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			http.Error(w, "menu item not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int64("item_id", id).Msg("handler: failed to delete menu item")
		http.Error(w, "failed to delete menu item", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RestoreItem brings a hidden menu item back.
func (h *MenuHandler) RestoreItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Restore(r.Context(), id); err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			http.Error(w, "menu item not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int64("item_id", id).Msg("handler: failed to restore menu item")
		http.Error(w, "failed to restore menu item", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
