package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikhil/procurement-ai-agent/backend/internal/models"
)

// ListOrders returns all purchase orders, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder returns a single purchase order.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// SaveOrder persists a new purchase order.
func (h *Handler) SaveOrder(w http.ResponseWriter, r *http.Request) {
	var order models.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil || len(order.Items) == 0 {
		writeError(w, http.StatusBadRequest, "invalid order")
		return
	}

	id, err := h.orders.Insert(r.Context(), &order)
	if err != nil {
		log.Printf("order save error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save order")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"id":      id,
		"message": "Order saved successfully",
	})
}
