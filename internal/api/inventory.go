package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nikhil/procurement-ai-agent/backend/internal/models"
)

var allowedUploadExts = map[string]bool{
	".csv": true, ".txt": true, ".tsv": true, ".json": true,
}

// ListInventory returns every inventory item.
func (h *Handler) ListInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if items == nil {
		items = []models.InventoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GetInventoryItem returns a single inventory item by id.
func (h *Handler) GetInventoryItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := h.inventory.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// AddInventoryItem creates an inventory item.
func (h *Handler) AddInventoryItem(w http.ResponseWriter, r *http.Request) {
	var item models.InventoryItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil || item.ProductName == "" || item.ItemCode == "" {
		writeError(w, http.StatusBadRequest, "product_name and item_code are required")
		return
	}

	saved, err := h.inventory.Add(r.Context(), &item)
	if err != nil {
		log.Printf("inventory add error: %v", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"item":    saved,
		"message": "Item added successfully",
	})
}

// UpdateInventoryItem updates the item with the given item code.
func (h *Handler) UpdateInventoryItem(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "itemCode")
	var item models.InventoryItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.inventory.Update(r.Context(), code, &item); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Item updated successfully"})
}

// DeleteInventoryItem removes the item with the given item code.
func (h *Handler) DeleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "itemCode")
	if err := h.inventory.Delete(r.Context(), code); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Item deleted successfully"})
}

// UploadInventory parses an uploaded stock document through the
// inventory-parsing capability and upserts the extracted items.
func (h *Handler) UploadInventory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "No file uploaded"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil || header.Filename == "" {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "No file selected"})
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); !allowedUploadExts[ext] {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Invalid file type"})
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Could not read uploaded file"})
		return
	}

	items, err := h.agents.ParseInventory(r.Context(), string(content))
	if err != nil {
		log.Printf("inventory parse error: %v", err)
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": err.Error()})
		return
	}

	if err := h.inventory.Upsert(r.Context(), items); err != nil {
		log.Printf("inventory upsert error: %v", err)
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "File processed successfully",
		"items":   items,
	})
}
