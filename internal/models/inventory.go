package models

import "time"

// InventoryItem is a row in the PostgreSQL inventory table.
type InventoryItem struct {
	ID           string    `json:"id"`
	ProductName  string    `json:"product_name"`
	ItemCode     string    `json:"item_code"`
	UnitSize     string    `json:"unit_size"`
	UnitType     string    `json:"unit_type"`
	CurrentStock int       `json:"current_stock"`
	ReorderLevel int       `json:"reorder_level"`
	CreatedAt    time.Time `json:"created_at"`
}
