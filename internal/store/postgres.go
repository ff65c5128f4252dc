package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhil/procurement-ai-agent/backend/internal/models"
)

// InventoryStore handles inventory item CRUD against PostgreSQL.
type InventoryStore struct {
	pool *pgxpool.Pool
}

func NewInventoryStore(pool *pgxpool.Pool) *InventoryStore {
	return &InventoryStore{pool: pool}
}

// Migrate creates the inventory table if it doesn't exist.
func (s *InventoryStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS inventory_items (
			id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			product_name  VARCHAR(255) NOT NULL,
			item_code     VARCHAR(100) UNIQUE NOT NULL,
			unit_size     VARCHAR(50),
			unit_type     VARCHAR(50),
			current_stock INT NOT NULL DEFAULT 0,
			reorder_level INT NOT NULL DEFAULT 0,
			created_at    TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	return err
}

func (s *InventoryStore) List(ctx context.Context) ([]models.InventoryItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, product_name, item_code, unit_size, unit_type, current_stock, reorder_level, created_at
		 FROM inventory_items ORDER BY product_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.InventoryItem
	for rows.Next() {
		var it models.InventoryItem
		if err := rows.Scan(&it.ID, &it.ProductName, &it.ItemCode, &it.UnitSize, &it.UnitType,
			&it.CurrentStock, &it.ReorderLevel, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *InventoryStore) GetByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	var it models.InventoryItem
	err := s.pool.QueryRow(ctx,
		`SELECT id, product_name, item_code, unit_size, unit_type, current_stock, reorder_level, created_at
		 FROM inventory_items WHERE id = $1`, id,
	).Scan(&it.ID, &it.ProductName, &it.ItemCode, &it.UnitSize, &it.UnitType,
		&it.CurrentStock, &it.ReorderLevel, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *InventoryStore) Add(ctx context.Context, it *models.InventoryItem) (*models.InventoryItem, error) {
	var saved models.InventoryItem
	err := s.pool.QueryRow(ctx,
		`INSERT INTO inventory_items (product_name, item_code, unit_size, unit_type, current_stock, reorder_level)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, product_name, item_code, unit_size, unit_type, current_stock, reorder_level, created_at`,
		it.ProductName, it.ItemCode, it.UnitSize, it.UnitType, it.CurrentStock, it.ReorderLevel,
	).Scan(&saved.ID, &saved.ProductName, &saved.ItemCode, &saved.UnitSize, &saved.UnitType,
		&saved.CurrentStock, &saved.ReorderLevel, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add inventory item: %w", err)
	}
	return &saved, nil
}

func (s *InventoryStore) Update(ctx context.Context, itemCode string, it *models.InventoryItem) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE inventory_items
		 SET product_name = $1, unit_size = $2, unit_type = $3, current_stock = $4, reorder_level = $5
		 WHERE item_code = $6`,
		it.ProductName, it.UnitSize, it.UnitType, it.CurrentStock, it.ReorderLevel, itemCode)
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("inventory item %s not found", itemCode)
	}
	return nil
}

func (s *InventoryStore) Delete(ctx context.Context, itemCode string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM inventory_items WHERE item_code = $1`, itemCode)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("inventory item %s not found", itemCode)
	}
	return nil
}

// Upsert inserts parsed items, replacing stock levels for item codes that
// already exist. Used by the inventory document upload path.
func (s *InventoryStore) Upsert(ctx context.Context, items []models.InventoryItem) error {
	for _, it := range items {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO inventory_items (product_name, item_code, unit_size, unit_type, current_stock, reorder_level)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (item_code) DO UPDATE
			 SET product_name = EXCLUDED.product_name,
			     unit_size = EXCLUDED.unit_size,
			     unit_type = EXCLUDED.unit_type,
			     current_stock = EXCLUDED.current_stock,
			     reorder_level = EXCLUDED.reorder_level`,
			it.ProductName, it.ItemCode, it.UnitSize, it.UnitType, it.CurrentStock, it.ReorderLevel)
		if err != nil {
			return fmt.Errorf("upsert inventory item %s: %w", it.ItemCode, err)
		}
	}
	return nil
}
