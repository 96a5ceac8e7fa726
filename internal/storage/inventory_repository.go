// Package storage provides the database-backed inventory store that feeds
// catalog snapshots. Syncs are full-table replaces; the store never mutates
// individual rows while a snapshot is live.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/matching"
)

// Common errors.
var (
	ErrNotFound = errors.New("record not found")
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// InventoryRepository persists inventory items between syncs.
type InventoryRepository struct {
	db DB
}

// NewInventoryRepository creates a new inventory repository.
func NewInventoryRepository(db DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Migrate creates the inventory schema if it does not exist. The DDL is
// portable across sqlite and postgres.
func (r *InventoryRepository) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS inventory_items (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			manufacturer TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			specifications TEXT NOT NULL DEFAULT '{}',
			quantity_available INTEGER NOT NULL DEFAULT 0,
			location TEXT NOT NULL DEFAULT '',
			unit_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			lead_time_days INTEGER NOT NULL DEFAULT 0,
			supplier TEXT NOT NULL DEFAULT '',
			standards TEXT NOT NULL DEFAULT '[]',
			synced_at TIMESTAMP NOT NULL
		)
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate inventory schema: %w", err)
	}
	return nil
}

// ReplaceAll replaces the whole inventory table with the given items in one
// transaction. There is no incremental update path.
func (r *InventoryRepository) ReplaceAll(ctx context.Context, items []matching.InventoryItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin inventory replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_items`); err != nil {
		return fmt.Errorf("clear inventory: %w", err)
	}

	now := time.Now()
	query := `
		INSERT INTO inventory_items
			(id, name, manufacturer, model, category, specifications,
			 quantity_available, location, unit_cost, lead_time_days,
			 supplier, standards, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("replace inventory: %w", err)
		}

		specsJSON, err := json.Marshal(item.Specifications)
		if err != nil {
			return fmt.Errorf("marshal specifications for %s: %w", item.ID, err)
		}
		standardsJSON, err := json.Marshal(item.Standards)
		if err != nil {
			return fmt.Errorf("marshal standards for %s: %w", item.ID, err)
		}

		if _, err := tx.ExecContext(ctx, query,
			item.ID, item.Name, item.Manufacturer, item.Model, item.Category,
			string(specsJSON), item.QuantityAvailable, item.Location,
			item.UnitCost, item.LeadTimeDays, item.Supplier,
			string(standardsJSON), now,
		); err != nil {
			return fmt.Errorf("insert inventory item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit inventory replace: %w", err)
	}
	return nil
}

// ListAll returns every inventory item, ordered by id for deterministic
// snapshot construction.
func (r *InventoryRepository) ListAll(ctx context.Context) ([]matching.InventoryItem, error) {
	query := `
		SELECT id, name, manufacturer, model, category, specifications,
		       quantity_available, location, unit_cost, lead_time_days,
		       supplier, standards
		FROM inventory_items
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var items []matching.InventoryItem
	for rows.Next() {
		var item matching.InventoryItem
		var specsJSON, standardsJSON string

		if err := rows.Scan(
			&item.ID, &item.Name, &item.Manufacturer, &item.Model,
			&item.Category, &specsJSON, &item.QuantityAvailable,
			&item.Location, &item.UnitCost, &item.LeadTimeDays,
			&item.Supplier, &standardsJSON,
		); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}

		if err := json.Unmarshal([]byte(specsJSON), &item.Specifications); err != nil {
			return nil, fmt.Errorf("unmarshal specifications for %s: %w", item.ID, err)
		}
		if err := json.Unmarshal([]byte(standardsJSON), &item.Standards); err != nil {
			return nil, fmt.Errorf("unmarshal standards for %s: %w", item.ID, err)
		}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}

	return items, nil
}

// Get returns one inventory item by id.
func (r *InventoryRepository) Get(ctx context.Context, id string) (*matching.InventoryItem, error) {
	query := `
		SELECT id, name, manufacturer, model, category, specifications,
		       quantity_available, location, unit_cost, lead_time_days,
		       supplier, standards
		FROM inventory_items
		WHERE id = $1
	`
	var item matching.InventoryItem
	var specsJSON, standardsJSON string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.Name, &item.Manufacturer, &item.Model,
		&item.Category, &specsJSON, &item.QuantityAvailable,
		&item.Location, &item.UnitCost, &item.LeadTimeDays,
		&item.Supplier, &standardsJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}

	if err := json.Unmarshal([]byte(specsJSON), &item.Specifications); err != nil {
		return nil, fmt.Errorf("unmarshal specifications for %s: %w", item.ID, err)
	}
	if err := json.Unmarshal([]byte(standardsJSON), &item.Standards); err != nil {
		return nil, fmt.Errorf("unmarshal standards for %s: %w", item.ID, err)
	}

	return &item, nil
}

// Count returns the number of stored inventory items.
func (r *InventoryRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory_items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count inventory: %w", err)
	}
	return count, nil
}
