package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/manwah-pos/api/internal/model"
	"github.com/manwah-pos/api/internal/store"
)

// OrderRepository stores each order as one row with its lines in a JSONB
// payload. The version column guards against lost updates.
type OrderRepository struct {
	db DBTX
}

// NewOrderRepository creates a repository over a pool, connection or tx.
func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

const insertOrderSQL = `
	INSERT INTO orders (id, table_number, status, payload, version, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING
`

const updateOrderSQL = `
	UPDATE orders
	SET table_number = $2, status = $3, payload = $4, version = $5, updated_at = $7
	WHERE id = $1 AND version = $6
`

// SaveOrder inserts o when prevVersion is 0 and otherwise updates it only if
// the stored version still equals prevVersion.
func (r *OrderRepository) SaveOrder(ctx context.Context, o model.Order, prevVersion int64) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", o.ID, err)
	}

	if prevVersion == 0 {
		tag, err := r.db.Exec(ctx, insertOrderSQL,
			o.ID, o.TableNumber, string(o.Status), payload, o.Version, o.CreatedAt, o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order %s: %w", o.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("order %s already exists: %w", o.ID, store.ErrConflict)
		}
		return nil
	}

	tag, err := r.db.Exec(ctx, updateOrderSQL,
		o.ID, o.TableNumber, string(o.Status), payload, o.Version, prevVersion, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order %s: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s is no longer at version %d: %w", o.ID, prevVersion, store.ErrConflict)
	}
	return nil
}

// GetOrder loads one order.
func (r *OrderRepository) GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error) {
	var payload []byte
	var version int64
	err := r.db.QueryRow(ctx, `SELECT payload, version FROM orders WHERE id = $1`, id).Scan(&payload, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, fmt.Errorf("order %s: %w", id, store.ErrNotFound)
		}
		return model.Order{}, fmt.Errorf("get order %s: %w", id, err)
	}
	return decodeOrder(payload, version)
}

// LoadOrders returns every order, oldest first.
func (r *OrderRepository) LoadOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT payload, version FROM orders ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var payload []byte
		var version int64
		if err := rows.Scan(&payload, &version); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o, err := decodeOrder(payload, version)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// decodeOrder trusts the version column over the payload copy.
func decodeOrder(payload []byte, version int64) (model.Order, error) {
	var o model.Order
	if err := json.Unmarshal(payload, &o); err != nil {
		return model.Order{}, fmt.Errorf("decode order: %w", err)
	}
	o.Version = version
	return o, nil
}
