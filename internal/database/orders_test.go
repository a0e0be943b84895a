package database_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/manwah-pos/api/internal/database"
	"github.com/manwah-pos/api/internal/model"
	"github.com/manwah-pos/api/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock DBTX ---

type execCall struct {
	sql  string
	args []interface{}
}

type mockDB struct {
	execs    []execCall
	execTag  pgconn.CommandTag
	execErr  error
	rowErr   error
	payloads [][]byte
	versions []int64
}

func (m *mockDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	m.execs = append(m.execs, execCall{sql: sql, args: args})
	return m.execTag, m.execErr
}

func (m *mockDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return &mockRows{db: m, i: -1}, nil
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	if m.rowErr != nil {
		return mockRow{err: m.rowErr}
	}
	return mockRow{payload: m.payloads[0], version: m.versions[0]}
}

type mockRow struct {
	payload []byte
	version int64
	err     error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*[]byte) = r.payload
	*dest[1].(*int64) = r.version
	return nil
}

type mockRows struct {
	db *mockDB
	i  int
}

func (r *mockRows) Close()                                       {}
func (r *mockRows) Err() error                                   { return nil }
func (r *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) Values() ([]any, error)                       { return nil, nil }
func (r *mockRows) RawValues() [][]byte                          { return nil }
func (r *mockRows) Conn() *pgx.Conn                              { return nil }

func (r *mockRows) Next() bool {
	r.i++
	return r.i < len(r.db.payloads)
}

func (r *mockRows) Scan(dest ...any) error {
	return mockRow{payload: r.db.payloads[r.i], version: r.db.versions[r.i]}.Scan(dest...)
}

func sampleOrder() model.Order {
	now := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)
	return model.Order{
		ID:          uuid.New(),
		TableNumber: 3,
		PeopleCount: 2,
		Status:      model.OrderCooking,
		TotalPrice:  decimal.NewFromInt(181500),
		Items: []model.OrderItem{{
			ID:       uuid.New(),
			MenuItem: model.MenuItem{ID: uuid.New(), Name: "Sushi Cá Hồi", Price: 35000, Category: "Sushi & Sashimi"},
			Quantity: 2,
			Status:   model.ItemCooking,
		}},
		CreatedAt: now,
		UpdatedAt: now,
		Version:   2,
	}
}

// --- Tests ---

func TestSaveOrder_Insert(t *testing.T) {
	db := &mockDB{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	repo := database.NewOrderRepository(db)
	o := sampleOrder()

	require.NoError(t, repo.SaveOrder(context.Background(), o, 0))

	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0].sql, "INSERT INTO orders")
	assert.Equal(t, o.ID, db.execs[0].args[0])
	assert.Equal(t, "cooking", db.execs[0].args[2])
}

func TestSaveOrder_InsertDuplicateIsConflict(t *testing.T) {
	db := &mockDB{execTag: pgconn.NewCommandTag("INSERT 0 0")}
	repo := database.NewOrderRepository(db)

	err := repo.SaveOrder(context.Background(), sampleOrder(), 0)
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestSaveOrder_UpdateChecksVersion(t *testing.T) {
	db := &mockDB{execTag: pgconn.NewCommandTag("UPDATE 1")}
	repo := database.NewOrderRepository(db)
	o := sampleOrder()

	require.NoError(t, repo.SaveOrder(context.Background(), o, 1))
	assert.Contains(t, db.execs[0].sql, "AND version = $6")
	assert.Equal(t, int64(2), db.execs[0].args[4])
	assert.Equal(t, int64(1), db.execs[0].args[5])

	db.execTag = pgconn.NewCommandTag("UPDATE 0")
	err := repo.SaveOrder(context.Background(), o, 1)
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestSaveOrder_DriverErrorIsNotConflict(t *testing.T) {
	db := &mockDB{execErr: errors.New("connection refused")}
	repo := database.NewOrderRepository(db)

	err := repo.SaveOrder(context.Background(), sampleOrder(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrConflict)
}

func TestGetOrder(t *testing.T) {
	o := sampleOrder()
	payload, err := json.Marshal(o)
	require.NoError(t, err)

	db := &mockDB{payloads: [][]byte{payload}, versions: []int64{5}}
	repo := database.NewOrderRepository(db)

	got, err := repo.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, int64(5), got.Version, "version column wins")
	require.Len(t, got.Items, 1)
	assert.Equal(t, model.ItemCooking, got.Items[0].Status)
	assert.True(t, o.TotalPrice.Equal(got.TotalPrice))
}

func TestGetOrder_NotFound(t *testing.T) {
	db := &mockDB{rowErr: pgx.ErrNoRows}
	repo := database.NewOrderRepository(db)

	_, err := repo.GetOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoadOrders(t *testing.T) {
	a, b := sampleOrder(), sampleOrder()
	pa, _ := json.Marshal(a)
	pb, _ := json.Marshal(b)

	db := &mockDB{payloads: [][]byte{pa, pb}, versions: []int64{1, 3}}
	repo := database.NewOrderRepository(db)

	got, err := repo.LoadOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, int64(3), got[1].Version)
}

func TestMigrate(t *testing.T) {
	db := &mockDB{}
	require.NoError(t, database.Migrate(context.Background(), db))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0].sql, "CREATE TABLE IF NOT EXISTS orders")

	db.execErr = errors.New("permission denied")
	assert.Error(t, database.Migrate(context.Background(), db))
}
