//go:build integration

package database_test

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/manwah-pos/api/internal/catalog"
	"github.com/manwah-pos/api/internal/database"
	"github.com/manwah-pos/api/internal/model"
	"github.com/manwah-pos/api/internal/seed"
	"github.com/manwah-pos/api/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type OrderRepositorySuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	pool      *pgxpool.Pool
	repo      *database.OrderRepository
}

func TestOrderRepositorySuite(t *testing.T) {
	suite.Run(t, new(OrderRepositorySuite))
}

func (s *OrderRepositorySuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("pos_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.pool, err = database.Connect(s.ctx, dsn)
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(s.ctx, s.pool))
	// Second run must be a no-op.
	s.Require().NoError(database.Migrate(s.ctx, s.pool))

	s.repo = database.NewOrderRepository(s.pool)
}

func (s *OrderRepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *OrderRepositorySuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `TRUNCATE orders`)
	s.Require().NoError(err)
}

func (s *OrderRepositorySuite) newOrder(table int) model.Order {
	item, ok := catalog.Default().Find(catalog.SushiCaHoiID)
	s.Require().True(ok)
	now := time.Now().UTC().Truncate(time.Microsecond)
	return model.Order{
		ID:          uuid.New(),
		TableNumber: table,
		PeopleCount: 2,
		Items: []model.OrderItem{{
			ID:        uuid.New(),
			MenuItem:  item,
			Quantity:  2,
			Status:    model.ItemPending,
			CreatedAt: now,
			UpdatedAt: now,
		}},
		Status:     model.OrderPending,
		TotalPrice: decimal.NewFromInt(77000),
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
	}
}

func (s *OrderRepositorySuite) TestInsertAndGet() {
	o := s.newOrder(4)
	s.Require().NoError(s.repo.SaveOrder(s.ctx, o, 0))

	got, err := s.repo.GetOrder(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(o.ID, got.ID)
	s.Equal(4, got.TableNumber)
	s.Equal(int64(1), got.Version)
	s.True(o.TotalPrice.Equal(got.TotalPrice))
	s.Require().Len(got.Items, 1)
	s.Equal(model.ItemPending, got.Items[0].Status)
}

func (s *OrderRepositorySuite) TestInsertTwiceConflicts() {
	o := s.newOrder(1)
	s.Require().NoError(s.repo.SaveOrder(s.ctx, o, 0))
	s.ErrorIs(s.repo.SaveOrder(s.ctx, o, 0), store.ErrConflict)
}

func (s *OrderRepositorySuite) TestUpdateChecksVersion() {
	o := s.newOrder(2)
	s.Require().NoError(s.repo.SaveOrder(s.ctx, o, 0))

	o.Status = model.OrderCooking
	o.Version = 2
	s.Require().NoError(s.repo.SaveOrder(s.ctx, o, 1))

	// A writer still holding version 1 loses.
	stale := o
	stale.Status = model.OrderReady
	stale.Version = 2
	s.ErrorIs(s.repo.SaveOrder(s.ctx, stale, 1), store.ErrConflict)

	got, err := s.repo.GetOrder(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(model.OrderCooking, got.Status)
	s.Equal(int64(2), got.Version)
}

func (s *OrderRepositorySuite) TestGetMissing() {
	_, err := s.repo.GetOrder(s.ctx, uuid.New())
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *OrderRepositorySuite) TestLoadOrdersOldestFirst() {
	rng := rand.New(rand.NewPCG(7, 0))
	orders := seed.Orders(rng, catalog.Default(), 5, time.Now())
	for _, o := range orders {
		s.Require().NoError(s.repo.SaveOrder(s.ctx, o, 0))
	}

	got, err := s.repo.LoadOrders(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(got, len(orders))
	for i := 1; i < len(got); i++ {
		s.False(got[i].CreatedAt.Before(got[i-1].CreatedAt), "orders out of order at %d", i)
	}
}

func (s *OrderRepositorySuite) TestStoresSharingTheDatabase() {
	first := store.New(store.WithPersister(s.repo))
	second := store.New(store.WithPersister(s.repo))

	item, _ := catalog.Default().Find(catalog.SushiCaHoiID)
	created, err := first.CreateOrder(s.ctx, store.CreateParams{
		TableNumber: 6,
		Items:       []model.OrderItem{{MenuItem: item, Quantity: 1}},
		TotalPrice:  decimal.NewFromInt(38500),
	})
	s.Require().NoError(err)

	n, err := second.Sync(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	_, err = first.UpdateOrderStatus(s.ctx, created.ID, model.OrderCooking)
	s.Require().NoError(err)

	// second still holds version 1, so its write is rejected and the
	// conflict pulls in the current row.
	_, err = second.UpdateOrderStatus(s.ctx, created.ID, model.OrderReady)
	s.ErrorIs(err, store.ErrConflict)

	refreshed, err := second.Get(created.ID)
	s.Require().NoError(err)
	s.Equal(model.OrderCooking, refreshed.Status)

	updated, err := second.UpdateOrderStatus(s.ctx, created.ID, model.OrderReady)
	s.Require().NoError(err)
	s.Equal(int64(3), updated.Version)
	s.Equal(model.ItemReady, updated.Items[0].Status)
}
