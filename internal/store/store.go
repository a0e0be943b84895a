// Package store owns the single shared collection of orders. Every write goes
// through its mutation methods, which apply the transition rules, persist the
// result when a Persister is configured, and then notify subscribers.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/manwah-pos/api/internal/enum"
	"github.com/manwah-pos/api/internal/model"
	"github.com/manwah-pos/api/internal/pricing"
	"github.com/manwah-pos/api/internal/transition"
	"github.com/shopspring/decimal"
)

// Errors returned by store operations. None of them leave partial state.
var (
	ErrNotFound          = errors.New("not found")
	ErrIllegalTransition = errors.New("illegal transition")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("order changed concurrently, please retry")
	ErrUnavailable       = errors.New("order storage unavailable, please retry")
)

// Persister is the durable backing of the store. Satisfied by
// *database.OrderRepository.
type Persister interface {
	// SaveOrder writes o if the stored version still equals prevVersion
	// (0 means insert). A stale version must yield an error wrapping ErrConflict.
	SaveOrder(ctx context.Context, o model.Order, prevVersion int64) error
	GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error)
	LoadOrders(ctx context.Context) ([]model.Order, error)
}

// Event describes one applied mutation.
type Event struct {
	Type  string      `json:"type"`
	Order model.Order `json:"order"`
	At    time.Time   `json:"at"`
}

// Notifier receives events synchronously after each mutation.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) { f(e) }

// Option configures a Store.
type Option func(*Store)

// WithPersister backs the store with durable storage.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store is the order collection. Safe for concurrent use; mutations are
// serialized so each one is observed whole or not at all.
type Store struct {
	mu         sync.RWMutex
	orders     []model.Order
	index      map[uuid.UUID]int
	persister  Persister
	notifiers  []Notifier
	lastUpdate time.Time
	now        func() time.Time
	logger     *slog.Logger
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		index:  make(map[uuid.UUID]int),
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers n for every subsequent event.
func (s *Store) Subscribe(n Notifier) {
	s.mu.Lock()
	s.notifiers = append(s.notifiers, n)
	s.mu.Unlock()
}

// CreateParams is the input of CreateOrder.
type CreateParams struct {
	TableNumber int
	PeopleCount int
	Items       []model.OrderItem
	TotalPrice  decimal.Decimal
}

// CreateOrder appends a new pending order. Items get fresh ids when missing
// and always start pending.
func (s *Store) CreateOrder(ctx context.Context, p CreateParams) (model.Order, error) {
	if err := validateCreate(p); err != nil {
		return model.Order{}, err
	}

	s.mu.Lock()
	now := s.now()
	o := model.Order{
		ID:          uuid.New(),
		TableNumber: p.TableNumber,
		PeopleCount: p.PeopleCount,
		Items:       make([]model.OrderItem, len(p.Items)),
		Status:      model.OrderPending,
		TotalPrice:  p.TotalPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
	if o.PeopleCount < 1 {
		o.PeopleCount = 1
	}
	for i, it := range p.Items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		if it.CreatedAt.IsZero() {
			it.CreatedAt = now
		}
		it.Status = model.ItemPending
		it.UpdatedAt = now
		o.Items[i] = it
	}

	if err := s.persist(ctx, o, 0); err != nil {
		s.mu.Unlock()
		return model.Order{}, err
	}
	s.index[o.ID] = len(s.orders)
	s.orders = append(s.orders, o)
	s.lastUpdate = now
	out := o.Clone()
	notifiers := s.notifiers
	s.mu.Unlock()

	fanOut(notifiers, Event{Type: enum.EventOrderCreated, Order: out.Clone(), At: now})
	return out, nil
}

// UpdateItemStatus sets one line's status and rolls the change up into the
// order status. Writing the current status again is a no-op.
func (s *Store) UpdateItemStatus(ctx context.Context, orderID, itemID uuid.UUID, status model.ItemStatus) (model.Order, error) {
	return s.mutate(ctx, orderID, enum.EventItemStatusChanged, func(o *model.Order, now time.Time) (bool, error) {
		j := o.ItemIndex(itemID)
		if j < 0 {
			return false, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}
		return applyItemStatus(o, j, status, now)
	})
}

// AdvanceItem moves a line one step along the path role is allowed to drive.
func (s *Store) AdvanceItem(ctx context.Context, orderID, itemID uuid.UUID, role string) (model.Order, error) {
	return s.mutate(ctx, orderID, enum.EventItemStatusChanged, func(o *model.Order, now time.Time) (bool, error) {
		j := o.ItemIndex(itemID)
		if j < 0 {
			return false, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}
		next, err := transition.NextItemStatus(o.Items[j].Status, role)
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrIllegalTransition, err)
		}
		return applyItemStatus(o, j, next, now)
	})
}

// UpdateOrderStatus sets the order status directly and catches up every item
// still at the previous order status.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (model.Order, error) {
	return s.mutate(ctx, orderID, enum.EventOrderStatusChanged, func(o *model.Order, now time.Time) (bool, error) {
		return applyOrderStatus(o, status, now)
	})
}

// AdvanceOrder moves the order to its successor status.
func (s *Store) AdvanceOrder(ctx context.Context, orderID uuid.UUID) (model.Order, error) {
	return s.mutate(ctx, orderID, enum.EventOrderStatusChanged, func(o *model.Order, now time.Time) (bool, error) {
		next, err := transition.NextOrderStatus(o.Status)
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrIllegalTransition, err)
		}
		return applyOrderStatus(o, next, now)
	})
}

// UpdateOrder merges a correction patch into the order. When lines change
// and no total is given, the total is recomputed from the remaining lines.
func (s *Store) UpdateOrder(ctx context.Context, orderID uuid.UUID, patch model.OrderPatch) (model.Order, error) {
	return s.mutate(ctx, orderID, enum.EventOrderUpdated, func(o *model.Order, now time.Time) (bool, error) {
		return applyPatch(o, patch, now)
	})
}

// Orders returns a copy of the collection in creation order.
func (s *Store) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.Clone()
	}
	return out
}

// Get returns a copy of one order.
func (s *Store) Get(orderID uuid.UUID) (model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[orderID]
	if !ok {
		return model.Order{}, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return s.orders[i].Clone(), nil
}

// LastUpdate is the time of the most recent applied mutation.
func (s *Store) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

// Load replaces the collection, e.g. with seed data at startup. It does not
// persist or notify.
func (s *Store) Load(orders []model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = make([]model.Order, 0, len(orders))
	s.index = make(map[uuid.UUID]int, len(orders))
	for _, o := range orders {
		s.index[o.ID] = len(s.orders)
		s.orders = append(s.orders, o.Clone())
	}
	s.lastUpdate = s.now()
}

// Sync pulls the persisted collection and keeps whichever copy of each order
// has the higher version. It returns how many orders changed.
func (s *Store) Sync(ctx context.Context) (int, error) {
	if s.persister == nil {
		return 0, nil
	}
	loaded, err := s.persister.LoadOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: load orders: %w", ErrUnavailable, err)
	}

	s.mu.Lock()
	now := s.now()
	var changed []model.Order
	for _, o := range loaded {
		i, ok := s.index[o.ID]
		switch {
		case !ok:
			s.index[o.ID] = len(s.orders)
			s.orders = append(s.orders, o.Clone())
		case o.Version > s.orders[i].Version:
			s.orders[i] = o.Clone()
		default:
			continue
		}
		changed = append(changed, o.Clone())
	}
	if len(changed) > 0 {
		s.lastUpdate = now
	}
	notifiers := s.notifiers
	s.mu.Unlock()

	for _, o := range changed {
		fanOut(notifiers, Event{Type: enum.EventOrderSynced, Order: o, At: now})
	}
	return len(changed), nil
}

// mutate runs fn against a copy of the order and swaps the copy in only when
// fn succeeds and persistence (if any) accepts it.
func (s *Store) mutate(ctx context.Context, orderID uuid.UUID, eventType string, fn func(o *model.Order, now time.Time) (bool, error)) (model.Order, error) {
	s.mu.Lock()
	i, ok := s.index[orderID]
	if !ok {
		s.mu.Unlock()
		return model.Order{}, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}

	now := s.now()
	next := s.orders[i].Clone()
	changed, err := fn(&next, now)
	if err != nil {
		s.mu.Unlock()
		return model.Order{}, err
	}
	if !changed {
		out := s.orders[i].Clone()
		s.mu.Unlock()
		return out, nil
	}

	prevVersion := s.orders[i].Version
	next.UpdatedAt = now
	next.Version = prevVersion + 1
	if err := s.persist(ctx, next, prevVersion); err != nil {
		if errors.Is(err, ErrConflict) {
			s.refreshLocked(ctx, orderID)
		}
		s.mu.Unlock()
		return model.Order{}, err
	}

	s.orders[i] = next
	s.lastUpdate = now
	out := next.Clone()
	notifiers := s.notifiers
	s.mu.Unlock()

	fanOut(notifiers, Event{Type: eventType, Order: out.Clone(), At: now})
	return out, nil
}

func (s *Store) persist(ctx context.Context, o model.Order, prevVersion int64) error {
	if s.persister == nil {
		return nil
	}
	err := s.persister.SaveOrder(ctx, o, prevVersion)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConflict):
		return fmt.Errorf("save order %s: %w", o.ID, err)
	default:
		s.logger.Error("persist order failed", "order_id", o.ID, "error", err)
		return fmt.Errorf("%w: save order %s: %w", ErrUnavailable, o.ID, err)
	}
}

// refreshLocked re-reads one order after a version conflict so the next
// attempt computes its transition from current item statuses.
func (s *Store) refreshLocked(ctx context.Context, orderID uuid.UUID) {
	fresh, err := s.persister.GetOrder(ctx, orderID)
	if err != nil {
		s.logger.Warn("refresh order after conflict failed", "order_id", orderID, "error", err)
		return
	}
	if i, ok := s.index[orderID]; ok {
		s.orders[i] = fresh.Clone()
	}
}

func fanOut(notifiers []Notifier, e Event) {
	for _, n := range notifiers {
		n.Notify(e)
	}
}

func validateCreate(p CreateParams) error {
	if p.TableNumber <= 0 {
		return fmt.Errorf("%w: table number must be > 0", ErrInvalidInput)
	}
	if len(p.Items) == 0 {
		return fmt.Errorf("%w: items are required", ErrInvalidInput)
	}
	if p.TotalPrice.IsNegative() {
		return fmt.Errorf("%w: total price must be >= 0", ErrInvalidInput)
	}
	packages := 0
	for i, it := range p.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item[%d]: quantity must be > 0", ErrInvalidInput, i)
		}
		if it.MenuItem.IsBuffetPackage() {
			packages++
		}
	}
	if packages > 1 {
		return fmt.Errorf("%w: at most one buffet package per order", ErrInvalidInput)
	}
	return nil
}

func applyItemStatus(o *model.Order, j int, status model.ItemStatus, now time.Time) (bool, error) {
	current := o.Items[j].Status
	if current == status {
		return false, nil
	}
	if err := transition.CanSetItemStatus(current, status); err != nil {
		return false, classify(err)
	}
	o.Items[j].Status = status
	o.Items[j].UpdatedAt = now
	o.Status = transition.DeriveOrderStatus(*o, status)
	return true, nil
}

func applyOrderStatus(o *model.Order, status model.OrderStatus, now time.Time) (bool, error) {
	if o.Status == status {
		return false, nil
	}
	if err := transition.CanSetOrderStatus(o.Status, status); err != nil {
		return false, classify(err)
	}
	transition.CatchUpItems(o.Items, o.Status, status, now)
	o.Status = status
	return true, nil
}

func applyPatch(o *model.Order, patch model.OrderPatch, now time.Time) (bool, error) {
	changed, peopleChanged := false, false
	if patch.TableNumber != nil {
		if *patch.TableNumber <= 0 {
			return false, fmt.Errorf("%w: table number must be > 0", ErrInvalidInput)
		}
		if *patch.TableNumber != o.TableNumber {
			o.TableNumber = *patch.TableNumber
			changed = true
		}
	}
	if patch.PeopleCount != nil {
		if *patch.PeopleCount <= 0 {
			return false, fmt.Errorf("%w: people count must be > 0", ErrInvalidInput)
		}
		if *patch.PeopleCount != o.PeopleCount {
			o.PeopleCount = *patch.PeopleCount
			changed, peopleChanged = true, true
		}
	}

	linesChanged, removed := false, false
	for _, ip := range patch.Items {
		j := o.ItemIndex(ip.ID)
		if j < 0 {
			return false, fmt.Errorf("item %s: %w", ip.ID, ErrNotFound)
		}
		if ip.Notes != nil && *ip.Notes != o.Items[j].Notes {
			o.Items[j].Notes = *ip.Notes
			o.Items[j].UpdatedAt = now
			changed = true
		}
		if ip.Quantity == nil || *ip.Quantity == o.Items[j].Quantity {
			continue
		}
		// The package line is priced per person; change people_count instead.
		if o.Items[j].MenuItem.IsBuffetPackage() {
			return false, fmt.Errorf("%w: item %s: buffet package quantity is fixed", ErrInvalidInput, ip.ID)
		}
		switch q := *ip.Quantity; {
		case q < 0:
			return false, fmt.Errorf("%w: item %s: quantity must be >= 0", ErrInvalidInput, ip.ID)
		case q == 0:
			o.Items = append(o.Items[:j], o.Items[j+1:]...)
			removed = true
		default:
			o.Items[j].Quantity = q
			o.Items[j].UpdatedAt = now
		}
		linesChanged = true
	}
	if len(o.Items) == 0 {
		return false, fmt.Errorf("%w: an order needs at least one item", ErrInvalidInput)
	}
	// Dropping the slowest line can leave every remaining line further along.
	if removed {
		o.Status = transition.DeriveOrderStatus(*o, transition.MinItemStatus(o.Items))
	}

	switch {
	case patch.TotalPrice != nil:
		if patch.TotalPrice.IsNegative() {
			return false, fmt.Errorf("%w: total price must be >= 0", ErrInvalidInput)
		}
		if !patch.TotalPrice.Equal(o.TotalPrice) {
			o.TotalPrice = *patch.TotalPrice
			changed = true
		}
	case linesChanged || peopleChanged:
		o.TotalPrice = pricing.Reprice(*o)
	}
	return changed || linesChanged, nil
}

// classify maps transition engine errors onto the store's error taxonomy.
func classify(err error) error {
	if errors.Is(err, transition.ErrUnknown) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return fmt.Errorf("%w: %w", ErrIllegalTransition, err)
}
