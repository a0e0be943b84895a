// Package view holds the read-side queries each staff role works from. Every
// function is pure: it takes a snapshot of the order collection and returns a
// new slice, leaving the input untouched.
package view

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/manwah-pos/api/internal/enum"
	"github.com/manwah-pos/api/internal/model"
)

// Filter narrows a view the way the staff filter bar does.
type Filter struct {
	Search string
	Status string // enum.StatusAll or an order status
	Table  *int
}

// ParseFilter reads search, status and table from query parameters.
func ParseFilter(q url.Values) (Filter, error) {
	f := Filter{Search: strings.TrimSpace(q.Get("search")), Status: enum.StatusAll}

	if s := q.Get("status"); s != "" && s != enum.StatusAll {
		if !model.OrderStatus(s).Valid() {
			return Filter{}, fmt.Errorf("invalid status %q", s)
		}
		f.Status = s
	}
	if t := q.Get("table"); t != "" && t != enum.StatusAll {
		n, err := strconv.Atoi(t)
		if err != nil || n <= 0 {
			return Filter{}, fmt.Errorf("invalid table %q", t)
		}
		f.Table = &n
	}
	return f, nil
}

// Match reports whether o passes the filter. Search matches the order id or
// the table number as a substring, case-insensitively.
func (f Filter) Match(o model.Order) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(o.ID.String()), term) &&
			!strings.Contains(strconv.Itoa(o.TableNumber), term) {
			return false
		}
	}
	if f.Status != "" && f.Status != enum.StatusAll && string(o.Status) != f.Status {
		return false
	}
	if f.Table != nil && o.TableNumber != *f.Table {
		return false
	}
	return true
}

// Apply returns the orders passing f, newest first.
func Apply(orders []model.Order, f Filter) []model.Order {
	out := where(orders, f.Match)
	sortNewestFirst(out)
	return out
}

// KitchenQueue returns pending and cooking orders, oldest first.
func KitchenQueue(orders []model.Order, f Filter) []model.Order {
	out := where(orders, func(o model.Order) bool {
		return (o.Status == model.OrderPending || o.Status == model.OrderCooking) && f.Match(o)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Board is the waiter's split of the filtered orders.
type Board struct {
	Active    []model.Order `json:"active"`
	Completed []model.Order `json:"completed"`
}

// WaiterBoard splits the filtered orders into unpaid and paid, newest first.
func WaiterBoard(orders []model.Order, f Filter) Board {
	b := Board{Active: []model.Order{}, Completed: []model.Order{}}
	for _, o := range Apply(orders, f) {
		if o.Status == model.OrderPaid {
			b.Completed = append(b.Completed, o)
		} else {
			b.Active = append(b.Active, o)
		}
	}
	return b
}

// ReadyToServe returns every order holding at least one ready item, whatever
// the order status is. The filter bar does not apply here.
func ReadyToServe(orders []model.Order) []model.Order {
	out := where(orders, func(o model.Order) bool { return o.HasItemWithStatus(model.ItemReady) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// TableHistory returns the orders placed from one table, newest first.
func TableHistory(orders []model.Order, table int) []model.Order {
	out := where(orders, func(o model.Order) bool { return o.TableNumber == table })
	sortNewestFirst(out)
	return out
}

// ActiveOrders returns orders that are neither served nor paid.
func ActiveOrders(orders []model.Order) []model.Order {
	return where(orders, func(o model.Order) bool {
		return o.Status != model.OrderServed && o.Status != model.OrderPaid
	})
}

// StatusCount is one slice of the status distribution.
type StatusCount struct {
	Status model.OrderStatus `json:"status"`
	Count  int               `json:"count"`
}

// StatusCounts counts the filtered orders per status. Every status appears,
// in lifecycle order, even with a zero count.
func StatusCounts(orders []model.Order, f Filter) []StatusCount {
	counts := make(map[model.OrderStatus]int, len(model.OrderStatuses))
	for _, o := range orders {
		if f.Match(o) {
			counts[o.Status]++
		}
	}
	out := make([]StatusCount, len(model.OrderStatuses))
	for i, s := range model.OrderStatuses {
		out[i] = StatusCount{Status: s, Count: counts[s]}
	}
	return out
}

func where(orders []model.Order, keep func(model.Order) bool) []model.Order {
	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func sortNewestFirst(orders []model.Order) {
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
}
