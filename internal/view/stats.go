package view

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/manwah-pos/api/internal/enum"
	"github.com/manwah-pos/api/internal/model"
	"github.com/shopspring/decimal"
)

const popularLimit = 3

var windowDays = map[string]int{
	enum.WindowDay:   1,
	enum.WindowWeek:  7,
	enum.WindowMonth: 30,
}

// Summary aggregates the orders created inside a time window.
type Summary struct {
	Window            string          `json:"window"`
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	TotalOrders       int             `json:"total_orders"`
	PaidOrders        int             `json:"paid_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	CustomerCount     int             `json:"customer_count"`
	PopularItems      []PopularItem   `json:"popular_items"`
	Daily             []DayPoint      `json:"daily"`
}

// PopularItem is a dish ranked by ordered quantity.
type PopularItem struct {
	ItemID uuid.UUID `json:"item_id"`
	Name   string    `json:"name"`
	Count  int       `json:"count"`
}

// DayPoint is one calendar day of the revenue series.
type DayPoint struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Statistics aggregates orders created in the calendar days covered by
// window, ending at now. Revenue counts paid orders only; order and guest
// counts include every order in the window.
func Statistics(orders []model.Order, window string, now time.Time) (Summary, error) {
	days, ok := windowDays[window]
	if !ok {
		return Summary{}, fmt.Errorf("invalid window %q", window)
	}

	y, m, d := now.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))

	s := Summary{
		Window:            window,
		From:              from,
		To:                now,
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		PopularItems:      []PopularItem{},
		Daily:             make([]DayPoint, days),
	}
	for i := range s.Daily {
		s.Daily[i] = DayPoint{Date: from.AddDate(0, 0, i).Format(time.DateOnly), Revenue: decimal.Zero}
	}

	type tally struct {
		name  string
		count int
		first int
	}
	dishes := make(map[uuid.UUID]*tally)

	for _, o := range orders {
		created := o.CreatedAt.In(now.Location())
		if created.Before(from) || created.After(now) {
			continue
		}
		day := &s.Daily[dayIndex(from, created)]

		s.TotalOrders++
		s.CustomerCount += max(o.PeopleCount, 1)
		day.Orders++
		if o.Status == model.OrderPaid {
			s.PaidOrders++
			s.TotalRevenue = s.TotalRevenue.Add(o.TotalPrice)
			day.Revenue = day.Revenue.Add(o.TotalPrice)
		}

		for _, it := range o.Items {
			if it.MenuItem.IsBuffetPackage() {
				continue
			}
			t, ok := dishes[it.MenuItem.ID]
			if !ok {
				t = &tally{name: it.MenuItem.Name, first: len(dishes)}
				dishes[it.MenuItem.ID] = t
			}
			t.count += it.Quantity
		}
	}

	if s.PaidOrders > 0 {
		s.AverageOrderValue = s.TotalRevenue.Div(decimal.NewFromInt(int64(s.PaidOrders)))
	}

	ranked := make([]PopularItem, 0, len(dishes))
	firstSeen := make(map[uuid.UUID]int, len(dishes))
	for id, t := range dishes {
		ranked = append(ranked, PopularItem{ItemID: id, Name: t.name, Count: t.count})
		firstSeen[id] = t.first
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].ItemID] < firstSeen[ranked[j].ItemID]
	})
	if len(ranked) > popularLimit {
		ranked = ranked[:popularLimit]
	}
	s.PopularItems = append(s.PopularItems, ranked...)
	return s, nil
}

// dayIndex counts calendar days between from (a midnight) and t.
func dayIndex(from, t time.Time) int {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, from.Location())
	return int(midnight.Sub(from).Hours()+12) / 24
}
