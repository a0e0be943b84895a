// Package seed generates plausible demo orders for an empty store.
package seed

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/manwah-pos/api/internal/catalog"
	"github.com/manwah-pos/api/internal/enum"
	"github.com/manwah-pos/api/internal/model"
	"github.com/manwah-pos/api/internal/pricing"
)

const (
	tables      = 20
	maxLines    = 4
	maxQuantity = 3
	// Orders are spread over the last ~2.8 hours.
	maxAge = 10000 * time.Second
)

// itemStatusesFor lists the item statuses consistent with an order status.
var itemStatusesFor = map[model.OrderStatus][]model.ItemStatus{
	model.OrderPending: {model.ItemPending},
	model.OrderCooking: {model.ItemPending, model.ItemCooking, model.ItemReady},
	model.OrderReady:   {model.ItemReady},
	model.OrderServed:  {model.ItemServed},
	model.OrderPaid:    {model.ItemServed},
}

// Orders generates count orders against menu, created before now. Every
// fourth order on average is a buffet order. Item statuses never contradict
// their order's status.
func Orders(rng *rand.Rand, menu *catalog.Catalog, count int, now time.Time) []model.Order {
	dishes := menu.Items()
	tiers := menu.Tiers()
	orders := make([]model.Order, 0, count)

	for i := 0; i < count; i++ {
		created := now.Add(-time.Duration(rng.Int64N(int64(maxAge))))
		status := model.OrderStatuses[rng.IntN(len(model.OrderStatuses))]
		choices := itemStatusesFor[status]

		o := model.Order{
			ID:          uuid.New(),
			TableNumber: rng.IntN(tables) + 1,
			PeopleCount: 1,
			Status:      status,
			CreatedAt:   created,
			UpdatedAt:   created,
			Version:     1,
		}

		mode := enum.MenuModeALaCarte
		if len(tiers) > 0 && rng.IntN(4) == 0 {
			mode = enum.MenuModeBuffet
			o.PeopleCount = rng.IntN(5) + 2
			o.Items = append(o.Items, line(tiers[rng.IntN(len(tiers))], 1, choices[len(choices)-1], created))
		}

		for n := rng.IntN(maxLines) + 1; n > 0 && len(dishes) > 0; n-- {
			dish := dishes[rng.IntN(len(dishes))]
			o.Items = append(o.Items, line(dish, rng.IntN(maxQuantity)+1, choices[rng.IntN(len(choices))], created))
		}

		if status == model.OrderCooking && !o.HasItemWithStatus(model.ItemCooking) {
			o.Items[0].Status = model.ItemCooking
		}
		o.TotalPrice = pricing.Calculate(o.Items, mode, o.PeopleCount).Total
		orders = append(orders, o)
	}
	return orders
}

func line(item model.MenuItem, quantity int, status model.ItemStatus, at time.Time) model.OrderItem {
	return model.OrderItem{
		ID:        uuid.New(),
		MenuItem:  item,
		Quantity:  quantity,
		Status:    status,
		CreatedAt: at,
		UpdatedAt: at,
	}
}
