// Package pricing computes cart and order totals for à-la-carte and buffet
// menus. All arithmetic stays in whole đồng; rounding happens only in
// FormatVND.
package pricing

import (
	"strings"

	"github.com/manwah-pos/api/internal/enum"
	"github.com/manwah-pos/api/internal/model"
	"github.com/shopspring/decimal"
)

// TaxRate is applied to the subtotal of every order.
var TaxRate = decimal.NewFromInt(10).Div(decimal.NewFromInt(100))

// Quote is a computed price breakdown. Nothing here is stored on the order
// except Total.
type Quote struct {
	Mode        string          `json:"mode"`
	PeopleCount int             `json:"people_count"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

// Calculate prices lines under the given menu mode.
//
// À-la-carte: sum of price × quantity, skipping buffet package lines.
// Buffet: the package price × peopleCount; every other line is included in
// the package. A buffet cart without a package prices at zero.
func Calculate(lines []model.OrderItem, mode string, peopleCount int) Quote {
	q := Quote{Mode: mode, PeopleCount: 1}

	if mode == enum.MenuModeBuffet {
		if peopleCount > 1 {
			q.PeopleCount = peopleCount
		}
		for _, l := range lines {
			if l.MenuItem.IsBuffetPackage() {
				q.Subtotal = decimal.NewFromInt(l.MenuItem.Price).Mul(decimal.NewFromInt(int64(q.PeopleCount)))
				break
			}
		}
	} else {
		q.Mode = enum.MenuModeALaCarte
		q.Subtotal = ALaCarteSubtotal(lines)
	}

	q.Tax = q.Subtotal.Mul(TaxRate)
	q.Total = q.Subtotal.Add(q.Tax)
	return q
}

// ALaCarteSubtotal sums price × quantity over non-package lines.
func ALaCarteSubtotal(lines []model.OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		if l.MenuItem.IsBuffetPackage() {
			continue
		}
		sum = sum.Add(decimal.NewFromInt(l.MenuItem.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// ModeOf infers the menu mode of a placed order from its lines.
func ModeOf(o model.Order) string {
	if _, ok := o.BuffetLine(); ok {
		return enum.MenuModeBuffet
	}
	return enum.MenuModeALaCarte
}

// Reprice recomputes the total of a placed order from its current lines.
func Reprice(o model.Order) decimal.Decimal {
	return Calculate(o.Items, ModeOf(o), o.PeopleCount).Total
}

// FormatVND renders an amount the way vi-VN shows đồng: rounded to whole
// units, dot thousands separator, trailing ₫.
func FormatVND(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte('.')
		b.WriteString(s[i : i+3])
	}
	b.WriteString("₫")
	return b.String()
}
