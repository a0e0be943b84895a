// Package catalog holds the static menu and buffet tiers the order flow
// reads from. Entries are immutable once loaded.
package catalog

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/manwah-pos/api/internal/enum"
	"github.com/manwah-pos/api/internal/model"
)

// Catalog is a read-only menu plus buffet tiers.
type Catalog struct {
	items    []model.MenuItem
	keywords []keywords // parallel to items
	tiers    []model.MenuItem
	byID     map[uuid.UUID]model.MenuItem
}

// New builds a catalog. Entries of tiers are forced into the buffet
// sentinel category.
func New(items, tiers []model.MenuItem) *Catalog {
	c := &Catalog{
		items:    make([]model.MenuItem, len(items)),
		keywords: make([]keywords, len(items)),
		tiers:    make([]model.MenuItem, len(tiers)),
		byID:     make(map[uuid.UUID]model.MenuItem, len(items)+len(tiers)),
	}
	copy(c.items, items)
	for i, it := range c.items {
		c.keywords[i] = keywordsOf(it)
	}
	for i, t := range tiers {
		t.Category = enum.CategoryBuffetPackage
		c.tiers[i] = t
	}
	for _, it := range c.items {
		c.byID[it.ID] = it
	}
	for _, t := range c.tiers {
		c.byID[t.ID] = t
	}
	return c
}

// Items returns a copy of the à-la-carte menu.
func (c *Catalog) Items() []model.MenuItem {
	out := make([]model.MenuItem, len(c.items))
	copy(out, c.items)
	return out
}

// Tiers returns a copy of the buffet tiers.
func (c *Catalog) Tiers() []model.MenuItem {
	out := make([]model.MenuItem, len(c.tiers))
	copy(out, c.tiers)
	return out
}

// Find looks up a dish or buffet tier by id.
func (c *Catalog) Find(id uuid.UUID) (model.MenuItem, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// Categories lists the distinct dish categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range c.items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	return out
}

// Search filters dishes by exact category when category is non-empty and by
// term, ignoring case and diacritics. Every word of term must prefix a word of
// the dish name or description. Name hits rank first; ties keep menu order.
func (c *Catalog) Search(term, category string) []model.MenuItem {
	query := strings.Fields(fold(term))

	type hit struct {
		item  model.MenuItem
		score int
	}
	var hits []hit
	for i, it := range c.items {
		if category != "" && it.Category != category {
			continue
		}
		score := 1
		if len(query) > 0 {
			if score = c.keywords[i].score(query); score == 0 {
				continue
			}
		}
		hits = append(hits, hit{item: it, score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]model.MenuItem, len(hits))
	for i, h := range hits {
		out[i] = h.item
	}
	return out
}

// TiersByPrice returns buffet tiers cheapest first.
func (c *Catalog) TiersByPrice() []model.MenuItem {
	out := c.Tiers()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}
