package cart_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/manwah-pos/api/internal/cart"
	"github.com/manwah-pos/api/internal/catalog"
	"github.com/manwah-pos/api/internal/enum"
	"github.com/manwah-pos/api/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFind(t *testing.T, id uuid.UUID) model.MenuItem {
	t.Helper()
	it, ok := catalog.Default().Find(id)
	require.True(t, ok)
	return it
}

func TestNew_InvalidMode(t *testing.T) {
	_, err := cart.New("tasting", 1)
	assert.ErrorIs(t, err, cart.ErrInvalidMode)
}

func TestAdd_MergesSameDish(t *testing.T) {
	c, err := cart.New(enum.MenuModeALaCarte, 3)
	require.NoError(t, err)

	sushi := mustFind(t, catalog.SushiCaHoiID)
	_, err = c.Add(sushi, 1, "")
	require.NoError(t, err)
	_, err = c.Add(sushi, 1, "")
	require.NoError(t, err)
	_, err = c.Add(mustFind(t, catalog.BoMyNuongID), 1, "")
	require.NoError(t, err)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, model.ItemPending, lines[0].Status)

	q := c.Quote()
	assert.True(t, decimal.NewFromInt(181500).Equal(q.Total), q.Total.String())
}

func TestAdd_Rejects(t *testing.T) {
	c, _ := cart.New(enum.MenuModeALaCarte, 1)

	_, err := c.Add(mustFind(t, catalog.SushiCaHoiID), 0, "")
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)

	soldOut := mustFind(t, catalog.LauKimchiID)
	soldOut.Available = false
	_, err = c.Add(soldOut, 1, "")
	assert.ErrorIs(t, err, cart.ErrUnavailable)
}

func TestDecrement_LastUnitRemovesLine(t *testing.T) {
	c, _ := cart.New(enum.MenuModeALaCarte, 1)
	line, err := c.Add(mustFind(t, catalog.SushiCaHoiID), 2, "")
	require.NoError(t, err)

	require.NoError(t, c.Decrement(line.ID))
	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 1, c.Lines()[0].Quantity)

	require.NoError(t, c.Decrement(line.ID))
	assert.Empty(t, c.Lines())

	assert.ErrorIs(t, c.Decrement(line.ID), cart.ErrLineNotFound)
}

func TestRemoveAndNote(t *testing.T) {
	c, _ := cart.New(enum.MenuModeALaCarte, 1)
	a, _ := c.Add(mustFind(t, catalog.SushiCaHoiID), 3, "")
	b, _ := c.Add(mustFind(t, catalog.CanhGaNuongID), 1, "")

	require.NoError(t, c.SetNote(b.ID, "ít cay"))
	require.NoError(t, c.Remove(a.ID))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "ít cay", lines[0].Notes)
	assert.ErrorIs(t, c.SetNote(a.ID, "x"), cart.ErrLineNotFound)
}

func TestBuffet(t *testing.T) {
	c, _ := cart.New(enum.MenuModeBuffet, 5)

	_, err := c.Add(mustFind(t, catalog.SushiCaHoiID), 4, "")
	require.NoError(t, err)
	assert.ErrorIs(t, c.Validate(), cart.ErrNoBuffetTier)

	_, err = c.SelectTier(mustFind(t, catalog.BuffetClassicID))
	require.NoError(t, err)
	require.NoError(t, c.SetPeople(3))
	require.NoError(t, c.Validate())

	q := c.Quote()
	assert.True(t, decimal.NewFromInt(687000).Equal(q.Subtotal), q.Subtotal.String())

	t.Run("selecting another tier replaces the package line", func(t *testing.T) {
		_, err := c.SelectTier(mustFind(t, catalog.BuffetPremiumID))
		require.NoError(t, err)

		lines := c.Lines()
		require.Len(t, lines, 2)
		assert.Equal(t, catalog.BuffetPremiumID, lines[0].MenuItem.ID)
	})

	t.Run("dish is not a tier", func(t *testing.T) {
		_, err := c.SelectTier(mustFind(t, catalog.SushiCaHoiID))
		assert.ErrorIs(t, err, cart.ErrNotBuffetTier)
	})

	assert.ErrorIs(t, c.SetPeople(0), cart.ErrInvalidPeople)
}

func TestValidate(t *testing.T) {
	c, _ := cart.New(enum.MenuModeALaCarte, 0)
	assert.ErrorIs(t, c.Validate(), cart.ErrInvalidTable)

	c.TableNumber = 2
	assert.ErrorIs(t, c.Validate(), cart.ErrEmptyCart)

	_, _ = c.Add(mustFind(t, catalog.LauThaiID), 1, "")
	assert.NoError(t, c.Validate())
}

func TestALaCarte_RejectsBuffetTier(t *testing.T) {
	c, _ := cart.New(enum.MenuModeALaCarte, 2)
	_, err := c.Add(mustFind(t, catalog.SushiCaHoiID), 2, "")
	require.NoError(t, err)

	_, err = c.SelectTier(mustFind(t, catalog.BuffetRoyalID))
	assert.ErrorIs(t, err, cart.ErrTierNotOffered)

	// A tier passed as an ordinary item is refused the same way.
	_, err = c.Add(mustFind(t, catalog.BuffetClassicID), 1, "")
	assert.ErrorIs(t, err, cart.ErrTierNotOffered)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.False(t, lines[0].MenuItem.IsBuffetPackage())
	require.NoError(t, c.Validate())
	assert.True(t, decimal.NewFromInt(77000).Equal(c.Quote().Total), c.Quote().Total.String())
}
