package cart_test

import (
	"testing"

	"github.com/alma-store/storefront-api/internal/domain/cart"
	"github.com/alma-store/storefront-api/internal/pkg/logger"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomItem() cart.LineItem {
	return cart.LineItem{
		ID:             cart.ItemID(gofakeit.UUID()),
		Name:           gofakeit.ProductName(),
		Collection:     gofakeit.ProductCategory(),
		Price:          gofakeit.Word(),
		PriceNumber:    decimal.NewFromFloat(gofakeit.Price(1, 5000)).Round(2),
		Image:          gofakeit.URL(),
		Description:    gofakeit.ProductDescription(),
		Specifications: []string{gofakeit.Word(), gofakeit.Word()},
	}
}

func itemWithPrice(id string, price int64) cart.LineItem {
	return cart.LineItem{
		ID:          cart.ItemID(id),
		Name:        "Reloj " + id,
		PriceNumber: decimal.NewFromInt(price),
	}
}

func openStore(t *testing.T, repo cart.Repository) *cart.Store {
	t.Helper()
	return openOwner(t, "session:"+gofakeit.UUID(), repo)
}

func openOwner(t *testing.T, owner string, repo cart.Repository) *cart.Store {
	t.Helper()

	store, err := cart.Open(t.Context(), owner, repo, logger.Discard())
	require.NoError(t, err)
	return store
}

func assertItems(t *testing.T, expected, actual []cart.LineItem) {
	t.Helper()

	opts := cmp.Options{
		cmp.Comparer(func(x, y decimal.Decimal) bool {
			return x.Equal(y)
		}),
		cmpopts.EquateEmpty(),
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)
}

// assertTotals recomputes the totals from the items independently
func assertTotals(t *testing.T, snap cart.Snapshot) {
	t.Helper()

	units := 0
	price := decimal.Zero
	for _, item := range snap.Items {
		units += item.Quantity
		price = price.Add(item.PriceNumber.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	assert.Equal(t, len(snap.Items), snap.Totals.ItemCount)
	assert.Equal(t, units, snap.Totals.TotalItems)
	assert.True(t, price.Equal(snap.Totals.TotalPrice), "total price %s, want %s", snap.Totals.TotalPrice, price)
}
