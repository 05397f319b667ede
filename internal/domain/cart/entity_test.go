package cart_test

import (
	"encoding/json"
	"testing"

	"github.com/alma-store/storefront-api/internal/domain/cart"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    cart.ItemID
		wantErr bool
	}{
		{name: "integer", input: `12`, want: "12"},
		{name: "string", input: `"sku-7"`, want: "sku-7"},
		{name: "numeric string", input: `"12"`, want: "12"},
		{name: "object", input: `{"id":1}`, wantErr: true},
		{name: "boolean", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id cart.ItemID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestCalculateTotals(t *testing.T) {
	items := []cart.LineItem{
		{ID: "1", PriceNumber: decimal.RequireFromString("19.99"), Quantity: 3},
		{ID: "2", PriceNumber: decimal.RequireFromString("0.01"), Quantity: 1},
	}

	totals := cart.CalculateTotals(items)

	assert.Equal(t, 2, totals.ItemCount)
	assert.Equal(t, 4, totals.TotalItems)
	assert.Equal(t, "59.98", totals.TotalPrice.StringFixed(2))

	empty := cart.CalculateTotals(nil)
	assert.Equal(t, 0, empty.ItemCount)
	assert.True(t, empty.TotalPrice.IsZero())
}

func TestItemsRecord(t *testing.T) {
	t.Run("nil items serialize as an empty array", func(t *testing.T) {
		data, err := cart.MarshalItems(nil)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	})

	t.Run("record keeps every field", func(t *testing.T) {
		item := randomItem()
		item.Quantity = 2

		data, err := cart.MarshalItems([]cart.LineItem{item})
		require.NoError(t, err)

		items, err := cart.UnmarshalItems(data)
		require.NoError(t, err)
		assertItems(t, []cart.LineItem{item}, items)
	})

	t.Run("non array record is corrupt", func(t *testing.T) {
		for _, raw := range []string{`{}`, `"cart"`, `[{"id":`, ``} {
			_, err := cart.UnmarshalItems([]byte(raw))
			assert.ErrorIs(t, err, cart.ErrCorruptRecord, "record %q", raw)
		}
	})
}

func TestMemoryRepository(t *testing.T) {
	repo := cart.NewMemoryRepository()
	ctx := t.Context()

	items, err := repo.Load(ctx, "session:missing")
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.ErrorIs(t, repo.Save(ctx, "", nil), cart.ErrOwnerRequired)
	_, err = repo.Load(ctx, "")
	assert.ErrorIs(t, err, cart.ErrOwnerRequired)

	item := randomItem()
	item.Quantity = 1
	require.NoError(t, repo.Save(ctx, "user:1", []cart.LineItem{item}))

	items, err = repo.Load(ctx, "user:1")
	require.NoError(t, err)
	assertItems(t, []cart.LineItem{item}, items)

	require.NoError(t, repo.Delete(ctx, "user:1"))
	_, ok := repo.Raw("user:1")
	assert.False(t, ok)
}
