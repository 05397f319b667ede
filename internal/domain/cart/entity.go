// internal/domain/cart/entity.go
package cart

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// ItemID identifies a product in the cart. Catalog ids arrive either as
// integers or as string SKUs, both are kept in their textual form.
type ItemID string

// UnmarshalJSON accepts a JSON string or a JSON number
func (id *ItemID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ItemID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id must be a string or a number: %s", string(data))
	}
	*id = ItemID(n.String())
	return nil
}

// LineItem is one product entry in the cart together with its quantity
type LineItem struct {
	ID             ItemID          `json:"id"`
	Name           string          `json:"name"`
	Collection     string          `json:"collection"`
	Price          string          `json:"price"` // display label, not used for arithmetic
	PriceNumber    decimal.Decimal `json:"priceNumber"`
	Image          string          `json:"image"`
	Description    string          `json:"description,omitempty"`
	Specifications []string        `json:"specifications,omitempty"`
	Quantity       int             `json:"quantity"`
}

// Subtotal returns priceNumber * quantity
func (li LineItem) Subtotal() decimal.Decimal {
	return li.PriceNumber.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// CartTotals represents calculated cart totals
type CartTotals struct {
	ItemCount  int             `json:"item_count"`  // Number of unique items
	TotalItems int             `json:"total_items"` // Sum of all quantities
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Snapshot is an immutable view of a cart at one committed version.
// Every reader of a given version sees the same items and totals.
type Snapshot struct {
	Owner   string     `json:"owner"`
	Version uint64     `json:"version"`
	Items   []LineItem `json:"items"`
	Totals  CartTotals `json:"totals"`
}

// CalculateTotals derives the cart totals from its line items
func CalculateTotals(items []LineItem) CartTotals {
	totals := CartTotals{
		ItemCount:  len(items),
		TotalPrice: decimal.Zero,
	}

	for _, item := range items {
		totals.TotalItems += item.Quantity
		totals.TotalPrice = totals.TotalPrice.Add(item.Subtotal())
	}

	return totals
}

// MarshalItems serializes a line-item collection into the persisted record format
func MarshalItems(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return data, nil
}

// UnmarshalItems parses a persisted record. Anything that is not a JSON array
// of line items yields ErrCorruptRecord.
func UnmarshalItems(data []byte) ([]LineItem, error) {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return items, nil
}

// sanitize enforces the cart invariants on items coming from outside the
// store: one entry per id, quantity >= 1 and non-negative prices.
func sanitize(items []LineItem) []LineItem {
	result := make([]LineItem, 0, len(items))
	index := make(map[ItemID]int, len(items))

	for _, item := range items {
		if item.ID == "" || item.Quantity < 1 {
			continue
		}
		item = normalize(item)
		if i, ok := index[item.ID]; ok {
			result[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(result)
		result = append(result, item)
	}

	return result
}

// normalize also detaches Specifications from the caller's backing array
func normalize(item LineItem) LineItem {
	item.Specifications = slices.Clone(item.Specifications)
	if item.PriceNumber.IsNegative() {
		item.PriceNumber = decimal.Zero
	}
	return item
}
