package payment

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payload is the unwrapped gateway transaction record
type Payload map[string]any

// Extractor pulls one candidate value out of a payload
type Extractor func(Payload) (any, bool)

// Field extracts the named key when it is present and not null
func Field(name string) Extractor {
	return func(p Payload) (any, bool) {
		v, ok := p[name]
		if !ok || v == nil {
			return nil, false
		}
		return v, true
	}
}

// FirstOf returns the value of the first extractor that matches
func FirstOf(p Payload, extractors []Extractor) (any, bool) {
	for _, extract := range extractors {
		if v, ok := extract(p); ok {
			return v, true
		}
	}
	return nil, false
}

// The gateway reports the same information under different keys depending on
// the response variant. Order matters: the first present field wins.
var (
	ReferenceParams = []string{"ref_payco", "x_ref_payco"}

	StateFields         = []Extractor{Field("x_transaction_state"), Field("transaction_state"), Field("state"), Field("x_response")}
	// x_response decides acceptance but is never shown as the state
	StateLabelFields    = []Extractor{Field("x_transaction_state"), Field("transaction_state"), Field("state")}
	AmountFields        = []Extractor{Field("x_amount"), Field("amount"), Field("value")}
	CurrencyFields      = []Extractor{Field("x_currency_code"), Field("currency"), Field("x_currency")}
	InvoiceFields       = []Extractor{Field("x_id_invoice"), Field("invoice"), Field("x_ref_payco"), Field("reference")}
	DescriptionFields   = []Extractor{Field("x_description"), Field("description"), Field("x_extra1")}
	DateFields          = []Extractor{Field("x_transaction_date"), Field("transaction_date")}
	PaymentMethodFields = []Extractor{Field("x_type_payment"), Field("payment_method"), Field("x_payment_method")}
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ReferenceFromQuery returns the transaction reference of a gateway return URL
func ReferenceFromQuery(query url.Values) string {
	for _, name := range ReferenceParams {
		if ref := strings.TrimSpace(query.Get(name)); ref != "" {
			return ref
		}
	}
	return ""
}

// Unwrap finds the transaction record in a gateway response. Some responses
// nest it under "data", others are flat.
func Unwrap(body any) (Payload, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, false
	}

	data, present := obj["data"]
	if !present || data == nil {
		return Payload(obj), true
	}

	nested, ok := data.(map[string]any)
	if !ok {
		return nil, false
	}
	return Payload(nested), true
}

// Text returns the first matching field as display text
func Text(p Payload, extractors []Extractor) (string, bool) {
	v, ok := FirstOf(p, extractors)
	if !ok {
		return "", false
	}
	s := stringify(v)
	return s, s != ""
}

// TextOr returns the first matching field as text, or fallback
func TextOr(p Payload, extractors []Extractor, fallback string) string {
	if s, ok := Text(p, extractors); ok {
		return s
	}
	return fallback
}

// Amount returns the first matching field parsed as a decimal amount
func Amount(p Payload, extractors []Extractor) (decimal.Decimal, bool) {
	s, ok := Text(p, extractors)
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Date returns the first matching field normalized to "2006-01-02 15:04:05".
// Values in an unknown layout are returned verbatim.
func Date(p Payload, extractors []Extractor) (string, bool) {
	s, ok := Text(p, extractors)
	if !ok {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02 15:04:05"), true
		}
	}
	return s, true
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
