package payment_test

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/alma-store/storefront-api/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceFromQuery(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  string
	}{
		{name: "ref_payco", query: url.Values{"ref_payco": {"abc"}}, want: "abc"},
		{name: "x_ref_payco", query: url.Values{"x_ref_payco": {"xyz"}}, want: "xyz"},
		{name: "ref_payco wins", query: url.Values{"ref_payco": {"abc"}, "x_ref_payco": {"xyz"}}, want: "abc"},
		{name: "blank falls through", query: url.Values{"ref_payco": {"  "}, "x_ref_payco": {"xyz"}}, want: "xyz"},
		{name: "missing", query: url.Values{"x_transaction_state": {"Aceptada"}}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, payment.ReferenceFromQuery(tt.query))
		})
	}
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantOK bool
		key    string
	}{
		{name: "nested", body: `{"success":true,"data":{"x_transaction_state":"Aceptada"}}`, wantOK: true, key: "x_transaction_state"},
		{name: "flat", body: `{"x_transaction_state":"Aceptada"}`, wantOK: true, key: "x_transaction_state"},
		{name: "null data is flat", body: `{"data":null,"state":"Rechazada"}`, wantOK: true, key: "state"},
		{name: "string data", body: `{"data":"not found"}`},
		{name: "array data", body: `{"data":[1,2]}`},
		{name: "array body", body: `[{"state":"Aceptada"}]`},
		{name: "string body", body: `"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body any
			require.NoError(t, json.Unmarshal([]byte(tt.body), &body))

			p, ok := payment.Unwrap(body)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Contains(t, p, tt.key)
			}
		})
	}
}

func TestFirstOf(t *testing.T) {
	p := payment.Payload{
		"state":             "Pendiente",
		"transaction_state": nil,
		"x_response":        "Aceptada",
	}

	v, ok := payment.FirstOf(p, payment.StateFields)
	require.True(t, ok)
	assert.Equal(t, "Pendiente", v)

	_, ok = payment.FirstOf(payment.Payload{}, payment.StateFields)
	assert.False(t, ok)
}

func TestText(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   string
		wantOK bool
	}{
		{name: "string", value: "Visa", want: "Visa", wantOK: true},
		{name: "number", value: json.Number("12.50"), want: "12.50", wantOK: true},
		{name: "float", value: float64(150000), want: "150000", wantOK: true},
		{name: "bool", value: true, want: "true", wantOK: true},
		{name: "empty string", value: "", wantOK: false},
		{name: "object", value: map[string]any{"a": 1}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := payment.Text(payment.Payload{"x_type_payment": tt.value}, payment.PaymentMethodFields)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, payment.Placeholder, payment.TextOr(payment.Payload{}, payment.InvoiceFields, payment.Placeholder))
}

func TestAmount(t *testing.T) {
	d, ok := payment.Amount(payment.Payload{"amount": json.Number("150000.50")}, payment.AmountFields)
	require.True(t, ok)
	assert.Equal(t, "150000.5", d.String())

	d, ok = payment.Amount(payment.Payload{"value": " 99 "}, payment.AmountFields)
	require.True(t, ok)
	assert.Equal(t, "99", d.String())

	_, ok = payment.Amount(payment.Payload{"x_amount": "gratis"}, payment.AmountFields)
	assert.False(t, ok)
}

func TestDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "gateway layout", value: "2024-03-05 14:22:01", want: "2024-03-05 14:22:01"},
		{name: "iso", value: "2024-03-05T14:22:01", want: "2024-03-05 14:22:01"},
		{name: "rfc3339", value: "2024-03-05T14:22:01Z", want: "2024-03-05 14:22:01"},
		{name: "date only", value: "2024-03-05", want: "2024-03-05 00:00:00"},
		{name: "unknown layout is kept", value: "05/03/2024", want: "05/03/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := payment.Date(payment.Payload{"transaction_date": tt.value}, payment.DateFields)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
