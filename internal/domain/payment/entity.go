// internal/domain/payment/entity.go
package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Placeholder is rendered for any confirmation field the gateway did not report
const Placeholder = "-"

// UnknownState is displayed when the gateway reported no transaction state
const UnknownState = "Desconocido"

// Status is the terminal state of a reconciliation attempt
type Status string

const (
	// StatusResolved means the gateway answered with a usable payload
	StatusResolved Status = "resolved"
	// StatusPending means another reconciliation of the same reference is in flight
	StatusPending Status = "pending"
	// StatusNoInformation covers a missing reference and every gateway failure
	StatusNoInformation Status = "no_information"
)

var (
	// ErrNoInformation is returned by the gateway client for any unusable response
	ErrNoInformation = errors.New("no payment information")
)

// Confirmation is the reconciled outcome of a returning payment
type Confirmation struct {
	Status        Status          `json:"status"`
	Reference     string          `json:"reference,omitempty"`
	State         string          `json:"state,omitempty"`
	StateLabel    string          `json:"state_label,omitempty"`
	Accepted      bool            `json:"accepted"`
	CartCleared   bool            `json:"cart_cleared"`
	Amount        decimal.Decimal `json:"amount"`
	AmountText    string          `json:"amount_text,omitempty"`
	Currency      string          `json:"currency,omitempty"`
	Invoice       string          `json:"invoice,omitempty"`
	Description   string          `json:"description,omitempty"`
	Date          string          `json:"date,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`

	Raw Payload `json:"-"`
}

// CartClearer is the part of the cart store reconciliation needs
type CartClearer interface {
	ClearCart(ctx context.Context)
}

// Gateway fetches the authoritative transaction record for a reference.
// The returned body is the decoded JSON document, not yet unwrapped.
type Gateway interface {
	Verify(ctx context.Context, reference string) (any, error)
}

// Guard prevents concurrent reconciliation of the same reference
type Guard interface {
	TryAcquire(ctx context.Context, reference string) (bool, error)
	Release(ctx context.Context, reference string) error
}
