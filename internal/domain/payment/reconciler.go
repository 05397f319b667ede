// internal/domain/payment/reconciler.go
package payment

import (
	"context"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var reconciliations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "payment_reconciliations_total",
		Help: "Payment reconciliations by outcome",
	},
	[]string{"outcome"},
)

// ReconcilerConfig holds the gateway-specific reconciliation settings
type ReconcilerConfig struct {
	AcceptedStates  []string
	DefaultCurrency string
	Timeout         time.Duration
}

// Reconciler resolves the outcome of a payment after the shopper returns from
// the gateway and clears the cart only on a recognized accepted state.
// Redirect parameters other than the reference are never trusted.
type Reconciler struct {
	gateway         Gateway
	guard           Guard
	accepted        map[string]struct{}
	defaultCurrency string
	timeout         time.Duration
	lang            language.Tag
	logger          logrus.FieldLogger
}

// NewReconciler creates a new reconciler
func NewReconciler(gateway Gateway, guard Guard, cfg ReconcilerConfig, logger logrus.FieldLogger) *Reconciler {
	accepted := make(map[string]struct{}, len(cfg.AcceptedStates))
	for _, s := range cfg.AcceptedStates {
		accepted[s] = struct{}{}
	}

	if guard == nil {
		guard = NewMemoryGuard()
	}

	return &Reconciler{
		gateway:         gateway,
		guard:           guard,
		accepted:        accepted,
		defaultCurrency: cfg.DefaultCurrency,
		timeout:         cfg.Timeout,
		lang:            language.Spanish,
		logger:          logger,
	}
}

// IsAccepted reports whether state is in the accepted vocabulary (exact match)
func (r *Reconciler) IsAccepted(state string) bool {
	_, ok := r.accepted[state]
	return ok
}

// Reconcile handles a gateway return URL query. It never fails: every problem
// ends in StatusNoInformation with the cart untouched.
func (r *Reconciler) Reconcile(ctx context.Context, query url.Values, cart CartClearer) Confirmation {
	ref := ReferenceFromQuery(query)
	if ref == "" {
		return r.finish(Confirmation{Status: StatusNoInformation})
	}

	log := r.logger.WithField("reference", ref)

	acquired, err := r.guard.TryAcquire(ctx, ref)
	if err != nil {
		log.WithError(err).Warn("Reconciliation guard unavailable, continuing without it")
		acquired = true
	}
	if !acquired {
		return r.finish(Confirmation{Status: StatusPending, Reference: ref})
	}
	defer func() {
		if err := r.guard.Release(context.WithoutCancel(ctx), ref); err != nil {
			log.WithError(err).Warn("Failed to release reconciliation guard")
		}
	}()

	verifyCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		verifyCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	body, err := r.gateway.Verify(verifyCtx, ref)
	if err != nil {
		log.WithError(err).Warn("Payment verification failed")
		return r.finish(Confirmation{Status: StatusNoInformation, Reference: ref})
	}

	payload, ok := Unwrap(body)
	if !ok {
		log.Warn("Payment verification returned no transaction record")
		return r.finish(Confirmation{Status: StatusNoInformation, Reference: ref})
	}

	conf := r.interpret(ref, payload)
	if conf.Accepted && cart != nil {
		cart.ClearCart(ctx)
		conf.CartCleared = true
	}

	log.WithFields(logrus.Fields{
		"state":        conf.State,
		"accepted":     conf.Accepted,
		"cart_cleared": conf.CartCleared,
	}).Info("Payment reconciled")

	return r.finish(conf)
}

func (r *Reconciler) interpret(ref string, p Payload) Confirmation {
	conf := Confirmation{
		Status:        StatusResolved,
		Reference:     ref,
		Currency:      TextOr(p, CurrencyFields, r.defaultCurrency),
		Invoice:       TextOr(p, InvoiceFields, Placeholder),
		Description:   TextOr(p, DescriptionFields, Placeholder),
		PaymentMethod: TextOr(p, PaymentMethodFields, Placeholder),
		Date:          Placeholder,
		AmountText:    Placeholder,
		StateLabel:    TextOr(p, StateLabelFields, UnknownState),
		Raw:           p,
	}

	if v, ok := FirstOf(p, StateFields); ok {
		conf.State = stringify(v)
		conf.Accepted = conf.State != "" && r.IsAccepted(conf.State)
	}

	if d, ok := Date(p, DateFields); ok {
		conf.Date = d
	}

	if amount, ok := Amount(p, AmountFields); ok {
		conf.Amount = amount
		conf.AmountText = r.formatAmount(amount, conf.Currency)
	}

	return conf
}

func (r *Reconciler) formatAmount(amount decimal.Decimal, code string) string {
	p := message.NewPrinter(r.lang)

	unit, err := currency.ParseISO(code)
	if err != nil {
		return p.Sprintf("%s %.2f", code, amount.InexactFloat64())
	}
	return p.Sprint(currency.ISO(unit.Amount(amount.InexactFloat64())))
}

func (r *Reconciler) finish(conf Confirmation) Confirmation {
	reconciliations.WithLabelValues(outcome(conf)).Inc()
	return conf
}

func outcome(conf Confirmation) string {
	switch {
	case conf.Status != StatusResolved:
		return string(conf.Status)
	case conf.Accepted:
		return "accepted"
	default:
		return "not_accepted"
	}
}
