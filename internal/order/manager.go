package order

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"dishdash/internal/model"
	"dishdash/internal/notify"
	"dishdash/internal/payment"
	"dishdash/internal/rag"
	"dishdash/internal/session"

	"github.com/rs/zerolog"
)

// fallbackEmail is used as the payer email when the customer never supplied
// one. It only affects where the gateway sends the receipt.
const fallbackEmail = "customer@dishdash.com"

// fallbackName stands in for an unnamed customer in gateway metadata and
// rendered summaries.
const fallbackName = "Customer"

const alertTimeout = 30 * time.Second

// PaymentIntent is returned by InitiatePayment for the controller to render
// as the pay-now and verify-payment actions.
type PaymentIntent struct {
	Reference        string
	AuthorizationURL string
	AccessCode       string
	Amount           float64
}

// Confirmation is returned by CompleteOrder after a verified payment.
type Confirmation struct {
	Order   *model.Order
	Summary string
}

// Manager owns the order lifecycle: pending at creation, confirmed after a
// verified payment, nothing else. It is the only writer of Order.Status,
// Order.PaymentReference and Order.PaidAt. Provider failures never escape
// as provider-specific errors; callers receive domain errors carrying a
// user-presentable message.
type Manager struct {
	gateway   payment.Gateway
	notifier  notify.Notifier
	generator rag.SummaryGenerator
	pricing   PricePolicy
	logger    zerolog.Logger
	ids       idGenerator
	alerts    sync.WaitGroup
}

// NewManager creates an order lifecycle manager.
func NewManager(
	gateway payment.Gateway,
	notifier notify.Notifier,
	generator rag.SummaryGenerator,
	pricing PricePolicy,
	logger zerolog.Logger,
) *Manager {
	return &Manager{
		gateway:   gateway,
		notifier:  notifier,
		generator: generator,
		pricing:   pricing,
		logger:    logger.With().Str("component", "order-manager").Logger(),
	}
}

// CreateOrder constructs a pending order from the given items, snapshots
// the session's customer info, prices it, and stores it as the session's
// current order. It has no side effect beyond session mutation.
func (m *Manager) CreateOrder(ctx context.Context, sess *session.Session, items []string) (*model.Order, error) {
	if len(items) == 0 {
		return nil, model.ErrEmptyCart
	}

	total, err := m.pricing.Total(ctx, items)
	if err != nil {
		m.logger.Error().Err(err).Int("items", len(items)).Msg("pricing failed")
		return nil, fmt.Errorf("failed to price order: %w", err)
	}

	now := time.Now()
	o := &model.Order{
		ID:          m.ids.next(now),
		Items:       append([]string(nil), items...),
		Customer:    sess.Customer,
		Status:      model.OrderPending,
		CreatedAt:   now,
		TotalAmount: total,
	}

	sess.CurrentOrder = o

	m.logger.Info().
		Str("order_id", o.ID).
		Int("items", len(o.Items)).
		Float64("total", o.TotalAmount).
		Msg("order created")

	return o, nil
}

// InitiatePayment asks the gateway to initialize a transaction for the
// order. On success the returned reference is recorded in the session. On
// failure the order status is untouched and the error message is safe to
// show the user.
func (m *Manager) InitiatePayment(ctx context.Context, sess *session.Session, o *model.Order) (*PaymentIntent, error) {
	email := o.Customer.Email
	if email == "" {
		email = fallbackEmail
	}

	name := o.Customer.Name
	if name == "" {
		name = fallbackName
	}

	result, err := m.gateway.Initialize(ctx, payment.InitializeRequest{
		Email:  email,
		Amount: o.TotalAmount,
		Metadata: payment.Metadata{
			OrderID:       o.ID,
			CustomerPhone: o.Customer.Phone,
			CustomerName:  name,
		},
	})
	if err != nil {
		m.logger.Error().Err(err).Str("order_id", o.ID).Msg("payment initialization errored")
		return nil, model.NewDomainError(model.ErrCodePaymentInit, "Payment processing error. Please try again.")
	}

	if !result.Success {
		m.logger.Warn().
			Str("order_id", o.ID).
			Str("message", result.Message).
			Msg("payment initialization declined")
		return nil, model.NewDomainError(model.ErrCodePaymentInit,
			fmt.Sprintf("Payment initialization failed: %s", result.Message))
	}

	sess.PaymentReference = result.Reference

	m.logger.Info().
		Str("order_id", o.ID).
		Str("reference", result.Reference).
		Msg("payment initiated")

	return &PaymentIntent{
		Reference:        result.Reference,
		AuthorizationURL: result.AuthorizationURL,
		AccessCode:       result.AccessCode,
		Amount:           o.TotalAmount,
	}, nil
}

// CompleteOrder verifies the payment for reference and, on success,
// confirms the session's current order: status, payment reference and paid
// time are set, the customer summary is rendered, the operator alert is
// dispatched in the background, and the cart is cleared. A failed
// verification mutates nothing.
func (m *Manager) CompleteOrder(ctx context.Context, sess *session.Session, reference string) (*Confirmation, error) {
	o := sess.CurrentOrder
	if o == nil {
		return nil, model.ErrNoCurrentOrder
	}

	verification, err := m.gateway.Verify(ctx, reference)
	if err != nil {
		m.logger.Error().Err(err).Str("reference", reference).Msg("payment verification errored")
		return nil, model.NewDomainError(model.ErrCodePaymentVerify, "Payment verification failed. Please try again or contact support.")
	}

	if !verification.Success {
		m.logger.Warn().
			Str("reference", reference).
			Str("status", verification.Status).
			Msg("payment verification failed")
		return nil, model.NewDomainError(model.ErrCodePaymentVerify,
			fmt.Sprintf("Payment verification failed: %s", verification.Message))
	}

	now := time.Now()
	o.Status = model.OrderConfirmed
	o.PaymentReference = reference
	o.PaidAt = &now

	// The operator alert must not delay the confirmation reply; its
	// failure is logged only.
	m.alerts.Add(1)
	go m.dispatchAlert(o, verification.Status)

	// The customer summary has to exist before the confirmation message
	// goes out, so it is rendered inline.
	summary, err := m.generator.OrderSummary(ctx, rag.SummaryFields{
		CustomerName:        nameOrFallback(o.Customer.Name),
		PhoneNumber:         valueOrNA(o.Customer.Phone),
		Location:            valueOrNA(o.Customer.Location),
		OrderItems:          strings.Join(o.Items, ", "),
		SpecialInstructions: instructionsOrNone(o.Customer.Instructions),
	})
	if err != nil {
		m.logger.Error().Err(err).Str("order_id", o.ID).Msg("summary generation failed")
		summary = "Your order " + o.ID + " has been confirmed."
	}

	sess.ClearCart()

	m.logger.Info().
		Str("order_id", o.ID).
		Str("reference", reference).
		Msg("order confirmed")

	return &Confirmation{Order: o, Summary: summary}, nil
}

// Flush blocks until all in-flight operator alerts have finished. Called on
// shutdown and by tests.
func (m *Manager) Flush() {
	m.alerts.Wait()
}

func (m *Manager) dispatchAlert(o *model.Order, paymentStatus string) {
	defer m.alerts.Done()

	ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
	defer cancel()

	alert, err := m.generator.OperatorAlert(ctx, rag.AlertFields{
		CustomerName:        nameOrFallback(o.Customer.Name),
		PhoneNumber:         valueOrNA(o.Customer.Phone),
		Location:            valueOrNA(o.Customer.Location),
		OrderItems:          strings.Join(o.Items, ", "),
		SpecialInstructions: instructionsOrNone(o.Customer.Instructions),
		OrderTotal:          fmt.Sprintf("%.2f", o.TotalAmount),
		PaymentStatus:       paymentStatus,
	})
	if err != nil {
		m.logger.Error().Err(err).Str("order_id", o.ID).Msg("alert generation failed")
		return
	}

	if _, err := m.notifier.Send(ctx, alert); err != nil {
		m.logger.Error().Err(err).Str("order_id", o.ID).Msg("operator notification failed")
	}
}

func nameOrFallback(name string) string {
	if name == "" {
		return fallbackName
	}
	return name
}

func valueOrNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

func instructionsOrNone(v string) string {
	if v == "" {
		return "None"
	}
	return v
}
