package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dishdash/internal/model"
	"dishdash/internal/order"
	"dishdash/internal/rag"
	"dishdash/internal/session"

	"github.com/rs/zerolog"
)

// Action is a user-invokable follow-up attached to a reply, correlated with
// the payment by its opaque reference.
type Action struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Reference string `json:"reference"`
	URL       string `json:"url,omitempty"`
}

const (
	ActionPayNow        = "pay_now"
	ActionVerifyPayment = "verify_payment"
)

// Reply is a single outbound message. Every handled inbound message
// produces exactly one reply.
type Reply struct {
	Text    string   `json:"text"`
	Actions []Action `json:"actions,omitempty"`
}

// OrderManager is the slice of the order lifecycle the controller drives.
type OrderManager interface {
	CreateOrder(ctx context.Context, sess *session.Session, items []string) (*model.Order, error)
	InitiatePayment(ctx context.Context, sess *session.Session, o *model.Order) (*order.PaymentIntent, error)
	CompleteOrder(ctx context.Context, sess *session.Session, reference string) (*order.Confirmation, error)
}

// Controller routes each inbound message to exactly one action based on the
// conversation stage and keyword matching.
type Controller interface {
	// Start opens a new conversation and returns its session ID with the
	// welcome message.
	Start(ctx context.Context) (string, *Reply)

	// HandleMessage processes one inbound message for the session.
	HandleMessage(ctx context.Context, sessionID, text string) (*Reply, error)

	// PayNow handles the pay-now action for a payment reference.
	PayNow(ctx context.Context, sessionID, reference string) (*Reply, error)

	// VerifyPayment handles the externally triggered verify action,
	// re-entering the order lifecycle for the given reference.
	VerifyPayment(ctx context.Context, sessionID, reference string) (*Reply, error)
}

var orderKeywords = []string{"order", "buy", "cart"}
var menuKeywords = []string{"menu", "dishes", "what do you have"}

// controller implements Controller.
type controller struct {
	sessions  *session.Store
	orders    OrderManager
	retriever rag.Retriever
	logger    zerolog.Logger
}

// NewController creates a dialogue controller.
func NewController(
	sessions *session.Store,
	orders OrderManager,
	retriever rag.Retriever,
	logger zerolog.Logger,
) Controller {
	return &controller{
		sessions:  sessions,
		orders:    orders,
		retriever: retriever,
		logger:    logger.With().Str("component", "dialogue").Logger(),
	}
}

func (c *controller) Start(_ context.Context) (string, *Reply) {
	sess := c.sessions.Create()
	return sess.ID, &Reply{Text: welcomeMessage}
}

func (c *controller) HandleMessage(ctx context.Context, sessionID, text string) (*Reply, error) {
	sess := c.sessions.Get(sessionID)
	if sess == nil {
		return nil, model.ErrSessionNotFound
	}
	sess.Touch(time.Now())

	lower := strings.ToLower(text)

	switch sess.Stage {
	case session.StageCollectingPhone:
		// Field collection accepts whatever text was provided.
		sess.Customer.Phone = strings.TrimSpace(text)
		sess.Stage = session.StageCollectingLocation
		return &Reply{Text: promptLocationMessage}, nil

	case session.StageCollectingLocation:
		sess.Customer.Location = strings.TrimSpace(text)
		sess.Stage = session.StageCollectingInstructions
		return &Reply{Text: promptInstructionsMessage}, nil

	case session.StageCollectingInstructions:
		if lower == "none" {
			sess.Customer.Instructions = "None"
		} else {
			sess.Customer.Instructions = strings.TrimSpace(text)
		}
		sess.Stage = session.StageReady
		return &Reply{Text: readyMessage}, nil

	case session.StageReady:
		if strings.Contains(lower, "checkout") {
			return c.checkout(ctx, sess)
		}
		if trimmed := strings.TrimSpace(text); strings.HasPrefix(strings.ToLower(trimmed), "add ") {
			return c.addToCart(sess, trimmed[len("add "):])
		}
		return c.routeByKeyword(ctx, sess, text, lower)

	case session.StageWelcome:
		return c.routeByKeyword(ctx, sess, text, lower)

	default:
		// Closed stage set; anything else is a programming error, not a
		// branch to fall through silently.
		return nil, fmt.Errorf("no transition defined for stage %q", sess.Stage)
	}
}

// routeByKeyword implements the shared welcome/ready branching: order
// intent first, then menu intent, then the general retrieval fallback.
func (c *controller) routeByKeyword(ctx context.Context, sess *session.Session, text, lower string) (*Reply, error) {
	if containsAny(lower, orderKeywords) {
		sess.Stage = session.StageCollectingPhone
		return &Reply{Text: promptPhoneMessage}, nil
	}

	if containsAny(lower, menuKeywords) {
		return c.answerQuery(ctx, sess, text, true), nil
	}

	return c.answerQuery(ctx, sess, text, false), nil
}

// answerQuery runs a retrieval-augmented answer for the raw message text.
// Retrieval failures are folded into a retry message; they never propagate.
func (c *controller) answerQuery(ctx context.Context, sess *session.Session, text string, menuIntent bool) *Reply {
	answer, err := c.retriever.Query(ctx, text)
	if err != nil {
		c.logger.Error().Err(err).Str("session_id", sess.ID).Msg("retrieval failed")
		return &Reply{Text: retryMessage}
	}

	if menuIntent {
		return &Reply{Text: answer.Text + menuSuffix}
	}
	return &Reply{Text: answer.Text}
}

func (c *controller) addToCart(sess *session.Session, item string) (*Reply, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return &Reply{Text: "What would you like to add?"}, nil
	}

	sess.AddToCart(item)

	return &Reply{Text: fmt.Sprintf("Added %q to your cart (%d item(s)). Type 'checkout' when you're ready to pay.",
		item, len(sess.Cart))}, nil
}

func (c *controller) checkout(ctx context.Context, sess *session.Session) (*Reply, error) {
	if len(sess.Cart) == 0 {
		return &Reply{Text: emptyCartMessage}, nil
	}

	o, err := c.orders.CreateOrder(ctx, sess, sess.Cart)
	if err != nil {
		c.logger.Error().Err(err).Str("session_id", sess.ID).Msg("order creation failed")
		return &Reply{Text: userMessage(err)}, nil
	}

	intent, err := c.orders.InitiatePayment(ctx, sess, o)
	if err != nil {
		return &Reply{Text: userMessage(err)}, nil
	}

	return &Reply{
		Text: fmt.Sprintf("Payment Required\n\nOrder Total: NGN %.2f\n\nUse the actions below to complete your payment:", intent.Amount),
		Actions: []Action{
			{Name: ActionPayNow, Label: "Pay Now", Reference: intent.Reference, URL: intent.AuthorizationURL},
			{Name: ActionVerifyPayment, Label: "Verify Payment", Reference: intent.Reference},
		},
	}, nil
}

func (c *controller) PayNow(_ context.Context, sessionID, reference string) (*Reply, error) {
	sess := c.sessions.Get(sessionID)
	if sess == nil {
		return nil, model.ErrSessionNotFound
	}
	sess.Touch(time.Now())

	return &Reply{Text: fmt.Sprintf("Please visit the payment URL to complete your transaction. Reference: %s", reference)}, nil
}

func (c *controller) VerifyPayment(ctx context.Context, sessionID, reference string) (*Reply, error) {
	sess := c.sessions.Get(sessionID)
	if sess == nil {
		return nil, model.ErrSessionNotFound
	}
	sess.Touch(time.Now())

	confirmation, err := c.orders.CompleteOrder(ctx, sess, reference)
	if err != nil {
		return &Reply{Text: userMessage(err)}, nil
	}

	sess.Stage = session.StageWelcome

	return &Reply{Text: "Order Confirmed!\n\n" + confirmation.Summary + confirmedMessageSuffix}, nil
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// userMessage extracts a user-presentable message from an error. Domain
// errors carry one already; anything else gets a generic line.
func userMessage(err error) string {
	if de, ok := err.(*model.DomainError); ok {
		return de.Message
	}
	return "Something went wrong. Please try again."
}
