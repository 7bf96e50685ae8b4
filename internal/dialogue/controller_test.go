package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dishdash/internal/model"
	"dishdash/internal/order"
	"dishdash/internal/rag"
	"dishdash/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderManager is a mock implementation of OrderManager.
type MockOrderManager struct {
	mock.Mock
}

func (m *MockOrderManager) CreateOrder(ctx context.Context, sess *session.Session, items []string) (*model.Order, error) {
	args := m.Called(ctx, sess, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	o := args.Get(0).(*model.Order)
	sess.CurrentOrder = o
	return o, args.Error(1)
}

func (m *MockOrderManager) InitiatePayment(ctx context.Context, sess *session.Session, o *model.Order) (*order.PaymentIntent, error) {
	args := m.Called(ctx, sess, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.PaymentIntent), args.Error(1)
}

func (m *MockOrderManager) CompleteOrder(ctx context.Context, sess *session.Session, reference string) (*order.Confirmation, error) {
	args := m.Called(ctx, sess, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Confirmation), args.Error(1)
}

// MockRetriever is a mock implementation of rag.Retriever.
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Query(ctx context.Context, text string) (*rag.Answer, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rag.Answer), args.Error(1)
}

func newTestController(t *testing.T) (Controller, *session.Store, *MockOrderManager, *MockRetriever) {
	t.Helper()
	store := session.NewStore(zerolog.Nop())
	orders := new(MockOrderManager)
	retriever := new(MockRetriever)
	return NewController(store, orders, retriever, zerolog.Nop()), store, orders, retriever
}

func TestStart(t *testing.T) {
	c, store, _, _ := newTestController(t)

	id, reply := c.Start(context.Background())

	require.NotEmpty(t, id)
	assert.Contains(t, reply.Text, "Welcome to DishDash OrderBot")
	assert.Equal(t, session.StageWelcome, store.Get(id).Stage)
}

func TestHandleMessage_UnknownSession(t *testing.T) {
	c, _, _, _ := newTestController(t)

	reply, err := c.HandleMessage(context.Background(), "missing", "hello")

	assert.Nil(t, reply)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestHandleMessage_OrderCollectionSequence(t *testing.T) {
	c, store, _, _ := newTestController(t)
	ctx := context.Background()
	id, _ := c.Start(ctx)

	reply, err := c.HandleMessage(ctx, id, "I want to order")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "phone number")
	assert.Equal(t, session.StageCollectingPhone, store.Get(id).Stage)

	reply, err = c.HandleMessage(ctx, id, "+2348000000001")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "delivery location")
	assert.Equal(t, session.StageCollectingLocation, store.Get(id).Stage)

	reply, err = c.HandleMessage(ctx, id, "Lagos")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "special instructions")
	assert.Equal(t, session.StageCollectingInstructions, store.Get(id).Stage)

	reply, err = c.HandleMessage(ctx, id, "none")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "You're all set")

	sess := store.Get(id)
	assert.Equal(t, session.StageReady, sess.Stage)
	assert.Equal(t, model.CustomerInfo{
		Phone:        "+2348000000001",
		Location:     "Lagos",
		Instructions: "None",
	}, sess.Customer)
}

func TestHandleMessage_InstructionsCaseFolding(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"none", "None"},
		{"NONE", "None"},
		{"None", "None"},
		{"extra spicy, no onions", "extra spicy, no onions"},
		{"  hold the pepper  ", "hold the pepper"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, store, _, _ := newTestController(t)
			ctx := context.Background()
			id, _ := c.Start(ctx)
			store.Get(id).Stage = session.StageCollectingInstructions

			_, err := c.HandleMessage(ctx, id, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, store.Get(id).Customer.Instructions)
		})
	}
}

func TestHandleMessage_FieldCollectionAcceptsAnything(t *testing.T) {
	// There is no input validation on collected fields.
	c, store, _, _ := newTestController(t)
	ctx := context.Background()
	id, _ := c.Start(ctx)
	store.Get(id).Stage = session.StageCollectingPhone

	_, err := c.HandleMessage(ctx, id, "  not a phone number  ")
	require.NoError(t, err)
	assert.Equal(t, "not a phone number", store.Get(id).Customer.Phone)
}

func TestHandleMessage_MenuQuery(t *testing.T) {
	c, _, _, retriever := newTestController(t)
	ctx := context.Background()
	id, _ := c.Start(ctx)

	// The raw message text is passed to the retriever unmodified.
	retriever.On("Query", mock.Anything, "What's on the Menu today?").
		Return(&rag.Answer{Text: "We have Jollof Rice and Egusi Soup."}, nil)

	reply, err := c.HandleMessage(ctx, id, "What's on the Menu today?")

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(reply.Text, menuSuffix))
	assert.Contains(t, reply.Text, "Jollof Rice")
	retriever.AssertNumberOfCalls(t, "Query", 1)
}

func TestHandleMessage_GeneralQuery(t *testing.T) {
	c, _, _, retriever := newTestController(t)
	ctx := context.Background()
	id, _ := c.Start(ctx)

	retriever.On("Query", mock.Anything, "Is egusi soup healthy?").
		Return(&rag.Answer{Text: "Egusi is rich in protein."}, nil)

	reply, err := c.HandleMessage(ctx, id, "Is egusi soup healthy?")

	require.NoError(t, err)
	assert.Equal(t, "Egusi is rich in protein.", reply.Text)
}

func TestHandleMessage_RetrievalFailure(t *testing.T) {
	c, _, _, retriever := newTestController(t)
	ctx := context.Background()
	id, _ := c.Start(ctx)

	retriever.On("Query", mock.Anything, mock.Anything).
		Return(nil, errors.New("index unreachable"))

	reply, err := c.HandleMessage(ctx, id, "what do you have")

	// Retrieval failures fold into a retry message, never an error.
	require.NoError(t, err)
	assert.Equal(t, retryMessage, reply.Text)
}

func TestHandleMessage_AddToCart(t *testing.T) {
	c, store, _, _ := newTestController(t)
	ctx := context.Background()
	id, _ := c.Start(ctx)
	store.Get(id).Stage = session.StageReady

	reply, err := c.HandleMessage(ctx, id, "Add Jollof Rice")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Jollof Rice")

	_, err = c.HandleMessage(ctx, id, "add Egusi Soup")
	require.NoError(t, err)

	assert.Equal(t, []string{"Jollof Rice", "Egusi Soup"}, store.Get(id).Cart)
}

func TestHandleMessage_CheckoutEmptyCart(t *testing.T) {
	c, store, orders, _ := newTestController(t)
	ctx := context.Background()
	id, _ := c.Start(ctx)
	store.Get(id).Stage = session.StageReady

	reply, err := c.HandleMessage(ctx, id, "checkout")

	require.NoError(t, err)
	assert.Equal(t, emptyCartMessage, reply.Text)
	orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleMessage_CheckoutSuccess(t *testing.T) {
	c, store, orders, _ := newTestController(t)
	ctx := context.Background()
	id, _ := c.Start(ctx)
	sess := store.Get(id)
	sess.Stage = session.StageReady
	sess.Cart = []string{"Jollof Rice", "Egusi Soup"}

	o := &model.Order{ID: "DD20260828120000", Items: sess.Cart, Status: model.OrderPending, TotalAmount: 3000}
	orders.On("CreateOrder", mock.Anything, sess, []string{"Jollof Rice", "Egusi Soup"}).Return(o, nil)
	orders.On("InitiatePayment", mock.Anything, sess, o).Return(&order.PaymentIntent{
		Reference:        "ref-9",
		AuthorizationURL: "https://pay.example.com/ref-9",
		Amount:           3000,
	}, nil)

	reply, err := c.HandleMessage(ctx, id, "checkout")

	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Payment Required")
	require.Len(t, reply.Actions, 2)
	assert.Equal(t, ActionPayNow, reply.Actions[0].Name)
	assert.Equal(t, "ref-9", reply.Actions[0].Reference)
	assert.Equal(t, "https://pay.example.com/ref-9", reply.Actions[0].URL)
	assert.Equal(t, ActionVerifyPayment, reply.Actions[1].Name)
	assert.Equal(t, "ref-9", reply.Actions[1].Reference)
	orders.AssertExpectations(t)
}

func TestHandleMessage_CheckoutInitiationDeclined(t *testing.T) {
	c, store, orders, _ := newTestController(t)
	ctx := context.Background()
	id, _ := c.Start(ctx)
	sess := store.Get(id)
	sess.Stage = session.StageReady
	sess.Cart = []string{"Jollof Rice"}

	o := &model.Order{ID: "DD1", Items: sess.Cart, Status: model.OrderPending}
	orders.On("CreateOrder", mock.Anything, sess, mock.Anything).Return(o, nil)
	orders.On("InitiatePayment", mock.Anything, sess, o).
		Return(nil, model.NewDomainError(model.ErrCodePaymentInit, "Payment initialization failed: Invalid key"))

	reply, err := c.HandleMessage(ctx, id, "checkout")

	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Payment initialization failed")
	assert.Empty(t, reply.Actions)
}

func TestVerifyPayment_Success(t *testing.T) {
	c, store, orders, _ := newTestController(t)
	ctx := context.Background()
	id, _ := c.Start(ctx)
	sess := store.Get(id)
	sess.Stage = session.StageReady

	orders.On("CompleteOrder", mock.Anything, sess, "ref-9").Return(&order.Confirmation{
		Order:   &model.Order{ID: "DD1", Status: model.OrderConfirmed},
		Summary: "ORDER SUMMARY",
	}, nil)

	reply, err := c.VerifyPayment(ctx, id, "ref-9")

	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Order Confirmed!")
	assert.Contains(t, reply.Text, "ORDER SUMMARY")
	assert.Equal(t, session.StageWelcome, sess.Stage)
}

func TestVerifyPayment_Failure(t *testing.T) {
	c, store, orders, _ := newTestController(t)
	ctx := context.Background()
	id, _ := c.Start(ctx)
	sess := store.Get(id)
	sess.Stage = session.StageReady

	orders.On("CompleteOrder", mock.Anything, sess, "ref-9").
		Return(nil, model.NewDomainError(model.ErrCodePaymentVerify, "Payment verification failed: declined"))

	reply, err := c.VerifyPayment(ctx, id, "ref-9")

	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Payment verification failed")
	assert.Equal(t, session.StageReady, sess.Stage, "stage must not reset on failed verification")
}

func TestPayNow(t *testing.T) {
	c, _, _, _ := newTestController(t)
	ctx := context.Background()
	id, _ := c.Start(ctx)

	reply, err := c.PayNow(ctx, id, "ref-9")

	require.NoError(t, err)
	assert.Contains(t, reply.Text, "ref-9")
}

func TestHandleMessage_ReadyStageOrderKeywordRestartsCollection(t *testing.T) {
	c, store, _, _ := newTestController(t)
	ctx := context.Background()
	id, _ := c.Start(ctx)
	store.Get(id).Stage = session.StageReady

	reply, err := c.HandleMessage(ctx, id, "I want to buy food")

	require.NoError(t, err)
	assert.Contains(t, reply.Text, "phone number")
	assert.Equal(t, session.StageCollectingPhone, store.Get(id).Stage)
}
