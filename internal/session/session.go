package session

import (
	"time"

	"dishdash/internal/model"
)

// Stage is the position of a conversation in the fixed order-collection
// sequence. Transitions are owned by the dialogue controller.
type Stage string

const (
	StageWelcome                Stage = "welcome"
	StageCollectingPhone        Stage = "collecting_phone"
	StageCollectingLocation     Stage = "collecting_location"
	StageCollectingInstructions Stage = "collecting_instructions"
	StageReady                  Stage = "ready"
)

// Valid reports whether s is a member of the closed stage set.
func (s Stage) Valid() bool {
	switch s {
	case StageWelcome, StageCollectingPhone, StageCollectingLocation,
		StageCollectingInstructions, StageReady:
		return true
	}
	return false
}

// Session is the per-conversation state. It lives only in memory for the
// lifetime of the conversation; nothing here is durable. A session owns at
// most one live order at a time.
//
// The conversation model processes one inbound message at a time, so the
// fields need no lock of their own; only the Store's map is shared.
type Session struct {
	ID               string
	Stage            Stage
	Customer         model.CustomerInfo
	Cart             []string
	CurrentOrder     *model.Order
	PaymentReference string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AddToCart appends an item to the cart. The cart is only mutable before an
// order is created from it.
func (s *Session) AddToCart(item string) {
	s.Cart = append(s.Cart, item)
}

// ClearCart empties the cart after a confirmed order.
func (s *Session) ClearCart() {
	s.Cart = nil
}

// Touch records conversation activity for idle-session accounting.
func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now
}
