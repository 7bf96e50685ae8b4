package model

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	// OrderPending is the initial status of every order. An order stays
	// pending until its payment has been verified; there is no cancelled or
	// failed status.
	OrderPending OrderStatus = "pending"

	// OrderConfirmed is the terminal status, reached only through a
	// successful payment verification.
	OrderConfirmed OrderStatus = "confirmed"
)

// CustomerInfo holds the details collected during the order dialogue.
// An empty string means the customer never supplied the field.
type CustomerInfo struct {
	Phone        string `json:"phone,omitempty"`
	Location     string `json:"location,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
}

// Order represents a customer order. TotalAmount is computed once at
// creation and never recomputed; Items is a snapshot of the cart at
// creation time. Only the order lifecycle manager writes Status,
// PaymentReference and PaidAt.
type Order struct {
	ID               string       `json:"orderId"`
	Items            []string     `json:"items"`
	Customer         CustomerInfo `json:"customerInfo"`
	Status           OrderStatus  `json:"status"`
	CreatedAt        time.Time    `json:"createdAt"`
	TotalAmount      float64      `json:"totalAmount"`
	PaymentReference string       `json:"paymentReference,omitempty"`
	PaidAt           *time.Time   `json:"paidAt,omitempty"`
}
