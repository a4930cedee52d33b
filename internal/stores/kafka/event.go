package kafka

import "time"

const TopicOrderCompleted = `storefront.order-completed`

// OrderCompletedEvent is published after a checkout succeeds so downstream
// consumers (fulfilment, analytics) can pick the order up.
type OrderCompletedEvent struct {
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}
