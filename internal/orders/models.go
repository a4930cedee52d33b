package orders

import (
	"time"

	"storefront/internal/cart"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Order is immutable after creation. Items is the cart snapshot taken at
// submission time; TotalAmount was computed over that snapshot.
type Order struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	Items       []cart.Line `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
}
