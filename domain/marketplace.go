package domain

import (
	"time"

	"github.com/google/uuid"
)

// Listing is a marketplace offer published by a farmer.
type Listing struct {
	ID          uuid.UUID `json:"id"`
	SellerID    string    `json:"sellerId"`
	Title       string    `json:"title"`
	Crop        string    `json:"crop"`
	Description string    `json:"description"`
	// Price per quintal in rupees.
	Price     float64   `json:"price"`
	Quantity  string    `json:"quantity"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
}
