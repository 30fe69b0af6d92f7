package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemsResponse holds the full list owned by one user.
type ItemsResponse struct {
	Items []Item `json:"items"`
}

// ItemResponse represents a response with a single item.
type ItemResponse struct {
	Item Item `json:"item"`
}

// PurgeResponse reports how many purchased items a bulk purge removed.
type PurgeResponse struct {
	Deleted int64 `json:"deleted"`
}

// Item represents a single shopping-list entry owned by exactly one user.
type Item struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Quantity  *float64  `json:"quantity,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	Completed bool      `json:"completed"`
	UserID    uuid.UUID `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
