package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// ReferencePrice is one price-validity window ("season") for a resource.
// The history is append-only: revising a price closes the open record and
// inserts a new one. For a given resource at most one record has a nil
// EndDate at any time.
type ReferencePrice struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ResourceID     string             `json:"resource_id" bson:"resource_id"`
	SeasonNumber   int                `json:"season_number" bson:"season_number"`
	ReferencePrice float64            `json:"reference_price" bson:"reference_price"` // in USD
	StartDate      time.Time          `json:"start_date" bson:"start_date"`
	EndDate        *time.Time         `json:"end_date,omitempty" bson:"end_date,omitempty"` // nil = currently open
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// Open reports whether this record is the resource's current price window.
func (p *ReferencePrice) Open() bool {
	return p.EndDate == nil
}
