package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Event is the quotation/production the engine books resources against. Only
// the fields the scheduling core needs are modeled here; the full event CRUD
// lives in the back-office service.
type Event struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Code      string             `json:"code" bson:"code"` // group code shared by all bookings of one quotation revision
	Name      string             `json:"name" bson:"name"`
	ClientID  string             `json:"client_id,omitempty" bson:"client_id,omitempty"`
	StartDate time.Time          `json:"start_date" bson:"start_date"`
	EndDate   time.Time          `json:"end_date" bson:"end_date"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
