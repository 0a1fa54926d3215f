package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// ResourceSnapshot is the denormalized copy of resource attributes frozen at
// write time. Only the fields relevant to the resource kind are populated:
// equipment carries name/serial/kind/location/status, workers carry
// role/status/name, services carry the detail payload and provider identity.
type ResourceSnapshot struct {
	Name          string         `json:"name" bson:"name"`
	Kind          ResourceKind   `json:"kind" bson:"kind"`
	Serial        string         `json:"serial,omitempty" bson:"serial,omitempty"`
	Location      string         `json:"location,omitempty" bson:"location,omitempty"`
	Role          string         `json:"role,omitempty" bson:"role,omitempty"`
	ProviderID    string         `json:"provider_id,omitempty" bson:"provider_id,omitempty"`
	ServiceDetail string         `json:"service_detail,omitempty" bson:"service_detail,omitempty"`
	Status        ResourceStatus `json:"status" bson:"status"`
}

// WorkerAssignment is one worker filling a head-count slot on a worker-kind
// assignation.
type WorkerAssignment struct {
	WorkerID string `json:"worker_id" bson:"worker_id"`
	Name     string `json:"name" bson:"name"`
}

// Assignation is a booking of one resource to one event for the half-open
// window [AvailableFrom, AvailableTo). The record is immutable once created
// except for worker-count reconciliation; a window change is modeled as a new
// record plus deletion of the old one.
type Assignation struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	EventID           string             `json:"event_id" bson:"event_id"`
	EventCode         string             `json:"event_code" bson:"event_code"` // group code shared by one quotation revision
	ResourceID        string             `json:"resource_id" bson:"resource_id"`
	ResourceKind      ResourceKind       `json:"resource_kind" bson:"resource_kind"`
	AvailableFrom     time.Time          `json:"available_from" bson:"available_from"`
	AvailableTo       time.Time          `json:"available_to" bson:"available_to"`
	Snapshot          ResourceSnapshot   `json:"snapshot" bson:"snapshot"`
	PaymentPercentage float64            `json:"payment_percentage" bson:"payment_percentage"`
	RequiredWorkers   int                `json:"required_workers,omitempty" bson:"required_workers,omitempty"`
	AssignedWorkers   []WorkerAssignment `json:"assigned_workers,omitempty" bson:"assigned_workers,omitempty"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}
