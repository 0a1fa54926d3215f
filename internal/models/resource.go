package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// ResourceKind discriminates what a resource is and which snapshot fields apply.
type ResourceKind string

const (
	KindEquipment ResourceKind = "EQUIPMENT"
	KindWorker    ResourceKind = "WORKER"
	KindService   ResourceKind = "SERVICE"
)

// ResourceStatus is the operational status of a resource. It is mutated only by
// the maintenance state machine and the preventive scheduler, never by booking.
type ResourceStatus string

const (
	StatusAvailable        ResourceStatus = "AVAILABLE"
	StatusInUse            ResourceStatus = "IN_USE"
	StatusUnderMaintenance ResourceStatus = "UNDER_MAINTENANCE"
	StatusDamaged          ResourceStatus = "DAMAGED"
)

// Resource is a bookable unit: a piece of equipment, a worker slot or an
// external service. Resources are never deleted, only deactivated.
type Resource struct {
	ID                      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name                    string             `json:"name" bson:"name"`
	Kind                    ResourceKind       `json:"kind" bson:"kind"`
	Serial                  string             `json:"serial,omitempty" bson:"serial,omitempty"`
	Location                string             `json:"location,omitempty" bson:"location,omitempty"`
	Role                    string             `json:"role,omitempty" bson:"role,omitempty"` // worker kind only
	ProviderID              string             `json:"provider_id,omitempty" bson:"provider_id,omitempty"`
	ServiceDetail           string             `json:"service_detail,omitempty" bson:"service_detail,omitempty"`
	Status                  ResourceStatus     `json:"status" bson:"status"`
	Active                  bool               `json:"active" bson:"active"`
	LastMaintenanceDate     time.Time          `json:"last_maintenance_date" bson:"last_maintenance_date"`
	NextMaintenanceDate     time.Time          `json:"next_maintenance_date" bson:"next_maintenance_date"`
	MaintenanceIntervalDays int                `json:"maintenance_interval_days" bson:"maintenance_interval_days"`
	MaintenanceCount        int                `json:"maintenance_count" bson:"maintenance_count"`
	SeasonNumber            int                `json:"season_number" bson:"season_number"`
	ReferencePrice          float64            `json:"reference_price" bson:"reference_price"` // in USD
	LastPriceUpdatedAt      time.Time          `json:"last_price_updated_at" bson:"last_price_updated_at"`
	CreatedAt               time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at" bson:"updated_at"`
}

// IsValidResourceStatus reports whether s is one of the known statuses.
func IsValidResourceStatus(s ResourceStatus) bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusUnderMaintenance, StatusDamaged:
		return true
	}
	return false
}

// IsValidResourceKind reports whether k is one of the known kinds.
func IsValidResourceKind(k ResourceKind) bool {
	switch k {
	case KindEquipment, KindWorker, KindService:
		return true
	}
	return false
}

// Snapshot freezes the resource's descriptive fields for embedding into an
// assignation or maintenance record. The copy is deliberate: historical records
// must stay meaningful even if the resource is later renamed or reclassified.
func (r *Resource) Snapshot() ResourceSnapshot {
	return ResourceSnapshot{
		Name:          r.Name,
		Kind:          r.Kind,
		Serial:        r.Serial,
		Location:      r.Location,
		Role:          r.Role,
		ProviderID:    r.ProviderID,
		ServiceDetail: r.ServiceDetail,
		Status:        r.Status,
	}
}
