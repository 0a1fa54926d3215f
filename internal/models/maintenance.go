package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// MaintenanceType distinguishes planned upkeep from unscheduled repair.
type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "PREVENTIVO"
	MaintenanceCorrective MaintenanceType = "CORRECTIVO"
)

// MaintenanceStatus is the lifecycle state of a maintenance record.
// FINALIZADO is terminal; REAGENDADO applies to preventive records only.
type MaintenanceStatus string

const (
	MaintenanceScheduled   MaintenanceStatus = "PROGRAMADO"
	MaintenanceInProgress  MaintenanceStatus = "EN_PROGRESO"
	MaintenanceRescheduled MaintenanceStatus = "REAGENDADO"
	MaintenanceFinished    MaintenanceStatus = "FINALIZADO"
)

// Maintenance is one maintenance cycle for one resource. Records are created
// by an operator (corrective) or by the preventive scheduler, mutated only
// through the state machine, and never deleted.
type Maintenance struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ResourceID         string             `json:"resource_id" bson:"resource_id"`
	Type               MaintenanceType    `json:"type" bson:"type"`
	Status             MaintenanceStatus  `json:"status" bson:"status"`
	Date               time.Time          `json:"date" bson:"date"` // scheduled or actual execution date
	Description        string             `json:"description,omitempty" bson:"description,omitempty"`
	Snapshot           ResourceSnapshot   `json:"snapshot" bson:"snapshot"`
	ReagendationReason string             `json:"reagendation_reason,omitempty" bson:"reagendation_reason,omitempty"`
	CancelationReason  string             `json:"cancelation_reason,omitempty" bson:"cancelation_reason,omitempty"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updated_at"`
}

// IsValidMaintenanceType reports whether t is a known maintenance type.
func IsValidMaintenanceType(t MaintenanceType) bool {
	return t == MaintenancePreventive || t == MaintenanceCorrective
}

// IsValidMaintenanceStatus reports whether s is a known maintenance status.
func IsValidMaintenanceStatus(s MaintenanceStatus) bool {
	switch s {
	case MaintenanceScheduled, MaintenanceInProgress, MaintenanceRescheduled, MaintenanceFinished:
		return true
	}
	return false
}

// Unfinished reports whether the record still blocks new work on its resource.
func (m *Maintenance) Unfinished() bool {
	return m.Status != MaintenanceFinished
}
