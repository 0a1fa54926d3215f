package maintenance

import (
	"errors"
	"fmt"

	"github.com/grupoalpa/eventos-ops/internal/models"
)

var (
	// ErrResourceNotFound means the referenced resource does not exist.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrMaintenanceNotFound means the referenced maintenance does not exist.
	ErrMaintenanceNotFound = errors.New("maintenance not found")
	// ErrResourceUnderMaintenance means a corrective cannot be opened while the
	// resource is already being serviced.
	ErrResourceUnderMaintenance = errors.New("resource is already under maintenance")
	// ErrResourceNotDamaged means a corrective requires the resource to be
	// marked damaged first.
	ErrResourceNotDamaged = errors.New("resource is not marked as damaged")
	// ErrMaintenanceAlreadyFinished means the record is terminal and admits no
	// further transitions.
	ErrMaintenanceAlreadyFinished = errors.New("maintenance is already finished")
	// ErrPreviousMaintenanceNotFinalized means an unfinished record of the same
	// type already exists for the resource.
	ErrPreviousMaintenanceNotFinalized = errors.New("previous maintenance not finalized")
	// ErrCorrectiveMaintenanceNotFinalized means an unfinished corrective blocks
	// the preventive transition.
	ErrCorrectiveMaintenanceNotFinalized = errors.New("corrective maintenance not finalized")
	// ErrMaintenanceDateNotToday means a preventive can only start on its
	// scheduled day, in business time.
	ErrMaintenanceDateNotToday = errors.New("maintenance date is not today")
	// ErrRescheduleDateRequired means a reagendation was requested without a
	// new target date.
	ErrRescheduleDateRequired = errors.New("reschedule requires a new date")
)

// InvalidTransitionError reports a state change the transition table does not
// admit at all, as opposed to one rejected by a guard.
type InvalidTransitionError struct {
	Type models.MaintenanceType
	From models.MaintenanceStatus
	To   models.MaintenanceStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s maintenance transition from %s to %s", e.Type, e.From, e.To)
}
