package booking

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidWindow means the requested window is empty or inverted.
	ErrInvalidWindow = errors.New("booking window end must be after start")
	// ErrEventNotFound means the referenced event does not exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrResourceNotFound means the referenced resource does not exist or is
	// deactivated.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrNotWorkerAssignation means worker reconciliation was attempted on a
	// non-worker booking.
	ErrNotWorkerAssignation = errors.New("assignation is not of worker kind")
	// ErrWorkerCountExceeded means more workers were assigned than the booking
	// requires.
	ErrWorkerCountExceeded = errors.New("assigned workers exceed required head-count")
)

// ResourceAlreadyAssignedError reports a booking conflict, carrying the
// resource and the requested window so callers can render a precise message.
type ResourceAlreadyAssignedError struct {
	ResourceID string
	From       time.Time
	To         time.Time
}

func (e *ResourceAlreadyAssignedError) Error() string {
	return fmt.Sprintf("resource %s already assigned between %s and %s",
		e.ResourceID, e.From.Format(time.RFC3339), e.To.Format(time.RFC3339))
}
