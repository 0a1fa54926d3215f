package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/grupoalpa/eventos-ops/internal/db"
	"github.com/grupoalpa/eventos-ops/internal/models"
)

// Service is the booking engine: it checks availability and commits
// assignations. The availability check and the insert run under the same
// per-resource lock so two concurrent bookings of one resource cannot both
// pass the check.
type Service struct {
	resources    db.ResourceCollection
	events       db.EventCollection
	assignations db.AssignationCollection
	locker       db.ResourceLocker
}

// NewService builds a booking service.
func NewService(
	resources db.ResourceCollection,
	events db.EventCollection,
	assignations db.AssignationCollection,
	locker db.ResourceLocker,
) *Service {
	return &Service{
		resources:    resources,
		events:       events,
		assignations: assignations,
		locker:       locker,
	}
}

// Overlaps reports whether the half-open windows [aFrom, aTo) and
// [bFrom, bTo) conflict. Touching endpoints do not conflict.
func Overlaps(aFrom, aTo, bFrom, bTo time.Time) bool {
	return aFrom.Before(bTo) && aTo.After(bFrom)
}

// IsAvailable reports whether the resource has no booking overlapping
// [from, to). Bookings under excludeEventCode are ignored, so a quotation
// revision can re-save its own windows. An existing conflict is a normal
// boolean outcome here, not an error.
func (s *Service) IsAvailable(ctx context.Context, resourceID string, from, to time.Time, excludeEventCode string) (bool, error) {
	if !to.After(from) {
		return false, ErrInvalidWindow
	}

	overlapping, err := s.assignations.FindOverlapping(ctx, resourceID, from, to, excludeEventCode)
	if err != nil {
		return false, fmt.Errorf("query overlapping assignations: %w", err)
	}
	return len(overlapping) == 0, nil
}

// CreateAssignationInput carries a booking request.
type CreateAssignationInput struct {
	EventID           string
	ResourceID        string
	From              time.Time
	To                time.Time
	PaymentPercentage float64
	RequiredWorkers   int
}

// CreateAssignation books a resource to an event. Preconditions: the event
// exists, the resource exists and is active, and the window is free once the
// event's own group code is excluded. The new record freezes a snapshot of
// the resource's descriptive fields; the resource's status is not touched,
// since status is owned by the maintenance state machine.
func (s *Service) CreateAssignation(ctx context.Context, input CreateAssignationInput) (*models.Assignation, error) {
	if !input.To.After(input.From) {
		return nil, ErrInvalidWindow
	}

	event, err := s.events.FindEventByID(ctx, input.EventID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}

	release, err := s.locker.AcquireResource(ctx, input.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("lock resource: %w", err)
	}
	defer release()

	resource, err := s.resources.FindResourceByID(ctx, input.ResourceID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("find resource: %w", err)
	}
	if !resource.Active {
		return nil, ErrResourceNotFound
	}

	available, err := s.IsAvailable(ctx, input.ResourceID, input.From, input.To, event.Code)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, &ResourceAlreadyAssignedError{
			ResourceID: input.ResourceID,
			From:       input.From,
			To:         input.To,
		}
	}

	assignation := models.Assignation{
		EventID:           input.EventID,
		EventCode:         event.Code,
		ResourceID:        input.ResourceID,
		ResourceKind:      resource.Kind,
		AvailableFrom:     input.From,
		AvailableTo:       input.To,
		Snapshot:          kindSnapshot(resource),
		PaymentPercentage: input.PaymentPercentage,
	}
	if resource.Kind == models.KindWorker {
		assignation.RequiredWorkers = input.RequiredWorkers
	}

	created, err := s.assignations.InsertAssignation(ctx, assignation)
	if err != nil {
		return nil, fmt.Errorf("insert assignation: %w", err)
	}

	log.WithFields(log.Fields{
		"assignation_id": created.ID.Hex(),
		"event_id":       input.EventID,
		"resource_id":    input.ResourceID,
		"from":           input.From,
		"to":             input.To,
	}).Info("Assignation created")

	return created, nil
}

// DeleteAssignation removes a booking. Reprogramming a window is always a
// delete of the old record plus a fresh CreateAssignation.
func (s *Service) DeleteAssignation(ctx context.Context, id string) error {
	err := s.assignations.DeleteAssignation(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return db.ErrNotFound
		}
		return fmt.Errorf("delete assignation: %w", err)
	}

	log.WithField("assignation_id", id).Info("Assignation deleted")
	return nil
}

// ReconcileWorkers replaces the assigned worker list on a worker-kind
// booking. This is the only mutation an assignation admits after creation.
func (s *Service) ReconcileWorkers(ctx context.Context, id string, workers []models.WorkerAssignment) (*models.Assignation, error) {
	assignation, err := s.assignations.FindAssignationByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("find assignation: %w", err)
	}

	if assignation.ResourceKind != models.KindWorker {
		return nil, ErrNotWorkerAssignation
	}
	if len(workers) > assignation.RequiredWorkers {
		return nil, ErrWorkerCountExceeded
	}

	assignation.AssignedWorkers = workers
	if err := s.assignations.UpdateAssignation(ctx, id, *assignation); err != nil {
		return nil, fmt.Errorf("update assignation: %w", err)
	}
	return assignation, nil
}

// kindSnapshot freezes only the fields relevant to the resource's kind.
func kindSnapshot(resource *models.Resource) models.ResourceSnapshot {
	snapshot := resource.Snapshot()
	switch resource.Kind {
	case models.KindEquipment:
		snapshot.Role = ""
		snapshot.ProviderID = ""
		snapshot.ServiceDetail = ""
	case models.KindWorker:
		snapshot.Serial = ""
		snapshot.Location = ""
		snapshot.ProviderID = ""
		snapshot.ServiceDetail = ""
	case models.KindService:
		snapshot.Serial = ""
		snapshot.Location = ""
		snapshot.Role = ""
	}
	return snapshot
}
