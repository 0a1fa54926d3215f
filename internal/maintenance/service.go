package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/grupoalpa/eventos-ops/internal/clock"
	"github.com/grupoalpa/eventos-ops/internal/db"
	"github.com/grupoalpa/eventos-ops/internal/models"
	"github.com/grupoalpa/eventos-ops/internal/notify"
)

// Service owns the maintenance lifecycle: creation of corrective and
// preventive records, the transition table between their states, and the side
// effects each transition has on the resource. The maintenance record and the
// resource are always written under the same per-resource lock that booking
// uses, so a resource can never be claimed by two maintenance cycles at once.
type Service struct {
	resources    db.ResourceCollection
	maintenances db.MaintenanceCollection
	assignations db.AssignationCollection
	locker       db.ResourceLocker
	clock        clock.Clock
	notifier     notify.Dispatcher
}

// NewService builds a maintenance service.
func NewService(
	resources db.ResourceCollection,
	maintenances db.MaintenanceCollection,
	assignations db.AssignationCollection,
	locker db.ResourceLocker,
	clk clock.Clock,
	notifier notify.Dispatcher,
) *Service {
	return &Service{
		resources:    resources,
		maintenances: maintenances,
		assignations: assignations,
		locker:       locker,
		clock:        clk,
		notifier:     notifier,
	}
}

// placeholderEventCode keys the availability window a maintenance blocks out,
// so reagendation can delete and recreate it.
func placeholderEventCode(m *models.Maintenance) string {
	return "MANT-" + m.ID.Hex()
}

// CreateCorrectiveInput carries an operator's corrective maintenance request.
type CreateCorrectiveInput struct {
	ResourceID  string
	Date        time.Time
	Description string
}

// CreateCorrective opens an unscheduled repair cycle. The resource must be
// marked DAMAGED and not already under maintenance. On success the resource
// moves to UNDER_MAINTENANCE, its maintenance count increments, and any
// pending preventive for the resource is pushed forward a full interval from
// the corrective's date.
func (s *Service) CreateCorrective(ctx context.Context, input CreateCorrectiveInput) (*models.Maintenance, error) {
	release, err := s.locker.AcquireResource(ctx, input.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("lock resource: %w", err)
	}
	defer release()

	resource, err := s.findResource(ctx, input.ResourceID)
	if err != nil {
		return nil, err
	}

	if resource.Status == models.StatusUnderMaintenance {
		return nil, ErrResourceUnderMaintenance
	}
	if resource.Status != models.StatusDamaged {
		return nil, ErrResourceNotDamaged
	}

	unfinished, err := s.maintenances.FindUnfinishedByResourceAndType(ctx, input.ResourceID, models.MaintenanceCorrective)
	if err != nil {
		return nil, fmt.Errorf("query unfinished correctives: %w", err)
	}
	if len(unfinished) > 0 {
		return nil, ErrPreviousMaintenanceNotFinalized
	}

	created, err := s.maintenances.InsertMaintenance(ctx, models.Maintenance{
		ResourceID:  input.ResourceID,
		Type:        models.MaintenanceCorrective,
		Status:      models.MaintenanceScheduled,
		Date:        input.Date,
		Description: input.Description,
		Snapshot:    resource.Snapshot(),
	})
	if err != nil {
		return nil, fmt.Errorf("insert corrective maintenance: %w", err)
	}

	if err := s.pushPendingPreventives(ctx, resource, input.Date); err != nil {
		return nil, err
	}

	resource.Status = models.StatusUnderMaintenance
	resource.MaintenanceCount++
	if err := s.resources.UpdateResource(ctx, input.ResourceID, *resource); err != nil {
		return nil, fmt.Errorf("update resource: %w", err)
	}

	s.dispatchReminder(ctx, resource, created)

	log.WithFields(log.Fields{
		"maintenance_id": created.ID.Hex(),
		"resource_id":    input.ResourceID,
		"date":           input.Date.Format("2006-01-02"),
	}).Info("Corrective maintenance created")

	return created, nil
}

// CreatePreventive opens a planned upkeep cycle at the given date, writes the
// availability placeholder for that day, and advances the resource's next
// maintenance date one interval past it. It refuses to duplicate while an
// unfinished record exists for the resource (PROGRAMADO, EN_PROGRESO or
// REAGENDADO), which is what makes the daily scan idempotent.
func (s *Service) CreatePreventive(ctx context.Context, resourceID string, date time.Time) (*models.Maintenance, error) {
	release, err := s.locker.AcquireResource(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("lock resource: %w", err)
	}
	defer release()

	resource, err := s.findResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	pending, err := s.maintenances.FindByResourceAndStatus(ctx, resourceID,
		models.MaintenanceScheduled, models.MaintenanceInProgress, models.MaintenanceRescheduled)
	if err != nil {
		return nil, fmt.Errorf("query pending maintenances: %w", err)
	}
	if len(pending) > 0 {
		return nil, ErrPreviousMaintenanceNotFinalized
	}

	created, err := s.maintenances.InsertMaintenance(ctx, models.Maintenance{
		ResourceID: resourceID,
		Type:       models.MaintenancePreventive,
		Status:     models.MaintenanceScheduled,
		Date:       date,
		Snapshot:   resource.Snapshot(),
	})
	if err != nil {
		return nil, fmt.Errorf("insert preventive maintenance: %w", err)
	}

	if err := s.insertPlaceholder(ctx, resource, created); err != nil {
		return nil, err
	}

	resource.NextMaintenanceDate = date.AddDate(0, 0, resource.MaintenanceIntervalDays)
	if err := s.resources.UpdateResource(ctx, resourceID, *resource); err != nil {
		return nil, fmt.Errorf("update resource: %w", err)
	}

	s.dispatchReminder(ctx, resource, created)

	log.WithFields(log.Fields{
		"maintenance_id": created.ID.Hex(),
		"resource_id":    resourceID,
		"date":           date.Format("2006-01-02"),
	}).Info("Preventive maintenance created")

	return created, nil
}

// TransitionOptions carries the extra inputs some transitions need.
type TransitionOptions struct {
	NewDate *time.Time // required when entering REAGENDADO
	Reason  string
}

// UpdateStatus drives one transition of the state machine and applies its
// side effects on the resource. FINALIZADO is terminal. The first read only
// resolves which resource to lock; the record is re-read under the lock so
// concurrent transitions on the same record serialize instead of both
// committing off a stale status.
func (s *Service) UpdateStatus(ctx context.Context, id string, target models.MaintenanceStatus, opts TransitionOptions) (*models.Maintenance, error) {
	m, err := s.maintenances.FindMaintenanceByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrMaintenanceNotFound
		}
		return nil, fmt.Errorf("find maintenance: %w", err)
	}

	release, err := s.locker.AcquireResource(ctx, m.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("lock resource: %w", err)
	}
	defer release()

	m, err = s.maintenances.FindMaintenanceByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrMaintenanceNotFound
		}
		return nil, fmt.Errorf("find maintenance: %w", err)
	}
	if m.Status == models.MaintenanceFinished {
		return nil, ErrMaintenanceAlreadyFinished
	}

	resource, err := s.findResource(ctx, m.ResourceID)
	if err != nil {
		return nil, err
	}

	switch m.Type {
	case models.MaintenanceCorrective:
		err = s.transitionCorrective(m, resource, target)
	case models.MaintenancePreventive:
		err = s.transitionPreventive(ctx, m, resource, target, opts)
	default:
		err = &InvalidTransitionError{Type: m.Type, From: m.Status, To: target}
	}
	if err != nil {
		return nil, err
	}

	if err := s.maintenances.UpdateMaintenance(ctx, id, *m); err != nil {
		return nil, fmt.Errorf("update maintenance: %w", err)
	}
	if err := s.resources.UpdateResource(ctx, m.ResourceID, *resource); err != nil {
		return nil, fmt.Errorf("update resource: %w", err)
	}

	log.WithFields(log.Fields{
		"maintenance_id": id,
		"resource_id":    m.ResourceID,
		"type":           m.Type,
		"status":         m.Status,
	}).Info("Maintenance transitioned")

	return m, nil
}

// transitionCorrective applies the corrective half of the transition table.
// The resource must still carry the damage marker to start the repair: either
// DAMAGED, or UNDER_MAINTENANCE set when this very record was opened.
func (s *Service) transitionCorrective(m *models.Maintenance, resource *models.Resource, target models.MaintenanceStatus) error {
	switch {
	case m.Status == models.MaintenanceScheduled && target == models.MaintenanceInProgress:
		if resource.Status != models.StatusDamaged && resource.Status != models.StatusUnderMaintenance {
			return ErrResourceNotDamaged
		}
		m.Status = models.MaintenanceInProgress
		resource.Status = models.StatusUnderMaintenance
		return nil

	case m.Status == models.MaintenanceInProgress && target == models.MaintenanceFinished:
		m.Status = models.MaintenanceFinished
		resource.Status = models.StatusAvailable
		resource.MaintenanceCount++
		// Unplanned work does not advance last_maintenance_date.
		return nil
	}
	return &InvalidTransitionError{Type: m.Type, From: m.Status, To: target}
}

// transitionPreventive applies the preventive half of the transition table.
func (s *Service) transitionPreventive(ctx context.Context, m *models.Maintenance, resource *models.Resource, target models.MaintenanceStatus, opts TransitionOptions) error {
	switch {
	case (m.Status == models.MaintenanceScheduled || m.Status == models.MaintenanceRescheduled) &&
		target == models.MaintenanceInProgress:
		if err := s.guardNoUnfinishedCorrective(ctx, m.ResourceID); err != nil {
			return err
		}
		if !clock.SameDay(s.clock.Now(), m.Date) {
			return ErrMaintenanceDateNotToday
		}
		m.Status = models.MaintenanceInProgress
		resource.Status = models.StatusUnderMaintenance
		return nil

	case m.Status == models.MaintenanceScheduled && target == models.MaintenanceRescheduled:
		if err := s.guardNoUnfinishedCorrective(ctx, m.ResourceID); err != nil {
			return err
		}
		if opts.NewDate == nil {
			return ErrRescheduleDateRequired
		}
		if err := s.moveDate(ctx, m, resource, *opts.NewDate); err != nil {
			return err
		}
		m.Status = models.MaintenanceRescheduled
		m.ReagendationReason = opts.Reason
		resource.NextMaintenanceDate = *opts.NewDate
		// Deferred, not started: the resource stays bookable.
		resource.Status = models.StatusAvailable
		return nil

	case m.Status == models.MaintenanceInProgress && target == models.MaintenanceFinished:
		m.Status = models.MaintenanceFinished
		resource.Status = models.StatusAvailable
		resource.MaintenanceCount++
		resource.LastMaintenanceDate = m.Date
		return nil
	}
	return &InvalidTransitionError{Type: m.Type, From: m.Status, To: target}
}

func (s *Service) guardNoUnfinishedCorrective(ctx context.Context, resourceID string) error {
	unfinished, err := s.maintenances.FindUnfinishedByResourceAndType(ctx, resourceID, models.MaintenanceCorrective)
	if err != nil {
		return fmt.Errorf("query unfinished correctives: %w", err)
	}
	if len(unfinished) > 0 {
		return ErrCorrectiveMaintenanceNotFinalized
	}
	return nil
}

// pushPendingPreventives moves every not-yet-started preventive of the
// resource a full interval past the corrective date, placeholder included.
func (s *Service) pushPendingPreventives(ctx context.Context, resource *models.Resource, correctiveDate time.Time) error {
	pending, err := s.maintenances.FindByResourceAndStatus(ctx, resource.ID.Hex(),
		models.MaintenanceScheduled, models.MaintenanceRescheduled)
	if err != nil {
		return fmt.Errorf("query pending preventives: %w", err)
	}

	newDate := correctiveDate.AddDate(0, 0, resource.MaintenanceIntervalDays)
	for i := range pending {
		p := pending[i]
		if p.Type != models.MaintenancePreventive {
			continue
		}
		if err := s.moveDate(ctx, &p, resource, newDate); err != nil {
			return err
		}
		if err := s.maintenances.UpdateMaintenance(ctx, p.ID.Hex(), p); err != nil {
			return fmt.Errorf("update pushed preventive: %w", err)
		}
		resource.NextMaintenanceDate = newDate
	}
	return nil
}

// moveDate retargets a preventive's date and recreates its availability
// placeholder at the new day.
func (s *Service) moveDate(ctx context.Context, m *models.Maintenance, resource *models.Resource, newDate time.Time) error {
	if err := s.assignations.DeleteByEventCode(ctx, placeholderEventCode(m)); err != nil {
		return fmt.Errorf("delete maintenance placeholder: %w", err)
	}
	m.Date = newDate
	return s.insertPlaceholder(ctx, resource, m)
}

// insertPlaceholder blocks out the maintenance day in the booking ledger so
// availability checks see it like any other commitment.
func (s *Service) insertPlaceholder(ctx context.Context, resource *models.Resource, m *models.Maintenance) error {
	day := clock.Midnight(m.Date.In(s.clock.Location()))
	_, err := s.assignations.InsertAssignation(ctx, models.Assignation{
		EventCode:     placeholderEventCode(m),
		ResourceID:    m.ResourceID,
		ResourceKind:  resource.Kind,
		AvailableFrom: day,
		AvailableTo:   day.AddDate(0, 0, 1),
		Snapshot:      resource.Snapshot(),
	})
	if err != nil {
		return fmt.Errorf("insert maintenance placeholder: %w", err)
	}
	return nil
}

func (s *Service) findResource(ctx context.Context, id string) (*models.Resource, error) {
	resource, err := s.resources.FindResourceByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("find resource: %w", err)
	}
	return resource, nil
}

// dispatchReminder enqueues the reminder payload; delivery problems are
// logged, never fatal to the state change.
func (s *Service) dispatchReminder(ctx context.Context, resource *models.Resource, m *models.Maintenance) {
	days := int(clock.Midnight(m.Date.In(s.clock.Location())).Sub(s.clock.Today()).Hours() / 24)
	err := s.notifier.DispatchReminder(ctx, notify.Reminder{
		ResourceID:      m.ResourceID,
		ResourceName:    resource.Name,
		ResourceKind:    string(resource.Kind),
		MaintenanceType: string(m.Type),
		Date:            m.Date,
		DaysRemaining:   days,
	})
	if err != nil {
		log.WithError(err).WithField("maintenance_id", m.ID.Hex()).Error("Failed to dispatch maintenance reminder")
	}
}
