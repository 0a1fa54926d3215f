package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/grupoalpa/eventos-ops/internal/clock"
	"github.com/grupoalpa/eventos-ops/internal/db"
	"github.com/grupoalpa/eventos-ops/internal/models"
)

// leadDays is how far ahead of the due date preventive work is generated.
const leadDays = 7

// DefaultCronSpec fires the scan once a day early in the business morning.
const DefaultCronSpec = "0 6 * * *"

// Scheduler runs the daily preventive scan. Each create-or-skip decision goes
// through Service.CreatePreventive, so a scheduler-generated record and a
// concurrent operator record cannot both land for one resource.
type Scheduler struct {
	service   *Service
	resources db.ResourceCollection
	clock     clock.Clock
	cron      *cron.Cron
}

// NewScheduler builds the daily preventive scheduler.
func NewScheduler(service *Service, resources db.ResourceCollection, clk clock.Clock) *Scheduler {
	return &Scheduler{
		service:   service,
		resources: resources,
		clock:     clk,
	}
}

// Start registers the daily scan with the given cron spec and launches the
// timer. SkipIfStillRunning guarantees a slow scan delays, never overlaps,
// the next tick.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		spec = DefaultCronSpec
	}

	logger := cron.PrintfLogger(log.StandardLogger())
	s.cron = cron.New(
		cron.WithLocation(s.clock.Location()),
		cron.WithChain(cron.SkipIfStillRunning(logger)),
	)

	_, err := s.cron.AddFunc(spec, func() {
		if err := s.RunScan(context.Background()); err != nil {
			log.WithError(err).Error("Preventive maintenance scan failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.WithField("cron", spec).Info("Preventive maintenance scheduler started")
	return nil
}

// Stop halts the timer and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RunScan walks every AVAILABLE resource and creates the preventive records
// that are due. One resource failing is logged and does not abort the rest;
// re-running the scan on the same day creates nothing new.
func (s *Scheduler) RunScan(ctx context.Context) error {
	resources, err := s.resources.FindResourcesByStatus(ctx, models.StatusAvailable)
	if err != nil {
		return err
	}

	today := s.clock.Today()
	created := 0
	for i := range resources {
		resource := resources[i]
		if s.scanResource(ctx, &resource, today) {
			created++
		}
	}

	log.WithFields(log.Fields{
		"scanned": len(resources),
		"created": created,
		"date":    today.Format("2006-01-02"),
	}).Info("Preventive maintenance scan finished")
	return nil
}

// scanResource applies the due-date rule to one resource and reports whether
// a record was created.
func (s *Scheduler) scanResource(ctx context.Context, resource *models.Resource, today time.Time) bool {
	if resource.MaintenanceIntervalDays <= 0 {
		return false
	}

	expectedNext := clock.Midnight(resource.LastMaintenanceDate.In(s.clock.Location())).
		AddDate(0, 0, resource.MaintenanceIntervalDays-leadDays)
	if expectedNext.After(today) {
		return false
	}

	_, err := s.service.CreatePreventive(ctx, resource.ID.Hex(), expectedNext)
	if err != nil {
		// An unfinished record already covering the resource is the idempotence
		// guard firing, not a failure.
		if errors.Is(err, ErrPreviousMaintenanceNotFinalized) {
			return false
		}
		log.WithError(err).WithField("resource_id", resource.ID.Hex()).
			Error("Failed to create preventive maintenance")
		return false
	}
	return true
}
