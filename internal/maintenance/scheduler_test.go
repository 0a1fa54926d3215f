package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grupoalpa/eventos-ops/internal/clock"
	"github.com/grupoalpa/eventos-ops/internal/models"
)

func newScheduler(f *fixture) *Scheduler {
	return NewScheduler(f.service, f.resources, f.clock)
}

func (f *fixture) pendingFor(t *testing.T, resourceID string) []models.Maintenance {
	t.Helper()
	pending, err := f.maintenances.FindByResourceAndStatus(context.Background(), resourceID,
		models.MaintenanceScheduled, models.MaintenanceInProgress)
	require.NoError(t, err)
	return pending
}

func TestRunScan_SkipsResourceNotYetDue(t *testing.T) {
	f := newFixture(t, baseNow)
	resource := f.seedResource(t, models.StatusAvailable, 30, baseNow.AddDate(0, 0, -10))

	require.NoError(t, newScheduler(f).RunScan(context.Background()))

	assert.Empty(t, f.pendingFor(t, resource.ID.Hex()))
}

func TestRunScan_SkipsResourceWithoutInterval(t *testing.T) {
	f := newFixture(t, baseNow)
	resource := f.seedResource(t, models.StatusAvailable, 0, baseNow.AddDate(0, 0, -100))

	require.NoError(t, newScheduler(f).RunScan(context.Background()))

	assert.Empty(t, f.pendingFor(t, resource.ID.Hex()))
}

func TestRunScan_CreatesDuePreventive(t *testing.T) {
	f := newFixture(t, baseNow)
	// 23 days since the last service of a 30-day interval puts the resource
	// exactly at the 7-day lead window.
	resource := f.seedResource(t, models.StatusAvailable, 30, baseNow.AddDate(0, 0, -23))

	require.NoError(t, newScheduler(f).RunScan(context.Background()))

	pending := f.pendingFor(t, resource.ID.Hex())
	require.Len(t, pending, 1)
	assert.Equal(t, models.MaintenancePreventive, pending[0].Type)
	assert.Equal(t, models.MaintenanceScheduled, pending[0].Status)
	assert.True(t, pending[0].Date.Equal(f.clock.Today()))
}

func TestRunScan_IdempotentWithinDay(t *testing.T) {
	f := newFixture(t, baseNow)
	resource := f.seedResource(t, models.StatusAvailable, 30, baseNow.AddDate(0, 0, -25))
	scheduler := newScheduler(f)

	require.NoError(t, scheduler.RunScan(context.Background()))
	require.NoError(t, scheduler.RunScan(context.Background()))
	require.NoError(t, scheduler.RunScan(context.Background()))

	assert.Len(t, f.pendingFor(t, resource.ID.Hex()), 1)
}

func TestRunScan_IgnoresNonAvailableResources(t *testing.T) {
	f := newFixture(t, baseNow)
	damaged := f.seedResource(t, models.StatusDamaged, 30, baseNow.AddDate(0, 0, -25))
	underMaintenance := f.seedResource(t, models.StatusUnderMaintenance, 30, baseNow.AddDate(0, 0, -25))

	require.NoError(t, newScheduler(f).RunScan(context.Background()))

	assert.Empty(t, f.pendingFor(t, damaged.ID.Hex()))
	assert.Empty(t, f.pendingFor(t, underMaintenance.ID.Hex()))
}

func TestRunScan_RescheduledPreventiveBlocksNewOne(t *testing.T) {
	f := newFixture(t, baseNow)
	resource := f.seedResource(t, models.StatusAvailable, 30, baseNow.AddDate(0, 0, -25))
	scheduler := newScheduler(f)

	require.NoError(t, scheduler.RunScan(context.Background()))
	pending := f.pendingFor(t, resource.ID.Hex())
	require.Len(t, pending, 1)

	// Operator defers the scheduled work; the resource goes back to AVAILABLE,
	// so the next scan sees it again.
	newDate := baseNow.AddDate(0, 0, 10)
	_, err := f.service.UpdateStatus(context.Background(), pending[0].ID.Hex(), models.MaintenanceRescheduled, TransitionOptions{
		NewDate: &newDate,
	})
	require.NoError(t, err)

	require.NoError(t, scheduler.RunScan(context.Background()))

	live, err := f.maintenances.FindUnfinishedByResourceAndType(context.Background(),
		resource.ID.Hex(), models.MaintenancePreventive)
	require.NoError(t, err)
	assert.Len(t, live, 1, "the deferred record must block a second preventive")
}

// TestPreventiveCycle walks one full preventive cycle: a resource serviced on
// day 0 with a 30-day interval enters the scan's lead window on day 23, the
// scheduled work can only start that same day, and finishing it re-anchors the
// next cycle.
func TestPreventiveCycle(t *testing.T) {
	day0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	day22 := day0.AddDate(0, 0, 22)
	day23 := day0.AddDate(0, 0, 23)
	day53 := day0.AddDate(0, 0, 53)

	f := newFixture(t, day22.Add(9*time.Hour))
	resource := f.seedResource(t, models.StatusAvailable, 30, day0)
	scheduler := newScheduler(f)

	// Day 22: one day short of the lead window, nothing happens.
	require.NoError(t, scheduler.RunScan(context.Background()))
	assert.Empty(t, f.pendingFor(t, resource.ID.Hex()))

	// Day 23: the scan generates the preventive record dated today.
	f.clock.Current = day23.Add(6 * time.Hour)
	require.NoError(t, scheduler.RunScan(context.Background()))
	pending := f.pendingFor(t, resource.ID.Hex())
	require.Len(t, pending, 1)
	record := pending[0]
	assert.True(t, record.Date.Equal(day23))

	after := f.resource(t, resource.ID.Hex())
	assert.True(t, after.NextMaintenanceDate.Equal(day53))

	// Starting the work a day early is rejected.
	f.clock.Current = day22.Add(9 * time.Hour)
	_, err := f.service.UpdateStatus(context.Background(), record.ID.Hex(), models.MaintenanceInProgress, TransitionOptions{})
	assert.ErrorIs(t, err, ErrMaintenanceDateNotToday)

	// On the scheduled day it starts and finishes.
	f.clock.Current = day23.Add(9 * time.Hour)
	_, err = f.service.UpdateStatus(context.Background(), record.ID.Hex(), models.MaintenanceInProgress, TransitionOptions{})
	require.NoError(t, err)
	_, err = f.service.UpdateStatus(context.Background(), record.ID.Hex(), models.MaintenanceFinished, TransitionOptions{})
	require.NoError(t, err)

	done := f.resource(t, resource.ID.Hex())
	assert.Equal(t, models.StatusAvailable, done.Status)
	assert.True(t, done.LastMaintenanceDate.Equal(day23))
	assert.Equal(t, 1, done.MaintenanceCount)

	// The next cycle anchors on day 23: its lead window opens on day 46.
	day46 := day23.AddDate(0, 0, 23)
	f.clock.Current = day46.Add(6 * time.Hour)
	require.NoError(t, scheduler.RunScan(context.Background()))
	next := f.pendingFor(t, resource.ID.Hex())
	require.Len(t, next, 1)
	assert.True(t, next[0].Date.Equal(day46))
}

func TestScanResource_DueDateComputation(t *testing.T) {
	f := newFixture(t, baseNow)
	scheduler := newScheduler(f)

	tests := []struct {
		name         string
		daysSince    int
		interval     int
		expectCreate bool
	}{
		{"far from due", 5, 30, false},
		{"one day before lead window", 22, 30, false},
		{"lead window opens", 23, 30, true},
		{"past due", 40, 30, true},
		{"short interval inside lead", 0, 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resource := f.seedResource(t, models.StatusAvailable, tt.interval, baseNow.AddDate(0, 0, -tt.daysSince))
			created := scheduler.scanResource(context.Background(), resource, f.clock.Today())
			assert.Equal(t, tt.expectCreate, created)
		})
	}
}

func TestMidnightAnchoring(t *testing.T) {
	// A last-maintenance timestamp late in the day must not shift the due
	// date: the rule works on calendar days.
	lateInDay := time.Date(2026, 5, 1, 23, 30, 0, 0, time.UTC)
	f := newFixture(t, lateInDay.AddDate(0, 0, 23))
	resource := f.seedResource(t, models.StatusAvailable, 30, lateInDay)

	require.NoError(t, newScheduler(f).RunScan(context.Background()))

	pending := f.pendingFor(t, resource.ID.Hex())
	require.Len(t, pending, 1)
	assert.True(t, pending[0].Date.Equal(clock.Midnight(lateInDay).AddDate(0, 0, 23)))
}
