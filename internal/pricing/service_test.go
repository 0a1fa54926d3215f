package pricing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grupoalpa/eventos-ops/internal/clock"
	"github.com/grupoalpa/eventos-ops/internal/db"
	"github.com/grupoalpa/eventos-ops/internal/models"
)

func newTestService(t *testing.T, now time.Time) (*Service, *db.MemoryResourceCollection, *db.MemoryReferencePriceCollection, *clock.FixedClock) {
	t.Helper()
	resources := db.NewMemoryResourceCollection()
	prices := db.NewMemoryReferencePriceCollection()
	clk := &clock.FixedClock{Current: now}
	return NewService(resources, prices, clk), resources, prices, clk
}

func TestReviseReferencePrice_RejectsNonPositive(t *testing.T) {
	service, resources, _, _ := newTestService(t, time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))
	resource, err := resources.InsertResource(context.Background(), models.Resource{Name: "Carpa 10x10"})
	require.NoError(t, err)

	_, err = service.ReviseReferencePrice(context.Background(), resource.ID.Hex(), 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)
	_, err = service.ReviseReferencePrice(context.Background(), resource.ID.Hex(), -50)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestReviseReferencePrice_ResourceNotFound(t *testing.T) {
	service, _, _, _ := newTestService(t, time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))

	_, err := service.ReviseReferencePrice(context.Background(), "64a000000000000000000000", 100)
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestReviseReferencePrice_FirstRevision(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	service, resources, _, _ := newTestService(t, now)
	resource, err := resources.InsertResource(context.Background(), models.Resource{Name: "Carpa 10x10"})
	require.NoError(t, err)

	created, err := service.ReviseReferencePrice(context.Background(), resource.ID.Hex(), 150)
	require.NoError(t, err)
	assert.Equal(t, 1, created.SeasonNumber)
	assert.Equal(t, 150.0, created.ReferencePrice)
	assert.True(t, created.StartDate.Equal(now))
	assert.Nil(t, created.EndDate)

	after, err := resources.FindResourceByID(context.Background(), resource.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 150.0, after.ReferencePrice)
	assert.Equal(t, 2, after.SeasonNumber)
	assert.True(t, after.LastPriceUpdatedAt.Equal(now))
}

func TestReviseReferencePrice_SingleOpenRecord(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	service, resources, prices, clk := newTestService(t, now)
	resource, err := resources.InsertResource(context.Background(), models.Resource{Name: "Carpa 10x10"})
	require.NoError(t, err)

	const revisions = 5
	for i := 0; i < revisions; i++ {
		clk.Current = now.AddDate(0, 1, 0).AddDate(0, i, 0)
		_, err := service.ReviseReferencePrice(context.Background(), resource.ID.Hex(), float64(100+i*10))
		require.NoError(t, err)
	}

	history, err := prices.FindByResource(context.Background(), resource.ID.Hex())
	require.NoError(t, err)
	require.Len(t, history, revisions)

	open := 0
	seasons := make(map[int]bool)
	for _, record := range history {
		if record.EndDate == nil {
			open++
		}
		seasons[record.SeasonNumber] = true
	}
	assert.Equal(t, 1, open, "exactly one record may be open")
	for season := 1; season <= revisions; season++ {
		assert.True(t, seasons[season], fmt.Sprintf("missing season %d", season))
	}

	after, err := resources.FindResourceByID(context.Background(), resource.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, revisions+1, after.SeasonNumber)
	assert.Equal(t, 140.0, after.ReferencePrice)
}

func TestReviseReferencePrice_ClosesPreviousAtDayBefore(t *testing.T) {
	first := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	service, resources, prices, clk := newTestService(t, first)
	resource, err := resources.InsertResource(context.Background(), models.Resource{Name: "Carpa 10x10"})
	require.NoError(t, err)

	opened, err := service.ReviseReferencePrice(context.Background(), resource.ID.Hex(), 100)
	require.NoError(t, err)

	second := first.AddDate(0, 3, 0)
	clk.Current = second
	_, err = service.ReviseReferencePrice(context.Background(), resource.ID.Hex(), 120)
	require.NoError(t, err)

	closed, err := prices.FindByResource(context.Background(), resource.ID.Hex())
	require.NoError(t, err)
	for _, record := range closed {
		if record.ID == opened.ID {
			require.NotNil(t, record.EndDate)
			assert.True(t, record.EndDate.Equal(second.AddDate(0, 0, -1)))
		}
	}
}

func TestHistory(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	service, resources, _, clk := newTestService(t, now)
	resource, err := resources.InsertResource(context.Background(), models.Resource{Name: "Carpa 10x10"})
	require.NoError(t, err)

	_, err = service.ReviseReferencePrice(context.Background(), resource.ID.Hex(), 100)
	require.NoError(t, err)
	clk.Current = now.AddDate(0, 1, 0)
	_, err = service.ReviseReferencePrice(context.Background(), resource.ID.Hex(), 120)
	require.NoError(t, err)

	history, err := service.History(context.Background(), resource.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
