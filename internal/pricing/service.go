package pricing

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/grupoalpa/eventos-ops/internal/clock"
	"github.com/grupoalpa/eventos-ops/internal/db"
	"github.com/grupoalpa/eventos-ops/internal/models"
)

// ErrResourceNotFound means the referenced resource does not exist.
var ErrResourceNotFound = errors.New("resource not found")

// ErrInvalidPrice means the new reference price is not positive.
var ErrInvalidPrice = errors.New("reference price must be positive")

// Service maintains the season-numbered price history per resource. Revising
// a price closes the open season and opens the next one; the history is
// append-only and at most one record per resource is ever open.
type Service struct {
	resources db.ResourceCollection
	prices    db.ReferencePriceCollection
	clock     clock.Clock
}

// NewService builds a pricing service.
func NewService(resources db.ResourceCollection, prices db.ReferencePriceCollection, clk clock.Clock) *Service {
	return &Service{resources: resources, prices: prices, clock: clk}
}

// ReviseReferencePrice closes the resource's open price window, opens a new
// one at newPrice, and bumps the resource's season counter. The new record is
// tagged with the season it closes out: the counter increments only after the
// insert.
func (s *Service) ReviseReferencePrice(ctx context.Context, resourceID string, newPrice float64) (*models.ReferencePrice, error) {
	if newPrice <= 0 {
		return nil, ErrInvalidPrice
	}

	resource, err := s.resources.FindResourceByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("find resource: %w", err)
	}

	now := s.clock.Now()

	if resource.SeasonNumber != 1 {
		open, err := s.prices.FindOpenByResource(ctx, resourceID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("find open price record: %w", err)
		}
		if err == nil {
			yesterday := now.AddDate(0, 0, -1)
			open.EndDate = &yesterday
			if err := s.prices.UpdateReferencePrice(ctx, open.ID.Hex(), *open); err != nil {
				return nil, fmt.Errorf("close open price record: %w", err)
			}
		}
	}

	created, err := s.prices.InsertReferencePrice(ctx, models.ReferencePrice{
		ResourceID:     resourceID,
		SeasonNumber:   resource.SeasonNumber,
		ReferencePrice: newPrice,
		StartDate:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("insert price record: %w", err)
	}

	resource.ReferencePrice = newPrice
	resource.LastPriceUpdatedAt = now
	resource.SeasonNumber++
	if err := s.resources.UpdateResource(ctx, resourceID, *resource); err != nil {
		return nil, fmt.Errorf("update resource: %w", err)
	}

	log.WithFields(log.Fields{
		"resource_id": resourceID,
		"season":      created.SeasonNumber,
		"price":       newPrice,
	}).Info("Reference price revised")

	return created, nil
}

// History returns the resource's full price history.
func (s *Service) History(ctx context.Context, resourceID string) ([]models.ReferencePrice, error) {
	return s.prices.FindByResource(ctx, resourceID)
}
