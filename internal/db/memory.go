package db

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grupoalpa/eventos-ops/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory implementations of the collection interfaces. They back the
// engine tests and local runs without a MongoDB instance. Locking here is a
// plain mutex map: fine in one process, not a substitute for the Mongo locker
// in a real deployment.

// MemoryResourceCollection is an in-memory ResourceCollection.
type MemoryResourceCollection struct {
	mu        sync.RWMutex
	resources map[string]models.Resource
}

// NewMemoryResourceCollection returns an empty in-memory resource store.
func NewMemoryResourceCollection() *MemoryResourceCollection {
	return &MemoryResourceCollection{resources: make(map[string]models.Resource)}
}

func (c *MemoryResourceCollection) InsertResource(_ context.Context, resource models.Resource) (*models.Resource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if resource.ID.IsZero() {
		resource.ID = primitive.NewObjectID()
	}
	resource.Active = true
	if resource.SeasonNumber == 0 {
		resource.SeasonNumber = 1
	}
	resource.CreatedAt = time.Now()
	resource.UpdatedAt = time.Now()
	c.resources[resource.ID.Hex()] = resource
	return &resource, nil
}

func (c *MemoryResourceCollection) FindResourceByID(_ context.Context, id string) (*models.Resource, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	resource, ok := c.resources[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &resource, nil
}

func (c *MemoryResourceCollection) FindResourcesByStatus(_ context.Context, status models.ResourceStatus) ([]models.Resource, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.Resource
	for _, resource := range c.resources {
		if resource.Status == status && resource.Active {
			out = append(out, resource)
		}
	}
	return out, nil
}

func (c *MemoryResourceCollection) UpdateResource(_ context.Context, id string, resource models.Resource) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.resources[id]
	if !ok {
		return ErrNotFound
	}
	resource.ID = existing.ID
	resource.UpdatedAt = time.Now()
	c.resources[id] = resource
	return nil
}

func (c *MemoryResourceCollection) DeactivateResource(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	resource, ok := c.resources[id]
	if !ok {
		return ErrNotFound
	}
	resource.Active = false
	resource.UpdatedAt = time.Now()
	c.resources[id] = resource
	return nil
}

// MemoryAssignationCollection is an in-memory AssignationCollection.
type MemoryAssignationCollection struct {
	mu           sync.RWMutex
	assignations map[string]models.Assignation
}

// NewMemoryAssignationCollection returns an empty in-memory booking store.
func NewMemoryAssignationCollection() *MemoryAssignationCollection {
	return &MemoryAssignationCollection{assignations: make(map[string]models.Assignation)}
}

func (c *MemoryAssignationCollection) InsertAssignation(_ context.Context, assignation models.Assignation) (*models.Assignation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if assignation.ID.IsZero() {
		assignation.ID = primitive.NewObjectID()
	}
	assignation.CreatedAt = time.Now()
	assignation.UpdatedAt = time.Now()
	c.assignations[assignation.ID.Hex()] = assignation
	return &assignation, nil
}

func (c *MemoryAssignationCollection) FindAssignationByID(_ context.Context, id string) (*models.Assignation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	assignation, ok := c.assignations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &assignation, nil
}

func (c *MemoryAssignationCollection) FindOverlapping(_ context.Context, resourceID string, from, to time.Time, excludeEventCode string) ([]models.Assignation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.Assignation
	for _, a := range c.assignations {
		if a.ResourceID != resourceID {
			continue
		}
		if excludeEventCode != "" && a.EventCode == excludeEventCode {
			continue
		}
		if a.AvailableFrom.Before(to) && a.AvailableTo.After(from) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (c *MemoryAssignationCollection) UpdateAssignation(_ context.Context, id string, assignation models.Assignation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.assignations[id]
	if !ok {
		return ErrNotFound
	}
	assignation.ID = existing.ID
	assignation.UpdatedAt = time.Now()
	c.assignations[id] = assignation
	return nil
}

func (c *MemoryAssignationCollection) DeleteAssignation(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.assignations[id]; !ok {
		return ErrNotFound
	}
	delete(c.assignations, id)
	return nil
}

func (c *MemoryAssignationCollection) DeleteByEventCode(_ context.Context, eventCode string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, a := range c.assignations {
		if a.EventCode == eventCode {
			delete(c.assignations, id)
		}
	}
	return nil
}

// MemoryMaintenanceCollection is an in-memory MaintenanceCollection.
type MemoryMaintenanceCollection struct {
	mu           sync.RWMutex
	maintenances map[string]models.Maintenance
}

// NewMemoryMaintenanceCollection returns an empty in-memory maintenance store.
func NewMemoryMaintenanceCollection() *MemoryMaintenanceCollection {
	return &MemoryMaintenanceCollection{maintenances: make(map[string]models.Maintenance)}
}

func (c *MemoryMaintenanceCollection) InsertMaintenance(_ context.Context, maintenance models.Maintenance) (*models.Maintenance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if maintenance.ID.IsZero() {
		maintenance.ID = primitive.NewObjectID()
	}
	maintenance.CreatedAt = time.Now()
	maintenance.UpdatedAt = time.Now()
	c.maintenances[maintenance.ID.Hex()] = maintenance
	return &maintenance, nil
}

func (c *MemoryMaintenanceCollection) FindMaintenanceByID(_ context.Context, id string) (*models.Maintenance, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	maintenance, ok := c.maintenances[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &maintenance, nil
}

func (c *MemoryMaintenanceCollection) FindByResourceAndStatus(_ context.Context, resourceID string, statuses ...models.MaintenanceStatus) ([]models.Maintenance, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.Maintenance
	for _, m := range c.maintenances {
		if m.ResourceID != resourceID {
			continue
		}
		if len(statuses) == 0 {
			out = append(out, m)
			continue
		}
		for _, s := range statuses {
			if m.Status == s {
				out = append(out, m)
				break
			}
		}
	}
	return out, nil
}

func (c *MemoryMaintenanceCollection) FindUnfinishedByResourceAndType(_ context.Context, resourceID string, mtype models.MaintenanceType) ([]models.Maintenance, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.Maintenance
	for _, m := range c.maintenances {
		if m.ResourceID == resourceID && m.Type == mtype && m.Status != models.MaintenanceFinished {
			out = append(out, m)
		}
	}
	return out, nil
}

func (c *MemoryMaintenanceCollection) UpdateMaintenance(_ context.Context, id string, maintenance models.Maintenance) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.maintenances[id]
	if !ok {
		return ErrNotFound
	}
	maintenance.ID = existing.ID
	maintenance.UpdatedAt = time.Now()
	c.maintenances[id] = maintenance
	return nil
}

// MemoryReferencePriceCollection is an in-memory ReferencePriceCollection.
type MemoryReferencePriceCollection struct {
	mu     sync.RWMutex
	prices map[string]models.ReferencePrice
}

// NewMemoryReferencePriceCollection returns an empty in-memory price store.
func NewMemoryReferencePriceCollection() *MemoryReferencePriceCollection {
	return &MemoryReferencePriceCollection{prices: make(map[string]models.ReferencePrice)}
}

func (c *MemoryReferencePriceCollection) InsertReferencePrice(_ context.Context, price models.ReferencePrice) (*models.ReferencePrice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if price.ID.IsZero() {
		price.ID = primitive.NewObjectID()
	}
	price.CreatedAt = time.Now()
	c.prices[price.ID.Hex()] = price
	return &price, nil
}

func (c *MemoryReferencePriceCollection) FindOpenByResource(_ context.Context, resourceID string) (*models.ReferencePrice, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.prices {
		if p.ResourceID == resourceID && p.EndDate == nil {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (c *MemoryReferencePriceCollection) FindByResource(_ context.Context, resourceID string) ([]models.ReferencePrice, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.ReferencePrice
	for _, p := range c.prices {
		if p.ResourceID == resourceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *MemoryReferencePriceCollection) UpdateReferencePrice(_ context.Context, id string, price models.ReferencePrice) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.prices[id]
	if !ok {
		return ErrNotFound
	}
	price.ID = existing.ID
	c.prices[id] = price
	return nil
}

// MemoryEventCollection is an in-memory EventCollection.
type MemoryEventCollection struct {
	mu     sync.RWMutex
	events map[string]models.Event
}

// NewMemoryEventCollection returns an empty in-memory event store.
func NewMemoryEventCollection() *MemoryEventCollection {
	return &MemoryEventCollection{events: make(map[string]models.Event)}
}

func (c *MemoryEventCollection) InsertEvent(_ context.Context, event models.Event) (*models.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Code == "" {
		event.Code = uuid.NewString()
	}
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()
	c.events[event.ID.Hex()] = event
	return &event, nil
}

func (c *MemoryEventCollection) FindEventByID(_ context.Context, id string) (*models.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	event, ok := c.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &event, nil
}

func (c *MemoryEventCollection) FindEventByCode(_ context.Context, code string) (*models.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, e := range c.events {
		if e.Code == code {
			return &e, nil
		}
	}
	return nil, ErrNotFound
}

// MemoryResourceLocker is a per-resource mutex map for single-process use.
type MemoryResourceLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMemoryResourceLocker returns an empty in-memory locker.
func NewMemoryResourceLocker() *MemoryResourceLocker {
	return &MemoryResourceLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *MemoryResourceLocker) AcquireResource(_ context.Context, resourceID string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[resourceID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[resourceID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
