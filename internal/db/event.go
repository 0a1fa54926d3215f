package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grupoalpa/eventos-ops/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// EventCollection defines the interface for event lookups. The full event
// CRUD belongs to the back-office service; the engine needs existence checks
// and the group code.
type EventCollection interface {
	InsertEvent(ctx context.Context, event models.Event) (*models.Event, error)
	FindEventByID(ctx context.Context, id string) (*models.Event, error)
	FindEventByCode(ctx context.Context, code string) (*models.Event, error)
}

// MongoEventCollection implements EventCollection for MongoDB.
type MongoEventCollection struct {
	Collection *mongo.Collection
}

// InsertEvent inserts an event, generating its group code when absent.
func (c *MongoEventCollection) InsertEvent(ctx context.Context, event models.Event) (*models.Event, error) {
	if event.Code == "" {
		event.Code = uuid.NewString()
	}
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()
	res, err := c.Collection.InsertOne(ctx, event)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		event.ID = oid
	}
	return &event, nil
}

// FindEventByID finds an event by its ID.
func (c *MongoEventCollection) FindEventByID(ctx context.Context, id string) (*models.Event, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID: %w", err)
	}

	var event models.Event
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// FindEventByCode finds an event by its group code.
func (c *MongoEventCollection) FindEventByCode(ctx context.Context, code string) (*models.Event, error) {
	var event models.Event
	err := c.Collection.FindOne(ctx, bson.M{"code": code}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}
