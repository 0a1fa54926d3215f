package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/grupoalpa/eventos-ops/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AssignationCollection defines the interface for booking persistence. The
// overlap query is pushed down to the store so the conflict window scan stays
// an indexed range query.
type AssignationCollection interface {
	InsertAssignation(ctx context.Context, assignation models.Assignation) (*models.Assignation, error)
	FindAssignationByID(ctx context.Context, id string) (*models.Assignation, error)
	FindOverlapping(ctx context.Context, resourceID string, from, to time.Time, excludeEventCode string) ([]models.Assignation, error)
	UpdateAssignation(ctx context.Context, id string, assignation models.Assignation) error
	DeleteAssignation(ctx context.Context, id string) error
	DeleteByEventCode(ctx context.Context, eventCode string) error
}

// MongoAssignationCollection implements AssignationCollection for MongoDB.
type MongoAssignationCollection struct {
	Collection *mongo.Collection
}

// InsertAssignation inserts a booking and returns it with its assigned ID.
func (c *MongoAssignationCollection) InsertAssignation(ctx context.Context, assignation models.Assignation) (*models.Assignation, error) {
	assignation.CreatedAt = time.Now()
	assignation.UpdatedAt = time.Now()
	res, err := c.Collection.InsertOne(ctx, assignation)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		assignation.ID = oid
	}
	return &assignation, nil
}

// FindAssignationByID finds a booking by its ID.
func (c *MongoAssignationCollection) FindAssignationByID(ctx context.Context, id string) (*models.Assignation, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid assignation ID: %w", err)
	}

	var assignation models.Assignation
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&assignation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &assignation, nil
}

// FindOverlapping returns the bookings of resourceID whose half-open window
// [available_from, available_to) overlaps [from, to). Two windows overlap iff
// available_from < to AND available_to > from, so touching endpoints do not
// match. Bookings whose event code equals excludeEventCode are left out,
// which lets a quotation revision re-save without self-conflicting.
func (c *MongoAssignationCollection) FindOverlapping(ctx context.Context, resourceID string, from, to time.Time, excludeEventCode string) ([]models.Assignation, error) {
	filter := bson.M{
		"resource_id":    resourceID,
		"available_from": bson.M{"$lt": to},
		"available_to":   bson.M{"$gt": from},
	}
	if excludeEventCode != "" {
		filter["event_code"] = bson.M{"$ne": excludeEventCode}
	}

	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignations []models.Assignation
	if err := cursor.All(ctx, &assignations); err != nil {
		return nil, err
	}
	return assignations, nil
}

// UpdateAssignation replaces a booking by its ID. Used only for worker-count
// reconciliation; windows are never edited in place.
func (c *MongoAssignationCollection) UpdateAssignation(ctx context.Context, id string, assignation models.Assignation) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid assignation ID: %w", err)
	}

	assignation.UpdatedAt = time.Now()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": assignation})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAssignation removes a booking, as the supersession half of a
// reprogramming (delete old window, insert new record).
func (c *MongoAssignationCollection) DeleteAssignation(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid assignation ID: %w", err)
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByEventCode removes every booking under a group code. Used for
// maintenance placeholder windows keyed by a synthetic code.
func (c *MongoAssignationCollection) DeleteByEventCode(ctx context.Context, eventCode string) error {
	_, err := c.Collection.DeleteMany(ctx, bson.M{"event_code": eventCode})
	return err
}
