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

// MaintenanceCollection defines the interface for maintenance persistence.
type MaintenanceCollection interface {
	InsertMaintenance(ctx context.Context, maintenance models.Maintenance) (*models.Maintenance, error)
	FindMaintenanceByID(ctx context.Context, id string) (*models.Maintenance, error)
	FindByResourceAndStatus(ctx context.Context, resourceID string, statuses ...models.MaintenanceStatus) ([]models.Maintenance, error)
	FindUnfinishedByResourceAndType(ctx context.Context, resourceID string, mtype models.MaintenanceType) ([]models.Maintenance, error)
	UpdateMaintenance(ctx context.Context, id string, maintenance models.Maintenance) error
}

// MongoMaintenanceCollection implements MaintenanceCollection for MongoDB.
type MongoMaintenanceCollection struct {
	Collection *mongo.Collection
}

// InsertMaintenance inserts a maintenance record and returns it with its ID.
func (c *MongoMaintenanceCollection) InsertMaintenance(ctx context.Context, maintenance models.Maintenance) (*models.Maintenance, error) {
	maintenance.CreatedAt = time.Now()
	maintenance.UpdatedAt = time.Now()
	res, err := c.Collection.InsertOne(ctx, maintenance)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		maintenance.ID = oid
	}
	return &maintenance, nil
}

// FindMaintenanceByID finds a maintenance record by its ID.
func (c *MongoMaintenanceCollection) FindMaintenanceByID(ctx context.Context, id string) (*models.Maintenance, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid maintenance ID: %w", err)
	}

	var maintenance models.Maintenance
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&maintenance)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &maintenance, nil
}

// FindByResourceAndStatus returns the resource's maintenance records in any of
// the given statuses.
func (c *MongoMaintenanceCollection) FindByResourceAndStatus(ctx context.Context, resourceID string, statuses ...models.MaintenanceStatus) ([]models.Maintenance, error) {
	filter := bson.M{"resource_id": resourceID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var maintenances []models.Maintenance
	if err := cursor.All(ctx, &maintenances); err != nil {
		return nil, err
	}
	return maintenances, nil
}

// FindUnfinishedByResourceAndType returns the resource's records of the given
// type that have not reached FINALIZADO.
func (c *MongoMaintenanceCollection) FindUnfinishedByResourceAndType(ctx context.Context, resourceID string, mtype models.MaintenanceType) ([]models.Maintenance, error) {
	filter := bson.M{
		"resource_id": resourceID,
		"type":        mtype,
		"status":      bson.M{"$ne": models.MaintenanceFinished},
	}

	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var maintenances []models.Maintenance
	if err := cursor.All(ctx, &maintenances); err != nil {
		return nil, err
	}
	return maintenances, nil
}

// UpdateMaintenance replaces a maintenance record by its ID.
func (c *MongoMaintenanceCollection) UpdateMaintenance(ctx context.Context, id string, maintenance models.Maintenance) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid maintenance ID: %w", err)
	}

	maintenance.UpdatedAt = time.Now()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": maintenance})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
