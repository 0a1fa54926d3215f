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

// ResourceCollection defines the interface for resource persistence.
type ResourceCollection interface {
	InsertResource(ctx context.Context, resource models.Resource) (*models.Resource, error)
	FindResourceByID(ctx context.Context, id string) (*models.Resource, error)
	FindResourcesByStatus(ctx context.Context, status models.ResourceStatus) ([]models.Resource, error)
	UpdateResource(ctx context.Context, id string, resource models.Resource) error
	DeactivateResource(ctx context.Context, id string) error
}

// MongoResourceCollection implements ResourceCollection for MongoDB.
type MongoResourceCollection struct {
	Collection *mongo.Collection
}

// InsertResource inserts a resource and returns it with its assigned ID.
func (c *MongoResourceCollection) InsertResource(ctx context.Context, resource models.Resource) (*models.Resource, error) {
	resource.CreatedAt = time.Now()
	resource.UpdatedAt = time.Now()
	resource.Active = true
	if resource.SeasonNumber == 0 {
		resource.SeasonNumber = 1
	}
	res, err := c.Collection.InsertOne(ctx, resource)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		resource.ID = oid
	}
	return &resource, nil
}

// FindResourceByID finds a resource by its ID.
func (c *MongoResourceCollection) FindResourceByID(ctx context.Context, id string) (*models.Resource, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid resource ID: %w", err)
	}

	var resource models.Resource
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&resource)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &resource, nil
}

// FindResourcesByStatus returns all active resources in the given status.
func (c *MongoResourceCollection) FindResourcesByStatus(ctx context.Context, status models.ResourceStatus) ([]models.Resource, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{"status": status, "active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var resources []models.Resource
	if err := cursor.All(ctx, &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

// UpdateResource replaces the mutable fields of a resource by its ID.
func (c *MongoResourceCollection) UpdateResource(ctx context.Context, id string, resource models.Resource) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid resource ID: %w", err)
	}

	resource.UpdatedAt = time.Now()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": resource})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateResource marks a resource inactive. Resources are never deleted.
func (c *MongoResourceCollection) DeactivateResource(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid resource ID: %w", err)
	}

	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"active": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
