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

// ReferencePriceCollection defines the interface for the append-only price
// history of a resource.
type ReferencePriceCollection interface {
	InsertReferencePrice(ctx context.Context, price models.ReferencePrice) (*models.ReferencePrice, error)
	FindOpenByResource(ctx context.Context, resourceID string) (*models.ReferencePrice, error)
	FindByResource(ctx context.Context, resourceID string) ([]models.ReferencePrice, error)
	UpdateReferencePrice(ctx context.Context, id string, price models.ReferencePrice) error
}

// MongoReferencePriceCollection implements ReferencePriceCollection for MongoDB.
type MongoReferencePriceCollection struct {
	Collection *mongo.Collection
}

// InsertReferencePrice inserts a price record and returns it with its ID.
func (c *MongoReferencePriceCollection) InsertReferencePrice(ctx context.Context, price models.ReferencePrice) (*models.ReferencePrice, error) {
	price.CreatedAt = time.Now()
	res, err := c.Collection.InsertOne(ctx, price)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		price.ID = oid
	}
	return &price, nil
}

// FindOpenByResource returns the resource's record with no end date. At most
// one such record exists per resource.
func (c *MongoReferencePriceCollection) FindOpenByResource(ctx context.Context, resourceID string) (*models.ReferencePrice, error) {
	var price models.ReferencePrice
	err := c.Collection.FindOne(ctx, bson.M{
		"resource_id": resourceID,
		"end_date":    bson.M{"$exists": false},
	}).Decode(&price)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &price, nil
}

// FindByResource returns the resource's full price history, newest season first.
func (c *MongoReferencePriceCollection) FindByResource(ctx context.Context, resourceID string) ([]models.ReferencePrice, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{"resource_id": resourceID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var prices []models.ReferencePrice
	if err := cursor.All(ctx, &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

// UpdateReferencePrice replaces a price record by its ID. The only legal
// mutation is closing an open record's end date.
func (c *MongoReferencePriceCollection) UpdateReferencePrice(ctx context.Context, id string, price models.ReferencePrice) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid reference price ID: %w", err)
	}

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": price})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
