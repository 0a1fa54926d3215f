package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ResourceLocker serializes the check-then-act sequences (availability check
// plus booking insert, maintenance guard plus state write) per resource. The
// lock must be visible across processes, so an in-process mutex is not enough
// outside of tests; the Mongo implementation stores one lock document per
// resource and relies on the unique _id index.
type ResourceLocker interface {
	// AcquireResource blocks until the resource lock is held or ctx is done.
	// The returned func releases the lock and must always be called.
	AcquireResource(ctx context.Context, resourceID string) (func(), error)
}

// MongoResourceLocker implements ResourceLocker on a dedicated locks
// collection. Acquisition is an InsertOne on a deterministic _id; a duplicate
// key error means another holder, and the caller polls until it frees.
type MongoResourceLocker struct {
	Collection *mongo.Collection
}

const lockRetryInterval = 50 * time.Millisecond

// lockTTLSeconds bounds how long a crashed process can keep a resource locked.
const lockTTLSeconds = 30

// EnsureLockIndexes creates the TTL index that reaps abandoned locks.
func EnsureLockIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "acquired_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(lockTTLSeconds),
	})
	return err
}

// AcquireResource takes the per-resource lock, polling while another process
// holds it.
func (l *MongoResourceLocker) AcquireResource(ctx context.Context, resourceID string) (func(), error) {
	key := "resource:" + resourceID
	for {
		_, err := l.Collection.InsertOne(ctx, bson.M{
			"_id":         key,
			"acquired_at": time.Now(),
		})
		if err == nil {
			release := func() {
				relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_, _ = l.Collection.DeleteOne(relCtx, bson.M{"_id": key})
			}
			return release, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("acquire resource lock: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}
