package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingrepo "karabook/internal/bookings/repository"
	customerrepo "karabook/internal/customers/repository"
	roomrepo "karabook/internal/rooms/repository"
	"karabook/pkg/config"
)

var (
	// Admission reads every non-cancelled booking for one room and date;
	// listing sorts by date then start time.
	bookingIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "room_id", Value: 1},
			{Key: "date", Value: 1},
			{Key: "start_time", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "date", Value: 1},
			{Key: "start_time", Value: 1},
		}},
	}

	// Lock uniqueness rides on _id; the TTL index reaps locks orphaned by a
	// request that died between acquire and release.
	lockIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	// The unique indexes are what turn a duplicate insert into the conflict
	// the repositories translate for the caller.
	roomIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "room_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	userIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
)

// EnsureIndexes creates the indexes the repositories depend on. CreateMany is
// idempotent for an index that already exists, so this runs on every startup.
func EnsureIndexes(ctx context.Context, cfg *config.Config) error {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)

	collections := map[string][]mongo.IndexModel{
		bookingrepo.CollectionName:     bookingIndexes,
		bookingrepo.LockCollectionName: lockIndexes,
		roomrepo.CollectionName:        roomIndexes,
		customerrepo.CollectionName:    userIndexes,
	}

	for name, models := range collections {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	cfg.Log.Info("Database indexes ensured", "database", cfg.MongoDatabaseName)
	return nil
}
