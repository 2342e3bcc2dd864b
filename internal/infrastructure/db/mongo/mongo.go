package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// Config holds the connection settings for the famlink database.
type Config struct {
	URI      string
	Database string
}

// Connect dials MongoDB, verifies the connection with a ping and makes sure
// the uniqueness indexes the auth flows rely on exist.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(dialCtx, nil); err != nil {
		_ = client.Disconnect(dialCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	if err := ensureIndexes(dialCtx, db); err != nil {
		_ = client.Disconnect(dialCtx)
		return nil, nil, err
	}
	return client, db, nil
}

// ensureIndexes creates the indexes the repositories depend on. Duplicate
// registration is enforced here, not in application code: Insert surfaces the
// duplicate-key error as a domain error.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	sparseUnique := options.Index().SetUnique(true).SetSparse(true)

	_, err := db.Collection(accountCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: sparseUnique},
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: sparseUnique},
		{Keys: bson.D{{Key: "family_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo account indexes: %w", err)
	}

	_, err = db.Collection(familyCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "invite_code", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
	if err != nil {
		return fmt.Errorf("mongo family indexes: %w", err)
	}
	return nil
}
