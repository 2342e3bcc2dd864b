package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/famlink/family-api/internal/core/domain"
)

const activityCollection = "auth_activity"

// ActivityRepository persists auth audit events to an append-only collection.
type ActivityRepository struct {
	coll *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{coll: db.Collection(activityCollection)}
}

func (r *ActivityRepository) Insert(ctx context.Context, activity *domain.AuthActivity) error {
	doc := bson.M{
		"kind":        activity.Kind,
		"account_id":  activity.AccountID,
		"family_id":   activity.FamilyID,
		"handle":      activity.Handle,
		"client_ip":   activity.ClientIP,
		"timestamp":   activity.Timestamp.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert auth activity: %w", err)
	}
	return nil
}
