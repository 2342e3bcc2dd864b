package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/famlink/family-api/internal/core/domain"
)

const familyCollection = "families"

// FamilyRepository implements ports.FamilyRepository using MongoDB.
type FamilyRepository struct {
	coll     *mongo.Collection
	accounts *mongo.Collection
}

func NewFamilyRepository(db *mongo.Database) *FamilyRepository {
	return &FamilyRepository{
		coll:     db.Collection(familyCollection),
		accounts: db.Collection(accountCollection),
	}
}

type familyDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name"`
	InviteCode      string             `bson:"invite_code,omitempty"`
	InviteExpiresAt int64              `bson:"invite_expires_at,omitempty"`
	CreatedAt       int64              `bson:"created_at"`
}

func (d *familyDoc) toDomain() *domain.Family {
	f := &domain.Family{
		ID:         d.ID.Hex(),
		Name:       d.Name,
		InviteCode: d.InviteCode,
		CreatedAt:  unixToTime(d.CreatedAt),
	}
	if d.InviteExpiresAt != 0 {
		t := unixToTime(d.InviteExpiresAt)
		f.InviteExpiresAt = &t
	}
	return f
}

func (r *FamilyRepository) FindByID(ctx context.Context, id string) (*domain.Family, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrFamilyNotFound
	}

	var doc familyDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrFamilyNotFound
		}
		return nil, fmt.Errorf("find family: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *FamilyRepository) FindByInviteCode(ctx context.Context, code string) (*domain.Family, error) {
	var doc familyDoc
	if err := r.coll.FindOne(ctx, bson.M{"invite_code": code}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrFamilyNotFound
		}
		return nil, fmt.Errorf("find family by invite code: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *FamilyRepository) Insert(ctx context.Context, family *domain.Family) (*domain.Family, error) {
	doc := familyDoc{
		Name:       family.Name,
		InviteCode: family.InviteCode,
		CreatedAt:  family.CreatedAt.Unix(),
	}
	if family.InviteExpiresAt != nil {
		doc.InviteExpiresAt = family.InviteExpiresAt.Unix()
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert family: %w", err)
	}

	created := *family
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *FamilyRepository) UpdateInvite(ctx context.Context, familyID, code string, expiresAt time.Time) error {
	oid, err := primitive.ObjectIDFromHex(familyID)
	if err != nil {
		return domain.ErrFamilyNotFound
	}

	update := bson.M{"$set": bson.M{
		"invite_code":       code,
		"invite_expires_at": expiresAt.Unix(),
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update invite: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrFamilyNotFound
	}
	return nil
}

// ListMembers returns member summaries for a family, oldest first. Handles
// and password hashes are never projected out of the collection.
func (r *FamilyRepository) ListMembers(ctx context.Context, familyID string) ([]domain.MemberSummary, error) {
	opts := options.Find().
		SetProjection(bson.M{"name": 1, "role": 1, "created_at": 1}).
		SetSort(bson.M{"created_at": 1})

	cur, err := r.accounts.Find(ctx, bson.M{"family_id": familyID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer cur.Close(ctx)

	var members []domain.MemberSummary
	for cur.Next(ctx) {
		var doc accountDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode member: %w", err)
		}
		members = append(members, domain.MemberSummary{
			ID:        doc.ID.Hex(),
			Name:      doc.Name,
			Role:      doc.Role,
			CreatedAt: unixToTime(doc.CreatedAt),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}
