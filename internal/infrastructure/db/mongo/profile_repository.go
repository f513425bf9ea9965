package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/ports"
)

// ProfileRepository stores profile records keyed by identity id.
type ProfileRepository struct {
	coll *mongo.Collection
}

var _ ports.ProfileStore = (*ProfileRepository)(nil)

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{coll: db.Collection(domain.ProfileCollection)}
}

// EnsureIndexes creates the lookup index on the uid field.
func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "uid", Value: 1}},
		Options: options.Index().SetName("uid"),
	})
	return storeError("create profile indexes", err)
}

// GetRecord returns domain.ErrRecordNotFound when no record exists for id.
func (r *ProfileRepository) GetRecord(ctx context.Context, id string) (*domain.ProfileRecord, error) {
	var rec domain.ProfileRecord
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, storeError("get profile record", err)
	}
	return &rec, nil
}

// SetRecord replaces the whole record for id, creating it if needed.
func (r *ProfileRepository) SetRecord(ctx context.Context, id string, rec *domain.ProfileRecord) error {
	doc, err := toDocument(id, rec)
	if err != nil {
		return err
	}
	_, err = r.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return storeError("set profile record", err)
}

// UpdateRecord merges the profile fields into the existing record.
func (r *ProfileRepository) UpdateRecord(ctx context.Context, id string, f domain.ProfileFields) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":         f.Name,
		"email":        f.Email,
		"edad":         f.Age,
		"especialidad": f.Specialty,
		"updatedAt":    f.UpdatedAt,
	}})
	if err != nil {
		return storeError("update profile record", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// toDocument marshals rec and pins _id to the identity id.
func toDocument(id string, rec *domain.ProfileRecord) (bson.M, error) {
	raw, err := bson.Marshal(rec)
	if err != nil {
		return nil, storeError("encode profile record", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, storeError("encode profile record", err)
	}
	doc["_id"] = id
	return doc, nil
}
