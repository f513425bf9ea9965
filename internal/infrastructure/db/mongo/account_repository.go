package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/ports"
)

const accountCollection = "auth_users"

type AccountRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountCollection), now: time.Now}
}

type mongoAccount struct {
	ID           string `bson:"_id"`
	Email        string `bson:"email"`
	DisplayName  string `bson:"display_name,omitempty"`
	PasswordHash string `bson:"password_hash"`
	CreatedAt    int64  `bson:"created_at"`
	UpdatedAt    int64  `bson:"updated_at"`
}

// EnsureIndexes creates the unique email index.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	return storeError("create account indexes", err)
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	doc := mongoAccount{
		ID:           account.ID,
		Email:        account.Email,
		DisplayName:  account.DisplayName,
		PasswordHash: account.PasswordHash,
		CreatedAt:    account.CreatedAt.Unix(),
		UpdatedAt:    account.UpdatedAt.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAccountExists
		}
		return storeError("insert account", err)
	}
	return nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var ma mongoAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, storeError("find account", err)
	}

	return &domain.Account{
		ID:           ma.ID,
		Email:        ma.Email,
		DisplayName:  ma.DisplayName,
		PasswordHash: ma.PasswordHash,
		CreatedAt:    unixToTime(ma.CreatedAt),
		UpdatedAt:    unixToTime(ma.UpdatedAt),
	}, nil
}

func (r *AccountRepository) UpdateDisplayName(ctx context.Context, id, name string) error {
	return r.set(ctx, id, "display_name", name)
}

func (r *AccountRepository) UpdateEmail(ctx context.Context, id, email string) error {
	return r.set(ctx, id, "email", email)
}

func (r *AccountRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.set(ctx, id, "password_hash", hash)
}

func (r *AccountRepository) set(ctx context.Context, id, field string, value any) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		field:        value,
		"updated_at": r.now().UTC().Unix(),
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAccountExists
		}
		return storeError("update account "+field, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
