// Package mongo implements the repositories on top of a MongoDB database.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/product-service/internal/domain"
	"github.com/spec-kit/product-service/internal/repository"
)

// AccountsCollection is the collection holding account documents.
const AccountsCollection = "users"

type accountDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	Name         string             `bson:"name,omitempty"`
	Surname      string             `bson:"surname,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d accountDocument) toDomain() *domain.Account {
	return &domain.Account{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		Name:         d.Name,
		Surname:      d.Surname,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type accountRepository struct {
	coll *mongodriver.Collection
}

// NewAccountRepository returns a MongoDB-backed implementation.
func NewAccountRepository(db *mongodriver.Database) repository.AccountRepository {
	return &accountRepository{coll: db.Collection(AccountsCollection)}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	now := mongoNow()
	doc := accountDocument{
		ID:           primitive.NewObjectID(),
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		Role:         string(account.Role),
		Name:         account.Name,
		Surname:      account.Surname,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapError(err)
	}
	account.ID = doc.ID.Hex()
	account.CreatedAt = now
	account.UpdatedAt = now
	return nil
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	oid, err := primitive.ObjectIDFromHex(account.ID)
	if err != nil {
		return repository.ErrNotFound
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "email", Value: account.Email},
		{Key: "password_hash", Value: account.PasswordHash},
		{Key: "role", Value: string(account.Role)},
		{Key: "name", Value: account.Name},
		{Key: "surname", Value: account.Surname},
		{Key: "updated_at", Value: mongoNow()},
	}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc accountDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc); err != nil {
		return mapError(err)
	}
	account.CreatedAt = doc.CreatedAt
	account.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *accountRepository) List(ctx context.Context) ([]domain.Account, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	accounts := make([]domain.Account, 0)
	for cur.Next(ctx) {
		var doc accountDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		accounts = append(accounts, *doc.toDomain())
	}
	return accounts, cur.Err()
}

func (r *accountRepository) findOne(ctx context.Context, filter bson.D) (*domain.Account, error) {
	var doc accountDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.toDomain(), nil
}

// mongoNow truncates to the millisecond precision of BSON dates.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongodriver.ErrNoDocuments):
		return repository.ErrNotFound
	case mongodriver.IsDuplicateKeyError(err):
		return repository.ErrDuplicateEmail
	}
	return err
}
