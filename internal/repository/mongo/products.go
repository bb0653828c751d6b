package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/product-service/internal/domain"
	"github.com/spec-kit/product-service/internal/repository"
)

// ProductsCollection is the collection holding product documents.
const ProductsCollection = "products"

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Price       float64            `bson:"price"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d productDocument) toDomain() *domain.Product {
	return &domain.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Price:       d.Price,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type productRepository struct {
	coll *mongodriver.Collection
}

// NewProductRepository returns a MongoDB-backed implementation.
func NewProductRepository(db *mongodriver.Database) repository.ProductRepository {
	return &productRepository{coll: db.Collection(ProductsCollection)}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	now := mongoNow()
	doc := productDocument{
		ID:          primitive.NewObjectID(),
		Name:        product.Name,
		Price:       product.Price,
		Description: product.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	product.ID = doc.ID.Hex()
	product.CreatedAt = now
	product.UpdatedAt = now
	return nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	oid, err := primitive.ObjectIDFromHex(product.ID)
	if err != nil {
		return repository.ErrNotFound
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: product.Name},
		{Key: "price", Value: product.Price},
		{Key: "description", Value: product.Description},
		{Key: "updated_at", Value: mongoNow()},
	}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc productDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc); err != nil {
		return mapError(err)
	}
	product.CreatedAt = doc.CreatedAt
	product.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
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

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc productDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.toDomain(), nil
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	products := make([]domain.Product, 0)
	for cur.Next(ctx) {
		var doc productDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		products = append(products, *doc.toDomain())
	}
	return products, cur.Err()
}
