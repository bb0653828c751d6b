package persistence

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/spec-kit/product-service/internal/config"
	"github.com/spec-kit/product-service/internal/repository/mongo"
)

// Mongo wraps a connected MongoDB client and the service database.
type Mongo struct {
	Client *mongodriver.Client
	DB     *mongodriver.Database
}

// NewMongo connects, pings and prepares indexes.
func NewMongo(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*Mongo, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri not configured")
	}

	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	m := &Mongo{Client: client, DB: client.Database(cfg.Database)}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("connected to mongo", zap.String("database", cfg.Database))
	return m, nil
}

// ensureIndexes enforces email uniqueness at the store level.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.DB.Collection(mongo.AccountsCollection).Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("uniq_email").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo ensure indexes: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (m *Mongo) Ping(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return errors.New("mongo client not configured")
	}
	return m.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) {
	if m != nil && m.Client != nil {
		_ = m.Client.Disconnect(ctx)
	}
}
