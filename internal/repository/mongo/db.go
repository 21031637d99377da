package mongo

import (
	"context"
	"fmt"

	"github.com/formlab/formgen/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DB is the explicit MongoDB handle threaded through the repositories.
// It is created once in main, verified with Ping, and closed on shutdown.
type DB struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewDB connects to MongoDB and verifies the connection
func NewDB(ctx context.Context, cfg config.MongoConfig) (*DB, error) {
	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.Username != "" && cfg.Password != "" {
		clientOpts.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &DB{
		client:   client,
		database: client.Database(cfg.Database),
	}, nil
}

// Close disconnects from MongoDB
func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// Ping verifies database connectivity
func (db *DB) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, readpref.Primary())
}

// Collection returns a handle to a named collection
func (db *DB) Collection(name string) *mongo.Collection {
	return db.database.Collection(name)
}

// WithTransaction runs fn inside a multi-document transaction
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := db.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
