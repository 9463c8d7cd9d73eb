package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devconnector/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

type DB struct {
	Client   *mongo.Client
	Users    *mongo.Collection
	Profiles *mongo.Collection
	Posts    *mongo.Collection
}

// Connect opens the client, pings it, and makes sure the unique indexes
// exist.
func Connect(ctx context.Context, cfg config.MongoConfig) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(100).
		SetMaxConnIdleTime(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	db := client.Database(cfg.Database)
	d := &DB{
		Client:   client,
		Users:    db.Collection("users"),
		Profiles: db.Collection("profiles"),
		Posts:    db.Collection("posts"),
	}

	if err := d.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return d, nil
}

// ConnectWithRetry tries Connect up to attempts times, pausing between tries.
func ConnectWithRetry(ctx context.Context, cfg config.MongoConfig, attempts int, pause time.Duration, logger *zap.Logger) (*DB, error) {
	var lastErr error
	for i := 1; i <= attempts; i++ {
		d, err := Connect(ctx, cfg)
		if err == nil {
			return d, nil
		}
		lastErr = err
		logger.Warn("MongoDB connection attempt failed", zap.Int("attempt", i), zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pause):
		}
	}
	return nil, lastErr
}

// A unique index on profiles.user makes two concurrent first-time upserts
// for the same user fail loudly instead of creating two profiles.
func (d *DB) ensureIndexes(ctx context.Context) error {
	if _, err := d.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create users.email index: %w", err)
	}

	if _, err := d.Profiles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create profiles.user index: %w", err)
	}

	if _, err := d.Posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: -1}},
	}); err != nil {
		return fmt.Errorf("create posts.date index: %w", err)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Client.Ping(ctx, nil)
}

func (d *DB) Disconnect(ctx context.Context) error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Disconnect(ctx)
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
