package db

import (
	"context"
	"fmt"
	"go-property-api/config"
	"go-property-api/logger"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// Connect opens a client to the configured MongoDB deployment and returns the application database.
func Connect() (*mongo.Client, *mongo.Database, error) {
	cfg := config.AppConfig.Database

	logger.Log.WithField("connection", redactURI(cfg.URI)).Info("Attempting to connect to the database")

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to open database connection")
		return nil, nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		logger.Log.WithError(err).Error("Failed to ping database")
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Log.WithField("database", cfg.Name).Info("Database connection established successfully")
	return client, client.Database(cfg.Name), nil
}

func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}
