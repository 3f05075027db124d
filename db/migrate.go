package db

import (
	"errors"
	"fmt"
	"go-property-api/logger"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrationURL points the migrate mongodb driver at dbName on the deployment behind mongoURI.
func MigrationURL(mongoURI, dbName string) (string, error) {
	u, err := url.Parse(mongoURI)
	if err != nil {
		return "", fmt.Errorf("invalid mongo uri: %w", err)
	}
	u.Path = "/" + dbName
	return u.String(), nil
}

// RunMigrations applies every pending index migration found under sourcePath.
func RunMigrations(sourcePath, mongoURI, dbName string) error {
	dbURL, err := MigrationURL(mongoURI, dbName)
	if err != nil {
		return err
	}

	mig, err := migrate.New(sourcePath, dbURL)
	if err != nil {
		return fmt.Errorf("cannot create migrate instance: %w", err)
	}
	defer mig.Close()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrate up: %w", err)
	}

	version, dirty, _ := mig.Version()
	logger.Log.WithField("version", version).WithField("dirty", dirty).Info("Database migrations applied")
	return nil
}
