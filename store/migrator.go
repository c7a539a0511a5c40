package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

//go:embed migration
var migrationFS embed.FS

// LatestSchemaFileName holds the full schema for new installations.
const LatestSchemaFileName = "LATEST.sql"

// Migrate initializes the database schema on a fresh installation. Already
// initialized databases are left untouched; schema changes ship as a new
// LATEST.sql and apply to new installations only.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		return nil
	}

	buf, err := migrationFS.ReadFile(fmt.Sprintf("migration/%s/%s", s.profile.Driver, LatestSchemaFileName))
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema for driver %q", s.profile.Driver)
	}

	if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrap(err, "failed to apply latest schema")
	}

	slog.Info("database initialized", slog.String("driver", s.profile.Driver))
	return nil
}
