package store

import (
	"context"
	"embed"
	"fmt"

	"github.com/pkg/errors"
)

//go:embed migration
var migrationFS embed.FS

// Migrate applies the full schema for the configured driver. All statements
// are idempotent (CREATE IF NOT EXISTS), so running at every startup is safe.
func (s *Store) Migrate(ctx context.Context) error {
	path := fmt.Sprintf("migration/%s/LATEST.sql", s.profile.Driver)
	buf, err := migrationFS.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read schema file %q", path)
	}
	if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrapf(err, "failed to apply schema for driver %q", s.profile.Driver)
	}
	return nil
}
