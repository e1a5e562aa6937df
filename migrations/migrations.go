// Package migrations embeds the schema and applies it with golang-migrate.
package migrations

import (
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/openhire/openhire/pkg/errx"
)

//go:embed *.sql
var fs embed.FS

// Up applies every pending migration. A fully migrated database is not an
// error.
func Up(databaseURL string) error {
	m, err := newMigrate(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errx.Wrap(err, "failed to apply migrations", errx.TypeInternal)
	}
	return nil
}

// Down rolls back the most recent migration.
func Down(databaseURL string) error {
	m, err := newMigrate(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errx.Wrap(err, "failed to roll back migration", errx.TypeInternal)
	}
	return nil
}

// Version reports the current schema version and whether it is dirty.
func Version(databaseURL string) (uint, bool, error) {
	m, err := newMigrate(databaseURL)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, errx.Wrap(err, "failed to read schema version", errx.TypeInternal)
	}
	return version, dirty, nil
}

func newMigrate(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(fs, ".")
	if err != nil {
		return nil, errx.Wrap(err, "failed to load embedded migrations", errx.TypeInternal)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, errx.Wrap(err, "failed to initialize migrations", errx.TypeInternal)
	}
	return m, nil
}
