package db

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// MigrationsTable is the table golang-migrate records the schema version in
const MigrationsTable = "audit_schema_migrations"

// Migrations holds the bundled schema migrations
//
//go:embed migrations/*.sql
var Migrations embed.FS

// NewMigrate creates a migrate instance for dbURL. With an empty path the
// bundled migrations are used; otherwise they are read from that directory.
func NewMigrate(dbURL, path string) (*migrate.Migrate, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("database_url is required")
	}
	target := withMigrationsTable(dbURL)

	if path != "" {
		return migrate.New("file://"+path, target)
	}

	migrationsFS, err := fs.Sub(Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to get embedded migrations: %w", err)
	}
	d, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs driver: %w", err)
	}
	return migrate.NewWithSourceInstance("iofs", d, target)
}

// Migrate applies all pending migrations and returns the resulting
// version. An up-to-date schema is not an error.
func Migrate(m *migrate.Migrate) (uint, error) {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migration failed: %w", err)
	}
	version, _, err := Version(m)
	return version, err
}

// MigrateDown rolls back steps migrations
func MigrateDown(m *migrate.Migrate, steps int) (uint, error) {
	if steps < 1 {
		return 0, fmt.Errorf("steps must be positive, got %d", steps)
	}
	if err := m.Steps(-steps); err != nil {
		return 0, fmt.Errorf("rollback failed: %w", err)
	}
	version, _, err := Version(m)
	return version, err
}

// Version returns the applied schema version; 0 when nothing is applied
func Version(m *migrate.Migrate) (uint, bool, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// ListMigrations returns the bundled up-migration file names in order
func ListMigrations() ([]string, error) {
	entries, err := fs.ReadDir(Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// withMigrationsTable points golang-migrate at MigrationsTable so the
// back-office application's own schema_migrations table is left alone
func withMigrationsTable(dbURL string) string {
	if strings.Contains(dbURL, "x-migrations-table=") {
		return dbURL
	}
	if strings.Contains(dbURL, "?") {
		return dbURL + "&x-migrations-table=" + MigrationsTable
	}
	return dbURL + "?x-migrations-table=" + MigrationsTable
}
