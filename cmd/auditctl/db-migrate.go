package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/config"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/db"
)

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the audit schema",
	Long: `Create and/or upgrade the audit schema.

This command runs all pending migrations against audit_database_url (or
database_url when unset). The version is recorded in audit_schema_migrations.

Example:
  auditctl db migrate
  auditctl db migrate --migrations-path ./migrations`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("migrations-path")

		dbURL, err := migrationDatabaseURL()
		if err == nil {
			_, err = runMigrations(dbURL, path)
		}
		if err != nil {
			fmt.Println("Migration failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback audit schema migrations",
	Long: `Rollback audit schema migrations.

This command rolls back the specified number of migrations (default: 1).

Example:
  auditctl db down      # Rollback 1 migration
  auditctl db down 2    # Rollback 2 migrations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("migrations-path")
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Println("Rollback failed: invalid steps:", args[0])
				os.Exit(1)
			}
			steps = n
		}

		if err := runMigrationsDown(path, steps); err != nil {
			fmt.Println("Rollback failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current audit schema version and the bundled migrations.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("migrations-path")

		if err := showMigrationStatus(path); err != nil {
			fmt.Println("Failed to get status:", err)
			os.Exit(1)
		}
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

func migrationDatabaseURL() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.AuditDatabase() == "" {
		return "", fmt.Errorf("AUDIT_DATABASE_URL or DATABASE_URL is required")
	}
	return cfg.AuditDatabase(), nil
}

func runMigrations(dbURL, path string) (uint, error) {
	m, err := db.NewMigrate(dbURL, path)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, _ := db.Version(m)
	fmt.Printf("Current version: %d (dirty: %v)\n", version, dirty)

	newVersion, err := db.Migrate(m)
	if err != nil {
		return 0, err
	}
	if newVersion == version {
		fmt.Println("No migrations to run - database is up to date")
		return newVersion, nil
	}

	fmt.Printf("Migrated to version: %d\n", newVersion)
	return newVersion, nil
}

func runMigrationsDown(path string, steps int) error {
	dbURL, err := migrationDatabaseURL()
	if err != nil {
		return err
	}

	m, err := db.NewMigrate(dbURL, path)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	version, err := db.MigrateDown(m, steps)
	if err != nil {
		return err
	}
	fmt.Printf("Rolled back %d migration(s), now at version: %d\n", steps, version)
	return nil
}

func showMigrationStatus(path string) error {
	dbURL, err := migrationDatabaseURL()
	if err != nil {
		return err
	}

	m, err := db.NewMigrate(dbURL, path)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, err := db.Version(m)
	if err != nil {
		return err
	}
	fmt.Printf("Current version: %d\n", version)
	fmt.Printf("Dirty: %v\n", dirty)

	if path == "" {
		files, err := db.ListMigrations()
		if err != nil {
			return err
		}
		fmt.Println("Bundled migrations:")
		for _, f := range files {
			fmt.Println("  " + f)
		}
	}
	return nil
}
