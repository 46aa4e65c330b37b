package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/audit"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/config"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/db"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/events"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/endpoints"
	gormstore "github.com/doodlesbykumbi/backoffice-audit/pkg/server/store/gorm"
)

// JWTSecret signs bearer tokens in the integration tests
const JWTSecret = "integration-secret"

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	RawDB       *sql.DB
	Container   testcontainers.Container
	DatabaseURL string
	Store       *audit.Store
	Router      *audit.Router
	Server      *httptest.Server
	HTTPClient  *http.Client
}

// NewTestContext starts PostgreSQL, applies the bundled migrations and runs
// the ingestion server in-process against it.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("audit_test"),
		tcpostgres.WithUsername("audit"),
		tcpostgres.WithPassword("audit"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	tc := &TestContext{Container: pgContainer, DatabaseURL: connStr}
	if err := tc.start(); err != nil {
		tc.Close(ctx)
		return nil, err
	}
	return tc, nil
}

func (tc *TestContext) start() error {
	m, err := db.NewMigrate(tc.DatabaseURL, "")
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	_, err = db.Migrate(m)
	_, _ = m.Close()
	if err != nil {
		return err
	}

	database, err := db.Connect(db.Config{URL: tc.DatabaseURL})
	if err != nil {
		return err
	}
	tc.DB = database
	if tc.RawDB, err = database.DB(); err != nil {
		return fmt.Errorf("failed to get raw db: %w", err)
	}

	if tc.Store, err = audit.NewStore(tc.DatabaseURL); err != nil {
		return err
	}

	bus := events.NewBus()
	registry := prometheus.NewRegistry()
	tc.Router = audit.NewRouter(
		audit.Collaborators{
			Users:      gormstore.NewUsersStore(database),
			Members:    gormstore.NewMembersStore(database),
			UserGroups: gormstore.NewUserGroupsStore(database),
			Entities:   gormstore.NewEntitiesStore(database),
		},
		tc.Store,
		audit.WithLogger(zap.NewNop()),
		audit.WithMetrics(audit.NewMetrics(registry)),
	)
	if err := tc.Router.Register(bus); err != nil {
		return err
	}

	cfg := config.NewDefault()
	cfg.DatabaseURL = tc.DatabaseURL
	cfg.JWTSecret = JWTSecret
	cfg.TrustedProxies = []string{"127.0.0.1"}

	s := server.NewServer(server.Options{
		Config:       cfg,
		Events:       bus,
		Audit:        tc.Router,
		HealthStore:  gormstore.NewHealthStore(database),
		EntriesStore: gormstore.NewEntriesStore(database),
		Gatherer:     registry,
		AccessLog:    io.Discard,
	})
	endpoints.RegisterAll(s)

	tc.Server = httptest.NewServer(s.Handler())
	tc.HTTPClient = tc.Server.Client()
	tc.HTTPClient.Timeout = 10 * time.Second
	return nil
}

// Reset empties every table between scenarios. TRUNCATE bypasses the
// append-only row trigger on audit_entries.
func (tc *TestContext) Reset() error {
	return tc.DB.Exec(`TRUNCATE audit_entries, users, members, user_groups, entities RESTART IDENTITY`).Error
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.Server != nil {
		tc.Server.Close()
	}
	if tc.Store != nil {
		_ = tc.Store.Close()
	}
	if tc.RawDB != nil {
		_ = tc.RawDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}
