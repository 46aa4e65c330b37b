package main

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/audit"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/config"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/db"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/events"
	gormstore "github.com/doodlesbykumbi/backoffice-audit/pkg/server/store/gorm"
)

// pipeline is an event bus with the audit router registered on it
type pipeline struct {
	cfg      *config.AuditConfig
	logger   *zap.Logger
	db       *gorm.DB
	bus      *events.Bus
	router   *audit.Router
	store    *audit.Store
	registry *prometheus.Registry
}

// newPipeline connects to the back-office database and registers the audit
// router on a fresh bus. A nil sink means the configured sinks.
func newPipeline(cfg *config.AuditConfig, logger *zap.Logger, sink audit.Sink) (*pipeline, error) {
	p := &pipeline{
		cfg:      cfg,
		logger:   logger,
		bus:      events.NewBus(),
		registry: prometheus.NewRegistry(),
	}
	p.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	database, err := db.Connect(db.Config{URL: cfg.DatabaseURL, LogLevel: cfg.LogLevel})
	if err != nil {
		return nil, err
	}
	p.db = database

	if sink == nil {
		if sink, err = p.configuredSinks(); err != nil {
			p.Close()
			return nil, err
		}
	}

	p.router = audit.NewRouter(
		audit.Collaborators{
			Users:      gormstore.NewUsersStore(database),
			Members:    gormstore.NewMembersStore(database),
			UserGroups: gormstore.NewUserGroupsStore(database),
			Entities:   gormstore.NewEntitiesStore(database),
		},
		sink,
		audit.WithLogger(logger.Named("audit")),
		audit.WithMetrics(audit.NewMetrics(p.registry)),
	)
	if err := p.router.Register(p.bus); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *pipeline) configuredSinks() (audit.Sink, error) {
	var sinks audit.Tee
	if p.cfg.SyslogEnabled {
		sinks = append(sinks, audit.NewLogger(p.cfg.SyslogAppName))
	}
	if url := p.cfg.AuditDatabase(); url != "" {
		s, err := audit.NewStore(url)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit store: %w", err)
		}
		p.store = s
		sinks = append(sinks, s)
	}
	if len(sinks) == 0 {
		return nil, errors.New("no audit sink configured")
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sinks, nil
}

// Close releases the database connections
func (p *pipeline) Close() {
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			p.logger.Warn("failed to close audit store", zap.Error(err))
		}
	}
	if p.db != nil {
		if sqlDB, err := p.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
