package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-gate/internal/audit"
	"github.com/kozaktomas/face-gate/internal/config"
	"github.com/kozaktomas/face-gate/internal/database"
	"github.com/kozaktomas/face-gate/internal/database/filestore"
	"github.com/kozaktomas/face-gate/internal/database/mariadb"
	"github.com/kozaktomas/face-gate/internal/database/postgres"
	"github.com/kozaktomas/face-gate/internal/embedding"
	"github.com/kozaktomas/face-gate/internal/identity"
	"github.com/kozaktomas/face-gate/internal/metrics"
	"github.com/kozaktomas/face-gate/internal/photos"
)

// loadConfig loads and validates the configuration, applying matching overrides
// from command flags when they were set explicitly.
func loadConfig(overrides ...func(*config.Config)) (*config.Config, error) {
	cfg := config.Load()
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openBackend opens the configured identity store and registers it.
// PostgreSQL wins when DATABASE_URL is set, then MariaDB, then the encodings directory.
func openBackend(cfg *config.Config) error {
	switch {
	case cfg.Database.URL != "":
		fmt.Printf("Connecting to PostgreSQL database...\n")
		applied, err := postgres.Initialize(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		for _, m := range applied {
			fmt.Printf("Applied migration: %s\n", m)
		}
	case cfg.Database.MariaDBDSN != "":
		fmt.Printf("Connecting to MariaDB database...\n")
		if err := mariadb.Initialize(cfg.Database.MariaDBDSN); err != nil {
			return fmt.Errorf("failed to initialize MariaDB: %w", err)
		}
	default:
		store, err := filestore.New(cfg.Storage.EncodingsDir)
		if err != nil {
			return fmt.Errorf("failed to open encodings directory: %w", err)
		}
		database.RegisterIdentityBackend(database.BackendFile, func() database.IdentityWriter { return store }, nil)
	}
	fmt.Printf("Using %s identity backend\n", database.BackendName())
	return nil
}

// closeBackend releases the registered backend, reporting but not failing on errors.
func closeBackend() {
	if err := database.CloseBackend(); err != nil {
		fmt.Printf("Warning: failed to close identity backend: %v\n", err)
	}
}

// newExtractor creates the feature extractor client, reporting calls to m when set.
func newExtractor(cfg *config.Config, m *metrics.Metrics) embedding.Extractor {
	client := embedding.NewClient(cfg.Extractor.URL, cfg.Matching.EncodingDim)
	if m == nil {
		return client
	}
	return embedding.WithObserver(client, m.ObserveExtraction)
}

// buildService wires the registered identity store, extractor, photo store
// and audit log into an identity service.
func buildService(ctx context.Context, cfg *config.Config, m *metrics.Metrics, withAudit bool) (*identity.Service, error) {
	store, err := database.GetIdentityWriter(ctx)
	if err != nil {
		return nil, err
	}

	photoStore, err := photos.NewStore(cfg.Storage.PhotosDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open photos directory: %w", err)
	}

	policy, err := cfg.Matching.Policy()
	if err != nil {
		return nil, err
	}

	opts := identity.Options{
		EnrollTolerance:    cfg.Matching.EnrollTolerance,
		DuplicateTolerance: cfg.Matching.DuplicateTolerance,
		Policy:             policy,
	}

	if !withAudit {
		return identity.NewService(store, newExtractor(cfg, m), photoStore, nil, opts), nil
	}
	return identity.NewService(store, newExtractor(cfg, m), photoStore, audit.NewLog(cfg.Storage.AuditLogPath), opts), nil
}
