package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/shipment-cli/internal/config"
	"github.com/sells-group/shipment-cli/internal/model"
)

// ErrRunNotFound is returned by GetRun when no run exists with the
// requested ID, across all drivers.
var ErrRunNotFound = eris.New("run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for extraction runs and their
// shipment records.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, extractor string, emails int) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, flagged int) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Records
	SaveRecords(ctx context.Context, runID string, records []model.ShipmentRecord) error
	ListRecords(ctx context.Context, runID string) ([]model.ShipmentRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver. SQLite is the default
// when no driver is set.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
