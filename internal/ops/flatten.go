package ops

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/hpungsan/repotxt/internal/config"
	"github.com/hpungsan/repotxt/internal/db"
	"github.com/hpungsan/repotxt/internal/flatten"
	"github.com/hpungsan/repotxt/internal/snapshot"
)

// FlattenInput contains parameters for the Flatten operation.
type FlattenInput struct {
	RepositoryURL string // required
}

// FlattenOutput contains the result of the Flatten operation.
// Files list the snapshot's records in order without content.
type FlattenOutput struct {
	snapshot.Summary
	Files []snapshot.File `json:"files"`
}

// NewFlattener builds a flattener from configuration.
func NewFlattener(cfg *config.Config, logger *slog.Logger) *flatten.Flattener {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	depth := cfg.CloneDepth
	if cfg.FullHistory {
		depth = 0
	}
	return flatten.New(
		flatten.WithAcquirer(&flatten.GitCLI{Binary: cfg.GitBinary, Depth: depth}),
		flatten.WithExtensions(cfg.Extensions),
		flatten.WithLogger(logger),
	)
}

// Flatten clones a repository, collects its source files and stores them as a
// new snapshot. Every call creates a new snapshot; earlier ones are never reused.
func Flatten(ctx context.Context, database *sql.DB, cfg *config.Config, fl *flatten.Flattener, input FlattenInput) (*FlattenOutput, error) {
	// The clone deadline does not cover storing the snapshot.
	flattenCtx := ctx
	if timeout := cfg.CloneTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		flattenCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := fl.Flatten(flattenCtx, flatten.Request{RepositoryURL: input.RepositoryURL})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	id, err := generateULID(now)
	if err != nil {
		return nil, err
	}

	snap := snapshot.FromResult(id, now.Unix(), res)
	if err := db.InsertSnapshot(ctx, database, snap); err != nil {
		return nil, err
	}

	return &FlattenOutput{
		Summary: snap.ToSummary(),
		Files:   fileRefs(snap.Files),
	}, nil
}

// fileRefs copies files without their content.
func fileRefs(files []snapshot.File) []snapshot.File {
	refs := make([]snapshot.File, len(files))
	for i, f := range files {
		f.Content = ""
		refs[i] = f
	}
	return refs
}
