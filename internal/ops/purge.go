package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hpungsan/repotxt/internal/db"
	"github.com/hpungsan/repotxt/internal/errors"
)

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	OlderThanDays *int    // optional, only purge snapshots created more than N days ago
	RepositoryURL *string // optional filter by repository
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	Purged  int    `json:"purged"`
	Message string `json:"message"`
}

// Purge permanently deletes snapshots. Without filters every snapshot goes.
func Purge(ctx context.Context, database *sql.DB, input PurgeInput) (*PurgeOutput, error) {
	if input.OlderThanDays != nil && *input.OlderThanDays < 0 {
		return nil, errors.NewInvalidRequest("older_than_days must not be negative")
	}

	count, err := db.Purge(ctx, database, input.OlderThanDays, input.RepositoryURL)
	if err != nil {
		return nil, err
	}

	return &PurgeOutput{
		Purged:  count,
		Message: formatPurgeMessage(count, input.RepositoryURL, input.OlderThanDays),
	}, nil
}

// formatPurgeMessage creates a human-readable message for the purge result.
func formatPurgeMessage(count int, repositoryURL *string, olderThanDays *int) string {
	if count == 0 {
		return "No snapshots to purge"
	}

	word := "snapshot"
	if count > 1 {
		word = "snapshots"
	}

	msg := fmt.Sprintf("Permanently deleted %d %s", count, word)

	if repositoryURL != nil {
		msg += fmt.Sprintf(" of %s", *repositoryURL)
	}

	if olderThanDays != nil {
		msg += fmt.Sprintf(" (created more than %d days ago)", *olderThanDays)
	}

	return msg
}
