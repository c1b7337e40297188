package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/repotxt/internal/db"
	"github.com/hpungsan/repotxt/internal/snapshot"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID             string // required
	Path           string // optional: select one file by relative path
	IncludeContent bool   // include content for every file in Files
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	snapshot.Summary
	Files []snapshot.File `json:"files"`
	File  *snapshot.File  `json:"file,omitempty"` // only if Path was given
}

// Fetch retrieves a snapshot's summary and file list. With Path set, the
// selected file is returned with its content.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	id, err := validateID(input.ID)
	if err != nil {
		return nil, err
	}

	s, err := db.GetByID(ctx, database, id, input.IncludeContent)
	if err != nil {
		return nil, err
	}

	output := &FetchOutput{
		Summary: s.ToSummary(),
		Files:   s.Files,
	}

	if path := strings.TrimSpace(input.Path); path != "" {
		f, err := db.GetFile(ctx, database, id, path)
		if err != nil {
			return nil, err
		}
		output.File = f
	}

	return output, nil
}
