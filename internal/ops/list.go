package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/repotxt/internal/db"
	"github.com/hpungsan/repotxt/internal/snapshot"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	RepositoryURL *string // optional filter by repository
	Limit         int     // default: 20, max: 100
	Offset        int     // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []snapshot.Summary `json:"items"`
	Pagination Pagination         `json:"pagination"`
	Sort       string             `json:"sort"`
}

// List retrieves snapshot summaries, newest first, with pagination.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	offset := max(input.Offset, 0)

	repositoryURL := input.RepositoryURL
	if repositoryURL != nil && strings.TrimSpace(*repositoryURL) == "" {
		repositoryURL = nil
	}

	summaries, total, err := db.ListSnapshots(ctx, database, repositoryURL, limit, offset)
	if err != nil {
		return nil, err
	}

	if summaries == nil {
		summaries = []snapshot.Summary{}
	}

	return &ListOutput{
		Items: summaries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(summaries) < total,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}
