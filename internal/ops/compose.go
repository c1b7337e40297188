package ops

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/hpungsan/repotxt/internal/db"
	"github.com/hpungsan/repotxt/internal/errors"
	"github.com/hpungsan/repotxt/internal/snapshot"
)

// Compose formats
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// ComposeInput contains parameters for the Compose operation.
type ComposeInput struct {
	ID     string // required
	Format string // "text" (default), "markdown" or "json"
}

// ComposeOutput contains the result of the Compose operation.
type ComposeOutput struct {
	ID          string `json:"id"`
	Format      string `json:"format"`
	BundleText  string `json:"bundle_text"`
	BundleChars int    `json:"bundle_chars"`
	PartsCount  int    `json:"parts_count"`
}

// ComposeBundle is the JSON format output structure.
type ComposeBundle struct {
	RepositoryURL string          `json:"repository_url"`
	Parts         []snapshot.File `json:"parts"`
}

// Compose renders every file of a snapshot, in order, as one document.
func Compose(ctx context.Context, database *sql.DB, input ComposeInput) (*ComposeOutput, error) {
	id, err := validateID(input.ID)
	if err != nil {
		return nil, err
	}

	format := input.Format
	if format == "" {
		format = FormatText
	}
	if format != FormatText && format != FormatMarkdown && format != FormatJSON {
		return nil, errors.NewInvalidRequest("format must be one of: text, markdown, json")
	}

	s, err := db.GetByID(ctx, database, id, true)
	if err != nil {
		return nil, err
	}

	var bundleText string
	switch format {
	case FormatText:
		bundleText = snapshot.ComposeText(s.Files)
	case FormatMarkdown:
		bundleText = snapshot.ComposeMarkdown(s.Files)
	case FormatJSON:
		bundleText, err = assembleJSON(s)
		if err != nil {
			return nil, err
		}
	}

	return &ComposeOutput{
		ID:          s.ID,
		Format:      format,
		BundleText:  bundleText,
		BundleChars: snapshot.CountChars(bundleText),
		PartsCount:  len(s.Files),
	}, nil
}

// assembleJSON creates JSON format: {"repository_url": ..., "parts": [...]}
func assembleJSON(s *snapshot.Snapshot) (string, error) {
	bundle := ComposeBundle{RepositoryURL: s.RepositoryURL, Parts: s.Files}
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return string(data), nil
}
