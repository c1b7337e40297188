package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/repotxt/internal/config"
	"github.com/hpungsan/repotxt/internal/errors"
	"github.com/hpungsan/repotxt/internal/flatten"
	"github.com/hpungsan/repotxt/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db        *sql.DB
	cfg       *config.Config
	flattener *flatten.Flattener
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, fl *flatten.Flattener) *Handlers {
	return &Handlers{db: db, cfg: cfg, flattener: fl}
}

// Request types for JSON decoding

// FlattenRequest represents the input for the repo_flatten tool.
type FlattenRequest struct {
	RepositoryURL string `json:"repository_url"`
}

// FetchRequest represents the input for the repo_fetch tool.
type FetchRequest struct {
	ID             string `json:"id"`
	Path           string `json:"path,omitempty"`
	IncludeContent bool   `json:"include_content,omitempty"`
}

// ListRequest represents the input for the repo_list tool.
type ListRequest struct {
	RepositoryURL *string `json:"repository_url,omitempty"`
	Limit         int     `json:"limit,omitempty"`
	Offset        int     `json:"offset,omitempty"`
}

// ComposeRequest represents the input for the repo_compose tool.
type ComposeRequest struct {
	ID     string `json:"id"`
	Format string `json:"format,omitempty"`
}

// ExportRequest represents the input for the repo_export tool.
type ExportRequest struct {
	ID   string `json:"id"`
	Path string `json:"path,omitempty"`
}

// DeleteRequest represents the input for the repo_delete tool.
type DeleteRequest struct {
	ID string `json:"id"`
}

// PurgeRequest represents the input for the repo_purge tool.
type PurgeRequest struct {
	OlderThanDays *int    `json:"older_than_days,omitempty"`
	RepositoryURL *string `json:"repository_url,omitempty"`
}

// HandleFlatten handles the repo_flatten tool call.
func (h *Handlers) HandleFlatten(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FlattenRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Flatten(ctx, h.db, h.cfg, h.flattener, ops.FlattenInput{
		RepositoryURL: input.RepositoryURL,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFetch handles the repo_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{
		ID:             input.ID,
		Path:           input.Path,
		IncludeContent: input.IncludeContent,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleList handles the repo_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		RepositoryURL: input.RepositoryURL,
		Limit:         input.Limit,
		Offset:        input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCompose handles the repo_compose tool call.
func (h *Handlers) HandleCompose(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ComposeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Compose(ctx, h.db, ops.ComposeInput{
		ID:     input.ID,
		Format: input.Format,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the repo_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{
		ID:   input.ID,
		Path: input.Path,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDelete handles the repo_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandlePurge handles the repo_purge tool call.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Purge(ctx, h.db, ops.PurgeInput{
		OlderThanDays: input.OlderThanDays,
		RepositoryURL: input.RepositoryURL,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var e *errors.Error
	if stderrors.As(err, &e) {
		errorObj := map[string]any{
			"code":    e.Code,
			"message": e.Message,
			"status":  e.Status,
		}
		if e.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		} else if e.Details != nil {
			errorObj["details"] = e.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
