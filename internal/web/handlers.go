package web

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hpungsan/repotxt/internal/config"
	"github.com/hpungsan/repotxt/internal/errors"
	"github.com/hpungsan/repotxt/internal/flatten"
	"github.com/hpungsan/repotxt/internal/ops"
	"github.com/hpungsan/repotxt/internal/snapshot"
)

// DownloadFileName is the attachment name of the combined download.
const DownloadFileName = "repository_code.txt"

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db        *sql.DB
	cfg       *config.Config
	flattener *flatten.Flattener
	renderer  *Renderer
	logger    *slog.Logger
}

// HandleHome handles GET /: the repository URL form.
func (h *Handlers) HandleHome(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"version":    h.renderer.version,
			"extensions": h.flattener.Extensions(),
		})
		return
	}

	h.renderer.renderPage(w, "home", HomePageData{
		PageData: PageData{
			Title:   "GitHub to txt",
			Version: h.renderer.version,
			Nav:     "home",
		},
		RepositoryURL: r.URL.Query().Get("repository_url"),
	})
}

// HandleFlatten handles POST /snapshots: clone, flatten and store a repository.
func (h *Handlers) HandleFlatten(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	url := strings.TrimSpace(r.FormValue("repository_url"))
	result, err := ops.Flatten(r.Context(), h.db, h.cfg, h.flattener, ops.FlattenInput{RepositoryURL: url})
	if err != nil {
		h.logger.Warn("flatten failed", "url", errors.RedactURL(url), "error", err)
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusCreated, result)
		return
	}

	http.Redirect(w, r, "/snapshots/"+result.ID, http.StatusSeeOther)
}

// HandleList handles GET /snapshots: snapshot history, newest first.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	repositoryURL := r.URL.Query().Get("repository_url")

	result, err := ops.List(r.Context(), h.db, ops.ListInput{
		RepositoryURL: ptrString(repositoryURL),
		Limit:         parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:        parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, "list", ListPageData{
		PageData: PageData{
			Title:   "Snapshots",
			Version: h.renderer.version,
			Nav:     "snapshots",
		},
		Items:         result.Items,
		Pagination:    result.Pagination,
		RepositoryURL: repositoryURL,
	})
}

// HandleDetail handles GET /snapshots/{id}: file picker and the selected file.
// Without ?file= the first file is shown.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("snapshot ID is required"))
		return
	}

	path := r.URL.Query().Get("file")
	result, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: id, Path: path})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	selected := result.File
	if selected == nil && len(result.Files) > 0 {
		selected, err = h.firstFile(r, result)
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
	}

	data := DetailPageData{
		PageData: PageData{
			Title:   result.RepoName,
			Version: h.renderer.version,
			Nav:     "snapshots",
		},
		Snapshot: result,
		Selected: selected,
	}
	if selected != nil {
		data.RenderedHTML = renderCode(selected.Content, selected.Extension)
	}

	h.renderer.renderPage(w, "detail", data)
}

// firstFile loads the content of the snapshot's first file.
func (h *Handlers) firstFile(r *http.Request, s *ops.FetchOutput) (*snapshot.File, error) {
	out, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: s.ID, Path: s.Files[0].RelativePath})
	if err != nil {
		return nil, err
	}
	return out.File, nil
}

// HandleDownload handles GET /snapshots/{id}/download: the combined text as an attachment.
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	result, err := ops.Compose(r.Context(), h.db, ops.ComposeInput{ID: id, Format: ops.FormatText})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+DownloadFileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.BundleText)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result.BundleText))
}

// HandleDelete handles DELETE /snapshots/{id} and its form fallback
// POST /snapshots/{id}/delete.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("snapshot ID is required"))
		return
	}

	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/snapshots", http.StatusSeeOther)
}

// HandlePurge handles POST /snapshots/purge: permanently delete old snapshots.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	input := ops.PurgeInput{
		RepositoryURL: ptrString(r.FormValue("repository_url")),
	}

	if days := r.FormValue("older_than_days"); days != "" {
		d, err := strconv.Atoi(days)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("older_than_days must be an integer"))
			return
		}
		input.OlderThanDays = &d
	}

	result, err := ops.Purge(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/snapshots", http.StatusSeeOther)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// ptrString returns a pointer to s if non-empty, nil otherwise.
func ptrString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
