package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"github.com/hpungsan/repotxt/internal/errors"
	"github.com/hpungsan/repotxt/internal/ops"
	"github.com/hpungsan/repotxt/internal/snapshot"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "home", "snapshots"
}

// HomePageData is the template data for the flatten form.
type HomePageData struct {
	PageData
	RepositoryURL string
}

// ListPageData is the template data for the snapshot history page.
type ListPageData struct {
	PageData
	Items         []snapshot.Summary
	Pagination    ops.Pagination
	RepositoryURL string
}

// DetailPageData is the template data for the snapshot page.
type DetailPageData struct {
	PageData
	Snapshot     *ops.FetchOutput
	Selected     *snapshot.File
	RenderedHTML template.HTML
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	logger    *slog.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, logger *slog.Logger) *Renderer {
	funcMap := template.FuncMap{
		"add":         func(a, b int) int { return a + b },
		"sub":         func(a, b int) int { return a - b },
		"formatTime":  formatTime,
		"formatChars": formatChars,
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"home":   "home.html",
		"list":   "list.html",
		"detail": "detail.html",
		"error":  "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		logger:    logger,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// Output is buffered so a template error never produces a half-written page.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("template not found", "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		e = errors.NewInternal(err)
	}

	status := e.Status
	message := e.Message

	if e.Code == errors.ErrInternal {
		r.logger.Error("request failed", "method", req.Method, "path", req.URL.Path, "details", e.Details)
	}

	if wantsJSON(req) {
		renderJSON(w, status, map[string]any{
			"error": map[string]any{
				"code":    string(e.Code),
				"message": message,
				"status":  status,
			},
		})
		return
	}

	r.renderPageStatus(w, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", status),
			Version: r.version,
		},
		StatusCode: status,
		Message:    message,
	})
}

// wantsJSON reports whether the client asked for JSON.
func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// highlightStyle is the chroma style used for the generated stylesheet.
const highlightStyle = "github"

// codeMarkdown renders fenced code with chroma. Tokens carry CSS classes
// rather than inline styles, which the Content-Security-Policy forbids.
var codeMarkdown = goldmark.New(
	goldmark.WithExtensions(
		highlighting.NewHighlighting(
			highlighting.WithStyle(highlightStyle),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		),
	),
)

// highlightCSS returns the stylesheet for the chroma token classes.
func highlightCSS() ([]byte, error) {
	style := styles.Get(highlightStyle)
	var buf bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&buf, style); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// codeLanguage maps a file extension to a chroma lexer alias.
// Unknown extensions render as plain text.
func codeLanguage(ext string) string {
	lexer := lexers.Match("file." + ext)
	if lexer == nil {
		return "text"
	}
	cfg := lexer.Config()
	if len(cfg.Aliases) > 0 {
		return cfg.Aliases[0]
	}
	return "text"
}

// renderCode renders file content as a highlighted code block, wrapped in a
// div classed language-<ext>. Content is HTML-escaped.
func renderCode(content, ext string) template.HTML {
	var buf bytes.Buffer
	buf.WriteString(`<div class="code language-` + template.HTMLEscapeString(ext) + `">`)
	if err := codeMarkdown.Convert([]byte(snapshot.FencedCode(content, codeLanguage(ext))), &buf); err != nil {
		return template.HTML(`<div class="code"><pre><code>` + template.HTMLEscapeString(content) + `</code></pre></div>`)
	}
	buf.WriteString("</div>")
	return template.HTML(buf.String())
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}

// formatChars formats an integer with comma thousands separators.
func formatChars(n int) string {
	if n < 0 {
		return "-" + formatChars(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
