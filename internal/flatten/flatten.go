package flatten

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/repotxt/internal/errors"
	"github.com/hpungsan/repotxt/internal/logging"
)

// SourceRecord is one decoded file from a flattened repository.
type SourceRecord struct {
	// RelativePath is relative to the repository root, forward-slash separated.
	RelativePath string `json:"relative_path"`

	// Extension is the allow-list entry the file matched (no leading dot).
	Extension string `json:"extension"`

	// Content is the decoded UTF-8 text with line endings normalized to \n.
	Content string `json:"content"`
}

// Request contains the parameters for a flatten.
type Request struct {
	RepositoryURL string
}

// Result is the ordered output of a successful flatten.
// Records is never nil; an empty slice is a normal outcome.
type Result struct {
	RepositoryURL string
	RepoName      string
	Records       []SourceRecord
}

// Acquirer materializes a remote repository's default branch into dest.
// dest does not exist yet; its parent does.
type Acquirer interface {
	Acquire(ctx context.Context, url, dest string) error
}

// Flattener clones repositories and collects their source files.
// A Flattener is safe for concurrent use; every call works in its own temp dir.
type Flattener struct {
	acquirer   Acquirer
	extensions []string
	tempRoot   string
	logger     *slog.Logger
}

// Option configures a Flattener.
type Option func(*Flattener)

// WithAcquirer replaces the default git client.
func WithAcquirer(a Acquirer) Option {
	return func(f *Flattener) { f.acquirer = a }
}

// WithExtensions replaces DefaultExtensions. An empty list keeps the default.
func WithExtensions(exts []string) Option {
	return func(f *Flattener) {
		if len(exts) > 0 {
			f.extensions = append([]string(nil), exts...)
		}
	}
}

// WithTempRoot sets the directory under which ephemeral clones are created.
// Empty means os.TempDir().
func WithTempRoot(dir string) Option {
	return func(f *Flattener) { f.tempRoot = dir }
}

// WithLogger sets the logger used for skip and cleanup diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(f *Flattener) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a Flattener. Without options it clones with the git binary on
// PATH and uses DefaultExtensions.
func New(opts ...Option) *Flattener {
	f := &Flattener{
		acquirer:   &GitCLI{Binary: "git", Depth: 1},
		extensions: DefaultExtensions,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Extensions returns a copy of the allow-list in enumeration order.
func (f *Flattener) Extensions() []string {
	return append([]string(nil), f.extensions...)
}

// Flatten clones req.RepositoryURL and returns its allow-listed text files.
//
// Acquisition failures return ACQUISITION_FAILED carrying the client's
// diagnostic and no records. A deadline reached while cloning or enumerating
// returns ACQUISITION_FAILED "clone timed out"; other cancellation returns
// CANCELLED. The temporary working copy is removed before Flatten returns,
// whatever the outcome.
func (f *Flattener) Flatten(ctx context.Context, req Request) (*Result, error) {
	url := strings.TrimSpace(req.RepositoryURL)
	if url == "" {
		return nil, errors.NewInvalidRequest("repository_url is required")
	}

	tmp, err := os.MkdirTemp(f.tempRoot, "repotxt-*")
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create temp directory: %w", err))
	}
	defer func() {
		if rmErr := os.RemoveAll(tmp); rmErr != nil {
			f.logger.Warn("failed to remove working copy", "dir", tmp, "error", rmErr)
		}
	}()

	name := RepoName(url)
	root := filepath.Join(tmp, name)

	f.logger.Debug("acquiring repository", "url", errors.RedactURL(url), "dir", root)
	if err := f.acquirer.Acquire(ctx, url, root); err != nil {
		return nil, acquisitionError(ctx, url, err)
	}

	records, err := f.collect(ctx, url, root)
	if err != nil {
		return nil, err
	}

	f.logger.Info("flattened repository", "url", errors.RedactURL(url), "files", len(records))
	return &Result{
		RepositoryURL: url,
		RepoName:      name,
		Records:       records,
	}, nil
}

// acquisitionError maps an Acquirer failure onto the error taxonomy.
func acquisitionError(ctx context.Context, url string, err error) error {
	if ctxErr := interrupted(ctx, url); ctxErr != nil {
		return ctxErr
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e
	}
	return errors.NewAcquisitionFailed(url, err.Error())
}

// interrupted maps a done context onto the error taxonomy, or returns nil.
// The deadline covers the whole flatten, so hitting it during enumeration
// reports the same timeout as hitting it during the clone.
func interrupted(ctx context.Context, url string) error {
	switch {
	case stderrors.Is(ctx.Err(), context.DeadlineExceeded):
		return errors.NewAcquisitionFailed(url, "clone timed out")
	case ctx.Err() != nil:
		return errors.NewCancelled("flatten")
	}
	return nil
}
