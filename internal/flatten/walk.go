package flatten

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/repotxt/internal/errors"
)

// gitMetadataDir is the client's bookkeeping directory; any path through it is excluded.
const gitMetadataDir = ".git"

// collect enumerates root once and emits records grouped by extension in
// allow-list order. Within an extension, records follow the walk order.
func (f *Flattener) collect(ctx context.Context, url, root string) ([]SourceRecord, error) {
	files, err := listRegularFiles(root)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to walk working copy: %w", err))
	}

	records := make([]SourceRecord, 0)
	for _, ext := range f.extensions {
		suffix := "." + ext
		for _, rel := range files {
			if !strings.HasSuffix(filepath.Base(rel), suffix) {
				continue
			}
			if err := interrupted(ctx, url); err != nil {
				return nil, err
			}

			content, ok := f.readText(filepath.Join(root, rel), rel)
			if !ok {
				continue
			}
			records = append(records, SourceRecord{
				RelativePath: filepath.ToSlash(rel),
				Extension:    ext,
				Content:      content,
			})
		}
	}
	return records, nil
}

// listRegularFiles returns root-relative paths of every regular file under
// root in lexical walk order. Metadata directories are pruned, unreadable
// subdirectories are skipped, and symlinks are ignored.
func listRegularFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if d.Name() == gitMetadataDir && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if hasMetadataSegment(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// hasMetadataSegment reports whether any component of rel is the git metadata dir.
// A .git file (worktree/submodule pointer) is excluded as well.
func hasMetadataSegment(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == gitMetadataDir {
			return true
		}
	}
	return false
}

// readText reads path and decodes it as UTF-8. ok is false when the file
// should be skipped: unreadable or not valid UTF-8.
func (f *Flattener) readText(path, rel string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		f.logger.Debug("skipping unreadable file", "path", filepath.ToSlash(rel), "error", err)
		return "", false
	}
	if !utf8.Valid(data) {
		f.logger.Debug("skipping non-UTF-8 file", "path", filepath.ToSlash(rel))
		return "", false
	}
	return normalizeNewlines(string(data)), true
}

// normalizeNewlines converts \r\n and lone \r to \n.
func normalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
