package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/repotxt/internal/config"
	"github.com/hpungsan/repotxt/internal/errors"
)

// ExportExtension is the only extension Export writes.
const ExportExtension = ".txt"

// ValidateExportPath checks a destination for Export:
// 1. no ".." components
// 2. .txt extension
// 3. the file sits DIRECTLY in ~/.repotxt/exports or an allowed_paths entry
// 4. neither the parent directory nor the file is a symlink
//
// Requiring the file to sit directly in an allowed directory leaves no
// intermediate component to swap for a symlink between validation and open;
// O_NOFOLLOW covers the final component.
func ValidateExportPath(path string, cfg *config.Config) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}

	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != ExportExtension {
		return errors.NewInvalidRequest("path must have " + ExportExtension + " extension")
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	// Unsafe mode lifts the directory restriction only.
	if cfg == nil || !cfg.AllowUnsafePaths {
		allowedDirs, err := getAllowedDirs(cfg)
		if err != nil {
			return err
		}

		parentDir := filepath.Dir(absPath)
		if !isDirectlyInAllowedDir(parentDir, allowedDirs) {
			return errors.NewInvalidRequest(
				fmt.Sprintf("file must be directly in an allowed directory (no subdirectories); allowed: %v",
					allowedDirs))
		}

		if info, err := os.Lstat(parentDir); err == nil && info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("parent directory must not be a symlink")
		}
	}

	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("path must not be a symlink")
	}

	return nil
}

// getAllowedDirs returns the list of allowed directories (absolute, cleaned).
// Existing symlinked entries are resolved so they match their real target.
func getAllowedDirs(cfg *config.Config) ([]string, error) {
	defaultDir, err := DefaultExportsDir()
	if err != nil {
		return nil, err
	}
	dirs := []string{defaultDir}

	// Relative allowed_paths entries are ignored.
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, filepath.Clean(p))
			}
		}
	}

	result := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(filepath.Clean(d))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}

		if info, err := os.Lstat(abs); err == nil && info.Mode()&os.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(abs)
			if err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
			abs = resolved
		}
		result = append(result, abs)
	}

	return result, nil
}

// isDirectlyInAllowedDir checks if parentDir exactly matches one of the allowed directories.
func isDirectlyInAllowedDir(parentDir string, allowedDirs []string) bool {
	parentDir = filepath.Clean(parentDir)
	for _, dir := range allowedDirs {
		if parentDir == filepath.Clean(dir) {
			return true
		}
	}
	return false
}

// DefaultExportsDir returns the default exports directory (~/.repotxt/exports).
func DefaultExportsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(homeDir, ".repotxt", "exports"), nil
}

// containsTraversal checks if path contains a ".." component.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// User input may use forward slashes on any platform.
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}

// SanitizeForFilename makes s safe to embed in a file name: separators and
// ".." become dashes, control characters are dropped, dashes are collapsed.
func SanitizeForFilename(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, "..", "-")

	var result strings.Builder
	for _, r := range s {
		if r >= 32 && r != 127 {
			result.WriteRune(r)
		}
	}
	s = result.String()

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")

	if s == "" {
		s = "repo"
	}
	return s
}
