package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/repotxt/internal/config"
	"github.com/hpungsan/repotxt/internal/errors"
)

func TestValidateExportPath_TraversalRejected(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	tests := []struct {
		name string
		path string
	}{
		{"parent traversal", "../widgets.txt"},
		{"deep traversal", "../../etc/widgets.txt"},
		{"mid-path traversal", "/tmp/../etc/widgets.txt"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateExportPath(tc.path, cfg)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestValidateExportPath_ExtensionRequired(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	dir := t.TempDir()

	for _, name := range []string{"widgets", "widgets.md", "widgets.jsonl", "widgets.TXT"} {
		t.Run(name, func(t *testing.T) {
			err := ValidateExportPath(filepath.Join(dir, name), cfg)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}

	if err := ValidateExportPath(filepath.Join(dir, "widgets.txt"), cfg); err != nil {
		t.Errorf("expected .txt to pass, got: %v", err)
	}
}

func TestValidateExportPath_Empty(t *testing.T) {
	if err := ValidateExportPath("", config.DefaultConfig()); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestValidateExportPath_DirectoryRestriction(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := config.DefaultConfig()

	err := ValidateExportPath(filepath.Join(t.TempDir(), "widgets.txt"), cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestValidateExportPath_DefaultDirAllowed(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, ".repotxt", "exports", "widgets.txt")
	if err := ValidateExportPath(path, config.DefaultConfig()); err != nil {
		t.Errorf("expected default exports dir to be allowed, got: %v", err)
	}
}

func TestValidateExportPath_AllowedPaths(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	allowed := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed, "relative/ignored"}

	if err := ValidateExportPath(filepath.Join(allowed, "widgets.txt"), cfg); err != nil {
		t.Errorf("expected success for path in AllowedPaths, got: %v", err)
	}

	err := ValidateExportPath(filepath.Join(t.TempDir(), "widgets.txt"), cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest outside AllowedPaths, got: %v", err)
	}
}

func TestValidateExportPath_NestedPathRejected(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	allowed := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed}

	subDir := filepath.Join(allowed, "subdir")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	err := ValidateExportPath(filepath.Join(subDir, "widgets.txt"), cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for nested path, got: %v", err)
	}
}

func TestValidateExportPath_SymlinkRejected_EvenWithUnsafePaths(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	target := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(target, []byte("secret"), 0600); err != nil {
		t.Fatalf("failed to create target file: %v", err)
	}
	link := filepath.Join(dir, "widgets.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	err := ValidateExportPath(link, cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for symlink, got: %v", err)
	}
}

func TestValidateExportPath_SymlinkedAllowedDirResolved(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	realDir := t.TempDir()
	linkDir := filepath.Join(t.TempDir(), "exports-link")
	if err := os.Symlink(realDir, linkDir); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}
	resolved, err := filepath.EvalSymlinks(realDir)
	if err != nil {
		t.Fatalf("EvalSymlinks failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{linkDir}

	if err := ValidateExportPath(filepath.Join(resolved, "widgets.txt"), cfg); err != nil {
		t.Errorf("expected real target of a symlinked allowed path to pass, got: %v", err)
	}
}

func TestContainsTraversal(t *testing.T) {
	tests := []struct {
		path     string
		contains bool
	}{
		{"/home/user/file.txt", false},
		{"../file.txt", true},
		{"/home/../etc/passwd", true},
		{"./file.txt", false},
		{"/home/user/.hidden/file.txt", false},
		{"file..name.txt", false},
		{"/tmp/a/b/../c.txt", true},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			if got := containsTraversal(tc.path); got != tc.contains {
				t.Errorf("containsTraversal(%q) = %v, want %v", tc.path, got, tc.contains)
			}
		})
	}
}

func TestSanitizeForFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "widgets", "widgets"},
		{"dots kept", "widgets.js", "widgets.js"},
		{"forward slash", "acme/widgets", "acme-widgets"},
		{"backslash", "acme\\widgets", "acme-widgets"},
		{"double dots", "foo..bar", "foo-bar"},
		{"traversal attempt", "../../../etc/passwd", "etc-passwd"},
		{"null bytes", "foo\x00bar", "foobar"},
		{"empty after sanitize", "../../..", "repo"},
		{"unicode preserved", "widgets-中文", "widgets-中文"},
		{"multiple dashes collapse", "a---b", "a-b"},
		{"trailing dashes trimmed", "foo---", "foo"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeForFilename(tc.input); got != tc.expected {
				t.Errorf("SanitizeForFilename(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
