package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	// Extensions replaces the built-in source-code allow-list when non-empty.
	// Entries are matched case-sensitively against file name suffixes; a
	// leading dot is stripped and entries are lowercased on load.
	Extensions []string `json:"extensions,omitempty"`

	// GitBinary is the version-control client used to clone repositories.
	GitBinary string `json:"git_binary,omitempty"`

	// CloneDepth is passed to git clone as --depth. Ignored when FullHistory is set.
	CloneDepth int `json:"clone_depth,omitempty"`

	// FullHistory clones the complete history instead of a shallow copy.
	FullHistory bool `json:"full_history,omitempty"`

	// CloneTimeoutSeconds bounds a single flatten, clone and enumeration included.
	CloneTimeoutSeconds int `json:"clone_timeout_seconds,omitempty"`

	// AllowedPaths is an allowlist of directories for export operations.
	// Paths outside ~/.repotxt/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "repo".
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		GitBinary:           "git",
		CloneDepth:          1,
		CloneTimeoutSeconds: 300,
	}
}

// CloneTimeout returns the flatten deadline as a duration.
func (c *Config) CloneTimeout() time.Duration {
	if c == nil || c.CloneTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CloneTimeoutSeconds) * time.Second
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.repotxt.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.repotxt) and repo (.repotxt) directories.
// Repo config is found by walking upward from startDir to find the nearest .repotxt/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .repotxt/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".repotxt", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.GitBinary = strings.TrimSpace(overlay.GitBinary)
	if result.GitBinary == "" {
		result.GitBinary = base.GitBinary
	}

	result.CloneDepth = overlay.CloneDepth
	if result.CloneDepth == 0 {
		result.CloneDepth = base.CloneDepth
	}

	result.CloneTimeoutSeconds = overlay.CloneTimeoutSeconds
	if result.CloneTimeoutSeconds == 0 {
		result.CloneTimeoutSeconds = base.CloneTimeoutSeconds
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths
	result.FullHistory = base.FullHistory || overlay.FullHistory

	result.Extensions = mergeStringSlice(normalizeExtensions(base.Extensions), normalizeExtensions(overlay.Extensions))
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// normalizeExtensions strips a leading dot and lowercases each entry.
func normalizeExtensions(exts []string) []string {
	if len(exts) == 0 {
		return nil
	}
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		out = append(out, e)
	}
	return out
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
