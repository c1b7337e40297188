package mcp

import (
	"database/sql"
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/repotxt/internal/config"
	"github.com/hpungsan/repotxt/internal/flatten"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"repo"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"repo_flatten": {
		def:     flattenToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFlatten },
	},
	"repo_fetch": {
		def:     fetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"repo_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"repo_compose": {
		def:     composeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCompose },
	},
	"repo_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"repo_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"repo_purge": {
		def:     purgeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePurge },
	},
}

// AllToolNames returns every registered tool name in sorted order.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns the entries of names that are not tools.
func ValidateDisabledTools(names []string) []string {
	return unknownNames(names, func(n string) bool {
		_, ok := toolRegistry[n]
		return ok
	})
}

// ValidateDisabledTypes returns the entries of names that are not known types.
func ValidateDisabledTypes(names []string) []string {
	return unknownNames(names, func(n string) bool {
		return slices.Contains(KnownTypes, n)
	})
}

func unknownNames(names []string, known func(string) bool) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if !known(name) {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool returns the prefix before the first underscore of a tool
// name ("repo_flatten" -> "repo"), or "" when there is none.
func GetTypeForTool(toolName string) string {
	typ, _, ok := strings.Cut(toolName, "_")
	if !ok || typ == "" {
		return ""
	}
	return typ
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}
	tools := make([]string, 0)
	for _, name := range AllToolNames() {
		if slices.Contains(types, GetTypeForTool(name)) {
			tools = append(tools, name)
		}
	}
	return tools
}

// disabledTools resolves cfg.DisabledTypes and cfg.DisabledTools into one set.
func disabledTools(cfg *config.Config) map[string]bool {
	disabled := make(map[string]bool)
	if cfg == nil {
		return disabled
	}
	for _, name := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[name] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}
	return disabled
}

// NewServer creates the repotxt MCP server. Tools that are disabled by name
// or by type are not registered.
func NewServer(db *sql.DB, cfg *config.Config, fl *flatten.Flattener, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"repotxt",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, fl)
	disabled := disabledTools(cfg)
	for _, name := range AllToolNames() {
		if disabled[name] {
			continue
		}
		entry := toolRegistry[name]
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run serves the MCP protocol on stdin/stdout until stdin closes.
func Run(db *sql.DB, cfg *config.Config, fl *flatten.Flattener, version string) error {
	return server.ServeStdio(NewServer(db, cfg, fl, version))
}
