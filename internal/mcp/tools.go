package mcp

import "github.com/mark3labs/mcp-go/mcp"

var flattenToolDef = mcp.NewTool("repo_flatten",
	mcp.WithDescription("Clone a repository, collect its source files in extension allow-list order and store the result as a new snapshot. Returns the snapshot summary and its file list without content."),
	mcp.WithString("repository_url",
		mcp.Required(),
		mcp.Description("Repository URL, e.g. https://github.com/owner/name"),
	),
)

var fetchToolDef = mcp.NewTool("repo_fetch",
	mcp.WithDescription("Fetch a stored snapshot. With path, the selected file is returned with its content."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Snapshot ID"),
	),
	mcp.WithString("path",
		mcp.Description("Relative path of one file to return with content"),
	),
	mcp.WithBoolean("include_content",
		mcp.Description("Include content for every file (default: false)"),
	),
)

var listToolDef = mcp.NewTool("repo_list",
	mcp.WithDescription("List stored snapshots, newest first."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("repository_url",
		mcp.Description("Only snapshots of this repository"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum items to return (default: 20, max: 100)"),
	),
	mcp.WithNumber("offset",
		mcp.Description("Items to skip (default: 0)"),
	),
)

var composeToolDef = mcp.NewTool("repo_compose",
	mcp.WithDescription("Render every file of a snapshot, in order, as one document."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Snapshot ID"),
	),
	mcp.WithString("format",
		mcp.Description("Output format (default: text)"),
		mcp.Enum("text", "markdown", "json"),
	),
)

var exportToolDef = mcp.NewTool("repo_export",
	mcp.WithDescription("Write a snapshot's combined text to a .txt file."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Snapshot ID"),
	),
	mcp.WithString("path",
		mcp.Description("Destination .txt path (default: ~/.repotxt/exports/<repo>-<timestamp>.txt)"),
	),
)

var deleteToolDef = mcp.NewTool("repo_delete",
	mcp.WithDescription("Permanently delete a snapshot and its files."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Snapshot ID"),
	),
)

var purgeToolDef = mcp.NewTool("repo_purge",
	mcp.WithDescription("Permanently delete snapshots. Without filters every snapshot is removed."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithNumber("older_than_days",
		mcp.Description("Only snapshots created more than N days ago"),
	),
	mcp.WithString("repository_url",
		mcp.Description("Only snapshots of this repository"),
	),
)
