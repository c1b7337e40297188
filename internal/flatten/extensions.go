package flatten

// DefaultExtensions is the built-in source-code allow-list, in enumeration order.
// Records are emitted grouped by extension in exactly this order.
var DefaultExtensions = []string{
	"py", "js", "ts", "jsx", "tsx", "rs", "ex", "exs", "go",
	"java", "c", "cpp", "h", "hpp", "cs", "rb", "php", "html",
	"css", "kt", "swift", "scala", "sh", "pl", "r", "lua", "m",
	"erl", "hs",
}
