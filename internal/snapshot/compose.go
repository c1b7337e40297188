package snapshot

import (
	"strings"
)

// ComposeText renders files as the combined download: one "### <path>" header
// line followed by the content, records separated by a blank line. Every file
// appears exactly once, in the given order.
func ComposeText(files []File) string {
	var b strings.Builder
	for i, f := range files {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("### ")
		b.WriteString(f.RelativePath)
		b.WriteByte('\n')
		b.WriteString(f.Content)
	}
	return b.String()
}

// ComposeMarkdown renders files as markdown sections with fenced code blocks
// tagged by extension.
func ComposeMarkdown(files []File) string {
	var b strings.Builder
	for i, f := range files {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("## ")
		b.WriteString(f.RelativePath)
		b.WriteString("\n\n")
		b.WriteString(FencedCode(f.Content, f.Extension))
	}
	return b.String()
}

// FencedCode wraps content in a markdown code fence tagged with lang. The fence
// is one backtick longer than the longest backtick run in content so the block
// cannot be closed early.
func FencedCode(content, lang string) string {
	fence := strings.Repeat("`", max(3, longestRun(content, '`')+1))

	var b strings.Builder
	b.WriteString(fence)
	b.WriteString(lang)
	b.WriteByte('\n')
	b.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(fence)
	return b.String()
}

func longestRun(s string, c byte) int {
	best, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			cur++
			best = max(best, cur)
		} else {
			cur = 0
		}
	}
	return best
}
