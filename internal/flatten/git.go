package flatten

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/hpungsan/repotxt/internal/errors"
)

// GitCLI acquires repositories by running the git client as a subprocess.
// Credentials come from whatever git already resolves (credential helpers,
// SSH agent); interactive prompts are disabled so a clone never blocks on stdin.
type GitCLI struct {
	// Binary is the git executable; empty means "git" on PATH.
	Binary string

	// Depth is passed as --depth when positive. Zero clones full history.
	Depth int
}

// Acquire runs git clone of url into dest. Failures carry git's stderr.
func (g *GitCLI) Acquire(ctx context.Context, url, dest string) error {
	bin := g.Binary
	if bin == "" {
		bin = "git"
	}

	args := []string{"clone", "--quiet"}
	if g.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(g.Depth))
	}
	// "--" keeps a URL starting with '-' from being parsed as an option.
	args = append(args, "--", url, dest)

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderrors.Is(err, exec.ErrNotFound) || stderrors.Is(err, os.ErrNotExist) {
			return errors.NewAcquisitionFailed(url, "git client not found: "+bin)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return errors.NewAcquisitionFailed(url, msg)
	}
	return nil
}

// RepoName derives the working-copy directory name from a repository URL:
// the last path segment with any trailing ".git" removed. Characters outside
// [A-Za-z0-9._-] become '-'. Returns "repo" when nothing usable remains.
func RepoName(url string) string {
	s := strings.TrimRight(strings.TrimSpace(url), "/")
	if i := strings.LastIndexAny(s, "/:"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(s, ".git")

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" || strings.Trim(name, ".") == "" {
		return "repo"
	}
	return name
}
