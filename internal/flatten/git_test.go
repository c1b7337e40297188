package flatten

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/repotxt/internal/errors"
)

// requireGit skips the test when no git client is installed.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

// runGit runs git in dir with a throwaway identity.
func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	base := []string{"-c", "user.name=repotxt", "-c", "user.email=repotxt@example.com", "-c", "commit.gpgsign=false"}
	cmd := exec.Command("git", append(base, args...)...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

// makeRepo creates a committed repository containing files and returns a file:// URL.
func makeRepo(t *testing.T, files map[string][]byte) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "fixture")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	runGit(t, dir, "init", "--quiet")
	for rel, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "--quiet", "-m", "fixture")
	return "file://" + filepath.ToSlash(dir)
}

func TestGitCLI_FlattenLocalRepository(t *testing.T) {
	requireGit(t)
	url := makeRepo(t, map[string][]byte{
		"a.py":       []byte("print('a')\n"),
		"b.PY":       []byte("print('b')\n"),
		"c.txt":      []byte("notes\n"),
		"sub/d.go":   []byte("package sub\n"),
		"blob.py":    {0xc3, 0x28, 0xa0, 0xa1},
		"lib/util.h": []byte("#pragma once\n"),
	})

	tempRoot := t.TempDir()
	f := New(WithAcquirer(&GitCLI{Depth: 1}), WithTempRoot(tempRoot))

	res, err := f.Flatten(context.Background(), Request{RepositoryURL: url})
	require.NoError(t, err)
	require.Equal(t, []string{"a.py", "sub/d.go", "lib/util.h"}, paths(res.Records))
	require.Equal(t, "fixture", res.RepoName)
	assertNoResidue(t, tempRoot)
}

func TestGitCLI_Idempotent(t *testing.T) {
	requireGit(t)
	url := makeRepo(t, map[string][]byte{
		"x.go":     []byte("package x\n"),
		"y/z.rs":   []byte("fn main() {}\n"),
		"y/app.ts": []byte("export {}\n"),
	})
	f := New(WithAcquirer(&GitCLI{}), WithTempRoot(t.TempDir()))

	first, err := f.Flatten(context.Background(), Request{RepositoryURL: url})
	require.NoError(t, err)
	second, err := f.Flatten(context.Background(), Request{RepositoryURL: url})
	require.NoError(t, err)

	require.Equal(t, first.Records, second.Records)
}

func TestGitCLI_NonexistentRepository(t *testing.T) {
	requireGit(t)
	missing := "file://" + filepath.ToSlash(filepath.Join(t.TempDir(), "does-not-exist"))

	tempRoot := t.TempDir()
	f := New(WithAcquirer(&GitCLI{}), WithTempRoot(tempRoot))

	res, err := f.Flatten(context.Background(), Request{RepositoryURL: missing})
	require.Nil(t, res)
	require.True(t, errors.Is(err, errors.ErrAcquisitionFailed), "got %v", err)
	assertNoResidue(t, tempRoot)
}

func TestGitCLI_RepeatedFailuresDoNotLeak(t *testing.T) {
	requireGit(t)
	tempRoot := t.TempDir()
	f := New(WithAcquirer(&GitCLI{}), WithTempRoot(tempRoot))

	for i := 0; i < 3; i++ {
		_, err := f.Flatten(context.Background(), Request{RepositoryURL: "not a url at all"})
		require.Error(t, err)
	}
	assertNoResidue(t, tempRoot)
}

func TestGitCLI_MissingBinary(t *testing.T) {
	tempRoot := t.TempDir()
	f := New(WithAcquirer(&GitCLI{Binary: "repotxt-no-such-git"}), WithTempRoot(tempRoot))

	_, err := f.Flatten(context.Background(), Request{RepositoryURL: "https://github.com/acme/widgets"})
	require.True(t, errors.Is(err, errors.ErrAcquisitionFailed), "got %v", err)
	require.Contains(t, err.Error(), "git client not found")
	assertNoResidue(t, tempRoot)
}

func TestGitCLI_CancelledContext(t *testing.T) {
	requireGit(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tempRoot := t.TempDir()
	f := New(WithAcquirer(&GitCLI{}), WithTempRoot(tempRoot))

	_, err := f.Flatten(ctx, Request{RepositoryURL: "https://github.com/acme/widgets"})
	require.True(t, errors.Is(err, errors.ErrCancelled), "got %v", err)
	assertNoResidue(t, tempRoot)
}
