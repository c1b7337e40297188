package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/repotxt/internal/errors"
)

func TestFetch_Summary(t *testing.T) {
	database := newTestDB(t)
	id := flattenFixture(t, database, testRepoURL, testFiles)

	out, err := Fetch(context.Background(), database, FetchInput{ID: id})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if out.ID != id || out.FileCount != 2 {
		t.Errorf("summary = %+v", out.Summary)
	}
	if len(out.Files) != 2 {
		t.Fatalf("len(Files) = %d, want 2", len(out.Files))
	}
	if out.Files[0].Content != "" {
		t.Error("content should be omitted without IncludeContent")
	}
	if out.File != nil {
		t.Error("File should be nil without Path")
	}
}

func TestFetch_IncludeContent(t *testing.T) {
	database := newTestDB(t)
	id := flattenFixture(t, database, testRepoURL, testFiles)

	out, err := Fetch(context.Background(), database, FetchInput{ID: id, IncludeContent: true})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if out.Files[1].Content != "package lib\n" {
		t.Errorf("Files[1].Content = %q", out.Files[1].Content)
	}
}

func TestFetch_ByPath(t *testing.T) {
	database := newTestDB(t)
	id := flattenFixture(t, database, testRepoURL, testFiles)

	out, err := Fetch(context.Background(), database, FetchInput{ID: id, Path: "lib/util.go"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if out.File == nil {
		t.Fatal("File should be set")
	}
	if out.File.Extension != "go" || out.File.Content != "package lib\n" {
		t.Errorf("File = %+v", out.File)
	}
}

func TestFetch_UnknownPath(t *testing.T) {
	database := newTestDB(t)
	id := flattenFixture(t, database, testRepoURL, testFiles)

	_, err := Fetch(context.Background(), database, FetchInput{ID: id, Path: "README.md"})
	if !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("Fetch error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestFetch_NotFound(t *testing.T) {
	database := newTestDB(t)

	_, err := Fetch(context.Background(), database, FetchInput{ID: "01MISSING"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Fetch error = %v, want NOT_FOUND", err)
	}
}

func TestFetch_MissingID(t *testing.T) {
	database := newTestDB(t)

	_, err := Fetch(context.Background(), database, FetchInput{})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Fetch error = %v, want INVALID_REQUEST", err)
	}
}
