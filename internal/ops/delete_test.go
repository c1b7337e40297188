package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/repotxt/internal/errors"
)

func TestDelete_HappyPath(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	id := flattenFixture(t, database, testRepoURL, testFiles)

	out, err := Delete(ctx, database, DeleteInput{ID: id})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !out.Deleted || out.ID != id {
		t.Errorf("out = %+v", out)
	}

	_, err = Fetch(ctx, database, FetchInput{ID: id})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Fetch after delete = %v, want NOT_FOUND", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	database := newTestDB(t)

	_, err := Delete(context.Background(), database, DeleteInput{ID: "01MISSING"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Delete error = %v, want NOT_FOUND", err)
	}
}

func TestDelete_MissingID(t *testing.T) {
	database := newTestDB(t)

	_, err := Delete(context.Background(), database, DeleteInput{})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Delete error = %v, want INVALID_REQUEST", err)
	}
}
