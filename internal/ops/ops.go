package ops

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/repotxt/internal/errors"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// validateID trims and requires a snapshot id.
func validateID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewInvalidRequest("id is required")
	}
	return id, nil
}

// Monotonic entropy is not safe for concurrent use.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// generateULID creates a new ULID string. IDs generated by one process sort
// in creation order, even within the same millisecond.
func generateULID(now time.Time) (string, error) {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to generate id: %w", err))
	}
	return id.String(), nil
}
