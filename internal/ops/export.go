package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/repotxt/internal/config"
	"github.com/hpungsan/repotxt/internal/db"
	"github.com/hpungsan/repotxt/internal/errors"
	"github.com/hpungsan/repotxt/internal/snapshot"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	ID   string // required
	Path string // optional, default: ~/.repotxt/exports/<repo>-<timestamp>.txt
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	FileCount  int    `json:"file_count"`
	Bytes      int    `json:"bytes"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes a snapshot's combined text to a .txt file.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	id, err := validateID(input.ID)
	if err != nil {
		return nil, err
	}

	s, err := db.GetByID(ctx, database, id, true)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	exportPath := input.Path
	if exportPath == "" {
		exportPath, err = defaultExportPath(s.RepoName, now)
		if err != nil {
			return nil, err
		}
	}

	// Default paths are validated too; the repo name comes from user input.
	if err := ValidateExportPath(exportPath, cfg); err != nil {
		return nil, err
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	content := []byte(snapshot.ComposeText(s.Files))
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("export")
	}
	if err := writeFileAtomic(exportPath, content); err != nil {
		return nil, err
	}

	return &ExportOutput{
		ID:         s.ID,
		Path:       exportPath,
		FileCount:  len(s.Files),
		Bytes:      len(content),
		ExportedAt: now.Unix(),
	}, nil
}

// writeFileAtomic writes data to a temp file next to path and renames it into
// place. An existing file at path survives any failure.
func writeFileAtomic(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidRequest) {
			return err
		}
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// Refuse a symlink that appeared after validation.
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("path must not be a symlink")
	}

	// On Windows, os.Rename fails if the destination exists; the existing
	// file is kept rather than risking a non-atomic delete+rename.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}

// defaultExportPath generates ~/.repotxt/exports/<repo>-<timestamp>.txt.
func defaultExportPath(repoName string, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	timestamp := now.Format("2006-01-02T150405")
	filename := fmt.Sprintf("%s-%s%s", SanitizeForFilename(repoName), timestamp, ExportExtension)
	return filepath.Join(dir, filename), nil
}
