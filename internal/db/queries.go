package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hpungsan/repotxt/internal/errors"
	"github.com/hpungsan/repotxt/internal/snapshot"
)

// InsertSnapshot stores a snapshot and all of its files in one transaction.
func InsertSnapshot(ctx context.Context, db *sql.DB, s *snapshot.Snapshot) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (
			id, repository_url, repo_name, file_count,
			total_chars, tokens_estimate, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.RepositoryURL, s.RepoName, s.FileCount,
		s.TotalChars, s.TokensEstimate, s.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_files (
			snapshot_id, seq, relative_path, extension, content, chars
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer stmt.Close()

	for _, f := range s.Files {
		if _, err := stmt.ExecContext(ctx, s.ID, f.Seq, f.RelativePath, f.Extension, f.Content, f.Chars); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetByID retrieves a snapshot with its files in flatten order.
// File content is loaded only when includeContent is true.
func GetByID(ctx context.Context, db *sql.DB, id string, includeContent bool) (*snapshot.Snapshot, error) {
	s, err := getSnapshotRow(ctx, db, id)
	if err != nil {
		return nil, err
	}

	contentCol := "''"
	if includeContent {
		contentCol = "content"
	}
	query := fmt.Sprintf(`
		SELECT seq, relative_path, extension, %s, chars
		FROM snapshot_files
		WHERE snapshot_id = ?
		ORDER BY seq ASC
	`, contentCol)

	rows, err := db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	s.Files = make([]snapshot.File, 0, s.FileCount)
	for rows.Next() {
		var f snapshot.File
		if err := rows.Scan(&f.Seq, &f.RelativePath, &f.Extension, &f.Content, &f.Chars); err != nil {
			return nil, errors.NewInternal(err)
		}
		s.Files = append(s.Files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return s, nil
}

// GetFile retrieves one file of a snapshot by relative path. When the same
// path appears more than once, the first occurrence in flatten order wins.
func GetFile(ctx context.Context, db *sql.DB, id, path string) (*snapshot.File, error) {
	if _, err := getSnapshotRow(ctx, db, id); err != nil {
		return nil, err
	}

	var f snapshot.File
	err := db.QueryRowContext(ctx, `
		SELECT seq, relative_path, extension, content, chars
		FROM snapshot_files
		WHERE snapshot_id = ? AND relative_path = ?
		ORDER BY seq ASC
		LIMIT 1
	`, id, path).Scan(&f.Seq, &f.RelativePath, &f.Extension, &f.Content, &f.Chars)
	if err == sql.ErrNoRows {
		return nil, errors.NewPathNotFound(id, path)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &f, nil
}

// ListSnapshots returns summaries newest first, optionally filtered by
// repository URL, together with the unpaginated total.
func ListSnapshots(ctx context.Context, db *sql.DB, repositoryURL *string, limit, offset int) ([]snapshot.Summary, int, error) {
	where := ""
	var args []any
	if repositoryURL != nil {
		where = "WHERE repository_url = ?"
		args = append(args, *repositoryURL)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM snapshots " + where
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `
		SELECT id, repository_url, repo_name, file_count,
			total_chars, tokens_estimate, created_at
		FROM snapshots ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	summaries := []snapshot.Summary{}
	for rows.Next() {
		var s snapshot.Summary
		if err := rows.Scan(
			&s.ID, &s.RepositoryURL, &s.RepoName, &s.FileCount,
			&s.TotalChars, &s.TokensEstimate, &s.CreatedAt,
		); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return summaries, total, nil
}

// Delete permanently removes a snapshot; its files go with it via ON DELETE CASCADE.
func Delete(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// Purge permanently removes snapshots matching the optional filters and
// returns how many were removed. olderThanDays keeps anything created within
// the last N days; repositoryURL limits the purge to one repository.
func Purge(ctx context.Context, db *sql.DB, olderThanDays *int, repositoryURL *string) (int, error) {
	query := "DELETE FROM snapshots WHERE 1=1"
	var args []any

	if olderThanDays != nil {
		cutoff := time.Now().AddDate(0, 0, -*olderThanDays).Unix()
		query += " AND created_at < ?"
		args = append(args, cutoff)
	}
	if repositoryURL != nil {
		query += " AND repository_url = ?"
		args = append(args, *repositoryURL)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(count), nil
}

// getSnapshotRow loads a snapshot's metadata without files.
func getSnapshotRow(ctx context.Context, db *sql.DB, id string) (*snapshot.Snapshot, error) {
	var s snapshot.Snapshot
	err := db.QueryRowContext(ctx, `
		SELECT id, repository_url, repo_name, file_count,
			total_chars, tokens_estimate, created_at
		FROM snapshots
		WHERE id = ?
	`, id).Scan(
		&s.ID, &s.RepositoryURL, &s.RepoName, &s.FileCount,
		&s.TotalChars, &s.TokensEstimate, &s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &s, nil
}
