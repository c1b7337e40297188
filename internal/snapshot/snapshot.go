package snapshot

import "github.com/hpungsan/repotxt/internal/flatten"

// Snapshot is a persisted flatten result.
type Snapshot struct {
	// ID is a ULID that uniquely identifies this snapshot
	ID string

	// RepositoryURL is the URL the snapshot was flattened from
	RepositoryURL string

	// RepoName is the working-copy name derived from the URL
	RepoName string

	// FileCount is the number of files in the snapshot
	FileCount int

	// TotalChars is the sum of file character counts (runes, not bytes)
	TotalChars int

	// TokensEstimate estimates the combined text size for LLM context budgeting
	TokensEstimate int

	// CreatedAt is the Unix timestamp when the snapshot was taken
	CreatedAt int64

	// Files are the snapshot's records in flatten order. Nil when loaded without files.
	Files []File
}

// File is one record of a snapshot.
type File struct {
	// Seq is the zero-based position in flatten order
	Seq int `json:"seq"`

	RelativePath string `json:"relative_path"`
	Extension    string `json:"extension"`
	Content      string `json:"content,omitempty"`
	Chars        int    `json:"chars"`
}

// Summary is a snapshot's metadata without files.
type Summary struct {
	ID             string `json:"id"`
	RepositoryURL  string `json:"repository_url"`
	RepoName       string `json:"repo_name"`
	FileCount      int    `json:"file_count"`
	TotalChars     int    `json:"total_chars"`
	TokensEstimate int    `json:"tokens_estimate"`
	CreatedAt      int64  `json:"created_at"`
}

// ToSummary strips the files from a snapshot.
func (s *Snapshot) ToSummary() Summary {
	return Summary{
		ID:             s.ID,
		RepositoryURL:  s.RepositoryURL,
		RepoName:       s.RepoName,
		FileCount:      s.FileCount,
		TotalChars:     s.TotalChars,
		TokensEstimate: s.TokensEstimate,
		CreatedAt:      s.CreatedAt,
	}
}

// FromResult builds a snapshot from a flatten result, preserving record order
// and computing the derived counters.
func FromResult(id string, createdAt int64, res *flatten.Result) *Snapshot {
	s := &Snapshot{
		ID:            id,
		RepositoryURL: res.RepositoryURL,
		RepoName:      res.RepoName,
		CreatedAt:     createdAt,
		Files:         make([]File, 0, len(res.Records)),
	}
	for i, r := range res.Records {
		chars := CountChars(r.Content)
		s.Files = append(s.Files, File{
			Seq:          i,
			RelativePath: r.RelativePath,
			Extension:    r.Extension,
			Content:      r.Content,
			Chars:        chars,
		})
		s.TotalChars += chars
	}
	s.FileCount = len(s.Files)
	s.TokensEstimate = EstimateTokens(ComposeText(s.Files))
	return s
}
