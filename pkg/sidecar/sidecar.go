// Package sidecar reads the per-file review comment records stored next to
// markdown files. The records are owned by the review tooling; this package
// only reads them.
package sidecar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

const (
	// Suffix is appended to a markdown file's path to locate its sidecar.
	Suffix = ".comments.json"

	// Glob matches every sidecar file under a workspace root.
	Glob = "**/*" + Suffix
)

// Comment is a single review comment anchored to a markdown file.
type Comment struct {
	ID        string    `json:"id"`
	Line      int       `json:"line,omitempty"`
	Text      string    `json:"text"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	Resolved  bool      `json:"resolved,omitempty"`
}

// File is the decoded content of a sidecar.
type File struct {
	Version  int       `json:"version,omitempty"`
	Comments []Comment `json:"comments"`
}

// PathFor returns the sidecar path for a markdown file.
func PathFor(path string) string {
	return path + Suffix
}

// Store reads sidecars from the local filesystem.
type Store struct{}

// NewStore creates a sidecar store.
func NewStore() *Store {
	return &Store{}
}

// Read loads and decodes the sidecar of the markdown file at path.
// A missing sidecar is not an error: it returns (nil, nil).
func (s *Store) Read(ctx context.Context, path string) (*File, error) {
	data, err := s.load(ctx, path)
	if err != nil || data == nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sidecar %s: %w", PathFor(path), err)
	}
	return &f, nil
}

// CommentCount returns the number of comments recorded for path, 0 when
// there is no sidecar. Comments are counted without decoding their fields,
// so records written by other tool versions still count.
func (s *Store) CommentCount(ctx context.Context, path string) (int, error) {
	data, err := s.load(ctx, path)
	if err != nil || data == nil {
		return 0, err
	}

	var f struct {
		Comments []json.RawMessage `json:"comments"`
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("parse sidecar %s: %w", PathFor(path), err)
	}
	return len(f.Comments), nil
}

// load returns the raw sidecar bytes, or nil when there is no sidecar.
func (s *Store) load(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(PathFor(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sidecar: %w", err)
	}
	return data, nil
}
