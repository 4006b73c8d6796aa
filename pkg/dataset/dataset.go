// Package dataset persists the deduplicated collection of scraped posts as
// a flat CSV file, rewritten in full on every merge.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Post is a single scraped post record. Rows are deduplicated on the full
// (Title, ID, Subreddit) triple; ID is the fullname assigned by the API
// (e.g. "t3_abc123").
type Post struct {
	Title     string
	ID        string
	Subreddit string
}

// header matches the historical column names of the dataset file.
var header = []string{"title", "ID", "subreddit"}

// Load reads the dataset file. A missing file yields an empty dataset; a
// malformed file is an error.
func Load(path string) ([]Post, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var posts []Post
	for i, rec := range records {
		if i == 0 {
			// Header row.
			continue
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("malformed dataset row %d: expected %d columns, got %d", i+1, len(header), len(rec))
		}
		posts = append(posts, Post{Title: rec[0], ID: rec[1], Subreddit: rec[2]})
	}
	return posts, nil
}

// Merge concatenates existing and incoming posts in that order and removes
// duplicate rows by full-row equality, keeping the first occurrence.
func Merge(existing, incoming []Post) []Post {
	seen := make(map[Post]bool, len(existing)+len(incoming))
	merged := make([]Post, 0, len(existing)+len(incoming))

	for _, p := range existing {
		if seen[p] {
			continue
		}
		seen[p] = true
		merged = append(merged, p)
	}
	for _, p := range incoming {
		if seen[p] {
			continue
		}
		seen[p] = true
		merged = append(merged, p)
	}
	return merged
}

// Save rewrites the dataset file in full, atomically: the rows are written
// to a temporary file which then replaces the old dataset.
func Save(path string, posts []Post) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary dataset file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write dataset header: %w", err)
	}
	for _, p := range posts {
		if err := w.Write([]string{p.Title, p.ID, p.Subreddit}); err != nil {
			f.Close()
			os.Remove(tempPath)
			return fmt.Errorf("failed to write dataset row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to flush dataset: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync dataset file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close dataset file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace dataset file: %w", err)
	}
	return nil
}

// MergeAndSave merges incoming posts into the persisted dataset and rewrites
// it. The returned added count is total - len(incoming): the historical
// formula reported in the run log. It equals the number of rows attributable
// to prior runs, not the count of genuinely new rows; duplicates within the
// incoming batch, or between incoming and existing rows, push it below the
// true new-record count. Kept as-is for run log compatibility.
func MergeAndSave(path string, incoming []Post) (added, total int, err error) {
	existing, err := Load(path)
	if err != nil {
		return 0, 0, err
	}

	merged := Merge(existing, incoming)
	if err := Save(path, merged); err != nil {
		return 0, 0, err
	}

	return len(merged) - len(incoming), len(merged), nil
}
