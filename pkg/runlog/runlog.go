// Package runlog appends a human-readable audit record of each scraper
// execution to a plain-text transaction log.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	headerTitle = "Log of Script Executions"

	// timestampLayout matches the format of entries written by earlier
	// versions of the tool, so existing logs stay uniform.
	timestampLayout = "2006-01-02 15:04:05.000000"
)

// Appender writes run records to an append-only log file. The file is never
// rewritten; a two-line header is written once, when the file is created.
type Appender struct {
	Path string
}

// Append records one execution: wall-clock timestamp, the batch-derived
// added count and the cumulative dataset total.
func (a *Appender) Append(added, total int, at time.Time) error {
	dir := filepath.Dir(a.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create run log directory: %w", err)
		}
	}

	_, statErr := os.Stat(a.Path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(a.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer f.Close()

	if fresh {
		if _, err := fmt.Fprintf(f, "%s\n%s\n", headerTitle, strings.Repeat("=", 50)); err != nil {
			return fmt.Errorf("failed to write run log header: %w", err)
		}
	}

	_, err = fmt.Fprintf(f, "Execution Date: %s | Posts Retrieved: %d | Total Posts To Date: %d\n",
		at.Format(timestampLayout), added, total)
	if err != nil {
		return fmt.Errorf("failed to write run log entry: %w", err)
	}
	return nil
}
