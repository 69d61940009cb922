// Package report writes the per-reflection metrics artifact, one JSON
// object per file.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openclaip/claip/internal/domain"
)

// FileSink writes metrics reports as metrics_<timestamp>.json files
// under a directory.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

func (s *FileSink) Write(ctx context.Context, report domain.MetricsReport) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	name := "metrics_" + report.Timestamp.UTC().Format("20060102_150405") + ".json"
	path := filepath.Join(s.dir, name)

	blob, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

var _ domain.MetricsSink = (*FileSink)(nil)
