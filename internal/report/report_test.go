package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openclaip/claip/internal/domain"
)

func TestFileSink_Write(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir)

	acc := 0.75
	report := domain.MetricsReport{
		Timestamp:           time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		EventCount:          50,
		TotalReward:         1.25,
		Accuracy:            &acc,
		TotalPredictions:    8,
		ResolvedPredictions: 4,
		BiasCount:           1,
		SubjectsTracked:     3,
		SourcesCount:        5,
	}

	path, err := sink.Write(context.Background(), report)
	require.NoError(t, err)
	require.Equal(t, dir, filepath.Dir(path))
	require.Equal(t, "metrics_20260314_092653.json", filepath.Base(path))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(blob, &decoded))
	require.Equal(t, float64(50), decoded["event_count"])
	require.Equal(t, 0.75, decoded["accuracy"])
	require.Equal(t, float64(3), decoded["subjects_tracked"])

	// No resolved predictions yet: calibration stays an explicit null
	// rather than being omitted.
	require.Contains(t, decoded, "calibration_brier")
	require.Nil(t, decoded["calibration_brier"])
}

func TestFileSink_WriteCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	sink := NewFileSink(dir)

	path, err := sink.Write(context.Background(), domain.MetricsReport{Timestamp: time.Now().UTC()})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(filepath.Base(path), "metrics_"))

	_, err = os.Stat(path)
	require.NoError(t, err)
}
