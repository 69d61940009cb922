package checkpoint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openclaip/claip/internal/domain"
)

func testState() *domain.LearnerState {
	label := 1.0
	return &domain.LearnerState{
		Version:     domain.StateVersion,
		CreatedAt:   time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		EventCount:  7,
		TotalReward: 0.42,
		Sources: []domain.Source{
			{ID: "src-1", Name: "NOAA", Trust: 0.5},
		},
		Claims: []domain.Claim{
			{
				Subject:   "weather.rain_tomorrow",
				Info:      domain.Payload{"city": "Austin"},
				Label:     &label,
				SourceIDs: []string{"src-1"},
				Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
			},
		},
		Priors: map[string]domain.PriorEntry{
			"weather.rain_tomorrow": {Value: 0.55, Count: 1},
		},
		Progress: map[string]domain.SubjectProgressState{
			"weather.rain_tomorrow": {
				SeenItems:         1,
				DistinctSources:   []string{"src-1"},
				CompletionPercent: 6.76,
			},
		},
		Replay: []domain.ReplayEvent{
			{
				Kind:      domain.ReplayIngest,
				Subject:   "weather.rain_tomorrow",
				Label:     &label,
				Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
			},
		},
	}
}

func TestManager_CreateVerifyRestore(t *testing.T) {
	m := NewManager(t.TempDir())

	meta, err := m.Create(context.Background(), testState(), "manual")
	require.NoError(t, err)
	require.Equal(t, "manual", meta.Label)
	require.Len(t, meta.SHA256, 64)
	require.True(t, strings.HasSuffix(meta.Path, ".state.json"))
	require.Contains(t, filepath.Base(meta.Path), "core_state_")
	require.Contains(t, filepath.Base(meta.Path), "_manual")

	ok, err := m.Verify(meta.Path)
	require.NoError(t, err)
	require.True(t, ok)

	restored, err := m.Restore(meta.Path)
	require.NoError(t, err)
	require.Equal(t, testState(), restored)
}

func TestManager_TamperedBlob(t *testing.T) {
	m := NewManager(t.TempDir())

	meta, err := m.Create(context.Background(), testState(), "")
	require.NoError(t, err)

	blob, err := os.ReadFile(meta.Path)
	require.NoError(t, err)
	tampered := strings.Replace(string(blob), `"event_count": 7`, `"event_count": 9000`, 1)
	require.NotEqual(t, string(blob), tampered)
	require.NoError(t, os.WriteFile(meta.Path, []byte(tampered), 0o644))

	ok, err := m.Verify(meta.Path)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = m.Restore(meta.Path)
	require.ErrorIs(t, err, ErrHashMismatch)
}

func TestManager_MissingMetadata(t *testing.T) {
	m := NewManager(t.TempDir())

	meta, err := m.Create(context.Background(), testState(), "")
	require.NoError(t, err)
	require.NoError(t, os.Remove(metaPathFor(meta.Path)))

	_, err = m.Verify(meta.Path)
	require.ErrorIs(t, err, ErrMetadataMissing)

	_, err = m.Restore(meta.Path)
	require.ErrorIs(t, err, ErrMetadataMissing)
}

func TestManager_List(t *testing.T) {
	m := NewManager(t.TempDir())
	ctx := context.Background()

	for _, label := range []string{"event_5", "event_10", "manual"} {
		_, err := m.Create(ctx, testState(), label)
		require.NoError(t, err)
	}

	metas, err := m.List(0)
	require.NoError(t, err)
	require.Len(t, metas, 3)
	for i := 1; i < len(metas); i++ {
		require.GreaterOrEqual(t, metas[i-1].Timestamp, metas[i].Timestamp,
			"descriptors must come back newest first")
	}

	limited, err := m.List(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)

	// A directory that was never written to lists as empty, not as an
	// error.
	empty := NewManager(filepath.Join(t.TempDir(), "never-created"))
	metas, err = empty.List(0)
	require.NoError(t, err)
	require.Empty(t, metas)
}

func TestManager_RestoreUnknownPath(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.Restore(filepath.Join(t.TempDir(), "core_state_nope.state.json"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMetadataMissing))
}
