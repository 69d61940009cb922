// Package checkpoint implements the snapshot + hash-verified restore
// protocol. Every checkpoint is a file pair: a JSON-encoded state blob
// and a sidecar descriptor carrying a SHA-256 of the blob. Restore
// refuses to return a partial state: missing metadata or a hash
// mismatch aborts outright.
package checkpoint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/openclaip/claip/internal/domain"
)

var (
	ErrMetadataMissing = errors.New("checkpoint metadata not found")
	ErrHashMismatch    = errors.New("checkpoint hash mismatch")
)

const (
	statePrefix = "core_state_"
	stateSuffix = ".state.json"
	metaSuffix  = ".meta.json"
	timeLayout  = "20060102_150405"
)

// Manager reads and writes checkpoint file pairs under a directory.
type Manager struct {
	dir string
}

func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Create serializes the state to a new blob, hashes it, and writes the
// sidecar descriptor. The pair is immutable once written.
func (m *Manager) Create(ctx context.Context, state *domain.LearnerState, label string) (domain.CheckpointMeta, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return domain.CheckpointMeta{}, fmt.Errorf("create checkpoint dir: %w", err)
	}

	ts := time.Now().UTC().Format(timeLayout)
	base := statePrefix + ts
	if label != "" {
		base += "_" + label
	}
	statePath := filepath.Join(m.dir, base+stateSuffix)
	metaPath := filepath.Join(m.dir, base+metaSuffix)

	blob, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return domain.CheckpointMeta{}, fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(statePath, blob, 0o644); err != nil {
		return domain.CheckpointMeta{}, fmt.Errorf("write state blob: %w", err)
	}

	sum := sha256.Sum256(blob)
	meta := domain.CheckpointMeta{
		Timestamp: ts,
		Label:     label,
		Path:      statePath,
		SHA256:    hex.EncodeToString(sum[:]),
	}

	metaBlob, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return domain.CheckpointMeta{}, fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, metaBlob, 0o644); err != nil {
		return domain.CheckpointMeta{}, fmt.Errorf("write metadata: %w", err)
	}

	return meta, nil
}

// Verify recomputes the blob hash and compares it to the sidecar.
func (m *Manager) Verify(statePath string) (bool, error) {
	meta, err := readMeta(metaPathFor(statePath))
	if err != nil {
		return false, err
	}
	sum, err := hashFile(statePath)
	if err != nil {
		return false, err
	}
	return sum == meta.SHA256, nil
}

// Restore loads and decodes a verified state blob. It fails without
// returning a partial state when metadata is missing or the hash does
// not match.
func (m *Manager) Restore(statePath string) (*domain.LearnerState, error) {
	ok, err := m.Verify(statePath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHashMismatch
	}

	blob, err := os.ReadFile(statePath)
	if err != nil {
		return nil, fmt.Errorf("read state blob: %w", err)
	}
	var state domain.LearnerState
	if err := json.Unmarshal(blob, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &state, nil
}

// List returns descriptors for the most recent checkpoints, newest
// first. limit <= 0 means no limit.
func (m *Manager) List(limit int) ([]domain.CheckpointMeta, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var metas []domain.CheckpointMeta
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, statePrefix) || !strings.HasSuffix(name, metaSuffix) {
			continue
		}
		meta, err := readMeta(filepath.Join(m.dir, name))
		if err != nil {
			continue
		}
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].Timestamp > metas[j].Timestamp
	})
	if limit > 0 && len(metas) > limit {
		metas = metas[:limit]
	}
	return metas, nil
}

func metaPathFor(statePath string) string {
	return strings.TrimSuffix(statePath, stateSuffix) + metaSuffix
}

func readMeta(metaPath string) (domain.CheckpointMeta, error) {
	blob, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.CheckpointMeta{}, ErrMetadataMissing
		}
		return domain.CheckpointMeta{}, err
	}
	var meta domain.CheckpointMeta
	if err := json.Unmarshal(blob, &meta); err != nil {
		return domain.CheckpointMeta{}, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
