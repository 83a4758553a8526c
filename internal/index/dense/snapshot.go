package dense

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

// snapshot is the on-disk form of an index.
type snapshot struct {
	Metric     Metric          `json:"metric"`
	Dimensions int             `json:"dimensions"`
	Notices    []domain.Notice `json:"notices"`
	Vectors    [][]float32     `json:"vectors"`
}

// Persist writes the index to path atomically: the snapshot goes to a
// temporary file in the same directory and is renamed over the target, so a
// concurrent or later Load never sees a partial file.
func (ix *Index) Persist(path string) error {
	ix.mu.RLock()
	snap := snapshot{
		Metric:     ix.metric,
		Dimensions: ix.dimensions,
		Notices:    ix.notices,
		Vectors:    ix.vectors,
	}
	data, err := json.Marshal(snap)
	ix.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Load reconstructs an index from a snapshot file. A missing file returns
// fs.ErrNotExist so the caller can seed a cold index; anything unreadable or
// internally inconsistent is ErrIndexCorrupted — silently starting empty
// would lose the corpus.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("read snapshot %s: %w", path, domain.ErrIndexCorrupted)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, domain.ErrIndexCorrupted)
	}

	if snap.Metric != MetricCosine && snap.Metric != MetricL2 {
		return nil, fmt.Errorf("snapshot %s: unknown metric %q: %w", path, snap.Metric, domain.ErrIndexCorrupted)
	}
	if snap.Dimensions <= 0 || len(snap.Notices) != len(snap.Vectors) {
		return nil, fmt.Errorf("snapshot %s: %d notices but %d vectors: %w",
			path, len(snap.Notices), len(snap.Vectors), domain.ErrIndexCorrupted)
	}
	for i, vec := range snap.Vectors {
		if len(vec) != snap.Dimensions {
			return nil, fmt.Errorf("snapshot %s: vector %d has %d dimensions, expected %d: %w",
				path, i, len(vec), snap.Dimensions, domain.ErrIndexCorrupted)
		}
	}

	return &Index{
		metric:     snap.Metric,
		dimensions: snap.Dimensions,
		notices:    snap.Notices,
		vectors:    snap.Vectors,
	}, nil
}
