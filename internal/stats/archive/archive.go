// Package archive persists compressed snapshots of the global token
// statistics map to disk after each scheduled refresh, so an operator can
// diff corpus drift across refreshes without re-querying the full corpus.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"

	"identityresolver/internal/model"
)

// DefaultRetention is the number of snapshots kept before the oldest is
// pruned.
const DefaultRetention = 30

// Archive writes and prunes zstd-compressed JSON snapshots of a
// map[string]TokenStats under a single directory.
type Archive struct {
	dir       string
	retention int
}

// New returns an Archive rooted at dir, creating it if necessary.
// retention <= 0 uses DefaultRetention.
func New(dir string, retention int) (*Archive, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir %q: %w", dir, err)
	}
	return &Archive{dir: dir, retention: retention}, nil
}

// Snapshot compresses and writes snapshot to a timestamped file, then prunes
// any files beyond the configured retention.
func (a *Archive) Snapshot(snapshot map[string]model.TokenStats, at time.Time) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}
	defer enc.Close()
	compressed := enc.EncodeAll(data, nil)

	name := fmt.Sprintf("stats-%s.json.zst", at.UTC().Format("20060102T150405.000000000Z"))
	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		return fmt.Errorf("write snapshot %q: %w", path, err)
	}

	return a.prune()
}

// Load decompresses and parses a single snapshot file by name.
func (a *Archive) Load(name string) (map[string]model.TokenStats, error) {
	compressed, err := os.ReadFile(filepath.Join(a.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read snapshot %q: %w", name, err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()

	data, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot %q: %w", name, err)
	}

	var snapshot map[string]model.TokenStats
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %q: %w", name, err)
	}
	return snapshot, nil
}

// List returns snapshot filenames in the archive, oldest first.
func (a *Archive) List() ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("read archive dir %q: %w", a.dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// prune removes the oldest snapshots beyond the configured retention.
func (a *Archive) prune() error {
	names, err := a.List()
	if err != nil {
		return err
	}
	excess := len(names) - a.retention
	for i := 0; i < excess; i++ {
		if err := os.Remove(filepath.Join(a.dir, names[i])); err != nil {
			return fmt.Errorf("prune snapshot %q: %w", names[i], err)
		}
	}
	return nil
}
