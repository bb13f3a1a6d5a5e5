package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/joseph-ayodele/po-invoice-matcher/constants"
)

// ParsePairName splits "<dir>/<name>.po.<ext>" or "<dir>/<name>.invoice.<ext>"
// into the pairing key (directory plus name) and the role.
func ParsePairName(path string) (key string, role constants.DocType, ok bool) {
	if !AllowedExt(filepath.Ext(path)) {
		return "", "", false
	}
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	roleExt := strings.ToLower(filepath.Ext(stem))
	name := strings.TrimSuffix(stem, filepath.Ext(stem))
	if name == "" {
		return "", "", false
	}
	switch roleExt {
	case ".po":
		role = constants.DocTypePO
	case ".invoice", ".inv":
		role = constants.DocTypeInvoice
	default:
		return "", "", false
	}
	return filepath.Join(filepath.Dir(path), name), role, true
}

// FindPairs walks root and returns complete pairs sorted by name, plus the
// paths that have no counterpart.
func FindPairs(root string, skipHidden bool) ([]Pair, []string, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, nil, DirStats{}, errors.New("root path is required")
	}

	var stats DirStats
	tracker := NewPairTracker()
	var pairs []Pair

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			slog.Warn("ingest.walk.error", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, _, ok := ParsePairName(path); !ok {
			return nil
		}
		stats.Matched++
		if p, ok := tracker.Observe(path); ok {
			pairs = append(pairs, p)
		}
		return nil
	})
	if err != nil {
		return nil, nil, stats, fmt.Errorf("walk: %w", err)
	}

	orphans := tracker.Pending()
	stats.Paired = uint32(len(pairs))
	stats.Orphans = uint32(len(orphans))
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Name < pairs[j].Name })
	return pairs, orphans, stats, nil
}

// PairTracker collects files one at a time (from a walk or a watcher) and
// reports a Pair as soon as both halves have been seen.
type PairTracker struct {
	mu      sync.Mutex
	partial map[string]Pair
}

func NewPairTracker() *PairTracker {
	return &PairTracker{partial: map[string]Pair{}}
}

// Observe records path. It returns the completed pair once the counterpart is
// known and then forgets it, so a re-written file can start a new pair.
func (t *PairTracker) Observe(path string) (Pair, bool) {
	key, role, ok := ParsePairName(path)
	if !ok {
		return Pair{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.partial[key]
	p.Name = filepath.Base(key)
	if role == constants.DocTypePO {
		p.POPath = path
	} else {
		p.InvoicePath = path
	}
	if p.POPath != "" && p.InvoicePath != "" {
		delete(t.partial, key)
		return p, true
	}
	t.partial[key] = p
	return Pair{}, false
}

// Pending lists the paths still waiting for a counterpart, sorted.
func (t *PairTracker) Pending() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for _, p := range t.partial {
		if p.POPath != "" {
			out = append(out, p.POPath)
		}
		if p.InvoicePath != "" {
			out = append(out, p.InvoicePath)
		}
	}
	sort.Strings(out)
	return out
}
