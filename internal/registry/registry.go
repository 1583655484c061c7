// Package registry holds the name-reference dictionary the classifier
// consults: sets of known first/last/middle names, honorific prefixes,
// relationship words, and descriptor words, organized by category.
//
// The dictionary is read far more often than it is written (every
// classification consults it; writes only happen on seed load, learn
// events, and optional file-based reloads), so the live snapshot is
// published via atomic.Pointer and swapped wholesale rather than guarded
// by a read-write mutex.
package registry

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Category is one of the six closed dictionary partitions.
type Category string

const (
	FirstName    Category = "FIRST_NAME"
	LastName     Category = "LAST_NAME"
	MiddleName   Category = "MIDDLE_NAME"
	Prefix       Category = "PREFIX"
	Relationship Category = "RELATIONSHIP"
	Descriptor   Category = "DESCRIPTOR"
)

var allCategories = []Category{FirstName, LastName, MiddleName, Prefix, Relationship, Descriptor}

// learnableCategories is the subset LearnToken will accept; a human's saved
// name is evidence of a name, not of a relationship or descriptor word.
var learnableCategories = map[Category]bool{
	FirstName:  true,
	LastName:   true,
	MiddleName: true,
}

// SeedEntry is one (token, category) pair as stored or loaded from the
// database-backed seed set.
type SeedEntry struct {
	Token    string
	Category Category
}

// snapshot is the immutable view published through the atomic pointer.
// Never mutated after construction; a write path builds a new snapshot
// from the old one plus its delta and swaps it in.
type snapshot struct {
	sets map[Category]map[string]struct{}
}

func newSnapshot() *snapshot {
	s := &snapshot{sets: make(map[Category]map[string]struct{}, len(allCategories))}
	for _, c := range allCategories {
		s.sets[c] = make(map[string]struct{})
	}
	return s
}

func (s *snapshot) clone() *snapshot {
	out := newSnapshot()
	for c, set := range s.sets {
		for tok := range set {
			out.sets[c][tok] = struct{}{}
		}
	}
	return out
}

// Registry is a name-reference dictionary, safe for concurrent use.
type Registry struct {
	snap atomic.Pointer[snapshot]

	mu        sync.Mutex // serializes writers; readers never block on it
	watcher   *fsnotify.Watcher
	watchPath string
	watchDone chan struct{}
}

// New returns a Registry pre-seeded with a small built-in dictionary.
func New() *Registry {
	r := &Registry{}
	s := newSnapshot()
	for cat, tokens := range builtinSeed {
		for _, tok := range tokens {
			s.sets[cat][tok] = struct{}{}
		}
	}
	r.snap.Store(s)
	return r
}

// Contains reports whether token belongs to category in the current
// snapshot. token is expected to already be lowercased by the caller.
func (r *Registry) Contains(category Category, token string) bool {
	s := r.snap.Load()
	if s == nil {
		return false
	}
	_, ok := s.sets[category][token]
	return ok
}

// GetCounts returns the number of entries in each category.
func (r *Registry) GetCounts() map[Category]int {
	s := r.snap.Load()
	out := make(map[Category]int, len(allCategories))
	for _, c := range allCategories {
		out[c] = len(s.sets[c])
	}
	return out
}

// GetSeedEntries flattens the current snapshot back into SeedEntry pairs,
// for persistence or inspection.
func (r *Registry) GetSeedEntries() []SeedEntry {
	s := r.snap.Load()
	var out []SeedEntry
	for _, c := range allCategories {
		for tok := range s.sets[c] {
			out = append(out, SeedEntry{Token: tok, Category: c})
		}
	}
	return out
}

// LoadFromDatabase publishes a new snapshot holding everything the current
// one holds plus entries: entries augment rather than empty a category,
// since the caller supplies a delta loaded from storage, not necessarily a
// full dump. Entries with an unknown category are ignored.
func (r *Registry) LoadFromDatabase(entries []SeedEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.snap.Load().clone()
	for _, e := range entries {
		if set, ok := next.sets[e.Category]; ok {
			set[e.Token] = struct{}{}
		}
	}
	r.snap.Store(next)
}

// LearnToken records a single classifier-confirmed (token, category) pair.
// It rejects tokens shorter than two runes (too ambiguous to be a name
// fragment) and categories outside FIRST_NAME/LAST_NAME/MIDDLE_NAME, since
// only those are safe to grow from auto-learned evidence; relationship and
// descriptor vocabularies are curated, not learned. Reports whether the
// token was accepted.
func (r *Registry) LearnToken(token string, category Category) bool {
	if utf8.RuneCountInString(token) < 2 {
		return false
	}
	if !learnableCategories[category] {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.snap.Load().clone()
	next.sets[category][token] = struct{}{}
	r.snap.Store(next)
	return true
}

// seedFile is the on-disk YAML shape understood by WatchSeedFile and
// LoadSeedFile: a flat map from category name to a list of tokens.
type seedFile map[Category][]string

// LoadSeedFile reads a YAML seed file and merges it into the registry the
// same way LoadFromDatabase does.
func (r *Registry) LoadSeedFile(path string, readFile func(string) ([]byte, error)) error {
	data, err := readFile(path)
	if err != nil {
		return fmt.Errorf("read seed file %q: %w", path, err)
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parse seed file %q: %w", path, err)
	}
	var entries []SeedEntry
	for cat, tokens := range sf {
		for _, tok := range tokens {
			entries = append(entries, SeedEntry{Token: tok, Category: cat})
		}
	}
	r.LoadFromDatabase(entries)
	return nil
}

// WatchSeedFile watches a YAML seed file for changes and reloads it on
// write/create events. Calling WatchSeedFile again replaces the previous
// watch.
func (r *Registry) WatchSeedFile(path string, readFile func(string) ([]byte, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopWatchLocked()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %q: %w", path, err)
	}

	r.watcher = w
	r.watchPath = path
	r.watchDone = make(chan struct{})

	go r.watchLoop(w, path, readFile, r.watchDone)
	return nil
}

func (r *Registry) watchLoop(w *fsnotify.Watcher, path string, readFile func(string) ([]byte, error), done chan struct{}) {
	defer close(done)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				_ = r.LoadSeedFile(path, readFile)
			}
		case _, ok := <-w.Errors:
			if !ok {
				return
			}
		}
	}
}

func (r *Registry) stopWatchLocked() {
	if r.watcher != nil {
		_ = r.watcher.Close()
		<-r.watchDone
		r.watcher = nil
		r.watchPath = ""
		r.watchDone = nil
	}
}

// Close stops any active file watch.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopWatchLocked()
}
