package config

import (
	"fmt"
	"sync/atomic"

	"github.com/croonhq/croon/internal/vocab"
)

// Snapshot bundles one immutable config view with its built vocabulary.
// A resolution cycle reads exactly one Snapshot; reload never mutates an
// installed Snapshot, it replaces the whole pointer.
type Snapshot struct {
	Config Config
	Vocab  *vocab.Snapshot
}

// NewSnapshot builds the vocabulary for cfg and freezes both together.
func NewSnapshot(cfg Config) (*Snapshot, error) {
	built, err := vocab.Build(cfg.Playlists, cfg.Matching.Threshold, cfg.Matching.Margin)
	if err != nil {
		return nil, fmt.Errorf("build vocabulary: %w", err)
	}
	return &Snapshot{Config: cfg, Vocab: built}, nil
}

// Store holds the current Snapshot behind an atomic pointer so reload can
// swap it without ever exposing a partially-updated view.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store seeded with an initial snapshot.
func NewStore(snap *Snapshot) *Store {
	s := &Store{}
	s.current.Store(snap)
	return s
}

// Snapshot returns the currently installed snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Replace atomically installs a new snapshot. In-flight readers keep the
// snapshot they already loaded.
func (s *Store) Replace(snap *Snapshot) {
	s.current.Store(snap)
}
