// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"log/slog"

	"github.com/johnnyonline/frok-vickrey-auction/frok"
	"github.com/johnnyonline/frok-vickrey-auction/lvldb"
)

var storagePrefix = []byte("s:")

// storageKey locates one storage slot of one module account.
type storageKey struct {
	addr frok.Address
	key  frok.Bytes32
}

// journalEntry remembers the overlay content of a slot before a write, so a
// revert can restore it exactly.
type journalEntry struct {
	key       storageKey
	prev      []byte
	prevDirty bool
}

// State provides access to module account storage with checkpoint/revert
// semantics. Every mutating auction operation opens a checkpoint and reverts
// to it on failure, which is what makes operations all-or-nothing.
//
// State is not safe for concurrent use; callers serialize access.
type State struct {
	db      lvldb.Store // nil for a purely in-memory state
	base    map[storageKey][]byte
	overlay map[storageKey][]byte
	journal []journalEntry
	err     error
	logger  *slog.Logger
}

// New creates a state on top of the given store. A nil store yields a
// volatile in-memory state.
func New(db lvldb.Store) *State {
	return &State{
		db:      db,
		base:    make(map[storageKey][]byte),
		overlay: make(map[storageKey][]byte),
		logger:  slog.With("pkg", "state"),
	}
}

// NewMem creates a volatile in-memory state, mostly for tests.
func NewMem() *State {
	return New(nil)
}

// Err returns the first underlying store error encountered, if any.
func (s *State) Err() error {
	return s.err
}

func (s *State) setError(err error) {
	if s.err == nil {
		s.err = err
	}
	s.logger.Error("state store error", "err", err)
}

func persistentKey(k storageKey) []byte {
	buf := make([]byte, 0, len(storagePrefix)+20+32)
	buf = append(buf, storagePrefix...)
	buf = append(buf, k.addr.Bytes()...)
	buf = append(buf, k.key.Bytes()...)
	return buf
}

// GetRawStorage returns the raw content of the given storage slot.
// Empty content means the slot was never written.
func (s *State) GetRawStorage(addr frok.Address, key frok.Bytes32) []byte {
	k := storageKey{addr, key}
	if raw, dirty := s.overlay[k]; dirty {
		return raw
	}
	if raw, ok := s.base[k]; ok {
		return raw
	}
	if s.db != nil {
		raw, err := s.db.Get(persistentKey(k))
		if err != nil && !s.db.IsNotFound(err) {
			s.setError(err)
		}
		s.base[k] = raw
		return raw
	}
	s.base[k] = nil
	return nil
}

// SetRawStorage writes raw content into the given storage slot.
func (s *State) SetRawStorage(addr frok.Address, key frok.Bytes32, raw []byte) {
	k := storageKey{addr, key}
	prev, prevDirty := s.overlay[k]
	s.journal = append(s.journal, journalEntry{key: k, prev: prev, prevDirty: prevDirty})
	s.overlay[k] = raw
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr frok.Address, key frok.Bytes32, enc func() ([]byte, error)) {
	raw, err := enc()
	if err != nil {
		s.setError(err)
		return
	}
	s.SetRawStorage(addr, key, raw)
}

// DecodeStorage get and decode storage value with given dec method.
func (s *State) DecodeStorage(addr frok.Address, key frok.Bytes32, dec func([]byte) error) {
	raw := s.GetRawStorage(addr, key)
	if err := dec(raw); err != nil {
		s.setError(err)
	}
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return len(s.journal)
}

// RevertTo reverts state to given revision.
func (s *State) RevertTo(revision int) {
	if revision < 0 || revision > len(s.journal) {
		panic("state: invalid revision")
	}
	for i := len(s.journal) - 1; i >= revision; i-- {
		e := s.journal[i]
		if e.prevDirty {
			s.overlay[e.key] = e.prev
		} else {
			delete(s.overlay, e.key)
		}
	}
	s.journal = s.journal[:revision]
}

// Commit flushes all pending writes into the backing store and folds them
// into the committed view. Checkpoints taken before Commit become invalid.
func (s *State) Commit() error {
	if s.err != nil {
		return s.err
	}
	for k, raw := range s.overlay {
		if s.db != nil {
			var err error
			if len(raw) == 0 {
				err = s.db.Delete(persistentKey(k))
			} else {
				err = s.db.Put(persistentKey(k), raw)
			}
			if err != nil {
				s.setError(err)
				return err
			}
		}
		s.base[k] = raw
	}
	s.overlay = make(map[storageKey][]byte)
	s.journal = s.journal[:0]
	return nil
}
