// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package model

import (
	"sync"

	"github.com/juju/errors"
	"github.com/juju/naturalsort"

	"github.com/juju/mirror/params"
)

// Current addresses the live edge of an entity's history. A view at
// Current always resolves against the latest snapshot at read time.
const Current = -1

// State is the sole owner of the history of every entity reported by
// the watcher. Views hold a back-reference into the store and never a
// copy of the data, so every view over an entity observes one
// consistent source of truth. The watch loop is the only writer;
// readers may come from any goroutine.
type State struct {
	mu sync.RWMutex

	// maxHistory bounds the snapshots retained per entity; zero
	// retains everything.
	maxHistory int

	entities map[string]map[string]*entityHistory
}

// entityHistory holds the ordered snapshots of a single entity. A nil
// element is a tombstone marking the entity's removal.
type entityHistory struct {
	snapshots []map[string]interface{}
}

// NewState returns an empty store retaining at most maxHistory
// snapshots per entity, or every snapshot if maxHistory is zero.
func NewState(maxHistory int) *State {
	return &State{
		maxHistory: maxHistory,
		entities:   make(map[string]map[string]*entityHistory),
	}
}

// Apply records a single delta and returns the entity's state on
// either side of it. old is a fixed view of the latest snapshot before
// the delta, nil when the delta introduced the entity. latest is a
// connected view at the live edge and is never nil, though it is dead
// when the delta was a removal.
//
// A removal appends the entity's last known state again and then a
// tombstone, so the state before death stays addressable one step
// behind the live edge.
func (s *State) Apply(delta Delta) (old, latest *Entity, err error) {
	if err := delta.Validate(); err != nil {
		return nil, nil, errors.Trace(err)
	}

	s.mu.Lock()
	byId, ok := s.entities[delta.Kind]
	if !ok {
		byId = make(map[string]*entityHistory)
		s.entities[delta.Kind] = byId
	}
	hist, ok := byId[delta.Id]
	if !ok {
		hist = &entityHistory{}
		byId[delta.Id] = hist
	}
	if delta.Verb == params.DeltaRemove {
		if n := len(hist.snapshots); n > 0 && hist.snapshots[n-1] != nil {
			hist.snapshots = append(hist.snapshots, hist.snapshots[n-1])
		}
		hist.snapshots = append(hist.snapshots, nil)
	} else {
		hist.snapshots = append(hist.snapshots, delta.Data)
	}
	s.trim(hist)
	n := len(hist.snapshots)
	s.mu.Unlock()

	if n > 1 {
		old = &Entity{st: s, kind: delta.Kind, id: delta.Id, index: n - 2}
	}
	latest = &Entity{st: s, kind: delta.Kind, id: delta.Id, index: Current, connected: true}
	return old, latest, nil
}

// trim discards the oldest snapshots of an entity once its history
// exceeds the configured bound. The latest snapshot and the one before
// it are always retained, whatever the bound says.
func (s *State) trim(hist *entityHistory) {
	if s.maxHistory <= 0 {
		return
	}
	keep := s.maxHistory
	if keep < 2 {
		keep = 2
	}
	if n := len(hist.snapshots); n > keep {
		hist.snapshots = append([]map[string]interface{}(nil), hist.snapshots[n-keep:]...)
	}
}

// Entity returns a view of the identified entity at the given history
// index, or nil if the entity is unknown or the index lies outside the
// recorded history. Current addresses the latest snapshot; other
// negative indices count back from the end of history at call time.
// connected marks the view as one that tracks live updates.
func (s *State) Entity(kind, id string, index int, connected bool) *Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.lengthLocked(kind, id)
	if n == 0 {
		return nil
	}
	if index != Current {
		if index < 0 {
			index += n
		}
		if index < 0 || index >= n {
			return nil
		}
	}
	return &Entity{st: s, kind: kind, id: id, index: index, connected: connected}
}

// Live returns connected views of every entity of the given kind whose
// latest snapshot is not a tombstone, keyed by id. The result reflects
// the store at call time and is never cached.
func (s *State) Live(kind string) map[string]*Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	live := make(map[string]*Entity)
	for id, hist := range s.entities[kind] {
		if n := len(hist.snapshots); n == 0 || hist.snapshots[n-1] == nil {
			continue
		}
		live[id] = &Entity{st: s, kind: kind, id: id, index: Current, connected: true}
	}
	return live
}

// LiveIds returns the ids of the live entities of the given kind in
// natural sort order.
func (s *State) LiveIds(kind string) []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.entities[kind]))
	for id, hist := range s.entities[kind] {
		if n := len(hist.snapshots); n == 0 || hist.snapshots[n-1] == nil {
			continue
		}
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	return naturalsort.Sort(ids)
}

// snapshot resolves the snapshot of an entity at the given index; ok
// is false if the entity is unknown or the index lies outside the
// retained history.
func (s *State) snapshot(kind, id string, index int) (data map[string]interface{}, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.lengthLocked(kind, id)
	if n == 0 {
		return nil, false
	}
	if index == Current {
		index = n - 1
	}
	if index < 0 || index >= n {
		return nil, false
	}
	return s.entities[kind][id].snapshots[index], true
}

// historyLength returns the number of snapshots retained for an
// entity.
func (s *State) historyLength(kind, id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lengthLocked(kind, id)
}

// latestIsTombstone reports whether the entity's newest snapshot marks
// it as removed. Unknown entities count as removed.
func (s *State) latestIsTombstone(kind, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.lengthLocked(kind, id)
	if n == 0 {
		return true
	}
	return s.entities[kind][id].snapshots[n-1] == nil
}

func (s *State) lengthLocked(kind, id string) int {
	if hist := s.entities[kind][id]; hist != nil {
		return len(hist.snapshots)
	}
	return 0
}
