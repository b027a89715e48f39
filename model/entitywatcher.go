// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package model

import (
	"sync"

	"gopkg.in/tomb.v2"
)

// EntityWatcher reports changes to a single entity. Events coalesce:
// a receiver that falls behind sees the next event with the entity's
// then-current state rather than every intermediate one.
type EntityWatcher struct {
	tomb    tomb.Tomb
	changes chan *Entity
	// We can't send down a closed channel, so protect the sending
	// with a mutex and a bool; a channel can't be asked whether it
	// has been closed.
	closed bool
	mu     sync.Mutex
}

// WatchEntity returns a watcher notifying on every change applied to
// the identified entity. If the entity is already known an initial
// event carries its current view.
func (m *Model) WatchEntity(kind, id string) *EntityWatcher {
	w := &EntityWatcher{
		changes: make(chan *Entity, 1),
	}
	if entity := m.state.Entity(kind, id, Current, true); entity != nil {
		// The channel is buffered, so this doesn't block.
		w.changes <- entity
	}
	unsub := m.hub.Subscribe(entityTopic(kind, id), w.onChange)
	w.tomb.Go(func() error {
		<-w.tomb.Dying()
		unsub()
		return nil
	})
	return w
}

// Changes returns the channel events arrive on. It is closed when the
// watcher is killed.
func (w *EntityWatcher) Changes() <-chan *Entity {
	return w.changes
}

// Kill is part of the worker.Worker interface.
func (w *EntityWatcher) Kill() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	// The watcher must be dying or dead before we close the channel.
	// Otherwise readers could fail, but the tomb would report the
	// watcher alive.
	w.tomb.Kill(nil)
	w.closed = true
	close(w.changes)
}

// Wait is part of the worker.Worker interface.
func (w *EntityWatcher) Wait() error {
	return w.tomb.Wait()
}

// Stop kills the watcher and waits for it to finish.
func (w *EntityWatcher) Stop() error {
	w.Kill()
	return w.Wait()
}

func (w *EntityWatcher) onChange(topic string, data interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	change, ok := data.(Change)
	if !ok {
		logger.Criticalf("programming error: topic data expected Change, got %T", data)
		return
	}

	// Sending happens inside the mutex so nobody can kill the watcher
	// and close the channel under us. If an event is already pending
	// the receiver will resolve the entity's state afresh anyway.
	select {
	case w.changes <- change.New:
	default:
	}
}
