// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package model

import (
	"github.com/juju/errors"

	"github.com/juju/mirror/core/life"
)

// Entity is a view of one entity at some point in its history. The
// view owns no data; every read resolves against the owning State at
// call time. A view at Current follows the live edge as new deltas
// land, while any other index pins a fixed point in history.
type Entity struct {
	st        *State
	kind      string
	id        string
	index     int
	connected bool
}

// Kind returns the entity's kind.
func (e *Entity) Kind() string {
	return e.kind
}

// Id returns the entity's identity within its kind.
func (e *Entity) Id() string {
	return e.id
}

// Index returns the history index the view resolves against, Current
// for a live view.
func (e *Entity) Index() int {
	return e.index
}

// Connected reports whether the view was constructed to track live
// updates rather than a frozen point in history.
func (e *Entity) Connected() bool {
	return e.connected
}

// Current reports whether the view resolves against the latest
// snapshot rather than a fixed index.
func (e *Entity) Current() bool {
	return e.index == Current
}

// Dead reports whether this view's snapshot is a tombstone or the
// entity has since been removed from the model. A historical view of a
// removed entity is dead even though its own snapshot holds data: Dead
// answers "does this entity still exist", not "was this snapshot a
// removal".
func (e *Entity) Dead() bool {
	if e.st.latestIsTombstone(e.kind, e.id) {
		return true
	}
	data, ok := e.st.snapshot(e.kind, e.id, e.index)
	return !ok || data == nil
}

// Alive reports whether the entity still exists and this view's
// snapshot holds data.
func (e *Entity) Alive() bool {
	return !e.Dead()
}

// Data returns a copy of the snapshot the view resolves to. It fails
// with DeadEntityError when the snapshot is a tombstone, and with not
// found when the index has been trimmed out of the retained history.
func (e *Entity) Data() (map[string]interface{}, error) {
	data, ok := e.st.snapshot(e.kind, e.id, e.index)
	if !ok {
		return nil, errors.NotFoundf("%s:%s history index %d", e.kind, e.id, e.index)
	}
	if data == nil {
		return nil, &DeadEntityError{Kind: e.kind, Id: e.id}
	}
	copied := make(map[string]interface{}, len(data))
	for name, value := range data {
		copied[name] = value
	}
	return copied, nil
}

// Field returns the named field of the view's snapshot, failing with
// DeadEntityError on a tombstone and not found when the field is
// absent.
func (e *Entity) Field(name string) (interface{}, error) {
	data, err := e.Data()
	if err != nil {
		return nil, errors.Trace(err)
	}
	value, ok := data[name]
	if !ok {
		return nil, errors.NotFoundf("field %q of %s:%s", name, e.kind, e.id)
	}
	return value, nil
}

// StringField returns the named field as a string.
func (e *Entity) StringField(name string) (string, error) {
	value, err := e.Field(name)
	if err != nil {
		return "", errors.Trace(err)
	}
	s, ok := value.(string)
	if !ok {
		return "", errors.NotValidf("field %q of %s:%s holding %T", name, e.kind, e.id, value)
	}
	return s, nil
}

// BoolField returns the named field as a bool.
func (e *Entity) BoolField(name string) (bool, error) {
	value, err := e.Field(name)
	if err != nil {
		return false, errors.Trace(err)
	}
	b, ok := value.(bool)
	if !ok {
		return false, errors.NotValidf("field %q of %s:%s holding %T", name, e.kind, e.id, value)
	}
	return b, nil
}

// StatusField returns the "current" value of the named status mapping,
// the shape carried by agent-status and workload-status fields.
func (e *Entity) StatusField(name string) (string, error) {
	value, err := e.Field(name)
	if err != nil {
		return "", errors.Trace(err)
	}
	status, ok := value.(map[string]interface{})
	if !ok {
		return "", errors.NotValidf("field %q of %s:%s holding %T", name, e.kind, e.id, value)
	}
	current, _ := status["current"].(string)
	return current, nil
}

// Life returns the entity's lifecycle value.
func (e *Entity) Life() (life.Value, error) {
	value, err := e.StringField("life")
	if err != nil {
		return "", errors.Trace(err)
	}
	v := life.Value(value)
	if err := v.Validate(); err != nil {
		return "", errors.Trace(err)
	}
	return v, nil
}

// Previous returns a disconnected view of the snapshot one step before
// this one, or nil if no earlier snapshot exists.
func (e *Entity) Previous() *Entity {
	index := e.resolvedIndex() - 1
	if index < 0 {
		return nil
	}
	return e.st.Entity(e.kind, e.id, index, false)
}

// Next returns a view one step closer to the live edge, or nil if this
// view is already current. The result is connected only when it lands
// on the latest snapshot.
func (e *Entity) Next() *Entity {
	if e.index == Current {
		return nil
	}
	index := e.index + 1
	n := e.st.historyLength(e.kind, e.id)
	if index >= n {
		return nil
	}
	return e.st.Entity(e.kind, e.id, index, index == n-1)
}

// Latest returns a connected view at the live edge. A view that is
// already current returns itself.
func (e *Entity) Latest() *Entity {
	if e.index == Current {
		return e
	}
	return e.st.Entity(e.kind, e.id, Current, true)
}

// resolvedIndex returns the absolute index the view resolves against
// at this moment.
func (e *Entity) resolvedIndex() int {
	if e.index == Current {
		return e.st.historyLength(e.kind, e.id) - 1
	}
	return e.index
}
