// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package model

import (
	"github.com/juju/errors"

	"github.com/juju/mirror/params"
)

// Delta is one change from the watcher stream after translation: the
// entity's identity has been extracted from the payload and the verb
// normalised. Removals carry no data; the store re-appends the last
// known state itself so that it stays addressable after death.
type Delta struct {
	// Kind identifies the sort of entity the change applies to.
	Kind string
	// Verb is one of params.DeltaAdd, DeltaChange or DeltaRemove.
	// The watcher only ever produces change and remove.
	Verb string
	// Id is the entity's identity within its kind.
	Id string
	// Data holds the entity's fields after the change; nil for a
	// removal.
	Data map[string]interface{}
}

// Validate returns an error if the delta cannot be applied. A removal
// must not carry data and anything else must.
func (d Delta) Validate() error {
	if d.Kind == "" {
		return errors.NotValidf("delta without a kind")
	}
	if d.Id == "" {
		return errors.NotValidf("%s delta without an id", d.Kind)
	}
	switch d.Verb {
	case params.DeltaAdd, params.DeltaChange:
		if d.Data == nil {
			return errors.NotValidf("%s %s delta without data", d.Verb, d.Kind)
		}
	case params.DeltaRemove:
		if d.Data != nil {
			return errors.NotValidf("remove %s delta carrying data", d.Kind)
		}
	default:
		return errors.NotValidf("delta verb %q", d.Verb)
	}
	return nil
}

// translateDelta converts a wire delta to its internal form. Wire
// removals carry at least the entity's identity fields; the identity is
// kept and the rest of the payload dropped.
func translateDelta(p params.Delta) (Delta, error) {
	id, err := p.EntityId()
	if err != nil {
		return Delta{}, errors.Trace(err)
	}
	delta := Delta{
		Kind: p.Kind,
		Verb: p.Verb(),
		Id:   id,
	}
	if !p.Removed {
		delta.Data = p.Data
	}
	return delta, nil
}
