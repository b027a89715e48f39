// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package params

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/juju/errors"
	"github.com/juju/schema"
)

// Entity kinds reported by the watcher. The set is open ended; kinds
// this client does not know about still flow through as raw data.
const (
	KindModel       = "model"
	KindMachine     = "machine"
	KindApplication = "application"
	KindUnit        = "unit"
	KindRelation    = "relation"
	KindAction      = "action"
	KindAnnotation  = "annotation"
)

// Delta verbs as they appear on the wire.
const (
	DeltaChange = "change"
	DeltaRemove = "remove"

	// DeltaAdd never appears on the wire; observers see it when a
	// change introduces a previously unknown entity.
	DeltaAdd = "add"
)

// Delta holds details of a change to the model. The entity data is kept
// raw so that server-side schema additions pass through untouched.
type Delta struct {
	// Kind identifies the sort of entity the delta applies to.
	Kind string
	// If Removed is true, the entity has been removed;
	// otherwise it has been created or changed.
	Removed bool
	// Data holds the fields of the entity after the change. For a
	// removal it carries at least the entity's identity field.
	Data map[string]interface{}
}

// Verb returns the wire verb for the delta.
func (d *Delta) Verb() string {
	if d.Removed {
		return DeltaRemove
	}
	return DeltaChange
}

// MarshalJSON implements json.Marshaler.
func (d Delta) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(d.Data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	verb := DeltaChange
	if d.Removed {
		verb = DeltaRemove
	}
	fmt.Fprintf(&buf, "%q,%q,", d.Kind, verb)
	buf.Write(b)
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Delta) UnmarshalJSON(data []byte) error {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return err
	}
	if len(elements) != 3 {
		return errors.Errorf(
			"expected 3 elements in top-level of JSON but got %d",
			len(elements))
	}
	var kind, verb string
	if err := json.Unmarshal(elements[0], &kind); err != nil {
		return err
	}
	if err := json.Unmarshal(elements[1], &verb); err != nil {
		return err
	}
	switch verb {
	case DeltaRemove:
		d.Removed = true
	case DeltaChange:
		d.Removed = false
	default:
		return errors.Errorf("unexpected delta verb %q", verb)
	}
	d.Kind = kind
	d.Data = nil
	return json.Unmarshal(elements[2], &d.Data)
}

var identityChecker = schema.String()

// entityIdField reports the payload field that carries the identity of
// entities of the given kind.
func entityIdField(kind string) string {
	switch kind {
	case KindModel:
		return "model-uuid"
	case KindApplication, KindUnit:
		return "name"
	case KindRelation:
		return "key"
	case KindAnnotation:
		return "tag"
	}
	return "id"
}

// EntityId extracts the identity of the entity the delta describes.
// A delta that does not carry its kind's identity field is not valid;
// neither is a removal with no data at all.
func (d *Delta) EntityId() (string, error) {
	if len(d.Data) == 0 {
		return "", errors.NotValidf("%s delta with no data", d.Kind)
	}
	field := entityIdField(d.Kind)
	raw, ok := d.Data[field]
	if !ok {
		return "", errors.NotValidf("%s delta missing %q", d.Kind, field)
	}
	coerced, err := identityChecker.Coerce(raw, []string{field})
	if err != nil {
		return "", errors.Annotatef(err, "%s delta", d.Kind)
	}
	id := coerced.(string)
	if id == "" {
		return "", errors.NotValidf("%s delta with empty %q", d.Kind, field)
	}
	return id, nil
}
