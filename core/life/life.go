// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package life holds the representation of entity lifecycle values as
// reported by a controller. Every first-class entity in a model carries
// a life field that moves monotonically through alive, dying, dead.
package life

import (
	"github.com/juju/errors"
)

// Value indicates the state of some entity's lifecycle.
type Value string

const (
	Alive Value = "alive"
	Dying Value = "dying"
	Dead  Value = "dead"
)

// Validate returns an error if the value is not known.
func (v Value) Validate() error {
	switch v {
	case Alive, Dying, Dead:
		return nil
	}
	return errors.NotValidf("life value %q", string(v))
}

// Predicate is a standard way of selecting entities by life value.
type Predicate func(Value) bool

// IsAlive reports whether v is Alive.
func IsAlive(v Value) bool {
	return v == Alive
}

// IsNotAlive reports whether v is not Alive.
func IsNotAlive(v Value) bool {
	return v != Alive
}

// IsDead reports whether v is Dead.
func IsDead(v Value) bool {
	return v == Dead
}

// IsNotDead reports whether v is not Dead.
func IsNotDead(v Value) bool {
	return v != Dead
}
