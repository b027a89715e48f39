// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package model

import (
	"fmt"

	"github.com/juju/errors"
)

// DeadEntityError is returned from attribute reads against a view whose
// snapshot is a tombstone. The entity's earlier states remain
// addressable through Previous.
type DeadEntityError struct {
	Kind string
	Id   string
}

// Error is part of the error interface.
func (e *DeadEntityError) Error() string {
	return fmt.Sprintf(
		"entity %s:%s is dead - its attributes can no longer be accessed; use Previous to reach the last recorded state",
		e.Kind, e.Id)
}

// IsDeadEntity reports whether err was caused by an attribute read
// against a dead entity.
func IsDeadEntity(err error) bool {
	_, ok := errors.Cause(err).(*DeadEntityError)
	return ok
}
