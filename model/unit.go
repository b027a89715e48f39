// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package model

import (
	"strings"

	"github.com/juju/errors"
)

// Unit is a typed view of a unit entity.
type Unit struct {
	*Entity
	model *Model
}

// Name returns the unit name.
func (u *Unit) Name() string {
	return u.Id()
}

// ApplicationName returns the name of the application the unit
// belongs to. When the payload does not carry the application field
// the name is derived from the unit name.
func (u *Unit) ApplicationName() (string, error) {
	name, err := u.StringField("application")
	if err == nil {
		return name, nil
	}
	if !errors.IsNotFound(err) {
		return "", errors.Trace(err)
	}
	if i := strings.IndexRune(u.Name(), '/'); i > 0 {
		return u.Name()[:i], nil
	}
	return "", errors.NotValidf("unit name %q", u.Name())
}

// MachineId returns the id of the machine hosting the unit.
func (u *Unit) MachineId() (string, error) {
	return u.StringField("machine-id")
}

// PublicAddress returns the unit's public address.
func (u *Unit) PublicAddress() (string, error) {
	return u.StringField("public-address")
}

// PrivateAddress returns the unit's private address.
func (u *Unit) PrivateAddress() (string, error) {
	return u.StringField("private-address")
}

// AgentStatus returns the unit agent's current status value.
func (u *Unit) AgentStatus() (string, error) {
	return u.StatusField("agent-status")
}

// WorkloadStatus returns the workload's current status value.
func (u *Unit) WorkloadStatus() (string, error) {
	return u.StatusField("workload-status")
}
