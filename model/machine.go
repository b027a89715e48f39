// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package model

import (
	"github.com/juju/errors"
)

// Machine is a typed view of a machine entity.
type Machine struct {
	*Entity
	model *Model
}

// InstanceId returns the provider instance id backing the machine.
func (m *Machine) InstanceId() (string, error) {
	return m.StringField("instance-id")
}

// Series returns the os series the machine runs.
func (m *Machine) Series() (string, error) {
	return m.StringField("series")
}

// AgentStatus returns the machine agent's current status value.
func (m *Machine) AgentStatus() (string, error) {
	return m.StatusField("agent-status")
}

// InstanceStatus returns the provider's current view of the instance.
func (m *Machine) InstanceStatus() (string, error) {
	return m.StatusField("instance-status")
}

// Destroy removes the machine from the model. force also removes any
// units assigned to it.
func (m *Machine) Destroy(force bool) error {
	client, err := m.model.apiClient()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(client.DestroyMachines(force, m.Id()))
}
