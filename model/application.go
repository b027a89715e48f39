// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package model

import (
	"github.com/juju/errors"
)

// Application is a typed view of an application entity. Fields the
// client does not declare remain reachable through the generic Field
// accessors.
type Application struct {
	*Entity
	model *Model
}

// Name returns the application name.
func (a *Application) Name() string {
	return a.Id()
}

// CharmURL returns the url of the charm the application runs.
func (a *Application) CharmURL() (string, error) {
	return a.StringField("charm-url")
}

// Exposed reports whether the application is exposed.
func (a *Application) Exposed() (bool, error) {
	return a.BoolField("exposed")
}

// Status returns the application's current status value.
func (a *Application) Status() (string, error) {
	return a.StatusField("status")
}

// Units returns the application's live units, keyed by unit name.
func (a *Application) Units() (map[string]*Unit, error) {
	units := make(map[string]*Unit)
	for name, unit := range a.model.Units() {
		appName, err := unit.ApplicationName()
		if err != nil {
			return nil, errors.Trace(err)
		}
		if appName == a.Name() {
			units[name] = unit
		}
	}
	return units, nil
}

// Destroy removes the application from the model.
func (a *Application) Destroy() error {
	client, err := a.model.apiClient()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(client.DestroyApplication(a.Name()))
}
