// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package clientstore reads the local configuration files maintained
// by the juju CLI, so that a mirror can connect to whatever controller
// and model the user currently has selected without asking for
// endpoints or credentials again.
package clientstore

// ControllerDetails holds the details needed to connect to a
// controller.
type ControllerDetails struct {
	// ControllerUUID is the unique ID of the controller.
	ControllerUUID string `yaml:"uuid"`

	// APIEndpoints holds a list of API addresses. It may not be
	// current, and it will be empty if the environment has not been
	// bootstrapped.
	APIEndpoints []string `yaml:"api-endpoints,flow"`

	// CACert is the certificate to verify the API server's identity.
	CACert string `yaml:"ca-cert"`
}

// ModelDetails holds details of a model.
type ModelDetails struct {
	// ModelUUID is the unique ID of the model.
	ModelUUID string `yaml:"uuid"`
}

// AccountDetails holds details of an account.
type AccountDetails struct {
	// User is the username for the account.
	User string `yaml:"user"`

	// Password is the password for the account.
	Password string `yaml:"password,omitempty"`
}

// Store provides read access to the controllers, models and accounts
// the juju CLI has cached locally. Model names are owner-qualified
// ("admin/default") exactly as the CLI writes them.
type Store interface {
	// CurrentController returns the name of the currently selected
	// controller. If no controller is selected, an error satisfying
	// errors.IsNotFound is returned.
	CurrentController() (string, error)

	// ControllerByName returns the controller with the given name. If
	// there is no such controller, an error satisfying
	// errors.IsNotFound is returned.
	ControllerByName(name string) (*ControllerDetails, error)

	// CurrentModel returns the name of the currently selected model
	// for the given controller. If no model is selected, an error
	// satisfying errors.IsNotFound is returned.
	CurrentModel(controllerName string) (string, error)

	// ModelByName returns the named model for the controller. If there
	// is no such model, an error satisfying errors.IsNotFound is
	// returned.
	ModelByName(controllerName, modelName string) (*ModelDetails, error)

	// AccountDetails returns the account logged in to the given
	// controller. If there is no logged-in account, an error satisfying
	// errors.IsNotFound is returned.
	AccountDetails(controllerName string) (*AccountDetails, error)
}
