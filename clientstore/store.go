// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package clientstore

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/mutex/v2"
	"github.com/juju/names/v5"

	"github.com/juju/mirror/api"
)

var logger = loggo.GetLogger("juju.mirror.clientstore")

// A second should be enough to read any of the files. But some disks
// are slow when under load, so give the lock a reasonable time.
var lockTimeout = 5 * time.Second

// NewFileStore returns a Store backed by the files the juju CLI
// maintains under JujuDataDir.
func NewFileStore() Store {
	return &store{}
}

type store struct{}

// The CLI takes the same lock around its own reads and writes, so
// holding it here means we never observe a half-written file.
func (s *store) acquireLock() (mutex.Releaser, error) {
	spec := mutex.Spec{
		Name:    "store-lock",
		Clock:   clock.WallClock,
		Delay:   20 * time.Millisecond,
		Timeout: lockTimeout,
	}
	releaser, err := mutex.Acquire(spec)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return releaser, nil
}

// CurrentController implements Store.
func (s *store) CurrentController() (string, error) {
	releaser, err := s.acquireLock()
	if err != nil {
		return "", errors.Annotate(err, "cannot read current controller")
	}
	defer releaser.Release()

	content, err := readControllersFile(ControllersPath())
	if err != nil {
		return "", errors.Trace(err)
	}
	if content.CurrentController == "" {
		return "", errors.NotFoundf("current controller")
	}
	return content.CurrentController, nil
}

// ControllerByName implements Store.
func (s *store) ControllerByName(name string) (*ControllerDetails, error) {
	if err := validateName("controller", name); err != nil {
		return nil, errors.Trace(err)
	}
	releaser, err := s.acquireLock()
	if err != nil {
		return nil, errors.Annotatef(err, "cannot read controller %v", name)
	}
	defer releaser.Release()

	content, err := readControllersFile(ControllersPath())
	if err != nil {
		return nil, errors.Trace(err)
	}
	if details, ok := content.Controllers[name]; ok {
		return &details, nil
	}
	return nil, errors.NotFoundf("controller %s", name)
}

// CurrentModel implements Store.
func (s *store) CurrentModel(controllerName string) (string, error) {
	if err := validateName("controller", controllerName); err != nil {
		return "", errors.Trace(err)
	}
	releaser, err := s.acquireLock()
	if err != nil {
		return "", errors.Annotate(err, "cannot read current model")
	}
	defer releaser.Release()

	content, err := readModelsFile(ModelsPath())
	if err != nil {
		return "", errors.Trace(err)
	}
	controllerModels, ok := content.Controllers[controllerName]
	if !ok || controllerModels.CurrentModel == "" {
		return "", errors.NotFoundf("current model for controller %s", controllerName)
	}
	return controllerModels.CurrentModel, nil
}

// ModelByName implements Store.
func (s *store) ModelByName(controllerName, modelName string) (*ModelDetails, error) {
	if err := validateName("controller", controllerName); err != nil {
		return nil, errors.Trace(err)
	}
	if err := validateName("model", modelName); err != nil {
		return nil, errors.Trace(err)
	}
	releaser, err := s.acquireLock()
	if err != nil {
		return nil, errors.Annotatef(err, "cannot read model %v", modelName)
	}
	defer releaser.Release()

	content, err := readModelsFile(ModelsPath())
	if err != nil {
		return nil, errors.Trace(err)
	}
	controllerModels, ok := content.Controllers[controllerName]
	if !ok {
		return nil, errors.NotFoundf("models for controller %s", controllerName)
	}
	details, ok := controllerModels.Models[modelName]
	if !ok {
		return nil, errors.NotFoundf("model %s:%s", controllerName, modelName)
	}
	return &details, nil
}

// AccountDetails implements Store.
func (s *store) AccountDetails(controllerName string) (*AccountDetails, error) {
	if err := validateName("controller", controllerName); err != nil {
		return nil, errors.Trace(err)
	}
	releaser, err := s.acquireLock()
	if err != nil {
		return nil, errors.Annotatef(err, "cannot read account for %v", controllerName)
	}
	defer releaser.Release()

	content, err := readAccountsFile(AccountsPath())
	if err != nil {
		return nil, errors.Trace(err)
	}
	details, ok := content.Controllers[controllerName]
	if !ok {
		return nil, errors.NotFoundf("account for controller %s", controllerName)
	}
	return &details, nil
}

func validateName(kind, name string) error {
	if name == "" {
		return errors.NotValidf("empty %s name", kind)
	}
	return nil
}

// ConnectionInfo assembles everything needed to open an API connection
// to a model from the local files. Empty controller or model names
// resolve to the user's current selections.
func ConnectionInfo(store Store, controllerName, modelName string) (*api.Info, error) {
	if controllerName == "" {
		current, err := store.CurrentController()
		if err != nil {
			return nil, errors.Trace(err)
		}
		controllerName = current
	}
	controller, err := store.ControllerByName(controllerName)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if modelName == "" {
		current, err := store.CurrentModel(controllerName)
		if err != nil {
			return nil, errors.Trace(err)
		}
		modelName = current
	}
	model, err := store.ModelByName(controllerName, modelName)
	if err != nil {
		return nil, errors.Trace(err)
	}
	account, err := store.AccountDetails(controllerName)
	if err != nil {
		return nil, errors.Trace(err)
	}
	logger.Debugf("connecting to model %s:%s as %q", controllerName, modelName, account.User)

	info := &api.Info{
		Addrs:     controller.APIEndpoints,
		CACert:    controller.CACert,
		ModelUUID: model.ModelUUID,
		Password:  account.Password,
	}
	if account.User != "" {
		info.Tag = names.NewUserTag(account.User)
	}
	return info, nil
}
