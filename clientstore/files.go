// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package clientstore

import (
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/juju/utils/v4"
	"gopkg.in/yaml.v2"
)

// JujuDataDir returns the directory the juju CLI keeps its client
// configuration in, honouring the JUJU_DATA override.
func JujuDataDir() string {
	if d := os.Getenv("JUJU_DATA"); d != "" {
		return d
	}
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "juju")
	}
	return filepath.Join(utils.Home(), ".local", "share", "juju")
}

// ControllersPath returns the location of the controllers file.
func ControllersPath() string {
	return filepath.Join(JujuDataDir(), "controllers.yaml")
}

// ModelsPath returns the location of the models file.
func ModelsPath() string {
	return filepath.Join(JujuDataDir(), "models.yaml")
}

// AccountsPath returns the location of the accounts file.
func AccountsPath() string {
	return filepath.Join(JujuDataDir(), "accounts.yaml")
}

type controllersContent struct {
	Controllers       map[string]ControllerDetails `yaml:"controllers"`
	CurrentController string                       `yaml:"current-controller"`
}

// ControllerModels holds the models a user has access to on a
// controller, along with the currently selected one.
type ControllerModels struct {
	Models       map[string]ModelDetails `yaml:"models"`
	CurrentModel string                  `yaml:"current-model,omitempty"`
}

type modelsContent struct {
	Controllers map[string]*ControllerModels `yaml:"controllers"`
}

type accountsContent struct {
	Controllers map[string]AccountDetails `yaml:"controllers"`
}

// A missing file means nothing has been cached yet; lookups against
// the empty content produce NotFound errors in the callers.

func readControllersFile(path string) (*controllersContent, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &controllersContent{}, nil
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	var content controllersContent
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, errors.Annotatef(err, "cannot unmarshal controllers file %q", path)
	}
	return &content, nil
}

func readModelsFile(path string) (*modelsContent, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &modelsContent{}, nil
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	var content modelsContent
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, errors.Annotatef(err, "cannot unmarshal models file %q", path)
	}
	return &content, nil
}

func readAccountsFile(path string) (*accountsContent, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &accountsContent{}, nil
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	var content accountsContent
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, errors.Annotatef(err, "cannot unmarshal accounts file %q", path)
	}
	return &content, nil
}
