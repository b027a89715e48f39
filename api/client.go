// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package api

import (
	"github.com/juju/errors"
	"github.com/juju/names/v5"

	"github.com/juju/mirror/api/base"
	"github.com/juju/mirror/params"
)

// Client represents the client-accessible part of the controller: the
// administrative calls a model mirror needs beyond watching. Each
// method is a plain request/response wrapper around a facade call;
// nothing here inspects or caches model state.
type Client struct {
	base.ClientFacade
	facade base.FacadeCaller

	application  base.FacadeCaller
	modelconfig  base.FacadeCaller
	modelmanager base.FacadeCaller

	caller base.APICaller
}

// NewClient returns an object that can be used to access
// client-specific functionality.
func NewClient(caller base.APICaller) *Client {
	frontend, backend := base.NewClientFacade(caller, "Client")
	return &Client{
		ClientFacade: frontend,
		facade:       backend,
		application:  base.NewFacadeCaller(caller, "Application"),
		modelconfig:  base.NewFacadeCaller(caller, "ModelConfig"),
		modelmanager: base.NewFacadeCaller(caller, "ModelManager"),
		caller:       caller,
	}
}

// Client returns an object that can be used to access client-specific
// functionality.
func (st *state) Client() *Client {
	return NewClient(st)
}

// WatchAll returns an AllWatcher, from which you can request the Next
// collection of Deltas.
func (c *Client) WatchAll() (*AllWatcher, error) {
	var info params.AllWatcherId
	if err := c.facade.FacadeCall("WatchAll", nil, &info); err != nil {
		return nil, errors.Trace(err)
	}
	return NewAllWatcher(c.caller, &info.AllWatcherId), nil
}

// Status returns the status of the model, optionally filtered by the
// given patterns.
func (c *Client) Status(patterns []string) (*params.FullStatus, error) {
	var result params.FullStatus
	p := params.StatusParams{Patterns: patterns}
	if err := c.facade.FacadeCall("FullStatus", p, &result); err != nil {
		return nil, errors.Trace(err)
	}
	return &result, nil
}

// AddMachines adds new machines with the supplied parameters.
func (c *Client) AddMachines(machineParams []params.AddMachineParams) ([]params.AddMachinesResult, error) {
	args := params.AddMachines{
		MachineParams: machineParams,
	}
	results := new(params.AddMachinesResults)
	err := c.facade.FacadeCall("AddMachines", args, results)
	return results.Machines, errors.Trace(err)
}

// DestroyMachines removes the given set of machines.
func (c *Client) DestroyMachines(force bool, machines ...string) error {
	args := params.DestroyMachines{MachineNames: machines, Force: force}
	return errors.Trace(c.facade.FacadeCall("DestroyMachines", args, nil))
}

// Deploy obtains the charm and deploys it as a new application with
// the supplied name.
func (c *Client) Deploy(args params.ApplicationDeploy) error {
	deployArgs := params.ApplicationsDeploy{
		Applications: []params.ApplicationDeploy{args},
	}
	var results params.ErrorResults
	err := c.application.FacadeCall("Deploy", deployArgs, &results)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(results.OneError())
}

// AddRelation adds a relation between the specified endpoints and
// returns the relation info.
func (c *Client) AddRelation(endpoints ...string) (*params.AddRelationResults, error) {
	var result params.AddRelationResults
	args := params.AddRelation{Endpoints: endpoints}
	err := c.application.FacadeCall("AddRelation", args, &result)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &result, nil
}

// DestroyApplication destroys the given application.
func (c *Client) DestroyApplication(application string) error {
	args := params.ApplicationDestroy{ApplicationName: application}
	return errors.Trace(c.application.FacadeCall("Destroy", args, nil))
}

// ModelGet returns all model settings.
func (c *Client) ModelGet() (map[string]interface{}, error) {
	result := params.ModelConfigResults{}
	err := c.modelconfig.FacadeCall("ModelGet", nil, &result)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return result.Config, nil
}

// ModelSet sets the given key-value pairs in the model.
func (c *Client) ModelSet(config map[string]interface{}) error {
	args := params.ModelSet{Config: config}
	return errors.Trace(c.modelconfig.FacadeCall("ModelSet", args, nil))
}

// GrantModel grants a user access to the connected model. The user
// argument is a username without a domain, as accepted by the juju
// commands; access is one of "read", "write" or "admin".
func (c *Client) GrantModel(user, access string) error {
	return errors.Trace(c.modifyModelAccess(user, params.GrantModelAccess, access))
}

// RevokeModel revokes access to the connected model from a user.
func (c *Client) RevokeModel(user, access string) error {
	return errors.Trace(c.modifyModelAccess(user, params.RevokeModelAccess, access))
}

func (c *Client) modifyModelAccess(user string, action params.ModelAction, access string) error {
	if !names.IsValidUser(user) {
		return errors.NotValidf("user name %q", user)
	}
	modelTag, ok := c.caller.ModelTag()
	if !ok {
		return errors.New("connected to a controller, not a model")
	}
	args := params.ModifyModelAccessRequest{
		Changes: []params.ModifyModelAccess{{
			UserTag:  names.NewUserTag(user).String(),
			Action:   action,
			Access:   params.UserAccessPermission(access),
			ModelTag: modelTag.String(),
		}},
	}
	var results params.ErrorResults
	err := c.modelmanager.FacadeCall("ModifyModelAccess", args, &results)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(results.OneError())
}
