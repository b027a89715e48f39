// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package params holds the wire structures passed between this client
// and a controller. Field names follow the controller's JSON schema;
// everything here must marshal to exactly what the server expects.
package params

import (
	"fmt"
	"strings"
	"time"
)

// Entity identifies a single entity by tag.
type Entity struct {
	Tag string `json:"tag"`
}

// Entities identifies multiple entities.
type Entities struct {
	Entities []Entity `json:"entities"`
}

// ErrorResult holds the error status of a single operation.
type ErrorResult struct {
	Error *Error `json:"error,omitempty"`
}

// ErrorResults holds the results of calling a bulk operation which
// returns no data, only an error result. The order and number of
// elements matches the operations specified in the request.
type ErrorResults struct {
	Results []ErrorResult `json:"results"`
}

// OneError returns the error from the result of a bulk operation on a
// single value.
func (result ErrorResults) OneError() error {
	if n := len(result.Results); n != 1 {
		return fmt.Errorf("expected 1 result, got %d", n)
	}
	if err := result.Results[0].Error; err != nil {
		return err
	}
	return nil
}

// Combine returns one error from the result which is an accumulation of
// the errors. If there are no errors in the result, the return value is
// nil. Otherwise the error values are combined with new-line characters.
func (result ErrorResults) Combine() error {
	var errorStrings []string
	for _, r := range result.Results {
		if r.Error != nil {
			errorStrings = append(errorStrings, r.Error.Error())
		}
	}
	if errorStrings != nil {
		return fmt.Errorf("%s", strings.Join(errorStrings, "\n"))
	}
	return nil
}

// LoginRequest holds login credentials for an API client.
type LoginRequest struct {
	AuthTag       string `json:"auth-tag"`
	Credentials   string `json:"credentials"`
	Nonce         string `json:"nonce,omitempty"`
	ClientVersion string `json:"client-version,omitempty"`
}

// FacadeVersions describes the available facades and what versions of
// each one are available.
type FacadeVersions struct {
	Name     string `json:"name"`
	Versions []int  `json:"versions"`
}

// LoginResult holds the result of a login request.
type LoginResult struct {
	ModelTag      string           `json:"model-tag,omitempty"`
	ControllerTag string           `json:"controller-tag,omitempty"`
	Facades       []FacadeVersions `json:"facades,omitempty"`
	ServerVersion string           `json:"server-version,omitempty"`
}

// AllWatcherId holds the id of a watcher that observes the whole model.
type AllWatcherId struct {
	AllWatcherId string `json:"watcher-id"`
}

// AllWatcherNextResults holds deltas returned from an AllWatcher's
// Next call.
type AllWatcherNextResults struct {
	Deltas []Delta `json:"deltas"`
}

// ApplicationDeploy holds the parameters for making the application
// Deploy call.
type ApplicationDeploy struct {
	ApplicationName string `json:"application"`
	CharmURL        string `json:"charm-url"`
	Channel         string `json:"channel,omitempty"`
	NumUnits        int    `json:"num-units"`
	ConfigYAML      string `json:"config-yaml,omitempty"`
	Series          string `json:"series,omitempty"`
}

// ApplicationsDeploy holds the parameters for deploying one or more
// applications.
type ApplicationsDeploy struct {
	Applications []ApplicationDeploy `json:"applications"`
}

// ApplicationDestroy holds the parameters for making the application
// Destroy call.
type ApplicationDestroy struct {
	ApplicationName string `json:"application"`
}

// AddRelation holds the parameters for making the AddRelation call.
// The endpoints specified are unordered.
type AddRelation struct {
	Endpoints []string `json:"endpoints"`
}

// CharmRelation mirrors the relation metadata of a charm endpoint.
type CharmRelation struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	Interface string `json:"interface"`
	Optional  bool   `json:"optional"`
	Limit     int    `json:"limit"`
	Scope     string `json:"scope"`
}

// AddRelationResults holds the results of an AddRelation call. The
// Endpoints field maps application names to the involved endpoints.
type AddRelationResults struct {
	Endpoints map[string]CharmRelation `json:"endpoints"`
}

// JobHostUnits is the machine job accepted by every unit-hosting
// machine.
const JobHostUnits = "JobHostUnits"

// AddMachineParams encapsulates the parameters used to create a new
// machine.
type AddMachineParams struct {
	Series        string   `json:"series,omitempty"`
	ParentId      string   `json:"parent-id,omitempty"`
	ContainerType string   `json:"container-type,omitempty"`
	Jobs          []string `json:"jobs"`
}

// AddMachines holds the parameters for making the AddMachines call.
type AddMachines struct {
	MachineParams []AddMachineParams `json:"params"`
}

// AddMachinesResult holds the name of a machine added by the
// AddMachines call for a single machine.
type AddMachinesResult struct {
	Machine string `json:"machine"`
	Error   *Error `json:"error,omitempty"`
}

// AddMachinesResults holds the results of an AddMachines call.
type AddMachinesResults struct {
	Machines []AddMachinesResult `json:"machines"`
}

// DestroyMachines holds parameters for the DestroyMachines call.
type DestroyMachines struct {
	MachineNames []string `json:"machine-names"`
	Force        bool     `json:"force"`
}

// ModelAction is an action that can be performed on a model.
type ModelAction string

// Actions that can be preformed on a model.
const (
	GrantModelAccess  ModelAction = "grant"
	RevokeModelAccess ModelAction = "revoke"
)

// UserAccessPermission is the type of permission that a user has to
// access a model.
type UserAccessPermission string

// Model access permissions that may be set on a user.
const (
	ModelReadAccess  UserAccessPermission = "read"
	ModelWriteAccess UserAccessPermission = "write"
	ModelAdminAccess UserAccessPermission = "admin"
)

// ModifyModelAccess contains parameters to grant and revoke access to
// a model.
type ModifyModelAccess struct {
	UserTag  string               `json:"user-tag"`
	Action   ModelAction          `json:"action"`
	Access   UserAccessPermission `json:"access"`
	ModelTag string               `json:"model-tag"`
}

// ModifyModelAccessRequest holds the parameters for making grant and
// revoke model calls.
type ModifyModelAccessRequest struct {
	Changes []ModifyModelAccess `json:"changes"`
}

// ModelConfigResults contains the result of a client API call to get
// model config values.
type ModelConfigResults struct {
	Config map[string]interface{} `json:"config"`
}

// ModelSet contains the arguments for a client API call to set model
// config values.
type ModelSet struct {
	Config map[string]interface{} `json:"config"`
}

// DetailedStatus holds status info about an entity.
type DetailedStatus struct {
	Status string     `json:"status"`
	Info   string     `json:"info"`
	Since  *time.Time `json:"since,omitempty"`
}

// MachineStatus holds status info about a machine.
type MachineStatus struct {
	AgentStatus    DetailedStatus `json:"agent-status"`
	InstanceStatus DetailedStatus `json:"instance-status"`
	InstanceId     string         `json:"instance-id"`
	Series         string         `json:"series"`
}

// UnitStatus holds status info about a unit.
type UnitStatus struct {
	AgentStatus    DetailedStatus `json:"agent-status"`
	WorkloadStatus DetailedStatus `json:"workload-status"`
	Machine        string         `json:"machine"`
}

// ApplicationStatus holds status info about an application.
type ApplicationStatus struct {
	Charm  string                `json:"charm"`
	Status DetailedStatus        `json:"status"`
	Units  map[string]UnitStatus `json:"units"`
}

// RelationStatus holds status info about a relation.
type RelationStatus struct {
	Id        int    `json:"id"`
	Key       string `json:"key"`
	Interface string `json:"interface"`
}

// ModelStatusInfo holds status info about the model itself.
type ModelStatusInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// FullStatus holds information about the status of a model.
type FullStatus struct {
	Model        ModelStatusInfo              `json:"model"`
	Machines     map[string]MachineStatus     `json:"machines"`
	Applications map[string]ApplicationStatus `json:"applications"`
	Relations    []RelationStatus             `json:"relations"`
}

// StatusParams holds parameters for the Status call.
type StatusParams struct {
	Patterns []string `json:"patterns"`
}
