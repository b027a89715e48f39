// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package testing provides fakes for exercising facade clients without
// a server.
package testing

import (
	"github.com/juju/names/v5"

	"github.com/juju/mirror/api/base"
	coretesting "github.com/juju/mirror/testing"
)

// APICallerFunc is a function type that implements base.APICaller. Each
// facade call is handed to the function itself.
type APICallerFunc func(objType string, version int, id, request string, params, response interface{}) error

func (f APICallerFunc) APICall(objType string, version int, id, request string, params, response interface{}) error {
	return f(objType, version, id, request, params, response)
}

func (APICallerFunc) BestFacadeVersion(facade string) int {
	return 0
}

func (APICallerFunc) ModelTag() (names.ModelTag, bool) {
	return coretesting.ModelTag, true
}

func (APICallerFunc) Close() error {
	return nil
}

var _ base.APICaller = APICallerFunc(nil)
