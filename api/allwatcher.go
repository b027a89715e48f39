// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package api

import (
	"github.com/juju/errors"

	"github.com/juju/mirror/api/base"
	"github.com/juju/mirror/params"
)

// AllWatcher holds information allowing us to get Deltas describing
// changes to the entire model.
type AllWatcher struct {
	objType string
	caller  base.APICaller
	id      *string
}

// NewAllWatcher returns an AllWatcher instance which interacts with a
// watcher created by the WatchAll API call.
//
// There should be no need to call this from outside of the api
// package. It is only used by Client.WatchAll in this package.
func NewAllWatcher(caller base.APICaller, id *string) *AllWatcher {
	return &AllWatcher{
		objType: "AllWatcher",
		caller:  caller,
		id:      id,
	}
}

// Next returns a new set of deltas from a watcher previously created
// by the WatchAll API call. It will block until there are deltas to
// return.
func (watcher *AllWatcher) Next() ([]params.Delta, error) {
	var info params.AllWatcherNextResults
	err := watcher.caller.APICall(
		watcher.objType,
		watcher.caller.BestFacadeVersion(watcher.objType),
		*watcher.id,
		"Next",
		nil, &info,
	)
	return info.Deltas, errors.Trace(err)
}

// Stop shuts down a watcher previously created by the WatchAll API
// call.
func (watcher *AllWatcher) Stop() error {
	return errors.Trace(watcher.caller.APICall(
		watcher.objType,
		watcher.caller.BestFacadeVersion(watcher.objType),
		*watcher.id,
		"Stop",
		nil, nil,
	))
}
