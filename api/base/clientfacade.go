// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package base

import (
	"io"
)

// ClientFacade should be embedded by client-facing facades.
type ClientFacade interface {
	// BestAPIVersion returns the API version that we were able to
	// determine is supported by both the client and the API Server.
	BestAPIVersion() int

	// Close the connection to the API server.
	Close() error
}

type clientFacade struct {
	facadeCaller
	closer io.Closer
}

var _ ClientFacade = clientFacade{}

// NewClientFacade prepares a client-facing facade for work against the
// API. It is expected that most client-facing facades will embed a
// ClientFacade and will use this to create them.
func NewClientFacade(caller APICaller, facadeName string) (ClientFacade, FacadeCaller) {
	cf := clientFacade{
		facadeCaller: facadeCaller{
			facadeName:  facadeName,
			bestVersion: caller.BestFacadeVersion(facadeName),
			caller:      caller,
		},
	}
	if closer, ok := caller.(io.Closer); ok {
		cf.closer = closer
	}
	return cf, cf
}

// Close closes the API connection the facade was built on.
func (cf clientFacade) Close() error {
	if cf.closer == nil {
		return nil
	}
	return cf.closer.Close()
}
