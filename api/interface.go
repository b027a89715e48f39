// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package api implements the client side of the controller API: dialing
// a controller, logging in, and placing facade calls over the resulting
// connection.
package api

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/names/v5"
	"github.com/juju/utils/v4"
	semversion "github.com/juju/version/v2"

	"github.com/juju/mirror/api/base"
)

// Info encapsulates information about a controller and can be used to
// make a connection to it.
type Info struct {
	// Addrs holds the addresses of the controller.
	Addrs []string

	// CACert holds the CA certificate that will be used to validate
	// the controller's certificate, in PEM format. If this is empty,
	// the standard system root certificates are used instead.
	CACert string

	// ModelUUID is the UUID of the model to connect to. If empty, the
	// connection is scoped to the controller rather than a model.
	ModelUUID string

	// Tag holds the name of the entity that is connecting.
	Tag names.Tag

	// Password holds the password for the connecting entity.
	Password string

	// Nonce holds the nonce used when provisioning the machine. Used
	// only by the machine agent.
	Nonce string

	// SkipLogin, if true, skips the Login call on connection. The
	// returned connection can only be used to make the Login call.
	SkipLogin bool
}

// Validate validates the info.
func (info *Info) Validate() error {
	if len(info.Addrs) == 0 {
		return errors.NotValidf("missing addresses")
	}
	if info.ModelUUID != "" && !utils.IsValidUUIDString(info.ModelUUID) {
		return errors.NotValidf("model UUID %q", info.ModelUUID)
	}
	if info.SkipLogin {
		if info.Tag != nil {
			return errors.NotValidf("tag set with SkipLogin")
		}
		if info.Password != "" {
			return errors.NotValidf("password set with SkipLogin")
		}
	}
	return nil
}

// DialOpts holds configuration parameters that control the Dialing
// behavior when connecting to a controller.
type DialOpts struct {
	// Timeout is the amount of time to keep trying to contact a
	// controller before giving up.
	Timeout time.Duration

	// RetryDelay is the amount of time to wait between unsuccessful
	// rounds of connection attempts.
	RetryDelay time.Duration

	// Clock is used for waiting between connection attempts. If nil,
	// clock.WallClock is used.
	Clock clock.Clock
}

// DefaultDialOpts returns a DialOpts representing the default
// parameters for contacting a controller.
func DefaultDialOpts() DialOpts {
	return DialOpts{
		Timeout:    10 * time.Minute,
		RetryDelay: 2 * time.Second,
	}
}

// Connection represents a connection to a controller.
type Connection interface {
	base.APICaller

	// Addr returns the address used to connect to the API server.
	Addr() string

	// Login authenticates as the entity with the given name and
	// password. Subsequent requests on the connection will act as
	// that entity. Open calls this automatically unless SkipLogin
	// is set.
	Login(tag names.Tag, password, nonce string) error

	// Client returns an object that can be used to access the
	// client-facing facades of the connection's model.
	Client() *Client

	// ControllerTag returns the tag of the controller, as reported at
	// login.
	ControllerTag() names.ControllerTag

	// ServerVersion holds the version of the API server that we are
	// connected to. It is possible that this version is not set yet.
	ServerVersion() (semversion.Number, bool)

	// Broken returns a channel which will be closed if the connection
	// is detected to be broken or has been closed.
	Broken() <-chan struct{}

	// IsBroken returns whether the connection is usable. It checks
	// the internal state and then pings the server.
	IsBroken() bool

	// Clone opens a fresh connection to the same controller and model
	// with the same credentials.
	Clone() (Connection, error)

	// Close closes the connection. Closing an already closed
	// connection does nothing.
	Close() error
}
