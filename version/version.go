// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package version contains the version of the client library, sent to
// controllers at login so they can log who is talking to them.
package version

import (
	semversion "github.com/juju/version/v2"
)

// Current gives the current version of the library.
var Current = semversion.MustParse("2.0.1")
