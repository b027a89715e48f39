// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package testing provides base suites and constants shared by the
// test packages in this repository.
package testing

import (
	jujutesting "github.com/juju/testing"
	gc "gopkg.in/check.v1"
)

// BaseSuite provides required functionality for all test suites when
// embedded in a gocheck suite type: isolation from the user's
// environment and home directory, and log capture.
type BaseSuite struct {
	jujutesting.IsolationSuite
}

func (s *BaseSuite) SetUpSuite(c *gc.C) {
	s.IsolationSuite.SetUpSuite(c)
}

func (s *BaseSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
}
