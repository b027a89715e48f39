// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package clientstore_test

import (
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/juju/names/v5"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/mirror/clientstore"
)

const controllersYAML = `
controllers:
  foo:
    uuid: deadbeef-1bad-500d-9000-4b1d0d06f00d
    api-endpoints: ['10.0.0.1:17070', '10.0.0.2:17070']
    ca-cert: fake-cert
current-controller: foo
`

const modelsYAML = `
controllers:
  foo:
    models:
      admin/default:
        uuid: deadbeef-0bad-400d-8000-4b1d0d06f00d
      admin/test:
        uuid: feedface-0bad-400d-8000-4b1d0d06f00d
    current-model: admin/default
`

const accountsYAML = `
controllers:
  foo:
    user: admin
    password: hunter2
`

type storeSuite struct {
	testing.IsolationSuite
	dir   string
	store clientstore.Store
}

var _ = gc.Suite(&storeSuite{})

func (s *storeSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.dir = c.MkDir()
	s.PatchEnvironment("JUJU_DATA", s.dir)
	s.writeFile(c, "controllers.yaml", controllersYAML)
	s.writeFile(c, "models.yaml", modelsYAML)
	s.writeFile(c, "accounts.yaml", accountsYAML)
	s.store = clientstore.NewFileStore()
}

func (s *storeSuite) writeFile(c *gc.C, name, content string) {
	err := os.WriteFile(filepath.Join(s.dir, name), []byte(content), 0600)
	c.Assert(err, jc.ErrorIsNil)
}

func (s *storeSuite) TestJujuDataDir(c *gc.C) {
	c.Check(clientstore.JujuDataDir(), gc.Equals, s.dir)
	c.Check(clientstore.ControllersPath(), gc.Equals, filepath.Join(s.dir, "controllers.yaml"))
}

func (s *storeSuite) TestCurrentController(c *gc.C) {
	name, err := s.store.CurrentController()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(name, gc.Equals, "foo")
}

func (s *storeSuite) TestCurrentControllerNotSet(c *gc.C) {
	s.writeFile(c, "controllers.yaml", "controllers:\n  foo:\n    uuid: deadbeef-1bad-500d-9000-4b1d0d06f00d\n")
	_, err := s.store.CurrentController()
	c.Assert(err, jc.Satisfies, errors.IsNotFound)
	c.Assert(err, gc.ErrorMatches, "current controller not found")
}

func (s *storeSuite) TestControllerByName(c *gc.C) {
	details, err := s.store.ControllerByName("foo")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(details, jc.DeepEquals, &clientstore.ControllerDetails{
		ControllerUUID: "deadbeef-1bad-500d-9000-4b1d0d06f00d",
		APIEndpoints:   []string{"10.0.0.1:17070", "10.0.0.2:17070"},
		CACert:         "fake-cert",
	})
}

func (s *storeSuite) TestControllerByNameNotFound(c *gc.C) {
	_, err := s.store.ControllerByName("bar")
	c.Assert(err, jc.Satisfies, errors.IsNotFound)
	c.Assert(err, gc.ErrorMatches, "controller bar not found")
}

func (s *storeSuite) TestControllerByNameEmpty(c *gc.C) {
	_, err := s.store.ControllerByName("")
	c.Assert(err, jc.Satisfies, errors.IsNotValid)
}

func (s *storeSuite) TestCurrentModel(c *gc.C) {
	name, err := s.store.CurrentModel("foo")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(name, gc.Equals, "admin/default")
}

func (s *storeSuite) TestCurrentModelNotFound(c *gc.C) {
	_, err := s.store.CurrentModel("bar")
	c.Assert(err, jc.Satisfies, errors.IsNotFound)
	c.Assert(err, gc.ErrorMatches, "current model for controller bar not found")
}

func (s *storeSuite) TestModelByName(c *gc.C) {
	details, err := s.store.ModelByName("foo", "admin/test")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(details.ModelUUID, gc.Equals, "feedface-0bad-400d-8000-4b1d0d06f00d")
}

func (s *storeSuite) TestModelByNameNotFound(c *gc.C) {
	_, err := s.store.ModelByName("foo", "admin/nope")
	c.Assert(err, jc.Satisfies, errors.IsNotFound)
	c.Assert(err, gc.ErrorMatches, "model foo:admin/nope not found")
}

func (s *storeSuite) TestAccountDetails(c *gc.C) {
	details, err := s.store.AccountDetails("foo")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(details, jc.DeepEquals, &clientstore.AccountDetails{
		User:     "admin",
		Password: "hunter2",
	})
}

func (s *storeSuite) TestAccountDetailsNotFound(c *gc.C) {
	_, err := s.store.AccountDetails("bar")
	c.Assert(err, jc.Satisfies, errors.IsNotFound)
}

func (s *storeSuite) TestMissingFilesAreEmpty(c *gc.C) {
	s.PatchEnvironment("JUJU_DATA", c.MkDir())
	_, err := s.store.CurrentController()
	c.Assert(err, jc.Satisfies, errors.IsNotFound)
	_, err = s.store.CurrentModel("foo")
	c.Assert(err, jc.Satisfies, errors.IsNotFound)
	_, err = s.store.AccountDetails("foo")
	c.Assert(err, jc.Satisfies, errors.IsNotFound)
}

func (s *storeSuite) TestConnectionInfoCurrent(c *gc.C) {
	info, err := clientstore.ConnectionInfo(s.store, "", "")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(info.Addrs, jc.DeepEquals, []string{"10.0.0.1:17070", "10.0.0.2:17070"})
	c.Check(info.CACert, gc.Equals, "fake-cert")
	c.Check(info.ModelUUID, gc.Equals, "deadbeef-0bad-400d-8000-4b1d0d06f00d")
	c.Check(info.Tag, gc.Equals, names.NewUserTag("admin"))
	c.Check(info.Password, gc.Equals, "hunter2")
	c.Check(info.Validate(), jc.ErrorIsNil)
}

func (s *storeSuite) TestConnectionInfoExplicit(c *gc.C) {
	info, err := clientstore.ConnectionInfo(s.store, "foo", "admin/test")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(info.ModelUUID, gc.Equals, "feedface-0bad-400d-8000-4b1d0d06f00d")
}

func (s *storeSuite) TestConnectionInfoNoCurrentController(c *gc.C) {
	s.PatchEnvironment("JUJU_DATA", c.MkDir())
	_, err := clientstore.ConnectionInfo(s.store, "", "")
	c.Assert(err, jc.Satisfies, errors.IsNotFound)
}

func (s *storeSuite) TestConnectionInfoUnknownModel(c *gc.C) {
	_, err := clientstore.ConnectionInfo(s.store, "foo", "admin/nope")
	c.Assert(err, jc.Satisfies, errors.IsNotFound)
}
