// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package model

import (
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/mirror/params"
)

type translateSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&translateSuite{})

func (s *translateSuite) TestChange(c *gc.C) {
	delta, err := translateDelta(params.Delta{
		Kind: params.KindMachine,
		Data: map[string]interface{}{"id": "42", "life": "alive"},
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(delta, jc.DeepEquals, Delta{
		Kind: params.KindMachine,
		Verb: params.DeltaChange,
		Id:   "42",
		Data: map[string]interface{}{"id": "42", "life": "alive"},
	})
}

func (s *translateSuite) TestRemoveDropsPayload(c *gc.C) {
	delta, err := translateDelta(params.Delta{
		Kind:    params.KindMachine,
		Removed: true,
		Data:    map[string]interface{}{"id": "42", "life": "dead"},
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(delta, jc.DeepEquals, Delta{
		Kind: params.KindMachine,
		Verb: params.DeltaRemove,
		Id:   "42",
	})
	c.Assert(delta.Validate(), jc.ErrorIsNil)
}

func (s *translateSuite) TestIdentityFieldPerKind(c *gc.C) {
	for i, test := range []struct {
		kind string
		data map[string]interface{}
		id   string
	}{
		{params.KindMachine, map[string]interface{}{"id": "0"}, "0"},
		{params.KindApplication, map[string]interface{}{"name": "wordpress"}, "wordpress"},
		{params.KindUnit, map[string]interface{}{"name": "wordpress/0"}, "wordpress/0"},
		{params.KindRelation, map[string]interface{}{"key": "wordpress:db mysql:db"}, "wordpress:db mysql:db"},
		{params.KindAnnotation, map[string]interface{}{"tag": "machine-0"}, "machine-0"},
		{params.KindModel, map[string]interface{}{"model-uuid": "some-uuid"}, "some-uuid"},
	} {
		c.Logf("test %d: %s", i, test.kind)
		delta, err := translateDelta(params.Delta{Kind: test.kind, Data: test.data})
		c.Assert(err, jc.ErrorIsNil)
		c.Check(delta.Id, gc.Equals, test.id)
	}
}

func (s *translateSuite) TestMissingIdentity(c *gc.C) {
	_, err := translateDelta(params.Delta{
		Kind: params.KindMachine,
		Data: map[string]interface{}{"life": "alive"},
	})
	c.Check(err, jc.Satisfies, errors.IsNotValid)
	c.Check(err, gc.ErrorMatches, `machine delta missing "id" not valid`)
}

func (s *translateSuite) TestEmptyPayload(c *gc.C) {
	_, err := translateDelta(params.Delta{Kind: params.KindMachine})
	c.Check(err, jc.Satisfies, errors.IsNotValid)
	c.Check(err, gc.ErrorMatches, "machine delta with no data not valid")
}

func (s *translateSuite) TestTranslatedDeltasValidate(c *gc.C) {
	for _, wire := range []params.Delta{
		{Kind: params.KindMachine, Data: map[string]interface{}{"id": "0"}},
		{Kind: params.KindMachine, Removed: true, Data: map[string]interface{}{"id": "0"}},
		{Kind: params.KindApplication, Data: map[string]interface{}{"name": "wordpress"}},
	} {
		delta, err := translateDelta(wire)
		c.Assert(err, jc.ErrorIsNil)
		c.Check(delta.Validate(), jc.ErrorIsNil)
	}
}
