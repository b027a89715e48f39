// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package model_test

import (
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/mirror/core/life"
	"github.com/juju/mirror/model"
	"github.com/juju/mirror/params"
)

type entitySuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&entitySuite{})

// newMachine returns the live edge view of a machine with one
// snapshot of the given data.
func (s *entitySuite) newMachine(c *gc.C, data map[string]interface{}) (*model.State, *model.Entity) {
	st := model.NewState(0)
	_, latest, err := st.Apply(machineChange("0", data))
	c.Assert(err, jc.ErrorIsNil)
	return st, latest
}

func (s *entitySuite) TestField(c *gc.C) {
	_, entity := s.newMachine(c, map[string]interface{}{"life": "alive", "series": "jammy"})

	value, err := entity.Field("series")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(value, gc.Equals, "jammy")

	_, err = entity.Field("missing")
	c.Check(err, jc.Satisfies, errors.IsNotFound)
	c.Check(err, gc.ErrorMatches, `field "missing" of machine:0 not found`)
}

func (s *entitySuite) TestStringField(c *gc.C) {
	_, entity := s.newMachine(c, map[string]interface{}{"series": "jammy", "count": 3.0})

	value, err := entity.StringField("series")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(value, gc.Equals, "jammy")

	_, err = entity.StringField("count")
	c.Check(err, jc.Satisfies, errors.IsNotValid)
	c.Check(err, gc.ErrorMatches, `field "count" of machine:0 holding float64 not valid`)
}

func (s *entitySuite) TestBoolField(c *gc.C) {
	_, entity := s.newMachine(c, map[string]interface{}{"exposed": true, "series": "jammy"})

	value, err := entity.BoolField("exposed")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(value, jc.IsTrue)

	_, err = entity.BoolField("series")
	c.Check(err, jc.Satisfies, errors.IsNotValid)
}

func (s *entitySuite) TestStatusField(c *gc.C) {
	_, entity := s.newMachine(c, map[string]interface{}{
		"agent-status": map[string]interface{}{"current": "idle", "message": ""},
		"series":       "jammy",
	})

	value, err := entity.StatusField("agent-status")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(value, gc.Equals, "idle")

	_, err = entity.StatusField("series")
	c.Check(err, jc.Satisfies, errors.IsNotValid)
	_, err = entity.StatusField("missing")
	c.Check(err, jc.Satisfies, errors.IsNotFound)
}

func (s *entitySuite) TestLife(c *gc.C) {
	_, entity := s.newMachine(c, map[string]interface{}{"life": "dying"})
	value, err := entity.Life()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(value, gc.Equals, life.Dying)
}

func (s *entitySuite) TestLifeInvalid(c *gc.C) {
	_, entity := s.newMachine(c, map[string]interface{}{"life": "zombie"})
	_, err := entity.Life()
	c.Check(err, jc.Satisfies, errors.IsNotValid)
	c.Check(err, gc.ErrorMatches, `life value "zombie" not valid`)
}

// TestDeadAccess checks that every accessor refuses a view resolved
// to a tombstone with a DeadEntityError, whatever the field asked for.
func (s *entitySuite) TestDeadAccess(c *gc.C) {
	st, _ := s.newMachine(c, map[string]interface{}{"life": "alive"})
	_, latest, err := st.Apply(machineRemove("0"))
	c.Assert(err, jc.ErrorIsNil)

	_, err = latest.Data()
	c.Check(err, jc.Satisfies, model.IsDeadEntity)
	c.Check(err, gc.ErrorMatches,
		"entity machine:0 is dead - its attributes can no longer be accessed; "+
			"use Previous to reach the last recorded state")

	_, err = latest.Field("life")
	c.Check(err, jc.Satisfies, model.IsDeadEntity)
	_, err = latest.StringField("life")
	c.Check(err, jc.Satisfies, model.IsDeadEntity)
	_, err = latest.BoolField("exposed")
	c.Check(err, jc.Satisfies, model.IsDeadEntity)
	_, err = latest.StatusField("agent-status")
	c.Check(err, jc.Satisfies, model.IsDeadEntity)
	_, err = latest.Life()
	c.Check(err, jc.Satisfies, model.IsDeadEntity)
}

func (s *entitySuite) TestIsDeadEntity(c *gc.C) {
	err := error(&model.DeadEntityError{Kind: "machine", Id: "0"})
	c.Check(model.IsDeadEntity(err), jc.IsTrue)
	c.Check(model.IsDeadEntity(errors.Trace(err)), jc.IsTrue)
	c.Check(model.IsDeadEntity(errors.New("machine is dead")), jc.IsFalse)
	c.Check(model.IsDeadEntity(nil), jc.IsFalse)
}

func (s *entitySuite) TestDeadEntityHistoryReadable(c *gc.C) {
	st, _ := s.newMachine(c, map[string]interface{}{"life": "alive"})
	_, _, err := st.Apply(machineRemove("0"))
	c.Assert(err, jc.ErrorIsNil)

	// The step before the tombstone still serves the final state,
	// even though the entity as a whole is dead.
	view := st.Entity(params.KindMachine, "0", -2, false)
	c.Assert(view, gc.NotNil)
	c.Check(view.Dead(), jc.IsTrue)
	value, err := view.Life()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(value, gc.Equals, life.Alive)
}

func (s *entitySuite) threeSnapshots(c *gc.C) *model.State {
	st := model.NewState(0)
	for _, step := range []string{"1", "2", "3"} {
		_, _, err := st.Apply(machineChange("0", map[string]interface{}{"life": "alive", "step": step}))
		c.Assert(err, jc.ErrorIsNil)
	}
	return st
}

func (s *entitySuite) step(c *gc.C, view *model.Entity) string {
	value, err := view.StringField("step")
	c.Assert(err, jc.ErrorIsNil)
	return value
}

func (s *entitySuite) TestPrevious(c *gc.C) {
	st := s.threeSnapshots(c)
	latest := st.Entity(params.KindMachine, "0", model.Current, true)
	c.Assert(latest, gc.NotNil)

	prev := latest.Previous()
	c.Assert(prev, gc.NotNil)
	c.Check(prev.Index(), gc.Equals, 1)
	c.Check(prev.Connected(), jc.IsFalse)
	c.Check(s.step(c, prev), gc.Equals, "2")

	first := prev.Previous()
	c.Assert(first, gc.NotNil)
	c.Check(first.Index(), gc.Equals, 0)
	c.Check(s.step(c, first), gc.Equals, "1")

	// There is nothing before the first snapshot.
	c.Check(first.Previous(), gc.IsNil)
}

func (s *entitySuite) TestNext(c *gc.C) {
	st := s.threeSnapshots(c)
	first := st.Entity(params.KindMachine, "0", 0, false)
	c.Assert(first, gc.NotNil)

	mid := first.Next()
	c.Assert(mid, gc.NotNil)
	c.Check(mid.Index(), gc.Equals, 1)
	c.Check(mid.Connected(), jc.IsFalse)
	c.Check(s.step(c, mid), gc.Equals, "2")

	// The step onto the latest snapshot reconnects the view.
	last := mid.Next()
	c.Assert(last, gc.NotNil)
	c.Check(last.Index(), gc.Equals, 2)
	c.Check(last.Connected(), jc.IsTrue)
	c.Check(s.step(c, last), gc.Equals, "3")

	c.Check(last.Next(), gc.IsNil)
}

func (s *entitySuite) TestNextFromCurrent(c *gc.C) {
	st := s.threeSnapshots(c)
	latest := st.Entity(params.KindMachine, "0", model.Current, true)
	c.Check(latest.Next(), gc.IsNil)
}

func (s *entitySuite) TestNavigationRoundTrip(c *gc.C) {
	st := s.threeSnapshots(c)
	view := st.Entity(params.KindMachine, "0", 1, false)
	c.Assert(view, gc.NotNil)

	forward := view.Next().Previous()
	c.Assert(forward, gc.NotNil)
	c.Check(forward.Index(), gc.Equals, 1)
	c.Check(s.step(c, forward), gc.Equals, "2")

	backward := view.Previous().Next()
	c.Assert(backward, gc.NotNil)
	c.Check(backward.Index(), gc.Equals, 1)
	c.Check(s.step(c, backward), gc.Equals, "2")
}

func (s *entitySuite) TestLatest(c *gc.C) {
	st := s.threeSnapshots(c)
	latest := st.Entity(params.KindMachine, "0", model.Current, true)
	c.Check(latest.Latest(), gc.Equals, latest)

	view := st.Entity(params.KindMachine, "0", 0, false)
	fresh := view.Latest()
	c.Assert(fresh, gc.NotNil)
	c.Check(fresh.Current(), jc.IsTrue)
	c.Check(fresh.Connected(), jc.IsTrue)
	c.Check(s.step(c, fresh), gc.Equals, "3")
}

// TestCurrentViewFloats checks that a Current view resolves whatever
// the latest snapshot is at read time, while an indexed view stays
// fixed.
func (s *entitySuite) TestCurrentViewFloats(c *gc.C) {
	st, latest := s.newMachine(c, map[string]interface{}{"life": "alive"})
	fixed := st.Entity(params.KindMachine, "0", 0, false)

	_, _, err := st.Apply(machineChange("0", map[string]interface{}{"life": "dying"}))
	c.Assert(err, jc.ErrorIsNil)

	value, err := latest.Life()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(value, gc.Equals, life.Dying)

	value, err = fixed.Life()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(value, gc.Equals, life.Alive)
}

func (s *entitySuite) TestTrimRebasesIndexes(c *gc.C) {
	st := model.NewState(2)
	for _, step := range []string{"1", "2", "3"} {
		_, _, err := st.Apply(machineChange("0", map[string]interface{}{"step": step}))
		c.Assert(err, jc.ErrorIsNil)
	}

	// Trimming drops the oldest snapshots, so absolute indexes now
	// address the retained window.
	view := st.Entity(params.KindMachine, "0", 0, false)
	c.Assert(view, gc.NotNil)
	c.Check(s.step(c, view), gc.Equals, "2")
	view = st.Entity(params.KindMachine, "0", 1, false)
	c.Assert(view, gc.NotNil)
	c.Check(s.step(c, view), gc.Equals, "3")
	c.Check(st.Entity(params.KindMachine, "0", 2, false), gc.IsNil)
}
