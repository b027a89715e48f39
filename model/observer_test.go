// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package model_test

import (
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/errors"

	"github.com/juju/mirror/model"
	"github.com/juju/mirror/params"
)

type dispatchSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&dispatchSuite{})

// change applies a delta to st and pairs it with the resulting views,
// the way the watch loop builds the changes it publishes.
func (s *dispatchSuite) change(c *gc.C, st *model.State, delta model.Delta) model.Change {
	old, latest, err := st.Apply(delta)
	c.Assert(err, jc.ErrorIsNil)
	return model.Change{Delta: delta, Old: old, New: latest}
}

func (s *dispatchSuite) TestTransitionDerivesAdd(c *gc.C) {
	st := model.NewState(0)
	first := s.change(c, st, machineChange("0", map[string]interface{}{"life": "alive"}))
	c.Check(first.Old, gc.IsNil)
	c.Check(first.Transition(), gc.Equals, params.DeltaAdd)

	second := s.change(c, st, machineChange("0", map[string]interface{}{"life": "dying"}))
	c.Check(second.Old, gc.NotNil)
	c.Check(second.Transition(), gc.Equals, params.DeltaChange)

	removed := s.change(c, st, machineRemove("0"))
	c.Check(removed.Transition(), gc.Equals, params.DeltaRemove)
}

func (s *dispatchSuite) TestDispatchExact(c *gc.C) {
	var adds, changes, removes, fallbacks int
	observer := model.NewDispatchObserver(map[model.Transition]model.NotifyFunc{
		{Kind: params.KindMachine, Verb: params.DeltaAdd}: func(model.Change) error {
			adds++
			return nil
		},
		{Kind: params.KindMachine, Verb: params.DeltaChange}: func(model.Change) error {
			changes++
			return nil
		},
		{Kind: params.KindMachine, Verb: params.DeltaRemove}: func(model.Change) error {
			removes++
			return nil
		},
	}, func(model.Change) error {
		fallbacks++
		return nil
	})

	st := model.NewState(0)
	c.Assert(observer.Notify(s.change(c, st, machineChange("0", map[string]interface{}{"life": "alive"}))), jc.ErrorIsNil)
	c.Assert(observer.Notify(s.change(c, st, machineChange("0", map[string]interface{}{"life": "dying"}))), jc.ErrorIsNil)
	c.Assert(observer.Notify(s.change(c, st, machineRemove("0"))), jc.ErrorIsNil)

	c.Check(adds, gc.Equals, 1)
	c.Check(changes, gc.Equals, 1)
	c.Check(removes, gc.Equals, 1)
	c.Check(fallbacks, gc.Equals, 0)
}

func (s *dispatchSuite) TestDispatchFallback(c *gc.C) {
	var fallbacks int
	observer := model.NewDispatchObserver(nil, func(change model.Change) error {
		fallbacks++
		c.Check(change.Delta.Kind, gc.Equals, params.KindApplication)
		return nil
	})

	st := model.NewState(0)
	delta := model.Delta{
		Kind: params.KindApplication,
		Verb: params.DeltaChange,
		Id:   "wordpress",
		Data: map[string]interface{}{"life": "alive"},
	}
	c.Assert(observer.Notify(s.change(c, st, delta)), jc.ErrorIsNil)
	c.Check(fallbacks, gc.Equals, 1)
}

func (s *dispatchSuite) TestDispatchNoHandlers(c *gc.C) {
	observer := model.NewDispatchObserver(nil, nil)
	st := model.NewState(0)
	err := observer.Notify(s.change(c, st, machineChange("0", map[string]interface{}{"life": "alive"})))
	c.Check(err, jc.ErrorIsNil)
}

func (s *dispatchSuite) TestDispatchError(c *gc.C) {
	observer := model.NewDispatchObserver(map[model.Transition]model.NotifyFunc{
		{Kind: params.KindMachine, Verb: params.DeltaAdd}: func(model.Change) error {
			return errors.New("handler exploded")
		},
	}, nil)
	st := model.NewState(0)
	err := observer.Notify(s.change(c, st, machineChange("0", map[string]interface{}{"life": "alive"})))
	c.Check(err, gc.ErrorMatches, "handler exploded")
}

// TestDispatchCoversKindsAndVerbs walks every kind and verb pairing
// through a full dispatch table and checks each handler fires exactly
// once with correctly paired views.
func (s *dispatchSuite) TestDispatchCoversKindsAndVerbs(c *gc.C) {
	kinds := []string{params.KindMachine, params.KindApplication, params.KindUnit}
	verbs := []string{params.DeltaAdd, params.DeltaChange, params.DeltaRemove}

	counts := make(map[model.Transition]int)
	handlers := make(map[model.Transition]model.NotifyFunc)
	for _, kind := range kinds {
		for _, verb := range verbs {
			key := model.Transition{Kind: kind, Verb: verb}
			handlers[key] = func(change model.Change) error {
				counts[key]++
				switch key.Verb {
				case params.DeltaAdd:
					c.Check(change.Old, gc.IsNil)
					c.Check(change.New.Alive(), jc.IsTrue)
				case params.DeltaChange:
					c.Check(change.Old, gc.NotNil)
					c.Check(change.New.Alive(), jc.IsTrue)
				case params.DeltaRemove:
					c.Check(change.Old, gc.NotNil)
					c.Check(change.New.Dead(), jc.IsTrue)
				}
				return nil
			}
		}
	}
	observer := model.NewDispatchObserver(handlers, func(change model.Change) error {
		c.Errorf("fallback hit for %s %s", change.Delta.Kind, change.Transition())
		return nil
	})

	st := model.NewState(0)
	for _, kind := range kinds {
		for _, delta := range []model.Delta{
			{Kind: kind, Verb: params.DeltaChange, Id: "7", Data: map[string]interface{}{"life": "alive"}},
			{Kind: kind, Verb: params.DeltaChange, Id: "7", Data: map[string]interface{}{"life": "dying"}},
			{Kind: kind, Verb: params.DeltaRemove, Id: "7"},
		} {
			c.Assert(observer.Notify(s.change(c, st, delta)), jc.ErrorIsNil)
		}
	}

	for _, kind := range kinds {
		for _, verb := range verbs {
			c.Check(counts[model.Transition{Kind: kind, Verb: verb}], gc.Equals, 1)
		}
	}
}

func (s *dispatchSuite) TestTableCopiedAtConstruction(c *gc.C) {
	var hits int
	handlers := map[model.Transition]model.NotifyFunc{
		{Kind: params.KindMachine, Verb: params.DeltaAdd}: func(model.Change) error {
			hits++
			return nil
		},
	}
	observer := model.NewDispatchObserver(handlers, nil)
	delete(handlers, model.Transition{Kind: params.KindMachine, Verb: params.DeltaAdd})

	st := model.NewState(0)
	c.Assert(observer.Notify(s.change(c, st, machineChange("0", map[string]interface{}{"life": "alive"}))), jc.ErrorIsNil)
	c.Check(hits, gc.Equals, 1)
}
