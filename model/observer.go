// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package model

import (
	"fmt"
	"sync"

	"github.com/juju/pubsub/v2"

	"github.com/juju/mirror/params"
)

// modelChangeTopic carries every applied delta to registered
// observers.
const modelChangeTopic = "model.change"

// entityTopic names the per-entity topic changes are also published
// on, so watchers of a single entity need not filter the full stream.
func entityTopic(kind, id string) string {
	return fmt.Sprintf("model.entity.%s.%s", kind, id)
}

// Change describes one applied delta together with consistent views of
// the entity before and after it.
type Change struct {
	// Delta is the translated delta that was applied.
	Delta Delta
	// Old is a fixed view of the entity's state before the delta,
	// nil when the delta introduced the entity.
	Old *Entity
	// New is a connected view of the entity after the delta. It is
	// never nil but is dead when the delta was a removal.
	New *Entity
	// Model is the model the change belongs to.
	Model *Model
}

// Transition returns the verb observers dispatch on: add when the
// delta introduced the entity, otherwise the delta's own verb.
func (c Change) Transition() string {
	if c.Old == nil && c.New != nil {
		return params.DeltaAdd
	}
	return c.Delta.Verb
}

// Observer is notified of every change applied to the model. Notify is
// called once per change, in order, from the observer's own goroutine;
// distinct observers run concurrently with each other. A returned
// error is logged and counted, never propagated.
type Observer interface {
	Notify(Change) error
}

// NotifyFunc handles a single model change.
type NotifyFunc func(Change) error

// Transition keys a dispatch table entry by entity kind and observed
// verb.
type Transition struct {
	Kind string
	Verb string
}

// DispatchObserver routes changes to per-transition handlers, so a
// concrete observer implements only the transitions it cares about.
// Changes matching no entry go to the default handler, or are ignored
// when there is none.
type DispatchObserver struct {
	handlers map[Transition]NotifyFunc
	fallback NotifyFunc
}

// NewDispatchObserver builds an observer over a fixed dispatch table.
// The table is copied; later mutation of handlers has no effect.
func NewDispatchObserver(handlers map[Transition]NotifyFunc, fallback NotifyFunc) *DispatchObserver {
	table := make(map[Transition]NotifyFunc, len(handlers))
	for transition, fn := range handlers {
		table[transition] = fn
	}
	return &DispatchObserver{handlers: table, fallback: fallback}
}

// Notify is part of the Observer interface.
func (o *DispatchObserver) Notify(change Change) error {
	key := Transition{Kind: change.Delta.Kind, Verb: change.Transition()}
	if fn, ok := o.handlers[key]; ok {
		return fn(change)
	}
	if o.fallback != nil {
		return o.fallback(change)
	}
	return nil
}

// observerRegistry tracks registered observers as hub subscriptions.
// Each observer gets its own subscription, which gives it its own
// delivery goroutine and per-observer ordering.
type observerRegistry struct {
	hub     *pubsub.SimpleHub
	metrics *Collector

	mu     sync.Mutex
	unsubs map[Observer]func()
}

func newObserverRegistry(hub *pubsub.SimpleHub, metrics *Collector) *observerRegistry {
	return &observerRegistry{
		hub:     hub,
		metrics: metrics,
		unsubs:  make(map[Observer]func()),
	}
}

// add registers an observer. Registering one a second time is a no-op.
func (r *observerRegistry) add(observer Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.unsubs[observer]; ok {
		return
	}
	r.unsubs[observer] = r.hub.Subscribe(modelChangeTopic, func(topic string, data interface{}) {
		change, ok := data.(Change)
		if !ok {
			logger.Criticalf("programming error: topic data expected Change, got %T", data)
			return
		}
		if err := observer.Notify(change); err != nil {
			logger.Errorf("observer failed for %s %s %s: %v",
				change.Delta.Kind, change.Delta.Verb, change.Delta.Id, err)
			r.metrics.observerErrors.Inc()
		}
	})
}

// remove deregisters an observer; unknown observers are ignored.
// In-flight notifications already queued to the observer may still be
// delivered.
func (r *observerRegistry) remove(observer Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if unsub, ok := r.unsubs[observer]; ok {
		unsub()
		delete(r.unsubs, observer)
	}
}

// publish fans a change out to every registered observer and to the
// entity's own topic, returning a completion signal per topic. The
// signals fire once every subscriber has processed the change.
func (r *observerRegistry) publish(change Change) []<-chan struct{} {
	return []<-chan struct{}{
		published(r.hub.Publish(modelChangeTopic, change)),
		published(r.hub.Publish(entityTopic(change.Delta.Kind, change.Delta.Id), change)),
	}
}

// published adapts the hub's blocking wait function into the completion
// channel the watch loop tracks; the channel closes once every
// subscriber has processed the publication.
func published(wait func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		wait()
	}()
	return done
}
