// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package model

import (
	"sync"

	"github.com/juju/errors"
	"github.com/juju/worker/v4/catacomb"

	"github.com/juju/mirror/params"
)

// allWatcher is the remote watcher surface the loop consumes.
type allWatcher interface {
	Next() ([]params.Delta, error)
	Stop() error
}

// watchConn is a dedicated api connection owning an all-watcher. The
// loop closes it on the way out.
type watchConn interface {
	WatchAll() (allWatcher, error)
	Close() error
}

// watcherConfig holds the dependencies of the watch loop.
type watcherConfig struct {
	state   *State
	model   *Model
	conn    watchConn
	publish func(Change) []<-chan struct{}
	metrics *Collector
}

// Validate returns an error if the config cannot drive a watcher.
func (config watcherConfig) Validate() error {
	if config.state == nil {
		return errors.NotValidf("nil state")
	}
	if config.model == nil {
		return errors.NotValidf("nil model")
	}
	if config.conn == nil {
		return errors.NotValidf("nil conn")
	}
	if config.publish == nil {
		return errors.NotValidf("nil publish")
	}
	if config.metrics == nil {
		return errors.NotValidf("nil metrics")
	}
	return nil
}

// watcher drives the all-watcher delta stream into the state store and
// fans each change out to observers. Transport errors kill the loop;
// reconnecting is the caller's business.
type watcher struct {
	catacomb catacomb.Catacomb
	config   watcherConfig

	synced     chan struct{}
	syncedOnce sync.Once

	// pending holds completion signals for published notifications.
	// Shutdown joins on every one of them before Wait returns, so
	// observers always see the notifications that were already
	// published.
	pending []<-chan struct{}
}

func newWatcher(config watcherConfig) (*watcher, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	w := &watcher{
		config: config,
		synced: make(chan struct{}),
	}
	err := catacomb.Invoke(catacomb.Plan{
		Site: &w.catacomb,
		Work: w.loop,
	})
	return w, errors.Trace(err)
}

// Kill is part of the worker.Worker interface.
func (w *watcher) Kill() {
	w.catacomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (w *watcher) Wait() error {
	return w.catacomb.Wait()
}

// Synced is closed once the first batch of deltas has been applied.
func (w *watcher) Synced() <-chan struct{} {
	return w.synced
}

type batch struct {
	deltas []params.Delta
	err    error
}

func (w *watcher) loop() error {
	defer func() {
		if err := w.config.conn.Close(); err != nil {
			logger.Debugf("closing watch connection: %v", err)
		}
	}()

	aw, err := w.config.conn.WatchAll()
	if err != nil {
		return errors.Annotate(err, "cannot start all-watcher")
	}

	batches := make(chan batch)
	feederDone := make(chan struct{})
	go func() {
		defer close(feederDone)
		for {
			deltas, err := aw.Next()
			select {
			case batches <- batch{deltas: deltas, err: err}:
			case <-w.catacomb.Dying():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	defer func() {
		// Stopping the remote watcher unblocks a Next call that is
		// waiting server side.
		if err := aw.Stop(); err != nil {
			logger.Debugf("stopping all-watcher: %v", err)
		}
	drain:
		for {
			select {
			case <-feederDone:
				break drain
			case <-batches:
			}
		}
		w.waitPending()
	}()

	for {
		select {
		case <-w.catacomb.Dying():
			return w.catacomb.ErrDying()
		case b := <-batches:
			if b.err != nil {
				return errors.Annotate(b.err, "all-watcher next failed")
			}
			if err := w.handleBatch(b.deltas); err != nil {
				return errors.Trace(err)
			}
			w.syncedOnce.Do(func() { close(w.synced) })
		}
	}
}

// handleBatch applies a batch of deltas in order and publishes a
// change per delta. A delta that cannot be translated or applied kills
// the loop; history must not be silently corrupted.
func (w *watcher) handleBatch(deltas []params.Delta) error {
	w.config.metrics.batches.Inc()
	for _, p := range deltas {
		delta, err := translateDelta(p)
		if err != nil {
			return errors.Annotatef(err, "cannot translate %s delta", p.Kind)
		}
		old, latest, err := w.config.state.Apply(delta)
		if err != nil {
			return errors.Trace(err)
		}
		logger.Debugf("model changed: %s %s %s", delta.Kind, delta.Verb, delta.Id)
		change := Change{Delta: delta, Old: old, New: latest, Model: w.config.model}
		w.pending = append(w.pending, w.config.publish(change)...)
		w.config.metrics.deltas.WithLabelValues(delta.Kind, delta.Verb).Inc()
	}
	w.sweepPending()
	return nil
}

// sweepPending drops completion signals that have already fired so
// pending only tracks in-flight notifications.
func (w *watcher) sweepPending() {
	pending := w.pending[:0]
	for _, done := range w.pending {
		select {
		case <-done:
		default:
			pending = append(pending, done)
		}
	}
	w.pending = pending
	w.config.metrics.inflight.Set(float64(len(pending)))
}

// waitPending blocks until every published notification has been
// processed by all subscribers.
func (w *watcher) waitPending() {
	for _, done := range w.pending {
		<-done
	}
	w.pending = nil
	w.config.metrics.inflight.Set(0)
}
