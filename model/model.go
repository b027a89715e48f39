// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package model mirrors the live state of a remote model. A connected
// Model holds a full entity history fed by the controller's
// all-watcher, fans every change out to registered observers, and
// exposes the admin operations used to drive the model from a client.
package model

import (
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/pubsub/v2"
	"github.com/juju/retry"
	"github.com/juju/worker/v4"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v2"

	"github.com/juju/mirror/api"
	"github.com/juju/mirror/clientstore"
	"github.com/juju/mirror/params"
)

var logger = loggo.GetLogger("juju.mirror.model")

// pollInterval is how often BlockUntil re-evaluates its conditions.
const pollInterval = 100 * time.Millisecond

// Opener opens an api connection from dial information. It exists so
// tests can substitute the dialing layer.
type Opener func(*api.Info) (api.Connection, error)

// ModelConfig configures a Model.
type ModelConfig struct {
	// Opener opens api connections. api.Open with default dial
	// options is used when nil.
	Opener Opener

	// Store resolves controller, model and account names for
	// ConnectCurrent and ConnectModel. The file store under
	// JUJU_DATA is used when nil.
	Store clientstore.Store

	// Clock supplies time for polling waits; clock.WallClock when
	// nil.
	Clock clock.Clock

	// Registerer, when set, has the model's metrics registered on it
	// for the lifetime of each connection.
	Registerer prometheus.Registerer

	// MaxHistory bounds the snapshots retained per entity; zero
	// retains everything.
	MaxHistory int
}

// Validate returns an error if the config cannot be used.
func (config ModelConfig) Validate() error {
	if config.MaxHistory < 0 {
		return errors.NotValidf("negative MaxHistory")
	}
	return nil
}

// Model mirrors a remote model. Create one with NewModel, then Connect
// it; entity accessors and observers work against the mirrored state
// while the admin operations call through to the controller.
type Model struct {
	config    ModelConfig
	state     *State
	hub       *pubsub.SimpleHub
	metrics   *Collector
	observers *observerRegistry

	mu      sync.Mutex
	conn    api.Connection
	client  *api.Client
	watcher *watcher
}

// NewModel returns a disconnected Model.
func NewModel(config ModelConfig) (*Model, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	hub := pubsub.NewSimpleHub(&pubsub.SimpleHubConfig{
		Logger: loggo.GetLogger("juju.mirror.model.hub"),
	})
	metrics := NewMetricsCollector()
	return &Model{
		config:    config,
		state:     NewState(config.MaxHistory),
		hub:       hub,
		metrics:   metrics,
		observers: newObserverRegistry(hub, metrics),
	}, nil
}

// State returns the model's entity state store.
func (m *Model) State() *State {
	return m.state
}

// IsConnected reports whether the model currently holds a connection.
func (m *Model) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// Connection returns the primary api connection, or nil when
// disconnected.
func (m *Model) Connection() api.Connection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn
}

// Connect dials the controller described by info, starts the watch
// loop on a dedicated clone of the connection and waits until the
// first batch of deltas has been applied, so the mirrored state is
// populated when Connect returns. Connecting a connected model is an
// error.
func (m *Model) Connect(info *api.Info) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		return errors.AlreadyExistsf("model connection")
	}
	if m.config.Registerer != nil {
		if err := m.config.Registerer.Register(m.metrics); err != nil {
			return errors.Annotate(err, "cannot register metrics")
		}
	}
	conn, err := m.open(info)
	if err != nil {
		m.unregisterMetrics()
		return errors.Trace(err)
	}
	w, err := m.startWatcher(conn)
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			logger.Debugf("closing connection after failed connect: %v", cerr)
		}
		m.unregisterMetrics()
		return errors.Trace(err)
	}
	m.conn = conn
	m.client = api.NewClient(conn)
	m.watcher = w
	return nil
}

// ConnectModel connects to the named model on the named controller,
// resolving endpoints and credentials through the client store. Empty
// names mean the store's current controller and model.
func (m *Model) ConnectModel(controllerName, modelName string) error {
	store := m.config.Store
	if store == nil {
		store = clientstore.NewFileStore()
	}
	info, err := clientstore.ConnectionInfo(store, controllerName, modelName)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(m.Connect(info))
}

// ConnectCurrent connects to the user's current model on the current
// controller.
func (m *Model) ConnectCurrent() error {
	return errors.Trace(m.ConnectModel("", ""))
}

// Disconnect stops the watch loop, waiting until every published
// notification has been processed, and closes the connection. It is
// safe to call on a disconnected or never connected model.
func (m *Model) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return nil
	}
	stopErr := worker.Stop(m.watcher)
	closeErr := m.conn.Close()
	m.unregisterMetrics()
	m.conn = nil
	m.client = nil
	m.watcher = nil
	if stopErr != nil {
		return errors.Trace(stopErr)
	}
	return errors.Trace(closeErr)
}

func (m *Model) open(info *api.Info) (api.Connection, error) {
	if m.config.Opener != nil {
		conn, err := m.config.Opener(info)
		return conn, errors.Trace(err)
	}
	conn, err := api.Open(info, api.DefaultDialOpts())
	return conn, errors.Trace(err)
}

func (m *Model) startWatcher(conn api.Connection) (*watcher, error) {
	clone, err := conn.Clone()
	if err != nil {
		return nil, errors.Annotate(err, "cannot open watch connection")
	}
	w, err := newWatcher(watcherConfig{
		state:   m.state,
		model:   m,
		conn:    apiWatchConn{clone},
		publish: m.observers.publish,
		metrics: m.metrics,
	})
	if err != nil {
		if cerr := clone.Close(); cerr != nil {
			logger.Debugf("closing watch connection: %v", cerr)
		}
		return nil, errors.Trace(err)
	}
	deaths := make(chan error, 1)
	go func() {
		deaths <- w.Wait()
	}()
	select {
	case <-w.Synced():
	case err := <-deaths:
		if err == nil {
			err = errors.New("watcher stopped before initial sync")
		}
		return nil, errors.Trace(err)
	}
	return w, nil
}

func (m *Model) unregisterMetrics() {
	if m.config.Registerer != nil {
		m.config.Registerer.Unregister(m.metrics)
	}
}

func (m *Model) clock() clock.Clock {
	if m.config.Clock == nil {
		return clock.WallClock
	}
	return m.config.Clock
}

// apiClient returns the admin facade client for the primary
// connection.
func (m *Model) apiClient() (*api.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil, errors.New("model is not connected")
	}
	return m.client, nil
}

// AddObserver registers an observer for every subsequent change
// applied to the model. Observers survive disconnection.
func (m *Model) AddObserver(observer Observer) {
	m.observers.add(observer)
}

// RemoveObserver deregisters a previously added observer.
func (m *Model) RemoveObserver(observer Observer) {
	m.observers.remove(observer)
}

// Entity returns a connected view of the identified entity at the live
// edge, or nil if the entity has never been seen.
func (m *Model) Entity(kind, id string) *Entity {
	return m.state.Entity(kind, id, Current, true)
}

// Applications returns the live applications, keyed by name.
func (m *Model) Applications() map[string]*Application {
	apps := make(map[string]*Application)
	for name, entity := range m.state.Live(params.KindApplication) {
		apps[name] = &Application{Entity: entity, model: m}
	}
	return apps
}

// Machines returns the live machines, keyed by id.
func (m *Model) Machines() map[string]*Machine {
	machines := make(map[string]*Machine)
	for id, entity := range m.state.Live(params.KindMachine) {
		machines[id] = &Machine{Entity: entity, model: m}
	}
	return machines
}

// Units returns the live units, keyed by name.
func (m *Model) Units() map[string]*Unit {
	units := make(map[string]*Unit)
	for name, entity := range m.state.Live(params.KindUnit) {
		units[name] = &Unit{Entity: entity, model: m}
	}
	return units
}

var errConditionsNotMet = errors.New("conditions not met")

// BlockUntil polls until every condition reports true. A zero or
// negative timeout polls forever; otherwise expiry returns a timeout
// error.
func (m *Model) BlockUntil(timeout time.Duration, conditions ...func() bool) error {
	args := retry.CallArgs{
		Func: func() error {
			for _, condition := range conditions {
				if !condition() {
					return errConditionsNotMet
				}
			}
			return nil
		},
		Clock:    m.clock(),
		Delay:    pollInterval,
		Attempts: -1,
	}
	if timeout > 0 {
		args.MaxDuration = timeout
	}
	err := retry.Call(args)
	if retry.IsDurationExceeded(err) {
		return errors.Timeoutf("waiting for model conditions")
	}
	return errors.Trace(err)
}

// AllUnitsIdle reports whether every live unit's agent is idle. Units
// whose agent status cannot be read are not idle.
func (m *Model) AllUnitsIdle() bool {
	for _, unit := range m.Units() {
		status, err := unit.AgentStatus()
		if err != nil || status != "idle" {
			return false
		}
	}
	return true
}

// Reset destroys every live application and machine in the model and
// waits until the machines are gone. force applies to the machine
// removals.
func (m *Model) Reset(force bool) error {
	for _, name := range m.state.LiveIds(params.KindApplication) {
		app := m.Applications()[name]
		if app == nil {
			continue
		}
		if err := app.Destroy(); err != nil {
			return errors.Annotatef(err, "cannot destroy application %q", name)
		}
	}
	machines := m.state.LiveIds(params.KindMachine)
	if len(machines) > 0 {
		if err := m.DestroyMachines(force, machines...); err != nil {
			return errors.Annotate(err, "cannot destroy machines")
		}
	}
	return errors.Trace(m.BlockUntil(0, func() bool {
		return len(m.state.Live(params.KindMachine)) == 0
	}))
}

// Deploy deploys numUnits of the charm at charmURL as the named
// application. config holds application settings, rendered the way the
// controller expects them.
func (m *Model) Deploy(application, charmURL, channel string, numUnits int, config map[string]interface{}) error {
	client, err := m.apiClient()
	if err != nil {
		return errors.Trace(err)
	}
	args := params.ApplicationDeploy{
		ApplicationName: application,
		CharmURL:        charmURL,
		Channel:         channel,
		NumUnits:        numUnits,
	}
	if len(config) > 0 {
		rendered, err := yaml.Marshal(map[string]map[string]interface{}{
			application: config,
		})
		if err != nil {
			return errors.Annotate(err, "cannot render application config")
		}
		args.ConfigYAML = string(rendered)
	}
	return errors.Trace(client.Deploy(args))
}

// AddRelation relates the given endpoints.
func (m *Model) AddRelation(endpoints ...string) (*params.AddRelationResults, error) {
	client, err := m.apiClient()
	if err != nil {
		return nil, errors.Trace(err)
	}
	results, err := client.AddRelation(endpoints...)
	return results, errors.Trace(err)
}

// AddMachine provisions a single machine, optionally constrained to a
// series, and returns its id.
func (m *Model) AddMachine(series string) (string, error) {
	client, err := m.apiClient()
	if err != nil {
		return "", errors.Trace(err)
	}
	results, err := client.AddMachines([]params.AddMachineParams{{
		Series: series,
		Jobs:   []string{params.JobHostUnits},
	}})
	if err != nil {
		return "", errors.Trace(err)
	}
	if n := len(results); n != 1 {
		return "", errors.Errorf("expected 1 result, got %d", n)
	}
	if results[0].Error != nil {
		return "", errors.Trace(results[0].Error)
	}
	return results[0].Machine, nil
}

// DestroyApplications destroys the named applications.
func (m *Model) DestroyApplications(applications ...string) error {
	client, err := m.apiClient()
	if err != nil {
		return errors.Trace(err)
	}
	for _, application := range applications {
		if err := client.DestroyApplication(application); err != nil {
			return errors.Annotatef(err, "cannot destroy application %q", application)
		}
	}
	return nil
}

// DestroyMachines removes the given machines from the model. force
// also removes any units assigned to them.
func (m *Model) DestroyMachines(force bool, machines ...string) error {
	client, err := m.apiClient()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(client.DestroyMachines(force, machines...))
}

// GrantModel gives a user access to the model.
func (m *Model) GrantModel(user, access string) error {
	client, err := m.apiClient()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(client.GrantModel(user, access))
}

// RevokeModel removes a user's access to the model.
func (m *Model) RevokeModel(user, access string) error {
	client, err := m.apiClient()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(client.RevokeModel(user, access))
}

// ModelGet returns the model's configuration.
func (m *Model) ModelGet() (map[string]interface{}, error) {
	client, err := m.apiClient()
	if err != nil {
		return nil, errors.Trace(err)
	}
	config, err := client.ModelGet()
	return config, errors.Trace(err)
}

// ModelSet sets model configuration values.
func (m *Model) ModelSet(config map[string]interface{}) error {
	client, err := m.apiClient()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(client.ModelSet(config))
}

// Status returns the controller's view of the model's status,
// optionally filtered by the given patterns.
func (m *Model) Status(patterns ...string) (*params.FullStatus, error) {
	client, err := m.apiClient()
	if err != nil {
		return nil, errors.Trace(err)
	}
	status, err := client.Status(patterns)
	return status, errors.Trace(err)
}

// apiWatchConn adapts an api connection to the watch loop's view of
// it.
type apiWatchConn struct {
	conn api.Connection
}

func (c apiWatchConn) WatchAll() (allWatcher, error) {
	w, err := api.NewClient(c.conn).WatchAll()
	if err != nil {
		return nil, errors.Trace(err)
	}
	return w, nil
}

func (c apiWatchConn) Close() error {
	return c.conn.Close()
}
