// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package api

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/names/v5"
	semversion "github.com/juju/version/v2"
	"github.com/kr/pretty"
	"gopkg.in/retry.v1"

	"github.com/juju/mirror/params"
	"github.com/juju/mirror/rpc"
	"github.com/juju/mirror/rpc/jsoncodec"
	"github.com/juju/mirror/version"
)

var logger = loggo.GetLogger("juju.mirror.api")

// state is the internal implementation of the Connection interface.
type state struct {
	client *rpc.Conn
	addr   string

	// info and opts hold everything needed to open another connection
	// to the same place, for Clone.
	info Info
	opts DialOpts

	// mu guards the fields below it.
	mu sync.Mutex

	// modelTag holds the model tag once Login has completed.
	modelTag names.ModelTag

	// controllerTag holds the controller tag once Login has completed.
	controllerTag names.ControllerTag

	// serverVersion holds the version reported by the server at login.
	serverVersion semversion.Number

	// facadeVersions holds the versions of all facades as reported by
	// Login.
	facadeVersions map[string][]int

	// closed is closed when the connection is closed.
	closed chan struct{}

	// broken is closed when the connection is no longer usable, either
	// because it was closed or because the transport died.
	broken chan struct{}

	closeOnce sync.Once
}

var _ Connection = (*state)(nil)

// Open establishes a connection to the API server using the Info given,
// returning a Connection instance.
func Open(info *Info, opts DialOpts) (Connection, error) {
	if info == nil {
		return nil, errors.NotValidf("nil Info")
	}
	if err := info.Validate(); err != nil {
		return nil, errors.Annotate(err, "validating info for opening an API connection")
	}
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	wsConn, addr, err := dialAPI(info, opts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	client := rpc.NewConn(jsoncodec.NewWebsocket(wsConn))
	client.Start()
	st := &state{
		client: client,
		addr:   addr,
		info:   *info,
		opts:   opts,
		closed: make(chan struct{}),
		broken: make(chan struct{}),
	}
	if !info.SkipLogin {
		if err := st.Login(info.Tag, info.Password, info.Nonce); err != nil {
			client.Close()
			return nil, errors.Trace(err)
		}
	}
	go st.monitor()
	return st, nil
}

// monitor flags the connection as broken as soon as either the
// transport dies or Close is called.
func (st *state) monitor() {
	defer close(st.broken)
	select {
	case <-st.closed:
	case <-st.client.Dead():
		logger.Debugf("RPC connection died")
	}
}

// Addr returns the address used to connect to the API server.
func (st *state) Addr() string {
	return st.addr
}

// Login authenticates as the entity with the given name and password.
func (st *state) Login(tag names.Tag, password, nonce string) error {
	request := &params.LoginRequest{
		Credentials:   password,
		Nonce:         nonce,
		ClientVersion: version.Current.String(),
	}
	if tag != nil {
		request.AuthTag = tag.String()
	}
	var result params.LoginResult
	err := st.APICall("Admin", 3, "", "Login", request, &result)
	if err != nil {
		return errors.Trace(err)
	}
	if logger.IsTraceEnabled() {
		logger.Tracef("login result: %s", pretty.Sprint(result))
	}

	var modelTag names.ModelTag
	if result.ModelTag != "" {
		modelTag, err = names.ParseModelTag(result.ModelTag)
		if err != nil {
			return errors.Annotatef(err, "invalid model tag in login result")
		}
	}
	var controllerTag names.ControllerTag
	if result.ControllerTag != "" {
		controllerTag, err = names.ParseControllerTag(result.ControllerTag)
		if err != nil {
			return errors.Annotatef(err, "invalid controller tag in login result")
		}
	}
	var serverVersion semversion.Number
	if result.ServerVersion != "" {
		serverVersion, err = semversion.Parse(result.ServerVersion)
		if err != nil {
			return errors.Annotatef(err, "invalid server version in login result")
		}
	}
	versions := make(map[string][]int, len(result.Facades))
	for _, facade := range result.Facades {
		versions[facade.Name] = facade.Versions
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.modelTag = modelTag
	st.controllerTag = controllerTag
	st.serverVersion = serverVersion
	st.facadeVersions = versions
	return nil
}

// APICall places a call to the remote machine.
//
// This fills out the rpc.Request on the given facade, version for a
// given object id, and the specific RPC method. It marshals the
// arguments, and will unmarshal the result into the response object
// that is supplied.
func (st *state) APICall(facade string, vers int, id, method string, args, response interface{}) error {
	err := st.client.Call(rpc.Request{
		Type:    facade,
		Version: vers,
		Id:      id,
		Action:  method,
	}, args, response)
	return errors.Trace(err)
}

// BestFacadeVersion compares the versions of facades that we know
// about, and the versions available from the server, and reports back
// which version is the 'best available' to use. So if the server
// reports that it's available at v1, v2, and v3, and we know about v1
// and v2, then we'd return v2.
func (st *state) BestFacadeVersion(facade string) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return bestVersion(facadeVersions[facade], st.facadeVersions[facade])
}

// ModelTag implements base.APICaller.
func (st *state) ModelTag() (names.ModelTag, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.modelTag, st.modelTag.Id() != ""
}

// ControllerTag returns the tag of the controller, as reported at
// login.
func (st *state) ControllerTag() names.ControllerTag {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.controllerTag
}

// ServerVersion holds the version of the API server that we are
// connected to.
func (st *state) ServerVersion() (semversion.Number, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.serverVersion, st.serverVersion != semversion.Zero
}

// Broken returns a channel which will be closed if the connection is
// detected to be broken or has been closed.
func (st *state) Broken() <-chan struct{} {
	return st.broken
}

// IsBroken reports whether the connection is still usable. A clean
// close counts as broken; so does a failed ping.
func (st *state) IsBroken() bool {
	select {
	case <-st.broken:
		return true
	default:
	}
	if err := st.Ping(); err != nil {
		logger.Debugf("connection ping failed: %v", err)
		return true
	}
	return false
}

// Ping pings the API server to keep the connection alive and verify
// that it still answers.
func (st *state) Ping() error {
	return st.APICall("Pinger", st.BestFacadeVersion("Pinger"), "", "Ping", nil, nil)
}

// Clone opens a fresh connection to the same controller and model with
// the same credentials. Watcher traffic is given its own connection
// this way so that a slow consumer cannot block other callers.
func (st *state) Clone() (Connection, error) {
	st.mu.Lock()
	info := st.info
	opts := st.opts
	st.mu.Unlock()
	conn, err := Open(&info, opts)
	return conn, errors.Trace(err)
}

// Close closes the connection. Closing an already closed connection
// does nothing.
func (st *state) Close() error {
	var err error
	st.closeOnce.Do(func() {
		close(st.closed)
		err = st.client.Close()
		<-st.broken
	})
	return err
}

// tlsConfigForInfo returns the TLS configuration used to dial a
// controller, or nil to use the system defaults.
func tlsConfigForInfo(info *Info) (*tls.Config, error) {
	if info.CACert == "" {
		return nil, nil
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM([]byte(info.CACert)) {
		return nil, errors.NotValidf("CA certificate")
	}
	return &tls.Config{
		RootCAs: pool,
		// Controller certificates are issued to this name rather than
		// to their addresses.
		ServerName: "juju-apiserver",
	}, nil
}

// dialAPI tries each of the addresses in turn until one answers,
// repeating per the dial options until the timeout is reached.
func dialAPI(info *Info, opts DialOpts) (*websocket.Conn, string, error) {
	path := "/api"
	if info.ModelUUID != "" {
		path = "/model/" + info.ModelUUID + "/api"
	}
	tlsConfig, err := tlsConfigForInfo(info)
	if err != nil {
		return nil, "", errors.Trace(err)
	}
	var lastErr error
	for a := retry.Start(dialStrategy(opts), opts.Clock); a.Next(); {
		for _, addr := range info.Addrs {
			conn, err := dialWebsocket(addr, path, tlsConfig)
			if err == nil {
				logger.Infof("connection established to %q", "wss://"+addr+path)
				return conn, addr, nil
			}
			logger.Debugf("error dialing %q: %v", addr, err)
			lastErr = err
		}
	}
	return nil, "", errors.Annotate(lastErr, "unable to connect to API")
}

func dialStrategy(opts DialOpts) retry.Strategy {
	strategy := retry.Regular{
		Delay: opts.RetryDelay,
		Min:   1,
	}
	if opts.Timeout > 0 {
		return retry.LimitTime(opts.Timeout, strategy)
	}
	return strategy
}

func dialWebsocket(addr, path string, tlsConfig *tls.Config) (*websocket.Conn, error) {
	dialer := &websocket.Dialer{
		HandshakeTimeout: 45 * time.Second,
		TLSClientConfig:  tlsConfig,
	}
	conn, _, err := dialer.Dial("wss://"+addr+path, http.Header{
		"Origin": {"http://localhost/"},
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return conn, nil
}
