// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package jsoncodec

import (
	"encoding/json"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// NewWebsocket returns an rpc codec that uses the given websocket
// connection to send and receive messages.
func NewWebsocket(conn *websocket.Conn) *Codec {
	return New(NewWebsocketConn(conn))
}

// NewWebsocketConn returns a JSONConn implementation that uses the
// given connection for transport.
func NewWebsocketConn(conn *websocket.Conn) JSONConn {
	return &wsJSONConn{conn: conn}
}

type wsJSONConn struct {
	// sendMutex guards the write side of the connection; gorilla
	// supports one concurrent writer only.
	sendMutex sync.Mutex
	conn      *websocket.Conn
}

func (conn *wsJSONConn) Send(msg interface{}) error {
	conn.sendMutex.Lock()
	defer conn.sendMutex.Unlock()
	return conn.conn.WriteJSON(msg)
}

func (conn *wsJSONConn) Receive(msg interface{}) error {
	err := conn.conn.ReadJSON(msg)
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway) {
		return io.EOF
	}
	return err
}

func (conn *wsJSONConn) Close() error {
	// Tell the other end we are closing before tearing the
	// connection down, so it sees a clean close.
	conn.sendMutex.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	conn.sendMutex.Unlock()
	return conn.conn.Close()
}

// NewNet returns an rpc codec that uses conn to send and receive
// messages.
func NewNet(conn net.Conn) *Codec {
	return New(netConn{
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
		conn: conn,
	})
}

type netConn struct {
	enc  *json.Encoder
	dec  *json.Decoder
	conn net.Conn
}

func (conn netConn) Send(msg interface{}) error {
	return conn.enc.Encode(msg)
}

func (conn netConn) Receive(msg interface{}) error {
	return conn.dec.Decode(msg)
}

func (conn netConn) Close() error {
	return conn.conn.Close()
}
