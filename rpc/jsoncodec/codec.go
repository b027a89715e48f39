// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package jsoncodec implements the rpc codec for connections that
// exchange messages as JSON objects.
package jsoncodec

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/juju/mirror/rpc"
)

var logger = loggo.GetLogger("juju.mirror.rpc.jsoncodec")

// JSONConn sends and receives messages to an underlying connection.
type JSONConn interface {
	// Send sends a message.
	Send(msg interface{}) error

	// Receive receives a message into msg.
	Receive(msg interface{}) error

	// Close closes the connection.
	Close() error
}

// Codec implements rpc.Codec for a connection where messages are sent
// as JSON objects.
type Codec struct {
	// msg holds the message that's just been read by ReadHeader,
	// so that the body can be read by ReadBody.
	msg  inMsg
	conn JSONConn

	// mu guards closing.
	mu      sync.Mutex
	closing bool
}

// New returns an rpc codec that uses conn to send and receive messages.
func New(conn JSONConn) *Codec {
	return &Codec{
		conn: conn,
	}
}

// inMsg holds an incoming message. The request fields are only used by
// the server end; they are kept so that unexpected server-initiated
// requests are readable.
type inMsg struct {
	RequestId uint64          `json:"request-id"`
	Type      string          `json:"type"`
	Version   int             `json:"version"`
	Id        string          `json:"id"`
	Request   string          `json:"request"`
	Params    json.RawMessage `json:"params"`
	Error     string          `json:"error"`
	ErrorCode string          `json:"error-code"`
	Response  json.RawMessage `json:"response"`
}

// outMsg holds an outgoing message.
type outMsg struct {
	RequestId uint64      `json:"request-id,omitempty"`
	Type      string      `json:"type,omitempty"`
	Version   int         `json:"version,omitempty"`
	Id        string      `json:"id,omitempty"`
	Request   string      `json:"request,omitempty"`
	Params    interface{} `json:"params,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorCode string      `json:"error-code,omitempty"`
	Response  interface{} `json:"response,omitempty"`
}

// Close closes the codec. Reads blocked in ReadHeader return io.EOF
// rather than the transport teardown error.
func (c *Codec) Close() error {
	c.mu.Lock()
	c.closing = true
	c.mu.Unlock()
	return c.conn.Close()
}

func (c *Codec) isClosing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closing
}

// ReadHeader implements rpc.Codec.
func (c *Codec) ReadHeader(hdr *rpc.Header) error {
	var m json.RawMessage
	if err := c.conn.Receive(&m); err != nil {
		// If we've closed the connection, we may get a spurious
		// error, so ignore it.
		if c.isClosing() || errors.Cause(err) == io.EOF {
			return io.EOF
		}
		return errors.Annotate(err, "error receiving message")
	}
	if logger.IsTraceEnabled() {
		logger.Tracef("<- %s", m)
	}
	c.msg = inMsg{} // avoid any potential cross-message contamination.
	if err := json.Unmarshal(m, &c.msg); err != nil {
		return errors.Annotate(err, "error unmarshalling message")
	}
	hdr.RequestId = c.msg.RequestId
	hdr.Request = rpc.Request{
		Type:    c.msg.Type,
		Version: c.msg.Version,
		Id:      c.msg.Id,
		Action:  c.msg.Request,
	}
	hdr.Error = c.msg.Error
	hdr.ErrorCode = c.msg.ErrorCode
	return nil
}

// ReadBody implements rpc.Codec.
func (c *Codec) ReadBody(body interface{}, isRequest bool) error {
	if body == nil {
		return nil
	}
	var rawBody json.RawMessage
	if isRequest {
		rawBody = c.msg.Params
	} else {
		rawBody = c.msg.Response
	}
	if len(rawBody) == 0 {
		// If the response or params are omitted, it's
		// equivalent to an empty object.
		return nil
	}
	return json.Unmarshal(rawBody, body)
}

// WriteMessage implements rpc.Codec.
func (c *Codec) WriteMessage(hdr *rpc.Header, body interface{}) error {
	msg := outMsg{
		RequestId: hdr.RequestId,

		Type:    hdr.Request.Type,
		Version: hdr.Request.Version,
		Id:      hdr.Request.Id,
		Request: hdr.Request.Action,

		Error:     hdr.Error,
		ErrorCode: hdr.ErrorCode,
	}
	if hdr.IsRequest() {
		msg.Params = body
	} else {
		msg.Response = body
	}
	if logger.IsTraceEnabled() {
		data, err := json.Marshal(msg)
		if err != nil {
			logger.Tracef("-> marshal error: %v", err)
			return err
		}
		logger.Tracef("-> %s", data)
	}
	return c.conn.Send(msg)
}
