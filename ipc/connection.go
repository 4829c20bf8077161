package ipc

import (
	"log/slog"
	"net"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Transport moves whole envelopes between the planner and one UI shell.
type Transport interface {
	Read() (Envelope, error)
	Write(env Envelope) error
	Close() error
}

// streamTransport frames envelopes over a byte stream such as a unix socket.
type streamTransport struct {
	conn net.Conn
}

func (t streamTransport) Read() (Envelope, error)  { return ReadEnvelope(t.conn) }
func (t streamTransport) Write(env Envelope) error { return WriteEnvelope(t.conn, env) }
func (t streamTransport) Close() error             { return t.conn.Close() }

// Connection represents a single UI shell talking to the planner.
// Each connection gets its own planning session, identified after the hello handshake.
type Connection struct {
	transport Transport
	handlers  map[string]Handler
	Session   string
}

func NewConnection(t Transport, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		transport: t,
		handlers:  handlers,
	}
}

// NewStreamConnection wraps a stream socket with length-prefixed framing.
func NewStreamConnection(conn net.Conn) *Connection {
	return NewConnection(streamTransport{conn: conn}, nil)
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return c.transport.Write(env)
}

// Close shuts the transport down without running the read loop.
func (c *Connection) Close() error {
	return c.transport.Close()
}

// ReadLoop blocks until the connection closes or errors. It owns the transport
// lifetime so callers don't need to track cleanup.
func (c *Connection) ReadLoop() {
	defer c.transport.Close()

	for {
		env, err := c.transport.Read()
		if err != nil {
			slog.Info("connection read ended", "session", c.Session, "error", err)
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			slog.Warn("no handler for message type", "type", env.Type, "session", c.Session)
			continue
		}

		resp, err := handler(env)
		if err != nil {
			slog.Error("handler error", "type", env.Type, "session", c.Session, "error", err)
			continue
		}

		if resp != nil {
			if err := c.transport.Write(*resp); err != nil {
				slog.Error("failed to send response", "type", resp.Type, "error", err)
				return
			}
			slog.Debug("sent response", "type", resp.Type, "session", c.Session)
		}
	}
}
