/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package core

import (
	"context"
	"net"
	"time"

	"github.com/bits-and-blooms/bitset"

	libbuf "github.com/sabouaram/evcore/core/buffer"
	libctx "github.com/sabouaram/evcore/context"
	libptc "github.com/sabouaram/evcore/network/protocol"
)

// dataKey is the slot SetData/Data use inside Connection.userCtx, keeping
// the single-value convenience accessors as a thin view over the same
// per-connection key/value store that UserContext exposes directly.
const dataKey = "data"

// Connection state flags, packed into a bitset so checking several at once
// (e.g. "listening and not closing") is a single word operation.
const (
	flagListening uint = iota
	flagClient
	flagAccepted
	flagConnecting
	flagTLS
	flagTLSHandshaking
	flagHTTP
	flagWebSocket
	flagMQTT
	flagClosing
	flagDraining
	flagUDP
)

// Connection is a single socket owned by a Manager. It is only ever touched
// from the loop goroutine; Handler callbacks may read and mutate it freely,
// but must never retain a *Connection past the dispatch that delivered it
// without synchronizing through Manager.Wakeup.
type Connection struct {
	id    uint64
	fd    int
	proto libptc.NetworkProtocol

	flags *bitset.BitSet

	local  net.Addr
	remote net.Addr

	Recv *libbuf.Buffer
	Send *libbuf.Buffer

	lastErr error

	userCtx libctx.Config[string] // per-connection key/value store (proto state, app data)

	mgr *Manager

	opened time.Time
}

func newConnection(mgr *Manager, id uint64, fd int, proto libptc.NetworkProtocol) *Connection {
	return &Connection{
		id:      id,
		fd:      fd,
		proto:   proto,
		flags:   bitset.New(16),
		Recv:    libbuf.New(libbuf.DefaultCeiling/4, libbuf.DefaultCeiling),
		Send:    libbuf.New(libbuf.DefaultCeiling/4, libbuf.DefaultCeiling),
		userCtx: libctx.New[string](context.Background()),
		mgr:     mgr,
		opened:  time.Now(),
	}
}

// ID returns the Manager-scoped unique identifier of this connection.
func (c *Connection) ID() uint64 { return c.id }

// FD returns the underlying file descriptor. Handlers should not close it
// directly; call Close instead so the Manager unregisters it from the poller.
func (c *Connection) FD() int { return c.fd }

// Protocol returns the transport protocol this connection was opened with.
func (c *Connection) Protocol() libptc.NetworkProtocol { return c.proto }

// LocalAddr returns the local socket address, nil if not yet known.
func (c *Connection) LocalAddr() net.Addr { return c.local }

// RemoteAddr returns the peer socket address, nil if not yet known.
func (c *Connection) RemoteAddr() net.Addr { return c.remote }

// Err returns the error that triggered the most recent EventError, if any.
func (c *Connection) Err() error { return c.lastErr }

// Uptime returns how long ago this connection was opened.
func (c *Connection) Uptime() time.Duration { return time.Since(c.opened) }

// UserContext returns the per-connection key/value store a Handler can use
// to stash protocol codec state or application session data; the Manager
// never inspects its contents.
func (c *Connection) UserContext() libctx.Config[string] { return c.userCtx }

// Data returns the value stored under the default key by SetData, nil if
// none was set.
func (c *Connection) Data() interface{} {
	v, _ := c.userCtx.Load(dataKey)
	return v
}

// SetData attaches arbitrary per-connection state under the default key.
// For multiple independent values, use UserContext directly.
func (c *Connection) SetData(v interface{}) { c.userCtx.Store(dataKey, v) }

func (c *Connection) is(flag uint) bool { return c.flags.Test(flag) }
func (c *Connection) set(flag uint)     { c.flags.Set(flag) }
func (c *Connection) clear(flag uint)   { c.flags.Clear(flag) }

// IsListening reports whether this connection is a listening socket.
func (c *Connection) IsListening() bool { return c.is(flagListening) }

// IsClient reports whether this connection originated from an outbound Dial.
func (c *Connection) IsClient() bool { return c.is(flagClient) }

// IsTLS reports whether TLS is enabled for this connection.
func (c *Connection) IsTLS() bool { return c.is(flagTLS) }

// IsClosing reports whether this connection has begun a graceful shutdown
// (draining its send buffer before the fd is actually closed).
func (c *Connection) IsClosing() bool { return c.is(flagClosing) }

// Write appends p to the send buffer; the poller flushes it on the next
// writable tick. It never blocks.
func (c *Connection) Write(p []byte) {
	c.Send.Append(p)
}

// Close begins a graceful close: once the send buffer drains, the Manager
// emits EventClose and releases the file descriptor. Call CloseNow to skip
// the drain.
func (c *Connection) Close() {
	c.set(flagClosing)
}

// CloseNow tears the connection down immediately, discarding any unsent data.
func (c *Connection) CloseNow() {
	c.set(flagClosing)
	c.Send.Reset()
	c.mgr.closeConn(c, c.lastErr)
}
