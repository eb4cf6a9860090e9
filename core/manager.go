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
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	libatm "github.com/sabouaram/evcore/atomic"
	"github.com/sabouaram/evcore/core/netaddr"
	"github.com/sabouaram/evcore/core/netio"
	"github.com/sabouaram/evcore/core/timer"
	"github.com/sabouaram/evcore/core/wakeup"
	libctx "github.com/sabouaram/evcore/context"
	liblog "github.com/sabouaram/evcore/logger"
	librun "github.com/sabouaram/evcore/runner/startStop"
)

// Manager owns the epoll loop, the connection table, the timer wheel and the
// cross-thread wakeup channel for one event-driven runtime instance. It is
// the central object described by the runtime's module list: every other
// package (proto/http, proto/ws, proto/mqtt, sntp) plugs into it through a
// Handler.
type Manager struct {
	cfg ManagerConfig

	handler libatm.Value[Handler]
	runner  libatm.Value[librun.StartStop]

	mu     sync.Mutex
	conns  map[uint64]*Connection
	byFD   map[int]*Connection // fd -> connection, listening or not
	listen map[int]*Connection // fd -> listening connection
	nextID uint64

	poller *netio.Poller
	wake   *wakeup.Channel
	wheel  *timer.Wheel

	userCtx libctx.Config[string] // runtime-wide key/value store shared across Handler callbacks
}

// New builds a Manager from a validated configuration. The poller and
// connections are created lazily in Start.
func New(cfg ManagerConfig) (*Manager, error) {
	if e := cfg.Validate(); e != nil {
		return nil, e
	}

	m := &Manager{
		cfg:     cfg,
		handler: libatm.NewValue[Handler](),
		runner:  libatm.NewValue[librun.StartStop](),
		conns:   make(map[uint64]*Connection),
		byFD:    make(map[int]*Connection),
		listen:  make(map[int]*Connection),
		wheel:   timer.NewWheel(),
		userCtx: libctx.New[string](context.Background()),
	}

	m.runner.Store(librun.New(m.run, m.shutdown))

	return m, nil
}

// Handler installs the callback invoked for every dispatched event. It may
// be changed at any time; the change takes effect on the next dispatch.
func (m *Manager) Handler(h Handler) {
	m.handler.Store(h)
}

// UserContext returns the Manager-wide key/value store a Handler can use to
// share state across connections (registries, counters, shared caches),
// distinct from each Connection's own per-connection UserContext.
func (m *Manager) UserContext() libctx.Config[string] { return m.userCtx }

// Start launches the poll loop goroutine and returns without waiting for it.
// The loop opens the poller and the listening sockets itself; a failure there
// ends the loop and is reported through ErrorsLast/ErrorsList.
func (m *Manager) Start(ctx context.Context) error {
	return m.runner.Load().Start(ctx)
}

// Stop shuts the loop down, waiting until it exits or ctx is done.
// WaitNotify is the caller that bounds this wait by cfg.ShutdownTimeout.
func (m *Manager) Stop(ctx context.Context) error {
	return m.runner.Load().Stop(ctx)
}

// Restart stops then starts the loop again.
func (m *Manager) Restart(ctx context.Context) error {
	return m.runner.Load().Restart(ctx)
}

// IsRunning reports whether the poll loop goroutine is active.
func (m *Manager) IsRunning() bool {
	return m.runner.Load().IsRunning()
}

// Uptime returns how long the loop has been running.
func (m *Manager) Uptime() time.Duration {
	return m.runner.Load().Uptime()
}

// ErrorsLast returns the last error recorded by the loop's start/stop cycle.
func (m *Manager) ErrorsLast() error {
	return m.runner.Load().ErrorsLast()
}

// ErrorsList returns every error recorded since the loop started.
func (m *Manager) ErrorsList() []error {
	return m.runner.Load().ErrorsList()
}

// WaitNotify blocks until SIGINT/SIGTERM/SIGQUIT or ctx is done, then stops.
func (m *Manager) WaitNotify(ctx context.Context) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case <-quit:
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), m.cfg.ShutdownTimeout)
	defer cancel()

	_ = m.Stop(sctx)
}

// Wakeup delivers payload to the connection identified by id from any
// goroutine, including off the loop thread. It is the only safe way to
// reach into the loop without racing its single-threaded dispatch.
func (m *Manager) Wakeup(id uint64, payload []byte) error {
	if m.wake == nil {
		return ErrorNotRunning.Error(nil)
	}
	return m.wake.Wakeup(id, payload)
}

func (m *Manager) run(ctx context.Context) error {
	p, err := netio.New()
	if err != nil {
		return ErrorPollerInit.ErrorParent(err)
	}
	m.poller = p

	w, err := wakeup.New()
	if err != nil {
		_ = p.Close()
		return ErrorPollerInit.ErrorParent(err)
	}
	m.wake = w

	if err := p.Add(w.ReadFD(), netio.Readable); err != nil {
		_ = w.Close()
		_ = p.Close()
		return ErrorPollerInit.ErrorParent(err)
	}

	for _, lc := range m.cfg.Listen {
		fd, err := netaddr.Listen(lc.Network, lc.Address, lc.Backlog)
		if err != nil {
			liblog.ErrorLevel.Logf("Listen '%s' on %s error: %v", lc.Name, lc.Address, err)
			return ErrorListen.ErrorParent(err)
		}

		c := newConnection(m, m.newID(), fd, lc.Network)
		c.set(flagListening)

		if err := p.Add(fd, netio.Readable); err != nil {
			return ErrorListen.ErrorParent(err)
		}

		m.mu.Lock()
		m.conns[c.id] = c
		m.byFD[fd] = c
		m.listen[fd] = c
		m.mu.Unlock()

		liblog.InfoLevel.Logf("Manager listening '%s' on %s", lc.Name, lc.Address)
	}

	buf := make([]unix.EpollEvent, m.cfg.MaxEventsPerTick)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		timeout := int(m.cfg.PollTimeout / time.Millisecond)
		if timeout <= 0 {
			timeout = 1
		}

		events, err := p.Wait(buf, timeout)
		if err != nil {
			liblog.ErrorLevel.Logf("poll wait error: %v", err)
			continue
		}

		m.tick(events, w.ReadFD())
	}
}

// tick runs one iteration of the loop. It walks the ready events in the
// order Wait returned them, delivering cross-thread wakeups when the wakeup
// pipe is readable, accepting on ready listeners and reading/flushing ready
// connections (closing those fully drained and marked closing); it then
// advances the timer wheel and finally emits a POLL event to every live
// connection, flushing any that have pending output or are closing.
func (m *Manager) tick(events []netio.Event, wakeFD int) {
	for _, ev := range events {
		m.mu.Lock()
		lc, isListen := m.listen[ev.FD]
		cc := m.byFD[ev.FD]
		m.mu.Unlock()

		switch {
		case ev.FD == wakeFD:
			m.deliverWakeups()
		case isListen:
			m.acceptLoop(lc)
		case cc != nil:
			m.serviceConn(cc, ev)
		}
	}

	m.wheel.Poll(time.Now())
	m.pollAll()
}

func (m *Manager) acceptLoop(lc *Connection) {
	for {
		fd, peer, err := netaddr.Accept(lc.fd)
		if err != nil {
			if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
				liblog.ErrorLevel.Logf("accept on '%d' error: %v", lc.fd, err)
			}
			return
		}

		c := newConnection(m, m.newID(), fd, lc.proto)
		c.set(flagAccepted)
		c.remote = addrFromSockaddr(peer)

		if err := m.poller.Add(fd, netio.Readable); err != nil {
			_ = unix.Close(fd)
			continue
		}

		m.mu.Lock()
		m.conns[c.id] = c
		m.byFD[fd] = c
		m.mu.Unlock()

		m.dispatch(c, EventOpen, nil)
		m.dispatch(c, EventAccept, nil)
	}
}

func (m *Manager) serviceConn(c *Connection, ev netio.Event) {
	if ev.Err || ev.Hup {
		c.lastErr = ErrorClosed.Error(nil)
		m.dispatch(c, EventError, c.lastErr)
		m.closeConn(c, c.lastErr)
		return
	}

	if ev.Ready&netio.Readable != 0 {
		m.readConn(c)
	}

	if ev.Ready&netio.Writable != 0 {
		m.writeConn(c)
	}
}

func (m *Manager) readConn(c *Connection) {
	buf := c.Recv.Tail(64 * 1024)

	n, err := unix.Read(c.fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return
		}
		c.lastErr = ErrorRead.ErrorParent(err)
		m.dispatch(c, EventError, c.lastErr)
		m.closeConn(c, c.lastErr)
		return
	}

	if n == 0 {
		m.closeConn(c, nil)
		return
	}

	c.Recv.Commit(n)
	m.dispatch(c, EventRead, n)
}

func (m *Manager) writeConn(c *Connection) {
	for c.Send.Len() > 0 {
		n, err := unix.Write(c.fd, c.Send.Bytes())
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				_ = m.poller.Mod(c.fd, netio.Readable|netio.Writable)
				return
			}
			c.lastErr = ErrorWrite.ErrorParent(err)
			m.dispatch(c, EventError, c.lastErr)
			m.closeConn(c, c.lastErr)
			return
		}

		c.Send.Consume(n)
	}

	_ = m.poller.Mod(c.fd, netio.Readable)
	m.dispatch(c, EventWrite, nil)

	if c.IsClosing() {
		m.closeConn(c, nil)
	}
}

func (m *Manager) deliverWakeups() {
	recs, err := m.wake.Drain()
	if err != nil {
		liblog.ErrorLevel.Logf("wakeup drain error: %v", err)
	}

	for _, r := range recs {
		m.mu.Lock()
		c := m.conns[r.ID]
		m.mu.Unlock()

		if c != nil {
			m.dispatch(c, EventWakeup, r.Payload)
		}
	}
}

func (m *Manager) pollAll() {
	m.mu.Lock()
	list := make([]*Connection, 0, len(m.conns))
	for _, c := range m.conns {
		list = append(list, c)
	}
	m.mu.Unlock()

	for _, c := range list {
		if c.IsListening() {
			continue
		}
		m.dispatch(c, EventPoll, nil)

		if c.Send.Len() > 0 || c.IsClosing() {
			m.writeConn(c)
		}
	}
}

func (m *Manager) dispatch(c *Connection, ev Event, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			liblog.ErrorLevel.Logf("handler panic on %s: %v", ev, r)
		}
	}()

	if h := m.handler.Load(); h != nil {
		h(c, ev, payload)
	}
}

func (m *Manager) closeConn(c *Connection, err error) {
	m.mu.Lock()
	_, ok := m.conns[c.id]
	if ok {
		delete(m.conns, c.id)
	}
	delete(m.byFD, c.fd)
	delete(m.listen, c.fd)
	m.mu.Unlock()

	if !ok {
		return
	}

	_ = m.poller.Remove(c.fd)
	_ = unix.Close(c.fd)

	c.lastErr = err
	m.dispatch(c, EventClose, err)
}

func (m *Manager) newID() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	return m.nextID
}

func (m *Manager) shutdown(ctx context.Context) error {
	m.mu.Lock()
	list := make([]*Connection, 0, len(m.conns))
	for _, c := range m.conns {
		list = append(list, c)
	}
	m.mu.Unlock()

	for _, c := range list {
		m.closeConn(c, nil)
	}

	var errs []error

	if m.wake != nil {
		if err := m.wake.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.poller != nil {
		if err := m.poller.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}

	return nil
}
