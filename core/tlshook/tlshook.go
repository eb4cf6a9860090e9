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

// Package tlshook derives server-side *tls.Config values from the
// certificates package's TLSConfig, hot-reloaded from disk via fsnotify, and
// wraps a raw Read/Write pair in a *tls.Conn. It has no separate init,
// handshake, read, write or free hooks: the handshake and all I/O run on the
// *tls.Conn that Server returns. Nothing in core calls into this package.
package tlshook

import (
	"crypto/tls"
	"net"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	libtls "github.com/sabouaram/evcore/certificates"

	liberr "github.com/sabouaram/evcore/errors"
)

const (
	ErrorNoConfig liberr.CodeError = iota + liberr.MinPkgTlsHook
	ErrorHandshake
	ErrorWatchInit
)

func init() {
	if !liberr.ExistInMapMessage(ErrorNoConfig) {
		liberr.RegisterIdFctMessage(ErrorNoConfig, getMessage)
	}
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorNoConfig:
		return "tls hook has no configuration registered"
	case ErrorHandshake:
		return "tls handshake failed"
	case ErrorWatchInit:
		return "error watching tls material for hot-reload"
	}
	return ""
}

// Hooks holds the TLSConfig used for handshakes: Config derives a
// *tls.Config per SNI name, SetConfig and OnChange rotate it at runtime,
// WatchFiles and Close manage the certificate-file watcher, and Server wraps
// a raw connection for server-side TLS.
type Hooks struct {
	mu  sync.RWMutex
	cfg libtls.TLSConfig

	watcher  *fsnotify.Watcher
	onChange func()
}

// New builds Hooks around cfg, used to derive a fresh *tls.Config per
// ServerName (SNI) via cfg.TLS(serverName).
func New(cfg libtls.TLSConfig) *Hooks {
	return &Hooks{cfg: cfg}
}

// Config returns the *tls.Config to use for serverName (SNI), or nil if no
// TLSConfig was registered.
func (h *Hooks) Config(serverName string) *tls.Config {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.cfg == nil {
		return nil
	}
	return h.cfg.TLS(serverName)
}

// SetConfig swaps the TLSConfig used for future handshakes, letting a
// reload rotate certificates without restarting listeners.
func (h *Hooks) SetConfig(cfg libtls.TLSConfig) {
	h.mu.Lock()
	h.cfg = cfg
	h.mu.Unlock()

	if h.onChange != nil {
		h.onChange()
	}
}

// WatchFiles starts an fsnotify watch on the given certificate/key paths and
// invokes reload(path) whenever one of them is rewritten on disk, so callers
// can reparse and SetConfig a fresh TLSConfig without dropping connections.
func (h *Hooks) WatchFiles(paths []string, reload func(path string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrorWatchInit.Error(err)
	}

	for _, p := range paths {
		if err = w.Add(p); err != nil {
			_ = w.Close()
			return ErrorWatchInit.Error(err)
		}
	}

	h.mu.Lock()
	h.watcher = w
	h.mu.Unlock()

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 && reload != nil {
					reload(ev.Name)
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return nil
}

// OnChange registers a callback fired whenever SetConfig rotates the TLS
// material, so a Manager can log or count reloads.
func (h *Hooks) OnChange(fn func()) {
	h.mu.Lock()
	h.onChange = fn
	h.mu.Unlock()
}

// Close stops the hot-reload watcher, if any was started.
func (h *Hooks) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.watcher == nil {
		return nil
	}
	err := h.watcher.Close()
	h.watcher = nil
	return err
}

// RawReadWriter is the minimal fd-backed Read/Write pair a Connection
// exposes for its raw socket, before any TLS framing is applied.
type RawReadWriter interface {
	Read(b []byte) (int, error)
	Write(b []byte) (int, error)
}

// Server wraps a raw fd-backed connection with TLS server-side framing for
// serverName (SNI). The caller (core.Connection) is responsible for driving
// I/O through the returned *tls.Conn's Read/Write; this package only builds
// the configuration and the net.Conn adapter tls.Server requires.
func (h *Hooks) Server(conn RawReadWriter, serverName string) (*tls.Conn, error) {
	cfg := h.Config(serverName)
	if cfg == nil {
		return nil, ErrorNoConfig.Error(nil)
	}

	return tls.Server(connAdapter{rw: conn}, cfg), nil
}

// connAdapter lifts the minimal Read/Write pair the Manager exposes for a
// Connection's raw fd into the full net.Conn shape tls.Server requires.
// Addressing and deadlines are no-ops at this layer: the event loop itself
// is non-blocking and tracks addresses on core.Connection already.
type connAdapter struct {
	rw RawReadWriter
}

func (c connAdapter) Read(b []byte) (int, error)  { return c.rw.Read(b) }
func (c connAdapter) Write(b []byte) (int, error) { return c.rw.Write(b) }
func (c connAdapter) Close() error                { return nil }
func (c connAdapter) LocalAddr() net.Addr         { return nil }
func (c connAdapter) RemoteAddr() net.Addr        { return nil }
func (c connAdapter) SetDeadline(time.Time) error      { return nil }
func (c connAdapter) SetReadDeadline(time.Time) error  { return nil }
func (c connAdapter) SetWriteDeadline(time.Time) error { return nil }
