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

package mqtt

import (
	"sync"
	"time"

	natserver "github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"

	liberr "github.com/sabouaram/evcore/errors"
)

const (
	ErrorBridgeNotStarted liberr.CodeError = iota + liberr.MinPkgProtoMqtt + 50
	ErrorBridgeStart
	ErrorBridgePublish
)

func init() {
	if !liberr.ExistInMapMessage(ErrorBridgeNotStarted) {
		liberr.RegisterIdFctMessage(ErrorBridgeNotStarted, getBridgeMessage)
	}
}

func getBridgeMessage(code liberr.CodeError) string {
	switch code {
	case ErrorBridgeNotStarted:
		return "mqtt-nats bridge is not started"
	case ErrorBridgeStart:
		return "error starting embedded nats server"
	case ErrorBridgePublish:
		return "error publishing to nats subject"
	}
	return ""
}

// BridgeConfig configures an embedded NATS server used to fan PUBLISH
// packets out to subscribers beyond the event loop's own connection table
// (e.g. other processes, cluster members).
type BridgeConfig struct {
	Host           string
	Port           int
	SubjectPrefix  string
	StartupTimeout time.Duration
}

// Bridge republishes MQTT PUBLISH packets onto an embedded NATS server's
// subject space (topic "a/b" becomes subject "<prefix>.a.b"), grounded on
// the same nats-server/nats.go pairing the config's natsServer component
// wires up for its own embedded-server lifecycle.
type Bridge struct {
	cfg BridgeConfig

	mu     sync.Mutex
	srv    *natserver.Server
	conn   *natsgo.Conn
	prefix string
}

// NewBridge builds an unstarted Bridge.
func NewBridge(cfg BridgeConfig) *Bridge {
	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = 5 * time.Second
	}
	return &Bridge{cfg: cfg, prefix: cfg.SubjectPrefix}
}

// Start launches the embedded NATS server and connects a publisher client.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	opts := &natserver.Options{
		Host: b.cfg.Host,
		Port: b.cfg.Port,
	}

	srv, err := natserver.NewServer(opts)
	if err != nil {
		return ErrorBridgeStart.Error(err)
	}

	go srv.Start()

	if !srv.ReadyForConnections(b.cfg.StartupTimeout) {
		srv.Shutdown()
		return ErrorBridgeStart.Error(nil)
	}

	conn, err := natsgo.Connect(srv.ClientURL())
	if err != nil {
		srv.Shutdown()
		return ErrorBridgeStart.Error(err)
	}

	b.srv = srv
	b.conn = conn
	return nil
}

// Stop drains the publisher connection and shuts the embedded server down.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
	if b.srv != nil {
		b.srv.Shutdown()
		b.srv = nil
	}
}

// Publish republishes one MQTT PUBLISH packet's payload onto the mapped
// NATS subject.
func (b *Bridge) Publish(topic string, payload []byte) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()

	if conn == nil {
		return ErrorBridgeNotStarted.Error(nil)
	}

	if err := conn.Publish(b.subject(topic), payload); err != nil {
		return ErrorBridgePublish.Error(err)
	}

	return nil
}

func (b *Bridge) subject(topic string) string {
	s := make([]byte, 0, len(topic)+len(b.prefix)+1)
	if b.prefix != "" {
		s = append(s, b.prefix...)
		s = append(s, '.')
	}
	for _, r := range topic {
		if r == '/' {
			s = append(s, '.')
		} else {
			s = append(s, byte(r))
		}
	}
	return string(s)
}
