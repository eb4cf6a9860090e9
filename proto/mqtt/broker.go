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
	"strings"
	"sync"
)

// Subscriber is anything a Broker can deliver a PUBLISH packet to — a
// single-thread event loop connection's Write method.
type Subscriber interface {
	Write(p []byte)
}

// Broker keeps the in-process topic tree: subscriptions and retained
// messages for connections handled directly by this Manager. An optional
// Bridge fans PUBLISH traffic out to a NATS subject space for delivery
// beyond this process.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[Subscriber]QoS
	ret  map[string][]byte

	bridge *Bridge
}

// NewBroker returns an empty topic tree, optionally fanning PUBLISH traffic
// out through bridge (nil to keep everything in-process).
func NewBroker(bridge *Bridge) *Broker {
	return &Broker{
		subs:   make(map[string]map[Subscriber]QoS),
		ret:    make(map[string][]byte),
		bridge: bridge,
	}
}

// Subscribe registers sub for topic at the given QoS.
func (b *Broker) Subscribe(sub Subscriber, topic string, qos QoS) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m := b.subs[topic]
	if m == nil {
		m = make(map[Subscriber]QoS)
		b.subs[topic] = m
	}
	m[sub] = qos

	if retained, ok := b.ret[topic]; ok {
		PublishPacket(sub, topic, retained, qos, 0, true)
	}
}

// Unsubscribe removes sub from topic.
func (b *Broker) Unsubscribe(sub Subscriber, topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if m, ok := b.subs[topic]; ok {
		delete(m, sub)
		if len(m) == 0 {
			delete(b.subs, topic)
		}
	}
}

// Disconnect drops every subscription held by sub, called once its
// Connection closes.
func (b *Broker) Disconnect(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for topic, m := range b.subs {
		delete(m, sub)
		if len(m) == 0 {
			delete(b.subs, topic)
		}
	}
}

// Publish delivers payload to every subscriber whose filter matches topic,
// retaining it for future subscribers if retain is set, and fanning it out
// through the bridge if one is configured.
func (b *Broker) Publish(topic string, payload []byte, qos QoS, retain bool) {
	b.mu.Lock()
	if retain {
		if len(payload) == 0 {
			delete(b.ret, topic)
		} else {
			b.ret[topic] = append([]byte(nil), payload...)
		}
	}

	var targets []Subscriber
	var qoses []QoS
	for filter, m := range b.subs {
		if !topicMatches(filter, topic) {
			continue
		}
		for sub, sq := range m {
			targets = append(targets, sub)
			qoses = append(qoses, sq)
		}
	}
	b.mu.Unlock()

	for i, sub := range targets {
		deliverQoS := qos
		if qoses[i] < deliverQoS {
			deliverQoS = qoses[i]
		}
		PublishPacket(sub, topic, payload, deliverQoS, 0, retain)
	}

	if b.bridge != nil {
		_ = b.bridge.Publish(topic, payload)
	}
}

// topicMatches reports whether filter (which may contain the MQTT 3.1.1
// wildcards "+" and "#") matches the concrete topic.
func topicMatches(filter, topic string) bool {
	fParts := strings.Split(filter, "/")
	tParts := strings.Split(topic, "/")

	for i, fp := range fParts {
		if fp == "#" {
			return true
		}
		if i >= len(tParts) {
			return false
		}
		if fp != "+" && fp != tParts[i] {
			return false
		}
	}

	return len(fParts) == len(tParts)
}
