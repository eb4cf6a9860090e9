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

// Package core implements the single-threaded, event-driven networking
// runtime: the Manager drives a non-blocking poll loop and dispatches a fixed
// catalog of events to a user Handler for every Connection it owns.
package core

// Event identifies the kind of occurrence being dispatched to a Handler.
// The catalog is fixed. The Manager itself dispatches ERROR, OPEN, ACCEPT,
// READ, WRITE, CLOSE, POLL and WAKEUP; the remaining values name protocol
// and client-side occurrences that the Manager does not dispatch.
type Event uint8

const (
	// EventError reports an I/O or protocol failure; inspect Connection.Err().
	EventError Event = iota
	// EventOpen fires once a Connection is accepted or a dial completes.
	EventOpen
	// EventPoll fires once per loop tick for every live connection, even if
	// nothing else happened, to let handlers run periodic bookkeeping.
	EventPoll
	// EventResolve fires when asynchronous DNS resolution completes.
	EventResolve
	// EventConnect fires when an outbound connect() finishes (success or not).
	EventConnect
	// EventAccept fires on a newly accepted connection, right after its
	// EventOpen.
	EventAccept
	// EventTLSHandshake fires once the TLS handshake completes.
	EventTLSHandshake
	// EventRead fires when new bytes have been appended to the receive buffer.
	EventRead
	// EventWrite fires when the send buffer has drained completely.
	EventWrite
	// EventClose fires exactly once when a Connection is finally torn down.
	EventClose
	// EventHTTPHeaders fires once the HTTP request/response header block is
	// fully parsed, before the body has necessarily arrived.
	EventHTTPHeaders
	// EventHTTPMessage fires once a full HTTP message (headers + body) parsed.
	EventHTTPMessage
	// EventWSOpen fires once the WebSocket upgrade handshake completes.
	EventWSOpen
	// EventWSMessage fires for a complete (possibly reassembled) data frame.
	EventWSMessage
	// EventWSControl fires for a control frame (ping/pong/close).
	EventWSControl
	// EventMQTTCommand fires for every decoded MQTT control packet.
	EventMQTTCommand
	// EventMQTTMessage fires specifically for an incoming PUBLISH payload.
	EventMQTTMessage
	// EventMQTTOpen fires once the MQTT CONNECT/CONNACK exchange completes.
	EventMQTTOpen
	// EventSNTPTime fires when an SNTP client receives a server time reply.
	EventSNTPTime
	// EventWakeup fires when a cross-thread Manager.Wakeup() call targeted
	// this connection id.
	EventWakeup
	// EventUser is reserved for application-defined signaling; Wakeup
	// delivers EventWakeup, not EventUser.
	EventUser
)

// String renders the event name for logging.
func (e Event) String() string {
	switch e {
	case EventError:
		return "ERROR"
	case EventOpen:
		return "OPEN"
	case EventPoll:
		return "POLL"
	case EventResolve:
		return "RESOLVE"
	case EventConnect:
		return "CONNECT"
	case EventAccept:
		return "ACCEPT"
	case EventTLSHandshake:
		return "TLS_HS"
	case EventRead:
		return "READ"
	case EventWrite:
		return "WRITE"
	case EventClose:
		return "CLOSE"
	case EventHTTPHeaders:
		return "HTTP_HDRS"
	case EventHTTPMessage:
		return "HTTP_MSG"
	case EventWSOpen:
		return "WS_OPEN"
	case EventWSMessage:
		return "WS_MSG"
	case EventWSControl:
		return "WS_CTL"
	case EventMQTTCommand:
		return "MQTT_CMD"
	case EventMQTTMessage:
		return "MQTT_MSG"
	case EventMQTTOpen:
		return "MQTT_OPEN"
	case EventSNTPTime:
		return "SNTP_TIME"
	case EventWakeup:
		return "WAKEUP"
	case EventUser:
		return "USER"
	default:
		return "UNKNOWN"
	}
}

// Handler reacts to events dispatched for a Connection. ev carries an
// event-specific payload (e.g. a *proto/http.Message for EventHTTPMessage),
// nil when the event carries none.
type Handler func(c *Connection, ev Event, payload interface{})
