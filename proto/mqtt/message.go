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

// Package mqtt implements an MQTT 3.1.1 packet codec: the fixed header and
// variable-length remaining-length varint shared by every packet type, and
// the CONNECT/CONNACK/PUBLISH/PUBACK/SUBSCRIBE/SUBACK/PINGREQ/PINGRESP/
// DISCONNECT packets a broker embedded in the event loop needs to speak.
// Like proto/http and proto/ws, decoded Message views stay valid only for
// the dispatch that produced them.
package mqtt

// PacketType is the MQTT 3.1.1 control packet type (top nibble of the
// fixed header's first byte).
type PacketType uint8

const (
	_ PacketType = iota
	Connect
	ConnAck
	Publish
	PubAck
	PubRec
	PubRel
	PubComp
	Subscribe
	SubAck
	Unsubscribe
	UnsubAck
	PingReq
	PingResp
	Disconnect
)

// QoS is the MQTT quality-of-service level.
type QoS uint8

const (
	QoS0 QoS = iota
	QoS1
	QoS2
)

// ConnAck return codes (CONNACK variable header byte 2).
const (
	ConnAckAccepted             byte = 0x00
	ConnAckBadProtocolVersion   byte = 0x01
	ConnAckIdentifierRejected   byte = 0x02
	ConnAckServerUnavailable    byte = 0x03
	ConnAckBadUsernamePassword  byte = 0x04
	ConnAckNotAuthorized        byte = 0x05
)

// Message is one decoded MQTT control packet. Only the fields relevant to
// its Type are meaningful.
type Message struct {
	Type   PacketType
	Dup    bool
	QoS    QoS
	Retain bool

	// CONNECT
	ClientID     string
	CleanSession bool
	KeepAlive    uint16
	Username     string
	Password     []byte
	WillTopic    string
	WillMessage  []byte
	WillQoS      QoS
	WillRetain   bool

	// CONNACK
	SessionPresent bool
	ReturnCode     byte

	// PUBLISH / PUBACK / PUBREC / PUBREL / PUBCOMP
	Topic     string
	PacketID  uint16
	Payload   []byte

	// SUBSCRIBE / SUBACK
	Subscriptions []Subscription
	ReturnCodes   []byte

	// UNSUBSCRIBE
	Topics []string
}

// Subscription is one (topic filter, requested QoS) pair from a SUBSCRIBE
// packet.
type Subscription struct {
	Topic string
	QoS   QoS
}
