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
	"encoding/binary"

	liberr "github.com/sabouaram/evcore/errors"
)

const (
	ErrorMalformed liberr.CodeError = iota + liberr.MinPkgProtoMqtt
	ErrorUnsupportedProtocol
	ErrorRemainingLengthTooLarge
	ErrorPacketTooLarge
)

func init() {
	if !liberr.ExistInMapMessage(ErrorMalformed) {
		liberr.RegisterIdFctMessage(ErrorMalformed, getMessage)
	}
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorMalformed:
		return "malformed mqtt packet"
	case ErrorUnsupportedProtocol:
		return "unsupported mqtt protocol level"
	case ErrorRemainingLengthTooLarge:
		return "mqtt remaining length exceeds 4-byte varint encoding"
	case ErrorPacketTooLarge:
		return "mqtt packet exceeds configured maximum size"
	}
	return ""
}

// MaxPacketSize bounds a single decoded packet's total size.
const MaxPacketSize = 256 * 1024

// Writer is the minimal sink a packet encoder writes into.
type Writer interface {
	Write(p []byte)
}

// decodeRemainingLength decodes the MQTT variable-length integer used for
// the fixed header's "remaining length" field. Returns the value, the
// number of bytes consumed, and whether the buffer held a complete varint.
func decodeRemainingLength(buf []byte) (value int, n int, ok bool) {
	multiplier := 1
	for i := 0; i < 4 && i < len(buf); i++ {
		b := buf[i]
		value += int(b&0x7F) * multiplier
		n++
		if b&0x80 == 0 {
			return value, n, true
		}
		multiplier *= 128
	}
	if n >= 4 {
		return 0, 0, false
	}
	return 0, 0, false
}

func encodeRemainingLength(n int) []byte {
	var out []byte
	for {
		b := byte(n % 128)
		n /= 128
		if n > 0 {
			b |= 0x80
		}
		out = append(out, b)
		if n == 0 {
			break
		}
	}
	return out
}

func readString(buf []byte) (string, int, bool) {
	if len(buf) < 2 {
		return "", 0, false
	}
	n := int(binary.BigEndian.Uint16(buf))
	if len(buf) < 2+n {
		return "", 0, false
	}
	return string(buf[2 : 2+n]), 2 + n, true
}

func writeString(dst []byte, s string) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(len(s)))
	dst = append(dst, b...)
	dst = append(dst, s...)
	return dst
}

// Decoder incrementally decodes MQTT control packets out of a connection's
// receive buffer.
type Decoder struct{}

// Decode attempts to parse one complete packet from buf, returning the
// number of bytes consumed (0 if more data is needed) and the decoded
// message, or an error for malformed input.
func (d *Decoder) Decode(buf []byte) (consumed int, msg *Message, err error) {
	if len(buf) < 2 {
		return 0, nil, nil
	}

	b0 := buf[0]
	ptype := PacketType(b0 >> 4)

	rl, rn, ok := decodeRemainingLength(buf[1:])
	if !ok {
		if len(buf) >= 5 {
			return 0, nil, ErrorRemainingLengthTooLarge.Error(nil)
		}
		return 0, nil, nil
	}

	total := 1 + rn + rl
	if total > MaxPacketSize {
		return 0, nil, ErrorPacketTooLarge.Error(nil)
	}
	if len(buf) < total {
		return 0, nil, nil
	}

	body := buf[1+rn : total]

	m := &Message{
		Type:   ptype,
		Dup:    b0&0x08 != 0,
		QoS:    QoS((b0 >> 1) & 0x03),
		Retain: b0&0x01 != 0,
	}

	var derr error
	switch ptype {
	case Connect:
		derr = decodeConnect(m, body)
	case ConnAck:
		if len(body) < 2 {
			derr = ErrorMalformed.Error(nil)
			break
		}
		m.SessionPresent = body[0]&0x01 != 0
		m.ReturnCode = body[1]
	case SubAck:
		if derr = decodePacketIDOnly(m, body); derr == nil {
			m.ReturnCodes = append([]byte(nil), body[2:]...)
		}
	case Publish:
		derr = decodePublish(m, body)
	case PubAck, PubRec, PubRel, PubComp, UnsubAck:
		derr = decodePacketIDOnly(m, body)
	case Subscribe:
		derr = decodeSubscribe(m, body)
	case Unsubscribe:
		derr = decodeUnsubscribe(m, body)
	case PingReq, PingResp, Disconnect:
		// no variable header or payload
	default:
		derr = ErrorMalformed.Error(nil)
	}

	if derr != nil {
		return total, nil, derr
	}

	return total, m, nil
}

func decodeConnect(m *Message, body []byte) error {
	proto, n, ok := readString(body)
	if !ok {
		return ErrorMalformed.Error(nil)
	}
	body = body[n:]

	if proto != "MQTT" || len(body) < 4 {
		return ErrorUnsupportedProtocol.Error(nil)
	}

	level := body[0]
	if level != 4 {
		return ErrorUnsupportedProtocol.Error(nil)
	}

	flags := body[1]
	m.CleanSession = flags&0x02 != 0
	willFlag := flags&0x04 != 0
	m.WillQoS = QoS((flags >> 3) & 0x03)
	m.WillRetain = flags&0x20 != 0
	userFlag := flags&0x80 != 0
	passFlag := flags&0x40 != 0

	m.KeepAlive = binary.BigEndian.Uint16(body[2:4])
	body = body[4:]

	clientID, n, ok := readString(body)
	if !ok {
		return ErrorMalformed.Error(nil)
	}
	m.ClientID = clientID
	body = body[n:]

	if willFlag {
		topic, n, ok := readString(body)
		if !ok {
			return ErrorMalformed.Error(nil)
		}
		m.WillTopic = topic
		body = body[n:]

		payload, n, ok := readBinary(body)
		if !ok {
			return ErrorMalformed.Error(nil)
		}
		m.WillMessage = payload
		body = body[n:]
	}

	if userFlag {
		user, n, ok := readString(body)
		if !ok {
			return ErrorMalformed.Error(nil)
		}
		m.Username = user
		body = body[n:]
	}

	if passFlag {
		pass, n, ok := readBinary(body)
		if !ok {
			return ErrorMalformed.Error(nil)
		}
		m.Password = pass
		body = body[n:]
	}

	return nil
}

func readBinary(buf []byte) ([]byte, int, bool) {
	if len(buf) < 2 {
		return nil, 0, false
	}
	n := int(binary.BigEndian.Uint16(buf))
	if len(buf) < 2+n {
		return nil, 0, false
	}
	out := make([]byte, n)
	copy(out, buf[2:2+n])
	return out, 2 + n, true
}

func decodePublish(m *Message, body []byte) error {
	topic, n, ok := readString(body)
	if !ok {
		return ErrorMalformed.Error(nil)
	}
	m.Topic = topic
	body = body[n:]

	if m.QoS > QoS0 {
		if len(body) < 2 {
			return ErrorMalformed.Error(nil)
		}
		m.PacketID = binary.BigEndian.Uint16(body)
		body = body[2:]
	}

	m.Payload = append([]byte(nil), body...)
	return nil
}

func decodePacketIDOnly(m *Message, body []byte) error {
	if len(body) < 2 {
		return ErrorMalformed.Error(nil)
	}
	m.PacketID = binary.BigEndian.Uint16(body)
	return nil
}

func decodeSubscribe(m *Message, body []byte) error {
	if len(body) < 2 {
		return ErrorMalformed.Error(nil)
	}
	m.PacketID = binary.BigEndian.Uint16(body)
	body = body[2:]

	for len(body) > 0 {
		topic, n, ok := readString(body)
		if !ok || len(body) < n+1 {
			return ErrorMalformed.Error(nil)
		}
		qos := QoS(body[n] & 0x03)
		m.Subscriptions = append(m.Subscriptions, Subscription{Topic: topic, QoS: qos})
		body = body[n+1:]
	}

	return nil
}

func decodeUnsubscribe(m *Message, body []byte) error {
	if len(body) < 2 {
		return ErrorMalformed.Error(nil)
	}
	m.PacketID = binary.BigEndian.Uint16(body)
	body = body[2:]

	for len(body) > 0 {
		topic, n, ok := readString(body)
		if !ok {
			return ErrorMalformed.Error(nil)
		}
		m.Topics = append(m.Topics, topic)
		body = body[n:]
	}

	return nil
}

func writeFixedHeader(w Writer, ptype PacketType, flags byte, remaining []byte) {
	w.Write([]byte{byte(ptype)<<4 | flags})
	w.Write(encodeRemainingLength(len(remaining)))
	if len(remaining) > 0 {
		w.Write(remaining)
	}
}

// ConnAckPacket writes a CONNACK packet.
func ConnAckPacket(w Writer, sessionPresent bool, code byte) {
	var sp byte
	if sessionPresent {
		sp = 0x01
	}
	writeFixedHeader(w, ConnAck, 0, []byte{sp, code})
}

// PingRespPacket writes a PINGRESP packet (the reply to PINGREQ).
func PingRespPacket(w Writer) {
	writeFixedHeader(w, PingResp, 0, nil)
}

// PubAckPacket writes a PUBACK packet acknowledging a QoS 1 PUBLISH.
func PubAckPacket(w Writer, packetID uint16) {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, packetID)
	writeFixedHeader(w, PubAck, 0, b)
}

// SubAckPacket writes a SUBACK packet with the granted QoS/failure codes.
func SubAckPacket(w Writer, packetID uint16, codes []byte) {
	var rem []byte
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, packetID)
	rem = append(rem, b...)
	rem = append(rem, codes...)
	writeFixedHeader(w, SubAck, 0, rem)
}

// UnsubAckPacket writes an UNSUBACK packet.
func UnsubAckPacket(w Writer, packetID uint16) {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, packetID)
	writeFixedHeader(w, UnsubAck, 0, b)
}

// PublishPacket writes a PUBLISH packet to a subscriber.
func PublishPacket(w Writer, topic string, payload []byte, qos QoS, packetID uint16, retain bool) {
	var flags byte
	flags |= byte(qos) << 1
	if retain {
		flags |= 0x01
	}

	var rem []byte
	rem = writeString(rem, topic)
	if qos > QoS0 {
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, packetID)
		rem = append(rem, b...)
	}
	rem = append(rem, payload...)

	writeFixedHeader(w, Publish, flags, rem)
}

// DisconnectPacket writes a DISCONNECT packet.
func DisconnectPacket(w Writer) {
	writeFixedHeader(w, Disconnect, 0, nil)
}
