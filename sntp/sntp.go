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

// Package sntp implements a minimal SNTP v4 (RFC 4330) client packet codec:
// build a client request, parse a server reply into a wall-clock time and
// round-trip estimate. The codec is transport-agnostic; core.Manager does not
// drive it and does not dispatch EventSNTPTime.
package sntp

import (
	"encoding/binary"
	"time"

	liberr "github.com/sabouaram/evcore/errors"
)

const (
	ErrorMalformed liberr.CodeError = iota + liberr.MinPkgSntp
	ErrorNotServerReply
)

func init() {
	if !liberr.ExistInMapMessage(ErrorMalformed) {
		liberr.RegisterIdFctMessage(ErrorMalformed, getMessage)
	}
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorMalformed:
		return "malformed sntp packet"
	case ErrorNotServerReply:
		return "sntp packet is not a server reply"
	}
	return ""
}

// packetSize is the fixed SNTP v4 packet length (no extension fields).
const packetSize = 48

// ntpEpochOffset is the number of seconds between the NTP epoch
// (1900-01-01) and the Unix epoch (1970-01-01).
const ntpEpochOffset = 2208988800

// leapIndicator values (packet byte 0, bits 6-7).
type LeapIndicator uint8

const (
	LeapNone LeapIndicator = iota
	LeapLastMinute61
	LeapLastMinute59
	LeapUnsynchronized
)

// Mode values (packet byte 0, bits 0-2).
type Mode uint8

const (
	_ Mode = iota
	ModeSymmetricActive
	ModeSymmetricPassive
	ModeClient
	ModeServer
	ModeBroadcast
)

// Reply is a decoded SNTP server reply.
type Reply struct {
	LeapIndicator LeapIndicator
	Version       uint8
	Mode          Mode
	Stratum       uint8
	ReceiveTime   time.Time
	TransmitTime  time.Time
	OriginTime    time.Time
}

// BuildRequest returns a 48-byte SNTP v4 client request packet, stamping
// its own transmit timestamp as txTime.
func BuildRequest(txTime time.Time) []byte {
	pkt := make([]byte, packetSize)
	pkt[0] = byte(LeapNone)<<6 | 4<<3 | byte(ModeClient)
	putTimestamp(pkt[40:48], txTime)
	return pkt
}

// ParseReply decodes a server reply. buf must be at least 48 bytes.
func ParseReply(buf []byte) (*Reply, error) {
	if len(buf) < packetSize {
		return nil, ErrorMalformed.Error(nil)
	}

	b0 := buf[0]
	r := &Reply{
		LeapIndicator: LeapIndicator(b0 >> 6),
		Version:       (b0 >> 3) & 0x07,
		Mode:          Mode(b0 & 0x07),
		Stratum:       buf[1],
	}

	if r.Mode != ModeServer && r.Mode != ModeBroadcast {
		return nil, ErrorNotServerReply.Error(nil)
	}

	r.OriginTime = readTimestamp(buf[24:32])
	r.ReceiveTime = readTimestamp(buf[32:40])
	r.TransmitTime = readTimestamp(buf[40:48])

	return r, nil
}

// Offset estimates the clock offset (server time - local time) using the
// classic SNTP four-timestamp formula, given the local time the client
// received the reply at.
func (r *Reply) Offset(localReceiveTime time.Time) time.Duration {
	t1 := r.OriginTime
	t2 := r.ReceiveTime
	t3 := r.TransmitTime
	t4 := localReceiveTime

	return ((t2.Sub(t1) + t3.Sub(t4)) / 2)
}

// RoundTrip estimates the network round-trip delay.
func (r *Reply) RoundTrip(localReceiveTime time.Time) time.Duration {
	return localReceiveTime.Sub(r.OriginTime) - r.TransmitTime.Sub(r.ReceiveTime)
}

func putTimestamp(dst []byte, t time.Time) {
	secs := uint32(t.Unix() + ntpEpochOffset)
	frac := uint32((uint64(t.Nanosecond()) << 32) / 1e9)
	binary.BigEndian.PutUint32(dst[0:4], secs)
	binary.BigEndian.PutUint32(dst[4:8], frac)
}

func readTimestamp(buf []byte) time.Time {
	secs := binary.BigEndian.Uint32(buf[0:4])
	frac := binary.BigEndian.Uint32(buf[4:8])

	if secs == 0 && frac == 0 {
		return time.Time{}
	}

	nsec := (uint64(frac) * 1e9) >> 32
	return time.Unix(int64(secs)-ntpEpochOffset, int64(nsec)).UTC()
}
