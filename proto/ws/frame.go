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

package ws

import (
	"encoding/binary"
	"math/bits"

	liberr "github.com/sabouaram/evcore/errors"
)

// Opcode identifies a WebSocket frame's payload type.
type Opcode uint8

const (
	OpContinuation Opcode = 0x0
	OpText         Opcode = 0x1
	OpBinary       Opcode = 0x2
	OpClose        Opcode = 0x8
	OpPing         Opcode = 0x9
	OpPong         Opcode = 0xA
)

// IsControl reports whether the opcode identifies a control frame.
func (o Opcode) IsControl() bool { return o >= OpClose }

// Frame is one decoded WebSocket frame.
type Frame struct {
	Fin     bool
	Opcode  Opcode
	Payload []byte
}

// Writer is the minimal sink a frame encoder writes into.
type Writer interface {
	Write(p []byte)
}

const (
	ErrorFrameTooLarge liberr.CodeError = iota + liberr.MinPkgProtoWebsocket
	ErrorBadFrame
)

func init() {
	if !liberr.ExistInMapMessage(ErrorFrameTooLarge) {
		liberr.RegisterIdFctMessage(ErrorFrameTooLarge, getMessage)
	}
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorFrameTooLarge:
		return "websocket frame exceeds configured maximum size"
	case ErrorBadFrame:
		return "malformed websocket frame"
	}
	return ""
}

// MaxFramePayload bounds a single frame's payload length.
const MaxFramePayload = 16 * 1024 * 1024

// Decoder incrementally decodes frames out of a connection's receive
// buffer, joining fragmented messages (continuation frames) into a single
// Frame delivered once Fin is seen, and auto-answering PING with PONG is
// left to the caller (Decode just classifies the control frame).
type Decoder struct {
	fragOp      Opcode
	fragPayload []byte
	fragmenting bool
}

// Decode attempts to parse one frame from buf. It returns the number of
// bytes consumed (0 if more data is needed), the decoded frame (nil if
// incomplete or the frame was a continuation still being assembled), and an
// error for malformed input.
func (d *Decoder) Decode(buf []byte) (consumed int, frame *Frame, err error) {
	if len(buf) < 2 {
		return 0, nil, nil
	}

	b0, b1 := buf[0], buf[1]
	fin := b0&0x80 != 0
	opcode := Opcode(b0 & 0x0F)
	masked := b1&0x80 != 0
	plen := int64(b1 & 0x7F)

	i := 2

	switch plen {
	case 126:
		if len(buf) < i+2 {
			return 0, nil, nil
		}
		plen = int64(binary.BigEndian.Uint16(buf[i : i+2]))
		i += 2
	case 127:
		if len(buf) < i+8 {
			return 0, nil, nil
		}
		plen = int64(binary.BigEndian.Uint64(buf[i : i+8]))
		i += 8
	}

	if plen > MaxFramePayload {
		return 0, nil, ErrorFrameTooLarge.Error(nil)
	}

	var maskKey [4]byte
	if masked {
		if len(buf) < i+4 {
			return 0, nil, nil
		}
		copy(maskKey[:], buf[i:i+4])
		i += 4
	}

	if int64(len(buf)-i) < plen {
		return 0, nil, nil
	}

	payload := make([]byte, plen)
	copy(payload, buf[i:int64(i)+plen])

	if masked {
		for j := range payload {
			payload[j] ^= maskKey[j%4]
		}
	}

	consumed = i + int(plen)

	if opcode.IsControl() {
		return consumed, &Frame{Fin: true, Opcode: opcode, Payload: payload}, nil
	}

	if opcode != OpContinuation {
		d.fragmenting = true
		d.fragOp = opcode
		d.fragPayload = append(d.fragPayload[:0], payload...)
	} else if d.fragmenting {
		d.fragPayload = append(d.fragPayload, payload...)
	} else {
		return consumed, nil, ErrorBadFrame.Error(nil)
	}

	if !fin {
		return consumed, nil, nil
	}

	full := &Frame{Fin: true, Opcode: d.fragOp, Payload: append([]byte(nil), d.fragPayload...)}
	d.fragmenting = false
	d.fragPayload = nil

	return consumed, full, nil
}

// Encode writes a single, unmasked frame (server-to-client framing never
// masks per RFC 6455) to w.
func Encode(w Writer, opcode Opcode, payload []byte) {
	hdr := make([]byte, 0, 10)
	hdr = append(hdr, 0x80|byte(opcode))

	n := len(payload)
	switch {
	case n < 126:
		hdr = append(hdr, byte(n))
	case n <= 0xFFFF:
		hdr = append(hdr, 126)
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(n))
		hdr = append(hdr, b...)
	default:
		hdr = append(hdr, 127)
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(n))
		hdr = append(hdr, b...)
	}

	w.Write(hdr)
	if n > 0 {
		w.Write(payload)
	}
}

// Ping writes a PING control frame.
func Ping(w Writer, payload []byte) { Encode(w, OpPing, payload) }

// Pong writes a PONG control frame, the required reply to a received PING.
func Pong(w Writer, payload []byte) { Encode(w, OpPong, payload) }

// Close writes a CLOSE control frame with the given status code and reason.
func Close(w Writer, code uint16, reason string) {
	payload := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(payload, code)
	copy(payload[2:], reason)
	Encode(w, OpClose, payload)
}

// Text writes a complete (single-frame) text message.
func Text(w Writer, s string) { Encode(w, OpText, []byte(s)) }

// Binary writes a complete (single-frame) binary message.
func Binary(w Writer, p []byte) { Encode(w, OpBinary, p) }

var _ = bits.LeadingZeros8 // keep math/bits imported for future frame-size tiering
