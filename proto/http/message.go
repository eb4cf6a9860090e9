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

// Package http implements an HTTP/1.1 parser and a small responder
// helper, plugged into a core.Manager connection through its Recv/Send
// buffers. Message views are only valid for the dispatch that produced them:
// a Handler that needs the data past EventHTTPMessage must copy it out.
package http

import (
	"strconv"
	"strings"
)

const (
	// MaxHeaders bounds the number of header lines a single message may carry.
	MaxHeaders = 30
	// MaxHeaderLine and MaxStartLine size the cap on an unterminated header
	// block: Parse fails once more than MaxStartLine+MaxHeaderLine*MaxHeaders
	// bytes arrive without the blank line. Single lines are not checked
	// against them.
	MaxHeaderLine = 8 * 1024
	MaxStartLine  = 8 * 1024
)

// Header is one raw (name, value) header pair, copied out of the
// connection's receive buffer.
type Header struct {
	Name  string
	Value string
}

// Message is a parsed HTTP/1.1 request or response. Its Headers/Body slices
// reference the parser's internal copy, not the live receive buffer, so they
// remain valid for the duration of the dispatch.
type Message struct {
	IsRequest bool

	Method string
	URI    string

	StatusCode int
	StatusText string

	Proto string // "HTTP/1.1"

	Headers []Header
	Body    []byte

	Chunked       bool
	ContentLength int64
	KeepAlive     bool
}

// Header returns the first header matching name case-insensitively, or "".
func (m *Message) Header(name string) string {
	for _, h := range m.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func (m *Message) setFramingFromHeaders() {
	if v := m.Header("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			m.ContentLength = n
		}
	}

	if v := strings.ToLower(m.Header("Transfer-Encoding")); strings.Contains(v, "chunked") {
		m.Chunked = true
	}

	conn := strings.ToLower(m.Header("Connection"))
	switch {
	case strings.Contains(conn, "close"):
		m.KeepAlive = false
	case strings.Contains(conn, "keep-alive"):
		m.KeepAlive = true
	default:
		m.KeepAlive = m.Proto == "HTTP/1.1"
	}
}
