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

package http

import (
	"bytes"
	"strconv"
	"strings"

	liberr "github.com/sabouaram/evcore/errors"
)

// State is the parser's current position in the HTTP/1.1 message grammar.
type State uint8

const (
	// StateNeedMore means the buffer does not yet hold a full element; the
	// caller should wait for more EventRead data before parsing again.
	StateNeedMore State = iota
	// StateHeaders means the header block just completed (EventHTTPHeaders).
	StateHeaders
	// StateMessage means headers and body both completed (EventHTTPMessage).
	StateMessage
	// StateError means the input violates the grammar and the connection
	// should be closed.
	StateError
)

// Parser incrementally decodes one HTTP/1.1 message (request or response)
// out of a byte stream, fed a chunk at a time as it arrives in a
// connection's receive buffer.
type Parser struct {
	headersDone bool
	msg         *Message
	bodyRead    int64
	chunkState  chunkState
}

type chunkState uint8

const (
	chunkSize chunkState = iota
	chunkData
	chunkTrailer
	chunkDone
)

// NewParser returns a fresh parser for one message.
func NewParser() *Parser {
	return &Parser{msg: &Message{}}
}

// Reset clears the parser so it can decode the next message on the same
// connection (HTTP/1.1 keep-alive).
func (p *Parser) Reset() {
	p.headersDone = false
	p.msg = &Message{}
	p.bodyRead = 0
	p.chunkState = chunkSize
}

// Parse advances the parser over buf (the connection's unread receive
// buffer). It returns the new state, the number of bytes consumed from buf
// (the caller Consumes that many from the real buffer after every call,
// before parsing again, since the next call starts from where this one
// stopped), and the in-progress Message.
func (p *Parser) Parse(buf []byte) (State, int, *Message) {
	consumed := 0

	if !p.headersDone {
		idx := bytes.Index(buf, []byte("\r\n\r\n"))
		if idx < 0 {
			if len(buf) > MaxStartLine+MaxHeaderLine*MaxHeaders {
				return StateError, 0, p.msg
			}
			return StateNeedMore, 0, p.msg
		}

		block := buf[:idx]
		if err := p.parseHeaderBlock(block); err != nil {
			return StateError, 0, p.msg
		}

		consumed = idx + 4
		p.headersDone = true
		p.msg.setFramingFromHeaders()

		if p.msg.ContentLength == 0 && !p.msg.Chunked {
			return StateMessage, consumed, p.msg
		}

		return StateHeaders, consumed, p.msg
	}

	rest := buf[consumed:]

	if p.msg.Chunked {
		n, state, ok := p.parseChunked(rest)
		consumed += n
		if !ok {
			return StateError, consumed, p.msg
		}
		if state == chunkDone {
			return StateMessage, consumed, p.msg
		}
		return StateNeedMore, consumed, p.msg
	}

	need := p.msg.ContentLength - p.bodyRead
	if int64(len(rest)) < need {
		p.msg.Body = append(p.msg.Body, rest...)
		p.bodyRead += int64(len(rest))
		return StateNeedMore, consumed + len(rest), p.msg
	}

	p.msg.Body = append(p.msg.Body, rest[:need]...)
	consumed += int(need)
	return StateMessage, consumed, p.msg
}

func (p *Parser) parseHeaderBlock(block []byte) error {
	lines := strings.Split(string(block), "\r\n")
	if len(lines) == 0 {
		return ErrorMalformed.Error(nil)
	}

	if err := p.parseStartLine(lines[0]); err != nil {
		return err
	}

	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		if len(p.msg.Headers) >= MaxHeaders {
			return ErrorTooManyHeaders.Error(nil)
		}

		i := strings.IndexByte(line, ':')
		if i < 0 {
			return ErrorMalformed.Error(nil)
		}

		name := strings.TrimSpace(line[:i])
		value := strings.TrimSpace(line[i+1:])
		p.msg.Headers = append(p.msg.Headers, Header{Name: name, Value: value})
	}

	return nil
}

func (p *Parser) parseStartLine(line string) error {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return ErrorMalformed.Error(nil)
	}

	if strings.HasPrefix(parts[0], "HTTP/") {
		p.msg.IsRequest = false
		p.msg.Proto = parts[0]

		code, err := strconv.Atoi(parts[1])
		if err != nil {
			return ErrorMalformed.Error(nil)
		}
		p.msg.StatusCode = code
		p.msg.StatusText = parts[2]
		return nil
	}

	p.msg.IsRequest = true
	p.msg.Method = parts[0]
	p.msg.URI = parts[1]
	p.msg.Proto = parts[2]

	return nil
}

// parseChunked consumes as many complete chunks as are available in rest,
// returning the number of bytes consumed and whether the terminating
// zero-length chunk (plus optional trailers) has been seen.
func (p *Parser) parseChunked(rest []byte) (int, chunkState, bool) {
	consumed := 0

	for {
		switch p.chunkState {
		case chunkSize:
			idx := bytes.Index(rest[consumed:], []byte("\r\n"))
			if idx < 0 {
				return consumed, chunkSize, true
			}

			line := string(rest[consumed : consumed+idx])
			if si := strings.IndexByte(line, ';'); si >= 0 {
				line = line[:si]
			}

			size, err := strconv.ParseInt(strings.TrimSpace(line), 16, 64)
			if err != nil {
				return consumed, chunkSize, false
			}

			consumed += idx + 2
			p.bodyRead = size

			if size == 0 {
				p.chunkState = chunkTrailer
			} else {
				p.chunkState = chunkData
			}

		case chunkData:
			need := int(p.bodyRead) + 2 // chunk data + trailing CRLF
			if len(rest)-consumed < need {
				return consumed, chunkData, true
			}

			p.msg.Body = append(p.msg.Body, rest[consumed:consumed+int(p.bodyRead)]...)
			consumed += need
			p.chunkState = chunkSize

		case chunkTrailer:
			idx := bytes.Index(rest[consumed:], []byte("\r\n\r\n"))
			if idx < 0 {
				// lone CRLF is enough when there are no trailers
				if bytes.HasPrefix(rest[consumed:], []byte("\r\n")) {
					consumed += 2
					p.chunkState = chunkDone
					return consumed, chunkDone, true
				}
				return consumed, chunkTrailer, true
			}

			consumed += idx + 4
			p.chunkState = chunkDone
			return consumed, chunkDone, true

		case chunkDone:
			return consumed, chunkDone, true
		}
	}
}

const (
	ErrorMalformed liberr.CodeError = iota + liberr.MinPkgProtoHttp
	ErrorTooManyHeaders
	ErrorResponseWrite
)

func init() {
	if !liberr.ExistInMapMessage(ErrorMalformed) {
		liberr.RegisterIdFctMessage(ErrorMalformed, getMessage)
	}
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorMalformed:
		return "malformed http message"
	case ErrorTooManyHeaders:
		return "too many http headers"
	case ErrorResponseWrite:
		return "error writing http response"
	}
	return ""
}
