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

// Package wakeup implements the event loop's cross-thread notification
// channel: a non-blocking pipe registered as a pseudo-connection in the
// poller, so that any goroutine can interrupt a blocked poll() and deliver
// a payload to a specific connection id without taking a lock on the loop.
package wakeup

import (
	"encoding/binary"
	"sync"

	"golang.org/x/sys/unix"
)

// Record is one framed wakeup payload: the target connection id and its
// opaque payload bytes.
type Record struct {
	ID      uint64
	Payload []byte
}

// Channel is the write side used by any goroutine, and the read side consumed
// by the event loop on the POLL tick when the pipe's read fd becomes readable.
type Channel struct {
	mu       sync.Mutex
	readFD   int
	writeFD  int
	overflow []byte
}

// New creates a non-blocking pipe pair. ReadFD is registered by the poller;
// Wakeup is safe to call from any goroutine, including off the loop thread.
func New() (*Channel, error) {
	var fds [2]int

	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, err
	}

	return &Channel{
		readFD:  fds[0],
		writeFD: fds[1],
	}, nil
}

// ReadFD returns the file descriptor the poller registers for readability.
func (c *Channel) ReadFD() int { return c.readFD }

// Close releases both ends of the pipe.
func (c *Channel) Close() error {
	e1 := unix.Close(c.readFD)
	e2 := unix.Close(c.writeFD)

	if e1 != nil {
		return e1
	}
	return e2
}

// Wakeup encodes (id, payload) as a length-prefixed frame and writes it to
// the pipe. It is the only method in this package safe to call off the loop
// thread. Short writes are retried; the pipe is sized well beyond a single
// frame under normal load, so blocking writers are not expected.
func (c *Channel) Wakeup(id uint64, payload []byte) error {
	hdr := make([]byte, 8+4)
	binary.BigEndian.PutUint64(hdr[0:8], id)
	binary.BigEndian.PutUint32(hdr[8:12], uint32(len(payload)))

	frame := append(hdr, payload...)

	c.mu.Lock()
	defer c.mu.Unlock()

	for len(frame) > 0 {
		n, err := unix.Write(c.writeFD, frame)
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			continue
		}
		if err != nil {
			return err
		}
		frame = frame[n:]
	}

	return nil
}

// Drain reads everything currently available on the pipe and decodes it into
// zero or more complete Records. Partial frames are retained across calls.
func (c *Channel) Drain() ([]Record, error) {
	buf := make([]byte, 64*1024)
	var out []Record

	for {
		n, err := unix.Read(c.readFD, buf)
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			break
		}
		if err != nil {
			return out, err
		}
		if n <= 0 {
			break
		}

		c.overflow = append(c.overflow, buf[:n]...)
	}

	for {
		if len(c.overflow) < 12 {
			break
		}

		id := binary.BigEndian.Uint64(c.overflow[0:8])
		plen := binary.BigEndian.Uint32(c.overflow[8:12])

		if uint32(len(c.overflow)-12) < plen {
			break
		}

		payload := make([]byte, plen)
		copy(payload, c.overflow[12:12+plen])

		out = append(out, Record{ID: id, Payload: payload})
		c.overflow = c.overflow[12+plen:]
	}

	return out, nil
}
