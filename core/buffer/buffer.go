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

// Package buffer implements the growable byte buffer used for the per-connection
// receive and send queues of the event loop. It grows on write and shrinks on
// consume, and exposes high/low water marks so callers can apply backpressure.
package buffer

const (
	// DefaultCeiling is the default high water mark applied to a new Buffer.
	DefaultCeiling = 16 * 1024

	minGrow = 256
)

// Buffer is a contiguous byte queue with Append/Consume/Peek semantics.
// It is not safe for concurrent use; callers serialize access (the event loop
// owns each connection's buffers for the duration of a single dispatch).
type Buffer struct {
	buf  []byte
	low  int
	high int
	full bool
}

// New returns an empty Buffer with the given low/high water marks. A high of
// zero disables the ceiling (Append never reports full).
func New(low, high int) *Buffer {
	return &Buffer{
		low:  low,
		high: high,
	}
}

// Len returns the number of unread bytes currently buffered.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Cap returns the capacity of the underlying storage.
func (b *Buffer) Cap() int {
	return cap(b.buf)
}

// Full reports whether the buffer is over its ceiling: it is set once Len
// reaches the high water mark and clears only once Len drops below half of it.
func (b *Buffer) Full() bool {
	return b.full
}

// Bytes returns the unread portion of the buffer. The slice is only valid
// until the next Append/Consume/Reset call.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Append grows the buffer and copies p onto the end of it, updating the
// full flag against the high water mark.
func (b *Buffer) Append(p []byte) {
	if len(p) == 0 {
		return
	}

	b.buf = append(b.buf, p...)
	b.updateFull()
}

// Grow ensures at least n extra bytes of capacity are available without
// changing Len, so callers (e.g. a raw read into the buffer's tail) can
// extend the slice themselves afterward via Commit.
func (b *Buffer) Grow(n int) {
	if n <= 0 {
		return
	}

	need := len(b.buf) + n
	if cap(b.buf) >= need {
		return
	}

	grown := need
	if grown < minGrow {
		grown = minGrow
	}

	nb := make([]byte, len(b.buf), grown)
	copy(nb, b.buf)
	b.buf = nb
}

// Tail returns the writable slice after the current data, sized to at least
// n bytes (growing storage if required). The caller writes into it directly
// (e.g. via a socket read) then calls Commit with the number of bytes written.
func (b *Buffer) Tail(n int) []byte {
	b.Grow(n)
	return b.buf[len(b.buf):cap(b.buf)]
}

// Commit extends Len by n bytes previously written into the slice returned
// by Tail.
func (b *Buffer) Commit(n int) {
	if n <= 0 {
		return
	}

	b.buf = b.buf[:len(b.buf)+n]
	b.updateFull()
}

// Peek returns up to n bytes from the front of the buffer without consuming
// them.
func (b *Buffer) Peek(n int) []byte {
	if n > len(b.buf) {
		n = len(b.buf)
	}

	return b.buf[:n]
}

// Consume discards n bytes from the front of the buffer, shrinking storage
// back toward the low water mark once the remaining data is small enough.
func (b *Buffer) Consume(n int) {
	if n <= 0 {
		return
	}

	if n >= len(b.buf) {
		b.buf = b.buf[:0]
	} else {
		copy(b.buf, b.buf[n:])
		b.buf = b.buf[:len(b.buf)-n]
	}

	if b.low > 0 && cap(b.buf) > b.low && len(b.buf) <= b.low {
		nb := make([]byte, len(b.buf), b.low)
		copy(nb, b.buf)
		b.buf = nb
	}

	b.updateFull()
}

// Reset discards all buffered data but keeps the underlying storage.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.full = false
}

func (b *Buffer) updateFull() {
	if b.high <= 0 {
		b.full = false
		return
	}

	if b.full {
		b.full = len(b.buf) >= b.high/2
		return
	}

	b.full = len(b.buf) >= b.high
}
