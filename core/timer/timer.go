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

// Package timer implements the event loop's timer wheel: a plain intrusive
// singly-linked list of Timer entries, walked once per poll tick. It is not
// a hashed wheel - the loop is expected to hold at most a few hundred timers,
// so linear scan-and-splice is cheap and keeps the data structure trivial to
// reason about from inside a single-threaded dispatch.
package timer

import (
	"time"
)

// Flag describes the behavior and state of a Timer entry.
type Flag uint8

const (
	// Once fires the timer exactly one time then removes it.
	Once Flag = 1 << iota
	// Repeat reschedules the timer for period after it fires.
	Repeat
	// RunNow fires the timer immediately on the next tick regardless of period.
	RunNow
	// Called is set on a timer once its callback has run at least once.
	Called
	// AutoDelete removes the timer from the wheel as soon as it has fired,
	// even if Repeat is also set (used for one-shot-then-forget callbacks).
	AutoDelete
)

// Func is invoked when a Timer expires. The returned bool only matters for
// Repeat timers: returning false cancels further repeats.
type Func func(t *Timer) bool

// Timer is one entry of the wheel's intrusive list.
type Timer struct {
	next *Timer

	id     uint64
	expire time.Time
	period time.Duration
	flags  Flag
	fn     Func
}

// ID returns the identifier assigned when the timer was added.
func (t *Timer) ID() uint64 { return t.id }

// Expire returns the timer's next firing time.
func (t *Timer) Expire() time.Time { return t.expire }

// Wheel is the singly-linked list of active timers for one event loop.
type Wheel struct {
	head   *Timer
	nextID uint64
}

// NewWheel returns an empty timer wheel.
func NewWheel() *Wheel {
	return &Wheel{}
}

// Add inserts a new timer firing after delay (or immediately if RunNow is set),
// repeating every period while Repeat is set.
func (w *Wheel) Add(delay, period time.Duration, flags Flag, fn Func) *Timer {
	w.nextID++

	t := &Timer{
		id:     w.nextID,
		period: period,
		flags:  flags,
		fn:     fn,
	}

	if flags&RunNow != 0 {
		t.expire = time.Now()
	} else {
		t.expire = time.Now().Add(delay)
	}

	t.next = w.head
	w.head = t

	return t
}

// Remove unlinks a timer from the wheel by identifier. Returns true if found.
func (w *Wheel) Remove(id uint64) bool {
	var prev *Timer

	for cur := w.head; cur != nil; cur = cur.next {
		if cur.id == id {
			if prev == nil {
				w.head = cur.next
			} else {
				prev.next = cur.next
			}
			return true
		}
		prev = cur
	}

	return false
}

// Poll walks the list once, firing every timer whose expiry has passed.
// It returns the duration until the next pending expiry, or -1 if the wheel
// is empty, so the caller can bound its next poll() wait.
func (w *Wheel) Poll(now time.Time) time.Duration {
	var (
		prev *Timer
		next time.Duration = -1
	)

	cur := w.head

	for cur != nil {
		t := cur

		if now.Before(t.expire) {
			d := t.expire.Sub(now)
			if next < 0 || d < next {
				next = d
			}
			prev = cur
			cur = cur.next
			continue
		}

		keep := true
		if t.fn != nil {
			keep = t.fn(t)
		}
		t.flags |= Called

		remove := t.flags&Once != 0 || t.flags&AutoDelete != 0 || (t.flags&Repeat != 0 && !keep)

		if t.flags&Repeat != 0 && keep && t.flags&Once == 0 {
			t.expire = now.Add(t.period)
			if next < 0 || t.period < next {
				next = t.period
			}
		}

		nxt := cur.next

		if remove {
			if prev == nil {
				w.head = nxt
			} else {
				prev.next = nxt
			}
		} else {
			prev = cur
		}

		cur = nxt
	}

	return next
}

// Len counts the currently scheduled timers (O(n), diagnostic use only).
func (w *Wheel) Len() int {
	n := 0
	for cur := w.head; cur != nil; cur = cur.next {
		n++
	}
	return n
}
