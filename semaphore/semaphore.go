/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
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

// Package semaphore caps the number of concurrent workers a caller may run,
// optionally rendering their progress on an mpb multi-bar container.
package semaphore

import (
	"context"

	"github.com/vbauerster/mpb/v8"
	xsem "golang.org/x/sync/semaphore"
)

// Semaphore bounds concurrent work to Weighted() simultaneous workers (or
// runs unbounded when Weighted() is negative), and optionally drives an mpb
// progress container shared by every Bar it creates.
type Semaphore interface {
	context.Context

	// New creates a fresh, independent Semaphore with the same weight and
	// progress-container behavior as the receiver.
	New() Semaphore

	// Clone creates an independent Semaphore that shares this one's mpb
	// container (if any), so bars from both render in the same display.
	Clone() Semaphore

	// NewWorker blocks until a worker slot is available or the context
	// driving this Semaphore is done.
	NewWorker() error

	// NewWorkerTry acquires a worker slot without blocking, reporting
	// whether one was available.
	NewWorkerTry() bool

	// DeferWorker releases a worker slot acquired by NewWorker/NewWorkerTry.
	DeferWorker()

	// DeferMain releases every resource owned by this Semaphore (its
	// context and, if owned, its mpb container). Call once, when the
	// caller is done creating workers.
	DeferMain()

	// WaitAll blocks until every currently-acquired worker slot is released.
	WaitAll() error

	// Weighted returns the maximum number of simultaneous workers, or -1
	// if this Semaphore is unbounded.
	Weighted() int64

	// BarBytes returns a Bar meant to track a byte count (e.g. a transfer).
	BarBytes(title, status string, total int64, drop bool, prev Bar) Bar

	// BarTime returns a Bar meant to track a duration-bounded operation.
	BarTime(title, status string, total int64, drop bool, prev Bar) Bar

	// BarNumber returns a Bar meant to track a plain item count.
	BarNumber(title, status string, total int64, drop bool, prev Bar) Bar

	// BarOpts returns a bare Bar with no title/status decoration.
	BarOpts(total int64, drop bool) Bar

	// GetMPB returns the underlying *mpb.Progress container, or nil if this
	// Semaphore was created without progress rendering.
	GetMPB() interface{}
}

type sem struct {
	context.Context
	cancel context.CancelFunc

	w *xsem.Weighted // nil means unbounded
	n int64

	pgb     *mpb.Progress
	ownsPgb bool
}

// New returns a Semaphore capping concurrency at n simultaneous workers.
// n <= 0 means unbounded: NewWorker/NewWorkerTry never block. When
// withProgress is true, every Bar created from the returned Semaphore (and
// its clones) renders on a shared mpb.Progress container.
func New(ctx context.Context, n int64, withProgress bool) Semaphore {
	c, cancel := context.WithCancel(ctx)

	s := &sem{
		Context: c,
		cancel:  cancel,
		n:       n,
	}

	if n > 0 {
		s.w = xsem.NewWeighted(n)
	}

	if withProgress {
		s.pgb = mpb.New(mpb.WithContext(c))
		s.ownsPgb = true
	}

	return s
}

func (s *sem) New() Semaphore {
	return New(s.Context, s.n, s.pgb != nil)
}

func (s *sem) Clone() Semaphore {
	c, cancel := context.WithCancel(s.Context)

	n := &sem{
		Context: c,
		cancel:  cancel,
		n:       s.n,
		pgb:     s.pgb,
		ownsPgb: false,
	}

	if s.n > 0 {
		n.w = xsem.NewWeighted(s.n)
	}

	return n
}

func (s *sem) NewWorker() error {
	if s.w == nil {
		return nil
	}
	return s.w.Acquire(s.Context, 1)
}

func (s *sem) NewWorkerTry() bool {
	if s.w == nil {
		return true
	}
	return s.w.TryAcquire(1)
}

func (s *sem) DeferWorker() {
	if s.w == nil {
		return
	}
	s.w.Release(1)
}

func (s *sem) DeferMain() {
	if s.ownsPgb && s.pgb != nil {
		s.pgb.Wait()
	}
	s.cancel()
}

func (s *sem) WaitAll() error {
	if s.w == nil {
		return nil
	}
	if err := s.w.Acquire(s.Context, s.n); err != nil {
		return err
	}
	s.w.Release(s.n)
	return nil
}

func (s *sem) Weighted() int64 {
	if s.n <= 0 {
		return -1
	}
	return s.n
}

func (s *sem) GetMPB() interface{} {
	if s.pgb == nil {
		return nil
	}
	return s.pgb
}
