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

package semaphore

import (
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
)

// Bar is a single progress indicator, optionally backed by an mpb bar. A Bar
// created from a Semaphore with no progress container is a no-op tracker:
// its Total is always 0 and Inc/Complete do not render anything.
type Bar interface {
	// NewWorker acquires a worker slot from the owning Semaphore.
	NewWorker() error

	// DeferWorker advances the bar by one unit and releases the worker slot.
	DeferWorker()

	Inc(n int)
	Inc64(n int64)
	Total() int64
	Complete()
	Completed() bool
}

type noopBar struct {
	s   Semaphore
	tot int64
	cpl atomic.Bool
}

func (b *noopBar) NewWorker() error   { return b.s.NewWorker() }
func (b *noopBar) DeferWorker()       { b.Inc(1); b.s.DeferWorker() }
func (b *noopBar) Inc(_ int)          {}
func (b *noopBar) Inc64(_ int64)      {}
func (b *noopBar) Total() int64       { return 0 }
func (b *noopBar) Complete()          { b.cpl.Store(true) }
func (b *noopBar) Completed() bool    { return b.cpl.Load() }

type mpbBar struct {
	s   Semaphore
	bar *mpb.Bar
	tot int64
	cpl atomic.Bool
}

func (b *mpbBar) NewWorker() error { return b.s.NewWorker() }

func (b *mpbBar) DeferWorker() {
	b.Inc(1)
	b.s.DeferWorker()
}

func (b *mpbBar) Inc(n int)     { b.bar.IncrBy(n) }
func (b *mpbBar) Inc64(n int64) { b.bar.IncrBy(int(n)) }
func (b *mpbBar) Total() int64  { return b.tot }

func (b *mpbBar) Complete() {
	b.bar.SetCurrent(b.tot)
	b.cpl.Store(true)
}

func (b *mpbBar) Completed() bool { return b.cpl.Load() }

func (s *sem) newBar(total int64, _ bool) Bar {
	if s.pgb == nil {
		return &noopBar{s: s, tot: total}
	}

	return &mpbBar{
		s:   s,
		bar: s.pgb.AddBar(total),
		tot: total,
	}
}

func (s *sem) BarBytes(_, _ string, total int64, drop bool, _ Bar) Bar {
	return s.newBar(total, drop)
}

func (s *sem) BarTime(_, _ string, total int64, drop bool, _ Bar) Bar {
	return s.newBar(total, drop)
}

func (s *sem) BarNumber(_, _ string, total int64, drop bool, _ Bar) Bar {
	return s.newBar(total, drop)
}

func (s *sem) BarOpts(total int64, drop bool) Bar {
	return s.newBar(total, drop)
}
