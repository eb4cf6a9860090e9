/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package startStop provides a small generic wrapper turning a pair of
// (start, stop) functions into a runner.Runner with uptime and error tracking.
package startStop

import (
	"context"
	"sync"
	"time"

	liberr "github.com/sabouaram/evcore/errors"
)

const (
	maxErrorsKept = 32
)

const (
	ErrorInvalidStart liberr.CodeError = liberr.MinPkgRunnerStartStop + iota
	ErrorInvalidStop
)

func init() {
	if !liberr.ExistInMapMessage(ErrorInvalidStart) {
		liberr.RegisterIdFctMessage(ErrorInvalidStart, getMessage)
	}
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorInvalidStart:
		return "invalid start function"
	case ErrorInvalidStop:
		return "invalid stop function"
	}

	return ""
}

// FuncStart is called once per Start/Restart cycle; it should block until ctx is done.
type FuncStart func(ctx context.Context) error

// FuncStop is called once per Stop/Restart cycle to release resources held by FuncStart.
type FuncStop func(ctx context.Context) error

// StartStop turns a pair of start/stop functions into a supervised runner.
type StartStop interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	IsRunning() bool
	Uptime() time.Duration
	ErrorsLast() error
	ErrorsList() []error
}

type startStop struct {
	mu sync.Mutex

	fnStart FuncStart
	fnStop  FuncStop

	running bool
	since   time.Time
	cnl     context.CancelFunc
	done    chan struct{}

	errMu sync.Mutex
	errs  []error
}

// New builds a StartStop runner from the given start/stop functions. Either
// may be nil: calling Start/Stop without the matching function records an
// "invalid start/stop function" error instead of panicking.
func New(start FuncStart, stop FuncStop) StartStop {
	return &startStop{
		fnStart: start,
		fnStop:  stop,
	}
}

func (s *startStop) addError(e error) {
	if e == nil {
		return
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()

	s.errs = append(s.errs, e)
	if len(s.errs) > maxErrorsKept {
		s.errs = s.errs[len(s.errs)-maxErrorsKept:]
	}
}

func (s *startStop) ErrorsLast() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	if len(s.errs) == 0 {
		return nil
	}

	return s.errs[len(s.errs)-1]
}

func (s *startStop) ErrorsList() []error {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	out := make([]error, len(s.errs))
	copy(out, s.errs)
	return out
}

// Start stops any previous run, then launches fnStart asynchronously.
func (s *startStop) Start(ctx context.Context) error {
	s.mu.Lock()

	if s.running {
		s.mu.Unlock()
		_ = s.Stop(ctx)
		s.mu.Lock()
	}

	s.errMu.Lock()
	s.errs = nil
	s.errMu.Unlock()

	cctx, cnl := context.WithCancel(ctx)
	done := make(chan struct{})

	s.cnl = cnl
	s.done = done
	s.since = time.Now()
	s.running = true

	fn := s.fnStart
	s.mu.Unlock()

	go func() {
		defer close(done)

		if fn == nil {
			s.addError(ErrorInvalidStart.Error(nil))
		} else if err := fn(cctx); err != nil {
			s.addError(err)
		}

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	return nil
}

// Stop cancels the running start function and waits for fnStop to complete.
// Safe to call when not running.
func (s *startStop) Stop(ctx context.Context) error {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()
		return nil
	}

	cnl := s.cnl
	done := s.done
	s.running = false
	s.mu.Unlock()

	if cnl != nil {
		cnl()
	}

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}

	if s.fnStop == nil {
		s.addError(ErrorInvalidStop.Error(nil))
		return nil
	}

	if err := s.fnStop(ctx); err != nil {
		s.addError(err)
	}

	return nil
}

// Restart stops (if running) then starts again.
func (s *startStop) Restart(ctx context.Context) error {
	_ = s.Stop(ctx)
	return s.Start(ctx)
}

func (s *startStop) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

func (s *startStop) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return 0
	}

	return time.Since(s.since)
}
