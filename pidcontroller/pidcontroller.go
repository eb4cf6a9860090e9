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
 */

// Package pidcontroller steps a value from a starting point toward a target
// using a proportional-integral-derivative loop, for callers (duration.Range*)
// that need a non-uniform sequence of samples between two bounds.
package pidcontroller

import "context"

// Controller holds the three PID gains used to size each step.
type Controller struct {
	kp, ki, kd float64
}

// New returns a Controller with the given proportional, integral and
// derivative gains.
func New(rateP, rateI, rateD float64) *Controller {
	return &Controller{kp: rateP, ki: rateI, kd: rateD}
}

// maxSteps bounds the loop so degenerate gains (zero or negative) cannot
// spin forever; RangeCtx falls back to a minimum step in that case.
const maxSteps = 10000

// RangeCtx returns a monotonically increasing sequence of float64 samples
// starting at from and ending at to. Each step is sized by the PID loop
// driven by the remaining error (to - current); when the gains would shrink
// or reverse the step, a minimum forward step keeps the sequence advancing.
// It stops early and returns whatever it has built so far if ctx is done.
func (c *Controller) RangeCtx(ctx context.Context, from, to float64) []float64 {
	out := []float64{from}

	if to <= from {
		return out
	}

	minStep := (to - from) / float64(maxSteps)
	if minStep <= 0 {
		minStep = 1
	}

	var integral, prevErr float64
	current := from

	for i := 0; i < maxSteps && current < to; i++ {
		select {
		case <-ctx.Done():
			return out
		default:
		}

		err := to - current
		integral += err
		derivative := err - prevErr
		prevErr = err

		step := c.kp*err + c.ki*integral + c.kd*derivative
		if step < minStep {
			step = minStep
		}

		current += step
		if current > to {
			current = to
		}

		out = append(out, current)
	}

	if out[len(out)-1] != to {
		out = append(out, to)
	}

	return out
}
