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

// Package runner defines the common lifecycle contract shared by every long-running
// component in the module (event loop manager, HTTP/WS/MQTT listeners, monitors).
package runner

import (
	"context"
	"time"
)

// Runner is the minimal lifecycle contract any managed background service exposes.
// Concrete components embed Runner and add their own domain-specific methods.
type Runner interface {
	// Start launches the service. It must return quickly: the actual work runs
	// asynchronously and failures surface through ErrorsLast/ErrorsList.
	Start(ctx context.Context) error

	// Stop halts the service, waiting for graceful shutdown to complete.
	Stop(ctx context.Context) error

	// Restart stops then starts the service again.
	Restart(ctx context.Context) error

	// IsRunning reports whether the service is currently active.
	IsRunning() bool

	// Uptime returns how long the service has been running, zero if stopped.
	Uptime() time.Duration

	// ErrorsLast returns the most recently recorded error, nil if none.
	ErrorsLast() error

	// ErrorsList returns every error recorded since the service started.
	ErrorsList() []error
}
