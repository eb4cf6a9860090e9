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

// Package types defines the monitor contract shared between the monitor
// package's implementation and its consumers: what is being monitored
// (Info), how often and with what thresholds (Config), and the running
// instance itself (Monitor).
package types

import (
	"context"
	"time"

	libdur "github.com/sabouaram/evcore/duration"
	liblog "github.com/sabouaram/evcore/logger"
	logcfg "github.com/sabouaram/evcore/logger/config"

	"github.com/sabouaram/evcore/monitor/status"
)

// MetricsCollector is invoked with the monitor's registered metric names
// whenever a new health check result is recorded, letting a caller push
// this monitor's Collect* values under each name to its own metrics sink.
type MetricsCollector func(ctx context.Context, names ...string)

// HealthCheck is the user-supplied probe a Monitor calls on every tick.
type HealthCheck func(ctx context.Context) error

// Info identifies the thing a Monitor watches (a Manager, a listener, a
// downstream dependency) for logging, metric labeling, and status reporting.
type Info interface {
	Name() string
	Info() map[string]interface{}
}

// Config tunes a Monitor's polling cadence and its KO/Warn thresholds: a
// check must fail FallCountKO times in a row to flip the monitor to KO
// (FallCountWarn for Warn), and succeed RiseCountKO/RiseCountWarn times in
// a row to climb back up.
type Config struct {
	Name          string
	CheckTimeout  libdur.Duration
	IntervalCheck libdur.Duration
	IntervalFall  libdur.Duration
	IntervalRise  libdur.Duration
	FallCountKO   uint8
	FallCountWarn uint8
	RiseCountKO   uint8
	RiseCountWarn uint8
	Logger        logcfg.Options
}

// Monitor runs a HealthCheck on a fixed interval and reports a rolling
// status derived from consecutive successes/failures.
type Monitor interface {
	// Name is the monitor's own configured label, defaulting to "not
	// named" until SetConfig gives it one. It is distinct from the
	// identity of the thing being watched, see InfoName.
	Name() string

	InfoGet() Info
	InfoName() string
	InfoMap() map[string]interface{}
	InfoUpd(i Info)

	SetConfig(ctx context.Context, cfg Config) error
	GetConfig() Config

	SetHealthCheck(fn HealthCheck)
	GetHealthCheck() HealthCheck

	// RegisterLoggerDefault sets the fallback logger used whenever no
	// per-call logger has been attached, mirroring the rest of the
	// module's FuncLog-based dependency injection.
	RegisterLoggerDefault(fct liblog.FuncLog)

	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	IsRunning() bool

	// Clone builds a new Monitor sharing this one's info, config and
	// health check function, started if this Monitor is currently running.
	Clone(ctx context.Context) (Monitor, error)

	Status() status.Status
	Message() string
	IsRise() bool
	IsFall() bool

	Uptime() time.Duration
	Downtime() time.Duration
	Latency() time.Duration

	MarshalJSON() ([]byte, error)
	MarshalText() ([]byte, error)

	// RegisterMetricsName replaces the set of metric names this monitor
	// reports itself under; RegisterMetricsAddName appends one more,
	// ignoring it if already present.
	RegisterMetricsName(names ...string)
	RegisterMetricsAddName(names ...string)

	// RegisterCollectMetrics attaches the callback invoked, with the
	// registered metric names, every time a health check completes.
	RegisterCollectMetrics(fct MetricsCollector)

	// CollectStatus reports the current status alongside whether the
	// monitor is mid-rise or mid-fall.
	CollectStatus() (status.Status, bool, bool)
	CollectUpTime() time.Duration
	CollectDownTime() time.Duration
	CollectFallTime() time.Duration
	CollectRiseTime() time.Duration
	CollectLatency() time.Duration
}
