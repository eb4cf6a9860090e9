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

// Package monitor runs a periodic health check against something a Manager
// depends on (or the Manager itself) and exposes a rolling OK/Warn/KO
// status, following consecutive-success/failure thresholds. A caller can
// attach a MetricsCollector callback to push each check's result into its
// own metrics sink under a set of registered names.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	libdur "github.com/sabouaram/evcore/duration"
	liberr "github.com/sabouaram/evcore/errors"
	liblog "github.com/sabouaram/evcore/logger"
	loglvl "github.com/sabouaram/evcore/logger/level"
	librun "github.com/sabouaram/evcore/runner/startStop"

	"github.com/sabouaram/evcore/monitor/status"
	libtps "github.com/sabouaram/evcore/monitor/types"
)

const (
	ErrorInfoNil liberr.CodeError = iota + liberr.MinPkgMonitor
	ErrorConfigInvalid
)

func init() {
	if !liberr.ExistInMapMessage(ErrorInfoNil) {
		liberr.RegisterIdFctMessage(ErrorInfoNil, getMessage)
	}
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorInfoNil:
		return "monitor info cannot be nil"
	case ErrorConfigInvalid:
		return "monitor config is invalid"
	}
	return ""
}

const (
	defaultName          = "not named"
	minInterval          = 100 * time.Millisecond
	defaultCheckTimeout  = 5 * time.Second
	defaultIntervalCheck = time.Second
	defaultCount         = 1
)

type monitor struct {
	info libtps.Info

	mu     sync.Mutex
	cfg    libtps.Config
	fn     libtps.HealthCheck
	logDef liblog.FuncLog

	metricsNames []string
	metricsFct   libtps.MetricsCollector

	statMu        sync.RWMutex
	stat          status.Status
	msg           string
	rising        bool
	falling       bool
	successStreak int
	failStreak    int

	lastLatency time.Duration
	startedAt   time.Time
	stoppedAt   time.Time
	lastRiseAt  time.Time
	lastFallAt  time.Time

	ss librun.StartStop
}

// New builds a Monitor watching info. Start does not require a probe: until
// a SetHealthCheck call configures one, every tick counts as a failed check
// with a message noting the missing healthcheck.
func New(ctx context.Context, info libtps.Info) (libtps.Monitor, error) {
	if info == nil {
		return nil, ErrorInfoNil.Error(nil)
	}

	m := &monitor{
		info: info,
		stat: status.KO,
		msg:  "no healcheck performed yet",
		cfg: libtps.Config{
			Name:          defaultName,
			CheckTimeout:  libdur.ParseDuration(defaultCheckTimeout),
			IntervalCheck: libdur.ParseDuration(defaultIntervalCheck),
			IntervalFall:  libdur.ParseDuration(defaultIntervalCheck),
			IntervalRise:  libdur.ParseDuration(defaultIntervalCheck),
			FallCountKO:   defaultCount,
			FallCountWarn: defaultCount,
			RiseCountKO:   defaultCount,
			RiseCountWarn: defaultCount,
		},
	}

	m.ss = librun.New(m.run, m.teardown)
	return m, nil
}

func (m *monitor) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg.Name == "" {
		return defaultName
	}
	return m.cfg.Name
}

func (m *monitor) InfoGet() libtps.Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info
}

func (m *monitor) InfoName() string {
	m.mu.Lock()
	i := m.info
	m.mu.Unlock()
	if i == nil {
		return ""
	}
	return i.Name()
}

func (m *monitor) InfoMap() map[string]interface{} {
	m.mu.Lock()
	i := m.info
	m.mu.Unlock()
	if i == nil {
		return nil
	}
	return i.Info()
}

func (m *monitor) InfoUpd(i libtps.Info) {
	m.mu.Lock()
	m.info = i
	m.mu.Unlock()
}

func (m *monitor) SetConfig(_ context.Context, cfg libtps.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cfg.Name == "" {
		cfg.Name = defaultName
	}
	if cfg.CheckTimeout.Time() <= 0 {
		cfg.CheckTimeout = libdur.ParseDuration(defaultCheckTimeout)
	}
	if cfg.IntervalCheck.Time() < minInterval {
		cfg.IntervalCheck = libdur.ParseDuration(minInterval)
	}
	if cfg.IntervalFall.Time() < minInterval {
		cfg.IntervalFall = cfg.IntervalCheck
	}
	if cfg.IntervalRise.Time() < minInterval {
		cfg.IntervalRise = cfg.IntervalCheck
	}
	if cfg.FallCountKO == 0 {
		cfg.FallCountKO = defaultCount
	}
	if cfg.FallCountWarn == 0 {
		cfg.FallCountWarn = defaultCount
	}
	if cfg.RiseCountKO == 0 {
		cfg.RiseCountKO = defaultCount
	}
	if cfg.RiseCountWarn == 0 {
		cfg.RiseCountWarn = defaultCount
	}

	m.cfg = cfg
	return nil
}

func (m *monitor) GetConfig() libtps.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

func (m *monitor) SetHealthCheck(fn libtps.HealthCheck) {
	m.mu.Lock()
	m.fn = fn
	m.mu.Unlock()
}

func (m *monitor) GetHealthCheck() libtps.HealthCheck {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fn
}

func (m *monitor) RegisterLoggerDefault(fct liblog.FuncLog) {
	m.mu.Lock()
	m.logDef = fct
	m.mu.Unlock()
}

func (m *monitor) logger() liblog.Logger {
	m.mu.Lock()
	fct := m.logDef
	m.mu.Unlock()

	if fct == nil {
		return nil
	}
	return fct()
}

func (m *monitor) Start(ctx context.Context) error {
	m.statMu.Lock()
	m.startedAt = timeNow()
	m.stoppedAt = time.Time{}
	m.statMu.Unlock()
	return m.ss.Start(ctx)
}

func (m *monitor) Stop(ctx context.Context) error {
	err := m.ss.Stop(ctx)
	m.statMu.Lock()
	m.stoppedAt = timeNow()
	m.statMu.Unlock()
	return err
}

func (m *monitor) Restart(ctx context.Context) error {
	if err := m.Stop(ctx); err != nil {
		return err
	}
	return m.Start(ctx)
}

func (m *monitor) IsRunning() bool {
	return m.ss.IsRunning()
}

func (m *monitor) Clone(ctx context.Context) (libtps.Monitor, error) {
	m.mu.Lock()
	info, cfg, fn, logDef := m.info, m.cfg, m.fn, m.logDef
	m.mu.Unlock()

	running := m.IsRunning()

	c, err := New(ctx, info)
	if err != nil {
		return nil, err
	}

	cl := c.(*monitor)
	cl.cfg = cfg
	cl.fn = fn
	cl.logDef = logDef

	if running {
		if err = cl.Start(ctx); err != nil {
			return nil, err
		}
	}

	return cl, nil
}

func (m *monitor) Status() status.Status {
	m.statMu.RLock()
	defer m.statMu.RUnlock()
	return m.stat
}

func (m *monitor) Message() string {
	m.statMu.RLock()
	defer m.statMu.RUnlock()
	return m.msg
}

func (m *monitor) IsRise() bool {
	m.statMu.RLock()
	defer m.statMu.RUnlock()
	return m.rising
}

func (m *monitor) IsFall() bool {
	m.statMu.RLock()
	defer m.statMu.RUnlock()
	return m.falling
}

func (m *monitor) Uptime() time.Duration {
	m.statMu.RLock()
	defer m.statMu.RUnlock()
	if m.startedAt.IsZero() || !m.ss.IsRunning() {
		return 0
	}
	return timeNow().Sub(m.startedAt)
}

func (m *monitor) Downtime() time.Duration {
	m.statMu.RLock()
	defer m.statMu.RUnlock()
	if m.ss.IsRunning() || m.stoppedAt.IsZero() {
		return 0
	}
	return timeNow().Sub(m.stoppedAt)
}

func (m *monitor) Latency() time.Duration {
	m.statMu.RLock()
	defer m.statMu.RUnlock()
	return m.lastLatency
}

func (m *monitor) run(ctx context.Context) error {
	m.mu.Lock()
	interval := m.cfg.IntervalCheck.Time()
	m.mu.Unlock()

	if interval <= 0 {
		interval = defaultIntervalCheck
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	m.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			m.tick(ctx)
		}
	}
}

func (m *monitor) tick(parent context.Context) {
	m.mu.Lock()
	fn := m.fn
	timeout := m.cfg.CheckTimeout.Time()
	fallKO, fallWarn := m.cfg.FallCountKO, m.cfg.FallCountWarn
	riseKO, riseWarn := m.cfg.RiseCountKO, m.cfg.RiseCountWarn
	m.mu.Unlock()

	if fn == nil {
		m.transitionFail(fallKO, fallWarn, "healthcheck function is not configured")
		return
	}

	ctx := parent
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
		defer cancel()
	}

	start := timeNow()
	err := fn(ctx)
	elapsed := timeNow().Sub(start)

	m.statMu.Lock()
	m.lastLatency = elapsed
	m.statMu.Unlock()

	if err != nil {
		if l := m.logger(); l != nil {
			l.Entry(loglvl.WarnLevel, "healthcheck failed").ErrorAdd(true, err).Log()
		}
		m.transitionFail(fallKO, fallWarn, err.Error())
		m.collectMetrics(parent)
		return
	}

	m.transitionSuccess(riseKO, riseWarn)
	m.collectMetrics(parent)
}

func (m *monitor) collectMetrics(ctx context.Context) {
	m.mu.Lock()
	names := m.metricsNames
	fct := m.metricsFct
	m.mu.Unlock()

	if fct == nil || len(names) == 0 {
		return
	}
	fct(ctx, names...)
}

func (m *monitor) transitionSuccess(riseKO, riseWarn uint8) {
	m.statMu.Lock()
	defer m.statMu.Unlock()

	m.failStreak = 0
	m.successStreak++

	switch m.stat {
	case status.KO:
		if riseKO > 0 && m.successStreak >= int(riseKO) {
			m.stat = status.Warn
			m.successStreak = 0
		}
		m.rising = true
	case status.Warn:
		if riseWarn > 0 && m.successStreak >= int(riseWarn) {
			m.stat = status.OK
			m.successStreak = 0
			m.rising = false
		} else {
			m.rising = true
		}
	case status.OK:
		m.rising = false
	}
	if m.rising {
		m.lastRiseAt = timeNow()
	}
	m.falling = false
	m.msg = ""
}

func (m *monitor) transitionFail(fallKO, fallWarn uint8, msg string) {
	m.statMu.Lock()
	defer m.statMu.Unlock()

	m.successStreak = 0
	m.failStreak++

	switch m.stat {
	case status.OK:
		if fallWarn > 0 && m.failStreak >= int(fallWarn) {
			m.stat = status.Warn
			m.failStreak = 0
		}
		m.falling = true
	case status.Warn:
		if fallKO > 0 && m.failStreak >= int(fallKO) {
			m.stat = status.KO
			m.failStreak = 0
			m.falling = false
		} else {
			m.falling = true
		}
	case status.KO:
		m.falling = false
	}
	if m.falling {
		m.lastFallAt = timeNow()
	}
	m.rising = false
	m.msg = msg
}

func (m *monitor) teardown(context.Context) error {
	return nil
}

func (m *monitor) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name     string `json:"Name"`
		Status   string `json:"Status"`
		Message  string `json:"Message"`
		Latency  time.Duration
		Uptime   time.Duration
		Downtime time.Duration
	}{
		Name:     m.Name(),
		Status:   m.Status().String(),
		Message:  m.Message(),
		Latency:  m.Latency(),
		Uptime:   m.Uptime(),
		Downtime: m.Downtime(),
	})
}

// MarshalText renders "<status>: <name> (<infoName> (<k>: <v>, ...)) |
// <latency> / <uptime> / <downtime>", with a trailing " (<message>)" when a
// message is set.
func (m *monitor) MarshalText() ([]byte, error) {
	infoMap := m.InfoMap()

	kv := make([]string, 0, len(infoMap))
	for k, v := range infoMap {
		kv = append(kv, fmt.Sprintf("%s: %v", k, v))
	}
	sort.Strings(kv)

	inner := fmt.Sprintf("%s (%s)", m.InfoName(), strings.Join(kv, ", "))

	s := fmt.Sprintf(
		"%s: %s (%s) | %s / %s / %s",
		m.Status().String(), m.Name(), inner,
		m.Latency(), m.Uptime(), m.Downtime(),
	)

	if msg := m.Message(); msg != "" {
		s += " (" + msg + ")"
	}

	return []byte(s), nil
}

func (m *monitor) RegisterMetricsName(names ...string) {
	m.mu.Lock()
	m.metricsNames = append([]string{}, names...)
	m.mu.Unlock()
}

func (m *monitor) RegisterMetricsAddName(names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range names {
		found := false
		for _, n := range m.metricsNames {
			if n == name {
				found = true
				break
			}
		}
		if !found {
			m.metricsNames = append(m.metricsNames, name)
		}
	}
}

func (m *monitor) RegisterCollectMetrics(fct libtps.MetricsCollector) {
	m.mu.Lock()
	m.metricsFct = fct
	m.mu.Unlock()
}

func (m *monitor) CollectStatus() (status.Status, bool, bool) {
	m.statMu.RLock()
	defer m.statMu.RUnlock()
	return m.stat, m.rising, m.falling
}

func (m *monitor) CollectUpTime() time.Duration {
	return m.Uptime()
}

func (m *monitor) CollectDownTime() time.Duration {
	return m.Downtime()
}

func (m *monitor) CollectFallTime() time.Duration {
	m.statMu.RLock()
	defer m.statMu.RUnlock()
	if m.lastFallAt.IsZero() {
		return 0
	}
	return timeNow().Sub(m.lastFallAt)
}

func (m *monitor) CollectRiseTime() time.Duration {
	m.statMu.RLock()
	defer m.statMu.RUnlock()
	if m.lastRiseAt.IsZero() {
		return 0
	}
	return timeNow().Sub(m.lastRiseAt)
}

func (m *monitor) CollectLatency() time.Duration {
	return m.Latency()
}

func timeNow() time.Time {
	return time.Now()
}
