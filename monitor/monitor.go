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

// Package monitor runs a periodic health check against a registered component,
// tracking consecutive successes/failures against configurable rise/fall
// thresholds.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	liblog "github.com/nabbar/edge-httpcore/logger"
	loglvl "github.com/nabbar/edge-httpcore/logger/level"
	montps "github.com/nabbar/edge-httpcore/monitor/types"
	librun "github.com/nabbar/edge-httpcore/runner/startStop"
)

const (
	defaultCheckTimeout  = 5 * time.Second
	defaultIntervalCheck = 10 * time.Second
)

type mon struct {
	nfo montps.Info

	mu  sync.RWMutex
	cfg montps.Config
	hck montps.FuncHealthCheck
	fLog montps.FuncLogger

	running atomic.Bool
	run     librun.StartStop
}

// New creates a Monitor bound to the given Info. info must not be nil.
func New(ctx context.Context, nfo montps.Info) (montps.Monitor, error) {
	if nfo == nil {
		return nil, fmt.Errorf("monitor: info cannot be nil")
	}

	m := &mon{nfo: nfo}
	m.run = librun.New(m.loop, m.shutdown)

	return m, nil
}

func (m *mon) Name() string {
	m.mu.RLock()
	nfo := m.nfo
	m.mu.RUnlock()

	if nfo == nil {
		return ""
	}

	return nfo.Name()
}

func (m *mon) InfoGet() montps.Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nfo
}

func (m *mon) InfoUpd(nfo montps.Info) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nfo = nfo
}

func (m *mon) logger() liblog.Logger {
	m.mu.RLock()
	fl := m.fLog
	m.mu.RUnlock()

	if fl == nil {
		return nil
	}

	return fl()
}

func (m *mon) RegisterLoggerDefault(fct montps.FuncLogger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fLog = fct
}

func (m *mon) SetHealthCheck(fct montps.FuncHealthCheck) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hck = fct
}

func (m *mon) GetHealthCheck() montps.FuncHealthCheck {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hck
}

func (m *mon) SetConfig(ctx context.Context, cfg montps.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
	return nil
}

func (m *mon) GetConfig() montps.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *mon) interval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.cfg.IntervalCheck > 0 {
		return m.cfg.IntervalCheck
	}

	return defaultIntervalCheck
}

func (m *mon) timeout() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.cfg.CheckTimeout > 0 {
		return m.cfg.CheckTimeout
	}

	return defaultCheckTimeout
}

func (m *mon) Start(ctx context.Context) error {
	return m.run.Start(ctx)
}

func (m *mon) Stop(ctx context.Context) error {
	return m.run.Stop(ctx)
}

func (m *mon) Restart(ctx context.Context) error {
	if m.IsRunning() {
		if err := m.Stop(ctx); err != nil {
			return err
		}
	}

	return m.Start(ctx)
}

func (m *mon) IsRunning() bool {
	return m.running.Load()
}

func (m *mon) shutdown(ctx context.Context) error {
	m.running.Store(false)
	return nil
}

func (m *mon) loop(ctx context.Context) error {
	m.running.Store(true)
	defer m.running.Store(false)

	t := time.NewTicker(m.interval())
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			m.check(ctx)
		}
	}
}

func (m *mon) check(ctx context.Context) {
	fct := m.GetHealthCheck()
	if fct == nil {
		return
	}

	x, n := context.WithTimeout(ctx, m.timeout())
	defer n()

	err := fct(x)

	if l := m.logger(); l != nil {
		ent := l.Entry(loglvl.InfoLevel, fmt.Sprintf("healthcheck for %s", m.nfo.Name()))
		ent.ErrorAdd(true, err)
		ent.Log()
	}
}
