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

// Package types defines the shared contracts for the monitor package: the
// metadata a monitored component exposes (Info) and the health-check runner
// built around it (Monitor), plus its configuration.
package types

import (
	"context"
	"time"

	liberr "github.com/nabbar/edge-httpcore/errors"
	liblog "github.com/nabbar/edge-httpcore/logger"
	logcfg "github.com/nabbar/edge-httpcore/logger/config"
	libver "github.com/nabbar/edge-httpcore/version"
)

// FuncLogger supplies the fallback logger used by a Monitor.
type FuncLogger func() liblog.Logger

// FuncName supplies the display name of a monitored component.
type FuncName func() (string, error)

// FuncInfo supplies the arbitrary metadata of a monitored component.
type FuncInfo func() (map[string]interface{}, error)

// FuncHealthCheck performs a single health probe, returning an error when unhealthy.
type FuncHealthCheck func(ctx context.Context) error

// Info describes a component that can be health-checked and monitored.
type Info interface {
	// Name returns the display name registered for this component.
	Name() string

	// RegisterName overrides the function used to resolve the component name.
	RegisterName(fct FuncName)

	// RegisterInfo overrides the function used to resolve the component metadata.
	RegisterInfo(fct FuncInfo)
}

// Config configures the health-check loop of a Monitor.
type Config struct {
	Name          string           `mapstructure:"name" json:"name" yaml:"name" toml:"name"`
	CheckTimeout  time.Duration    `mapstructure:"checkTimeout" json:"checkTimeout" yaml:"checkTimeout" toml:"checkTimeout"`
	IntervalCheck time.Duration    `mapstructure:"intervalCheck" json:"intervalCheck" yaml:"intervalCheck" toml:"intervalCheck"`
	IntervalFall  time.Duration    `mapstructure:"intervalFall" json:"intervalFall" yaml:"intervalFall" toml:"intervalFall"`
	IntervalRise  time.Duration    `mapstructure:"intervalRise" json:"intervalRise" yaml:"intervalRise" toml:"intervalRise"`
	FallCountKO   int              `mapstructure:"fallCountKO" json:"fallCountKO" yaml:"fallCountKO" toml:"fallCountKO"`
	FallCountWarn int              `mapstructure:"fallCountWarn" json:"fallCountWarn" yaml:"fallCountWarn" toml:"fallCountWarn"`
	RiseCountKO   int              `mapstructure:"riseCountKO" json:"riseCountKO" yaml:"riseCountKO" toml:"riseCountKO"`
	RiseCountWarn int              `mapstructure:"riseCountWarn" json:"riseCountWarn" yaml:"riseCountWarn" toml:"riseCountWarn"`
	Logger        logcfg.Options   `mapstructure:"logger" json:"logger" yaml:"logger" toml:"logger"`
}

// Monitor runs a periodic health check against a registered component and
// tracks its running/health state.
type Monitor interface {
	// Name returns the display name of the monitored component.
	Name() string

	// InfoGet returns the Info this monitor reports metadata through.
	InfoGet() Info

	// InfoUpd replaces the Info this monitor reports metadata through. Used
	// to carry over name/metadata resolvers when a pool re-registers a
	// monitor under an already-known key.
	InfoUpd(nfo Info)

	// Start launches the periodic health-check loop in the background.
	Start(ctx context.Context) error

	// Stop halts the health-check loop.
	Stop(ctx context.Context) error

	// Restart stops then starts the health-check loop, preserving the
	// registered health check and configuration.
	Restart(ctx context.Context) error

	// IsRunning reports whether the health-check loop is active.
	IsRunning() bool

	// SetHealthCheck registers the probe function invoked on every check interval.
	SetHealthCheck(fct FuncHealthCheck)

	// GetHealthCheck returns the currently registered probe function, if any.
	GetHealthCheck() FuncHealthCheck

	// SetConfig applies the check interval/threshold configuration. It may be
	// called while the monitor is running; the new interval takes effect on
	// the next tick.
	SetConfig(ctx context.Context, cfg Config) error

	// GetConfig returns the currently applied configuration.
	GetConfig() Config

	// RegisterLoggerDefault registers the fallback logger used when no
	// component-specific logger has been configured.
	RegisterLoggerDefault(fct FuncLogger)
}

// FuncPool supplies the monitor Pool instance a component registers its
// health checks into.
type FuncPool func() Pool

// Pool groups the monitors of every component registered against one
// config, keyed by monitor name.
type Pool interface {
	// Len returns the number of monitors currently registered.
	Len() int

	// MonitorGet returns the monitor registered under key, or nil.
	MonitorGet(key string) Monitor

	// MonitorSet registers or replaces the monitor under its own Name().
	MonitorSet(mon Monitor) error

	// Monitor builds the monitors a component should register for the
	// given application version.
	Monitor(vrs libver.Version) ([]Monitor, liberr.Error)
}
