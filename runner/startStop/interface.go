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

// Package startStop wraps a pair of start/stop functions into a restartable,
// concurrency-safe runner with uptime and error tracking.
package startStop

import (
	"context"
	"time"
)

// FuncStart is the function launched in its own goroutine when Start is called.
// It is expected to block until ctx is cancelled; its return value is recorded
// as the runner's last error.
type FuncStart func(ctx context.Context) error

// FuncStop is called synchronously from Stop to unwind whatever FuncStart set up.
type FuncStop func(ctx context.Context) error

// StartStop manages the lifecycle of a single background task defined by a
// start/stop function pair.
type StartStop interface {
	// Start launches the start function asynchronously. If already running,
	// the current instance is stopped first.
	Start(ctx context.Context) error

	// Stop cancels the running instance and invokes the stop function. It is
	// idempotent: calling it when not running is a no-op.
	Stop(ctx context.Context) error

	// Restart stops then starts the runner. Safe to call when not running.
	Restart(ctx context.Context) error

	// IsRunning reports whether the start function is currently executing.
	IsRunning() bool

	// Uptime returns the duration since the runner started, or zero when not running.
	Uptime() time.Duration

	// ErrorsLast returns the most recent error captured from the start or stop function.
	ErrorsLast() error

	// ErrorsList returns all errors captured since the runner was created.
	ErrorsList() []error
}

// New creates a StartStop runner bound to the given start/stop functions. Either
// function may be nil; invoking a nil function at runtime produces a recorded error
// instead of a panic.
func New(start FuncStart, stop FuncStop) StartStop {
	return &runner{
		fctStart: start,
		fctStop:  stop,
	}
}
