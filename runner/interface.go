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

// Package runner defines the common lifecycle contract shared by every
// restartable background component in this module (HTTP servers, pools,
// tickers), plus a shared panic-recovery helper for their goroutines.
package runner

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	liblog "github.com/nabbar/edge-httpcore/logger"
	loglvl "github.com/nabbar/edge-httpcore/logger/level"
)

// Runner is the lifecycle contract implemented by any component that can be
// started, stopped and restarted asynchronously, with uptime and error tracking.
type Runner interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error

	IsRunning() bool
	Uptime() time.Duration

	ErrorsLast() error
	ErrorsList() []error
}

// RecoveryCaller recovers a panic captured via recover() in a deferred call, logging
// it with the given caller name and optional contextual messages. It is a no-op if
// rec is nil (no panic occurred).
func RecoveryCaller(caller string, rec interface{}, msg ...string) {
	if rec == nil {
		return
	}

	txt := fmt.Sprintf("recovered panic in '%s': %v", caller, rec)
	for _, m := range msg {
		txt += " | " + m
	}

	liblog.GetDefault().Entry(loglvl.ErrorLevel, txt).DataSet(string(debug.Stack())).Log()
}
