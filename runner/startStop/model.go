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

package startStop

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

type runner struct {
	fctStart FuncStart
	fctStop  FuncStop

	mu     sync.Mutex
	cancel context.CancelFunc
	once   *sync.Once

	running   atomic.Bool
	startedAt atomic.Int64

	errMu sync.Mutex
	errs  []error
}

func (o *runner) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopLocked(ctx)
	o.clearErrors()

	c, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.once = new(sync.Once)

	o.running.Store(true)
	o.startedAt.Store(time.Now().UnixNano())

	go o.run(c)

	return nil
}

func (o *runner) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			o.addError(fmt.Errorf("panic in start function: %v", r))
		}
		o.running.Store(false)
		o.startedAt.Store(0)
	}()

	if o.fctStart == nil {
		o.addError(fmt.Errorf("invalid start function: nil"))
		return
	}

	if err := o.fctStart(ctx); err != nil {
		o.addError(err)
	}
}

func (o *runner) Stop(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopLocked(ctx)
	return nil
}

// stopLocked cancels the current run and invokes the stop function exactly once
// per start generation. Must be called with mu held.
func (o *runner) stopLocked(ctx context.Context) {
	if o.cancel == nil {
		return
	}

	once := o.once
	once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				o.addError(fmt.Errorf("panic in stop function: %v", r))
			}
		}()

		if o.fctStop == nil {
			o.addError(fmt.Errorf("invalid stop function: nil"))
		} else if err := o.fctStop(ctx); err != nil {
			o.addError(err)
		}
	})

	o.cancel()
	o.cancel = nil
}

func (o *runner) Restart(ctx context.Context) error {
	if err := o.Stop(ctx); err != nil {
		return err
	}
	return o.Start(ctx)
}

func (o *runner) IsRunning() bool {
	return o.running.Load()
}

func (o *runner) Uptime() time.Duration {
	start := o.startedAt.Load()
	if start == 0 {
		return 0
	}
	return time.Since(time.Unix(0, start))
}

func (o *runner) addError(err error) {
	o.errMu.Lock()
	defer o.errMu.Unlock()
	o.errs = append(o.errs, err)
}

func (o *runner) clearErrors() {
	o.errMu.Lock()
	defer o.errMu.Unlock()
	o.errs = nil
}

func (o *runner) ErrorsLast() error {
	o.errMu.Lock()
	defer o.errMu.Unlock()

	if len(o.errs) == 0 {
		return nil
	}
	return o.errs[len(o.errs)-1]
}

func (o *runner) ErrorsList() []error {
	o.errMu.Lock()
	defer o.errMu.Unlock()

	out := make([]error, len(o.errs))
	copy(out, o.errs)
	return out
}
