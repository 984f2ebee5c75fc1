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

// Package writer implements module H: the output driver installed once
// finalize_request finds buffered/postponed/blocked output still pending
// (spec.md §4.9), including the rate-limit-vs-timeout distinction expressed
// through the request's Delayed flag.
package writer

import (
	"github.com/nabbar/edge-httpcore/reqengine"
	"github.com/nabbar/edge-httpcore/reqengine/request"
)

// OutputFilter pushes buffered output through the filter chain
// (spec.md §4.9 step 4's `output_filter(r, NULL)`), returning CodeOK while
// there's nothing wrong, or CodeError on a write failure.
type OutputFilter func(r *request.Request) reqengine.Code

// Action is what the caller's event loop should do after one Run call.
type Action int

const (
	// ActionRearmWrite: re-register write readiness (and, unless Delayed,
	// the send timer) and wait for the next writable event.
	ActionRearmWrite Action = iota
	// ActionFinalize: hand the returned Code to finalize_request.
	ActionFinalize
	// ActionDone: output fully flushed; write_event_handler is now empty.
	ActionDone
)

// Run implements spec.md §4.9's seven-step algorithm verbatim.
func Run(r *request.Request, filter OutputFilter) (Action, reqengine.Code) {
	f := &r.Flags

	if f.Timedout && !f.Delayed {
		return ActionFinalize, reqengine.CodeRequestTimeOut
	}

	if f.Timedout && f.Delayed {
		f.Timedout = false
		f.Delayed = false
		if !f.Ready {
			return ActionRearmWrite, reqengine.CodeOK
		}
	}

	if f.Delayed || f.AIO {
		return ActionRearmWrite, reqengine.CodeOK
	}

	rc := filter(r)
	if rc == reqengine.CodeError {
		return ActionFinalize, rc
	}

	if f.Buffered || f.Postponed || r.Main.Flags.Buffered {
		return ActionRearmWrite, reqengine.CodeOK
	}

	r.WriteEvent = reqengine.WriteEventEmpty
	return ActionDone, reqengine.CodeDone
}
