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

// Package finalize implements spec.md §4.10's finalize_request/
// finalize_connection/terminate_request decision tree, the central sink
// every phase/writer outcome eventually passes through.
package finalize

import (
	"github.com/nabbar/edge-httpcore/reqengine"
	"github.com/nabbar/edge-httpcore/reqengine/keepalive"
	"github.com/nabbar/edge-httpcore/reqengine/request"
	"github.com/nabbar/edge-httpcore/reqengine/subrequest"
)

// Action is what the caller's event loop must do once Finalize returns.
type Action int

const (
	ActionNone Action = iota
	ActionInstallWriter
	ActionSetKeepalive
	ActionSetLingeringClose
	ActionCloseRequest
	ActionTerminate
)

// Result bundles the finalize outcome: the action plus, when it carries
// one, the special-response status to render.
type Result struct {
	Action          Action
	SpecialResponse reqengine.Code
}

// Hooks are the finalize-time collaborators a subrequest needs but a
// connection-level finalize doesn't (spec.md §4.10's subrequest branch).
type Hooks struct {
	Tree   *subrequest.Tree
	Handle subrequest.Handle
	Parent subrequest.Handle
}

// Request implements finalize_request (spec.md §4.10). r is the request
// being finalized; rc is the phase/writer outcome; keepAliveAllowed and
// shuttingDown feed finalize_connection when r is the main request and has
// nothing left buffered; hooks is nil for the main request, non-nil for a
// subrequest.
func Request(r *request.Request, rc reqengine.Code, cfg keepalive.Config, keepAliveAllowed, shuttingDown bool, hooks *Hooks) Result {
	if rc == reqengine.CodeDone {
		return finalizeConnection(r, cfg, keepAliveAllowed, shuttingDown)
	}

	if r.PostSubrequest != nil {
		rc = r.PostSubrequest(r, rc)
	}

	if rc == reqengine.CodeError || rc == reqengine.CodeRequestTimeOut || rc == reqengine.CodeClientClosedRequest {
		return Result{Action: ActionTerminate}
	}

	if rc.IsSpecialResponse() {
		if rc == reqengine.CodeClose {
			return Result{Action: ActionTerminate}
		}
		return Result{Action: ActionInstallWriter, SpecialResponse: rc}
	}

	if hooks != nil {
		return finalizeSubrequest(r, hooks)
	}

	if r.Flags.Buffered || r.Flags.Postponed || r.Flags.Blocked || r.Main.Flags.Buffered {
		return Result{Action: ActionInstallWriter}
	}

	r.Flags.Done = true
	r.WriteEvent = reqengine.WriteEventEmpty
	return finalizeConnection(r, cfg, keepAliveAllowed, shuttingDown)
}

// finalizeSubrequest implements spec.md §4.10's subrequest branch: install
// the writer if output remains; otherwise, if this subrequest currently
// holds the emit right, hand it back to the parent and mark done; either
// way schedule the parent to run via the main request's posted FIFO.
func finalizeSubrequest(r *request.Request, hooks *Hooks) Result {
	defer hooks.Tree.RunPosted()

	if r.Flags.Buffered || r.Flags.Postponed || r.Flags.Blocked {
		return Result{Action: ActionInstallWriter}
	}

	if hooks.Tree.CanEmit(hooks.Handle) {
		r.Flags.Done = true
		hooks.Tree.FinishEmitting(hooks.Handle, hooks.Parent)
	}
	return Result{Action: ActionNone}
}

// finalizeConnection implements spec.md §4.10's finalize_connection.
func finalizeConnection(r *request.Request, cfg keepalive.Config, keepAliveAllowed, shuttingDown bool) Result {
	if r.Main.Count() != 1 {
		r.Release()
		return Result{Action: ActionNone}
	}

	count := r.Main.Count()
	r.Release() // this exchange's own holder; count may transiently hit 0

	decision := keepalive.Decide(keepalive.Inputs{
		Count:        count,
		ReadingBody:  r.Flags.ReadingBody,
		DiscardBody:  r.Flags.DiscardBody,
		KeepAlive:    keepAliveAllowed && r.Flags.KeepAlive,
		ShuttingDown: shuttingDown,
	}, cfg)

	switch decision {
	case keepalive.ActionForceCloseAfter:
		r.Flags.KeepAlive = false
		r.Flags.LingeringClose = true
		return Result{Action: ActionCloseRequest}
	case keepalive.ActionSetKeepalive:
		return Result{Action: ActionSetKeepalive}
	case keepalive.ActionSetLingeringClose:
		return Result{Action: ActionSetLingeringClose}
	case keepalive.ActionDecrementOnly:
		return Result{Action: ActionNone}
	default:
		return Result{Action: ActionCloseRequest}
	}
}
