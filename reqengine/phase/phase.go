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

// Package phase implements module G: the ordered phase runner that the
// driver hands a validated request to once headers are complete
// (spec.md §4.8). Each phase is one named handler; DECLINED advances to the
// next phase, anything else stops the run and is handed to finalize.
package phase

import (
	"github.com/nabbar/edge-httpcore/reqengine"
	"github.com/nabbar/edge-httpcore/reqengine/request"
)

// Handler is one phase's content/filter function.
type Handler func(r *request.Request) reqengine.Code

// Phase names a Handler for diagnostics (logging, tests).
type Phase struct {
	Name    string
	Handler Handler
}

// Dispatcher runs an ordered phase list against a request, resuming from
// r.PhaseCursor (so a subrequest created mid-run, or a request re-entering
// after DECLINED, continues where it left off rather than restarting).
type Dispatcher struct {
	Phases []Phase
}

// NewDispatcher builds a dispatcher over phases, run in the given order.
func NewDispatcher(phases ...Phase) *Dispatcher {
	return &Dispatcher{Phases: phases}
}

// Run advances r.PhaseCursor through d.Phases until a handler returns
// something other than CodeDeclined, or the phase list is exhausted
// (treated as CodeOK: the content phase is expected to produce a final
// outcome itself). The returned Code is what the caller (finalize) acts on.
func (d *Dispatcher) Run(r *request.Request) reqengine.Code {
	for r.PhaseCursor < len(d.Phases) {
		h := d.Phases[r.PhaseCursor]
		rc := h.Handler(r)
		if rc == reqengine.CodeDeclined {
			r.PhaseCursor++
			continue
		}
		return rc
	}
	return reqengine.CodeOK
}

// Reenter implements spec.md §4.10's "DECLINED -> clear content_handler,
// re-enter phase runner": rewinds to the content phase (the first phase
// whose name matches contentPhaseName) and runs again. Used when a handler
// upstream of content processing declines after content has already been
// attempted once (e.g. a post_action rerun).
func (d *Dispatcher) Reenter(r *request.Request, contentPhaseName string) reqengine.Code {
	for i, p := range d.Phases {
		if p.Name == contentPhaseName {
			r.PhaseCursor = i
			break
		}
	}
	return d.Run(r)
}
