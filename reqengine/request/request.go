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

// Package request implements the per-request state (spec component E):
// headers-in/out tables, context slots, refcount, and main/parent linkage.
package request

import (
	"context"
	"sync"
	"sync/atomic"

	libctx "github.com/nabbar/edge-httpcore/context"
	"github.com/nabbar/edge-httpcore/reqengine"
)

// State is the observable request state (spec.md §4.7).
type State int

const (
	StateWait State = iota
	StateReadingRequest
	StateParsingLine
	StateParsingHeaders
	StateProcessRequest
	StateWritingRequest
	StateKeepAlive
	StateLingering
	StateClosed
)

// Flags bundles the per-request driver-relevant booleans of spec.md §3.
type Flags struct {
	ReadingBody    bool
	DiscardBody    bool
	Buffered       bool
	Postponed      bool
	Blocked        bool
	FilterFinalize bool
	Done           bool
	Logged         bool
	KeepAlive      bool
	LingeringClose bool
	Pipeline       bool
	HeaderOnly     bool
	PostAction     bool

	// Timedout/Delayed/AIO/Ready are the writer's own bookkeeping
	// (spec.md §4.9): a true send-timeout vs. a rate-limit wake, an
	// in-flight async write, and whether a deferred write event is
	// ready to retry.
	Timedout bool
	Delayed  bool
	AIO      bool
	Ready    bool
}

// Header is one ordered (name, value) pair of the headers-in/out table.
type Header struct {
	Name  string
	Value string
}

// Request is spec.md §3's Request record, minus the memory-arena mechanics
// (which spec.md §1 explicitly treats as an external allocator concern —
// this package uses Go's GC-managed slices/maps for the same role).
type Request struct {
	mu sync.Mutex

	Main   *Request // self, for the main request
	Parent *Request // nil for the main request

	state State
	Flags Flags

	RequestLine      string
	MethodName       string
	URI              string
	Args             string
	UnparsedURI      string
	Exten            string
	HTTPProtocol     string
	Host             string

	HeadersIn  []Header
	HeadersOut []Header

	ContentLengthN int64
	KeepAliveN     int64

	PhaseCursor int
	WriteEvent  reqengine.WriteEvent

	PostSubrequest func(r *Request, rc reqengine.Code) reqengine.Code

	// count is the main request's refcount (spec.md §4.6's Refcount rules).
	// Only meaningful when Main == self.
	count atomic.Int32

	ctx libctx.Config[uint8]
}

const (
	ctxSlotVariables uint8 = iota
)

// New allocates a main request (spec.md §4.6's Creation step): count=1,
// method=UNKNOWN, version defaults, content_length_n=-1, keep_alive_n=-1,
// state=READING_REQUEST.
func New(ctx context.Context) *Request {
	r := &Request{
		state:          StateReadingRequest,
		MethodName:     "UNKNOWN",
		HTTPProtocol:   "HTTP/1.0",
		ContentLengthN: -1,
		KeepAliveN:     -1,
		ctx:            libctx.NewConfig[uint8](ctx),
	}
	r.Main = r
	r.count.Store(1)
	return r
}

// NewSubrequest creates a subrequest sharing conn/main (spec.md §4.13):
// r.main == r's root, r.parent == parent.
func (r *Request) NewSubrequest() *Request {
	main := r.Main
	sub := &Request{
		state:        StateProcessRequest,
		MethodName:   r.MethodName,
		HTTPProtocol: r.HTTPProtocol,
		Main:         main,
		Parent:       r,
		ctx:          libctx.NewConfig[uint8](main.ctx.GetContext()),
	}
	return sub
}

func (r *Request) State() State { r.mu.Lock(); defer r.mu.Unlock(); return r.state }
func (r *Request) SetState(s State) { r.mu.Lock(); r.state = s; r.mu.Unlock() }

// Acquire increments the main request's refcount: one independent
// asynchronous holder (body reader, upstream, subrequest, phase ticket)
// has begun (spec.md §4.6).
func (r *Request) Acquire() { r.Main.count.Add(1) }

// Release decrements the main request's refcount. Returns true if this
// decrement reached zero (finalization point, spec.md §4.6: "main.count==0
// is only observed transiently during teardown").
func (r *Request) Release() bool {
	return r.Main.count.Add(-1) == 0
}

// Count returns the current refcount of the main request (for assertions
// and tests; spec.md §8 property 3: non-negative at every observable
// point).
func (r *Request) Count() int32 { return r.Main.count.Load() }

// HeaderGet returns the first value for name (headers-in ordered list
// lookup, case-insensitive).
func (r *Request) HeaderGet(name string) (string, bool) {
	for _, h := range r.HeadersIn {
		if equalFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

func (r *Request) HeaderAppend(name, value string) {
	r.HeadersIn = append(r.HeadersIn, Header{Name: name, Value: value})
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
