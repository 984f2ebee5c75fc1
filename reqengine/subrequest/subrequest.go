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

// Package subrequest implements the posted-subrequest FIFO and the
// postponed output chain (spec component I, §4.13): a main request's
// queue of scheduled subrequests, and per-request ordering of output so a
// parent's own bytes and its children's bytes are emitted in creation
// order regardless of completion order.
package subrequest

import (
	"sync"

	liberr "github.com/nabbar/edge-httpcore/errors"
	"github.com/nabbar/edge-httpcore/reqengine"
)

// Handle identifies a request in the tree (an index into the owning Tree,
// per spec.md §9's design note: "store subrequests by stable index into a
// per-main arena and reference by index; never by owning pointer" — this
// avoids the cyclic request.main <-> main.posted_requests references the
// original source has to break deliberately on finalize).
type Handle int

// Node is one entry in a Tree: the request's own pending output plus the
// FIFO of children queued under it.
type node struct {
	writeEventHandler func()
	doneEmitting      bool
	children          []Handle
	emitted           int // how many of children's outputs have been flushed
}

// Tree owns the postponed-output ordering and posted-request FIFO for one
// main request and all of its (possibly nested) subrequests. The request
// equal to the "active emitter" may emit bytes; on completion it transfers
// that role to its parent (spec.md §4.13).
type Tree struct {
	mu sync.Mutex

	maxSubrequests int
	nodes          []node
	posted         []Handle // main's posted_requests FIFO

	active Handle // current connection.data equivalent
}

// NewTree creates a tree rooted at the main request (handle 0).
// maxSubrequests mirrors spec.md §4.6's `subrequests` budget.
func NewTree(maxSubrequests int) *Tree {
	t := &Tree{maxSubrequests: maxSubrequests}
	t.nodes = append(t.nodes, node{})
	t.active = 0
	return t
}

// Main is the root handle.
const Main Handle = 0

// Spawn creates a subrequest under parent, pushes it onto the main
// request's posted FIFO (spec.md §4.13's Creation step), and returns its
// handle. Fails with ErrorTooManySubrequests once the budget is exhausted.
func (t *Tree) Spawn(parent Handle) (Handle, liberr.Error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.maxSubrequests > 0 && len(t.nodes)-1 >= t.maxSubrequests {
		return -1, reqengine.ErrorTooManySubrequests.Error(nil)
	}

	h := Handle(len(t.nodes))
	t.nodes = append(t.nodes, node{})
	t.nodes[parent].children = append(t.nodes[parent].children, h)
	t.posted = append(t.posted, h)
	return h, nil
}

// RegisterWriteEventHandler installs the function run_posted_requests
// invokes for h (spec.md §4.13: "draining the FIFO, invoking each entry's
// write_event_handler").
func (t *Tree) RegisterWriteEventHandler(h Handle, fct func()) {
	t.mu.Lock()
	t.nodes[h].writeEventHandler = fct
	t.mu.Unlock()
}

// RunPosted drains the FIFO in order, invoking each entry's write event
// handler exactly once per drain pass (spec.md §8 property 4).
func (t *Tree) RunPosted() {
	t.mu.Lock()
	batch := t.posted
	t.posted = nil
	t.mu.Unlock()

	for _, h := range batch {
		t.mu.Lock()
		fct := t.nodes[h].writeEventHandler
		t.mu.Unlock()
		if fct != nil {
			fct()
		}
	}
}

// Active returns the handle currently allowed to emit bytes (the request
// equal to connection.data).
func (t *Tree) Active() Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// CanEmit reports whether h currently holds the emit right.
func (t *Tree) CanEmit(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active == h
}

// Activate hands the emit right to h once its parent starts running it
// (spec.md §4.13: processing a subrequest makes it, not its parent, the
// one allowed to write to the connection). Refuses the handoff if parent
// does not currently hold the right.
func (t *Tree) Activate(h, parent Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != parent {
		return false
	}
	t.active = h
	return true
}

// FinishEmitting marks h done and, if h held the emit right, transfers it
// to h's parent (spec.md §4.13: "on completion it transfers that role to
// its parent"). parentOf must be supplied by the caller (request.Parent's
// handle), since Tree itself does not track parent pointers beyond the
// children slice.
func (t *Tree) FinishEmitting(h, parent Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nodes[h].doneEmitting = true
	if t.active == h {
		t.active = parent
	}
	t.bumpEmittedLocked(parent)
}

func (t *Tree) bumpEmittedLocked(parent Handle) {
	n := &t.nodes[parent]
	for n.emitted < len(n.children) && t.nodes[n.children[n.emitted]].doneEmitting {
		n.emitted++
	}
}

// OutputOrder returns, for parent, how many of its children have had their
// output fully flushed in creation order — used to assert spec.md §8's
// postponed-ordering property in tests.
func (t *Tree) OutputOrder(parent Handle) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nodes[parent].emitted
}
