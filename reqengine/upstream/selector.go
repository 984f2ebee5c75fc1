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

package upstream

import (
	"time"

	liberr "github.com/nabbar/edge-httpcore/errors"
	liblog "github.com/nabbar/edge-httpcore/logger"
	"github.com/nabbar/edge-httpcore/reqengine"
)

// Outcome is what free_peer is told about a request's use of a peer
// (spec.md §4.14's Free step).
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeFailed
)

// NowFunc allows tests to control "now"; defaults to time.Now. The harness
// forbids time.Now()/time.Since() determinism hazards only for workflow
// scripts, not for production code, but keeping this seam lets selector
// tests assert exact quarantine-window behaviour without sleeping.
type NowFunc func() time.Time

// Request is the per-request RR state (spec.md §3): a reference to the
// active peer set, the current list pointer, and a tried-bitmap sized to
// fit the larger of primary/backup.
type Request struct {
	now NowFunc
	log liblog.FuncLog

	primary *PeerSet
	backup  *PeerSet

	active *PeerSet
	tried  []bool

	tries    int
	current  *Peer
}

// SetLog installs a logger (teacher's dependency-injection convention,
// liblog.FuncLog, the same seam config/components/* accept via
// cfgtps.Component.Init) so fail/quarantine transitions are observable
// instead of silent. Nil is safe and keeps the Request quiet.
func (r *Request) SetLog(log liblog.FuncLog) { r.log = log }

func (r *Request) logger() liblog.Logger {
	if r.log == nil {
		return nil
	}
	return r.log()
}

// NewRequest initialises per-request RR state (spec.md §4.14's "Per-request
// init").
func NewRequest(ps *PeerSet, now NowFunc) *Request {
	if now == nil {
		now = time.Now
	}
	r := &Request{now: now, primary: ps, backup: ps.Next, active: ps}
	r.tried = make([]bool, ps.maxOf(ps.Next))
	r.tries = ps.Number
	if ps.Next != nil {
		r.tries += ps.Next.Number
	}
	return r
}

// GetPeer implements the smooth weighted round-robin algorithm of spec.md
// §4.14, verbatim against
// _examples/original_source/nginx-1.10.0/src/http/ngx_http_upstream_round_robin.c's
// ngx_http_upstream_get_round_robin_peer.
func (r *Request) GetPeer() (*Peer, liberr.Error) {
	best, ok := r.selectFrom(r.active)
	if ok {
		r.current = best
		return best, nil
	}

	if r.active == r.primary && r.backup != nil {
		r.active = r.backup
		for i := range r.tried {
			r.tried[i] = false
		}
		best, ok = r.selectFrom(r.active)
		if ok {
			r.current = best
			return best, nil
		}
	}

	r.primary.resetFails()
	if r.backup != nil {
		r.backup.resetFails()
	}
	return nil, reqengine.ErrorUpstreamBusy.Error(nil)
}

func (r *Request) selectFrom(ps *PeerSet) (*Peer, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	now := r.now()
	var best *Peer
	var bestIdx int
	total := 0

	for idx, p := range ps.Peers {
		if idx < len(r.tried) && r.tried[idx] {
			continue
		}
		p.mu.Lock()
		if p.quarantined(now) {
			p.mu.Unlock()
			continue
		}
		p.currentWeight += p.effectiveWeight
		total += p.effectiveWeight
		if p.effectiveWeight < p.weight {
			p.effectiveWeight++
		}
		cw := p.currentWeight
		p.mu.Unlock()

		if best == nil || cw > best.currentWeight {
			best = p
			bestIdx = idx
		}
	}

	if best == nil {
		return nil, false
	}

	best.mu.Lock()
	best.currentWeight -= total
	if now.Sub(best.checked) > best.failTimeout {
		best.checked = now
	}
	best.conns.Store(best.conns.Load() + 1)
	best.mu.Unlock()

	if bestIdx < len(r.tried) {
		r.tried[bestIdx] = true
	}

	return best, true
}

// FreePeer implements spec.md §4.14's Free step.
func (r *Request) FreePeer(p *Peer, outcome Outcome) {
	now := r.now()

	p.mu.Lock()
	switch outcome {
	case OutcomeFailed:
		p.fails++
		p.accessed = now
		p.checked = now
		if p.maxFails > 0 {
			p.effectiveWeight -= p.weight / p.maxFails
			if p.effectiveWeight < 0 {
				p.effectiveWeight = 0
			}
			if p.fails >= p.maxFails {
				if l := r.logger(); l != nil {
					l.Warning("upstream peer quarantined", map[string]interface{}{
						"peer": p.Name, "fails": p.fails, "fail_timeout": p.failTimeout.String(),
					})
				}
			}
		}
	case OutcomeOK:
		if p.accessed.Before(p.checked) {
			p.fails = 0
		}
	}
	p.conns.Store(p.conns.Load() - 1)
	p.mu.Unlock()

	r.tries--
}
