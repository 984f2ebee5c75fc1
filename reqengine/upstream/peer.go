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

// Package upstream implements the weighted round-robin peer selector (spec
// component K, §4.14): effective-weight smoothing, tried-bitmap, failure
// accounting, and backup fallback.
package upstream

import (
	"sync"
	"time"

	libatm "github.com/nabbar/edge-httpcore/atomic"
)

// PeerConfig is the `server` directive's consumed fields (SPEC_FULL.md §6).
type PeerConfig struct {
	Name        string
	Weight      int
	MaxFails    int
	FailTimeout time.Duration
	Backup      bool
	Down        bool
}

// Peer is one upstream server entry (spec.md §3's `peer` record). conns is
// held in a libatm.Value since it is mutated from the connection-dispatch
// path independently of the selection lock that guards the weight fields.
type Peer struct {
	Name string

	mu              sync.Mutex
	weight          int
	effectiveWeight int
	currentWeight   int
	maxFails        int
	failTimeout     time.Duration
	fails           int
	accessed        time.Time
	checked         time.Time
	down            bool

	conns libatm.Value[int32]
}

func newPeer(c PeerConfig) *Peer {
	p := &Peer{
		Name:            c.Name,
		weight:          max1(c.Weight),
		effectiveWeight: max1(c.Weight),
		maxFails:        c.MaxFails,
		failTimeout:     c.FailTimeout,
		down:            c.Down,
	}
	return p
}

func max1(w int) int {
	if w <= 0 {
		return 1
	}
	return w
}

// Conns returns the current in-flight connection count.
func (p *Peer) Conns() int32 { return p.conns.Load() }

// Quarantined reports max_fails>0 && fails>=max_fails && now-checked<=fail_timeout
// (spec.md §4.14).
func (p *Peer) quarantined(now time.Time) bool {
	if p.down {
		return true
	}
	if p.maxFails <= 0 {
		return false
	}
	return p.fails >= p.maxFails && now.Sub(p.checked) <= p.failTimeout
}

// snapshot is a read under lock used by tests/metrics without racing the
// selector.
type snapshot struct {
	weight, effectiveWeight, currentWeight, fails int
	checked, accessed                             time.Time
	down                                           bool
}

func (p *Peer) snapshot() snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return snapshot{
		weight: p.weight, effectiveWeight: p.effectiveWeight, currentWeight: p.currentWeight,
		fails: p.fails, checked: p.checked, accessed: p.accessed, down: p.down,
	}
}
