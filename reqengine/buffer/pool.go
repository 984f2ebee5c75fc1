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

package buffer

import (
	"sync"

	liberr "github.com/nabbar/edge-httpcore/errors"
	"github.com/nabbar/edge-httpcore/reqengine"
)

type pool struct {
	mu  sync.Mutex
	cfg Config

	buf  []byte // active buffer
	pos  int
	last int

	busy [][]byte // large buffers currently in use by this connection
	free [][]byte // large buffers released back for reuse
}

// New builds a header buffer pool for one connection. The primary buffer is
// lazily allocated on first use (spec.md §4.1), so New itself never allocates.
func New(cfg Config) Pool {
	if cfg.PrimarySize <= 0 {
		cfg.PrimarySize = 1024
	}
	if cfg.LargeSize <= 0 {
		cfg.LargeSize = 8 * 1024
	}
	if cfg.LargeCount <= 0 {
		cfg.LargeCount = 4
	}
	return &pool{cfg: cfg}
}

func (p *pool) Active() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active()
}

func (p *pool) active() []byte {
	if p.buf == nil {
		p.buf = make([]byte, p.cfg.PrimarySize)
	}
	return p.buf
}

func (p *pool) Pos() int  { p.mu.Lock(); defer p.mu.Unlock(); return p.pos }
func (p *pool) Last() int { p.mu.Lock(); defer p.mu.Unlock(); return p.last }
func (p *pool) End() int  { p.mu.Lock(); defer p.mu.Unlock(); return len(p.active()) }

func (p *pool) SetPos(n int)  { p.mu.Lock(); p.pos = n; p.mu.Unlock() }
func (p *pool) SetLast(n int) { p.mu.Lock(); p.last = n; p.mu.Unlock() }

func (p *pool) Reset() {
	p.mu.Lock()
	p.pos, p.last = 0, 0
	p.mu.Unlock()
}

func (p *pool) Full() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos >= len(p.active())
}

func (p *pool) Grow(tokenStart int) (int, liberr.Error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := p.active()

	// special case (§4.1): request-line state 0 and buffer full of only
	// CRLFs: reset instead of growing.
	if tokenStart >= p.last && onlyCRLF(cur[:p.last]) {
		p.pos, p.last = 0, 0
		return 0, nil
	}

	var next []byte
	if n := len(p.free); n > 0 {
		next = p.free[n-1]
		p.free = p.free[:n-1]
	} else if len(p.busy) < p.cfg.LargeCount {
		next = make([]byte, p.cfg.LargeSize)
	} else {
		return 0, reqengine.ErrorHeaderTooLarge.Error(nil)
	}

	// copy only the in-progress token, per §4.1.
	n := copy(next, cur[tokenStart:p.last])
	delta := tokenStart

	p.busy = append(p.busy, next)
	p.buf = next
	p.last = n
	p.pos = p.last

	return delta, nil
}

func (p *pool) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, p.busy...)
	p.busy = nil
	p.buf = nil
	p.pos, p.last = 0, 0
}

func (p *pool) Recycle() ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	hasPipelined := p.pos < p.last

	var active []byte
	for _, b := range p.busy {
		if hasPipelined && sameSlice(b, p.buf) {
			active = b
			continue
		}
		p.free = append(p.free, b)
	}
	p.busy = nil

	if hasPipelined && active != nil {
		p.buf = active
		p.busy = [][]byte{active}
		return p.buf[p.pos:p.last], true
	}

	p.buf = nil
	p.pos, p.last = 0, 0
	return nil, false
}

func onlyCRLF(b []byte) bool {
	for _, c := range b {
		if c != '\r' && c != '\n' {
			return false
		}
	}
	return true
}

func sameSlice(a, b []byte) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}
