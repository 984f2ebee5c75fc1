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

// Package buffer implements the per-connection header buffer pool (spec
// component A): the primary request-line/header buffer plus a capped pool
// of large buffers, with pointer relocation on growth.
package buffer

import liberr "github.com/nabbar/edge-httpcore/errors"

// Config mirrors the nginx client_header_buffer_size / large_client_header_buffers
// directives (SPEC_FULL.md External Interfaces).
type Config struct {
	PrimarySize  int `mapstructure:"primarySize" json:"primarySize" yaml:"primarySize" toml:"primarySize"`
	LargeSize    int `mapstructure:"largeSize" json:"largeSize" yaml:"largeSize" toml:"largeSize"`
	LargeCount   int `mapstructure:"largeCount" json:"largeCount" yaml:"largeCount" toml:"largeCount"`
}

// Mark is an offset-based token reference into the pool's active buffer.
// spec.md §9's design note prefers offsets over raw pointers: growth then
// only rebases the buffer base, never individual fields.
type Mark struct {
	Start int
	End   int
}

// Slice resolves a Mark against the pool's current active buffer.
func (m Mark) Slice(buf []byte) []byte {
	if m.Start < 0 || m.End > len(buf) || m.Start > m.End {
		return nil
	}
	return buf[m.Start:m.End]
}

// Pool owns one connection's header buffer storage.
type Pool interface {
	// Active returns the buffer currently being parsed into.
	Active() []byte
	// Pos/Last/End are the parser cursor positions within Active(), per
	// spec.md §3's invariant header_in.pos ≤ header_in.last ≤ header_in.end.
	Pos() int
	Last() int
	End() int
	SetPos(n int)
	SetLast(n int)

	// Reset rewinds pos/last/end to the start of the primary buffer (the
	// "buffer already full of only CRLFs" special case in §4.1).
	Reset()

	// Full reports whether pos has reached end (parser needs a Grow).
	Full() bool

	// Grow relocates the in-progress token bytes [tokenStart, Last()) into a
	// new (possibly larger) buffer, drawn from the free list or freshly
	// allocated, and returns the byte delta to add to any previously issued
	// Mark so callers can rebase their own token offsets. Fails with
	// ErrorHeaderTooLarge once LargeCount buffers are already in use.
	Grow(tokenStart int) (delta int, err liberr.Error)

	// Release returns the pool to its pre-request state: all large buffers
	// move to the free list, the primary buffer is dropped (idle-connection
	// memory hygiene per §4.1).
	Release()

	// Recycle is called on entering keep-alive (§4.11): every large buffer
	// except the one currently active moves to the free list; the active
	// one, if any, becomes the next request's initial buffer.
	Recycle() (pipelined []byte, hasPipelined bool)
}
