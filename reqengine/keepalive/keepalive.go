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

// Package keepalive implements module J: the finalize_connection decision
// tree (spec.md §4.10/§4.11), buffer reclaim on set_keepalive, and the
// lingering-close half-close read-drain (spec.md §4.12).
package keepalive

import (
	"io"
	"time"

	"github.com/nabbar/edge-httpcore/reqengine/buffer"
)

// LingeringMode mirrors the `lingering_close` config tri-state of spec.md
// §7 ("lingering_close ∈ {off,on,always}").
type LingeringMode int

const (
	LingeringOff LingeringMode = iota
	LingeringOn
	LingeringAlways
)

// Config is the subset of spec.md §7's configuration surface this package
// consumes.
type Config struct {
	KeepAliveTimeout  time.Duration
	KeepAliveRequests int
	Lingering         LingeringMode
	LingeringTime     time.Duration
	LingeringTimeout  time.Duration
	TCPNoDelay        bool
}

// Action is the outcome of the finalize_connection decision tree.
type Action int

const (
	ActionDecrementOnly Action = iota
	ActionForceCloseAfter
	ActionSetKeepalive
	ActionSetLingeringClose
	ActionCloseRequest
)

// Inputs bundles the request-side facts finalize_connection inspects
// (spec.md §4.10).
type Inputs struct {
	Count          int32
	ReadingBody    bool
	DiscardBody    bool
	KeepAlive      bool
	ShuttingDown   bool
	RequestsOnConn int
}

// Decide implements finalize_connection's decision tree verbatim against
// spec.md §4.10: "if count != 1, just decrement... If reading_body, force
// close-after. Else if keepalive allowed and server not shutting down →
// set_keepalive. Else if lingering configured/required → set_lingering_close.
// Else → close_request."
func Decide(in Inputs, cfg Config) Action {
	if in.Count != 1 {
		return ActionDecrementOnly
	}
	if in.ReadingBody {
		return ActionForceCloseAfter
	}
	if in.KeepAlive && !in.ShuttingDown && withinRequestBudget(in, cfg) {
		return ActionSetKeepalive
	}
	if cfg.Lingering == LingeringAlways || (cfg.Lingering == LingeringOn && in.DiscardBody) {
		return ActionSetLingeringClose
	}
	return ActionCloseRequest
}

func withinRequestBudget(in Inputs, cfg Config) bool {
	return cfg.KeepAliveRequests <= 0 || in.RequestsOnConn < cfg.KeepAliveRequests
}

// SetKeepalive implements spec.md §4.11's reclaim step: release the primary
// buffer and all large buffers back to an idle, reusable state, returning
// any pipelined bytes already read past the just-finished request so the
// caller can hand them straight to keepalive_handler without a recv().
func SetKeepalive(pool buffer.Pool) (pipelined []byte, hasPipelined bool) {
	pipelined, hasPipelined = pool.Recycle()
	pool.Release()
	return pipelined, hasPipelined
}

// Drainer is the read half of a connection capable of a deadline-bounded
// discard read (spec.md §4.12's lingering_close_handler). A *net.TCPConn or
// *tls.Conn satisfies this directly.
type Drainer interface {
	io.Reader
	SetReadDeadline(t time.Time) error
}

// HalfCloser additionally allows shutting down the write half, as
// lingering close does before draining (spec.md §4.12: "half-close the
// write side").
type HalfCloser interface {
	Drainer
	CloseWrite() error
}

// NowFunc allows tests to control wall-clock progress deterministically.
type NowFunc func() time.Time

// LingeringClose drives spec.md §4.12's drain loop: half-close the write
// side, then recv into a throwaway buffer until EOF, error, or the
// lingering_time budget is exhausted, bounding each individual read by
// lingering_timeout. Returns nil once the peer has gone away (EOF) or the
// deadline is hit — both are a normal exit, per spec.md §8 property 8
// ("total wall time <= lingering_time, per-call <= lingering_timeout").
func LingeringClose(conn HalfCloser, cfg Config, now NowFunc) error {
	if now == nil {
		now = time.Now
	}
	if err := conn.CloseWrite(); err != nil {
		return err
	}

	deadline := now().Add(cfg.LingeringTime)
	discard := make([]byte, 4096)

	for {
		remaining := deadline.Sub(now())
		if remaining <= 0 {
			return nil
		}
		per := cfg.LingeringTimeout
		if per <= 0 || per > remaining {
			per = remaining
		}
		if err := conn.SetReadDeadline(now().Add(per)); err != nil {
			return err
		}
		_, err := conn.Read(discard)
		if err != nil {
			// EOF, timeout, or any other read error ends the drain: the
			// original handler treats all three identically (close).
			if err == io.EOF {
				return nil
			}
			return nil
		}
	}
}
