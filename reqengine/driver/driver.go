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

// Package driver implements module F: the per-connection FSM that owns the
// event-handler-swap model of spec.md §4.7 — feeding bytes into the header
// buffer pool, driving the request-line and header-line parsers, validating
// Host, resolving the virtual server, and handing a fully-parsed request off
// to the phase dispatcher.
package driver

import (
	"time"

	liberr "github.com/nabbar/edge-httpcore/errors"
	liblog "github.com/nabbar/edge-httpcore/logger"
	"github.com/nabbar/edge-httpcore/reqengine"
	"github.com/nabbar/edge-httpcore/reqengine/buffer"
	"github.com/nabbar/edge-httpcore/reqengine/host"
	"github.com/nabbar/edge-httpcore/reqengine/parser"
	"github.com/nabbar/edge-httpcore/reqengine/request"
	"github.com/nabbar/edge-httpcore/reqengine/vhost"
)

// Config is the subset of spec.md §7's configuration surface this package
// consumes directly.
type Config struct {
	Buffer               buffer.Config
	ClientHeaderTimeout  time.Duration
	MergeSlashes         bool
	UnderscoresInHeaders bool
	IgnoreInvalidHeaders bool
}

// Outcome is what one Step call accomplished, so the caller (the real
// event loop, outside this package's scope) knows whether to keep reading,
// hand off to the phase dispatcher, or finalize.
type Outcome int

const (
	// OutcomeAgain: need more bytes before the current phase can progress.
	OutcomeAgain Outcome = iota
	// OutcomeRequestReady: request line + headers fully parsed and
	// validated; ready for the phase dispatcher (spec.md §4.8).
	OutcomeRequestReady
	// OutcomeError: parse/validation failure; req.State() still reports
	// which phase failed, the caller finalizes with the returned error.
	OutcomeError
)

// Driver is one connection's FSM instance.
type Driver struct {
	cfg      Config
	pool     buffer.Pool
	registry *parser.Registry
	vhosts   *vhost.Table
	bound    vhost.ServerConfig
	defaultS vhost.ServerConfig

	rl *parser.RequestLineParser
	hl *parser.HeaderLineParser

	req *request.Request
	log liblog.FuncLog
}

// SetLog installs a logger for this connection's driver (teacher's
// dependency-injection convention, liblog.FuncLog). Nil is safe.
func (d *Driver) SetLog(log liblog.FuncLog) { d.log = log }

func (d *Driver) logger() liblog.Logger {
	if d.log == nil {
		return nil
	}
	return d.log()
}

// New creates a driver bound to ctx's default virtual server, in WAIT state
// (spec.md §4.7's entry state, before the first byte arrives).
func New(cfg Config, vhosts *vhost.Table, defaultServer vhost.ServerConfig, req *request.Request) *Driver {
	d := &Driver{
		cfg:      cfg,
		pool:     buffer.New(cfg.Buffer),
		registry: parser.NewRegistry(),
		vhosts:   vhosts,
		defaultS: defaultServer,
		bound:    defaultServer,
		rl:       &parser.RequestLineParser{},
		hl:       parser.NewHeaderLineParser(cfg.UnderscoresInHeaders),
		req:      req,
	}
	req.SetState(request.StateWait)
	return d
}

// Pool exposes the header-buffer pool so the caller's read loop can copy
// socket bytes straight into Active()[Last():End()] before calling Step.
func (d *Driver) Pool() buffer.Pool { return d.pool }

// Feed appends b into the pool, growing (relocating the in-progress token)
// as needed, per spec.md §4.1's buffer-full handling: growth only triggers
// once the buffer is physically out of room (Last has reached End), not
// merely because the parser hasn't caught up yet.
func (d *Driver) Feed(b []byte) liberr.Error {
	for len(b) > 0 {
		active := d.pool.Active()
		room := len(active) - d.pool.Last()

		if room == 0 {
			if d.req.State() != request.StateParsingLine && d.req.State() != request.StateParsingHeaders {
				// Not in a growable phase (e.g. body streaming handled
				// elsewhere); caller must drain before feeding more.
				break
			}
			delta, err := d.pool.Grow(d.pool.Pos())
			if err != nil {
				return err
			}
			if d.req.State() == request.StateParsingLine {
				d.rl.Rebase(delta)
			} else {
				d.hl.Rebase(delta)
			}
			continue
		}

		n := copy(active[d.pool.Last():], b)
		d.pool.SetLast(d.pool.Last() + n)
		b = b[n:]
	}
	return nil
}

// Step advances parsing as far as currently-buffered bytes allow
// (spec.md §4.7's parsing-line/parsing-headers read-handler rows).
func (d *Driver) Step() (Outcome, liberr.Error) {
	if d.req.State() == request.StateWait {
		d.req.SetState(request.StateParsingLine)
	}

	if d.req.State() == request.StateParsingLine {
		outcome, err := d.stepRequestLine()
		if outcome != OutcomeRequestReady || err != nil {
			return outcome, err
		}
	}

	if d.req.State() == request.StateParsingHeaders {
		return d.stepHeaders()
	}

	return OutcomeAgain, nil
}

func (d *Driver) stepRequestLine() (Outcome, liberr.Error) {
	buf := d.pool.Active()
	status, next, line := d.rl.Parse(buf, d.pool.Pos(), d.pool.Last())
	d.pool.SetPos(next)

	switch status {
	case parser.StatusAgain:
		return OutcomeAgain, nil
	case parser.StatusInvalidMethod:
		return OutcomeError, reqengine.ErrorInvalidMethod.Error(nil)
	case parser.StatusInvalidRequest:
		return OutcomeError, reqengine.ErrorInvalidRequestLine.Error(nil)
	case parser.StatusOK:
		d.req.MethodName = line.Method(buf)
		d.req.URI = line.URI(buf)
		d.req.Args = line.Args(buf)
		if line.HTTPMajor == 0 && line.HTTPMinor == 9 {
			d.req.HTTPProtocol = "HTTP/0.9"
			d.req.SetState(request.StateProcessRequest)
			return OutcomeRequestReady, nil
		}
		d.req.HTTPProtocol = line.Proto(buf)
		d.req.SetState(request.StateParsingHeaders)
		return OutcomeRequestReady, nil
	}
	return OutcomeAgain, nil
}

func (d *Driver) stepHeaders() (Outcome, liberr.Error) {
	buf := d.pool.Active()
	for {
		status, next, hdr := d.hl.Parse(buf, d.pool.Pos(), d.pool.Last())
		d.pool.SetPos(next)

		switch status {
		case parser.StatusAgain:
			return OutcomeAgain, nil
		case parser.StatusInvalidHeader:
			if d.cfg.IgnoreInvalidHeaders {
				continue
			}
			return OutcomeError, reqengine.ErrorInvalidHeader.Error(nil)
		case parser.StatusHeaderDone:
			if err := d.finishHeaders(); err != nil {
				return OutcomeError, err
			}
			d.req.SetState(request.StateProcessRequest)
			return OutcomeRequestReady, nil
		case parser.StatusOK:
			name := hdr.Name(buf)
			value := hdr.Value(buf)
			d.req.HeaderAppend(name, value)
			d.applyKnownHeader(name, value)
		}
	}
}

func (d *Driver) applyKnownHeader(name, value string) {
	entry, ok := d.registry.Lookup(name)
	if !ok {
		return
	}
	switch entry.Kind {
	case parser.KindSemanticConnection:
		switch parser.ParseConnection(value) {
		case parser.ConnectionClose:
			d.req.Flags.KeepAlive = false
		case parser.ConnectionKeepAlive:
			d.req.Flags.KeepAlive = true
		}
	}
}

// finishHeaders implements the validation spec.md §4.8 requires before
// handing off to the phase runner: Host required for >=1.1, Host format
// valid, and virtual-server resolution.
func (d *Driver) finishHeaders() liberr.Error {
	hostValue, hasHost := d.req.HeaderGet("host")

	if !hasHost {
		if d.req.HTTPProtocol == "HTTP/1.1" {
			return reqengine.ErrorMissingHost.Error(nil)
		}
		d.req.Host = ""
		return nil
	}

	res, err := host.Validate([]byte(hostValue))
	if err != nil {
		return err
	}
	d.req.Host = res.Value

	srv, verr := d.vhosts.Resolve(d.req.Host, d.bound)
	if verr != nil {
		return verr
	}
	if srv.Name() == d.defaultS.Name() && d.req.Host != "" {
		if l := d.logger(); l != nil {
			l.Info("request host resolved to default server", map[string]interface{}{
				"host": d.req.Host,
			})
		}
	}
	d.bound = srv
	return nil
}

// Server returns the virtual server resolved for this request so far
// (spec.md §4.5: may still be the default until Host is known).
func (d *Driver) Server() vhost.ServerConfig { return d.bound }
