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

// Package vhost implements virtual-server resolution from a validated Host
// value (spec component D, §4.5): exact hash, then wildcard, then regex
// fallback, with a default server for unresolved/SNI-unverified hosts.
package vhost

import (
	"regexp"
	"strings"

	liberr "github.com/nabbar/edge-httpcore/errors"
	"github.com/nabbar/edge-httpcore/reqengine"
)

// ServerConfig is the opaque per-server configuration this package binds a
// request to. The engine never interprets it (spec.md §1: config parsing
// is an external collaborator) beyond carrying a name for logging/tests.
type ServerConfig interface {
	Name() string
}

type regexEntry struct {
	re  *regexp.Regexp
	cfg ServerConfig
}

// Table is the per-(listen-addr,port) virtual_names table (spec.md §4.5).
type Table struct {
	def     ServerConfig
	exact   map[string]ServerConfig
	regexes []regexEntry
	// sniVerify mirrors the "SNI verification on" branch of §4.5 step 4.
	sniVerify bool
}

// NewTable builds an empty table bound to def, the default server for this
// listener. def may be nil only if the caller never calls Resolve before
// registering one (Resolve then errors with ErrorVHostNoDefault).
func NewTable(def ServerConfig, sniVerify bool) *Table {
	return &Table{def: def, exact: make(map[string]ServerConfig), sniVerify: sniVerify}
}

// AddExact registers an exact, leading-wildcard ("*.example"), or
// trailing-wildcard ("example.*") name into the combined exact-match hash.
func (t *Table) AddExact(name string, cfg ServerConfig) {
	t.exact[strings.ToLower(name)] = cfg
}

// AddRegex appends a regex fallback entry, tried in registration order.
func (t *Table) AddRegex(re *regexp.Regexp, cfg ServerConfig) {
	t.regexes = append(t.regexes, regexEntry{re: re, cfg: cfg})
}

// Resolve implements spec.md §4.5's four-step algorithm. bound is the
// server currently attached to the request (possibly the default, possibly
// nil pre-Host); it is what "keep the server currently bound" falls back to
// in step 4 when SNI verification is not required.
func (t *Table) Resolve(host string, bound ServerConfig) (ServerConfig, liberr.Error) {
	if t.def == nil && bound == nil {
		return nil, reqengine.ErrorVHostNoDefault.Error(nil)
	}

	if len(t.exact) == 0 && len(t.regexes) == 0 {
		return t.def, nil
	}

	h := strings.ToLower(host)
	if cfg, ok := t.exact[h]; ok {
		return cfg, nil
	}
	if i := strings.IndexByte(h, '.'); i >= 0 {
		if cfg, ok := t.exact["*"+h[i:]]; ok { // leading wildcard *.example
			return cfg, nil
		}
	}
	if i := strings.LastIndexByte(h, '.'); i >= 0 {
		if cfg, ok := t.exact[h[:i+1]+"*"]; ok { // trailing wildcard example.*
			return cfg, nil
		}
	}

	for _, e := range t.regexes {
		if e.re.MatchString(h) {
			return e.cfg, nil
		}
	}

	if t.sniVerify {
		return t.def, nil
	}
	if bound != nil {
		return bound, nil
	}
	return t.def, nil
}
