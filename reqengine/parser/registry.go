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

package parser

import "strings"

// HeaderKind classifies how the registry stores a parsed header (spec.md
// §4.3): a single slot (duplicates are a 400), an appended list (Cookie,
// X-Forwarded-For), or semantic handling (Host, Connection, User-Agent).
type HeaderKind int

const (
	KindUnique HeaderKind = iota
	KindMulti
	KindSemanticHost
	KindSemanticConnection
	KindSemanticUserAgent
)

// HeaderEntry is one row of the static (name, slot, handler) table, hashed
// at startup per spec.md §4.3.
type HeaderEntry struct {
	Name string
	Kind HeaderKind
}

// Registry is the known-header lookup table, built once and treated as
// read-only thereafter (spec.md §9's "global header-registry hash").
type Registry struct {
	byLower map[string]HeaderEntry
}

// NewRegistry builds the static table. Matches spec.md §4.3's named
// headers plus the well-known slots listed in §3's Request data model.
func NewRegistry() *Registry {
	entries := []HeaderEntry{
		{"host", KindSemanticHost},
		{"connection", KindSemanticConnection},
		{"user-agent", KindSemanticUserAgent},
		{"content-length", KindUnique},
		{"transfer-encoding", KindUnique},
		{"if-modified-since", KindUnique},
		{"if-unmodified-since", KindUnique},
		{"if-match", KindUnique},
		{"if-none-match", KindUnique},
		{"if-range", KindUnique},
		{"range", KindUnique},
		{"upgrade", KindUnique},
		{"accept-encoding", KindUnique},
		{"keep-alive", KindUnique},
		{"authorization", KindUnique},
		{"expect", KindUnique},
		{"cookie", KindMulti},
		{"x-forwarded-for", KindMulti},
	}

	r := &Registry{byLower: make(map[string]HeaderEntry, len(entries))}
	for _, e := range entries {
		r.byLower[e.Name] = e
	}
	return r
}

// Lookup resolves a parsed header name (already known to be a valid token)
// against the registry, case-insensitively.
func (r *Registry) Lookup(name string) (HeaderEntry, bool) {
	e, ok := r.byLower[strings.ToLower(name)]
	return e, ok
}

// ConnectionType is the outcome of scanning a Connection header value for
// "close"/"keep-alive" tokens (spec.md §4.3).
type ConnectionType int

const (
	ConnectionUnset ConnectionType = iota
	ConnectionClose
	ConnectionKeepAlive
)

func ParseConnection(value string) ConnectionType {
	v := strings.ToLower(value)
	switch {
	case strings.Contains(v, "close"):
		return ConnectionClose
	case strings.Contains(v, "keep-alive"):
		return ConnectionKeepAlive
	default:
		return ConnectionUnset
	}
}

// Browser flags detected from User-Agent (spec.md §4.3); consumed
// downstream by filters, not by this engine itself.
type Browser struct {
	MSIE, Opera, Gecko, Chrome, Safari, Konqueror bool
}

func ParseUserAgent(ua string) Browser {
	return Browser{
		MSIE:      strings.Contains(ua, "MSIE"),
		Opera:     strings.Contains(ua, "Opera"),
		Gecko:     strings.Contains(ua, "Gecko") && !strings.Contains(ua, "like Gecko"),
		Chrome:    strings.Contains(ua, "Chrome"),
		Safari:    strings.Contains(ua, "Safari") && !strings.Contains(ua, "Chrome"),
		Konqueror: strings.Contains(ua, "Konqueror"),
	}
}
