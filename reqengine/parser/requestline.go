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

// Package parser implements the resumable byte-by-byte request-line and
// header-line state machines (spec component B) plus the known-header
// registry (spec component C's table, §4.3).
package parser

// Status is the outcome of one parse step, mirroring spec.md §4.2's
// contract: OK | AGAIN | INVALID_METHOD | INVALID_REQUEST | INVALID_09_METHOD
// for the request line, and OK | AGAIN | HEADER_DONE | INVALID_HEADER for
// header lines.
type Status int

const (
	StatusAgain Status = iota
	StatusOK
	StatusInvalidMethod
	StatusInvalidRequest
	StatusInvalid09Method
	StatusHeaderDone
	StatusInvalidHeader
)

// knownMethods is the static method token table referenced by SPEC_FULL.md's
// "Method-token case sensitivity" supplement, grounded on
// _examples/original_source/nginx-1.10.0/src/http/ngx_http_request.c's
// method table and spec.md §6's wire grammar.
var knownMethods = map[string]bool{
	"GET": true, "HEAD": true, "POST": true, "PUT": true, "DELETE": true,
	"OPTIONS": true, "TRACE": true, "CONNECT": true, "MKCOL": true,
	"COPY": true, "MOVE": true, "PROPFIND": true, "PROPPATCH": true,
	"LOCK": true, "UNLOCK": true, "PATCH": true,
}

// RequestLine holds every field parse_request_line sets on OK, as offsets
// into the buffer supplied to ParseRequestLine (spec.md §9's offset-based
// design note: growth rebases the buffer base, never these fields).
type RequestLine struct {
	RequestStart, RequestEnd       int
	MethodStart, MethodEnd         int
	URIStart, URIEnd               int
	SchemaStart, SchemaEnd         int
	HostStart, HostEnd             int
	PortStart, PortEnd             int
	ArgsStart                      int
	ArgsEnd                        int
	ProtoStart, ProtoEnd           int
	HTTPMajor, HTTPMinor           int
	ComplexURI, QuotedURI          bool
	SpaceInURI                     bool
}

func (r RequestLine) Method(buf []byte) string { return string(buf[r.MethodStart:r.MethodEnd]) }
func (r RequestLine) URI(buf []byte) string     { return string(buf[r.URIStart:r.URIEnd]) }
func (r RequestLine) Args(buf []byte) string {
	if r.ArgsStart == 0 && r.ArgsEnd == 0 {
		return ""
	}
	return string(buf[r.ArgsStart:r.ArgsEnd])
}
func (r RequestLine) Proto(buf []byte) string { return string(buf[r.ProtoStart:r.ProtoEnd]) }

// RequestLineParser is the resumable request-line state machine. Call
// Parse repeatedly as more bytes arrive; it resumes from where it left off.
type RequestLineParser struct {
	state int
	start int
	line  RequestLine
}

const (
	rlStart = iota
	rlMethod
	rlSpacesBeforeURI
	rlURI
	rlSpacesBeforeProto
	rlProto
	rlCR
	rlLF
	rlDone
)

// Rebase shifts every offset the parser has recorded so far by -delta,
// matching spec.md §9's growth contract: when the in-progress token is
// copied to a new buffer starting at what used to be offset `delta`, every
// previously-seen offset must move with it.
func (p *RequestLineParser) Rebase(delta int) {
	if delta == 0 {
		return
	}
	p.start -= delta
	l := &p.line
	l.RequestStart -= delta
	l.MethodStart -= delta
	l.MethodEnd -= delta
	l.URIStart -= delta
	l.URIEnd -= delta
	l.SchemaStart -= delta
	l.SchemaEnd -= delta
	l.HostStart -= delta
	l.HostEnd -= delta
	l.PortStart -= delta
	l.PortEnd -= delta
	if l.ArgsStart > 0 {
		l.ArgsStart -= delta
		l.ArgsEnd -= delta
	}
	l.ProtoStart -= delta
	l.ProtoEnd -= delta
}

// Parse advances the state machine over buf[pos:last]. On StatusOK it
// returns the populated RequestLine and the index just past the terminating
// LF. On StatusAgain the caller must read more bytes and call again with a
// larger last (same buf, or a relocated one with offsets already rebased).
func (p *RequestLineParser) Parse(buf []byte, pos, last int) (Status, int, RequestLine) {
	i := pos
	for i < last {
		c := buf[i]
		switch p.state {
		case rlStart:
			if c == '\r' || c == '\n' {
				i++
				continue // nginx tolerates leading blank lines
			}
			p.start = i
			p.line.RequestStart = i
			p.line.MethodStart = i
			p.state = rlMethod

		case rlMethod:
			if c == ' ' {
				p.line.MethodEnd = i
				method := string(buf[p.line.MethodStart:p.line.MethodEnd])
				if method == "" {
					return StatusInvalidMethod, i, RequestLine{}
				}
				if !knownMethods[method] {
					return StatusInvalidMethod, i, RequestLine{}
				}
				p.state = rlSpacesBeforeURI
			} else if !isTokenChar(c) {
				return StatusInvalidMethod, i, RequestLine{}
			}

		case rlSpacesBeforeURI:
			if c != ' ' {
				p.line.URIStart = i
				p.state = rlURI
				continue
			}

		case rlURI:
			switch c {
			case ' ':
				p.line.URIEnd = i
				p.splitURI(buf)
				p.state = rlSpacesBeforeProto
			case '\r', '\n':
				// HTTP/0.9: request line ends right after the URI.
				p.line.URIEnd = i
				p.splitURI(buf)
				p.line.HTTPMajor, p.line.HTTPMinor = 0, 9
				p.line.RequestEnd = i
				return StatusOK, i, p.line
			case '%':
				p.line.QuotedURI = true
			case '?':
				if p.line.ArgsStart == 0 {
					p.line.ArgsStart = i + 1
				}
			}

		case rlSpacesBeforeProto:
			if c != ' ' {
				p.line.ProtoStart = i
				p.state = rlProto
				continue
			}

		case rlProto:
			if c == '\r' || c == '\n' {
				p.line.ProtoEnd = i
				if !p.parseVersion(buf) {
					return StatusInvalidRequest, i, RequestLine{}
				}
				if c == '\r' {
					p.state = rlCR
				} else {
					p.line.RequestEnd = i
					p.state = rlDone
					return StatusOK, i + 1, p.line
				}
			}

		case rlCR:
			if c != '\n' {
				return StatusInvalidRequest, i, RequestLine{}
			}
			p.line.RequestEnd = i - 1
			p.state = rlDone
			return StatusOK, i + 1, p.line
		}
		i++
	}
	return StatusAgain, i, RequestLine{}
}

func (p *RequestLineParser) splitURI(buf []byte) {
	if p.line.ArgsStart > 0 {
		p.line.ArgsEnd = p.line.URIEnd
		p.line.URIEnd = p.line.ArgsStart - 1
	}
	if bytesContain(buf[p.line.URIStart:p.line.URIEnd], ' ') {
		p.line.SpaceInURI = true
	}
	if p.line.URIStart+7 < p.line.URIEnd && isAbsoluteForm(buf[p.line.URIStart:p.line.URIEnd]) {
		p.line.ComplexURI = true
	}
}

func (p *RequestLineParser) parseVersion(buf []byte) bool {
	proto := buf[p.line.ProtoStart:p.line.ProtoEnd]
	if len(proto) != len("HTTP/1.1") || string(proto[:5]) != "HTTP/" || proto[6] != '.' {
		return false
	}
	maj, min := proto[5], proto[7]
	if maj < '0' || maj > '9' || min < '0' || min > '9' {
		return false
	}
	p.line.HTTPMajor = int(maj - '0')
	p.line.HTTPMinor = int(min - '0')
	return true
}

func isAbsoluteForm(uri []byte) bool {
	return len(uri) > 7 && string(uri[:7]) == "http://"
}

func bytesContain(b []byte, c byte) bool {
	for _, x := range b {
		if x == c {
			return true
		}
	}
	return false
}

func isTokenChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
