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

// HeaderLine holds the offsets parse_header_line sets on OK (spec.md §4.2).
type HeaderLine struct {
	NameStart, NameEnd   int
	ValueStart, ValueEnd int
	Hash                 uint32
}

func (h HeaderLine) Name(buf []byte) string  { return string(buf[h.NameStart:h.NameEnd]) }
func (h HeaderLine) Value(buf []byte) string { return string(buf[h.ValueStart:h.ValueEnd]) }

// HeaderLineParser is the resumable header-line state machine.
type HeaderLineParser struct {
	state             int
	allowUnderscores  bool
	hash              uint32
	line              HeaderLine
}

func NewHeaderLineParser(allowUnderscores bool) *HeaderLineParser {
	return &HeaderLineParser{allowUnderscores: allowUnderscores}
}

const (
	hlStart = iota
	hlName
	hlSpaceBeforeValue
	hlValue
	hlCR
	hlAlmostDone
)

// fnvLikeStep is the incremental lowercased-name hash spec.md §4.2 names
// ("incremental FNV-like hash"); grounded on the constants nginx's
// ngx_hash_key_lc uses.
func fnvLikeStep(h uint32, c byte) uint32 {
	return h*31 + uint32(lower(c))
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// Rebase shifts every offset recorded so far by -delta (spec.md §9's growth
// contract), mirroring RequestLineParser.Rebase.
func (p *HeaderLineParser) Rebase(delta int) {
	if delta == 0 {
		return
	}
	p.line.NameStart -= delta
	p.line.NameEnd -= delta
	p.line.ValueStart -= delta
	p.line.ValueEnd -= delta
}

// Parse advances over buf[pos:last]. StatusHeaderDone signals the blank
// line terminating the header block.
func (p *HeaderLineParser) Parse(buf []byte, pos, last int) (Status, int, HeaderLine) {
	i := pos
	for i < last {
		c := buf[i]
		switch p.state {
		case hlStart:
			if c == '\r' {
				p.state = hlAlmostDone
				i++
				continue
			}
			if c == '\n' {
				return StatusHeaderDone, i + 1, HeaderLine{}
			}
			p.line = HeaderLine{NameStart: i}
			p.hash = 0
			p.state = hlName
			continue

		case hlName:
			switch {
			case c == ':':
				p.line.NameEnd = i
				p.state = hlSpaceBeforeValue
			case c == '\r' || c == '\n':
				return StatusInvalidHeader, i, HeaderLine{}
			case c == '_':
				if !p.allowUnderscores {
					return StatusInvalidHeader, i, HeaderLine{}
				}
				p.hash = fnvLikeStep(p.hash, c)
			case isHeaderNameChar(c):
				p.hash = fnvLikeStep(p.hash, c)
			default:
				return StatusInvalidHeader, i, HeaderLine{}
			}

		case hlSpaceBeforeValue:
			if c == ' ' || c == '\t' {
				i++
				continue
			}
			p.line.ValueStart = i
			p.state = hlValue
			continue

		case hlValue:
			if c == '\r' {
				p.line.ValueEnd = trimOWS(buf, p.line.ValueStart, i)
				p.state = hlCR
			} else if c == '\n' {
				p.line.ValueEnd = trimOWS(buf, p.line.ValueStart, i)
				p.line.Hash = p.hash
				return StatusOK, i + 1, p.line
			}

		case hlCR:
			if c != '\n' {
				return StatusInvalidHeader, i, HeaderLine{}
			}
			p.line.Hash = p.hash
			return StatusOK, i + 1, p.line

		case hlAlmostDone:
			if c != '\n' {
				return StatusInvalidHeader, i, HeaderLine{}
			}
			return StatusHeaderDone, i + 1, HeaderLine{}
		}
		i++
	}
	return StatusAgain, i, HeaderLine{}
}

func trimOWS(buf []byte, start, end int) int {
	for end > start && (buf[end-1] == ' ' || buf[end-1] == '\t') {
		end--
	}
	return end
}

func isHeaderNameChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-'
}
