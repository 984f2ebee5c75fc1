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

// Package host implements Host/SNI validation and normalisation (spec
// component C).
package host

import (
	"strings"

	liberr "github.com/nabbar/edge-httpcore/errors"
	"github.com/nabbar/edge-httpcore/reqengine"
)

// Result is the outcome of Validate. A zero Result with no error means the
// caller can keep the original bytes (Changed is false).
type Result struct {
	Value   string
	Changed bool
}

// Validate normalises and validates a Host/SNI value per spec.md §4.4:
// accepts ALPHA/DIGIT/'-'/'.' in normal segments, '[...]' for an IPv6
// literal, a single trailing ':port'. Rejects NUL, path separators, empty
// labels, '..'. Trims a trailing solitary '.'. Lower-cases if any uppercase
// is present.
func Validate(raw []byte) (Result, liberr.Error) {
	if len(raw) == 0 {
		return Result{}, reqengine.ErrorHostInvalid.Error(nil)
	}

	b := raw
	// trailing solitary '.' is trimmed, not rejected.
	if b[len(b)-1] == '.' {
		b = b[:len(b)-1]
	}

	i := 0
	dotRun := 0
	upper := false

	if b[0] == '[' {
		end := -1
		for j := 1; j < len(b); j++ {
			if b[j] == ']' {
				end = j
				break
			}
		}
		if end < 0 {
			return Result{}, reqengine.ErrorHostInvalid.Error(nil)
		}
		for _, c := range b[1:end] {
			if !isHexDigit(c) && c != ':' {
				return Result{}, reqengine.ErrorHostInvalid.Error(nil)
			}
		}
		i = end + 1
	} else {
		for i < len(b) && b[i] != ':' {
			c := b[i]
			switch {
			case c == 0x00:
				return Result{}, reqengine.ErrorHostInvalid.Error(nil)
			case c == '/' || c == '\\':
				return Result{}, reqengine.ErrorHostInvalid.Error(nil)
			case c == '.':
				dotRun++
				if dotRun > 1 {
					return Result{}, reqengine.ErrorHostInvalid.Error(nil)
				}
			case isAlpha(c) || isDigit(c) || c == '-':
				dotRun = 0
				if isUpper(c) {
					upper = true
				}
			default:
				return Result{}, reqengine.ErrorHostInvalid.Error(nil)
			}
			i++
		}
	}

	if i < len(b) {
		if b[i] != ':' {
			return Result{}, reqengine.ErrorHostInvalid.Error(nil)
		}
		port := b[i+1:]
		if len(port) == 0 {
			return Result{}, reqengine.ErrorHostInvalid.Error(nil)
		}
		for _, c := range port {
			if !isDigit(c) {
				return Result{}, reqengine.ErrorHostInvalid.Error(nil)
			}
		}
	}

	changed := len(b) != len(raw)
	out := string(b)
	if upper {
		out = strings.ToLower(out)
		changed = true
	}

	return Result{Value: out, Changed: changed}, nil
}

func isAlpha(c byte) bool { return isUpper(c) || (c >= 'a' && c <= 'z') }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
