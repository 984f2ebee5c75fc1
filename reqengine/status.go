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

package reqengine

// Code is the handler/phase return code the finalize/writer/phase packages
// share (spec.md §4.8/§4.10's `rc`).
type Code int

const (
	CodeOK Code = iota
	CodeDeclined
	CodeDone
	CodeError
	CodeCreated
	CodeNoContent
	CodeClose
	CodeRequestTimeOut
	CodeClientClosedRequest
	// CodeSpecialResponseBase: any Code numerically >= this is a special
	// response (an HTTP status to render as a canned error body), per
	// spec.md §4.10: "rc >= SPECIAL_RESPONSE || rc in {CREATED, NO_CONTENT}".
	CodeSpecialResponseBase Code = 300
)

// IsSpecialResponse reports whether rc should be rendered via
// special_response_handler (spec.md §4.10).
func (c Code) IsSpecialResponse() bool {
	return c >= CodeSpecialResponseBase || c == CodeCreated || c == CodeNoContent
}

// WriteEvent is what the phase/content layer leaves on a request's
// write_event_handler slot (spec.md §4.8): the driver's contract for what
// to do next with this request's output.
type WriteEvent int

const (
	// WriteEventEmpty means "done": nothing more to write for this request.
	WriteEventEmpty WriteEvent = iota
	// WriteEventWriter means "more output to flush": install the writer.
	WriteEventWriter
	// WriteEventFinalizer means "nothing more to do but must still drain in
	// order" (a subrequest waiting its turn in the postponed chain).
	WriteEventFinalizer
)
