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

// Package reqengine holds the error codes shared by every reqengine/*
// subpackage (buffer, parser, host, vhost, request, driver, phase, writer,
// subrequest, keepalive, upstream): the per-connection HTTP/1.x request
// engine and its weighted round-robin upstream selector.
package reqengine

import "github.com/nabbar/edge-httpcore/errors"

const (
	ErrorHeaderTooLarge errors.CodeError = iota + errors.MinPkgRequest
	ErrorURITooLarge
	ErrorInvalidRequestLine
	ErrorInvalidMethod
	ErrorInvalid09Method
	ErrorInvalidHeader
	ErrorMissingHost
	ErrorHostInvalid
	ErrorRequestTimeout
	ErrorSendTimeout
	ErrorClientClosedRequest
	ErrorAllocation
	ErrorTooManySubrequests
	ErrorNoUpstreamPeer
	ErrorUpstreamBusy

	ErrorVHostNoDefault errors.CodeError = iota + errors.MinPkgRouter
)

func init() {
	if errors.ExistInMapMessage(ErrorHeaderTooLarge) {
		panic("error code collision with package reqengine")
	}
	errors.RegisterIdFctMessage(ErrorHeaderTooLarge, getMessage)
	errors.RegisterIdFctMessage(ErrorVHostNoDefault, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case ErrorHeaderTooLarge:
		return "request header too large"
	case ErrorURITooLarge:
		return "request uri too large"
	case ErrorInvalidRequestLine:
		return "invalid request line"
	case ErrorInvalidMethod:
		return "invalid method token"
	case ErrorInvalid09Method:
		return "invalid HTTP/0.9 request"
	case ErrorInvalidHeader:
		return "invalid header line"
	case ErrorMissingHost:
		return "missing Host header"
	case ErrorHostInvalid:
		return "invalid Host value"
	case ErrorRequestTimeout:
		return "request timed out"
	case ErrorSendTimeout:
		return "send timed out"
	case ErrorClientClosedRequest:
		return "client closed request"
	case ErrorAllocation:
		return "allocation failure"
	case ErrorTooManySubrequests:
		return "too many subrequests"
	case ErrorNoUpstreamPeer:
		return "no upstream peer available"
	case ErrorUpstreamBusy:
		return "upstream busy"
	case ErrorVHostNoDefault:
		return "no default server configured for listener"
	}

	return errors.NullMessage
}
