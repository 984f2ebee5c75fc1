/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package types

import "time"

const (
	// TimeoutWaitingPortFreeing is the timeout duration for checking if a port becomes available.
	// Used when verifying port availability before binding.
	TimeoutWaitingPortFreeing = 250 * time.Microsecond

	// TimeoutWaitingStop is the default timeout for graceful server shutdown.
	// Servers have 5 seconds to complete ongoing requests before forced termination.
	TimeoutWaitingStop = 5 * time.Second

	// TimeoutWaitingStart is the delay after launching the listener goroutine
	// before checking whether it is still running. A synchronous bind failure
	// (e.g. port already in use) surfaces within this window.
	TimeoutWaitingStart = 30 * time.Millisecond

	// BadHandlerName is the identifier string for the BadHandler.
	// Used in logging and monitoring to indicate no valid handler is configured.
	BadHandlerName = "no handler"
)
