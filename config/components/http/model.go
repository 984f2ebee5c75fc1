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

package http

import (
	libatm "github.com/nabbar/edge-httpcore/atomic"
	libctx "github.com/nabbar/edge-httpcore/context"
	htpool "github.com/nabbar/edge-httpcore/httpserver/pool"
	srvtps "github.com/nabbar/edge-httpcore/httpserver/types"
)

// mod is the internal implementation of CptHttp.
//
// x carries the component's context along with the state registered by
// Init/RegisterFuncStart/RegisterFuncReload/RegisterMonitorPool (component
// key, viper/getter/version/logger functions, lifecycle callbacks).
// t holds the TLS dependency key, h the handler function, s the server pool.
type mod struct {
	x libctx.Config[uint8]
	t libatm.Value[string]
	h libatm.Value[srvtps.FuncHandler]
	s libatm.Value[htpool.Pool]
}

// SetTLSKey sets the key used to reference the TLS component.
// This implements the CptHttp interface.
func (o *mod) SetTLSKey(tlsKey string) {
	o.t.Store(tlsKey)
}

// SetHandler sets the function that returns HTTP handlers for different routes.
// This implements the CptHttp interface.
func (o *mod) SetHandler(fct srvtps.FuncHandler) {
	o.h.Store(fct)
}

// GetPool returns the current HTTP server pool, or nil if not initialized.
// This implements the CptHttp interface.
func (o *mod) GetPool() htpool.Pool {
	return o.s.Load()
}

// SetPool sets the HTTP server pool.
// This implements the CptHttp interface.
func (o *mod) SetPool(pool htpool.Pool) {
	o.s.Store(pool)
}
