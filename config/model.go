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

package config

import (
	"context"
	"sync/atomic"

	cfgtps "github.com/nabbar/edge-httpcore/config/types"
	libctx "github.com/nabbar/edge-httpcore/context"
)

// fct store keys. Kept as a uint8 iota block since the values are only ever
// used as keys into model.fct, never serialized or compared across packages.
const (
	fctVersion uint8 = iota
	fctViper
	fctStartBefore
	fctStartAfter
	fctReloadBefore
	fctReloadAfter
	fctStopBefore
	fctStopAfter
	fctLoggerDef
	fctMonitorPool
)

// model is the concrete implementation of Config.
type model struct {
	ctx libctx.Config[string]
	cpt cptMap
	fct libctx.Config[uint8]
	cnl cnlMap
	seq atomic.Uint64
}

// cptMap adapts a libctx.Config[string] map into the cfgtps.Component-typed
// Load/Store/Delete/Range surface the component registry needs. libctx's
// Walk callback is interface{}-typed and can't be used directly where a
// concretely-typed iteration is required.
type cptMap struct {
	m libctx.Config[string]
}

func newCptMap(ctx context.Context) cptMap {
	return cptMap{m: libctx.NewConfig[string](ctx)}
}

func (c cptMap) Load(key string) (cfgtps.Component, bool) {
	i, l := c.m.Load(key)
	if !l {
		return nil, false
	}

	v, k := i.(cfgtps.Component)
	if !k {
		return nil, false
	}

	return v, true
}

func (c cptMap) Store(key string, cpt cfgtps.Component) {
	c.m.Store(key, cpt)
}

func (c cptMap) Delete(key string) {
	c.m.Delete(key)
}

func (c cptMap) Range(fct func(key string, val cfgtps.Component) bool) {
	c.m.Walk(func(key string, val interface{}) bool {
		v, _ := val.(cfgtps.Component)
		return fct(key, v)
	})
}

// cnlMap adapts a libctx.Config[uint64] map into the context.CancelFunc-typed
// Store/Delete/Range surface the custom cancel-function registry needs.
type cnlMap struct {
	m libctx.Config[uint64]
}

func newCnlMap(ctx context.Context) cnlMap {
	return cnlMap{m: libctx.NewConfig[uint64](ctx)}
}

func (c cnlMap) Store(key uint64, f context.CancelFunc) {
	c.m.Store(key, f)
}

func (c cnlMap) Delete(key uint64) {
	c.m.Delete(key)
}

func (c cnlMap) Range(fct func(key uint64, f context.CancelFunc) bool) {
	c.m.Walk(func(key uint64, val interface{}) bool {
		v, k := val.(context.CancelFunc)
		if !k {
			return true
		}
		return fct(key, v)
	})
}
