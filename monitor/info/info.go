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

// Package info implements the types.Info contract used to register a
// monitored component's name and metadata.
package info

import (
	"fmt"
	"sync"

	montps "github.com/nabbar/edge-httpcore/monitor/types"
)

// FuncInfo is re-exported for callers constructing an info.New without
// importing the types package directly.
type FuncInfo = montps.FuncInfo

type inf struct {
	mu   sync.RWMutex
	name string
	fName montps.FuncName
	fInfo montps.FuncInfo
}

// New creates an Info registered under the given default name. name must not
// be empty.
func New(name string) (montps.Info, error) {
	if name == "" {
		return nil, fmt.Errorf("monitor info: name cannot be empty")
	}

	return &inf{name: name}, nil
}

func (i *inf) Name() string {
	i.mu.RLock()
	fct := i.fName
	i.mu.RUnlock()

	if fct == nil {
		return i.name
	}

	if n, e := fct(); e == nil && n != "" {
		return n
	}

	return i.name
}

func (i *inf) RegisterName(fct montps.FuncName) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.fName = fct
}

func (i *inf) RegisterInfo(fct montps.FuncInfo) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.fInfo = fct
}

// Info returns the registered metadata map, or an empty map if none was registered.
func (i *inf) Info() (map[string]interface{}, error) {
	i.mu.RLock()
	fct := i.fInfo
	i.mu.RUnlock()

	if fct == nil {
		return map[string]interface{}{}, nil
	}

	return fct()
}
