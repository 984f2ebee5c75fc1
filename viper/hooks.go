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

package viper

import (
	"github.com/mitchellh/mapstructure"
	spfvpr "github.com/spf13/viper"
)

// HookRegister registers a mapstructure decode hook applied on every
// Unmarshal/UnmarshalKey call. Accepts any of the mapstructure.DecodeHookFunc
// signatures (DecodeHookFuncType, DecodeHookFuncKind, DecodeHookFuncValue).
func (o *vpr) HookRegister(hook interface{}) {
	o.m.Lock()
	defer o.m.Unlock()

	o.hks = append(o.hks, hook)
}

// HookReset clears every previously registered decode hook.
func (o *vpr) HookReset() {
	o.m.Lock()
	defer o.m.Unlock()

	o.hks = make([]interface{}, 0)
}

func (o *vpr) decodeHook() mapstructure.DecodeHookFunc {
	o.m.Lock()
	hks := make([]mapstructure.DecodeHookFunc, 0, len(o.hks)+1)
	hks = append(hks, mapstructure.StringToTimeDurationHookFunc())
	for _, h := range o.hks {
		hks = append(hks, h.(mapstructure.DecodeHookFunc))
	}
	o.m.Unlock()

	return mapstructure.ComposeDecodeHookFunc(hks...)
}

func (o *vpr) Unmarshal(item interface{}) error {
	return o.vpr.Unmarshal(item, spfvpr.DecodeHook(o.decodeHook()))
}

func (o *vpr) UnmarshalKey(key string, item interface{}) error {
	return o.vpr.UnmarshalKey(key, item, spfvpr.DecodeHook(o.decodeHook()))
}
