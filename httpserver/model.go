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

package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"

	libatm "github.com/nabbar/edge-httpcore/atomic"
	libtls "github.com/nabbar/edge-httpcore/certificates"
	libctx "github.com/nabbar/edge-httpcore/context"
	srvtps "github.com/nabbar/edge-httpcore/httpserver/types"
	liblog "github.com/nabbar/edge-httpcore/logger"
	logcfg "github.com/nabbar/edge-httpcore/logger/config"
	librun "github.com/nabbar/edge-httpcore/runner/startStop"
)

// storage keys for the internal context map. Kept unexported and distinct
// from the method names that expose them (cfgTLSMandatory/cfgGetTLS) so a
// field and its accessor never collide.
const (
	cfgName          = "name"
	cfgListen        = "listen"
	cfgExpose        = "expose"
	cfgDisabled      = "disabled"
	cfgHandler       = "handler-func"
	cfgHandlerKey    = "handler-key"
	cfgConfigKey     = "config"
	cfgTLSMandatory  = "tls-mandatory"
	cfgTLSConfigItem = "tls-config"
)

type srv struct {
	m sync.RWMutex

	c libctx.Config[string]
	h srvtps.FuncHandler

	l libatm.Value[liblog.FuncLog]
	r libatm.Value[librun.StartStop]
	s libatm.Value[*http.Server]
}

func (o *srv) setLogger(fn liblog.FuncLog, opt logcfg.Options) error {
	if o == nil {
		return ErrorInvalidInstance.Error(nil)
	}

	if fn == nil {
		fn = func() liblog.Logger {
			l := liblog.New(o.c.GetContext())
			_ = l.SetOptions(&opt)
			return l
		}
	}

	o.l.Store(fn)
	return nil
}

func (o *srv) logger() liblog.Logger {
	if o == nil {
		return nil
	}

	fn := o.l.Load()
	if fn == nil {
		return liblog.New(context.Background())
	}

	return fn()
}

func (o *srv) getServer() *http.Server {
	if o == nil {
		return nil
	}

	return o.s.Load()
}

func (o *srv) delServer() {
	if o == nil {
		return
	}

	o.s.Store(nil)
}

// setServer builds a fresh *http.Server from the current configuration,
// wiring TLS and HTTP/2 the way it was done for the legacy generation of
// this package, and stores it for runFuncStart to pick up.
func (o *srv) setServer(ctx context.Context) error {
	if o == nil {
		return ErrorInvalidInstance.Error(nil)
	}

	cfg := o.GetConfig()
	if cfg == nil {
		return ErrorServerValidate.Error(nil)
	}

	ser := &http.Server{
		Addr:    o.GetBindable(),
		Handler: o.HandlerLoadFct(),
	}

	if cfg.ReadTimeout > 0 {
		ser.ReadTimeout = cfg.ReadTimeout
	}

	if cfg.ReadHeaderTimeout > 0 {
		ser.ReadHeaderTimeout = cfg.ReadHeaderTimeout
	}

	if cfg.WriteTimeout > 0 {
		ser.WriteTimeout = cfg.WriteTimeout
	}

	if cfg.MaxHeaderBytes > 0 {
		ser.MaxHeaderBytes = cfg.MaxHeaderBytes
	}

	if cfg.IdleTimeout > 0 {
		ser.IdleTimeout = cfg.IdleTimeout
	}

	if ssl := o.cfgGetTLS(); ssl != nil && ssl.LenCertificatePair() > 0 {
		ser.TLSConfig = ssl.TlsConfig("")
	}

	h2 := &http2.Server{}

	if cfg.MaxHandlers > 0 {
		h2.MaxHandlers = cfg.MaxHandlers
	}

	if cfg.MaxConcurrentStreams > 0 {
		h2.MaxConcurrentStreams = cfg.MaxConcurrentStreams
	}

	if cfg.PermitProhibitedCipherSuites {
		h2.PermitProhibitedCipherSuites = true
	}

	if cfg.IdleTimeout > 0 {
		h2.IdleTimeout = cfg.IdleTimeout
	}

	if cfg.MaxUploadBufferPerConnection > 0 {
		h2.MaxUploadBufferPerConnection = cfg.MaxUploadBufferPerConnection
	}

	if cfg.MaxUploadBufferPerStream > 0 {
		h2.MaxUploadBufferPerStream = cfg.MaxUploadBufferPerStream
	}

	if e := http2.ConfigureServer(ser, h2); e != nil {
		return ErrorHTTP2Configure.Error(e)
	}

	o.s.Store(ser)
	return nil
}

func (o *srv) cfgTLSMandatory() bool {
	if i, l := o.c.Load(cfgTLSMandatory); !l {
		return false
	} else if v, k := i.(bool); !k {
		return false
	} else {
		return v
	}
}

func (o *srv) cfgGetTLS() libtls.TLSConfig {
	if i, l := o.c.Load(cfgTLSConfigItem); !l {
		return nil
	} else if v, k := i.(libtls.TLSConfig); !k {
		return nil
	} else {
		return v
	}
}

// PortNotUse wraps the package-level helper of the same purpose as a method,
// so the health check below can call it through the srv receiver.
func (o *srv) PortNotUse(ctx context.Context, listen string) error {
	return PortNotUse(ctx, listen)
}

func (o *srv) SetConfig(cfg Config, defLog liblog.FuncLog) error {
	if o == nil {
		return ErrorInvalidInstance.Error(nil)
	}

	if e := cfg.Validate(); e != nil {
		return e
	}

	listen := cfg.GetListen()
	if listen == nil {
		return ErrorInvalidAddress.Error(nil)
	}

	expose := cfg.GetExpose()

	if defLog != nil {
		_ = o.setLogger(defLog, cfg.Monitor.Logger)
	}

	o.Handler(cfg.getHandlerFunc)

	key := cfg.HandlerKey
	o.HandlerStoreFct(key)

	ssl := cfg.GetTLS()

	if cfg.TLSMandatory && (ssl == nil || ssl.LenCertificatePair() < 1) {
		return ErrorServerValidate.Error(nil)
	}

	o.c.Store(cfgName, cfg.Name)
	o.c.Store(cfgListen, listen)
	o.c.Store(cfgExpose, expose)
	o.c.Store(cfgDisabled, cfg.Disabled)
	o.c.Store(cfgTLSMandatory, cfg.TLSMandatory)
	o.c.Store(cfgTLSConfigItem, ssl)
	o.c.Store(cfgConfigKey, cfg)

	return o.newRun(o.c.GetContext())
}

func (o *srv) GetConfig() *Config {
	if o == nil {
		return nil
	}

	if i, l := o.c.Load(cfgConfigKey); !l {
		return nil
	} else if v, k := i.(Config); !k {
		return nil
	} else {
		return &v
	}
}

func (o *srv) Merge(s Server, def liblog.FuncLog) error {
	if o == nil {
		return ErrorInvalidInstance.Error(nil)
	}

	if s == nil {
		return ErrorInvalidInstance.Error(nil)
	}

	cfg := s.GetConfig()
	if cfg == nil {
		return ErrorInvalidInstance.Error(nil)
	}

	return o.SetConfig(*cfg, def)
}

func (o *srv) Start(ctx context.Context) error {
	if e := o.runStart(ctx); e != nil {
		return e
	}

	time.Sleep(srvtps.TimeoutWaitingStart)

	if !o.runIsRunning() {
		return errNotRunning
	}

	return nil
}

func (o *srv) Stop(ctx context.Context) error {
	return o.runStop(ctx)
}

func (o *srv) Restart(ctx context.Context) error {
	if e := o.runRestart(ctx); e != nil {
		return e
	}

	time.Sleep(srvtps.TimeoutWaitingStart)

	if !o.runIsRunning() {
		return errNotRunning
	}

	return nil
}

func (o *srv) IsRunning() bool {
	return o.runIsRunning()
}

func (o *srv) Uptime() time.Duration {
	if o == nil {
		return 0
	}

	r := o.r.Load()
	if r == nil {
		return 0
	}

	return r.Uptime()
}

func (o *srv) ErrorsLast() error {
	if o == nil {
		return nil
	}

	r := o.r.Load()
	if r == nil {
		return nil
	}

	return r.ErrorsLast()
}

func (o *srv) ErrorsList() []error {
	if o == nil {
		return nil
	}

	r := o.r.Load()
	if r == nil {
		return nil
	}

	return r.ErrorsList()
}

func (o *srv) IsError() bool {
	return o.ErrorsLast() != nil
}

func (o *srv) GetError() error {
	return o.ErrorsLast()
}
