/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"

	libtls "github.com/nabbar/edge-httpcore/certificates"
	liberr "github.com/nabbar/edge-httpcore/errors"
	srvtps "github.com/nabbar/edge-httpcore/httpserver/types"
	liblog "github.com/nabbar/edge-httpcore/logger"
	montps "github.com/nabbar/edge-httpcore/monitor/types"
)

// Config describes a single HTTP server instance: its identity, listen/expose
// addresses, TLS material, HTTP(/2) tuning and monitoring parameters.
type Config struct {
	getTLSDefault    func() libtls.TLSConfig
	getParentContext func() context.Context
	getHandlerFunc   srvtps.FuncHandler

	// Disabled allows keeping a server configuration around without starting it.
	Disabled bool `mapstructure:"disabled" json:"disabled" yaml:"disabled" toml:"disabled"`

	/*** http options ***/

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	ReadTimeout time.Duration `mapstructure:"read_timeout" json:"read_timeout" yaml:"read_timeout" toml:"read_timeout"`

	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" json:"read_header_timeout" yaml:"read_header_timeout" toml:"read_header_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"write_timeout" yaml:"write_timeout" toml:"write_timeout"`

	// MaxHeaderBytes controls the maximum size of the request header.
	MaxHeaderBytes int `mapstructure:"max_header_bytes" json:"max_header_bytes" yaml:"max_header_bytes" toml:"max_header_bytes"`

	/*** http2 options ***/

	// MaxHandlers limits the number of http.Handler ServeHTTP goroutines which
	// may run at a time over all connections. Zero means no limit.
	MaxHandlers int `mapstructure:"max_handlers" json:"max_handlers" yaml:"max_handlers" toml:"max_handlers"`

	// MaxConcurrentStreams optionally specifies the number of concurrent streams
	// that each client may have open at a time.
	MaxConcurrentStreams uint32 `mapstructure:"max_concurrent_streams" json:"max_concurrent_streams" yaml:"max_concurrent_streams" toml:"max_concurrent_streams"`

	// MaxReadFrameSize optionally specifies the largest frame this server is
	// willing to read.
	MaxReadFrameSize uint32 `mapstructure:"max_read_frame_size" json:"max_read_frame_size" yaml:"max_read_frame_size" toml:"max_read_frame_size"`

	// PermitProhibitedCipherSuites, if true, permits the use of cipher suites
	// prohibited by the HTTP/2 spec.
	PermitProhibitedCipherSuites bool `mapstructure:"permit_prohibited_cipher_suites" json:"permit_prohibited_cipher_suites" yaml:"permit_prohibited_cipher_suites" toml:"permit_prohibited_cipher_suites"`

	// IdleTimeout specifies how long until idle clients should be closed with
	// a GOAWAY frame.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" json:"idle_timeout" yaml:"idle_timeout" toml:"idle_timeout"`

	// MaxUploadBufferPerConnection is the size of the initial flow control
	// window for each connection.
	MaxUploadBufferPerConnection int32 `mapstructure:"max_upload_buffer_per_connection" json:"max_upload_buffer_per_connection" yaml:"max_upload_buffer_per_connection" toml:"max_upload_buffer_per_connection"`

	// MaxUploadBufferPerStream is the size of the initial flow control window
	// for each stream.
	MaxUploadBufferPerStream int32 `mapstructure:"max_upload_buffer_per_stream" json:"max_upload_buffer_per_stream" yaml:"max_upload_buffer_per_stream" toml:"max_upload_buffer_per_stream"`

	// Name is the unique identifier of this server. If empty, the bind address is used.
	Name string `mapstructure:"name" json:"name" yaml:"name" toml:"name" validate:"required"`

	// Listen is the local address (host:port) the server binds to.
	Listen string `mapstructure:"listen" json:"listen" yaml:"listen" toml:"listen" validate:"required,hostname_port"`

	// Expose is the address used to reach this server from the outside.
	Expose string `mapstructure:"expose" json:"expose" yaml:"expose" toml:"expose" validate:"required,url"`

	// HandlerKey selects which entry of the registered handler map this
	// server serves.
	HandlerKey string `mapstructure:"handler_key" json:"handler_key" yaml:"handler_key" toml:"handler_key"`

	// TLSMandatory requires a usable TLS certificate pair to be present;
	// otherwise server construction fails.
	TLSMandatory bool `mapstructure:"tls_mandatory" json:"tls_mandatory" yaml:"tls_mandatory" toml:"tls_mandatory"`

	// TLS is the TLS configuration for this server.
	TLS libtls.Config `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`

	// Monitor is the health-check monitoring configuration for this server.
	Monitor montps.Config `mapstructure:"monitor" json:"monitor" yaml:"monitor" toml:"monitor"`
}

// Clone returns an independent copy of the current config.
func (c Config) Clone() Config {
	return c
}

// RegisterHandlerFunc registers the function providing the map of handlers
// this server may serve from, keyed by HandlerKey.
func (c *Config) RegisterHandlerFunc(f srvtps.FuncHandler) {
	c.getHandlerFunc = f
}

// SetContext registers the parent context this server's background
// goroutines are derived from. A nil context resets it to context.Background.
func (c *Config) SetContext(ctx context.Context) {
	if ctx == nil {
		c.getParentContext = nil
		return
	}

	c.getParentContext = func() context.Context {
		return ctx
	}
}

// SetDefaultTLS registers a fallback TLS configuration merged under any
// explicit TLS settings of this config.
func (c *Config) SetDefaultTLS(f func() libtls.TLSConfig) {
	c.getTLSDefault = f
}

func (c Config) getContext() context.Context {
	if c.getParentContext != nil {
		if ctx := c.getParentContext(); ctx != nil {
			return ctx
		}
	}

	return context.Background()
}

// GetTLS resolves the effective TLS configuration, merging it with the
// registered default, if any.
func (c Config) GetTLS() libtls.TLSConfig {
	var def libtls.TLSConfig

	if c.getTLSDefault != nil {
		def = c.getTLSDefault()
	}

	return c.TLS.NewFrom(def)
}

// IsTLS reports whether this config carries a usable certificate pair.
func (c Config) IsTLS() bool {
	if ssl := c.GetTLS(); ssl != nil && ssl.LenCertificatePair() > 0 {
		return true
	}

	return false
}

// GetListen resolves the Listen field into a *url.URL carrying the bind
// host:port as its Host component.
func (c Config) GetListen() *url.URL {
	if c.Listen == "" {
		return nil
	}

	if u, err := url.Parse("//" + c.Listen); err == nil && u.Host != "" {
		return &url.URL{Host: u.Host}
	}

	return nil
}

// GetExpose resolves the Expose field into a *url.URL. When Expose is empty
// or invalid, it falls back to the listen address with a scheme derived from
// IsTLS.
func (c Config) GetExpose() *url.URL {
	if c.Expose != "" {
		if u, err := url.Parse(c.Expose); err == nil && u.Host != "" {
			return u
		}
	}

	if add := c.GetListen(); add != nil {
		if c.IsTLS() {
			add.Scheme = "https"
		} else {
			add.Scheme = "http"
		}

		return add
	}

	return nil
}

// GetHandlerKey returns the handler map key configured for this server.
func (c Config) GetHandlerKey() string {
	return c.HandlerKey
}

// Validate checks the configuration against its struct tags.
func (c Config) Validate() liberr.Error {
	val := validator.New()
	err := val.Struct(c)

	if err == nil {
		return nil
	}

	if e, ok := err.(*validator.InvalidValidationError); ok {
		return ErrorServerValidate.Error(e)
	}

	out := ErrorServerValidate.Error(nil)

	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range verrs {
			//nolint goerr113
			out.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", e.Field(), e.ActualTag()))
		}
	}

	if out.HasParent() {
		return out
	}

	return nil
}

// Server builds a new Server instance from this configuration.
func (c Config) Server(defLog liblog.FuncLog) (Server, error) {
	return New(c, defLog)
}

// CheckTLS resolves the effective TLS configuration and reports an error if
// it carries no usable certificate pair.
func (c Config) CheckTLS() (libtls.TLSConfig, error) {
	ssl := c.GetTLS()

	if ssl == nil || ssl.LenCertificatePair() < 1 {
		return ssl, ErrorServerValidate.Error(nil)
	}

	return ssl, nil
}
