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

// Package config binds spec.md §7's configuration surface to spf13/viper
// (unmarshalling, the teacher's convention throughout config/components/*)
// and spf13/cobra (flag registration, per config/types.ComponentViper's
// RegisterFlag contract). It is consumed by a config.Component wrapper the
// way the teacher's log/http/tls components are, but is kept standalone
// here so it can be unmarshalled and flag-bound without depending on the
// full component lifecycle machinery.
package config

import (
	"encoding/json"
	"time"

	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"

	"github.com/nabbar/edge-httpcore/reqengine/buffer"
	"github.com/nabbar/edge-httpcore/reqengine/keepalive"
)

// Config is spec.md §7's "Configuration surface consumed by the core",
// grouped by the module that owns each knob.
type Config struct {
	Buffer buffer.Config `mapstructure:"buffer" json:"buffer"`

	ClientHeaderTimeout time.Duration `mapstructure:"clientHeaderTimeout" json:"clientHeaderTimeout"`
	SendTimeout         time.Duration `mapstructure:"sendTimeout" json:"sendTimeout"`
	SendLowAt           int           `mapstructure:"sendLowat" json:"sendLowat"`

	KeepAliveTimeout  time.Duration        `mapstructure:"keepaliveTimeout" json:"keepaliveTimeout"`
	KeepAliveRequests int                  `mapstructure:"keepaliveRequests" json:"keepaliveRequests"`
	Lingering         keepalive.LingeringMode `mapstructure:"lingeringClose" json:"lingeringClose"`
	LingeringTime     time.Duration        `mapstructure:"lingeringTime" json:"lingeringTime"`
	LingeringTimeout  time.Duration        `mapstructure:"lingeringTimeout" json:"lingeringTimeout"`

	TCPNoDelay             bool `mapstructure:"tcpNodelay" json:"tcpNodelay"`
	TCPNoPush              bool `mapstructure:"tcpNopush" json:"tcpNopush"`
	ResetTimedOutConn      bool `mapstructure:"resetTimedoutConnection" json:"resetTimedoutConnection"`
	MergeSlashes           bool `mapstructure:"mergeSlashes" json:"mergeSlashes"`
	UnderscoresInHeaders   bool `mapstructure:"underscoresInHeaders" json:"underscoresInHeaders"`
	IgnoreInvalidHeaders   bool `mapstructure:"ignoreInvalidHeaders" json:"ignoreInvalidHeaders"`
	LogSubrequest          bool `mapstructure:"logSubrequest" json:"logSubrequest"`

	MaxSubrequests int `mapstructure:"maxSubrequests" json:"maxSubrequests"`
	LimitRate      int `mapstructure:"limitRate" json:"limitRate"`
}

// Default mirrors nginx's own defaults for the directives spec.md §7 lists,
// scaled to this package's units.
func Default() Config {
	return Config{
		Buffer: buffer.Config{
			PrimarySize: 1024,
			LargeSize:   8 * 1024,
			LargeCount:  4,
		},
		ClientHeaderTimeout:  60 * time.Second,
		SendTimeout:          60 * time.Second,
		KeepAliveTimeout:     75 * time.Second,
		KeepAliveRequests:    1000,
		Lingering:            keepalive.LingeringOn,
		LingeringTime:        30 * time.Second,
		LingeringTimeout:     5 * time.Second,
		TCPNoDelay:           true,
		MaxSubrequests:       50,
	}
}

// DefaultConfig renders Default() as indented JSON, matching the
// cfgtps.Component.DefaultConfig(indent string) []byte contract the
// teacher's config components implement.
func DefaultConfig(indent string) []byte {
	b, err := json.MarshalIndent(Default(), "", indent)
	if err != nil {
		return nil
	}
	return b
}

// KeepAlive projects the subset of Config the keepalive package consumes.
func (c Config) KeepAlive() keepalive.Config {
	return keepalive.Config{
		KeepAliveTimeout:  c.KeepAliveTimeout,
		KeepAliveRequests: c.KeepAliveRequests,
		Lingering:         c.Lingering,
		LingeringTime:     c.LingeringTime,
		LingeringTimeout:  c.LingeringTimeout,
		TCPNoDelay:        c.TCPNoDelay,
	}
}

// Load unmarshals v into a Config seeded with Default(), so unset keys keep
// their nginx-equivalent defaults (the teacher's viper components follow
// the same seed-then-unmarshal pattern, e.g. config/components/log).
func Load(v *spfvpr.Viper) (Config, error) {
	cfg := Default()
	if v == nil {
		return cfg, nil
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RegisterFlag binds the most operationally relevant knobs to command-line
// flags, following config/types.ComponentViper.RegisterFlag's contract
// ("Flags are typically bound to Viper keys for configuration loading").
// Callers wire the returned flags to viper.BindPFlag under the same keys
// Load expects.
func RegisterFlag(cmd *spfcbr.Command) error {
	d := Default()
	fs := cmd.Flags()
	fs.Duration("reqengine.clientHeaderTimeout", d.ClientHeaderTimeout, "time allowed to read the request line and headers")
	fs.Duration("reqengine.sendTimeout", d.SendTimeout, "time allowed between successive writes to the client")
	fs.Duration("reqengine.keepaliveTimeout", d.KeepAliveTimeout, "idle time between keep-alive requests before silent close")
	fs.Int("reqengine.keepaliveRequests", d.KeepAliveRequests, "max requests served on one keep-alive connection")
	fs.Duration("reqengine.lingeringTime", d.LingeringTime, "upper bound on total lingering-close drain time")
	fs.Duration("reqengine.lingeringTimeout", d.LingeringTimeout, "upper bound on one lingering-close read")
	fs.Int("reqengine.buffer.primarySize", d.Buffer.PrimarySize, "client header buffer size")
	fs.Int("reqengine.buffer.largeSize", d.Buffer.LargeSize, "large client header buffer size")
	fs.Int("reqengine.buffer.largeCount", d.Buffer.LargeCount, "max number of large client header buffers per connection")
	fs.Bool("reqengine.tcpNodelay", d.TCPNoDelay, "set TCP_NODELAY on keep-alive connections")
	fs.Int("reqengine.maxSubrequests", d.MaxSubrequests, "max subrequests per main request")
	return nil
}
