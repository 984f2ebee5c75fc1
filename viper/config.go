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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	loglvl "github.com/nabbar/edge-httpcore/logger/level"
)

func (o *vpr) SetHomeBaseName(baseName string) {
	o.m.Lock()
	defer o.m.Unlock()

	o.homeBase = baseName
}

func (o *vpr) SetEnvVarsPrefix(prefix string) {
	o.m.Lock()
	defer o.m.Unlock()

	o.envPfx = prefix

	if prefix != "" {
		o.vpr.SetEnvPrefix(prefix)
	}
}

func (o *vpr) SetDefaultConfig(fct func() io.Reader) {
	o.m.Lock()
	defer o.m.Unlock()

	o.cfgDef = fct
}

func (o *vpr) SetRemoteProvider(provider string) {
	o.m.Lock()
	defer o.m.Unlock()

	o.remProvider = provider
}

func (o *vpr) SetRemoteEndpoint(endpoint string) {
	o.m.Lock()
	defer o.m.Unlock()

	o.remEndpoint = endpoint
}

func (o *vpr) SetRemotePath(path string) {
	o.m.Lock()
	defer o.m.Unlock()

	o.remPath = path
}

func (o *vpr) SetRemoteSecureKey(key string) {
	o.m.Lock()
	defer o.m.Unlock()

	o.remSecure = key
}

func (o *vpr) SetRemoteModel(model interface{}) {
	o.m.Lock()
	defer o.m.Unlock()

	o.remModel = model
}

func (o *vpr) SetRemoteReloadFunc(fct func()) {
	o.m.Lock()
	defer o.m.Unlock()

	o.remReload = fct
}

// homePath returns the current user's home directory joined with a dot-prefixed
// directory named after the registered base name.
func (o *vpr) homePath() (string, error) {
	if o.homeBase == "" {
		return "", ErrorHomePathNotFound.Error(nil)
	}

	h, e := os.UserHomeDir()
	if e != nil {
		return "", ErrorHomePathNotFound.Error(e)
	}

	return filepath.Join(h, "."+strings.ToLower(o.homeBase)), nil
}

// SetConfigFile registers the config file to read. An empty path falls back
// to a config file named after the registered base name, looked up in the
// home directory built from SetHomeBaseName.
func (o *vpr) SetConfigFile(path string) error {
	o.m.Lock()
	defer o.m.Unlock()

	if path != "" {
		o.cfgFile = path
		o.vpr.SetConfigFile(path)
		return nil
	}

	dir, err := o.homePath()
	if err != nil {
		return ErrorBasePathNotFound.Error(err)
	}

	o.cfgFile = filepath.Join(dir, strings.ToLower(o.homeBase)+".yaml")
	o.vpr.AddConfigPath(dir)
	o.vpr.SetConfigName(strings.ToLower(o.homeBase))

	return nil
}

func (o *vpr) configureRemote() error {
	if o.remProvider == "" {
		return nil
	}

	var err error

	if o.remSecure != "" {
		err = o.vpr.AddSecureRemoteProvider(o.remProvider, o.remEndpoint, o.remPath, o.remSecure)
	} else {
		err = o.vpr.AddRemoteProvider(o.remProvider, o.remEndpoint, o.remPath)
	}

	if err != nil {
		if o.remSecure != "" {
			return ErrorRemoteProviderSecure.Error(err)
		}
		return ErrorRemoteProvider.Error(err)
	}

	return nil
}

// Config loads the registered config file, falling back to the default
// config content if the file cannot be read, then binds environment
// variables using the registered prefix.
func (o *vpr) Config(lvl ...loglvl.Level) error {
	o.m.Lock()
	defer o.m.Unlock()

	if o.envPfx != "" {
		o.vpr.SetEnvPrefix(o.envPfx)
	}

	o.vpr.AutomaticEnv()

	if err := o.configureRemote(); err != nil {
		return err
	} else if o.remProvider != "" {
		if o.remModel != nil {
			if err = o.vpr.ReadRemoteConfig(); err != nil {
				return ErrorRemoteProviderRead.Error(err)
			} else if err = o.vpr.Unmarshal(o.remModel); err != nil {
				return ErrorRemoteProviderMarshall.Error(err)
			}
		} else if err = o.vpr.ReadRemoteConfig(); err != nil {
			return ErrorRemoteProviderRead.Error(err)
		}
	}

	if err := o.vpr.ReadInConfig(); err != nil {
		if o.cfgDef == nil {
			return ErrorConfigRead.Error(err)
		}

		if e := o.vpr.ReadConfig(o.cfgDef()); e != nil {
			return ErrorConfigReadDefault.Error(fmt.Errorf("reading config %w: default config error: %v", err, e))
		}

		return ErrorConfigIsDefault.Error(err)
	}

	return nil
}
