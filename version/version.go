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

// Package version exposes build/release metadata (package name, release tag,
// build hash, build date, license) for embedding into banners and monitors.
package version

import "fmt"

// License identifies the software license under which a package is distributed.
type License uint8

const (
	License_MIT License = iota
	License_Apache_v2
	License_GNU_GPL_v3
	License_GNU_Affero_GPL_v3
	License_GNU_Lesser_GPL_v3
	License_Mozilla_PL_v2
	License_Unlicense
	License_Creative_Common_Zero_v1
	License_Creative_Common_Attribution_v4_int
	License_Creative_Common_Attribution_Share_Alike_v4_int
	License_SIL_Open_Font_1_1
)

func (l License) String() string {
	switch l {
	case License_MIT:
		return "MIT"
	case License_Apache_v2:
		return "Apache License 2.0"
	case License_GNU_GPL_v3:
		return "GNU GPL v3"
	case License_GNU_Affero_GPL_v3:
		return "GNU AGPL v3"
	case License_GNU_Lesser_GPL_v3:
		return "GNU LGPL v3"
	case License_Mozilla_PL_v2:
		return "Mozilla Public License 2.0"
	case License_Unlicense:
		return "Unlicense"
	case License_Creative_Common_Zero_v1:
		return "CC0 1.0"
	case License_Creative_Common_Attribution_v4_int:
		return "CC BY 4.0"
	case License_Creative_Common_Attribution_Share_Alike_v4_int:
		return "CC BY-SA 4.0"
	case License_SIL_Open_Font_1_1:
		return "SIL Open Font License 1.1"
	default:
		return "unknown license"
	}
}

// Version exposes the build/release metadata of a package.
type Version interface {
	GetPackage() string
	GetDescription() string
	GetDate() string
	GetBuild() string
	GetRelease() string
	GetAuthor() string
	GetPrefix() string
	GetLicense() License

	GetHeader() string
	GetInfo() map[string]interface{}
}

type vrs struct {
	lic    License
	pkg    string
	desc   string
	date   string
	build  string
	rel    string
	author string
	prefix string
	custom interface{}
	extra  int
}

// NewVersion builds a Version descriptor from the given package metadata. The
// custom parameter is reserved for an application-specific payload surfaced by
// GetInfo; extra is reserved for an application-specific numeric tag.
func NewVersion(lic License, pkg, desc, date, build, release, author, prefix string, custom interface{}, extra int) Version {
	return &vrs{
		lic:    lic,
		pkg:    pkg,
		desc:   desc,
		date:   date,
		build:  build,
		rel:    release,
		author: author,
		prefix: prefix,
		custom: custom,
		extra:  extra,
	}
}

func (v *vrs) GetPackage() string     { return v.pkg }
func (v *vrs) GetDescription() string { return v.desc }
func (v *vrs) GetDate() string        { return v.date }
func (v *vrs) GetBuild() string       { return v.build }
func (v *vrs) GetRelease() string     { return v.rel }
func (v *vrs) GetAuthor() string      { return v.author }
func (v *vrs) GetPrefix() string      { return v.prefix }
func (v *vrs) GetLicense() License    { return v.lic }

func (v *vrs) GetHeader() string {
	return fmt.Sprintf("%s %s (build %s, %s) - %s - licensed under %s", v.pkg, v.rel, v.build, v.date, v.author, v.lic.String())
}

func (v *vrs) GetInfo() map[string]interface{} {
	return map[string]interface{}{
		"package":     v.pkg,
		"description": v.desc,
		"release":     v.rel,
		"build":       v.build,
		"date":        v.date,
		"author":      v.author,
		"prefix":      v.prefix,
		"license":     v.lic.String(),
		"custom":      v.custom,
	}
}
