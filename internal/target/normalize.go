// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package target

import (
	"net/url"
	"path/filepath"
)

// Normalize converts an input target into the form the file systems expect.
//
// Targets may be any valid URI or file path. File paths and file URIs become
// absolute, rooted at "/". Any other scheme is returned unchanged for some
// other FileSystem implementation to handle.
func Normalize(target string) string {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "" && u.Scheme != "file") {
		return target
	}
	if u.Scheme == "file" {
		target = u.Path
	}
	if !filepath.IsAbs(target) {
		return filepath.Join("/", target)
	}
	return filepath.Clean(target)
}
