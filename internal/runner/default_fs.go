// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"path/filepath"

	"gopkg.microglot.org/parsec.go/internal/fs"
	"gopkg.microglot.org/parsec.go/internal/idl"
)

// NewDefaultFS searches the shared data directories for parsec inputs.
// Roots that do not exist are kept; opening from them simply fails over to
// the next root.
func NewDefaultFS(lookup func(string) (string, bool)) (idl.FileSystem, error) {
	roots := getDefaultRoots(lookup)
	f := make(fs.FileSystemMulti, 0, len(roots))
	for _, root := range roots {
		absRoot, errAbs := filepath.Abs(root)
		if errAbs != nil {
			return nil, errAbs
		}
		rf, err := fs.NewFileSystemLocal(absRoot)
		if err != nil {
			return nil, err
		}
		f = append(f, rf)
	}
	return f, nil
}
