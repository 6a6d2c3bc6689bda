// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"errors"
	"io"
	"strings"

	"gopkg.microglot.org/parsec.go/internal/exc"
	"gopkg.microglot.org/parsec.go/internal/idl"
)

// NewInlineFile serves fixed source text under path.
func NewInlineFile(path string, kind idl.FileKind, text string) idl.File {
	return NewOpenerFile(path, kind, func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(text)), nil
	})
}

// NewOpenerFile serves the source returned by open. Every call to Body calls
// open again, so bodies of the same file never share a handle.
func NewOpenerFile(path string, kind idl.FileKind, open func() (io.ReadCloser, error)) idl.File {
	return &openerFile{path: path, kind: kind, open: open}
}

type openerFile struct {
	path string
	kind idl.FileKind
	open func() (io.ReadCloser, error)
}

func (f *openerFile) Path(context.Context) string {
	return f.path
}

func (f *openerFile) Kind(context.Context) idl.FileKind {
	return f.kind
}

func (f *openerFile) Body(ctx context.Context) (idl.FileBody, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := f.open()
	if err != nil {
		return nil, fsErr(f.path, err)
	}
	return &sourceBody{uri: f.path, rc: rc}, nil
}

// sourceBody reuses one buffer across reads. The returned slice is only
// valid until the next Read.
type sourceBody struct {
	uri string
	rc  io.ReadCloser
	buf []byte
}

func (b *sourceBody) Read(ctx context.Context, size int32) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cap(b.buf) < int(size) {
		b.buf = make([]byte, size)
	}
	n, err := b.rc.Read(b.buf[:size])
	switch {
	case errors.Is(err, io.EOF):
		return b.buf[:n], exc.Wrap(exc.Location{URI: b.uri}, exc.CodeEOF, err)
	case err != nil:
		return nil, exc.WrapUnknown(exc.Location{URI: b.uri}, err)
	}
	return b.buf[:n], nil
}

func (b *sourceBody) Close(context.Context) error {
	return b.rc.Close()
}
