// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/parsec.go/internal/exc"
	"gopkg.microglot.org/parsec.go/internal/idl"
	"gopkg.microglot.org/parsec.go/internal/iter"
)

func newTestFS(t *testing.T) idl.FileSystem {
	t.Helper()
	mem := fstest.MapFS{
		"calc/one.calc":    {Data: []byte("1 + 2")},
		"calc/notes.txt":   {Data: []byte("ignored")},
		"data/doc.json":    {Data: []byte(`{"a": 1}`)},
		"empty/readme.txt": {Data: []byte("nothing to parse")},
	}
	f, err := NewFileSystemLocal("/", WithOptionFSFactory(func(string) fs.FS { return mem }))
	require.Nil(t, err)
	return f
}

func TestFileSystemLocal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newTestFS(t)

	files, err := f.Open(ctx, "/data/doc.json")
	require.Nil(t, err)
	require.Len(t, files, 1)
	require.Equal(t, idl.FileKindJSON, files[0].Kind(ctx))

	body, err := files[0].Body(ctx)
	require.Nil(t, err)
	runes, err := iter.ReadRunes(ctx, body)
	require.Nil(t, err)
	require.Equal(t, `{"a": 1}`, string(runes))

	files, err = f.Open(ctx, "calc")
	require.Nil(t, err)
	require.Len(t, files, 1)
	require.Equal(t, idl.FileKindArith, files[0].Kind(ctx))
	require.Equal(t, "/calc/one.calc", files[0].Path(ctx))

	_, err = f.Open(ctx, "empty")
	var e exc.Exception
	require.True(t, errors.As(err, &e))
	require.Equal(t, exc.CodeFileNotFound, e.Code())

	_, err = f.Open(ctx, "missing.json")
	require.True(t, errors.As(err, &e))
	require.Equal(t, exc.CodeFileNotFound, e.Code())
}

func TestFileSystemMulti(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	multi := FileSystemMulti{newTestFS(t)}
	files, err := multi.Open(ctx, "file:///data/doc.json")
	require.Nil(t, err)
	require.Len(t, files, 1)

	_, err = multi.Open(ctx, "/nope.toy")
	require.NotNil(t, err)
	require.NotNil(t, multi.Write(ctx, "/x.json", "{}"))
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, idl.FileKindToy, KindOf("/a/b/main.toy"))
	require.Equal(t, idl.FileKindProtobuf, KindOf("x.proto"))
	require.Equal(t, idl.FileKindTokens, KindOf("x.tok"))
	require.Equal(t, idl.FileKindBool, KindOf("x.bool"))
	require.Equal(t, idl.FileKindNone, KindOf("x.txt"))
}

func TestInlineFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := NewInlineFile("/inline.bool", idl.FileKindBool, "a and b")
	require.Equal(t, "/inline.bool", f.Path(ctx))
	require.Equal(t, idl.FileKindBool, f.Kind(ctx))

	for x := 0; x < 2; x = x + 1 {
		body, err := f.Body(ctx)
		require.Nil(t, err)
		runes, err := iter.ReadRunes(ctx, body)
		require.Nil(t, err)
		require.Equal(t, "a and b", string(runes))
	}
}

type closeCounter struct {
	io.Reader
	closed *int
}

func (c closeCounter) Close() error {
	*c.closed = *c.closed + 1
	return nil
}

func TestOpenerFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var opened, closed int
	f := NewOpenerFile("/x.calc", idl.FileKindArith, func() (io.ReadCloser, error) {
		opened = opened + 1
		return closeCounter{Reader: strings.NewReader("1+1"), closed: &closed}, nil
	})
	for x := 0; x < 2; x = x + 1 {
		body, err := f.Body(ctx)
		require.Nil(t, err)
		runes, err := iter.ReadRunes(ctx, body)
		require.Nil(t, err)
		require.Equal(t, "1+1", string(runes))
	}
	require.Equal(t, 2, opened)
	require.Equal(t, 2, closed)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err := f.Body(cancelled)
	require.ErrorIs(t, err, context.Canceled)

	missing := NewOpenerFile("/gone.calc", idl.FileKindArith, func() (io.ReadCloser, error) {
		return nil, &fs.PathError{Op: "open", Path: "gone.calc", Err: fs.ErrNotExist}
	})
	_, err = missing.Body(ctx)
	var e exc.Exception
	require.True(t, errors.As(err, &e))
	require.Equal(t, exc.CodeFileNotFound, e.Code())
}
