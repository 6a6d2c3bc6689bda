// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/parsec.go/internal/idl"
)

func TestWrap(t *testing.T) {
	t.Parallel()

	loc := Location{URI: "/a.json", Location: idl.Location{Line: 2, Column: 5, Offset: 9}}

	require.Nil(t, Wrap(loc, CodeUnknownFatal, nil))

	e := Wrap(loc, CodeEOF, io.EOF)
	require.True(t, errors.Is(e, io.EOF))
	require.Equal(t, CodeEOF, e.Code())
	require.Equal(t, "/a.json:2:5 -- _EOF_: EOF", e.Error())

	inner := New(Location{Location: idl.Location{Line: 7, Column: 3}}, CodeMismatch, "unexpected 'x'")
	outer := Wrap(Location{URI: "/b.toy"}, CodeMismatch, inner)
	require.Equal(t, "/b.toy:7:3 -- P0001: unexpected 'x'", outer.Error())
	require.True(t, errors.Is(outer, inner))
}

func TestReporter(t *testing.T) {
	t.Parallel()

	rep := NewReporter([]string{CodeMismatch})
	var wg sync.WaitGroup
	for x := 0; x < 16; x = x + 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.Nil(t, rep.Report(New(Location{}, CodeMismatch, "soft")))
		}()
	}
	wg.Wait()
	require.Len(t, rep.Reported(), 16)

	hard := New(Location{}, CodeFatal, "hard")
	require.Equal(t, hard, rep.Report(hard))
	require.Len(t, rep.Reported(), 17)
}

func TestMultiException(t *testing.T) {
	t.Parallel()

	first := New(Location{URI: "/a.toy", Location: idl.Location{Line: 1, Column: 2}}, CodeEvaluation, "boom")
	second := Wrap(Location{URI: "/b.json"}, CodeUnknownFatal, io.ErrUnexpectedEOF)
	me := MultiException{first, second}
	require.Equal(t, "/a.toy:1:2 -- M0008: boom; /b.json:0:0 -- M0000: unexpected EOF", me.Error())
	require.True(t, errors.Is(me, io.ErrUnexpectedEOF))

	var ex Exception
	require.True(t, errors.As(error(me), &ex))
	require.Equal(t, first, ex)
	require.Equal(t, "no exceptions", MultiException{}.Error())
}
