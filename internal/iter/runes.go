// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"bufio"
	"context"
	"errors"
	"io"

	"gopkg.microglot.org/parsec.go/internal/idl"
	"gopkg.microglot.org/parsec.go/internal/optional"
)

// Runes decodes body as UTF-8 code points. Malformed bytes decode to
// utf8.RuneError one byte at a time, matching how parsec treats strings.
//
// Every read made on behalf of Next uses the context given to that Next call.
// A read failure ends the iteration and is reported by Close, which also
// closes body.
func Runes(body idl.FileBody) idl.Iterator[idl.CodePoint] {
	src := &bodyReader{ctx: context.Background(), body: body}
	return &runeIterator{src: src, decoder: bufio.NewReader(src)}
}

// ReadRunes drains body into a rune slice and closes it.
func ReadRunes(ctx context.Context, body idl.FileBody) ([]rune, error) {
	return CollectRunes(ctx, Runes(body))
}

type runeIterator struct {
	src     *bodyReader
	decoder *bufio.Reader
	done    bool
	err     error
}

func (it *runeIterator) Next(ctx context.Context) optional.Optional[idl.CodePoint] {
	if it.done {
		return optional.None[idl.CodePoint]()
	}
	it.src.ctx = ctx
	r, _, err := it.decoder.ReadRune()
	if err != nil {
		it.done = true
		if !errors.Is(err, io.EOF) {
			it.err = err
		}
		return optional.None[idl.CodePoint]()
	}
	return optional.Some(idl.CodePoint(r))
}

func (it *runeIterator) Close(ctx context.Context) error {
	closeErr := it.src.body.Close(ctx)
	if it.err != nil {
		return it.err
	}
	return closeErr
}

// bodyReader exposes an idl.FileBody as an io.Reader for the decoder.
type bodyReader struct {
	ctx  context.Context
	body idl.FileBody
}

func (r *bodyReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	b, err := r.body.Read(r.ctx, int32(len(p)))
	n := copy(p, b)
	if errors.Is(err, io.EOF) {
		return n, io.EOF
	}
	return n, err
}
