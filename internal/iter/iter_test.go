// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/parsec.go/internal/idl"
)

type elem struct {
	value int
}

func TestIteratorFilter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	numValues := 10
	filter := idl.Filter[*elem](FilterFunc[*elem](func(ctx context.Context, val *elem) bool {
		return val.value%2 == 0
	}))
	for x := 1; x <= numValues; x = x + 1 {
		t.Run(fmt.Sprintf("len(%d)", x), func(t *testing.T) {
			elems := make([]*elem, 0, x)
			for y := 0; y < x; y = y + 1 {
				elems = append(elems, &elem{value: y})
			}
			it := NewIteratorFilter(NewSlice(elems), filter)
			for y := 0; y < x; y = y + 2 {
				val := it.Next(ctx)
				require.True(t, val.IsPresent())
				require.Equal(t, y, val.Value().value)
			}
			require.False(t, it.Next(ctx).IsPresent())
			require.Nil(t, it.Close(ctx))
		})
	}
}

func TestCollect(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	out, err := Collect(ctx, NewSlice([]int{1, 2, 3}))
	require.Nil(t, err)
	require.Equal(t, []int{1, 2, 3}, out)

	out, err = Collect(ctx, NewSlice([]int{}))
	require.Nil(t, err)
	require.Empty(t, out)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Collect(cancelled, NewSlice([]int{1}))
	require.ErrorIs(t, err, context.Canceled)
}

// chunkBody hands out at most chunk bytes per read so multi-byte code
// points straddle reads.
type chunkBody struct {
	r      io.Reader
	chunk  int32
	err    error
	closed bool
}

func (b *chunkBody) Read(ctx context.Context, size int32) ([]byte, error) {
	if b.chunk > 0 && size > b.chunk {
		size = b.chunk
	}
	p := make([]byte, size)
	n, err := b.r.Read(p)
	if errors.Is(err, io.EOF) && b.err != nil {
		return p[:n], b.err
	}
	return p[:n], err
}

func (b *chunkBody) Close(ctx context.Context) error {
	b.closed = true
	return nil
}

func TestReadRunes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		chunk int32
		want  []rune
	}{
		{name: "ascii", input: "1 + 2", want: []rune("1 + 2")},
		{name: "multibyte", input: "héllo, 世界\n", want: []rune("héllo, 世界\n")},
		{name: "split", input: "世界", chunk: 1, want: []rune("世界")},
		{name: "malformed", input: "a\xffb", want: []rune{'a', utf8.RuneError, 'b'}},
		{name: "empty", input: "", want: []rune{}},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			body := &chunkBody{r: strings.NewReader(testCase.input), chunk: testCase.chunk}
			runes, err := ReadRunes(context.Background(), body)
			require.Nil(t, err)
			require.Equal(t, testCase.want, append([]rune{}, runes...))
			require.True(t, body.closed)
		})
	}
}

func TestReadRunesErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	broken := errors.New("disk on fire")
	body := &chunkBody{r: strings.NewReader("ab"), err: broken}
	_, err := ReadRunes(ctx, body)
	require.ErrorIs(t, err, broken)
	require.True(t, body.closed)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	body = &chunkBody{r: strings.NewReader("ab")}
	_, err = ReadRunes(cancelled, body)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, body.closed)
}

var benchEscapeValue []int

func BenchmarkCollect(b *testing.B) {
	ctx := context.Background()
	sliceSize := 1000
	slice := make([]int, sliceSize)
	for x := 0; x < sliceSize; x = x + 1 {
		slice[x] = x
	}
	var loopEscapeValue []int
	b.ResetTimer()
	for n := 0; n < b.N; n = n + 1 {
		loopEscapeValue, _ = Collect(ctx, NewSlice(slice))
	}
	benchEscapeValue = loopEscapeValue
}
