// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/structpb"

	"gopkg.microglot.org/parsec.go/internal/parsec"
)

func mustValue(t *testing.T, v any) *structpb.Value {
	t.Helper()
	out, err := structpb.NewValue(v)
	require.NoError(t, err)
	return out
}

func TestDecode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  any
	}{
		{name: "null", input: "null", want: nil},
		{name: "true", input: " true ", want: true},
		{name: "zero", input: "0", want: 0.0},
		{name: "negative exponent", input: "-1.25e-2", want: -0.0125},
		{name: "string escapes", input: `"a\"b\\c\/\n\t"`, want: "a\"b\\c/\n\t"},
		{name: "bmp escape", input: `"\u00e9t\u00C9"`, want: "\u00e9t\u00c9"},
		{name: "surrogate pair", input: `"\ud83d\ude00"`, want: "\U0001F600"},
		{name: "lone high surrogate", input: `"\ud83dx"`, want: "\ufffdx"},
		{name: "lone low surrogate", input: `"\ude00"`, want: "\ufffd"},
		{name: "high then non-low", input: `"\ud83d\u0041"`, want: "\ufffdA"},
		{name: "empty containers", input: `[{}, []]`, want: []any{map[string]any{}, []any{}}},
		{
			name:  "nested",
			input: "{\n  \"a\": [1, 2, {\"b\": null}],\n  \"c\": \"d\"\n}",
			want: map[string]any{
				"a": []any{1.0, 2.0, map[string]any{"b": nil}},
				"c": "d",
			},
		},
		{name: "duplicate keys", input: `{"k": 1, "k": 2}`, want: map[string]any{"k": 2.0}},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			got, err := Decode(testCase.input)
			require.NoError(t, err)
			want := mustValue(t, testCase.want)
			require.Empty(t, cmp.Diff(want, got, protocmp.Transform()))
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  string
		fatal bool
	}{
		{name: "empty", input: "", want: "at row 1, col 1: expected value"},
		{name: "missing colon", input: `{"a" 1}`, want: "at row 1, col 6: expected ':'", fatal: true},
		{name: "trailing comma", input: `[1, 2,]`, want: "at row 1, col 7: expected value", fatal: true},
		{name: "unterminated array", input: "[1\n, 2", want: "at row 2, col 4: expected ',' or ']'", fatal: true},
		{name: "object key", input: `{"a": 1, 2: 3}`, want: "at row 1, col 10: expected string", fatal: true},
		{name: "bad escape", input: `"\x"`, want: "at row 1, col 3: expected escape sequence", fatal: true},
		{name: "short unicode", input: `"\u12"`, want: "at row 1, col 6: expected four hex digits", fatal: true},
		{name: "unterminated string", input: `"abc`, want: "at row 1, col 5: expected closing quote", fatal: true},
		{name: "fraction digits", input: `1.`, want: "at row 1, col 3: expected digit", fatal: true},
		{name: "leading zero", input: `01`, want: `at row 1, col 2: unexpected trailing input "1"`},
		{name: "bare word", input: `nul`, want: "at row 1, col 1: expected value"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(testCase.input)
			require.Error(t, err)
			require.Equal(t, testCase.want, err.Error())
			var f *parsec.Failure
			require.True(t, errors.As(err, &f))
			require.Equal(t, testCase.fatal, f.Fatal())
		})
	}
}

func TestDecodeDeep(t *testing.T) {
	t.Parallel()

	deep := strings.Repeat("[", 200) + strings.Repeat("]", 200)
	_, err := Decode(deep)
	require.NoError(t, err)

	_, err = Decode(deep, parsec.OptionWithMaxDepth(100))
	require.ErrorIs(t, err, parsec.ErrMaxDepth)
}
