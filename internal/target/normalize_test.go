// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package target

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		want  string
	}{
		{input: "a.json", want: "/a.json"},
		{input: "dir/../b.calc", want: "/b.calc"},
		{input: "/abs//c.toy", want: "/abs/c.toy"},
		{input: "file:///x/y.proto", want: "/x/y.proto"},
		{input: "https://example.com/g.json", want: "https://example.com/g.json"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.want, Normalize(testCase.input))
		})
	}
}
