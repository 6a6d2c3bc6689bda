// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"gopkg.microglot.org/parsec.go/internal/idl"
	"gopkg.microglot.org/parsec.go/internal/runner"
)

func testResults(t *testing.T) []runner.Result {
	t.Helper()
	doc, err := structpb.NewValue(map[string]any{"a": []any{1.0, "x"}})
	require.NoError(t, err)
	return []runner.Result{
		{URI: "/a.calc", Kind: idl.FileKindArith, Value: runner.Evaluation{Tree: "(1 + 2)", Value: 3.0}},
		{URI: "/b.json", Kind: idl.FileKindJSON, Value: doc},
		{URI: "/c.tok", Kind: idl.FileKindTokens, Value: []string{`1:1 identifier "x"`}},
		{URI: "/d.toy", Kind: idl.FileKindToy, Value: "hi"},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		want  Format
		err   bool
	}{
		{input: "", want: FormatText},
		{input: "text", want: FormatText},
		{input: "JSON", want: FormatJSON},
		{input: "yaml", want: FormatYAML},
		{input: "xml", err: true},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(testCase.input)
			if testCase.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, testCase.want, got)
		})
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	var b bytes.Buffer
	require.NoError(t, Write(&b, FormatText, testResults(t)))
	out := b.String()
	require.Contains(t, out, "/a.calc: (1 + 2) = 3\n")
	require.Contains(t, out, "/c.tok:\n  1:1 identifier \"x\"\n")
	require.Contains(t, out, "/d.toy:\nhi\n")
	require.Contains(t, out, `"a"`)
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var b bytes.Buffer
	require.NoError(t, Write(&b, FormatJSON, testResults(t)))
	var got []map[string]any
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))
	require.Len(t, got, 4)
	require.Equal(t, "arith", got[0]["grammar"])
	require.Equal(t, map[string]any{"tree": "(1 + 2)", "value": 3.0}, got[0]["value"])
	require.Equal(t, map[string]any{"a": []any{1.0, "x"}}, got[1]["value"])
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()

	var b bytes.Buffer
	require.NoError(t, Write(&b, FormatYAML, testResults(t)))
	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(b.Bytes(), &got))
	require.Len(t, got, 4)
	require.Equal(t, "/b.json", got[1]["uri"])
	require.Equal(t, "json", got[1]["grammar"])
	require.Equal(t, "hi", got[3]["value"])
}
