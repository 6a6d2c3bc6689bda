// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"errors"
	iofs "io/fs"
	"testing"
	"testing/fstest"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"

	"gopkg.microglot.org/parsec.go/internal/exc"
	"gopkg.microglot.org/parsec.go/internal/fs"
	"gopkg.microglot.org/parsec.go/internal/idl"
	"gopkg.microglot.org/parsec.go/internal/parsec"
)

func newTestRunner(t *testing.T, files fstest.MapFS, opts ...Option) *Runner {
	t.Helper()
	local, err := fs.NewFileSystemLocal("/", fs.WithOptionFSFactory(func(string) iofs.FS { return files }))
	require.Nil(t, err)
	r, err := New(append([]Option{OptionWithFS(local)}, opts...)...)
	require.Nil(t, err)
	return r
}

func TestRunByExtension(t *testing.T) {
	t.Parallel()

	r := newTestRunner(t, fstest.MapFS{
		"in/sum.calc":    {Data: []byte("1 + 2 * 3")},
		"in/gate.bool":   {Data: []byte("true and not false")},
		"in/doc.json":    {Data: []byte(`{"ok": [true, null]}`)},
		"in/words.tok":   {Data: []byte("let x = 1; // one")},
		"in/hello.toy":   {Data: []byte(`print("hello", 1 + 1);`)},
		"in/a.proto":     {Data: []byte(`syntax = "proto3"; message A { string s = 1; }`)},
		"in/readme.txt":  {Data: []byte("not parsed")},
		"other/one.calc": {Data: []byte("2 ^ 10")},
	})
	resp, err := r.Run(context.Background(), &Request{Files: []string{"in", "file:///other/one.calc", "in/sum.calc"}})
	require.Nil(t, err)
	require.Len(t, resp.Results, 7)

	byURI := make(map[string]Result)
	for _, res := range resp.Results {
		byURI[res.URI] = res
	}
	require.Equal(t, Evaluation{Tree: "(1 + (2 * 3))", Value: 7.0}, byURI["/in/sum.calc"].Value)
	require.Equal(t, idl.FileKindArith, byURI["/in/sum.calc"].Kind)
	require.Equal(t, Evaluation{Tree: "(true and (not false))", Value: true}, byURI["/in/gate.bool"].Value)
	require.Equal(t, Evaluation{Tree: "(2 ^ 10)", Value: 1024.0}, byURI["/other/one.calc"].Value)

	doc, ok := byURI["/in/doc.json"].Value.(*structpb.Value)
	require.True(t, ok)
	require.Len(t, doc.GetStructValue().GetFields()["ok"].GetListValue().GetValues(), 2)

	require.Equal(t, []string{`1:1 keyword "let"`, `1:5 identifier "x"`, `1:7 operator "="`, `1:9 number "1"`, `1:10 punctuation ";"`}, byURI["/in/words.tok"].Value)
	require.Equal(t, "hello 2\n", byURI["/in/hello.toy"].Value)

	fd, ok := byURI["/in/a.proto"].Value.(*descriptorpb.FileDescriptorProto)
	require.True(t, ok)
	require.Equal(t, "A", fd.GetMessageType()[0].GetName())
}

func TestRunForcedKind(t *testing.T) {
	t.Parallel()

	r := newTestRunner(t, fstest.MapFS{
		"expr.txt": {Data: []byte("(1 + 1) * 4")},
	})
	resp, err := r.Run(context.Background(), &Request{Files: []string{"expr.txt"}, Kind: idl.FileKindArith})
	require.Nil(t, err)
	require.Len(t, resp.Results, 1)
	require.Equal(t, 8.0, resp.Results[0].Value.(Evaluation).Value)

	_, err = r.Run(context.Background(), &Request{Files: []string{"expr.txt"}})
	var multi exc.MultiException
	require.True(t, errors.As(err, &multi))
	require.Equal(t, exc.CodeUnsupportedFileFormat, multi[0].Code())
}

func TestRunReportsEveryFailure(t *testing.T) {
	t.Parallel()

	r := newTestRunner(t, fstest.MapFS{
		"good.calc":    {Data: []byte("6 / 3")},
		"bad.calc":     {Data: []byte("1 +")},
		"zero.calc":    {Data: []byte("1 / 0")},
		"bad.json":     {Data: []byte(`{"a" 1}`)},
		"bad.proto":    {Data: []byte(`syntax = "proto3"; message A { string a = 0; string b = 0; }`)},
		"undef.bool":   {Data: []byte("a or b")},
		"runtime.toy":  {Data: []byte("let x = 1;\nprint(y);")},
	})
	resp, err := r.Run(context.Background(), &Request{
		Files: []string{
			"good.calc", "bad.calc", "zero.calc", "bad.json", "bad.proto",
			"undef.bool", "runtime.toy", "missing.calc",
		},
	})
	require.NotNil(t, resp)
	require.Len(t, resp.Results, 1)
	require.Equal(t, 2.0, resp.Results[0].Value.(Evaluation).Value)

	var multi exc.MultiException
	require.True(t, errors.As(err, &multi))
	codes := make(map[string]string)
	for _, e := range multi {
		codes[e.Location().URI] = e.Code()
	}
	require.Equal(t, exc.CodeFatal, codes["/bad.calc"])
	require.Equal(t, exc.CodeEvaluation, codes["/zero.calc"])
	require.Equal(t, exc.CodeFatal, codes["/bad.json"])
	require.Equal(t, exc.CodeInvalidNumber, codes["/bad.proto"])
	require.Equal(t, exc.CodeEvaluation, codes["/undef.bool"])
	require.Equal(t, exc.CodeEvaluation, codes["/runtime.toy"])
	require.Equal(t, exc.CodeFileNotFound, codes["missing.calc"])

	var f *parsec.Failure
	require.True(t, errors.As(err, &f))
}

func TestRunParseOptions(t *testing.T) {
	t.Parallel()

	r := newTestRunner(t, fstest.MapFS{
		"deep.calc": {Data: []byte("((((((((1))))))))")},
	})
	_, err := r.Run(context.Background(), &Request{
		Files:   []string{"deep.calc"},
		Options: []parsec.Option{parsec.OptionWithMaxDepth(4)},
	})
	require.True(t, errors.Is(err, parsec.ErrMaxDepth))
}

func TestRunGrammarOverride(t *testing.T) {
	t.Parallel()

	r := newTestRunner(t, fstest.MapFS{
		"gate.bool": {Data: []byte("a xor b")},
	}, OptionWithGrammar(idl.FileKindBool, &BoolGrammar{Vars: map[string]bool{"a": true, "b": false}}))
	resp, err := r.Run(context.Background(), &Request{Files: []string{"gate.bool"}})
	require.Nil(t, err)
	require.Equal(t, true, resp.Results[0].Value.(Evaluation).Value)

	_, err = New(OptionWithGrammar(idl.FileKindNone, &BoolGrammar{}))
	require.NotNil(t, err)
	_, err = New(OptionWithMaxConcurrency(-1))
	require.NotNil(t, err)
}

func TestRunVerifyProtobuf(t *testing.T) {
	t.Parallel()

	r := newTestRunner(t, fstest.MapFS{
		"user.proto": {Data: []byte(`syntax = "proto3";
package demo;
message User {
  string name = 1;
  optional int32 age = 2;
  oneof contact { string email = 3; string phone = 4; }
  enum Role { ROLE_UNSPECIFIED = 0; ROLE_ADMIN = 1; }
  Role role = 5;
}`)},
	}, OptionWithGrammar(idl.FileKindProtobuf, &ProtobufGrammar{Verify: true}))
	resp, err := r.Run(context.Background(), &Request{Files: []string{"user.proto"}})
	require.Nil(t, err)
	require.Len(t, resp.Results, 1)
}

func TestRunLogsProgress(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	r := newTestRunner(t, fstest.MapFS{
		"a.calc": {Data: []byte("1")},
	}, OptionWithLogger(logger), OptionWithMaxConcurrency(1))
	_, err := r.Run(context.Background(), &Request{Files: []string{"a.calc"}})
	require.Nil(t, err)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	require.Equal(t, "parsing", entries[0].Message)
	require.Equal(t, "parsed", entries[1].Message)
	require.Equal(t, "/a.calc", entries[1].Data["uri"])
	require.Equal(t, "arith", entries[1].Data["grammar"])
	require.Equal(t, true, entries[1].Data["ok"])
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	r := newTestRunner(t, fstest.MapFS{
		"a.calc": {Data: []byte("1")},
		"b.calc": {Data: []byte("2")},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Run(ctx, &Request{Files: []string{"a.calc", "b.calc"}})
	require.True(t, errors.Is(err, context.Canceled))
}

func TestDefaultRoots(t *testing.T) {
	t.Parallel()

	env := map[string]string{"XDG_DATA_DIRS": "/opt/share:$HOME/.local/share", "HOME": "/home/me"}
	roots := getDefaultRoots(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.Equal(t, []string{"/opt/share/parsec", "/home/me/.local/share/parsec"}, roots)
}
