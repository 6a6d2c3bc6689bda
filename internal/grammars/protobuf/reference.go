// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package protobuf

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bufbuild/protocompile/options"
	"github.com/bufbuild/protocompile/parser"
	"github.com/bufbuild/protocompile/reporter"
	"google.golang.org/protobuf/types/descriptorpb"

	"gopkg.microglot.org/parsec.go/internal/exc"
	"gopkg.microglot.org/parsec.go/internal/idl"
)

// Reference parses src with protocompile. It is used to check the output of
// Parse against an established implementation.
func Reference(name string, src io.Reader, r exc.Reporter) (*descriptorpb.FileDescriptorProto, error) {
	h := reporter.NewHandler(&protoReporter{Reporter: r})
	node, err := parser.Parse(name, src, h)
	if err != nil {
		return nil, err
	}
	result, err := parser.ResultFromAST(node, true, h)
	if err != nil {
		return nil, err
	}
	if _, err = options.InterpretUnlinkedOptions(result); err != nil {
		return nil, err
	}
	return result.FileDescriptorProto(), nil
}

type protoReporter struct {
	Reporter exc.Reporter
}

func (self *protoReporter) Error(e reporter.ErrorWithPos) error {
	pos := e.GetPosition()
	loc := exc.Location{
		URI: pos.Filename,
		Location: idl.Location{
			Line:   int32(pos.Line),
			Column: int32(pos.Col),
			Offset: int64(pos.Offset),
		},
	}
	return self.Reporter.Report(exc.Wrap(loc, exc.CodeProtobufParseError, e))
}

func (self *protoReporter) Warning(e reporter.ErrorWithPos) {
	_ = self.Error(e)
}

// Summarize renders the shape of a file as sorted lines. Type references
// keep only their last component since protocompile leaves them
// unresolved, and oneofs holding only proto3 optional fields are skipped.
func Summarize(fd *descriptorpb.FileDescriptorProto) []string {
	var out []string
	out = append(out, fmt.Sprintf("package %s", fd.GetPackage()))
	for _, dep := range fd.GetDependency() {
		out = append(out, fmt.Sprintf("import %s", dep))
	}
	for _, m := range fd.GetMessageType() {
		out = summarizeMessage(out, fd.GetPackage(), m)
	}
	for _, e := range fd.GetEnumType() {
		out = summarizeEnum(out, fd.GetPackage(), e)
	}
	sort.Strings(out)
	return out
}

func summarizeMessage(out []string, scope string, m *descriptorpb.DescriptorProto) []string {
	name := join(scope, m.GetName())
	out = append(out, "message "+name)
	for x, o := range m.GetOneofDecl() {
		synthetic := true
		for _, f := range m.GetField() {
			if f.OneofIndex != nil && int(f.GetOneofIndex()) == x && !f.GetProto3Optional() {
				synthetic = false
			}
		}
		if !synthetic {
			out = append(out, fmt.Sprintf("oneof %s.%s", name, o.GetName()))
		}
	}
	for _, f := range m.GetField() {
		typ := strings.ToLower(strings.TrimPrefix(f.GetType().String(), "TYPE_"))
		if f.GetTypeName() != "" {
			parts := strings.Split(f.GetTypeName(), ".")
			typ = parts[len(parts)-1]
		}
		line := fmt.Sprintf("field %s.%s = %d %s %s", name, f.GetName(), f.GetNumber(), strings.ToLower(strings.TrimPrefix(f.GetLabel().String(), "LABEL_")), typ)
		if f.GetProto3Optional() {
			line += " optional"
		} else if f.OneofIndex != nil {
			line += " in " + m.GetOneofDecl()[f.GetOneofIndex()].GetName()
		}
		out = append(out, line)
	}
	for _, r := range m.GetReservedRange() {
		out = append(out, fmt.Sprintf("reserved %s %d to %d", name, r.GetStart(), r.GetEnd()))
	}
	for _, r := range m.GetReservedName() {
		out = append(out, fmt.Sprintf("reserved %s %q", name, r))
	}
	for _, n := range m.GetNestedType() {
		out = summarizeMessage(out, name, n)
	}
	for _, e := range m.GetEnumType() {
		out = summarizeEnum(out, name, e)
	}
	return out
}

func summarizeEnum(out []string, scope string, e *descriptorpb.EnumDescriptorProto) []string {
	name := join(scope, e.GetName())
	out = append(out, "enum "+name)
	for _, v := range e.GetValue() {
		out = append(out, fmt.Sprintf("value %s.%s = %d", name, v.GetName(), v.GetNumber()))
	}
	return out
}

func join(scope string, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}
