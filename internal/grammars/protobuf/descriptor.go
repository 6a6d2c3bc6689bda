// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package protobuf

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"gopkg.microglot.org/parsec.go/internal/exc"
	"gopkg.microglot.org/parsec.go/internal/idl"
)

var scalars = map[string]descriptorpb.FieldDescriptorProto_Type{
	"double":   descriptorpb.FieldDescriptorProto_TYPE_DOUBLE,
	"float":    descriptorpb.FieldDescriptorProto_TYPE_FLOAT,
	"int64":    descriptorpb.FieldDescriptorProto_TYPE_INT64,
	"uint64":   descriptorpb.FieldDescriptorProto_TYPE_UINT64,
	"int32":    descriptorpb.FieldDescriptorProto_TYPE_INT32,
	"fixed64":  descriptorpb.FieldDescriptorProto_TYPE_FIXED64,
	"fixed32":  descriptorpb.FieldDescriptorProto_TYPE_FIXED32,
	"bool":     descriptorpb.FieldDescriptorProto_TYPE_BOOL,
	"string":   descriptorpb.FieldDescriptorProto_TYPE_STRING,
	"bytes":    descriptorpb.FieldDescriptorProto_TYPE_BYTES,
	"uint32":   descriptorpb.FieldDescriptorProto_TYPE_UINT32,
	"sfixed32": descriptorpb.FieldDescriptorProto_TYPE_SFIXED32,
	"sfixed64": descriptorpb.FieldDescriptorProto_TYPE_SFIXED64,
	"sint32":   descriptorpb.FieldDescriptorProto_TYPE_SINT32,
	"sint64":   descriptorpb.FieldDescriptorProto_TYPE_SINT64,
}

// namespace marks package components in the symbol table.
const namespace descriptorpb.FieldDescriptorProto_Type = 0

type lowering struct {
	uri     string
	symbols map[string]descriptorpb.FieldDescriptorProto_Type
	linked  bool
	errs    exc.MultiException
}

func (self *lowering) report(at idl.Location, code string, format string, args ...any) {
	self.errs = append(self.errs, exc.New(exc.Location{Location: at, URI: self.uri}, code, fmt.Sprintf(format, args...)))
}

func lower(uri string, f *fileDecl) (*descriptorpb.FileDescriptorProto, error) {
	lw := &lowering{
		uri:     uri,
		symbols: make(map[string]descriptorpb.FieldDescriptorProto_Type),
		linked:  len(f.imports) == 0,
	}
	scope := ""
	if f.pkg != "" {
		for _, part := range strings.Split(f.pkg, ".") {
			scope = scope + "." + part
			lw.symbols[scope] = namespace
		}
	}
	lw.declare(scope, f.messages, f.enums)

	fd := &descriptorpb.FileDescriptorProto{
		Name:   proto.String(uri),
		Syntax: proto.String("proto3"),
	}
	if f.pkg != "" {
		fd.Package = proto.String(f.pkg)
	}
	for x, imp := range f.imports {
		fd.Dependency = append(fd.Dependency, imp.path)
		if imp.public {
			fd.PublicDependency = append(fd.PublicDependency, int32(x))
		}
		if imp.weak {
			fd.WeakDependency = append(fd.WeakDependency, int32(x))
		}
	}
	if len(f.options) > 0 {
		fd.Options = &descriptorpb.FileOptions{}
		lw.applyOptions(fd.Options, f.options)
	}
	for _, m := range f.messages {
		fd.MessageType = append(fd.MessageType, lw.message(scope, m))
	}
	for _, e := range f.enums {
		fd.EnumType = append(fd.EnumType, lw.enum(e))
	}
	if len(lw.errs) > 0 {
		return nil, lw.errs
	}
	return fd, nil
}

func (self *lowering) define(name string, kind descriptorpb.FieldDescriptorProto_Type, at idl.Location) {
	if _, ok := self.symbols[name]; ok {
		self.report(at, exc.CodeProtobufParseError, "%s is already defined", strings.TrimPrefix(name, "."))
		return
	}
	self.symbols[name] = kind
}

func (self *lowering) declare(scope string, messages []*messageDecl, enums []*enumDecl) {
	for _, m := range messages {
		name := scope + "." + m.name
		self.define(name, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, m.at)
		self.declare(name, m.messages, m.enums)
	}
	for _, e := range enums {
		self.define(scope+"."+e.name, descriptorpb.FieldDescriptorProto_TYPE_ENUM, e.at)
	}
}

// resolve looks name up the way protoc does: the first component is
// searched from the innermost scope outward and the rest of the name must
// then exist under the scope where the first component was found.
func (self *lowering) resolve(scope string, name string) (string, descriptorpb.FieldDescriptorProto_Type, bool) {
	if strings.HasPrefix(name, ".") {
		kind, ok := self.symbols[name]
		return name, kind, ok && kind != namespace
	}
	first := name
	if x := strings.IndexByte(name, '.'); x >= 0 {
		first = name[:x]
	}
	for s := scope; ; {
		if _, ok := self.symbols[s+"."+first]; ok {
			full := s + "." + name
			kind, ok := self.symbols[full]
			return full, kind, ok && kind != namespace
		}
		if s == "" {
			return "", 0, false
		}
		s = s[:strings.LastIndexByte(s, '.')]
	}
}

func jsonName(name string) string {
	var b strings.Builder
	upper := false
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func validNumber(n int64) bool {
	return n >= 1 && n <= MaxFieldNumber && (n < 19000 || n > 19999)
}

func (self *lowering) message(scope string, m *messageDecl) *descriptorpb.DescriptorProto {
	full := scope + "." + m.name
	dp := &descriptorpb.DescriptorProto{Name: proto.String(m.name)}
	for _, o := range m.oneofs {
		od := &descriptorpb.OneofDescriptorProto{Name: proto.String(o.name)}
		if len(o.options) > 0 {
			od.Options = &descriptorpb.OneofOptions{}
			self.applyOptions(od.Options, o.options)
		}
		dp.OneofDecl = append(dp.OneofDecl, od)
	}

	reservedNames := make(map[string]bool)
	for _, r := range m.reserved {
		for _, name := range r.names {
			reservedNames[name] = true
			dp.ReservedName = append(dp.ReservedName, name)
		}
		for _, rng := range r.ranges {
			if rng[0] > rng[1] || !validNumber(rng[0]) || rng[1] > MaxFieldNumber {
				self.report(r.at, exc.CodeInvalidNumber, "invalid reserved range %d to %d", rng[0], rng[1])
				continue
			}
			dp.ReservedRange = append(dp.ReservedRange, &descriptorpb.DescriptorProto_ReservedRange{
				Start: proto.Int32(int32(rng[0])),
				End:   proto.Int32(int32(rng[1] + 1)),
			})
		}
	}

	names := make(map[string]bool)
	numbers := make(map[int64]string)
	var synthetic []*descriptorpb.OneofDescriptorProto
	for _, f := range m.fields {
		if names[f.name] {
			self.report(f.at, exc.CodeProtobufParseError, "field %s.%s is already defined", m.name, f.name)
		}
		names[f.name] = true
		if reservedNames[f.name] {
			self.report(f.at, exc.CodeProtobufParseError, "field name %q is reserved", f.name)
		}
		switch {
		case !validNumber(f.number):
			self.report(f.numberAt, exc.CodeInvalidNumber, "field number %d is out of range", f.number)
		case numbers[f.number] != "":
			self.report(f.numberAt, exc.CodeInvalidNumber, "field number %d is already used by %s", f.number, numbers[f.number])
		default:
			for _, rng := range dp.ReservedRange {
				if f.number >= int64(rng.GetStart()) && f.number < int64(rng.GetEnd()) {
					self.report(f.numberAt, exc.CodeInvalidNumber, "field number %d is reserved", f.number)
				}
			}
			numbers[f.number] = f.name
		}

		fp := &descriptorpb.FieldDescriptorProto{
			Name:     proto.String(f.name),
			Number:   proto.Int32(int32(f.number)),
			Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
			JsonName: proto.String(jsonName(f.name)),
		}
		if f.label == "repeated" {
			fp.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
		}
		self.fieldType(fp, full, f)
		if f.oneof >= 0 {
			fp.OneofIndex = proto.Int32(int32(f.oneof))
		}
		if f.label == "optional" {
			fp.Proto3Optional = proto.Bool(true)
			fp.OneofIndex = proto.Int32(int32(len(dp.OneofDecl) + len(synthetic)))
			synthetic = append(synthetic, &descriptorpb.OneofDescriptorProto{Name: proto.String("_" + f.name)})
		}
		self.fieldOptions(fp, f.options)
		dp.Field = append(dp.Field, fp)
	}
	dp.OneofDecl = append(dp.OneofDecl, synthetic...)

	for _, n := range m.messages {
		dp.NestedType = append(dp.NestedType, self.message(full, n))
	}
	for _, e := range m.enums {
		dp.EnumType = append(dp.EnumType, self.enum(e))
	}
	if len(m.options) > 0 {
		dp.Options = &descriptorpb.MessageOptions{}
		self.applyOptions(dp.Options, m.options)
	}
	return dp
}

func (self *lowering) fieldType(fp *descriptorpb.FieldDescriptorProto, scope string, f *fieldDecl) {
	if t, ok := scalars[f.typeName]; ok {
		fp.Type = t.Enum()
		return
	}
	full, kind, ok := self.resolve(scope, f.typeName)
	switch {
	case ok:
		fp.Type = kind.Enum()
		fp.TypeName = proto.String(full)
	case self.linked:
		self.report(f.at, exc.CodeProtobufParseError, "undefined type %q", f.typeName)
	default:
		fp.TypeName = proto.String(f.typeName)
	}
}

func (self *lowering) fieldOptions(fp *descriptorpb.FieldDescriptorProto, opts []optionDecl) {
	rest := make([]optionDecl, 0, len(opts))
	for _, o := range opts {
		if len(o.name) == 1 && !o.name[0].extension && o.name[0].name == "json_name" {
			if o.value.kind != constString {
				self.report(o.value.at, exc.CodeProtobufParseError, "json_name must be a string")
				continue
			}
			fp.JsonName = proto.String(o.value.text)
			continue
		}
		rest = append(rest, o)
	}
	if len(rest) > 0 {
		fp.Options = &descriptorpb.FieldOptions{}
		self.applyOptions(fp.Options, rest)
	}
}

func (self *lowering) enum(e *enumDecl) *descriptorpb.EnumDescriptorProto {
	ep := &descriptorpb.EnumDescriptorProto{Name: proto.String(e.name)}
	if len(e.options) > 0 {
		ep.Options = &descriptorpb.EnumOptions{}
		self.applyOptions(ep.Options, e.options)
	}
	if len(e.values) == 0 {
		self.report(e.at, exc.CodeProtobufParseError, "enum %s must have at least one value", e.name)
		return ep
	}
	if e.values[0].number != 0 {
		self.report(e.values[0].at, exc.CodeProtobufParseError, "the first value of enum %s must be zero", e.name)
	}
	seen := make(map[int64]string)
	for _, v := range e.values {
		if v.number < -1<<31 || v.number > 1<<31-1 {
			self.report(v.at, exc.CodeInvalidNumber, "enum value %d is out of range", v.number)
		} else if other, ok := seen[v.number]; ok && !ep.GetOptions().GetAllowAlias() {
			self.report(v.at, exc.CodeInvalidNumber, "enum value %s uses number %d already used by %s", v.name, v.number, other)
		} else {
			seen[v.number] = v.name
		}
		vp := &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(v.name),
			Number: proto.Int32(int32(v.number)),
		}
		if len(v.options) > 0 {
			vp.Options = &descriptorpb.EnumValueOptions{}
			self.applyOptions(vp.Options, v.options)
		}
		ep.Value = append(ep.Value, vp)
	}
	return ep
}

// applyOptions sets plain option names directly on the options message.
// Extension names cannot be resolved without linking, so they are kept as
// uninterpreted options.
func (self *lowering) applyOptions(target proto.Message, opts []optionDecl) {
	m := target.ProtoReflect()
	for _, o := range opts {
		if len(o.name) != 1 || o.name[0].extension {
			self.uninterpreted(m, o)
			continue
		}
		name := o.name[0].name
		fd := m.Descriptor().Fields().ByName(protoreflect.Name(name))
		if fd == nil || name == "uninterpreted_option" {
			self.report(o.at, exc.CodeProtobufParseError, "unknown option %q for %s", name, m.Descriptor().Name())
			continue
		}
		if fd.Cardinality() == protoreflect.Repeated || fd.Message() != nil {
			self.report(o.at, exc.CodeProtobufParseError, "option %q cannot be set from a constant", name)
			continue
		}
		v, err := convert(fd, o.value)
		if err != nil {
			self.report(o.value.at, exc.CodeProtobufParseError, "option %s: %s", name, err.Error())
			continue
		}
		m.Set(fd, v)
	}
}

func (self *lowering) uninterpreted(m protoreflect.Message, o optionDecl) {
	uo := &descriptorpb.UninterpretedOption{}
	for _, part := range o.name {
		uo.Name = append(uo.Name, &descriptorpb.UninterpretedOption_NamePart{
			NamePart:    proto.String(part.name),
			IsExtension: proto.Bool(part.extension),
		})
	}
	c := o.value
	switch {
	case c.kind == constString:
		uo.StringValue = []byte(c.text)
	case c.kind == constIdent && !c.negative:
		uo.IdentifierValue = proto.String(c.text)
	case c.kind == constNumber && isInteger(c.text):
		v, err := strconv.ParseUint(c.text, 0, 64)
		if err != nil {
			self.report(c.at, exc.CodeInvalidNumber, "invalid integer %s", c.text)
			return
		}
		if c.negative {
			uo.NegativeIntValue = proto.Int64(-int64(v))
		} else {
			uo.PositiveIntValue = proto.Uint64(v)
		}
	default:
		v, err := strconv.ParseFloat(signed(c), 64)
		if err != nil {
			self.report(c.at, exc.CodeInvalidNumber, "invalid number %s", signed(c))
			return
		}
		uo.DoubleValue = proto.Float64(v)
	}
	fd := m.Descriptor().Fields().ByName("uninterpreted_option")
	m.Mutable(fd).List().Append(protoreflect.ValueOfMessage(uo.ProtoReflect()))
}

func isInteger(text string) bool {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		return true
	}
	return !strings.ContainsAny(text, ".eE")
}

func signed(c constant) string {
	if c.negative {
		return "-" + c.text
	}
	return c.text
}

// convert turns a constant into a value of the field's kind.
func convert(fd protoreflect.FieldDescriptor, c constant) (protoreflect.Value, error) {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		if c.kind == constIdent && !c.negative && (c.text == "true" || c.text == "false") {
			return protoreflect.ValueOfBool(c.text == "true"), nil
		}
		return protoreflect.Value{}, fmt.Errorf("expected true or false")
	case protoreflect.EnumKind:
		if c.kind == constIdent && !c.negative {
			if v := fd.Enum().Values().ByName(protoreflect.Name(c.text)); v != nil {
				return protoreflect.ValueOfEnum(v.Number()), nil
			}
		}
		return protoreflect.Value{}, fmt.Errorf("expected a value of %s", fd.Enum().FullName())
	case protoreflect.StringKind:
		if c.kind == constString {
			return protoreflect.ValueOfString(c.text), nil
		}
		return protoreflect.Value{}, fmt.Errorf("expected a string")
	case protoreflect.BytesKind:
		if c.kind == constString {
			return protoreflect.ValueOfBytes([]byte(c.text)), nil
		}
		return protoreflect.Value{}, fmt.Errorf("expected a string")
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		v, err := parseInt(c, 32)
		return protoreflect.ValueOfInt32(int32(v)), err
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		v, err := parseInt(c, 64)
		return protoreflect.ValueOfInt64(v), err
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		v, err := parseUint(c, 32)
		return protoreflect.ValueOfUint32(uint32(v)), err
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		v, err := parseUint(c, 64)
		return protoreflect.ValueOfUint64(v), err
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		if c.kind == constString {
			return protoreflect.Value{}, fmt.Errorf("expected a number")
		}
		v, err := strconv.ParseFloat(signed(c), 64)
		if err != nil {
			return protoreflect.Value{}, fmt.Errorf("expected a number")
		}
		if fd.Kind() == protoreflect.FloatKind {
			return protoreflect.ValueOfFloat32(float32(v)), nil
		}
		return protoreflect.ValueOfFloat64(v), nil
	default:
		return protoreflect.Value{}, fmt.Errorf("unsupported option kind %s", fd.Kind())
	}
}

func parseInt(c constant, bits int) (int64, error) {
	if c.kind != constNumber || !isInteger(c.text) {
		return 0, fmt.Errorf("expected an integer")
	}
	v, err := strconv.ParseInt(signed(c), 0, bits)
	if err != nil {
		return 0, fmt.Errorf("integer %s out of range", signed(c))
	}
	return v, nil
}

func parseUint(c constant, bits int) (uint64, error) {
	if c.kind != constNumber || !isInteger(c.text) || c.negative {
		return 0, fmt.Errorf("expected a non-negative integer")
	}
	v, err := strconv.ParseUint(c.text, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("integer %s out of range", c.text)
	}
	return v, nil
}
