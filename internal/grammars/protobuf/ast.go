// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package protobuf

import (
	"gopkg.microglot.org/parsec.go/internal/idl"
)

// The declaration tree keeps source locations so that the checks run while
// lowering to descriptors can point at the offending text.

type constKind uint8

const (
	constString constKind = iota + 1
	constNumber
	constIdent
)

type constant struct {
	kind     constKind
	text     string
	negative bool
	at       idl.Location
}

type namePart struct {
	name      string
	extension bool
}

type optionDecl struct {
	name  []namePart
	value constant
	at    idl.Location
}

type importDecl struct {
	path   string
	public bool
	weak   bool
}

type fieldDecl struct {
	label    string
	typeName string
	name     string
	number   int64
	options  []optionDecl
	oneof    int
	at       idl.Location
	numberAt idl.Location
}

type oneofDecl struct {
	name    string
	options []optionDecl
}

type enumValueDecl struct {
	name    string
	number  int64
	options []optionDecl
	at      idl.Location
}

type enumDecl struct {
	name    string
	values  []*enumValueDecl
	options []optionDecl
	at      idl.Location
}

type reservedDecl struct {
	// ranges are inclusive.
	ranges [][2]int64
	names  []string
	at     idl.Location
}

type messageDecl struct {
	name     string
	fields   []*fieldDecl
	oneofs   []*oneofDecl
	messages []*messageDecl
	enums    []*enumDecl
	options  []optionDecl
	reserved []reservedDecl
	at       idl.Location
}

type fileDecl struct {
	pkg      string
	imports  []importDecl
	options  []optionDecl
	messages []*messageDecl
	enums    []*enumDecl
}
