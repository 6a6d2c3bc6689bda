// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import (
	"context"
	"fmt"

	"gopkg.microglot.org/parsec.go/internal/optional"
)

type Closer interface {
	Close(ctx context.Context) error
}

type CodePoint uint32

type Iterator[T any] interface {
	Next(ctx context.Context) optional.Optional[T]
	Closer
}

type Filter[T any] interface {
	Keep(ctx context.Context, v T) bool
}

type Reader interface {
	Read(ctx context.Context, size int32) ([]byte, error)
}

type FileBody interface {
	Reader
	Closer
}

// Location identifies a point in some input. Line and Column are 1-based and
// Offset is the 0-based element index.
type Location struct {
	Line   int32
	Column int32
	Offset int64
}

// FileKind selects the grammar used to parse a file.
type FileKind uint32

const (
	FileKindNone FileKind = iota
	FileKindArith
	FileKindBool
	FileKindJSON
	FileKindTokens
	FileKindToy
	FileKindProtobuf
)

func (k FileKind) String() string {
	switch k {
	case FileKindArith:
		return "arith"
	case FileKindBool:
		return "bool"
	case FileKindJSON:
		return "json"
	case FileKindNone:
		return "none"
	case FileKindTokens:
		return "tokens"
	case FileKindToy:
		return "toy"
	case FileKindProtobuf:
		return "protobuf"
	default:
		return fmt.Sprintf("unknown-%d", k)
	}
}

// ParseFileKind converts a grammar name, as printed by FileKind.String, back
// into a FileKind. Unknown names produce FileKindNone.
func ParseFileKind(name string) FileKind {
	switch name {
	case "arith", "calc":
		return FileKindArith
	case "bool", "boolean":
		return FileKindBool
	case "json":
		return FileKindJSON
	case "tokens", "tok":
		return FileKindTokens
	case "toy":
		return FileKindToy
	case "protobuf", "proto":
		return FileKindProtobuf
	default:
		return FileKindNone
	}
}

type File interface {
	Path(ctx context.Context) string
	Kind(ctx context.Context) FileKind
	Body(ctx context.Context) (FileBody, error)
}

type FileSystem interface {
	Open(ctx context.Context, uri string) ([]File, error)
	Write(ctx context.Context, uri string, content string) error
}
