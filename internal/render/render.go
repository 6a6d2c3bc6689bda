// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package render writes runner results for people and for other programs.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"

	"gopkg.microglot.org/parsec.go/internal/runner"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

type record struct {
	URI     string `json:"uri" yaml:"uri"`
	Grammar string `json:"grammar" yaml:"grammar"`
	Value   any    `json:"value" yaml:"value"`
}

// Write renders results to w in the given format.
func Write(w io.Writer, format Format, results []runner.Result) error {
	switch format {
	case FormatJSON, FormatYAML:
		records := make([]record, 0, len(results))
		for _, res := range results {
			v, err := plain(res.Value)
			if err != nil {
				return err
			}
			records = append(records, record{URI: res.URI, Grammar: res.Kind.String(), Value: v})
		}
		if format == FormatJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	case FormatText:
		for _, res := range results {
			if err := writeText(w, res); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// plain converts protobuf messages into generic values through their
// canonical JSON mapping so every encoder sees the same shape.
func plain(v any) (any, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return v, nil
	}
	b, err := protojson.Marshal(m)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func writeText(w io.Writer, res runner.Result) error {
	var err error
	switch v := res.Value.(type) {
	case runner.Evaluation:
		_, err = fmt.Fprintf(w, "%s: %s = %v\n", res.URI, v.Tree, v.Value)
	case proto.Message:
		b, errM := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(v)
		if errM != nil {
			return errM
		}
		_, err = fmt.Fprintf(w, "%s:\n%s\n", res.URI, b)
	case []string:
		_, err = fmt.Fprintf(w, "%s:\n", res.URI)
		for _, line := range v {
			if err != nil {
				break
			}
			_, err = fmt.Fprintf(w, "  %s\n", line)
		}
	case string:
		_, err = fmt.Fprintf(w, "%s:\n%s", res.URI, v)
		if err == nil && v != "" && !strings.HasSuffix(v, "\n") {
			_, err = io.WriteString(w, "\n")
		}
	default:
		_, err = fmt.Fprintf(w, "%s: %v\n", res.URI, v)
	}
	return err
}
