// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// GetLevel maps a --log-level value onto a logrus level. The empty string
// selects warn so the CLI stays quiet unless asked.
func GetLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "", "warn", "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.WarnLevel, fmt.Errorf("invalid log level: %v", level)
	}
}

// GetFormatter returns the formatter for a --log-format value. Anything
// other than text or json-pretty is plain JSON.
func GetFormatter(format string) logrus.Formatter {
	switch format {
	case "text":
		return &prettyFormatter{}
	case "json-pretty":
		return &logrus.JSONFormatter{PrettyPrint: true}
	default:
		return &logrus.JSONFormatter{}
	}
}

// New builds a logger writing to w.
func New(w io.Writer, level, format string) (*logrus.Logger, error) {
	lvl, err := GetLevel(level)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(GetFormatter(format))
	return logger, nil
}

// prettyFormatter prints one header line per entry followed by its fields
// in key order, one per line.
type prettyFormatter struct{}

func (p *prettyFormatter) Format(e *logrus.Entry) ([]byte, error) {
	b := new(bytes.Buffer)
	fmt.Fprintf(b, "[%s] %s\n", strings.ToUpper(e.Level.String()), e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := e.Data[k]
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		s := fmt.Sprint(v)
		if strings.Contains(s, "\n") {
			b.WriteString("  " + k + " = |\n")
			for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
				b.WriteString("      " + line + "\n")
			}
			continue
		}
		b.WriteString("  " + k + " = " + s + "\n")
	}
	return b.Bytes(), nil
}
