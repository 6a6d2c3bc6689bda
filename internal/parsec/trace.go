// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package parsec

import (
	"github.com/sirupsen/logrus"
)

// Trace logs, at debug level, every invocation of p under the rule name and
// how it ended. It is meant for debugging grammars and costs a log call per
// invocation.
func Trace[E, T any](logger logrus.FieldLogger, name string, p Parser[E, T]) Parser[E, T] {
	return func(pos Position[E]) Result[E, T] {
		entry := logger.WithFields(logrus.Fields{
			"rule":   name,
			"offset": pos.Offset(),
			"line":   pos.Line(),
			"column": pos.Column(),
		})
		entry.Debug("enter")
		r := p(pos)
		switch {
		case r.OK():
			entry.WithField("consumed", r.Remainder().Offset()-pos.Offset()).Debug("match")
		case r.Fatal():
			entry.WithField("error", r.Failure().Error()).Debug("fatal")
		default:
			entry.WithField("error", r.Failure().Error()).Debug("miss")
		}
		return r
	}
}
