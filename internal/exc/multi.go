// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import "strings"

// MultiException is every exception reported for a batch, in report order.
type MultiException []Exception

func (self MultiException) Error() string {
	if len(self) == 0 {
		return "no exceptions"
	}
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}

// Unwrap exposes the members to errors.Is and errors.As.
func (self MultiException) Unwrap() []error {
	out := make([]error, 0, len(self))
	for _, e := range self {
		out = append(out, e)
	}
	return out
}
