// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package toy

// Env is one lexical scope. Lookups walk outward through parents.
type Env struct {
	vars   map[string]any
	parent *Env
}

func NewEnv(parent *Env) *Env {
	return &Env{vars: make(map[string]any), parent: parent}
}

// Define binds name in this scope, shadowing any outer binding.
func (e *Env) Define(name string, v any) {
	e.vars[name] = v
}

func (e *Env) Lookup(name string) (any, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Assign updates the innermost existing binding of name. It reports false
// when name is not bound in any enclosing scope.
func (e *Env) Assign(name string, v any) bool {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v
			return true
		}
	}
	return false
}
