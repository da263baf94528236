// Copyright 2025 go-ufunc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ir

import (
	"fmt"
	"strings"
)

// String renders the expression as Go source text.
func String(e Expr) string {
	switch e := e.(type) {
	case Ident:
		return string(e)
	case Lit:
		return string(e)
	case Bin:
		return fmt.Sprintf("%s %s %s", String(e.X), e.Op, String(e.Y))
	case CallExpr:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = String(a)
		}
		return fmt.Sprintf("%s(%s)", e.Fn, strings.Join(args, ", "))
	case Addr:
		return "&" + String(e.X)
	case Load:
		return fmt.Sprintf("*(*%s)(%s)", e.Type, String(e.Ptr))
	}
	panic(fmt.Sprintf("ir: unknown expression %T", e))
}

// And folds conditions into a single conjunction, or nil when the list
// is empty.
func And(conds ...Expr) Expr {
	var out Expr
	for _, c := range conds {
		if c == nil {
			continue
		}
		if out == nil {
			out = c
		} else {
			out = Bin{Op: "&&", X: out, Y: c}
		}
	}
	return out
}

// Emitter renders functions to Go source text. The zero value is ready
// to use.
type Emitter struct {
	b     strings.Builder
	depth int
}

func (e *Emitter) line(format string, args ...any) {
	e.b.WriteString(strings.Repeat("\t", e.depth))
	fmt.Fprintf(&e.b, format, args...)
	e.b.WriteByte('\n')
}

// String returns everything emitted so far.
func (e *Emitter) String() string { return e.b.String() }

// Func emits one function declaration followed by a blank line.
func (e *Emitter) Func(f *Func) {
	for _, d := range f.Doc {
		e.line("// %s", d)
	}
	var sig strings.Builder
	sig.WriteString("func ")
	sig.WriteString(f.Name)
	if len(f.TypeParams) > 0 {
		sig.WriteByte('[')
		sig.WriteString(paramList(f.TypeParams))
		sig.WriteByte(']')
	}
	sig.WriteByte('(')
	sig.WriteString(paramList(f.Params))
	sig.WriteByte(')')
	switch len(f.Results) {
	case 0:
	case 1:
		sig.WriteString(" " + f.Results[0].Type)
	default:
		types := make([]string, len(f.Results))
		for i, r := range f.Results {
			types[i] = r.Type
		}
		sig.WriteString(" (" + strings.Join(types, ", ") + ")")
	}
	e.line("%s {", sig.String())
	e.block(f.Body)
	e.line("}")
	e.line("")
}

func (e *Emitter) block(stmts []Stmt) {
	e.depth++
	for _, s := range stmts {
		e.stmt(s)
	}
	e.depth--
}

func (e *Emitter) stmt(s Stmt) {
	switch s := s.(type) {
	case Var:
		e.line("var %s %s", s.Name, s.Type)
	case Assign:
		op := "="
		if s.Define {
			op = ":="
		}
		e.line("%s %s %s", String(s.Dst), op, String(s.Src))
	case Store:
		e.line("*(*%s)(%s) = %s", s.Type, String(s.Ptr), String(s.Src))
	case CallStmt:
		if s.Result != nil {
			e.line("%s = %s", String(s.Result), String(s.Call))
		} else {
			e.line("%s", String(s.Call))
		}
	case CastCheck:
		e.line("if %s {", String(s.Cond))
		e.block(s.Then)
		if len(s.Else) > 0 {
			e.line("} else {")
			e.block(s.Else)
		}
		e.line("}")
	case SetSentinel:
		e.line("%s = %s", String(s.Dst), String(Sentinel(s.GoType)))
	case Report:
		e.line("%s.Domain(%s, %q)", String(s.Status), String(s.Kernel), s.Reason)
	case ForRange:
		e.line("for i := 0; i < %s; i++ {", String(s.N))
		e.block(s.Body)
		e.line("}")
	case AdvancePtr:
		e.line("%s = unsafe.Add(%s, %s)", s.Ptr, s.Ptr, String(s.Step))
	case Switch:
		e.line("switch {")
		for _, c := range s.Cases {
			e.line("case %s:", String(c.Cond))
			e.block(c.Body)
		}
		if len(s.Default) > 0 {
			e.line("default:")
			e.block(s.Default)
		}
		e.line("}")
	case Return:
		if s.X != nil {
			e.line("return %s", String(s.X))
		} else {
			e.line("return")
		}
	case Comment:
		e.line("// %s", string(s))
	default:
		panic(fmt.Sprintf("ir: unknown statement %T", s))
	}
}

func paramList(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if p.Name == "" {
			parts[i] = p.Type
		} else {
			parts[i] = p.Name + " " + p.Type
		}
	}
	return strings.Join(parts, ", ")
}
