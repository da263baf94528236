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

// Package ir is the structured representation of generated dispatch
// code. Synthesizers build trees of branches, guarded casts, kernel
// calls, assignments and sentinel writes; text is produced only at
// the emission boundary, so cast-safety and sentinel logic can be
// verified by walking the tree instead of matching strings.
package ir

// Expr is a Go expression.
type Expr interface{ isExpr() }

// Ident references a variable by name.
type Ident string

// Lit is a verbatim Go expression, used for rendered cast and literal
// text whose internal structure the synthesizers do not need to
// inspect.
type Lit string

// Bin applies a binary operator.
type Bin struct {
	Op   string
	X, Y Expr
}

// CallExpr calls a function by name (possibly qualified or
// instantiated, e.g. "ufunc.Sentinel[float64]").
type CallExpr struct {
	Fn   string
	Args []Expr
}

// Addr takes the address of an expression.
type Addr struct{ X Expr }

// Load reads a typed value through a raw buffer cursor of type
// unsafe.Pointer: *(*Type)(ptr).
type Load struct {
	Type string
	Ptr  Expr
}

func (Ident) isExpr()    {}
func (Lit) isExpr()      {}
func (Bin) isExpr()      {}
func (CallExpr) isExpr() {}
func (Addr) isExpr()     {}
func (Load) isExpr()     {}

// Sentinel returns the expression producing the sentinel value for a
// Go type.
func Sentinel(goType string) Expr {
	return CallExpr{Fn: "ufunc.Sentinel[" + goType + "]"}
}

// Stmt is a Go statement.
type Stmt interface{ isStmt() }

// Var declares a zero-valued variable.
type Var struct {
	Name string
	Type string
}

// Assign assigns Src to Dst; Define emits ":=".
type Assign struct {
	Dst    Expr
	Src    Expr
	Define bool
}

// Store writes a typed value through a raw buffer cursor.
type Store struct {
	Type string
	Ptr  Expr
	Src  Expr
}

// CallStmt invokes a kernel, optionally binding its return value.
type CallStmt struct {
	Result Expr // nil for void kernels
	Call   CallExpr
}

// CastCheck is a guarded narrowing cast: Cond is the equality
// round-trip test; Else carries the domain-error report and sentinel
// substitution.
type CastCheck struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// SetSentinel writes the sentinel for a Go type to Dst.
type SetSentinel struct {
	Dst    Expr
	GoType string
}

// Report records a domain error on the status accumulator.
type Report struct {
	Status Expr
	Kernel Expr
	Reason string
}

// ForRange iterates i from 0 to N.
type ForRange struct {
	N    Expr
	Body []Stmt
}

// AdvancePtr moves a buffer cursor by a byte stride via unsafe.Add,
// keeping the cursor an unsafe.Pointer throughout so pointer values
// are never held as integers.
type AdvancePtr struct {
	Ptr  Ident
	Step Expr
}

// Switch is a conditional ladder; Cases run in order and Default, if
// present, covers everything unmatched.
type Switch struct {
	Cases   []Case
	Default []Stmt
}

// Case is one rung of a Switch ladder.
type Case struct {
	Cond Expr
	Body []Stmt
}

// Return returns X, or nothing when X is nil.
type Return struct{ X Expr }

// Comment emits a single line comment.
type Comment string

func (Var) isStmt()         {}
func (Assign) isStmt()      {}
func (Store) isStmt()       {}
func (CallStmt) isStmt()    {}
func (CastCheck) isStmt()   {}
func (SetSentinel) isStmt() {}
func (Report) isStmt()      {}
func (ForRange) isStmt()    {}
func (AdvancePtr) isStmt()  {}
func (Switch) isStmt()      {}
func (Return) isStmt()      {}
func (Comment) isStmt()     {}

// Param is a function parameter, type parameter, or result.
type Param struct {
	Name string
	Type string
}

// Func is one generated function.
type Func struct {
	Doc        []string
	Name       string
	TypeParams []Param
	Params     []Param
	Results    []Param
	Body       []Stmt
}

// Walk visits every statement in the tree in emission order,
// descending into nested bodies.
func Walk(stmts []Stmt, visit func(Stmt)) {
	for _, s := range stmts {
		visit(s)
		switch s := s.(type) {
		case CastCheck:
			Walk(s.Then, visit)
			Walk(s.Else, visit)
		case ForRange:
			Walk(s.Body, visit)
		case Switch:
			for _, c := range s.Cases {
				Walk(c.Body, visit)
			}
			Walk(s.Default, visit)
		}
	}
}
