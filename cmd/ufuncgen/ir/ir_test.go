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
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"Ident", Ident("x0"), "x0"},
		{"Lit", Lit("float32(v)"), "float32(v)"},
		{"Bin", Bin{Op: "==", X: Ident("a"), Y: Ident("b")}, "a == b"},
		{"Call", CallExpr{Fn: "fn", Args: []Expr{Ident("a"), Ident("b")}}, "fn(a, b)"},
		{"Addr", Addr{X: Ident("ov0")}, "&ov0"},
		{"Load", Load{Type: "float64", Ptr: Ident("ip0")}, "*(*float64)(ip0)"},
		{"Sentinel", Sentinel("float64"), "ufunc.Sentinel[float64]()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := String(tt.expr); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnd(t *testing.T) {
	if got := And(); got != nil {
		t.Errorf("And() = %v, want nil", got)
	}
	if got := String(And(Ident("a"))); got != "a" {
		t.Errorf("And(a) = %q", got)
	}
	if got := String(And(Ident("a"), Ident("b"), Ident("c"))); got != "a && b && c" {
		t.Errorf("And(a, b, c) = %q", got)
	}
}

func TestEmitFunc(t *testing.T) {
	f := &Func{
		Doc:        []string{"Half halves its argument."},
		Name:       "Half",
		TypeParams: []Param{{Name: "T", Type: "number_df"}},
		Params:     []Param{{Name: "x", Type: "T"}},
		Results:    []Param{{Type: "T"}},
		Body: []Stmt{
			Switch{
				Cases: []Case{{
					Cond: Lit("ufunc.TypeIs[T, float64]()"),
					Body: []Stmt{Return{X: Lit("x")}},
				}},
				Default: []Stmt{Return{X: Sentinel("T")}},
			},
		},
	}
	em := &Emitter{}
	em.Func(f)
	got := em.String()
	want := strings.Join([]string{
		"// Half halves its argument.",
		"func Half[T number_df](x T) T {",
		"\tswitch {",
		"\tcase ufunc.TypeIs[T, float64]():",
		"\t\treturn x",
		"\tdefault:",
		"\t\treturn ufunc.Sentinel[T]()",
		"\t}",
		"}",
		"",
		"",
	}, "\n")
	if got != want {
		t.Errorf("emitted:\n%s\nwant:\n%s", got, want)
	}
}

func TestEmitLoopShapes(t *testing.T) {
	body := []Stmt{
		Assign{Dst: Ident("ip0"), Src: Lit("args[0]"), Define: true},
		Var{Name: "ov0", Type: "float64"},
		ForRange{N: Ident("n"), Body: []Stmt{
			CastCheck{
				Cond: Lit("ok"),
				Then: []Stmt{CallStmt{Result: Ident("ov0"), Call: CallExpr{Fn: "fn", Args: []Expr{Ident("x")}}}},
				Else: []Stmt{
					Report{Status: Ident("st"), Kernel: Ident("data.Name"), Reason: "invalid input argument"},
					SetSentinel{Dst: Ident("ov0"), GoType: "float64"},
				},
			},
			Store{Type: "float32", Ptr: Ident("op0"), Src: Lit("float32(ov0)")},
			AdvancePtr{Ptr: Ident("ip0"), Step: Lit("steps[0]")},
		}},
	}
	em := &Emitter{}
	em.Func(&Func{Name: "loop", Params: []Param{{Name: "n", Type: "int"}}, Body: body})
	got := em.String()

	for _, want := range []string{
		"ip0 := args[0]",
		"var ov0 float64",
		"for i := 0; i < n; i++ {",
		"if ok {",
		"ov0 = fn(x)",
		"} else {",
		"st.Domain(data.Name, \"invalid input argument\")",
		"ov0 = ufunc.Sentinel[float64]()",
		"*(*float32)(op0) = float32(ov0)",
		"ip0 = unsafe.Add(ip0, steps[0])",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("emitted text missing %q:\n%s", want, got)
		}
	}
	// Cursors stay unsafe.Pointer; integer-held pointers trip vet.
	if strings.Contains(got, "uintptr") {
		t.Errorf("emitted text holds a cursor as uintptr:\n%s", got)
	}
}

func TestWalkOrder(t *testing.T) {
	stmts := []Stmt{
		Comment("a"),
		CastCheck{
			Cond: Ident("ok"),
			Then: []Stmt{Comment("b")},
			Else: []Stmt{Comment("c")},
		},
		Switch{
			Cases:   []Case{{Cond: Ident("x"), Body: []Stmt{Comment("d")}}},
			Default: []Stmt{Comment("e")},
		},
		ForRange{N: Ident("n"), Body: []Stmt{Comment("f")}},
	}
	var got []string
	Walk(stmts, func(s Stmt) {
		if c, ok := s.(Comment); ok {
			got = append(got, string(c))
		}
	})
	want := "abcdef"
	if strings.Join(got, "") != want {
		t.Errorf("walk order = %v, want %s", got, want)
	}
}
