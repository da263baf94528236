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

package main

import (
	"fmt"
	"strings"

	"github.com/ajroetker/go-ufunc/cmd/ufuncgen/ir"
)

// loopKey identifies a loop function up to sharing: the kernel-side
// shape, the row-side codes, and whether double-complex values cross
// the kernel boundary in struct representation. Two rows with equal
// keys run the same generated loop with different Data.
type loopKey struct {
	kernelRet     TypeCode
	kernelIn      string
	kernelOut     string
	rowIn         string
	rowOut        string
	structComplex bool
}

// structComplexSig reports whether the kernel takes or returns
// double-complex values in struct representation. Only native-struct
// kernels that actually traffic in the D code qualify; everything else
// shares loops with plain kernels of the same shape.
func structComplexSig(sig *Signature) bool {
	return sig.Origin == OriginNativeStruct &&
		strings.ContainsRune(sig.In+sig.Out+string(sig.KernelRet), rune(CDouble))
}

// kernelGoType is the Go type a kernel-side value of code c has,
// accounting for the struct representation of double complex.
func kernelGoType(c TypeCode, structComplex bool) string {
	if structComplex && c == CDouble {
		return "ufunc.Cdouble"
	}
	return c.GoType()
}

// kernelFuncType renders the Go function type a loop asserts data.Func
// to: value parameters for inputs, pointer parameters for output
// arguments, and the kernel's true return type.
func kernelFuncType(sig *Signature, structComplex bool) string {
	var params []string
	for i := 0; i < len(sig.In); i++ {
		params = append(params, kernelGoType(TypeCode(sig.In[i]), structComplex))
	}
	for i := 0; i < len(sig.Out); i++ {
		params = append(params, "*"+kernelGoType(TypeCode(sig.Out[i]), structComplex))
	}
	t := "func(" + strings.Join(params, ", ") + ")"
	if sig.KernelRet != Void {
		t += " " + kernelGoType(sig.KernelRet, structComplex)
	}
	return t
}

// LoopCache synthesizes loop functions and shares them across every
// dispatch row with the same shape. The first row to need a shape owns
// the loop; later rows reuse it by name.
type LoopCache struct {
	names map[loopKey]string
	funcs []*ir.Func
}

func NewLoopCache() *LoopCache {
	return &LoopCache{names: make(map[loopKey]string)}
}

// Funcs returns the synthesized loops in the order they were first
// requested.
func (lc *LoopCache) Funcs() []*ir.Func { return lc.funcs }

// Loop returns the name of the loop function serving the variant,
// synthesizing it on first use.
func (lc *LoopCache) Loop(v Variant) string {
	sig := v.Sig
	key := loopKey{
		kernelRet:     sig.KernelRet,
		kernelIn:      sig.In,
		kernelOut:     sig.Out,
		rowIn:         v.In,
		rowOut:        v.Out,
		structComplex: structComplexSig(sig),
	}
	if name, ok := lc.names[key]; ok {
		return name
	}
	name := loopName(key)
	lc.names[key] = name
	lc.funcs = append(lc.funcs, synthesizeLoop(key, name))
	return name
}

func loopName(key loopKey) string {
	ret := ""
	if key.kernelRet != Void {
		ret = string(key.kernelRet)
	}
	name := fmt.Sprintf("loop_%s_%s_%s_As_%s_%s",
		ret, key.kernelIn, key.kernelOut, key.rowIn, key.rowOut)
	if key.structComplex {
		name += "_cstruct"
	}
	return name
}

// synthesizeLoop builds the loop body: load each input through its
// cursor, cast to the kernel type under a round-trip guard where the
// cast is dangerous, call the kernel into holder variables, narrow each
// holder to its row type under a guard where that narrowing is
// dangerous, advance the cursors, and drain accumulated floating-point
// flags once per call.
func synthesizeLoop(key loopKey, name string) *ir.Func {
	sc := key.structComplex
	sig := &Signature{
		In: key.kernelIn, Out: key.kernelOut,
		KernelRet: key.kernelRet,
	}
	nin, nout := len(key.rowIn), len(key.rowOut)
	retAsOutput := key.kernelRet != Void && len(key.kernelOut)+1 == nout

	f := &ir.Func{
		Name: name,
		Params: []ir.Param{
			{Name: "args", Type: "[]unsafe.Pointer"},
			{Name: "n", Type: "int"},
			{Name: "steps", Type: "[]int"},
			{Name: "data", Type: "*ufunc.Data"},
			{Name: "st", Type: "*ufunc.Status"},
		},
	}

	body := []ir.Stmt{
		ir.Assign{Dst: ir.Ident("fn"), Src: ir.Lit(fmt.Sprintf("data.Func.(%s)", kernelFuncType(sig, sc))), Define: true},
	}
	for j := 0; j < nin; j++ {
		body = append(body, ir.Assign{
			Dst: ir.Ident(fmt.Sprintf("ip%d", j)), Src: ir.Lit(fmt.Sprintf("args[%d]", j)), Define: true,
		})
	}
	for j := 0; j < nout; j++ {
		body = append(body, ir.Assign{
			Dst: ir.Ident(fmt.Sprintf("op%d", j)), Src: ir.Lit(fmt.Sprintf("args[%d]", j+nin)), Define: true,
		})
	}

	// Holder variables for everything the kernel produces, the return
	// value first when it occupies an output slot.
	var holders []TypeCode // kernel-side code per output slot
	if retAsOutput {
		holders = append(holders, key.kernelRet)
	}
	for j := 0; j < len(key.kernelOut); j++ {
		holders = append(holders, TypeCode(key.kernelOut[j]))
	}
	for j, c := range holders {
		body = append(body, ir.Var{Name: fmt.Sprintf("ov%d", j), Type: kernelGoType(c, sc)})
	}

	// Kernel arguments and input guards share the loaded expression;
	// the guard round-trips the cast and compares against the source.
	var callArgs []ir.Expr
	var guards []ir.Expr
	for j := 0; j < len(key.kernelIn); j++ {
		from, to := TypeCode(key.rowIn[j]), TypeCode(key.kernelIn[j])
		load := ir.String(ir.Load{Type: from.GoType(), Ptr: ir.Ident(fmt.Sprintf("ip%d", j))})
		arg := CastExpr(from, to, load)
		if sc && to == CDouble {
			arg = fmt.Sprintf("ufunc.CdoubleOf(%s)", arg)
		}
		callArgs = append(callArgs, ir.Lit(arg))
		if DangerousDowncast(from, to) {
			guards = append(guards, ir.Lit(GuardExpr(from, to, CastExpr(from, to, load), load)))
		}
	}
	for j := range key.kernelOut {
		off := 0
		if retAsOutput {
			off = 1
		}
		callArgs = append(callArgs, ir.Addr{X: ir.Ident(fmt.Sprintf("ov%d", j+off))})
	}

	call := ir.CallStmt{Call: ir.CallExpr{Fn: "fn", Args: callArgs}}
	if retAsOutput {
		call.Result = ir.Ident("ov0")
	}

	var iter []ir.Stmt
	if cond := ir.And(guards...); cond != nil {
		fail := []ir.Stmt{
			ir.Report{Status: ir.Ident("st"), Kernel: ir.Ident("data.Name"), Reason: "invalid input argument"},
		}
		for j, c := range holders {
			fail = append(fail, ir.SetSentinel{Dst: ir.Ident(fmt.Sprintf("ov%d", j)), GoType: kernelGoType(c, sc)})
		}
		iter = append(iter, ir.CastCheck{Cond: cond, Then: []ir.Stmt{call}, Else: fail})
	} else {
		iter = append(iter, call)
	}

	// Narrow each holder to its row type and store it.
	for j := 0; j < nout; j++ {
		from, to := holders[j], TypeCode(key.rowOut[j])
		src := fmt.Sprintf("ov%d", j)
		if sc && from == CDouble {
			src += ".Complex()"
		}
		narrowed := CastExpr(from, to, src)
		op := ir.Ident(fmt.Sprintf("op%d", j))
		store := ir.Store{Type: to.GoType(), Ptr: op, Src: ir.Lit(narrowed)}
		if DangerousDowncast(from, to) {
			iter = append(iter, ir.CastCheck{
				Cond: ir.Lit(GuardExpr(from, to, narrowed, src)),
				Then: []ir.Stmt{store},
				Else: []ir.Stmt{
					ir.Report{Status: ir.Ident("st"), Kernel: ir.Ident("data.Name"), Reason: "invalid output"},
					ir.Store{Type: to.GoType(), Ptr: op, Src: ir.Sentinel(to.GoType())},
				},
			})
		} else {
			iter = append(iter, store)
		}
	}

	for j := 0; j < nin; j++ {
		iter = append(iter, ir.AdvancePtr{Ptr: ir.Ident(fmt.Sprintf("ip%d", j)), Step: ir.Lit(fmt.Sprintf("steps[%d]", j))})
	}
	for j := 0; j < nout; j++ {
		iter = append(iter, ir.AdvancePtr{Ptr: ir.Ident(fmt.Sprintf("op%d", j)), Step: ir.Lit(fmt.Sprintf("steps[%d]", j+nin))})
	}

	body = append(body, ir.ForRange{N: ir.Ident("n"), Body: iter})
	body = append(body, ir.CallStmt{Call: ir.CallExpr{Fn: "st.CheckFPE", Args: []ir.Expr{ir.Ident("data.Name")}}})
	f.Body = body
	return f
}
