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
	"sort"
	"strings"

	"github.com/ajroetker/go-ufunc/cmd/ufuncgen/ir"
)

// GroupSummary describes one generated dispatch group: the scalar
// dispatcher's declaration, the dispatch table variable, and the
// canonical signatures it covers. Downstream driver passes consume
// these.
type GroupSummary struct {
	Name  string
	Decl  string
	Table string
	Specs []string
}

// ScalarSet accumulates the scalar dispatchers of a run together with
// the constraint interfaces they share.
type ScalarSet struct {
	funcs []*ir.Func
	fused map[string]bool
	sums  []GroupSummary
}

func NewScalarSet() *ScalarSet {
	return &ScalarSet{fused: make(map[string]bool)}
}

func (ss *ScalarSet) Funcs() []*ir.Func         { return ss.funcs }
func (ss *ScalarSet) Summaries() []GroupSummary { return ss.sums }

// FusedSets returns the sorted code sets that need a generated
// constraint interface.
func (ss *ScalarSet) FusedSets() []string {
	sets := make([]string, 0, len(ss.fused))
	for s := range ss.fused {
		sets = append(sets, s)
	}
	sort.Strings(sets)
	return sets
}

// constraintName names the generated constraint interface for a code
// set.
func constraintName(set string) string { return "number_" + set }

// codeSet returns the ASCII-sorted set of distinct codes seen at one
// argument position across all canonicalized signatures.
func codeSet(codes []byte) string {
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	var b strings.Builder
	for i, c := range codes {
		if i == 0 || c != codes[i-1] {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Add synthesizes the scalar dispatcher for an exposed group: a single
// generic function whose type parameters cover the fused argument
// positions, with a type ladder selecting the kernel the way the
// dispatch table's rows would, and sentinel results for instantiations
// no kernel covers.
func (ss *ScalarSet) Add(g *KernelGroup, doc string) {
	nin, nout := g.NIn(), g.NOut()

	// Canonicalized codes per signature; short ints always dispatch as
	// long here, matching the dispatch table's first variant.
	cin := make([]string, len(g.Sigs))
	cout := make([]string, len(g.Sigs))
	for i := range g.Sigs {
		cin[i] = mapCodes(g.Sigs[i].In, intToLong...)
		cout[i] = mapCodes(g.Sigs[i].DispatchOut(), intToLong...)
	}

	// Per-position code sets, inputs then outputs.
	sets := make([]string, nin+nout)
	for p := 0; p < nin; p++ {
		var codes []byte
		for i := range cin {
			codes = append(codes, cin[i][p])
		}
		sets[p] = codeSet(codes)
	}
	for p := 0; p < nout; p++ {
		var codes []byte
		for i := range cout {
			codes = append(codes, cout[i][p])
		}
		sets[nin+p] = codeSet(codes)
	}

	// One type parameter per distinct fused set, in first-appearance
	// order; single-code positions use their concrete type.
	params := make(map[string]string)
	var paramOrder []string
	for _, set := range sets {
		if len(set) > 1 && params[set] == "" {
			params[set] = fmt.Sprintf("T%d", len(paramOrder))
			paramOrder = append(paramOrder, set)
			ss.fused[set] = true
		}
	}
	posType := func(p int) string {
		if len(sets[p]) > 1 {
			return params[sets[p]]
		}
		return TypeCode(sets[p][0]).GoType()
	}

	name := upperFirst(g.Name)
	f := &ir.Func{Name: name}
	for _, set := range paramOrder {
		f.TypeParams = append(f.TypeParams, ir.Param{Name: params[set], Type: constraintName(set)})
	}
	for p := 0; p < nin; p++ {
		f.Params = append(f.Params, ir.Param{Name: fmt.Sprintf("x%d", p), Type: posType(p)})
	}
	for p := 0; p < nout; p++ {
		f.Results = append(f.Results, ir.Param{Type: posType(nin + p)})
	}

	returnOnly := nout == 1 && g.Sigs[0].Out == "" && g.Sigs[0].Ret != Void

	var cases []ir.Case
	var specs []string
	var catchAll []ir.Stmt
	for i := range g.Sigs {
		cond, rung, spec := ss.branch(&g.Sigs[i], cin[i], cout[i], sets, params, posType, nin, returnOnly)
		specs = append(specs, spec)
		if cond == nil {
			// No fused input position separates this signature from the
			// ones before it, so it matches every instantiation and
			// anything declared after it is unreachable.
			catchAll = rung
			break
		}
		cases = append(cases, ir.Case{Cond: cond, Body: rung})
	}

	var body []ir.Stmt
	if !returnOnly {
		for p := 0; p < nout; p++ {
			body = append(body, ir.Var{Name: fmt.Sprintf("y%d", p), Type: posType(nin + p)})
		}
	}
	switch {
	case len(cases) == 0 && catchAll != nil:
		body = append(body, catchAll...)
	default:
		dflt := catchAll
		if dflt == nil {
			if returnOnly {
				dflt = []ir.Stmt{ir.Return{X: ir.Sentinel(posType(nin))}}
			} else {
				for p := 0; p < nout; p++ {
					dflt = append(dflt, ir.SetSentinel{Dst: ir.Ident(fmt.Sprintf("y%d", p)), GoType: posType(nin + p)})
				}
			}
		}
		body = append(body, ir.Switch{Cases: cases, Default: dflt})
	}
	if !returnOnly {
		names := make([]string, nout)
		for p := range names {
			names[p] = fmt.Sprintf("y%d", p)
		}
		body = append(body, ir.Return{X: ir.Lit(strings.Join(names, ", "))})
	}
	f.Body = body

	f.Doc = docLines(name, doc)
	ss.funcs = append(ss.funcs, f)
	ss.sums = append(ss.sums, GroupSummary{Name: g.Name, Decl: declString(f), Table: tableVar(g.Name), Specs: specs})
}

// branch builds the ladder rung for one signature: the type condition
// over the fused input positions and the statements converting
// arguments, calling the kernel, and placing its results.
func (ss *ScalarSet) branch(sig *Signature, cin, cout string, sets []string,
	params map[string]string, posType func(int) string, nin int, returnOnly bool) (ir.Expr, []ir.Stmt, string) {

	c := sig.Origin == OriginNativeStruct

	// Condition: one clause per distinct type parameter among the
	// inputs, fixing it to this signature's concrete type there.
	var conds []ir.Expr
	condSeen := make(map[string]bool)
	for p := 0; p < nin; p++ {
		set := sets[p]
		if len(set) <= 1 || condSeen[set] {
			continue
		}
		condSeen[set] = true
		conds = append(conds, ir.Lit(fmt.Sprintf("ufunc.TypeIs[%s, %s]()", params[set], TypeCode(cin[p]).GoType())))
	}
	cond := ir.And(conds...)

	var body []ir.Stmt

	// Input arguments: unwrap fused values, then cast from the
	// canonical code down to what the kernel declares.
	var args []ir.Expr
	for p := 0; p < len(sig.In); p++ {
		cc, kc := TypeCode(cin[p]), TypeCode(sig.In[p])
		src := fmt.Sprintf("x%d", p)
		if len(sets[p]) > 1 {
			src = fmt.Sprintf("any(x%d).(%s)", p, cc.GoType())
		}
		arg := CastExpr(cc, kc, src)
		if c && kc == CDouble {
			arg = fmt.Sprintf("ufunc.CdoubleOf(%s)", arg)
		}
		args = append(args, ir.Lit(arg))
	}

	// Output arguments: slots that need widening, unwrapping into a
	// type parameter, or the struct representation go through a
	// temporary; everything else receives the result variable's
	// address directly.
	off := 0
	if sig.Ret != Void {
		off = 1
	}
	type fixup struct {
		slot int
		expr string
	}
	var fixups []fixup
	for k := 0; k < len(sig.Out); k++ {
		slot := k + off
		kc, cc := TypeCode(sig.Out[k]), TypeCode(cout[slot])
		fused := len(sets[nin+slot]) > 1
		if !fused && kc == cc && !(c && kc == CDouble) {
			args = append(args, ir.Lit(fmt.Sprintf("&y%d", slot)))
			continue
		}
		tmp := fmt.Sprintf("t%d", k)
		body = append(body, ir.Var{Name: tmp, Type: kernelGoType(kc, c)})
		args = append(args, ir.Addr{X: ir.Ident(tmp)})
		expr := tmp
		if c && kc == CDouble {
			expr += ".Complex()"
		}
		expr = CastExpr(kc, cc, expr)
		if fused {
			expr = fmt.Sprintf("any(%s).(%s)", expr, posType(nin+slot))
		}
		fixups = append(fixups, fixup{slot: slot, expr: expr})
	}

	if sig.Ret == Void {
		// Any true kernel return here is a status value the
		// dispatcher discards.
		body = append(body, ir.CallStmt{Call: ir.CallExpr{Fn: funcVar(sig), Args: args}})
	} else {
		cc := TypeCode(cout[0])
		expr := ir.String(ir.CallExpr{Fn: funcVar(sig), Args: args})
		if c && sig.KernelRet == CDouble {
			expr += ".Complex()"
		}
		expr = CastExpr(sig.KernelRet, cc, expr)
		if len(sets[nin]) > 1 {
			expr = fmt.Sprintf("any(%s).(%s)", expr, posType(nin))
		}
		if returnOnly {
			body = append(body, ir.Return{X: ir.Lit(expr)})
		} else {
			body = append(body, ir.Assign{Dst: ir.Ident("y0"), Src: ir.Lit(expr)})
		}
	}
	for _, fx := range fixups {
		body = append(body, ir.Assign{Dst: ir.Ident(fmt.Sprintf("y%d", fx.slot)), Src: ir.Lit(fx.expr)})
	}

	spec := branchSpec(sig, cin, cout)
	return cond, body, spec
}

// branchSpec renders the canonical signature the branch serves, for
// the generation report.
func branchSpec(sig *Signature, cin, cout string) string {
	switch {
	case sig.Out == "" && sig.Ret != Void:
		return cin + "->" + string(cout[0])
	case sig.Ret == Void && len(sig.Out) == 1:
		return cin + "->" + cout
	case sig.Ret == Void:
		return cin + "*" + cout + "->v"
	default:
		// The return value dispatches as the first output; the report
		// lists it after the declared output arguments.
		return cin + "*" + cout[1:] + string(cout[0]) + "->v"
	}
}

// declString renders the head of a generated function for the report.
func declString(f *ir.Func) string {
	var b strings.Builder
	b.WriteString("func " + f.Name)
	if len(f.TypeParams) > 0 {
		b.WriteByte('[')
		for i, p := range f.TypeParams {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Name + " " + p.Type)
		}
		b.WriteByte(']')
	}
	b.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name + " " + p.Type)
	}
	b.WriteByte(')')
	switch len(f.Results) {
	case 0:
	case 1:
		b.WriteString(" " + f.Results[0].Type)
	default:
		types := make([]string, len(f.Results))
		for i, r := range f.Results {
			types[i] = r.Type
		}
		b.WriteString(" (" + strings.Join(types, ", ") + ")")
	}
	return b.String()
}

// docLines shapes a docs entry into a doc comment led by the exported
// name.
func docLines(name, doc string) []string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return nil
	}
	lines := strings.Split(doc, "\n")
	out := []string{name + " " + strings.TrimSpace(lines[0])}
	for _, l := range lines[1:] {
		out = append(out, strings.TrimRight(l, " \t"))
	}
	return out
}
