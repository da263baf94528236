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
	"regexp"
	"sort"
	"strings"
)

// Origin tags where a kernel's implementation lives and therefore how
// its forward declaration is resolved.
type Origin int

const (
	// OriginPlain kernels are ordinary functions in the output
	// package's build; they are declared directly.
	OriginPlain Origin = iota
	// OriginNativeStruct kernels use the struct representation for
	// double-complex values and are otherwise declared directly.
	OriginNativeStruct
	// OriginForeign kernels live in a different linkage environment
	// and are reached through an exported indirection slot populated
	// by the bridge artifact.
	OriginForeign
)

func (o Origin) String() string {
	switch o {
	case OriginNativeStruct:
		return "native-struct"
	case OriginForeign:
		return "foreign-linked"
	}
	return "plain"
}

// Signature is one concrete kernel: its identifying name (possibly
// parameterized by a generic axis, e.g. "evalChebyt[float64]"), input
// codes, output-parameter codes, return codes, and origin.
type Signature struct {
	Kernel string
	In     string
	Out    string
	// Ret is the dispatch-visible return code, Void when the kernel
	// returns nothing usable.
	Ret TypeCode
	// KernelRet is the kernel's true return code. It differs from Ret
	// when the registry discards the return value ("->*i"): the kernel
	// returns an int status that dispatch ignores.
	KernelRet TypeCode
	Origin    Origin
	Header    string
}

// RetIgnored reports whether the kernel's return value is discarded.
func (s *Signature) RetIgnored() bool {
	return s.Ret == Void && s.KernelRet != Void
}

// DispatchOut returns the output codes the dispatcher exposes: the
// return code, when present, occupies output slot 0 ahead of the
// declared output parameters.
func (s *Signature) DispatchOut() string {
	if s.Ret != Void {
		return string(s.Ret) + s.Out
	}
	return s.Out
}

// String renders the signature in canonical registry form.
func (s *Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Kernel)
	b.WriteString(": ")
	b.WriteString(s.In)
	if s.Out != "" {
		b.WriteByte('*')
		b.WriteString(s.Out)
	}
	b.WriteString("->")
	if s.Ret != Void {
		b.WriteByte(byte(s.Ret))
	}
	if s.RetIgnored() {
		b.WriteByte('*')
		b.WriteByte(byte(s.KernelRet))
	}
	return b.String()
}

// KernelGroup is one externally visible dispatch name owning an
// ordered list of signatures. Order is semantically significant:
// earlier signatures win when several variants could match a call.
type KernelGroup struct {
	Name string
	Sigs []Signature
}

// NIn and NOut are the fixed arities shared by every signature in the
// group.
func (g *KernelGroup) NIn() int  { return len(g.Sigs[0].In) }
func (g *KernelGroup) NOut() int { return len(g.Sigs[0].DispatchOut()) }

// Exposed reports whether the group belongs on the scalar dispatch
// surface. Underscore-prefixed names are internal plumbing with extra
// wrapper layers and are kept off it.
func (g *KernelGroup) Exposed() bool {
	return !strings.HasPrefix(g.Name, "_")
}

// String renders the group as one canonical registry line.
func (g *KernelGroup) String() string {
	sigs := make([]string, len(g.Sigs))
	headers := make([]string, len(g.Sigs))
	for i := range g.Sigs {
		sigs[i] = g.Sigs[i].String()
		headers[i] = g.Sigs[i].Header
	}
	// Collapse a uniformly broadcast header back to a single entry.
	uniform := true
	for _, h := range headers[1:] {
		if h != headers[0] {
			uniform = false
			break
		}
	}
	if uniform {
		headers = headers[:1]
	}
	return g.Name + " -- " + strings.Join(sigs, ", ") + " -- " + strings.Join(headers, ", ")
}

// ValidationError is a fatal generation-time error tied to one
// registry group. Any ValidationError aborts the whole run before any
// artifact is written.
type ValidationError struct {
	Group string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("group %s: %s", e.Group, e.Msg)
}

func validationErrorf(group, format string, args ...any) error {
	return &ValidationError{Group: group, Msg: fmt.Sprintf(format, args...)}
}

var (
	lineRe = regexp.MustCompile(`^([A-Za-z0-9_]+)\s*--\s*(.*?)\s*--\s*(.*)$`)
	// Out-parameter form: name: in*out->ret, where ret may carry a
	// discarded kernel return after '*'.
	sigOutRe = regexp.MustCompile(`^(.+?)\s*:\s*([fdgFDGil]*)\s*\*\s*([fdgFDGil]*)\s*->\s*([fdgFDGil]?)(\*[fdgFDGil])?$`)
	// Return-only form: name: in->ret.
	sigRetRe = regexp.MustCompile(`^(.+?)\s*:\s*([fdgFDGil]*)\s*->\s*([fdgFDGil]?)(\*[fdgFDGil])?$`)
)

// ParseRegistry parses the registry text, one kernel group per line,
// and returns the groups sorted by name for reproducible emission.
// Parsing performs no I/O and fails with a ValidationError naming the
// offending group.
func ParseRegistry(text string) ([]*KernelGroup, error) {
	var groups []*KernelGroup
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			return nil, validationErrorf("?", "unparseable registry line %q", line)
		}
		g, err := parseGroup(m[1], m[2], m[3])
		if err != nil {
			return nil, err
		}
		if seen[g.Name] {
			return nil, validationErrorf(g.Name, "duplicate group")
		}
		seen[g.Name] = true
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func parseGroup(name, sigsStr, headersStr string) (*KernelGroup, error) {
	sigs := splitList(sigsStr)
	headers := splitList(headersStr)
	if len(sigs) == 0 {
		return nil, validationErrorf(name, "no signatures")
	}
	if len(headers) == 1 {
		broadcast := make([]string, len(sigs))
		for i := range broadcast {
			broadcast[i] = headers[0]
		}
		headers = broadcast
	}
	if len(headers) != len(sigs) {
		return nil, validationErrorf(name, "number of headers and signatures doesn't match: %d -- %d",
			len(sigs), len(headers))
	}

	g := &KernelGroup{Name: name}
	for i, raw := range sigs {
		sig, err := parseSignature(name, raw)
		if err != nil {
			return nil, err
		}
		sig.Header = headers[i]
		sig.Origin = headerOrigin(headers[i])
		g.Sigs = append(g.Sigs, sig)
	}

	// Arity is fixed per group; reject mismatches at parse time.
	nin, nout := len(g.Sigs[0].In), len(g.Sigs[0].DispatchOut())
	for i := range g.Sigs {
		s := &g.Sigs[i]
		if len(s.In) != nin || len(s.DispatchOut()) != nout {
			return nil, validationErrorf(name, "signature %q does not have %d/%d input/output args",
				s.String(), nin, nout)
		}
		if s.Ret == Void && s.Out == "" {
			return nil, validationErrorf(name, "signature %q has no outputs and a void return", s.String())
		}
	}
	return g, nil
}

func parseSignature(group, raw string) (Signature, error) {
	if strings.Count(raw, "->") != 1 {
		return Signature{}, validationErrorf(group, "invalid signature: %q", raw)
	}
	retPart := raw[strings.Index(raw, "->")+2:]
	if strings.Count(retPart, "*") > 1 {
		return Signature{}, validationErrorf(group, "invalid signature: %q", raw)
	}

	m := sigOutRe.FindStringSubmatch(raw)
	if m == nil {
		m = sigRetRe.FindStringSubmatch(raw)
		if m == nil {
			return Signature{}, validationErrorf(group, "invalid signature: %q", raw)
		}
		// Insert an empty out-parameter slot to unify the two forms.
		m = []string{m[0], m[1], m[2], "", m[3], m[4]}
	}

	sig := Signature{Kernel: m[1], In: m[2], Out: m[3], Ret: Void, KernelRet: Void}
	if m[4] != "" {
		sig.Ret = TypeCode(m[4][0])
		sig.KernelRet = sig.Ret
	}
	if m[5] != "" {
		if sig.Ret != Void {
			return Signature{}, validationErrorf(group, "invalid signature: %q has both a return and an ignored return", raw)
		}
		sig.KernelRet = TypeCode(m[5][1])
	}
	return sig, nil
}

// headerOrigin maps the header's suffix marker to a kernel origin:
// "++" for foreign linkage, ".h" for native-struct kernels, anything
// else is plain.
func headerOrigin(header string) Origin {
	switch {
	case strings.HasSuffix(header, "++"):
		return OriginForeign
	case strings.HasSuffix(header, ".h"):
		return OriginNativeStruct
	}
	return OriginPlain
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
