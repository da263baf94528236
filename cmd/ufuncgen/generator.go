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
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Artifact is one output file of a generation run.
type Artifact struct {
	Name string
	Data []byte
}

// Generator orchestrates a generation run.
type Generator struct {
	RegistryFile string // registry of kernel groups (required)
	DocsFile     string // YAML docs, group name -> text
	OutputDir    string // output directory
	OutputPrefix string // output file prefix
	PackageOut   string // output package name
	Verbose      bool   // report generated dispatchers on stderr
}

// rowSpec is one dispatch table row handed to the emitter.
type rowSpec struct {
	Loop    string
	Types   string
	FuncRef string // expression yielding the kernel value
}

// tableSpec is one dispatch table handed to the emitter.
type tableSpec struct {
	Group string
	Var   string
	NIn   int
	NOut  int
	Doc   string
	Rows  []rowSpec
}

// tableVar names the generated dispatch table variable for a group;
// internal groups get an unexported one.
func tableVar(name string) string {
	if trimmed, ok := strings.CutPrefix(name, "_"); ok {
		return "ufunc" + upperFirst(trimmed)
	}
	return "Ufunc" + upperFirst(name)
}

// Generate runs the compilation pipeline on registry text: parse,
// expand variants, synthesize loops and scalar dispatchers, resolve
// declarations, and assemble the output files. It performs no I/O, and
// any error means no artifact should be written.
func (g *Generator) Generate(registry string, docs map[string]string) ([]Artifact, []GroupSummary, error) {
	groups, err := ParseRegistry(registry)
	if err != nil {
		return nil, nil, err
	}

	loops := NewLoopCache()
	scalars := NewScalarSet()
	decls := NewDeclSet()
	var tables []tableSpec

	for _, grp := range groups {
		doc, ok := docs[grp.Name]
		if !ok && grp.Exposed() {
			return nil, nil, validationErrorf(grp.Name, "no docs entry")
		}

		for i := range grp.Sigs {
			if err := decls.Add(grp.Name, &grp.Sigs[i]); err != nil {
				return nil, nil, err
			}
		}

		table := tableSpec{
			Group: grp.Name,
			Var:   tableVar(grp.Name),
			NIn:   grp.NIn(),
			NOut:  grp.NOut(),
			Doc:   doc,
		}
		for _, v := range ExpandVariants(grp) {
			table.Rows = append(table.Rows, rowSpec{
				Loop:    loops.Loop(v),
				Types:   v.In + v.Out,
				FuncRef: kernelRef(v.Sig),
			})
		}
		tables = append(tables, table)

		if grp.Exposed() {
			scalars.Add(grp, doc)
		}
	}

	em := &emitter{pkg: g.PackageOut, prefix: g.OutputPrefix}
	artifacts, err := em.assemble(loops, tables, scalars, decls)
	if err != nil {
		return nil, nil, err
	}
	return artifacts, scalars.Summaries(), nil
}

// kernelRef is the expression a dispatch table row stores as its
// kernel. Plain and native-struct kernels are referenced through their
// declaration variable; foreign ones go through a wrapper so the table
// picks up the slot's value at call time, after the bridge provider
// has populated it.
func kernelRef(sig *Signature) string {
	name := funcVar(sig)
	if sig.Origin != OriginForeign {
		return name
	}
	sc := structComplexSig(sig)
	var params, argNames []string
	for i := 0; i < len(sig.In); i++ {
		params = append(params, fmt.Sprintf("x%d %s", i, kernelGoType(TypeCode(sig.In[i]), sc)))
		argNames = append(argNames, fmt.Sprintf("x%d", i))
	}
	for i := 0; i < len(sig.Out); i++ {
		params = append(params, fmt.Sprintf("y%d *%s", i, kernelGoType(TypeCode(sig.Out[i]), sc)))
		argNames = append(argNames, fmt.Sprintf("y%d", i))
	}
	call := fmt.Sprintf("%s(%s)", name, strings.Join(argNames, ", "))
	if sig.KernelRet == Void {
		return fmt.Sprintf("func(%s) { %s }", strings.Join(params, ", "), call)
	}
	return fmt.Sprintf("func(%s) %s { return %s }",
		strings.Join(params, ", "), kernelGoType(sig.KernelRet, sc), call)
}

// Run loads the inputs, generates, and writes every artifact. Nothing
// is written unless the whole run succeeds.
func (g *Generator) Run() error {
	registry, err := os.ReadFile(g.RegistryFile)
	if err != nil {
		return err
	}
	docs := make(map[string]string)
	if g.DocsFile != "" {
		raw, err := os.ReadFile(g.DocsFile)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(raw, &docs); err != nil {
			return fmt.Errorf("%s: %w", g.DocsFile, err)
		}
	}

	artifacts, summaries, err := g.Generate(string(registry), docs)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return err
	}
	for _, a := range artifacts {
		path := filepath.Join(g.OutputDir, a.Name)
		if err := os.WriteFile(path, a.Data, 0o644); err != nil {
			return err
		}
		if g.Verbose {
			fmt.Fprintf(os.Stderr, "wrote %s\n", path)
		}
	}
	if g.Verbose {
		for _, s := range summaries {
			fmt.Fprintf(os.Stderr, "%s: %s\n", s.Name, s.Decl)
		}
	}
	return nil
}
