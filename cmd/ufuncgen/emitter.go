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

	"golang.org/x/tools/imports"
	"gopkg.in/yaml.v3"

	"github.com/ajroetker/go-ufunc/cmd/ufuncgen/ir"
)

const runtimeImport = "github.com/ajroetker/go-ufunc/ufunc"

const genHeader = "// Code generated by ufuncgen. DO NOT EDIT."

// emitter assembles generation results into output files.
type emitter struct {
	pkg    string
	prefix string
}

func (e *emitter) fileName(kind string) string {
	return fmt.Sprintf("z_%s_%s.gen.go", e.prefix, kind)
}

// goFile formats a generated Go source file, fixing up its import
// block.
func (e *emitter) goFile(name string, body func(*strings.Builder)) (Artifact, error) {
	var b strings.Builder
	b.WriteString(genHeader + "\n\n")
	b.WriteString("package " + e.pkg + "\n\n")
	b.WriteString("import (\n")
	b.WriteString("\t\"unsafe\"\n\n")
	b.WriteString("\tufunc \"" + runtimeImport + "\"\n")
	b.WriteString(")\n\n")
	body(&b)

	formatted, err := imports.Process(name, []byte(b.String()), nil)
	if err != nil {
		return Artifact{}, fmt.Errorf("%s: formatting generated code: %w", name, err)
	}
	return Artifact{Name: name, Data: formatted}, nil
}

func (e *emitter) assemble(loops *LoopCache, tables []tableSpec, scalars *ScalarSet, decls *DeclSet) ([]Artifact, error) {
	var artifacts []Artifact

	loopsFile, err := e.goFile(e.fileName("loops"), func(b *strings.Builder) {
		em := &ir.Emitter{}
		for _, f := range loops.Funcs() {
			em.Func(f)
		}
		b.WriteString(em.String())
	})
	if err != nil {
		return nil, err
	}
	artifacts = append(artifacts, loopsFile)

	tablesFile, err := e.goFile(e.fileName("ufuncs"), func(b *strings.Builder) {
		e.writeDecls(b, decls.Decls())
		for _, t := range tables {
			e.writeTable(b, t)
		}
	})
	if err != nil {
		return nil, err
	}
	artifacts = append(artifacts, tablesFile)

	scalarFile, err := e.goFile(e.fileName("scalar"), func(b *strings.Builder) {
		e.writeConstraints(b, scalars.FusedSets())
		em := &ir.Emitter{}
		for _, f := range scalars.Funcs() {
			em.Func(f)
		}
		b.WriteString(em.String())
	})
	if err != nil {
		return nil, err
	}
	artifacts = append(artifacts, scalarFile)

	if bridge := decls.Bridge(); len(bridge) > 0 {
		bridgeFile, err := e.goFile(e.fileName("bridge"), func(b *strings.Builder) {
			b.WriteString("// Indirection slots for foreign-linked kernels. A bridge\n")
			b.WriteString("// provider populates these from an init function before any\n")
			b.WriteString("// dispatch table or scalar dispatcher is used; the manifest\n")
			b.WriteString("// lists what it must supply.\n")
			b.WriteString("var (\n")
			for _, entry := range bridge {
				fmt.Fprintf(b, "\t%s %s\n", entry.Slot, entry.Type)
			}
			b.WriteString(")\n")
		})
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, bridgeFile)

		manifest, err := e.bridgeManifest(bridge)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, manifest)
	}
	return artifacts, nil
}

// writeDecls emits one typed declaration variable per plain and
// native-struct kernel, binding the kernel name to the exact function
// type the generated code calls it with. A kernel whose definition
// drifts from its registry signature fails to compile here instead of
// misbehaving at run time.
func (e *emitter) writeDecls(b *strings.Builder, decls []Decl) {
	var direct []Decl
	for _, d := range decls {
		if d.Origin != OriginForeign {
			direct = append(direct, d)
		}
	}
	if len(direct) == 0 {
		return
	}
	b.WriteString("var (\n")
	for _, d := range direct {
		fmt.Fprintf(b, "\t%s %s = %s\n", d.Var, d.Type, d.Kernel)
	}
	b.WriteString(")\n\n")
}

func (e *emitter) writeTable(b *strings.Builder, t tableSpec) {
	fmt.Fprintf(b, "// %s is the dispatch table for %s.\n", t.Var, t.Group)
	fmt.Fprintf(b, "var %s = ufunc.New(%q, %d, %d, %q,\n", t.Var, t.Group, t.NIn, t.NOut, t.Doc)
	for _, r := range t.Rows {
		fmt.Fprintf(b, "\tufunc.Row{Loop: %s, Types: %q, Data: &ufunc.Data{Func: %s, Name: %q}},\n",
			r.Loop, r.Types, r.FuncRef, t.Group)
	}
	b.WriteString(")\n\n")
}

// writeConstraints emits the constraint interfaces shared by the
// scalar dispatchers, one per distinct code set.
func (e *emitter) writeConstraints(b *strings.Builder, sets []string) {
	for _, set := range sets {
		types := make([]string, len(set))
		for i := 0; i < len(set); i++ {
			types[i] = TypeCode(set[i]).GoType()
		}
		fmt.Fprintf(b, "// %s constrains a fused argument position to the kinds its\n", constraintName(set))
		b.WriteString("// kernels cover.\n")
		fmt.Fprintf(b, "type %s interface {\n\t%s\n}\n\n", constraintName(set), strings.Join(types, " | "))
	}
}

// bridgeManifest renders the YAML manifest a bridge provider consumes.
func (e *emitter) bridgeManifest(bridge []BridgeEntry) (Artifact, error) {
	doc := struct {
		Package string        `yaml:"package"`
		Exports []BridgeEntry `yaml:"exports"`
	}{Package: e.pkg, Exports: bridge}

	raw, err := yaml.Marshal(&doc)
	if err != nil {
		return Artifact{}, err
	}
	data := append([]byte("# "+genHeader[3:]+"\n"), raw...)
	return Artifact{Name: e.prefix + "_bridge.yaml", Data: data}, nil
}
