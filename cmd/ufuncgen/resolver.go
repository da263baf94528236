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

import "strings"

// mangleKernel turns a kernel reference, possibly a generic
// instantiation like "evalChebyt[float64]", into an identifier
// fragment.
func mangleKernel(name string) string {
	r := strings.NewReplacer("[", "_", "]", "_", " ", "_", ",", "_", ".", "_")
	return r.Replace(name)
}

// funcVar names the variable generated code calls a kernel through:
// a typed declaration var for plain and native-struct kernels, an
// exported indirection slot for foreign-linked ones.
func funcVar(sig *Signature) string {
	if sig.Origin == OriginForeign {
		return "Export" + upperFirst(mangleKernel(sig.Kernel))
	}
	return "_func_" + mangleKernel(sig.Kernel)
}

// Decl is one resolved kernel declaration.
type Decl struct {
	Var    string
	Type   string
	Kernel string
	Origin Origin
	Header string
}

// BridgeEntry is one row of the bridge manifest: the exported slot a
// foreign-linked kernel is reached through and the function type its
// provider must populate it with.
type BridgeEntry struct {
	Slot   string `yaml:"slot"`
	Kernel string `yaml:"kernel"`
	Header string `yaml:"header"`
	Type   string `yaml:"type"`
}

// DeclSet resolves kernel declarations with first-wins deduplication
// keyed by kernel identity and origin. Declaring a kernel binds its
// name to an exact function type; reusing the name with a different
// shape, or under a second origin that implies a different type, is an
// error rather than a silent second declaration. A second origin whose
// type agrees shares the declaration, since one Go function backs
// both.
type DeclSet struct {
	byVar  map[string]int // declaration var name -> index into decls
	decls  []Decl
	bridge []BridgeEntry
}

func NewDeclSet() *DeclSet {
	return &DeclSet{byVar: make(map[string]int)}
}

func (ds *DeclSet) Decls() []Decl         { return ds.decls }
func (ds *DeclSet) Bridge() []BridgeEntry { return ds.bridge }

// Add resolves the declaration for one signature's kernel.
func (ds *DeclSet) Add(group string, sig *Signature) error {
	name := funcVar(sig)
	typ := kernelFuncType(sig, structComplexSig(sig))
	if i, ok := ds.byVar[name]; ok {
		prev := ds.decls[i]
		if prev.Type == typ {
			return nil
		}
		if prev.Origin != sig.Origin {
			return validationErrorf(group,
				"kernel %s declared under %s and %s origins with incompatible types %s and %s",
				sig.Kernel, prev.Origin, sig.Origin, prev.Type, typ)
		}
		return validationErrorf(group, "kernel %s declared with incompatible types %s and %s",
			sig.Kernel, prev.Type, typ)
	}
	ds.byVar[name] = len(ds.decls)
	ds.decls = append(ds.decls, Decl{
		Var: name, Type: typ, Kernel: sig.Kernel, Origin: sig.Origin, Header: sig.Header,
	})
	if sig.Origin == OriginForeign {
		ds.bridge = append(ds.bridge, BridgeEntry{
			Slot: name, Kernel: sig.Kernel, Header: sig.Header, Type: typ,
		})
	}
	return nil
}
