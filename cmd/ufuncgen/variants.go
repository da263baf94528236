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
	"sort"
	"strings"
)

// Variant is one row of a group's dispatch table: the signature that
// owns it plus the input and output codes the dispatcher accepts for
// it. Produced by ExpandVariants, consumed by the loop synthesizer.
type Variant struct {
	Sig *Signature
	In  string
	Out string
}

// intToLong is the canonicalization map: short integers always also
// dispatch as long integers, the standard width on 64-bit platforms.
var intToLong = [][2]TypeCode{{Int, Long}}

// reducedPrecision additionally maps double-precision kinds to their
// single-precision counterparts, so single-precision inputs dispatch
// without a silent upcast.
var reducedPrecision = [][2]TypeCode{{Int, Long}, {Double, Float}, {CDouble, CFloat}}

// variantMaps returns the code rewrites to offer for a signature: the
// identity, the int-to-long canonicalization, and, for signatures with
// no integer input at all, the reduced-precision map. Signatures with
// any integer input never get the reduced-precision variant: when the
// integer arguments are arrays and the float arguments scalars, a
// float32 row would win type inference it must not win.
func variantMaps(in string) [][][2]TypeCode {
	maps := [][][2]TypeCode{nil, intToLong}
	if !strings.ContainsAny(in, "il") {
		maps = append(maps, reducedPrecision)
	}
	return maps
}

// ExpandVariants computes the ordered, deduplicated dispatch table for
// a group. Each signature contributes its natural variant and its
// canonicalized variants; the first signature to produce a given input
// tuple owns it, and the final table is stable-sorted by the rank
// tuple of its input codes so that rank ties keep declaration order.
func ExpandVariants(g *KernelGroup) []Variant {
	seen := make(map[string]bool)
	var variants []Variant

	add := func(sig *Signature, maps [][2]TypeCode) {
		in := mapCodes(sig.In, maps...)
		if seen[in] {
			return
		}
		seen[in] = true
		variants = append(variants, Variant{
			Sig: sig,
			In:  in,
			Out: mapCodes(sig.DispatchOut(), maps...),
		})
	}

	// Natural and canonicalized variants first, in declaration order,
	// so earlier signatures claim contested input tuples.
	for i := range g.Sigs {
		add(&g.Sigs[i], nil)
		add(&g.Sigs[i], intToLong)
	}
	// Then the supplementary variants.
	for i := range g.Sigs {
		for _, m := range variantMaps(g.Sigs[i].In) {
			add(&g.Sigs[i], m)
		}
	}

	sort.SliceStable(variants, func(i, j int) bool {
		return rankLess(variants[i].In, variants[j].In)
	})
	return variants
}
