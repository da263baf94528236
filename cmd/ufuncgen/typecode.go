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
)

// TypeCode is a one-character primitive numeric kind from the registry
// alphabet.
type TypeCode byte

const (
	Float       TypeCode = 'f' // float32
	Double      TypeCode = 'd' // float64
	LongDouble  TypeCode = 'g' // ufunc.Extended
	CFloat      TypeCode = 'F' // complex64
	CDouble     TypeCode = 'D' // complex128
	CLongDouble TypeCode = 'G' // ufunc.CExtended
	Int         TypeCode = 'i' // int32
	Long        TypeCode = 'l' // int64
	Void        TypeCode = 'v' // no return value
)

// castOrder ranks codes for variant sorting: integer kinds first, then
// real floats by width, then complex kinds by width.
const castOrder = "ilfdgFDG"

// Rank returns the precedence rank of the code, or -1 for Void.
func (c TypeCode) Rank() int {
	return strings.IndexByte(castOrder, byte(c))
}

// Valid reports whether c is a member of the registry alphabet.
func (c TypeCode) Valid() bool {
	return c == Void || c.Rank() >= 0
}

// IsInteger reports whether c is an integer kind.
func (c TypeCode) IsInteger() bool { return c == Int || c == Long }

// IsComplex reports whether c is a complex kind.
func (c TypeCode) IsComplex() bool { return c == CFloat || c == CDouble || c == CLongDouble }

// IsReal reports whether c is a real floating-point kind.
func (c TypeCode) IsReal() bool { return c == Float || c == Double || c == LongDouble }

// GoType returns the Go type generated code uses for the code.
func (c TypeCode) GoType() string {
	switch c {
	case Float:
		return "float32"
	case Double:
		return "float64"
	case LongDouble:
		return "ufunc.Extended"
	case CFloat:
		return "complex64"
	case CDouble:
		return "complex128"
	case CLongDouble:
		return "ufunc.CExtended"
	case Int:
		return "int32"
	case Long:
		return "int64"
	}
	return ""
}

// SentinelExpr returns the Go expression for the code's sentinel
// value.
func (c TypeCode) SentinelExpr() string {
	return fmt.Sprintf("ufunc.Sentinel[%s]()", c.GoType())
}

// dangerousDowncast lists the (source, destination) pairs for which a
// narrowing cast may silently lose information and therefore needs an
// equality round-trip guard in generated loops.
var dangerousDowncast = map[[2]TypeCode]bool{
	{CFloat, Int}: true, {CFloat, Long}: true, {CFloat, Float}: true,
	{CFloat, Double}: true, {CFloat, LongDouble}: true,
	{CDouble, Int}: true, {CDouble, Long}: true, {CDouble, Float}: true,
	{CDouble, Double}: true, {CDouble, LongDouble}: true,
	{CLongDouble, Int}: true, {CLongDouble, Long}: true, {CLongDouble, Float}: true,
	{CLongDouble, Double}: true, {CLongDouble, LongDouble}: true,
	{Float, Int}: true, {Float, Long}: true,
	{Double, Int}: true, {Double, Long}: true,
	{LongDouble, Int}: true, {LongDouble, Long}: true,
	{Long, Int}: true,
}

// DangerousDowncast reports whether casting from src to dst needs a
// runtime equality guard.
func DangerousDowncast(src, dst TypeCode) bool {
	return dangerousDowncast[[2]TypeCode{src, dst}]
}

// CastExpr returns the Go expression converting src, an expression of
// from's Go type, to to's Go type. Complex-to-real conversions take
// the real part, matching the C conversion rule the kernels were
// written against.
func CastExpr(from, to TypeCode, src string) string {
	if from == to {
		return src
	}
	switch {
	case to.IsComplex() && from.IsComplex():
		return fmt.Sprintf("%s(%s)", to.GoType(), src)
	case to.IsComplex():
		// Real or integer source: widen to float64 and lift.
		lifted := fmt.Sprintf("complex(float64(%s), 0)", src)
		if to == CDouble {
			return lifted
		}
		return fmt.Sprintf("%s(%s)", to.GoType(), lifted)
	case from.IsComplex():
		re := fmt.Sprintf("real(%s)", src)
		if from == CLongDouble {
			re = fmt.Sprintf("real(complex128(%s))", src)
		}
		// re has type float32 for CFloat sources, float64 otherwise.
		if (from == CFloat && to == Float) || (from != CFloat && to == Double) {
			return re
		}
		return fmt.Sprintf("%s(%s)", to.GoType(), re)
	default:
		return fmt.Sprintf("%s(%s)", to.GoType(), src)
	}
}

// GuardExpr returns the equality round-trip test for a dangerous
// narrowing: the already-narrowed value is lifted back to the source
// type and compared against the original expression. NaN sources fail
// the test, which is the intended behavior.
func GuardExpr(from, to TypeCode, narrowed, src string) string {
	return fmt.Sprintf("%s == %s", CastExpr(to, from, narrowed), src)
}

// mapCodes rewrites every occurrence of a source code with its paired
// destination code.
func mapCodes(codes string, pairs ...[2]TypeCode) string {
	var b strings.Builder
	for i := 0; i < len(codes); i++ {
		c := TypeCode(codes[i])
		for _, p := range pairs {
			if c == p[0] {
				c = p[1]
				break
			}
		}
		b.WriteByte(byte(c))
	}
	return b.String()
}

// rankLess compares two code strings by their rank tuples.
func rankLess(a, b string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		ra, rb := TypeCode(a[i]).Rank(), TypeCode(b[i]).Rank()
		if ra != rb {
			return ra < rb
		}
	}
	return len(a) < len(b)
}
