// Package ufunc provides the runtime support types consumed by code
// emitted by ufuncgen.
//
// Generated elementwise loops and scalar dispatch functions reference
// this package for sentinel values, the per-call domain-error
// accumulator, the floating-point exception drain, and the
// registration table tying loop functions to kernel data.
//
// Basic usage of a generated table:
//
//	import "github.com/ajroetker/go-ufunc/ufunc"
//
//	var st ufunc.Status
//	row, _ := special.UfuncGamma.Select("d")
//	row.Loop(args, n, steps, row.Data, &st)
//
// The caller owns the Status accumulator; generated code never keeps
// state across calls.
package ufunc

import "math"

// Extended is the extended-precision real kind. Go has no native long
// double, so it is a distinct defined type over float64: distinct so
// that generated type switches can tell it apart from Double, float64
// so that arithmetic stays honest about the underlying precision.
type Extended float64

// CExtended is the extended-precision complex kind, the complex
// counterpart of Extended.
type CExtended complex128

// Cdouble mirrors the two-field struct layout that native-struct
// kernels use for double-complex values instead of complex128.
type Cdouble struct {
	Re float64
	Im float64
}

// CdoubleOf converts a complex128 to the native-struct representation.
func CdoubleOf(z complex128) Cdouble {
	return Cdouble{Re: real(z), Im: imag(z)}
}

// Complex converts the native-struct representation back to complex128.
func (c Cdouble) Complex() complex128 {
	return complex(c.Re, c.Im)
}

// Reals is a constraint for the real floating-point kinds.
type Reals interface {
	float32 | float64 | Extended
}

// Complexes is a constraint for the complex kinds.
type Complexes interface {
	complex64 | complex128 | CExtended
}

// Ints is a constraint for the integer kinds.
type Ints interface {
	int32 | int64
}

// Numbers is a constraint for every kind a kernel signature can name.
type Numbers interface {
	Reals | Complexes | Ints
}

// TypeIs reports whether the type argument T is exactly U. Generated
// dispatch ladders use it to select the branch matching the caller's
// static types.
func TypeIs[T, U any]() bool {
	var zero T
	_, ok := any(zero).(U)
	return ok
}

// SentinelPattern is the bit pattern substituted for integer outputs
// when a guarded narrowing cast fails.
const SentinelPattern = 0xbad0bad0

// SentinelInt64 is SentinelPattern widened to int64.
const SentinelInt64 int64 = SentinelPattern

// sentinelBits carries SentinelPattern as a runtime value; the
// pattern does not fit in int32 as a constant expression.
var sentinelBits uint32 = SentinelPattern

// SentinelInt32 is SentinelPattern reinterpreted as int32.
var SentinelInt32 = int32(sentinelBits)

// Sentinel returns the deterministic substitute value for T: a quiet
// NaN for floating and complex kinds, SentinelPattern for integer
// kinds. Generated code writes it to outputs whose guarded cast failed
// and to every output of an unmatched dispatch branch.
func Sentinel[T any]() T {
	var v T
	switch p := any(&v).(type) {
	case *float32:
		*p = float32(math.NaN())
	case *float64:
		*p = math.NaN()
	case *Extended:
		*p = Extended(math.NaN())
	case *complex64:
		*p = complex(float32(math.NaN()), float32(math.NaN()))
	case *complex128:
		*p = complex(math.NaN(), math.NaN())
	case *CExtended:
		*p = CExtended(complex(math.NaN(), math.NaN()))
	case *int32:
		*p = SentinelInt32
	case *int64:
		*p = SentinelInt64
	case *Cdouble:
		*p = Cdouble{Re: math.NaN(), Im: math.NaN()}
	}
	return v
}
