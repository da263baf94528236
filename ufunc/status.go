package ufunc

import "sync/atomic"

// DomainError records one non-fatal runtime error raised by generated
// code: a guarded narrowing cast that failed its equality round-trip,
// or a floating-point exception left behind by a kernel call.
type DomainError struct {
	// Kernel is the public dispatch name of the group that raised the
	// error, not the low-level kernel identifier.
	Kernel string
	Reason string
}

// Status is the per-call domain-error accumulator. Each loop or
// dispatch invocation gets its own Status; generated code appends to
// it and never aborts. Whether the accumulated errors are surfaced as
// warnings or silently counted is the host runtime's policy.
type Status struct {
	Errors []DomainError
}

// Domain records a domain error. A nil receiver drops the error,
// which lets hosts opt out of accumulation entirely.
func (st *Status) Domain(kernel, reason string) {
	if st == nil {
		return
	}
	st.Errors = append(st.Errors, DomainError{Kernel: kernel, Reason: reason})
}

// Floating-point exception flags. Go cannot read the hardware FPU
// status word, so kernels that detect exceptional conditions raise
// these explicitly via RaiseFPE.
const (
	FPEInvalid = 1 << iota
	FPEDivByZero
	FPEOverflow
	FPEUnderflow
)

// fpeFlags is process-global by necessity: kernels are plain functions
// with no handle on the per-call Status, mirroring how hardware
// exception flags are ambient state. Concurrent invocations therefore
// share the word, and a drain can attribute another call's exception
// to its own dispatch name. Hosts that need exact attribution must
// serialize calls into kernels that raise exceptions.
var fpeFlags atomic.Uint32

// RaiseFPE sets pending floating-point exception flags. Kernel
// implementations call it in place of hardware exception state.
func RaiseFPE(mask uint32) {
	for {
		old := fpeFlags.Load()
		if old&mask == mask || fpeFlags.CompareAndSwap(old, old|mask) {
			return
		}
	}
}

// CheckFPE drains any pending floating-point exception state into the
// accumulator, tagged with the given dispatch name. Generated loops
// call it once after the full elementwise pass.
func (st *Status) CheckFPE(kernel string) {
	flags := fpeFlags.Swap(0)
	if flags == 0 {
		return
	}
	if flags&FPEDivByZero != 0 {
		st.Domain(kernel, "floating-point exception: divide by zero")
	}
	if flags&FPEOverflow != 0 {
		st.Domain(kernel, "floating-point exception: overflow")
	}
	if flags&FPEUnderflow != 0 {
		st.Domain(kernel, "floating-point exception: underflow")
	}
	if flags&FPEInvalid != 0 {
		st.Domain(kernel, "floating-point exception: invalid value")
	}
}
