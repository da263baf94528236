package ufunc

import "unsafe"

// LoopFunc is the shape of a generated elementwise loop: n elements
// read from and written to raw buffers advanced by per-buffer byte
// strides, the kernel reached through data, domain errors accumulated
// on st. Inputs come first in args and steps, outputs after.
type LoopFunc func(args []unsafe.Pointer, n int, steps []int, data *Data, st *Status)

// Data carries the kernel bound to one dispatch row. Loops are shared
// across kernels with the same shape; Func is asserted by the loop to
// the concrete function type it was generated for.
type Data struct {
	// Func is the kernel function.
	Func any
	// Name is the public dispatch name used when reporting domain
	// errors raised while running this row.
	Name string
}

// Row is one entry of a dispatch table: the loop to run, the type
// codes it accepts (input codes followed by output codes), and the
// kernel it calls.
type Row struct {
	Loop  LoopFunc
	Types string
	Data  *Data
}

// Ufunc is the array-oriented dispatch table for one kernel group.
// Rows are ordered: earlier rows win when several could match, so
// hosts should take the first acceptable row.
type Ufunc struct {
	Name string
	NIn  int
	NOut int
	Doc  string
	Rows []Row
}

// New builds a dispatch table. Generated code is the only intended
// caller.
func New(name string, nin, nout int, doc string, rows ...Row) *Ufunc {
	return &Ufunc{Name: name, NIn: nin, NOut: nout, Doc: doc, Rows: rows}
}

// Select returns the first row whose input codes match in exactly.
// Promotion of inputs to a compatible row is the host runtime's job.
func (u *Ufunc) Select(in string) (Row, bool) {
	for _, r := range u.Rows {
		if len(r.Types) >= u.NIn && r.Types[:u.NIn] == in {
			return r, true
		}
	}
	return Row{}, false
}

// SlicePtr returns the address of the first element of s, for building
// loop argument vectors. The slice must be non-empty.
func SlicePtr[T any](s []T) unsafe.Pointer {
	return unsafe.Pointer(&s[0])
}

// Stride returns the contiguous element stride for T in bytes.
func Stride[T any]() int {
	var v T
	return int(unsafe.Sizeof(v))
}
