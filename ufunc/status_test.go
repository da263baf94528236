package ufunc

import "testing"

func TestDomainAccumulates(t *testing.T) {
	var st Status
	st.Domain("gamma", "invalid input argument")
	st.Domain("gamma", "invalid output")
	if len(st.Errors) != 2 {
		t.Fatalf("got %d errors, want 2", len(st.Errors))
	}
	if st.Errors[0].Kernel != "gamma" || st.Errors[0].Reason != "invalid input argument" {
		t.Errorf("first error = %+v", st.Errors[0])
	}
}

func TestDomainNilReceiver(t *testing.T) {
	var st *Status
	st.Domain("gamma", "invalid output") // must not panic
}

func TestCheckFPEDrains(t *testing.T) {
	fpeFlags.Store(0)

	var st Status
	RaiseFPE(FPEOverflow | FPEDivByZero)
	st.CheckFPE("binom")

	if len(st.Errors) != 2 {
		t.Fatalf("got %d errors, want 2: %+v", len(st.Errors), st.Errors)
	}
	reasons := map[string]bool{}
	for _, e := range st.Errors {
		if e.Kernel != "binom" {
			t.Errorf("error tagged %q, want binom", e.Kernel)
		}
		reasons[e.Reason] = true
	}
	if !reasons["floating-point exception: overflow"] || !reasons["floating-point exception: divide by zero"] {
		t.Errorf("reasons = %v", reasons)
	}

	// Drained: a second check sees nothing.
	st.Errors = nil
	st.CheckFPE("binom")
	if len(st.Errors) != 0 {
		t.Errorf("second drain produced %+v", st.Errors)
	}
}

func TestRaiseFPEMerges(t *testing.T) {
	fpeFlags.Store(0)

	RaiseFPE(FPEInvalid)
	RaiseFPE(FPEInvalid | FPEUnderflow)

	var st Status
	st.CheckFPE("gamma")
	if len(st.Errors) != 2 {
		t.Errorf("got %d errors, want 2: %+v", len(st.Errors), st.Errors)
	}
}
