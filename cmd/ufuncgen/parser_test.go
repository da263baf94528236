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
	"errors"
	"strings"
	"testing"
)

func parseOne(t *testing.T, line string) *KernelGroup {
	t.Helper()
	groups, err := ParseRegistry(line)
	if err != nil {
		t.Fatalf("ParseRegistry(%q) error = %v", line, err)
	}
	if len(groups) != 1 {
		t.Fatalf("ParseRegistry(%q) returned %d groups, want 1", line, len(groups))
	}
	return groups[0]
}

func TestParseSignatureForms(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		in      string
		out     string
		ret     TypeCode
		kret    TypeCode
		ignored bool
	}{
		{"ReturnOnly", "gamma -- gamma: d->d -- loggamma.go", "d", "", Double, Double, false},
		{"OutParams", "fresnel -- fresnel: d*dd->*i -- cephes.go", "d", "dd", Void, Int, true},
		{"OutAndReturn", "struveAsymp -- struveAsymp: ddd*d->d -- struve.go", "ddd", "d", Double, Double, false},
		{"ComplexReturn", "wofz -- wofz: D->D -- faddeeva++", "D", "", CDouble, CDouble, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := parseOne(t, tt.line)
			s := &g.Sigs[0]
			if s.In != tt.in || s.Out != tt.out || s.Ret != tt.ret || s.KernelRet != tt.kret {
				t.Errorf("parsed %q as in=%q out=%q ret=%c kret=%c", tt.line, s.In, s.Out, s.Ret, s.KernelRet)
			}
			if s.RetIgnored() != tt.ignored {
				t.Errorf("RetIgnored() = %v, want %v", s.RetIgnored(), tt.ignored)
			}
		})
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		header string
		want   Origin
	}{
		{"cephes.go", OriginPlain},
		{"amos_wrappers.h", OriginNativeStruct},
		{"faddeeva++", OriginForeign},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			g := parseOne(t, "f -- f: d->d -- "+tt.header)
			if got := g.Sigs[0].Origin; got != tt.want {
				t.Errorf("origin for header %q = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestParseHeaderBroadcast(t *testing.T) {
	g := parseOne(t, "gamma -- gamma: d->d, cgamma: D->D -- loggamma.go")
	for i := range g.Sigs {
		if g.Sigs[i].Header != "loggamma.go" {
			t.Errorf("sig %d header = %q, want broadcast loggamma.go", i, g.Sigs[i].Header)
		}
	}

	g = parseOne(t, "gamma -- gamma: d->d, cgamma: D->D -- a.go, b.go")
	if g.Sigs[0].Header != "a.go" || g.Sigs[1].Header != "b.go" {
		t.Errorf("zipped headers = %q, %q", g.Sigs[0].Header, g.Sigs[1].Header)
	}
}

func TestParseDispatchOut(t *testing.T) {
	tests := []struct {
		sig  string
		want string
	}{
		{"f: d->d", "d"},
		{"f: d*dd->*i", "dd"},
		{"f: ddd*d->d", "dd"},
		{"f: d*dddd->*i", "dddd"},
	}

	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			g := parseOne(t, "f -- "+tt.sig+" -- h.go")
			if got := g.Sigs[0].DispatchOut(); got != tt.want {
				t.Errorf("DispatchOut() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"Unparseable", "not a registry line"},
		{"Duplicate", "f -- f: d->d -- h.go\nf -- f2: d->d -- h.go"},
		{"HeaderCount", "f -- f: d->d, g: D->D -- a.go, b.go, c.go"},
		{"ArityMismatch", "f -- f: d->d, g: dd->d -- h.go"},
		{"VoidNoOutputs", "f -- f: d-> -- h.go"},
		{"BothReturns", "f -- f: d->d*i -- h.go"},
		{"NoArrow", "f -- f: ddd -- h.go"},
		{"BadCode", "f -- f: dq->d -- h.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRegistry(tt.text)
			if err == nil {
				t.Fatalf("ParseRegistry(%q) succeeded, want error", tt.text)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("error %v is not a ValidationError", err)
			}
		})
	}
}

func TestParseSortsAndSkips(t *testing.T) {
	text := strings.Join([]string{
		"# comment",
		"",
		"zeta -- zeta: dd->d -- zeta.go",
		"binom -- binom: dd->d -- orthogonal_eval.go",
	}, "\n")
	groups, err := ParseRegistry(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 || groups[0].Name != "binom" || groups[1].Name != "zeta" {
		names := make([]string, len(groups))
		for i, g := range groups {
			names[i] = g.Name
		}
		t.Errorf("group order = %v, want [binom zeta]", names)
	}
}

func TestGroupStringRoundTrip(t *testing.T) {
	lines := []string{
		"airy -- airy: d*dddd->*i, cairy: D*DDDD->*i -- amos_wrappers.h",
		"erf -- erf: d->d, erfc: D->D -- a++, b++",
		"struveAsymp -- struveAsymp: ddd*d->d -- struve.go",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			g := parseOne(t, line)
			rendered := g.String()
			g2 := parseOne(t, rendered)
			if g2.String() != rendered {
				t.Errorf("re-parse of %q changed rendering to %q", rendered, g2.String())
			}
		})
	}
}

func TestExposed(t *testing.T) {
	if parseOne(t, "_sinpi -- sinpi: d->d -- trig.go").Exposed() {
		t.Error("underscore group reported as exposed")
	}
	if !parseOne(t, "sinpi -- sinpi: d->d -- trig.go").Exposed() {
		t.Error("plain group reported as internal")
	}
}
