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

import "testing"

func TestDangerousDowncast(t *testing.T) {
	tests := []struct {
		src, dst TypeCode
		want     bool
	}{
		{Double, Int, true},
		{Double, Long, true},
		{Long, Int, true},
		{CDouble, Double, true},
		{CDouble, Float, true},
		{CLongDouble, LongDouble, true},
		{Float, Double, false},   // widening
		{Int, Long, false},       // widening
		{Double, CDouble, false}, // lift to complex
		{Int, Double, false},
		{Double, Double, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.src)+"_to_"+string(tt.dst), func(t *testing.T) {
			if got := DangerousDowncast(tt.src, tt.dst); got != tt.want {
				t.Errorf("DangerousDowncast(%c, %c) = %v, want %v", tt.src, tt.dst, got, tt.want)
			}
		})
	}
}

func TestCastExpr(t *testing.T) {
	tests := []struct {
		name     string
		from, to TypeCode
		want     string
	}{
		{"Identity", Double, Double, "x"},
		{"Widen", Float, Double, "float64(x)"},
		{"Narrow", Double, Float, "float32(x)"},
		{"IntToLong", Int, Long, "int64(x)"},
		{"ComplexWiden", CFloat, CDouble, "complex128(x)"},
		{"RealLift", Double, CDouble, "complex(float64(x), 0)"},
		{"IntLift", Long, CFloat, "complex64(complex(float64(x), 0))"},
		{"ComplexToReal", CDouble, Double, "real(x)"},
		{"ComplexToFloat", CDouble, Float, "float32(real(x))"},
		{"CFloatToFloat", CFloat, Float, "real(x)"},
		{"ExtendedComplexToReal", CLongDouble, Double, "real(complex128(x))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CastExpr(tt.from, tt.to, "x"); got != tt.want {
				t.Errorf("CastExpr(%c, %c, x) = %q, want %q", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestGuardExpr(t *testing.T) {
	tests := []struct {
		name     string
		from, to TypeCode
		want     string
	}{
		{"LongToInt", Long, Int, "int64(y) == x"},
		{"DoubleToInt", Double, Int, "float64(y) == x"},
		{"ComplexToDouble", CDouble, Double, "complex(float64(y), 0) == x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GuardExpr(tt.from, tt.to, "y", "x"); got != tt.want {
				t.Errorf("GuardExpr(%c, %c) = %q, want %q", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestMapCodes(t *testing.T) {
	if got := mapCodes("idD", intToLong...); got != "ldD" {
		t.Errorf("mapCodes(idD, i->l) = %q, want ldD", got)
	}
	if got := mapCodes("idD", reducedPrecision...); got != "lfF" {
		t.Errorf("mapCodes(idD, reduced) = %q, want lfF", got)
	}
}

func TestRankLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"f", "d", true},
		{"d", "f", false},
		{"id", "ld", true},
		{"dd", "dD", true},
		{"d", "dd", true},
		{"dd", "dd", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			if got := rankLess(tt.a, tt.b); got != tt.want {
				t.Errorf("rankLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
