package seqdb

import (
	"log/slog"
	"testing"
)

func TestInc(t *testing.T) {
	tests := []struct {
		in, out string
		ok      bool
	}{
		{"0000", "0001", true},
		{"00ff", "0100", true},
		{"01ffff", "020000", true},
		{"09", "0a", true},
		{"ff", "ff", false},
		{"ffff", "ffff", false},
	}
	for _, tt := range tests {
		b := x(tt.in)
		ok := inc(b)
		if ok != tt.ok || hexstr(b) != tt.out {
			t.Errorf("inc(%s) = %s, %v; wanted %s, %v", tt.in, hexstr(b), ok, tt.out, tt.ok)
		}
	}
}

func TestIsBlank(t *testing.T) {
	for _, s := range []string{"", " ", "\t\n"} {
		if !isBlank(s) {
			t.Errorf("isBlank(%q) = false", s)
		}
	}
	if isBlank(" a ") {
		t.Errorf("isBlank(\" a \") = true")
	}
}

func TestHexHelpers(t *testing.T) {
	if got := hexstr(nil); got != "<nil>" {
		t.Fatalf("hexstr(nil) = %q, wanted <nil>", got)
	}
	if got := hexstr([]byte{}); got != "<empty>" {
		t.Fatalf("hexstr(empty) = %q, wanted <empty>", got)
	}
	if got := hexstr([]byte{0xAA, 0xBB}); got != "aabb" {
		t.Fatalf("hexstr = %q, wanted aabb", got)
	}
	a := hexAttr("k", []byte{0xAA})
	if a.Key != "k" || a.Value.Kind() != slog.KindString {
		t.Fatalf("hexAttr returned unexpected attr: %+v", a)
	}
}
