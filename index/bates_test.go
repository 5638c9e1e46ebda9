package index

import (
	"reflect"
	"testing"
)

func TestNormalizeBates(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"EFTA02290848", "EFTA02290848"},
		{"efta02290848", "EFTA02290848"},
		{"EFTA02290848.pdf", "EFTA02290848"},
		{"efta02290848.PDF", "EFTA02290848"},
		{"/archive/box7/EFTA02290848.pdf", "EFTA02290848"},
		{"  efta02290848.pdf  ", "EFTA02290848"},
	}
	for _, tc := range cases {
		if got := NormalizeBates(tc.in); got != tc.want {
			t.Errorf("NormalizeBates(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsBatesNumber(t *testing.T) {
	valid := []string{"EFTA02290848", "ABCD00000001"}
	for _, s := range valid {
		if !IsBatesNumber(s) {
			t.Errorf("IsBatesNumber(%q) = false, want true", s)
		}
	}
	invalid := []string{
		"efta02290848",    // lowercase
		"EFTA0229084",     // seven digits
		"EFTA022908481",   // nine digits
		"EFT02290848",     // three letters
		"EFTA02290848X",   // trailing junk
		"EFTA02290848.pdf",
		"",
	}
	for _, s := range invalid {
		if IsBatesNumber(s) {
			t.Errorf("IsBatesNumber(%q) = true, want false", s)
		}
	}
}

func TestIsDocID(t *testing.T) {
	if !IsDocID("0123456789abcdef0123456789abcdef") {
		t.Error("expected 32-hex string to be a doc id")
	}
	if IsDocID("0123456789ABCDEF0123456789ABCDEF") {
		t.Error("uppercase hex is not a canonical doc id")
	}
	if IsDocID("0123456789abcdef") {
		t.Error("16-hex string is not a doc id")
	}
}

func TestBatesNumbersIn(t *testing.T) {
	text := "Compare EFTA02290848 with ABCD00000001, then EFTA02290848 again. " +
		"Ignore efta02290848 and EFTA0229."
	got := BatesNumbersIn(text)
	want := []string{"EFTA02290848", "ABCD00000001"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BatesNumbersIn = %v, want %v", got, want)
	}
}

func TestUniqueOrdered(t *testing.T) {
	got := UniqueOrdered([]string{"b", "a", "b", "c", "a"})
	want := []string{"b", "a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UniqueOrdered = %v, want %v", got, want)
	}
}

func TestSanitizeText(t *testing.T) {
	in := "line one\x00\x01\ttab\nline two\x7f"
	want := "line one\ttab\nline two"
	if got := SanitizeText(in); got != want {
		t.Errorf("SanitizeText = %q, want %q", got, want)
	}
}
