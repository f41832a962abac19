package group

import (
	"errors"
	"testing"
)

func TestParseAdditionalData(t *testing.T) {
	got, err := ParseAdditionalData("0xABCDEFabcdef1234567890ABCDEFabcdef123456=5,0x0000000000000000000000000000000000000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := FetchedData{
		"0xABCDEFabcdef1234567890ABCDEFabcdef123456": "5",
		"0x0000000000000000000000000000000000000001": "1",
	}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s: want %s, got %s", k, v, got[k])
		}
	}
}

func TestParseAdditionalDataEmpty(t *testing.T) {
	for _, in := range []string{"", ",", ",,"} {
		got, err := ParseAdditionalData(in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if len(got) != 0 {
			t.Fatalf("%q: expected empty mapping, got %v", in, got)
		}
	}
}

func TestParseAdditionalDataErrors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"notanaddress=1", ErrNotAnAddress},
		{"0x0000000000000000000000000000000000000001=abc", ErrInvalidAdditionalData},
		{"0x0000000000000000000000000000000000000001=2,nope", ErrNotAnAddress},
	}
	for _, tt := range tests {
		got, err := ParseAdditionalData(tt.in)
		if !errors.Is(err, tt.want) {
			t.Fatalf("%q: want %v, got %v", tt.in, tt.want, err)
		}
		if got != nil {
			t.Fatalf("%q: expected no partial result, got %v", tt.in, got)
		}
	}
}

func TestParseAdditionalDataExplicitEmptyValue(t *testing.T) {
	got, err := ParseAdditionalData("0x0000000000000000000000000000000000000001=")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["0x0000000000000000000000000000000000000001"] != "0" {
		t.Fatalf("expected 0, got %v", got)
	}
}
