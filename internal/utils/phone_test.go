package utils

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "local with leading zero", input: "0911234567", expected: "+251911234567"},
		{name: "already international", input: "+251911234567", expected: "+251911234567"},
		{name: "spaces and dashes", input: "091 123-45-67", expected: "+251911234567"},
		{name: "no leading zero", input: "911234567", expected: "+251911234567"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizePhone(tc.input, "+251"); got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestLocalPhone(t *testing.T) {
	if got := LocalPhone("+251911234567", "+251"); got != "0911234567" {
		t.Fatalf("expected 0911234567, got %s", got)
	}
	if got := LocalPhone("0911234567", "+251"); got != "0911234567" {
		t.Fatalf("expected pass-through, got %s", got)
	}
}
