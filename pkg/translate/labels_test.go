package translate

import (
	"testing"
	"unicode/utf8"
)

func TestHumanizeLabeler(t *testing.T) {
	cases := map[string]string{
		"":             "",
		"zipCode2":     "Zip Code 2",
		"first_name":   "First Name",
		"dash-case id": "Dash Case Id",
		"émail":        "Émail",
		"überAlles":    "Über Alles",
		"straßeNummer": "Straße Nummer",
		"日本語":          "日本語",
	}
	for input, want := range cases {
		got := HumanizeLabeler(input)
		if !utf8.ValidString(got) {
			t.Fatalf("HumanizeLabeler(%q) produced invalid UTF-8 %q", input, got)
		}
		if got != want {
			t.Fatalf("HumanizeLabeler(%q) = %q, want %q", input, got, want)
		}
	}
}
