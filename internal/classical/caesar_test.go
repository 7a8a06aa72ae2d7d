package classical

import (
	"strings"
	"testing"
)

func TestCaesarShift(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		shift int
		dir   Direction
		want  string
	}{
		{"hello", "HELLO", 3, Encrypt, "KHOOR"},
		{"decrypt", "KHOOR", 3, Decrypt, "HELLO"},
		{"mixed case and punctuation", "Hello, World!", 13, Encrypt, "Uryyb, Jbeyq!"},
		{"wraps", "xyz", 3, Encrypt, "abc"},
		{"negative shift", "abc", -1, Encrypt, "zab"},
		{"large shift", "abc", 27, Encrypt, "bcd"},
		{"zero", "Same", 0, Encrypt, "Same"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CaesarShift(tt.text, tt.shift, tt.dir); got != tt.want {
				t.Errorf("CaesarShift(%q, %d, %s) = %q, want %q", tt.text, tt.shift, tt.dir, got, tt.want)
			}
		})
	}
}

func TestCaesarRoundTrip(t *testing.T) {
	const text = "The quick brown fox jumps over the lazy dog. 123"
	for s := 1; s <= 25; s++ {
		enc := CaesarShift(text, s, Encrypt)
		if enc == text {
			t.Fatalf("shift %d left text unchanged", s)
		}
		if dec := CaesarShift(enc, s, Decrypt); dec != text {
			t.Fatalf("shift %d: round trip = %q", s, dec)
		}
	}
}

func TestCaesarTrace(t *testing.T) {
	out, tr := Caesar("A b!", 1, Encrypt)
	if out != "B c!" {
		t.Fatalf("out = %q", out)
	}
	want := []string{
		"shift(shift=1, direction=encrypt) = 1",
		"letter(in=A) = B",
		"letter(in=b) = c",
		"result = B c!",
	}
	got := tr.Lines()
	if len(got) != len(want) {
		t.Fatalf("trace = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("step %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBruteForceCaesar(t *testing.T) {
	cands := BruteForceCaesar("KHOOR")
	if len(cands) != 26 {
		t.Fatalf("got %d candidates", len(cands))
	}
	if cands[0].Text != "KHOOR" {
		t.Errorf("shift 0 = %q", cands[0].Text)
	}
	if cands[3].Shift != 3 || cands[3].Text != "HELLO" {
		t.Errorf("shift 3 = %+v", cands[3])
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"": Encrypt, "ENCRYPT": Encrypt, "decrypt": Decrypt, " dec ": Decrypt} {
		got, ok := ParseDirection(in)
		if !ok || got != want {
			t.Errorf("ParseDirection(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParseDirection("sideways"); ok {
		t.Error("ParseDirection accepted an unknown direction")
	}
}

func TestFrequencyAnalysis(t *testing.T) {
	got := FrequencyAnalysis("AAAB")
	want := []Frequency{{"a", 3, "75.00"}, {"b", 1, "25.00"}}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFrequencyAnalysisTiesAndNoise(t *testing.T) {
	got := FrequencyAnalysis("c b a, C! 42")
	var chars []string
	for _, f := range got {
		chars = append(chars, f.Char)
	}
	if s := strings.Join(chars, ""); s != "cab" {
		t.Errorf("order = %s, want cab", s)
	}
	if got[0].Percentage != "50.00" || got[1].Percentage != "25.00" {
		t.Errorf("percentages = %+v", got)
	}
	if len(FrequencyAnalysis("1234 !?")) != 0 {
		t.Error("expected no entries for text without letters")
	}
}
