package numtheory

import (
	"errors"
	"reflect"
	"testing"

	"cryptolab/internal/cryptoerr"
)

func TestGcdSteps(t *testing.T) {
	g, tr, err := GcdSteps(18, 48)
	if err != nil {
		t.Fatal(err)
	}
	if g != 6 {
		t.Fatalf("GcdSteps(18, 48) = %d, want 6", g)
	}
	want := []string{
		"swap(a=18, b=48) = gcd(48, 18)",
		"divide(a=48, b=18, q=2) = 12",
		"divide(a=18, b=12, q=1) = 6",
		"divide(a=12, b=6, q=2) = 0",
		"result = 6",
	}
	if got := tr.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("trace =\n%q\nwant\n%q", got, want)
	}
}

func TestExtendedGcdTable(t *testing.T) {
	bz, rows, tr, err := ExtendedGcdTable(48, 18)
	if err != nil {
		t.Fatal(err)
	}
	if bz.G != 6 || bz.S*48+bz.T*18 != 6 {
		t.Fatalf("ExtendedGcdTable(48, 18) = %+v", bz)
	}
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	if rows[0].Q != nil || rows[1].Q != nil || *rows[2].Q != 2 {
		t.Errorf("unexpected quotients in %+v", rows)
	}
	kinds := tr.Kinds()
	if kinds[len(kinds)-2] != "bezout" || kinds[len(kinds)-1] != "verify" {
		t.Errorf("trace tail = %v", kinds)
	}
	if last := tr[len(tr)-1]; last.Result != "6" {
		t.Errorf("verify result = %s, want 6", last.Result)
	}

	for a := int64(0); a < 40; a++ {
		for b := int64(0); b < 40; b++ {
			bz, _, _, err := ExtendedGcdTable(a, b)
			if err != nil {
				t.Fatal(err)
			}
			if bz.G != Gcd(a, b) || bz.S*a+bz.T*b != bz.G {
				t.Fatalf("ExtendedGcdTable(%d, %d) = %+v", a, b, bz)
			}
		}
	}
}

func TestModInverseSteps(t *testing.T) {
	x, tr, err := ModInverseSteps(17, 3120)
	if err != nil {
		t.Fatal(err)
	}
	if x != 2753 {
		t.Fatalf("ModInverseSteps(17, 3120) = %d, want 2753", x)
	}
	if last := tr[len(tr)-1]; last.Kind != "verify" || last.Result != "1" {
		t.Errorf("last step = %v", last)
	}
	if _, _, err := ModInverseSteps(6, 9); !errors.Is(err, cryptoerr.ErrNoInverse) {
		t.Errorf("ModInverseSteps(6, 9) err = %v", err)
	}
}

func TestModArith(t *testing.T) {
	tests := []struct {
		op        string
		a, b, n   int64
		want      int64
		wantErrIs error
	}{
		{OpAdd, 7, 9, 5, 1, nil},
		{OpSub, 3, 9, 5, 4, nil},
		{OpSub, -3, 4, 5, 3, nil},
		{OpMul, 7, 9, 5, 3, nil},
		{OpPow, 4, 13, 497, 445, nil},
		{"ADD", 1, 1, 3, 2, nil},
		{"div", 1, 1, 3, 0, cryptoerr.ErrInvalidInput},
		{OpAdd, 1, 1, 0, 0, cryptoerr.ErrInvalidInput},
	}
	for _, tt := range tests {
		got, _, err := ModArith(tt.op, tt.a, tt.b, tt.n)
		if tt.wantErrIs != nil {
			if !errors.Is(err, tt.wantErrIs) {
				t.Errorf("ModArith(%s, %d, %d, %d) err = %v", tt.op, tt.a, tt.b, tt.n, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ModArith(%s, %d, %d, %d) = %d, %v; want %d", tt.op, tt.a, tt.b, tt.n, got, err, tt.want)
		}
	}
}
