package numtheory

import (
	"fmt"
	"strings"

	"cryptolab/internal/cryptoerr"
	"cryptolab/internal/trace"
)

// Bezout holds gcd(a, b) together with coefficients s, t such that
// s*a + t*b = G.
type Bezout struct {
	G int64 `json:"gcd"`
	S int64 `json:"s"`
	T int64 `json:"t"`
}

// Row is one line of the extended Euclidean table.
type Row struct {
	I int64  `json:"i"`
	Q *int64 `json:"q,omitempty"`
	R int64  `json:"r"`
	S int64  `json:"s"`
	T int64  `json:"t"`
}

// GcdSteps runs Euclid's algorithm on a >= b, recording one
// "a = b*q + r" division per iteration.
func GcdSteps(a, b int64) (int64, trace.Trace, error) {
	var tr trace.Trace
	if a < 0 || b < 0 {
		return 0, nil, fmt.Errorf("%w: gcd operands must be non-negative", cryptoerr.ErrInvalidInput)
	}
	if a < b {
		tr.Add("swap", fmt.Sprintf("gcd(%d, %d)", b, a), "a", a, "b", b)
		a, b = b, a
	}
	for b != 0 {
		q, r := a/b, a%b
		tr.Add("divide", r, "a", a, "b", b, "q", q)
		a, b = b, r
	}
	tr.Add("result", a)
	return a, tr, nil
}

// ExtendedGcdTable computes the Bézout coefficients in the tabular form used
// on paper: rows 0 and 1 seed (a, 1, 0) and (b, 0, 1), every following row
// subtracts q times its predecessor. The trace holds one "row" step per table
// line followed by the Bézout identity and its verification.
func ExtendedGcdTable(a, b int64) (Bezout, []Row, trace.Trace, error) {
	var tr trace.Trace
	if a < 0 || b < 0 {
		return Bezout{}, nil, nil, fmt.Errorf("%w: gcd operands must be non-negative", cryptoerr.ErrInvalidInput)
	}
	rows := []Row{{I: 0, R: a, S: 1, T: 0}, {I: 1, R: b, S: 0, T: 1}}
	for rows[len(rows)-1].R != 0 {
		prev, cur := rows[len(rows)-2], rows[len(rows)-1]
		q := prev.R / cur.R
		rows = append(rows, Row{
			I: cur.I + 1,
			Q: &q,
			R: prev.R - q*cur.R,
			S: prev.S - q*cur.S,
			T: prev.T - q*cur.T,
		})
	}
	for _, row := range rows {
		q := "-"
		if row.Q != nil {
			q = fmt.Sprint(*row.Q)
		}
		tr.Add("row", row.R, "i", row.I, "q", q, "s", row.S, "t", row.T)
	}

	last := rows[len(rows)-2]
	res := Bezout{G: last.R, S: last.S, T: last.T}
	tr.Add("bezout", res.G, "s", res.S, "a", a, "t", res.T, "b", b)
	tr.Add("verify", res.S*a+res.T*b)
	return res, rows, tr, nil
}

// ModInverseSteps computes the inverse of a modulo m and explains it via the
// extended Euclidean table, the normalisation of s into [0, m) and a final
// check a*x mod m.
func ModInverseSteps(a, m int64) (int64, trace.Trace, error) {
	if m < 1 {
		return 0, nil, fmt.Errorf("%w: modulus must be positive, got %d", cryptoerr.ErrInvalidInput, m)
	}
	a = normalize(a, m)
	bz, _, tr, err := ExtendedGcdTable(a, m)
	if err != nil {
		return 0, nil, err
	}
	if bz.G != 1 {
		return 0, tr, fmt.Errorf("%w: gcd(%d, %d) = %d", cryptoerr.ErrNoInverse, a, m, bz.G)
	}
	x := normalize(bz.S, m)
	tr.Add("coefficient", bz.S)
	tr.Add("normalize", x, "s", bz.S, "m", m)
	tr.Add("verify", mulMod(a, x, m), "a", a, "x", x, "m", m)
	return x, tr, nil
}

// Arithmetic operations accepted by ModArith.
const (
	OpAdd = "add"
	OpSub = "sub"
	OpMul = "mul"
	OpPow = "pow"
)

// ModArith evaluates a op b mod n. Subtraction always yields a value in
// [0, n); pow delegates to ModPow and carries its trace.
func ModArith(op string, a, b, n int64) (int64, trace.Trace, error) {
	var tr trace.Trace
	if n < 1 {
		return 0, nil, fmt.Errorf("%w: modulus must be positive, got %d", cryptoerr.ErrInvalidInput, n)
	}
	op = strings.ToLower(strings.TrimSpace(op))
	switch op {
	case OpAdd:
		x, y := uint64(normalize(a, n)), uint64(normalize(b, n))
		res := int64((x + y) % uint64(n))
		tr.Add("add", res, "a", a, "b", b, "n", n)
		return res, tr, nil
	case OpSub:
		res := normalize(normalize(a, n)-normalize(b, n), n)
		tr.Add("sub", res, "a", a, "b", b, "n", n)
		return res, tr, nil
	case OpMul:
		res := mulMod(normalize(a, n), normalize(b, n), n)
		tr.Add("mul", res, "a", a, "b", b, "n", n)
		return res, tr, nil
	case OpPow:
		return ModPow(a, b, n)
	default:
		return 0, nil, fmt.Errorf("%w: unknown operation %q", cryptoerr.ErrInvalidInput, op)
	}
}
