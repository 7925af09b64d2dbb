package terrain

import (
	"math"
	"testing"
)

func TestSimplexDeterministic(t *testing.T) {
	a := newSimplex(77)
	b := newSimplex(77)
	c := newSimplex(78)
	differ := false
	for i := range 32 {
		x := float64(i)*0.73 - 10
		y := float64(i)*-0.41 + 3
		na, _, _ := a.at(x, y)
		nb, _, _ := b.at(x, y)
		nc, _, _ := c.at(x, y)
		if na != nb {
			t.Fatalf("same seed diverged at (%g,%g): %v vs %v", x, y, na, nb)
		}
		if na != nc {
			differ = true
		}
	}
	if !differ {
		t.Error("different seeds produced identical noise")
	}
}

func TestSimplexDerivatives(t *testing.T) {
	s := newSimplex(5)
	const h = 1e-5
	for i := range 64 {
		x := float64(i)*0.37 + 0.11
		y := float64(i)*0.59 - 7.3
		_, dx, dy := s.at(x, y)
		nxp, _, _ := s.at(x+h, y)
		nxm, _, _ := s.at(x-h, y)
		nyp, _, _ := s.at(x, y+h)
		nym, _, _ := s.at(x, y-h)
		fdx := (nxp - nxm) / (2 * h)
		fdy := (nyp - nym) / (2 * h)
		if math.Abs(dx-fdx) > 1e-3 || math.Abs(dy-fdy) > 1e-3 {
			t.Fatalf("analytic gradient (%v,%v) disagrees with finite difference (%v,%v) at (%g,%g)",
				dx, dy, fdx, fdy, x, y)
		}
	}
}

func TestFractalRange(t *testing.T) {
	s := newSimplex(9)
	for i := range 200 {
		x := float64(i)*1.7 - 150
		y := float64(i)*-2.3 + 80
		n := s.fractal(x, y, 6)
		if n < -1 || n > 1 {
			t.Fatalf("fractal(%g,%g) = %v outside [-1,1]", x, y, n)
		}
	}
}

func TestHashStability(t *testing.T) {
	if hash2(1, 2, 3) != hash2(1, 2, 3) {
		t.Error("hash2 is not a pure function")
	}
	if hash2(1, 2, 3) == hash2(1, 3, 2) {
		t.Error("hash2 ignores argument order")
	}
	for i := range 100 {
		v := hash01(hash2(7, i, -i))
		if v < 0 || v >= 1 {
			t.Fatalf("hash01 = %v outside [0,1)", v)
		}
	}
}
