package terrain

/*
Skewing factors for 2D simplex grid:

	F2 = 0.5*(sqrt(3.0)-1.0)
	G2 = (3.0-Math.sqrt(3.0))/6.0
*/
const f2 = 0.366025403
const g2 = 0.211324865

var grad2lut = [8][2]float64{
	{-1.0, -1.0}, {1.0, 0.0}, {-1.0, 0.0}, {1.0, 1.0},
	{-1.0, 1.0}, {0.0, -1.0}, {0.0, 1.0}, {1.0, -1.0},
}

// simplex is a 2D simplex noise kernel that also returns analytic
// derivatives, which the fractal sum uses to attenuate octaves on slopes.
// The permutation table is shuffled from the seed so two kernels built with
// the same seed agree bit for bit.
type simplex struct {
	perm [512]byte
}

func newSimplex(seed int64) *simplex {
	s := new(simplex)
	for i := range 256 {
		s.perm[i] = byte(i)
	}
	state := uint64(seed)
	for i := 255; i > 0; i-- {
		state = mix64(state + 0x9e3779b97f4a7c15)
		j := int(state % uint64(i+1))
		s.perm[i], s.perm[j] = s.perm[j], s.perm[i]
	}
	copy(s.perm[256:], s.perm[:256])
	return s
}

func fastFloor(x float64) int {
	if x > 0 {
		return int(x)
	}
	return int(x) - 1
}

func grad2(hash int) (gx, gy float64) {
	h := hash & 7
	return grad2lut[h][0], grad2lut[h][1]
}

// at returns noise in [-1,1] along with its x/y derivatives.
func (s *simplex) at(x, y float64) (noise, dx, dy float64) {
	var n0, n1, n2 float64 // Noise contributions from the three corners

	// Skew the input space to determine which simplex cell we're in.
	skew := (x + y) * f2
	i := fastFloor(x + skew)
	j := fastFloor(y + skew)

	t := float64(i+j) * g2
	x0 := x - (float64(i) - t) // The x,y distances from the cell origin
	y0 := y - (float64(j) - t)

	// For the 2D case, the simplex shape is an equilateral triangle.
	var i1, j1 int // Offsets for second (middle) corner of simplex
	if x0 > y0 {
		// lower triangle, XY order: (0,0)->(1,0)->(1,1)
		i1 = 1
	} else {
		// upper triangle, YX order: (0,0)->(0,1)->(1,1)
		j1 = 1
	}

	x1 := x0 - float64(i1) + g2
	y1 := y0 - float64(j1) + g2
	x2 := x0 - 1.0 + 2.0*g2
	y2 := y0 - 1.0 + 2.0*g2

	// Wrap the integer indices at 256 to avoid indexing perm out of bounds.
	ii := i & 0xff
	jj := j & 0xff

	var gx0, gy0, gx1, gy1, gx2, gy2 float64
	var t20, t40, t21, t41, t22, t42 float64

	t0 := 0.5 - x0*x0 - y0*y0
	if t0 >= 0 {
		gx0, gy0 = grad2(int(s.perm[ii+int(s.perm[jj])]))
		t20 = t0 * t0
		t40 = t20 * t20
		n0 = t40 * (gx0*x0 + gy0*y0)
	} else {
		t0 = 0
	}

	t1 := 0.5 - x1*x1 - y1*y1
	if t1 >= 0 {
		gx1, gy1 = grad2(int(s.perm[ii+i1+int(s.perm[jj+j1])]))
		t21 = t1 * t1
		t41 = t21 * t21
		n1 = t41 * (gx1*x1 + gy1*y1)
	} else {
		t1 = 0
	}

	t2 := 0.5 - x2*x2 - y2*y2
	if t2 >= 0 {
		gx2, gy2 = grad2(int(s.perm[ii+1+int(s.perm[jj+1])]))
		t22 = t2 * t2
		t42 = t22 * t22
		n2 = t42 * (gx2*x2 + gy2*y2)
	} else {
		t2 = 0
	}

	temp0 := t20 * t0 * (gx0*x0 + gy0*y0)
	dx = temp0 * x0
	dy = temp0 * y0
	temp1 := t21 * t1 * (gx1*x1 + gy1*y1)
	dx += temp1 * x1
	dy += temp1 * y1
	temp2 := t22 * t2 * (gx2*x2 + gy2*y2)
	dx += temp2 * x2
	dy += temp2 * y2
	dx *= -8.0
	dy *= -8.0
	dx += t40*gx0 + t41*gx1 + t42*gx2
	dy += t40*gy0 + t41*gy1 + t42*gy2
	dx *= 40.0 // Scale derivative to match the noise scaling.
	dy *= 40.0

	return 40 * (n0 + n1 + n2), dx, dy
}

// Per-octave domain rotation breaks up the axis-aligned artifacts of the
// simplex grid. The angle is arbitrary but must never change: the depth
// texture and the mesh both depend on it.
const rotCos = 0.8253356149096783 // cos(0.6)
const rotSin = 0.5646424733950354 // sin(0.6)

// fractal sums octaves of derivative-attenuated noise. Each octave doubles
// frequency and halves amplitude; the running derivative divides the octave
// contribution by 1+|d|^2, carving erosion-like detail into slopes. Output
// is normalized to roughly [-1,1].
func (s *simplex) fractal(x, y float64, octaves int) float64 {
	var (
		sum       float64
		norm      float64
		dx, dy    float64
		amplitude = 1.0
	)
	for range octaves {
		n, ndx, ndy := s.at(x, y)
		dx += ndx
		dy += ndy
		sum += amplitude * n / (1 + dx*dx + dy*dy)
		norm += amplitude
		amplitude *= 0.5
		x, y = 2*(rotCos*x-rotSin*y), 2*(rotSin*x+rotCos*y)
	}
	return sum / norm
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// hash2 deterministically hashes a seed and two integer cell coordinates.
func hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// hash01 maps a hash to [0,1).
func hash01(h uint64) float64 {
	return float64(h>>11) / (1 << 53)
}
