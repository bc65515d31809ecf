package volume

import (
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Random is a seedable uniform generator owned by a single volume.
// Two generators seeded with the same value produce the same sequence.
type Random struct {
	src *rand.PCG
	rng *rand.Rand
}

// NewRandom creates a generator seeded with seed.
//
// Parameters:
//   - seed: the initial seed
//
// Returns:
//   - *Random: the generator
func NewRandom(seed uint64) *Random {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Random{src: src, rng: rand.New(src)}
}

// Seed resets the generator state. The following sequence depends only on seed.
//
// Parameters:
//   - seed: the new seed
func (r *Random) Seed(seed uint64) {
	r.src.Seed(seed, seed^0x9e3779b97f4a7c15)
}

// Float32 returns a uniform value in [0, 1).
func (r *Random) Float32() float32 {
	return r.rng.Float32()
}

// RandomRotation returns a uniformly distributed rotation using Arvo's method
// ("Fast Random Rotation Matrices", Graphics Gems III): a random rotation about the pole
// followed by a Householder reflection that moves the pole to a uniformly random point.
//
// Parameters:
//   - r: the uniform source
//
// Returns:
//   - mgl32.Mat3: an orthonormal matrix with determinant +1
func RandomRotation(r *Random) mgl32.Mat3 {
	theta1 := 2 * math32.Pi * r.Float32()
	cos1, sin1 := math32.Cos(theta1), math32.Sin(theta1)

	theta2 := 2 * math32.Pi * r.Float32()
	cos2, sin2 := math32.Cos(theta2), math32.Sin(theta2)

	u3 := r.Float32()
	sq3 := 2 * math32.Sqrt(u3*(1-u3))

	s2 := 2*u3*sin2*sin2 - 1
	c2 := 2*u3*cos2*cos2 - 1
	sc := 2 * u3 * sin2 * cos2

	return mgl32.Mat3FromRows(
		mgl32.Vec3{cos1*c2 - sin1*sc, sin1*c2 + cos1*sc, sq3 * cos2},
		mgl32.Vec3{cos1*sc - sin1*s2, sin1*sc + cos1*s2, sq3 * sin2},
		mgl32.Vec3{cos1*(sq3*cos2) - sin1*(sq3*sin2), sin1*(sq3*cos2) + cos1*(sq3*sin2), 1 - 2*u3},
	)
}
