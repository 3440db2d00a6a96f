package model

import "math"

// Quaternion is a double precision rotation quaternion. Throughout the
// simulator an observer orientation maps universal-frame vectors into
// camera-frame vectors, with the camera looking down -Z and +Y up.
type Quaternion struct {
	W, X, Y, Z float64
}

// IdentityQuaternion returns the no-rotation quaternion.
func IdentityQuaternion() Quaternion {
	return Quaternion{W: 1}
}

// QuaternionFromAxisAngle builds a rotation of angle radians about axis.
// The axis need not be normalized.
func QuaternionFromAxisAngle(axis Vec3, angle float64) Quaternion {
	a := axis.Normalized()
	s := math.Sin(angle / 2)
	return Quaternion{
		W: math.Cos(angle / 2),
		X: a.X * s,
		Y: a.Y * s,
		Z: a.Z * s,
	}
}

// Mul returns the Hamilton product q * other. Applied to a vector, the
// result rotates by other first, then by q.
func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
	}
}

// Conjugate returns the inverse rotation for a unit quaternion.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Norm returns the quaternion magnitude.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalized returns q scaled to unit length. Orientation integration
// accumulates drift, so callers renormalize after composing rotations.
func (q Quaternion) Normalized() Quaternion {
	n := q.Norm()
	if n == 0 {
		return IdentityQuaternion()
	}
	return Quaternion{W: q.W / n, X: q.X / n, Y: q.Y / n, Z: q.Z / n}
}

// Rotate applies the rotation to v.
func (q Quaternion) Rotate(v Vec3) Vec3 {
	// v' = q (0,v) q*
	u := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Dot returns the four-component dot product.
func (q Quaternion) Dot(other Quaternion) float64 {
	return q.W*other.W + q.X*other.X + q.Y*other.Y + q.Z*other.Z
}

// Slerp spherically interpolates from q to other by t in [0,1], taking
// the shorter arc.
func (q Quaternion) Slerp(other Quaternion, t float64) Quaternion {
	cosTheta := q.Dot(other)
	if cosTheta < 0 {
		other = Quaternion{W: -other.W, X: -other.X, Y: -other.Y, Z: -other.Z}
		cosTheta = -cosTheta
	}

	// Nearly parallel quaternions degrade to linear interpolation.
	if cosTheta > 0.9995 {
		return Quaternion{
			W: q.W + (other.W-q.W)*t,
			X: q.X + (other.X-q.X)*t,
			Y: q.Y + (other.Y-q.Y)*t,
			Z: q.Z + (other.Z-q.Z)*t,
		}.Normalized()
	}

	theta := math.Acos(math.Max(-1, math.Min(1, cosTheta)))
	sinTheta := math.Sin(theta)
	a := math.Sin((1-t)*theta) / sinTheta
	b := math.Sin(t*theta) / sinTheta
	return Quaternion{
		W: q.W*a + other.W*b,
		X: q.X*a + other.X*b,
		Y: q.Y*a + other.Y*b,
		Z: q.Z*a + other.Z*b,
	}
}

// QuaternionFromBasis constructs the rotation that maps universal-frame
// vectors into the frame whose axes (expressed in universal coordinates)
// are the given orthonormal rows x, y, z.
func QuaternionFromBasis(x, y, z Vec3) Quaternion {
	// Shepperd's method over the row-major matrix [x; y; z].
	m00, m01, m02 := x.X, x.Y, x.Z
	m10, m11, m12 := y.X, y.Y, y.Z
	m20, m21, m22 := z.X, z.Y, z.Z

	trace := m00 + m11 + m22
	var q Quaternion
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q = Quaternion{
			W: s / 4,
			X: (m21 - m12) / s,
			Y: (m02 - m20) / s,
			Z: (m10 - m01) / s,
		}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = Quaternion{
			W: (m21 - m12) / s,
			X: s / 4,
			Y: (m01 + m10) / s,
			Z: (m02 + m20) / s,
		}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = Quaternion{
			W: (m02 - m20) / s,
			X: (m01 + m10) / s,
			Y: s / 4,
			Z: (m12 + m21) / s,
		}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = Quaternion{
			W: (m10 - m01) / s,
			X: (m02 + m20) / s,
			Y: (m12 + m21) / s,
			Z: s / 4,
		}
	}
	return q.Normalized()
}

// LookAt returns the camera orientation at eye looking toward target with
// the given approximate up direction. The result maps universal vectors
// into the camera frame.
func LookAt(forward, up Vec3) Quaternion {
	z := forward.Normalized().Scale(-1) // camera looks down -Z
	if z.IsZero() {
		return IdentityQuaternion()
	}
	x := up.Cross(z)
	if x.Norm() < 1e-12 {
		// Up is parallel to the view direction; pick any perpendicular.
		alt := Vec3{X: 1}
		if math.Abs(z.X) > 0.9 {
			alt = Vec3{Y: 1}
		}
		x = alt.Cross(z)
	}
	x = x.Normalized()
	y := z.Cross(x)
	return QuaternionFromBasis(x, y, z)
}
