package object

// Vec3 is a position in world space.
type Vec3 struct {
	X, Y, Z float32
}

// Sub returns v - u.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{v.X - u.X, v.Y - u.Y, v.Z - u.Z}
}

// Len2 returns the squared length. Distance comparisons stay in squared
// space; only the fade calculator takes the square root.
func (v Vec3) Len2() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}
