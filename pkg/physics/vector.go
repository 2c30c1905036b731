// pkg/physics/vector.go
package physics

import "math"

// Vector2D represents an immutable 2D vector with x and y components.
// Every operation returns a new value; a vector is never changed in place.
type Vector2D struct {
	X float64
	Y float64
}

// Add returns the sum of two vectors
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X + other.X,
		Y: v.Y + other.Y,
	}
}

// Sub returns the difference between two vectors
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X - other.X,
		Y: v.Y - other.Y,
	}
}

// Scale multiplies the vector by a scalar value
func (v Vector2D) Scale(factor float64) Vector2D {
	return Vector2D{
		X: v.X * factor,
		Y: v.Y * factor,
	}
}

// Div divides the vector by a scalar value. Division by zero is not
// guarded; the components become Inf or NaN per IEEE-754 semantics.
func (v Vector2D) Div(divisor float64) Vector2D {
	return Vector2D{
		X: v.X / divisor,
		Y: v.Y / divisor,
	}
}

// Neg returns the vector multiplied by -1
func (v Vector2D) Neg() Vector2D {
	return Vector2D{
		X: -v.X,
		Y: -v.Y,
	}
}

// Length returns the magnitude of the vector
func (v Vector2D) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// LengthSquared returns magnitude squared (optimization for comparisons)
func (v Vector2D) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Dot returns the dot product of two vectors
func (v Vector2D) Dot(other Vector2D) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the 2D scalar cross product of two vectors
func (v Vector2D) Cross(other Vector2D) float64 {
	return v.X*other.Y - v.Y*other.X
}

// Distance returns the distance between two vectors
func (v Vector2D) Distance(other Vector2D) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

// Direction returns the angle of the vector in degrees, normalized to
// [0, 360). (1, 0) points at 0 degrees, (0, 1) at 90 degrees.
func (v Vector2D) Direction() float64 {
	angle := math.Atan2(v.Y, v.X) * 180 / math.Pi
	if angle < 0 {
		angle += 360
	}
	return angle
}

// Perpendicular returns the vector rotated clockwise by 90 degrees,
// assuming the usual mathematical direction of axes (x points right,
// y points up): (x, y) becomes (-y, x).
func (v Vector2D) Perpendicular() Vector2D {
	return Vector2D{
		X: -v.Y,
		Y: v.X,
	}
}

// Scaled returns a vector pointing the same way scaled to the given
// magnitude. Scaling a zero vector divides by zero and propagates NaN;
// the simulation relies on unguarded float math throughout.
func (v Vector2D) Scaled(newLength float64) Vector2D {
	return v.Scale(newLength / v.Length())
}

// FromPolar creates a vector from polar coordinates. The direction is
// given in degrees; 0 points in the direction of the x axis, 90 in the
// direction of the y axis.
func FromPolar(direction, magnitude float64) Vector2D {
	angle := direction * math.Pi / 180
	return Vector2D{
		X: magnitude * math.Cos(angle),
		Y: magnitude * math.Sin(angle),
	}
}
