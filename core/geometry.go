package core

import "math"

// Vec3 is a Cartesian position on (or in) the unit sphere of the star. The
// observer sits at x → +∞; (y, z) is the sky plane. A point is on the
// visible hemisphere iff x > 0.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// RotZ rotates v about the z axis (the stellar spin axis) by angle radians,
// counterclockwise when viewed from +z.
func (v Vec3) RotZ(angle float64) Vec3 {
	s, c := math.Sincos(angle)
	return Vec3{
		X: v.X*c - v.Y*s,
		Y: v.X*s + v.Y*c,
		Z: v.Z,
	}
}

// RotY rotates v about the y axis (the sky-plane horizontal) by angle
// radians. Rotating by +π/2 carries the +z pole onto the +x observer axis.
func (v Vec3) RotY(angle float64) Vec3 {
	s, c := math.Sincos(angle)
	return Vec3{
		X: v.X*c + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*c,
	}
}

// RotX rotates v about the x axis (the line of sight) by angle radians,
// counterclockwise in the sky plane as seen by the observer.
func (v Vec3) RotX(angle float64) Vec3 {
	s, c := math.Sincos(angle)
	return Vec3{
		X: v.X,
		Y: v.Y*c - v.Z*s,
		Z: v.Y*s + v.Z*c,
	}
}

// Point2 is a point in the sky plane.
type Point2 struct {
	Y, Z float64
}

// Circle is the planet's silhouette in the sky plane.
type Circle struct {
	Y, Z float64
	R    float64
}

// Ellipse is a spot's foreshortened silhouette in the sky plane. The
// semi-major axis is the unforeshortened spot radius and lies along the
// tangential direction; the semi-minor axis points along the radial
// direction from disk centre, at position angle Angle (radians from the +y
// sky axis).
type Ellipse struct {
	Y, Z      float64
	SemiMajor float64
	SemiMinor float64
	Angle     float64
}

// Contains reports whether the sky-plane point (y, z) lies inside the
// ellipse, by rotating the offset into the spot-aligned axes.
func (e Ellipse) Contains(y, z float64) bool {
	if e.SemiMajor <= 0 || e.SemiMinor <= 0 {
		return false
	}
	s, c := math.Sincos(e.Angle)
	dy := y - e.Y
	dz := z - e.Z
	u := (dy*c + dz*s) / e.SemiMinor  // radial component
	w := (-dy*s + dz*c) / e.SemiMajor // tangential component
	return u*u+w*w < 1
}

// Polygon approximates the ellipse boundary with a counterclockwise convex
// n-gon.
func (e Ellipse) Polygon(n int) []Point2 {
	s, c := math.Sincos(e.Angle)
	pts := make([]Point2, n)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / float64(n)
		st, ct := math.Sincos(t)
		u := e.SemiMinor * ct
		w := e.SemiMajor * st
		pts[i] = Point2{
			Y: e.Y + u*c - w*s,
			Z: e.Z + u*s + w*c,
		}
	}
	return pts
}

// Polygon approximates the circle boundary with a counterclockwise convex
// n-gon.
func (c Circle) Polygon(n int) []Point2 {
	pts := make([]Point2, n)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / float64(n)
		st, ct := math.Sincos(t)
		pts[i] = Point2{Y: c.Y + c.R*ct, Z: c.Z + c.R*st}
	}
	return pts
}

// clipConvex intersects a subject polygon with a convex clip polygon using
// Sutherland–Hodgman clipping. Both polygons must wind counterclockwise.
func clipConvex(subject, clip []Point2) []Point2 {
	out := subject
	for i := range clip {
		if len(out) == 0 {
			return nil
		}
		a := clip[i]
		b := clip[(i+1)%len(clip)]
		out = clipEdge(out, a, b)
	}
	return out
}

// clipEdge keeps the part of the polygon on the left side of the directed
// edge a→b.
func clipEdge(poly []Point2, a, b Point2) []Point2 {
	inside := func(p Point2) bool {
		return (b.Y-a.Y)*(p.Z-a.Z)-(b.Z-a.Z)*(p.Y-a.Y) >= 0
	}
	intersect := func(p, q Point2) Point2 {
		// Line a→b meets segment p→q.
		dY := b.Y - a.Y
		dZ := b.Z - a.Z
		num := dY*(p.Z-a.Z) - dZ*(p.Y-a.Y)
		den := dZ*(q.Y-p.Y) - dY*(q.Z-p.Z)
		if den == 0 {
			return p
		}
		t := num / den
		return Point2{Y: p.Y + t*(q.Y-p.Y), Z: p.Z + t*(q.Z-p.Z)}
	}

	var out []Point2
	for i := range poly {
		cur := poly[i]
		prev := poly[(i+len(poly)-1)%len(poly)]
		curIn := inside(cur)
		prevIn := inside(prev)
		switch {
		case curIn && prevIn:
			out = append(out, cur)
		case curIn && !prevIn:
			out = append(out, intersect(prev, cur), cur)
		case !curIn && prevIn:
			out = append(out, intersect(prev, cur))
		}
	}
	return out
}

// polygonArea returns the absolute shoelace area of a simple polygon.
func polygonArea(poly []Point2) float64 {
	if len(poly) < 3 {
		return 0
	}
	var sum float64
	for i := range poly {
		j := (i + 1) % len(poly)
		sum += poly[i].Y*poly[j].Z - poly[j].Y*poly[i].Z
	}
	return math.Abs(sum) / 2
}
