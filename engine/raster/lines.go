package raster

import (
	"fmt"

	"github.com/npillmayer/glyphatlas/core/font/ttf"
)

// Point is a point in design units.
type Point struct {
	X, Y float32
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

func pt(gp ttf.GlyphPoint) Point {
	return Point{X: float32(gp.X), Y: float32(gp.Y)}
}

func midpoint(p, q Point) Point {
	return Point{X: p.X + (q.X-p.X)/2, Y: p.Y + (q.Y-p.Y)/2}
}

// Line is a directed line segment from P1 to P2.
type Line struct {
	P1, P2 Point
}

func (l Line) String() string {
	return fmt.Sprintf("%v→%v", l.P1, l.P2)
}

// bezierSteps is the number of line segments a quadratic curve is
// flattened into.
const bezierSteps = 8

// Flatten appends the flattening of the quadratic Bézier curve from p0 to p1
// with control point ctrl to lines. The curve is evaluated at parameter steps
// of 1/8, giving 8 segments.
func Flatten(p0, ctrl, p1 Point, lines []Line) []Line {
	prev := p0
	for i := 1; i <= bezierSteps; i++ {
		t := float32(i) / bezierSteps
		u := 1 - t
		next := Point{
			X: u*u*p0.X + 2*t*u*ctrl.X + t*t*p1.X,
			Y: u*u*p0.Y + 2*t*u*ctrl.Y + t*t*p1.Y,
		}
		lines = append(lines, Line{P1: prev, P2: next})
		prev = next
	}
	return lines
}

// Lines converts the contours of a glyph into line segments.
//
// Consecutive on-curve points are connected by straight lines, an off-curve
// point between two on-curve points is the control point of a quadratic
// curve. Between two consecutive off-curve points an on-curve point at their
// midpoint is implied. Every contour is closed.
func Lines(shape *ttf.GlyphShape) []Line {
	if shape == nil {
		return nil
	}
	var lines []Line
	for i := 0; i < shape.NumContours; i++ {
		lines = contourLines(shape.Contour(i), lines)
	}
	return lines
}

func contourLines(pts []ttf.GlyphPoint, lines []Line) []Line {
	n := len(pts)
	if n < 2 {
		return lines
	}
	// find an on-curve point to start from
	var start Point
	switch {
	case pts[0].OnCurve:
		start, pts = pt(pts[0]), pts[1:]
	case pts[n-1].OnCurve:
		start, pts = pt(pts[n-1]), pts[:n-1]
	default:
		start = midpoint(pt(pts[n-1]), pt(pts[0]))
	}
	cur := start
	var ctrl Point
	pending := false
	for _, gp := range pts {
		p := pt(gp)
		switch {
		case gp.OnCurve && pending:
			lines = Flatten(cur, ctrl, p, lines)
			cur, pending = p, false
		case gp.OnCurve:
			lines = append(lines, Line{P1: cur, P2: p})
			cur = p
		case pending: // two off-curve points in a row
			mid := midpoint(ctrl, p)
			lines = Flatten(cur, ctrl, mid, lines)
			cur, ctrl = mid, p
		default:
			ctrl, pending = p, true
		}
	}
	if pending {
		return Flatten(cur, ctrl, start, lines)
	}
	if cur != start {
		lines = append(lines, Line{P1: cur, P2: start})
	}
	return lines
}
