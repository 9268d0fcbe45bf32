package raster

// edge is a line segment prepared for winding number tests.
type edge struct {
	x0, y0 float64 // start point
	x1, y1 float64 // end point
	dxdy   float64 // (x1-x0)/(y1-y0), 0 for horizontal edges
}

func makeEdges(lines []Line) []edge {
	edges := make([]edge, len(lines))
	for i, l := range lines {
		e := edge{
			x0: float64(l.P1.X), y0: float64(l.P1.Y),
			x1: float64(l.P2.X), y1: float64(l.P2.Y),
		}
		if e.y0 != e.y1 {
			e.dxdy = (e.x1 - e.x0) / (e.y1 - e.y0)
		}
		edges[i] = e
	}
	return edges
}

// winding returns the winding number of the outline around (x, y), counting
// crossings of a ray from (x, y) to the left.
//
// An edge crosses the ray if y is in [y0, y1) for upward edges and in
// [y1, y0) for downward edges. Horizontal edges never cross.
func winding(x, y float64, edges []edge) int {
	w := 0
	for _, e := range edges {
		if e.x0 > x && e.x1 > x {
			continue
		}
		if (e.y0 > y && e.y1 > y) || (e.y0 < y && e.y1 < y) {
			continue
		}
		var dir int
		switch {
		case e.y0 <= y && y < e.y1:
			dir = 1
		case e.y1 <= y && y < e.y0:
			dir = -1
		default:
			continue
		}
		// for vertical edges dxdy is 0 and the intercept is x0
		if xc := e.x0 + (y-e.y0)*e.dxdy; xc <= x {
			w += dir
		}
	}
	return w
}

// Inside reports whether the point (x, y) lies inside the outline given by
// lines, using the nonzero winding rule.
func Inside(x, y float32, lines []Line) bool {
	return winding(float64(x), float64(y), makeEdges(lines)) != 0
}
