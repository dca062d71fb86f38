package engine

import "github.com/piwi3910/cutplan/internal/model"

// eps absorbs the floating error that builds up over repeated splits.
const eps = 1e-9

// fits reports whether a w x h footprint fits inside container.
func fits(container model.Rect, w, h float64) bool {
	return w <= container.W+eps && h <= container.H+eps
}

// intersects returns true if two rectangles overlap. Touching edges do not
// count as overlap.
func intersects(a, b model.Rect) bool {
	return !(a.X+a.W <= b.X+eps ||
		b.X+b.W <= a.X+eps ||
		a.Y+a.H <= b.Y+eps ||
		b.Y+b.H <= a.Y+eps)
}

// contains returns true if outer fully contains inner, with eps slack on
// every side.
func contains(outer, inner model.Rect) bool {
	return inner.X >= outer.X-eps &&
		inner.Y >= outer.Y-eps &&
		inner.X+inner.W <= outer.X+outer.W+eps &&
		inner.Y+inner.H <= outer.Y+outer.H+eps
}
