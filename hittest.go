package main

import (
	"math"
)

// Relative tolerance for the triangle area test. The sub-triangle areas only
// drift from the whole by rounding error, which grows with the area itself.
const triangleTolerance = 1e-9

// Contains reports whether (x, y) lies inside the shape's outline. Bounds are
// inclusive. Rotation is not taken into account. Groups and connectors never
// contain a point directly.
func (s Shape) Contains(x, y float64) bool {
	pos, size := s.Position, s.Size

	switch s.Type {
	case ShapeRectangle, ShapeText:
		return x >= pos.X && x <= pos.X+size.Width &&
			y >= pos.Y && y <= pos.Y+size.Height
	case ShapeCircle:
		c := s.Center()
		radius := math.Min(size.Width, size.Height) / 2
		return math.Hypot(x-c.X, y-c.Y) <= radius
	case ShapeTriangle:
		a, b, c := triangleVertices(s)
		return pointInTriangle(Point{X: x, Y: y}, a, b, c)
	}
	return false
}

// triangleVertices returns apex (top centre), bottom right and bottom left.
func triangleVertices(s Shape) (Point, Point, Point) {
	pos, size := s.Position, s.Size
	return Point{X: pos.X + size.Width/2, Y: pos.Y},
		Point{X: pos.X + size.Width, Y: pos.Y + size.Height},
		Point{X: pos.X, Y: pos.Y + size.Height}
}

func pointInTriangle(p, a, b, c Point) bool {
	area := triangleArea(a, b, c)
	sum := triangleArea(p, b, c) + triangleArea(a, p, c) + triangleArea(a, b, p)
	tolerance := math.Max(area, 1) * triangleTolerance
	return math.Abs(area-sum) <= tolerance
}

func triangleArea(a, b, c Point) float64 {
	return math.Abs((a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y)) / 2)
}

// ShapeAt returns the topmost shape under (x, y). A group counts as hit when
// one of its children is.
func (d Design) ShapeAt(x, y float64) (Shape, bool) {
	for i := len(d.Shapes) - 1; i >= 0; i-- {
		s := d.Shapes[i]
		if s.Type == ShapeGroup {
			for _, child := range FlattenShapes([]Shape{s}) {
				if child.Contains(x, y) {
					return s, true
				}
			}
			continue
		}
		if s.Contains(x, y) {
			return s, true
		}
	}
	return Shape{}, false
}

type HandleKind int

const (
	HandleNone HandleKind = iota
	HandleMove
	HandleRotate
	HandleResizeNW
	HandleResizeN
	HandleResizeNE
	HandleResizeE
	HandleResizeSE
	HandleResizeS
	HandleResizeSW
	HandleResizeW
)

func (h HandleKind) IsResize() bool {
	return h >= HandleResizeNW && h <= HandleResizeW
}

type handle struct {
	kind HandleKind
	at   Point
}

func resizeHandles(s Shape) []handle {
	x, y := s.Position.X, s.Position.Y
	w, h := s.Size.Width, s.Size.Height
	return []handle{
		{HandleResizeNW, Point{X: x, Y: y}},
		{HandleResizeNE, Point{X: x + w, Y: y}},
		{HandleResizeSE, Point{X: x + w, Y: y + h}},
		{HandleResizeSW, Point{X: x, Y: y + h}},
		{HandleResizeN, Point{X: x + w/2, Y: y}},
		{HandleResizeE, Point{X: x + w, Y: y + h/2}},
		{HandleResizeS, Point{X: x + w/2, Y: y + h}},
		{HandleResizeW, Point{X: x, Y: y + h/2}},
	}
}

func rotateHandle(s Shape) Point {
	return Point{X: s.Position.X + s.Size.Width/2, Y: s.Position.Y - rotateHandleGap}
}

// toLocal undoes the shape's rotation so handle positions can be compared in
// the shape's own frame.
func toLocal(s Shape, x, y float64) Point {
	deg := s.Rotation()
	if deg == 0 {
		return Point{X: x, Y: y}
	}
	c := s.Center()
	rad := -deg * math.Pi / 180
	dx, dy := x-c.X, y-c.Y
	return Point{
		X: c.X + dx*math.Cos(rad) - dy*math.Sin(rad),
		Y: c.Y + dx*math.Sin(rad) + dy*math.Cos(rad),
	}
}

// HandleAt reports which transform handle of a selected shape sits under the
// pointer. The rotate handle wins over resize handles, which win over the
// centre move handle.
func HandleAt(s Shape, x, y float64) HandleKind {
	if s.Type == ShapeConnector {
		return HandleNone
	}
	p := toLocal(s, x, y)
	near := func(q Point) bool {
		return math.Hypot(p.X-q.X, p.Y-q.Y) <= handleSize
	}

	if near(rotateHandle(s)) {
		return HandleRotate
	}
	for _, h := range resizeHandles(s) {
		if near(h.at) {
			return h.kind
		}
	}
	if near(s.Center()) {
		return HandleMove
	}
	return HandleNone
}
