package main

import (
	"math"
)

type GestureKind int

const (
	GestureNone GestureKind = iota
	GestureMove
	GestureConnect
	GestureRotate
	GestureResize
)

const minShapeSize = 10.0

// Gesture is one pointer drag: BeginGesture on press, Update on every
// motion, Finish on release. Motion is always measured against the snapshot
// taken at press time, never accumulated.
type Gesture struct {
	Kind     GestureKind
	Start    Point
	Current  Point
	Original Shape
	Handle   HandleKind
	From     ConnectorEnd
}

func (g Gesture) Active() bool {
	return g.Kind != GestureNone
}

// BeginGesture decides what a press at p starts and which shape ends up
// selected. Ports and handles of the current selection take priority over
// the shapes under the pointer.
func BeginGesture(d Design, selectedID string, p Point) (Gesture, string) {
	if sel, ok := d.FindShape(selectedID); ok {
		if end, pos, ok := shapePortAt(sel, p.X, p.Y); ok {
			return Gesture{Kind: GestureConnect, Start: pos, Current: p, Original: sel, From: end}, sel.ID
		}
		switch h := HandleAt(sel, p.X, p.Y); {
		case h == HandleRotate:
			return Gesture{Kind: GestureRotate, Start: p, Current: p, Original: sel, Handle: h}, sel.ID
		case h.IsResize():
			return Gesture{Kind: GestureResize, Start: p, Current: p, Original: sel, Handle: h}, sel.ID
		}
	}

	if hit, ok := d.ShapeAt(p.X, p.Y); ok {
		return Gesture{Kind: GestureMove, Start: p, Current: p, Original: hit}, hit.ID
	}
	return Gesture{}, ""
}

// Update applies the drag so far to the design.
func (g *Gesture) Update(d Design, p Point) Design {
	g.Current = p
	id := g.Original.ID

	switch g.Kind {
	case GestureMove:
		pos := Point{
			X: g.Original.Position.X + p.X - g.Start.X,
			Y: g.Original.Position.Y + p.Y - g.Start.Y,
		}
		return UpdateShape(d, id, ShapePatch{Position: &pos})
	case GestureRotate:
		next, err := RotateShape(d, id, dragAngle(g.Original, p))
		if err != nil {
			return d
		}
		return next
	case GestureResize:
		pos, size := resizedBounds(g.Original, g.Handle, toLocal(g.Original, p.X, p.Y))
		return UpdateShape(d, id, ShapePatch{Position: &pos, Size: &size})
	}
	return d
}

// Finish ends the gesture. A connect drag released over another shape's port
// adds a connector; the second result reports whether anything changed.
func (g *Gesture) Finish(d Design, p Point) (Design, bool) {
	defer func() { *g = Gesture{} }()

	switch g.Kind {
	case GestureConnect:
		end, _, ok := PortAt(d, p.X, p.Y, g.From.ShapeID)
		if !ok {
			return d, false
		}
		return AddShape(d, NewConnector(g.From, end, nil)), true
	case GestureMove, GestureRotate, GestureResize:
		next := g.Update(d, p)
		return next, p != g.Start
	}
	return d, false
}

// dragAngle is the rotation that puts the rotate handle (straight above the
// centre) under the pointer, rounded to whole degrees.
func dragAngle(s Shape, p Point) float64 {
	c := s.Center()
	deg := math.Atan2(p.Y-c.Y, p.X-c.X)*180/math.Pi + 90
	deg = math.Mod(math.Round(deg)+360, 360)
	return deg
}

func resizedBounds(s Shape, h HandleKind, p Point) (Point, Size) {
	left, top := s.Position.X, s.Position.Y
	right, bottom := left+s.Size.Width, top+s.Size.Height

	switch h {
	case HandleResizeNW, HandleResizeW, HandleResizeSW:
		left = math.Min(p.X, right-minShapeSize)
	case HandleResizeNE, HandleResizeE, HandleResizeSE:
		right = math.Max(p.X, left+minShapeSize)
	}
	switch h {
	case HandleResizeNW, HandleResizeN, HandleResizeNE:
		top = math.Min(p.Y, bottom-minShapeSize)
	case HandleResizeSW, HandleResizeS, HandleResizeSE:
		bottom = math.Max(p.Y, top+minShapeSize)
	}
	return Point{X: left, Y: top}, Size{Width: right - left, Height: bottom - top}
}
