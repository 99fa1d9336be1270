package main

import (
	"errors"
	"fmt"
	"math"
)

var ErrPortNotFound = errors.New("port not found")

// PortNotFoundError reports a port lookup miss. It matches ErrPortNotFound
// under errors.Is.
type PortNotFoundError struct {
	ShapeID string
	PortID  string
}

func (e *PortNotFoundError) Error() string {
	return fmt.Sprintf("port %q not found in shape %q", e.PortID, e.ShapeID)
}

func (e *PortNotFoundError) Is(target error) bool {
	return target == ErrPortNotFound
}

func (s Shape) port(id string) (Port, bool) {
	for _, p := range s.Ports {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}

// PortPosition maps a port to canvas coordinates. Ports sit on the unrotated
// bounding box, so a rotated shape's anchors do not follow its outline.
func PortPosition(shape Shape, portID string) (Point, error) {
	port, ok := shape.port(portID)
	if !ok {
		return Point{}, &PortNotFoundError{ShapeID: shape.ID, PortID: portID}
	}
	return edgePoint(shape, port), nil
}

func edgePoint(shape Shape, port Port) Point {
	offset := defaultPortOffset
	if port.Offset != nil {
		offset = *port.Offset
	}
	x, y := shape.Position.X, shape.Position.Y
	w, h := shape.Size.Width, shape.Size.Height

	switch port.Position {
	case PortTop:
		return Point{X: x + w*offset, Y: y}
	case PortRight:
		return Point{X: x + w, Y: y + h*offset}
	case PortBottom:
		return Point{X: x + w*offset, Y: y + h}
	case PortLeft:
		return Point{X: x, Y: y + h*offset}
	}
	return Point{X: x, Y: y}
}

// ConnectorPath returns the polyline for straight and orthogonal lines, and
// the four cubic Bezier control points for curved ones. cornerRadius only
// matters to the renderer.
func ConnectorPath(source, target Point, lineType LineType, cornerRadius float64) []Point {
	if lineType == LineStraight {
		return []Point{source, target}
	}
	midX := source.X + (target.X-source.X)/2
	return []Point{
		source,
		{X: midX, Y: source.Y},
		{X: midX, Y: target.Y},
		target,
	}
}

// ConnectorRoute resolves both ends of a connector against the design and
// routes between them.
func ConnectorRoute(d Design, conn Shape) ([]Point, error) {
	if conn.Source == nil || conn.Target == nil {
		return nil, fmt.Errorf("connector %s: missing endpoint", conn.ID)
	}
	src, err := endpoint(d, *conn.Source)
	if err != nil {
		return nil, fmt.Errorf("connector %s source: %w", conn.ID, err)
	}
	dst, err := endpoint(d, *conn.Target)
	if err != nil {
		return nil, fmt.Errorf("connector %s target: %w", conn.ID, err)
	}
	return ConnectorPath(src, dst, conn.Style.LineType, conn.Style.CornerRadius), nil
}

func endpoint(d Design, end ConnectorEnd) (Point, error) {
	shape, ok := d.FindShape(end.ShapeID)
	if !ok {
		return Point{}, fmt.Errorf("%s: %w", end.ShapeID, ErrShapeNotFound)
	}
	return PortPosition(shape, end.PortID)
}

// PortAt finds the first port within portHitRadius of (x, y). Shapes are
// scanned top down and skip is ignored, so a connection drag does not land
// on the shape it started from.
func PortAt(d Design, x, y float64, skip string) (ConnectorEnd, Point, bool) {
	for i := len(d.Shapes) - 1; i >= 0; i-- {
		s := d.Shapes[i]
		if s.ID == skip || s.Type == ShapeConnector {
			continue
		}
		if end, pos, ok := shapePortAt(s, x, y); ok {
			return end, pos, true
		}
	}
	return ConnectorEnd{}, Point{}, false
}

func shapePortAt(s Shape, x, y float64) (ConnectorEnd, Point, bool) {
	for _, p := range s.Ports {
		pos := edgePoint(s, p)
		if math.Hypot(pos.X-x, pos.Y-y) <= portHitRadius {
			return ConnectorEnd{ShapeID: s.ID, PortID: p.ID}, pos, true
		}
	}
	return ConnectorEnd{}, Point{}, false
}

// NearestPort returns the port of s closest to (x, y).
func NearestPort(s Shape, x, y float64) (Port, Point, bool) {
	best := -1.0
	var bestPort Port
	var bestPos Point
	for _, p := range s.Ports {
		pos := edgePoint(s, p)
		dist := math.Hypot(pos.X-x, pos.Y-y)
		if best < 0 || dist < best {
			best, bestPort, bestPos = dist, p, pos
		}
	}
	return bestPort, bestPos, best >= 0
}
