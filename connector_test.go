package main

import (
	"errors"
	"testing"
)

func TestPortPosition(t *testing.T) {
	shape := Shape{
		ID:       "s",
		Type:     ShapeRectangle,
		Position: Point{X: 10, Y: 10},
		Size:     Size{Width: 40, Height: 20},
		Ports: []Port{
			{ID: "right", Position: PortRight, Offset: floatPtr(0.5)},
			{ID: "top", Position: PortTop},
			{ID: "bottom", Position: PortBottom, Offset: floatPtr(0.25)},
			{ID: "left0", Position: PortLeft, Offset: floatPtr(0)},
		},
	}

	tests := []struct {
		port string
		want Point
	}{
		{"right", Point{X: 50, Y: 20}},
		{"top", Point{X: 30, Y: 10}},
		{"bottom", Point{X: 20, Y: 30}},
		{"left0", Point{X: 10, Y: 10}},
	}

	for _, tt := range tests {
		got, err := PortPosition(shape, tt.port)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.port, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %+v, got %+v", tt.port, tt.want, got)
		}
	}
}

func TestPortPositionMissingPort(t *testing.T) {
	shape := rect("s", 0, 0, 10, 10)
	_, err := PortPosition(shape, "nope")

	if !errors.Is(err, ErrPortNotFound) {
		t.Fatalf("expected ErrPortNotFound, got %v", err)
	}
	var pnf *PortNotFoundError
	if !errors.As(err, &pnf) {
		t.Fatalf("expected *PortNotFoundError, got %T", err)
	}
	if pnf.ShapeID != "s" || pnf.PortID != "nope" {
		t.Errorf("unexpected error fields: %+v", pnf)
	}
}

func TestPortPositionIgnoresRotation(t *testing.T) {
	s := rect("s", 0, 0, 100, 50)
	plain, _ := PortPosition(s, "right")
	s.Transform = &Transform{Rotate: 90}
	rotated, _ := PortPosition(s, "right")

	if plain != rotated {
		t.Errorf("rotation moved the port: %+v vs %+v", plain, rotated)
	}
}

func TestConnectorPath(t *testing.T) {
	straight := ConnectorPath(Point{X: 0, Y: 0}, Point{X: 100, Y: 100}, LineStraight, 0)
	if len(straight) != 2 || straight[0] != (Point{}) || straight[1] != (Point{X: 100, Y: 100}) {
		t.Errorf("straight path: %+v", straight)
	}

	for _, lt := range []LineType{LineOrthogonal, LineCurved} {
		path := ConnectorPath(Point{X: 0, Y: 10}, Point{X: 100, Y: 50}, lt, 5)
		want := []Point{{X: 0, Y: 10}, {X: 50, Y: 10}, {X: 50, Y: 50}, {X: 100, Y: 50}}
		if len(path) != len(want) {
			t.Fatalf("%s: expected %d points, got %d", lt, len(want), len(path))
		}
		for i := range want {
			if path[i] != want[i] {
				t.Errorf("%s point %d: expected %+v, got %+v", lt, i, want[i], path[i])
			}
		}
	}
}

func TestConnectorRoute(t *testing.T) {
	a := rect("a", 0, 0, 40, 20)
	b := rect("b", 100, 100, 40, 20)
	conn := NewConnector(ConnectorEnd{ShapeID: "a", PortID: "right"}, ConnectorEnd{ShapeID: "b", PortID: "left"}, &ShapeStyle{LineType: LineStraight})
	d := designWith(a, b, conn)

	path, err := ConnectorRoute(d, conn)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if path[0] != (Point{X: 40, Y: 10}) || path[1] != (Point{X: 100, Y: 110}) {
		t.Errorf("unexpected route %+v", path)
	}
}

func TestConnectorRouteDangling(t *testing.T) {
	conn := NewConnector(ConnectorEnd{ShapeID: "gone", PortID: "right"}, ConnectorEnd{ShapeID: "b", PortID: "left"}, nil)
	d := designWith(rect("b", 0, 0, 10, 10), conn)

	if _, err := ConnectorRoute(d, conn); !errors.Is(err, ErrShapeNotFound) {
		t.Errorf("expected ErrShapeNotFound, got %v", err)
	}

	bad := NewConnector(ConnectorEnd{ShapeID: "b", PortID: "nowhere"}, ConnectorEnd{ShapeID: "b", PortID: "left"}, nil)
	if _, err := ConnectorRoute(d, bad); !errors.Is(err, ErrPortNotFound) {
		t.Errorf("expected ErrPortNotFound, got %v", err)
	}
}

func TestPortAt(t *testing.T) {
	d := designWith(rect("a", 0, 0, 40, 20), rect("b", 100, 0, 40, 20))

	end, pos, ok := PortAt(d, 102, 11, "")
	if !ok || end.ShapeID != "b" || end.PortID != "left" {
		t.Fatalf("expected b.left, got %+v ok=%v", end, ok)
	}
	if pos != (Point{X: 100, Y: 10}) {
		t.Errorf("expected (100,10), got %+v", pos)
	}

	if _, _, ok := PortAt(d, 102, 11, "b"); ok {
		t.Errorf("skipped shape should not match")
	}
	if _, _, ok := PortAt(d, 70, 70, ""); ok {
		t.Errorf("no port near (70,70)")
	}
}

func TestNearestPort(t *testing.T) {
	s := rect("a", 0, 0, 100, 100)
	port, _, ok := NearestPort(s, 90, 55)
	if !ok || port.ID != "right" {
		t.Errorf("expected right, got %+v", port)
	}
	if _, _, ok := NearestPort(Shape{}, 0, 0); ok {
		t.Errorf("shape without ports should report no port")
	}
}
