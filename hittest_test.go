package main

import (
	"testing"
)

func TestContains(t *testing.T) {
	square := Shape{Type: ShapeRectangle, Size: Size{Width: 100, Height: 100}}
	circle := Shape{Type: ShapeCircle, Size: Size{Width: 100, Height: 100}}
	triangle := Shape{Type: ShapeTriangle, Size: Size{Width: 100, Height: 100}}
	bigTriangle := Shape{Type: ShapeTriangle, Position: Point{X: 1e5, Y: 1e5}, Size: Size{Width: 1e5, Height: 1e5}}

	tests := []struct {
		name  string
		shape Shape
		x, y  float64
		want  bool
	}{
		{"rect inside", square, 50, 50, true},
		{"rect outside", square, 150, 50, false},
		{"rect corner", square, 100, 100, true},
		{"rect origin", square, 0, 0, true},
		{"circle centre", circle, 50, 50, true},
		{"circle top edge", circle, 50, 0, true},
		{"circle above", circle, 50, -1, false},
		{"circle bbox corner", circle, 2, 2, false},
		{"triangle inside", triangle, 50, 60, true},
		{"triangle apex", triangle, 50, 0, true},
		{"triangle base corner", triangle, 0, 100, true},
		{"triangle top left", triangle, 5, 5, false},
		{"large triangle inside", bigTriangle, 1.5e5, 1.9e5, true},
		{"large triangle outside", bigTriangle, 1.01e5, 1.01e5, false},
		{"group never", Shape{Type: ShapeGroup, Size: Size{Width: 10, Height: 10}}, 5, 5, false},
		{"connector never", Shape{Type: ShapeConnector}, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%v,%v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestShapeAtTopmost(t *testing.T) {
	d := designWith(rect("bottom", 0, 0, 100, 100), rect("top", 50, 50, 100, 100))

	tests := []struct {
		x, y float64
		want string
	}{
		{10, 10, "bottom"},
		{75, 75, "top"},
		{140, 140, "top"},
	}
	for _, tt := range tests {
		s, ok := d.ShapeAt(tt.x, tt.y)
		if !ok || s.ID != tt.want {
			t.Errorf("ShapeAt(%v,%v) = %q, want %q", tt.x, tt.y, s.ID, tt.want)
		}
	}
	if _, ok := d.ShapeAt(500, 500); ok {
		t.Errorf("expected miss at (500,500)")
	}
}

func TestShapeAtGroup(t *testing.T) {
	g := NewShape(ShapeGroup, Point{X: 100, Y: 100}, Size{Width: 50, Height: 50}, ShapeOptions{})
	g.ID = "g"
	g.Children = []Shape{rect("child", 0, 0, 10, 10)}
	d := designWith(g)

	s, ok := d.ShapeAt(105, 105)
	if !ok || s.ID != "g" {
		t.Errorf("expected group hit, got %q", s.ID)
	}
	if _, ok := d.ShapeAt(140, 140); ok {
		t.Errorf("empty part of group should not hit")
	}
}

func TestHandleAt(t *testing.T) {
	s := rect("a", 100, 100, 100, 50)

	tests := []struct {
		name string
		x, y float64
		want HandleKind
	}{
		{"rotate", 150, 70, HandleRotate},
		{"nw", 101, 101, HandleResizeNW},
		{"se", 200, 150, HandleResizeSE},
		{"e", 199, 125, HandleResizeE},
		{"centre", 150, 125, HandleMove},
		{"none", 130, 140, HandleNone},
	}
	for _, tt := range tests {
		if got := HandleAt(s, tt.x, tt.y); got != tt.want {
			t.Errorf("%s: HandleAt = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHandleAtRotated(t *testing.T) {
	s := rect("a", 0, 0, 100, 100)
	s.Transform = &Transform{Rotate: 90}

	// rotate handle at (50,-30) turns to (130,50) about the centre (50,50)
	if got := HandleAt(s, 130, 50); got != HandleRotate {
		t.Errorf("expected rotate handle, got %v", got)
	}
}
