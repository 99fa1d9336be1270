package main

import (
	"errors"
	"fmt"
)

var ErrShapeNotFound = errors.New("shape not found")

// NewDesign returns an empty document with the default canvas.
func NewDesign(name string) Design {
	return Design{
		ID:   newID(),
		Name: name,
		Canvas: CanvasSettings{
			Width:      defaultCanvasWidth,
			Height:     defaultCanvasHeight,
			Background: defaultCanvasBackground,
		},
		Shapes: []Shape{},
	}
}

func (d Design) indexOf(id string) int {
	for i, s := range d.Shapes {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// FindShape looks up a top level shape by id.
func (d Design) FindShape(id string) (Shape, bool) {
	if i := d.indexOf(id); i >= 0 {
		return d.Shapes[i], true
	}
	return Shape{}, false
}

func (d Design) withShapes(shapes []Shape) Design {
	d.Shapes = shapes
	return d
}

// AddShape appends shape on top of the stack.
func AddShape(d Design, shape Shape) Design {
	shapes := make([]Shape, 0, len(d.Shapes)+1)
	shapes = append(shapes, d.Shapes...)
	shapes = append(shapes, shape)
	return d.withShapes(shapes)
}

func applyPatch(s Shape, p ShapePatch) Shape {
	if p.Position != nil {
		s.Position = *p.Position
	}
	if p.Size != nil {
		s.Size = *p.Size
	}
	if p.Style != nil {
		s.Style = *p.Style
	}
	if p.Transform != nil {
		t := *p.Transform
		s.Transform = &t
	}
	if p.Text != nil {
		s.Text = *p.Text
	}
	if p.Ports != nil {
		s.Ports = append([]Port(nil), p.Ports...)
	}
	if p.Children != nil {
		s.Children = append([]Shape(nil), p.Children...)
	}
	if p.Source != nil {
		src := *p.Source
		s.Source = &src
	}
	if p.Target != nil {
		dst := *p.Target
		s.Target = &dst
	}
	return s
}

// UpdateShape replaces the patched fields of the shape with the given id.
// An unknown id leaves the design as it was.
func UpdateShape(d Design, id string, patch ShapePatch) Design {
	shapes := make([]Shape, len(d.Shapes))
	for i, s := range d.Shapes {
		if s.ID == id {
			s = applyPatch(s, patch)
		}
		shapes[i] = s
	}
	return d.withShapes(shapes)
}

func DeleteShape(d Design, id string) Design {
	shapes := make([]Shape, 0, len(d.Shapes))
	for _, s := range d.Shapes {
		if s.ID != id {
			shapes = append(shapes, s)
		}
	}
	return d.withShapes(shapes)
}

func MoveShape(d Design, id string, dx, dy float64) (Design, error) {
	s, ok := d.FindShape(id)
	if !ok {
		return d, fmt.Errorf("move %s: %w", id, ErrShapeNotFound)
	}
	pos := Point{X: s.Position.X + dx, Y: s.Position.Y + dy}
	return UpdateShape(d, id, ShapePatch{Position: &pos}), nil
}

func ResizeShape(d Design, id string, width, height float64) Design {
	return UpdateShape(d, id, ShapePatch{Size: &Size{Width: width, Height: height}})
}

// RotateShape sets the absolute rotation in degrees, keeping any scale or
// skew already on the shape.
func RotateShape(d Design, id string, angle float64) (Design, error) {
	s, ok := d.FindShape(id)
	if !ok {
		return d, fmt.Errorf("rotate %s: %w", id, ErrShapeNotFound)
	}
	var t Transform
	if s.Transform != nil {
		t = *s.Transform
	}
	t.Rotate = angle
	return UpdateShape(d, id, ShapePatch{Transform: &t}), nil
}

// MoveLayer swaps the shape with its neighbour above or below. Shapes already
// at the end of the stack stay put.
func MoveLayer(d Design, id string, dir LayerDirection) Design {
	i := d.indexOf(id)
	if i < 0 {
		return d
	}
	j := i + 1
	if dir == LayerDown {
		j = i - 1
	}
	if j < 0 || j >= len(d.Shapes) {
		return d
	}
	shapes := append([]Shape(nil), d.Shapes...)
	shapes[i], shapes[j] = shapes[j], shapes[i]
	return d.withShapes(shapes)
}

// ToggleVisibility flips opacity between 0 and 1.
func ToggleVisibility(d Design, id string) Design {
	s, ok := d.FindShape(id)
	if !ok {
		return d
	}
	style := s.Style
	if style.Alpha() == 0 {
		style.Opacity = floatPtr(1)
	} else {
		style.Opacity = floatPtr(0)
	}
	return UpdateShape(d, id, ShapePatch{Style: &style})
}

func ToggleTextStyle(d Design, id string, flag TextStyleFlag) Design {
	s, ok := d.FindShape(id)
	if !ok {
		return d
	}
	style := s.Style
	switch flag {
	case TextBold:
		style.Bold = !style.Bold
	case TextItalic:
		style.Italic = !style.Italic
	case TextUnderline:
		style.Underline = !style.Underline
	case TextStrikethrough:
		style.Strikethrough = !style.Strikethrough
	}
	return UpdateShape(d, id, ShapePatch{Style: &style})
}

func SetTextAlign(d Design, id string, align TextAlign) Design {
	s, ok := d.FindShape(id)
	if !ok {
		return d
	}
	style := s.Style
	style.TextAlign = align
	return UpdateShape(d, id, ShapePatch{Style: &style})
}

// ConnectorsTo lists connectors whose source or target names id.
func (d Design) ConnectorsTo(id string) []Shape {
	var out []Shape
	for _, s := range d.Shapes {
		if s.Type != ShapeConnector {
			continue
		}
		if (s.Source != nil && s.Source.ShapeID == id) || (s.Target != nil && s.Target.ShapeID == id) {
			out = append(out, s)
		}
	}
	return out
}

// FlattenShapes expands groups into their children with absolute positions.
// Nested groups are expanded recursively.
func FlattenShapes(shapes []Shape) []Shape {
	var out []Shape
	for _, s := range shapes {
		if s.Type != ShapeGroup {
			out = append(out, s)
			continue
		}
		children := make([]Shape, len(s.Children))
		for i, c := range s.Children {
			c.Position = Point{X: s.Position.X + c.Position.X, Y: s.Position.Y + c.Position.Y}
			children[i] = c
		}
		out = append(out, FlattenShapes(children)...)
	}
	return out
}
