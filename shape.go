package main

import (
	"github.com/google/uuid"
)

func newID() string {
	return uuid.NewString()
}

func floatPtr(v float64) *float64 {
	return &v
}

func defaultShapeStyle() ShapeStyle {
	return ShapeStyle{
		Fill:        "#ffffff",
		Stroke:      "#000000",
		StrokeWidth: 1,
		Opacity:     floatPtr(1),
		TextColor:   "#000000",
		FontSize:    defaultFontSize,
		FontFamily:  defaultFontFamily,
	}
}

func defaultConnectorStyle() ShapeStyle {
	return ShapeStyle{
		Stroke:       "#000000",
		StrokeWidth:  2,
		LineType:     LineOrthogonal,
		StartArrow:   ArrowNone,
		EndArrow:     ArrowHead,
		CornerRadius: 5,
	}
}

// mergeStyle overlays every set field of over onto base.
func mergeStyle(base, over ShapeStyle) ShapeStyle {
	out := base
	if over.Fill != "" {
		out.Fill = over.Fill
	}
	if over.Stroke != "" {
		out.Stroke = over.Stroke
	}
	if over.StrokeWidth != 0 {
		out.StrokeWidth = over.StrokeWidth
	}
	if over.Opacity != nil {
		out.Opacity = floatPtr(*over.Opacity)
	}
	if over.TextColor != "" {
		out.TextColor = over.TextColor
	}
	if over.FontSize != 0 {
		out.FontSize = over.FontSize
	}
	if over.FontFamily != "" {
		out.FontFamily = over.FontFamily
	}
	out.Bold = out.Bold || over.Bold
	out.Italic = out.Italic || over.Italic
	out.Underline = out.Underline || over.Underline
	out.Strikethrough = out.Strikethrough || over.Strikethrough
	if over.TextAlign != "" {
		out.TextAlign = over.TextAlign
	}
	if over.LineHeight != 0 {
		out.LineHeight = over.LineHeight
	}
	if over.BackgroundColor != "" {
		out.BackgroundColor = over.BackgroundColor
	}
	if over.Shadow != nil {
		shadow := *over.Shadow
		out.Shadow = &shadow
	}
	if over.Gradient != nil {
		gradient := *over.Gradient
		gradient.Stops = append([]GradientStop(nil), over.Gradient.Stops...)
		out.Gradient = &gradient
	}
	if over.LineType != "" {
		out.LineType = over.LineType
	}
	if over.StartArrow != "" {
		out.StartArrow = over.StartArrow
	}
	if over.EndArrow != "" {
		out.EndArrow = over.EndArrow
	}
	if over.CornerRadius != 0 {
		out.CornerRadius = over.CornerRadius
	}
	return out
}

// NewShape builds a shape with a fresh id and the default style merged with
// opts.Style. Text shapes with a fill get a text colour that contrasts with it.
func NewShape(shapeType ShapeType, position Point, size Size, opts ShapeOptions) Shape {
	style := defaultShapeStyle()
	if opts.Style != nil {
		style = mergeStyle(style, *opts.Style)
	}

	shape := Shape{
		ID:       newID(),
		Type:     shapeType,
		Position: position,
		Size:     size,
		Style:    style,
		Text:     opts.Text,
	}
	if opts.Transform != nil {
		transform := *opts.Transform
		shape.Transform = &transform
	}
	if shapeType == ShapeGroup {
		shape.Children = []Shape{}
	}

	if shapeType == ShapeText && shape.Style.Fill != "" {
		shape.Style.TextColor = ContrastTextColor(shape.Style.Fill)
	}
	return shape
}

// WithDefaultPorts gives a shape one port per edge. Connectors are returned
// untouched.
func WithDefaultPorts(shape Shape) Shape {
	if shape.Type == ShapeConnector {
		return shape
	}
	shape.Ports = []Port{
		{ID: "top", Position: PortTop},
		{ID: "right", Position: PortRight},
		{ID: "bottom", Position: PortBottom},
		{ID: "left", Position: PortLeft},
	}
	return shape
}

// DuplicateShape copies shape under a new id, shifted down and right.
// Group children keep their ids since they are scoped to the group.
func DuplicateShape(shape Shape) Shape {
	dup := cloneShape(shape)
	dup.ID = newID()
	dup.Position = Point{
		X: shape.Position.X + duplicateOffset,
		Y: shape.Position.Y + duplicateOffset,
	}
	return dup
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// cloneShape deep copies s so the copy shares no pointers or slices with it.
func cloneShape(s Shape) Shape {
	out := s
	out.Style = cloneStyle(s.Style)
	if s.Transform != nil {
		t := *s.Transform
		t.Scale = clonePtr(s.Transform.Scale)
		t.Skew = clonePtr(s.Transform.Skew)
		out.Transform = &t
	}
	out.Source = clonePtr(s.Source)
	out.Target = clonePtr(s.Target)
	if s.Ports != nil {
		out.Ports = make([]Port, len(s.Ports))
		for i, p := range s.Ports {
			p.Offset = clonePtr(p.Offset)
			out.Ports[i] = p
		}
	}
	if s.Children != nil {
		out.Children = make([]Shape, len(s.Children))
		for i, c := range s.Children {
			out.Children[i] = cloneShape(c)
		}
	}
	return out
}

func cloneStyle(st ShapeStyle) ShapeStyle {
	out := st
	out.Opacity = clonePtr(st.Opacity)
	out.Shadow = clonePtr(st.Shadow)
	if st.Gradient != nil {
		g := *st.Gradient
		g.Center = clonePtr(st.Gradient.Center)
		g.Stops = append([]GradientStop(nil), st.Gradient.Stops...)
		out.Gradient = &g
	}
	return out
}

// NewConnector links two ports. Nothing checks that either end exists; the
// geometry is worked out when the connector is drawn.
func NewConnector(source, target ConnectorEnd, overrides *ShapeStyle) Shape {
	style := defaultConnectorStyle()
	if overrides != nil {
		style = mergeStyle(style, *overrides)
	}
	src, dst := source, target
	return Shape{
		ID:     newID(),
		Type:   ShapeConnector,
		Style:  style,
		Source: &src,
		Target: &dst,
	}
}
