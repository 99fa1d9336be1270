package main

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/fogleman/gg"
)

type Renderer struct {
	fonts *FontBook
}

func NewRenderer(fonts *FontBook) *Renderer {
	if fonts == nil {
		fonts = NewFontBook("")
	}
	return &Renderer{fonts: fonts}
}

func canvasSize(d Design) (int, int) {
	w, h := int(math.Ceil(d.Canvas.Width)), int(math.Ceil(d.Canvas.Height))
	if w <= 0 {
		w = defaultCanvasWidth
	}
	if h <= 0 {
		h = defaultCanvasHeight
	}
	return w, h
}

// Image draws the design on a fresh context sized to its canvas.
func (r *Renderer) Image(d Design, selectedID string) image.Image {
	w, h := canvasSize(d)
	dc := gg.NewContext(w, h)
	r.Render(dc, d, selectedID)
	return dc.Image()
}

func (r *Renderer) EncodePNG(w io.Writer, d Design) error {
	w0, h0 := canvasSize(d)
	dc := gg.NewContext(w0, h0)
	r.Render(dc, d, "")
	return dc.EncodePNG(w)
}

func (r *Renderer) ExportPNG(d Design, filename string) error {
	w, h := canvasSize(d)
	dc := gg.NewContext(w, h)
	r.Render(dc, d, "")
	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("failed to save png: %w", err)
	}
	return nil
}

// Render paints the background and then every shape in stack order.
func (r *Renderer) Render(dc *gg.Context, d Design, selectedID string) {
	dc.SetColor(colorOr(d.Canvas.Background, "#ffffff"))
	dc.Clear()
	for _, s := range d.Shapes {
		r.renderShape(dc, d, s, selectedID)
	}
}

func (r *Renderer) renderShape(dc *gg.Context, d Design, s Shape, selectedID string) {
	dc.Push()
	defer dc.Pop()

	applyTransform(dc, s)
	dc.SetDash()

	alpha := s.Style.Alpha()
	stroke := withAlpha(colorOr(s.Style.Stroke, "#000000"), alpha)
	lineWidth := s.Style.StrokeWidth
	if lineWidth <= 0 {
		lineWidth = 1
	}
	dc.SetLineWidth(lineWidth)
	dc.SetStrokeStyle(gg.NewSolidPattern(stroke))

	switch s.Type {
	case ShapeGroup:
		groupStroke := withAlpha(colorOr(s.Style.Stroke, selectionColor), alpha)
		dc.SetStrokeStyle(gg.NewSolidPattern(groupStroke))
		dc.SetDash(5, 5)
		dc.DrawRectangle(s.Position.X, s.Position.Y, s.Size.Width, s.Size.Height)
		dc.Stroke()
		dc.SetDash()
		for _, child := range s.Children {
			child.Position = Point{X: s.Position.X + child.Position.X, Y: s.Position.Y + child.Position.Y}
			r.renderShape(dc, d, child, selectedID)
		}
	case ShapeText:
		r.drawText(dc, s, alpha)
	case ShapeRectangle, ShapeCircle, ShapeTriangle:
		r.drawBasic(dc, d, s, alpha)
	case ShapeConnector:
		if !drawConnector(dc, d, s, stroke) {
			return
		}
	}

	if s.ID == selectedID {
		drawSelection(dc, s)
	}
}

func applyTransform(dc *gg.Context, s Shape) {
	if s.Transform == nil {
		return
	}
	c := s.Center()
	t := s.Transform
	if t.Rotate != 0 {
		dc.RotateAbout(gg.Radians(t.Rotate), c.X, c.Y)
	}
	if t.Scale != nil {
		dc.ScaleAbout(t.Scale.X, t.Scale.Y, c.X, c.Y)
	}
	if t.Skew != nil {
		dc.ShearAbout(math.Tan(gg.Radians(t.Skew.X)), math.Tan(gg.Radians(t.Skew.Y)), c.X, c.Y)
	}
}

func basicPath(dc *gg.Context, s Shape, dx, dy float64) {
	x, y := s.Position.X+dx, s.Position.Y+dy
	w, h := s.Size.Width, s.Size.Height
	switch s.Type {
	case ShapeRectangle:
		dc.DrawRectangle(x, y, w, h)
	case ShapeCircle:
		dc.DrawCircle(x+w/2, y+h/2, math.Min(w, h)/2)
	case ShapeTriangle:
		dc.MoveTo(x+w/2, y)
		dc.LineTo(x+w, y+h)
		dc.LineTo(x, y+h)
		dc.ClosePath()
	}
}

func (r *Renderer) drawBasic(dc *gg.Context, d Design, s Shape, alpha float64) {
	if sh := s.Style.Shadow; sh != nil {
		if c, ok := parseColor(sh.Color); ok {
			drawShadow(dc, sh, withAlpha(c, alpha), func(dx, dy float64) {
				basicPath(dc, s, dx, dy)
			})
		}
	}

	basicPath(dc, s, 0, 0)
	dc.SetFillStyle(fillPattern(d, s.Style, alpha))
	if s.Style.Stroke != "" {
		dc.FillPreserve()
		dc.Stroke()
		return
	}
	dc.Fill()
}

// drawShadow paints the outline offset by the shadow offset. A blur is
// approximated by a few widening translucent passes.
func drawShadow(dc *gg.Context, sh *Shadow, c color.NRGBA, path func(dx, dy float64)) {
	dc.Push()
	defer dc.Pop()

	passes := int(math.Min(math.Ceil(sh.Blur/2), 4))
	if passes > 0 {
		layer := withAlpha(c, 1/float64(passes+1))
		dc.SetStrokeStyle(gg.NewSolidPattern(layer))
		for i := passes; i > 0; i-- {
			dc.SetLineWidth(sh.Blur * float64(i) / float64(passes))
			path(sh.OffsetX, sh.OffsetY)
			dc.Stroke()
		}
	}
	dc.SetFillStyle(gg.NewSolidPattern(c))
	path(sh.OffsetX, sh.OffsetY)
	dc.Fill()
}

func fillPattern(d Design, style ShapeStyle, alpha float64) gg.Pattern {
	if style.Gradient != nil && len(style.Gradient.Stops) > 0 {
		return gradientPattern(d, *style.Gradient, alpha)
	}
	return gg.NewSolidPattern(withAlpha(colorOr(style.Fill, "#ffffff"), alpha))
}

// gradientPattern spans the whole canvas, not the shape: linear gradients run
// from the origin along angle, radial ones spread from center (canvas centre
// by default) to half the larger canvas side.
func gradientPattern(d Design, g Gradient, alpha float64) gg.Pattern {
	w, h := canvasSize(d)
	extent := math.Max(float64(w), float64(h))

	var grad gg.Gradient
	if g.Type == GradientRadial {
		center := Point{X: float64(w) / 2, Y: float64(h) / 2}
		if g.Center != nil {
			center = *g.Center
		}
		grad = gg.NewRadialGradient(center.X, center.Y, 0, center.X, center.Y, extent/2)
	} else {
		rad := gg.Radians(g.Angle)
		grad = gg.NewLinearGradient(0, 0, extent*math.Cos(rad), extent*math.Sin(rad))
	}
	for _, stop := range g.Stops {
		grad.AddColorStop(clamp(stop.Offset, 0, 1), withAlpha(colorOr(stop.Color, "#000000"), alpha))
	}
	return grad
}

func (r *Renderer) drawText(dc *gg.Context, s Shape, alpha float64) {
	style := s.Style
	fontSize := style.FontSize
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}
	family := style.FontFamily
	if family == "" {
		family = defaultFontFamily
	}
	if face, err := r.fonts.Face(family, style.Bold, style.Italic, fontSize); err == nil {
		dc.SetFontFace(face)
	}

	if sh := style.Shadow; sh != nil {
		if c, ok := parseColor(sh.Color); ok {
			if _, hasBg := parseColor(style.BackgroundColor); hasBg {
				drawShadow(dc, sh, withAlpha(c, alpha), func(dx, dy float64) {
					dc.DrawRectangle(s.Position.X+dx, s.Position.Y+dy, s.Size.Width, s.Size.Height)
				})
			} else {
				drawTextLines(dc, s, fontSize, withAlpha(c, alpha), sh.OffsetX, sh.OffsetY)
			}
		}
	}

	if bg, ok := parseColor(style.BackgroundColor); ok {
		dc.SetFillStyle(gg.NewSolidPattern(withAlpha(bg, alpha)))
		dc.DrawRectangle(s.Position.X, s.Position.Y, s.Size.Width, s.Size.Height)
		dc.Fill()
	}

	drawTextLines(dc, s, fontSize, withAlpha(colorOr(style.TextColor, "#000000"), alpha), 0, 0)
}

// drawTextLines draws the text of s in c, shifted by (dx, dy).
func drawTextLines(dc *gg.Context, s Shape, fontSize float64, c color.NRGBA, dx, dy float64) {
	style := s.Style
	dc.SetColor(c)
	dc.SetLineWidth(1)

	lineHeight := style.LineHeight
	if lineHeight <= 0 {
		lineHeight = defaultLineHeight
	}
	left := s.Position.X + dx
	baseline := s.Position.Y + dy + fontSize

	for i, line := range strings.Split(s.Text, "\n") {
		y := baseline + float64(i)*fontSize*lineHeight
		width, _ := dc.MeasureString(line)
		x := left
		switch style.TextAlign {
		case AlignCenter:
			x = left + (s.Size.Width-width)/2
		case AlignRight:
			x = left + s.Size.Width - width
		}
		dc.DrawString(line, x, y)

		if style.Underline {
			dc.DrawLine(x, y+2, x+width, y+2)
			dc.Stroke()
		}
		if style.Strikethrough {
			dc.DrawLine(x, y-fontSize/3, x+width, y-fontSize/3)
			dc.Stroke()
		}
	}
}

// drawConnector reports false when either end cannot be resolved, in which
// case nothing is drawn.
func drawConnector(dc *gg.Context, d Design, s Shape, stroke color.NRGBA) bool {
	path, err := ConnectorRoute(d, s)
	if err != nil || len(path) < 2 {
		return false
	}

	if s.Style.LineType == LineCurved && len(path) == 4 {
		dc.MoveTo(path[0].X, path[0].Y)
		dc.CubicTo(path[1].X, path[1].Y, path[2].X, path[2].Y, path[3].X, path[3].Y)
	} else {
		roundedPolyline(dc, path, s.Style.CornerRadius)
	}
	dc.Stroke()

	dc.SetFillStyle(gg.NewSolidPattern(stroke))
	n := len(path)
	if s.Style.EndArrow == ArrowHead {
		drawArrowHead(dc, path[n-2], path[n-1])
	}
	if s.Style.StartArrow == ArrowHead {
		drawArrowHead(dc, path[1], path[0])
	}
	return true
}

// roundedPolyline strokes the path with each interior corner cut back by up to
// radius and joined with a quadratic curve through the original vertex.
func roundedPolyline(dc *gg.Context, path []Point, radius float64) {
	dc.MoveTo(path[0].X, path[0].Y)
	for i := 1; i < len(path)-1; i++ {
		prev, cur, next := path[i-1], path[i], path[i+1]
		inLen := math.Hypot(cur.X-prev.X, cur.Y-prev.Y)
		outLen := math.Hypot(next.X-cur.X, next.Y-cur.Y)
		r := math.Min(radius, math.Min(inLen, outLen)/2)
		if r <= 0 {
			dc.LineTo(cur.X, cur.Y)
			continue
		}
		before := Point{X: cur.X - (cur.X-prev.X)/inLen*r, Y: cur.Y - (cur.Y-prev.Y)/inLen*r}
		after := Point{X: cur.X + (next.X-cur.X)/outLen*r, Y: cur.Y + (next.Y-cur.Y)/outLen*r}
		dc.LineTo(before.X, before.Y)
		dc.QuadraticTo(cur.X, cur.Y, after.X, after.Y)
	}
	last := path[len(path)-1]
	dc.LineTo(last.X, last.Y)
}

// arrowWings returns the two back corners of an arrowhead sitting on the
// segment from -> tip, each arrowLength away at 30 degrees.
func arrowWings(from, tip Point) (Point, Point) {
	angle := math.Atan2(tip.Y-from.Y, tip.X-from.X)
	return Point{
			X: tip.X - arrowLength*math.Cos(angle-math.Pi/6),
			Y: tip.Y - arrowLength*math.Sin(angle-math.Pi/6),
		}, Point{
			X: tip.X - arrowLength*math.Cos(angle+math.Pi/6),
			Y: tip.Y - arrowLength*math.Sin(angle+math.Pi/6),
		}
}

func drawArrowHead(dc *gg.Context, from, tip Point) {
	a, b := arrowWings(from, tip)
	dc.MoveTo(tip.X, tip.Y)
	dc.LineTo(a.X, a.Y)
	dc.LineTo(b.X, b.Y)
	dc.ClosePath()
	dc.Fill()
}

// drawSelection runs inside the shape's transform, so the outline and
// handles turn with the shape. Port markers do too, which is why they drift
// from the unrotated points connectors attach to.
func drawSelection(dc *gg.Context, s Shape) {
	if s.Type == ShapeConnector {
		return
	}
	accent := colorOr(selectionColor, "#2196f3")
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	x, y := s.Position.X, s.Position.Y
	w, h := s.Size.Width, s.Size.Height

	dc.SetStrokeStyle(gg.NewSolidPattern(accent))
	dc.SetLineWidth(1)
	dc.SetDash(5, 5)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()

	dc.SetLineWidth(2)
	dc.SetDash(4, 4)
	rot := rotateHandle(s)
	dc.DrawLine(x+w/2, y, rot.X, rot.Y)
	dc.Stroke()
	dc.SetDash()

	c := s.Center()
	dc.SetFillStyle(gg.NewSolidPattern(accent))
	dc.DrawCircle(c.X, c.Y, handleSize)
	dc.FillPreserve()
	dc.Stroke()

	dc.SetFillStyle(gg.NewSolidPattern(white))
	dc.DrawCircle(rot.X, rot.Y, handleSize)
	dc.FillPreserve()
	dc.Stroke()

	for _, hd := range resizeHandles(s) {
		dc.DrawRectangle(hd.at.X-handleSize/2, hd.at.Y-handleSize/2, handleSize, handleSize)
		dc.FillPreserve()
		dc.Stroke()
	}

	for _, p := range s.Ports {
		pos := edgePoint(s, p)
		dc.DrawCircle(pos.X, pos.Y, portMarkerRadius)
		dc.FillPreserve()
		dc.Stroke()
	}
}
