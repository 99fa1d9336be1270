package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cell is one terminal character. Colours are "#rrggbb" or empty for the
// terminal default.
type cell struct {
	ch rune
	fg string
	bg string
}

type cellGrid struct {
	width  int
	height int
	cells  [][]cell
}

func newCellGrid(width, height int) cellGrid {
	width, height = max(width, 1), max(height, 1)
	cells := make([][]cell, height)
	for row := range cells {
		cells[row] = make([]cell, width)
		for col := range cells[row] {
			cells[row][col] = cell{ch: ' '}
		}
	}
	return cellGrid{width: width, height: height, cells: cells}
}

func (g cellGrid) inBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < g.width && row < g.height
}

func (g cellGrid) set(col, row int, ch rune, fg string) {
	if !g.inBounds(col, row) {
		return
	}
	c := &g.cells[row][col]
	c.ch = ch
	if fg != "" {
		c.fg = fg
	}
}

// cellCenter is the canvas point a terminal cell stands for.
func cellCenter(col, row int) Point {
	return Point{
		X: float64(col)*cellWidth + cellWidth/2,
		Y: float64(row)*cellHeight + cellHeight/2,
	}
}

// cellOf maps a canvas point back to the cell that covers it.
func cellOf(p Point) (int, int) {
	return int(math.Floor(p.X / cellWidth)), int(math.Floor(p.Y / cellHeight))
}

func hexColor(s string) string {
	c, ok := parseColor(s)
	if !ok || c.A == 0 {
		return ""
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// rotatePoint turns p about c by deg degrees.
func rotatePoint(p, c Point, deg float64) Point {
	if deg == 0 {
		return p
	}
	rad := deg * math.Pi / 180
	dx, dy := p.X-c.X, p.Y-c.Y
	return Point{
		X: c.X + dx*math.Cos(rad) - dy*math.Sin(rad),
		Y: c.Y + dx*math.Sin(rad) + dy*math.Cos(rad),
	}
}

// snapPoint returns the canvas point for a pointer in cell (col, row). If a
// port, or a handle of the selected shape, lies inside that cell the pointer
// snaps to it; a cell is larger than the hit radii.
func snapPoint(d Design, selectedID string, col, row int) Point {
	inCell := func(p Point) bool {
		c, r := cellOf(p)
		return c == col && r == row
	}

	if sel, ok := d.FindShape(selectedID); ok && sel.Type != ShapeConnector {
		c := sel.Center()
		if p := rotatePoint(rotateHandle(sel), c, sel.Rotation()); inCell(p) {
			return p
		}
		for _, h := range resizeHandles(sel) {
			if p := rotatePoint(h.at, c, sel.Rotation()); inCell(p) {
				return p
			}
		}
	}
	for i := len(d.Shapes) - 1; i >= 0; i-- {
		s := d.Shapes[i]
		if s.Type == ShapeConnector {
			continue
		}
		for _, port := range s.Ports {
			if p := edgePoint(s, port); inCell(p) {
				return p
			}
		}
	}
	return cellCenter(col, row)
}

// rasterize draws the part of the design seen through a width x height
// window whose top left cell is (panX, panY).
func rasterize(d Design, width, height, panX, panY int, selectedID string) cellGrid {
	g := newCellGrid(width, height)
	background := hexColor(d.Canvas.Background)
	canvasW, canvasH := canvasSize(d)

	leaves := visibleLeaves(d.Shapes)

	for row := 0; row < g.height; row++ {
		for col := 0; col < g.width; col++ {
			p := cellCenter(col+panX, row+panY)
			c := &g.cells[row][col]
			if p.X >= 0 && p.Y >= 0 && p.X < float64(canvasW) && p.Y < float64(canvasH) {
				c.bg = background
			}

			for i := len(leaves) - 1; i >= 0; i-- {
				s := leaves[i]
				if !s.Contains(p.X, p.Y) {
					continue
				}
				if s.Type != ShapeText {
					if fill := hexColor(s.Style.Fill); fill != "" {
						c.bg = fill
					}
					c.ch, c.fg = edgeRune(s, p), hexColor(s.Style.Stroke)
				} else if bg := hexColor(s.Style.BackgroundColor); bg != "" {
					c.bg = bg
				}
				break
			}
		}
	}

	for _, s := range leaves {
		if s.Text != "" {
			drawCellText(g, s, panX, panY)
		}
	}

	for _, s := range d.Shapes {
		if s.Type == ShapeConnector && s.Style.Alpha() > 0 {
			drawCellConnector(g, d, s, panX, panY)
		}
	}

	if sel, ok := d.FindShape(selectedID); ok {
		drawCellSelection(g, sel, panX, panY)
	}
	return g
}

// visibleLeaves flattens groups and drops connectors and hidden shapes.
func visibleLeaves(shapes []Shape) []Shape {
	var out []Shape
	for _, s := range FlattenShapes(shapes) {
		if s.Type == ShapeConnector || s.Style.Alpha() == 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

// edgeRune picks a box drawing character for cells on the outline of s and a
// blank for interior cells.
func edgeRune(s Shape, p Point) rune {
	up := !s.Contains(p.X, p.Y-cellHeight)
	down := !s.Contains(p.X, p.Y+cellHeight)
	left := !s.Contains(p.X-cellWidth, p.Y)
	right := !s.Contains(p.X+cellWidth, p.Y)

	switch {
	case up && left:
		return '┌'
	case up && right:
		return '┐'
	case down && left:
		return '└'
	case down && right:
		return '┘'
	case up || down:
		return '─'
	case left || right:
		return '│'
	}
	return ' '
}

func drawCellText(g cellGrid, s Shape, panX, panY int) {
	lines := strings.Split(s.Text, "\n")
	color := hexColor(s.Style.TextColor)
	if color == "" {
		color = "#000000"
	}

	left, top := cellOf(s.Position)
	right, bottom := cellOf(Point{X: s.Position.X + s.Size.Width, Y: s.Position.Y + s.Size.Height})
	left, right, top, bottom = left-panX, right-panX, top-panY, bottom-panY

	startRow := top
	if s.Type != ShapeText {
		startRow = top + (bottom-top+1-len(lines))/2
	}
	align := s.Style.TextAlign
	if s.Type != ShapeText {
		align = AlignCenter
	}

	for i, line := range lines {
		runes := []rune(line)
		col := left
		switch align {
		case AlignCenter:
			col = left + (right-left+1-len(runes))/2
		case AlignRight:
			col = right - len(runes) + 1
		}
		for j, r := range runes {
			g.set(col+j, startRow+i, r, color)
		}
	}
}

func sampleSegment(a, b Point, fn func(Point)) {
	steps := int(math.Ceil(math.Hypot(b.X-a.X, b.Y-a.Y)/(cellWidth/2))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		fn(Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t})
	}
}

func cubicPoint(p0, p1, p2, p3 Point, t float64) Point {
	u := 1 - t
	return Point{
		X: u*u*u*p0.X + 3*u*u*t*p1.X + 3*u*t*t*p2.X + t*t*t*p3.X,
		Y: u*u*u*p0.Y + 3*u*u*t*p1.Y + 3*u*t*t*p2.Y + t*t*t*p3.Y,
	}
}

func segmentRune(a, b Point) rune {
	dx, dy := math.Abs(b.X-a.X), math.Abs(b.Y-a.Y)
	switch {
	case dy < 1e-9 && dx > 0:
		return '─'
	case dx < 1e-9 && dy > 0:
		return '│'
	}
	return '•'
}

func arrowRune(from, tip Point) rune {
	dx, dy := tip.X-from.X, tip.Y-from.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx >= 0 {
			return '▶'
		}
		return '◀'
	}
	if dy >= 0 {
		return '▼'
	}
	return '▲'
}

func drawCellConnector(g cellGrid, d Design, s Shape, panX, panY int) {
	path, err := ConnectorRoute(d, s)
	if err != nil || len(path) < 2 {
		return
	}
	color := hexColor(s.Style.Stroke)
	plot := func(ch rune) func(Point) {
		return func(p Point) {
			col, row := cellOf(p)
			g.set(col-panX, row-panY, ch, color)
		}
	}

	if s.Style.LineType == LineCurved && len(path) == 4 {
		const samples = 48
		prev := path[0]
		for i := 1; i <= samples; i++ {
			p := cubicPoint(path[0], path[1], path[2], path[3], float64(i)/samples)
			sampleSegment(prev, p, plot('•'))
			prev = p
		}
	} else {
		for i := 1; i < len(path); i++ {
			sampleSegment(path[i-1], path[i], plot(segmentRune(path[i-1], path[i])))
		}
	}

	n := len(path)
	if s.Style.EndArrow == ArrowHead {
		plot(arrowRune(path[n-2], path[n-1]))(path[n-1])
	}
	if s.Style.StartArrow == ArrowHead {
		plot(arrowRune(path[1], path[0]))(path[0])
	}
}

func drawCellSelection(g cellGrid, s Shape, panX, panY int) {
	color := selectionColor
	mark := func(p Point, ch rune) {
		col, row := cellOf(p)
		g.set(col-panX, row-panY, ch, color)
	}

	if s.Type == ShapeConnector {
		return
	}
	c := s.Center()
	deg := s.Rotation()
	for _, h := range resizeHandles(s) {
		mark(rotatePoint(h.at, c, deg), '■')
	}
	mark(rotatePoint(rotateHandle(s), c, deg), '↻')
	for _, port := range s.Ports {
		mark(edgePoint(s, port), 'o')
	}
}

// drawCellPreview draws the rubber band line of a connection in progress.
func drawCellPreview(g cellGrid, from, to Point, panX, panY int) {
	sampleSegment(from, to, func(p Point) {
		col, row := cellOf(p)
		g.set(col-panX, row-panY, '·', selectionColor)
	})
}

// Lines returns the grid as plain text.
func (g cellGrid) Lines() []string {
	lines := make([]string, g.height)
	for row, cells := range g.cells {
		var b strings.Builder
		for _, c := range cells {
			b.WriteRune(c.ch)
		}
		lines[row] = b.String()
	}
	return lines
}

// Styled returns the grid as coloured terminal lines. Runs of cells with the
// same colours share one style.
func (g cellGrid) Styled() []string {
	lines := make([]string, g.height)
	for row, cells := range g.cells {
		var b strings.Builder
		var run strings.Builder
		runFg, runBg := "", ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			style := lipgloss.NewStyle()
			if runFg != "" {
				style = style.Foreground(lipgloss.Color(runFg))
			}
			if runBg != "" {
				style = style.Background(lipgloss.Color(runBg))
			}
			b.WriteString(style.Render(run.String()))
			run.Reset()
		}
		for _, c := range cells {
			if c.fg != runFg || c.bg != runBg {
				flush()
				runFg, runBg = c.fg, c.bg
			}
			run.WriteRune(c.ch)
		}
		flush()
		lines[row] = b.String()
	}
	return lines
}
