package main

import (
	"fmt"
	"os"
	"strings"
)

// exportVisualTXT writes the current view as plain text, the way it appears
// on screen but without cursor or selection.
func (m *model) exportVisualTXT(filename string) error {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return fmt.Errorf("no design available")
	}

	width := m.width
	if width < 1 {
		width = 80
	}
	height := m.canvasHeight()
	if height < 1 {
		height = 24
	}

	grid := rasterize(buf.design, width, height, buf.panX, buf.panY, "")
	return writeLines(filename, grid.Lines())
}

func writeLines(filename string, lines []string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(file, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// exportPNG renders the whole canvas, ignoring pan and selection.
func (m *model) exportPNG(filename string) error {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return fmt.Errorf("no design available")
	}
	return m.renderer.ExportPNG(buf.design, filename)
}
