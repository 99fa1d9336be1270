package main

import tea "github.com/charmbracelet/bubbletea"

// handleNavigation moves the cursor, or pans the view in pan mode. It returns
// false when the key is not a direction.
func (m *model) handleNavigation(key string) bool {
	dx, dy, ok := direction(key)
	if !ok {
		return false
	}
	speed := m.getMoveSpeed(key)
	if m.zPanMode {
		m.handlePan(dx*speed, dy*speed)
	} else {
		m.cursorX += dx * speed
		m.cursorY += dy * speed
		m.ensureCursorInBounds()
	}
	return true
}

func direction(key string) (int, int, bool) {
	switch key {
	case "h", "left", "H", "shift+left":
		return -1, 0, true
	case "l", "right", "L", "shift+right":
		return 1, 0, true
	case "k", "up", "K", "shift+up":
		return 0, -1, true
	case "j", "down", "J", "shift+down":
		return 0, 1, true
	}
	return 0, 0, false
}

func (m *model) handlePan(dx, dy int) {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	buf.panX += dx
	buf.panY += dy
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

// handleMouseWheel scrolls the view vertically.
func (m *model) handleMouseWheel(msg tea.MouseMsg) {
	switch msg.Type {
	case tea.MouseWheelUp:
		m.handlePan(0, -1)
	case tea.MouseWheelDown:
		m.handlePan(0, 1)
	}
}

func (m *model) ensureCursorInBounds() {
	m.cursorX = max(0, m.cursorX)
	m.cursorY = max(0, m.cursorY)
	if m.width > 0 && m.cursorX >= m.width {
		m.cursorX = m.width - 1
	}
	if maxY := max(0, m.canvasHeight()-1); m.cursorY > maxY {
		m.cursorY = maxY
	}
}
