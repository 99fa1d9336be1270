package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var newShapeSizes = map[ShapeType]Size{
	ShapeRectangle: {Width: 120, Height: 64},
	ShapeCircle:    {Width: 80, Height: 80},
	ShapeTriangle:  {Width: 96, Height: 80},
}

// Commands that ctrl+y can run again.
var repeatable = map[Command]bool{
	CmdNudgeLeft:        true,
	CmdNudgeRight:       true,
	CmdNudgeUp:          true,
	CmdNudgeDown:        true,
	CmdRotate:           true,
	CmdDuplicate:        true,
	CmdLayerUp:          true,
	CmdLayerDown:        true,
	CmdToggleVisibility: true,
	CmdCycleLineType:    true,
	CmdCycleArrows:      true,
	CmdBold:             true,
	CmdItalic:           true,
	CmdUnderline:        true,
	CmdStrikethrough:    true,
}

func (m model) runCommand(cmd Command) (tea.Model, tea.Cmd) {
	m.errorMessage = ""
	m.successMessage = ""

	buf := m.getCurrentBuffer()
	sel, hasSel := m.selectedShape()

	if repeatable[cmd] && hasSel {
		m.lastCommand = cmd
	}

	switch cmd {
	case CmdNudgeLeft, CmdNudgeRight, CmdNudgeUp, CmdNudgeDown:
		if !hasSel {
			m.handleNavigation(map[Command]string{
				CmdNudgeLeft: "left", CmdNudgeRight: "right", CmdNudgeUp: "up", CmdNudgeDown: "down",
			}[cmd])
			return m, nil
		}
		m.nudge(sel, cmd)

	case CmdSelect:
		if hit, ok := buf.design.ShapeAt(m.cursorPoint().X, m.cursorPoint().Y); ok {
			buf.selectedID = hit.ID
		} else {
			buf.selectedID = ""
		}

	case CmdDeselect:
		buf.selectedID = ""

	case CmdNewRectangle, CmdNewCircle, CmdNewTriangle:
		shapeType := map[Command]ShapeType{
			CmdNewRectangle: ShapeRectangle,
			CmdNewCircle:    ShapeCircle,
			CmdNewTriangle:  ShapeTriangle,
		}[cmd]
		shape := WithDefaultPorts(NewShape(shapeType, m.cursorPoint(), newShapeSizes[shapeType], ShapeOptions{}))
		m.commit(ActionAddShape, AddShape(buf.design, shape))
		buf.selectedID = shape.ID

	case CmdNewText:
		m.beginTextInput("", "", m.cursorPoint())

	case CmdEditText:
		if hasSel && sel.Type != ShapeConnector && sel.Type != ShapeGroup {
			m.beginTextInput(sel.ID, sel.Text, sel.Position)
		}

	case CmdConnect:
		if !hasSel || sel.Type == ShapeConnector {
			m.errorMessage = "select a shape to connect from"
			return m, nil
		}
		p := m.cursorPoint()
		port, pos, ok := NearestPort(sel, p.X, p.Y)
		if !ok {
			m.errorMessage = "shape has no ports"
			return m, nil
		}
		m.connectFrom = ConnectorEnd{ShapeID: sel.ID, PortID: port.ID}
		m.connectFromPoint = pos
		m.mode = ModeConnect

	case CmdRotate:
		if hasSel {
			if next, err := RotateShape(buf.design, sel.ID, math.Mod(sel.Rotation()+90, 360)); err == nil {
				m.commit(ActionRotateShape, next)
			}
		}

	case CmdDelete:
		if !hasSel {
			return m, nil
		}
		if m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmDeleteShape
			return m, nil
		}
		m.deleteSelected()

	case CmdDuplicate:
		if hasSel && sel.Type != ShapeConnector {
			dup := DuplicateShape(sel)
			m.commit(ActionDuplicateShape, AddShape(buf.design, dup))
			buf.selectedID = dup.ID
		}

	case CmdLayerUp, CmdLayerDown:
		if hasSel {
			dir := LayerUp
			if cmd == CmdLayerDown {
				dir = LayerDown
			}
			m.commit(ActionReorderShape, MoveLayer(buf.design, sel.ID, dir))
		}

	case CmdRepeat:
		if m.lastCommand != CmdNone && hasSel {
			return m.runCommand(m.lastCommand)
		}

	case CmdToggleVisibility:
		if hasSel {
			m.commit(ActionStyleShape, ToggleVisibility(buf.design, sel.ID))
		}

	case CmdCycleLineType:
		if hasSel && sel.Type == ShapeConnector {
			style := sel.Style
			style.LineType = nextLineType(style.LineType)
			m.commit(ActionStyleShape, UpdateShape(buf.design, sel.ID, ShapePatch{Style: &style}))
		}

	case CmdCycleArrows:
		if hasSel && sel.Type == ShapeConnector {
			style := sel.Style
			style.StartArrow, style.EndArrow = nextArrows(style.StartArrow, style.EndArrow)
			m.commit(ActionStyleShape, UpdateShape(buf.design, sel.ID, ShapePatch{Style: &style}))
		}

	case CmdBold, CmdItalic, CmdUnderline, CmdStrikethrough:
		if hasSel {
			flag := map[Command]TextStyleFlag{
				CmdBold:          TextBold,
				CmdItalic:        TextItalic,
				CmdUnderline:     TextUnderline,
				CmdStrikethrough: TextStrikethrough,
			}[cmd]
			m.commit(ActionStyleShape, ToggleTextStyle(buf.design, sel.ID, flag))
		}

	case CmdAlignLeft, CmdAlignCenter, CmdAlignRight:
		if hasSel {
			align := map[Command]TextAlign{
				CmdAlignLeft:   AlignLeft,
				CmdAlignCenter: AlignCenter,
				CmdAlignRight:  AlignRight,
			}[cmd]
			m.commit(ActionStyleShape, SetTextAlign(buf.design, sel.ID, align))
		}

	case CmdUndo:
		m.undo()
	case CmdRedo:
		m.redo()

	case CmdCopy:
		if !hasSel {
			return m, nil
		}
		if err := copyShape(sel); err != nil {
			m.errorMessage = fmt.Sprintf("copy failed: %v", err)
		} else {
			m.successMessage = "Copied to clipboard"
		}

	case CmdPaste:
		shape, err := pasteShape(m.cursorPoint())
		if err != nil {
			m.errorMessage = fmt.Sprintf("paste failed: %v", err)
			return m, nil
		}
		m.commit(ActionAddShape, AddShape(buf.design, shape))
		buf.selectedID = shape.ID

	case CmdSave:
		m.beginFileInput(FileOpSave)
	case CmdOpen:
		m.fromStartup = false
		m.beginFileInput(FileOpOpen)
	case CmdExportPNG:
		m.beginFileInput(FileOpSavePNG)
	case CmdExportTXT:
		m.beginFileInput(FileOpSaveVisualTXT)
	case CmdNewDesign:
		m.beginFileInput(FileOpNewDesign)

	case CmdNextBuffer:
		m.cycleBuffer(1)
	case CmdPrevBuffer:
		m.cycleBuffer(-1)
	case CmdCloseBuffer:
		if buf.dirty && m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmCloseBuffer
			return m, nil
		}
		m.closeCurrentBuffer()

	case CmdTogglePan:
		m.zPanMode = !m.zPanMode
	case CmdHelp:
		m.help = true
		m.helpScroll = 0
	case CmdQuit:
		if m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmQuit
			return m, nil
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) nudge(sel Shape, cmd Command) {
	dx, dy := 0.0, 0.0
	switch cmd {
	case CmdNudgeLeft:
		dx = -keyboardNudge
	case CmdNudgeRight:
		dx = keyboardNudge
	case CmdNudgeUp:
		dy = -keyboardNudge
	case CmdNudgeDown:
		dy = keyboardNudge
	}
	buf := m.getCurrentBuffer()
	next, err := MoveShape(buf.design, sel.ID, dx, dy)
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.commit(ActionMoveShape, next)
}

func nextLineType(t LineType) LineType {
	switch t {
	case LineStraight:
		return LineCurved
	case LineCurved:
		return LineOrthogonal
	}
	return LineStraight
}

// nextArrows cycles end only, both, start only, none.
func nextArrows(start, end ArrowType) (ArrowType, ArrowType) {
	hasStart, hasEnd := start == ArrowHead, end == ArrowHead
	switch {
	case !hasStart && hasEnd:
		return ArrowHead, ArrowHead
	case hasStart && hasEnd:
		return ArrowHead, ArrowNone
	case hasStart && !hasEnd:
		return ArrowNone, ArrowNone
	}
	return ArrowNone, ArrowHead
}

func (m *model) deleteSelected() {
	buf := m.getCurrentBuffer()
	if buf == nil || buf.selectedID == "" {
		return
	}
	m.commit(ActionDeleteShape, DeleteShape(buf.design, buf.selectedID))
	buf.selectedID = ""
}

// finishConnect links the pending source port to the port under the cursor,
// or to the nearest port of the shape under the cursor.
func (m *model) finishConnect() error {
	buf := m.getCurrentBuffer()
	p := m.cursorPoint()

	end, _, ok := PortAt(buf.design, p.X, p.Y, m.connectFrom.ShapeID)
	if !ok {
		hit, found := buf.design.ShapeAt(p.X, p.Y)
		if !found || hit.ID == m.connectFrom.ShapeID || hit.Type == ShapeConnector {
			return errors.New("no target shape under cursor")
		}
		port, _, hasPort := NearestPort(hit, p.X, p.Y)
		if !hasPort {
			return errors.New("target shape has no ports")
		}
		end = ConnectorEnd{ShapeID: hit.ID, PortID: port.ID}
	}

	m.commit(ActionAddConnector, AddShape(buf.design, NewConnector(m.connectFrom, end, nil)))
	m.connectFrom = ConnectorEnd{}
	return nil
}

// ============================================================
// Mouse
// ============================================================

func gestureAction(kind GestureKind) ActionType {
	switch kind {
	case GestureConnect:
		return ActionAddConnector
	case GestureRotate:
		return ActionRotateShape
	case GestureResize:
		return ActionResizeShape
	}
	return ActionMoveShape
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	if msg.Type == tea.MouseWheelUp || msg.Type == tea.MouseWheelDown {
		m.handleMouseWheel(msg)
		return
	}

	row := msg.Y - m.canvasTop()
	if row < 0 || row >= m.canvasHeight() {
		return
	}
	p := m.pointAt(msg.X, row)

	switch msg.Type {
	case tea.MouseLeft:
		if m.gesture.Active() {
			buf.design = m.gesture.Update(buf.design, p)
			return
		}
		m.cursorX, m.cursorY = msg.X, row
		m.gestureBefore = buf.design
		m.gesture, buf.selectedID = BeginGesture(buf.design, buf.selectedID, p)
	case tea.MouseMotion:
		if m.gesture.Active() {
			buf.design = m.gesture.Update(buf.design, p)
		}
	case tea.MouseRelease:
		if !m.gesture.Active() {
			return
		}
		action := gestureAction(m.gesture.Kind)
		next, changed := m.gesture.Finish(buf.design, p)
		buf.design = m.gestureBefore
		if changed {
			m.commit(action, next)
		}
	}
}

// ============================================================
// Text input
// ============================================================

func (m *model) beginTextInput(shapeID, text string, at Point) {
	m.mode = ModeTextInput
	m.textInputShapeID = shapeID
	m.textInputText = text
	m.textInputCursorPos = len([]rune(text))
	m.textInputAt = at
}

func (m model) handleTextInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	runes := []rune(m.textInputText)
	pos := min(max(m.textInputCursorPos, 0), len(runes))

	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		return m, nil
	case tea.KeyCtrlS:
		m.saveTextInput()
		m.mode = ModeNormal
		return m, nil
	case tea.KeyEnter:
		runes = append(runes[:pos], append([]rune{'\n'}, runes[pos:]...)...)
		pos++
	case tea.KeyBackspace:
		if pos > 0 {
			runes = append(runes[:pos-1], runes[pos:]...)
			pos--
		}
	case tea.KeyDelete:
		if pos < len(runes) {
			runes = append(runes[:pos], runes[pos+1:]...)
		}
	case tea.KeyLeft:
		pos = max(0, pos-1)
	case tea.KeyRight:
		pos = min(len(runes), pos+1)
	case tea.KeySpace:
		runes = append(runes[:pos], append([]rune{' '}, runes[pos:]...)...)
		pos++
	case tea.KeyRunes:
		runes = append(runes[:pos], append(append([]rune(nil), msg.Runes...), runes[pos:]...)...)
		pos += len(msg.Runes)
	}

	m.textInputText = string(runes)
	m.textInputCursorPos = pos
	return m, nil
}

// textSize is the box a text shape needs to show text one cell per rune.
func textSize(text string) Size {
	lines := strings.Split(text, "\n")
	width := 0
	for _, line := range lines {
		width = max(width, len([]rune(line)))
	}
	return Size{
		Width:  float64(width+1) * cellWidth,
		Height: float64(len(lines)) * cellHeight,
	}
}

func (m *model) saveTextInput() {
	buf := m.getCurrentBuffer()
	text := m.textInputText

	if m.textInputShapeID != "" {
		m.commit(ActionEditText, UpdateShape(buf.design, m.textInputShapeID, ShapePatch{Text: &text}))
		return
	}
	if strings.TrimSpace(text) == "" {
		return
	}
	shape := WithDefaultPorts(NewShape(ShapeText, m.textInputAt, textSize(text), ShapeOptions{Text: text}))
	m.commit(ActionAddShape, AddShape(buf.design, shape))
	buf.selectedID = shape.ID
}

// ============================================================
// Files
// ============================================================

func (m *model) beginFileInput(op FileOperation) {
	m.mode = ModeFileInput
	m.fileOp = op
	m.errorMessage = ""
	m.filename = ""

	buf := m.getCurrentBuffer()
	switch op {
	case FileOpOpen:
		m.scanDesignFiles()
	case FileOpSave:
		if buf != nil && buf.filename != "" {
			m.filename = strings.TrimSuffix(filepath.Base(buf.filename), ".json")
		} else if buf != nil {
			m.filename = buf.design.Name
		}
	case FileOpSavePNG, FileOpSaveVisualTXT:
		if buf != nil {
			m.filename = buf.design.Name
		}
	}
}

func (m *model) designDirectory() string {
	if m.config.SaveDirectory != "" {
		return m.config.SaveDirectory
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

func (m *model) scanDesignFiles() {
	m.fileList = nil
	m.selectedFileIndex = -1

	entries, err := os.ReadDir(m.designDirectory())
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			m.fileList = append(m.fileList, entry.Name())
		}
	}
	sort.Strings(m.fileList)

	if len(m.fileList) > 0 {
		m.selectedFileIndex = 0
		m.filename = strings.TrimSuffix(m.fileList[0], ".json")
	}
}

func (m model) handleFileInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.fromStartup {
			m.mode = ModeStartup
		} else {
			m.mode = ModeNormal
		}
		m.errorMessage = ""
	case tea.KeyEnter:
		m.confirmFile()
	case tea.KeyBackspace:
		if r := []rune(m.filename); len(r) > 0 {
			m.filename = string(r[:len(r)-1])
		}
	case tea.KeyUp, tea.KeyDown:
		if m.fileOp != FileOpOpen || len(m.fileList) == 0 {
			return m, nil
		}
		step := 1
		if msg.Type == tea.KeyUp {
			step = -1
		}
		m.selectedFileIndex = (m.selectedFileIndex + step + len(m.fileList)) % len(m.fileList)
		m.filename = strings.TrimSuffix(m.fileList[m.selectedFileIndex], ".json")
	case tea.KeySpace:
		m.filename += " "
	case tea.KeyRunes:
		m.filename += string(msg.Runes)
	}
	return m, nil
}

func withExt(name, ext string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "untitled"
	}
	if !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}
	return name
}

func (m *model) confirmFile() {
	buf := m.getCurrentBuffer()

	switch m.fileOp {
	case FileOpSave:
		path := m.config.GetSavePath(designFileName(m.filename))
		if _, err := os.Stat(path); err == nil && m.config.Confirmations && path != buf.filename {
			m.pendingPath = path
			m.mode = ModeConfirm
			m.confirmAction = ConfirmOverwriteFile
			return
		}
		m.saveTo(path)

	case FileOpSavePNG:
		path := m.config.GetSavePath(withExt(m.filename, ".png"))
		if err := m.exportPNG(path); err != nil {
			m.errorMessage = err.Error()
			return
		}
		m.successMessage = "Exported " + path
		m.mode = ModeNormal

	case FileOpSaveVisualTXT:
		path := m.config.GetSavePath(withExt(m.filename, ".txt"))
		if err := m.exportVisualTXT(path); err != nil {
			m.errorMessage = err.Error()
			return
		}
		m.successMessage = "Exported " + path
		m.mode = ModeNormal

	case FileOpOpen:
		path := filepath.Join(m.designDirectory(), designFileName(m.filename))
		d, err := LoadDesign(path)
		if err != nil {
			m.errorMessage = err.Error()
			return
		}
		if m.fromStartup || (!buf.dirty && len(buf.design.Shapes) == 0) {
			*buf = Buffer{design: d, filename: path}
		} else {
			m.addNewBuffer(d, path)
		}
		m.fromStartup = false
		m.mode = ModeNormal

	case FileOpNewDesign:
		name := strings.TrimSpace(m.filename)
		if name == "" {
			name = "Untitled"
		}
		m.addNewBuffer(NewDesign(name), "")
		m.mode = ModeNormal
	}
}

func (m *model) saveTo(path string) {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	if err := SaveDesign(path, buf.design); err != nil {
		m.errorMessage = err.Error()
		m.mode = ModeFileInput
		return
	}
	buf.filename = path
	buf.dirty = false
	m.successMessage = "Saved " + path
	m.mode = ModeNormal
}
