package main

import (
	"testing"
)

func newTestModel(confirm bool) model {
	cfg := defaultConfig()
	cfg.Confirmations = confirm
	m := initialModel(cfg, "")
	m.mode = ModeNormal
	m.width, m.height = 100, 40
	return m
}

func runCommands(t *testing.T, m model, cmds ...Command) model {
	t.Helper()
	for _, cmd := range cmds {
		next, _ := m.runCommand(cmd)
		m = next.(model)
	}
	return m
}

func TestRunCommandAddAndNudge(t *testing.T) {
	m := runCommands(t, newTestModel(false), CmdNewRectangle)

	d := m.getDesign()
	if len(d.Shapes) != 1 || d.Shapes[0].Type != ShapeRectangle || len(d.Shapes[0].Ports) != 4 {
		t.Fatalf("expected one rectangle with ports, got %+v", d.Shapes)
	}
	sel, ok := m.selectedShape()
	if !ok || sel.ID != d.Shapes[0].ID {
		t.Fatalf("new shape should be selected")
	}
	start := sel.Position

	m = runCommands(t, m, CmdNudgeRight, CmdRepeat)
	sel, _ = m.selectedShape()
	if sel.Position.X != start.X+2*keyboardNudge || sel.Position.Y != start.Y {
		t.Errorf("expected two nudges right, got %+v from %+v", sel.Position, start)
	}

	m = runCommands(t, m, CmdUndo, CmdUndo)
	sel, _ = m.selectedShape()
	if sel.Position != start {
		t.Errorf("undo should restore %+v, got %+v", start, sel.Position)
	}

	m = runCommands(t, m, CmdRedo)
	sel, _ = m.selectedShape()
	if sel.Position.X != start.X+keyboardNudge {
		t.Errorf("redo should replay one nudge, got %+v", sel.Position)
	}
}

func TestRunCommandNudgeWithoutSelectionMovesCursor(t *testing.T) {
	m := runCommands(t, newTestModel(false), CmdNudgeRight)
	if m.cursorX != 1 {
		t.Errorf("expected cursor to move, got %d", m.cursorX)
	}
}

func TestRunCommandDelete(t *testing.T) {
	m := runCommands(t, newTestModel(false), CmdNewCircle, CmdDelete)
	if n := len(m.getDesign().Shapes); n != 0 {
		t.Errorf("expected shape deleted, got %d shapes", n)
	}
	if _, ok := m.selectedShape(); ok {
		t.Errorf("selection should be cleared")
	}

	m = runCommands(t, newTestModel(true), CmdNewCircle, CmdDelete)
	if m.mode != ModeConfirm || m.confirmAction != ConfirmDeleteShape {
		t.Errorf("expected delete confirmation, got mode %v", m.mode)
	}
	if n := len(m.getDesign().Shapes); n != 1 {
		t.Errorf("shape deleted before confirmation")
	}
}

func TestRunCommandDuplicateAndLayers(t *testing.T) {
	m := runCommands(t, newTestModel(false), CmdNewRectangle, CmdDuplicate)
	d := m.getDesign()
	if len(d.Shapes) != 2 {
		t.Fatalf("expected duplicate, got %d shapes", len(d.Shapes))
	}
	dup := d.Shapes[1]
	if dup.Position.X != d.Shapes[0].Position.X+20 {
		t.Errorf("duplicate should be offset by 20, got %+v", dup.Position)
	}

	m = runCommands(t, m, CmdLayerDown)
	if got := m.getDesign().Shapes[0].ID; got != dup.ID {
		t.Errorf("duplicate should move to the bottom, got %q", got)
	}
}

func TestRunCommandTextStyle(t *testing.T) {
	m := runCommands(t, newTestModel(false), CmdNewRectangle, CmdBold, CmdAlignRight)
	sel, _ := m.selectedShape()
	if !sel.Style.Bold || sel.Style.TextAlign != AlignRight {
		t.Errorf("expected bold right aligned text, got %+v", sel.Style)
	}
}

func TestRunCommandBuffers(t *testing.T) {
	m := newTestModel(false)
	m.addNewBuffer(NewDesign("second"), "second.json")
	if m.currentBufferIndex != 1 {
		t.Fatalf("new buffer should be current")
	}

	m = runCommands(t, m, CmdNextBuffer)
	if m.currentBufferIndex != 0 {
		t.Errorf("expected wrap to first buffer, got %d", m.currentBufferIndex)
	}
	m = runCommands(t, m, CmdPrevBuffer, CmdCloseBuffer)
	if len(m.buffers) != 1 || m.getDesign().Name != "Untitled" {
		t.Errorf("expected only the first buffer left, got %d", len(m.buffers))
	}
}

func TestNextLineType(t *testing.T) {
	tests := []struct {
		in, want LineType
	}{
		{LineStraight, LineCurved},
		{LineCurved, LineOrthogonal},
		{LineOrthogonal, LineStraight},
	}
	for _, tt := range tests {
		if got := nextLineType(tt.in); got != tt.want {
			t.Errorf("nextLineType(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNextArrows(t *testing.T) {
	start, end := ArrowNone, ArrowHead
	want := [][2]ArrowType{
		{ArrowHead, ArrowHead},
		{ArrowHead, ArrowNone},
		{ArrowNone, ArrowNone},
		{ArrowNone, ArrowHead},
	}
	for i, w := range want {
		start, end = nextArrows(start, end)
		if start != w[0] || end != w[1] {
			t.Errorf("step %d: expected %v/%v, got %v/%v", i, w[0], w[1], start, end)
		}
	}
}

func TestConnectCommand(t *testing.T) {
	m := newTestModel(false)
	a := rect("a", 0, 0, 40, 32)
	b := rect("b", 160, 0, 40, 32)
	m.buffers[0].design = designWith(a, b)
	m.buffers[0].selectedID = "a"

	m = runCommands(t, m, CmdConnect)
	if m.mode != ModeConnect || m.connectFrom.ShapeID != "a" {
		t.Fatalf("expected connect mode from a, got mode %v from %+v", m.mode, m.connectFrom)
	}

	// left port of b is at (160,16), cell (20,1)
	m.cursorX, m.cursorY = 20, 1
	if err := m.finishConnect(); err != nil {
		t.Fatalf("finish connect: %v", err)
	}
	d := m.getDesign()
	if len(d.Shapes) != 3 {
		t.Fatalf("expected connector, got %d shapes", len(d.Shapes))
	}
	if c := d.Shapes[2]; c.Target.ShapeID != "b" || c.Target.PortID != "left" {
		t.Errorf("unexpected target %+v", c.Target)
	}
}
