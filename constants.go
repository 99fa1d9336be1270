package main

type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
	ShapeTriangle  ShapeType = "triangle"
	ShapeText      ShapeType = "text"
	ShapeGroup     ShapeType = "group"
	ShapeConnector ShapeType = "connector"
)

type PortEdge string

const (
	PortTop    PortEdge = "top"
	PortRight  PortEdge = "right"
	PortBottom PortEdge = "bottom"
	PortLeft   PortEdge = "left"
)

type LineType string

const (
	LineStraight   LineType = "straight"
	LineCurved     LineType = "curved"
	LineOrthogonal LineType = "orthogonal"
)

type ArrowType string

const (
	ArrowNone ArrowType = "none"
	ArrowHead ArrowType = "arrow"
)

type TextAlign string

const (
	AlignLeft    TextAlign = "left"
	AlignCenter  TextAlign = "center"
	AlignRight   TextAlign = "right"
	AlignJustify TextAlign = "justify"
)

type GradientType string

const (
	GradientLinear GradientType = "linear"
	GradientRadial GradientType = "radial"
)

type LayerDirection int

const (
	LayerUp LayerDirection = iota
	LayerDown
)

type TextStyleFlag int

const (
	TextBold TextStyleFlag = iota
	TextItalic
	TextUnderline
	TextStrikethrough
)

type Mode int

const (
	ModeStartup Mode = iota
	ModeServerError
	ModeNormal
	ModeConnect
	ModeTextInput
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpSavePNG
	FileOpSaveVisualTXT
	FileOpOpen
	FileOpNewDesign
)

type ConfirmAction int

const (
	ConfirmDeleteShape ConfirmAction = iota
	ConfirmQuit
	ConfirmCloseBuffer
	ConfirmOverwriteFile
)

type ActionType int

const (
	ActionAddShape ActionType = iota
	ActionDeleteShape
	ActionEditText
	ActionResizeShape
	ActionMoveShape
	ActionRotateShape
	ActionAddConnector
	ActionStyleShape
	ActionReorderShape
	ActionDuplicateShape
)

const (
	defaultCanvasWidth      = 1200
	defaultCanvasHeight     = 800
	defaultCanvasBackground = "#f8fafc"

	defaultFontSize   = 16.0
	defaultLineHeight = 1.5
	defaultFontFamily = "sans-serif"

	defaultPortOffset = 0.5
	portHitRadius     = 5.0
	portMarkerRadius  = 4.0
	handleSize        = 8.0
	rotateHandleGap   = 30.0
	arrowLength       = 10.0
	duplicateOffset   = 20.0
	keyboardNudge     = 10.0

	selectionColor = "#2196f3"

	// Terminal cells map onto canvas pixels at this ratio.
	cellWidth  = 8.0
	cellHeight = 16.0
)
