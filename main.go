package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const minLoadingDuration = 1500 * time.Millisecond

func main() {
	config := loadConfig()

	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "serve":
			if err := runServer(config); err != nil {
				log.Fatal(err)
			}
			return
		case "export":
			if len(args) != 3 {
				fmt.Fprintln(os.Stderr, "usage: shapeterm export <design.json> <out.png>")
				os.Exit(2)
			}
			if err := exportFile(config, args[1], args[2]); err != nil {
				log.Fatal(err)
			}
			return
		case "-h", "--help", "help":
			fmt.Println("usage: shapeterm [design.json] | serve | export <design.json> <out.png>")
			return
		}
	}

	if os.Getenv("SHAPETERM_DEBUG") != "" {
		f, err := tea.LogToFile("shapeterm-debug.log", "debug")
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
	}

	initialFile := ""
	if len(args) > 0 {
		initialFile = args[0]
	}

	p := tea.NewProgram(
		initialModel(config, initialFile),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

func exportFile(config *Config, in, out string) error {
	d, err := LoadDesign(in)
	if err != nil {
		return fmt.Errorf("load %s: %w", in, err)
	}
	renderer := NewRenderer(NewFontBook(config.FontDirectory))
	return renderer.ExportPNG(d, out)
}

type Buffer struct {
	design     Design
	history    History
	filename   string
	panX       int
	panY       int
	selectedID string
	dirty      bool
}

type model struct {
	config   *Config
	keymap   *Keymap
	fonts    *FontBook
	renderer *Renderer
	monitor  *ServerMonitor
	tracker  *LoadingTracker

	loadingUpdates       chan LoadingState
	loading              LoadingState
	statuses             []ServerStatus
	serverErrorDismissed bool
	resumeMode           Mode
	initialFile          string

	width              int
	height             int
	cursorX            int
	cursorY            int
	zPanMode           bool
	buffers            []Buffer
	currentBufferIndex int
	mode               Mode
	help               bool
	helpScroll         int

	gesture       Gesture
	gestureBefore Design

	connectFrom      ConnectorEnd
	connectFromPoint Point

	textInputText      string
	textInputCursorPos int
	textInputShapeID   string
	textInputAt        Point

	filename          string
	fileList          []string
	selectedFileIndex int
	fileOp            FileOperation
	fromStartup       bool
	confirmAction     ConfirmAction
	pendingPath       string

	lastCommand    Command
	errorMessage   string
	successMessage string
}

type loadingMsg LoadingState

type startupDoneMsg struct {
	statuses []ServerStatus
	design   *Design
	filename string
	err      error
}

type healthTickMsg struct{}

// healthMsg carries a check result. Only results of the periodic tick
// re-arm it; a manual retry just updates the status.
type healthMsg struct {
	statuses []ServerStatus
	periodic bool
}

func initialModel(config *Config, initialFile string) model {
	fonts := NewFontBook(config.FontDirectory)
	tracker := NewLoadingTracker(minLoadingDuration)

	updates := make(chan LoadingState, 16)
	tracker.Subscribe(func(state LoadingState) {
		select {
		case updates <- state:
		default:
		}
	})

	return model{
		config:         config,
		keymap:         defaultKeymap(),
		fonts:          fonts,
		renderer:       NewRenderer(fonts),
		monitor:        NewServerMonitor(config.Servers, config.HealthTimeout),
		tracker:        tracker,
		loadingUpdates: updates,
		loading:        LoadingState{Loading: true, Message: "Starting"},
		initialFile:    initialFile,
		buffers:        []Buffer{{design: NewDesign("Untitled")}},
		mode:           ModeStartup,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		waitForLoading(m.loadingUpdates),
		startup(m.tracker, m.fonts, m.monitor, m.initialFile),
	)
}

func waitForLoading(ch <-chan LoadingState) tea.Cmd {
	return func() tea.Msg {
		return loadingMsg(<-ch)
	}
}

// startup warms the font cache, checks the companion servers and opens the
// file given on the command line, reporting progress through the tracker.
func startup(tracker *LoadingTracker, fonts *FontBook, monitor *ServerMonitor, filename string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		tracker.Start("Loading fonts")
		if _, err := fonts.Face(defaultFontFamily, false, false, defaultFontSize); err != nil {
			log.Printf("font warmup failed: %v", err)
		}

		tracker.Progress(40, "Checking servers")
		var done startupDoneMsg
		if monitor.Enabled() {
			done.statuses = monitor.Check(ctx)
		}

		if filename != "" {
			tracker.Progress(70, "Opening "+filename)
			d, err := LoadDesign(filename)
			if err != nil {
				done.err = err
			} else {
				done.design = &d
				done.filename = filename
			}
		}

		tracker.Progress(100, "Ready")
		if err := tracker.Stop(ctx); err != nil {
			log.Printf("loading tracker: %v", err)
		}
		return done
	}
}

func (m model) scheduleHealthCheck() tea.Cmd {
	if !m.monitor.Enabled() {
		return nil
	}
	return tea.Tick(m.config.HealthInterval, func(time.Time) tea.Msg {
		return healthTickMsg{}
	})
}

func (m model) checkHealth(periodic bool) tea.Cmd {
	monitor := m.monitor
	return func() tea.Msg {
		return healthMsg{statuses: monitor.Check(context.Background()), periodic: periodic}
	}
}

// applyServerStatus switches to the server error screen when a server goes
// down, and back once they all answer again.
func (m *model) applyServerStatus(statuses []ServerStatus) {
	m.statuses = statuses
	online := AllOnline(statuses)
	switch {
	case !online && !m.serverErrorDismissed && m.mode != ModeServerError:
		m.resumeMode = m.mode
		m.mode = ModeServerError
	case online && m.mode == ModeServerError:
		m.mode = m.resumeMode
	}
	if online {
		m.serverErrorDismissed = false
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorInBounds()
		return m, nil

	case loadingMsg:
		m.loading = LoadingState(msg)
		if m.loading.Loading {
			return m, waitForLoading(m.loadingUpdates)
		}
		return m, nil

	case startupDoneMsg:
		m.loading = LoadingState{Progress: 100}
		if msg.design != nil {
			m.buffers[0] = Buffer{design: *msg.design, filename: msg.filename}
			m.mode = ModeNormal
		} else if !m.config.StartMenu {
			m.mode = ModeNormal
		}
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
		}
		if m.monitor.Enabled() {
			m.applyServerStatus(msg.statuses)
		}
		return m, m.scheduleHealthCheck()

	case healthTickMsg:
		return m, m.checkHealth(true)

	case healthMsg:
		m.applyServerStatus(msg.statuses)
		if !msg.periodic {
			return m, nil
		}
		return m, m.scheduleHealthCheck()

	case tea.MouseMsg:
		if m.loading.Loading || m.mode != ModeNormal || m.help {
			return m, nil
		}
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		if m.loading.Loading {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.help {
			return m.handleHelpKey(msg)
		}

		switch m.mode {
		case ModeStartup:
			return m.handleStartupKey(msg)
		case ModeServerError:
			return m.handleServerErrorKey(msg)
		case ModeNormal:
			return m.handleNormalKey(msg)
		case ModeConnect:
			return m.handleConnectKey(msg)
		case ModeTextInput:
			return m.handleTextInputKey(msg)
		case ModeFileInput:
			return m.handleFileInputKey(msg)
		case ModeConfirm:
			return m.handleConfirmKey(msg)
		}
	}
	return m, nil
}

func (m model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		maxScroll := max(0, len(m.helpLines())-max(1, m.height-1))
		if m.helpScroll < maxScroll {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	default:
		m.help = false
		m.helpScroll = 0
	}
	return m, nil
}

func (m model) handleStartupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		m.buffers[0] = Buffer{design: NewDesign("Untitled")}
		m.currentBufferIndex = 0
		m.mode = ModeNormal
		m.errorMessage = ""
	case "o":
		m.fromStartup = true
		m.beginFileInput(FileOpOpen)
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m model) handleServerErrorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c":
		m.serverErrorDismissed = true
		m.mode = m.resumeMode
	case "r":
		return m, m.checkHealth(false)
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.zPanMode && m.handleNavigation(key) {
		return m, nil
	}

	binding, ok := m.keymap.Lookup(key)
	if !ok {
		m.handleNavigation(key)
		return m, nil
	}
	if binding.Command != CmdTogglePan {
		m.zPanMode = false
	}
	return m.runCommand(binding.Command)
}

func (m model) handleConnectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "esc":
		m.mode = ModeNormal
		m.connectFrom = ConnectorEnd{}
	case "enter", " ", "c":
		if err := m.finishConnect(); err != nil {
			m.errorMessage = err.Error()
			return m, nil
		}
		m.mode = ModeNormal
	default:
		if _, _, ok := direction(key); ok {
			m.handleNavigation(key)
		} else if b, ok := m.keymap.Lookup(key); ok {
			switch b.Command {
			case CmdNudgeLeft, CmdNudgeRight, CmdNudgeUp, CmdNudgeDown:
				m.handleNavigation(key)
			}
		}
	}
	return m, nil
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmDeleteShape:
			m.deleteSelected()
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmCloseBuffer:
			m.closeCurrentBuffer()
		case ConfirmOverwriteFile:
			m.saveTo(m.pendingPath)
			m.pendingPath = ""
		}
	case "n", "N", "esc":
		m.mode = ModeNormal
		if m.confirmAction == ConfirmOverwriteFile {
			m.mode = ModeFileInput
		}
	}
	return m, nil
}
