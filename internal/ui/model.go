package ui

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tengrikut/galeri/internal/catalog"
	"github.com/tengrikut/galeri/internal/prefs"
	"github.com/tengrikut/galeri/internal/state"
)

// defaultInputDebounce is the quiet period after typing before the search
// bar submits.
const defaultInputDebounce = 300 * time.Millisecond

// Controller is the gallery controller as driven by the browser.
type Controller interface {
	Snapshot() state.Snapshot
	Location() string
	Navigate(path string) bool
	Search(query string) bool
	GoToPage(n int) bool
	Back() bool
	Forward() bool
}

// Options configure the browser.
type Options struct {
	Controller Controller
	Store      *state.Store // snapshots are pushed from here while running
	Prefs      prefs.Prefs
	PrefsPath  string // empty uses prefs.DefaultPath()
	Scroll     *prefs.ScrollStore
	LogFile    string
	LogLevel   slog.Level // minimum level shown in the log panel
	Debounce   time.Duration
	Logger     *slog.Logger
}

// Model is the root Bubble Tea model of the gallery browser.
type Model struct {
	ctrl      Controller
	logger    *slog.Logger
	keys      keyMap
	help      help.Model
	theme     Theme
	prefs     prefs.Prefs
	prefsPath string
	scroll    *prefs.ScrollStore

	width  int
	height int
	ready  bool

	snapshot state.Snapshot
	location string
	selected int

	input    textinput.Model
	editing  bool
	inputSeq int
	debounce time.Duration

	showHelp bool

	logFile  string
	logLevel slog.Level
	logSeq   int
	logView  viewport.Model
	logLines []string
}

// New creates the browser model positioned at the controller's location.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultInputDebounce
	}
	scroll := opts.Scroll
	if scroll == nil {
		scroll = prefs.NewScrollStore("")
	}
	prefsPath := strings.TrimSpace(opts.PrefsPath)
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	ti := textinput.New()
	ti.Placeholder = "Ara..."
	ti.Prompt = "/ "
	ti.CharLimit = 200

	m := Model{
		ctrl:      opts.Controller,
		logger:    logger.With("component", "ui"),
		keys:      defaultKeyMap(),
		help:      help.New(),
		theme:     GetTheme(opts.Prefs.Theme),
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		scroll:    scroll,
		input:     ti,
		debounce:  debounce,
		logFile:   opts.LogFile,
		logLevel:  opts.LogLevel,
		logView:   viewport.New(0, 0),
	}
	m.prefs.Theme = m.theme.Name
	if m.ctrl != nil {
		m.snapshot = m.ctrl.Snapshot()
		m.location = m.ctrl.Location()
		if pos, ok := m.scroll.Get(m.location); ok {
			m.selected = pos
		}
	}
	m.input.SetValue(m.snapshot.Query)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{refreshCmd(m.ctrl)}
	if m.prefs.ShowLogs {
		cmds = append(cmds, readLogsCmd(m.logFile, m.logLevel), logTickCmd(m.logSeq))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(10, msg.Width-6)
		m.resizeLogView()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case navigatedMsg:
		if msg.location != m.location {
			m.changeLocation(msg.location)
		}
		return m, nil

	case inputDebounceMsg:
		if msg.seq != m.inputSeq || !m.editing {
			return m, nil
		}
		return m, searchCmd(m.ctrl, msg.value)

	case logTickMsg:
		if msg.seq != m.logSeq || !m.prefs.ShowLogs {
			return m, nil
		}
		return m, tea.Batch(readLogsCmd(m.logFile, m.logLevel), logTickCmd(m.logSeq))

	case logLinesMsg:
		m.setLogLines(msg.lines, msg.err)
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.editing {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.persistScroll()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		m.prefs.ShowLogs = !m.prefs.ShowLogs
		m.savePrefs()
		m.logSeq++
		m.resizeLogView()
		if !m.prefs.ShowLogs {
			return m, nil
		}
		return m, tea.Batch(readLogsCmd(m.logFile, m.logLevel), logTickCmd(m.logSeq))

	case key.Matches(msg, m.keys.Search):
		m.editing = true
		m.input.SetValue(m.snapshot.Query)
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.ClearSearch):
		if m.snapshot.Query == "" {
			return m, nil
		}
		return m, searchCmd(m.ctrl, "")

	case key.Matches(msg, m.keys.Up):
		m.selected = max(0, m.clampedSelection()-1)
	case key.Matches(msg, m.keys.Down):
		if n := len(m.snapshot.DisplayItems()); n > 0 {
			m.selected = min(n-1, m.clampedSelection()+1)
		}
	case key.Matches(msg, m.keys.Top):
		m.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selected = max(0, len(m.snapshot.DisplayItems())-1)

	case key.Matches(msg, m.keys.NextPage):
		if m.snapshot.Page < m.snapshot.TotalPages() {
			return m, pageCmd(m.ctrl, m.snapshot.Page+1)
		}
	case key.Matches(msg, m.keys.PrevPage):
		if m.snapshot.Page > 1 {
			return m, pageCmd(m.ctrl, min(m.snapshot.Page-1, m.snapshot.TotalPages()))
		}
	case key.Matches(msg, m.keys.FirstPage):
		if m.snapshot.Page != 1 {
			return m, pageCmd(m.ctrl, 1)
		}
	case key.Matches(msg, m.keys.LastPage):
		if last := m.snapshot.TotalPages(); m.snapshot.Page != last {
			return m, pageCmd(m.ctrl, last)
		}
	case key.Matches(msg, m.keys.Back):
		return m, historyCmd(m.ctrl, m.ctrl.Back)
	case key.Matches(msg, m.keys.Forward):
		return m, historyCmd(m.ctrl, m.ctrl.Forward)
	}
	return m, nil
}

// handleInputKey handles keys while the search bar has focus. Typing
// submits after the debounce period, Enter submits at once and Esc restores
// the active query.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.persistScroll()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Confirm):
		m.inputSeq++
		m.editing = false
		m.input.Blur()
		return m, searchCmd(m.ctrl, m.input.Value())

	case key.Matches(msg, m.keys.Escape):
		m.inputSeq++
		m.editing = false
		m.input.Blur()
		m.input.SetValue(m.snapshot.Query)
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		m.inputSeq++
		return m, tea.Batch(cmd, inputDebounceCmd(m.debounce, m.inputSeq, value))
	}
	return m, cmd
}

func (m *Model) applySnapshot(s state.Snapshot) {
	m.snapshot = s
	if m.ctrl != nil {
		if loc := m.ctrl.Location(); loc != m.location {
			m.changeLocation(loc)
		}
	}
	if !m.editing {
		m.input.SetValue(s.Query)
	}
}

// changeLocation remembers the selection of the location being left and
// restores the one saved for loc.
func (m *Model) changeLocation(loc string) {
	if m.location != "" {
		m.scroll.Save(m.location, m.clampedSelection())
	}
	m.location = loc
	m.selected = 0
	if pos, ok := m.scroll.Get(loc); ok {
		m.selected = pos
	}
}

// clampedSelection is the selection limited to the displayed items. The
// stored selection is left unclamped while a page loads so a restored
// position survives until the items arrive.
func (m Model) clampedSelection() int {
	n := len(m.snapshot.DisplayItems())
	if n == 0 {
		return 0
	}
	return max(0, min(m.selected, n-1))
}

func (m Model) selectedItem() (catalog.GalleryItem, bool) {
	items := m.snapshot.DisplayItems()
	if len(items) == 0 {
		return catalog.GalleryItem{}, false
	}
	return items[m.clampedSelection()], true
}

func (m *Model) persistScroll() {
	if m.location != "" {
		m.scroll.Save(m.location, m.clampedSelection())
	}
	if err := m.scroll.Persist(); err != nil {
		m.logger.Warn("scroll positions not saved", "error", err)
	}
}

func (m *Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("preferences not saved", "error", err)
	}
}

// Messages

type snapshotMsg state.Snapshot

type navigatedMsg struct {
	location string
}

type inputDebounceMsg struct {
	seq   int
	value string
}

// Commands. Controller actions run inside commands so store notifications
// never happen on the event loop.

func refreshCmd(ctrl Controller) tea.Cmd {
	if ctrl == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(ctrl.Snapshot())
	}
}

func searchCmd(ctrl Controller, query string) tea.Cmd {
	return func() tea.Msg {
		ctrl.Search(query)
		return navigatedMsg{location: ctrl.Location()}
	}
}

func pageCmd(ctrl Controller, page int) tea.Cmd {
	return func() tea.Msg {
		ctrl.GoToPage(page)
		return navigatedMsg{location: ctrl.Location()}
	}
}

func historyCmd(ctrl Controller, move func() bool) tea.Cmd {
	return func() tea.Msg {
		move()
		return navigatedMsg{location: ctrl.Location()}
	}
}

func inputDebounceCmd(wait time.Duration, seq int, value string) tea.Cmd {
	return tea.Tick(wait, func(time.Time) tea.Msg {
		return inputDebounceMsg{seq: seq, value: value}
	})
}
