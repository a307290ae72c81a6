// Package tui is the interactive terminal front end. It renders the
// document tree, the scrape targets, and the script pane side by side, and
// drives a dompick.Session from a compact key map.
//
// The model holds view concerns only. Document, selection, and target
// state live in the session; the model re-reads them whenever it acts or
// is woken by a coordinator notification, so the terminal and a live
// browser surface always describe the same state.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AmeRaino/dompick/internal/tui/theme"
	"github.com/AmeRaino/dompick/pkg/dompick"
	"github.com/AmeRaino/dompick/pkg/genai"
	"github.com/AmeRaino/dompick/pkg/inspect"
	"github.com/AmeRaino/dompick/pkg/inspect/treeview"
	"github.com/AmeRaino/dompick/pkg/surface"
	"github.com/AmeRaino/dompick/pkg/target"
)

type focus int

const (
	focusTree focus = iota
	focusOutput
)

// prompt names the single-line input the model is currently collecting.
type prompt int

const (
	promptNone prompt = iota
	promptURL
	promptName
	promptInstruction
	promptDelete
)

// task names the asynchronous operation in flight, at most one at a time.
type task int

const (
	taskNone task = iota
	taskLoad
	taskGenerate
	taskExplain
	taskRun
)

func (t task) verb() string {
	switch t {
	case taskLoad:
		return "loading"
	case taskGenerate:
		return "generating"
	case taskExplain:
		return "explaining"
	case taskRun:
		return "running"
	}
	return ""
}

// paneContent names what the output pane currently shows.
type paneContent int

const (
	contentNone paneContent = iota
	contentScript
	contentExplanation
	contentResult
)

// Model is the root bubbletea model.
type Model struct {
	ctx     context.Context
	session *dompick.Session

	tree   *treeview.Model
	output viewport.Model
	input  textinput.Model
	spin   spinner.Model

	width  int
	height int
	ready  bool

	contentH int
	treeW    int
	rightW   int
	targetsH int
	outputH  int

	focus       focus
	prompt      prompt
	pendingName string

	state   inspect.State
	targets []target.Target

	// gen stamps asynchronous work; results carrying an older stamp are
	// discarded, so cancelling is just bumping the counter.
	gen    uint64
	task   task
	stream genai.Stream

	content    paneContent
	outputText string
	script     string

	alert string
}

// NewModel builds the model over an existing session. The session may
// already hold a document; its state seeds the panes.
func NewModel(ctx context.Context, session *dompick.Session) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorInfo)

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 512

	m := Model{
		ctx:     ctx,
		session: session,
		tree:    treeview.New(1),
		output:  viewport.New(0, 0),
		input:   ti,
		spin:    sp,
		state:   session.State(),
		targets: session.Targets(),
	}
	if m.state.Tree != nil {
		m.tree.SetTree(m.state.Tree)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case refreshMsg:
		m.syncState()
		return m, nil

	case quitMsg:
		return m, tea.Quit

	case loadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.task = taskNone
		if msg.err != nil {
			m.alert = "load failed: " + msg.err.Error()
			return m, nil
		}
		m.alert = ""
		m.syncState()
		return m, nil

	case streamMsg:
		if msg.gen != m.gen {
			if msg.stream != nil {
				msg.stream.Close()
			}
			return m, nil
		}
		if msg.err != nil {
			m.task = taskNone
			m.alert = alertFor(msg.err)
			return m, nil
		}
		m.stream = msg.stream
		m.outputText = ""
		if msg.kind == taskExplain {
			m.content = contentExplanation
		} else {
			m.content = contentScript
		}
		m.refreshOutput(true)
		return m, readChunkCmd(m.stream, m.gen)

	case chunkMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.outputText += msg.text
		m.refreshOutput(true)
		return m, readChunkCmd(m.stream, m.gen)

	case streamDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if m.task == taskGenerate {
			m.script = genai.StripFences(m.outputText)
		}
		if msg.err != nil {
			m.alert = msg.err.Error()
		}
		m.task = taskNone
		m.stream = nil
		return m, nil

	case runDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.task = taskNone
		m.showResult(msg.result)
		return m, nil
	}

	return m, nil
}

// handleKey routes one key press. A visible prompt swallows everything
// except quit; otherwise control keys come first, then pane scrolling,
// then the letter commands.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		if m.task != taskNone {
			m.cancelTask("cancelled")
			return m, nil
		}
		m.alert = ""
		m.session.Select("")
		m.syncState()
		return m, nil
	case tea.KeyTab:
		if m.focus == focusTree {
			m.focus = focusOutput
		} else {
			m.focus = focusTree
		}
		return m, nil
	}

	if m.focus == focusOutput && isScrollKey(msg) {
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}

	switch msg.Type {
	case tea.KeyEnter:
		return m.startPromote()
	case tea.KeyUp:
		return m.moveSelection(-1)
	case tea.KeyDown:
		return m.moveSelection(1)
	case tea.KeyLeft:
		m.fold(true)
		return m, nil
	case tea.KeyRight:
		m.fold(false)
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j":
		return m.moveSelection(1)
	case "k":
		return m.moveSelection(-1)
	case "h":
		m.fold(true)
		return m, nil
	case "l":
		m.fold(false)
		return m, nil
	case "m":
		m.session.ToggleMode()
		m.syncState()
		return m, nil
	case "p":
		return m.startPromote()
	case "d":
		return m.startDelete()
	case "g":
		return m.startGenerate()
	case "x":
		return m.startRun()
	case "e":
		return m.startExplain()
	case "o":
		return m.startOpen()
	}

	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.closePrompt()
		return m, nil
	case tea.KeyEnter:
		return m.submitPrompt(strings.TrimSpace(m.input.Value()))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitPrompt(value string) (tea.Model, tea.Cmd) {
	switch m.prompt {
	case promptURL:
		m.closePrompt()
		if value == "" {
			return m, nil
		}
		m.gen++
		m.task = taskLoad
		m.alert = ""
		return m, loadCmd(m.ctx, m.session, value, m.gen)

	case promptName:
		if value == "" {
			m.closePrompt()
			m.alert = "field name must not be empty"
			return m, nil
		}
		m.pendingName = value
		m.prompt = promptInstruction
		m.input.Placeholder = "instruction (empty keeps text content)"
		m.input.SetValue("")
		return m, nil

	case promptInstruction:
		name := m.pendingName
		m.closePrompt()
		if _, err := m.session.PromoteSelection(name, value); err != nil {
			m.alert = alertFor(err)
			return m, nil
		}
		m.alert = ""
		m.syncState()
		return m, nil

	case promptDelete:
		m.closePrompt()
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			m.alert = "enter a target number"
			return m, nil
		}
		if err := m.session.RemoveTarget(n - 1); err != nil {
			m.alert = err.Error()
			return m, nil
		}
		m.alert = ""
		m.syncState()
		return m, nil
	}

	m.closePrompt()
	return m, nil
}

func (m Model) moveSelection(delta int) (tea.Model, tea.Cmd) {
	if m.state.Tree == nil {
		return m, nil
	}
	cur := m.state.SelectedID
	var id string
	if delta > 0 {
		id = m.tree.NextID(cur)
	} else {
		id = m.tree.PrevID(cur)
	}
	if id == "" || id == cur {
		return m, nil
	}
	m.session.Select(id)
	m.syncState()
	return m, nil
}

// fold collapses or expands the selected row's children.
func (m *Model) fold(collapse bool) {
	id := m.state.SelectedID
	if id == "" {
		return
	}
	if collapse {
		m.tree.Collapse(id)
	} else {
		m.tree.Expand(id)
	}
}

func (m Model) startPromote() (tea.Model, tea.Cmd) {
	if m.state.SelectedID == "" {
		m.alert = "select an element first"
		return m, nil
	}
	return m.openPrompt(promptName, "field name")
}

func (m Model) startDelete() (tea.Model, tea.Cmd) {
	if len(m.targets) == 0 {
		m.alert = "no targets to delete"
		return m, nil
	}
	return m.openPrompt(promptDelete, fmt.Sprintf("1-%d", len(m.targets)))
}

func (m Model) startOpen() (tea.Model, tea.Cmd) {
	if m.task != taskNone {
		m.alert = "busy: " + m.task.verb()
		return m, nil
	}
	return m.openPrompt(promptURL, "example.com/page")
}

func (m Model) startGenerate() (tea.Model, tea.Cmd) {
	if m.task != taskNone {
		m.alert = "busy: " + m.task.verb()
		return m, nil
	}
	m.gen++
	m.task = taskGenerate
	m.alert = ""
	return m, generateCmd(m.ctx, m.session, m.gen)
}

func (m Model) startExplain() (tea.Model, tea.Cmd) {
	if m.task != taskNone {
		m.alert = "busy: " + m.task.verb()
		return m, nil
	}
	if m.state.SelectedID == "" {
		m.alert = "select an element first"
		return m, nil
	}
	m.gen++
	m.task = taskExplain
	m.alert = ""
	return m, explainCmd(m.ctx, m.session, m.gen)
}

func (m Model) startRun() (tea.Model, tea.Cmd) {
	if m.task != taskNone {
		m.alert = "busy: " + m.task.verb()
		return m, nil
	}
	if m.script == "" {
		m.alert = "no script yet; g generates one"
		return m, nil
	}
	m.gen++
	m.task = taskRun
	m.alert = ""
	return m, runCmd(m.ctx, m.session, m.script, m.gen)
}

func (m Model) openPrompt(kind prompt, placeholder string) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
	m.layout()
	return m, textinput.Blink
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.pendingName = ""
	m.input.Blur()
	m.input.SetValue("")
	m.layout()
}

func (m *Model) cancelTask(reason string) {
	m.gen++
	if m.stream != nil {
		m.stream.Close()
		m.stream = nil
	}
	m.task = taskNone
	m.alert = reason
}

// syncState pulls the session's current state into the panes. Called after
// every local mutation and on every coordinator wakeup.
func (m *Model) syncState() {
	st := m.session.State()
	if st.Tree != m.state.Tree {
		m.tree.SetTree(st.Tree)
	}
	if st.SelectedID != m.state.SelectedID && st.SelectedID != "" {
		m.tree.EnsureVisible(st.SelectedID)
	}
	m.state = st
	m.targets = m.session.Targets()
}

func (m *Model) showResult(res surface.ExecResult) {
	m.content = contentResult
	if res.Failed() {
		m.outputText = res.Error
		if res.Details != "" {
			m.outputText += "\n\n" + res.Details
		}
		m.alert = "script failed"
	} else {
		pretty, err := json.MarshalIndent(res.Data, "", "  ")
		if err != nil {
			m.outputText = string(res.Data)
		} else {
			m.outputText = string(pretty)
		}
		m.alert = ""
	}
	m.refreshOutput(false)
}

func (m *Model) refreshOutput(bottom bool) {
	wrapped := lipgloss.NewStyle().Width(m.output.Width).Render(m.outputText)
	m.output.SetContent(wrapped)
	if bottom {
		m.output.GotoBottom()
	} else {
		m.output.GotoTop()
	}
}

// layout distributes the terminal between the panes. The tree takes the
// left column, targets and output share the right one, the status bar and
// an optional prompt line sit at the bottom.
func (m *Model) layout() {
	statusH := 1
	promptH := 0
	if m.prompt != promptNone {
		promptH = 1
	}

	m.contentH = m.height - statusH - promptH
	if m.contentH < 5 {
		m.contentH = 5
	}

	m.treeW = theme.Clamp(m.width*2/5, 24, 72)
	if m.treeW > m.width/2 {
		m.treeW = m.width / 2
	}
	m.rightW = m.width - m.treeW

	m.targetsH = theme.Clamp(m.contentH/3, 5, 10)
	m.outputH = m.contentH - m.targetsH

	// Each pane loses two rows to the border and one to its title.
	m.tree.SetHeight(max(m.contentH-3, 1))
	m.output.Width = max(m.rightW-2, 1)
	m.output.Height = max(m.outputH-3, 1)
	m.input.Width = max(m.width-16, 10)
	m.refreshOutput(false)
}

func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	left := m.renderTree()
	right := lipgloss.JoinVertical(lipgloss.Left, m.renderTargets(), m.renderOutput())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	bar := statusBar{
		width:    m.width,
		mode:     m.state.Mode,
		url:      m.session.URL(),
		provider: m.providerLabel(),
		busy:     m.busyLabel(),
		alert:    m.alert,
	}

	parts := []string{body, bar.View()}
	if m.prompt != promptNone {
		parts = append(parts, m.renderPrompt())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderTree() string {
	innerW := max(m.treeW-2, 1)
	var b strings.Builder
	b.WriteString(theme.PaneTitle.Render("document"))
	b.WriteString("\n")

	if m.state.Tree == nil {
		b.WriteString(theme.TextMuted.Render("no document loaded"))
		b.WriteString("\n\n")
		b.WriteString(theme.TextMuted.Render("o opens a url"))
	} else {
		for _, row := range m.tree.Viewport() {
			b.WriteString(m.renderRow(row, innerW))
			b.WriteString("\n")
		}
	}

	style := theme.UnfocusedBorder
	if m.focus == focusTree {
		style = theme.FocusBorder
	}
	return style.Width(innerW).Height(m.contentH - 2).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderRow(row treeview.Row, width int) string {
	marker := "  "
	if row.HasKids {
		marker = "▾ "
		if row.Collapsed {
			marker = "▸ "
		}
	}
	line := clip(strings.Repeat("  ", row.Depth)+marker+row.Label, width)

	switch {
	case row.ID == m.state.SelectedID:
		return theme.TreeSelected.Width(width).Render(line)
	case row.ID == m.state.HoveredID:
		return theme.TreeHovered.Render(line)
	case row.IsText:
		return theme.TreeText.Render(line)
	}
	return line
}

func (m Model) renderTargets() string {
	innerW := max(m.rightW-2, 1)
	var b strings.Builder
	b.WriteString(theme.PaneTitle.Render(fmt.Sprintf("targets (%d)", len(m.targets))))
	b.WriteString("\n")

	if len(m.targets) == 0 {
		b.WriteString(theme.TextMuted.Render("none yet; p promotes the selection"))
	}

	visible := max(m.targetsH-3, 1)
	for i, t := range m.targets {
		if i == visible-1 && len(m.targets) > visible {
			b.WriteString(theme.TextMuted.Render(fmt.Sprintf("+%d more", len(m.targets)-i)))
			break
		}
		name := clip(t.Name, 18)
		sel := clip(t.Selector, max(innerW-24, 8))
		b.WriteString(fmt.Sprintf("%d. %s  %s\n",
			i+1, theme.TargetName.Render(name), theme.TargetSelector.Render(sel)))
	}

	return theme.UnfocusedBorder.Width(innerW).Height(m.targetsH - 2).
		Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderOutput() string {
	innerW := max(m.rightW-2, 1)
	style := theme.UnfocusedBorder
	if m.focus == focusOutput {
		style = theme.FocusBorder
	}
	return style.Width(innerW).Height(m.outputH - 2).
		Render(theme.PaneTitle.Render(m.outputTitle()) + "\n" + m.output.View())
}

func (m Model) outputTitle() string {
	switch m.content {
	case contentScript:
		if m.task == taskGenerate {
			return "script " + m.spin.View()
		}
		return "script (x runs it)"
	case contentExplanation:
		if m.task == taskExplain {
			return "explanation " + m.spin.View()
		}
		return "explanation"
	case contentResult:
		return "result"
	}
	return "output"
}

func (m Model) renderPrompt() string {
	var label string
	switch m.prompt {
	case promptURL:
		label = "open"
	case promptName:
		label = "name"
	case promptInstruction:
		label = "instruction"
	case promptDelete:
		label = "delete #"
	}
	return theme.InputPrompt.Render(label+": ") + m.input.View()
}

func (m Model) providerLabel() string {
	g := m.session.Generator()
	if g == nil {
		return ""
	}
	if model := g.Model(); model != "" {
		return g.Name() + "/" + model
	}
	return g.Name()
}

func (m Model) busyLabel() string {
	if m.task == taskNone {
		return ""
	}
	return m.spin.View() + " " + m.task.verb()
}

// alertFor maps known sentinels to short status-bar phrasing.
func alertFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, dompick.ErrNoDocument):
		return "no document loaded; o opens a url"
	case errors.Is(err, dompick.ErrNoSelection):
		return "select an element first"
	case errors.Is(err, dompick.ErrNoTargets):
		return "no targets yet; p promotes the selection"
	}
	return err.Error()
}

func isScrollKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown,
		tea.KeyCtrlD, tea.KeyCtrlU, tea.KeyHome, tea.KeyEnd:
		return true
	}
	switch msg.String() {
	case "j", "k":
		return true
	}
	return false
}

// clip hard-caps s at width cells, marking a cut with an ellipsis. Unlike
// wrapping it never grows the line count, which the fixed pane heights
// depend on.
func clip(s string, width int) string {
	if width < 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
