// Package repl implements an interactive shell that evaluates expr-lang
// queries against the namespace of a chunk.
package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/dcsmiz/lang"
	"github.com/ardnew/dcsmiz/log"
)

type (
	// editDoneMsg carries a successfully evaluated edit.
	editDoneMsg struct {
		source string
		ns     *lang.Namespace
	}
	editCancelledMsg struct{}
	editDeclinedMsg  struct{}
	editErrorMsg     struct{ err error }
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"

	defaultWidth = 80
	previewWidth = 48
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help          Print this help
  list [path]   List variables, or the entries of the table at path
  edit          Edit the source in $EDITOR and evaluate it again
  clear         Clear screen
  quit          Exit

Usage:
  Type a query to evaluate it; variables are the chunk's globals
  Tables are maps: mission.coalition.blue.country[1].name
  Tab / Shift-Tab cycle completions, Space accepts
  Up/Down browse history, Shift+Up/Shift+Down within the current mode
  Ctrl+C on an empty line or Ctrl+D exits`

// inputMode selects whether input is a query or a control command.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// Config configures [Run].
type Config struct {
	// Source is the chunk whose namespace queries are evaluated against.
	Source string
	// Name labels the source in logs.
	Name string
	// CacheDir holds the history file. Empty keeps history in memory.
	CacheDir string
	Logger   log.Logger
	Options  []lang.Option
}

type model struct {
	ctx     context.Context //nolint:containedctx
	input   textinput.Model
	ns      *lang.Namespace
	source  string
	opts    []lang.Option
	logger  log.Logger
	history *History

	matches      fuzzy.Matches
	wordStart    int
	wordEnd      int
	suggIdx      int
	historyIdx   int
	preTabCursor int
	width        int
	evalCursor   int
	ctrlCursor   int
	preTabText   string
	evalText     string
	ctrlText     string
	mode         inputMode
	tabActive    bool
	quitting     bool
}

// Run evaluates cfg.Source and starts the shell. It returns when the user
// quits or ctx is done.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := cfg.Logger.With(slog.String("source", cfg.Name))

	if strings.TrimSpace(cfg.Source) == "" {
		return ErrNoSource.With(slog.String("source", cfg.Name))
	}

	opts := append([]lang.Option{lang.WithLogger(logger)}, cfg.Options...)

	ns, err := lang.LoadString(ctx, cfg.Source, opts...)
	if err != nil {
		return err
	}

	logger.TraceContext(ctx, "repl namespace loaded", slog.Int("variables", ns.Len()))

	var path string
	if cfg.CacheDir != "" {
		path = filepath.Join(cfg.CacheDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "history not loaded", slog.Any("error", err))
	}

	m := newModel(ctx, ns, cfg.Source, history, logger, opts)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

func newModel(
	ctx context.Context,
	ns *lang.Namespace,
	source string,
	history *History,
	logger log.Logger,
	opts []lang.Option,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctx:        ctx,
		input:      ti,
		ns:         ns,
		source:     source,
		opts:       opts,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editDoneMsg:
		m.source, m.ns = msg.source, msg.ns

		m.logger.TraceContext(m.ctx, "repl edit applied",
			slog.Int("variables", m.ns.Len()))

		return m, tea.Println(resultStyle.Render("namespace updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	call := detectFunctionCall(input, m.input.Position())

	switch {
	case m.historyIdx < m.history.Len():
		pos := lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx + 1))
		b.WriteString(hintStyle.Render(pos + "/" + strconv.Itoa(m.history.Len())))

	case strings.TrimSpace(input) == "":
		hint := "Type a query or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case call.inCall && m.mode == modeEval && len(m.matches) == 0:
		if params, ok := signature(m.ns, call.name); ok {
			b.WriteString(renderSignatureHint(call.name, params, call.argIndex))
		}

	default:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refreshMatches(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			m.tabActive = false
			m.refreshMatches(true)

			return m, nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.browse(-1, false), nil

	case tea.KeyDown:
		return m.browse(1, false), nil

	case tea.KeyShiftUp:
		return m.browse(-1, true), nil

	case tea.KeyShiftDown:
		return m.browse(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refreshMatches(false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil
	}

	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		m.refreshMatches(true)

		return m, cmd
	}

	// Deletion and cursor movement never complete automatically.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches(false)

	return m, cmd
}

// cycle moves the selected completion by step, completing at once when there
// is a single candidate.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if !m.tabActive {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = -1
		if step < 0 {
			m.suggIdx = 0
		}
	}

	m.suggIdx = ((m.suggIdx+step)%n + n) % n
	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceWord replaces the word under completion and moves the cursor past it.
func (m *model) replaceWord(s string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + s + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(s))
	m.wordEnd = m.wordStart + len(s)
}

// refreshMatches recomputes the completions. With autoConfirm, a word that
// already equals its only candidate is accepted.
func (m *model) refreshMatches(autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

// browse moves through the history by step. With sameMode, entries of the
// other mode are skipped; otherwise the mode follows the entry.
func (m model) browse(step int, sameMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if sameMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		m.refreshMatches(false)

		return m
	}

	if step > 0 {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		m.refreshMatches(false)
	}

	return m
}

// switchToMode changes the input mode, keeping the text typed in each mode.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	m.refreshMatches(false)

	return m
}

// submit runs the current line as a query or command.
func (m model) submit() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctx, "history not saved", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.command(input)
	}

	echo := tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(input))

	out, ok := m.query(input)
	if !ok {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render(out)))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

// query evaluates input and returns the formatted result, or the error text
// and false.
func (m model) query(input string) (string, bool) {
	result, err := m.ns.Query(m.ctx, input, m.opts...)

	m.logger.TraceContext(m.ctx, "repl query",
		slog.String("query", input),
		slog.Bool("success", err == nil))

	if err != nil {
		return "error: " + err.Error(), false
	}

	return lang.FormatResult(result), true
}

func (m model) command(input string) (model, tea.Cmd) {
	fields := strings.Fields(input)
	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	switch fields[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case "l", "list":
		path := ""
		if len(fields) > 1 {
			path = fields[1]
		}

		out, err := m.list(path)
		if err != nil {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
		}

		return m, tea.Sequence(echo, tea.Println(out))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Println(errorStyle.Render("unknown command: " + fields[0] + " (try 'help')"))
	}
}

// list renders the variables of the namespace, or the entries of the table
// reached by path, one per line with a value preview.
func (m model) list(path string) (string, error) {
	var b strings.Builder

	row := func(name string, v lang.Value) {
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview(v, previewWidth)))
	}

	if path == "" {
		for name, v := range m.ns.All() {
			row(name, v)
		}

		return b.String(), nil
	}

	v, ok := resolve(m.ns, path)
	if !ok {
		result, err := m.ns.Query(m.ctx, path, m.opts...)
		if err != nil {
			return "", err
		}

		return lang.FormatResult(result), nil
	}

	t, ok := v.AsTable()
	if !ok {
		return preview(v, m.width), nil
	}

	for k, v := range t.All() {
		row(k.String(), v)
	}

	return b.String(), nil
}

// resolve follows a dotted path of string keys from the namespace.
func resolve(ns *lang.Namespace, path string) (lang.Value, bool) {
	segments := strings.Split(path, ".")

	v, ok := ns.Get(segments[0])

	for _, seg := range segments[1:] {
		if !ok {
			break
		}

		t, isTable := v.AsTable()
		if !isTable {
			return lang.Nil(), false
		}

		v, ok = t.Field(seg)
	}

	return v, ok
}

func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		ctx:    m.ctx,
		source: m.source,
		opts:   m.opts,
		logger: m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.ns == nil:
			return editCancelledMsg{}
		default:
			return editDoneMsg{source: cmd.edited, ns: cmd.ns}
		}
	})
}
