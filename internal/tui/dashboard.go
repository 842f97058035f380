package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/logging"
	"github.com/manav03panchal/tidytodo/internal/model"
	"github.com/manav03panchal/tidytodo/internal/session"
	"github.com/manav03panchal/tidytodo/internal/timer"
	"github.com/manav03panchal/tidytodo/internal/todo"
)

// touchInterval limits how often activity is written to the session store.
const touchInterval = 30 * time.Second

// tickMsg is sent when the clock ticks.
type tickMsg time.Time

// timerMsg is sent when the inactivity timer changes state.
type timerMsg timer.Snapshot

// sessionMsg is sent when a session begins or ends.
type sessionMsg struct {
	user *model.User
}

// authResultMsg carries the outcome of a login or register attempt.
type authResultMsg struct {
	ok       bool
	register bool
	err      error
}

// todosLoadedMsg carries a list result. seq identifies the request.
type todosLoadedMsg struct {
	seq   uint64
	todos []model.Todo
	err   error
}

type todoCreatedMsg struct {
	todo *model.Todo
	err  error
}

type todoUpdatedMsg struct {
	todo *model.Todo
	err  error
}

type todoDeletedMsg struct {
	id  int64
	err error
}

type screen int

const (
	screenAuth screen = iota
	screenTodos
	screenSettings
)

type inputMode int

const (
	inputNone inputMode = iota
	inputAdd
	inputEdit
)

// DashboardConfig holds configuration for the dashboard.
type DashboardConfig struct {
	Auth    *session.Authenticator
	Session *session.Store
	Todos   *todo.Service
	Timer   *timer.Inactivity

	AllowedTimeouts []int
	WarningSeconds  int
	// SetTimeout applies and persists a new inactivity timeout.
	SetTimeout func(minutes int) error

	RefreshInterval time.Duration
	Now             func() time.Time
}

// DashboardModel is the main bubbletea model: the auth screen, the todo
// list, the timeout settings and the inactivity warning modal.
type DashboardModel struct {
	auth       *session.Authenticator
	session    *session.Store
	service    *todo.Service
	timer      *timer.Inactivity
	setTimeout func(minutes int) error
	allowed    []int
	warningSec int
	now        func() time.Time

	// Data
	user  *model.User
	todos []model.Todo
	snap  timer.Snapshot

	// UI state
	screen     screen
	form       *AuthForm
	input      textinput.Model
	inputMode  inputMode
	editID     int64
	cursor     int
	settingsAt int
	width      int
	height     int
	err        error
	message    string
	messageExp time.Time
	busy       bool
	loading    bool
	listSeq    uint64
	warned     bool
	lastTouch  time.Time

	refreshInterval time.Duration
	unsubscribe     []func()
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(config DashboardConfig) *DashboardModel {
	if config.RefreshInterval == 0 {
		config.RefreshInterval = time.Second
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.WarningSeconds == 0 {
		config.WarningSeconds = 60
	}

	input := textinput.New()
	input.Placeholder = "What needs doing?"
	input.CharLimit = 1024
	input.Width = 48

	m := &DashboardModel{
		auth:            config.Auth,
		session:         config.Session,
		service:         config.Todos,
		timer:           config.Timer,
		setTimeout:      config.SetTimeout,
		allowed:         config.AllowedTimeouts,
		warningSec:      config.WarningSeconds,
		now:             config.Now,
		form:            NewAuthForm(),
		input:           input,
		refreshInterval: config.RefreshInterval,
	}
	m.snap = m.timer.Snapshot()
	return m
}

// Attach subscribes the model to timer and session changes. send must not
// block the caller; the timer and session notify synchronously.
func (m *DashboardModel) Attach(send func(tea.Msg)) {
	m.unsubscribe = append(m.unsubscribe,
		m.timer.OnChange(func(s timer.Snapshot) { send(timerMsg(s)) }),
		m.session.Subscribe(func(u *model.User) { send(sessionMsg{user: u}) }),
	)
}

// Close drops the subscriptions made by Attach.
func (m *DashboardModel) Close() {
	for _, fn := range m.unsubscribe {
		fn()
	}
	m.unsubscribe = nil
}

// Init initializes the model.
func (m *DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.syncSession())
}

// Update handles messages and updates the model.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.recordActivity(timer.SignalKeyPress)
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		m.recordActivity(mouseSignal(msg))
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		// Clear expired messages
		if !m.messageExp.IsZero() && m.now().After(m.messageExp) {
			m.message = ""
			m.messageExp = time.Time{}
		}
		m.snap = m.timer.Snapshot()
		return m, m.tickCmd()

	case timerMsg:
		m.snap = timer.Snapshot(msg)
		if m.snap.State == timer.Warning {
			m.warned = true
		}
		return m, nil

	case sessionMsg:
		return m, m.syncSession()

	case authResultMsg:
		m.busy = false
		switch {
		case msg.err != nil:
			m.err = msg.err
		case !msg.ok && msg.register:
			m.err = errors.NewUserError("Could not create the account", "")
		case !msg.ok:
			m.err = errors.ErrAuthFailed
		default:
			m.err = nil
		}
		return m, m.syncSession()

	case todosLoadedMsg:
		if msg.seq != m.listSeq {
			// A newer request is in flight or the session changed.
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.todos = msg.todos
		m.clampCursor()
		return m, nil

	case todoCreatedMsg:
		m.busy = false
		if msg.err != nil {
			// The typed text stays in the input for another attempt.
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.todos = append(m.todos, *msg.todo)
		m.cursor = len(m.todos) - 1
		m.closeInput()
		return m, nil

	case todoUpdatedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		for i := range m.todos {
			if m.todos[i].ID == msg.todo.ID {
				m.todos[i] = *msg.todo
			}
		}
		m.closeInput()
		return m, nil

	case todoDeletedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		kept := m.todos[:0]
		for _, t := range m.todos {
			if t.ID != msg.id {
				kept = append(kept, t)
			}
		}
		m.todos = kept
		m.clampCursor()
		m.setMessage("Todo deleted", 2*time.Second)
		return m, nil
	}

	return m, nil
}

// recordActivity feeds an input event to the inactivity timer.
func (m *DashboardModel) recordActivity(sig timer.Signal) {
	if m.user == nil {
		return
	}
	m.timer.Activity(sig)

	now := m.now()
	if now.Sub(m.lastTouch) >= touchInterval {
		m.lastTouch = now
		if err := m.session.Touch(now); err != nil {
			logging.Warn("could not record activity", logging.KeyError, err)
		}
	}
}

func mouseSignal(msg tea.MouseMsg) timer.Signal {
	switch {
	case tea.MouseEvent(msg).IsWheel():
		return timer.SignalScroll
	case msg.Action == tea.MouseActionMotion:
		return timer.SignalPointerMove
	case msg.Action == tea.MouseActionRelease:
		return timer.SignalClick
	default:
		return timer.SignalPointerPress
	}
}

// handleKeyPress handles keyboard input.
func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.user != nil && m.timer.State() == timer.Warning {
		return m.handleWarningKey(msg)
	}

	switch m.screen {
	case screenAuth:
		return m.handleAuthKey(msg)
	case screenSettings:
		return m.handleSettingsKey(msg)
	default:
		if m.inputMode != inputNone {
			return m.handleInputKey(msg)
		}
		return m.handleTodosKey(msg)
	}
}

// handleWarningKey handles the two choices of the warning modal. Other keys
// are swallowed so they cannot act on the list behind it.
func (m *DashboardModel) handleWarningKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s", "S":
		m.timer.StayLoggedIn()
		m.warned = false
		m.snap = m.timer.Snapshot()
		return m, nil
	case "l", "L":
		m.warned = false
		m.timer.LogoutNow()
		m.snap = m.timer.Snapshot()
		return m, m.syncSession()
	}
	return m, nil
}

func (m *DashboardModel) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "ctrl+r":
		m.form.Toggle()
		m.err = nil
		return m, nil
	case "enter":
		return m, m.submitAuth()
	}
	return m, m.form.Update(msg)
}

func (m *DashboardModel) submitAuth() tea.Cmd {
	if m.busy {
		return nil
	}
	username, password := m.form.Credentials()
	if username == "" || password == "" {
		m.err = errors.NewUserError("Username and password are required", "")
		return nil
	}

	m.busy = true
	m.err = nil
	if m.form.Registering() {
		data := m.form.RegisterData()
		return func() tea.Msg {
			ok, err := m.auth.Register(requestContext(0), data)
			return authResultMsg{ok: ok, register: true, err: err}
		}
	}
	return func() tea.Msg {
		ok, err := m.auth.Login(requestContext(0), username, password)
		return authResultMsg{ok: ok, err: err}
	}
}

func (m *DashboardModel) handleTodosKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.todos)-1 {
			m.cursor++
		}
		return m, nil

	case "a":
		m.openInput(inputAdd, 0, "")
		return m, nil

	case "e", "enter":
		if t := m.selected(); t != nil {
			m.openInput(inputEdit, t.ID, t.Text)
		}
		return m, nil

	case " ", "x":
		if t := m.selected(); t != nil && !m.busy {
			m.busy = true
			return m, m.updateCmd(t.ID, model.TodoPatch{}.SetCompleted(!t.Completed))
		}
		return m, nil

	case "d", "delete":
		if t := m.selected(); t != nil && !m.busy {
			m.busy = true
			return m, m.deleteCmd(t.ID)
		}
		return m, nil

	case "r":
		// Manual retry after a failed list.
		return m, m.loadTodosCmd()

	case "t":
		m.screen = screenSettings
		m.settingsAt = 0
		for i, v := range m.allowed {
			if v == m.timer.TimeoutMinutes() {
				m.settingsAt = i
			}
		}
		return m, nil

	case "L":
		if err := m.auth.Logout(); err != nil {
			m.err = err
		}
		return m, m.syncSession()
	}

	return m, nil
}

func (m *DashboardModel) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		m.err = nil
		return m, nil

	case "enter":
		if m.busy {
			return m, nil
		}
		text := m.input.Value()
		m.busy = true
		if m.inputMode == inputEdit {
			return m, m.updateCmd(m.editID, model.TodoPatch{}.SetText(text))
		}
		return m, m.createCmd(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *DashboardModel) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "t", "q":
		m.screen = screenTodos
		return m, nil

	case "up", "k":
		if m.settingsAt > 0 {
			m.settingsAt--
		}
		return m, nil

	case "down", "j":
		if m.settingsAt < len(m.allowed)-1 {
			m.settingsAt++
		}
		return m, nil

	case "enter":
		if len(m.allowed) == 0 {
			return m, nil
		}
		minutes := m.allowed[m.settingsAt]
		if err := m.setTimeout(minutes); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.snap = m.timer.Snapshot()
		m.setMessage(fmt.Sprintf("Auto-logout set to %d minutes", minutes), 3*time.Second)
		m.screen = screenTodos
		return m, nil
	}
	return m, nil
}

// syncSession reconciles the screen with the session store.
func (m *DashboardModel) syncSession() tea.Cmd {
	user := m.session.Current()
	switch {
	case user == nil && m.user != nil:
		if m.warned {
			m.setMessage("You were logged out after inactivity", 10*time.Second)
		} else {
			m.setMessage("Logged out", 3*time.Second)
		}
		m.user = nil
		m.todos = nil
		m.cursor = 0
		m.warned = false
		m.busy = false
		m.loading = false
		m.listSeq++
		m.closeInput()
		m.screen = screenAuth
		m.form.Reset()
		return nil

	case user == nil:
		m.screen = screenAuth
		return nil

	case m.user == nil || m.user.ID != user.ID:
		m.user = user
		m.todos = nil
		m.cursor = 0
		m.err = nil
		m.screen = screenTodos
		m.lastTouch = time.Time{}
		m.snap = m.timer.Snapshot()
		return m.loadTodosCmd()
	}
	return nil
}

func (m *DashboardModel) openInput(mode inputMode, id int64, text string) {
	m.inputMode = mode
	m.editID = id
	m.input.SetValue(text)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *DashboardModel) closeInput() {
	m.inputMode = inputNone
	m.editID = 0
	m.input.SetValue("")
	m.input.Blur()
}

func (m *DashboardModel) selected() *model.Todo {
	if m.cursor < 0 || m.cursor >= len(m.todos) {
		return nil
	}
	return &m.todos[m.cursor]
}

func (m *DashboardModel) clampCursor() {
	m.cursor = min(m.cursor, len(m.todos)-1)
	m.cursor = max(m.cursor, 0)
}

// setMessage sets a temporary message.
func (m *DashboardModel) setMessage(msg string, duration time.Duration) {
	m.message = msg
	m.messageExp = m.now().Add(duration)
}

// requestContext returns a context for one service call. Owner 0 means no
// user is logged in yet.
func requestContext(owner int64) context.Context {
	ctx := logging.NewRequestContext(context.Background())
	if owner != 0 {
		ctx = logging.WithOwner(ctx, owner)
	}
	return ctx
}

func (m *DashboardModel) ownerID() int64 {
	if m.user == nil {
		return 0
	}
	return m.user.ID
}

// loadTodosCmd starts a list request. Results of earlier requests are
// discarded when they arrive.
func (m *DashboardModel) loadTodosCmd() tea.Cmd {
	if m.user == nil {
		return nil
	}
	m.listSeq++
	m.loading = true
	seq, owner := m.listSeq, m.user.ID
	return func() tea.Msg {
		todos, err := m.service.List(requestContext(owner), owner)
		return todosLoadedMsg{seq: seq, todos: todos, err: err}
	}
}

func (m *DashboardModel) createCmd(text string) tea.Cmd {
	owner := m.ownerID()
	return func() tea.Msg {
		t, err := m.service.Create(requestContext(owner), owner, text, false)
		return todoCreatedMsg{todo: t, err: err}
	}
}

func (m *DashboardModel) updateCmd(id int64, patch model.TodoPatch) tea.Cmd {
	owner := m.ownerID()
	return func() tea.Msg {
		t, err := m.service.Update(requestContext(owner), id, patch)
		return todoUpdatedMsg{todo: t, err: err}
	}
}

func (m *DashboardModel) deleteCmd(id int64) tea.Cmd {
	owner := m.ownerID()
	return func() tea.Msg {
		return todoDeletedMsg{id: id, err: m.service.Delete(requestContext(owner), id)}
	}
}

// tickCmd returns a command that sends a tick message.
func (m *DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// View renders the dashboard.
func (m *DashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	sections = append(sections, NewStatusComponent(m.user, m.snap, m.now(), m.width).View())

	if m.err != nil {
		sections = append(sections, StyleError.Render("Error: "+m.errorText()))
	}
	if m.message != "" {
		sections = append(sections, StyleWarning.Render(m.message))
	}

	if m.user != nil && m.snap.State == timer.Warning {
		modal := WarningModal(m.snap, m.warningSec)
		sections = append(sections, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, modal))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	switch m.screen {
	case screenAuth:
		sections = append(sections, m.form.View())
		sections = append(sections, HelpBar(authHelp(m.form.Registering())))

	case screenSettings:
		settings := &SettingsComponent{
			Allowed: m.allowed,
			Current: m.timer.TimeoutMinutes(),
			Cursor:  m.settingsAt,
			Width:   m.width,
		}
		sections = append(sections, settings.View())
		sections = append(sections, HelpBar(settingsHelp))

	default:
		list := &TodoListComponent{
			Todos:   m.todos,
			Cursor:  m.cursor,
			Width:   m.width,
			Loading: m.loading,
			Origin:  m.origin,
		}
		sections = append(sections, list.View())
		if m.inputMode != inputNone {
			label := "New todo"
			if m.inputMode == inputEdit {
				label = fmt.Sprintf("Edit todo %d", m.editID)
			}
			sections = append(sections, StyleSubtitle.Render(label)+"\n"+m.input.View())
		}
		sections = append(sections, HelpBar(todosHelp))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *DashboardModel) origin(id int64) string {
	return m.service.Classifier().ClassifyTodoID(id).String()
}

func (m *DashboardModel) errorText() string {
	text := m.err.Error()
	if errors.IsRemoteUnavailable(m.err) && m.screen == screenTodos && m.inputMode == inputNone {
		text += " (press r to retry)"
	}
	return text
}

func authHelp(registering bool) []HelpKey {
	toggle := HelpKey{"ctrl+r", "register"}
	if registering {
		toggle = HelpKey{"ctrl+r", "log in instead"}
	}
	return []HelpKey{{"tab", "next field"}, {"enter", "submit"}, toggle, {"esc", "quit"}}
}

var todosHelp = []HelpKey{
	{"a", "add"},
	{"e", "edit"},
	{"x", "toggle"},
	{"d", "delete"},
	{"r", "refresh"},
	{"t", "timeout"},
	{"L", "log out"},
	{"q", "quit"},
}

var settingsHelp = []HelpKey{
	{"↑/↓", "choose"},
	{"enter", "apply"},
	{"esc", "back"},
}

// Run starts the dashboard TUI.
func Run(config DashboardConfig) error {
	m := NewDashboardModel(config)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	// Observers fire on whichever goroutine changed the state, including
	// Update itself, so delivery must not wait for the event loop.
	m.Attach(func(msg tea.Msg) { go p.Send(msg) })
	defer m.Close()

	_, err := p.Run()
	return err
}
