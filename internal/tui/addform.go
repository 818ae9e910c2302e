// Package tui is the interactive terminal version of the add-device screen.
//
// The screen is a thin shell around form.Controller: it mirrors the
// controller's fields into widgets and renders whatever the controller
// reports through the Bridge (alerts, the success modal, navigation).
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/doidoi-app/doidoi-cli/internal/form"
	"github.com/doidoi-app/doidoi-cli/internal/output"
	"github.com/doidoi-app/doidoi-cli/pkg/models"
)

// Screen is the active screen
type Screen string

const (
	ScreenForm  Screen = "form"
	ScreenLogin Screen = "login"
)

type focus int

const (
	focusType focus = iota
	focusName
	focusButton
	focusCount
)

const typePlaceholder = "Chọn loại thiết bị"

// TokenSaver stores a freshly entered access token
type TokenSaver interface {
	SaveToken(token string) error
}

type submitDoneMsg struct {
	result form.Result
}

type tokenSavedMsg struct {
	err error
}

// Model is the add-device screen
type Model struct {
	ctrl   *form.Controller
	tokens TokenSaver
	ctx    context.Context

	Screen Screen
	focus  focus

	// selected indexes models.KindOptions, -1 when nothing is picked
	selected   int
	NameInput  textinput.Model
	TokenInput textinput.Model
	Spinner    spinner.Model

	Submitting bool

	ModalVisible bool
	ModalMessage string
	ModalName    string

	AlertTitle   string
	AlertMessage string

	Notice string

	Width int
	keys  formKeyMap
	help  help.Model
}

// NewModel creates the add-device screen around a controller
func NewModel(ctx context.Context, ctrl *form.Controller, tokens TokenSaver) Model {
	nameInput := textinput.New()
	nameInput.Placeholder = "Nhập tên thiết bị"
	nameInput.CharLimit = 64
	nameInput.Width = 40

	tokenInput := textinput.New()
	tokenInput.Placeholder = "Access token"
	tokenInput.EchoMode = textinput.EchoPassword
	tokenInput.EchoCharacter = '•'
	tokenInput.Width = 40

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(output.PrimaryColor)

	return Model{
		ctrl:       ctrl,
		tokens:     tokens,
		ctx:        ctx,
		Screen:     ScreenForm,
		focus:      focusType,
		selected:   -1,
		NameInput:  nameInput,
		TokenInput: tokenInput,
		Spinner:    s,
		Width:      output.MaxContentWidth,
		keys:       newFormKeyMap(),
		help:       help.New(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SelectedKind returns the kind currently picked in the type list
func (m Model) SelectedKind() models.Kind {
	if m.selected < 0 || m.selected >= len(models.KindOptions) {
		return models.Kind{}
	}
	return models.ParseKind(models.KindOptions[m.selected].Value)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = output.ClampWidth(msg.Width)
		return m, nil

	case alertMsg:
		m.AlertTitle = msg.title
		m.AlertMessage = msg.message
		return m, nil

	case modalShownMsg:
		m.ModalVisible = true
		m.ModalMessage = msg.message
		m.ModalName = msg.deviceName
		return m, nil

	case modalClosedMsg:
		m.ModalVisible = false
		m.ModalMessage = ""
		m.ModalName = ""
		m.NameInput.SetValue("")
		m.selected = -1
		return m, nil

	case navigateMsg:
		if msg.route == form.RouteLogin {
			return m.enterLogin()
		}
		return m, nil

	case submitDoneMsg:
		m.Submitting = false
		return m, nil

	case tokenSavedMsg:
		if msg.err != nil {
			m.Notice = "Không thể lưu token: " + msg.err.Error()
			return m, nil
		}
		m.Screen = ScreenForm
		m.TokenInput.SetValue("")
		m.TokenInput.Blur()
		m.AlertTitle = ""
		m.AlertMessage = ""
		m.ctrl.DismissAlert()
		m.Notice = "Đã lưu token, vui lòng thử lại."
		return m, m.setFocus(focusName)

	case spinner.TickMsg:
		if !m.Submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.Screen == ScreenLogin {
			return m.updateLogin(msg)
		}
		return m.updateForm(msg)
	}

	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key acknowledges an open alert
	if m.AlertMessage != "" {
		m.AlertTitle = ""
		m.AlertMessage = ""
		m.ctrl.DismissAlert()
		return m, nil
	}

	if m.ModalVisible || m.Submitting {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus((m.focus + 1) % focusCount)

	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)

	case key.Matches(msg, m.keys.Submit):
		m.Submitting = true
		m.Notice = ""
		return m, tea.Batch(m.submitCmd(), m.Spinner.Tick)

	case m.focus == focusType && key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		} else {
			m.selected = len(models.KindOptions) - 1
		}
		m.ctrl.SetKind(m.SelectedKind())
		return m, nil

	case m.focus == focusType && key.Matches(msg, m.keys.Down):
		m.selected = (m.selected + 1) % len(models.KindOptions)
		m.ctrl.SetKind(m.SelectedKind())
		return m, nil
	}

	if m.focus == focusName {
		var cmd tea.Cmd
		m.NameInput, cmd = m.NameInput.Update(msg)
		m.ctrl.SetName(m.NameInput.Value())
		return m, cmd
	}

	return m, nil
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "enter":
		token := strings.TrimSpace(m.TokenInput.Value())
		if token == "" {
			return m, nil
		}
		return m, m.saveTokenCmd(token)
	}

	var cmd tea.Cmd
	m.TokenInput, cmd = m.TokenInput.Update(msg)
	return m, cmd
}

func (m Model) enterLogin() (tea.Model, tea.Cmd) {
	m.Screen = ScreenLogin
	m.NameInput.Blur()
	return m, m.TokenInput.Focus()
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	if f == focusName {
		return m.NameInput.Focus()
	}
	m.NameInput.Blur()
	return nil
}

// submitCmd runs the controller's submission off the event loop
func (m Model) submitCmd() tea.Cmd {
	ctrl := m.ctrl
	ctx := m.ctx
	return func() tea.Msg {
		return submitDoneMsg{result: ctrl.Submit(ctx)}
	}
}

func (m Model) saveTokenCmd(token string) tea.Cmd {
	saver := m.tokens
	return func() tea.Msg {
		return tokenSavedMsg{err: saver.SaveToken(token)}
	}
}

// View implements tea.Model
func (m Model) View() string {
	if m.Screen == ScreenLogin {
		return m.viewLogin()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Thêm thiết bị mới"))
	b.WriteString("\n\n")

	b.WriteString(m.viewTypePicker())
	b.WriteString("\n")

	b.WriteString(fieldStyle(m.focus == focusName).Render(m.NameInput.View()))
	b.WriteString("\n\n")

	button := "Thêm thiết bị →"
	if m.Submitting {
		button = m.Spinner.View() + " " + button
	}
	b.WriteString(buttonStyle(m.focus == focusButton).Render(button))
	b.WriteString("\n")

	if m.Notice != "" {
		b.WriteString("\n")
		b.WriteString(output.HintStyle.Render(m.Notice))
		b.WriteString("\n")
	}

	if m.ModalVisible {
		b.WriteString("\n")
		b.WriteString(output.RenderModal(m.ModalMessage, m.ModalName, m.Width))
		b.WriteString("\n")
	}

	if m.AlertMessage != "" {
		b.WriteString("\n")
		b.WriteString(output.RenderAlert(m.AlertTitle, m.AlertMessage, m.Width))
		b.WriteString("\n")
		b.WriteString(output.HintStyle.Render("Press any key to continue"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) viewTypePicker() string {
	var lines []string
	if m.selected < 0 {
		lines = append(lines, placeholderStyle.Render(typePlaceholder))
	}
	for i, opt := range models.KindOptions {
		cursor := "  "
		style := optionStyle
		if i == m.selected {
			cursor = "▸ "
			style = selectedOptionStyle
		}
		lines = append(lines, style.Render(cursor+opt.Label))
	}
	return fieldStyle(m.focus == focusType).Render(strings.Join(lines, "\n"))
}

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Đăng nhập"))
	b.WriteString("\n\n")
	b.WriteString(output.HintStyle.Render("Your session has expired. Paste a new access token."))
	b.WriteString("\n\n")
	b.WriteString(fieldStyle(true).Render(m.TokenInput.View()))
	b.WriteString("\n")
	if m.Notice != "" {
		b.WriteString("\n")
		b.WriteString(output.HintStyle.Render(m.Notice))
		b.WriteString("\n")
	}
	if m.AlertMessage != "" {
		b.WriteString("\n")
		b.WriteString(output.RenderAlert(m.AlertTitle, m.AlertMessage, m.Width))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(output.HintStyle.Render("enter save • esc quit"))
	return b.String()
}

// Run starts the interactive add-device screen and blocks until it exits
func Run(ctx context.Context, ctrl *form.Controller, bridge *Bridge, tokens TokenSaver) error {
	p := tea.NewProgram(NewModel(ctx, ctrl, tokens), tea.WithContext(ctx))
	bridge.Attach(p)
	_, err := p.Run()
	return err
}
