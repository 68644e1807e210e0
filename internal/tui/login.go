package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/yorch/pkg/auth"
)

// loginTimeout bounds a single login round trip.
const loginTimeout = 30 * time.Second

const (
	msgSessionExpired = "Sesion expirada, ingrese de nuevo"
	msgMissingFields  = "Ingrese usuario y contraseña"
)

type loginResultMsg struct {
	err error
}

type loginModel struct {
	auth       Auth
	username   textinput.Model
	password   textinput.Model
	focus      int // 0 username, 1 password
	spinner    spinner.Model
	submitting bool
	err        string
	notice     string
	width      int
	height     int
}

func newLoginModel(a Auth) loginModel {
	u := textinput.New()
	u.Placeholder = "usuario"
	u.Prompt = "Usuario:    "
	u.CharLimit = 64
	u.Focus()

	p := textinput.New()
	p.Placeholder = "contraseña"
	p.Prompt = "Contraseña: "
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'
	p.CharLimit = 128

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	return loginModel{
		auth:     a,
		username: u,
		password: p,
		spinner:  s,
	}
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	username := strings.TrimSpace(m.username.Value())
	password := m.password.Value()
	if username == "" || password == "" {
		m.err = msgMissingFields
		return m, nil
	}
	m.submitting = true
	m.err = ""
	m.notice = ""
	a := m.auth
	login := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
		defer cancel()
		return loginResultMsg{err: a.Login(ctx, username, password)}
	}
	return m, tea.Batch(login, m.spinner.Tick)
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = loginErrorText(msg.err)
			return m, nil
		}
		m.password.SetValue("")
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			return m.toggleFocus(), nil
		case "enter":
			if m.focus == 0 {
				return m.toggleFocus(), nil
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m loginModel) toggleFocus() loginModel {
	if m.focus == 0 {
		m.focus = 1
		m.username.Blur()
		m.password.Focus()
	} else {
		m.focus = 0
		m.password.Blur()
		m.username.Focus()
	}
	return m
}

// loginErrorText picks the message shown under the form. Backend rejections
// are shown verbatim.
func loginErrorText(err error) string {
	var ae *auth.AuthError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return auth.DefaultLoginMessage
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Iniciar sesion") + "\n\n")
	if m.notice != "" {
		b.WriteString("  " + warnStyle.Render(m.notice) + "\n\n")
	}
	b.WriteString("  " + m.username.View() + "\n")
	b.WriteString("  " + m.password.View() + "\n\n")
	switch {
	case m.submitting:
		b.WriteString("  " + m.spinner.View() + " " + dimStyle.Render("Ingresando...") + "\n")
	case m.err != "":
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
	default:
		b.WriteString("  " + metaStyle.Render("enter para ingresar") + "\n")
	}
	return b.String()
}
