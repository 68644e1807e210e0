// Package tui is the terminal front end. Every screen is reached through
// route.Guard, so protected screens never render without a session.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/yorch/internal/route"
	"github.com/naveenspark/yorch/pkg/auth"
	"github.com/naveenspark/yorch/pkg/client"
	"github.com/naveenspark/yorch/pkg/domain"
)

// sessionTickInterval is how often the App re-reads auth state so that an
// expired session is noticed without user input.
const sessionTickInterval = 30 * time.Second

// Auth is the part of auth.Controller the TUI uses.
type Auth interface {
	State() domain.AuthState
	Login(ctx context.Context, username, password string) error
	Logout()
	Remaining() time.Duration
	Username() string
	Events() <-chan auth.Event
}

type sessionTickMsg time.Time

func sessionTickCmd() tea.Cmd {
	return tea.Tick(sessionTickInterval, func(t time.Time) tea.Msg {
		return sessionTickMsg(t)
	})
}

// authChangedMsg is delivered for each controller event.
type authChangedMsg auth.Event

func waitForAuth(events <-chan auth.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return authChangedMsg(ev)
	}
}

// navigateMsg asks the App to show a route. The guard decides what is shown.
type navigateMsg struct {
	to route.Route
}

func navigate(to route.Route) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to} }
}

type logoutMsg struct{}

// App is the root Bubbletea model.
type App struct {
	auth       Auth
	client     *client.Client
	requested  route.Route
	current    route.Route // "" while waiting on the guard
	login      loginModel
	home       homeModel
	clientes   clientesModel
	pendientes pendientesModel
	chat       chatModel
	width      int
	height     int
	frame      int
}

// NewApp creates the TUI. The controller may still be loading; the first
// screen is chosen once its state is known.
func NewApp(a Auth, c *client.Client) App {
	return App{
		auth:      a,
		client:    c,
		requested: route.Home,
		login:     newLoginModel(a),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		shimmerTickCmd(),
		sessionTickCmd(),
		waitForAuth(a.auth.Events()),
		navigate(a.requested),
	)
}

// bodySize is the area left for a screen after the header and help bar.
func (a App) bodySize() tea.WindowSizeMsg {
	// Chrome: header(2) + help(1)
	return tea.WindowSizeMsg{Width: a.width, Height: a.height - 3}
}

// navigateTo routes through the guard and enters the resulting screen.
// Entering the screen already shown is a no-op.
func (a App) navigateTo(to route.Route) (App, tea.Cmd) {
	a.requested = to
	state := a.auth.State()
	d := route.Guard(state, to)
	switch d.Action {
	case route.Wait:
		a.current = ""
		return a, nil
	case route.Redirect:
		to = d.Target
		a.requested = to
	}
	if to == route.Login && state.IsAuthenticated {
		to = route.Home
		a.requested = to
	}
	if to == a.current {
		return a, nil
	}
	a.current = to
	return a.enter(to)
}

func (a App) enter(to route.Route) (App, tea.Cmd) {
	size := a.bodySize()
	switch to {
	case route.Login:
		notice := a.login.notice
		a.login = newLoginModel(a.auth)
		a.login.notice = notice
		a.login, _ = a.login.Update(size)
		return a, a.login.Init()
	case route.Home:
		a.home = newHomeModel(a.auth)
		a.home, _ = a.home.Update(size)
		return a, nil
	case route.Clientes:
		a.clientes = newClientesModel(a.client)
		a.clientes, _ = a.clientes.Update(size)
		return a, a.clientes.Init()
	case route.Pendientes:
		a.pendientes = newPendientesModel(a.client)
		a.pendientes, _ = a.pendientes.Update(size)
		return a, a.pendientes.Init()
	case route.Chat:
		a.chat = newChatModel(a.client)
		a.chat, _ = a.chat.Update(size)
		return a, nil
	}
	return a, nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		size := a.bodySize()
		a.login, _ = a.login.Update(size)
		a.home, _ = a.home.Update(size)
		a.clientes, _ = a.clientes.Update(size)
		a.pendientes, _ = a.pendientes.Update(size)
		a.chat, _ = a.chat.Update(size)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		a.clientes.frame = a.frame
		a.chat.frame = a.frame
		return a, shimmerTickCmd()

	case sessionTickMsg:
		if a.current == route.Home {
			a.home, _ = a.home.Update(msg)
		}
		next, cmd := a.navigateTo(a.requested)
		return next, tea.Batch(cmd, sessionTickCmd())

	case authChangedMsg:
		switch {
		case msg.Reason.Forced():
			a.login.notice = msgSessionExpired
		case msg.Reason == auth.ReasonLogin:
			a.login.notice = ""
			a.requested = route.Home
		case msg.Reason == auth.ReasonLogout:
			a.login.notice = ""
		}
		next, cmd := a.navigateTo(a.requested)
		return next, tea.Batch(cmd, waitForAuth(a.auth.Events()))

	case navigateMsg:
		return a.navigateTo(msg.to)

	case logoutMsg:
		a.auth.Logout()
		a.login.notice = ""
		return a.navigateTo(route.Login)

	case loginResultMsg:
		a.login, _ = a.login.Update(msg)
		if msg.err == nil {
			a.login.notice = ""
			return a.navigateTo(route.Home)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.current != route.Login && !a.isEditing() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "x":
				return a, func() tea.Msg { return logoutMsg{} }
			case "esc":
				return a.navigateTo(route.Home)
			}
			for _, item := range menuItems {
				if msg.String() == item.key {
					return a.navigateTo(item.to)
				}
			}
		}
	}

	var cmd tea.Cmd
	switch a.current {
	case route.Login:
		a.login, cmd = a.login.Update(msg)
	case route.Home:
		a.home, cmd = a.home.Update(msg)
	case route.Clientes:
		a.clientes, cmd = a.clientes.Update(msg)
	case route.Pendientes:
		a.pendientes, cmd = a.pendientes.Update(msg)
	case route.Chat:
		a.chat, cmd = a.chat.Update(msg)
	}
	return a, cmd
}

// isEditing reports whether the current screen owns single-letter keys.
func (a App) isEditing() bool {
	switch a.current {
	case route.Clientes:
		return a.clientes.editing()
	case route.Chat:
		return true
	}
	return false
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	logoPad := max(0, (a.width-lipgloss.Width(logo))/2)
	header := strings.Repeat(" ", logoPad) + logo + "\n"

	state := a.auth.State()
	var body, help string
	switch d := route.Guard(state, a.current); {
	case a.current == "" || d.Action == route.Wait:
		body = "\n  " + dimStyle.Render("Cargando...") + "\n"
	case d.Action == route.Redirect:
		// Not yet routed; never show the protected screen.
		body = "\n  " + dimStyle.Render("Redirigiendo...") + "\n"
	default:
		body, help = a.screenView()
	}

	if state.IsAuthenticated {
		status := metaStyle.Render(a.auth.Username())
		if rem := a.auth.Remaining(); rem < sessionWarnThreshold {
			status += " " + warnStyle.Render(formatRemaining(rem))
		}
		header = strings.TrimRight(header, "\n") + "  " + status + "\n"
	}

	body = strings.TrimRight(truncateToHeight(body, a.height-3), "\n")
	return fmt.Sprintf("%s\n%s\n%s", header, body, help)
}

func (a App) screenView() (body, help string) {
	switch a.current {
	case route.Login:
		return a.login.View(), helpBar("tab", "cambiar campo", "enter", "ingresar", "ctrl+c", "salir")
	case route.Home:
		return a.home.View(), helpBar("1-3", "ir", "j/k", "mover", "enter", "abrir", "x", "cerrar sesion", "q", "salir")
	case route.Clientes:
		return a.clientes.View(), a.clientes.helpKeys()
	case route.Pendientes:
		return a.pendientes.View(), a.pendientes.helpKeys()
	case route.Chat:
		return a.chat.View(), a.chat.helpKeys()
	}
	return "", ""
}
