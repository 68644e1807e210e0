package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/yorch/internal/route"
)

// sessionWarnThreshold is when the countdown switches to the warning style.
const sessionWarnThreshold = 10 * time.Minute

type menuItem struct {
	key   string
	label string
	desc  string
	to    route.Route
}

var menuItems = []menuItem{
	{"1", "Chat", "Consulta sobres, registra prestamos y abonos", route.Chat},
	{"2", "Clientes", "Lista, renombra o elimina clientes", route.Clientes},
	{"3", "Pendientes", "Movimientos por pasar a los sobres", route.Pendientes},
}

type homeModel struct {
	auth      Auth
	cursor    int
	username  string
	remaining time.Duration
	width     int
	height    int
}

func newHomeModel(a Auth) homeModel {
	return homeModel{auth: a}.refresh()
}

func (m homeModel) refresh() homeModel {
	m.username = m.auth.Username()
	m.remaining = m.auth.Remaining()
	return m
}

func (m homeModel) Update(msg tea.Msg) (homeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case sessionTickMsg:
		return m.refresh(), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(menuItems)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "enter":
			return m, navigate(menuItems[m.cursor].to)
		}
	}
	return m, nil
}

func (m homeModel) View() string {
	var b strings.Builder

	greeting := "Bienvenido"
	if m.username != "" {
		greeting += ", " + m.username
	}
	fmt.Fprintf(&b, "\n  %s\n  %s\n\n", titleStyle.Render(greeting), dimStyle.Render("¿Que deseas hacer hoy?"))

	for i, item := range menuItems {
		label := fmt.Sprintf("%s  %-12s", item.key, item.label)
		if i == m.cursor {
			fmt.Fprintf(&b, "  %s %s %s\n", accentStyle.Render(">"), selectedRowBg.Render(selectedStyle.Render(label)), dimStyle.Render(item.desc))
		} else {
			fmt.Fprintf(&b, "    %s %s\n", normalStyle.Render(label), metaStyle.Render(item.desc))
		}
	}

	b.WriteString("\n  " + m.countdown() + "\n")
	return b.String()
}

func (m homeModel) countdown() string {
	text := "Sesion: " + formatRemaining(m.remaining)
	if m.remaining < sessionWarnThreshold {
		return warnStyle.Render(text + " (por expirar)")
	}
	return metaStyle.Render(text)
}
