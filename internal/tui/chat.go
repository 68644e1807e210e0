package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/yorch/internal/route"
	"github.com/naveenspark/yorch/pkg/auth"
	"github.com/naveenspark/yorch/pkg/client"
	"github.com/naveenspark/yorch/pkg/domain"
)

const chatWelcome = "¡Hola! Soy tu asistente para gestionar prestamos. Puedes pedirme:\n\n" +
	"• Ver el sobre de un cliente\n" +
	"• Registrar un prestamo o abono\n" +
	"• Ver los movimientos pendientes\n\n" +
	"¿En que puedo ayudarte?"

const chatFailed = "Lo siento, hubo un error al procesar tu mensaje. Por favor intenta de nuevo."

type chatReplyMsg struct {
	resp *domain.ChatResponse
	err  error
}

type chatEntry struct {
	self     bool
	text     string
	imageURL string
	failed   bool
}

type chatModel struct {
	client    *client.Client
	entries   []chatEntry
	input     string
	pending   bool
	spinner   spinner.Model
	lastImage string
	status    string
	width     int
	height    int
	frame     int
}

func newChatModel(c *client.Client) chatModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = accentStyle
	return chatModel{
		client:  c,
		entries: []chatEntry{{text: chatWelcome}},
		spinner: s,
	}
}

func (m chatModel) send(mensaje string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		resp, err := c.SendMessage(context.Background(), mensaje)
		return chatReplyMsg{resp: resp, err: err}
	}
}

func (m chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case chatReplyMsg:
		m.pending = false
		switch {
		case errors.Is(msg.err, auth.ErrSessionExpired):
		case msg.err != nil:
			m.entries = append(m.entries, chatEntry{text: chatFailed, failed: true})
		case msg.resp != nil:
			e := chatEntry{text: msg.resp.Respuesta}
			if msg.resp.ImagenURL != "" {
				e.imageURL = m.client.AssetURL(msg.resp.ImagenURL)
				m.lastImage = e.imageURL
			}
			m.entries = append(m.entries, e)
		}

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case openResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("no se pudo abrir: %v", msg.err)
		}

	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "esc":
			return m, navigate(route.Home)
		case "ctrl+o":
			if m.lastImage == "" {
				m.status = "no hay imagen para abrir"
				return m, nil
			}
			return m, openCmd(m.lastImage)
		case "enter":
			text := strings.TrimSpace(m.input)
			if text == "" || m.pending {
				return m, nil
			}
			m.entries = append(m.entries, chatEntry{self: true, text: text})
			m.input = ""
			m.pending = true
			return m, tea.Batch(m.send(text), m.spinner.Tick)
		default:
			if !m.pending {
				m.input = editRune(m.input, msg.String())
			}
		}
	}
	return m, nil
}

func (m chatModel) helpKeys() string {
	return helpBar("enter", "enviar", "ctrl+o", "abrir imagen", "esc", "inicio")
}

func (m chatModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Agente de Prestamos") + "\n\n")

	width := m.width - 6
	if width < 20 {
		width = 60
	}
	textStyle := lipgloss.NewStyle().Width(width)

	var lines []string
	for _, e := range m.entries {
		var label, body string
		switch {
		case e.self:
			label = chatSelfStyle.Bold(true).Render("tu")
			body = chatSelfStyle.Render(textStyle.Render(e.text))
		case e.failed:
			label = chatLabelStyle.Render("yorch")
			body = errorStyle.Render(textStyle.Render(e.text))
		default:
			label = chatLabelStyle.Render("yorch")
			body = chatBotStyle.Render(textStyle.Render(e.text))
		}
		entry := "  " + label + "\n" + indent(body, "  ")
		if e.imageURL != "" {
			entry += "\n  " + metaStyle.Render("imagen: "+e.imageURL)
		}
		lines = append(lines, entry)
	}
	if m.pending {
		lines = append(lines, "  "+m.spinner.View()+" "+dimStyle.Render("pensando..."))
	}

	history := strings.Join(lines, "\n\n")
	// Keep the newest messages visible: drop from the top.
	if m.height > 0 {
		all := strings.Split(history, "\n")
		room := m.height - 6
		if room > 0 && len(all) > room {
			all = all[len(all)-room:]
		}
		history = strings.Join(all, "\n")
	}
	b.WriteString(history + "\n\n")

	if m.status != "" {
		b.WriteString("  " + warnStyle.Render(m.status) + "\n")
	}
	placeholder := "escribe tu mensaje..."
	if m.pending {
		placeholder = "esperando respuesta..."
	}
	b.WriteString("  " + renderInput("> ", m.input, placeholder, !m.pending, m.frame) + "\n")
	return b.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
