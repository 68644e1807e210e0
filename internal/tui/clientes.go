package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/yorch/internal/browser"
	"github.com/naveenspark/yorch/pkg/client"
	"github.com/naveenspark/yorch/pkg/domain"
)

type clientesMode int

const (
	clientesBrowse clientesMode = iota
	clientesSearch
	clientesRename
	clientesConfirmDelete
)

// clientesChrome is the number of body lines that are not list rows.
const clientesChrome = 9

type clientesLoadedMsg struct {
	clientes []domain.Cliente
	err      error
}

type clienteRenamedMsg struct {
	id      int
	nombre  string
	cliente *domain.Cliente
	err     error
}

type clienteDeletedMsg struct {
	id  int
	err error
}

type copyResultMsg struct{ err error }
type openResultMsg struct{ err error }

type clientesModel struct {
	client   *client.Client
	clientes []domain.Cliente
	cursor   int
	mode     clientesMode
	search   string // name filter, case-insensitive
	input    string
	loading  bool
	busy     bool // a mutation is in flight
	err      string
	status   string
	width    int
	height   int
	frame    int
	now      func() time.Time
}

func newClientesModel(c *client.Client) clientesModel {
	return clientesModel{client: c, loading: true, now: time.Now}
}

func (m clientesModel) Init() tea.Cmd {
	return m.load()
}

func (m clientesModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		clientes, err := c.ListClientes(context.Background())
		return clientesLoadedMsg{clientes: clientes, err: err}
	}
}

func (m clientesModel) rename(id int, nombre string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		updated, err := c.RenameCliente(context.Background(), id, nombre)
		return clienteRenamedMsg{id: id, nombre: nombre, cliente: updated, err: err}
	}
}

func (m clientesModel) remove(id int) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		return clienteDeletedMsg{id: id, err: c.DeleteCliente(context.Background(), id)}
	}
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{err: clipboard.WriteAll(text)}
	}
}

func openCmd(url string) tea.Cmd {
	return func() tea.Msg {
		return openResultMsg{err: browser.Open(url)}
	}
}

// editing reports whether keystrokes belong to this screen rather than the
// global key map.
func (m clientesModel) editing() bool {
	return m.mode != clientesBrowse
}

// shown returns the clients matching the name filter.
func (m clientesModel) shown() []domain.Cliente {
	if m.search == "" {
		return m.clientes
	}
	q := strings.ToLower(m.search)
	var out []domain.Cliente
	for _, c := range m.clientes {
		if strings.Contains(strings.ToLower(c.Nombre), q) {
			out = append(out, c)
		}
	}
	return out
}

func (m clientesModel) selected() (domain.Cliente, bool) {
	shown := m.shown()
	if m.cursor < 0 || m.cursor >= len(shown) {
		return domain.Cliente{}, false
	}
	return shown[m.cursor], true
}

func (m clientesModel) clampCursor() clientesModel {
	if n := len(m.shown()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	return m
}

func (m clientesModel) Update(msg tea.Msg) (clientesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case clientesLoadedMsg:
		m.loading = false
		m.err = errText(msg.err)
		if msg.err == nil {
			m.clientes = msg.clientes
		}
		return m.clampCursor(), nil

	case clienteRenamedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		for i := range m.clientes {
			if m.clientes[i].ID != msg.id {
				continue
			}
			if msg.cliente != nil {
				m.clientes[i] = *msg.cliente
			} else {
				m.clientes[i].Nombre = msg.nombre
			}
		}
		m = m.clampCursor()
		m.status = "nombre actualizado"
		return m, nil

	case clienteDeletedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		kept := m.clientes[:0:0]
		for _, c := range m.clientes {
			if c.ID != msg.id {
				kept = append(kept, c)
			}
		}
		m.clientes = kept
		m = m.clampCursor()
		m.status = "cliente eliminado"
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("no se pudo copiar: %v", msg.err)
		} else {
			m.status = "copiado"
		}
		return m, nil

	case openResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("no se pudo abrir: %v", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch m.mode {
		case clientesSearch:
			return m.updateSearch(msg)
		case clientesRename:
			return m.updateRename(msg)
		case clientesConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m clientesModel) updateBrowse(msg tea.KeyMsg) (clientesModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.shown())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g":
		m.loading = true
		m.err = ""
		return m, m.load()
	case "/":
		m.mode = clientesSearch
	case "r":
		if c, ok := m.selected(); ok && !m.busy {
			m.mode = clientesRename
			m.input = c.Nombre
			m.err = ""
		}
	case "d":
		if _, ok := m.selected(); ok && !m.busy {
			m.mode = clientesConfirmDelete
			m.err = ""
		}
	case "c":
		if c, ok := m.selected(); ok {
			text := c.Nombre
			if c.Telefono != "" {
				text += " " + c.Telefono
			}
			return m, copyCmd(text)
		}
	case "o":
		if c, ok := m.selected(); ok {
			if c.ImagenSobreURL == "" {
				m.status = "sin imagen de sobre"
				return m, nil
			}
			return m, openCmd(m.client.AssetURL(c.ImagenSobreURL))
		}
	}
	return m, nil
}

func (m clientesModel) updateSearch(msg tea.KeyMsg) (clientesModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = clientesBrowse
	case "esc":
		m.mode = clientesBrowse
		m.search = ""
		m.cursor = 0
	default:
		if next := editRune(m.search, msg.String()); next != m.search {
			m.search = next
			m.cursor = 0
		}
	}
	return m, nil
}

func (m clientesModel) updateRename(msg tea.KeyMsg) (clientesModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = clientesBrowse
		m.input = ""
		return m, nil
	case "enter":
		nombre := strings.TrimSpace(m.input)
		c, ok := m.selected()
		m.mode = clientesBrowse
		m.input = ""
		if !ok || nombre == "" || nombre == c.Nombre {
			return m, nil
		}
		m.busy = true
		return m, m.rename(c.ID, nombre)
	default:
		m.input = editRune(m.input, msg.String())
	}
	return m, nil
}

func (m clientesModel) updateConfirm(msg tea.KeyMsg) (clientesModel, tea.Cmd) {
	switch msg.String() {
	case "y", "s":
		m.mode = clientesBrowse
		c, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, m.remove(c.ID)
	case "n", "esc":
		m.mode = clientesBrowse
	}
	return m, nil
}

func (m clientesModel) helpKeys() string {
	switch m.mode {
	case clientesSearch:
		return helpBar("enter", "aplicar", "esc", "limpiar")
	case clientesRename:
		return helpBar("enter", "guardar", "esc", "cancelar")
	case clientesConfirmDelete:
		return helpBar("s", "eliminar", "n", "cancelar")
	}
	return helpBar("j/k", "mover", "/", "buscar", "r", "renombrar", "d", "eliminar", "c", "copiar", "o", "sobre", "g", "recargar", "esc", "inicio")
}

func (m clientesModel) View() string {
	shown := m.shown()
	var b strings.Builder
	count := fmt.Sprintf("(%d)", len(m.clientes))
	if m.search != "" {
		count = fmt.Sprintf("(%d de %d)", len(shown), len(m.clientes))
	}
	fmt.Fprintf(&b, "\n  %s %s\n", titleStyle.Render("Clientes"), metaStyle.Render(count))
	switch {
	case m.mode == clientesSearch:
		b.WriteString("  " + renderInput("/ ", m.search, "buscar por nombre", true, m.frame) + "\n\n")
	case m.search != "":
		b.WriteString("  " + dimStyle.Render("/ "+m.search) + "\n\n")
	default:
		b.WriteString("\n")
	}

	switch {
	case m.loading:
		b.WriteString("  " + dimStyle.Render("Cargando clientes...") + "\n")
		return b.String()
	case m.err != "" && len(m.clientes) == 0:
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
		return b.String()
	case len(m.clientes) == 0:
		b.WriteString("  " + dimStyle.Render("No hay clientes registrados") + "\n")
		return b.String()
	case len(shown) == 0:
		b.WriteString("  " + dimStyle.Render("Sin resultados") + "\n")
		b.WriteString("  " + metaStyle.Render("Intenta con otro nombre") + "\n")
		return b.String()
	}

	now := m.now()
	nameWidth := 28
	rows := 0
	if m.height > 0 {
		rows = m.height - clientesChrome
	}
	start, end := listWindow(m.cursor, len(shown), rows)
	for i := start; i < end; i++ {
		c := shown[i]
		name := fmt.Sprintf("%-*s", nameWidth, truncStr(c.Nombre, nameWidth))
		meta := strings.TrimSpace(strings.Join([]string{c.Cedula, c.Telefono, formatTime(c.CreatedAt.Time, now)}, "  "))
		if i == m.cursor {
			if m.mode == clientesRename {
				name = renderInput("", m.input, "nuevo nombre", true, m.frame)
			} else {
				name = selectedRowBg.Render(selectedStyle.Render(name))
			}
			fmt.Fprintf(&b, "  %s %s  %s\n", accentStyle.Render(">"), name, dimStyle.Render(meta))
			continue
		}
		fmt.Fprintf(&b, "    %s  %s\n", normalStyle.Render(name), metaStyle.Render(meta))
	}
	if end-start < len(shown) {
		b.WriteString("  " + metaStyle.Render(fmt.Sprintf("%d-%d de %d", start+1, end, len(shown))) + "\n")
	}

	if c, ok := m.selected(); ok && c.Direccion != "" && m.mode == clientesBrowse {
		b.WriteString("\n  " + dimStyle.Render(c.Direccion) + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.mode == clientesConfirmDelete:
		c, _ := m.selected()
		b.WriteString("  " + warnStyle.Render(fmt.Sprintf("¿Eliminar a %s? (s/n)", c.Nombre)) + "\n")
	case m.busy:
		b.WriteString("  " + dimStyle.Render("Guardando...") + "\n")
	case m.err != "":
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
	case m.status != "":
		b.WriteString("  " + okStyle.Render(m.status) + "\n")
	}
	return b.String()
}
