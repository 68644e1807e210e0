package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/yorch/pkg/client"
	"github.com/naveenspark/yorch/pkg/domain"
)

type pendientesLoadedMsg struct {
	movimientos []domain.MovimientoPendiente
	err         error
}

type gruposLoadedMsg struct {
	grupos []domain.ClientePendiente
	err    error
}

type procesadoMsg struct {
	id  int
	err error
}

// maxGrupoDetalle caps the movements listed under the selected client.
const maxGrupoDetalle = 5

// Body lines that are not list rows, per view.
const (
	pendientesChrome = 10
	gruposChrome     = 9 + maxGrupoDetalle
)

type pendientesModel struct {
	client      *client.Client
	movimientos []domain.MovimientoPendiente
	cursor      int
	porCliente  bool // grouped view from /sobres/pendientes
	grupos      []domain.ClientePendiente
	grupoCursor int
	loading     bool
	busy        bool
	err         string
	status      string
	width       int
	height      int
	now         func() time.Time
}

func newPendientesModel(c *client.Client) pendientesModel {
	return pendientesModel{client: c, loading: true, now: time.Now}
}

func (m pendientesModel) Init() tea.Cmd {
	return m.load()
}

func (m pendientesModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		movs, err := c.ListPendientes(context.Background())
		return pendientesLoadedMsg{movimientos: movs, err: err}
	}
}

func (m pendientesModel) loadGrupos() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		grupos, err := c.ListClientesPendientes(context.Background())
		return gruposLoadedMsg{grupos: grupos, err: err}
	}
}

func (m pendientesModel) reload() tea.Cmd {
	if m.porCliente {
		return m.loadGrupos()
	}
	return m.load()
}

func (m pendientesModel) markProcesado(id int) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		return procesadoMsg{id: id, err: c.MarkProcesado(context.Background(), id)}
	}
}

func (m pendientesModel) Update(msg tea.Msg) (pendientesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case pendientesLoadedMsg:
		if !m.porCliente {
			m.loading = false
			m.err = errText(msg.err)
		}
		if msg.err == nil {
			m.movimientos = msg.movimientos
		}
		if m.cursor >= len(m.movimientos) {
			m.cursor = max(0, len(m.movimientos)-1)
		}

	case gruposLoadedMsg:
		if m.porCliente {
			m.loading = false
			m.err = errText(msg.err)
		}
		if msg.err == nil {
			m.grupos = msg.grupos
		}
		if m.grupoCursor >= len(m.grupos) {
			m.grupoCursor = max(0, len(m.grupos)-1)
		}

	case openResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("no se pudo abrir: %v", msg.err)
		}

	case procesadoMsg:
		m.busy = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		kept := m.movimientos[:0:0]
		for _, mov := range m.movimientos {
			if mov.ID != msg.id {
				kept = append(kept, mov)
			}
		}
		m.movimientos = kept
		if m.cursor >= len(m.movimientos) {
			m.cursor = max(0, len(m.movimientos)-1)
		}
		m.status = "marcado como procesado"

	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "v":
			m.porCliente = !m.porCliente
			m.loading = true
			m.err = ""
			return m, m.reload()
		case "g":
			m.loading = true
			m.err = ""
			return m, m.reload()
		}
		if m.porCliente {
			return m.updateGrupos(msg)
		}
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.movimientos)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "p", "enter":
			if m.busy || m.cursor >= len(m.movimientos) {
				return m, nil
			}
			m.busy = true
			m.err = ""
			return m, m.markProcesado(m.movimientos[m.cursor].ID)
		}
	}
	return m, nil
}

func (m pendientesModel) updateGrupos(msg tea.KeyMsg) (pendientesModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.grupoCursor < len(m.grupos)-1 {
			m.grupoCursor++
		}
	case "k", "up":
		if m.grupoCursor > 0 {
			m.grupoCursor--
		}
	case "o":
		if m.grupoCursor >= len(m.grupos) {
			return m, nil
		}
		g := m.grupos[m.grupoCursor]
		if g.ImagenSobreURL == "" {
			m.status = "sin imagen de sobre"
			return m, nil
		}
		return m, openCmd(m.client.AssetURL(g.ImagenSobreURL))
	}
	return m, nil
}

func (m pendientesModel) rows(chrome int) int {
	if m.height <= 0 {
		return 0
	}
	return m.height - chrome
}

func (m pendientesModel) helpKeys() string {
	if m.porCliente {
		return helpBar("j/k", "mover", "o", "sobre", "v", "por movimiento", "g", "recargar", "esc", "inicio")
	}
	return helpBar("j/k", "mover", "p", "procesado", "v", "por cliente", "g", "recargar", "esc", "inicio")
}

func (m pendientesModel) View() string {
	if m.porCliente {
		return m.viewGrupos()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s %s\n\n", titleStyle.Render("Pendientes"), metaStyle.Render(fmt.Sprintf("(%d)", len(m.movimientos))))

	switch {
	case m.loading:
		b.WriteString("  " + dimStyle.Render("Cargando movimientos...") + "\n")
		return b.String()
	case m.err != "" && len(m.movimientos) == 0:
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
		return b.String()
	case len(m.movimientos) == 0:
		b.WriteString("  " + okStyle.Render("No hay movimientos pendientes") + "\n")
		return b.String()
	}

	prestamos, abonos := domain.PendingTotals(m.movimientos)
	fmt.Fprintf(&b, "  %s %s   %s %s\n\n",
		dimStyle.Render("Prestamos"), prestamoStyle.Render(prestamos.String()),
		dimStyle.Render("Abonos"), abonoStyle.Render(abonos.String()))

	now := m.now()
	start, end := listWindow(m.cursor, len(m.movimientos), m.rows(pendientesChrome))
	for i := start; i < end; i++ {
		mov := m.movimientos[i]
		kind := tipoLabel(mov.Tipo)
		name := fmt.Sprintf("%-24s", truncStr(mov.ClienteNombre, 24))
		line := fmt.Sprintf("%s %s %12s  %s", kind, name, mov.Monto.String(), metaStyle.Render(formatTime(mov.CreatedAt.Time, now)))
		if i == m.cursor {
			fmt.Fprintf(&b, "  %s %s\n", accentStyle.Render(">"), selectedRowBg.Render(line))
		} else {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}
	if end-start < len(m.movimientos) {
		b.WriteString("  " + metaStyle.Render(fmt.Sprintf("%d-%d de %d", start+1, end, len(m.movimientos))) + "\n")
	}

	if m.cursor < len(m.movimientos) && m.movimientos[m.cursor].Notas != "" {
		b.WriteString("\n  " + dimStyle.Render(m.movimientos[m.cursor].Notas) + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.busy:
		b.WriteString("  " + dimStyle.Render("Guardando...") + "\n")
	case m.err != "":
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
	case m.status != "":
		b.WriteString("  " + okStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func tipoLabel(tipo string) string {
	label := fmt.Sprintf("%-9s", tipo)
	if tipo == domain.TipoPrestamo {
		return prestamoStyle.Render(label)
	}
	return abonoStyle.Render(label)
}

func (m pendientesModel) viewGrupos() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s %s\n\n", titleStyle.Render("Pendientes por cliente"), metaStyle.Render(fmt.Sprintf("(%d)", len(m.grupos))))

	switch {
	case m.loading:
		b.WriteString("  " + dimStyle.Render("Cargando clientes...") + "\n")
		return b.String()
	case m.err != "" && len(m.grupos) == 0:
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
		return b.String()
	case len(m.grupos) == 0:
		b.WriteString("  " + okStyle.Render("Todo al dia") + "\n")
		b.WriteString("  " + dimStyle.Render("No tienes movimientos pendientes") + "\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  %s\n\n", dimStyle.Render(fmt.Sprintf("%d cliente(s) con movimientos pendientes", len(m.grupos))))

	start, end := listWindow(m.grupoCursor, len(m.grupos), m.rows(gruposChrome))
	for i := start; i < end; i++ {
		g := m.grupos[i]
		name := fmt.Sprintf("%-24s", truncStr(g.Nombre, 24))
		line := fmt.Sprintf("%s %3d mov  %12s  %12s", name, g.CantidadPendientes,
			prestamoStyle.Render(g.TotalPrestamos.String()), abonoStyle.Render(g.TotalAbonos.String()))
		if i == m.grupoCursor {
			fmt.Fprintf(&b, "  %s %s\n", accentStyle.Render(">"), selectedRowBg.Render(line))
		} else {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}
	if end-start < len(m.grupos) {
		b.WriteString("  " + metaStyle.Render(fmt.Sprintf("%d-%d de %d", start+1, end, len(m.grupos))) + "\n")
	}

	if m.grupoCursor < len(m.grupos) {
		now := m.now()
		movs := m.grupos[m.grupoCursor].Movimientos
		b.WriteString("\n")
		for i, mov := range movs {
			if i == maxGrupoDetalle-1 && len(movs) > maxGrupoDetalle {
				b.WriteString("    " + metaStyle.Render(fmt.Sprintf("y %d mas", len(movs)-i)) + "\n")
				break
			}
			fmt.Fprintf(&b, "    %s %12s  %s\n", tipoLabel(mov.Tipo), mov.Monto.String(), metaStyle.Render(formatTime(mov.Fecha.Time, now)))
		}
	}

	if m.status != "" {
		b.WriteString("\n  " + okStyle.Render(m.status) + "\n")
	} else if m.err != "" {
		b.WriteString("\n  " + errorStyle.Render(m.err) + "\n")
	}
	return b.String()
}
