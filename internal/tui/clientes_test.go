package tui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/yorch/pkg/client"
	"github.com/naveenspark/yorch/pkg/domain"
)

func sampleClientes() []domain.Cliente {
	return []domain.Cliente{
		{ID: 1, Nombre: "Maria Perez", Telefono: "3001234567"},
		{ID: 2, Nombre: "Juan Gomez", ImagenSobreURL: "/uploads/sobres/2.jpg"},
		{ID: 3, Nombre: "Ana Ruiz"},
	}
}

func loadedClientes(t *testing.T, b *backend) clientesModel {
	t.Helper()
	m := newClientesModel(client.New(b.srv.URL + "/api/v1"))
	m.now = func() time.Time { return time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC) }
	m, _ = m.Update(clientesLoadedMsg{clientes: sampleClientes()})
	return m
}

func TestClientesLoad(t *testing.T) {
	b := newBackend(t)
	b.handlers["GET /clientes/"] = func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(sampleClientes()) //nolint:errcheck
	}
	m := newClientesModel(client.New(b.srv.URL + "/api/v1"))
	assert.True(t, m.loading)
	assert.Contains(t, m.View(), "Cargando clientes")

	msg := m.Init()()
	m, _ = m.Update(msg)
	assert.False(t, m.loading)
	assert.Len(t, m.clientes, 3)
	assert.Contains(t, m.View(), "Maria Perez")
}

func TestClientesLoadError(t *testing.T) {
	b := newBackend(t)
	b.handle("GET /clientes/", http.StatusInternalServerError, map[string]string{"detail": "Base de datos no disponible"})
	m := newClientesModel(client.New(b.srv.URL + "/api/v1"))

	m, _ = m.Update(m.Init()())
	assert.Equal(t, "Base de datos no disponible", m.err)
	assert.Contains(t, m.View(), "Base de datos no disponible")
}

func TestClientesRenameSuccess(t *testing.T) {
	b := newBackend(t)
	var body map[string]string
	b.handlers["PUT /clientes/2"] = func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		json.NewEncoder(w).Encode(domain.Cliente{ID: 2, Nombre: body["nombre"], ImagenSobreURL: "/uploads/sobres/2.jpg"}) //nolint:errcheck
	}
	m := loadedClientes(t, b)

	m, _ = m.Update(keyRunes("j"))
	m, _ = m.Update(keyRunes("r"))
	require.Equal(t, clientesRename, m.mode)
	require.Equal(t, "Juan Gomez", m.input)
	assert.True(t, m.editing())

	m.input = "Juan Carlos Gomez"
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Equal(t, "Juan Gomez", m.clientes[1].Nombre, "list changes only after the server confirms")

	m, _ = m.Update(cmd())
	assert.False(t, m.busy)
	assert.Equal(t, "Juan Carlos Gomez", body["nombre"])
	assert.Equal(t, "Juan Carlos Gomez", m.clientes[1].Nombre)
	assert.Equal(t, "nombre actualizado", m.status)
}

func TestClientesRenameFailureKeepsList(t *testing.T) {
	b := newBackend(t)
	b.handle("PUT /clientes/1", http.StatusNotFound, map[string]string{"detail": "Cliente no encontrado"})
	m := loadedClientes(t, b)

	m, _ = m.Update(keyRunes("r"))
	m.input = "Otra"
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(cmd())

	assert.Equal(t, "Maria Perez", m.clientes[0].Nombre)
	assert.Equal(t, "Cliente no encontrado", m.err)
}

func TestClientesRenameCancelAndNoop(t *testing.T) {
	m := loadedClientes(t, newBackend(t))

	m, _ = m.Update(keyRunes("r"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, clientesBrowse, m.mode)

	// unchanged and blank names send nothing
	m, _ = m.Update(keyRunes("r"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	m, _ = m.Update(keyRunes("r"))
	m.input = "   "
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestClientesDeleteConfirm(t *testing.T) {
	b := newBackend(t)
	deleted := 0
	b.handlers["DELETE /clientes/3"] = func(w http.ResponseWriter, _ *http.Request) {
		deleted++
		json.NewEncoder(w).Encode(map[string]string{"message": "Cliente eliminado"}) //nolint:errcheck
	}
	m := loadedClientes(t, b)
	m.cursor = 2

	m, _ = m.Update(keyRunes("d"))
	require.Equal(t, clientesConfirmDelete, m.mode)
	assert.Contains(t, m.View(), "¿Eliminar a Ana Ruiz?")

	m, cmd := m.Update(keyRunes("s"))
	require.NotNil(t, cmd)
	assert.Len(t, m.clientes, 3)

	m, _ = m.Update(cmd())
	assert.Equal(t, 1, deleted)
	require.Len(t, m.clientes, 2)
	assert.Equal(t, 1, m.cursor, "cursor is clamped to the shorter list")
	assert.Equal(t, "cliente eliminado", m.status)
}

func TestClientesDeleteDeclined(t *testing.T) {
	m := loadedClientes(t, newBackend(t))
	m, _ = m.Update(keyRunes("d"))
	m, cmd := m.Update(keyRunes("n"))
	assert.Nil(t, cmd)
	assert.Equal(t, clientesBrowse, m.mode)
	assert.Len(t, m.clientes, 3)
}

func TestClientesDeleteFailureKeepsList(t *testing.T) {
	b := newBackend(t)
	b.handlers["DELETE /clientes/1"] = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>oops</html>")) //nolint:errcheck
	}
	m := loadedClientes(t, b)
	m, _ = m.Update(keyRunes("d"))
	m, cmd := m.Update(keyRunes("y"))
	m, _ = m.Update(cmd())

	assert.Len(t, m.clientes, 3)
	assert.Equal(t, "Error desconocido", m.err)
}

func TestClientesOpenImage(t *testing.T) {
	m := loadedClientes(t, newBackend(t))

	m, cmd := m.Update(keyRunes("o"))
	assert.Nil(t, cmd)
	assert.Equal(t, "sin imagen de sobre", m.status)

	m, _ = m.Update(keyRunes("j"))
	_, cmd = m.Update(keyRunes("o"))
	assert.NotNil(t, cmd)
}

func TestClientesCopyResult(t *testing.T) {
	m := loadedClientes(t, newBackend(t))
	_, cmd := m.Update(keyRunes("c"))
	assert.NotNil(t, cmd)

	m, _ = m.Update(copyResultMsg{})
	assert.Equal(t, "copiado", m.status)
}

func TestClientesEmptyList(t *testing.T) {
	m := newClientesModel(nil)
	m, _ = m.Update(clientesLoadedMsg{})
	assert.Contains(t, m.View(), "No hay clientes registrados")

	m, cmd := m.Update(keyRunes("r"))
	assert.Nil(t, cmd)
	assert.Equal(t, clientesBrowse, m.mode)
}

func typeClientes(m clientesModel, text string) clientesModel {
	for _, r := range text {
		m, _ = m.Update(keyRunes(string(r)))
	}
	return m
}

func TestClientesFilterByName(t *testing.T) {
	m := loadedClientes(t, newBackend(t))
	m, _ = m.Update(keyRunes("j"))

	m, _ = m.Update(keyRunes("/"))
	require.Equal(t, clientesSearch, m.mode)
	assert.True(t, m.editing(), "global keys are off while typing a filter")

	m = typeClientes(m, "GOM")
	assert.Equal(t, "GOM", m.search)
	assert.Equal(t, 0, m.cursor, "editing the filter resets the cursor")
	view := m.View()
	assert.Contains(t, view, "Juan Gomez")
	assert.NotContains(t, view, "Maria Perez")
	assert.Contains(t, view, "(1 de 3)")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, clientesBrowse, m.mode)
	c, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, 2, c.ID)
	assert.Contains(t, m.View(), "/ GOM")

	m, _ = m.Update(keyRunes("j"))
	assert.Equal(t, 0, m.cursor, "cursor stays within the filtered rows")
}

func TestClientesFilterNoResults(t *testing.T) {
	m := loadedClientes(t, newBackend(t))
	m, _ = m.Update(keyRunes("/"))
	m = typeClientes(m, "zz")

	view := m.View()
	assert.Contains(t, view, "Sin resultados")
	assert.NotContains(t, view, "No hay clientes registrados")
	_, ok := m.selected()
	assert.False(t, ok)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Empty(t, m.search)
	assert.Contains(t, m.View(), "Ana Ruiz")
}

func TestClientesFilterEscClears(t *testing.T) {
	m := loadedClientes(t, newBackend(t))
	m, _ = m.Update(keyRunes("/"))
	m = typeClientes(m, "ana")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, clientesBrowse, m.mode)
	assert.Empty(t, m.search)
	assert.Len(t, m.shown(), 3)
}

func TestClientesDeleteWithinFilter(t *testing.T) {
	b := newBackend(t)
	b.handle("DELETE /clientes/3", http.StatusOK, map[string]string{"message": "Cliente eliminado"})
	m := loadedClientes(t, b)
	m, _ = m.Update(keyRunes("/"))
	m = typeClientes(m, "ruiz")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = m.Update(keyRunes("d"))
	m, cmd := m.Update(keyRunes("s"))
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	assert.Len(t, m.clientes, 2)
	assert.Empty(t, m.shown())
	assert.Contains(t, m.View(), "Sin resultados")
}

func TestClientesLongListKeepsCursorVisible(t *testing.T) {
	clientes := make([]domain.Cliente, 60)
	for i := range clientes {
		clientes[i] = domain.Cliente{ID: i + 1, Nombre: fmt.Sprintf("Cliente %02d", i)}
	}
	m := newClientesModel(nil)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m, _ = m.Update(clientesLoadedMsg{clientes: clientes})

	for n := 0; n < 40; n++ {
		m, _ = m.Update(keyRunes("j"))
	}
	require.Equal(t, 40, m.cursor)

	view := m.View()
	assert.Contains(t, view, "Cliente 40")
	assert.NotContains(t, view, "Cliente 00")
	assert.NotContains(t, view, "Cliente 41")
	assert.LessOrEqual(t, strings.Count(view, "\n"), 20)
	assert.Contains(t, view, "31-41 de 60")
}
