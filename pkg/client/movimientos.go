package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/naveenspark/yorch/pkg/domain"
)

// ListPendientes returns movements not yet written onto an envelope.
func (c *Client) ListPendientes(ctx context.Context) ([]domain.MovimientoPendiente, error) {
	var movs []domain.MovimientoPendiente
	if err := c.get(ctx, "/movimientos/pendientes", &movs); err != nil {
		return nil, fmt.Errorf("client.ListPendientes: %w", err)
	}
	return movs, nil
}

// ListClientesPendientes returns the clients with unprocessed movements,
// grouped and totalled by the backend, ordered by name.
func (c *Client) ListClientesPendientes(ctx context.Context) ([]domain.ClientePendiente, error) {
	var clientes []domain.ClientePendiente
	if err := c.get(ctx, "/sobres/pendientes", &clientes); err != nil {
		return nil, fmt.Errorf("client.ListClientesPendientes: %w", err)
	}
	return clientes, nil
}

// MarkProcesado marks a movement as written onto its envelope.
func (c *Client) MarkProcesado(ctx context.Context, id int) error {
	if err := c.doRequest(ctx, http.MethodPut, "/movimientos/"+strconv.Itoa(id)+"/procesar", nil, nil); err != nil {
		return fmt.Errorf("client.MarkProcesado: %w", err)
	}
	return nil
}
