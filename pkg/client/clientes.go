package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/naveenspark/yorch/pkg/domain"
)

// ListClientes returns all clients.
func (c *Client) ListClientes(ctx context.Context) ([]domain.Cliente, error) {
	var clientes []domain.Cliente
	if err := c.get(ctx, "/clientes/", &clientes); err != nil {
		return nil, fmt.Errorf("client.ListClientes: %w", err)
	}
	return clientes, nil
}

// UpdateCliente applies a partial update and returns the stored client.
func (c *Client) UpdateCliente(ctx context.Context, id int, upd domain.ClienteUpdate) (*domain.Cliente, error) {
	var cliente domain.Cliente
	if err := c.doRequest(ctx, http.MethodPut, "/clientes/"+strconv.Itoa(id), upd, &cliente); err != nil {
		return nil, fmt.Errorf("client.UpdateCliente: %w", err)
	}
	return &cliente, nil
}

// RenameCliente is UpdateCliente with only the name set.
func (c *Client) RenameCliente(ctx context.Context, id int, nombre string) (*domain.Cliente, error) {
	return c.UpdateCliente(ctx, id, domain.ClienteUpdate{Nombre: &nombre})
}

// DeleteCliente removes a client.
func (c *Client) DeleteCliente(ctx context.Context, id int) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/clientes/"+strconv.Itoa(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteCliente: %w", err)
	}
	return nil
}
