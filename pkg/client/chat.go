package client

import (
	"context"
	"fmt"

	"github.com/naveenspark/yorch/pkg/domain"
)

// SendMessage sends a chat message to the assistant and returns its reply.
func (c *Client) SendMessage(ctx context.Context, mensaje string) (*domain.ChatResponse, error) {
	var resp domain.ChatResponse
	if err := c.post(ctx, "/chat/", map[string]string{"mensaje": mensaje}, &resp); err != nil {
		return nil, fmt.Errorf("client.SendMessage: %w", err)
	}
	return &resp, nil
}
