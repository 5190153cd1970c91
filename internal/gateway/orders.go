package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/qoo-shop/shopclient/internal/models"
)

func (c *Client) CreateOrder(ctx context.Context, token string, items []models.OrderItem) (*models.Order, error) {
	body := map[string]any{"items": items}
	data, err := c.do(ctx, http.MethodPost, "/api/orders", token, body)
	if err != nil {
		return nil, err
	}

	var result models.Order
	if err := decodeData(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Orders(ctx context.Context, token string) ([]models.Order, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/orders", token, nil)
	if err != nil {
		return nil, err
	}

	var result []models.Order
	if err := decodeData(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) Order(ctx context.Context, token string, id int) (*models.Order, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", id), token, nil)
	if err != nil {
		return nil, err
	}

	var result models.Order
	if err := decodeData(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CancelOrder(ctx context.Context, token string, id int) error {
	_, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/orders/%d/cancel", id), token, nil)
	return err
}
