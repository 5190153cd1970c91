package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/qoo-shop/shopclient/internal/models"
)

type cartData struct {
	Items []models.CartLine `json:"items"`
}

func (c *Client) Cart(ctx context.Context, token string) ([]models.CartLine, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/cart", token, nil)
	if err != nil {
		return nil, err
	}

	var result cartData
	if err := decodeData(data, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (c *Client) AddCartItem(ctx context.Context, token string, productID, quantity int) error {
	body := map[string]int{"productId": productID, "quantity": quantity}
	_, err := c.do(ctx, http.MethodPost, "/api/cart/items", token, body)
	return err
}

func (c *Client) UpdateCartItem(ctx context.Context, token string, lineID int64, quantity int) error {
	body := map[string]int{"quantity": quantity}
	_, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/cart/items/%d", lineID), token, body)
	return err
}

func (c *Client) RemoveCartItem(ctx context.Context, token string, lineID int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/cart/items/%d", lineID), token, nil)
	return err
}

func (c *Client) ClearCart(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/cart", token, nil)
	return err
}
