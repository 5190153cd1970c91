package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/qoo-shop/shopclient/internal/models"
)

// Catalog reads need no credential, the storefront is browsable logged out.

func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	data, err := c.do(ctx, http.MethodGet, "/products", "", nil)
	if err != nil {
		return nil, err
	}

	var result []models.Product
	if err := decodeData(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) Product(ctx context.Context, id int) (*models.Product, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), "", nil)
	if err != nil {
		return nil, err
	}

	var result models.Product
	if err := decodeData(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
