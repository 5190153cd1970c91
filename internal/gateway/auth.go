package gateway

import (
	"context"
	"net/http"
)

type LoginData struct {
	Token    string `json:"token"`
	Account  string `json:"account"`
	Username string `json:"username"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Identity int    `json:"identity"`
}

// DisplayName prefers the username field, some deployments fill name instead.
func (d *LoginData) DisplayName() string {
	if d.Username != "" {
		return d.Username
	}
	return d.Name
}

func (c *Client) Login(ctx context.Context, account, password string) (*LoginData, error) {
	body := map[string]string{"account": account, "password": password}
	data, err := c.do(ctx, http.MethodPost, "/api/login", "", body)
	if err != nil {
		return nil, err
	}

	var result LoginData
	if err := decodeData(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Register(ctx context.Context, account, password string) error {
	body := map[string]string{"account": account, "password": password}
	_, err := c.do(ctx, http.MethodPost, "/api/regist", "", body)
	return err
}
