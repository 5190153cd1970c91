package gateway

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qoo-shop/shopclient/internal/apitest"
	"github.com/qoo-shop/shopclient/internal/logging"
	"github.com/qoo-shop/shopclient/internal/models"
)

func newTestClient(t *testing.T) (*Client, *apitest.Server) {
	t.Helper()
	api := apitest.New()
	srv := httptest.NewServer(api.Echo)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, logging.New("error", "text")), api
}

func TestLogin(t *testing.T) {
	t.Parallel()

	client, api := newTestClient(t)
	api.AddUser("u1", "p", "U", 1)

	data, err := client.Login(context.Background(), "u1", "p")
	require.NoError(t, err)

	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "u1", data.Account)
	assert.Equal(t, "U", data.DisplayName())
	assert.Equal(t, 1, data.Identity)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	client, api := newTestClient(t)
	api.AddUser("u1", "p", "U", 0)

	_, err := client.Login(context.Background(), "u1", "nope")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "wrong account or password", apiErr.Message)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Register(ctx, "fresh", "pw"))

	err := client.Register(ctx, "fresh", "pw")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "account already exists", apiErr.Message)

	_, err = client.Login(ctx, "fresh", "pw")
	require.NoError(t, err)
}

func TestCartLifecycle(t *testing.T) {
	t.Parallel()

	client, api := newTestClient(t)
	api.AddProduct(models.Product{ID: 5, Name: "Pen", Price: 10, ImageURL: "/p.png"})
	api.AddProduct(models.Product{ID: 7, Name: "Notebook", Price: 25})
	token := api.SignToken("u1", 15*time.Minute)
	ctx := context.Background()

	require.NoError(t, client.AddCartItem(ctx, token, 5, 2))
	require.NoError(t, client.AddCartItem(ctx, token, 7, 1))

	lines, err := client.Cart(ctx, token)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Pen", lines[0].Name)
	assert.Equal(t, 10.0, lines[0].UnitPrice)
	assert.Equal(t, 2, lines[0].Quantity)

	require.NoError(t, client.UpdateCartItem(ctx, token, lines[0].LineID, 4))
	require.NoError(t, client.RemoveCartItem(ctx, token, lines[1].LineID))

	lines, err = client.Cart(ctx, token)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)

	require.NoError(t, client.ClearCart(ctx, token))
	lines, err = client.Cart(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCart_InvalidToken(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)

	_, err := client.Cart(context.Background(), "garbage")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid token", apiErr.Message)
}

func TestServerDown_IsUnavailable(t *testing.T) {
	t.Parallel()

	client, api := newTestClient(t)
	api.SetUnavailable(true)

	_, err := client.Cart(context.Background(), api.SignToken("u1", time.Minute))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "503 is a transport-level failure, not an envelope")
}

func TestTransportError_IsUnavailable(t *testing.T) {
	t.Parallel()

	client := NewClient("http://127.0.0.1:1", time.Second, logging.New("error", "text"))

	_, err := client.Cart(context.Background(), "T")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestProducts(t *testing.T) {
	t.Parallel()

	client, api := newTestClient(t)
	api.AddProduct(models.Product{ID: 5, Name: "Pen", Price: 10})
	ctx := context.Background()

	products, err := client.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)

	p, err := client.Product(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Pen", p.Name)

	_, err = client.Product(ctx, 99)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
}

func TestOrders(t *testing.T) {
	t.Parallel()

	client, api := newTestClient(t)
	token := api.SignToken("u1", 15*time.Minute)
	ctx := context.Background()

	items := []models.OrderItem{{ProductID: 5, Name: "Pen", UnitPrice: 10, Quantity: 2}}
	placed, err := client.CreateOrder(ctx, token, items)
	require.NoError(t, err)
	assert.Equal(t, "created", placed.Status)
	assert.Equal(t, 20.0, placed.TotalAmount)

	orders, err := client.Orders(ctx, token)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	got, err := client.Order(ctx, token, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.ID, got.ID)

	require.NoError(t, client.CancelOrder(ctx, token, placed.ID))
	got, err = client.Order(ctx, token, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)
}
