package cart

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qoo-shop/shopclient/internal/apitest"
	"github.com/qoo-shop/shopclient/internal/cache"
	"github.com/qoo-shop/shopclient/internal/gateway"
	"github.com/qoo-shop/shopclient/internal/logging"
	"github.com/qoo-shop/shopclient/internal/models"
	"github.com/qoo-shop/shopclient/internal/session"
)

// Full stack against the API stub: real gateway, real session manager, real
// sqlite-backed snapshot store.
func TestStorefrontFlow(t *testing.T) {
	t.Parallel()

	api := apitest.New()
	srv := httptest.NewServer(api.Echo)
	t.Cleanup(srv.Close)

	api.AddUser("u1", "p", "U", 1)
	pen := models.Product{ID: 5, Name: "Pen", Price: 10, ImageURL: "/p.png"}
	brush := models.Product{ID: 8, Name: "Brush", Price: 4}
	api.AddProduct(pen)
	api.AddProduct(brush)

	log := logging.New("error", "text")
	client := gateway.NewClient(srv.URL, 5*time.Second, log)
	snaps, err := cache.Open(":memory:")
	require.NoError(t, err)
	sessions := session.NewManager(client, snaps, log)
	store := NewStore(client, snaps, sessions, log)
	ctx := context.Background()

	// Mutations before login are refused.
	err = store.AddItem(ctx, pen, 1)
	require.ErrorIs(t, err, ErrNotAuthenticated)

	sess, err := sessions.Login(ctx, "u1", "p")
	require.NoError(t, err)
	assert.True(t, sess.Admin)

	// Online: the add lands on the server and comes back with a real id.
	require.NoError(t, store.AddItem(ctx, pen, 2))
	assert.Equal(t, 20.0, store.TotalAmount())
	require.Len(t, api.Cart("u1"), 1)

	// Offline: the add is applied locally and snapshotted.
	api.SetUnavailable(true)
	err = store.AddItem(ctx, brush, 1)
	var fb *FallbackError
	require.ErrorAs(t, err, &fb)
	assert.Equal(t, 3, store.TotalItems())

	saved, ok, err := snaps.LoadCart("u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, saved, 2)

	// A fetch while offline keeps serving the snapshot, silently.
	require.NoError(t, store.Fetch(ctx))
	assert.Equal(t, 3, store.TotalItems())

	// Back online the server is the source of truth again; the offline
	// add never reached it, so the fetch drops it.
	api.SetUnavailable(false)
	require.NoError(t, store.Fetch(ctx))
	assert.Equal(t, 2, store.TotalItems())
}
