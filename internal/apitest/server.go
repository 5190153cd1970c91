// Package apitest is an in-process stand-in for the remote shop API, used by
// the integration-style tests. It speaks the same envelope as the real
// backend: code 0 on success, anything else with a message.
package apitest

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/qoo-shop/shopclient/internal/models"
)

type user struct {
	passwordHash string
	username     string
	imageURL     string
	identity     int
}

type Server struct {
	Echo   *echo.Echo
	Secret []byte

	mu          sync.Mutex
	unavailable bool
	users       map[string]user
	products    map[int]models.Product
	carts       map[string][]models.CartLine
	orders      map[string][]models.Order
	nextLineID  int64
	nextOrderID int
}

func New() *Server {
	s := &Server{
		Echo:       echo.New(),
		Secret:     []byte("apitest-secret"),
		users:      map[string]user{},
		products:   map[int]models.Product{},
		carts:      map[string][]models.CartLine{},
		orders:     map[string][]models.Order{},
		nextLineID: 1,
	}
	s.Echo.HideBanner = true
	s.Echo.Use(s.availability)

	s.Echo.POST("/api/login", s.login)
	s.Echo.POST("/api/regist", s.register)
	s.Echo.GET("/products", s.listProducts)
	s.Echo.GET("/products/:id", s.getProduct)
	s.Echo.GET("/api/cart", s.getCart)
	s.Echo.POST("/api/cart/items", s.addCartItem)
	s.Echo.PATCH("/api/cart/items/:id", s.updateCartItem)
	s.Echo.DELETE("/api/cart/items/:id", s.removeCartItem)
	s.Echo.DELETE("/api/cart", s.clearCart)
	s.Echo.POST("/api/orders", s.createOrder)
	s.Echo.GET("/api/orders", s.listOrders)
	s.Echo.GET("/api/orders/:id", s.getOrder)
	s.Echo.PATCH("/api/orders/:id/cancel", s.cancelOrder)

	return s
}

// SetUnavailable makes every endpoint answer 503 until toggled back,
// simulating an unreachable backend.
func (s *Server) SetUnavailable(v bool) {
	s.mu.Lock()
	s.unavailable = v
	s.mu.Unlock()
}

func (s *Server) availability(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		down := s.unavailable
		s.mu.Unlock()
		if down {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return next(c)
	}
}

func (s *Server) AddUser(account, password, username string, identity int) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	s.users[account] = user{
		passwordHash: string(hash),
		username:     username,
		imageURL:     "/img/" + account + ".png",
		identity:     identity,
	}
	s.mu.Unlock()
}

func (s *Server) AddProduct(p models.Product) {
	s.mu.Lock()
	s.products[p.ID] = p
	s.mu.Unlock()
}

// Cart returns a copy of the account's server-side cart.
func (s *Server) Cart(account string) []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartLine, len(s.carts[account]))
	copy(out, s.carts[account])
	return out
}

// SignToken issues a credential the way the real backend does: HS256 with
// exp, id and account claims.
func (s *Server) SignToken(account string, ttl time.Duration) string {
	claims := jwt.MapClaims{
		"exp":     time.Now().Add(ttl).Unix(),
		"id":      1,
		"account": account,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.Secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, map[string]any{"code": 0, "message": "ok", "data": data})
}

func fail(c echo.Context, code int, message string) error {
	return c.JSON(http.StatusOK, map[string]any{"code": code, "message": message})
}

func (s *Server) accountOf(c echo.Context) (string, bool) {
	raw := c.Request().Header.Get("Authorization")
	if raw == "" {
		return "", false
	}
	t, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) { return s.Secret, nil })
	if err != nil || !t.Valid {
		return "", false
	}
	claims, okc := t.Claims.(jwt.MapClaims)
	if !okc {
		return "", false
	}
	account, _ := claims["account"].(string)
	return account, account != ""
}

func (s *Server) login(c echo.Context) error {
	var req struct {
		Account  string `json:"account"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, 1, "bad request")
	}

	s.mu.Lock()
	u, exists := s.users[req.Account]
	s.mu.Unlock()
	if !exists || bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(req.Password)) != nil {
		return fail(c, 1, "wrong account or password")
	}

	return ok(c, map[string]any{
		"token":     s.SignToken(req.Account, 15*time.Minute),
		"account":   req.Account,
		"username":  u.username,
		"image_url": u.imageURL,
		"identity":  u.identity,
	})
}

func (s *Server) register(c echo.Context) error {
	var req struct {
		Account  string `json:"account"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, 1, "bad request")
	}
	s.mu.Lock()
	_, exists := s.users[req.Account]
	s.mu.Unlock()
	if exists {
		return fail(c, 1, "account already exists")
	}
	s.AddUser(req.Account, req.Password, req.Account, 0)
	return ok(c, nil)
}

func (s *Server) listProducts(c echo.Context) error {
	s.mu.Lock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	s.mu.Unlock()
	return ok(c, out)
}

func (s *Server) getProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, 1, "bad product id")
	}
	s.mu.Lock()
	p, exists := s.products[id]
	s.mu.Unlock()
	if !exists {
		return fail(c, 1, "product not found")
	}
	return ok(c, p)
}

func (s *Server) getCart(c echo.Context) error {
	account, authed := s.accountOf(c)
	if !authed {
		return fail(c, 1, "invalid token")
	}
	s.mu.Lock()
	items := make([]models.CartLine, len(s.carts[account]))
	copy(items, s.carts[account])
	s.mu.Unlock()
	return ok(c, map[string]any{"items": items})
}

func (s *Server) addCartItem(c echo.Context) error {
	account, authed := s.accountOf(c)
	if !authed {
		return fail(c, 1, "invalid token")
	}
	var req struct {
		ProductID int `json:"productId"`
		Quantity  int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil || req.Quantity < 1 {
		return fail(c, 1, "bad request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.products[req.ProductID]
	if !exists {
		return fail(c, 1, "product not found")
	}
	lines := s.carts[account]
	for i := range lines {
		if lines[i].ProductID == req.ProductID {
			lines[i].Quantity += req.Quantity
			return ok(c, nil)
		}
	}
	s.carts[account] = append(lines, models.CartLine{
		LineID:    s.nextLineID,
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  req.Quantity,
		ImageURL:  p.ImageURL,
	})
	s.nextLineID++
	return ok(c, nil)
}

func (s *Server) updateCartItem(c echo.Context) error {
	account, authed := s.accountOf(c)
	if !authed {
		return fail(c, 1, "invalid token")
	}
	lineID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, 1, "bad item id")
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil || req.Quantity < 1 {
		return fail(c, 1, "bad request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[account]
	for i := range lines {
		if lines[i].LineID == lineID {
			lines[i].Quantity = req.Quantity
			return ok(c, nil)
		}
	}
	return fail(c, 1, "item not found")
}

func (s *Server) removeCartItem(c echo.Context) error {
	account, authed := s.accountOf(c)
	if !authed {
		return fail(c, 1, "invalid token")
	}
	lineID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, 1, "bad item id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[account]
	kept := lines[:0]
	for _, l := range lines {
		if l.LineID != lineID {
			kept = append(kept, l)
		}
	}
	s.carts[account] = kept
	return ok(c, nil)
}

func (s *Server) clearCart(c echo.Context) error {
	account, authed := s.accountOf(c)
	if !authed {
		return fail(c, 1, "invalid token")
	}
	s.mu.Lock()
	s.carts[account] = nil
	s.mu.Unlock()
	return ok(c, nil)
}

func (s *Server) createOrder(c echo.Context) error {
	account, authed := s.accountOf(c)
	if !authed {
		return fail(c, 1, "invalid token")
	}
	var req struct {
		Items []models.OrderItem `json:"items"`
	}
	if err := c.Bind(&req); err != nil || len(req.Items) == 0 {
		return fail(c, 1, "bad request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextOrderID++
	total := 0.0
	for _, it := range req.Items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	o := models.Order{
		ID:          s.nextOrderID,
		Status:      "created",
		TotalAmount: total,
		CreatedAt:   time.Now(),
		Items:       req.Items,
	}
	s.orders[account] = append(s.orders[account], o)
	return ok(c, o)
}

func (s *Server) listOrders(c echo.Context) error {
	account, authed := s.accountOf(c)
	if !authed {
		return fail(c, 1, "invalid token")
	}
	s.mu.Lock()
	out := make([]models.Order, len(s.orders[account]))
	copy(out, s.orders[account])
	s.mu.Unlock()
	return ok(c, out)
}

func (s *Server) getOrder(c echo.Context) error {
	account, authed := s.accountOf(c)
	if !authed {
		return fail(c, 1, "invalid token")
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, 1, "bad order id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders[account] {
		if o.ID == id {
			return ok(c, o)
		}
	}
	return fail(c, 1, "order not found")
}

func (s *Server) cancelOrder(c echo.Context) error {
	account, authed := s.accountOf(c)
	if !authed {
		return fail(c, 1, "invalid token")
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, 1, "bad order id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := s.orders[account]
	for i := range orders {
		if orders[i].ID == id {
			orders[i].Status = "cancelled"
			return ok(c, nil)
		}
	}
	return fail(c, 1, "order not found")
}
