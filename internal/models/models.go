package models

import "time"

type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Count       uint    `json:"count"`
}

// CartLine is one product entry in the cart. LineID is assigned by the
// server; a line created on the fallback path carries a temporary
// millisecond-timestamp id until the next successful fetch replaces it.
type CartLine struct {
	LineID    int64   `json:"id"`
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"image_url"`
}

type OrderItem struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Order struct {
	ID          int         `json:"id"`
	Status      string      `json:"status"`
	TotalAmount float64     `json:"total_amount"`
	CreatedAt   time.Time   `json:"created_at"`
	Items       []OrderItem `json:"items"`
}
