package order

import "time"

type LineItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	SellerID    string  `json:"sellerId"`
}

type Order struct {
	ID                string        `json:"orderId"`
	BuyerID           string        `json:"buyerId"`
	SellerID          string        `json:"sellerId"`
	OrderDate         time.Time     `json:"orderDate"`
	DeliveryAddress   string        `json:"deliveryAddress"`
	EstimatedDelivery *time.Time    `json:"estimatedDelivery,omitempty"`
	Status            Status        `json:"orderStatus"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	TotalAmount       float64       `json:"totalAmount"`
	Items             []LineItem    `json:"items"`
}

// CartLine is one entry of a buyer-submitted cart, before the seller split.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// ResolvedLine is a cart line joined with its catalog projection.
type ResolvedLine struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   float64
	SellerID    string
	StoreID     string
	Stock       int
}

// Draft is a seller-scoped subset of a cart with its subtotal, not yet persisted.
type Draft struct {
	SellerID    string
	StoreID     string
	TotalAmount float64
	Lines       []ResolvedLine
}
