package catalog

// Product is the minimal catalog projection the order core needs:
// current price, available stock, and the owning store/seller.
type Product struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"productName"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	StoreID   string  `json:"storeId"`
	SellerID  string  `json:"sellerId"`
}
