package cart

// Product is the catalog shape this service consumes. Its values are
// captured into a LineItem when the item is added and never refreshed,
// so later catalog price changes do not affect an existing cart.
type Product struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Price  float64  `json:"price"`
	Images []string `json:"images"`
}

type LineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal is the snapshot price times quantity for one line.
func LineTotal(it LineItem) float64 {
	return it.Product.Price * float64(it.Quantity)
}
