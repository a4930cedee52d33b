package cart

import "storefront/internal/products"

// Line is one product's entry in a cart: the product's display attributes
// plus a quantity. A cart holds at most one Line per product id.
type Line struct {
	products.Product
	Quantity int `json:"quantity"`
}
