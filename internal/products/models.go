package products

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is immutable once fetched; catalog changes go through the admin
// create/update/delete operations.
type Product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      *Rating `json:"rating,omitempty"`
}

type NewProduct struct {
	Title       string  `json:"title" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description"`
	Category    string  `json:"category" validate:"required"`
	Image       string  `json:"image" validate:"required"`
	Rating      *Rating `json:"rating"`
}

// ProductUpdate carries a partial edit; nil fields stay untouched.
type ProductUpdate struct {
	Title       *string  `json:"title"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Image       *string  `json:"image"`
	Rating      *Rating  `json:"rating"`
}
