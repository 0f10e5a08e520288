package products

// AddProductRequest carries a new listing submitted by its owner.
type AddProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
}

// UpdateProductRequest carries a partial update; nil fields are left as-is.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=1"`
	Quantity    *int     `json:"quantity,omitempty" validate:"omitempty,gte=0"`
}
