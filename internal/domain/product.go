package domain

import "time"

type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProductInput struct {
	Name        string
	Description *string
	Price       float64
	Category    string
	Stock       int
}

// ProductPatch overwrites only the non-nil fields.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Stock       *int
}

// ProductFilter is applied in a fixed order: category, then Query, then the
// price bounds. A nil bound is no bound; a zero bound is still a bound.
type ProductFilter struct {
	Category string
	Query    string
	MinPrice *float64
	MaxPrice *float64
}

type ProductRepository interface {
	List(f ProductFilter, skip, limit int) []Product
	Get(id int) (Product, error)
	Create(in ProductInput) Product
	Update(id int, p ProductPatch) (Product, error)
	Delete(id int) error
	Search(f ProductFilter) []Product
	ByCategory(category string) []Product
}

func (p Product) Clone() Product {
	if p.Description != nil {
		d := *p.Description
		p.Description = &d
	}
	return p
}
