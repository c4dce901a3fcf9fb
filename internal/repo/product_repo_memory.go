package repo

import (
	"fmt"
	"strings"
	"time"

	"qa-assignment-api/internal/domain"
	"qa-assignment-api/pkg/utils"
)

type ProductRepo struct {
	c *Collection[domain.Product]
}

func NewProductRepo(now func() time.Time) *ProductRepo {
	return &ProductRepo{
		c: NewCollection(
			func(p domain.Product) int { return p.ID },
			domain.Product.Clone,
			now,
		),
	}
}

var _ domain.ProductRepository = (*ProductRepo)(nil)

// productPredicates builds the filter chain in its fixed order: exact category,
// free-text query, then the inclusive price bounds.
func productPredicates(f domain.ProductFilter) []func(domain.Product) bool {
	var ps []func(domain.Product) bool
	if f.Category != "" {
		ps = append(ps, func(p domain.Product) bool { return utils.EqualFold(p.Category, f.Category) })
	}
	if f.Query != "" {
		q := utils.Fold(f.Query)
		ps = append(ps, func(p domain.Product) bool {
			desc := ""
			if p.Description != nil {
				desc = *p.Description
			}
			return strings.Contains(utils.Fold(p.Name), q) || strings.Contains(utils.Fold(desc), q)
		})
	}
	if f.MinPrice != nil {
		lo := *f.MinPrice
		ps = append(ps, func(p domain.Product) bool { return p.Price >= lo })
	}
	if f.MaxPrice != nil {
		hi := *f.MaxPrice
		ps = append(ps, func(p domain.Product) bool { return p.Price <= hi })
	}
	return ps
}

func (r *ProductRepo) List(f domain.ProductFilter, skip, limit int) []domain.Product {
	return r.c.Find(skip, limit, productPredicates(f)...)
}

func (r *ProductRepo) Search(f domain.ProductFilter) []domain.Product {
	return r.List(f, 0, -1)
}

func (r *ProductRepo) ByCategory(category string) []domain.Product {
	return r.List(domain.ProductFilter{Category: category}, 0, -1)
}

func (r *ProductRepo) Get(id int) (domain.Product, error) {
	p, err := r.c.Get(id)
	if err != nil {
		return p, fmt.Errorf("product %d: %w", id, err)
	}
	return p, nil
}

func (r *ProductRepo) Create(in domain.ProductInput) domain.Product {
	return r.c.Create(func(id int, now time.Time) domain.Product {
		return domain.Product{
			ID:          id,
			Name:        in.Name,
			Description: in.Description,
			Price:       in.Price,
			Category:    in.Category,
			Stock:       in.Stock,
			CreatedAt:   now,
		}
	})
}

func (r *ProductRepo) Update(id int, patch domain.ProductPatch) (domain.Product, error) {
	p, err := r.c.Update(id, func(p *domain.Product) error {
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Description != nil {
			d := *patch.Description
			p.Description = &d
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		if patch.Stock != nil {
			p.Stock = *patch.Stock
		}
		if p.Price <= 0 || p.Stock < 0 {
			return fmt.Errorf("%w: price must be > 0 and stock >= 0", domain.ErrValidation)
		}
		return nil
	})
	if err != nil {
		return p, fmt.Errorf("update product %d: %w", id, err)
	}
	return p, nil
}

// Delete fails with domain.ErrNotFound for an unknown id.
func (r *ProductRepo) Delete(id int) error {
	if err := r.c.Delete(id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}

func (r *ProductRepo) Len() int { return r.c.Len() }
