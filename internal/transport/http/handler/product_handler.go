package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qa-assignment-api/internal/domain"
	"qa-assignment-api/internal/transport/http/ez"
)

type ProductHandler struct {
	Products domain.ProductRepository
	// ProtectWrites requires a verified bearer subject on create, update and delete.
	ProtectWrites bool
}

func (h *ProductHandler) Priority() int { return 20 }

type productListQuery struct {
	Skip     int      `form:"skip,default=0"  binding:"min=0"`
	Limit    int      `form:"limit,default=10" binding:"min=0"`
	Category string   `form:"category"`
	Q        string   `form:"q"`
	MinPrice *float64 `form:"min_price"`
	MaxPrice *float64 `form:"max_price"`
}

type productSearchQuery struct {
	Q        string   `form:"q" binding:"required,min=1"`
	Category string   `form:"category"`
	MinPrice *float64 `form:"min_price"`
	MaxPrice *float64 `form:"max_price"`
}

type categoryURI struct {
	Category string `uri:"category" binding:"required"`
}

type productIn struct {
	Name        string  `json:"name"        binding:"required,min=1"`
	Description *string `json:"description"`
	Price       float64 `json:"price"       binding:"required,gt=0"`
	Category    string  `json:"category"    binding:"required"`
	Stock       int     `json:"stock"       binding:"min=0"`
}

type productPatchIn struct {
	Name        *string  `json:"name"     binding:"omitempty,min=1"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"    binding:"omitempty,gt=0"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"    binding:"omitempty,min=0"`
}

func (h *ProductHandler) MountAPI(api *gin.RouterGroup) {
	r := ez.New(api.Group("/products"))

	ez.RegisterAction(r, ez.Action[productListQuery, []domain.Product]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Handler: func(_ *gin.Context, in *productListQuery) ([]domain.Product, error) {
			f := domain.ProductFilter{Category: in.Category, Query: in.Q, MinPrice: in.MinPrice, MaxPrice: in.MaxPrice}
			return h.Products.List(f, in.Skip, in.Limit), nil
		},
	})

	ez.RegisterAction(r, ez.Action[productSearchQuery, []domain.Product]{
		Method: http.MethodGet,
		Path:   "/search",
		Binder: ez.BindQuery,
		Handler: func(_ *gin.Context, in *productSearchQuery) ([]domain.Product, error) {
			f := domain.ProductFilter{Category: in.Category, Query: in.Q, MinPrice: in.MinPrice, MaxPrice: in.MaxPrice}
			return h.Products.Search(f), nil
		},
	})

	ez.RegisterAction(r, ez.Action[categoryURI, []domain.Product]{
		Method: http.MethodGet,
		Path:   "/category/:category",
		Binder: ez.BindURI,
		Handler: func(_ *gin.Context, in *categoryURI) ([]domain.Product, error) {
			return h.Products.ByCategory(in.Category), nil
		},
	})

	ez.RegisterAction(r, ez.Action[idURI, domain.Product]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindURI,
		Handler: func(_ *gin.Context, in *idURI) (domain.Product, error) {
			return h.Products.Get(in.ID)
		},
	})

	ez.RegisterAction(r, ez.Action[productIn, domain.Product]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Auth:   h.ProtectWrites,
		Handler: func(_ *gin.Context, in *productIn) (domain.Product, error) {
			return h.Products.Create(domain.ProductInput{
				Name:        in.Name,
				Description: in.Description,
				Price:       in.Price,
				Category:    in.Category,
				Stock:       in.Stock,
			}), nil
		},
	})

	ez.RegisterAction(r, ez.Action[productPatchIn, domain.Product]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Auth:   h.ProtectWrites,
		Handler: func(c *gin.Context, in *productPatchIn) (domain.Product, error) {
			id, err := paramID(c)
			if err != nil {
				return domain.Product{}, err
			}
			return h.Products.Update(id, domain.ProductPatch{
				Name:        in.Name,
				Description: in.Description,
				Price:       in.Price,
				Category:    in.Category,
				Stock:       in.Stock,
			})
		},
	})

	ez.RegisterAction(r, ez.Action[idURI, message]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindURI,
		Auth:   h.ProtectWrites,
		Handler: func(_ *gin.Context, in *idURI) (message, error) {
			if err := h.Products.Delete(in.ID); err != nil {
				return message{}, err
			}
			return message{Message: "Product deleted"}, nil
		},
	})
}
