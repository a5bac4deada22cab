package service

import (
	"context"

	"tienda/internal/app/tienda/entity"
)

type CatalogServiceInterface interface {
	CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
	GetActiveCategories(ctx context.Context) ([]entity.Category, error)
	GetCategoryWithProducts(ctx context.Context, id int64) (*entity.CategoryWithProducts, error)
	UpdateCategory(ctx context.Context, id int64, req *entity.UpdateCategoryRequest) (*entity.Category, error)
	DeactivateCategory(ctx context.Context, id int64) (*entity.Category, error)
	ReactivateCategory(ctx context.Context, id int64) (*entity.Category, error)

	CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error)
	ListProducts(ctx context.Context, filters entity.ProductFilters) ([]entity.ProductWithCategory, error)
	GetProduct(ctx context.Context, id int64) (*entity.ProductWithCategory, error)
	UpdateProduct(ctx context.Context, id int64, req *entity.UpdateProductRequest) (*entity.Product, error)
	DeactivateProduct(ctx context.Context, id int64) (*entity.Product, error)
	ReactivateProduct(ctx context.Context, id int64) (*entity.Product, error)
	PurchaseProduct(ctx context.Context, id int64, quantity int) (*entity.Product, error)
}
