package repository

import (
	"context"
	"errors"

	"tienda/internal/app/tienda/entity"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
	ErrProductNotFound       = errors.New("product not found")
	ErrProductInactive       = errors.New("product is inactive")
	ErrInsufficientStock     = errors.New("insufficient stock")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	GetActive(ctx context.Context) ([]entity.Category, error)
	GetWithProducts(ctx context.Context, id int64) (*entity.CategoryWithProducts, error)
	Update(ctx context.Context, category *entity.Category) error
	SetActiveCascade(ctx context.Context, id int64, active bool) (int64, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetWithCategory(ctx context.Context, id int64) (*entity.ProductWithCategory, error)
	List(ctx context.Context, filters entity.ProductFilters) ([]entity.ProductWithCategory, error)
	Update(ctx context.Context, product *entity.Product) error
	SetActive(ctx context.Context, id int64, active bool) error
	DecrementStock(ctx context.Context, id int64, quantity int) (*entity.Product, error)
	CountActiveLowStock(ctx context.Context, threshold int) (int64, error)
}
