package repository

import (
	"context"
	"errors"

	"tienda/internal/app/tienda/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepository struct {
	db *gorm.DB // GORM DB для работы с PostgreSQL
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create создает новый товар
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Create(product)
	return result.Error
}

// GetByID получает товар по ID
func (r *productRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}

	return &product, nil
}

// GetWithCategory получает товар с информацией о его категории
func (r *productRepository) GetWithCategory(ctx context.Context, id int64) (*entity.ProductWithCategory, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}

	pwc := &entity.ProductWithCategory{
		Product: product,
	}
	if product.Category != nil {
		pwc.Category = *product.Category
		pwc.Product.Category = nil
	}

	return pwc, nil
}

// List получает товары по конъюнктивным фильтрам
// Каждый заданный фильтр сужает выборку, nil-фильтры игнорируются
func (r *productRepository) List(ctx context.Context, filters entity.ProductFilters) ([]entity.ProductWithCategory, error) {
	query := r.db.WithContext(ctx).Model(&entity.Product{}).Preload("Category")

	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.StockMin != nil {
		query = query.Where("stock >= ?", *filters.StockMin)
	}
	if filters.StockMax != nil {
		query = query.Where("stock <= ?", *filters.StockMax)
	}
	if filters.PriceMin != nil {
		query = query.Where("price >= ?", *filters.PriceMin)
	}
	if filters.PriceMax != nil {
		query = query.Where("price <= ?", *filters.PriceMax)
	}
	if filters.Active != nil {
		query = query.Where("active = ?", *filters.Active)
	}
	if filters.Featured != nil {
		query = query.Where("featured = ?", *filters.Featured)
	}

	var products []entity.Product
	result := query.Order("created_at DESC").Find(&products)
	if result.Error != nil {
		return nil, result.Error
	}

	productsWithCat := make([]entity.ProductWithCategory, 0, len(products))
	for _, p := range products {
		pwc := entity.ProductWithCategory{
			Product: p,
		}
		if p.Category != nil {
			pwc.Category = *p.Category
			pwc.Product.Category = nil
		}
		productsWithCat = append(productsWithCat, pwc)
	}

	return productsWithCat, nil
}

// Update перезаписывает изменяемые поля товара
// updated_at обновляется автоматически через GORM
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Model(product).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"stock":       product.Stock,
			"featured":    product.Featured,
			"category_id": product.CategoryID,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// SetActive меняет активность одного товара
func (r *productRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ?", id).
		Update("active", active)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// CountActiveLowStock считает активные товары с остатком не выше порога
// Используется фоновым воркером для обновления gauge-метрики
func (r *productRepository) CountActiveLowStock(ctx context.Context, threshold int) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("active = ?", true).
		Where("stock <= ?", threshold).
		Count(&count)

	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// DecrementStock уменьшает остаток товара при покупке
// Проверка активности и достаточности остатка выполняется под блокировкой
// строки в одной транзакции, поэтому конкурентные покупки не уводят stock в минус
func (r *productRepository) DecrementStock(ctx context.Context, id int64, quantity int) (*entity.Product, error) {
	var product entity.Product

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		if !product.Active {
			return ErrProductInactive
		}
		if quantity > product.Stock {
			return ErrInsufficientStock
		}

		product.Stock -= quantity
		if err := tx.Model(&product).Update("stock", product.Stock).Error; err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &product, nil
}
