package repository

import (
	"context"
	"errors"

	"tienda/internal/app/tienda/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type categoryRepository struct {
	db *gorm.DB // GORM DB для работы с PostgreSQL
}

// NewCategoryRepository создает новый репозиторий категорий
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create создает новую категорию
// Уникальность имени обеспечивается UNIQUE constraint в БД
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).Create(category)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrCategoryAlreadyExists
		}
		return result.Error
	}
	return nil
}

// GetByID получает категорию по ID
func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*entity.Category, error) {
	var category entity.Category
	result := r.db.WithContext(ctx).First(&category, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, result.Error
	}

	return &category, nil
}

// GetByName получает категорию по точному имени
// Сравнение чувствительно к регистру: используется для проверки уникальности
func (r *categoryRepository) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	var category entity.Category
	result := r.db.WithContext(ctx).First(&category, "name = ?", name)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, result.Error
	}

	return &category, nil
}

// GetActive получает все активные категории отсортированные по имени
// Результат может быть закеширован в Redis через service layer
func (r *categoryRepository) GetActive(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	result := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&categories)

	if result.Error != nil {
		return nil, result.Error
	}

	return categories, nil
}

// GetWithProducts получает категорию со списком всех её товаров
func (r *categoryRepository) GetWithProducts(ctx context.Context, id int64) (*entity.CategoryWithProducts, error) {
	var category entity.Category
	result := r.db.WithContext(ctx).Preload("Products").First(&category, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, result.Error
	}

	cwp := &entity.CategoryWithProducts{
		Category: category,
		Products: category.Products,
	}
	cwp.Category.Products = nil

	return cwp, nil
}

// Update обновляет имя и описание категории
// Активность меняется только через SetActiveCascade
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).Model(category).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":        category.Name,
			"description": category.Description,
		})

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrCategoryAlreadyExists
		}
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// SetActiveCascade меняет активность категории и каскадно всех её товаров
// Выполняется одной транзакцией с блокировкой строки категории,
// чтобы конкурентные каскады не перемешивали состояние товаров
// Возвращает количество затронутых товаров
func (r *categoryRepository) SetActiveCascade(ctx context.Context, id int64, active bool) (int64, error) {
	var affected int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category entity.Category
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&category, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}

		if err := tx.Model(&entity.Category{}).
			Where("id = ?", id).
			Update("active", active).Error; err != nil {
			return err
		}

		// Каскад перезаписывает activo всех товаров категории безусловно
		result := tx.Model(&entity.Product{}).
			Where("category_id = ?", id).
			Update("active", active)
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected

		return nil
	})

	if err != nil {
		return 0, err
	}

	return affected, nil
}
