package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"tienda/internal/app/tienda/entity"
	"tienda/internal/app/tienda/repository"
	"tienda/internal/app/tienda/util"
	"tienda/pkg/logger"
	"tienda/pkg/metrics"
)

// Время жизни кеша активных категорий
const categoriesCacheTTL = time.Hour

// CatalogService обрабатывает бизнес-логику каталога магазина
// Координирует работу репозиториев, Redis кеша и Kafka producer
type CatalogService struct {
	categoryRepo  repository.CategoryRepository
	productRepo   repository.ProductRepository
	cache         util.CategoryCache
	kafkaProducer util.MessagePublisher
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cache util.CategoryCache,
	kafkaProducer util.MessagePublisher,
) *CatalogService {
	return &CatalogService{
		categoryRepo:  categoryRepo,
		productRepo:   productRepo,
		cache:         cache,
		kafkaProducer: kafkaProducer,
	}
}

// === CATEGORIES ===

// CreateCategory создает новую категорию
// Имя должно быть уникальным (точное совпадение, с учетом регистра)
func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	// Проверяем уникальность имени до записи
	if _, err := s.categoryRepo.GetByName(ctx, req.Name); err == nil {
		return nil, ErrCategoryNameTaken
	} else if !errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}

	category := &entity.Category{
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
		CreatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		// UNIQUE constraint мог сработать при гонке двух создателей
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return nil, ErrCategoryNameTaken
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCategoriesCache(ctx)

	return category, nil
}

// GetActiveCategories получает все активные категории с кешированием в Redis
// Пустой результат не ошибка: возвращается пустой список
func (s *CatalogService) GetActiveCategories(ctx context.Context) ([]entity.Category, error) {
	// Пытаемся получить из кеша
	categories, err := s.cache.GetActiveCategories(ctx)
	if err == nil && categories != nil {
		return categories, nil
	}

	// Cache miss - загружаем из PostgreSQL
	categories, err = s.categoryRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	if categories == nil {
		categories = []entity.Category{}
	}

	if err := s.cache.SetActiveCategories(ctx, categories, categoriesCacheTTL); err != nil {
		// Данные получены из БД, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("failed to cache active categories")
	}

	return categories, nil
}

// GetCategoryWithProducts получает категорию вместе со всеми её товарами
func (s *CatalogService) GetCategoryWithProducts(ctx context.Context, id int64) (*entity.CategoryWithProducts, error) {
	category, err := s.categoryRepo.GetWithProducts(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// UpdateCategory обновляет имя и описание категории
// При смене имени уникальность перепроверяется, исключая саму категорию
func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if category.Name != req.Name {
		existing, err := s.categoryRepo.GetByName(ctx, req.Name)
		if err == nil && existing.ID != id {
			return nil, ErrCategoryNameTaken
		}
		if err != nil && !errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, fmt.Errorf("failed to check category name: %w", err)
		}
	}

	category.Name = req.Name
	category.Description = req.Description

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return nil, ErrCategoryNameTaken
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidateCategoriesCache(ctx)

	return category, nil
}

// DeactivateCategory логически удаляет категорию
// Каскадно деактивирует все её товары одной транзакцией
func (s *CatalogService) DeactivateCategory(ctx context.Context, id int64) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if !category.Active {
		return nil, ErrCategoryAlreadyInactive
	}

	affected, err := s.categoryRepo.SetActiveCascade(ctx, id, false)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to deactivate category: %w", err)
	}
	category.Active = false

	s.publishCategoryEvent(ctx, entity.CategoryEvent{
		EventType:        "CATEGORY_DEACTIVATED",
		CategoryID:       category.ID,
		Name:             category.Name,
		AffectedProducts: affected,
		Timestamp:        time.Now(),
	})
	s.invalidateCategoriesCache(ctx)

	return category, nil
}

// ReactivateCategory возвращает категорию в активное состояние
// Каскадно реактивирует все её товары одной транзакцией
func (s *CatalogService) ReactivateCategory(ctx context.Context, id int64) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if category.Active {
		return nil, ErrCategoryAlreadyActive
	}

	affected, err := s.categoryRepo.SetActiveCascade(ctx, id, true)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to reactivate category: %w", err)
	}
	category.Active = true

	s.publishCategoryEvent(ctx, entity.CategoryEvent{
		EventType:        "CATEGORY_REACTIVATED",
		CategoryID:       category.ID,
		Name:             category.Name,
		AffectedProducts: affected,
		Timestamp:        time.Now(),
	})
	s.invalidateCategoriesCache(ctx)

	return category, nil
}

// === PRODUCTS ===

// CreateProduct создает новый товар
// Порядок проверок: категория существует и активна, stock >= 0, precio > 0
func (s *CatalogService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error) {
	category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}
	if !category.Active {
		return nil, ErrCategoryInactive
	}

	if err := validateStock(req.Stock); err != nil {
		return nil, err
	}
	if err := validatePrice(req.Price); err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Active:      true,
		Featured:    req.Featured,
		CategoryID:  req.CategoryID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publishProductEvent(ctx, entity.ProductEvent{
		EventType:  "PRODUCT_CREATED",
		ProductID:  product.ID,
		Name:       product.Name,
		Price:      product.Price,
		CategoryID: product.CategoryID,
		Timestamp:  time.Now(),
	})

	return product, nil
}

// ListProducts получает товары по конъюнктивным фильтрам
// Без явного фильтра activo возвращаются только активные товары
func (s *CatalogService) ListProducts(ctx context.Context, filters entity.ProductFilters) ([]entity.ProductWithCategory, error) {
	if filters.Active == nil {
		active := true
		filters.Active = &active
	}

	products, err := s.productRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []entity.ProductWithCategory{}
	}

	return products, nil
}

// GetProduct получает товар по ID с информацией о его категории
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*entity.ProductWithCategory, error) {
	product, err := s.productRepo.GetWithCategory(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// UpdateProduct перезаписывает изменяемые поля товара
// Целевая категория и бизнес-правила перепроверяются перед записью
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, req *entity.UpdateProductRequest) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}
	if !category.Active {
		return nil, ErrCategoryInactive
	}

	if err := validateStock(req.Stock); err != nil {
		return nil, err
	}
	if err := validatePrice(req.Price); err != nil {
		return nil, err
	}

	oldPrice := product.Price

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Stock = req.Stock
	product.Featured = req.Featured
	product.CategoryID = req.CategoryID

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	// Событие отправляется только при смене цены
	if product.Price != oldPrice {
		s.publishProductEvent(ctx, entity.ProductEvent{
			EventType:  "PRODUCT_UPDATED",
			ProductID:  product.ID,
			Name:       product.Name,
			Price:      product.Price,
			CategoryID: product.CategoryID,
			Timestamp:  time.Now(),
		})
	}

	return product, nil
}

// DeactivateProduct логически удаляет товар
func (s *CatalogService) DeactivateProduct(ctx context.Context, id int64) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if !product.Active {
		return nil, ErrProductAlreadyInactive
	}

	if err := s.productRepo.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to deactivate product: %w", err)
	}
	product.Active = false

	return product, nil
}

// ReactivateProduct возвращает товар в активное состояние
func (s *CatalogService) ReactivateProduct(ctx context.Context, id int64) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product.Active {
		return nil, ErrProductAlreadyActive
	}

	if err := s.productRepo.SetActive(ctx, id, true); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to reactivate product: %w", err)
	}
	product.Active = true

	return product, nil
}

// PurchaseProduct покупает товар: списывает quantity единиц со склада
// Проверка остатка и списание выполняются атомарно в репозитории
func (s *CatalogService) PurchaseProduct(ctx context.Context, id int64, quantity int) (*entity.Product, error) {
	if err := validatePurchaseQuantity(quantity); err != nil {
		metrics.RecordPurchaseRejected("invalid_quantity")
		return nil, err
	}

	product, err := s.productRepo.DecrementStock(ctx, id, quantity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrProductInactive):
			metrics.RecordPurchaseRejected("inactive_product")
			return nil, ErrProductInactive
		case errors.Is(err, repository.ErrInsufficientStock):
			metrics.RecordPurchaseRejected("insufficient_stock")
			return nil, ErrInsufficientStock
		default:
			return nil, fmt.Errorf("failed to purchase product: %w", err)
		}
	}

	metrics.RecordPurchase(quantity)
	s.publishProductEvent(ctx, entity.ProductEvent{
		EventType:      "PRODUCT_PURCHASED",
		ProductID:      product.ID,
		Name:           product.Name,
		Price:          product.Price,
		CategoryID:     product.CategoryID,
		Quantity:       quantity,
		RemainingStock: product.Stock,
		Timestamp:      time.Now(),
	})

	return product, nil
}

// === HELPERS ===

// invalidateCategoriesCache сбрасывает кеш активных категорий
// Ошибки кеша логируются, но не прерывают основную операцию
func (s *CatalogService) invalidateCategoriesCache(ctx context.Context) {
	if err := s.cache.DeleteActiveCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate categories cache")
	}
}

// publishProductEvent отправляет событие о товаре в Kafka
// Key - это ProductID для партиционирования
func (s *CatalogService) publishProductEvent(ctx context.Context, event entity.ProductEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", event.EventType).Msg("failed to marshal product event")
		return
	}

	if err := s.kafkaProducer.PublishMessage(ctx, strconv.FormatInt(event.ProductID, 10), data); err != nil {
		// Мутация уже применена, проблемы с Kafka не критичны
		logger.Warn().Err(err).Str("event_type", event.EventType).Msg("failed to publish product event")
	}
}

// publishCategoryEvent отправляет событие о категории в Kafka
func (s *CatalogService) publishCategoryEvent(ctx context.Context, event entity.CategoryEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", event.EventType).Msg("failed to marshal category event")
		return
	}

	if err := s.kafkaProducer.PublishMessage(ctx, strconv.FormatInt(event.CategoryID, 10), data); err != nil {
		logger.Warn().Err(err).Str("event_type", event.EventType).Msg("failed to publish category event")
	}
}
