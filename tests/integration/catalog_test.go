//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"tienda/internal/app/tienda/entity"
	"tienda/internal/app/tienda/handler"
	"tienda/internal/app/tienda/repository"
	"tienda/internal/app/tienda/service"
	"tienda/internal/app/tienda/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// CatalogIntegrationTestSuite интеграционные тесты каталога
// Требует запущенные PostgreSQL и Redis
type CatalogIntegrationTestSuite struct {
	suite.Suite
	db          *gorm.DB
	redisClient *util.RedisClient
	router      *gin.Engine
}

func TestCatalogIntegrationSuite(t *testing.T) {
	suite.Run(t, new(CatalogIntegrationTestSuite))
}

// SetupSuite выполняется один раз перед всеми тестами
func (s *CatalogIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	// Подключение к PostgreSQL (тестовая БД)
	dsn := "host=localhost port=5433 user=postgres password=postgres dbname=tienda_test sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL")
	s.db = db

	// Подключение к Redis
	s.redisClient, err = util.NewRedisClient("localhost:6380", "", 15)
	require.NoError(s.T(), err, "Failed to connect to Redis")

	// Применяем миграции
	require.NoError(s.T(), s.db.AutoMigrate(&entity.Category{}, &entity.Product{}))

	categoryRepo := repository.NewCategoryRepository(s.db)
	productRepo := repository.NewProductRepository(s.db)

	// Kafka в интеграционных тестах не нужна
	kafkaProducer := &mockKafkaProducer{}

	catalogService := service.NewCatalogService(categoryRepo, productRepo, s.redisClient, kafkaProducer)
	catalogHandler := handler.NewCatalogHandler(catalogService)

	// Auth отключен: все эндпоинты публичные
	s.router = handler.SetupRoutes(catalogHandler, nil)
}

// TearDownSuite выполняется один раз после всех тестов
func (s *CatalogIntegrationTestSuite) TearDownSuite() {
	s.db.Exec("DROP TABLE IF EXISTS productos")
	s.db.Exec("DROP TABLE IF EXISTS categorias")
	if s.redisClient != nil {
		s.redisClient.Close()
	}
}

// SetupTest выполняется перед каждым тестом
func (s *CatalogIntegrationTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM productos")
	s.db.Exec("DELETE FROM categorias")
	s.redisClient.DeleteActiveCategories(context.Background())
}

// mockKafkaProducer мок для Kafka в интеграционных тестах
type mockKafkaProducer struct{}

func (m *mockKafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	return nil
}

func (m *mockKafkaProducer) Close() error {
	return nil
}

func (s *CatalogIntegrationTestSuite) doJSON(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (s *CatalogIntegrationTestSuite) createCategory(name string) entity.Category {
	category := entity.Category{Name: name, Active: true, CreatedAt: time.Now()}
	require.NoError(s.T(), s.db.Create(&category).Error)
	return category
}

func (s *CatalogIntegrationTestSuite) createProduct(name string, price float64, stock int, categoryID int64) entity.Product {
	product := entity.Product{
		Name:       name,
		Price:      price,
		Stock:      stock,
		Active:     true,
		CategoryID: categoryID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	require.NoError(s.T(), s.db.Create(&product).Error)
	return product
}

// ==================== Category Tests ====================

func (s *CatalogIntegrationTestSuite) TestCreateCategory_Success() {
	rec := s.doJSON(http.MethodPost, "/categorias/", entity.CreateCategoryRequest{Name: "Electrónica"})

	assert.Equal(s.T(), http.StatusCreated, rec.Code)

	var response entity.Category
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(s.T(), "Electrónica", response.Name)
	assert.True(s.T(), response.Active)
	assert.NotZero(s.T(), response.ID)
}

func (s *CatalogIntegrationTestSuite) TestCreateCategory_DuplicateName() {
	s.createCategory("Electrónica")

	rec := s.doJSON(http.MethodPost, "/categorias/", entity.CreateCategoryRequest{Name: "Electrónica"})

	assert.Equal(s.T(), http.StatusConflict, rec.Code)

	var response entity.ErrorResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(s.T(), "Conflicto de datos", response.Error)
}

func (s *CatalogIntegrationTestSuite) TestGetActiveCategories_ExcludesInactive() {
	s.createCategory("Electrónica")
	inactive := entity.Category{Name: "Descontinuados", Active: false, CreatedAt: time.Now()}
	require.NoError(s.T(), s.db.Create(&inactive).Error)

	rec := s.doJSON(http.MethodGet, "/categorias/", nil)

	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var response entity.CategoryListResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(s.T(), 1, response.Total)
	assert.Equal(s.T(), "Electrónica", response.Categories[0].Name)
}

func (s *CatalogIntegrationTestSuite) TestGetActiveCategories_EmptyList() {
	rec := s.doJSON(http.MethodGet, "/categorias/", nil)

	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var response entity.CategoryListResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(s.T(), 0, response.Total)
}

func (s *CatalogIntegrationTestSuite) TestDeactivateCategory_CascadesToProducts() {
	category := s.createCategory("Electrónica")
	p1 := s.createProduct("Laptop", 999.99, 10, category.ID)
	p2 := s.createProduct("Mouse", 19.99, 50, category.ID)

	rec := s.doJSON(http.MethodPatch, "/categorias/"+itoa(category.ID)+"/desactivar", nil)

	assert.Equal(s.T(), http.StatusOK, rec.Code)

	// Категория и оба товара деактивированы
	var stored entity.Category
	s.db.First(&stored, category.ID)
	assert.False(s.T(), stored.Active)

	var products []entity.Product
	s.db.Find(&products, []int64{p1.ID, p2.ID})
	for _, p := range products {
		assert.False(s.T(), p.Active)
	}
}

func (s *CatalogIntegrationTestSuite) TestDeactivateCategory_Twice() {
	category := s.createCategory("Electrónica")

	first := s.doJSON(http.MethodPatch, "/categorias/"+itoa(category.ID)+"/desactivar", nil)
	assert.Equal(s.T(), http.StatusOK, first.Code)

	second := s.doJSON(http.MethodPatch, "/categorias/"+itoa(category.ID)+"/desactivar", nil)
	assert.Equal(s.T(), http.StatusConflict, second.Code)
}

func (s *CatalogIntegrationTestSuite) TestReactivateCategory_RestoresProducts() {
	category := s.createCategory("Electrónica")
	product := s.createProduct("Laptop", 999.99, 10, category.ID)

	s.doJSON(http.MethodPatch, "/categorias/"+itoa(category.ID)+"/desactivar", nil)
	rec := s.doJSON(http.MethodPatch, "/categorias/"+itoa(category.ID)+"/reactivar", nil)

	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var stored entity.Product
	s.db.First(&stored, product.ID)
	assert.True(s.T(), stored.Active)
}

// ==================== Product Tests ====================

func (s *CatalogIntegrationTestSuite) TestCreateProduct_Success() {
	category := s.createCategory("Electrónica")

	body := entity.CreateProductRequest{Name: "Laptop", Price: 999.99, Stock: 10, CategoryID: category.ID}
	rec := s.doJSON(http.MethodPost, "/productos/", body)

	assert.Equal(s.T(), http.StatusCreated, rec.Code)

	var response entity.Product
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(s.T(), response.Active)
	assert.Equal(s.T(), category.ID, response.CategoryID)
}

func (s *CatalogIntegrationTestSuite) TestCreateProduct_InactiveCategory() {
	category := entity.Category{Name: "Descontinuados", Active: false, CreatedAt: time.Now()}
	require.NoError(s.T(), s.db.Create(&category).Error)

	body := entity.CreateProductRequest{Name: "Laptop", Price: 999.99, Stock: 10, CategoryID: category.ID}
	rec := s.doJSON(http.MethodPost, "/productos/", body)

	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
}

func (s *CatalogIntegrationTestSuite) TestListProducts_ConjunctiveFilters() {
	category := s.createCategory("Electrónica")
	other := s.createCategory("Hogar")
	s.createProduct("Laptop", 999.99, 10, category.ID)
	s.createProduct("Mouse", 19.99, 50, category.ID)
	s.createProduct("Silla", 89.99, 5, other.ID)

	rec := s.doJSON(http.MethodGet, "/productos/?categoria_id="+itoa(category.ID)+"&precio_max=100", nil)

	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var response entity.ProductListResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(s.T(), 1, response.Total)
	assert.Equal(s.T(), "Mouse", response.Products[0].Product.Name)
}

func (s *CatalogIntegrationTestSuite) TestListProducts_HidesInactiveByDefault() {
	category := s.createCategory("Electrónica")
	s.createProduct("Laptop", 999.99, 10, category.ID)
	product := s.createProduct("Viejo", 9.99, 1, category.ID)
	s.db.Model(&entity.Product{}).Where("id = ?", product.ID).Update("active", false)

	rec := s.doJSON(http.MethodGet, "/productos/", nil)

	var response entity.ProductListResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(s.T(), 1, response.Total)
	assert.Equal(s.T(), "Laptop", response.Products[0].Product.Name)
}

// ==================== Purchase Tests ====================

func (s *CatalogIntegrationTestSuite) TestPurchaseProduct_DecrementsStock() {
	category := s.createCategory("Electrónica")
	product := s.createProduct("Laptop", 999.99, 10, category.ID)

	// Первая покупка: 10 - 6 = 4
	rec := s.doJSON(http.MethodPatch, "/productos/"+itoa(product.ID)+"/comprar", entity.PurchaseRequest{Quantity: 6})
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var response entity.Product
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(s.T(), 4, response.Stock)

	// Попытка купить больше остатка: stock не меняется
	rec = s.doJSON(http.MethodPatch, "/productos/"+itoa(product.ID)+"/comprar", entity.PurchaseRequest{Quantity: 5})
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)

	var stored entity.Product
	s.db.First(&stored, product.ID)
	assert.Equal(s.T(), 4, stored.Stock)
}

func (s *CatalogIntegrationTestSuite) TestPurchaseProduct_ZeroQuantity() {
	category := s.createCategory("Electrónica")
	product := s.createProduct("Laptop", 999.99, 10, category.ID)

	rec := s.doJSON(http.MethodPatch, "/productos/"+itoa(product.ID)+"/comprar", map[string]int{"cantidad": 0})

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *CatalogIntegrationTestSuite) TestPurchaseProduct_InactiveProduct() {
	category := s.createCategory("Electrónica")
	product := s.createProduct("Laptop", 999.99, 10, category.ID)
	s.db.Model(&entity.Product{}).Where("id = ?", product.ID).Update("active", false)

	rec := s.doJSON(http.MethodPatch, "/productos/"+itoa(product.ID)+"/comprar", entity.PurchaseRequest{Quantity: 1})

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}
