//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"tienda/internal/app/tienda/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// BaseURL - адрес запущенного сервиса каталога
	// Для E2E тестов сервис должен быть запущен через docker-compose
	BaseURL = "http://localhost:8080"
)

func doRequest(t *testing.T, client *http.Client, method, path string, body interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, BaseURL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

// TestFullCatalogFlow тестирует полный цикл работы с каталогом:
// 1. Создание категории
// 2. Получение активных категорий (проверка кеша)
// 3. Создание товара в категории
// 4. Получение товара с категорией
// 5. Покупка товара (списание остатка)
// 6. Покупка сверх остатка (отказ без изменения склада)
// 7. Деактивация категории (каскад на товары)
// 8. Реактивация категории
func TestFullCatalogFlow(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}

	// ==================== Step 1: Create Category ====================
	t.Log("Step 1: Creating category")

	categoryName := fmt.Sprintf("Categoría E2E %d", time.Now().UnixNano())
	resp := doRequest(t, client, http.MethodPost, "/categorias/", entity.CreateCategoryRequest{Name: categoryName})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode, "Category creation should succeed")

	var category entity.Category
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&category))
	assert.Equal(t, categoryName, category.Name)
	assert.True(t, category.Active)
	require.NotZero(t, category.ID)

	categoryID := strconv.FormatInt(category.ID, 10)
	t.Logf("Created category: %s (ID: %s)", category.Name, categoryID)

	// ==================== Step 2: Get Active Categories ====================
	t.Log("Step 2: Getting active categories")

	resp = doRequest(t, client, http.MethodGet, "/categorias/", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var categoriesResponse entity.CategoryListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&categoriesResponse))
	assert.GreaterOrEqual(t, categoriesResponse.Total, 1)

	// ==================== Step 3: Create Product ====================
	t.Log("Step 3: Creating product")

	productName := fmt.Sprintf("Producto E2E %d", time.Now().UnixNano())
	createProductReq := entity.CreateProductRequest{
		Name:       productName,
		Price:      99.99,
		Stock:      10,
		CategoryID: category.ID,
	}
	resp = doRequest(t, client, http.MethodPost, "/productos/", createProductReq)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode, "Product creation should succeed")

	var product entity.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&product))
	assert.Equal(t, 10, product.Stock)
	assert.True(t, product.Active)

	productID := strconv.FormatInt(product.ID, 10)
	t.Logf("Created product: %s (ID: %s)", product.Name, productID)

	// ==================== Step 4: Get Product with Category ====================
	t.Log("Step 4: Getting product with category info")

	resp = doRequest(t, client, http.MethodGet, "/productos/"+productID, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var productWithCategory entity.ProductWithCategory
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&productWithCategory))
	assert.Equal(t, categoryName, productWithCategory.Category.Name)

	// ==================== Step 5: Purchase Product ====================
	t.Log("Step 5: Purchasing 6 units")

	resp = doRequest(t, client, http.MethodPatch, "/productos/"+productID+"/comprar", entity.PurchaseRequest{Quantity: 6})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var purchased entity.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&purchased))
	assert.Equal(t, 4, purchased.Stock, "Stock should go from 10 to 4")

	// ==================== Step 6: Over-purchase ====================
	t.Log("Step 6: Attempting to purchase more than remaining stock")

	resp = doRequest(t, client, http.MethodPatch, "/productos/"+productID+"/comprar", entity.PurchaseRequest{Quantity: 5})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errorResponse entity.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errorResponse))
	assert.Equal(t, "Error de validación de datos", errorResponse.Error)

	// Остаток не изменился
	resp = doRequest(t, client, http.MethodGet, "/productos/"+productID, nil)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&productWithCategory))
	assert.Equal(t, 4, productWithCategory.Product.Stock)

	// ==================== Step 7: Deactivate Category ====================
	t.Log("Step 7: Deactivating category, cascade to products")

	resp = doRequest(t, client, http.MethodPatch, "/categorias/"+categoryID+"/desactivar", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Товар деактивирован каскадом: его больше нельзя купить
	resp = doRequest(t, client, http.MethodPatch, "/productos/"+productID+"/comprar", entity.PurchaseRequest{Quantity: 1})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Повторная деактивация это конфликт
	resp = doRequest(t, client, http.MethodPatch, "/categorias/"+categoryID+"/desactivar", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// ==================== Step 8: Reactivate Category ====================
	t.Log("Step 8: Reactivating category")

	resp = doRequest(t, client, http.MethodPatch, "/categorias/"+categoryID+"/reactivar", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Товар снова активен и доступен для покупки
	resp = doRequest(t, client, http.MethodPatch, "/productos/"+productID+"/comprar", entity.PurchaseRequest{Quantity: 1})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	t.Log("Full catalog flow completed")
}
