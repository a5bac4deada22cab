package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"tienda/internal/app/tienda/entity"
	"tienda/internal/app/tienda/service"

	"github.com/gin-gonic/gin"
)

// CreateProduct обрабатывает POST /productos/
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req entity.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		h.respondProductMutationError(c, err, "No se pudo crear el producto")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// ListProducts обрабатывает GET /productos/
// Фильтры конъюнктивны: товар должен удовлетворять каждому заданному фильтру
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	filters, err := parseProductFilters(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.catalogService.ListProducts(c.Request.Context(), filters)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "No se pudieron obtener los productos")
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{
		Products: products,
		Total:    len(products),
	})
}

// GetProduct обрабатывает GET /productos/{id}
// Возвращает товар вместе с его категорией
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ID de producto inválido")
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Producto no encontrado")
			return
		}
		respondError(c, http.StatusInternalServerError, "No se pudo obtener el producto")
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateProduct обрабатывает PUT /productos/{id}
// Полная перезапись изменяемых полей с перепроверкой бизнес-правил
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ID de producto inválido")
		return
	}

	var req entity.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		h.respondProductMutationError(c, err, "No se pudo actualizar el producto")
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeactivateProduct обрабатывает PATCH /productos/{id}/desactivar
func (h *CatalogHandler) DeactivateProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ID de producto inválido")
		return
	}

	product, err := h.catalogService.DeactivateProduct(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, http.StatusNotFound, "Producto no encontrado")
		case errors.Is(err, service.ErrProductAlreadyInactive):
			respondError(c, http.StatusConflict, "El producto ya está inactivo")
		default:
			respondError(c, http.StatusInternalServerError, "No se pudo desactivar el producto")
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

// ReactivateProduct обрабатывает PATCH /productos/{id}/reactivar
func (h *CatalogHandler) ReactivateProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ID de producto inválido")
		return
	}

	product, err := h.catalogService.ReactivateProduct(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, http.StatusNotFound, "Producto no encontrado")
		case errors.Is(err, service.ErrProductAlreadyActive):
			respondError(c, http.StatusConflict, "El producto ya está activo")
		default:
			respondError(c, http.StatusInternalServerError, "No se pudo reactivar el producto")
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

// PurchaseProduct обрабатывает PATCH /productos/{id}/comprar
// Тело: {"cantidad": n}. Списывает n единиц со склада
func (h *CatalogHandler) PurchaseProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ID de producto inválido")
		return
	}

	var req entity.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}

	product, err := h.catalogService.PurchaseProduct(c.Request.Context(), id, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, http.StatusNotFound, "Producto no encontrado")
		case errors.Is(err, service.ErrInvalidQuantity):
			respondError(c, http.StatusBadRequest, "La cantidad debe ser mayor que cero")
		case errors.Is(err, service.ErrProductInactive):
			respondError(c, http.StatusBadRequest, "El producto está inactivo")
		case errors.Is(err, service.ErrInsufficientStock):
			respondError(c, http.StatusBadRequest, "Stock insuficiente")
		default:
			respondError(c, http.StatusInternalServerError, "No se pudo comprar el producto")
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

// === HELPERS ===

// respondProductMutationError общий маппинг ошибок создания/обновления товара
// Несуществующая или неактивная категория это 404, нарушение бизнес-правил 400
func (h *CatalogHandler) respondProductMutationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, http.StatusNotFound, "Producto no encontrado")
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, http.StatusNotFound, "Categoría no encontrada")
	case errors.Is(err, service.ErrCategoryInactive):
		respondError(c, http.StatusNotFound, "La categoría está inactiva")
	case errors.Is(err, service.ErrInvalidStock):
		respondError(c, http.StatusBadRequest, "El stock no puede ser negativo")
	case errors.Is(err, service.ErrInvalidPrice):
		respondError(c, http.StatusBadRequest, "El precio debe ser mayor que cero")
	default:
		respondError(c, http.StatusInternalServerError, fallback)
	}
}

// parseProductFilters разбирает необязательные query-параметры фильтрации
func parseProductFilters(c *gin.Context) (entity.ProductFilters, error) {
	var filters entity.ProductFilters

	if v := c.Query("categoria_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filters, fmt.Errorf("categoria_id inválido")
		}
		filters.CategoryID = &id
	}
	if v := c.Query("stock_min"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filters, fmt.Errorf("stock_min inválido")
		}
		filters.StockMin = &n
	}
	if v := c.Query("stock_max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filters, fmt.Errorf("stock_max inválido")
		}
		filters.StockMax = &n
	}
	if v := c.Query("precio_min"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filters, fmt.Errorf("precio_min inválido")
		}
		filters.PriceMin = &f
	}
	if v := c.Query("precio_max"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filters, fmt.Errorf("precio_max inválido")
		}
		filters.PriceMax = &f
	}
	if v := c.Query("activo"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filters, fmt.Errorf("activo inválido")
		}
		filters.Active = &b
	}
	if v := c.Query("destacado"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filters, fmt.Errorf("destacado inválido")
		}
		filters.Featured = &b
	}

	return filters, nil
}
