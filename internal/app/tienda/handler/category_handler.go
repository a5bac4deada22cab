package handler

import (
	"errors"
	"net/http"
	"strconv"

	"tienda/internal/app/tienda/entity"
	"tienda/internal/app/tienda/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CatalogHandler обрабатывает HTTP запросы каталога с использованием Gin
type CatalogHandler struct {
	catalogService service.CatalogServiceInterface
	validator      *validator.Validate
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(catalogService service.CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		validator:      validator.New(),
	}
}

// CreateCategory обрабатывает POST /categorias/
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req entity.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNameTaken) {
			respondError(c, http.StatusConflict, "Ya existe una categoría con ese nombre")
			return
		}
		respondError(c, http.StatusInternalServerError, "No se pudo crear la categoría")
		return
	}

	c.JSON(http.StatusCreated, category)
}

// GetActiveCategories обрабатывает GET /categorias/
// Пустой список это валидный ответ 200, не ошибка
func (h *CatalogHandler) GetActiveCategories(c *gin.Context) {
	categories, err := h.catalogService.GetActiveCategories(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "No se pudieron obtener las categorías")
		return
	}

	c.JSON(http.StatusOK, entity.CategoryListResponse{
		Categories: categories,
		Total:      len(categories),
	})
}

// GetCategory обрабатывает GET /categorias/{id}
// Возвращает категорию вместе со всеми её товарами
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ID de categoría inválido")
		return
	}

	category, err := h.catalogService.GetCategoryWithProducts(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			respondError(c, http.StatusNotFound, "Categoría no encontrada")
			return
		}
		respondError(c, http.StatusInternalServerError, "No se pudo obtener la categoría")
		return
	}

	c.JSON(http.StatusOK, category)
}

// UpdateCategory обрабатывает PUT /categorias/{id}
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ID de categoría inválido")
		return
	}

	var req entity.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			respondError(c, http.StatusNotFound, "Categoría no encontrada")
		case errors.Is(err, service.ErrCategoryNameTaken):
			respondError(c, http.StatusConflict, "Ya existe otra categoría con ese nombre")
		default:
			respondError(c, http.StatusInternalServerError, "No se pudo actualizar la categoría")
		}
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeactivateCategory обрабатывает PATCH /categorias/{id}/desactivar
// Каскадно деактивирует все товары категории
func (h *CatalogHandler) DeactivateCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ID de categoría inválido")
		return
	}

	category, err := h.catalogService.DeactivateCategory(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			respondError(c, http.StatusNotFound, "Categoría no encontrada")
		case errors.Is(err, service.ErrCategoryAlreadyInactive):
			respondError(c, http.StatusConflict, "La categoría ya está inactiva")
		default:
			respondError(c, http.StatusInternalServerError, "No se pudo desactivar la categoría")
		}
		return
	}

	c.JSON(http.StatusOK, category)
}

// ReactivateCategory обрабатывает PATCH /categorias/{id}/reactivar
// Каскадно реактивирует все товары категории
func (h *CatalogHandler) ReactivateCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ID de categoría inválido")
		return
	}

	category, err := h.catalogService.ReactivateCategory(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			respondError(c, http.StatusNotFound, "Categoría no encontrada")
		case errors.Is(err, service.ErrCategoryAlreadyActive):
			respondError(c, http.StatusConflict, "La categoría ya está activa")
		default:
			respondError(c, http.StatusInternalServerError, "No se pudo reactivar la categoría")
		}
		return
	}

	c.JSON(http.StatusOK, category)
}

// === HELPERS ===

// parseID извлекает числовой ID из path-параметра
func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// respondError отправляет единый конверт ошибки
// Категория ошибки определяется статусом: 400 валидация, 404 не найдено, 409 конфликт
func respondError(c *gin.Context, status int, details string) {
	var category string
	switch status {
	case http.StatusBadRequest:
		category = "Error de validación de datos"
	case http.StatusNotFound:
		category = "Recurso no encontrado"
	case http.StatusConflict:
		category = "Conflicto de datos"
	default:
		category = "Error interno del servidor"
	}

	c.JSON(status, entity.ErrorResponse{
		Error:   category,
		Details: details,
	})
}

// formatValidationError форматирует ошибки валидации DTO
func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			return validationErrors[0].Field() + " validation failed"
		}
	}
	return "Validation failed"
}
