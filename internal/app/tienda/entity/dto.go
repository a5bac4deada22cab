package entity

// CreateCategoryRequest тело запроса POST /categorias/
type CreateCategoryRequest struct {
	Name        string `json:"nombre" validate:"required,min=2,max=100"`
	Description string `json:"descripcion" validate:"omitempty,max=2000"`
}

// UpdateCategoryRequest тело запроса PUT /categorias/{id}
// Активность категории меняется только через desactivar/reactivar
type UpdateCategoryRequest struct {
	Name        string `json:"nombre" validate:"required,min=2,max=100"`
	Description string `json:"descripcion" validate:"omitempty,max=2000"`
}

// CreateProductRequest тело запроса POST /productos/
type CreateProductRequest struct {
	Name        string  `json:"nombre" validate:"required,min=2,max=200"`
	Description string  `json:"descripcion" validate:"omitempty,max=2000"`
	Price       float64 `json:"precio" validate:"required"`
	Stock       int     `json:"stock"`
	Featured    bool    `json:"destacado"`
	CategoryID  int64   `json:"categoria_id" validate:"required"`
}

// UpdateProductRequest тело запроса PUT /productos/{id}
// Полная перезапись изменяемых полей товара
type UpdateProductRequest struct {
	Name        string  `json:"nombre" validate:"required,min=2,max=200"`
	Description string  `json:"descripcion" validate:"omitempty,max=2000"`
	Price       float64 `json:"precio" validate:"required"`
	Stock       int     `json:"stock"`
	Featured    bool    `json:"destacado"`
	CategoryID  int64   `json:"categoria_id" validate:"required"`
}

// PurchaseRequest тело запроса PATCH /productos/{id}/comprar
type PurchaseRequest struct {
	Quantity int `json:"cantidad" validate:"required"`
}

// ProductFilters необязательные конъюнктивные фильтры для GET /productos/
// nil означает что фильтр не задан
type ProductFilters struct {
	CategoryID *int64
	StockMin   *int
	StockMax   *int
	PriceMin   *float64
	PriceMax   *float64
	Active     *bool
	Featured   *bool
}

// ErrorResponse единый конверт ошибки API
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// ProductListResponse ответ на GET /productos/
type ProductListResponse struct {
	Products []ProductWithCategory `json:"productos"`
	Total    int                   `json:"total"`
}

// CategoryListResponse ответ на GET /categorias/
type CategoryListResponse struct {
	Categories []Category `json:"categorias"`
	Total      int        `json:"total"`
}
