package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrCategoryNotFound        = errors.New("category not found")
	ErrCategoryInactive        = errors.New("category is inactive")
	ErrCategoryNameTaken       = errors.New("category with this name already exists")
	ErrCategoryAlreadyActive   = errors.New("category is already active")
	ErrCategoryAlreadyInactive = errors.New("category is already inactive")

	ErrProductNotFound        = errors.New("product not found")
	ErrProductInactive        = errors.New("product is inactive")
	ErrProductAlreadyActive   = errors.New("product is already active")
	ErrProductAlreadyInactive = errors.New("product is already inactive")

	ErrInvalidPrice      = errors.New("price must be greater than zero")
	ErrInvalidStock      = errors.New("stock cannot be negative")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Чистые бизнес-правила над полями товара
// Все проверки выполняются до любой записи в БД

func validatePrice(price float64) error {
	if price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

func validateStock(stock int) error {
	if stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

func validatePurchaseQuantity(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}
