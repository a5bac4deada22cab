package entity

import "time"

// Category представляет категорию товаров магазина
// Категория владеет товарами: деактивация каскадно деактивирует все её товары
type Category struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"nombre" gorm:"uniqueIndex;not null"`
	Description string    `json:"descripcion"`
	Active      bool      `json:"activa" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	Products    []Product `json:"productos,omitempty" gorm:"foreignKey:CategoryID"`
}

// TableName указывает имя таблицы для GORM
func (Category) TableName() string {
	return "categorias"
}

// Product представляет товар в каталоге
// Каждый товар принадлежит ровно одной категории
type Product struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"nombre" gorm:"not null"`
	Description string    `json:"descripcion"`
	Price       float64   `json:"precio" gorm:"type:decimal(10,2);not null;check:precio_positivo,price > 0"`
	Stock       int       `json:"stock" gorm:"not null;default:0;check:stock_no_negativo,stock >= 0"`
	Active      bool      `json:"activo" gorm:"not null;default:true"`
	Featured    bool      `json:"destacado" gorm:"not null;default:false"`
	CategoryID  int64     `json:"categoria_id" gorm:"not null;index"`
	Category    *Category `json:"categoria,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы для GORM
func (Product) TableName() string {
	return "productos"
}

// CategoryWithProducts содержит категорию с полным списком её товаров
type CategoryWithProducts struct {
	Category
	Products []Product `json:"productos"`
}

// ProductWithCategory содержит товар с информацией о его категории
type ProductWithCategory struct {
	Product
	Category Category `json:"categoria"`
}

// ProductEvent представляет событие изменения товара для Kafka
type ProductEvent struct {
	EventType      string    `json:"event_type"` // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_PURCHASED
	ProductID      int64     `json:"product_id"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	CategoryID     int64     `json:"category_id"`
	Quantity       int       `json:"quantity,omitempty"`        // Для PRODUCT_PURCHASED: купленное количество
	RemainingStock int       `json:"remaining_stock,omitempty"` // Для PRODUCT_PURCHASED: остаток на складе
	Timestamp      time.Time `json:"timestamp"`
}

// CategoryEvent представляет событие изменения категории для Kafka
// Отправляется при каскадной (де)активации вместе с числом затронутых товаров
type CategoryEvent struct {
	EventType        string    `json:"event_type"` // CATEGORY_DEACTIVATED, CATEGORY_REACTIVATED
	CategoryID       int64     `json:"category_id"`
	Name             string    `json:"name"`
	AffectedProducts int64     `json:"affected_products"`
	Timestamp        time.Time `json:"timestamp"`
}
