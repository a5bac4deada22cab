package util

import (
	"context"
	"time"

	"tienda/internal/app/tienda/entity"
)

// CategoryCache интерфейс для кеша активных категорий
// Используется для dependency injection и упрощения тестирования
type CategoryCache interface {
	SetActiveCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error
	GetActiveCategories(ctx context.Context) ([]entity.Category, error)
	DeleteActiveCategories(ctx context.Context) error
	Close() error
}

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
// Используется для dependency injection и упрощения тестирования
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
