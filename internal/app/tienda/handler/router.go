package handler

import (
	"net/http"

	"tienda/pkg/logger"
	"tienda/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes настраивает все маршруты сервиса с использованием Gin
// authMiddleware == nil означает что аутентификация выключена в конфигурации:
// все эндпоинты публичны (режим для локальной разработки и тестов)
func SetupRoutes(catalogHandler *CatalogHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	// Паника в обработчике не должна утекать наружу деталями
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("panic recovered")
		respondError(c, http.StatusInternalServerError, "Error interno del servidor")
	}))

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("tienda"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint - публичный
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "tienda",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	categorias := router.Group("/categorias")
	{
		// Чтение доступно всем
		categorias.GET("/", catalogHandler.GetActiveCategories) // Активные категории (кеш Redis)
		categorias.GET("/:id", catalogHandler.GetCategory)      // Категория со всеми товарами

		// Мутации только для manager и admin
		mutating := categorias.Group("")
		if authMiddleware != nil {
			mutating.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole("manager", "admin"))
		}
		mutating.POST("/", catalogHandler.CreateCategory)                    // Создать категорию
		mutating.PUT("/:id", catalogHandler.UpdateCategory)                  // Обновить имя/описание
		mutating.PATCH("/:id/desactivar", catalogHandler.DeactivateCategory) // Логическое удаление с каскадом
		mutating.PATCH("/:id/reactivar", catalogHandler.ReactivateCategory)  // Реактивация с каскадом
	}

	productos := router.Group("/productos")
	{
		// Чтение доступно всем
		productos.GET("/", catalogHandler.ListProducts) // Список с конъюнктивными фильтрами
		productos.GET("/:id", catalogHandler.GetProduct)

		// Покупка доступна любому аутентифицированному пользователю
		comprar := productos.Group("")
		if authMiddleware != nil {
			comprar.Use(authMiddleware.Authenticate())
		}
		comprar.PATCH("/:id/comprar", catalogHandler.PurchaseProduct)

		// Остальные мутации только для manager и admin
		mutating := productos.Group("")
		if authMiddleware != nil {
			mutating.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole("manager", "admin"))
		}
		mutating.POST("/", catalogHandler.CreateProduct)
		mutating.PUT("/:id", catalogHandler.UpdateProduct)
		mutating.PATCH("/:id/desactivar", catalogHandler.DeactivateProduct)
		mutating.PATCH("/:id/reactivar", catalogHandler.ReactivateProduct)
	}

	return router
}
