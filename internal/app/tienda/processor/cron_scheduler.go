package processor

import (
	"context"

	"tienda/internal/app/tienda/repository"
	"tienda/internal/app/tienda/service"
	"tienda/pkg/logger"
	"tienda/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// CronScheduler выполняет периодические фоновые задачи каталога:
// прогрев кеша активных категорий и обновление gauge-метрик склада
type CronScheduler struct {
	cron              *cron.Cron
	catalogService    service.CatalogServiceInterface
	productRepo       repository.ProductRepository
	lowStockThreshold int
}

// NewCronScheduler создает новый планировщик фоновых задач
func NewCronScheduler(
	catalogService service.CatalogServiceInterface,
	productRepo repository.ProductRepository,
	lowStockThreshold int,
) *CronScheduler {
	return &CronScheduler{
		cron:              cron.New(),
		catalogService:    catalogService,
		productRepo:       productRepo,
		lowStockThreshold: lowStockThreshold,
	}
}

// Start запускает планировщик и сразу выполняет первый проход
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.refresh(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	// Первый проход без ожидания расписания, чтобы метрики
	// и кеш были актуальны сразу после старта сервиса
	s.refresh(ctx)

	return nil
}

// Stop останавливает планировщик дождавшись текущей задачи
func (s *CronScheduler) Stop() {
	logger.Info().Msg("stopping cron scheduler")
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	logger.Info().Msg("cron scheduler stopped")
}

// refresh прогревает кеш категорий и пересчитывает складские метрики
func (s *CronScheduler) refresh(ctx context.Context) {
	categories, err := s.catalogService.GetActiveCategories(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("cron: failed to refresh active categories")
	} else {
		metrics.SetActiveCategories(len(categories))
	}

	lowStock, err := s.productRepo.CountActiveLowStock(ctx, s.lowStockThreshold)
	if err != nil {
		logger.Error().Err(err).Msg("cron: failed to count low stock products")
		return
	}
	metrics.SetLowStockProducts(lowStock)
}
