package app

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/salesbook/internal/domain"
	"github.com/vladislavdragonenkov/salesbook/internal/health"
	"github.com/vladislavdragonenkov/salesbook/internal/metrics"
	"github.com/vladislavdragonenkov/salesbook/internal/sales"
	"github.com/vladislavdragonenkov/salesbook/internal/transfer"
	"github.com/vladislavdragonenkov/salesbook/internal/version"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Book     *sales.Book
	Transfer *transfer.Manager
	Health   *health.Registry
	Metrics  *metrics.StoreMetrics
	Registry *prometheus.Registry
	Logger   *log.Entry
}

// NewDependencies создаёт хранилища и вспомогательные сервисы без чтения файлов.
// Метрики регистрируются в собственном реестре, а не в глобальном.
func NewDependencies(cfg Config, logger *log.Entry, opts ...sales.OrderOption) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	registry := prometheus.NewRegistry()
	storeMetrics := metrics.NewStoreMetricsWithRegisterer(registry)

	return &Dependencies{
		Book:     sales.NewBook(cfg.Paths(), logger.WithField("component", "book"), storeMetrics, opts...),
		Transfer: transfer.New(logger.WithField("component", "transfer")),
		Health:   NewHealthRegistry(cfg),
		Metrics:  storeMetrics,
		Registry: registry,
		Logger:   logger,
	}
}

// NewHealthRegistry регистрирует проверку настроек и проверки всех файлов данных.
func NewHealthRegistry(cfg Config) *health.Registry {
	paths := cfg.Paths()
	registry := health.NewRegistry(version.Version())
	registry.Register("config", health.NewFuncChecker("config", func() (string, error) {
		if err := cfg.Validate(); err != nil {
			return "", err
		}
		if len(cfg.Sources) == 0 {
			return "defaults", nil
		}
		return strings.Join(cfg.Sources, ", "), nil
	}))
	registry.Register("customers", health.NewFileChecker("customers", paths.Customers, domain.CustomerFields))
	registry.Register("products", health.NewFileChecker("products", paths.Products, domain.ProductFields))
	registry.Register("orders", health.NewFileChecker("orders", paths.Orders, domain.OrderFields))
	registry.Register("order_items", health.NewFileChecker("order_items", paths.LineItems, domain.LineItemFields))
	return registry
}
