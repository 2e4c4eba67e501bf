package app

import (
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/salesbook/internal/metrics"
	"github.com/vladislavdragonenkov/salesbook/internal/sales"
)

// App — открытая книга продаж вместе с настройками, логированием и метриками.
type App struct {
	*Dependencies
	Config Config
	// RunID отличает записи логов одного запуска.
	RunID string
}

// Open создаёт отсутствующие файлы данных и загружает все хранилища.
func Open(cfg Config, logger *log.Logger, opts ...sales.OrderOption) (*App, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	runID := uuid.NewString()
	entry := logger.WithFields(log.Fields{"component": "app", "run_id": runID})

	deps := NewDependencies(cfg, entry, opts...)
	if err := deps.Book.EnsureFiles(); err != nil {
		return nil, fmt.Errorf("prepare data files: %w", err)
	}
	if err := deps.Book.Load(); err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}

	entry.WithFields(log.Fields{
		"data_dir":  cfg.resolve(cfg.DataDir),
		"customers": deps.Book.Customers.Len(),
		"products":  deps.Book.Products.Len(),
		"orders":    deps.Book.Orders.Len(),
	}).Debug("sales book opened")

	return &App{Dependencies: deps, Config: cfg, RunID: runID}, nil
}

// Close выгружает накопленные метрики, если задан metrics_file.
func (a *App) Close() error {
	path := a.Config.MetricsPath()
	if path == "" {
		return nil
	}
	if err := metrics.WriteTextfile(path, a.Registry); err != nil {
		a.Logger.WithError(err).Warn("failed to write metrics file")
		return err
	}
	a.Logger.WithField("file", path).Debug("metrics written")
	return nil
}
