package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты операций хранилища для метки result.
const (
	ResultOK       = "ok"
	ResultInvalid  = "invalid"
	ResultError    = "error"
	ResultNotFound = "not_found"
)

// StoreMetrics содержит метрики файловых хранилищ записей.
type StoreMetrics struct {
	// Счётчик операций по хранилищу, операции и результату
	operations *prometheus.CounterVec
	// Нарушения правил валидации по хранилищу и тексту правила
	violations *prometheus.CounterVec

	// Количество записей в памяти
	records *prometheus.GaugeVec

	// Время перезаписи файла
	saveDuration *prometheus.HistogramVec

	// Заказы и позиции, созданные транзакцией заказа
	ordersCreated    prometheus.Counter
	ordersRolledBack prometheus.Counter
	lineItemsCreated prometheus.Counter
}

// NewStoreMetrics создаёт метрики, зарегистрированные в DefaultRegisterer.
func NewStoreMetrics() *StoreMetrics {
	return NewStoreMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewStoreMetricsWithRegisterer создаёт метрики в указанном реестре (для тестов и CLI).
func NewStoreMetricsWithRegisterer(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StoreMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "salesbook_store_operations_total",
			Help: "Total number of record store operations",
		}, []string{"store", "op", "result"}),
		violations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "salesbook_store_validation_violations_total",
			Help: "Total number of validation rule violations",
		}, []string{"store", "rule"}),
		records: registerGaugeVec(registerer, prometheus.GaugeOpts{
			Name: "salesbook_store_records",
			Help: "Number of records held in memory by a store",
		}, []string{"store"}),
		saveDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "salesbook_store_save_duration_seconds",
			Help:    "Duration of full-file store rewrites in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"store"}),
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "salesbook_orders_created_total",
			Help: "Total number of orders created together with their line items",
		}),
		ordersRolledBack: registerCounter(registerer, prometheus.CounterOpts{
			Name: "salesbook_orders_rolled_back_total",
			Help: "Total number of orders removed after a line item persistence failure",
		}),
		lineItemsCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "salesbook_line_items_created_total",
			Help: "Total number of line items persisted by order creation",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGaugeVec(registerer prometheus.Registerer, opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	collector := prometheus.NewGaugeVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.GaugeVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// Все методы допускают nil-получатель: хранилища создаются и без метрик.

// RecordOperation увеличивает счётчик операции хранилища.
func (m *StoreMetrics) RecordOperation(store, op, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(store, op, result).Inc()
}

// RecordViolations учитывает нарушенные правила валидации.
func (m *StoreMetrics) RecordViolations(store string, violations []error) {
	if m == nil {
		return
	}
	for _, v := range violations {
		m.violations.WithLabelValues(store, v.Error()).Inc()
	}
}

// SetRecords фиксирует текущее количество записей хранилища.
func (m *StoreMetrics) SetRecords(store string, n int) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(store).Set(float64(n))
}

// RecordSaveDuration записывает время перезаписи файла.
func (m *StoreMetrics) RecordSaveDuration(store string, duration time.Duration) {
	if m == nil {
		return
	}
	m.saveDuration.WithLabelValues(store).Observe(duration.Seconds())
}

// RecordOrderCreated учитывает созданный заказ и количество его позиций.
func (m *StoreMetrics) RecordOrderCreated(lineItems int) {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
	m.lineItemsCreated.Add(float64(lineItems))
}

// RecordOrderRolledBack учитывает откат заказа.
func (m *StoreMetrics) RecordOrderRolledBack() {
	if m == nil {
		return
	}
	m.ordersRolledBack.Inc()
}

// WriteTextfile выгружает метрики реестра в файл формата textfile collector.
func WriteTextfile(path string, gatherer prometheus.Gatherer) error {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
