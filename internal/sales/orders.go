package sales

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/salesbook/internal/domain"
	"github.com/vladislavdragonenkov/salesbook/internal/metrics"
	"github.com/vladislavdragonenkov/salesbook/internal/storage/filestore"
)

// NewLineItem — позиция создаваемого заказа до присвоения id.
type NewLineItem struct {
	ProductID string
	Quantity  int
	Price     float64
	Total     float64
}

// OrderStore хранит заказы и владеет собственным хранилищем их позиций.
type OrderStore struct {
	*filestore.Store[domain.Order]
	items   *LineItemStore
	now     func() time.Time
	logger  *log.Entry
	metrics *metrics.StoreMetrics
}

// OrderOption настраивает OrderStore.
type OrderOption func(*OrderStore)

// WithClock подменяет источник текущего времени для даты заказа.
func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewOrderStore создаёт хранилище заказов и принадлежащее ему хранилище позиций.
func NewOrderStore(ordersPath, itemsPath string, logger *log.Entry, m *metrics.StoreMetrics, opts ...OrderOption) *OrderStore {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	s := &OrderStore{
		Store: filestore.New(ordersPath, filestore.Schema[domain.Order]{
			Name:     "orders",
			Fields:   domain.OrderFields,
			Decode:   domain.OrderFromRow,
			Validate: domain.Order.Validate,
		}, logger, m),
		items:   NewLineItemStore(itemsPath, logger, m),
		now:     time.Now,
		logger:  logger,
		metrics: m,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LineItems возвращает хранилище позиций, принадлежащее заказам.
func (s *OrderStore) LineItems() *LineItemStore {
	return s.items
}

// Load читает файлы заказов и позиций.
func (s *OrderStore) Load() ([]domain.Order, error) {
	orders, ordersErr := s.Store.Load()
	_, itemsErr := s.items.Load()
	return orders, errors.Join(ordersErr, itemsErr)
}

// CreateOrder создаёт заказ вместе с позициями.
//
// Все позиции проверяются до записи заказа: если хотя бы одна некорректна,
// не записывается ничего. Если позиции не удалось сохранить, заказ удаляется
// из файла заказов, и возвращается ошибка сохранения позиций.
func (s *OrderStore) CreateOrder(customerID string, totalAmount float64, customerInfo string, items []NewLineItem) (domain.Order, error) {
	order := domain.Order{
		CustomerID:   customerID,
		TotalAmount:  domain.FormatAmount(totalAmount),
		OrderDate:    s.now().Format(domain.OrderDateLayout),
		CustomerInfo: customerInfo,
	}
	if err := s.Validate(order); err != nil {
		return domain.Order{}, err
	}

	lineItems := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		lineItem := domain.LineItem{
			ProductID: item.ProductID,
			Quantity:  strconv.Itoa(item.Quantity),
			Price:     domain.FormatAmount(item.Price),
			Total:     domain.FormatAmount(item.Total),
		}
		if err := s.items.Validate(lineItem); err != nil {
			return domain.Order{}, err
		}
		lineItems = append(lineItems, lineItem)
	}

	order, err := s.Add(order)
	if err != nil {
		return domain.Order{}, err
	}

	for i := range lineItems {
		lineItems[i].OrderID = order.ID
	}
	if _, err := s.items.AddBatch(lineItems); err != nil {
		s.rollback(order, err)
		return domain.Order{}, fmt.Errorf("create order line items: %w", err)
	}

	s.metrics.RecordOrderCreated(len(lineItems))
	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"items":       len(lineItems),
	}).Info("order created")
	return order, nil
}

func (s *OrderStore) rollback(order domain.Order, cause error) {
	logger := s.logger.WithError(cause).WithField("order_id", order.ID)
	if err := s.Delete(order.ID); err != nil {
		// Заказ остаётся в файле без позиций.
		logger.WithField("rollback_error", err.Error()).Error("failed to roll back order")
		return
	}
	s.metrics.RecordOrderRolledBack()
	logger.Warn("order rolled back after line item failure")
}

// OrderItems возвращает позиции заказа.
func (s *OrderStore) OrderItems(orderID string) []domain.LineItem {
	return s.items.ItemsByOrder(orderID)
}

// OrdersByCustomer возвращает заказы покупателя в порядке добавления.
func (s *OrderStore) OrdersByCustomer(customerID string) []domain.Order {
	return s.Filter(func(o domain.Order) bool {
		return o.CustomerID == customerID
	})
}
