package sales

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/salesbook/internal/domain"
	"github.com/vladislavdragonenkov/salesbook/internal/metrics"
)

// Paths задаёт файлы хранилищ.
type Paths struct {
	Customers string
	Products  string
	Orders    string
	LineItems string
}

// OrderLine — строка оформляемого заказа: товар и количество.
type OrderLine struct {
	ProductID string
	Quantity  int
}

// Book объединяет хранилища покупателей, товаров и заказов
// и следит за связями между ними.
type Book struct {
	Customers *CustomerStore
	Products  *ProductStore
	Orders    *OrderStore
	logger    *log.Entry
}

// NewBook создаёт хранилища без чтения файлов.
func NewBook(paths Paths, logger *log.Entry, m *metrics.StoreMetrics, opts ...OrderOption) *Book {
	if logger == nil {
		logger = log.New().WithField("component", "book")
	}
	return &Book{
		Customers: NewCustomerStore(paths.Customers, logger, m),
		Products:  NewProductStore(paths.Products, logger, m),
		Orders:    NewOrderStore(paths.Orders, paths.LineItems, logger, m, opts...),
		logger:    logger,
	}
}

// OpenBook создаёт хранилища и загружает все файлы.
func OpenBook(paths Paths, logger *log.Entry, m *metrics.StoreMetrics, opts ...OrderOption) (*Book, error) {
	b := NewBook(paths, logger, m, opts...)
	if err := b.Load(); err != nil {
		return nil, err
	}
	return b, nil
}

// Load перечитывает все файлы.
func (b *Book) Load() error {
	_, customersErr := b.Customers.Load()
	_, productsErr := b.Products.Load()
	_, ordersErr := b.Orders.Load()
	return errors.Join(customersErr, productsErr, ordersErr)
}

// EnsureFiles создаёт отсутствующие файлы хранилищ с одной строкой заголовка.
func (b *Book) EnsureFiles() error {
	type saver interface {
		Path() string
		Save() error
	}

	var errs []error
	for _, s := range []saver{b.Customers, b.Products, b.Orders, b.Orders.LineItems()} {
		_, err := os.Stat(s.Path())
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		if dir := filepath.Dir(s.Path()); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				errs = append(errs, fmt.Errorf("create data dir: %w", err))
				continue
			}
		}
		if err := s.Save(); err != nil {
			errs = append(errs, err)
			continue
		}
		b.logger.WithField("file", s.Path()).Info("data file created")
	}
	return errors.Join(errs...)
}

// DeleteCustomer удаляет покупателя, если на него не ссылается ни один заказ.
func (b *Book) DeleteCustomer(id string) error {
	if orders := b.Orders.OrdersByCustomer(id); len(orders) > 0 {
		return fmt.Errorf("%w: customer %s has %d orders", domain.ErrCustomerHasOrders, id, len(orders))
	}
	return b.Customers.Delete(id)
}

// PlaceOrder оформляет заказ по текущим ценам товаров: цена и сумма позиции
// фиксируются в заказе, в заказ записывается снимок данных покупателя.
func (b *Book) PlaceOrder(customerID string, lines []OrderLine) (domain.Order, error) {
	customerID = strings.TrimSpace(customerID)
	customer, ok := b.Customers.FindByID(customerID)
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrUnknownCustomer, customerID)
	}
	if len(lines) == 0 {
		return domain.Order{}, domain.ErrOrderLinesRequired
	}

	var total float64
	items := make([]NewLineItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("%w: product %s", domain.ErrQuantityNotPositive, line.ProductID)
		}
		product, ok := b.Products.FindByID(strings.TrimSpace(line.ProductID))
		if !ok {
			return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrUnknownProduct, line.ProductID)
		}
		price, ok := domain.ParseDecimal(product.Price)
		if !ok {
			return domain.Order{}, fmt.Errorf("%w: product %s price %q", domain.ErrMalformedField, product.ID, product.Price)
		}

		lineTotal := float64(line.Quantity) * price
		total += lineTotal
		items = append(items, NewLineItem{
			ProductID: product.ID,
			Quantity:  line.Quantity,
			Price:     price,
			Total:     lineTotal,
		})
	}

	return b.Orders.CreateOrder(customer.ID, total, customer.Info(), items)
}

// OrderDetails — заказ вместе с позициями и названиями товаров.
type OrderDetails struct {
	Order domain.Order
	Items []LineDetails
}

// LineDetails — позиция заказа с данными товара; товар мог быть удалён после заказа.
type LineDetails struct {
	domain.LineItem
	ProductName string
	Unit        string
}

// OrderDetails собирает заказ с позициями.
func (b *Book) OrderDetails(orderID string) (OrderDetails, error) {
	order, ok := b.Orders.FindByID(orderID)
	if !ok {
		return OrderDetails{}, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
	}

	details := OrderDetails{Order: order}
	for _, item := range b.Orders.OrderItems(order.ID) {
		line := LineDetails{LineItem: item}
		if product, ok := b.Products.FindByID(item.ProductID); ok {
			line.ProductName = product.Name
			line.Unit = product.Unit
		}
		details.Items = append(details.Items, line)
	}
	return details, nil
}

// Since возвращает заказы, оформленные не раньше from.
func (b *Book) Since(from time.Time) ([]domain.Order, error) {
	var out []domain.Order
	for _, order := range b.Orders.All() {
		date, err := order.Date()
		if err != nil {
			return nil, err
		}
		if !date.Before(from) {
			out = append(out, order)
		}
	}
	return out, nil
}
