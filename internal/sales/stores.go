package sales

import (
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/salesbook/internal/domain"
	"github.com/vladislavdragonenkov/salesbook/internal/metrics"
	"github.com/vladislavdragonenkov/salesbook/internal/storage/filestore"
)

var (
	_ domain.Repository[domain.Customer] = (*CustomerStore)(nil)
	_ domain.Repository[domain.Product]  = (*ProductStore)(nil)
	_ domain.Repository[domain.LineItem] = (*LineItemStore)(nil)
)

// CustomerStore хранит покупателей.
type CustomerStore struct {
	*filestore.Store[domain.Customer]
}

// NewCustomerStore создаёт хранилище покупателей поверх файла path.
func NewCustomerStore(path string, logger *log.Entry, m *metrics.StoreMetrics) *CustomerStore {
	return &CustomerStore{filestore.New(path, filestore.Schema[domain.Customer]{
		Name:     "customers",
		Fields:   domain.CustomerFields,
		Decode:   domain.CustomerFromRow,
		Validate: domain.Customer.Validate,
	}, logger, m)}
}

// Search ищет подстроку без учёта регистра в ФИО, телефоне и email.
// Пустой запрос возвращает копию всей коллекции.
func (s *CustomerStore) Search(text string) []domain.Customer {
	needle, ok := normalizeQuery(text)
	if !ok {
		return slices.Clone(s.All())
	}
	return s.Filter(func(c domain.Customer) bool {
		return containsAny(needle, c.LastName, c.FirstName, c.MiddleName, c.Phone, c.Email)
	})
}

// ProductStore хранит товары.
type ProductStore struct {
	*filestore.Store[domain.Product]
}

// NewProductStore создаёт хранилище товаров поверх файла path.
func NewProductStore(path string, logger *log.Entry, m *metrics.StoreMetrics) *ProductStore {
	return &ProductStore{filestore.New(path, filestore.Schema[domain.Product]{
		Name:     "products",
		Fields:   domain.ProductFields,
		Decode:   domain.ProductFromRow,
		Validate: domain.Product.Validate,
	}, logger, m)}
}

// Search ищет подстроку без учёта регистра в названии и единице измерения.
func (s *ProductStore) Search(text string) []domain.Product {
	needle, ok := normalizeQuery(text)
	if !ok {
		return slices.Clone(s.All())
	}
	return s.Filter(func(p domain.Product) bool {
		return containsAny(needle, p.Name, p.Unit)
	})
}

// LineItemStore хранит позиции заказов.
type LineItemStore struct {
	*filestore.Store[domain.LineItem]
}

// NewLineItemStore создаёт хранилище позиций заказов поверх файла path.
func NewLineItemStore(path string, logger *log.Entry, m *metrics.StoreMetrics) *LineItemStore {
	return &LineItemStore{filestore.New(path, filestore.Schema[domain.LineItem]{
		Name:     "order_items",
		Fields:   domain.LineItemFields,
		Decode:   domain.LineItemFromRow,
		Validate: domain.LineItem.Validate,
	}, logger, m)}
}

// ItemsByOrder возвращает позиции заказа в порядке добавления.
func (s *LineItemStore) ItemsByOrder(orderID string) []domain.LineItem {
	return s.Filter(func(item domain.LineItem) bool {
		return item.OrderID == orderID
	})
}

func normalizeQuery(text string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(text))
	return needle, needle != ""
}

func containsAny(needle string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
