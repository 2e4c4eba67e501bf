package sales_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/salesbook/internal/domain"
	"github.com/vladislavdragonenkov/salesbook/internal/sales"
)

func testPaths(dir string) sales.Paths {
	return sales.Paths{
		Customers: filepath.Join(dir, "customers.csv"),
		Products:  filepath.Join(dir, "products.csv"),
		Orders:    filepath.Join(dir, "orders.csv"),
		LineItems: filepath.Join(dir, "order_items.csv"),
	}
}

func newBook(t *testing.T) *sales.Book {
	t.Helper()
	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.Local)
	book, err := sales.OpenBook(testPaths(t.TempDir()), quietLogger(), nil, sales.WithClock(fixedClock(now)))
	require.NoError(t, err)

	_, err = book.Customers.Add(domain.Customer{
		LastName: "Иванов", FirstName: "Иван", MiddleName: "Петрович",
		Phone: "89991234567", Email: "ivanov@mail.ru",
	})
	require.NoError(t, err)
	_, err = book.Products.Add(domain.Product{Name: "Чай", Price: "120.50", Unit: "шт"})
	require.NoError(t, err)
	_, err = book.Products.Add(domain.Product{Name: "Сахар", Price: "75", Unit: "кг"})
	require.NoError(t, err)
	return book
}

func TestBook_EnsureFilesCreatesHeaders(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	book := sales.NewBook(testPaths(dir), quietLogger(), nil)

	require.NoError(t, book.EnsureFiles())

	for name, header := range map[string]string{
		"customers.csv":   "id,last_name,first_name,middle_name,phone,email\n",
		"products.csv":    "id,name,price,unit\n",
		"orders.csv":      "id,customer_id,total_amount,order_date,customer_info\n",
		"order_items.csv": "id,order_id,product_id,quantity,price,total\n",
	} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, header, string(data), name)
	}
}

func TestBook_EnsureFilesKeepsExistingData(t *testing.T) {
	book := newBook(t)

	require.NoError(t, book.EnsureFiles())

	_, err := book.Products.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, book.Products.Len())
}

func TestBook_PlaceOrderSnapshotsPrices(t *testing.T) {
	book := newBook(t)

	order, err := book.PlaceOrder("1", []sales.OrderLine{
		{ProductID: "1", Quantity: 2},
		{ProductID: "2", Quantity: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, "466.00", order.TotalAmount)
	assert.Equal(t, "2024-05-01 12:30:00", order.OrderDate)
	assert.Equal(t, "Иванов Иван Петрович - 89991234567 - ivanov@mail.ru", order.CustomerInfo)

	items := book.Orders.OrderItems(order.ID)
	require.Len(t, items, 2)
	assert.Equal(t, "120.50", items[0].Price)
	assert.Equal(t, "241.00", items[0].Total)
	assert.Equal(t, "225.00", items[1].Total)

	// Изменение цены товара не влияет на позиции заказа.
	require.NoError(t, book.Products.Delete("1"))
	_, err = book.Products.Add(domain.Product{Name: "Чай", Price: "999", Unit: "шт"})
	require.NoError(t, err)
	assert.Equal(t, "120.50", book.Orders.OrderItems(order.ID)[0].Price)
}

func TestBook_PlaceOrderErrors(t *testing.T) {
	book := newBook(t)

	cases := []struct {
		name     string
		customer string
		lines    []sales.OrderLine
		want     error
	}{
		{name: "unknown customer", customer: "9", lines: []sales.OrderLine{{ProductID: "1", Quantity: 1}}, want: domain.ErrUnknownCustomer},
		{name: "no lines", customer: "1", want: domain.ErrOrderLinesRequired},
		{name: "unknown product", customer: "1", lines: []sales.OrderLine{{ProductID: "9", Quantity: 1}}, want: domain.ErrUnknownProduct},
		{name: "zero quantity", customer: "1", lines: []sales.OrderLine{{ProductID: "1", Quantity: 0}}, want: domain.ErrQuantityNotPositive},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := book.PlaceOrder(tc.customer, tc.lines)
			require.ErrorIs(t, err, tc.want)
			assert.Zero(t, book.Orders.Len())
		})
	}
}

func TestBook_DeleteCustomerGuard(t *testing.T) {
	book := newBook(t)
	_, err := book.PlaceOrder("1", []sales.OrderLine{{ProductID: "1", Quantity: 1}})
	require.NoError(t, err)

	err = book.DeleteCustomer("1")
	require.ErrorIs(t, err, domain.ErrCustomerHasOrders)
	assert.Equal(t, 1, book.Customers.Len())

	_, err = book.Customers.Add(domain.Customer{LastName: "Smith", FirstName: "John", Phone: "89990000000"})
	require.NoError(t, err)
	require.NoError(t, book.DeleteCustomer("2"))
	assert.Equal(t, 1, book.Customers.Len())

	require.ErrorIs(t, book.DeleteCustomer("42"), domain.ErrNotFound)
}

func TestBook_OrderDetails(t *testing.T) {
	book := newBook(t)
	order, err := book.PlaceOrder("1", []sales.OrderLine{{ProductID: "2", Quantity: 4}})
	require.NoError(t, err)

	details, err := book.OrderDetails(order.ID)
	require.NoError(t, err)
	require.Len(t, details.Items, 1)
	assert.Equal(t, "Сахар", details.Items[0].ProductName)
	assert.Equal(t, "кг", details.Items[0].Unit)

	_, err = book.OrderDetails("99")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBook_ReopenSeesPersistedState(t *testing.T) {
	dir := t.TempDir()
	book, err := sales.OpenBook(testPaths(dir), quietLogger(), nil)
	require.NoError(t, err)
	_, err = book.Customers.Add(domain.Customer{LastName: "A", FirstName: "B", Phone: "89990000000"})
	require.NoError(t, err)
	_, err = book.Products.Add(domain.Product{Name: "x", Price: "1", Unit: "pcs"})
	require.NoError(t, err)
	_, err = book.PlaceOrder("1", []sales.OrderLine{{ProductID: "1", Quantity: 1}})
	require.NoError(t, err)

	reopened, err := sales.OpenBook(testPaths(dir), quietLogger(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Customers.Len())
	assert.Equal(t, 1, reopened.Products.Len())
	assert.Equal(t, 1, reopened.Orders.Len())
	assert.Len(t, reopened.Orders.OrderItems("1"), 1)
}

func TestBook_Since(t *testing.T) {
	book := newBook(t)
	_, err := book.PlaceOrder("1", []sales.OrderLine{{ProductID: "1", Quantity: 1}})
	require.NoError(t, err)

	recent, err := book.Since(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	none, err := book.Since(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, none)
}
