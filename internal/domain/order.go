package domain

import (
	"fmt"
	"time"
)

// OrderDateLayout — формат даты заказа в файле: YYYY-MM-DD HH:MM:SS.
const OrderDateLayout = "2006-01-02 15:04:05"

var (
	// OrderFields — порядок колонок файла заказов.
	OrderFields = []string{"id", "customer_id", "total_amount", "order_date", "customer_info"}
	// LineItemFields — порядок колонок файла позиций заказов.
	LineItemFields = []string{"id", "order_id", "product_id", "quantity", "price", "total"}
)

// Order — заказ покупателя. CustomerInfo хранит снимок данных покупателя на момент заказа.
type Order struct {
	ID           string `json:"id"`
	CustomerID   string `json:"customer_id" validate:"notblank"`
	TotalAmount  string `json:"total_amount" validate:"decimal,positive"`
	OrderDate    string `json:"order_date"`
	CustomerInfo string `json:"customer_info"`
}

var orderViolations = map[violation]error{
	{field: "customer_id", tag: "notblank"}:  ErrCustomerRequired,
	{field: "total_amount", tag: "decimal"}:  ErrTotalAmountNotNumber,
	{field: "total_amount", tag: "positive"}: ErrTotalAmountNotPositive,
}

func (o Order) RecordID() string { return o.ID }

func (o Order) WithID(id string) Order {
	o.ID = id
	return o
}

func (o Order) Row() []string {
	return []string{o.ID, o.CustomerID, o.TotalAmount, o.OrderDate, o.CustomerInfo}
}

// OrderFromRow собирает заказ из строки файла.
func OrderFromRow(row map[string]string) Order {
	return Order{
		ID:           row["id"],
		CustomerID:   row["customer_id"],
		TotalAmount:  row["total_amount"],
		OrderDate:    row["order_date"],
		CustomerInfo: row["customer_info"],
	}
}

// Validate проверяет наличие покупателя и положительную сумму заказа.
func (o Order) Validate() []error {
	return validateRecord(o, orderViolations)
}

// Date разбирает дату заказа. Ошибка означает повреждённые сохранённые данные.
func (o Order) Date() (time.Time, error) {
	t, err := time.Parse(OrderDateLayout, o.OrderDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: order %s order_date %q", ErrMalformedField, o.ID, o.OrderDate)
	}
	return t, nil
}

// Amount разбирает сумму заказа.
func (o Order) Amount() (float64, error) {
	v, ok := ParseDecimal(o.TotalAmount)
	if !ok {
		return 0, fmt.Errorf("%w: order %s total_amount %q", ErrMalformedField, o.ID, o.TotalAmount)
	}
	return v, nil
}

// LineItem — позиция заказа. Цена и сумма фиксируются при создании заказа
// и не меняются вслед за ценой товара.
type LineItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Quantity  string `json:"quantity" validate:"integer"`
	Price     string `json:"price" validate:"decimal"`
	Total     string `json:"total" validate:"decimal"`
}

var lineItemViolations = map[violation]error{
	{field: "quantity", tag: "integer"}: ErrQuantityInvalid,
	{field: "price", tag: "decimal"}:    ErrItemPriceInvalid,
	{field: "total", tag: "decimal"}:    ErrItemTotalInvalid,
}

func (i LineItem) RecordID() string { return i.ID }

func (i LineItem) WithID(id string) LineItem {
	i.ID = id
	return i
}

func (i LineItem) Row() []string {
	return []string{i.ID, i.OrderID, i.ProductID, i.Quantity, i.Price, i.Total}
}

// LineItemFromRow собирает позицию заказа из строки файла.
func LineItemFromRow(row map[string]string) LineItem {
	return LineItem{
		ID:        row["id"],
		OrderID:   row["order_id"],
		ProductID: row["product_id"],
		Quantity:  row["quantity"],
		Price:     row["price"],
		Total:     row["total"],
	}
}

// Validate проверяет, что количество — целое число, а цена и сумма — числа.
func (i LineItem) Validate() []error {
	return validateRecord(i, lineItemViolations)
}
