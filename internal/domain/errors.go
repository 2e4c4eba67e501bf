package domain

import (
	"errors"
	"strings"
)

var (
	// Ошибка отсутствующей фамилии покупателя.
	ErrLastNameRequired = errors.New("last_name is required")
	// Ошибка отсутствующего имени покупателя.
	ErrFirstNameRequired = errors.New("first_name is required")
	// Ошибка отсутствующего телефона.
	ErrPhoneRequired = errors.New("phone is required")
	// Телефон не соответствует формату +7(999)123-45-67 / 89991234567.
	ErrPhoneInvalid = errors.New("phone has invalid format, e.g. +7(999)123-45-67 or 89991234567")
	// Email заполнен, но не соответствует формату local@domain.tld.
	ErrEmailInvalid = errors.New("email has invalid format, e.g. example@mail.ru")
	// Ошибка отсутствующего названия товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка отсутствующей единицы измерения.
	ErrUnitRequired = errors.New("unit is required")
	// Цена товара не является числом.
	ErrPriceNotNumber = errors.New("price must be a number")
	// Цена товара должна быть больше нуля.
	ErrPriceNotPositive = errors.New("price must be greater than zero")
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Сумма заказа не является числом.
	ErrTotalAmountNotNumber = errors.New("total_amount must be a number")
	// Сумма заказа должна быть больше нуля.
	ErrTotalAmountNotPositive = errors.New("total_amount must be greater than zero")
	// Количество в позиции заказа не является целым числом.
	ErrQuantityInvalid = errors.New("quantity must be an integer")
	// Цена позиции заказа не является числом.
	ErrItemPriceInvalid = errors.New("item price must be a number")
	// Сумма позиции заказа не является числом.
	ErrItemTotalInvalid = errors.New("item total must be a number")

	// ErrNotFound возвращается, если запись с указанным id отсутствует.
	ErrNotFound = errors.New("record not found")
	// ErrMalformedID сигнализирует о нечисловом id в уже сохранённых данных.
	ErrMalformedID = errors.New("record id is not an integer")
	// ErrMalformedField — нечисловое значение или дата в уже сохранённых данных.
	ErrMalformedField = errors.New("stored field is malformed")
	// ErrCustomerHasOrders запрещает удаление покупателя, на которого ссылаются заказы.
	ErrCustomerHasOrders = errors.New("customer has orders")
	// ErrUnknownCustomer — заказ оформляется на несуществующего покупателя.
	ErrUnknownCustomer = errors.New("customer not found")
	// ErrUnknownProduct — позиция ссылается на несуществующий товар.
	ErrUnknownProduct = errors.New("product not found")
	// ErrOrderLinesRequired — заказ без единой позиции.
	ErrOrderLinesRequired = errors.New("order must contain at least one item")
	// ErrQuantityNotPositive — количество товара в заказе должно быть больше нуля.
	ErrQuantityNotPositive = errors.New("quantity must be greater than zero")
	// ErrUnsupportedSortKey — неизвестный ключ сортировки заказов.
	ErrUnsupportedSortKey = errors.New("unsupported sort key")
)

// ValidationError собирает все нарушенные правила записи.
type ValidationError struct {
	Entity     string
	Violations []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Error())
	}
	return "invalid " + e.Entity + ": " + strings.Join(msgs, "; ")
}

// Unwrap позволяет проверять отдельные нарушения через errors.Is.
func (e *ValidationError) Unwrap() []error {
	return e.Violations
}

// IsValidation проверяет, является ли ошибка ошибкой валидации.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
