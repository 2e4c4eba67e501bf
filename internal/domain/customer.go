package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// CustomerFields — порядок колонок файла покупателей.
var CustomerFields = []string{"id", "last_name", "first_name", "middle_name", "phone", "email"}

var (
	// Российский мобильный номер: +7 или 8, необязательные разделители, 10 цифр абонента.
	phonePattern = regexp.MustCompile(`^(\+7|8)[\s\-]?\(?\d{3}\)?[\s\-]?\d{3}[\s\-]?\d{2}[\s\-]?\d{2}$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Customer — покупатель.
type Customer struct {
	ID         string `json:"id"`
	LastName   string `json:"last_name" validate:"notblank"`
	FirstName  string `json:"first_name" validate:"notblank"`
	MiddleName string `json:"middle_name"`
	Phone      string `json:"phone" validate:"notblank,phone"`
	Email      string `json:"email" validate:"emailaddr"`
}

var customerViolations = map[violation]error{
	{field: "last_name", tag: "notblank"}:  ErrLastNameRequired,
	{field: "first_name", tag: "notblank"}: ErrFirstNameRequired,
	{field: "phone", tag: "notblank"}:      ErrPhoneRequired,
	{field: "phone", tag: "phone"}:         ErrPhoneInvalid,
	{field: "email", tag: "emailaddr"}:     ErrEmailInvalid,
}

func (c Customer) RecordID() string { return c.ID }

func (c Customer) WithID(id string) Customer {
	c.ID = id
	return c
}

func (c Customer) Row() []string {
	return []string{c.ID, c.LastName, c.FirstName, c.MiddleName, c.Phone, c.Email}
}

// CustomerFromRow собирает покупателя из строки файла; отсутствующие колонки дают пустые значения.
func CustomerFromRow(row map[string]string) Customer {
	return Customer{
		ID:         row["id"],
		LastName:   row["last_name"],
		FirstName:  row["first_name"],
		MiddleName: row["middle_name"],
		Phone:      row["phone"],
		Email:      row["email"],
	}
}

// Validate проверяет покупателя и возвращает все нарушения сразу.
func (c Customer) Validate() []error {
	return validateRecord(c, customerViolations)
}

// ValidatePhone сверяет номер с шаблоном мобильного телефона.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidateEmail сверяет адрес с шаблоном local@domain.tld.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Info формирует снимок данных покупателя, который сохраняется в заказе.
func (c Customer) Info() string {
	return fmt.Sprintf("%s %s %s - %s - %s", c.LastName, c.FirstName, c.MiddleName, c.Phone, c.Email)
}

// ShortName возвращает "Фамилия И.О.".
func (c Customer) ShortName() string {
	name := c.LastName
	if first := []rune(strings.TrimSpace(c.FirstName)); len(first) > 0 {
		name += " " + string(first[0]) + "."
	}
	if middle := []rune(strings.TrimSpace(c.MiddleName)); len(middle) > 0 {
		name += string(middle[0]) + "."
	}
	return name
}
