package domain

import (
	"math"
	"strconv"
	"strings"
)

// ProductFields — порядок колонок файла товаров.
var ProductFields = []string{"id", "name", "price", "unit"}

// Product — товар каталога.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name" validate:"notblank"`
	Price string `json:"price" validate:"decimal,positive"`
	Unit  string `json:"unit" validate:"notblank"`
}

var productViolations = map[violation]error{
	{field: "name", tag: "notblank"}:  ErrProductNameRequired,
	{field: "price", tag: "decimal"}:  ErrPriceNotNumber,
	{field: "price", tag: "positive"}: ErrPriceNotPositive,
	{field: "unit", tag: "notblank"}:  ErrUnitRequired,
}

func (p Product) RecordID() string { return p.ID }

func (p Product) WithID(id string) Product {
	p.ID = id
	return p
}

func (p Product) Row() []string {
	return []string{p.ID, p.Name, p.Price, p.Unit}
}

// ProductFromRow собирает товар из строки файла.
func ProductFromRow(row map[string]string) Product {
	return Product{
		ID:    row["id"],
		Name:  row["name"],
		Price: row["price"],
		Unit:  row["unit"],
	}
}

// Validate проверяет товар: название, положительная цена и единица измерения.
func (p Product) Validate() []error {
	return validateRecord(p, productViolations)
}

// ParseDecimal разбирает десятичное число, допуская пробелы по краям.
// NaN и бесконечности числами не считаются.
func ParseDecimal(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseInt разбирает целое число, допуская пробелы по краям.
func ParseInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatAmount форматирует денежную величину с двумя знаками после точки.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
