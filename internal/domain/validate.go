package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Правила записей задаются тегами `validate`:
//
//	notblank  — непустое значение после обрезки пробелов
//	phone     — мобильный номер (ValidatePhone)
//	emailaddr — пусто или адрес (ValidateEmail)
//	decimal   — десятичное число (ParseDecimal)
//	positive  — десятичное число больше нуля
//	integer   — целое число (ParseInt)
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		return name
	})

	rules := map[string]validator.Func{
		"notblank": validators.NotBlank,
		"phone": func(fl validator.FieldLevel) bool {
			return ValidatePhone(strings.TrimSpace(fl.Field().String()))
		},
		"emailaddr": func(fl validator.FieldLevel) bool {
			email := strings.TrimSpace(fl.Field().String())
			return email == "" || ValidateEmail(email)
		},
		"decimal": func(fl validator.FieldLevel) bool {
			_, ok := ParseDecimal(fl.Field().String())
			return ok
		},
		"positive": func(fl validator.FieldLevel) bool {
			v, ok := ParseDecimal(fl.Field().String())
			return ok && v > 0
		},
		"integer": func(fl validator.FieldLevel) bool {
			_, ok := ParseInt(fl.Field().String())
			return ok
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}
	return v
}

// violation — поле записи и нарушенное им правило.
type violation struct {
	field string
	tag   string
}

// validateRecord проверяет запись по тегам и переводит нарушения в доменные ошибки.
// Нарушения идут в порядке полей; на каждое поле не больше одного.
func validateRecord(record any, known map[violation]error) []error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []error{err}
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if mapped, ok := known[violation{field: fe.Field(), tag: fe.Tag()}]; ok {
			errs = append(errs, mapped)
			continue
		}
		errs = append(errs, fmt.Errorf("%s fails %s", fe.Field(), fe.Tag()))
	}
	return errs
}
