package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

// maxAmount - первое значение, не помещающееся в NUMERIC(14,2).
var maxAmount = decimal.New(1, 12)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct проверяет структуру и возвращает первую ошибку как *models.ValidationError.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return models.NewValidationError(fe.Field(), validationMessage(fe))
	}
	return models.NewValidationError("", err.Error())
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	}
	return "is invalid"
}

// validateAmount проверяет денежную сумму: знак, не больше двух знаков после запятой и диапазон NUMERIC(14,2).
// Сравнение идет в decimal без перевода во float64.
func validateAmount(field string, amount decimal.Decimal, allowZero bool) error {
	switch {
	case amount.IsNegative():
		return models.NewValidationError(field, "must not be negative")
	case !allowZero && !amount.IsPositive():
		return models.NewValidationError(field, "must be greater than 0")
	case !amount.Equal(amount.Truncate(2)):
		return models.NewValidationError(field, "must have at most 2 decimal places")
	case amount.GreaterThanOrEqual(maxAmount):
		return models.NewValidationError(field, "must be less than "+maxAmount.String())
	}
	return nil
}
