// Package validation checks request payloads and models before they are
// persisted.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/diewo77/go-billing/internal/money"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("invalid_quantity")

// Violations maps a field name to a snake_case reason.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Error joins the violations in field order.
func (v Violations) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+" "+v[f])
	}
	return strings.Join(parts, "; ")
}

// Err returns nil when there are no violations.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// PositiveQuantity rejects zero and negative quantities.
func PositiveQuantity(field string, q decimal.Decimal, v Violations) {
	if !q.IsPositive() {
		v[field] = "must_be_positive"
	}
}

// Currency rejects codes that are not ISO 4217.
func Currency(field, code string, v Violations) {
	if !money.ValidCurrency(code) {
		v[field] = "invalid_currency"
	}
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
			return money.ValidCurrency(fl.Field().String())
		})
	})
	return validate
}

// Struct validates the `validate` tags of s and returns Violations keyed by
// json field name.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	v := Violations{}
	for _, fe := range fieldErrs {
		v[fe.Field()] = fe.Tag()
	}
	return v
}
