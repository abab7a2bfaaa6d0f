package money

import (
	"strings"

	"github.com/biter777/countries"
)

// ValidCurrency reports whether code is a known ISO 4217 alphabetic code.
func ValidCurrency(code string) bool {
	if len(code) != 3 || strings.ToUpper(code) != code {
		return false
	}
	return countries.CurrencyCodeByName(code).IsValid()
}
