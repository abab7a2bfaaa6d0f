package money

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Monies holds at most one Money per currency. The zero value is empty and
// ready to use; all operations return a new value.
type Monies struct {
	values map[string]Money
}

// NewMonies builds a Monies from the given values, merging equal currencies.
func NewMonies(values ...Money) Monies {
	var r Monies
	for _, v := range values {
		r = r.Add(v)
	}
	return r
}

func (ms Monies) clone() Monies {
	values := make(map[string]Money, len(ms.values)+1)
	for k, v := range ms.values {
		values[k] = v
	}
	return Monies{values: values}
}

// Add merges m into the aggregate, creating a zero entry for unseen currencies.
func (ms Monies) Add(m Money) Monies {
	r := ms.clone()
	cur := r.values[m.Currency]
	cur.Currency = m.Currency
	cur.Amount += m.Amount
	r.values[m.Currency] = cur
	return r
}

// Subtract removes m from the aggregate, creating a zero entry for unseen currencies.
func (ms Monies) Subtract(m Money) Monies {
	return ms.Add(m.Negate())
}

// AddAll merges every currency of o.
func (ms Monies) AddAll(o Monies) Monies {
	r := ms
	for _, c := range o.Currencies() {
		r = r.Add(o.values[c])
	}
	return r
}

// SubtractAll removes every currency of o.
func (ms Monies) SubtractAll(o Monies) Monies {
	return ms.AddAll(o.Negate())
}

// Negate flips the sign of every entry.
func (ms Monies) Negate() Monies {
	r := Monies{values: make(map[string]Money, len(ms.values))}
	for k, v := range ms.values {
		r.values[k] = v.Negate()
	}
	return r
}

// Get returns the entry for currency, or a zero amount.
func (ms Monies) Get(currency string) Money {
	if v, ok := ms.values[currency]; ok {
		return v
	}
	return Money{Currency: currency}
}

// Currencies returns the currency codes present, sorted.
func (ms Monies) Currencies() []string {
	keys := lo.Keys(ms.values)
	slices.Sort(keys)
	return keys
}

// Values returns the entries ordered by currency.
func (ms Monies) Values() []Money {
	return lo.Map(ms.Currencies(), func(c string, _ int) Money {
		return ms.values[c]
	})
}

func (ms Monies) Len() int { return len(ms.values) }

// Equal compares two aggregates. Zero entries are significant.
func (ms Monies) Equal(o Monies) bool {
	if len(ms.values) != len(o.values) {
		return false
	}
	for k, v := range ms.values {
		if ov, ok := o.values[k]; !ok || !ov.Equal(v) {
			return false
		}
	}
	return true
}

func (ms Monies) String() string {
	parts := lo.Map(ms.Values(), func(m Money, _ int) string { return m.String() })
	return strings.Join(parts, ", ")
}
