package money

import (
	"slices"

	"github.com/shopspring/decimal"
)

type bucketKey struct {
	rate     string
	currency string
}

// bucket keeps net and gross prices of one (rate, currency) apart. Each side
// is converted into the other kind once, on projection.
type bucket struct {
	rate     decimal.Decimal
	currency string
	net      int64
	gross    int64
}

func (b bucket) price(amount int64, k Kind) Price {
	return Price{Amount: amount, Currency: b.currency, Rate: b.rate, Kind: k}
}

func (b bucket) netAmount() int64 {
	return b.net + b.price(b.gross, Gross).AsNet().Amount
}

func (b bucket) grossAmount() int64 {
	return b.gross + b.price(b.net, Net).AsGross().Amount
}

// Prices groups Price values by (rate, currency). Amounts are summed in the
// kind they were given in, so a bucket of gross prices adds up to exactly the
// gross of its lines and the tax of a bucket is rounded once.
type Prices struct {
	buckets map[bucketKey]bucket
}

// NewPrices builds an aggregate from the given prices.
func NewPrices(ps ...Price) Prices {
	var r Prices
	for _, p := range ps {
		r = r.Add(p)
	}
	return r
}

func (ps Prices) clone() Prices {
	buckets := make(map[bucketKey]bucket, len(ps.buckets)+1)
	for k, v := range ps.buckets {
		buckets[k] = v
	}
	return Prices{buckets: buckets}
}

func keyOf(p Price) bucketKey {
	return bucketKey{rate: p.Rate.String(), currency: p.Currency}
}

// Add puts p into its (rate, currency) bucket, creating the bucket if needed.
func (ps Prices) Add(p Price) Prices {
	r := ps.clone()
	k := keyOf(p)
	b, ok := r.buckets[k]
	if !ok {
		b = bucket{rate: p.Rate, currency: p.Currency}
	}
	if p.kind() == Gross {
		b.gross += p.Amount
	} else {
		b.net += p.Amount
	}
	r.buckets[k] = b
	return r
}

// Subtract removes p from its bucket.
func (ps Prices) Subtract(p Price) Prices {
	return ps.Add(p.Negate())
}

// Net sums the net amount of every bucket per currency.
func (ps Prices) Net() Monies {
	var r Monies
	for _, b := range ps.list() {
		r = r.Add(Money{Amount: b.netAmount(), Currency: b.currency})
	}
	return r
}

// Gross sums the gross amount of every bucket per currency.
func (ps Prices) Gross() Monies {
	var r Monies
	for _, b := range ps.list() {
		r = r.Add(Money{Amount: b.grossAmount(), Currency: b.currency})
	}
	return r
}

// Sum returns the net price of every bucket keyed by rate and currency.
func (ps Prices) Sum() map[string]map[string]Price {
	r := make(map[string]map[string]Price)
	for k, b := range ps.buckets {
		if r[k.rate] == nil {
			r[k.rate] = make(map[string]Price)
		}
		r[k.rate][k.currency] = b.price(b.netAmount(), Net)
	}
	return r
}

// Taxes returns the tax portion per rate. Zero rates are left out.
func (ps Prices) Taxes() map[string]Monies {
	r := make(map[string]Monies)
	for _, b := range ps.list() {
		if b.rate.IsZero() {
			continue
		}
		k := b.rate.String()
		r[k] = r[k].Add(Money{Amount: b.grossAmount() - b.netAmount(), Currency: b.currency})
	}
	return r
}

// TotalTax sums Taxes over every rate.
func (ps Prices) TotalTax() Monies {
	var r Monies
	for _, b := range ps.list() {
		r = r.Add(Money{Amount: b.grossAmount() - b.netAmount(), Currency: b.currency})
	}
	return r
}

// Rates returns the distinct rates present, ascending.
func (ps Prices) Rates() []decimal.Decimal {
	seen := map[string]decimal.Decimal{}
	for k, b := range ps.buckets {
		seen[k.rate] = b.rate
	}
	out := make([]decimal.Decimal, 0, len(seen))
	for _, r := range seen {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b decimal.Decimal) int { return a.Cmp(b) })
	return out
}

// list returns the buckets in a stable order (rate, then currency).
func (ps Prices) list() []bucket {
	out := make([]bucket, 0, len(ps.buckets))
	for _, b := range ps.buckets {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b bucket) int {
		if c := a.rate.Cmp(b.rate); c != 0 {
			return c
		}
		switch {
		case a.currency < b.currency:
			return -1
		case a.currency > b.currency:
			return 1
		}
		return 0
	})
	return out
}
