// Package numbering generates sequential reference numbers.
package numbering

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const (
	DefaultSort     = `^([0-9]{8,})$`
	DefaultExtract  = `^[0-9]{4}([0-9]{4,})$`
	DefaultGenerate = `{{ .Date.Format "2006" }}{{ printf "%04d" .Next }}`
)

var (
	ErrInvalidFormat   = errors.New("invalid_number_format")
	ErrCounterOverflow = errors.New("number_counter_overflow")
)

// Format configures a Generator. Sort selects the numbers taking part in the
// sequence and yields the sort key as first group, Extract yields the counter
// as first group and Generate is a text/template receiving Date and Next.
type Format struct {
	Sort     string
	Extract  string
	Generate string
}

// Generator computes the next number of a sequence.
type Generator struct {
	sort     *regexp.Regexp
	extract  *regexp.Regexp
	generate *template.Template
}

// New compiles the format. Empty fields use the defaults, which produce
// numbers like 20260001.
func New(f Format) (*Generator, error) {
	if f.Sort == "" {
		f.Sort = DefaultSort
	}
	if f.Extract == "" {
		f.Extract = DefaultExtract
	}
	if f.Generate == "" {
		f.Generate = DefaultGenerate
	}
	sortRe, err := regexp.Compile(f.Sort)
	if err != nil {
		return nil, fmt.Errorf("sort: %w: %v", ErrInvalidFormat, err)
	}
	extractRe, err := regexp.Compile(f.Extract)
	if err != nil {
		return nil, fmt.Errorf("extract: %w: %v", ErrInvalidFormat, err)
	}
	if extractRe.NumSubexp() < 1 {
		return nil, fmt.Errorf("extract needs a group: %w", ErrInvalidFormat)
	}
	tmpl, err := template.New("number").Option("missingkey=error").Parse(f.Generate)
	if err != nil {
		return nil, fmt.Errorf("generate: %w: %v", ErrInvalidFormat, err)
	}
	return &Generator{sort: sortRe, extract: extractRe, generate: tmpl}, nil
}

// MustNew is like New but panics on an invalid format.
func MustNew(f Format) *Generator {
	g, err := New(f)
	if err != nil {
		panic(err)
	}
	return g
}

// Next returns the number following the highest of existing. Numbers not
// matching the sort expression are ignored. A generated number the format
// cannot read back yields ErrCounterOverflow.
func (g *Generator) Next(existing []string, date time.Time) (string, error) {
	var last string
	var lastKey string
	for _, n := range existing {
		m := g.sort.FindStringSubmatch(n)
		if m == nil {
			continue
		}
		key := m[0]
		if len(m) > 1 {
			key = m[1]
		}
		if last == "" || keyLess(lastKey, key) {
			last, lastKey = n, key
		}
	}

	next := 1
	if last != "" {
		m := g.extract.FindStringSubmatch(last)
		if m == nil {
			return "", fmt.Errorf("extract from %q: %w", last, ErrInvalidFormat)
		}
		counter, err := strconv.Atoi(m[1])
		if err != nil {
			return "", fmt.Errorf("counter of %q: %w", last, ErrInvalidFormat)
		}
		next = counter + 1
	}

	var buf bytes.Buffer
	if err := g.generate.Execute(&buf, struct {
		Date time.Time
		Next int
	}{date, next}); err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	n := buf.String()
	if got, ok := g.counter(n); !ok || got != next {
		return "", fmt.Errorf("number %q for counter %d: %w", n, next, ErrCounterOverflow)
	}
	return n, nil
}

func (g *Generator) counter(n string) (int, bool) {
	if !g.sort.MatchString(n) {
		return 0, false
	}
	m := g.extract.FindStringSubmatch(n)
	if m == nil {
		return 0, false
	}
	c, err := strconv.Atoi(m[1])
	return c, err == nil
}

// keyLess orders digit-only keys numerically and everything else as strings.
func keyLess(a, b string) bool {
	if isDigits(a) && isDigits(b) {
		a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			return len(a) < len(b)
		}
	}
	return a < b
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
