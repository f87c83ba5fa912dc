// Package money centralises parsing and formatting of the currency
// amounts that appear throughout the transfer API. Historically these
// values arrived as free text ("$5M", "5,000,000", "$1.5m") and were
// parsed ad hoc at every call site; this package defines the grammar
// once and stores amounts canonically as integer cents.
//
// Grammar (case-insensitive):
//
//	amount   = ["$"] digits [","-separated groups] ["." frac] [suffix]
//	suffix   = "K" | "M"
//
// A fractional part of more than two digits is only allowed together
// with a suffix ("$1.255M"); bare amounts may carry at most cents.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidAmount is returned when the input does not match the
// amount grammar or parses to a negative value.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseCents parses a currency string into integer cents.
func ParseCents(s string) (int64, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidAmount
	}

	mult := int64(1)
	switch {
	case strings.HasSuffix(strings.ToUpper(raw), "M"):
		mult = 1_000_000
		raw = raw[:len(raw)-1]
	case strings.HasSuffix(strings.ToUpper(raw), "K"):
		mult = 1_000
		raw = raw[:len(raw)-1]
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidAmount
	}

	intPart := raw
	fracPart := ""
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		intPart, fracPart = raw[:i], raw[i+1:]
		if fracPart == "" {
			return 0, ErrInvalidAmount
		}
	}

	units, err := parseGrouped(intPart)
	if err != nil {
		return 0, err
	}
	if units > math.MaxInt64/(100*mult) {
		return 0, ErrInvalidAmount
	}

	cents := units * 100 * mult
	if fracPart != "" {
		for _, r := range fracPart {
			if r < '0' || r > '9' {
				return 0, ErrInvalidAmount
			}
		}
		if mult == 1 {
			// Without a suffix the fraction is plain cents.
			if len(fracPart) > 2 {
				return 0, ErrInvalidAmount
			}
			if len(fracPart) == 1 {
				fracPart += "0"
			}
			f, _ := strconv.ParseInt(fracPart, 10, 64)
			if cents > math.MaxInt64-f {
				return 0, ErrInvalidAmount
			}
			cents += f
		} else {
			// With a suffix the fraction scales with the multiplier:
			// "1.5M" -> 1,500,000. Reject digits below cent precision.
			scale := mult * 100
			f, err := strconv.ParseInt(fracPart, 10, 64)
			if err != nil {
				return 0, ErrInvalidAmount
			}
			if f > math.MaxInt64/scale {
				return 0, ErrInvalidAmount
			}
			div := int64(1)
			for range fracPart {
				div *= 10
			}
			if (f*scale)%div != 0 {
				return 0, ErrInvalidAmount
			}
			add := f * scale / div
			if cents > math.MaxInt64-add {
				return 0, ErrInvalidAmount
			}
			cents += add
		}
	}
	if cents < 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// parseGrouped parses the integral part, accepting either no
// separators at all or well-formed 3-digit groups ("5,000,000").
func parseGrouped(s string) (int64, error) {
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		groups := strings.Split(s, ",")
		for i, g := range groups {
			if i == 0 {
				if len(g) == 0 || len(g) > 3 {
					return 0, ErrInvalidAmount
				}
			} else if len(g) != 3 {
				return 0, ErrInvalidAmount
			}
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, ErrInvalidAmount
	}
	return n, nil
}

// FormatCents renders cents as a dollar string with thousands
// separators, e.g. 500000000 -> "$5,000,000". Cents are shown only
// when non-zero.
func FormatCents(cents int64) string {
	units := cents / 100
	rem := cents % 100
	out := "$" + group(units)
	if rem != 0 {
		out += fmt.Sprintf(".%02d", rem)
	}
	return out
}

func group(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
