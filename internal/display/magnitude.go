// Package display formats aggregate measures for metric cards.
package display

import (
	"strings"

	"github.com/shopspring/decimal"
)

var thousand = decimal.NewFromInt(1000)

// units are tried in order; a value that is still >= 1000 after the last
// unit is printed in millions.
var units = []string{"", "mil"}

const millions = "milhões"

// Magnitude scales a value into plain, thousands (mil) or millions (milhões)
// with two decimals, e.g. Magnitude(1500, "R$") == "R$ 1.50 mil".
func Magnitude(value decimal.Decimal, prefix string) string {
	for _, unit := range units {
		if value.LessThan(thousand) {
			return join(prefix, value.StringFixed(2), unit)
		}
		value = value.Div(thousand)
	}
	return join(prefix, value.StringFixed(2), millions)
}

// Count formats a record count with Magnitude and no prefix.
func Count(n int64) string {
	return Magnitude(decimal.NewFromInt(n), "")
}

func join(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
