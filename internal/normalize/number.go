package normalize

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
)

var currencyStripper = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", "¥", "", " ", "")

// ParseNumber coerces text to a nullable float. Blank, unparseable and
// non-finite values come back invalid instead of failing.
func ParseNumber(s string) sql.NullFloat64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullFloat64{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// ParseCurrency strips thousands separators and currency symbols, then
// parses like ParseNumber. "$55,000" is 55000.
func ParseCurrency(s string) sql.NullFloat64 {
	return ParseNumber(currencyStripper.Replace(s))
}
