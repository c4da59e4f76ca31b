package rag

import (
	"regexp"
	"strconv"
	"strings"
)

// priceNumeral extracts the leading numeral of a display price, tolerating a
// currency prefix and comma grouping ("₹12,990", "Rs. 1,299", "10999").
var priceNumeral = regexp.MustCompile(`([0-9][0-9,]*)`)

// ParsePrice extracts an integer price from a display price string. The
// second return is false when no numeral is found.
func ParsePrice(price string) (int, bool) {
	m := priceNumeral.FindStringSubmatch(price)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}
