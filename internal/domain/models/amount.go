package models

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNotANumber is returned by ParseAmount for text that is not a finite number.
var ErrNotANumber = errors.New("not a number")

// ParseAmount reads a form-entered amount. Blank input is zero and a comma
// is accepted as decimal separator.
func ParseAmount(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotANumber
	}
	return v, nil
}
