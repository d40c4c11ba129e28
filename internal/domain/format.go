package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var sizeUnits = []string{"bytes", "kB", "MB", "GB", "TB"}

// FormatQuantity scales value by the largest factor not exceeding it and
// renders "<rounded> <unit>". Values below the first factor use index 0.
// factors must be ascending.
func FormatQuantity(value float64, units []string, factors []float64, decimals int) (string, error) {
	if len(units) == 0 {
		return "", invalidQuantity(fmt.Errorf("units must not be empty: %w", ErrInvalidArgument))
	}
	if len(units) != len(factors) {
		return "", invalidQuantity(fmt.Errorf("units and factors must be of the same length: %w", ErrInvalidArgument))
	}

	index := len(factors) - 1
	for i, f := range factors {
		if value < f {
			index = i - 1
			break
		}
	}
	if index < 0 {
		index = 0
	}

	return formatRounded(value/factors[index], decimals) + " " + units[index], nil
}

func invalidQuantity(err error) error {
	return &OpError{Op: "format.quantity", Kind: KindInvalidArgument, Err: err}
}

// FormatSize renders a byte count using binary (1024) steps.
func FormatSize(sizeInBytes int64, decimals int) string {
	factors := make([]float64, len(sizeUnits))
	for i := range factors {
		factors[i] = math.Pow(1024, float64(i))
	}
	s, _ := FormatQuantity(float64(sizeInBytes), sizeUnits, factors, decimals)
	return s
}

func formatRounded(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	p := math.Pow(10, float64(decimals))
	// Halves go to the even neighbour: 1.125 kB renders as 1.12 kB.
	r := math.RoundToEven(v*p) / p

	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(r, 0) && !math.IsNaN(r) {
		s += ".0"
	}
	return s
}
