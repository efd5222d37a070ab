// Package fixedpoint converts human decimal-string amounts to integer unit
// counts at a declared power-of-ten scale. Every amount that crosses the
// chain boundary goes through Encode.
package fixedpoint

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Encode parses amount and returns the number of integer units at the given
// scale. The fractional part is right-padded with zeros or truncated to
// exactly log10(scale) digits; digits beyond the declared precision are
// dropped, never rounded.
func Encode(amount string, scale uint64) (uint64, error) {
	precision, err := Precision(scale)
	if err != nil {
		return 0, err
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("%w: %q has more than one decimal point", apperrors.ErrMalformedAmount, amount)
	}

	units, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad integer part in %q", apperrors.ErrMalformedAmount, amount)
	}
	if units > math.MaxUint64/scale {
		return 0, fmt.Errorf("%w: %q at scale %d", apperrors.ErrAmountOverflow, amount, scale)
	}
	units *= scale

	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if len(frac) > precision {
		frac = frac[:precision]
	}
	for len(frac) < precision {
		frac += "0"
	}
	if frac != "" {
		fracUnits, err := strconv.ParseUint(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad fractional part in %q", apperrors.ErrMalformedAmount, amount)
		}
		if units > math.MaxUint64-fracUnits {
			return 0, fmt.Errorf("%w: %q at scale %d", apperrors.ErrAmountOverflow, amount, scale)
		}
		units += fracUnits
	}
	return units, nil
}

// Precision returns log10(scale), failing with ErrInvalidScale when scale is
// zero or not a power of ten.
func Precision(scale uint64) (int, error) {
	if scale == 0 {
		return 0, fmt.Errorf("%w: scale must be positive", apperrors.ErrInvalidScale)
	}
	precision := 0
	for n := scale; n > 1; n /= 10 {
		if n%10 != 0 {
			return 0, fmt.Errorf("%w: %d is not a power of ten", apperrors.ErrInvalidScale, scale)
		}
		precision++
	}
	return precision, nil
}

// Format renders integer units at the given scale back into a decimal string
// for display. There is no round-trip guarantee past the declared precision.
func Format(units uint64, scale uint64) (string, error) {
	precision, err := Precision(scale)
	if err != nil {
		return "", err
	}
	return decimal.NewFromUint64(units).Shift(int32(-precision)).String(), nil
}
