package common

import (
	"math"
	"strconv"
	"strings"

	"github.com/AlexZinkM/narwallet/internal/model"

	"github.com/holiman/uint256"
)

const (
	NearDecimals    = 24 // 1 NEAR = 10^24 yocto
	DisplayDecimals = 4  // wallet display precision
)

// ToYocto converts a NEAR amount with at most 4 decimals into a yocto string.
// Digits beyond DisplayDecimals are rounded away.
func ToYocto(amount float64) (string, error) {
	if !IsValidAmount(amount) {
		return "", model.NewValidationError("amount", "must be a finite, non-negative number")
	}

	scaled := math.Round(amount * math.Pow10(DisplayDecimals))
	if scaled == 0 {
		return "0", nil
	}
	return strconv.FormatFloat(scaled, 'f', 0, 64) + strings.Repeat("0", NearDecimals-DisplayDecimals), nil
}

// FromYocto converts a yocto string into NEAR, truncated to 4 decimals
func FromYocto(yocto string) (float64, error) {
	text, err := formatYocto(yocto)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(text, 64)
}

// FormatYocto renders a yocto string as NEAR text with 4 truncated decimals, no float involved.
// Example: FormatYocto("1234500000000000000000000") = "1.2345"
func FormatYocto(yocto string) (string, error) {
	return formatYocto(yocto)
}

// ParseYocto parses a yocto string into a 128-bit-bounded integer
func ParseYocto(yocto string) (*uint256.Int, error) {
	if err := checkYoctoDigits(yocto); err != nil {
		return nil, err
	}
	trimmed := strings.TrimLeft(yocto, "0")
	if trimmed == "" {
		trimmed = "0"
	}
	v, err := uint256.FromDecimal(trimmed)
	if err != nil {
		return nil, model.NewValidationError("amount", err.Error())
	}
	if v.BitLen() > 128 {
		return nil, model.NewValidationError("amount", "does not fit in 128 bits")
	}
	return v, nil
}

// NearToYocto is ToYocto followed by ParseYocto
func NearToYocto(amount float64) (*uint256.Int, error) {
	yocto, err := ToYocto(amount)
	if err != nil {
		return nil, err
	}
	return ParseYocto(yocto)
}

// formatYocto pads, inserts the decimal point and truncates the fraction.
// Example: formatYocto("5") = "0.0000"
func formatYocto(yocto string) (string, error) {
	if strings.Contains(yocto, ".") {
		return "", model.NewValidationError("amount", "a yocto string can't have a decimal point: "+yocto)
	}
	if err := checkYoctoDigits(yocto); err != nil {
		return "", err
	}

	padded := yocto
	if len(padded) < NearDecimals+1 {
		padded = strings.Repeat("0", NearDecimals+1-len(padded)) + padded
	}

	pos := len(padded) - NearDecimals
	return padded[:pos] + "." + padded[pos:pos+DisplayDecimals], nil
}

func checkYoctoDigits(yocto string) error {
	if yocto == "" {
		return model.NewValidationError("amount", "empty string")
	}
	for _, c := range yocto {
		if c < '0' || c > '9' {
			return model.NewValidationError("amount", "yocto amounts are plain integers: "+yocto)
		}
	}
	return nil
}
