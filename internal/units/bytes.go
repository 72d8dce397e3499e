// Package units formats byte counts for display.
package units

import (
	"math"
	"strconv"
)

const DefaultDecimals = 2

// MaxPrecision bounds decimals; float64 carries no more significant digits.
const MaxPrecision = 15

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// Format is FormatBytes with DefaultDecimals.
func Format(bytes uint64) string {
	return FormatBytes(bytes, DefaultDecimals)
}

// FormatBytes renders bytes as "<value> <unit>" using powers of 1024. The
// value is rounded half away from zero to decimals places and printed
// without trailing zeros, so 1024 is "1 KB" and 1536 with one decimal is
// "1.5 KB". decimals outside [0, MaxPrecision] are clamped.
func FormatBytes(bytes uint64, decimals int) string {
	if bytes == 0 {
		return "0 Bytes"
	}
	if decimals < 0 {
		decimals = 0
	}
	if decimals > MaxPrecision {
		decimals = MaxPrecision
	}
	index := 0
	for rest := bytes; rest >= 1024 && index < len(byteUnits)-1; rest /= 1024 {
		index++
	}
	value := float64(bytes) / math.Pow(1024, float64(index))
	scale := math.Pow(10, float64(decimals))
	rounded := math.Round(value*scale) / scale
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + byteUnits[index]
}
