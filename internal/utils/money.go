package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// MinorUnits converts a whole-currency price into minor units (paise).
func MinorUnits(major int64) int64 {
	return major * 100
}

// FormatMinor renders minor units as a decimal major amount, e.g. 150000 -> "1500.00".
func FormatMinor(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}

// FormatRupee renders minor units with thousand separators, e.g. 150000 -> "INR 1,500.00".
func FormatRupee(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%sINR %s.%02d", sign, formatThousand(amount/100), amount%100)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
