package utils

import (
	"fmt"
	"math"
)

// CommissionRate is the platform's cut on every settled payment.
const CommissionRate = 0.02

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// FormatAmount renders an amount with its currency code, e.g. "KES 1,234.50".
func FormatAmount(currency string, amount float64) string {
	return fmt.Sprintf("%s %s", currency, formatThousand(amount))
}

// SplitCommission derives the platform fee and the net amount owed to the
// fleet owner from a gross payment amount. Both values are rounded to two
// decimal places so the stored split always sums back to the gross amount.
func SplitCommission(amount float64) (fee, net float64) {
	fee = Round2(amount * CommissionRate)
	net = Round2(amount - fee)
	return fee, net
}

// Round2 rounds to two decimal places (cents).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatThousand(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	intPart := s[:len(s)-3]
	frac := s[len(s)-3:]
	neg := false
	if len(intPart) > 0 && intPart[0] == '-' {
		neg = true
		intPart = intPart[1:]
	}
	var out []byte
	n := len(intPart)
	for i := 0; i < n; i++ {
		out = append(out, intPart[i])
		pos := n - i - 1
		if pos > 0 && pos%3 == 0 {
			out = append(out, ',')
		}
	}
	if neg {
		return "-" + string(out) + frac
	}
	return string(out) + frac
}
