package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PointsEarnRate is the number of currency units that earn one loyalty point
const PointsEarnRate = 100

var hundred = decimal.NewFromInt(PointsEarnRate)

// FormatMoney renders an amount with two decimals and thousands separators,
// e.g. 1234.5 -> "1,234.50".
func FormatMoney(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}

	return sign + b.String() + "." + fracPart
}

// EarnedPoints returns floor(net / PointsEarnRate), never negative
func EarnedPoints(net decimal.Decimal) int64 {
	if !net.IsPositive() {
		return 0
	}
	return net.Div(hundred).Floor().IntPart()
}
