package cart

import "github.com/shopspring/decimal"

// FormatAmount renders amount as symbol followed by exactly two fractional
// digits. Half-way cents round to the even neighbour: 0.125 -> 0.12, 0.135 -> 0.14.
func FormatAmount(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixedBank(2)
}
