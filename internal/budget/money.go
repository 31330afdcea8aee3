package budget

import (
	"math"

	"github.com/shopspring/decimal"
)

// round2 は小数第2位で四捨五入する。
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// ConvertKRWToTWD はウォン建て金額を基準レート（1TWDあたりのKRW）で台湾ドルに換算する。
// 結果は小数第2位で丸める。
func ConvertKRWToTWD(amountKRW, baseRate float64) float64 {
	return decimal.NewFromFloat(amountKRW).
		DivRound(decimal.NewFromFloat(baseRate), 8).
		Round(2).
		InexactFloat64()
}

// sumAmounts はfloat64の金額列を十進で合計する。
func sumAmounts(values []float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}

// isPositive はvが有限かつ正であるかを返す。
func isPositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
