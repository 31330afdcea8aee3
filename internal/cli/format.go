package cli

import (
	"math"
	"strconv"
	"strings"
)

// maxUsagePercent は表示上の使用率の上限。
const maxUsagePercent = 999

// FormatNumber は整数に3桁区切りのカンマを入れる。
func FormatNumber(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}

// FormatTWD は台湾ドルの金額を四捨五入して表示する。
func FormatTWD(v float64) string {
	return "NT$" + FormatNumber(int64(math.Round(v)))
}

// FormatKRW はウォンの金額を四捨五入して表示する。
func FormatKRW(v float64) string {
	return "₩" + FormatNumber(int64(math.Round(v)))
}

// ClampUsage は使用率を表示用に0〜999へ丸める。
func ClampUsage(percent float64) float64 {
	if math.IsNaN(percent) || percent < 0 {
		return 0
	}
	return math.Min(percent, maxUsagePercent)
}

// FormatPercent は小数第1位までのパーセント表示。
func FormatPercent(percent float64) string {
	return strconv.FormatFloat(percent, 'f', 1, 64) + "%"
}
