package util

import (
	"fmt"
	"strings"
)

// FormatThousands 将数值格式化为带千位分隔符、无小数位的字符串（例如 9000 -> "9,000"）。
// 用于提示词中的金额展示。
func FormatThousands(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	whole := fmt.Sprintf("%.0f", amount)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return b.String()
}
