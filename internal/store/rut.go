package store

import (
	"fmt"
	"strings"
)

// NormalizeRUT 校验智利 RUT 的模 11 校验位，返回去掉格式符的规范形式（如 123456785）。
// 输入允许带点和横杠（12.345.678-5）。
func NormalizeRUT(raw string) (string, error) {
	var clean []byte
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			clean = append(clean, byte(r))
		case r == 'k':
			clean = append(clean, 'K')
		case r == 'K':
			clean = append(clean, 'K')
		case r == '.' || r == '-':
			// 格式符，忽略。
		default:
			return "", fmt.Errorf("invalid rut")
		}
	}
	if len(clean) < 8 {
		return "", fmt.Errorf("invalid rut")
	}

	body := clean[:len(clean)-1]
	dv := clean[len(clean)-1]

	sum := 0
	multiplier := 2
	for i := len(body) - 1; i >= 0; i-- {
		if body[i] < '0' || body[i] > '9' {
			return "", fmt.Errorf("invalid rut")
		}
		sum += int(body[i]-'0') * multiplier
		multiplier++
		if multiplier > 7 {
			multiplier = 2
		}
	}

	var want byte
	switch expected := 11 - (sum % 11); expected {
	case 11:
		want = '0'
	case 10:
		want = 'K'
	default:
		want = byte('0' + expected)
	}
	if dv != want {
		return "", fmt.Errorf("invalid rut")
	}
	return string(clean), nil
}
