package util

import (
	"strings"
)

// NormalizeParts 去除首尾空白、空项与重复项，保留首次出现的顺序
func NormalizeParts(raw []string) []string {
	partSet := make(map[string]struct{}, len(raw))
	parts := make([]string, 0, len(raw))

	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, exists := partSet[p]; exists {
			continue
		}
		partSet[p] = struct{}{}
		parts = append(parts, p)
	}

	return parts
}

// PtrInt 用于将 int 转换为 *int
func PtrInt(i int) *int {
	return &i
}

// PtrString 用于将 string 转换为 *string
func PtrString(s string) *string {
	return &s
}

// PtrFloat64 用于将 float64 转换为 *float64
func PtrFloat64(f float64) *float64 {
	return &f
}
