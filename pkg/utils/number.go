package utils

import (
	"fmt"
	"math"
)

// RoundTwo rounds to two decimal places.
func RoundTwo(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatVolume renders a share volume in 億 (hundred million) units when large
// enough, matching how Taiwan market volume is usually displayed.
func FormatVolume(v float64) string {
	if v >= 1e8 {
		return fmt.Sprintf("%.2f億", v/1e8)
	}
	if v >= 1e4 {
		return fmt.Sprintf("%.2f萬", v/1e4)
	}
	return fmt.Sprintf("%.0f", v)
}
