package upload

import (
	"math"
	"strconv"
)

// ProgressPercent reports how much of the file has been staged, rounded to
// two decimal places. It returns exactly 100 only when every byte is in; a
// value that rounds up to 100 early would let the page show a finished bar
// for an unfinished upload.
func ProgressPercent(sent, total int64) float64 {
	if total <= 0 {
		return 0
	}
	if sent >= total {
		return 100
	}
	pct := math.Round(float64(sent)/float64(total)*10000) / 100
	if pct >= 100 {
		pct = 99.99
	}
	return pct
}

// FormatProgress renders a percent with its two decimals kept, "50.00" not
// "50".
func FormatProgress(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 2, 64)
}
