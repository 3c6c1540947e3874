package format

import (
	"math"
	"strconv"
	"strings"
)

var suffixes = []string{
	"", "k", "M", "B", "T", "Qa", "Qi", "Sx", "Sp", "Oc", "No", "Dc",
	"Ud", "Dd", "Td", "Qad", "Qid", "Sxd", "Spd", "Ocd", "Nod", "Vg",
}

// Number renders a currency magnitude in short scale, e.g. 1500 -> "1.5k".
// Values below 1000 are floored to an integer; magnitudes past the last
// suffix fall back to scientific notation with two decimals.
func Number(v float64) string {
	switch {
	case math.IsNaN(v):
		return "0"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v < 0:
		return "-" + Number(-v)
	case v < 1000:
		return strconv.FormatFloat(math.Floor(v), 'f', -1, 64)
	}

	idx := decimalExponent(v) / 3
	if idx >= len(suffixes) {
		return strconv.FormatFloat(v, 'e', 2, 64)
	}
	short := v / math.Pow10(idx*3)
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(short, 'f', 2, 64), 64)
	if err != nil {
		rounded = short
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64) + suffixes[idx]
}

// decimalExponent uses the shortest decimal representation instead of
// math.Log10, which is off by one ulp for some exact powers of ten.
func decimalExponent(v float64) int {
	s := strconv.FormatFloat(v, 'e', -1, 64)
	i := strings.IndexByte(s, 'e')
	if i < 0 {
		return 0
	}
	exp, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return 0
	}
	return exp
}
