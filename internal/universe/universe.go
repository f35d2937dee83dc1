// Package universe enumerates the scannable symbol universe.
//
// TSE security codes are 4-digit; rather than depending on a listing file
// the screener sweeps the code ranges the exchange actually assigns and
// lets the provider reject codes that do not exist.
package universe

import "strconv"

// codeRange is a half-open [lo, hi) run of 4-digit security codes.
type codeRange struct {
	lo, hi int
}

// tseRanges covers the prime/standard/growth code bands. 1500–1700 is
// mostly ETNs and is skipped.
var tseRanges = []codeRange{
	{1300, 1500},
	{1700, 10000},
}

// Codes returns the full universe of candidate security codes, zero-padded
// to 4 digits. max > 0 caps the result for test runs.
func Codes(max int) []string {
	var out []string
	for _, r := range tseRanges {
		for c := r.lo; c < r.hi; c++ {
			out = append(out, pad4(c))
			if max > 0 && len(out) >= max {
				return out
			}
		}
	}
	return out
}

// Size returns the universe size without materializing it.
func Size() int {
	n := 0
	for _, r := range tseRanges {
		n += r.hi - r.lo
	}
	return n
}

func pad4(c int) string {
	s := strconv.Itoa(c)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}
