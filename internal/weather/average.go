package weather

// Average returns the mean of the non-nil values. When every value is nil it
// falls back to primary, and to 0 when primary is nil as well. The 0 is
// user-visible, so callers that can tell "no data" apart should check
// AnyPresent first.
func Average(values []*float64, primary *float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n > 0 {
		return sum / float64(n)
	}
	if primary != nil {
		return *primary
	}
	return 0
}

// AnyPresent reports whether at least one value is non-nil.
func AnyPresent(values ...*float64) bool {
	for _, v := range values {
		if v != nil {
			return true
		}
	}
	return false
}

// FirstPresent returns the first non-nil value, or 0.
func FirstPresent(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}
