package parallel

// Band is a half-open range [Start, End).
type Band struct {
	Start, End int
}

// Split cuts [0, n) into at most parts contiguous, non-empty bands whose
// lengths differ by at most one.
func Split(n, parts int) []Band {
	if n <= 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}

	bands := make([]Band, 0, parts)
	size, rem := n/parts, n%parts
	start := 0
	for i := range parts {
		end := start + size
		if i < rem {
			end++
		}
		bands = append(bands, Band{Start: start, End: end})
		start = end
	}
	return bands
}
