package langtool

// maxSuggestDistance is the largest edit distance offered as a suggestion.
const maxSuggestDistance = 2

// editDistance is the optimal string alignment distance between a and b:
// insertions, deletions, substitutions and adjacent transpositions each
// cost one edit.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	return boundedDistance(ra, rb, max(len(ra), len(rb)))
}

// boundedDistance is editDistance over runes that gives up once the
// distance is known to exceed limit, returning limit+1.
func boundedDistance(ra, rb []rune, limit int) int {
	if len(ra) == 0 {
		return min(len(rb), limit+1)
	}
	if len(rb) == 0 {
		return min(len(ra), limit+1)
	}

	// Three rows: two back for transpositions, one back, current.
	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	prevMin := 0
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		rowMin := i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minOf3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				curr[j] = min(curr[j], prev2[j-2]+1)
			}
			rowMin = min(rowMin, curr[j])
		}
		// Later rows build on the last two, so both above limit is final.
		if rowMin > limit && prevMin > limit {
			return limit + 1
		}
		prevMin = rowMin
		prev2, prev, curr = prev, curr, prev2
	}
	return min(prev[len(rb)], limit+1)
}

func minOf3(a, b, c int) int {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}
