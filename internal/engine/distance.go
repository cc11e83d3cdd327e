// Package engine implements the deterministic matching, gating, scoring,
// and ranking pipeline: given one expanded prompt and the loaded index, it
// produces a ranked, confidence-classified result list. All iteration is
// over sorted or insertion-ordered collections so identical inputs always
// produce byte-identical output.
package engine

// damerauDistance computes the optimal-string-alignment variant of the
// Damerau-Levenshtein distance: insertions, deletions, substitutions, and
// adjacent transpositions each count as one edit. Inputs are expected to be
// short lowercase tokens, so the O(len(a)*len(b)) table is cheap.
func damerauDistance(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev2 := make([]int, lb+1) // row i-2
	prev := make([]int, lb+1)  // row i-1
	curr := make([]int, lb+1)  // row i

	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			d := min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				if t := prev2[j-2] + 1; t < d {
					d = t // transposition
				}
			}
			curr[j] = d
		}
		prev2, prev, curr = prev, curr, prev2
	}

	return prev[lb]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
