package jobs

// HypothesesChanged reports whether the proposed hypothesis set differs
// from the current one. A length mismatch or any (id, value) mismatch at
// the same index counts as a change; labels and kinds do not.
func HypothesesChanged(current, proposed []Hypothesis) bool {
	if len(current) != len(proposed) {
		return true
	}
	for i := range current {
		if current[i].ID != proposed[i].ID {
			return true
		}
		if current[i].Value != proposed[i].Value {
			return true
		}
	}
	return false
}
