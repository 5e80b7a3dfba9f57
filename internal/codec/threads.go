package codec

// ThreadBudget splits total encoder threads among batch images compressed at
// the same time: max(1, total/batch) when batch > 1, all of them otherwise.
func ThreadBudget(total, batch int) int {
	if total < 1 {
		total = 1
	}
	if batch > 1 {
		return max(1, total/batch)
	}
	return total
}
