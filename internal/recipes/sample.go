package recipes

// sample returns n items drawn uniformly without replacement, in draw order.
// intN(k) must return a value in [0, k). items is not modified.
func sample[T any](intN func(int) int, items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	if n <= 0 {
		return nil
	}
	pool := make([]T, len(items))
	copy(pool, items)
	// partial Fisher-Yates: pool[:i] holds the picks so far
	for i := 0; i < n; i++ {
		j := i + intN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n:n]
}
