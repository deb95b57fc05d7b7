package utils

// FindIndex returns the position of the first element equal to item, or -1.
func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

// Permutations returns every ordering of the indices 0..n-1, in
// lexicographic order.
func Permutations(n int) [][]int {
	if n <= 0 {
		return nil
	}
	current := make([]int, n)
	for i := range current {
		current[i] = i
	}
	var result [][]int
	for {
		perm := make([]int, n)
		copy(perm, current)
		result = append(result, perm)

		// Next permutation in lexicographic order
		i := n - 2
		for i >= 0 && current[i] >= current[i+1] {
			i--
		}
		if i < 0 {
			return result
		}
		j := n - 1
		for current[j] <= current[i] {
			j--
		}
		current[i], current[j] = current[j], current[i]
		for l, r := i+1, n-1; l < r; l, r = l+1, r-1 {
			current[l], current[r] = current[r], current[l]
		}
	}
}
