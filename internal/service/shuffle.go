package service

// shuffle permutes s in place with Fisher-Yates. intn(n) must return a
// uniform integer in [0, n).
func shuffle[T any](s []T, intn func(int) int) {
	for i := len(s) - 1; i > 0; i-- {
		j := intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
