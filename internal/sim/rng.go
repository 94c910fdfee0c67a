package sim

import "math/rand/v2"

// source is the world's only randomness. Same seed, same shuffles.
type source struct {
	r *rand.Rand
}

func newSource(seed uint64) *source {
	return &source{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func shuffle[T any](s *source, xs []T) {
	s.r.Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
}
