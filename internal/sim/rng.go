package sim

import "math/rand/v2"

// newRNG builds the world's deterministic random stream. A zero seed is
// normalized to 1 so an unset seed still yields a reproducible run.
// PCG is used because its state can be marshalled, which keeps cloned
// worlds bit-reproducible.
func newRNG(seed int64) (*rand.Rand, *rand.PCG) {
	if seed == 0 {
		seed = 1
	}
	src := rand.NewPCG(uint64(seed), uint64(seed))
	return rand.New(src), src
}

// cloneRNG copies the source state into a fresh generator so the clone
// and the original advance independently.
func cloneRNG(src *rand.PCG) (*rand.Rand, *rand.PCG, error) {
	state, err := src.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	cp := rand.NewPCG(0, 0)
	if err := cp.UnmarshalBinary(state); err != nil {
		return nil, nil, err
	}
	return rand.New(cp), cp, nil
}
