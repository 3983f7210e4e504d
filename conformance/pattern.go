package conformance

import (
	"fmt"
	"math/rand/v2"
)

// all lets a window grow to the end of its buffer.
const all = -1

// Pattern decides how far the source and destination windows grow before
// each Convert call.
type Pattern struct {
	Name string
	// stepper returns a fresh step function for one repetition. The step
	// function receives the codec's maximum sequence length.
	stepper func() func(maxSeq int) (srcStep, dstStep int)
}

// OneBeat supplies everything at once.
var OneBeat = Pattern{
	Name: "one-beat",
	stepper: func() func(int) (int, int) {
		return func(int) (int, int) { return all, all }
	},
}

// StepwiseSource supplies one more source byte per call with an unbounded
// destination.
var StepwiseSource = Pattern{
	Name: "stepwise-source",
	stepper: func() func(int) (int, int) {
		return func(int) (int, int) { return 1, all }
	},
}

// StepwiseDrain offers one more lexatom of room per call with the whole
// source available.
var StepwiseDrain = Pattern{
	Name: "stepwise-drain",
	stepper: func() func(int) (int, int) {
		return func(int) (int, int) { return all, 1 }
	},
}

// Random grows source and destination by pseudo-random amounts. The same
// seed always chops the stream at the same points.
func Random(seed uint64) Pattern {
	return Pattern{
		Name: fmt.Sprintf("random-%d", seed),
		stepper: func() func(int) (int, int) {
			rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			return func(maxSeq int) (int, int) {
				return 1 + rng.IntN(2*maxSeq+1), 1 + rng.IntN(4)
			}
		},
	}
}

// DefaultPatterns returns the three fixed patterns followed by seeds random
// ones.
func DefaultPatterns(seeds int) []Pattern {
	ps := []Pattern{OneBeat, StepwiseSource, StepwiseDrain}
	for i := range seeds {
		ps = append(ps, Random(uint64(i+1)))
	}
	return ps
}

func grow(end, step, limit int) int {
	if step == all {
		return limit
	}
	return min(end+step, limit)
}
