package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClockRand_Distinct(t *testing.T) {
	a, b := newClockRand(), newClockRand()

	same := 0
	for i := 0; i < 8; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	assert.Less(t, same, 8)
}

func TestWithSeed_Reproducible(t *testing.T) {
	a, b := &Match{}, &Match{}
	WithSeed(5)(a)
	WithSeed(5)(b)

	for i := 0; i < 8; i++ {
		assert.Equal(t, a.rng.Uint64(), b.rng.Uint64())
	}
}
