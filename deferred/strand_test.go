package deferred

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrandDrainRunsCallsInFIFOOrder(t *testing.T) {
	s := NewStrand()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		s.Append(func() error {
			order = append(order, i)
			return nil
		})
	}

	errs := s.Drain()
	assert.Empty(t, errs)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.True(t, s.Empty())
}

func TestStrandDrainContinuesPastAFailedCall(t *testing.T) {
	s := NewStrand()
	boom := errors.New("boom")
	var ran []string
	s.Append(func() error { ran = append(ran, "a"); return nil })
	s.Append(func() error { ran = append(ran, "b"); return boom })
	s.Append(func() error { ran = append(ran, "c"); return nil })

	errs := s.Drain()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
	assert.Equal(t, []string{"a", "b", "c"}, ran)
}

func TestStrandEmptyOnFreshStrand(t *testing.T) {
	s := NewStrand()
	assert.True(t, s.Empty())
	s.Append(func() error { return nil })
	assert.False(t, s.Empty())
}
