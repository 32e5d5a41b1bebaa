package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadTime_ExplicitPeriodWinsOverDefault(t *testing.T) {
	lt := NewLeadTime(map[int]int{3: 5}).WithDefault(1)

	got, err := lt.LeadTime(3)
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	got, err = lt.LeadTime(4)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestLeadTime_MissingPeriodWithoutDefaultErrors(t *testing.T) {
	lt := NewLeadTime(map[int]int{1: 2})

	_, err := lt.LeadTime(2)
	assert.Error(t, err)
}

func TestConstantLeadTime(t *testing.T) {
	lt := ConstantLeadTime(2)

	for period := 1; period <= 5; period++ {
		got, err := lt.LeadTime(period)
		require.NoError(t, err)
		assert.Equal(t, 2, got)
	}
}
