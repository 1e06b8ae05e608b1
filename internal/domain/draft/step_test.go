package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStep(t *testing.T) {
	for n := 1; n <= 5; n++ {
		s, err := ParseStep(n)
		require.NoError(t, err)
		assert.Equal(t, Step(n), s)
	}

	_, err := ParseStep(0)
	assert.Error(t, err)
	_, err = ParseStep(6)
	assert.Error(t, err)
}

func TestStepIsTerminal(t *testing.T) {
	assert.True(t, StepConfirmed.IsTerminal())
	assert.False(t, StepPayment.IsTerminal())
	assert.False(t, StepVehicle.IsTerminal())
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "vehicle", StepVehicle.String())
	assert.Equal(t, "confirmed", StepConfirmed.String())
	assert.Equal(t, "unknown(9)", Step(9).String())
}
