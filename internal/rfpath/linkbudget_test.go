package rfpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeLinkBudget_KnownMargin(t *testing.T) {
	// 5km at 915MHz, no diffraction loss: FSPL = 20log10(5)+20log10(915)+32.44
	fspl := FreeSpacePathLoss(5.0, 915.0)
	budget := ComputeLinkBudget(22, 6, 6, -110, fspl, 0)

	assert.InDelta(t, 28, budget.EIRPdBm, 0.01)
	assert.True(t, budget.Viable)
	assert.Greater(t, budget.MarginDB, 0.0)
}

func TestComputeLinkBudget_NotViableBelowSensitivity(t *testing.T) {
	budget := ComputeLinkBudget(10, 0, 0, -80, 150, 20)
	assert.False(t, budget.Viable)
	assert.Less(t, budget.MarginDB, 0.0)
}
