package telescope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilitiesHas(t *testing.T) {
	caps := CanPark | CanSlew
	assert.True(t, caps.Has(CanPark))
	assert.True(t, caps.Has(CanSlew))
	assert.False(t, caps.Has(CanSync))
	assert.True(t, caps.Has(CanPark|CanSlew), "Has requires every bit in want")
	assert.False(t, caps.Has(CanPark|CanSync))
}

func TestCanMoveAxis(t *testing.T) {
	caps := CanMoveAxis0 | CanMoveAxis1

	assert.True(t, caps.CanMoveAxis(0))
	assert.True(t, caps.CanMoveAxis(1))
	assert.False(t, caps.CanMoveAxis(2))
	assert.False(t, caps.CanMoveAxis(3), "out of range axis reports false, not panic")
	assert.False(t, caps.CanMoveAxis(-1))
}
