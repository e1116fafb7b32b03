package telescope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexstar-alpaca/bridge/pkg/ascomerr"
	"github.com/nexstar-alpaca/bridge/pkg/result"
)

func TestCheckConnected(t *testing.T) {
	var d DeviceBase
	assert.True(t, d.CheckConnected().IsErr())

	d.SetConnected(true)
	assert.True(t, d.CheckConnected().IsOk())
	assert.True(t, d.IsConnected())

	d.SetConnected(false)
	assert.False(t, d.IsConnected())
}

func TestCheckFlagPropagatesInnerError(t *testing.T) {
	var d DeviceBase
	sentinel := ascomerr.InvalidOperation()
	r := d.CheckFlag(result.Err[bool](sentinel))
	assert.True(t, r.IsErr())
	assert.Equal(t, sentinel, r.UnwrapErr())
}

func TestCheckFlagFalseIsNotImplemented(t *testing.T) {
	var d DeviceBase
	r := d.CheckFlag(result.Ok(false))
	assert.True(t, r.IsErr())
	ae, ok := r.UnwrapErr().(*ascomerr.Error)
	assert.True(t, ok)
	assert.Equal(t, ascomerr.KindNotImplemented, ae.Kind)
}

func TestCheckFlagTrueIsOk(t *testing.T) {
	var d DeviceBase
	assert.True(t, d.CheckFlag(result.Ok(true)).IsOk())
}

func TestCheckCapability(t *testing.T) {
	var d DeviceBase
	assert.True(t, d.CheckCapability(true).IsOk())
	assert.True(t, d.CheckCapability(false).IsErr())
}

func TestCheckValue(t *testing.T) {
	var d DeviceBase
	assert.True(t, d.CheckValue(true).IsOk())

	r := d.CheckValue(false)
	assert.True(t, r.IsErr())
	ae := r.UnwrapErr().(*ascomerr.Error)
	assert.Equal(t, ascomerr.KindInvalidValue, ae.Kind)
}

func TestCheckSet(t *testing.T) {
	var d DeviceBase
	assert.True(t, d.CheckSet(true).IsOk())

	r := d.CheckSet(false)
	ae := r.UnwrapErr().(*ascomerr.Error)
	assert.Equal(t, ascomerr.KindValueNotSet, ae.Kind)
}

func TestCheckOp(t *testing.T) {
	var d DeviceBase
	assert.True(t, d.CheckOp(true).IsOk())

	r := d.CheckOp(false)
	ae := r.UnwrapErr().(*ascomerr.Error)
	assert.Equal(t, ascomerr.KindInvalidOperation, ae.Kind)
}

func TestSetConnectedIdempotent(t *testing.T) {
	var d DeviceBase
	assert.True(t, d.SetConnected(true).IsOk())
	assert.True(t, d.SetConnected(true).IsOk())
	assert.True(t, d.IsConnected())
}
