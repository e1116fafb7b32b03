package telescope

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexstar-alpaca/bridge/pkg/ascomerr"
)

// mockDriver overrides a handful of BaseDriver methods so the facade's gate
// composition can be exercised without a real NexStar codec.
type mockDriver struct {
	BaseDriver

	altitude   float64
	parkCalled bool
	parkErr    error
	atPark     bool

	slewToCoordinatesCalled bool
	lastRA, lastDec         float64

	moveAxisCalled bool
	lastAxis       int
	lastRate       float64
}

func (m *mockDriver) Altitude() (float64, error) { return m.altitude, nil }

func (m *mockDriver) Park() error {
	m.parkCalled = true
	return m.parkErr
}

func (m *mockDriver) AtPark() (bool, error) { return m.atPark, nil }

func (m *mockDriver) SlewToCoordinates(ra, dec float64) error {
	m.slewToCoordinatesCalled = true
	m.lastRA, m.lastDec = ra, dec
	return nil
}

func (m *mockDriver) SetUTCDate(time.Time) error { return nil }

func (m *mockDriver) MoveAxis(axis int, rate float64) error {
	m.moveAxisCalled = true
	m.lastAxis, m.lastRate = axis, rate
	return nil
}

func newTestTelescope(driver Driver, caps Capabilities) *Telescope {
	return NewTelescope(driver, caps, StaticMetadata{})
}

func TestAltitudeRequiresConnection(t *testing.T) {
	driver := &mockDriver{altitude: 45}
	ts := newTestTelescope(driver, 0)

	r := ts.Altitude()
	assert.True(t, r.IsErr())
	ae := r.UnwrapErr().(*ascomerr.Error)
	assert.Equal(t, ascomerr.KindNotConnected, ae.Kind)

	ts.SetConnected(true)
	r = ts.Altitude()
	v, err := r.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 45.0, v)
}

func TestParkRequiresCapability(t *testing.T) {
	driver := &mockDriver{}
	ts := newTestTelescope(driver, 0) // no CanPark
	ts.SetConnected(true)

	r := ts.Park()
	assert.True(t, r.IsErr())
	ae := r.UnwrapErr().(*ascomerr.Error)
	assert.Equal(t, ascomerr.KindNotImplemented, ae.Kind)
	assert.False(t, driver.parkCalled, "gate must short-circuit before the driver call")
}

func TestParkSucceedsWithCapability(t *testing.T) {
	driver := &mockDriver{}
	ts := newTestTelescope(driver, CanPark)
	ts.SetConnected(true)

	r := ts.Park()
	assert.True(t, r.IsOk())
	assert.True(t, driver.parkCalled)
}

func TestGateOrderConnectedBeforeCapability(t *testing.T) {
	driver := &mockDriver{}
	ts := newTestTelescope(driver, 0) // disconnected, no capability either

	r := ts.Park()
	ae := r.UnwrapErr().(*ascomerr.Error)
	assert.Equal(t, ascomerr.KindNotConnected, ae.Kind, "connected gate runs before capability gate")
}

func TestMoveAxisValueAndCapabilityGates(t *testing.T) {
	driver := &mockDriver{}
	ts := newTestTelescope(driver, CanMoveAxis0)
	ts.SetConnected(true)

	// axis out of range
	r := ts.MoveAxis(5, 1.0)
	assert.True(t, r.IsErr())
	assert.False(t, driver.moveAxisCalled)

	// axis in range but no capability
	r = ts.MoveAxis(1, 1.0)
	assert.True(t, r.IsErr())
	assert.False(t, driver.moveAxisCalled)

	// rate out of range
	r = ts.MoveAxis(0, 10.0)
	assert.True(t, r.IsErr())
	assert.False(t, driver.moveAxisCalled)

	// all gates pass
	r = ts.MoveAxis(0, 1.0)
	assert.True(t, r.IsOk())
	assert.True(t, driver.moveAxisCalled)
	assert.Equal(t, 0, driver.lastAxis)
	assert.Equal(t, 1.0, driver.lastRate)
}

func TestTargetRightAscensionUnsetUntilWritten(t *testing.T) {
	driver := &mockDriver{}
	ts := newTestTelescope(driver, 0)
	ts.SetConnected(true)

	r := ts.TargetRightAscension()
	assert.True(t, r.IsErr())
	ae := r.UnwrapErr().(*ascomerr.Error)
	assert.Equal(t, ascomerr.KindValueNotSet, ae.Kind)

	assert.True(t, ts.SetTargetRightAscension(12.5).IsOk())

	v, err := ts.TargetRightAscension().Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)
}

func TestSetTargetRightAscensionRejectsOutOfRange(t *testing.T) {
	ts := newTestTelescope(&mockDriver{}, 0)
	ts.SetConnected(true)

	r := ts.SetTargetRightAscension(25)
	assert.True(t, r.IsErr())
	ae := r.UnwrapErr().(*ascomerr.Error)
	assert.Equal(t, ascomerr.KindInvalidValue, ae.Kind)
}

func TestSlewToTargetUsesStoredTarget(t *testing.T) {
	driver := &mockDriver{}
	ts := newTestTelescope(driver, CanSlew)
	ts.SetConnected(true)

	r := ts.SlewToTarget()
	assert.True(t, r.IsErr(), "target not yet set")

	ts.SetTargetRightAscension(10)
	ts.SetTargetDeclination(20)

	r = ts.SlewToTarget()
	assert.True(t, r.IsOk())
	assert.True(t, driver.slewToCoordinatesCalled)
	assert.Equal(t, 10.0, driver.lastRA)
	assert.Equal(t, 20.0, driver.lastDec)
}

func TestSyncToTargetRejectsWhileParked(t *testing.T) {
	driver := &mockDriver{atPark: true}
	ts := newTestTelescope(driver, CanSync)
	ts.SetConnected(true)
	ts.SetTargetRightAscension(10)
	ts.SetTargetDeclination(20)

	r := ts.SyncToTarget()
	assert.True(t, r.IsErr())
	ae := r.UnwrapErr().(*ascomerr.Error)
	assert.Equal(t, ascomerr.KindParked, ae.Kind)
}

func TestSlewToCoordinatesValidatesRange(t *testing.T) {
	ts := newTestTelescope(&mockDriver{}, CanSlew)
	ts.SetConnected(true)

	assert.True(t, ts.SlewToCoordinates(-1, 0).IsErr())
	assert.True(t, ts.SlewToCoordinates(10, 95).IsErr())
	assert.True(t, ts.SlewToCoordinates(10, 45).IsOk())
}

func TestAxisRatesRejectsOutOfRangeAxis(t *testing.T) {
	ts := newTestTelescope(&mockDriver{}, 0)
	ts.SetConnected(true)

	r := ts.AxisRates(3)
	assert.True(t, r.IsErr())
	ae := r.UnwrapErr().(*ascomerr.Error)
	assert.Equal(t, ascomerr.KindInvalidValue, ae.Kind)
}

func TestSetUTCDatePassesThroughToDriver(t *testing.T) {
	ts := newTestTelescope(&mockDriver{}, 0)
	ts.SetConnected(true)

	r := ts.SetUTCDate(time.Date(2026, 7, 31, 21, 0, 0, 0, time.UTC))
	assert.True(t, r.IsOk())
}

func TestDriverErrMapsNotImplementedSentinel(t *testing.T) {
	ts := newTestTelescope(&mockDriver{}, 0)
	ts.SetConnected(true)

	// Altitude is overridden, but SiderealTime is inherited from BaseDriver
	// and returns the not-implemented sentinel.
	r := ts.SiderealTime()
	assert.True(t, r.IsErr())
	ae := r.UnwrapErr().(*ascomerr.Error)
	assert.Equal(t, ascomerr.KindNotImplemented, ae.Kind)
}
