package celestrondriver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexstar-alpaca/bridge/pkg/nexstar"
	"github.com/nexstar-alpaca/bridge/pkg/telescope"
)

// scriptedTransport answers each Exchange call with the next entry in
// responses, in order, recording every request it was given.
type scriptedTransport struct {
	responses [][]byte
	requests  [][]byte
	i         int
}

func (s *scriptedTransport) Exchange(_ context.Context, req []byte, respLen int) ([]byte, error) {
	s.requests = append(s.requests, append([]byte(nil), req...))
	if s.i >= len(s.responses) {
		return make([]byte, respLen), nil
	}
	resp := s.responses[s.i]
	s.i++
	return resp, nil
}

func (s *scriptedTransport) Close() error { return nil }

func term(b ...byte) []byte { return append(b, nexstar.Terminator) }

func TestModelName(t *testing.T) {
	tests := []struct {
		code byte
		want string
	}{
		{1, "GPS Series"},
		{11, "4/5 SE"},
		{22, "Evolution"},
		{250, "Unknown model"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ModelName(tt.code))
	}
}

func TestDriverModelName(t *testing.T) {
	st := &scriptedTransport{responses: [][]byte{term(11)}}
	d := New(st, nil)

	name, err := d.ModelName()
	require.NoError(t, err)
	assert.Equal(t, "4/5 SE", name)
}

func TestDriverFirmwareVersion(t *testing.T) {
	st := &scriptedTransport{responses: [][]byte{term(4, 21)}}
	d := New(st, nil)

	v, err := d.FirmwareVersion()
	require.NoError(t, err)
	assert.Equal(t, "4.21", v)
}

func TestDriverParkAndUnpark(t *testing.T) {
	st := &scriptedTransport{responses: [][]byte{term()}} // CancelGoto response
	d := New(st, nil)

	parked, err := d.AtPark()
	require.NoError(t, err)
	assert.False(t, parked)

	require.NoError(t, d.Park())
	parked, err = d.AtPark()
	require.NoError(t, err)
	assert.True(t, parked)

	require.NoError(t, d.Unpark())
	parked, err = d.AtPark()
	require.NoError(t, err)
	assert.False(t, parked)
}

func TestDriverDoesRefractionDefaultsTrue(t *testing.T) {
	d := New(&scriptedTransport{}, nil)
	v, err := d.DoesRefraction()
	require.NoError(t, err)
	assert.True(t, v)

	require.NoError(t, d.SetDoesRefraction(false))
	v, err = d.DoesRefraction()
	require.NoError(t, err)
	assert.False(t, v)
}

func TestDriverSiteElevationStoredLocally(t *testing.T) {
	d := New(&scriptedTransport{}, nil)

	v, err := d.SiteElevation()
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	require.NoError(t, d.SetSiteElevation(350))
	v, err = d.SiteElevation()
	require.NoError(t, err)
	assert.Equal(t, 350.0, v)
}

func TestDriverTrackingMapsNonOffToTrue(t *testing.T) {
	st := &scriptedTransport{responses: [][]byte{term(trackingEQNorth)}}
	d := New(st, nil)

	tracking, err := d.Tracking()
	require.NoError(t, err)
	assert.True(t, tracking)
}

func TestDriverTrackingOffIsFalse(t *testing.T) {
	st := &scriptedTransport{responses: [][]byte{term(trackingOff)}}
	d := New(st, nil)

	tracking, err := d.Tracking()
	require.NoError(t, err)
	assert.False(t, tracking)
}

func TestDriverSetTrackingSelectsEQNorthOrOff(t *testing.T) {
	st := &scriptedTransport{responses: [][]byte{term()}}
	d := New(st, nil)

	require.NoError(t, d.SetTracking(true))
	assert.Equal(t, []byte{'T', trackingEQNorth}, st.requests[0])

	st.requests = nil
	st.responses = [][]byte{term()}
	st.i = 0
	require.NoError(t, d.SetTracking(false))
	assert.Equal(t, []byte{'T', trackingOff}, st.requests[0])
}

func TestDriverAxisRates(t *testing.T) {
	d := New(&scriptedTransport{}, nil)

	rates, err := d.AxisRates(0)
	require.NoError(t, err)
	assert.Equal(t, []telescope.AxisRate{{Minimum: 0, Maximum: 4}}, rates)

	_, err = d.AxisRates(2)
	assert.True(t, telescope.IsNotImplemented(err))
}

func TestDriverMoveAxisEncodesPassThrough(t *testing.T) {
	st := &scriptedTransport{responses: [][]byte{term()}}
	d := New(st, nil)

	err := d.MoveAxis(0, 1.0)
	require.NoError(t, err)
	assert.Equal(t, []byte{'P', 3, nexstar.DeviceAzimuthMotor, nexstar.CmdSlewVariablePositive, 0x38, 0x40, 0, 0}, st.requests[0])
}

func TestDriverSyncToCoordinatesComputesOffset(t *testing.T) {
	// Wire reports RA degrees 150 (10h) / dec wire 40; caller syncs to 12h/45deg.
	raDeg := 150.0
	decWire := 40.0
	body := nexstar.EncodeAnglePair(raDeg, decWire, nexstar.Precise)
	st := &scriptedTransport{responses: [][]byte{term(body...)}}
	d := New(st, nil)

	err := d.SyncToCoordinates(12, 45)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, d.raOffsetHours, 0.001)
	assert.InDelta(t, 5.0, d.decOffsetDeg, 0.001)
}

func TestDriverGuideRatesDefaultAndSettable(t *testing.T) {
	d := New(&scriptedTransport{}, nil)

	dec, err := d.GuideRateDeclination()
	require.NoError(t, err)
	assert.InDelta(t, defaultGuideRateDegPerSec, dec, 1e-9)

	ra, err := d.GuideRateRightAscension()
	require.NoError(t, err)
	assert.InDelta(t, defaultGuideRateDegPerSec, ra, 1e-9)

	require.NoError(t, d.SetGuideRateDeclination(0.01))
	dec, err = d.GuideRateDeclination()
	require.NoError(t, err)
	assert.Equal(t, 0.01, dec)

	require.NoError(t, d.SetGuideRateRightAscension(0.02))
	ra, err = d.GuideRateRightAscension()
	require.NoError(t, err)
	assert.Equal(t, 0.02, ra)
}

func TestDriverPulseGuideEncodesStartAndStopPassThrough(t *testing.T) {
	st := &scriptedTransport{responses: [][]byte{term(), term()}}
	d := New(st, nil)
	require.NoError(t, d.SetGuideRateDeclination(0.01))

	guiding, err := d.IsPulseGuiding()
	require.NoError(t, err)
	assert.False(t, guiding)

	err = d.PulseGuide(guideNorth, 1)
	require.NoError(t, err)
	require.Len(t, st.requests, 2)
	assert.Equal(t, byte(nexstar.DeviceAltitudeMotor), st.requests[0][2])
	assert.Equal(t, nexstar.CmdSlewVariablePositive, st.requests[0][3])
	assert.Equal(t, byte(nexstar.DeviceAltitudeMotor), st.requests[1][2])
	assert.Equal(t, []byte{0, 0}, st.requests[1][4:6]) // stop: zero rate

	guiding, err = d.IsPulseGuiding()
	require.NoError(t, err)
	assert.False(t, guiding)
}

func TestDriverPulseGuideRejectsInvalidDirection(t *testing.T) {
	d := New(&scriptedTransport{}, nil)
	err := d.PulseGuide(4, 1)
	assert.Error(t, err)
}

func TestDriverConnectEchoes(t *testing.T) {
	st := &scriptedTransport{responses: [][]byte{term('x')}}
	d := New(st, nil)

	err := d.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{'K', 'x'}, st.requests[0])
}
