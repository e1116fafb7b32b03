package nexstar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSlewVariableMatchesMoveAxisExample(t *testing.T) {
	// Axis=0, Rate=1.0 deg/s is 14400 quarter-arcsec/s and encodes to
	// 'P', 3, 16, 6, 0x38, 0x40, 0, 0.
	req, err := EncodeSlewVariable(0, 1.0)
	require.NoError(t, err)

	assert.Equal(t, DeviceAzimuthMotor, req.DeviceID)
	assert.Equal(t, CmdSlewVariablePositive, req.CommandID)
	assert.Equal(t, byte(2), req.ArgCount)
	assert.Equal(t, [3]byte{0x38, 0x40, 0}, req.Args)

	wire := req.encode()
	assert.Equal(t, []byte{'P', 3, 16, 6, 0x38, 0x40, 0, 0}, wire)
}

func TestEncodeSlewVariableNegativeRate(t *testing.T) {
	req, err := EncodeSlewVariable(1, -1.0)
	require.NoError(t, err)

	assert.Equal(t, DeviceAltitudeMotor, req.DeviceID)
	assert.Equal(t, CmdSlewVariableNegative, req.CommandID)
	assert.Equal(t, [3]byte{0x38, 0x40, 0}, req.Args)
}

func TestEncodeSlewVariableClampsToUint16(t *testing.T) {
	req, err := EncodeSlewVariable(0, 1000)
	require.NoError(t, err)

	units := uint16(req.Args[0])<<8 | uint16(req.Args[1])
	assert.Equal(t, uint16(65535), units)
}

func TestEncodeSlewVariableRejectsAxis2(t *testing.T) {
	_, err := EncodeSlewVariable(2, 1.0)
	assert.Error(t, err)
}

func TestEncodeSlewVariableZeroRate(t *testing.T) {
	req, err := EncodeSlewVariable(0, 0)
	require.NoError(t, err)
	assert.Equal(t, CmdSlewVariablePositive, req.CommandID)
	assert.Equal(t, [3]byte{0, 0, 0}, req.Args)
}
