package nexstar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport plays back a fixed response for the next Exchange call and
// records the request it was given, enough to drive the codec's framing and
// opcode logic without a real serial port or simulator.
type fakeTransport struct {
	lastReq  []byte
	response []byte
	err      error
}

func (f *fakeTransport) Exchange(_ context.Context, req []byte, respLen int) ([]byte, error) {
	f.lastReq = append([]byte(nil), req...)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.response) != respLen {
		return f.response, nil // force a framing-length mismatch in the relevant test
	}
	return f.response, nil
}

func (f *fakeTransport) Close() error { return nil }

func TestCodecEcho(t *testing.T) {
	ft := &fakeTransport{response: []byte{'x', Terminator}}
	c := NewCodec(ft)

	err := c.Echo(context.Background(), 'x')
	require.NoError(t, err)
	assert.Equal(t, []byte{'K', 'x'}, ft.lastReq)
}

func TestCodecEchoMismatch(t *testing.T) {
	ft := &fakeTransport{response: []byte{'y', Terminator}}
	c := NewCodec(ft)

	err := c.Echo(context.Background(), 'x')
	assert.ErrorIs(t, err, ErrFraming)
}

func TestCodecVersion(t *testing.T) {
	ft := &fakeTransport{response: []byte{4, 1, Terminator}}
	c := NewCodec(ft)

	major, minor, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, byte(4), major)
	assert.Equal(t, byte(1), minor)
}

func TestCodecGetRADecCoarse(t *testing.T) {
	raDeg := 180.0
	decRaw := 45.0
	body := EncodeAnglePair(raDeg, decRaw, Coarse)
	ft := &fakeTransport{response: append(body, Terminator)}
	c := NewCodec(ft)

	gotRA, gotDec, err := c.GetRADec(context.Background(), false)
	require.NoError(t, err)
	assert.InDelta(t, raDeg, gotRA, 0.01)
	assert.InDelta(t, decRaw, gotDec, 0.01)
	assert.Equal(t, []byte{'e'}, ft.lastReq)
}

func TestCodecGetRADecPrecise(t *testing.T) {
	raDeg := 270.0
	decRaw := 10.0
	body := EncodeAnglePair(raDeg, decRaw, Precise)
	ft := &fakeTransport{response: append(body, Terminator)}
	c := NewCodec(ft)

	gotRA, gotDec, err := c.GetRADec(context.Background(), true)
	require.NoError(t, err)
	assert.InDelta(t, raDeg, gotRA, 0.0001)
	assert.InDelta(t, decRaw, gotDec, 0.0001)
	assert.Equal(t, []byte{'E'}, ft.lastReq)
}

func TestCodecGotoRADec(t *testing.T) {
	ft := &fakeTransport{response: []byte{Terminator}}
	c := NewCodec(ft)

	err := c.GotoRADec(context.Background(), 180, 45, false)
	require.NoError(t, err)
	assert.Equal(t, byte('r'), ft.lastReq[0])
}

func TestCodecGetLocation(t *testing.T) {
	loc := NewLocation(33.8678, -84.3881)
	resp := append(EncodeLocation(loc), Terminator)
	ft := &fakeTransport{response: resp}
	c := NewCodec(ft)

	got, err := c.GetLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, loc, got)
}

func TestCodecSetLocation(t *testing.T) {
	ft := &fakeTransport{response: []byte{Terminator}}
	c := NewCodec(ft)

	loc := NewLocation(0, 0)
	err := c.SetLocation(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, byte('W'), ft.lastReq[0])
	assert.Len(t, ft.lastReq, 9)
}

func TestCodecGetTime(t *testing.T) {
	payload := UTCPayload{Hour: 21, Minute: 0, Second: 0, Month: 7, Day: 31, YearMinus2000: 26, GMTOffset: -5}
	resp := append(EncodeUTCPayload(payload), Terminator)
	ft := &fakeTransport{response: resp}
	c := NewCodec(ft)

	got, err := c.GetTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestCodecTrackingMode(t *testing.T) {
	ft := &fakeTransport{response: []byte{2, Terminator}}
	c := NewCodec(ft)

	mode, err := c.GetTrackingMode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, byte(2), mode)

	ft.response = []byte{Terminator}
	err = c.SetTrackingMode(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{'T', 2}, ft.lastReq)
}

func TestCodecIsAlignmentComplete(t *testing.T) {
	ft := &fakeTransport{response: []byte{1, Terminator}}
	c := NewCodec(ft)

	ok, err := c.IsAlignmentComplete(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCodecIsGotoInProgressASCIIDigit(t *testing.T) {
	ft := &fakeTransport{response: []byte{'1', Terminator}}
	c := NewCodec(ft)

	inProgress, err := c.IsGotoInProgress(context.Background())
	require.NoError(t, err)
	assert.True(t, inProgress)

	ft.response = []byte{'0', Terminator}
	inProgress, err = c.IsGotoInProgress(context.Background())
	require.NoError(t, err)
	assert.False(t, inProgress)
}

func TestCodecCancelGoto(t *testing.T) {
	ft := &fakeTransport{response: []byte{Terminator}}
	c := NewCodec(ft)

	err := c.CancelGoto(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{'M'}, ft.lastReq)
}

func TestCodecPassThrough(t *testing.T) {
	ft := &fakeTransport{response: []byte{Terminator}}
	c := NewCodec(ft)

	req, err := EncodeSlewVariable(0, 1.0)
	require.NoError(t, err)

	resp, err := c.PassThrough(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, resp)
	assert.Equal(t, []byte{'P', 3, 16, 6, 0x38, 0x40, 0, 0}, ft.lastReq)
}

func TestCodecMissingTerminatorIsFramingError(t *testing.T) {
	ft := &fakeTransport{response: []byte{'x', 0x00}}
	c := NewCodec(ft)

	err := c.Echo(context.Background(), 'x')
	assert.ErrorIs(t, err, ErrFraming)
}

func TestDecodeAnglePairMalformed(t *testing.T) {
	_, _, err := DecodeAnglePair([]byte("not-a-pair#"), Coarse)
	assert.ErrorIs(t, err, ErrFraming)
}

func TestHexDigits(t *testing.T) {
	assert.Equal(t, 4, HexDigits(Coarse))
	assert.Equal(t, 8, HexDigits(Precise))
}
