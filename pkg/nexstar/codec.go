package nexstar

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Terminator is the single-byte sentinel every NexStar response ends with.
const Terminator byte = 0x23 // '#'

// ErrFraming is returned when a response is short or missing its terminator.
var ErrFraming = errors.New("nexstar: framing error")

// Codec exchanges typed NexStar commands over a Transport.
type Codec struct {
	Transport Transport
}

// NewCodec wraps a Transport with the NexStar command set.
func NewCodec(t Transport) *Codec {
	return &Codec{Transport: t}
}

func (c *Codec) exchange(ctx context.Context, req []byte, respLen int) ([]byte, error) {
	resp, err := c.Transport.Exchange(ctx, req, respLen)
	if err != nil {
		return nil, fmt.Errorf("nexstar: %w", err)
	}
	if len(resp) != respLen {
		return nil, ErrFraming
	}
	if respLen > 0 && resp[respLen-1] != Terminator {
		return nil, ErrFraming
	}
	return resp, nil
}

// HexDigits returns the number of hex digits NexStar uses on the wire for
// the given precision (4 for coarse, 8 for precise).
func HexDigits(p Precision) int {
	if p == Precise {
		return 8
	}
	return 4
}

// EncodeAnglePair renders two wire-degree values as the comma-separated
// zero-padded hex pair NexStar uses for angle commands/responses (no
// terminator). Exported so pkg/nexstarsim can produce byte-identical wire
// responses without duplicating the hex framing.
func EncodeAnglePair(a, b float64, p Precision) []byte {
	digits := HexDigits(p)
	ua := ToNexStarUnits(a, p)
	ub := ToNexStarUnits(b, p)
	return []byte(fmt.Sprintf("%0*X,%0*X", digits, ua, digits, ub))
}

// DecodeAnglePair parses a response ending in the 0x23 terminator into two
// wire-degree values.
func DecodeAnglePair(resp []byte, p Precision) (a, b float64, err error) {
	body := string(resp[:len(resp)-1]) // drop terminator
	parts := strings.SplitN(body, ",", 2)
	if len(parts) != 2 {
		return 0, 0, ErrFraming
	}
	ua, err1 := strconv.ParseUint(parts[0], 16, 32)
	ub, err2 := strconv.ParseUint(parts[1], 16, 32)
	if err1 != nil || err2 != nil {
		return 0, 0, ErrFraming
	}
	return FromNexStarUnits(uint32(ua), p), FromNexStarUnits(uint32(ub), p), nil
}

// Echo sends 'K'<c> and expects the same byte echoed back.
func (c *Codec) Echo(ctx context.Context, b byte) error {
	resp, err := c.exchange(ctx, []byte{'K', b}, 2)
	if err != nil {
		return err
	}
	if resp[0] != b {
		return ErrFraming
	}
	return nil
}

// Version returns the hand controller's firmware major/minor version.
func (c *Codec) Version(ctx context.Context) (major, minor byte, err error) {
	resp, err := c.exchange(ctx, []byte{'V'}, 3)
	if err != nil {
		return 0, 0, err
	}
	return resp[0], resp[1], nil
}

// Model returns the raw model code (see celestrondriver for the name table).
func (c *Codec) Model(ctx context.Context) (byte, error) {
	resp, err := c.exchange(ctx, []byte{'m'}, 2)
	if err != nil {
		return 0, err
	}
	return resp[0], nil
}

// GetRADec returns (RA degrees-on-wire, Dec raw angle) using 'E' (precise)
// or 'e' (coarse). Callers convert RA degrees to hours and normalize Dec.
func (c *Codec) GetRADec(ctx context.Context, precise bool) (raDeg, decRaw float64, err error) {
	p := Coarse
	opcode := byte('e')
	respLen := 10
	if precise {
		p, opcode, respLen = Precise, 'E', 18
	}
	resp, err := c.exchange(ctx, []byte{opcode}, respLen)
	if err != nil {
		return 0, 0, err
	}
	return DecodeAnglePair(resp, p)
}

// GotoRADec slews to (RA degrees-on-wire, Dec raw angle) using 'R' (precise)
// or 'r' (coarse).
func (c *Codec) GotoRADec(ctx context.Context, raDeg, decRaw float64, precise bool) error {
	p := Coarse
	opcode := byte('r')
	if precise {
		p, opcode = Precise, 'R'
	}
	req := append([]byte{opcode}, EncodeAnglePair(raDeg, decRaw, p)...)
	_, err := c.exchange(ctx, req, 1)
	return err
}

// GetAzAlt returns (azimuth, altitude) raw wire angles using 'Z' (precise)
// or 'z' (coarse).
func (c *Codec) GetAzAlt(ctx context.Context, precise bool) (az, alt float64, err error) {
	p := Coarse
	opcode := byte('z')
	respLen := 10
	if precise {
		p, opcode, respLen = Precise, 'Z', 18
	}
	resp, err := c.exchange(ctx, []byte{opcode}, respLen)
	if err != nil {
		return 0, 0, err
	}
	return DecodeAnglePair(resp, p)
}

// GotoAzAlt slews to (azimuth, altitude) using 'B' (precise) or 'b' (coarse).
func (c *Codec) GotoAzAlt(ctx context.Context, az, alt float64, precise bool) error {
	p := Coarse
	opcode := byte('b')
	if precise {
		p, opcode = Precise, 'B'
	}
	req := append([]byte{opcode}, EncodeAnglePair(az, alt, p)...)
	_, err := c.exchange(ctx, req, 1)
	return err
}

// GetLocation reads the 8-byte site location payload via 'w'.
func (c *Codec) GetLocation(ctx context.Context) (Location, error) {
	resp, err := c.exchange(ctx, []byte{'w'}, 9)
	if err != nil {
		return Location{}, err
	}
	return DecodeLocation(resp[:8]), nil
}

// SetLocation writes the site location payload via 'W'.
func (c *Codec) SetLocation(ctx context.Context, loc Location) error {
	req := append([]byte{'W'}, EncodeLocation(loc)...)
	_, err := c.exchange(ctx, req, 1)
	return err
}

// GetTime reads the 8-byte local-time-with-offset payload via 'h'.
func (c *Codec) GetTime(ctx context.Context) (UTCPayload, error) {
	resp, err := c.exchange(ctx, []byte{'h'}, 9)
	if err != nil {
		return UTCPayload{}, err
	}
	return DecodeUTCPayload(resp[:8]), nil
}

// SetTime writes the local-time-with-offset payload via 'H'.
func (c *Codec) SetTime(ctx context.Context, t UTCPayload) error {
	req := append([]byte{'H'}, EncodeUTCPayload(t)...)
	_, err := c.exchange(ctx, req, 1)
	return err
}

// GetTrackingMode reads the tracking mode (0..3) via 't'.
func (c *Codec) GetTrackingMode(ctx context.Context) (byte, error) {
	resp, err := c.exchange(ctx, []byte{'t'}, 2)
	if err != nil {
		return 0, err
	}
	return resp[0], nil
}

// SetTrackingMode writes the tracking mode via 'T'.
func (c *Codec) SetTrackingMode(ctx context.Context, mode byte) error {
	_, err := c.exchange(ctx, []byte{'T', mode}, 1)
	return err
}

// IsAlignmentComplete reads alignment status via 'J'.
func (c *Codec) IsAlignmentComplete(ctx context.Context) (bool, error) {
	resp, err := c.exchange(ctx, []byte{'J'}, 2)
	if err != nil {
		return false, err
	}
	return resp[0] != 0, nil
}

// IsGotoInProgress reads goto-in-progress via 'L'. The wire carries ASCII
// '0'/'1', not a raw byte flag.
func (c *Codec) IsGotoInProgress(ctx context.Context) (bool, error) {
	resp, err := c.exchange(ctx, []byte{'L'}, 2)
	if err != nil {
		return false, err
	}
	return resp[0] == '1', nil
}

// CancelGoto sends 'M' to stop any in-flight goto.
func (c *Codec) CancelGoto(ctx context.Context) error {
	_, err := c.exchange(ctx, []byte{'M'}, 1)
	return err
}

// PassThrough sends a motor pass-through command (opcode 'P') and returns
// the response bytes excluding the terminator.
func (c *Codec) PassThrough(ctx context.Context, req PassThroughRequest) ([]byte, error) {
	wire := req.encode()
	respLen := int(req.ExpectedResponseLength)
	if respLen <= 0 {
		respLen = 1
	}
	resp, err := c.exchange(ctx, wire, respLen)
	if err != nil {
		return nil, err
	}
	return resp[:len(resp)-1], nil
}
