// Package nexstarsim implements nexstar.Transport as a deterministic,
// in-memory stand-in for a Celestron hand controller, driven by a simple
// idle / slewing / moving kinematic state machine.
package nexstarsim

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nexstar-alpaca/bridge/pkg/astro"
	"github.com/nexstar-alpaca/bridge/pkg/nexstar"
)

// State is the simulator's kinematic state.
type State int

const (
	StateIdle State = iota
	StateSlewing
	StateMoving
)

// Simulator is an in-memory Celestron hand controller. All angle state is
// kept in wire-compatible degree space (RA as degrees-on-wire, i.e. 15 *
// hours; declination and altitude as signed degrees in [-90, 90]) so the
// kinematic step rules work in one angular unit without repeated
// conversion. Every Exchange call advances the simulator by the wall-clock
// delta since the previous call before answering.
type Simulator struct {
	mu     sync.Mutex
	logger *zap.Logger

	model            byte
	verMajor, verMin byte
	alignmentDone    bool

	state    State
	lastStep time.Time

	currentRADeg, currentDecDeg float64
	targetRADeg, targetDecDeg   float64

	// axisRate holds the variable-slew rate (deg/s, signed) last set via a
	// 'P' pass-through command. Index 0 is the azimuth/RA motor, 1 the
	// altitude/Dec motor; axis 2 has no physical motor.
	axisRate [2]float64

	loc          nexstar.Location
	utcPayload   nexstar.UTCPayload
	utcSetAt     time.Time
	trackingMode byte
}

// NewSimulator builds a simulator parked at the zero point, aligned, not
// tracking, at the equator/prime-meridian by default.
func NewSimulator(logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now()
	return &Simulator{
		logger:        logger.With(zap.String("component", "nexstarsim")),
		model:         11, // "4/5 SE" in the celestrondriver model table
		verMajor:      4,
		verMin:        21,
		alignmentDone: true,
		state:         StateIdle,
		lastStep:      now,
		loc:           nexstar.NewLocation(0, 0),
		utcPayload:    nexstar.FromTime(now, 0, false),
		utcSetAt:      now,
		trackingMode:  0,
	}
}

// Close is a no-op; the simulator owns no OS resources.
func (s *Simulator) Close() error { return nil }

// Exchange dispatches a single NexStar wire command. It advances the
// simulator's kinematic state by the elapsed wall-clock time first, so
// every command observes a freshly-stepped mount.
func (s *Simulator) Exchange(ctx context.Context, req []byte, respLen int) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if len(req) == 0 {
		return nil, fmt.Errorf("nexstarsim: empty request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepLocked()

	switch req[0] {
	case 'K':
		if len(req) < 2 {
			return nil, fmt.Errorf("nexstarsim: short echo request")
		}
		return []byte{req[1], nexstar.Terminator}, nil

	case 'V':
		return []byte{s.verMajor, s.verMin, nexstar.Terminator}, nil

	case 'm':
		return []byte{s.model, nexstar.Terminator}, nil

	case 'e', 'E':
		p := precisionFor(req[0] == 'E')
		decWire := nexstar.EncodeDeclination(s.currentDecDeg)
		return appendTerminator(nexstar.EncodeAnglePair(s.currentRADeg, decWire, p)), nil

	case 'r', 'R':
		p := precisionFor(req[0] == 'R')
		raDeg, decWire, err := decodeRequestAnglePair(req[1:], p)
		if err != nil {
			return nil, err
		}
		s.targetRADeg = wrapDeg(raDeg)
		s.targetDecDeg = nexstar.NormalizeDeclination(decWire)
		s.state = StateSlewing
		return []byte{nexstar.Terminator}, nil

	case 'z', 'Z':
		p := precisionFor(req[0] == 'Z')
		az, alt := astro.EquatorialToHorizontal(nexstar.RADegreesToHours(s.currentRADeg), s.currentDecDeg, s.loc.Latitude(), s.loc.Longitude(), float64(time.Now().Unix()))
		// Altitude is carried on the wire with the same signed-angle
		// convention as declination.
		altWire := nexstar.EncodeDeclination(alt)
		return appendTerminator(nexstar.EncodeAnglePair(az, altWire, p)), nil

	case 'b', 'B':
		p := precisionFor(req[0] == 'B')
		azDeg, altWire, err := decodeRequestAnglePair(req[1:], p)
		if err != nil {
			return nil, err
		}
		alt := nexstar.NormalizeDeclination(altWire)
		raHours, dec := astro.HorizontalToEquatorial(azDeg, alt, s.loc.Latitude(), s.loc.Longitude(), float64(time.Now().Unix()))
		s.targetRADeg = wrapDeg(nexstar.RAHoursToDegrees(raHours))
		s.targetDecDeg = dec
		s.state = StateSlewing
		return []byte{nexstar.Terminator}, nil

	case 'w':
		return appendTerminator(nexstar.EncodeLocation(s.loc)), nil

	case 'W':
		if len(req) < 9 {
			return nil, fmt.Errorf("nexstarsim: short location request")
		}
		s.loc = nexstar.DecodeLocation(req[1:9])
		return []byte{nexstar.Terminator}, nil

	case 'h':
		return appendTerminator(nexstar.EncodeUTCPayload(s.driftedUTCLocked())), nil

	case 'H':
		if len(req) < 9 {
			return nil, fmt.Errorf("nexstarsim: short time request")
		}
		s.utcPayload = nexstar.DecodeUTCPayload(req[1:9])
		s.utcSetAt = time.Now()
		return []byte{nexstar.Terminator}, nil

	case 't':
		return []byte{s.trackingMode, nexstar.Terminator}, nil

	case 'T':
		if len(req) < 2 {
			return nil, fmt.Errorf("nexstarsim: short tracking-mode request")
		}
		s.trackingMode = req[1]
		return []byte{nexstar.Terminator}, nil

	case 'J':
		b := byte(0)
		if s.alignmentDone {
			b = 1
		}
		return []byte{b, nexstar.Terminator}, nil

	case 'L':
		b := byte('0')
		if s.state != StateIdle {
			b = '1'
		}
		return []byte{b, nexstar.Terminator}, nil

	case 'M':
		s.state = StateIdle
		s.targetRADeg, s.targetDecDeg = s.currentRADeg, s.currentDecDeg
		s.axisRate = [2]float64{}
		return []byte{nexstar.Terminator}, nil

	case 'P':
		return s.passThroughLocked(req, respLen)

	default:
		return nil, fmt.Errorf("nexstarsim: unsupported opcode %q", req[0])
	}
}

func (s *Simulator) passThroughLocked(req []byte, respLen int) ([]byte, error) {
	if len(req) < 8 {
		return nil, fmt.Errorf("nexstarsim: short pass-through request")
	}
	device, cmd := req[2], req[3]

	axis := -1
	switch device {
	case nexstar.DeviceAzimuthMotor:
		axis = 0
	case nexstar.DeviceAltitudeMotor:
		axis = 1
	}

	if axis >= 0 && (cmd == nexstar.CmdSlewVariablePositive || cmd == nexstar.CmdSlewVariableNegative) {
		units := uint16(req[4])<<8 | uint16(req[5])
		rate := float64(units) / (3600 * 4)
		if cmd == nexstar.CmdSlewVariableNegative {
			rate = -rate
		}
		s.axisRate[axis] = rate
		if s.axisRate[0] != 0 || s.axisRate[1] != 0 {
			s.state = StateMoving
		} else if s.state == StateMoving {
			s.state = StateIdle
		}
	}

	// The expected-response-length field is informational; unimplemented
	// pass-through targets (GPS, RTC) answer with zero data bytes.
	if respLen <= 0 {
		respLen = 1
	}
	resp := make([]byte, respLen)
	resp[respLen-1] = nexstar.Terminator
	return resp, nil
}

// stepLocked advances kinematic state by the wall-clock delta since the
// last call. Must be called with mu held.
func (s *Simulator) stepLocked() {
	now := time.Now()
	dt := now.Sub(s.lastStep).Seconds()
	s.lastStep = now
	if dt <= 0 {
		return
	}

	switch s.state {
	case StateSlewing:
		newRA, raDone := stepWrapped(s.currentRADeg, s.targetRADeg, dt)
		newDec, decDone := stepClamped(s.currentDecDeg, s.targetDecDeg, dt)
		s.currentRADeg, s.currentDecDeg = newRA, newDec
		if raDone && decDone {
			s.state = StateIdle
		}

	case StateMoving:
		if s.axisRate[0] != 0 {
			s.currentRADeg = wrapDeg(s.currentRADeg + s.axisRate[0]*dt)
		}
		if s.axisRate[1] != 0 {
			s.currentDecDeg = clampf(s.currentDecDeg+s.axisRate[1]*dt, -90, 90)
		}
		if s.axisRate[0] == 0 && s.axisRate[1] == 0 {
			s.state = StateIdle
		}
	}
}

// speedFactor buckets the remaining distance into the coarse-to-fine
// approach speeds a real goto uses as it nears its target.
func speedFactor(absDelta float64) float64 {
	switch {
	case absDelta <= 5:
		return 0.25
	case absDelta <= 10:
		return 0.5
	case absDelta <= 20:
		return 0.75
	default:
		return 1.0
	}
}

// stepWrapped advances a wrap-around axis (RA/azimuth) one tick toward
// target, snapping once within 0.1 degrees.
func stepWrapped(current, target, dt float64) (next float64, done bool) {
	delta := math.Mod(target-current+540, 360) - 180
	if math.Abs(delta) <= 0.1 {
		return target, true
	}
	change := clampf(delta*speedFactor(math.Abs(delta)), -9, 9) * dt
	return wrapDeg(current + change), false
}

// stepClamped advances a bounded axis (declination/altitude) one tick
// toward target, snapping once within 0.1 degrees.
func stepClamped(current, target, dt float64) (next float64, done bool) {
	delta := target - current
	if math.Abs(delta) <= 0.1 {
		return target, true
	}
	change := clampf(delta*speedFactor(math.Abs(delta)), -9, 9) * dt
	return clampf(current+change, -90, 90), false
}

func (s *Simulator) driftedUTCLocked() nexstar.UTCPayload {
	elapsed := time.Since(s.utcSetAt)
	t := s.utcPayload.ToTime().Add(elapsed)
	return nexstar.FromTime(t, int(s.utcPayload.GMTOffset), s.utcPayload.IsDST)
}

func precisionFor(precise bool) nexstar.Precision {
	if precise {
		return nexstar.Precise
	}
	return nexstar.Coarse
}

// decodeRequestAnglePair parses the hex-pair body of an angle request (no
// trailing terminator, unlike a response). nexstar.DecodeAnglePair always
// drops the final byte as a terminator, so a harmless placeholder is
// appended before delegating to it.
func decodeRequestAnglePair(body []byte, p nexstar.Precision) (a, b float64, err error) {
	padded := append(append([]byte{}, body...), 0)
	return nexstar.DecodeAnglePair(padded, p)
}

func appendTerminator(b []byte) []byte {
	return append(b, nexstar.Terminator)
}

func wrapDeg(x float64) float64 {
	x = math.Mod(x, 360)
	if x < 0 {
		x += 360
	}
	return x
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
