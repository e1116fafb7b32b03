// Package nexstar implements the Celestron NexStar hand-controller serial
// protocol: typed command/response records with fixed byte layouts, angle
// and location/time encodings, and the pass-through motor command
// envelope. Framing is length-delimited with a '#' terminator sentinel.
package nexstar

import "math"

// Precision selects the 16-bit ("coarse") or 32-bit ("precise") angle unit
// scale NexStar uses on the wire.
type Precision int

const (
	Coarse  Precision = 16
	Precise Precision = 32
)

func (p Precision) units() float64 {
	return math.Exp2(float64(p))
}

// ToNexStarUnits converts a degree angle in [0,360) to the integer unit
// value NexStar encodes on the wire: floor(fmod(angle,360) * 2^bits / 360).
func ToNexStarUnits(angleDeg float64, p Precision) uint32 {
	a := math.Mod(angleDeg, 360)
	if a < 0 {
		a += 360
	}
	return uint32(math.Floor(a * p.units() / 360))
}

// FromNexStarUnits converts a wire unit value back to degrees:
// units * 360 / 2^bits.
func FromNexStarUnits(units uint32, p Precision) float64 {
	return float64(units) * 360 / p.units()
}

// NormalizeDeclination maps a raw decoded wire angle (always in [0,360))
// to a signed declination in [-90, 90]:
//   - [0, 90]    → itself
//   - (90, 270]  → 180 - x
//   - (270, 360) → x - 360
func NormalizeDeclination(x float64) float64 {
	switch {
	case x <= 90:
		return x
	case x <= 270:
		return 180 - x
	default:
		return x - 360
	}
}

// EncodeDeclination is NormalizeDeclination's inverse for the wire: negative
// declinations are shifted by +360 before angle-unit encoding.
func EncodeDeclination(dec float64) float64 {
	if dec < 0 {
		return dec + 360
	}
	return dec
}

// RAHoursToDegrees converts right ascension in hours to the degrees the
// wire actually carries (15 * hours).
func RAHoursToDegrees(hours float64) float64 {
	return math.Mod(hours*15, 360)
}

// RADegreesToHours is the inverse of RAHoursToDegrees.
func RADegreesToHours(degrees float64) float64 {
	return degrees / 15
}
