package nexstar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToNexStarUnitsCoarse(t *testing.T) {
	assert.Equal(t, uint32(0), ToNexStarUnits(0, Coarse))
	assert.Equal(t, uint32(0x8000), ToNexStarUnits(180, Coarse))
	assert.Equal(t, uint32(0), ToNexStarUnits(360, Coarse), "360 wraps to 0")
}

func TestToNexStarUnitsNegativeWraps(t *testing.T) {
	// -90 degrees should behave like 270 degrees.
	assert.Equal(t, ToNexStarUnits(270, Coarse), ToNexStarUnits(-90, Coarse))
}

func TestFromNexStarUnitsRoundTrip(t *testing.T) {
	for _, p := range []Precision{Coarse, Precise} {
		for _, angle := range []float64{0, 45, 90, 180, 270, 359} {
			units := ToNexStarUnits(angle, p)
			back := FromNexStarUnits(units, p)
			assert.InDelta(t, angle, back, 360.0/p.units()+1e-6, "precision=%v angle=%v", p, angle)
		}
	}
}

func TestNormalizeDeclination(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{0, 0},
		{45, 45},
		{90, 90},
		{91, 89},
		{180, 0},
		{270, -90},
		{271, -89},
		{350, -10},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeDeclination(tt.raw), 1e-9, "raw=%v", tt.raw)
	}
}

func TestEncodeDeclination(t *testing.T) {
	assert.Equal(t, 45.0, EncodeDeclination(45))
	assert.Equal(t, 335.0, EncodeDeclination(-25))
}

func TestDeclinationEncodeNormalizeRoundTrip(t *testing.T) {
	for _, dec := range []float64{0, 45, 89.9, -45, -89.9} {
		wire := EncodeDeclination(dec)
		assert.InDelta(t, dec, NormalizeDeclination(wire), 1e-9, "dec=%v", dec)
	}
}

func TestRAHoursDegreesRoundTrip(t *testing.T) {
	for _, hours := range []float64{0, 1, 6, 12, 18, 23.999} {
		deg := RAHoursToDegrees(hours)
		assert.InDelta(t, hours, RADegreesToHours(deg), 1e-9, "hours=%v", hours)
	}
}

func TestRAHoursToDegreesWraps(t *testing.T) {
	assert.InDelta(t, 0, RAHoursToDegrees(24), 1e-9)
}
