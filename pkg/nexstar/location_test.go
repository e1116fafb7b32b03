package nexstar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeLocationRoundTrip(t *testing.T) {
	loc := Location{
		LatDeg: 33, LatMin: 52, LatSec: 4, LatIsSouth: false,
		LonDeg: 84, LonMin: 23, LonSec: 17, LonIsWest: true,
	}
	wire := EncodeLocation(loc)
	assert.Len(t, wire, 8)

	back := DecodeLocation(wire)
	assert.Equal(t, loc, back)
}

func TestDMSToDecimal(t *testing.T) {
	assert.InDelta(t, 33.8678, DMSToDecimal(33, 52, 4, false), 1e-4)
	assert.InDelta(t, -84.3881, DMSToDecimal(84, 23, 17, true), 1e-4)
}

func TestDecimalToDMSRoundTrip(t *testing.T) {
	for _, decimal := range []float64{0, 33.8678, -84.3881, 89.9997} {
		deg, min, sec, negative := DecimalToDMS(decimal)
		back := DMSToDecimal(deg, min, sec, negative)
		assert.InDelta(t, decimal, back, 1.0/3600, "decimal=%v", decimal)
	}
}

func TestNewLocationLatitudeLongitude(t *testing.T) {
	loc := NewLocation(33.8678, -84.3881)
	assert.InDelta(t, 33.8678, loc.Latitude(), 1e-4)
	assert.InDelta(t, -84.3881, loc.Longitude(), 1e-4)
	assert.False(t, loc.LatIsSouth)
	assert.True(t, loc.LonIsWest)
}

func TestNewLocationSouthernHemisphere(t *testing.T) {
	loc := NewLocation(-33.8678, 151.2093)
	assert.True(t, loc.LatIsSouth)
	assert.False(t, loc.LonIsWest)
	assert.InDelta(t, -33.8678, loc.Latitude(), 1e-4)
	assert.InDelta(t, 151.2093, loc.Longitude(), 1.0/3600)
}
