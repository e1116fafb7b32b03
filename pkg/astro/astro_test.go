package astro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJulianDateJ2000Epoch(t *testing.T) {
	// 2000-01-01 12:00:00 UTC is Unix 946728000 and JD 2451545.0 exactly.
	assert.InDelta(t, 2451545.0, JulianDate(946728000), 1e-6)
}

func TestLocalSiderealTimeInRange(t *testing.T) {
	lst := LocalSiderealTime(-84.3881, 1785616800)
	assert.GreaterOrEqual(t, lst, 0.0)
	assert.Less(t, lst, 360.0)
}

func TestLocalSiderealTimeLongitudeShift(t *testing.T) {
	base := LocalSiderealTime(0, 1785616800)
	shifted := LocalSiderealTime(15, 1785616800)
	assert.InDelta(t, 15, shifted-base, 1e-6, "every 15 degrees east adds one hour of sidereal time")
}

func TestEquatorialHorizontalRoundTrip(t *testing.T) {
	lat, lon := 33.8678, -84.3881
	now := 1785616800.0

	for _, tt := range []struct{ ra, dec float64 }{
		{10, 45}, {0, 0}, {18, -30}, {23.5, 80},
	} {
		az, alt := EquatorialToHorizontal(tt.ra, tt.dec, lat, lon, now)
		ra, dec := HorizontalToEquatorial(az, alt, lat, lon, now)

		assert.InDelta(t, tt.dec, dec, 0.05, "dec round trip for ra=%v dec=%v", tt.ra, tt.dec)

		raDiff := ra - tt.ra
		for raDiff > 12 {
			raDiff -= 24
		}
		for raDiff < -12 {
			raDiff += 24
		}
		assert.InDelta(t, 0, raDiff, 0.05, "ra round trip for ra=%v dec=%v", tt.ra, tt.dec)
	}
}

func TestEquatorialToHorizontalAzimuthInRange(t *testing.T) {
	az, alt := EquatorialToHorizontal(6, 20, 40, -105, 1785616800)
	assert.GreaterOrEqual(t, az, 0.0)
	assert.Less(t, az, 360.0)
	assert.GreaterOrEqual(t, alt, -90.0)
	assert.LessOrEqual(t, alt, 90.0)
}

func TestZenithHasUndefinedAzimuthButValidAltitude(t *testing.T) {
	// Looking straight overhead at the site's own latitude/meridian: altitude
	// should approach 90 degrees.
	lat := 33.8678
	lst := LocalSiderealTime(-84.3881, 1785616800)
	_, alt := EquatorialToHorizontal(lst/15, lat, lat, -84.3881, 1785616800)
	assert.InDelta(t, 90, alt, 0.5)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, clamp(5, -1, 1))
	assert.Equal(t, -1.0, clamp(-5, -1, 1))
	assert.Equal(t, 0.5, clamp(0.5, -1, 1))
}
