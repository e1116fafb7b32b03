// Package astro implements the small set of celestial-coordinate helpers
// the driver and simulator need: local sidereal time and the
// equatorial/horizontal transforms, written to the standard low-precision
// formulas (Meeus-style polynomial for GMST, spherical-trigonometry
// alt/az).
package astro

import "math"

const degToRad = math.Pi / 180
const radToDeg = 180 / math.Pi

// JulianDate returns the Julian Date for a given Unix time in seconds.
func JulianDate(unixSeconds float64) float64 {
	return unixSeconds/86400.0 + 2440587.5
}

// LocalSiderealTime returns the local (mean, low-precision) sidereal
// time in degrees [0,360) for the given site longitude (degrees, east
// positive) and moment in time (Unix seconds, UTC).
func LocalSiderealTime(lonDeg float64, unixSeconds float64) float64 {
	jd := JulianDate(unixSeconds)
	d := jd - 2451545.0 // days since J2000.0

	// Greenwich mean sidereal time, degrees (low-precision polynomial).
	gmst := 280.46061837 + 360.98564736629*d
	gmst = math.Mod(gmst, 360)
	if gmst < 0 {
		gmst += 360
	}

	lst := gmst + lonDeg
	lst = math.Mod(lst, 360)
	if lst < 0 {
		lst += 360
	}
	return lst
}

// EquatorialToHorizontal converts (rightAscensionHours, declinationDeg) at
// the given site (latitudeDeg, longitudeDeg) and moment (unixSeconds, UTC)
// into (azimuthDeg, altitudeDeg). Azimuth is measured from north through
// east, in [0,360).
func EquatorialToHorizontal(rightAscensionHours, declinationDeg, latitudeDeg, longitudeDeg, unixSeconds float64) (azimuthDeg, altitudeDeg float64) {
	lst := LocalSiderealTime(longitudeDeg, unixSeconds)
	ha := lst - rightAscensionHours*15 // hour angle, degrees
	ha = math.Mod(ha, 360)
	if ha < 0 {
		ha += 360
	}

	haRad := ha * degToRad
	decRad := declinationDeg * degToRad
	latRad := latitudeDeg * degToRad

	sinAlt := math.Sin(decRad)*math.Sin(latRad) + math.Cos(decRad)*math.Cos(latRad)*math.Cos(haRad)
	altRad := math.Asin(clamp(sinAlt, -1, 1))

	cosAz := (math.Sin(decRad) - math.Sin(altRad)*math.Sin(latRad)) / (math.Cos(altRad) * math.Cos(latRad))
	azRad := math.Acos(clamp(cosAz, -1, 1))
	az := azRad * radToDeg
	if math.Sin(haRad) > 0 {
		az = 360 - az
	}

	return az, altRad * radToDeg
}

// HorizontalToEquatorial is the inverse of EquatorialToHorizontal: given
// (azimuthDeg, altitudeDeg) at a site and moment, returns
// (rightAscensionHours, declinationDeg).
func HorizontalToEquatorial(azimuthDeg, altitudeDeg, latitudeDeg, longitudeDeg, unixSeconds float64) (rightAscensionHours, declinationDeg float64) {
	azRad := azimuthDeg * degToRad
	altRad := altitudeDeg * degToRad
	latRad := latitudeDeg * degToRad

	sinDec := math.Sin(altRad)*math.Sin(latRad) + math.Cos(altRad)*math.Cos(latRad)*math.Cos(azRad)
	decRad := math.Asin(clamp(sinDec, -1, 1))

	cosHA := (math.Sin(altRad) - math.Sin(decRad)*math.Sin(latRad)) / (math.Cos(decRad) * math.Cos(latRad))
	haRad := math.Acos(clamp(cosHA, -1, 1))
	ha := haRad * radToDeg
	if math.Sin(azRad) > 0 {
		ha = 360 - ha
	}

	lst := LocalSiderealTime(longitudeDeg, unixSeconds)
	ra := math.Mod(lst-ha, 360)
	if ra < 0 {
		ra += 360
	}

	return ra / 15, decRad * radToDeg
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
