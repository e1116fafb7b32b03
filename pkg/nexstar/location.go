package nexstar

// Location is the 8-byte NexStar site location payload: degrees/minutes/
// seconds for latitude and longitude, each with a hemisphere flag.
type Location struct {
	LatDeg, LatMin, LatSec byte
	LatIsSouth             bool
	LonDeg, LonMin, LonSec byte
	LonIsWest              bool
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func EncodeLocation(l Location) []byte {
	return []byte{
		l.LatDeg, l.LatMin, l.LatSec, boolByte(l.LatIsSouth),
		l.LonDeg, l.LonMin, l.LonSec, boolByte(l.LonIsWest),
	}
}

func DecodeLocation(b []byte) Location {
	return Location{
		LatDeg: b[0], LatMin: b[1], LatSec: b[2], LatIsSouth: b[3] != 0,
		LonDeg: b[4], LonMin: b[5], LonSec: b[6], LonIsWest: b[7] != 0,
	}
}

// DMSToDecimal converts a degrees/minutes/seconds + hemisphere triple into
// signed decimal degrees (south/west negative).
func DMSToDecimal(deg, min, sec byte, negative bool) float64 {
	d := float64(deg) + float64(min)/60 + float64(sec)/3600
	if negative {
		return -d
	}
	return d
}

// DecimalToDMS splits signed decimal degrees into a degrees/minutes/seconds
// + hemisphere-flag triple.
func DecimalToDMS(decimal float64) (deg, min, sec byte, negative bool) {
	negative = decimal < 0
	d := decimal
	if negative {
		d = -d
	}
	whole := int(d)
	fracMin := (d - float64(whole)) * 60
	minutes := int(fracMin)
	seconds := int((fracMin - float64(minutes)) * 60)
	return byte(whole), byte(minutes), byte(seconds), negative
}

// NewLocation builds a Location payload from signed decimal latitude and
// longitude in degrees.
func NewLocation(latDeg, lonDeg float64) Location {
	ld, lm, ls, south := DecimalToDMS(latDeg)
	od, om, os, west := DecimalToDMS(lonDeg)
	return Location{
		LatDeg: ld, LatMin: lm, LatSec: ls, LatIsSouth: south,
		LonDeg: od, LonMin: om, LonSec: os, LonIsWest: west,
	}
}

// Latitude returns the signed decimal latitude.
func (l Location) Latitude() float64 {
	return DMSToDecimal(l.LatDeg, l.LatMin, l.LatSec, l.LatIsSouth)
}

// Longitude returns the signed decimal longitude.
func (l Location) Longitude() float64 {
	return DMSToDecimal(l.LonDeg, l.LonMin, l.LonSec, l.LonIsWest)
}
