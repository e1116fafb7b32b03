package nexstar

import "time"

// UTCPayload is the 8-byte NexStar local-time-with-offset payload. The
// carried time is local, not UTC; GMTOffset converts to/from a monotonic
// UTC clock.
type UTCPayload struct {
	Hour, Minute, Second byte
	Month, Day           byte
	YearMinus2000        byte
	GMTOffset            int8 // -128..127; wire byte is its two's-complement encoding
	IsDST                bool
}

func EncodeUTCPayload(t UTCPayload) []byte {
	return []byte{
		t.Hour, t.Minute, t.Second,
		t.Month, t.Day, t.YearMinus2000,
		byte(t.GMTOffset),
		boolByte(t.IsDST),
	}
}

func DecodeUTCPayload(b []byte) UTCPayload {
	return UTCPayload{
		Hour: b[0], Minute: b[1], Second: b[2],
		Month: b[3], Day: b[4], YearMinus2000: b[5],
		GMTOffset: int8(b[6]),
		IsDST:     b[7] != 0,
	}
}

// FromTime builds a UTCPayload carrying the local time equivalent to t,
// given a fixed GMT offset in hours and whether DST is in effect. The wire
// format has no sub-second field, so fractional seconds are dropped.
func FromTime(t time.Time, gmtOffsetHours int, dst bool) UTCPayload {
	local := t.In(time.FixedZone("nexstar", gmtOffsetHours*3600))
	year := local.Year() - 2000
	return UTCPayload{
		Hour:          byte(local.Hour()),
		Minute:        byte(local.Minute()),
		Second:        byte(local.Second()),
		Month:         byte(local.Month()),
		Day:           byte(local.Day()),
		YearMinus2000: byte(year),
		GMTOffset:     int8(gmtOffsetHours),
		IsDST:         dst,
	}
}

// ToTime reconstructs a time.Time (UTC) from a decoded payload, treating
// the carried fields as local time at the payload's GMT offset.
func (t UTCPayload) ToTime() time.Time {
	year := 2000 + int(t.YearMinus2000)
	loc := time.FixedZone("nexstar", int(t.GMTOffset)*3600)
	local := time.Date(year, time.Month(t.Month), int(t.Day),
		int(t.Hour), int(t.Minute), int(t.Second), 0, loc)
	return local.UTC()
}
