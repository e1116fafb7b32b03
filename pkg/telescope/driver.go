package telescope

import (
	"context"
	"time"
)

// TrackingRate enumerates the ASCOM tracking rate values (0..3).
type TrackingRate int

const (
	TrackingSidereal TrackingRate = 0
	TrackingLunar    TrackingRate = 1
	TrackingSolar    TrackingRate = 2
	TrackingKing     TrackingRate = 3
)

// PierSide enumerates ASCOM pier-side values.
type PierSide int

const (
	PierUnknown PierSide = -1
	PierEast    PierSide = 0
	PierWest    PierSide = 1
)

// AxisRate is a supported {minimum, maximum} rate pair, in degrees/second,
// for a given movement axis.
type AxisRate struct {
	Minimum float64
	Maximum float64
}

// Driver is the hardware-facing half of a telescope: the interface the
// facade's gated methods delegate to once every precondition has passed.
// A capability-bearing interface plus a value-type Telescope that owns the
// static metadata and connection state replaces a class hierarchy here.
//
// Implementations embed BaseDriver to get not-implemented defaults for any
// method they don't support.
type Driver interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	Altitude() (float64, error)
	Azimuth() (float64, error)
	Declination() (float64, error)
	RightAscension() (float64, error)
	Slewing() (bool, error)
	SiderealTime() (float64, error)
	AtHome() (bool, error)
	AtPark() (bool, error)
	IsPulseGuiding() (bool, error)
	DestinationSideOfPier(ra, dec float64) (PierSide, error)

	DeclinationRate() (float64, error)
	SetDeclinationRate(rate float64) error
	RightAscensionRate() (float64, error)
	SetRightAscensionRate(rate float64) error
	GuideRateDeclination() (float64, error)
	SetGuideRateDeclination(rate float64) error
	GuideRateRightAscension() (float64, error)
	SetGuideRateRightAscension(rate float64) error

	DoesRefraction() (bool, error)
	SetDoesRefraction(bool) error
	SideOfPier() (PierSide, error)
	SetSideOfPier(PierSide) error

	SiteElevation() (float64, error)
	SetSiteElevation(meters float64) error
	SiteLatitude() (float64, error)
	SetSiteLatitude(degrees float64) error
	SiteLongitude() (float64, error)
	SetSiteLongitude(degrees float64) error
	SlewSettleTime() (float64, error)
	SetSlewSettleTime(seconds float64) error

	Tracking() (bool, error)
	SetTracking(bool) error
	TrackingRate() (TrackingRate, error)
	SetTrackingRate(TrackingRate) error
	TrackingRates() ([]TrackingRate, error)

	UTCDate() (time.Time, error)
	SetUTCDate(time.Time) error

	AbortSlew() error
	FindHome() error
	AxisRates(axis int) ([]AxisRate, error)
	MoveAxis(axis int, rate float64) error
	Park() error
	SetPark() error
	PulseGuide(direction int, durationMs int) error
	SlewToAltAz(az, alt float64) error
	SlewToAltAzAsync(az, alt float64) error
	SlewToCoordinates(ra, dec float64) error
	SlewToCoordinatesAsync(ra, dec float64) error
	SyncToAltAz(az, alt float64) error
	SyncToCoordinates(ra, dec float64) error
	Unpark() error
}

// BaseDriver implements Driver with every method returning not_implemented
// (or the zero value with a not_implemented error), except Connect and
// Disconnect, which succeed as no-ops, and TrackingRates, which lists all
// four rates. Concrete drivers embed this and override only the operations
// their hardware actually supports.
type BaseDriver struct{}

func (BaseDriver) Connect(context.Context) error    { return nil }
func (BaseDriver) Disconnect(context.Context) error { return nil }

func (BaseDriver) Altitude() (float64, error)       { return 0, errNotImplemented }
func (BaseDriver) Azimuth() (float64, error)        { return 0, errNotImplemented }
func (BaseDriver) Declination() (float64, error)    { return 0, errNotImplemented }
func (BaseDriver) RightAscension() (float64, error) { return 0, errNotImplemented }
func (BaseDriver) Slewing() (bool, error)           { return false, errNotImplemented }
func (BaseDriver) SiderealTime() (float64, error)   { return 0, errNotImplemented }
func (BaseDriver) AtHome() (bool, error)             { return false, errNotImplemented }
func (BaseDriver) AtPark() (bool, error)             { return false, errNotImplemented }
func (BaseDriver) IsPulseGuiding() (bool, error)     { return false, errNotImplemented }
func (BaseDriver) DestinationSideOfPier(float64, float64) (PierSide, error) {
	return PierUnknown, errNotImplemented
}

func (BaseDriver) DeclinationRate() (float64, error)       { return 0, errNotImplemented }
func (BaseDriver) SetDeclinationRate(float64) error         { return errNotImplemented }
func (BaseDriver) RightAscensionRate() (float64, error)     { return 0, errNotImplemented }
func (BaseDriver) SetRightAscensionRate(float64) error      { return errNotImplemented }
func (BaseDriver) GuideRateDeclination() (float64, error)   { return 0, errNotImplemented }
func (BaseDriver) SetGuideRateDeclination(float64) error    { return errNotImplemented }
func (BaseDriver) GuideRateRightAscension() (float64, error) { return 0, errNotImplemented }
func (BaseDriver) SetGuideRateRightAscension(float64) error  { return errNotImplemented }

func (BaseDriver) DoesRefraction() (bool, error)  { return false, errNotImplemented }
func (BaseDriver) SetDoesRefraction(bool) error   { return errNotImplemented }
func (BaseDriver) SideOfPier() (PierSide, error)  { return PierUnknown, errNotImplemented }
func (BaseDriver) SetSideOfPier(PierSide) error   { return errNotImplemented }

func (BaseDriver) SiteElevation() (float64, error)    { return 0, errNotImplemented }
func (BaseDriver) SetSiteElevation(float64) error     { return errNotImplemented }
func (BaseDriver) SiteLatitude() (float64, error)     { return 0, errNotImplemented }
func (BaseDriver) SetSiteLatitude(float64) error      { return errNotImplemented }
func (BaseDriver) SiteLongitude() (float64, error)    { return 0, errNotImplemented }
func (BaseDriver) SetSiteLongitude(float64) error     { return errNotImplemented }
func (BaseDriver) SlewSettleTime() (float64, error)   { return 0, errNotImplemented }
func (BaseDriver) SetSlewSettleTime(float64) error    { return errNotImplemented }

func (BaseDriver) Tracking() (bool, error)                { return false, errNotImplemented }
func (BaseDriver) SetTracking(bool) error                 { return errNotImplemented }
func (BaseDriver) TrackingRate() (TrackingRate, error)     { return TrackingSidereal, errNotImplemented }
func (BaseDriver) SetTrackingRate(TrackingRate) error      { return errNotImplemented }
func (BaseDriver) TrackingRates() ([]TrackingRate, error) {
	return []TrackingRate{TrackingSidereal, TrackingLunar, TrackingSolar, TrackingKing}, nil
}

func (BaseDriver) UTCDate() (time.Time, error)    { return time.Time{}, errNotImplemented }
func (BaseDriver) SetUTCDate(time.Time) error     { return errNotImplemented }

func (BaseDriver) AbortSlew() error { return errNotImplemented }
func (BaseDriver) FindHome() error  { return errNotImplemented }
func (BaseDriver) AxisRates(axis int) ([]AxisRate, error) {
	return nil, errNotImplemented
}
func (BaseDriver) MoveAxis(int, float64) error         { return errNotImplemented }
func (BaseDriver) Park() error                         { return errNotImplemented }
func (BaseDriver) SetPark() error                      { return errNotImplemented }
func (BaseDriver) PulseGuide(int, int) error           { return errNotImplemented }
func (BaseDriver) SlewToAltAz(float64, float64) error  { return errNotImplemented }
func (BaseDriver) SlewToAltAzAsync(float64, float64) error { return errNotImplemented }
func (BaseDriver) SlewToCoordinates(float64, float64) error      { return errNotImplemented }
func (BaseDriver) SlewToCoordinatesAsync(float64, float64) error { return errNotImplemented }
func (BaseDriver) SyncToAltAz(float64, float64) error            { return errNotImplemented }
func (BaseDriver) SyncToCoordinates(float64, float64) error      { return errNotImplemented }
func (BaseDriver) Unpark() error                                 { return errNotImplemented }

// errNotImplemented is a sentinel the facade recognizes and converts to
// ascomerr.NotImplemented(). BaseDriver returns it, and ErrNotImplemented
// below exports the same value for concrete drivers.
var errNotImplemented = baseDriverNotImplemented{}

type baseDriverNotImplemented struct{}

func (baseDriverNotImplemented) Error() string { return "not implemented" }

// IsNotImplemented reports whether err is the BaseDriver not-implemented
// sentinel.
func IsNotImplemented(err error) bool {
	_, ok := err.(baseDriverNotImplemented)
	return ok
}

// ErrNotImplemented is the sentinel BaseDriver methods return. Concrete
// drivers that only support some arguments of an otherwise-implemented
// operation (e.g. an axis with no physical motor) return this directly to
// get the same not_implemented mapping.
var ErrNotImplemented = errNotImplemented
