// Package telescope implements the ASCOM Alpaca Telescope facade:
// one validated method per API-visible capability, each composing
// precondition checks with a driver call through the result algebra. No
// method runs its driver operation unless every precondition in its gate
// list is Ok. SyncToTarget's not-parked precondition reads the driver's
// AtPark before any gate is checked, even on a disconnected device.
package telescope

import (
	"context"
	"sync"
	"time"

	"github.com/nexstar-alpaca/bridge/pkg/ascomerr"
	"github.com/nexstar-alpaca/bridge/pkg/result"
)

// StaticMetadata is fixed at construction and shared freely across handler
// goroutines without locking.
type StaticMetadata struct {
	Description         string
	DriverInfo          string
	DriverVersion       string
	InterfaceVersion    int
	Name                string
	AlignmentMode       int
	ApertureArea        float64
	ApertureDiameter    float64
	FocalLength         float64
	EquatorialSystem    int
	SupportedAxisRates  map[int][]AxisRate
	SupportedTrackRates []TrackingRate
}

// Telescope is the value type that owns static metadata, the capability
// word, and connection/target state, and delegates every operation to a
// boxed Driver.
type Telescope struct {
	DeviceBase

	Driver       Driver
	Capabilities Capabilities
	Metadata     StaticMetadata

	targetMu  sync.Mutex
	targetRA  *float64
	targetDec *float64
}

// NewTelescope constructs a Telescope around the given driver.
func NewTelescope(driver Driver, caps Capabilities, meta StaticMetadata) *Telescope {
	return &Telescope{Driver: driver, Capabilities: caps, Metadata: meta}
}

// SetConnected transitions the connection flag, proving the wire is alive
// through the driver on the way up and releasing it on the way down.
// Idempotent: setting the already-current value is a no-op that never
// touches the driver.
func (t *Telescope) SetConnected(connected bool) result.Result[result.Unit] {
	if connected == t.IsConnected() {
		return result.OkUnit()
	}
	if connected {
		if err := t.Driver.Connect(context.Background()); err != nil {
			return result.Err[result.Unit](driverErr(err))
		}
	} else {
		if err := t.Driver.Disconnect(context.Background()); err != nil {
			return result.Err[result.Unit](driverErr(err))
		}
	}
	return t.DeviceBase.SetConnected(connected)
}

func driverErr(err error) *ascomerr.Error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*ascomerr.Error); ok {
		return ae
	}
	if IsNotImplemented(err) {
		return ascomerr.NotImplemented()
	}
	return ascomerr.InvalidOperation()
}

// gate runs n preconditions left to right, returning the first Err; if all
// pass, it runs the driver call.
func gate[T any](call func() (T, error), gates ...result.Result[result.Unit]) result.Result[T] {
	for _, g := range gates {
		if err := g.UnwrapErr(); err != nil {
			return result.Err[T](err)
		}
	}
	v, err := call()
	if err != nil {
		return result.Err[T](driverErr(err))
	}
	return result.Ok(v)
}

func gateUnit(call func() error, gates ...result.Result[result.Unit]) result.Result[result.Unit] {
	for _, g := range gates {
		if err := g.UnwrapErr(); err != nil {
			return result.Err[result.Unit](err)
		}
	}
	if err := call(); err != nil {
		return result.Err[result.Unit](driverErr(err))
	}
	return result.OkUnit()
}

// --- connected-only getters ---

func (t *Telescope) Altitude() result.Result[float64] {
	return gate(t.Driver.Altitude, t.CheckConnected())
}

func (t *Telescope) Azimuth() result.Result[float64] {
	return gate(t.Driver.Azimuth, t.CheckConnected())
}

func (t *Telescope) Declination() result.Result[float64] {
	return gate(t.Driver.Declination, t.CheckConnected())
}

func (t *Telescope) RightAscension() result.Result[float64] {
	return gate(t.Driver.RightAscension, t.CheckConnected())
}

func (t *Telescope) Slewing() result.Result[bool] {
	return gate(t.Driver.Slewing, t.CheckConnected())
}

func (t *Telescope) SiderealTime() result.Result[float64] {
	return gate(t.Driver.SiderealTime, t.CheckConnected())
}

func (t *Telescope) AtHome() result.Result[bool] {
	return gate(t.Driver.AtHome, t.CheckConnected())
}

func (t *Telescope) AtPark() result.Result[bool] {
	return gate(t.Driver.AtPark, t.CheckConnected())
}

func (t *Telescope) IsPulseGuiding() result.Result[bool] {
	return gate(t.Driver.IsPulseGuiding,
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanPulseGuide)))
}

func (t *Telescope) DestinationSideOfPier(ra, dec float64) result.Result[PierSide] {
	return gate(func() (PierSide, error) { return t.Driver.DestinationSideOfPier(ra, dec) },
		t.CheckConnected())
}

// --- rate properties ---

func (t *Telescope) DeclinationRate() result.Result[float64] {
	return gate(t.Driver.DeclinationRate, t.CheckConnected())
}

func (t *Telescope) SetDeclinationRate(rate float64) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SetDeclinationRate(rate) },
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanSetDeclinationRate)))
}

func (t *Telescope) RightAscensionRate() result.Result[float64] {
	return gate(t.Driver.RightAscensionRate, t.CheckConnected())
}

func (t *Telescope) SetRightAscensionRate(rate float64) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SetRightAscensionRate(rate) },
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanSetRightAscensionRate)))
}

func (t *Telescope) GuideRateDeclination() result.Result[float64] {
	return gate(t.Driver.GuideRateDeclination, t.CheckConnected())
}

func (t *Telescope) SetGuideRateDeclination(rate float64) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SetGuideRateDeclination(rate) },
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanSetGuideRates)))
}

func (t *Telescope) GuideRateRightAscension() result.Result[float64] {
	return gate(t.Driver.GuideRateRightAscension, t.CheckConnected())
}

func (t *Telescope) SetGuideRateRightAscension(rate float64) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SetGuideRateRightAscension(rate) },
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanSetGuideRates)))
}

// --- refraction / pier side ---

func (t *Telescope) DoesRefraction() result.Result[bool] {
	return gate(t.Driver.DoesRefraction, t.CheckConnected())
}

func (t *Telescope) SetDoesRefraction(v bool) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SetDoesRefraction(v) }, t.CheckConnected())
}

func (t *Telescope) SideOfPier() result.Result[PierSide] {
	return gate(t.Driver.SideOfPier, t.CheckConnected())
}

func (t *Telescope) SetSideOfPier(p PierSide) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SetSideOfPier(p) },
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanSetPierSide)))
}

// --- site properties ---

func (t *Telescope) SiteElevation() result.Result[float64] {
	return gate(t.Driver.SiteElevation, t.CheckConnected())
}

func (t *Telescope) SetSiteElevation(meters float64) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SetSiteElevation(meters) },
		t.CheckConnected(),
		t.CheckValue(meters >= -300 && meters <= 10000))
}

func (t *Telescope) SiteLatitude() result.Result[float64] {
	return gate(t.Driver.SiteLatitude, t.CheckConnected())
}

func (t *Telescope) SetSiteLatitude(deg float64) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SetSiteLatitude(deg) },
		t.CheckConnected(),
		t.CheckValue(deg >= -90 && deg <= 90))
}

func (t *Telescope) SiteLongitude() result.Result[float64] {
	return gate(t.Driver.SiteLongitude, t.CheckConnected())
}

func (t *Telescope) SetSiteLongitude(deg float64) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SetSiteLongitude(deg) },
		t.CheckConnected(),
		t.CheckValue(deg >= -180 && deg <= 180))
}

func (t *Telescope) SlewSettleTime() result.Result[float64] {
	return gate(t.Driver.SlewSettleTime, t.CheckConnected())
}

func (t *Telescope) SetSlewSettleTime(seconds float64) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SetSlewSettleTime(seconds) },
		t.CheckConnected(),
		t.CheckValue(seconds >= 0))
}

// --- target coordinates (unset until written) ---

func (t *Telescope) TargetDeclination() result.Result[float64] {
	t.targetMu.Lock()
	v := t.targetDec
	t.targetMu.Unlock()
	if err := t.CheckConnected().UnwrapErr(); err != nil {
		return result.Err[float64](err)
	}
	if v == nil {
		return result.Err[float64](ascomerr.ValueNotSet())
	}
	return result.Ok(*v)
}

func (t *Telescope) SetTargetDeclination(deg float64) result.Result[result.Unit] {
	r := gateUnit(func() error { return nil },
		t.CheckConnected(),
		t.CheckValue(deg >= -90 && deg <= 90))
	if r.IsOk() {
		t.targetMu.Lock()
		t.targetDec = &deg
		t.targetMu.Unlock()
	}
	return r
}

func (t *Telescope) TargetRightAscension() result.Result[float64] {
	t.targetMu.Lock()
	v := t.targetRA
	t.targetMu.Unlock()
	if err := t.CheckConnected().UnwrapErr(); err != nil {
		return result.Err[float64](err)
	}
	if v == nil {
		return result.Err[float64](ascomerr.ValueNotSet())
	}
	return result.Ok(*v)
}

func (t *Telescope) SetTargetRightAscension(hours float64) result.Result[result.Unit] {
	r := gateUnit(func() error { return nil },
		t.CheckConnected(),
		t.CheckValue(hours >= 0 && hours <= 24))
	if r.IsOk() {
		t.targetMu.Lock()
		t.targetRA = &hours
		t.targetMu.Unlock()
	}
	return r
}

// --- tracking ---

func (t *Telescope) Tracking() result.Result[bool] {
	return gate(t.Driver.Tracking, t.CheckConnected())
}

func (t *Telescope) SetTracking(v bool) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SetTracking(v) }, t.CheckConnected())
}

func (t *Telescope) TrackingRate() result.Result[TrackingRate] {
	return gate(t.Driver.TrackingRate, t.CheckConnected())
}

func (t *Telescope) SetTrackingRate(r int) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SetTrackingRate(TrackingRate(r)) },
		t.CheckConnected(),
		t.CheckValue(r >= 0 && r <= 3))
}

func (t *Telescope) TrackingRates() result.Result[[]TrackingRate] {
	return gate(t.Driver.TrackingRates, t.CheckConnected())
}

// --- utc date ---

func (t *Telescope) UTCDate() result.Result[time.Time] {
	return gate(t.Driver.UTCDate, t.CheckConnected())
}

func (t *Telescope) SetUTCDate(when time.Time) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SetUTCDate(when) }, t.CheckConnected())
}

// --- motion commands ---

func (t *Telescope) AbortSlew() result.Result[result.Unit] {
	return gateUnit(t.Driver.AbortSlew, t.CheckConnected())
}

func (t *Telescope) FindHome() result.Result[result.Unit] {
	return gateUnit(t.Driver.FindHome,
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanFindHome)))
}

// AxisRates answers from the statically-declared metadata when a rate
// vector was configured for the axis, falling back to the driver otherwise.
// Ungated beyond the axis range check: the vector is static, so clients may
// read it before connecting.
func (t *Telescope) AxisRates(axis int) result.Result[[]AxisRate] {
	if axis < 0 || axis > 2 {
		return result.Err[[]AxisRate](ascomerr.InvalidValue())
	}
	if rates, ok := t.Metadata.SupportedAxisRates[axis]; ok {
		return result.Ok(rates)
	}
	return gate(func() ([]AxisRate, error) { return t.Driver.AxisRates(axis) })
}

func (t *Telescope) MoveAxis(axis int, rate float64) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.MoveAxis(axis, rate) },
		t.CheckConnected(),
		t.CheckValue(axis >= 0 && axis <= 2),
		t.CheckCapability(t.Capabilities.CanMoveAxis(axis)),
		t.CheckValue(rate > -9 && rate < 9))
}

func (t *Telescope) Park() result.Result[result.Unit] {
	return gateUnit(t.Driver.Park,
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanPark)))
}

func (t *Telescope) SetPark() result.Result[result.Unit] {
	return gateUnit(t.Driver.SetPark,
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanSetPark)))
}

func (t *Telescope) PulseGuide(direction, durationMs int) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.PulseGuide(direction, durationMs) },
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanPulseGuide)))
}

func (t *Telescope) SlewToAltAz(az, alt float64) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SlewToAltAz(az, alt) },
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanSlewAltAz)),
		t.CheckValue(az >= 0 && az <= 360),
		t.CheckValue(alt >= -90 && alt <= 90))
}

func (t *Telescope) SlewToAltAzAsync(az, alt float64) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SlewToAltAzAsync(az, alt) },
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanSlewAltAzAsync)),
		t.CheckValue(az >= 0 && az <= 360),
		t.CheckValue(alt >= -90 && alt <= 90))
}

func (t *Telescope) SlewToCoordinates(ra, dec float64) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SlewToCoordinates(ra, dec) },
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanSlew)),
		t.CheckValue(ra >= 0 && ra <= 24),
		t.CheckValue(dec >= -90 && dec <= 90))
}

func (t *Telescope) SlewToCoordinatesAsync(ra, dec float64) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SlewToCoordinatesAsync(ra, dec) },
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanSlewAsync)),
		t.CheckValue(ra >= 0 && ra <= 24),
		t.CheckValue(dec >= -90 && dec <= 90))
}

// targetOrNotSet returns the stored target RA/Dec, or value_not_set if
// either has never been written.
func (t *Telescope) targetOrNotSet() (ra, dec float64, notSet result.Result[result.Unit]) {
	t.targetMu.Lock()
	raPtr, decPtr := t.targetRA, t.targetDec
	t.targetMu.Unlock()
	if raPtr == nil || decPtr == nil {
		return 0, 0, result.Err[result.Unit](ascomerr.ValueNotSet())
	}
	return *raPtr, *decPtr, result.OkUnit()
}

func (t *Telescope) SlewToTarget() result.Result[result.Unit] {
	ra, dec, set := t.targetOrNotSet()
	return gateUnit(func() error { return t.Driver.SlewToCoordinates(ra, dec) },
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanSlew)),
		set)
}

func (t *Telescope) SlewToTargetAsync() result.Result[result.Unit] {
	ra, dec, set := t.targetOrNotSet()
	return gateUnit(func() error { return t.Driver.SlewToCoordinatesAsync(ra, dec) },
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanSlewAsync)),
		set)
}

func (t *Telescope) SyncToAltAz(az, alt float64) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SyncToAltAz(az, alt) },
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanSyncAltAz)),
		t.CheckValue(az >= 0 && az <= 360),
		t.CheckValue(alt >= -90 && alt <= 90))
}

func (t *Telescope) SyncToCoordinates(ra, dec float64) result.Result[result.Unit] {
	return gateUnit(func() error { return t.Driver.SyncToCoordinates(ra, dec) },
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanSync)),
		t.CheckValue(ra >= 0 && ra <= 24),
		t.CheckValue(dec >= -90 && dec <= 90))
}

func (t *Telescope) SyncToTarget() result.Result[result.Unit] {
	ra, dec, set := t.targetOrNotSet()
	return gateUnit(func() error { return t.Driver.SyncToCoordinates(ra, dec) },
		t.CheckConnected(),
		t.checkNotParked(),
		t.CheckCapability(t.Capabilities.Has(CanSync)),
		set)
}

func (t *Telescope) Unpark() result.Result[result.Unit] {
	return gateUnit(t.Driver.Unpark,
		t.CheckConnected(),
		t.CheckCapability(t.Capabilities.Has(CanUnpark)))
}

// checkNotParked backs SyncToTarget's "not parked" gate; a driver error
// reading AtPark is treated as "not parked" so it surfaces through the
// normal connected/capability gates instead of masking them.
func (t *Telescope) checkNotParked() result.Result[result.Unit] {
	parked, err := t.Driver.AtPark()
	if err == nil && parked {
		return result.Err[result.Unit](ascomerr.Parked())
	}
	return result.OkUnit()
}
