// Package celestrondriver adapts the NexStar wire codec (pkg/nexstar) to
// pkg/telescope.Driver: the facade's gated methods call straight into here
// once every precondition has passed. A single struct owns one transport
// and translates typed calls into wire exchanges.
package celestrondriver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nexstar-alpaca/bridge/pkg/astro"
	"github.com/nexstar-alpaca/bridge/pkg/nexstar"
	"github.com/nexstar-alpaca/bridge/pkg/telescope"
)

// Tracking modes as reported/accepted by the 't'/'T' commands.
const (
	trackingOff     byte = 0
	trackingAltAz   byte = 1
	trackingEQNorth byte = 2
	trackingEQSouth byte = 3
)

// Driver is a pkg/telescope.Driver backed by a live (or simulated) NexStar
// hand controller reached through codec over transport.
type Driver struct {
	telescope.BaseDriver

	codec  *nexstar.Codec
	logger *zap.Logger

	mu sync.Mutex

	parked         bool
	doesRefraction bool
	siteElevation  float64
	slewSettleTime float64
	trackingRate   telescope.TrackingRate
	gmtOffsetHours int
	dst            bool

	// Sync offsets: the wire protocol has no dedicated sync command, so a
	// sync is implemented the way several real ASCOM Celestron drivers do
	// it: as a software correction applied to subsequent position reads,
	// rather than a physical move.
	raOffsetHours float64
	decOffsetDeg  float64

	// lastTargetRA/lastTargetDec cache the coordinates most recently
	// commanded by SlewToCoordinatesAsync.
	lastTargetRA, lastTargetDec *float64

	// Guide rates and pulse-guide state: pulse guiding has no dedicated
	// NexStar opcode, so it is emulated over the same motor pass-through
	// envelope (opcode 'P') that backs MoveAxis: a timed variable-rate
	// move at the configured guide rate, stopped after the requested
	// duration. Several real ASCOM Celestron drivers implement pulse
	// guiding this exact way.
	guideRateDecDegPerSec float64
	guideRateRADegPerSec  float64
	pulseGuiding          bool
}

// ASCOM pulse-guide directions (Telescope.PulseGuide's GuideDirections enum).
const (
	guideNorth = 0
	guideSouth = 1
	guideEast  = 2
	guideWest  = 3
)

// defaultGuideRateDegPerSec is half the sidereal rate (~7.5"/s), the
// conventional default autoguider correction speed.
const defaultGuideRateDegPerSec = 15.0 / 3600 / 2

// New builds a driver over the given transport (serial or simulator).
func New(transport nexstar.Transport, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		codec:                 nexstar.NewCodec(transport),
		logger:                logger.With(zap.String("component", "celestrondriver")),
		doesRefraction:        true,
		guideRateDecDegPerSec: defaultGuideRateDegPerSec,
		guideRateRADegPerSec:  defaultGuideRateDegPerSec,
	}
}

// Connect proves the serial link is alive with an echo round-trip.
func (d *Driver) Connect(ctx context.Context) error {
	return d.codec.Echo(ctx, 'x')
}

func bg() context.Context { return context.Background() }

// DriverInfo-adjacent helpers used by the Alpaca layer outside the Driver
// interface proper.

// ModelName reads the hand controller's model code and resolves its name.
func (d *Driver) ModelName() (string, error) {
	code, err := d.codec.Model(bg())
	if err != nil {
		return "", err
	}
	return ModelName(code), nil
}

// FirmwareVersion reads the hand controller's major.minor firmware version.
func (d *Driver) FirmwareVersion() (string, error) {
	major, minor, err := d.codec.Version(bg())
	if err != nil {
		return "", err
	}
	return versionString(major, minor), nil
}

func versionString(major, minor byte) string {
	return fmt.Sprintf("%d.%d", major, minor)
}

// currentEquatorial reads the raw wire RA/Dec and applies the sync offset.
func (d *Driver) currentEquatorial() (raHours, decDeg float64, err error) {
	raDeg, decWire, err := d.codec.GetRADec(bg(), true)
	if err != nil {
		return 0, 0, err
	}
	d.mu.Lock()
	raOffset, decOffset := d.raOffsetHours, d.decOffsetDeg
	d.mu.Unlock()
	ra := nexstar.RADegreesToHours(raDeg) + raOffset
	for ra < 0 {
		ra += 24
	}
	for ra >= 24 {
		ra -= 24
	}
	dec := nexstar.NormalizeDeclination(decWire) + decOffset
	if dec > 90 {
		dec = 90
	}
	if dec < -90 {
		dec = -90
	}
	return ra, dec, nil
}

func (d *Driver) siteLatLon() (lat, lon float64, err error) {
	loc, err := d.codec.GetLocation(bg())
	if err != nil {
		return 0, 0, err
	}
	return loc.Latitude(), loc.Longitude(), nil
}

// Altitude and Azimuth are derived from the sync-corrected equatorial
// position rather than read directly via 'Z'/'z', so a sync (a pure
// software correction, see above) is reflected consistently across both
// coordinate systems.
func (d *Driver) Altitude() (float64, error) {
	ra, dec, err := d.currentEquatorial()
	if err != nil {
		return 0, err
	}
	lat, lon, err := d.siteLatLon()
	if err != nil {
		return 0, err
	}
	_, alt := astro.EquatorialToHorizontal(ra, dec, lat, lon, float64(time.Now().Unix()))
	return alt, nil
}

func (d *Driver) Azimuth() (float64, error) {
	ra, dec, err := d.currentEquatorial()
	if err != nil {
		return 0, err
	}
	lat, lon, err := d.siteLatLon()
	if err != nil {
		return 0, err
	}
	az, _ := astro.EquatorialToHorizontal(ra, dec, lat, lon, float64(time.Now().Unix()))
	return az, nil
}

func (d *Driver) Declination() (float64, error) {
	_, dec, err := d.currentEquatorial()
	return dec, err
}

func (d *Driver) RightAscension() (float64, error) {
	ra, _, err := d.currentEquatorial()
	return ra, err
}

func (d *Driver) Slewing() (bool, error) {
	return d.codec.IsGotoInProgress(bg())
}

func (d *Driver) SiderealTime() (float64, error) {
	_, lon, err := d.siteLatLon()
	if err != nil {
		return 0, err
	}
	return astro.LocalSiderealTime(lon, float64(time.Now().Unix())) / 15, nil
}

func (d *Driver) AtPark() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.parked, nil
}

func (d *Driver) Park() error {
	if err := d.codec.CancelGoto(bg()); err != nil {
		return err
	}
	d.mu.Lock()
	d.parked = true
	d.mu.Unlock()
	return nil
}

func (d *Driver) SetPark() error {
	return nil
}

func (d *Driver) Unpark() error {
	d.mu.Lock()
	d.parked = false
	d.mu.Unlock()
	return nil
}

func (d *Driver) DoesRefraction() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doesRefraction, nil
}

func (d *Driver) SetDoesRefraction(v bool) error {
	d.mu.Lock()
	d.doesRefraction = v
	d.mu.Unlock()
	return nil
}

func (d *Driver) GuideRateDeclination() (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.guideRateDecDegPerSec, nil
}

func (d *Driver) SetGuideRateDeclination(rate float64) error {
	d.mu.Lock()
	d.guideRateDecDegPerSec = rate
	d.mu.Unlock()
	return nil
}

func (d *Driver) GuideRateRightAscension() (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.guideRateRADegPerSec, nil
}

func (d *Driver) SetGuideRateRightAscension(rate float64) error {
	d.mu.Lock()
	d.guideRateRADegPerSec = rate
	d.mu.Unlock()
	return nil
}

func (d *Driver) IsPulseGuiding() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pulseGuiding, nil
}

// PulseGuide emulates a timed autoguider correction: it commands a
// variable-rate motor move at the configured guide rate, blocks for
// durationMs (pulse guiding is synchronous in the ASCOM contract), then
// stops the motor. direction follows ASCOM's GuideDirections enum
// (0=North, 1=South, 2=East, 3=West); North/South move the altitude/Dec
// motor (axis 1), East/West the azimuth/RA motor (axis 0).
func (d *Driver) PulseGuide(direction, durationMs int) error {
	var axis int
	var sign float64
	switch direction {
	case guideNorth:
		axis, sign = 1, 1
	case guideSouth:
		axis, sign = 1, -1
	case guideEast:
		axis, sign = 0, 1
	case guideWest:
		axis, sign = 0, -1
	default:
		return fmt.Errorf("celestrondriver: invalid pulse-guide direction %d", direction)
	}

	d.mu.Lock()
	rate := d.guideRateRADegPerSec
	if axis == 1 {
		rate = d.guideRateDecDegPerSec
	}
	d.pulseGuiding = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.pulseGuiding = false
		d.mu.Unlock()
	}()

	start, err := nexstar.EncodeSlewVariable(axis, sign*rate)
	if err != nil {
		return err
	}
	if _, err := d.codec.PassThrough(bg(), start); err != nil {
		return err
	}

	time.Sleep(time.Duration(durationMs) * time.Millisecond)

	stop, err := nexstar.EncodeSlewVariable(axis, 0)
	if err != nil {
		return err
	}
	_, err = d.codec.PassThrough(bg(), stop)
	return err
}

// SiteElevation/SlewSettleTime have no wire representation: the hand
// controller only carries latitude/longitude. They are fully implemented as
// driver-local stored values rather than not_implemented.
func (d *Driver) SiteElevation() (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.siteElevation, nil
}

func (d *Driver) SetSiteElevation(meters float64) error {
	d.mu.Lock()
	d.siteElevation = meters
	d.mu.Unlock()
	return nil
}

func (d *Driver) SiteLatitude() (float64, error) {
	lat, _, err := d.siteLatLon()
	return lat, err
}

func (d *Driver) SetSiteLatitude(degrees float64) error {
	loc, err := d.codec.GetLocation(bg())
	if err != nil {
		return err
	}
	updated := nexstar.NewLocation(degrees, loc.Longitude())
	return d.codec.SetLocation(bg(), updated)
}

func (d *Driver) SiteLongitude() (float64, error) {
	_, lon, err := d.siteLatLon()
	return lon, err
}

func (d *Driver) SetSiteLongitude(degrees float64) error {
	loc, err := d.codec.GetLocation(bg())
	if err != nil {
		return err
	}
	updated := nexstar.NewLocation(loc.Latitude(), degrees)
	return d.codec.SetLocation(bg(), updated)
}

func (d *Driver) SlewSettleTime() (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.slewSettleTime, nil
}

func (d *Driver) SetSlewSettleTime(seconds float64) error {
	d.mu.Lock()
	d.slewSettleTime = seconds
	d.mu.Unlock()
	return nil
}

// Tracking maps any non-off wire tracking mode to true; the setter uses
// eq_north for true and off for false; the alt-az and eq_south modes are
// never selected by the setter.
func (d *Driver) Tracking() (bool, error) {
	mode, err := d.codec.GetTrackingMode(bg())
	if err != nil {
		return false, err
	}
	return mode != trackingOff, nil
}

func (d *Driver) SetTracking(on bool) error {
	mode := trackingOff
	if on {
		mode = trackingEQNorth
	}
	return d.codec.SetTrackingMode(bg(), mode)
}

func (d *Driver) TrackingRate() (telescope.TrackingRate, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.trackingRate, nil
}

func (d *Driver) SetTrackingRate(rate telescope.TrackingRate) error {
	d.mu.Lock()
	d.trackingRate = rate
	d.mu.Unlock()
	return nil
}

func (d *Driver) UTCDate() (time.Time, error) {
	payload, err := d.codec.GetTime(bg())
	if err != nil {
		return time.Time{}, err
	}
	return payload.ToTime(), nil
}

func (d *Driver) SetUTCDate(t time.Time) error {
	d.mu.Lock()
	offset, dst := d.gmtOffsetHours, d.dst
	d.mu.Unlock()
	payload := nexstar.FromTime(t, offset, dst)
	return d.codec.SetTime(bg(), payload)
}

func (d *Driver) AbortSlew() error {
	return d.codec.CancelGoto(bg())
}

func (d *Driver) AxisRates(axis int) ([]telescope.AxisRate, error) {
	switch axis {
	case 0, 1:
		return []telescope.AxisRate{{Minimum: 0, Maximum: 4}}, nil
	default:
		return nil, telescope.ErrNotImplemented
	}
}

func (d *Driver) MoveAxis(axis int, rate float64) error {
	req, err := nexstar.EncodeSlewVariable(axis, rate)
	if err != nil {
		return err
	}
	_, err = d.codec.PassThrough(bg(), req)
	return err
}

func (d *Driver) SlewToAltAz(az, alt float64) error {
	if err := d.SlewToAltAzAsync(az, alt); err != nil {
		return err
	}
	return d.waitForGoto()
}

func (d *Driver) SlewToAltAzAsync(az, alt float64) error {
	return d.codec.GotoAzAlt(bg(), az, nexstar.EncodeDeclination(alt), true)
}

func (d *Driver) SlewToCoordinates(ra, dec float64) error {
	if err := d.SlewToCoordinatesAsync(ra, dec); err != nil {
		return err
	}
	return d.waitForGoto()
}

func (d *Driver) SlewToCoordinatesAsync(ra, dec float64) error {
	d.mu.Lock()
	d.lastTargetRA, d.lastTargetDec = &ra, &dec
	raOffset, decOffset := d.raOffsetHours, d.decOffsetDeg
	d.mu.Unlock()
	raDeg := nexstar.RAHoursToDegrees(ra - raOffset)
	decWire := nexstar.EncodeDeclination(dec - decOffset)
	return d.codec.GotoRADec(bg(), raDeg, decWire, true)
}

func (d *Driver) waitForGoto() error {
	for {
		inProgress, err := d.codec.IsGotoInProgress(bg())
		if err != nil {
			return err
		}
		if !inProgress {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func (d *Driver) SyncToAltAz(az, alt float64) error {
	lat, lon, err := d.siteLatLon()
	if err != nil {
		return err
	}
	ra, dec := astro.HorizontalToEquatorial(az, alt, lat, lon, float64(time.Now().Unix()))
	return d.SyncToCoordinates(ra, dec)
}

func (d *Driver) SyncToCoordinates(ra, dec float64) error {
	rawRA, rawDec, err := d.codec.GetRADec(bg(), true)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.raOffsetHours = ra - nexstar.RADegreesToHours(rawRA)
	d.decOffsetDeg = dec - nexstar.NormalizeDeclination(rawDec)
	d.mu.Unlock()
	return nil
}
