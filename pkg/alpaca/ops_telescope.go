package alpaca

import (
	"time"

	"github.com/nexstar-alpaca/bridge/pkg/ascomerr"
	"github.com/nexstar-alpaca/bridge/pkg/params"
	"github.com/nexstar-alpaca/bridge/pkg/result"
	"github.com/nexstar-alpaca/bridge/pkg/telescope"
)

// telescopeGetters is the telescope device type's operation table, built
// once and never mutated. Each entry composes params decoding with the
// Telescope facade's already-gated method; the facade itself enforces every
// precondition, so nothing here re-checks connection state or capability
// bits.
var telescopeGetters = map[string]Getter{
	// Static metadata, ungated.
	"alignmentmode":    func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return e.Telescope.Metadata.AlignmentMode, nil },
	"aperturearea":     func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return e.Telescope.Metadata.ApertureArea, nil },
	"aperturediameter": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return e.Telescope.Metadata.ApertureDiameter, nil },
	"equatorialsystem": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return e.Telescope.Metadata.EquatorialSystem, nil },
	"focallength":      func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return e.Telescope.Metadata.FocalLength, nil },

	// Static capability bits, ungated.
	"canfindhome":              func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return telescopeBool(e.Telescope.Capabilities.Has(telescope.CanFindHome)) },
	"canpark":                  func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return telescopeBool(e.Telescope.Capabilities.Has(telescope.CanPark)) },
	"canpulseguide":            func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return telescopeBool(e.Telescope.Capabilities.Has(telescope.CanPulseGuide)) },
	"cansetdeclinationrate":    func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return telescopeBool(e.Telescope.Capabilities.Has(telescope.CanSetDeclinationRate)) },
	"cansetguiderates":         func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return telescopeBool(e.Telescope.Capabilities.Has(telescope.CanSetGuideRates)) },
	"cansetpark":               func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return telescopeBool(e.Telescope.Capabilities.Has(telescope.CanSetPark)) },
	"cansetpierside":           func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return telescopeBool(e.Telescope.Capabilities.Has(telescope.CanSetPierSide)) },
	"cansetrightascensionrate": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return telescopeBool(e.Telescope.Capabilities.Has(telescope.CanSetRightAscensionRate)) },
	"cansettracking":           func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return telescopeBool(e.Telescope.Capabilities.Has(telescope.CanSetTracking)) },
	"canslew":                  func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return telescopeBool(e.Telescope.Capabilities.Has(telescope.CanSlew)) },
	"canslewaltaz":             func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return telescopeBool(e.Telescope.Capabilities.Has(telescope.CanSlewAltAz)) },
	"canslewaltazasync":        func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return telescopeBool(e.Telescope.Capabilities.Has(telescope.CanSlewAltAzAsync)) },
	"canslewasync":             func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return telescopeBool(e.Telescope.Capabilities.Has(telescope.CanSlewAsync)) },
	"cansync":                  func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return telescopeBool(e.Telescope.Capabilities.Has(telescope.CanSync)) },
	"cansyncaltaz":             func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return telescopeBool(e.Telescope.Capabilities.Has(telescope.CanSyncAltAz)) },
	"canunpark":                func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return telescopeBool(e.Telescope.Capabilities.Has(telescope.CanUnpark)) },
	"canmoveaxis": func(e *deviceEntry, args *params.Map) (interface{}, *ascomerr.Error) {
		return box(result.Map(params.GetInt(args, "Axis"), e.Telescope.Capabilities.CanMoveAxis))
	},

	// Connected-only getters.
	"altitude":       func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.Altitude()) },
	"azimuth":        func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.Azimuth()) },
	"declination":    func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.Declination()) },
	"rightascension": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.RightAscension()) },
	"slewing":        func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.Slewing()) },
	"siderealtime":   func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.SiderealTime()) },
	"athome":         func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.AtHome()) },
	"atpark":         func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.AtPark()) },
	"ispulseguiding": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.IsPulseGuiding()) },
	"destinationsideofpier": func(e *deviceEntry, args *params.Map) (interface{}, *ascomerr.Error) {
		ra := params.GetFloat(args, "RightAscension")
		dec := params.GetFloat(args, "Declination")
		return box(chain2(ra, dec, e.Telescope.DestinationSideOfPier))
	},

	"declinationrate":         func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.DeclinationRate()) },
	"rightascensionrate":      func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.RightAscensionRate()) },
	"guideratedeclination":    func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.GuideRateDeclination()) },
	"guideraterightascension": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.GuideRateRightAscension()) },

	"doesrefraction": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.DoesRefraction()) },
	"sideofpier":     func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.SideOfPier()) },

	"siteelevation":  func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.SiteElevation()) },
	"sitelatitude":   func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.SiteLatitude()) },
	"sitelongitude":  func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.SiteLongitude()) },
	"slewsettletime": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.SlewSettleTime()) },

	"targetdeclination":    func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.TargetDeclination()) },
	"targetrightascension": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.TargetRightAscension()) },

	"tracking":      func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.Tracking()) },
	"trackingrate":  func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.TrackingRate()) },
	"trackingrates": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) { return box(e.Telescope.TrackingRates()) },

	"utcdate": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) {
		return box(result.Map(e.Telescope.UTCDate(), formatUTCDate))
	},

	// axisrates validates 0≤axis≤2 and returns the statically-declared
	// {minimum,maximum} vector. Registered as GET: it reads state rather
	// than changing it.
	"axisrates": func(e *deviceEntry, args *params.Map) (interface{}, *ascomerr.Error) {
		return box(result.FlatMap(params.GetInt(args, "Axis"), e.Telescope.AxisRates))
	},
}

var telescopeSetters = map[string]Setter{
	"declinationrate": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		return boxUnit(result.FlatMap(params.GetFloat(args, "DeclinationRate"), e.Telescope.SetDeclinationRate))
	},
	"rightascensionrate": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		return boxUnit(result.FlatMap(params.GetFloat(args, "RightAscensionRate"), e.Telescope.SetRightAscensionRate))
	},
	"guideratedeclination": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		return boxUnit(result.FlatMap(params.GetFloat(args, "GuideRateDeclination"), e.Telescope.SetGuideRateDeclination))
	},
	"guideraterightascension": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		return boxUnit(result.FlatMap(params.GetFloat(args, "GuideRateRightAscension"), e.Telescope.SetGuideRateRightAscension))
	},
	"doesrefraction": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		return boxUnit(result.FlatMap(params.GetBool(args, "DoesRefraction"), e.Telescope.SetDoesRefraction))
	},
	"sideofpier": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		pier := result.Map(params.GetInt(args, "SideOfPier"), func(v int) telescope.PierSide { return telescope.PierSide(v) })
		return boxUnit(result.FlatMap(pier, e.Telescope.SetSideOfPier))
	},
	"siteelevation": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		return boxUnit(result.FlatMap(params.GetFloat(args, "SiteElevation"), e.Telescope.SetSiteElevation))
	},
	"sitelatitude": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		return boxUnit(result.FlatMap(params.GetFloat(args, "SiteLatitude"), e.Telescope.SetSiteLatitude))
	},
	"sitelongitude": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		return boxUnit(result.FlatMap(params.GetFloat(args, "SiteLongitude"), e.Telescope.SetSiteLongitude))
	},
	"slewsettletime": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		return boxUnit(result.FlatMap(params.GetFloat(args, "SlewSettleTime"), e.Telescope.SetSlewSettleTime))
	},
	"targetdeclination": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		return boxUnit(result.FlatMap(params.GetFloat(args, "TargetDeclination"), e.Telescope.SetTargetDeclination))
	},
	"targetrightascension": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		return boxUnit(result.FlatMap(params.GetFloat(args, "TargetRightAscension"), e.Telescope.SetTargetRightAscension))
	},
	"tracking": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		return boxUnit(result.FlatMap(params.GetBool(args, "Tracking"), e.Telescope.SetTracking))
	},
	"trackingrate": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		return boxUnit(result.FlatMap(params.GetInt(args, "TrackingRate"), e.Telescope.SetTrackingRate))
	},
	"utcdate": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		when := result.FlatMap(params.GetString(args, "UTCDate"), parseUTCDate)
		return boxUnit(result.FlatMap(when, e.Telescope.SetUTCDate))
	},

	"abortslew": func(e *deviceEntry, _ *params.Map) *ascomerr.Error { return boxUnit(e.Telescope.AbortSlew()) },
	"findhome":  func(e *deviceEntry, _ *params.Map) *ascomerr.Error { return boxUnit(e.Telescope.FindHome()) },
	"moveaxis": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		axis := params.GetInt(args, "Axis")
		rate := params.GetFloat(args, "Rate")
		return boxUnit(chain2(axis, rate, e.Telescope.MoveAxis))
	},
	"park":    func(e *deviceEntry, _ *params.Map) *ascomerr.Error { return boxUnit(e.Telescope.Park()) },
	"setpark": func(e *deviceEntry, _ *params.Map) *ascomerr.Error { return boxUnit(e.Telescope.SetPark()) },
	"pulseguide": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		direction := params.GetInt(args, "Direction")
		duration := params.GetInt(args, "Duration")
		return boxUnit(chain2(direction, duration, e.Telescope.PulseGuide))
	},
	"unpark": func(e *deviceEntry, _ *params.Map) *ascomerr.Error { return boxUnit(e.Telescope.Unpark()) },

	"slewtoaltaz": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		az := params.GetFloat(args, "Azimuth")
		alt := params.GetFloat(args, "Altitude")
		return boxUnit(chain2(az, alt, e.Telescope.SlewToAltAz))
	},
	"slewtoaltazasync": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		az := params.GetFloat(args, "Azimuth")
		alt := params.GetFloat(args, "Altitude")
		return boxUnit(chain2(az, alt, e.Telescope.SlewToAltAzAsync))
	},
	"slewtocoordinates": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		ra := params.GetFloat(args, "RightAscension")
		dec := params.GetFloat(args, "Declination")
		return boxUnit(chain2(ra, dec, e.Telescope.SlewToCoordinates))
	},
	"slewtocoordinatesasync": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		ra := params.GetFloat(args, "RightAscension")
		dec := params.GetFloat(args, "Declination")
		return boxUnit(chain2(ra, dec, e.Telescope.SlewToCoordinatesAsync))
	},
	"slewtotarget":      func(e *deviceEntry, _ *params.Map) *ascomerr.Error { return boxUnit(e.Telescope.SlewToTarget()) },
	"slewtotargetasync": func(e *deviceEntry, _ *params.Map) *ascomerr.Error { return boxUnit(e.Telescope.SlewToTargetAsync()) },

	"synctoaltaz": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		az := params.GetFloat(args, "Azimuth")
		alt := params.GetFloat(args, "Altitude")
		return boxUnit(chain2(az, alt, e.Telescope.SyncToAltAz))
	},
	"synctocoordinates": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		ra := params.GetFloat(args, "RightAscension")
		dec := params.GetFloat(args, "Declination")
		return boxUnit(chain2(ra, dec, e.Telescope.SyncToCoordinates))
	},
	"synctotarget": func(e *deviceEntry, _ *params.Map) *ascomerr.Error { return boxUnit(e.Telescope.SyncToTarget()) },
}

// utcDateLayout is the ASCOM Alpaca UTCDate wire format. get_utcdate drops
// sub-second precision on the way out; set_utcdate accepts the same layout
// plus a handful of client variants.
const utcDateLayout = "2006-01-02T15:04:05Z"

func formatUTCDate(t time.Time) string {
	return t.UTC().Format(utcDateLayout)
}

func parseUTCDate(raw string) result.Result[time.Time] {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, utcDateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return result.Ok(t)
		}
	}
	return result.Err[time.Time](ascomerr.FieldInvalid("UTCDate"))
}
