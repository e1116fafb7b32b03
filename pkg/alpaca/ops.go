package alpaca

import (
	"github.com/nexstar-alpaca/bridge/pkg/ascomerr"
	"github.com/nexstar-alpaca/bridge/pkg/params"
	"github.com/nexstar-alpaca/bridge/pkg/result"
)

// Getter and Setter are the two operation-table entry shapes: getters map
// a device and its request arguments to a boxed JSON value or error;
// setters map the same inputs to success or error, with their Ok unit
// always rendered as a null Value by the envelope.
type Getter func(e *deviceEntry, args *params.Map) (interface{}, *ascomerr.Error)
type Setter func(e *deviceEntry, args *params.Map) *ascomerr.Error

// box converts a Result[T] into the (value, error) pair the dispatcher
// writes into the envelope, unwrapping ascomerr.Error values and mapping
// anything else (there should be nothing else, by construction of the
// facade) to invalid_operation.
func box[T any](r result.Result[T]) (interface{}, *ascomerr.Error) {
	v, err := r.Unwrap()
	if err == nil {
		return v, nil
	}
	if ae, ok := err.(*ascomerr.Error); ok {
		return nil, ae
	}
	return nil, ascomerr.InvalidOperation()
}

// boxUnit is box specialized for Result[result.Unit] setters.
func boxUnit(r result.Result[result.Unit]) *ascomerr.Error {
	_, opErr := box(r)
	return opErr
}

// chain2 decodes two argument fields and, only if both succeed, invokes
// call with the decoded pair. It mirrors result.Join2 but flat-maps into a
// Result-returning driver call instead of a pure constructor, since most
// two-argument telescope operations (destinationsideofpier, moveaxis,
// slew/sync to coordinates or alt-az) need exactly this shape.
func chain2[A, B, T any](ra result.Result[A], rb result.Result[B], call func(A, B) result.Result[T]) result.Result[T] {
	a, err := ra.Unwrap()
	if err != nil {
		return result.Err[T](err)
	}
	b, err := rb.Unwrap()
	if err != nil {
		return result.Err[T](err)
	}
	return call(a, b)
}

// universalGetters/universalSetters are the base operations every device
// type answers, keyed on the Telescope's shared StaticMetadata and
// connection flag rather than any device-type-specific logic.
var universalGetters = map[string]Getter{
	"connected": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) {
		return e.Telescope.IsConnected(), nil
	},
	"description": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) {
		return e.Telescope.Metadata.Description, nil
	},
	"driverinfo": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) {
		return e.Telescope.Metadata.DriverInfo, nil
	},
	"driverversion": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) {
		return e.Telescope.Metadata.DriverVersion, nil
	},
	"interfaceversion": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) {
		return e.Telescope.Metadata.InterfaceVersion, nil
	},
	"name": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) {
		return e.Telescope.Metadata.Name, nil
	},
	"supportedactions": func(e *deviceEntry, _ *params.Map) (interface{}, *ascomerr.Error) {
		return []string{}, nil
	},
}

var universalSetters = map[string]Setter{
	"connected": func(e *deviceEntry, args *params.Map) *ascomerr.Error {
		v := params.GetBool(args, "Connected")
		return boxUnit(result.FlatMap(v, func(want bool) result.Result[result.Unit] {
			return e.Telescope.SetConnected(want)
		}))
	},
	// action/commandblind/commandbool/commandstring are no-op setters:
	// nothing in this bridge supports a named driver action, so they
	// always succeed and render a null Value.
	"action":        func(*deviceEntry, *params.Map) *ascomerr.Error { return nil },
	"commandblind":  func(*deviceEntry, *params.Map) *ascomerr.Error { return nil },
	"commandbool":   func(*deviceEntry, *params.Map) *ascomerr.Error { return nil },
	"commandstring": func(*deviceEntry, *params.Map) *ascomerr.Error { return nil },
}

// lookupGetter/lookupSetter resolve an operation name against the
// device-type-specific table first, falling back to the universal table.
func lookupGetter(deviceType, operation string) (Getter, bool) {
	switch deviceType {
	case "telescope":
		if g, ok := telescopeGetters[operation]; ok {
			return g, true
		}
	}
	g, ok := universalGetters[operation]
	return g, ok
}

func lookupSetter(deviceType, operation string) (Setter, bool) {
	switch deviceType {
	case "telescope":
		if s, ok := telescopeSetters[operation]; ok {
			return s, true
		}
	}
	s, ok := universalSetters[operation]
	return s, ok
}

// telescopeBool is a small helper for the read-only capability-bit getters,
// which are ungated, static reads of the capability word — can* properties
// answer even on a disconnected device.
func telescopeBool(v bool) (interface{}, *ascomerr.Error) { return v, nil }
