package telescope

import (
	"sync"

	"github.com/nexstar-alpaca/bridge/pkg/ascomerr"
	"github.com/nexstar-alpaca/bridge/pkg/result"
)

// DeviceBase holds the connection flag shared by every ASCOM device type and
// the precondition predicates the facade composes into its gates.
// The flag is guarded by a mutex because handler goroutines share one
// device instance per mount.
type DeviceBase struct {
	mu          sync.Mutex
	isConnected bool
}

// CheckConnected is Ok iff the device is connected, else not_connected.
func (d *DeviceBase) CheckConnected() result.Result[result.Unit] {
	d.mu.Lock()
	connected := d.isConnected
	d.mu.Unlock()
	if !connected {
		return result.Err[result.Unit](ascomerr.NotConnected())
	}
	return result.OkUnit()
}

// CheckFlag flat-maps pred: if pred itself fails, that error propagates;
// if pred's inner bool is false, returns not_implemented; otherwise Ok.
// This lets a capability check that can itself fail at the driver layer
// (e.g. reading a not-yet-connected mount's capability word) propagate its
// own error instead of being silently treated as "capability absent".
func (d *DeviceBase) CheckFlag(pred result.Result[bool]) result.Result[result.Unit] {
	return result.FlatMap(pred, func(ok bool) result.Result[result.Unit] {
		if !ok {
			return result.Err[result.Unit](ascomerr.NotImplemented())
		}
		return result.OkUnit()
	})
}

// CheckCapability is CheckFlag specialized for a static capability bit,
// which can never itself fail to read.
func (d *DeviceBase) CheckCapability(has bool) result.Result[result.Unit] {
	return d.CheckFlag(result.Ok(has))
}

// CheckValue is Ok iff predicate holds, else invalid_value.
func (d *DeviceBase) CheckValue(predicate bool) result.Result[result.Unit] {
	if !predicate {
		return result.Err[result.Unit](ascomerr.InvalidValue())
	}
	return result.OkUnit()
}

// CheckSet is Ok iff predicate holds, else value_not_set.
func (d *DeviceBase) CheckSet(predicate bool) result.Result[result.Unit] {
	if !predicate {
		return result.Err[result.Unit](ascomerr.ValueNotSet())
	}
	return result.OkUnit()
}

// CheckOp is Ok iff predicate holds, else invalid_operation.
func (d *DeviceBase) CheckOp(predicate bool) result.Result[result.Unit] {
	if !predicate {
		return result.Err[result.Unit](ascomerr.InvalidOperation())
	}
	return result.OkUnit()
}

// SetConnected transitions the connection flag. Idempotent: setting to the
// already-current value is a no-op that still returns Ok.
func (d *DeviceBase) SetConnected(connected bool) result.Result[result.Unit] {
	d.mu.Lock()
	d.isConnected = connected
	d.mu.Unlock()
	return result.OkUnit()
}

// IsConnected reports the current connection flag.
func (d *DeviceBase) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isConnected
}
