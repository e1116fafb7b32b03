package alpaca

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nexstar-alpaca/bridge/pkg/telescope"
)

// interfaceVersions maps an ASCOM device type to the interface version it
// reports; this bridge only ever registers telescope devices, but the table
// is kept general.
var interfaceVersions = map[string]int{
	"telescope":           3,
	"camera":              3,
	"dome":                2,
	"focuser":             3,
	"filterwheel":         2,
	"rotator":             3,
	"switch":              2,
	"safetymonitor":       1,
	"covercalibrator":     1,
	"observingconditions": 1,
}

// deviceEntry is one registered device: its static registry metadata plus
// the Telescope it serves requests through. The resource layer holds a
// snapshot of these built once at registration time, never a back-pointer
// into the server.
type deviceEntry struct {
	DeviceType       string
	DeviceNumber     int
	Name             string
	Description      string
	UniqueID         string
	InterfaceVersion int
	Telescope        *telescope.Telescope
}

// Registry holds every device this server exposes, keyed by (type, number).
// Registration and lookups are guarded by an RWMutex, so concurrent handler
// goroutines may read it while devices are still being registered.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*deviceEntry
	order   []*deviceEntry
}

func registryKey(deviceType string, deviceNumber int) string {
	return fmt.Sprintf("%s-%d", deviceType, deviceNumber)
}

// NewRegistry builds an empty device registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*deviceEntry)}
}

// RegisterTelescope adds a telescope device at (deviceNumber), deriving a
// stable UniqueID from its type and number with uuid.NewSHA1 so the ID
// survives restarts without persistent state.
func (r *Registry) RegisterTelescope(deviceNumber int, name, description string, t *telescope.Telescope) {
	const deviceType = "telescope"
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(registryKey(deviceType, deviceNumber))).String()
	entry := &deviceEntry{
		DeviceType:       deviceType,
		DeviceNumber:     deviceNumber,
		Name:             name,
		Description:      description,
		UniqueID:         id,
		InterfaceVersion: interfaceVersions[deviceType],
		Telescope:        t,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[registryKey(deviceType, deviceNumber)] = entry
	r.order = append(r.order, entry)
}

// lookup returns the device entry for (deviceType, deviceNumber), or nil if
// unregistered (unknown type or out-of-range id, rendered as HTTP 404).
func (r *Registry) lookup(deviceType string, deviceNumber int) *deviceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[registryKey(deviceType, deviceNumber)]
}

// configuredDevice is the shape management.go's /configureddevices handler
// renders per entry.
type configuredDevice struct {
	DeviceName   string `json:"DeviceName"`
	DeviceType   string `json:"DeviceType"`
	DeviceNumber int    `json:"DeviceNumber"`
	UniqueID     string `json:"UniqueID"`
}

// configuredDevices snapshots every registered device for the management
// API, in registration order.
func (r *Registry) configuredDevices() []configuredDevice {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]configuredDevice, 0, len(r.order))
	for _, e := range r.order {
		out = append(out, configuredDevice{
			DeviceName:   e.Name,
			DeviceType:   e.DeviceType,
			DeviceNumber: e.DeviceNumber,
			UniqueID:     e.UniqueID,
		})
	}
	return out
}
