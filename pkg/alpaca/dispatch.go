package alpaca

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nexstar-alpaca/bridge/pkg/ascomerr"
	"github.com/nexstar-alpaca/bridge/pkg/auditlog"
	"github.com/nexstar-alpaca/bridge/pkg/params"
	"github.com/nexstar-alpaca/bridge/pkg/telemetry"
)

// Dispatcher owns the device registry and the server-wide transaction
// counter, and registers gin routes that route a (device_type, device_id,
// operation) triple through the getter/setter tables to an Envelope.
//
// Telemetry and Audit are optional side channels, both nil-safe: when set,
// every dispatched PUT, failed or not, republishes a telemetry.TelescopeState
// snapshot and records an auditlog.Entry, neither of which can fail the
// response back to the ASCOM client.
type Dispatcher struct {
	registry *Registry
	counter  *transactionCounter
	logger   *zap.Logger

	Telemetry *telemetry.Publisher
	Audit     *auditlog.Log
}

// NewDispatcher builds a Dispatcher serving the given registry.
func NewDispatcher(registry *Registry, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		registry: registry,
		counter:  &transactionCounter{},
		logger:   logger.With(zap.String("component", "alpaca")),
	}
}

// Counter returns the dispatcher's shared transaction counter, so the
// management API can render ServerTransactionID from the same monotonic
// sequence — one counter per server, not per surface.
func (d *Dispatcher) Counter() *transactionCounter {
	return d.counter
}

// RegisterRoutes wires GET/PUT /api/v1/:device_type/:device_id/:operation
// onto router.
func (d *Dispatcher) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/:device_type/:device_id/:operation", d.handleGet)
	router.PUT("/:device_type/:device_id/:operation", d.handlePut)
}

func (d *Dispatcher) handleGet(c *gin.Context) {
	d.handle(c, http.MethodGet)
}

func (d *Dispatcher) handlePut(c *gin.Context) {
	d.handle(c, http.MethodPut)
}

// handle runs the dispatch steps in order: parse device number, look up
// the device, decode the client identity, look up the operation in the
// right direction's table, then run the op and render the envelope.
// Any failure before the op runs is a raw HTTP response, never an
// envelope.
func (d *Dispatcher) handle(c *gin.Context, method string) {
	deviceType := strings.ToLower(c.Param("device_type"))
	operation := strings.ToLower(c.Param("operation"))

	deviceNumber, err := strconv.Atoi(c.Param("device_id"))
	if err != nil {
		writeDispatchError(c, http.StatusNotFound, "Device not found")
		return
	}

	entry := d.registry.lookup(deviceType, deviceNumber)
	if entry == nil {
		writeDispatchError(c, http.StatusNotFound, "Device not found")
		return
	}

	args := requestArgs(c, method)
	id, idErr := parseClientIdentity(args)
	if idErr != nil {
		writeDispatchError(c, idErr.HTTPStatus(), idErr.Message)
		return
	}

	switch method {
	case http.MethodGet:
		getter, ok := lookupGetter(deviceType, operation)
		if !ok {
			writeDispatchError(c, http.StatusNotFound, "Operation not found")
			return
		}
		value, opErr := getter(entry, args)
		writeEnvelope(c, id, d.counter, value, opErr)

	case http.MethodPut:
		setter, ok := lookupSetter(deviceType, operation)
		if !ok {
			writeDispatchError(c, http.StatusNotFound, "Operation not found")
			return
		}
		opErr := setter(entry, args)
		writeEnvelope(c, id, d.counter, nil, opErr)
		d.observe(c.Request.Context(), entry, operation, method, id, opErr)
		return

	default:
		writeDispatchError(c, http.StatusBadRequest, "Unsupported method")
	}
}

// observe republishes telemetry and records an audit entry for a completed
// PUT, when those side channels are configured. Never reports back to the
// client — a dead MQTT broker or database must not break Alpaca requests.
func (d *Dispatcher) observe(ctx context.Context, entry *deviceEntry, operation, method string, id clientIdentity, opErr *ascomerr.Error) {
	if d.Telemetry == nil && d.Audit == nil {
		return
	}

	if d.Audit != nil {
		auditEntry := auditlog.Entry{
			DeviceNumber:        entry.DeviceNumber,
			Operation:           operation,
			Method:              method,
			ClientTransactionID: id.clientTransactionID,
		}
		if opErr != nil {
			auditEntry.ErrorNumber = opErr.Code
			auditEntry.ErrorMessage = opErr.Message
		}
		d.Audit.Record(ctx, auditEntry)
	}

	if d.Telemetry != nil {
		t := entry.Telescope
		state := telemetry.TelescopeState{
			DeviceNumber: entry.DeviceNumber,
			Connected:    t.IsConnected(),
			Timestamp:    time.Now(),
		}
		if slewing, err := t.Driver.Slewing(); err == nil {
			state.Slewing = slewing
		}
		if tracking, err := t.Driver.Tracking(); err == nil {
			state.Tracking = tracking
		}
		if atPark, err := t.Driver.AtPark(); err == nil {
			state.AtPark = atPark
		}
		if ra, err := t.Driver.RightAscension(); err == nil {
			state.RightAscension = ra
		}
		if dec, err := t.Driver.Declination(); err == nil {
			state.Declination = dec
		}
		d.Telemetry.PublishState(state)
	}
}

// requestArgs builds the argument map for a request: query parameters for
// GET (case-insensitive, matching real-world ASCOM client key casing), form
// fields for PUT (case-sensitive, per the Alpaca wire contract).
func requestArgs(c *gin.Context, method string) *params.Map {
	if method == http.MethodPut {
		args := params.NewCaseSensitive()
		if err := c.Request.ParseForm(); err == nil {
			for key, values := range c.Request.PostForm {
				if len(values) > 0 {
					args.Set(key, values[0])
				}
			}
		}
		// ClientID/ClientTransactionID are contractually sent as query
		// parameters even on a PUT in several real Alpaca clients; accept
		// either location without relaxing case-sensitivity for the rest of
		// the body.
		for _, key := range []string{"ClientID", "ClientTransactionID"} {
			if _, ok := args.Lookup(key); !ok {
				if v := c.Query(key); v != "" {
					args.Set(key, v)
				}
			}
		}
		return args
	}

	args := params.NewCaseInsensitive()
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			args.Set(key, values[0])
		}
	}
	return args
}
