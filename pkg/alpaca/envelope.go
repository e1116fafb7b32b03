// Package alpaca implements the ASCOM Alpaca HTTP surface: the device
// registry, the per-device-type operation table dispatcher, the JSON
// envelope renderer, the management/discovery endpoints, and the gin
// middleware chain around them. Each registered device is a locally-owned
// *telescope.Telescope served in process, not a proxied remote backend.
package alpaca

import (
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/nexstar-alpaca/bridge/pkg/ascomerr"
	"github.com/nexstar-alpaca/bridge/pkg/params"
)

// Envelope is the common JSON response shape. Field order here is
// the wire order: Value, ClientID, ErrorNumber, ErrorMessage,
// ClientTransactionID, ServerTransactionID.
type Envelope struct {
	Value                interface{} `json:"Value"`
	ClientID             uint32      `json:"ClientID"`
	ErrorNumber          int         `json:"ErrorNumber"`
	ErrorMessage         string      `json:"ErrorMessage"`
	ClientTransactionID  uint32      `json:"ClientTransactionID"`
	ServerTransactionID  uint32      `json:"ServerTransactionID"`
}

// transactionCounter is the process-wide, monotonically increasing
// ServerTransactionID source: a single atomic counter, no ordering
// guarantee beyond uniqueness.
type transactionCounter struct {
	v uint32
}

func (c *transactionCounter) next() uint32 {
	return atomic.AddUint32(&c.v, 1)
}

// clientIdentity is the pair of client-supplied transaction fields every
// request carries, decoded once per request ahead of dispatch.
type clientIdentity struct {
	clientID            uint32
	clientTransactionID uint32
}

// parseClientIdentity reads ClientID and ClientTransactionID out of args.
// Both are optional (default 0); a present-but-malformed value is a
// dispatcher-level failure, not an envelope error.
func parseClientIdentity(args *params.Map) (clientIdentity, *ascomerr.Error) {
	var id clientIdentity
	if raw, ok := args.Lookup("ClientID"); ok {
		v, err := parseUint32(raw)
		if err != nil {
			return id, ascomerr.HTTP(http.StatusBadRequest, "Invalid 'ClientID'")
		}
		id.clientID = v
	}
	if raw, ok := args.Lookup("ClientTransactionID"); ok {
		v, err := parseUint32(raw)
		if err != nil {
			return id, ascomerr.HTTP(http.StatusBadRequest, "Invalid 'ClientTransactionID'")
		}
		id.clientTransactionID = v
	}
	return id, nil
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

// writeEnvelope renders a boxed operation outcome (see ops.go's box/boxUnit)
// into the HTTP response: a KindHTTP error bypasses the envelope entirely;
// anything else always answers HTTP 200 with the full envelope, success or
// failure alike.
func writeEnvelope(c *gin.Context, id clientIdentity, counter *transactionCounter, value interface{}, opErr *ascomerr.Error) {
	serverTxnID := counter.next()
	if opErr != nil && opErr.IsHTTP() {
		c.String(opErr.HTTPStatus(), opErr.Message)
		return
	}
	env := Envelope{
		Value:               value,
		ClientID:            id.clientID,
		ClientTransactionID: id.clientTransactionID,
		ServerTransactionID: serverTxnID,
	}
	if opErr != nil {
		env.Value = nil
		env.ErrorNumber = opErr.Code
		env.ErrorMessage = opErr.Message
	}
	c.JSON(http.StatusOK, env)
}

// writeDispatchError renders a dispatcher-level failure: unknown device
// type/number/operation answers 404; an unsupported method answers 400.
// These never populate the JSON envelope.
func writeDispatchError(c *gin.Context, status int, message string) {
	c.String(status, message)
}
