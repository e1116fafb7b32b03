package alpaca

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexstar-alpaca/bridge/pkg/ascomerr"
	"github.com/nexstar-alpaca/bridge/pkg/celestrondriver"
	"github.com/nexstar-alpaca/bridge/pkg/nexstarsim"
	"github.com/nexstar-alpaca/bridge/pkg/telescope"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, caps telescope.Capabilities) (*gin.Engine, *telescope.Telescope) {
	t.Helper()
	sim := nexstarsim.NewSimulator(nil)
	driver := celestrondriver.New(sim, nil)
	ts := telescope.NewTelescope(driver, caps, telescope.StaticMetadata{
		Description: "test telescope",
		Name:        "NexStar",
	})

	registry := NewRegistry()
	registry.RegisterTelescope(0, "NexStar", "test telescope", ts)

	router := gin.New()
	dispatcher := NewDispatcher(registry, nil)
	dispatcher.RegisterRoutes(router.Group("/api/v1"))

	return router, ts
}

func doGet(t *testing.T, router *gin.Engine, path string, query url.Values) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	full := path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	req := httptest.NewRequest(http.MethodGet, full, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env Envelope
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func doPut(t *testing.T, router *gin.Engine, path string, form url.Values) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env Envelope
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

// A GET on a universal capability-style property with the
// device disconnected still answers an Ok envelope, since "connected" and
// friends are ungated universal reads.
func TestDispatchConnectedDefaultsFalse(t *testing.T) {
	router, _ := newTestServer(t, 0)

	rec, env := doGet(t, router, "/api/v1/telescope/0/connected", url.Values{
		"ClientID": {"1"}, "ClientTransactionID": {"7"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, env.Value)
	assert.Equal(t, 0, env.ErrorNumber)
	assert.Equal(t, uint32(1), env.ClientID)
	assert.Equal(t, uint32(7), env.ClientTransactionID)
}

// A connected-gated getter on a disconnected device answers
// the not_connected envelope, HTTP 200 with the error fields populated.
func TestDispatchAltitudeWhenDisconnected(t *testing.T) {
	router, _ := newTestServer(t, 0)

	rec, env := doGet(t, router, "/api/v1/telescope/0/altitude", url.Values{
		"ClientID": {"1"}, "ClientTransactionID": {"7"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, env.Value)
	assert.Equal(t, ascomerr.CodeNotConnected, env.ErrorNumber)
	assert.Equal(t, "Not connected", env.ErrorMessage)
}

// PUT connected=true succeeds, then a subsequent atpark read
// succeeds with the driver's default unparked state.
func TestDispatchConnectThenAtPark(t *testing.T) {
	router, _ := newTestServer(t, 0)

	rec, env := doPut(t, router, "/api/v1/telescope/0/connected", url.Values{"Connected": {"true"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, env.ErrorNumber)
	assert.Nil(t, env.Value)

	rec, env = doGet(t, router, "/api/v1/telescope/0/atpark", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, env.Value)
}

// An out-of-range site elevation is rejected as
// invalid_value without reaching the driver.
func TestDispatchSiteElevationOutOfRange(t *testing.T) {
	router, _ := newTestServer(t, 0)
	doPut(t, router, "/api/v1/telescope/0/connected", url.Values{"Connected": {"true"}})

	rec, env := doPut(t, router, "/api/v1/telescope/0/siteelevation", url.Values{"SiteElevation": {"12000"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ascomerr.CodeInvalidValue, env.ErrorNumber)
	assert.Equal(t, "Invalid value", env.ErrorMessage)
}

// A slewtocoordinatesasync on a capable, connected device
// eventually reaches the commanded coordinates.
func TestDispatchSlewToCoordinatesAsyncConverges(t *testing.T) {
	router, _ := newTestServer(t, telescope.CanSlewAsync)
	doPut(t, router, "/api/v1/telescope/0/connected", url.Values{"Connected": {"true"}})

	rec, env := doPut(t, router, "/api/v1/telescope/0/slewtocoordinatesasync", url.Values{
		"RightAscension": {"6.0"}, "Declination": {"45.0"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, env.ErrorNumber)

	deadline := time.Now().Add(40 * time.Second)
	for time.Now().Before(deadline) {
		_, slewingEnv := doGet(t, router, "/api/v1/telescope/0/slewing", nil)
		if slewingEnv.Value == false {
			break
		}
		time.Sleep(30 * time.Millisecond)
	}

	_, raEnv := doGet(t, router, "/api/v1/telescope/0/rightascension", nil)
	_, decEnv := doGet(t, router, "/api/v1/telescope/0/declination", nil)
	assert.InDelta(t, 6.0, raEnv.Value.(float64), 0.1)
	assert.InDelta(t, 45.0, decEnv.Value.(float64), 0.1)
}

// Scenario 5 negative path: without CanSlewAsync the operation is rejected
// before the driver is ever invoked.
func TestDispatchSlewToCoordinatesAsyncRequiresCapability(t *testing.T) {
	router, _ := newTestServer(t, 0)
	doPut(t, router, "/api/v1/telescope/0/connected", url.Values{"Connected": {"true"}})

	rec, env := doPut(t, router, "/api/v1/telescope/0/slewtocoordinatesasync", url.Values{
		"RightAscension": {"6.0"}, "Declination": {"45.0"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ascomerr.CodeNotImplemented, env.ErrorNumber)
}

// A moveaxis on a capable device succeeds and drives the
// pass-through path through to the simulator without error.
func TestDispatchMoveAxis(t *testing.T) {
	router, _ := newTestServer(t, telescope.CanMoveAxis0)
	doPut(t, router, "/api/v1/telescope/0/connected", url.Values{"Connected": {"true"}})

	rec, env := doPut(t, router, "/api/v1/telescope/0/moveaxis", url.Values{
		"Axis": {"0"}, "Rate": {"1.0"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, env.ErrorNumber)
}

func TestDispatchUnknownDeviceIs404(t *testing.T) {
	router, _ := newTestServer(t, 0)
	rec, _ := doGet(t, router, "/api/v1/telescope/9/connected", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDispatchUnknownOperationIs404(t *testing.T) {
	router, _ := newTestServer(t, 0)
	rec, _ := doGet(t, router, "/api/v1/telescope/0/bogusoperation", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ServerTransactionID strictly increases across a sequence of requests.
func TestDispatchServerTransactionIDMonotonic(t *testing.T) {
	router, _ := newTestServer(t, 0)

	var last uint32
	for i := 0; i < 5; i++ {
		_, env := doGet(t, router, "/api/v1/telescope/0/connected", nil)
		assert.Greater(t, env.ServerTransactionID, last)
		last = env.ServerTransactionID
	}
}

// Idempotent connect: setting already-current connection
// state is a no-op that still reports success.
func TestDispatchIdempotentConnect(t *testing.T) {
	router, _ := newTestServer(t, 0)

	_, env := doPut(t, router, "/api/v1/telescope/0/connected", url.Values{"Connected": {"true"}})
	assert.Equal(t, 0, env.ErrorNumber)

	_, env = doPut(t, router, "/api/v1/telescope/0/connected", url.Values{"Connected": {"true"}})
	assert.Equal(t, 0, env.ErrorNumber)

	_, connEnv := doGet(t, router, "/api/v1/telescope/0/connected", nil)
	assert.Equal(t, true, connEnv.Value)
}
