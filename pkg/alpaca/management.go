package alpaca

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// managementDescription is the fixed server description; this bridge
// reports one identity regardless of runtime configuration, matching the
// literal object real Alpaca test clients assert against.
var managementDescription = gin.H{
	"ServerName":          "Alpaca Telescope Server",
	"Manufacturer":        "Marrony Neris",
	"ManufacturerVersion": "0.0.1",
	"Location":            "US",
}

// ManagementAPI serves the three ungated management endpoints:
// apiversions, description, configureddevices. They sit behind the same
// AuthMiddleware as the device API when authentication is enabled.
type ManagementAPI struct {
	registry *Registry
	counter  *transactionCounter
}

// NewManagementAPI builds a management API handler over registry, sharing
// the dispatcher's transaction counter so ServerTransactionID stays globally
// monotonic across both surfaces.
func NewManagementAPI(registry *Registry, counter *transactionCounter) *ManagementAPI {
	return &ManagementAPI{registry: registry, counter: counter}
}

// RegisterRoutes wires /management/apiversions and /management/v1/* onto
// router.
func (m *ManagementAPI) RegisterRoutes(router gin.IRouter) {
	management := router.Group("/management")
	management.GET("/apiversions", m.handleAPIVersions)
	v1 := management.Group("/v1")
	v1.GET("/description", m.handleDescription)
	v1.GET("/configureddevices", m.handleConfiguredDevices)
}

func (m *ManagementAPI) handleAPIVersions(c *gin.Context) {
	id, idErr := parseClientIdentity(requestArgs(c, http.MethodGet))
	if idErr != nil {
		writeDispatchError(c, idErr.HTTPStatus(), idErr.Message)
		return
	}
	writeEnvelope(c, id, m.counter, []int{1}, nil)
}

func (m *ManagementAPI) handleDescription(c *gin.Context) {
	id, idErr := parseClientIdentity(requestArgs(c, http.MethodGet))
	if idErr != nil {
		writeDispatchError(c, idErr.HTTPStatus(), idErr.Message)
		return
	}
	writeEnvelope(c, id, m.counter, managementDescription, nil)
}

func (m *ManagementAPI) handleConfiguredDevices(c *gin.Context) {
	id, idErr := parseClientIdentity(requestArgs(c, http.MethodGet))
	if idErr != nil {
		writeDispatchError(c, idErr.HTTPStatus(), idErr.Message)
		return
	}
	writeEnvelope(c, id, m.counter, m.registry.configuredDevices(), nil)
}
