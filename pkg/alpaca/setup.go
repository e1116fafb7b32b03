package alpaca

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSetupRoutes wires GET|PUT /setup/v1/:device_type/:device_id/:operation,
// answering with an echo of the URL pieces. Real ASCOM Alpaca setup pages
// serve an HTML configuration UI here, which this headless bridge has no
// use for.
func RegisterSetupRoutes(router gin.IRouter) {
	setup := router.Group("/setup/v1")
	setup.GET("/:device_type/:device_id/:operation", handleSetupEcho)
	setup.PUT("/:device_type/:device_id/:operation", handleSetupEcho)
}

func handleSetupEcho(c *gin.Context) {
	c.String(http.StatusOK, fmt.Sprintf("setup: %s/%s/%s",
		c.Param("device_type"), c.Param("device_id"), c.Param("operation")))
}
