package surety

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/canopy-network/flightsurety/app/surety/controller"
	"github.com/canopy-network/flightsurety/app/surety/types"
	"github.com/canopy-network/flightsurety/pkg/utils"
)

// NewServer creates the HTTP server for app.
func NewServer(app *types.App) error {
	ctler := controller.NewController(app)
	router, err := ctler.NewRouter()
	if err != nil {
		return err
	}

	// use <ip>:<port> to bind to a specific interface or :<port> to bind to all interfaces
	addr := utils.Env("ADDR", ":3003")

	app.Server = &http.Server{Addr: addr, Handler: controller.WithCORS(router)}
	app.Logger.Info("Starting server", zap.String("addr", addr))

	return nil
}
