package controller

import (
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"

	"github.com/canopy-network/flightsurety/app/surety/types"
	ptypes "github.com/canopy-network/flightsurety/pkg/types"
	"github.com/canopy-network/flightsurety/pkg/utils"
)

type Controller struct {
	App        *types.App
	AdminToken string
	AdminUser  string
	AuthHash   []byte
	JWTSecret  []byte
	// Owner is the identity an admin login acts as.
	Owner ptypes.Address

	nextConn atomic.Uint64
}

// NewController returns a new controller.
func NewController(app *types.App) *Controller {
	adminToken := utils.Env("ADMIN_TOKEN", "devtoken")
	adminUser := utils.Env("ADMIN_USER", "admin")
	adminPass := utils.Env("ADMIN_PASSWORD", "admin")
	jwtSecret := []byte(utils.Env("SESSION_SECRET", "change-me-please"))

	phash, _ := utils.HashOrRead(adminPass)

	return &Controller{
		App:        app,
		AdminToken: adminToken,
		AdminUser:  adminUser,
		AuthHash:   phash,
		JWTSecret:  jwtSecret,
		Owner:      utils.EnvAddress("OWNER_ADDRESS", "owner"),
	}
}

// WithCORS is a middleware that adds CORS headers to the response.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", http.MethodGet+", "+http.MethodPost+", "+http.MethodDelete+", "+http.MethodOptions)

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter returns a new router with all the routes defined in this file.
func (c *Controller) NewRouter() (*mux.Router, error) {
	r := mux.NewRouter()

	r.Handle("/api/health", http.HandlerFunc(c.HandleHealth)).Methods(http.MethodGet)

	// Sessions
	r.HandleFunc("/api/auth/login", c.HandleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", c.HandleLogout).Methods(http.MethodPost)
	r.Handle("/api/auth/token", c.RequireAdmin(http.HandlerFunc(c.HandleIssueToken))).Methods(http.MethodPost)

	// Operational gate
	r.HandleFunc("/api/status", c.HandleStatus).Methods(http.MethodGet)
	r.Handle("/api/status", c.RequireCaller(http.HandlerFunc(c.HandleSetStatus))).Methods(http.MethodPost)
	r.Handle("/api/authorized/{address}", c.RequireCaller(http.HandlerFunc(c.HandleAuthorize))).Methods(http.MethodPost)
	r.Handle("/api/authorized/{address}", c.RequireCaller(http.HandlerFunc(c.HandleDeauthorize))).Methods(http.MethodDelete)

	// Airline governance
	r.Handle("/api/airlines/fund", c.RequireCaller(http.HandlerFunc(c.HandleFundAirline))).Methods(http.MethodPost)
	r.Handle("/api/airlines", c.RequireCaller(http.HandlerFunc(c.HandleRegisterAirline))).Methods(http.MethodPost)
	r.HandleFunc("/api/airlines/{address}", c.HandleAirline).Methods(http.MethodGet)

	// Flights
	r.Handle("/api/flights", c.RequireCaller(http.HandlerFunc(c.HandleRegisterFlight))).Methods(http.MethodPost)
	r.HandleFunc("/api/flights/{airline}/{name}/{timestamp}", c.HandleFlight).Methods(http.MethodGet)

	// Insurance ledger
	r.Handle("/api/insurance", c.RequireCaller(http.HandlerFunc(c.HandleBuyInsurance))).Methods(http.MethodPost)
	r.Handle("/api/insurance/claim", c.RequireCaller(http.HandlerFunc(c.HandleClaimInsurance))).Methods(http.MethodPost)
	r.HandleFunc("/api/insurance/{airline}/{flight}/{timestamp}", c.HandlePolicy).Methods(http.MethodGet)

	// Oracle consensus
	r.Handle("/api/oracles", c.RequireCaller(http.HandlerFunc(c.HandleRegisterOracle))).Methods(http.MethodPost)
	r.Handle("/api/oracles/me", c.RequireCaller(http.HandlerFunc(c.HandleMyIndexes))).Methods(http.MethodGet)
	r.Handle("/api/oracles/requests", c.RequireCaller(http.HandlerFunc(c.HandleFetchFlightStatus))).Methods(http.MethodPost)
	r.Handle("/api/oracles/responses", c.RequireCaller(http.HandlerFunc(c.HandleSubmitResponse))).Methods(http.MethodPost)
	r.Handle("/api/oracles/{address}", c.RequireCaller(http.HandlerFunc(c.HandleOracle))).Methods(http.MethodGet)

	// WebSocket endpoint for notifications
	r.HandleFunc("/api/ws", c.HandleWebSocket).Methods(http.MethodGet)

	return r, nil
}
