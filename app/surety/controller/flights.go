package controller

import (
	"net/http"

	"github.com/canopy-network/flightsurety/pkg/types"
)

type flightResponse struct {
	Key              string `json:"key,omitempty"`
	Airline          string `json:"airline"`
	Name             string `json:"name"`
	Registered       bool   `json:"registered"`
	StatusCode       uint8  `json:"statusCode"`
	Status           string `json:"status"`
	UpdatedTimestamp uint64 `json:"updatedTimestamp"`
}

func newFlightResponse(f types.Flight) flightResponse {
	return flightResponse{
		Airline:          f.Airline.Hex(),
		Name:             f.Name,
		Registered:       f.Registered,
		StatusCode:       uint8(f.StatusCode),
		Status:           f.StatusCode.String(),
		UpdatedTimestamp: f.UpdatedTimestamp,
	}
}

// HandleRegisterFlight registers a flight. The airline defaults to the caller.
func (c *Controller) HandleRegisterFlight(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Airline   string `json:"airline"`
		Name      string `json:"name"`
		Timestamp uint64 `json:"timestamp"`
	}
	if !c.decode(w, r, &in) {
		return
	}
	if in.Name == "" {
		c.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	airline := callerFrom(r.Context())
	if in.Airline != "" {
		var err error
		if airline, err = types.ParseAddress(in.Airline); err != nil {
			c.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	key, err := c.App.Service.RegisterFlight(r.Context(), airline, in.Name, in.Timestamp)
	if err != nil {
		c.writeServiceError(w, err)
		return
	}
	f, _ := c.App.Service.Flight(airline, in.Name, in.Timestamp)
	out := newFlightResponse(f)
	out.Key = key.Hex()
	c.writeJSON(w, http.StatusCreated, out)
}

// HandleFlight returns a registered flight.
func (c *Controller) HandleFlight(w http.ResponseWriter, r *http.Request) {
	airline, name, ts, err := pathFlight(r, "name")
	if err != nil {
		c.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f, ok := c.App.Service.Flight(airline, name, ts)
	if !ok {
		c.writeError(w, http.StatusNotFound, "flight not found")
		return
	}
	c.writeJSON(w, http.StatusOK, newFlightResponse(f))
}
