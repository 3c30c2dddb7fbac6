package controller

import (
	"net/http"

	"github.com/canopy-network/flightsurety/pkg/types"
)

// HandleRegisterOracle registers the caller as an oracle.
func (c *Controller) HandleRegisterOracle(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Fee uint64 `json:"fee"`
	}
	if !c.decode(w, r, &in) {
		return
	}
	indexes, err := c.App.Service.RegisterOracle(r.Context(), callerFrom(r.Context()), types.Amount(in.Fee))
	if err != nil {
		c.writeServiceError(w, err)
		return
	}
	c.writeJSON(w, http.StatusCreated, map[string][]int{"indexes": indexList(indexes)})
}

// HandleMyIndexes returns the caller's oracle indexes.
func (c *Controller) HandleMyIndexes(w http.ResponseWriter, r *http.Request) {
	indexes, err := c.App.Service.GetMyIndexes(callerFrom(r.Context()))
	if err != nil {
		c.writeServiceError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, map[string][]int{"indexes": indexList(indexes)})
}

// HandleOracle returns any oracle's indexes. Owner only.
func (c *Controller) HandleOracle(w http.ResponseWriter, r *http.Request) {
	account, err := pathAddress(r, "address")
	if err != nil {
		c.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	indexes, err := c.App.Service.GetOracle(callerFrom(r.Context()), account)
	if err != nil {
		c.writeServiceError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, map[string][]int{"indexes": indexList(indexes)})
}

// HandleFetchFlightStatus opens an oracle request for a flight.
func (c *Controller) HandleFetchFlightStatus(w http.ResponseWriter, r *http.Request) {
	var in flightRef
	if !c.decode(w, r, &in) {
		return
	}
	airline, err := in.airline()
	if err != nil {
		c.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	index, err := c.App.Service.FetchFlightStatus(r.Context(), callerFrom(r.Context()), airline, in.Flight, in.Timestamp)
	if err != nil {
		c.writeServiceError(w, err)
		return
	}
	c.writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"index":     index,
		"airline":   airline.Hex(),
		"flight":    in.Flight,
		"timestamp": in.Timestamp,
	})
}

// HandleSubmitResponse records the caller's status report for an open request.
func (c *Controller) HandleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	var in struct {
		flightRef
		Index  uint8 `json:"index"`
		Status uint8 `json:"status"`
	}
	if !c.decode(w, r, &in) {
		return
	}
	airline, err := in.airline()
	if err != nil {
		c.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := types.StatusCode(in.Status)
	if !status.Known() {
		c.writeError(w, http.StatusBadRequest, "unknown status code")
		return
	}
	report, err := c.App.Service.SubmitOracleResponse(r.Context(), callerFrom(r.Context()), in.Index, airline, in.Flight, in.Timestamp, status)
	if err != nil {
		c.writeServiceError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, report)
}
