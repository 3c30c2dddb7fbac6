package controller

import (
	"net/http"

	"github.com/canopy-network/flightsurety/pkg/types"
)

// HandleBuyInsurance records the caller's purchase for a flight.
func (c *Controller) HandleBuyInsurance(w http.ResponseWriter, r *http.Request) {
	var in struct {
		flightRef
		Amount uint64 `json:"amount"`
	}
	if !c.decode(w, r, &in) {
		return
	}
	airline, err := in.airline()
	if err != nil {
		c.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	caller := callerFrom(r.Context())
	if err := c.App.Service.BuyInsurance(r.Context(), caller, airline, in.Flight, in.Timestamp, types.Amount(in.Amount)); err != nil {
		c.writeServiceError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"passenger": caller.Hex(),
		"airline":   airline.Hex(),
		"flight":    in.Flight,
		"timestamp": in.Timestamp,
		"amount":    in.Amount,
	})
}

// HandleClaimInsurance pays out the credited amount for a flight to the caller.
func (c *Controller) HandleClaimInsurance(w http.ResponseWriter, r *http.Request) {
	var in flightRef
	if !c.decode(w, r, &in) {
		return
	}
	airline, err := in.airline()
	if err != nil {
		c.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	paid, err := c.App.Service.ClaimInsurance(r.Context(), callerFrom(r.Context()), airline, in.Flight, in.Timestamp)
	if err != nil {
		c.writeServiceError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, map[string]uint64{"paid": uint64(paid)})
}

// HandlePolicy returns the flight pool record, plus one buyer's purchase when
// the buyer query parameter is set.
func (c *Controller) HandlePolicy(w http.ResponseWriter, r *http.Request) {
	airline, flight, ts, err := pathFlight(r, "flight")
	if err != nil {
		c.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pool := c.App.Service.Policy(airline, flight, ts)
	out := map[string]interface{}{
		"amount": uint64(pool.Amount),
		"payout": uint64(pool.Payout),
	}
	if raw := r.URL.Query().Get("buyer"); raw != "" {
		buyer, err := types.ParseAddress(raw)
		if err != nil {
			c.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		out["purchase"] = uint64(c.App.Service.Purchase(airline, flight, ts, buyer).Amount)
	}
	c.writeJSON(w, http.StatusOK, out)
}
