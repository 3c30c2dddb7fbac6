package controller

import (
	"net/http"

	"github.com/canopy-network/flightsurety/pkg/types"
)

type airlineResponse struct {
	Address    string   `json:"address"`
	Registered bool     `json:"registered"`
	Funds      uint64   `json:"funds"`
	Votes      []string `json:"votes"`
	Registry   int      `json:"registeredAirlines"`
}

// HandleFundAirline adds funds to the calling airline.
func (c *Controller) HandleFundAirline(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Amount uint64 `json:"amount"`
	}
	if !c.decode(w, r, &in) {
		return
	}
	caller := callerFrom(r.Context())
	total, err := c.App.Service.FundAirline(r.Context(), caller, types.Amount(in.Amount))
	if err != nil {
		c.writeServiceError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, map[string]interface{}{"address": caller.Hex(), "funds": uint64(total)})
}

// HandleRegisterAirline nominates a candidate airline on behalf of the caller.
func (c *Controller) HandleRegisterAirline(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Candidate string `json:"candidate"`
	}
	if !c.decode(w, r, &in) {
		return
	}
	candidate, err := types.ParseAddress(in.Candidate)
	if err != nil {
		c.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reg, err := c.App.Service.RegisterAirline(r.Context(), callerFrom(r.Context()), candidate)
	if err != nil {
		c.writeServiceError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"candidate":  candidate.Hex(),
		"registered": reg.Registered,
		"votes":      reg.Votes,
	})
}

// HandleAirline returns an airline's funding, registration and votes.
func (c *Controller) HandleAirline(w http.ResponseWriter, r *http.Request) {
	account, err := pathAddress(r, "address")
	if err != nil {
		c.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	registered, err := c.App.Service.IsAirlineRegistered(account)
	if err != nil {
		c.writeServiceError(w, err)
		return
	}
	voters := c.App.Service.Votes(account)
	votes := make([]string, len(voters))
	for i, v := range voters {
		votes[i] = v.Hex()
	}
	c.writeJSON(w, http.StatusOK, airlineResponse{
		Address:    account.Hex(),
		Registered: registered,
		Funds:      uint64(c.App.Service.Airline(account).Funds),
		Votes:      votes,
		Registry:   c.App.Service.RegisteredAirlineCount(),
	})
}
