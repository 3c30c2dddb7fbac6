package controller

import (
	"net/http"
)

// HandleStatus reports the operational flag.
func (c *Controller) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	c.writeJSON(w, http.StatusOK, map[string]bool{"operational": c.App.Service.IsOperational()})
}

// HandleSetStatus flips the operational flag. Owner only.
func (c *Controller) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Operational bool `json:"operational"`
	}
	if !c.decode(w, r, &in) {
		return
	}
	if err := c.App.Service.SetOperatingStatus(r.Context(), callerFrom(r.Context()), in.Operational); err != nil {
		c.writeServiceError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, map[string]bool{"operational": c.App.Service.IsOperational()})
}

// HandleAuthorize adds an identity to the store's authorization list. Owner only.
func (c *Controller) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	target, err := pathAddress(r, "address")
	if err != nil {
		c.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := c.App.Service.Authorize(callerFrom(r.Context()), target); err != nil {
		c.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeauthorize removes an identity from the store's authorization list. Owner only.
func (c *Controller) HandleDeauthorize(w http.ResponseWriter, r *http.Request) {
	target, err := pathAddress(r, "address")
	if err != nil {
		c.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := c.App.Service.Deauthorize(callerFrom(r.Context()), target); err != nil {
		c.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
