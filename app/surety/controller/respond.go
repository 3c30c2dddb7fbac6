package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/canopy-network/flightsurety/pkg/types"
)

var errorStatus = map[types.Code]int{
	types.CodeNotOperational:      http.StatusServiceUnavailable,
	types.CodeNotAuthorized:       http.StatusForbidden,
	types.CodeNotContractOwner:    http.StatusForbidden,
	types.CodeInvalidIdentity:     http.StatusBadRequest,
	types.CodeAlreadyRegistered:   http.StatusConflict,
	types.CodeNotRegistered:       http.StatusNotFound,
	types.CodeAlreadyVoted:        http.StatusConflict,
	types.CodeInsufficientFunding: http.StatusUnprocessableEntity,
	types.CodeInsufficientFee:     http.StatusUnprocessableEntity,
	types.CodeIndexMismatch:       http.StatusForbidden,
	types.CodeRequestNotOpen:      http.StatusConflict,
	types.CodeNoEligibleCredit:    http.StatusConflict,
	types.CodeDuplicateFlight:     http.StatusConflict,
	types.CodeNoOp:                http.StatusConflict,
	types.CodeTransferFailed:      http.StatusBadGateway,
	types.CodeFundsOverflow:       http.StatusUnprocessableEntity,
}

// writeJSON writes a JSON response
func (c *Controller) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func (c *Controller) writeError(w http.ResponseWriter, statusCode int, message string) {
	c.writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeServiceError maps a protocol error to its HTTP status and code.
func (c *Controller) writeServiceError(w http.ResponseWriter, err error) {
	var perr *types.Error
	if errors.As(err, &perr) {
		status, ok := errorStatus[perr.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		c.writeJSON(w, status, map[string]string{"error": err.Error(), "code": string(perr.Code)})
		return
	}
	c.App.Logger.Error("Protocol operation failed", zap.Error(err))
	c.writeError(w, http.StatusInternalServerError, err.Error())
}

func (c *Controller) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		c.writeError(w, http.StatusBadRequest, "bad json")
		return false
	}
	return true
}

// flightRef names a flight in request bodies.
type flightRef struct {
	Airline   string `json:"airline"`
	Flight    string `json:"flight"`
	Timestamp uint64 `json:"timestamp"`
}

func (f flightRef) airline() (types.Address, error) {
	return types.ParseAddress(f.Airline)
}

// pathAddress reads an address route variable.
func pathAddress(r *http.Request, name string) (types.Address, error) {
	return types.ParseAddress(mux.Vars(r)[name])
}

// pathFlight reads the {airline}/{flight|name}/{timestamp} route variables.
func pathFlight(r *http.Request, nameVar string) (types.Address, string, uint64, error) {
	vars := mux.Vars(r)
	airline, err := types.ParseAddress(vars["airline"])
	if err != nil {
		return types.ZeroAddress, "", 0, err
	}
	ts, err := strconv.ParseUint(vars["timestamp"], 10, 64)
	if err != nil {
		return types.ZeroAddress, "", 0, fmt.Errorf("invalid timestamp %q", vars["timestamp"])
	}
	return airline, vars[nameVar], ts, nil
}

func indexList(indexes [types.IndexCount]uint8) []int {
	out := make([]int, len(indexes))
	for i, idx := range indexes {
		out[i] = int(idx)
	}
	return out
}
