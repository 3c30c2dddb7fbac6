package types

import "strconv"

// StatusCode is a flight status as reported by oracles.
type StatusCode uint8

const (
	StatusUnknown       StatusCode = 0
	StatusOnTime        StatusCode = 10
	StatusLateAirline   StatusCode = 20
	StatusLateWeather   StatusCode = 30
	StatusLateTechnical StatusCode = 40
	StatusLateOther     StatusCode = 50
)

var statusNames = map[StatusCode]string{
	StatusUnknown:       "UNKNOWN",
	StatusOnTime:        "ON_TIME",
	StatusLateAirline:   "LATE_AIRLINE",
	StatusLateWeather:   "LATE_WEATHER",
	StatusLateTechnical: "LATE_TECHNICAL",
	StatusLateOther:     "LATE_OTHER",
}

func (s StatusCode) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "STATUS_" + strconv.Itoa(int(s))
}

// Known reports whether s is one of the defined status codes.
func (s StatusCode) Known() bool {
	_, ok := statusNames[s]
	return ok
}
