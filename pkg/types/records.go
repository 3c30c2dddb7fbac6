package types

import "time"

// Airline is the funding and registration state of an airline account.
type Airline struct {
	Registered bool   `json:"registered"`
	Funds      Amount `json:"funds"`
}

// Flight is a registered flight. Status updates are not written back to it.
type Flight struct {
	Airline          Address    `json:"airline"`
	Name             string     `json:"name"`
	Registered       bool       `json:"registered"`
	StatusCode       StatusCode `json:"statusCode"`
	UpdatedTimestamp uint64     `json:"updatedTimestamp"`
}

// Policy is an insurance record: Amount is set by purchase, Payout by crediting.
type Policy struct {
	Amount Amount `json:"amount"`
	Payout Amount `json:"payout"`
}

// OracleRegistration holds the indexes assigned to an oracle at registration.
type OracleRegistration struct {
	Registered bool              `json:"registered"`
	Indexes    [IndexCount]uint8 `json:"indexes"`
}

// HasIndex reports whether index is one of the assigned indexes.
func (o OracleRegistration) HasIndex(index uint8) bool {
	for _, i := range o.Indexes {
		if i == index {
			return true
		}
	}
	return false
}

// ResponseRecord aggregates oracle reports for one status request.
type ResponseRecord struct {
	Requester Address                  `json:"requester"`
	Open      bool                     `json:"open"`
	Responses map[StatusCode][]Address `json:"responses"`
	Index     uint8                    `json:"index"`
	Airline   Address                  `json:"airline"`
	Flight    string                   `json:"flight"`
	Timestamp uint64                   `json:"timestamp"`
	OpenedAt  time.Time                `json:"openedAt"`
}

// Clone returns a deep copy so callers cannot mutate stored reporter lists.
func (r ResponseRecord) Clone() ResponseRecord {
	out := r
	out.Responses = make(map[StatusCode][]Address, len(r.Responses))
	for code, reporters := range r.Responses {
		out.Responses[code] = append([]Address(nil), reporters...)
	}
	return out
}
