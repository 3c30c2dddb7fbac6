package types

// Params holds the protocol constants. DefaultParams matches the deployed protocol.
type Params struct {
	// FundingThreshold is the minimum funding an airline needs before it may nominate peers.
	FundingThreshold Amount
	// OracleRegistrationFee is the minimum fee accepted by oracle registration.
	OracleRegistrationFee Amount
	// QuorumSize is the number of matching oracle reports that finalize a status.
	QuorumSize int
	// MinAirlinesBeforeConsensus is the registered-airline count from which voting applies.
	MinAirlinesBeforeConsensus int
	// ConsensusThresholdPercent is the share of registered airlines that must vote for a candidate.
	ConsensusThresholdPercent int
	// IndexDomain bounds oracle indexes to [0, IndexDomain).
	IndexDomain uint8
	// DrawCounterWrap resets the index draw counter once exceeded.
	DrawCounterWrap uint64
}

// IndexCount is the number of indexes assigned to each oracle.
const IndexCount = 3

// DefaultParams returns the protocol constants.
func DefaultParams() Params {
	return Params{
		FundingThreshold:           10,
		OracleRegistrationFee:      1,
		QuorumSize:                 3,
		MinAirlinesBeforeConsensus: 4,
		ConsensusThresholdPercent:  50,
		IndexDomain:                10,
		DrawCounterWrap:            250,
	}
}
