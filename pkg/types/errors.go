package types

// Code names a failure reason surfaced to callers.
type Code string

const (
	CodeNotOperational      Code = "NOT_OPERATIONAL"
	CodeNotAuthorized       Code = "NOT_AUTHORIZED"
	CodeNotContractOwner    Code = "NOT_CONTRACT_OWNER"
	CodeInvalidIdentity     Code = "INVALID_IDENTITY"
	CodeAlreadyRegistered   Code = "ALREADY_REGISTERED"
	CodeNotRegistered       Code = "NOT_REGISTERED"
	CodeAlreadyVoted        Code = "ALREADY_VOTED"
	CodeInsufficientFunding Code = "INSUFFICIENT_FUNDING"
	CodeInsufficientFee     Code = "INSUFFICIENT_FEE"
	CodeIndexMismatch       Code = "INDEX_MISMATCH"
	CodeRequestNotOpen      Code = "REQUEST_NOT_OPEN"
	CodeNoEligibleCredit    Code = "NO_ELIGIBLE_CREDIT"
	CodeDuplicateFlight     Code = "DUPLICATE_FLIGHT"
	CodeNoOp                Code = "NO_OP"
	CodeTransferFailed      Code = "TRANSFER_FAILED"
	CodeFundsOverflow       Code = "FUNDS_OVERFLOW"
)

// Error is a protocol failure. Sentinels below are compared with errors.Is.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrNotOperational      = &Error{Code: CodeNotOperational, Message: "contract is currently not operational"}
	ErrNotAuthorized       = &Error{Code: CodeNotAuthorized, Message: "caller is not authorized"}
	ErrNotContractOwner    = &Error{Code: CodeNotContractOwner, Message: "caller is not contract owner"}
	ErrInvalidIdentity     = &Error{Code: CodeInvalidIdentity, Message: "invalid identity"}
	ErrAlreadyRegistered   = &Error{Code: CodeAlreadyRegistered, Message: "already registered"}
	ErrNotRegistered       = &Error{Code: CodeNotRegistered, Message: "not registered"}
	ErrAlreadyVoted        = &Error{Code: CodeAlreadyVoted, Message: "caller already voted for this airline"}
	ErrInsufficientFunding = &Error{Code: CodeInsufficientFunding, Message: "airline funding below threshold"}
	ErrInsufficientFee     = &Error{Code: CodeInsufficientFee, Message: "registration fee is required"}
	ErrIndexMismatch       = &Error{Code: CodeIndexMismatch, Message: "index does not match oracle request"}
	ErrRequestNotOpen      = &Error{Code: CodeRequestNotOpen, Message: "flight or timestamp do not match an open oracle request"}
	ErrNoEligibleCredit    = &Error{Code: CodeNoEligibleCredit, Message: "no eligible credit"}
	ErrDuplicateFlight     = &Error{Code: CodeDuplicateFlight, Message: "flight already registered"}
	ErrNoOp                = &Error{Code: CodeNoOp, Message: "operating status already set"}
	ErrTransferFailed      = &Error{Code: CodeTransferFailed, Message: "value transfer failed"}
	ErrFundsOverflow       = &Error{Code: CodeFundsOverflow, Message: "airline funds overflow"}
)
