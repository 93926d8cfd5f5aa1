package engine

import "errors"

// Sentinel errors returned by engine operations. Callers match them with
// errors.Is; handlers translate them to HTTP statuses. Every rejection
// leaves engine state exactly as it was before the call.
var (
	// ErrUnauthorized: caller lacks the required privilege.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound: no record with the given id/key.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput: malformed or out-of-range input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidStatus: the record is not in a status that allows the
	// requested transition.
	ErrInvalidStatus = errors.New("invalid status for operation")

	// ErrWindowClosed: the time window for the operation has elapsed.
	ErrWindowClosed = errors.New("time window has elapsed")

	// ErrWindowOpen: the operation requires a deadline that has not been
	// reached yet.
	ErrWindowOpen = errors.New("time window has not elapsed")

	// ErrInsufficientLiquidity: the pool cannot guarantee the requested
	// coverage or withdrawal. Conservative on purpose.
	ErrInsufficientLiquidity = errors.New("insufficient pool liquidity")

	// ErrInsufficientShares: caller holds fewer shares than requested.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrConditionsNotMet: the trigger condition did not hold. Expected
	// and frequent; the scheduler treats it as "try again later".
	ErrConditionsNotMet = errors.New("conditions not met")

	// ErrNoShares: governance requires the caller to hold pool shares.
	ErrNoShares = errors.New("caller holds no pool shares")

	// ErrAlreadyVoted: one vote per address per proposal.
	ErrAlreadyVoted = errors.New("already voted on this proposal")
)
