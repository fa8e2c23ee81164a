package biddingerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrNoBids          = errors.New("no bids found for auction")
	ErrUserNoBids      = errors.New("user has not placed any bids")
	ErrRuleNotFound    = errors.New("rule not found")
	ErrScoreNotFound   = errors.New("score result not found")
)

// Bid outcomes. These are expected business results; callers branch on them
// with errors.Is.
var (
	ErrInvalidBid     = errors.New("invalid bid")
	ErrAuctionClosed  = errors.New("auction is closed")
	ErrSelfBid        = errors.New("seller cannot bid on own auction")
	ErrBidTooLow      = errors.New("bid amount too low")
	ErrInvalidAutoBid = errors.New("invalid auto-bid instruction")
	ErrInvalidAuction = errors.New("invalid auction")
	ErrAutoBidLimit   = errors.New("auto-bid step limit reached")
)

// ErrContention means the auction could not be locked in time, or its state
// moved underneath the writer. It is the only retryable error.
var ErrContention = errors.New("auction is busy, retry later")

// Rule engine errors
var (
	ErrInvalidRulePredicate = errors.New("invalid rule predicate")
	ErrInvalidRule          = errors.New("invalid rule definition")
	ErrInvalidDisposition   = errors.New("invalid disposition")
	ErrInvalidTarget        = errors.New("invalid scoring target")
)

// IsRetryable reports whether err may succeed if the same request is resubmitted.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrContention)
}
