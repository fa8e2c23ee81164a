package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"bidding-engine/internal/biddingerrors"
	"bidding-engine/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, biddingerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, biddingerrors.ErrRuleNotFound):
		return http.StatusNotFound, "rule not found"
	case errors.Is(err, biddingerrors.ErrScoreNotFound):
		return http.StatusNotFound, "score not found"
	case errors.Is(err, biddingerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for auction"
	case errors.Is(err, biddingerrors.ErrAuctionClosed):
		return http.StatusConflict, "auction is closed"
	case errors.Is(err, biddingerrors.ErrSelfBid):
		return http.StatusForbidden, "sellers cannot bid on their own auction"
	case errors.Is(err, biddingerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, biddingerrors.ErrContention):
		return http.StatusServiceUnavailable, "auction is busy, retry shortly"
	case errors.Is(err, biddingerrors.ErrInvalidRulePredicate):
		return http.StatusUnprocessableEntity, "invalid rule predicate"
	case errors.Is(err, biddingerrors.ErrInvalidRule):
		return http.StatusBadRequest, "invalid rule"
	case errors.Is(err, biddingerrors.ErrInvalidDisposition):
		return http.StatusBadRequest, "invalid disposition"
	case errors.Is(err, biddingerrors.ErrInvalidTarget):
		return http.StatusBadRequest, "invalid scoring target"
	case errors.Is(err, biddingerrors.ErrAutoBidLimit):
		return http.StatusConflict, "auto-bid step limit reached"
	case errors.Is(err, biddingerrors.ErrInvalidAutoBid):
		return http.StatusBadRequest, "invalid auto-bid"
	case errors.Is(err, biddingerrors.ErrInvalidAuction):
		return http.StatusBadRequest, "invalid auction details"
	case errors.Is(err, biddingerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// HandleServiceError maps err, writes the error envelope and logs it.
// Contention is flagged retryable in the response body.
func HandleServiceError(c *gin.Context, handlerName, logMessage string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	if biddingerrors.IsRetryable(err) {
		utils.MarkRetryable(c)
	}
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": "+logMessage, fields)
		return
	}
	utils.Warn(handlerName+": "+logMessage, fields)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
