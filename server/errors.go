package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bitfsorg/estateshare-go/disburse"
	"github.com/bitfsorg/estateshare-go/market"
	"github.com/bitfsorg/estateshare-go/rental"
	"github.com/bitfsorg/estateshare-go/revshare"
)

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

const (
	ErrorCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrorCodePropertyRented   ErrorCode = "PROPERTY_RENTED"
	ErrorCodeNoShareholders   ErrorCode = "NO_SHAREHOLDERS"
	ErrorCodeLookupFailed     ErrorCode = "SHAREHOLDER_LOOKUP_FAILED"
	ErrorCodePartialPayout    ErrorCode = "PARTIAL_DISBURSEMENT"
	ErrorCodeRentalRejected   ErrorCode = "RENTAL_REJECTED"
	ErrorCodeStoreFailure     ErrorCode = "STORE_FAILURE"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrorCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Status    string    `json:"status"`
	ErrorCode ErrorCode `json:"error_code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`

	// Transfers lists the payouts that settled before a partial failure.
	Transfers []disburse.TransferResult `json:"transfers,omitempty"`
}

// classify maps an operation error onto an HTTP status and error code.
func classify(err error) (int, ErrorCode) {
	switch {
	case errors.Is(err, market.ErrInvalidProperty),
		errors.Is(err, market.ErrInvalidDuration),
		errors.Is(err, market.ErrInvalidPayment),
		errors.Is(err, market.ErrNoAccount),
		errors.Is(err, market.ErrUnknownMode):
		return http.StatusBadRequest, ErrorCodeInvalidRequest
	case errors.Is(err, market.ErrPropertyRented),
		errors.Is(err, rental.ErrRentalActive):
		return http.StatusConflict, ErrorCodePropertyRented
	case errors.Is(err, revshare.ErrNoShareholders):
		return http.StatusUnprocessableEntity, ErrorCodeNoShareholders
	case errors.Is(err, disburse.ErrPartialDisbursement):
		return http.StatusBadGateway, ErrorCodePartialPayout
	case errors.Is(err, market.ErrShareholderLookup):
		return http.StatusBadGateway, ErrorCodeLookupFailed
	case errors.Is(err, market.ErrRentalRejected):
		return http.StatusBadGateway, ErrorCodeRentalRejected
	case errors.Is(err, rental.ErrStoreWrite),
		errors.Is(err, rental.ErrStoreRead),
		errors.Is(err, rental.ErrCorruptRecord):
		return http.StatusServiceUnavailable, ErrorCodeStoreFailure
	}
	return http.StatusInternalServerError, ErrorCodeInternal
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, msg string) {
	writeJSON(w, status, ErrorResponse{
		Status:    "error",
		ErrorCode: code,
		Message:   msg,
		RequestID: requestID(r),
	})
}

// handleError writes the response for a failed operation.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	resp := ErrorResponse{
		Status:    "error",
		ErrorCode: code,
		Message:   err.Error(),
		RequestID: requestID(r),
	}

	var partial *disburse.PartialDisbursementError
	if errors.As(err, &partial) {
		resp.Transfers = partial.Succeeded
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", resp.RequestID),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, status, resp)
}
