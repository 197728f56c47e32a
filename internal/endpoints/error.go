package endpoints

import (
	"errors"

	"influencer-app/internal/domain"
)

const (
	API_SUCCESS      = iota + 303000 // 303000
	API_FAILURE                      // 303001 - Generic API failure
	API_UNAUTHORIZED                 // 303002 - Authentication/Authorization failure
)

const (
	NO_DATA_AVAILABLE    = iota + 101 // 101 - No rows found for the given criteria
	INVALID_REQUEST_BODY              // 102 - Error parsing request body
	INVALID_PARAMETERS                // 103 - Invalid URL or body parameters
	INVALID_TIME_RANGE                // 104 - Start time is after end time
	REQUEST_CANCELLED                 // 105 - Request was cancelled by client or server timeout
	SOURCE_UNAVAILABLE                // 106 - Upstream metric source failed
	INFLUENCER_NOT_FOUND              // 107 - Handle does not exist upstream
	SOURCE_TIMEOUT                    // 108 - Upstream metric source timed out
	PARTIAL_WRITE                     // 109 - Some snapshot rows stored before a write failed
	STORE_FAILURE                     // 110 - Persistence-layer failure
	INVALID_CREDENTIALS               // 111 - Username/password rejected
)

var (
	ErrNoDataAvailable    = errors.New("no data available for the specified criteria")
	ErrInvalidRequestBody = errors.New("invalid request body format or missing fields")
	ErrInvalidParameters  = errors.New("invalid request parameters")
	ErrInvalidTimeRange   = errors.New("start timestamp cannot be after end timestamp")
	ErrRequestCancelled   = errors.New("request cancelled by client or server timeout")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

func GetErrorCode(err error) int {
	if err == nil {
		return API_SUCCESS
	}

	var storeErr *domain.StoreError
	var partialErr *domain.PartialWriteError

	switch {
	case errors.Is(err, ErrNoDataAvailable):
		return NO_DATA_AVAILABLE
	case errors.Is(err, ErrInvalidRequestBody):
		return INVALID_REQUEST_BODY
	case errors.Is(err, ErrInvalidParameters), errors.Is(err, domain.ErrInvalidInput):
		return INVALID_PARAMETERS
	case errors.Is(err, ErrInvalidTimeRange):
		return INVALID_TIME_RANGE
	case errors.Is(err, ErrRequestCancelled):
		return REQUEST_CANCELLED
	case errors.Is(err, domain.ErrNotFound):
		return INFLUENCER_NOT_FOUND
	case errors.Is(err, domain.ErrTimeout):
		return SOURCE_TIMEOUT
	case errors.Is(err, domain.ErrSourceUnavailable):
		return SOURCE_UNAVAILABLE
	case errors.Is(err, ErrInvalidCredentials):
		return INVALID_CREDENTIALS
	case errors.As(err, &partialErr):
		return PARTIAL_WRITE
	case errors.As(err, &storeErr):
		return STORE_FAILURE
	default:
		return API_FAILURE // Default for any unhandled error
	}
}
