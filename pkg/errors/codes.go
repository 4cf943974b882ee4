package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeDatabaseError      ErrorCode = "COMMON_008"
	ErrCodeCacheError         ErrorCode = "COMMON_009"
	ErrCodeStorageError       ErrorCode = "COMMON_010"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_011"
)

// Corpus and engine error codes.
//
// The CORPUS_* family covers load failures: fatal to the load operation,
// surfaced to the caller, no partial state retained. ENGINE_* covers
// lifecycle violations of the recommendation engine (query before load);
// those are fatal to the offending call only and never corrupt loaded state.
const (
	ErrCodeCorpusEmpty      ErrorCode = "CORPUS_001"
	ErrCodeCorpusMalformed  ErrorCode = "CORPUS_002"
	ErrCodeSnapshotCorrupt  ErrorCode = "CORPUS_003"
	ErrCodeSnapshotVersion  ErrorCode = "CORPUS_004"
	ErrCodeSnapshotNotFound ErrorCode = "CORPUS_005"

	ErrCodeEngineNotLoaded ErrorCode = "ENGINE_001"
)

// Sentinel codes used when no classification is available.
const (
	CodeUnknown ErrorCode = "UNKNOWN"
	CodeOK      ErrorCode = "OK"
)

// HTTPStatus maps an ErrorCode to the HTTP status code the API layer should
// return. Codes without an explicit mapping fall back to 500.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeSnapshotNotFound:
		return http.StatusNotFound
	case ErrCodeConflict, ErrCodeEngineNotLoaded:
		return http.StatusConflict
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
