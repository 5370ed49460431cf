package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// The prefix before the underscore names the module that owns the code.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeStorageError       ErrorCode = "COMMON_015"
	ErrCodeMessagingError     ErrorCode = "COMMON_016"
	ErrCodeMethodNotAllowed   ErrorCode = "COMMON_017"
)

// Short aliases used at most call sites.
const (
	CodeUnknown      ErrorCode = "UNKNOWN"
	CodeOK           ErrorCode = "OK"
	CodeInternal               = ErrCodeInternal
	CodeInvalidParam           = ErrCodeBadRequest
	CodeUnauthorized           = ErrCodeUnauthorized
	CodeForbidden              = ErrCodeForbidden
	CodeNotFound               = ErrCodeNotFound
	CodeConflict               = ErrCodeConflict
	CodeRateLimit              = ErrCodeTooManyRequests
	CodeValidation             = ErrCodeValidation
	CodeDatabaseError          = ErrCodeDatabaseError
	CodeCacheError             = ErrCodeCacheError
	CodeStorageError           = ErrCodeStorageError
	CodeMessagingError         = ErrCodeMessagingError
)

// Auth Error Codes
const (
	ErrCodeTokenMissing ErrorCode = "AUTH_001"
	ErrCodeTokenInvalid ErrorCode = "AUTH_002"
	ErrCodeRoleDenied   ErrorCode = "AUTH_003"
	ErrCodeTokenExpired ErrorCode = "AUTH_004"
)

// Profile Module Error Codes
const (
	ErrCodeProfileNotFound ErrorCode = "PRF_001"
	ErrCodeRoleInvalid     ErrorCode = "PRF_002"
)

// Farm Module Error Codes
const (
	ErrCodeFarmNotFound      ErrorCode = "FARM_001"
	ErrCodeFarmInvalid       ErrorCode = "FARM_002"
	ErrCodeFarmAlreadyExists ErrorCode = "FARM_003"
)

// Assessment Module Error Codes
const (
	ErrCodeAssessmentNotFound   ErrorCode = "ASM_001"
	ErrCodeAssessmentIncomplete ErrorCode = "ASM_002"
	ErrCodeCatalogInvalid       ErrorCode = "ASM_003"
	ErrCodeReportExportFailed   ErrorCode = "ASM_004"
)

// Training Module Error Codes
const (
	ErrCodeModuleNotFound   ErrorCode = "TRN_001"
	ErrCodeModuleInactive   ErrorCode = "TRN_002"
	ErrCodeProgressNotFound ErrorCode = "TRN_003"
	ErrCodeModuleCompleted  ErrorCode = "TRN_004"
)

// Alert Module Error Codes
const (
	ErrCodeAlertNotFound ErrorCode = "ALR_001"
	ErrCodeAlertInvalid  ErrorCode = "ALR_002"
)

// Compliance Module Error Codes
const (
	ErrCodeComplianceNotFound    ErrorCode = "CMP_001"
	ErrCodeCertificateNotFound   ErrorCode = "CMP_002"
	ErrCodeCertificateTooLarge   ErrorCode = "CMP_003"
	ErrCodeComplianceDateInvalid ErrorCode = "CMP_004"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeMessagingError:     http.StatusInternalServerError,
	ErrCodeMethodNotAllowed:   http.StatusMethodNotAllowed,

	ErrCodeTokenMissing: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeRoleDenied:   http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,

	ErrCodeProfileNotFound: http.StatusNotFound,
	ErrCodeRoleInvalid:     http.StatusBadRequest,

	ErrCodeFarmNotFound:      http.StatusNotFound,
	ErrCodeFarmInvalid:       http.StatusBadRequest,
	ErrCodeFarmAlreadyExists: http.StatusConflict,

	ErrCodeAssessmentNotFound:   http.StatusNotFound,
	ErrCodeAssessmentIncomplete: http.StatusUnprocessableEntity,
	ErrCodeCatalogInvalid:       http.StatusInternalServerError,
	ErrCodeReportExportFailed:   http.StatusInternalServerError,

	ErrCodeModuleNotFound:   http.StatusNotFound,
	ErrCodeModuleInactive:   http.StatusConflict,
	ErrCodeProgressNotFound: http.StatusNotFound,
	ErrCodeModuleCompleted:  http.StatusConflict,

	ErrCodeAlertNotFound: http.StatusNotFound,
	ErrCodeAlertInvalid:  http.StatusBadRequest,

	ErrCodeComplianceNotFound:    http.StatusNotFound,
	ErrCodeCertificateNotFound:   http.StatusNotFound,
	ErrCodeCertificateTooLarge:   http.StatusRequestEntityTooLarge,
	ErrCodeComplianceDateInvalid: http.StatusBadRequest,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeMessagingError:     "messaging error",
	ErrCodeMethodNotAllowed:   "method not allowed",

	ErrCodeTokenMissing: "authentication required",
	ErrCodeTokenInvalid: "invalid access token",
	ErrCodeRoleDenied:   "insufficient role",
	ErrCodeTokenExpired: "access token expired",

	ErrCodeProfileNotFound: "profile not found",
	ErrCodeRoleInvalid:     "invalid role",

	ErrCodeFarmNotFound:      "farm not found",
	ErrCodeFarmInvalid:       "invalid farm",
	ErrCodeFarmAlreadyExists: "farm already exists",

	ErrCodeAssessmentNotFound:   "assessment not found",
	ErrCodeAssessmentIncomplete: "assessment is incomplete",
	ErrCodeCatalogInvalid:       "assessment catalog is invalid",
	ErrCodeReportExportFailed:   "failed to export assessment report",

	ErrCodeModuleNotFound:   "training module not found",
	ErrCodeModuleInactive:   "training module is inactive",
	ErrCodeProgressNotFound: "training progress not found",
	ErrCodeModuleCompleted:  "training module already completed",

	ErrCodeAlertNotFound: "alert not found",
	ErrCodeAlertInvalid:  "invalid alert",

	ErrCodeComplianceNotFound:    "compliance record not found",
	ErrCodeCertificateNotFound:   "certificate not found",
	ErrCodeCertificateTooLarge:   "certificate exceeds size limit",
	ErrCodeComplianceDateInvalid: "invalid compliance dates",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
