package errors

// standardized error body returned by every REST handler
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "validation_error")
	Message string `json:"message"`           // user-friendly message
	Details string `json:"details,omitempty"` // optional details (sanitized in production)
}

type ErrorInfo struct {
	Category  string
	Sanitized string
}

// standard error codes
const (
	CodeNotFound        = "not_found"
	CodeValidationError = "validation_error"
	CodeServerError     = "server_error"
	CodeBadRequest      = "bad_request"
	CodeTooManyRequests = "too_many_requests"
	CodeUnavailable     = "service_unavailable"
	CodeUnauthorized    = "unauthorized"
)

// error categories for classification
const (
	CategoryConfiguration = "configuration"
	CategoryProvider      = "provider"
	CategoryData          = "data"
	CategoryStore         = "store"
	CategoryDatabase      = "database"
	CategoryNetwork       = "network"
	CategoryValidation    = "validation"
	CategoryNotFound      = "not_found"
	CategoryTimeout       = "timeout"
	CategoryUnknown       = "unknown"
)
