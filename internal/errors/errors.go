package errors

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error Handling Guidelines:
//
// For services and internal packages:
//   - Return wrapped errors: fmt.Errorf("context: %w", errors.ErrStore)-style chains
//     so callers can test the category with errors.Is
//   - Recover ErrProviderUnavailable locally where the routing contract says so
//     (curated semantic path, rag answer path) and log it there
//
// For REST handlers:
//   - Use InternalError(), BadRequest(), etc. They log and respond in one step
//   - Never call both logger.ErrorErr() and InternalError() for the same error

// taxonomy sentinels
var (
	// missing credential or identifier, fatal at startup
	ErrConfiguration = errors.New("configuration error")

	// an embedding, generation or rerank call failed
	ErrProviderUnavailable = errors.New("provider unavailable")

	// malformed curated source
	ErrData = errors.New("data error")

	// cache, document or vector store unreachable or failing
	ErrStore = errors.New("store error")

	// caller input rejected before any work
	ErrValidation = errors.New("validation error")
)

// re-exported so callers importing this package don't need the standard one as well
func Is(err, target error) bool { return errors.Is(err, target) }

// analyzes an error and returns its category and sanitized message
func Classify(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{CategoryUnknown, ""}
	}

	isProduction := os.Getenv("ENVIRONMENT") == "production"

	switch {
	case errors.Is(err, ErrValidation):
		return ErrorInfo{CategoryValidation, ternary(isProduction, "validation failed", err.Error())}
	case errors.Is(err, ErrConfiguration):
		return ErrorInfo{CategoryConfiguration, ternary(isProduction, "service misconfigured", err.Error())}
	case errors.Is(err, ErrProviderUnavailable):
		return ErrorInfo{CategoryProvider, ternary(isProduction, "upstream provider unavailable", err.Error())}
	case errors.Is(err, ErrData):
		return ErrorInfo{CategoryData, ternary(isProduction, "invalid data", err.Error())}
	}

	// pgx errors come before the generic store bucket so they keep the database category
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ErrorInfo{CategoryDatabase, ternary(isProduction, "database operation failed", err.Error())}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorInfo{CategoryNotFound, ternary(isProduction, "resource not found", err.Error())}
	}

	if errors.Is(err, ErrStore) {
		return ErrorInfo{CategoryStore, ternary(isProduction, "storage operation failed", err.Error())}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorInfo{CategoryTimeout, ternary(isProduction, "request timed out", err.Error())}
	}

	if errors.Is(err, context.Canceled) {
		return ErrorInfo{CategoryTimeout, ternary(isProduction, "request canceled", err.Error())}
	}

	// fallback to string matching for unknown error types
	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline") {
		return ErrorInfo{CategoryTimeout, ternary(isProduction, "request timed out", err.Error())}
	}

	if strings.Contains(errMsg, "not found") || strings.Contains(errMsg, "no rows") {
		return ErrorInfo{CategoryNotFound, ternary(isProduction, "resource not found", err.Error())}
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dial") {
		return ErrorInfo{CategoryNetwork, ternary(isProduction, "connection error occurred", err.Error())}
	}

	return ErrorInfo{CategoryUnknown, ternary(isProduction, "an error occurred", err.Error())}
}

func ternary(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}

	return falseVal
}
