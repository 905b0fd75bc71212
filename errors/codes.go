package errors

import "fmt"

// ErrorCode identifies an application error independently of its HTTP status
type ErrorCode int32

const (
	ErrorCode_INTERNAL         ErrorCode = 1
	ErrorCode_INVALID_ARGUMENT ErrorCode = 2
	ErrorCode_NOT_FOUND        ErrorCode = 3
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 4

	// Pendências
	ErrorCode_PENDENCIA_NOT_FOUND       ErrorCode = 100
	ErrorCode_PENDENCIA_MISSING_ID      ErrorCode = 101
	ErrorCode_PENDENCIA_NOTHING_TO_SAVE ErrorCode = 102

	// Profissionais
	ErrorCode_PROFISSIONAL_DEFAULT_MISSING ErrorCode = 200

	// Maintenance
	ErrorCode_MAINTENANCE_UNKNOWN_ACTION ErrorCode = 300

	// Database / integrations
	ErrorCode_DB_CONNECTION_FAILED       ErrorCode = 500
	ErrorCode_DB_QUERY_FAILED            ErrorCode = 501
	ErrorCode_INTEGRATION_UPSTREAM_ERROR ErrorCode = 511
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_INTERNAL:                     "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:             "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                    "NOT_FOUND",
	ErrorCode_INVALID_PAYLOAD:              "INVALID_PAYLOAD",
	ErrorCode_PENDENCIA_NOT_FOUND:          "PENDENCIA_NOT_FOUND",
	ErrorCode_PENDENCIA_MISSING_ID:         "PENDENCIA_MISSING_ID",
	ErrorCode_PENDENCIA_NOTHING_TO_SAVE:    "PENDENCIA_NOTHING_TO_SAVE",
	ErrorCode_PROFISSIONAL_DEFAULT_MISSING: "PROFISSIONAL_DEFAULT_MISSING",
	ErrorCode_MAINTENANCE_UNKNOWN_ACTION:   "MAINTENANCE_UNKNOWN_ACTION",
	ErrorCode_DB_CONNECTION_FAILED:         "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:              "DB_QUERY_FAILED",
	ErrorCode_INTEGRATION_UPSTREAM_ERROR:   "INTEGRATION_UPSTREAM_ERROR",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int32(c))
}

// MarshalText renders the code by name in JSON payloads and logs
func (c ErrorCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
