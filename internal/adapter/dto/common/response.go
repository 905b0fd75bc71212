package common

// ErrorResponse is the failure envelope shared by every endpoint
type ErrorResponse struct {
	OK      bool              `json:"ok"`
	Error   string            `json:"error"`
	Hint    string            `json:"hint,omitempty"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// SuccessResponse is the generic success envelope
type SuccessResponse struct {
	OK   bool        `json:"ok"`
	Data interface{} `json:"data"`
}
