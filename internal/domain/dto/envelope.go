package dto

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// Envelope messages used by the HTTP layer.
const (
	MessageFetched          = "fetched"
	MessageFailed           = "failed"
	MessageNotFound         = "not found"
	MessageMethodNotAllowed = "method not allowed"
	MessageInternalError    = "internal server error"
)

// Envelope is the uniform JSON body returned by every API endpoint
// except the plain-text liveness check.
//
// Exactly one of Data or Error is set:
//   - success: {"status":"success","message":"fetched","data":{...}}
//   - fail:    {"status":"fail","message":"failed","error":...}
type Envelope struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"fetched"`
	Data    any    `json:"data,omitempty" swaggertype:"object"`
	Error   any    `json:"error,omitempty" swaggertype:"object"`
}

// detailer is implemented by errors that carry a structured, client-safe detail
// (e.g. validation.Errors exposes the list of failed fields).
type detailer interface {
	Detail() any
}

// Success wraps a handler result.
func Success(message string, data any) Envelope {
	return Envelope{Status: StatusSuccess, Message: message, Data: data}
}

// Fail wraps an error. The error field holds the structured detail when the
// error provides one, its message otherwise, and is omitted for a nil error.
// Stack traces are never included.
func Fail(message string, err error) Envelope {
	env := Envelope{Status: StatusFail, Message: message}
	if err == nil {
		return env
	}
	if d, ok := err.(detailer); ok {
		env.Error = d.Detail()
		return env
	}
	env.Error = err.Error()
	return env
}
