package tool

import (
	"encoding/json"
	"fmt"
)

// Result is the normalized outcome of a tool invocation
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Ok wraps a successful payload
func Ok(data interface{}) Result {
	return Result{Success: true, Data: data}
}

// Fail builds a failed result with a readable message
func Fail(format string, args ...interface{}) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// JSON serializes the result. It never fails: unencodable payloads degrade to their %v form.
func (r Result) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"success":%t,"data":%q,"error":%q}`, r.Success, fmt.Sprintf("%v", r.Data), r.Error)
	}
	return string(data)
}
