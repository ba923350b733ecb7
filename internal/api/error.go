package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Error kinds, mirroring the server's error envelope
const (
	KindValidation = "validation_failed"
	KindDecoding   = "decoding_failed"
	KindService    = "service_error"
	KindUnknown    = "unknown"
)

// Error is a non-2xx answer from the Pickmart API.
type Error struct {
	Status  int
	Kind    string
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d, %s: %s", e.Status, e.Kind, e.Message)
}

// decodeError turns a failed response into *Error. The server answers with
// {"error": ..., "message": ..., "fields": ...}; anything that does not parse
// still yields a usable Error with the status code.
func decodeError(resp *http.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode, Kind: KindUnknown}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var envelope struct {
		Error   string            `json:"error"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return apiErr
	}

	if envelope.Error != "" {
		apiErr.Kind = envelope.Error
	}
	apiErr.Message = envelope.Message
	apiErr.Fields = envelope.Fields

	return apiErr
}
