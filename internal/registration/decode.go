package registration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Decode reads one JSON object from r into a Request. Unknown keys are
// ignored. Anything that is not an object with the expected field types
// yields ErrMalformedRequest.
func Decode(r io.Reader) (Request, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Request{}, fmt.Errorf("%w: body is not a JSON object", ErrMalformedRequest)
	}

	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	return req, nil
}
