// Package onebot holds the OneBot v11 wire types exchanged with the remote
// controller: action requests and responses, message segments, and events.
package onebot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Retcodes carried in ActionResponse.Retcode. The numeric values are part of
// the wire contract and must not change.
const (
	RetcodeOK          = 0
	RetcodeBadRequest  = 1400
	RetcodeSendFailed  = 1401
	RetcodeInternal    = 1403
	RetcodeUnsupported = 1404
)

// Response status values. The status is always derived from the retcode.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// ErrMalformedFrame is returned when an inbound frame cannot be decoded.
var ErrMalformedFrame = errors.New("malformed frame")

var emptyEcho = json.RawMessage(`""`)

// ActionRequest is one inbound action frame.
type ActionRequest struct {
	Action string          `json:"action"`
	Params Params          `json:"params"`
	Echo   json.RawMessage `json:"echo,omitempty"`
}

// ActionResponse is the envelope written back for every ActionRequest.
type ActionResponse struct {
	Status  string          `json:"status"`
	Retcode int             `json:"retcode"`
	Data    any             `json:"data"`
	Message string          `json:"message"`
	Wording string          `json:"wording"`
	Echo    json.RawMessage `json:"echo"`
}

// OK reports whether the response carries a success retcode.
func (r ActionResponse) OK() bool {
	return r.Status == StatusOK
}

// Result is the partial response produced by an action handler. Handlers
// never choose the status; NewResponse derives it from Retcode.
type Result struct {
	Retcode int
	Data    any
	Message string
	Wording string
}

// Failed builds a failed Result with the given retcode and message.
func Failed(retcode int, format string, args ...any) Result {
	return Result{Retcode: retcode, Message: fmt.Sprintf(format, args...)}
}

// NewResponse wraps a handler result and the request echo into an envelope.
func NewResponse(r Result, echo json.RawMessage) ActionResponse {
	status := StatusOK
	if r.Retcode != RetcodeOK {
		status = StatusFailed
	}
	if len(echo) == 0 {
		echo = emptyEcho
	}
	return ActionResponse{
		Status:  status,
		Retcode: r.Retcode,
		Data:    r.Data,
		Message: r.Message,
		Wording: r.Wording,
		Echo:    echo,
	}
}

// DecodeRequest parses an inbound frame. When the frame is a JSON object but
// one of its fields has the wrong shape, the returned request still carries
// the echo so the caller can answer with a failed response.
func DecodeRequest(frame []byte) (ActionRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(frame, &raw); err != nil {
		return ActionRequest{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	req := ActionRequest{Echo: raw["echo"]}
	if v, ok := raw["action"]; ok {
		if err := json.Unmarshal(v, &req.Action); err != nil {
			return req, fmt.Errorf("%w: action: %v", ErrMalformedFrame, err)
		}
	}
	if v, ok := raw["params"]; ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(v))
		dec.UseNumber()
		if err := dec.Decode(&req.Params); err != nil {
			return req, fmt.Errorf("%w: params: %v", ErrMalformedFrame, err)
		}
	}
	if req.Params == nil {
		req.Params = Params{}
	}
	return req, nil
}
