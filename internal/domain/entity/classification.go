package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// ErrSuperseded marks a request cancelled by a newer selection
var ErrSuperseded = errors.New("superseded by a newer selection")

// ResultKind classifies how one classification request ended
type ResultKind string

const (
	ResultSuccess          ResultKind = "success"
	ResultApplicationError ResultKind = "application_error"
	ResultTransportError   ResultKind = "transport_error"
	ResultNoPrediction     ResultKind = "no_prediction"
	ResultSuperseded       ResultKind = "superseded"
)

// State is the per-request state machine: Idle -> Pending -> Success|Failure
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
	StateSuccess State = "success"
	StateFailure State = "failure"
)

// State returns the terminal state a result kind lands in
func (k ResultKind) State() State {
	if k == ResultSuccess {
		return StateSuccess
	}
	return StateFailure
}

// Result is the two-variant outcome of a request: Ok(label) or Err(message).
type Result struct {
	Kind    ResultKind `json:"kind"`
	Label   string     `json:"label,omitempty"`
	Message string     `json:"message,omitempty"`

	// Err holds diagnostic detail for failures. It is logged, never rendered.
	Err error `json:"-"`
}

// Ok creates a successful result
func Ok(label string) Result {
	return Result{Kind: ResultSuccess, Label: label}
}

// Fail creates a failed result
func Fail(kind ResultKind, message string, err error) Result {
	return Result{Kind: kind, Message: message, Err: err}
}

// IsOk reports whether the result carries a label
func (r Result) IsOk() bool {
	return r.Kind == ResultSuccess
}

// ClassificationResponse is the decoded body of the classification service.
// Only the two recognised fields are read.
type ClassificationResponse struct {
	PredictedClass json.RawMessage `json:"predicted_class,omitempty"`
	Error          json.RawMessage `json:"error,omitempty"`
}

// Result interprets the response. A truthy error wins over a label;
// a body with neither yields ResultNoPrediction.
func (r *ClassificationResponse) Result() Result {
	if msg, ok := truthyText(r.Error); ok {
		return Fail(ResultApplicationError, msg, nil)
	}
	if label, ok := truthyText(r.PredictedClass); ok {
		return Ok(label)
	}
	return Fail(ResultNoPrediction, "", nil)
}

// truthyText returns the textual form of a JSON value and whether it is truthy
// (not null, false, 0 or "").
func truthyText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return "", false
		}
		return s, true
	case 'n', 'f':
		return "", false
	case 't', '{', '[':
		return string(raw), true
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil || f == 0 {
			return "", false
		}
		return string(raw), true
	}
}
