package tools

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Fields are the outcome values of a tool call.
type Fields map[string]any

// Result is the record every tool returns. It marshals flat:
//
//	{"success": true, "width": 800, ...}
//	{"success": false, "error": "No active document"}
//
// A failed Result always carries a non-empty Error. Build results with OK,
// Fail and Failf rather than by hand.
type Result struct {
	Success bool
	Error   string
	// Detail is extra diagnostic text for failures, such as a stack trace.
	Detail string
	Fields  Fields
}

// OK returns a successful result carrying f.
func OK(f Fields) Result {
	return Result{Success: true, Fields: f}
}

// Fail converts err into a failed result. Detail holds the %+v rendering of
// err when it adds information, such as the stack of a pkg/errors value.
func Fail(err error) Result {
	if err == nil {
		return Failf("unknown error")
	}
	r := Result{Error: err.Error()}
	if detail := fmt.Sprintf("%+v", err); detail != r.Error {
		r.Detail = detail
	}
	if r.Error == "" {
		r.Error = "unknown error"
	}
	return r
}

// Failf returns a failed result with a formatted message.
func Failf(format string, args ...any) Result {
	msg := fmt.Sprintf(format, args...)
	if msg == "" {
		msg = "unknown error"
	}
	return Result{Error: msg}
}

// With returns a copy of r with f merged into its fields.
func (r Result) With(f Fields) Result {
	merged := make(Fields, len(r.Fields)+len(f))
	maps.Copy(merged, r.Fields)
	maps.Copy(merged, f)
	r.Fields = merged
	return r
}

// Get returns the named field.
func (r Result) Get(key string) any {
	return r.Fields[key]
}

// MarshalJSON flattens the result into one object. success, error and
// detailed_error take precedence over fields of the same name.
func (r Result) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Fields)+3)
	maps.Copy(m, r.Fields)
	m["success"] = r.Success
	if !r.Success {
		m["error"] = r.Error
		if r.Detail != "" {
			m["detailed_error"] = r.Detail
		} else {
			delete(m, "detailed_error")
		}
	} else {
		delete(m, "error")
		delete(m, "detailed_error")
	}
	return json.Marshal(m)
}
