package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

func okHandler(ctx context.Context, app photoshop.Application, args json.RawMessage) Result {
	return OK(Fields{"args": string(args)})
}

func TestResultMarshal(t *testing.T) {
	b, err := json.Marshal(OK(Fields{"width": 10, "success": false, "error": "ignored"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"width":10}`, string(b))

	b, err = json.Marshal(Failf("No active document"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"No active document"}`, string(b))

	b, err = json.Marshal(Failf("2 of 3 formats failed").With(Fields{"total_count": 3}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"2 of 3 formats failed","total_count":3}`, string(b))
}

func TestFailAlwaysCarriesError(t *testing.T) {
	assert.NotEmpty(t, Fail(nil).Error)
	assert.NotEmpty(t, Failf("").Error)
	assert.NotEmpty(t, Fail(errors.New("")).Error)

	r := Fail(errors.New("General Photoshop error occurred."))
	assert.False(t, r.Success)
	assert.Equal(t, "General Photoshop error occurred.", r.Error)
	assert.Contains(t, r.Detail, "TestFailAlwaysCarriesError", "pkg/errors stack expected in detail")

	r = Fail(photoshop.ErrNoActiveDocument)
	assert.Equal(t, "No active document", r.Error)
	assert.Empty(t, r.Detail)
}

func TestResultWithDoesNotAlias(t *testing.T) {
	base := OK(Fields{"a": 1})
	merged := base.With(Fields{"b": 2})
	assert.Equal(t, 2, merged.Get("b"))
	assert.Nil(t, base.Get("b"))
}

func TestRegister(t *testing.T) {
	r := NewRegistry("ps_")

	require.NoError(t, r.Register(Tool{Name: "zeta", Handler: okHandler}))
	require.NoError(t, r.Register(Tool{Name: "alpha", Handler: okHandler, InputSchema: object(map[string]any{
		"n": integer("n", nil),
	}, "n")}))

	assert.Error(t, r.Register(Tool{Name: "", Handler: okHandler}))
	assert.Error(t, r.Register(Tool{Name: "nohandler"}))
	assert.Error(t, r.Register(Tool{Name: "zeta", Handler: okHandler}), "duplicate")
	assert.Error(t, r.Register(Tool{Name: "broken", Handler: okHandler, InputSchema: map[string]any{"type": 5}}))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "ps_alpha", list[0].Name)
	assert.Equal(t, "ps_zeta", list[1].Name)

	_, ok := r.Lookup("zeta")
	assert.False(t, ok, "lookup uses the prefixed name")
	_, ok = r.Lookup("ps_zeta")
	assert.True(t, ok)
}

func TestCallValidatesArguments(t *testing.T) {
	r := NewRegistry("")
	require.NoError(t, r.Register(Tool{Name: "pick", Handler: okHandler, InputSchema: object(map[string]any{
		"n":    intRange("n", nil, 1, 5),
		"kind": enum("kind", "a", []string{"a", "b"}),
	}, "n")}))

	ctx := context.Background()
	tests := []struct {
		name string
		args string
		ok   bool
	}{
		{"valid", `{"n": 3}`, true},
		{"valid enum", `{"n": 3, "kind": "b"}`, true},
		{"missing required", `{}`, false},
		{"null args", `null`, false},
		{"out of range", `{"n": 9}`, false},
		{"wrong type", `{"n": "three"}`, false},
		{"bad enum", `{"n": 1, "kind": "c"}`, false},
		{"unknown property", `{"n": 1, "extra": true}`, false},
		{"not json", `{`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Call(ctx, nil, "pick", json.RawMessage(tt.args))
			assert.Equal(t, tt.ok, res.Success, res.Error)
			if !tt.ok {
				assert.Contains(t, res.Error, "invalid arguments")
			}
		})
	}
}

func TestCallEmptyArgsBecomeObject(t *testing.T) {
	r := NewRegistry("")
	require.NoError(t, r.Register(Tool{Name: "noop", Handler: okHandler}))
	res := r.Call(context.Background(), nil, "noop", nil)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "{}", res.Get("args"))
}

func TestCallUnknownTool(t *testing.T) {
	res := NewRegistry("").Call(context.Background(), nil, "missing", nil)
	assert.False(t, res.Success)
	assert.Equal(t, "unknown tool: missing", res.Error)
}

func TestCallRecoversPanics(t *testing.T) {
	r := NewRegistry("")
	require.NoError(t, r.Register(Tool{Name: "boom", Handler: func(context.Context, photoshop.Application, json.RawMessage) Result {
		var m map[string]int
		m["x"] = 1
		return OK(nil)
	}}))

	res := r.Call(context.Background(), nil, "boom", nil)
	assert.False(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Error, "boom panicked:"), res.Error)
	assert.Contains(t, res.Detail, "goroutine")

	// The registry stays usable after a panic.
	res = r.Call(context.Background(), nil, "boom", nil)
	assert.False(t, res.Success)
}
