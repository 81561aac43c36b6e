// Package tools implements the Photoshop MCP tools.
//
// A Registry maps tool names to handlers. Every handler receives the
// photoshop.Application explicitly, validates its preconditions (most
// tools need an active document), calls the adapter and converts any
// failure into a Result. Nothing a handler does can escape as an error or
// a panic.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"goa.design/clue/log"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
	"github.com/ironsheep/photoshop-mcp/internal/telemetry"
)

// Handler runs one tool call against app. args has already been validated
// against the tool's input schema.
type Handler func(ctx context.Context, app photoshop.Application, args json.RawMessage) Result

// Tool describes one registered tool.
type Tool struct {
	// Name is the unprefixed tool name, e.g. "resize_image".
	Name        string
	Description string
	InputSchema map[string]any

	// ReadOnly marks tools that never modify documents or files.
	ReadOnly bool
	// Destructive marks tools that may discard document content.
	Destructive bool

	Handler Handler

	schema *jsonschema.Schema
}

// Registry holds the registered tools and runs calls one at a time.
type Registry struct {
	prefix   string
	recorder *telemetry.ToolRecorder

	mu    sync.RWMutex
	tools map[string]*Tool

	// callMu serializes calls; the native session is single-threaded.
	callMu sync.Mutex
}

// NewRegistry returns an empty registry that prefixes every tool name with
// prefix.
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix:   prefix,
		recorder: telemetry.NewToolRecorder(),
		tools:    make(map[string]*Tool),
	}
}

// Prefix returns the tool name prefix.
func (r *Registry) Prefix() string { return r.prefix }

// Register adds t under prefix+t.Name. It fails for empty or duplicate
// names, a missing handler, or an input schema that does not compile.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %s has no handler", t.Name)
	}
	if t.InputSchema == nil {
		t.InputSchema = noArgs
	}
	name := r.prefix + t.Name

	schema, err := compileSchema(name, t.InputSchema)
	if err != nil {
		return fmt.Errorf("tool %s: %w", name, err)
	}
	t.schema = schema
	t.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.tools[name] = &t
	return nil
}

// Lookup returns the tool registered under the full (prefixed) name.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns all tools sorted by name.
func (r *Registry) List() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*Tool, 0, len(r.tools))
	for _, t := range r.tools {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Call runs the named tool. Unknown tools, invalid arguments, handler
// failures and panics all come back as failed Results.
func (r *Registry) Call(ctx context.Context, app photoshop.Application, name string, args json.RawMessage) (res Result) {
	t, ok := r.Lookup(name)
	if !ok {
		return Failf("unknown tool: %s", name)
	}

	callID := uuid.NewString()
	ctx = log.With(ctx, log.KV{K: "tool", V: name}, log.KV{K: "call_id", V: callID})
	ctx, call := r.recorder.Start(ctx, name, callID)

	r.callMu.Lock()
	defer r.callMu.Unlock()

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res = Result{
				Error:  fmt.Sprintf("%s panicked: %v", name, p),
				Detail: string(debug.Stack()),
			}
		}
		call.End(ctx, res.Success, res.Error)
		elapsed := log.KV{K: "duration_ms", V: time.Since(start).Milliseconds()}
		if res.Success {
			log.Info(ctx, log.KV{K: "msg", V: "tool call succeeded"}, elapsed)
		} else {
			log.Warn(ctx, log.KV{K: "msg", V: "tool call failed"}, log.KV{K: "error", V: res.Error}, elapsed)
			if res.Detail != "" {
				log.Debug(ctx, log.KV{K: "detailed_error", V: res.Detail})
			}
		}
	}()

	payload, err := t.validate(args)
	if err != nil {
		return Fail(err)
	}
	log.Debug(ctx, log.KV{K: "msg", V: "calling tool"}, log.KV{K: "args", V: string(payload)})
	return t.Handler(ctx, app, payload)
}

// compileSchema compiles a tool's input schema. The schema is round-tripped
// through JSON so Go slices and ints become the generic JSON values the
// compiler expects.
func compileSchema(name string, schema map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	url := name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// validate checks args against the input schema and returns the payload to
// hand to the handler. Missing or null arguments are treated as {}.
func (t *Tool) validate(args json.RawMessage) (json.RawMessage, error) {
	if len(bytes.TrimSpace(args)) == 0 || bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		args = json.RawMessage("{}")
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(args))
	if err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := t.schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return args, nil
}
