package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"goa.design/clue/log"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
	"github.com/ironsheep/photoshop-mcp/internal/tools"
)

// Name is the MCP implementation name.
const Name = "photoshop-mcp"

// Resource URIs.
const (
	SessionURI        = "photoshop://session"
	ActiveDocumentURI = "photoshop://document/active"
)

const jsonMIME = "application/json"

// Server serves a tool registry over MCP.
type Server struct {
	registry *tools.Registry
	app      photoshop.Application
	mcp      *mcp.Server

	// logCtx carries the logger configured by the caller of New. SDK
	// handler contexts do not inherit it.
	logCtx context.Context
}

// New returns a server that runs the tools in reg against app. The logger
// in ctx is attached to every request.
func New(ctx context.Context, version string, reg *tools.Registry, app photoshop.Application) *Server {
	s := &Server{
		registry: reg,
		app:      app,
		mcp:      mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil),
		logCtx:   ctx,
	}
	for _, t := range reg.List() {
		s.mcp.AddTool(&mcp.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
			Annotations: annotations(t),
		}, s.toolHandler(t.Name))
	}
	s.addResource(SessionURI, "session", "Photoshop session: version, open documents and the active document.",
		reg.Prefix()+"get_session_info")
	s.addResource(ActiveDocumentURI, "active-document", "Properties and layers of the active document.",
		reg.Prefix()+"get_active_document_info")
	return s
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server { return s.mcp }

// Run serves over stdin and stdout until the client disconnects or ctx is
// canceled.
func (s *Server) Run(ctx context.Context) error {
	log.Info(ctx, log.KV{K: "msg", V: "serving MCP over stdio"}, log.KV{K: "tools", V: len(s.registry.List())})
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

func annotations(t *tools.Tool) *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:    t.ReadOnly,
		IdempotentHint:  t.ReadOnly,
		DestructiveHint: boolPtr(t.Destructive),
		OpenWorldHint:   boolPtr(false),
	}
}

func (s *Server) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = log.WithContext(ctx, s.logCtx)
		res := s.registry.Call(ctx, s.app, name, req.Params.Arguments)
		return toolResult(ctx, res)
	}
}

// toolResult converts a tools.Result into the MCP result sent to the
// client.
func toolResult(ctx context.Context, res tools.Result) (*mcp.CallToolResult, error) {
	text, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	out := &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(text)}},
		StructuredContent: json.RawMessage(text),
		IsError:           !res.Success,
	}
	if img, ok := imageContent(ctx, res); ok {
		out.Content = append(out.Content, img)
	}
	return out, nil
}

// imageContent decodes the image_base64 field of a successful result.
func imageContent(ctx context.Context, res tools.Result) (*mcp.ImageContent, bool) {
	if !res.Success {
		return nil, false
	}
	encoded, ok := res.Get("image_base64").(string)
	if !ok || encoded == "" {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		log.Warn(ctx, log.KV{K: "msg", V: "invalid image_base64 in result"}, log.KV{K: "error", V: err.Error()})
		return nil, false
	}
	mime, _ := res.Get("mime_type").(string)
	if mime == "" {
		mime = "image/png"
	}
	return &mcp.ImageContent{Data: data, MIMEType: mime}, true
}

// addResource exposes the result of a no-argument tool as a resource.
// Nothing is added when the tool is not registered.
func (s *Server) addResource(uri, name, description, tool string) {
	if _, ok := s.registry.Lookup(tool); !ok {
		return
	}
	s.mcp.AddResource(&mcp.Resource{
		URI:         uri,
		Name:        name,
		Description: description,
		MIMEType:    jsonMIME,
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		ctx = log.WithContext(ctx, s.logCtx)
		res := s.registry.Call(ctx, s.app, tool, nil)
		text, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", uri, err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: jsonMIME, Text: string(text)}},
		}, nil
	})
}
