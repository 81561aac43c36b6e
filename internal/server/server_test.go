package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goa.design/clue/log"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop/offline"
	"github.com/ironsheep/photoshop-mcp/internal/tools"
)

// connect starts a server on the offline backend and returns a client
// session connected to it in memory.
func connect(t *testing.T, opts tools.Options) *mcp.ClientSession {
	t.Helper()
	ctx := log.Context(context.Background(), log.WithOutput(&bytes.Buffer{}))

	reg := tools.NewRegistry("photoshop_")
	opts.Backend = "offline"
	require.NoError(t, tools.RegisterAll(reg, opts))
	srv := New(ctx, "test", reg, offline.New(nil))

	st, ct := mcp.NewInMemoryTransports()
	ss, err := srv.MCP().Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (*mcp.CallToolResult, map[string]any) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "first content is %T", res.Content[0])
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return res, out
}

func TestListTools(t *testing.T) {
	cs := connect(t, tools.Options{})
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	byName := map[string]*mcp.Tool{}
	for _, tool := range res.Tools {
		byName[tool.Name] = tool
	}
	require.Contains(t, byName, "photoshop_resize_image")
	require.Contains(t, byName, "photoshop_get_session_info")
	assert.NotContains(t, byName, "photoshop_run_script")

	info := byName["photoshop_get_session_info"]
	require.NotNil(t, info.Annotations)
	assert.True(t, info.Annotations.ReadOnlyHint)

	crop := byName["photoshop_crop_image"]
	require.NotNil(t, crop.Annotations)
	require.NotNil(t, crop.Annotations.DestructiveHint)
	assert.True(t, *crop.Annotations.DestructiveHint)

	schema, err := json.Marshal(crop.InputSchema)
	require.NoError(t, err)
	assert.Contains(t, string(schema), `"required":["left","top","right","bottom"]`)
}

func TestRunScriptIsOptIn(t *testing.T) {
	cs := connect(t, tools.Options{AllowScripts: true})
	res, out := call(t, cs, "photoshop_run_script", map[string]any{"script": "1"})
	assert.True(t, res.IsError)
	assert.Equal(t, false, out["success"])
}

func TestCallTool(t *testing.T) {
	cs := connect(t, tools.Options{})

	res, out := call(t, cs, "photoshop_get_active_document_info", nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "No active document", out["error"])

	res, out = call(t, cs, "photoshop_create_document", map[string]any{"width": 64, "height": 32, "name": "Card"})
	assert.False(t, res.IsError)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Card", out["document_name"])

	structured, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	assert.JSONEq(t, res.Content[0].(*mcp.TextContent).Text, string(structured))

	res, out = call(t, cs, "photoshop_resize_image", map[string]any{"width": "wide"})
	assert.True(t, res.IsError)
	assert.Contains(t, out["error"], "invalid arguments")
}

func TestPreviewCarriesImage(t *testing.T) {
	cs := connect(t, tools.Options{})
	call(t, cs, "photoshop_create_document", map[string]any{"width": 300, "height": 150})

	res, out := call(t, cs, "photoshop_get_document_preview", map[string]any{"max_size": 60})
	require.False(t, res.IsError, "%v", out["error"])
	require.Len(t, res.Content, 2)
	img, ok := res.Content[1].(*mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, "image/png", img.MIMEType)

	decoded, err := png.Decode(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.Equal(t, 60, decoded.Bounds().Dx())
	assert.Equal(t, 30, decoded.Bounds().Dy())
}

func TestResources(t *testing.T) {
	cs := connect(t, tools.Options{})
	ctx := context.Background()

	list, err := cs.ListResources(ctx, nil)
	require.NoError(t, err)
	var uris []string
	for _, r := range list.Resources {
		uris = append(uris, r.URI)
	}
	assert.ElementsMatch(t, []string{SessionURI, ActiveDocumentURI}, uris)

	read := func(uri string) map[string]any {
		res, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: uri})
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		assert.Equal(t, "application/json", res.Contents[0].MIMEType)
		var out map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &out))
		return out
	}

	session := read(SessionURI)
	assert.Equal(t, true, session["success"])
	assert.Equal(t, false, session["has_active_document"])

	doc := read(ActiveDocumentURI)
	assert.Equal(t, false, doc["success"])

	call(t, cs, "photoshop_create_document", map[string]any{"name": "Poster"})
	doc = read(ActiveDocumentURI)
	assert.Equal(t, true, doc["success"])
	assert.Equal(t, "Poster", doc["name"])
}
