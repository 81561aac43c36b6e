package bridge

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

//go:embed scripts/*.jsx
var scriptFS embed.FS

var scripts = template.Must(template.New("").Funcs(template.FuncMap{
	"json": jsLiteral,
}).ParseFS(scriptFS, "scripts/*.jsx"))

// jsLiteral renders v as a JSON literal, which is valid ExtendScript.
// encoding/json escapes U+2028 and U+2029, so string values cannot break
// out of their literal.
func jsLiteral(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// render produces the complete program for one operation: the named body
// inside the wrapper that switches ruler units to pixels, catches errors
// and serializes the body's return value as JSON.
func render(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := scripts.ExecuteTemplate(&body, name+".jsx", data); err != nil {
		return "", errors.Wrapf(err, "rendering %s script", name)
	}
	var out bytes.Buffer
	if err := scripts.ExecuteTemplate(&out, "main.jsx", struct{ Body string }{body.String()}); err != nil {
		return "", errors.Wrap(err, "rendering script wrapper")
	}
	return out.String(), nil
}

const errorPrefix = "Error:"

// call renders and runs one operation and decodes its JSON result into
// out. A nil out discards the result.
func (a *App) call(ctx context.Context, name string, data any, out any) error {
	script, err := render(name, data)
	if err != nil {
		return err
	}
	raw, err := a.runner.Run(ctx, script)
	if err != nil {
		return err
	}
	if strings.HasPrefix(raw, errorPrefix) {
		return errors.New(strings.TrimSpace(strings.TrimPrefix(raw, errorPrefix)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return errors.Wrapf(err, "decoding %s result %q", name, truncate(raw, 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
