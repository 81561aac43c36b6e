package bridge

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Runner executes one ExtendScript program in the host application and
// returns what the program's last expression evaluated to.
type Runner interface {
	Run(ctx context.Context, script string) (string, error)
}

// Script hosts understood by ExecRunner.
const (
	HostOSAScript = "osascript"
	HostCScript   = "cscript"
)

// Default application identifiers per host.
const (
	DefaultBundleID = "com.adobe.Photoshop"
	DefaultProgID   = "Photoshop.Application"
)

// DefaultHost returns the script host for the running OS, or "" when the
// OS has no Photoshop automation bridge.
func DefaultHost() string {
	switch runtime.GOOS {
	case "darwin":
		return HostOSAScript
	case "windows":
		return HostCScript
	}
	return ""
}

// ExecRunner drives Photoshop through the OS scripting bridge: AppleScript
// "do javascript" on macOS, or a COM call from a generated VBScript on
// Windows. Scripts are passed as files, so their size is not limited by the
// command line.
type ExecRunner struct {
	// Host is HostOSAScript or HostCScript. Empty selects DefaultHost.
	Host string
	// Application is the macOS bundle id or the Windows COM ProgID.
	// Empty selects the default for the host.
	Application string
	// Timeout bounds each run. Zero means no limit beyond ctx.
	Timeout time.Duration
}

func (r *ExecRunner) host() (string, error) {
	h := r.Host
	if h == "" {
		h = DefaultHost()
	}
	switch h {
	case HostOSAScript, HostCScript:
		return h, nil
	case "":
		return "", fmt.Errorf("no Photoshop scripting host on %s", runtime.GOOS)
	}
	return "", fmt.Errorf("unknown script host %q", h)
}

func (r *ExecRunner) Run(ctx context.Context, script string) (string, error) {
	host, err := r.host()
	if err != nil {
		return "", err
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	dir, err := os.MkdirTemp("", "photoshop-mcp-")
	if err != nil {
		return "", errors.Wrap(err, "creating script dir")
	}
	defer os.RemoveAll(dir)

	jsx := filepath.Join(dir, "script.jsx")
	if err := os.WriteFile(jsx, []byte(script), 0o600); err != nil {
		return "", errors.Wrap(err, "writing script")
	}

	var cmd *exec.Cmd
	switch host {
	case HostOSAScript:
		app := r.Application
		if app == "" {
			app = DefaultBundleID
		}
		cmd = exec.CommandContext(ctx, "osascript", "-e", appleScript(app, jsx))
	case HostCScript:
		app := r.Application
		if app == "" {
			app = DefaultProgID
		}
		vbs := filepath.Join(dir, "run.vbs")
		if err := os.WriteFile(vbs, []byte(vbScript(app, jsx)), 0o600); err != nil {
			return "", errors.Wrap(err, "writing launcher")
		}
		cmd = exec.CommandContext(ctx, "cscript", "//nologo", vbs)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", errors.Wrap(ctx.Err(), "photoshop script")
		}
		return "", errors.Wrapf(err, "%s failed: %s", host, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

func appleScript(bundleID, path string) string {
	return fmt.Sprintf("tell application id %s to do javascript (POSIX file %s as alias)",
		appleQuote(bundleID), appleQuote(path))
}

func appleQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func vbScript(progID, path string) string {
	q := func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }
	return "Set app = CreateObject(" + q(progID) + ")\r\n" +
		"result = app.DoJavaScriptFile(" + q(path) + ")\r\n" +
		"WScript.StdOut.Write result\r\n"
}
