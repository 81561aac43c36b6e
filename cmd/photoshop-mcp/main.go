package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"github.com/ironsheep/photoshop-mcp/internal/config"
	imgutil "github.com/ironsheep/photoshop-mcp/internal/imaging"
	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
	"github.com/ironsheep/photoshop-mcp/internal/photoshop/bridge"
	"github.com/ironsheep/photoshop-mcp/internal/photoshop/offline"
	"github.com/ironsheep/photoshop-mcp/internal/server"
	"github.com/ironsheep/photoshop-mcp/internal/tools"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type flags struct {
	configPath   string
	backend      string
	logLevel     string
	logFormat    string
	toolPrefix   string
	allowScripts bool
}

// deps holds what every command runs with.
type deps struct {
	cfg      *config.Config
	ctx      context.Context
	app      photoshop.Application
	registry *tools.Registry
}

func newRootCmd() *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:   "photoshop-mcp",
		Short: "MCP server for automating Adobe Photoshop",
		Long: "photoshop-mcp exposes Photoshop document, layer, export and conversion operations as MCP tools.\n\n" +
			"Without a subcommand it serves MCP over stdin/stdout. Configure it in your MCP client\n" +
			"(e.g. Claude Desktop). Logs are written to stderr.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd, &f)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "YAML config file (default $"+config.EnvConfig+")")
	pf.StringVar(&f.backend, "backend", "", "Photoshop backend: bridge or offline")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: info or debug")
	pf.StringVar(&f.logFormat, "log-format", "", "Log format: terminal or json")
	pf.StringVar(&f.toolPrefix, "tool-prefix", "", "Prefix for every tool name")
	pf.BoolVar(&f.allowScripts, "allow-scripts", false, "Register the run_script tool")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve MCP over stdin/stdout (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd, &f)
			},
		},
		newToolsCmd(&f),
		newCallCmd(&f),
		newVersionCmd(),
	)
	return root
}

// setup resolves configuration and builds the deps.
func setup(cmd *cobra.Command, f *flags) (*deps, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	fs := cmd.Flags()
	if fs.Changed("backend") {
		cfg.Backend = f.backend
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if fs.Changed("tool-prefix") {
		cfg.ToolPrefix = &f.toolPrefix
	}
	if fs.Changed("allow-scripts") {
		cfg.Photoshop.AllowScripts = f.allowScripts
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx := newLogContext(cmd.Context(), cfg)

	app, err := newApplication(cfg)
	if err != nil {
		return nil, err
	}
	reg := tools.NewRegistry(cfg.Prefix())
	err = tools.RegisterAll(reg, tools.Options{Backend: cfg.Backend, AllowScripts: cfg.Photoshop.AllowScripts})
	if err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}
	return &deps{cfg: cfg, ctx: ctx, app: app, registry: reg}, nil
}

// newLogContext configures the clue logger. stdout is reserved for the MCP
// protocol, so logs always go to stderr.
func newLogContext(ctx context.Context, cfg *config.Config) context.Context {
	format := log.FormatTerminal
	if cfg.Log.Format == config.FormatJSON {
		format = log.FormatJSON
	}
	ctx = log.Context(ctx, log.WithFormat(format), log.WithOutput(os.Stderr))
	if cfg.Debug() {
		ctx = log.Context(ctx, log.WithDebug())
		log.Debugf(ctx, "debug logs enabled")
	}
	return ctx
}

func newApplication(cfg *config.Config) (photoshop.Application, error) {
	switch cfg.Backend {
	case config.BackendOffline:
		return offline.New(imgutil.NewImageCache()), nil
	case config.BackendBridge:
		return bridge.New(&bridge.ExecRunner{
			Host:        cfg.Photoshop.ScriptHost,
			Application: cfg.Photoshop.Application,
			Timeout:     cfg.Photoshop.ScriptTimeout,
		}), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func serve(cmd *cobra.Command, f *flags) error {
	rt, err := setup(cmd, f)
	if err != nil {
		return err
	}
	log.Info(rt.ctx,
		log.KV{K: "msg", V: "starting photoshop-mcp"},
		log.KV{K: "version", V: Version},
		log.KV{K: "commit", V: GitCommit},
		log.KV{K: "backend", V: rt.cfg.Backend},
		log.KV{K: "tool_prefix", V: rt.cfg.Prefix()},
		log.KV{K: "allow_scripts", V: rt.cfg.Photoshop.AllowScripts})

	srv := server.New(rt.ctx, Version, rt.registry, rt.app)
	if err := srv.Run(rt.ctx); err != nil && rt.ctx.Err() == nil {
		log.Errorf(rt.ctx, err, "server stopped")
		return err
	}
	return nil
}

func newToolsCmd(f *flags) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the registered tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd, f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range rt.registry.List() {
				if !verbose {
					fmt.Fprintf(out, "%-40s %s\n", t.Name, t.Description)
					continue
				}
				schema, err := json.MarshalIndent(t.InputSchema, "  ", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\n  %s\n  %s\n\n", t.Name, t.Description, schema)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print input schemas")
	return cmd
}

// callStep is one tool invocation of the call command.
type callStep struct {
	name string
	args json.RawMessage
}

// parseSteps splits "name [json] name [json] ..." into steps. Names may
// omit the tool prefix.
func parseSteps(args []string, prefix string) ([]callStep, error) {
	var steps []callStep
	for i := 0; i < len(args); i++ {
		name := args[i]
		if strings.HasPrefix(strings.TrimSpace(name), "{") {
			return nil, fmt.Errorf("arguments %s do not follow a tool name", name)
		}
		if !strings.HasPrefix(name, prefix) {
			name = prefix + name
		}
		step := callStep{name: name}
		if i+1 < len(args) && strings.HasPrefix(strings.TrimSpace(args[i+1]), "{") {
			step.args = json.RawMessage(args[i+1])
			if !json.Valid(step.args) {
				return nil, fmt.Errorf("arguments for %s are not valid JSON", name)
			}
			i++
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func newCallCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "call TOOL [JSON_ARGS] [TOOL [JSON_ARGS]...]",
		Short: "Run tools in-process and print their results",
		Long: "call runs one or more tools in order against a single session and prints each result\n" +
			"as a JSON line. It stops at the first failed call.\n\n" +
			"Example:\n" +
			`  photoshop-mcp --backend offline call open_document '{"file_path":"/tmp/in.png"}' \` + "\n" +
			`    convert_for_web '{"output_path":"/tmp/out.jpg"}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, f)
			if err != nil {
				return err
			}
			steps, err := parseSteps(args, rt.registry.Prefix())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, s := range steps {
				res := rt.registry.Call(rt.ctx, rt.app, s.name, s.args)
				if err := enc.Encode(res); err != nil {
					return err
				}
				if !res.Success {
					return fmt.Errorf("%s failed: %s", s.name, res.Error)
				}
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "photoshop-mcp %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}
