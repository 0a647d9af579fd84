// Command schooloo is the school discovery assistant.
//
// Usage:
//
//	schooloo serve --config config.yaml
//	schooloo backend --port 5000
//	schooloo ask --role parent "What are the fees at school_001?"
//	schooloo chat --role student --llm
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/Nyukimin/schooloo/internal/adapter/agentapi"
	"github.com/Nyukimin/schooloo/internal/adapter/backendapi"
	"github.com/Nyukimin/schooloo/internal/adapter/cli"
	"github.com/Nyukimin/schooloo/internal/adapter/config"
	"github.com/Nyukimin/schooloo/internal/application/orchestrator"
	"github.com/Nyukimin/schooloo/internal/domain/routing"
	"github.com/Nyukimin/schooloo/internal/infrastructure/persistence/memory"
	"github.com/Nyukimin/schooloo/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// CLI defines the command-line interface.
type CLI struct {
	Serve   ServeCmd   `cmd:"" help:"Start the agent HTTP API."`
	Backend BackendCmd `cmd:"" help:"Start the school backend REST server with sample data."`
	Ask     AskCmd     `cmd:"" help:"Dispatch one query and print the answer."`
	Chat    ChatCmd    `cmd:"" help:"Interactive chat in the terminal."`
	Tools   ToolsCmd   `cmd:"" help:"List registered tools."`
	Version VersionCmd `cmd:"" help:"Show version information."`

	Config    string `short:"c" help:"Path to config file." type:"path" env:"SCHOOLOO_CONFIG"`
	EnvFile   string `name:"env-file" help:"Extra .env file to load." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error). Overrides config."`
	LogFormat string `help:"Log format (json, console). Overrides config."`
}

// load reads configuration and initializes logging
func (c *CLI) load() (*config.Config, error) {
	if err := config.LoadDotEnv(c.Config, c.EnvFile); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(c.Config)
	if err != nil {
		return nil, err
	}

	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.Log.Format = c.LogFormat
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, os.Stderr); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("schooloo version %s\n", buildVersion())
	return nil
}

func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			return info.Main.Version
		}
	}
	return version
}

// ServeCmd starts the agent HTTP API.
type ServeCmd struct {
	Host string `help:"Listen host. Overrides config."`
	Port int    `help:"Listen port. Overrides config."`
}

func (c *ServeCmd) Run(root *CLI) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	handler := agentapi.NewHandler(a.orch, a.registry, agentapi.Info{
		Name:     "Schooloo Agent",
		Version:  buildVersion(),
		Provider: a.providerName(),
		Backend:  cfg.Backend.URL,
	}, a.metricsHandler()).WithHealth(a.checker)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.InfoCF("main", "Starting agent API", map[string]interface{}{
		"addr":      addr,
		"backend":   cfg.Backend.URL,
		"provider":  a.providerName(),
		"max_tools": cfg.Dispatch.MaxTools,
	})
	return listenAndServe(ctx, addr, handler)
}

// BackendCmd starts the REST backend.
type BackendCmd struct {
	Host string `help:"Listen host. Overrides config."`
	Port int    `help:"Listen port. Overrides config."`
}

func (c *BackendCmd) Run(root *CLI) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}
	if c.Host != "" {
		cfg.Backend.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Backend.Port = c.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := memory.NewSampleStore()
	addr := fmt.Sprintf("%s:%d", cfg.Backend.Host, cfg.Backend.Port)
	logger.InfoCF("main", "Starting backend", map[string]interface{}{
		"addr":    addr,
		"schools": len(store.AllSchools()),
	})
	return listenAndServe(ctx, addr, backendapi.NewServer(store))
}

// AskCmd dispatches one query.
type AskCmd struct {
	Query     []string          `arg:"" help:"Question text."`
	Role      string            `short:"r" default:"parent" enum:"parent,student,admin" help:"Caller role."`
	SessionID string            `name:"session" help:"Record the exchange in this session."`
	Arg       map[string]string `short:"a" help:"Tool argument as key=value (repeatable)."`
	LLM       bool              `name:"llm" help:"Answer with the language model instead of a tool."`
	JSON      bool              `name:"json" help:"Print the full response as JSON."`
}

func (c *AskCmd) Run(root *CLI) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	text := strings.Join(c.Query, " ")

	if c.LLM {
		resp, err := a.orch.Chat(ctx, orchestrator.ChatRequest{
			SessionID: c.SessionID,
			Channel:   "cli",
			Message:   text,
			Role:      c.Role,
			Ground:    true,
		})
		if err != nil {
			return err
		}
		if c.JSON {
			return printJSON(resp)
		}
		fmt.Println(resp.Message)
		return nil
	}

	args := make(map[string]interface{}, len(c.Arg))
	for k, v := range c.Arg {
		args[k] = v
	}
	resp := a.orch.Dispatch(ctx, orchestrator.DispatchRequest{
		SessionID: c.SessionID,
		Channel:   "cli",
		Text:      text,
		Role:      c.Role,
		Args:      args,
	})
	if c.JSON {
		return printJSON(resp)
	}
	fmt.Println(resp.Response)
	if len(resp.ToolsUsed) > 0 {
		fmt.Printf("\nTools used: %s\n", strings.Join(resp.ToolsUsed, ", "))
	}
	if !resp.Success {
		return errors.New("query failed")
	}
	return nil
}

// ChatCmd runs the interactive REPL.
type ChatCmd struct {
	Role      string `short:"r" default:"parent" enum:"parent,student,admin" help:"Caller role."`
	SessionID string `name:"session" help:"Session id (default: new session)."`
	LLM       bool   `name:"llm" help:"Chat with the language model instead of dispatching tools."`
	History   string `help:"Readline history file." type:"path"`
}

func (c *ChatCmd) Run(root *CLI) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if c.LLM && a.provider == nil {
		return fmt.Errorf("--llm needs an API key for provider %s", cfg.LLM.Provider)
	}

	sessionID := c.SessionID
	if sessionID == "" {
		sessionID = "cli-" + uuid.New().String()
	}

	role := routing.ParseRole(c.Role)
	rl, err := cli.NewReadline(role, c.History)
	if err != nil {
		return err
	}
	return cli.NewREPL(a.orch, role, sessionID, c.LLM, os.Stdout).Run(ctx, rl)
}

// ToolsCmd lists the tool catalogue.
type ToolsCmd struct{}

func (c *ToolsCmd) Run(root *CLI) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}

	a, err := buildApp(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer a.close()

	for _, d := range a.registry.Descriptors() {
		params := make([]string, 0, len(d.Params))
		for _, p := range d.Params {
			name := p.Name
			if p.Required {
				name += "*"
			}
			params = append(params, fmt.Sprintf("%s:%s", name, p.Type))
		}
		fmt.Printf("%-26s %s\n", d.Name, d.Description)
		if len(params) > 0 {
			fmt.Printf("%-26s (%s)\n", "", strings.Join(params, ", "))
		}
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// listenAndServe runs an HTTP server until ctx is done, then drains it
func listenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.InfoCF("main", "Shutting down", map[string]interface{}{"addr": addr})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	root := CLI{}
	ctx := kong.Parse(&root,
		kong.Name("schooloo"),
		kong.Description("School discovery assistant for parents, students and admissions staff."),
		kong.UsageOnError(),
	)

	err := ctx.Run(&root)
	ctx.FatalIfErrorf(err)
}
