// Command swaggermcp serves the function-to-API pipeline: upload source
// files containing function definitions and get live HTTP endpoints with
// generated interactive docs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	swaggermcp "github.com/ibrahimsaleem/Swaggermcp"
)

type CLI struct {
	Version VersionCmd `cmd:"" help:"Print version information."`
	Serve   ServeCmd   `cmd:"" default:"1" help:"Start the control API and endpoint listener."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

type ServeCmd struct {
	EnvFile     string `help:"Path to a .env file to load." name:"env-file"`
	ControlAddr string `help:"Control API listen address." name:"control-addr"`
	AppPort     int    `help:"Port for generated endpoints." name:"app-port"`
	DataDir     string `help:"Directory for uploads and the generation artifact." name:"data-dir"`
	LogLevel    string `help:"Log level (debug, info, warn, error)." name:"log-level"`
}

func (c *ServeCmd) Run() error {
	cfg, err := swaggermcp.LoadConfig(c.EnvFile)
	if err != nil {
		return err
	}
	// Flags win over environment and .env values.
	if c.ControlAddr != "" {
		cfg.ControlAddr = c.ControlAddr
	}
	if c.AppPort != 0 {
		cfg.AppPort = c.AppPort
	}
	if c.DataDir != "" {
		cfg.DataDir = c.DataDir
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	srv, err := swaggermcp.NewServer(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("swaggermcp"),
		kong.Description("Turn uploaded function definitions into live, documented HTTP endpoints."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
