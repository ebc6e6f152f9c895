package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tailcallhq/tailcall-go/internal/cache"
	"github.com/tailcallhq/tailcall-go/internal/config"
	"github.com/tailcallhq/tailcall-go/internal/evalctx"
	"github.com/tailcallhq/tailcall-go/internal/executor"
	"github.com/tailcallhq/tailcall-go/internal/graphqlrt"
	"github.com/tailcallhq/tailcall-go/internal/grpcrt"
	"github.com/tailcallhq/tailcall-go/internal/grpctp"
	"github.com/tailcallhq/tailcall-go/internal/httprt"
	"github.com/tailcallhq/tailcall-go/internal/introspection"
	"github.com/tailcallhq/tailcall-go/internal/jsrt"
	"github.com/tailcallhq/tailcall-go/internal/metrics"
	"github.com/tailcallhq/tailcall-go/internal/otel"
	"github.com/tailcallhq/tailcall-go/internal/schema"
	"github.com/tailcallhq/tailcall-go/internal/schemaruntime"
	"github.com/tailcallhq/tailcall-go/internal/server"
)

const rootUsage = `tailcall — declarative GraphQL orchestration gateway

USAGE:
  tailcall <command> [flags]

COMMANDS:
  serve      Run the HTTP GraphQL gateway
  validate   Build the blueprint and schema without starting a server
  help       Show help for any command
`

const serveUsage = `serve FLAGS:
  -config <file>           Config file path (also: TAILCALL_CONFIG_PATH)
  -upstream <url>          Base URL of the demo HTTP upstream (default: http://localhost:9090)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("tailcall", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer))
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	if global.NArg() == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("no command given")
	}

	cmd, rest := global.Arg(0), args[1:]
	switch cmd {
	case "serve":
		return cmdServe(rest)
	case "validate":
		return cmdValidate(rest)
	case "help":
		fmt.Print(rootUsage)
		return nil
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	configPath := fs.String("config", "", "config file path")
	upstream := fs.String("upstream", "http://localhost:9090", "base URL of the demo HTTP upstream")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	var loaderOpts []config.LoaderOption
	if *configPath != "" {
		loaderOpts = append(loaderOpts, config.WithConfigPaths(*configPath))
	}
	cfg, err := config.NewLoader(loaderOpts...).Load()
	if err != nil {
		return fmt.Errorf("tailcall: %w", err)
	}

	shutdownTracing, err := otel.Setup(cfg.Tracing.Endpoint, cfg.App.Name)
	if err != nil {
		return fmt.Errorf("tailcall: tracing setup: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	cacheBackend, err := buildCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("tailcall: %w", err)
	}

	clients := evalctx.Clients{
		HTTP:    httprt.NewClient(&http.Client{Timeout: cfg.HTTP.ReadTimeout}),
		GRPC:    grpcrt.NewClient(grpcrt.GlobalFiles{}, grpctp.New(grpctp.WithMaxConnsPerEndpoint(cfg.GRPC.MaxConnsPerEndpoint), grpctp.WithRPCTimeout(cfg.GRPC.RPCTimeout))),
		GraphQL: graphqlrt.NewClient(*upstream+"/graphql", &http.Client{Timeout: cfg.HTTP.ReadTimeout}, nil),
		JS:      mustJSClient(),
	}

	bp := demoBlueprint(*upstream)
	sch, err := schema.BuildFromBlueprint(bp)
	if err != nil {
		return fmt.Errorf("tailcall: build schema: %w", err)
	}

	var execRuntime executor.Runtime = schemaruntime.New(bp, clients, cacheBackend)
	if bp.Server.EnableIntrospection {
		wrapped := introspection.Wrap(execRuntime, sch)
		execRuntime = wrapped.Runtime
		sch = wrapped.Schema
	}

	handler, err := server.New(execRuntime, sch, serverOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("tailcall: build server: %w", err)
	}

	if cfg.Metrics.Enabled {
		rec := metrics.NewRecorder()
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, rec.Handler())
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			log.Printf("tailcall: metrics listening on %s%s", addr, cfg.Metrics.Path)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("tailcall: metrics server stopped: %v", err)
			}
		}()
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	log.Printf("tailcall: serving GraphQL on %s", addr)
	return http.ListenAndServe(addr, handler)
}

func cmdValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	upstream := fs.String("upstream", "http://localhost:9090", "base URL of the demo HTTP upstream")
	if err := fs.Parse(args); err != nil {
		return err
	}

	bp := demoBlueprint(*upstream)
	if _, err := schema.BuildFromBlueprint(bp); err != nil {
		return fmt.Errorf("tailcall: validate: %w", err)
	}
	fmt.Println("tailcall: blueprint is valid")
	return nil
}

func buildCache(cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Driver {
	case "redis":
		return cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix)
	default:
		return cache.NewLRU(cfg.MaxEntries), nil
	}
}

func mustJSClient() *jsrt.Client {
	c, err := jsrt.NewClient(`function identity(v) { return v; }`)
	if err != nil {
		log.Fatalf("tailcall: init js runtime: %v", err)
	}
	return c
}

func serverOptions(cfg *config.Config) []server.Option {
	opts := []server.Option{
		server.WithTimeout(cfg.HTTP.ReadTimeout),
		server.WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes),
		server.WithGraphiQL(cfg.HTTP.GraphiQL),
		server.WithMetadataHeaders(cfg.HTTP.MetadataHeaders...),
	}
	if cfg.HTTP.CORS.Enabled {
		opts = append(opts, server.WithCORS(cfg.HTTP.CORS.AllowedOrigin))
	}
	return opts
}
