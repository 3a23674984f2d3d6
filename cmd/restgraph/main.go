package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hanpama/restgraph"
	"github.com/hanpama/restgraph/internal/eventbus"
	"github.com/hanpama/restgraph/internal/otel"
	"github.com/hanpama/restgraph/internal/schema"
	"github.com/hanpama/restgraph/internal/server"
)

const rootUsage = `restgraph: GraphQL-style gateway over REST backends

USAGE:
  restgraph <command> [flags]

COMMANDS:
  serve            Run the HTTP gateway backed by REST services
  check-schema     Parse & validate a schema file, print the normalized form
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -schema <file>                  Schema file (required)
  -baseurl <path=url>             Map an endpoint path to a backend base URL.
                                  Repeatable; at least one mapping required.
                                  Use the default key for a catch-all:
                                    -baseurl default=https://api.example.com
  -header <Name=value>            Extra header sent with every backend request. Repeatable
  -server.addr <addr>             HTTP listen address (default: :8080)
  -server.pretty                  Pretty-print JSON responses
  -server.timeout <duration>      Per-request timeout, e.g. 10s (default: 10s)
  -server.cache                   Serve repeated queries from the result cache
  -cache.timeout <duration>       Cached result TTL (default: 5m)
  -batch.interval <duration>      Queue flush interval (default: 50ms)
  -batch.max-size <n>             Flush a queue once it holds n operations (default: 10)
  -transport.timeout <duration>   Backend request timeout (default: 10s)
  -transport.max-retries <n>      Retries for failed backend calls (default: 0)
  -transport.retry-delay <d>      Initial backoff between retries (default: 100ms)
  -otel.endpoint <addr>           OTLP collector endpoint
  -otel.service <name>            OpenTelemetry service name (default: restgraph)
`

const checkSchemaUsage = `check-schema FLAGS:
  -schema <file>  Schema file (required)
  -out <file>     Write the normalized schema to file (default: stdout)
  (Validation always runs; exits non-zero on errors)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("restgraph", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "check-schema":
		return cmdCheckSchema(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "check-schema":
		fmt.Print(checkSchemaUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

// kvFlag collects repeatable key=value flags into a map.
type kvFlag struct {
	m map[string]string
}

func (f *kvFlag) String() string { return "" }

func (f *kvFlag) Set(v string) error {
	parts := strings.SplitN(v, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid mapping %q", v)
	}
	key := strings.TrimSpace(parts[0])
	val := strings.TrimSpace(parts[1])
	if key == "" || val == "" {
		return fmt.Errorf("invalid mapping %q", v)
	}
	if f.m == nil {
		f.m = map[string]string{}
	}
	f.m[key] = val
	return nil
}

func cmdServe(args []string) error {
	schemaFile := ""
	addr := ":8080"
	pretty := false
	timeout := 10 * time.Second
	useCache := false
	cacheTimeout := 5 * time.Minute
	batchInterval := 50 * time.Millisecond
	batchMaxSize := 10
	reqTimeout := 10 * time.Second
	maxRetries := 0
	retryDelay := 100 * time.Millisecond
	otelEndpoint := ""
	otelService := "restgraph"
	var baseURLs, headers kvFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema", schemaFile, "Schema file")
	fs.Var(&baseURLs, "baseurl", "Map an endpoint path to a backend base URL")
	fs.Var(&headers, "header", "Extra header sent with every backend request")
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.BoolVar(&useCache, "server.cache", useCache, "Serve repeated queries from the result cache")
	fs.DurationVar(&cacheTimeout, "cache.timeout", cacheTimeout, "Cached result TTL")
	fs.DurationVar(&batchInterval, "batch.interval", batchInterval, "Queue flush interval")
	fs.IntVar(&batchMaxSize, "batch.max-size", batchMaxSize, "Flush a queue once it holds this many operations")
	fs.DurationVar(&reqTimeout, "transport.timeout", reqTimeout, "Backend request timeout")
	fs.IntVar(&maxRetries, "transport.max-retries", maxRetries, "Retries for failed backend calls")
	fs.DurationVar(&retryDelay, "transport.retry-delay", retryDelay, "Initial backoff between retries")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(os.Stderr, serveUsage)
		return fmt.Errorf("-schema is required")
	}
	if len(baseURLs.m) == 0 {
		fmt.Fprint(os.Stderr, serveUsage)
		return fmt.Errorf("at least one -baseurl mapping is required")
	}

	sdl, err := os.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	client, err := restgraph.New(string(sdl), baseURLs.m, restgraph.Options{
		Headers:        headers.m,
		RequestTimeout: reqTimeout,
		MaxRetries:     maxRetries,
		RetryDelay:     retryDelay,
		CacheTimeout:   cacheTimeout,
		BatchInterval:  batchInterval,
		MaxBatchSize:   batchMaxSize,
	}, nil)
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}

	var sopts []server.Option
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if timeout > 0 {
		sopts = append(sopts, server.WithTimeout(timeout))
	}
	if useCache {
		sopts = append(sopts, server.WithCache())
	}
	h := server.New(client.Engine(), sopts...)

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)

	log.Printf("restgraph server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func cmdCheckSchema(args []string) error {
	schemaFile := ""
	outFile := ""
	fs := flag.NewFlagSet("check-schema", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema", schemaFile, "Schema file")
	fs.StringVar(&outFile, "out", outFile, "Write the normalized schema to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, checkSchemaUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(os.Stderr, checkSchemaUsage)
		return fmt.Errorf("-schema is required")
	}

	sdl, err := os.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	s, err := schema.ParseSDL(string(sdl))
	if err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}
	if err := schema.Validate(s, nil); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}
	rendered := schema.Render(s)
	if outFile == "" {
		fmt.Print(rendered)
		return nil
	}
	return os.WriteFile(outFile, []byte(rendered), 0644)
}
