package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/hanpama/mongograph/internal/config"
	"github.com/hanpama/mongograph/internal/eventbus"
	"github.com/hanpama/mongograph/internal/mongostore"
	"github.com/hanpama/mongograph/internal/otel"
	"github.com/hanpama/mongograph/internal/schema"
	"github.com/hanpama/mongograph/internal/server"
)

const rootUsage = `mongograph — GraphQL selection → MongoDB projection compiler

USAGE:
  mongograph <command> [flags]

COMMANDS:
  serve            Run the HTTP planning and query server
  plan             Compile a query file into fetch plans and print them
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -config <dir>              Directory holding config.yaml (default: .)
  -schema <file>             GraphQL SDL file (default: schema.graphql)
  -server.addr <addr>        HTTP listen address (default: :8080)
  -server.pretty             Pretty-print JSON responses
  -server.timeout <duration> Per-request timeout, e.g. 10s (default: 30s)
  -server.exclude <field>    Never project this top-level field. Repeatable
  -cors.origin <origin>      Allowed CORS origin. Repeatable
  -mongo.uri <uri>           MongoDB connection URI. Empty disables /query
  -mongo.database <name>     MongoDB database name
  -otel.endpoint <addr>      OTLP collector endpoint
  -otel.service <name>       OpenTelemetry service name (default: mongograph)
`

const planUsage = `plan FLAGS:
  -schema <file>    GraphQL SDL file (required)
  -query <file>     Query document file (required)
  -operation <name> Operation to plan when the document has several
  -exclude <field>  Never project this top-level field. Repeatable
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("mongograph", flag.ContinueOnError)
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
	case "plan":
		return cmdPlan(cmdArgs)
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
	case "plan":
		fmt.Print(planUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func cmdServe(args []string) error {
	configPath := "."
	var (
		schemaFile    string
		addr          string
		pretty        bool
		timeout       time.Duration
		mongoURI      string
		mongoDatabase string
		otelEndpoint  string
		otelService   string
		exclude       stringListFlag
		corsOrigins   stringListFlag
	)

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&configPath, "config", configPath, "Directory holding config.yaml")
	fs.StringVar(&schemaFile, "schema", "", "GraphQL SDL file")
	fs.StringVar(&addr, "server.addr", "", "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", false, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", 0, "Per-request timeout")
	fs.Var(&exclude, "server.exclude", "Never project this top-level field")
	fs.Var(&corsOrigins, "cors.origin", "Allowed CORS origin")
	fs.StringVar(&mongoURI, "mongo.uri", "", "MongoDB connection URI")
	fs.StringVar(&mongoDatabase, "mongo.database", "", "MongoDB database name")
	fs.StringVar(&otelEndpoint, "otel.endpoint", "", "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", "", "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Flags that were set explicitly win over config.yaml and env.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "schema":
			cfg.SchemaFile = schemaFile
		case "server.addr":
			cfg.Addr = addr
		case "server.pretty":
			cfg.Pretty = pretty
		case "server.timeout":
			cfg.Timeout = timeout
		case "mongo.uri":
			cfg.MongoURI = mongoURI
		case "mongo.database":
			cfg.MongoDatabase = mongoDatabase
		case "otel.endpoint":
			cfg.OTelEndpoint = otelEndpoint
		case "otel.service":
			cfg.OTelService = otelService
		}
	})

	sch, err := loadSchema(cfg.SchemaFile)
	if err != nil {
		return err
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(cfg.OTelEndpoint, cfg.OTelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	var store server.Finder
	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		st, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close(context.Background()) }()
		store = st
	}

	sopts := []server.Option{}
	if cfg.Pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if cfg.Timeout > 0 {
		sopts = append(sopts, server.WithTimeout(cfg.Timeout))
	}
	if len(exclude) > 0 {
		sopts = append(sopts, server.WithExclude(exclude...))
	}
	if len(corsOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(corsOrigins...))
	}
	h, err := server.New(sch, store, sopts...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	log.Printf("mongograph server listening on %s", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, h)
}

func cmdPlan(args []string) error {
	var (
		schemaFile string
		queryFile  string
		operation  string
		exclude    stringListFlag
	)
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema", "", "GraphQL SDL file")
	fs.StringVar(&queryFile, "query", "", "Query document file")
	fs.StringVar(&operation, "operation", "", "Operation to plan")
	fs.Var(&exclude, "exclude", "Never project this top-level field")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, planUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(os.Stderr, planUsage)
		return fmt.Errorf("-schema is required")
	}
	if queryFile == "" {
		fmt.Fprint(os.Stderr, planUsage)
		return fmt.Errorf("-query is required")
	}

	sch, err := loadSchema(schemaFile)
	if err != nil {
		return err
	}
	query, err := os.ReadFile(queryFile)
	if err != nil {
		return fmt.Errorf("read query: %w", err)
	}

	plans, err := server.PlanQuery(context.Background(), sch, string(query), operation, exclude)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(map[string]any{"plans": plans}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func loadSchema(path string) (*schema.Schema, error) {
	sdl, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	sch, err := schema.BuildFromSDL(string(sdl))
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return sch, nil
}
