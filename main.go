package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/config"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/journal"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/knowledge"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/observability"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/server"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/tools"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "knowledge-mcp",
		Short: "MCP server for querying and extracting knowledge in a Neo4j graph",
		Long: `knowledge-mcp serves search, traversal, path finding, gap analysis and
text extraction over a Neo4j knowledge graph as MCP tools.

Neo4j settings are read from NEO4J_URI, NEO4J_USERNAME, NEO4J_PASSWORD and
NEO4J_DATABASE, the HTTP bearer token from MCP_BEARER_TOKEN and every other
setting from KNOWLEDGE_<SECTION>_<KEY>.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "Path to a YAML config file")
	flags.String("transport", "stdio", "Transport mode: stdio or http")
	flags.Int("port", 8081, "HTTP port (only used with --transport http)")
	flags.String("data-dir", "./data", "Directory for the extraction journal")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	bindFlags(v, cmd, map[string]string{
		"server.transport": "transport",
		"server.port":      "port",
		"data_dir":         "data-dir",
		"logging.level":    "log-level",
	})
	return cmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		// Lookup only returns nil for flags that were never defined.
		_ = v.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
}

func run(parent context.Context, cfg *config.Config) error {
	// stdout carries the stdio transport, so logs go to stderr.
	logger, err := observability.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tp, err := observability.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := observability.ShutdownTracing(shutdownCtx, tp); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	neo, err := graph.OpenNeo4j(ctx, graph.Config{
		URI:                          cfg.Neo4j.URI,
		Username:                     cfg.Neo4j.Username,
		Password:                     cfg.Neo4j.Password,
		Database:                     cfg.Neo4j.Database,
		MaxConnectionPoolSize:        cfg.Neo4j.MaxConnectionPoolSize,
		ConnectionAcquisitionTimeout: cfg.Neo4j.ConnectionAcquisitionTimeout,
	})
	if err != nil {
		return errors.Wrap(err, "connect to neo4j")
	}
	store := graph.NewTracedStore(neo, tp.Tracer(observability.TracerName))
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Warn("close graph store failed", "error", err)
		}
	}()

	if err := graph.EnsureSchema(ctx, store); err != nil {
		return errors.Wrap(err, "ensure graph schema")
	}

	jrnl, err := journal.Open(cfg.DataDir)
	if err != nil {
		return errors.Wrap(err, "open extraction journal")
	}
	defer jrnl.Close()

	engine := knowledge.New(store,
		knowledge.WithLogger(logger),
		knowledge.WithJournal(jrnl),
	)

	srv := server.New(engine, jrnl, tools.About{
		Name:        server.Name,
		Version:     version,
		Description: "Knowledge query and extraction engine over a Neo4j graph",
		Capabilities: []string{
			"exact, semantic, graph and hybrid search",
			"graph exploration with DOT rendering",
			"shortest path discovery",
			"knowledge gap analysis",
			"concept and fact extraction with provenance",
		},
		GraphURI: cfg.Neo4j.URI,
	})

	switch cfg.Server.Transport {
	case "stdio":
		logger.Info("knowledge MCP server starting", "transport", "stdio", "neo4j", cfg.Neo4j.URI)
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			return errors.Wrap(err, "serve stdio")
		}
	case "http":
		return serveHTTP(ctx, logger, srv, cfg.Server)
	default:
		return errors.Errorf("unknown transport: %s (use stdio or http)", cfg.Server.Transport)
	}
	return nil
}

func serveHTTP(ctx context.Context, logger *slog.Logger, srv *mcp.Server, cfg config.ServerConfig) error {
	if cfg.BearerToken == "" {
		logger.Warn("http transport has no bearer token; MCP endpoint is unauthenticated")
	}
	handler := server.NewHTTPHandler(srv, server.HTTPOptions{
		BearerToken: cfg.BearerToken,
		Logger:      logger,
	})
	httpSrv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("knowledge MCP server listening", "addr", httpSrv.Addr, "path", "/mcp")
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "serve http")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown http server")
	}
	return nil
}
