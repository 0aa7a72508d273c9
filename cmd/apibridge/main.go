package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/apibridge/internal/bridge"
	"github.com/bobmcallan/apibridge/internal/catalog"
	"github.com/bobmcallan/apibridge/internal/common"
)

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Name      string `toml:"name"`
	Port      string `toml:"port"`
	Endpoints string `toml:"endpoints"`
}

// Config holds all apibridge runtime configuration. The endpoint catalog
// itself lives in the separate YAML/JSON file named by server.endpoints.
type Config struct {
	Server  ServerConfig         `toml:"server"`
	Logging common.LoggingConfig `toml:"logging"`
}

// newDefaultConfig returns a Config with sensible defaults.
func newDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Name:      "APIBridge",
			Port:      "4244",
			Endpoints: "endpoints.yaml",
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/apibridge.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// loadConfig loads configuration from a TOML file with defaults and env overrides.
func loadConfig(path string) Config {
	cfg := newDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Fatalf("Failed to read config file %s: %v", path, err)
			}
			// File not found — use defaults
		} else {
			if err := toml.Unmarshal(data, &cfg); err != nil {
				log.Fatalf("Failed to parse config file %s: %v", path, err)
			}
		}
	}

	// Apply environment overrides
	if name := os.Getenv("APIBRIDGE_SERVER_NAME"); name != "" {
		cfg.Server.Name = name
	}
	if port := os.Getenv("APIBRIDGE_PORT"); port != "" {
		cfg.Server.Port = port
	}
	if endpoints := os.Getenv("APIBRIDGE_ENDPOINTS"); endpoints != "" {
		cfg.Server.Endpoints = endpoints
	}
	if level := os.Getenv("APIBRIDGE_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg
}

func main() {
	stdio := flag.Bool("stdio", false, "Use stdio transport (for Claude Desktop)")
	configFile := flag.String("config", "apibridge.toml", "Path to config file")
	endpointsFile := flag.String("endpoints", "", "Path to endpoint catalog (overrides config)")
	flag.Parse()

	cfg := loadConfig(*configFile)
	if *endpointsFile != "" {
		cfg.Server.Endpoints = *endpointsFile
	}

	// Load version
	common.LoadVersionFromFile()

	// Setup logging
	logger := common.NewLoggerFromConfig(cfg.Logging)

	// The endpoint catalog is the one fatal load: a bridge without a valid
	// catalog has nothing to serve.
	cat, err := catalog.Load(cfg.Server.Endpoints)
	if err != nil {
		logger.Error().Str("path", cfg.Server.Endpoints).Str("error", err.Error()).Msg("failed to load endpoint catalog")
		fmt.Fprintf(os.Stderr, "failed to load endpoint catalog %s: %v\n", cfg.Server.Endpoints, err)
		os.Exit(1)
	}

	serverName := cat.Name
	if serverName == "" {
		serverName = cfg.Server.Name
	}
	serverVersion := cat.Version
	if serverVersion == "" {
		serverVersion = common.GetVersion()
	}

	b := bridge.New(cat, logger)
	defer b.Close()

	// Create MCP server and register a tool per catalog endpoint
	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)
	b.Register(mcpServer)

	logger.Info().
		Int("tools", len(cat.Endpoints)).
		Str("catalog", cfg.Server.Endpoints).
		Msg("bridge initialized")

	if *stdio {
		// Stdio transport — reads stdin, writes stdout
		if err := server.ServeStdio(mcpServer); err != nil {
			fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	port := cfg.Server.Port

	// Streamable HTTP transport — listens on configured port
	httpServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithStateLess(true),
	)

	logger.Info().Str("port", port).Msg("starting MCP streamable HTTP server")
	fmt.Fprintf(os.Stderr, "Starting MCP Streamable HTTP on :%s\n", port)

	if err := httpServer.Start(":" + port); err != nil {
		fmt.Fprintf(os.Stderr, "http server error: %v\n", err)
		os.Exit(1)
	}
}
