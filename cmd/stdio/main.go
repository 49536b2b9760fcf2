package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present
	"github.com/rxtech-lab/starpass-mcp/internal/api"
	"github.com/rxtech-lab/starpass-mcp/internal/config"
	"github.com/rxtech-lab/starpass-mcp/internal/mcp"
	"github.com/rxtech-lab/starpass-mcp/internal/server"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
)

// Build information (set via ldflags)
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

func configureAndStartServer(dbService services.DBService, cfg config.Config) (*api.APIServer, int, error) {
	// The port is needed up front: consent URLs and the app icon point at it
	port := cfg.Port
	if port == 0 {
		p, err := api.AvailablePort()
		if err != nil {
			return nil, 0, err
		}
		port = p
	}

	// Initialize services and hooks
	svcs, err := server.InitializeServices(dbService.GetDB(), cfg, port)
	if err != nil {
		return nil, 0, err
	}
	if err := server.RegisterHooks(svcs.HookService, server.InitializeHooks(dbService.GetDB())...); err != nil {
		return nil, 0, err
	}

	// Initialize API server (consent pages, wallet sign-in, REST API)
	apiServer := api.NewAPIServer(dbService, svcs.TxService, svcs.DispatchService, svcs.NFTService, svcs.WalletService, svcs.TokenIssuer, svcs.Registry, svcs.AppDetails)
	apiServer.SetupRoutes()
	// NOTE: NOT calling EnableStreamableHttp(), MCP runs over stdio

	startedPort, err := apiServer.Start(&port)
	if err != nil {
		return nil, 0, err
	}

	mcpServer := mcp.NewMCPServer(svcs.NFTService, svcs.TxService)
	apiServer.SetMCPServer(mcpServer)

	return apiServer, startedPort, nil
}

func main() {
	// Command line flags
	var showVersion = flag.Bool("version", false, "Show version information")
	var showHelp = flag.Bool("help", false, "Show help information")
	var enableLog = flag.Bool("log", false, "Enable logging output")
	var configPath = flag.String("config", "", "Path to a YAML config file (defaults to $"+config.PathEnv+")")
	flag.Parse()

	// Disable logging by default
	if !*enableLog {
		log.SetOutput(io.Discard)
	}

	// Show version information
	if *showVersion {
		log.Printf("Starpass NFT MCP Server\n")
		log.Printf("Version: %s\n", Version)
		log.Printf("Commit: %s\n", CommitHash)
		log.Printf("Built: %s\n", BuildTime)
		return
	}

	if *showHelp {
		log.Printf("Starpass NFT MCP Server\n\n")
		log.Printf("Usage: %s [options]\n\n", os.Args[0])
		log.Printf("Options:\n")
		log.Printf("  --version    Show version information\n")
		log.Printf("  --help       Show this help message\n")
		log.Printf("  --log        Enable logging output\n")
		log.Printf("  --config     Path to a YAML config file\n\n")
		log.Printf("Description:\n")
		log.Printf("  Mint, transfer and lease Starpass NFTs on Stacks.\n")
		log.Printf("  Provides 8 MCP tools. Contract calls are signed in the user's wallet.\n\n")
		log.Printf("Database: ~/starpass.db (SQLite)\n")
		log.Printf("Web Interface: http://localhost:[random-port]\n")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatal("Failed to load configuration:", err)
	}

	// Get home directory for database
	homePath, err := os.UserHomeDir()
	if err != nil {
		log.Fatal("Failed to get home directory:", err)
	}

	// Initialize database
	dbService, err := services.NewSqliteDBService(filepath.Join(homePath, "starpass.db"))
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer dbService.Close()

	apiServer, port, err := configureAndStartServer(dbService, cfg)
	if err != nil {
		log.Fatal("Failed to start API server:", err)
	}

	log.Printf("API server started on port %d\n", port)

	mcpServer := apiServer.GetMCPServer()
	if mcpServer == nil {
		log.Fatal("MCP server not found")
	}

	// StartStdioServer MCP server in a goroutine
	go func() {
		if err := mcpServer.StartStdioServer(); err != nil {
			log.SetOutput(os.Stderr)
			log.SetFlags(0)
			log.Fatal("Failed to start MCP server:", err)
		}
	}()

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("\nShutting down servers...")

	if err := apiServer.Shutdown(); err != nil {
		log.SetOutput(os.Stderr)
		log.SetFlags(0)
		log.Printf("Error shutting down API server: %v", err)
	}

	log.Println("Servers shut down successfully")
}
