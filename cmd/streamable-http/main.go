package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present
	"github.com/rxtech-lab/starpass-mcp/internal/api"
	"github.com/rxtech-lab/starpass-mcp/internal/config"
	"github.com/rxtech-lab/starpass-mcp/internal/mcp"
	"github.com/rxtech-lab/starpass-mcp/internal/server"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
)

const defaultPort = 8080

func configureAndStartServer(dbService services.DBService, cfg config.Config) (*api.APIServer, int, error) {
	if cfg.JWTSecret == "" {
		return nil, 0, errors.New("JWT_SECRET is required for the streamable HTTP server")
	}

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

	// Initialize MCP server
	mcpServer := mcp.NewMCPServer(svcs.NFTService, svcs.TxService)
	// Initialize API server with the MCP server mounted at /mcp
	apiServer := api.NewAPIServer(dbService, svcs.TxService, svcs.DispatchService, svcs.NFTService, svcs.WalletService, svcs.TokenIssuer, svcs.Registry, svcs.AppDetails)
	apiServer.SetMCPServer(mcpServer)
	apiServer.SetupRoutes()
	apiServer.EnableStreamableHttp()

	startedPort, err := apiServer.Start(&port)
	if err != nil {
		return nil, 0, err
	}
	return apiServer, startedPort, nil
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}

	// initialize postgres database
	dbService, err := services.NewPostgresDBService(cfg.PostgresURL)
	if err != nil {
		log.Fatal("Failed to initialize database service:", err)
	}
	defer dbService.Close()

	apiServer, startedPort, err := configureAndStartServer(dbService, cfg)
	if err != nil {
		log.Fatal("Failed to start API server:", err)
	}

	log.Printf("API server started on port %d\n", startedPort)

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("\nShutting down server...")

	if err := apiServer.Shutdown(); err != nil {
		log.Printf("Error shutting down API server: %v", err)
	}

	log.Println("Server shut down successfully")
}
