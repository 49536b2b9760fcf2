package handler

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rxtech-lab/starpass-mcp/internal/api"
	"github.com/rxtech-lab/starpass-mcp/internal/config"
	"github.com/rxtech-lab/starpass-mcp/internal/mcp"
	"github.com/rxtech-lab/starpass-mcp/internal/server"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
)

var (
	apiServer *api.APIServer
	initOnce  sync.Once
	initErr   error
)

// Handler is the main Vercel function handler
func Handler(w http.ResponseWriter, r *http.Request) {
	initOnce.Do(func() {
		initErr = initializeAPIServer()
	})
	if initErr != nil {
		log.Printf("Failed to initialize API server: %v", initErr)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	adaptor.FiberApp(apiServer.GetFiberApp())(w, r)
}

// initializeAPIServer wires the same services as the streamable HTTP binary.
// Sessions live in the database, so a wallet report may reach a different
// function instance than the one that created the session.
func initializeAPIServer() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	var dbService services.DBService
	if cfg.PostgresURL != "" {
		dbService, err = services.NewPostgresDBService(cfg.PostgresURL)
	} else {
		var dbPath string
		dbPath, err = getDatabasePath()
		if err == nil {
			dbService, err = services.NewSqliteDBService(dbPath)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	port := cfg.Port
	if port == 0 {
		port, _ = strconv.Atoi(os.Getenv("PORT"))
	}

	svcs, err := server.InitializeServices(dbService.GetDB(), cfg, port)
	if err != nil {
		return err
	}
	if err := server.RegisterHooks(svcs.HookService, server.InitializeHooks(dbService.GetDB())...); err != nil {
		return err
	}

	apiServer = api.NewAPIServer(dbService, svcs.TxService, svcs.DispatchService, svcs.NFTService, svcs.WalletService, svcs.TokenIssuer, svcs.Registry, svcs.AppDetails)
	apiServer.SetMCPServer(mcp.NewMCPServer(svcs.NFTService, svcs.TxService))
	apiServer.SetupRoutes()
	apiServer.EnableStreamableHttp()

	// Add a root route for Vercel
	apiServer.GetFiberApp().Get("/", func(c *fiber.Ctx) error {
		return c.JSON(map[string]interface{}{
			"message": "Starpass NFT MCP API",
			"status":  "running",
			"version": "1.0.0",
		})
	})

	return nil
}

// getDatabasePath returns the appropriate database path for Vercel environment
func getDatabasePath() (string, error) {
	// In Vercel, we need to use /tmp for writable storage
	if os.Getenv("VERCEL") == "1" {
		return "/tmp/starpass.db", nil
	}

	homePath, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homePath, "starpass.db"), nil
}
