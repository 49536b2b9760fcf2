package api

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/starpass-mcp/internal/api/middleware"
	"github.com/rxtech-lab/starpass-mcp/internal/assets"
	"github.com/rxtech-lab/starpass-mcp/internal/mcp"
	"github.com/rxtech-lab/starpass-mcp/internal/models"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
	"github.com/rxtech-lab/starpass-mcp/internal/utils"
)

type APIServer struct {
	app             *fiber.App
	dbService       services.DBService
	txService       services.TransactionService
	dispatchService services.DispatchService
	nftService      services.NFTService
	walletService   services.WalletService
	tokenIssuer     *utils.SessionTokenIssuer
	gatherer        prometheus.Gatherer
	appDetails      models.AppDetails
	mcpServer       *mcp.MCPServer
	port            int
}

func NewAPIServer(
	dbService services.DBService,
	txService services.TransactionService,
	dispatchService services.DispatchService,
	nftService services.NFTService,
	walletService services.WalletService,
	tokenIssuer *utils.SessionTokenIssuer,
	gatherer prometheus.Gatherer,
	appDetails models.AppDetails,
) *APIServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Add middleware
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	return &APIServer{
		app:             app,
		dbService:       dbService,
		txService:       txService,
		dispatchService: dispatchService,
		nftService:      nftService,
		walletService:   walletService,
		tokenIssuer:     tokenIssuer,
		gatherer:        gatherer,
		appDetails:      appDetails,
	}
}

func (s *APIServer) SetupRoutes() {
	requireAuth := middleware.AuthMiddleware(s.authConfig(false))
	optionalAuth := middleware.AuthMiddleware(s.authConfig(true))

	// Wallet consent page and the session API it talks to
	s.app.Get("/tx/:session_id", s.handleTransactionPage)
	s.app.Get("/api/tx/:session_id", s.handleTransactionAPI)
	s.app.Post("/api/tx/:session_id", s.handleTransactionOutcome)

	// Wallet sign-in
	s.app.Get("/wallet/:session_id", s.handleWalletPage)
	s.app.Post("/api/wallet/sign-in", s.handleInitiateSignIn)
	s.app.Post("/api/wallet/sign-in/:session_id", s.handlePendingSignIn)
	s.app.Get("/api/wallet/:session_id", s.handleLoadUser)
	s.app.Delete("/api/wallet/:session_id", requireAuth, s.handleSignOut)

	// NFT operations
	nft := s.app.Group("/api/nft")
	nft.Post("/mint", requireAuth, s.handleSubmit(models.OperationMint))
	nft.Post("/transfer", requireAuth, s.handleSubmit(models.OperationTransfer))
	nft.Post("/lease", requireAuth, s.handleSubmit(models.OperationLease))
	nft.Get("/total", s.handleTotalNFTs)
	nft.Get("/activity", optionalAuth, s.handleListActivity)
	nft.Get("/:id", s.handleGetNFTInfo)
	nft.Get("/:id/owner/:address", s.handleOwnsNFT)

	s.app.Get("/app-icon.png", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(assets.AppIconPNG)
	})

	if s.gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	// Health check
	s.app.Get("/health", s.handleHealth)
}

func (s *APIServer) handleHealth(c *fiber.Ctx) error {
	if s.dbService != nil {
		sqlDB, err := s.dbService.GetDB().DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(map[string]string{"status": "unavailable", "error": err.Error()})
		}
	}
	return c.JSON(map[string]string{"status": "ok"})
}

// EnableStreamableHttp mounts the MCP server at /mcp. Requests need a wallet
// session token, and the signed-in user is visible to the tools.
func (s *APIServer) EnableStreamableHttp() {
	if s.mcpServer == nil {
		log.Println("EnableStreamableHttp called without an MCP server")
		return
	}

	streamable := s.mcpServer.StreamableHTTPServer(s.authenticatedContext)
	s.app.Use("/mcp", middleware.AuthMiddleware(s.authConfig(false)))
	s.app.All("/mcp", adaptor.HTTPHandler(streamable))
}

func (s *APIServer) authConfig(optional bool) middleware.AuthConfig {
	return middleware.AuthConfig{
		TokenIssuer: s.tokenIssuer,
		Optional:    optional,
		SessionValidator: func(user *utils.AuthenticatedUser) error {
			_, err := s.walletService.LoadUser(user.SessionID)
			return err
		},
	}
}

func (s *APIServer) authenticatedContext(ctx context.Context, r *http.Request) context.Context {
	token := middleware.BearerToken(r.Header.Get(fiber.HeaderAuthorization))
	if token == "" || s.tokenIssuer == nil {
		return ctx
	}
	user, err := s.tokenIssuer.ValidateToken(token)
	if err != nil {
		return ctx
	}
	return utils.WithAuthenticatedUser(ctx, user)
}

// AvailablePort asks the OS for a free TCP port.
func AvailablePort() (int, error) {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, fmt.Errorf("failed to find available port: %w", err)
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port, nil
}

// Start starts the server on port, or on a random available port when port
// is nil.
func (s *APIServer) Start(port *int) (int, error) {
	if port == nil {
		p, err := AvailablePort()
		if err != nil {
			return 0, err
		}
		port = &p
	}
	s.port = *port

	go func() {
		if err := s.app.Listen(fmt.Sprintf(":%d", s.port)); err != nil {
			log.Printf("Error starting API server: %v\n", err)
		}
	}()

	return s.port, nil
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

func (s *APIServer) GetPort() int {
	return s.port
}

// GetFiberApp returns the underlying fiber app
func (s *APIServer) GetFiberApp() *fiber.App {
	return s.app
}

// SetMCPServer sets the MCP server instance
func (s *APIServer) SetMCPServer(mcpServer *mcp.MCPServer) {
	s.mcpServer = mcpServer
}

// GetMCPServer returns the MCP server instance
func (s *APIServer) GetMCPServer() *mcp.MCPServer {
	return s.mcpServer
}
