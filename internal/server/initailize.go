package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rxtech-lab/starpass-mcp/internal/config"
	"github.com/rxtech-lab/starpass-mcp/internal/hooks"
	"github.com/rxtech-lab/starpass-mcp/internal/metrics"
	"github.com/rxtech-lab/starpass-mcp/internal/models"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
	"github.com/rxtech-lab/starpass-mcp/internal/stacks"
	"github.com/rxtech-lab/starpass-mcp/internal/utils"
	"gorm.io/gorm"
)

// Services bundles everything the API and MCP servers are built from.
type Services struct {
	ChainService    services.ChainService
	TxService       services.TransactionService
	HookService     services.HookService
	DispatchService services.DispatchService
	QueryService    services.QueryService
	NFTService      services.NFTService
	WalletService   services.WalletService
	TokenIssuer     *utils.SessionTokenIssuer
	Registry        *prometheus.Registry
	AppDetails      models.AppDetails
}

// InitializeServices wires the services for cfg. serverPort is the port the
// API server listens on and is used for consent and sign-in URLs.
func InitializeServices(db *gorm.DB, cfg config.Config, serverPort int) (*Services, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	chainService := services.NewChainService(db)
	chain, err := chainService.EnsureChain(cfg.Network, cfg.APIURL)
	if err != nil {
		return nil, err
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return nil, err
		}
		log.Println("JWT_SECRET not set, session tokens will not survive a restart")
	}
	tokenIssuer := utils.NewSessionTokenIssuer(secret, cfg.SessionTTL)

	appDetails := models.AppDetails{
		Name: cfg.AppName,
		Icon: cfg.AppIcon(serverPort),
	}

	validationService := services.NewValidationService()
	txService := services.NewTransactionService(db, cfg.SessionTTL)
	hookService := services.NewHookService()
	dispatchService := services.NewDispatchService(txService, hookService, m, services.DispatchServiceConfig{
		BaseURL:    cfg.BaseURL,
		ServerPort: serverPort,
		SessionTTL: cfg.SessionTTL,
	})
	contractCallService := services.NewContractCallService(services.ContractTarget{
		ContractAddress: cfg.ContractAddress,
		ContractName:    cfg.ContractName,
		Network:         *chain,
		AppDetails:      appDetails,
	})
	queryService := services.NewQueryService(stacks.NewClient(chain.APIURL), cfg.ContractAddress, cfg.ContractName, m)
	nftService := services.NewNFTService(db, validationService, contractCallService, dispatchService, queryService, m)
	walletService := services.NewWalletService(db, validationService, tokenIssuer, services.WalletServiceConfig{
		BaseURL:    cfg.BaseURL,
		ServerPort: serverPort,
		SessionTTL: cfg.SessionTTL,
	})

	return &Services{
		ChainService:    chainService,
		TxService:       txService,
		HookService:     hookService,
		DispatchService: dispatchService,
		QueryService:    queryService,
		NFTService:      nftService,
		WalletService:   walletService,
		TokenIssuer:     tokenIssuer,
		Registry:        registry,
		AppDetails:      appDetails,
	}, nil
}

func InitializeHooks(db *gorm.DB) []services.Hook {
	return []services.Hook{
		hooks.NewActivityHook(db),
	}
}

func RegisterHooks(hookService services.HookService, registered ...services.Hook) error {
	for _, hook := range registered {
		if err := hookService.AddHook(hook); err != nil {
			return fmt.Errorf("failed to register hook: %w", err)
		}
	}
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
