package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
	"github.com/rxtech-lab/starpass-mcp/internal/tools"
)

type MCPServer struct {
	server *server.MCPServer
}

type toolProvider interface {
	GetTool() mcp.Tool
	GetHandler() server.ToolHandlerFunc
}

func NewMCPServer(nftService services.NFTService, txService services.TransactionService) *MCPServer {
	mcpServer := &MCPServer{}
	mcpServer.InitializeTools(nftService, txService)
	return mcpServer
}

func (s *MCPServer) InitializeTools(nftService services.NFTService, txService services.TransactionService) {
	srv := server.NewMCPServer(
		"Starpass NFT MCP Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(true),
	)

	srv.AddPrompt(mcp.NewPrompt("starpass-mcp-usage",
		mcp.WithPromptDescription("Instructions and guidance for using Starpass NFT MCP tools"),
		mcp.WithArgument("tool_category",
			mcp.ArgumentDescription("Category of tools to get instructions for (write, read, session, or all)"),
			mcp.RequiredArgument(),
		),
	), func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		category := request.Params.Arguments["tool_category"]
		if category == "" {
			return nil, fmt.Errorf("tool_category is required")
		}

		return mcp.NewGetPromptResult(
			fmt.Sprintf("Starpass NFT MCP Tools - %s", category),
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(
					mcp.RoleUser,
					mcp.NewTextContent(getToolInstructions(category)),
				),
			},
		), nil
	})

	providers := []toolProvider{
		// Write tools, signed by the user's wallet
		tools.NewMintNFTTool(nftService),
		tools.NewTransferNFTTool(nftService),
		tools.NewLeaseNFTTool(nftService),

		// Read-only tools
		tools.NewGetNFTInfoTool(nftService),
		tools.NewGetTotalNFTsTool(nftService),
		tools.NewOwnsNFTTool(nftService),

		// Session tools
		tools.NewGetTransactionStatusTool(txService),
		tools.NewListNFTActivityTool(nftService),
	}
	for _, p := range providers {
		srv.AddTool(p.GetTool(), p.GetHandler())
	}

	s.server = srv
}

func getToolInstructions(category string) string {
	switch category {
	case "write":
		return `Write Tools:

1. mint_nft - Mint a new Starpass NFT
   Usage: Provide recipient (SP address), tier (0-10), metadata (printable ASCII) and royalty_percentage (0-100)

2. transfer_nft - Transfer an NFT to another address
   Usage: Provide nft_id (1 or more) and recipient

3. lease_nft - Lease an NFT to another address
   Usage: Provide nft_id, lessee and lease_duration (1 or more)

Each write tool returns a URL. The user opens it and signs the contract call with their Stacks wallet.`

	case "read":
		return `Read-only Tools:

1. get_nft_info - Current holder, tier and metadata of an NFT
2. get_total_nfts - Number of NFTs minted so far
3. owns_nft - Whether an address owns an NFT

Read-only tools call the contract through the Stacks API and never need a wallet.`

	case "session":
		return `Session Tools:

1. get_transaction_status - Status of a mint, transfer or lease session (pending, success or failed)
   Usage: Call it with the session_id after the user opened the signing URL

2. list_nft_activity - Mints, transfers and leases reported by the wallet, newest first
   Usage: Set mine to true to only see the signed-in user's activity`

	case "all":
		return `Starpass NFT MCP Tools Overview:

This MCP server provides 8 tools for the Starpass NFT contract on Stacks:

WRITE (3 tools):
- mint_nft: Mint a new NFT
- transfer_nft: Transfer an NFT
- lease_nft: Lease an NFT

READ (3 tools):
- get_nft_info: View holder, tier and metadata
- get_total_nfts: Count minted NFTs
- owns_nft: Check ownership

SESSION (2 tools):
- get_transaction_status: Follow a signing session
- list_nft_activity: View submitted transactions

Inputs are validated before anything reaches the wallet.
No private keys are handled by the server - all signing happens in the user's wallet.`

	default:
		return `Invalid category. Available categories: write, read, session, all`
	}
}

// GetServer returns the underlying mcp-go server
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.server
}

func (s *MCPServer) StartStdioServer() error {
	return server.ServeStdio(s.server)
}

// StreamableHTTPServer serves the MCP server over streamable HTTP. contextFunc
// runs for every request and may attach the authenticated user.
func (s *MCPServer) StreamableHTTPServer(contextFunc server.HTTPContextFunc) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s.server,
		server.WithHTTPContextFunc(contextFunc),
		server.WithStateLess(true),
	)
}
