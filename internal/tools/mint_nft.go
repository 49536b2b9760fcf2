package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/starpass-mcp/internal/models"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
	"github.com/rxtech-lab/starpass-mcp/internal/utils"
)

type mintNFTTool struct {
	nftService services.NFTService
}

type MintNFTArguments struct {
	Recipient         utils.TextArg `json:"recipient"`
	Tier              utils.TextArg `json:"tier"`
	Metadata          utils.TextArg `json:"metadata"`
	RoyaltyPercentage utils.TextArg `json:"royalty_percentage"`
}

func NewMintNFTTool(nftService services.NFTService) *mintNFTTool {
	return &mintNFTTool{nftService: nftService}
}

func (m *mintNFTTool) GetTool() mcp.Tool {
	return mcp.NewTool("mint_nft",
		mcp.WithDescription("Mint a new Starpass NFT. Creates a transaction session and returns the URL where the user signs the mint with their Stacks wallet."),
		mcp.WithString("recipient",
			mcp.Required(),
			mcp.Description("Stacks mainnet address receiving the NFT (SP...)"),
		),
		mcp.WithString("tier",
			mcp.Required(),
			mcp.Description("Membership tier, a whole number from 0 to 10"),
		),
		mcp.WithString("metadata",
			mcp.Required(),
			mcp.Description("Metadata URI or text, printable ASCII only"),
		),
		mcp.WithString("royalty_percentage",
			mcp.Required(),
			mcp.Description("Royalty paid on resale, a whole number from 0 to 100"),
		),
	)
}

func (m *mintNFTTool) GetHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args MintNFTArguments
		if err := request.BindArguments(&args); err != nil {
			return nil, fmt.Errorf("failed to bind arguments: %w", err)
		}

		submission, err := m.nftService.Submit(ctx, models.OperationMint, map[string]string{
			services.FieldRecipient:         string(args.Recipient),
			services.FieldTier:              string(args.Tier),
			services.FieldMetadata:          string(args.Metadata),
			services.FieldRoyaltyPercentage: string(args.RoyaltyPercentage),
		})
		if err != nil {
			return errorResult("create mint transaction", err), nil
		}
		return submissionResult(submission, "Mint"), nil
	}
}
