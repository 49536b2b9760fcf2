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

type transferNFTTool struct {
	nftService services.NFTService
}

type TransferNFTArguments struct {
	NFTID     utils.TextArg `json:"nft_id"`
	Recipient utils.TextArg `json:"recipient"`
}

func NewTransferNFTTool(nftService services.NFTService) *transferNFTTool {
	return &transferNFTTool{nftService: nftService}
}

func (t *transferNFTTool) GetTool() mcp.Tool {
	return mcp.NewTool("transfer_nft",
		mcp.WithDescription("Transfer a Starpass NFT to another address. Returns the URL where the current holder signs the transfer."),
		mcp.WithString("nft_id",
			mcp.Required(),
			mcp.Description("ID of the NFT, a whole number starting at 1"),
		),
		mcp.WithString("recipient",
			mcp.Required(),
			mcp.Description("Stacks mainnet address of the new holder (SP...)"),
		),
	)
}

func (t *transferNFTTool) GetHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args TransferNFTArguments
		if err := request.BindArguments(&args); err != nil {
			return nil, fmt.Errorf("failed to bind arguments: %w", err)
		}

		submission, err := t.nftService.Submit(ctx, models.OperationTransfer, map[string]string{
			services.FieldNFTID:     string(args.NFTID),
			services.FieldRecipient: string(args.Recipient),
		})
		if err != nil {
			return errorResult("create transfer transaction", err), nil
		}
		return submissionResult(submission, "Transfer"), nil
	}
}
