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

type leaseNFTTool struct {
	nftService services.NFTService
}

type LeaseNFTArguments struct {
	NFTID         utils.TextArg `json:"nft_id"`
	Lessee        utils.TextArg `json:"lessee"`
	LeaseDuration utils.TextArg `json:"lease_duration"`
}

func NewLeaseNFTTool(nftService services.NFTService) *leaseNFTTool {
	return &leaseNFTTool{nftService: nftService}
}

func (l *leaseNFTTool) GetTool() mcp.Tool {
	return mcp.NewTool("lease_nft",
		mcp.WithDescription("Lease a Starpass NFT to another address for a number of blocks. Returns the URL where the holder signs the lease."),
		mcp.WithString("nft_id",
			mcp.Required(),
			mcp.Description("ID of the NFT, a whole number starting at 1"),
		),
		mcp.WithString("lessee",
			mcp.Required(),
			mcp.Description("Stacks mainnet address receiving the lease (SP...)"),
		),
		mcp.WithString("lease_duration",
			mcp.Required(),
			mcp.Description("Lease length in blocks, a whole number starting at 1"),
		),
	)
}

func (l *leaseNFTTool) GetHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args LeaseNFTArguments
		if err := request.BindArguments(&args); err != nil {
			return nil, fmt.Errorf("failed to bind arguments: %w", err)
		}

		submission, err := l.nftService.Submit(ctx, models.OperationLease, map[string]string{
			services.FieldNFTID:         string(args.NFTID),
			services.FieldLessee:        string(args.Lessee),
			services.FieldLeaseDuration: string(args.LeaseDuration),
		})
		if err != nil {
			return errorResult("create lease transaction", err), nil
		}
		return submissionResult(submission, "Lease"), nil
	}
}
