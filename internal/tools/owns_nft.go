package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
	"github.com/rxtech-lab/starpass-mcp/internal/utils"
)

type ownsNFTTool struct {
	nftService services.NFTService
}

type OwnsNFTArguments struct {
	Owner utils.TextArg `json:"owner"`
	NFTID utils.TextArg `json:"nft_id"`
}

func NewOwnsNFTTool(nftService services.NFTService) *ownsNFTTool {
	return &ownsNFTTool{nftService: nftService}
}

func (o *ownsNFTTool) GetTool() mcp.Tool {
	return mcp.NewTool("owns_nft",
		mcp.WithDescription("Check whether an address owns a Starpass NFT (read-only)"),
		mcp.WithString("owner",
			mcp.Required(),
			mcp.Description("Stacks mainnet address to check (SP...)"),
		),
		mcp.WithString("nft_id",
			mcp.Required(),
			mcp.Description("ID of the NFT, a whole number starting at 1"),
		),
	)
}

func (o *ownsNFTTool) GetHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args OwnsNFTArguments
		if err := request.BindArguments(&args); err != nil {
			return nil, fmt.Errorf("failed to bind arguments: %w", err)
		}

		owns, err := o.nftService.Owns(ctx, map[string]string{
			services.FieldOwner: string(args.Owner),
			services.FieldNFTID: string(args.NFTID),
		})
		if err != nil {
			return errorResult("check nft ownership", err), nil
		}

		summary := fmt.Sprintf("%s does not own NFT %s", args.Owner, args.NFTID)
		if owns {
			summary = fmt.Sprintf("%s owns NFT %s", args.Owner, args.NFTID)
		}
		return jsonResult(summary, map[string]bool{"owns": owns})
	}
}
