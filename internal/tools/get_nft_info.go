package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
	"github.com/rxtech-lab/starpass-mcp/internal/utils"
)

type getNFTInfoTool struct {
	nftService services.NFTService
}

type GetNFTInfoArguments struct {
	NFTID utils.TextArg `json:"nft_id"`
}

func NewGetNFTInfoTool(nftService services.NFTService) *getNFTInfoTool {
	return &getNFTInfoTool{nftService: nftService}
}

func (g *getNFTInfoTool) GetTool() mcp.Tool {
	return mcp.NewTool("get_nft_info",
		mcp.WithDescription("Read the current holder, tier and metadata of a Starpass NFT (read-only)"),
		mcp.WithString("nft_id",
			mcp.Required(),
			mcp.Description("ID of the NFT, a whole number starting at 1"),
		),
	)
}

func (g *getNFTInfoTool) GetHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args GetNFTInfoArguments
		if err := request.BindArguments(&args); err != nil {
			return nil, fmt.Errorf("failed to bind arguments: %w", err)
		}

		info, err := g.nftService.Info(ctx, map[string]string{services.FieldNFTID: string(args.NFTID)})
		if err != nil {
			return errorResult("get nft info", err), nil
		}
		return jsonResult(fmt.Sprintf("NFT %d is held by %s:", info.NFTID, info.CurrentHolder), info)
	}
}
