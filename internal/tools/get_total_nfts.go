package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
)

type getTotalNFTsTool struct {
	nftService services.NFTService
}

func NewGetTotalNFTsTool(nftService services.NFTService) *getTotalNFTsTool {
	return &getTotalNFTsTool{nftService: nftService}
}

func (g *getTotalNFTsTool) GetTool() mcp.Tool {
	return mcp.NewTool("get_total_nfts",
		mcp.WithDescription("Read how many Starpass NFTs have been minted (read-only)"),
	)
}

func (g *getTotalNFTsTool) GetHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		total, err := g.nftService.Total(ctx)
		if err != nil {
			return errorResult("get total nfts", err), nil
		}
		return jsonResult("Total minted NFTs:", map[string]uint64{"total": total})
	}
}
