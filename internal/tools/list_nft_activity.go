package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
	"github.com/rxtech-lab/starpass-mcp/internal/utils"
)

type listNFTActivityTool struct {
	nftService services.NFTService
}

type ListNFTActivityArguments struct {
	Limit int  `json:"limit,omitempty"`
	Mine  bool `json:"mine,omitempty"`
}

func NewListNFTActivityTool(nftService services.NFTService) *listNFTActivityTool {
	return &listNFTActivityTool{nftService: nftService}
}

func (l *listNFTActivityTool) GetTool() mcp.Tool {
	return mcp.NewTool("list_nft_activity",
		mcp.WithDescription("List mints, transfers and leases the wallet reported as submitted, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries, defaults to 100"),
		),
		mcp.WithBoolean("mine",
			mcp.Description("Only list activity of the signed-in user"),
		),
	)
}

func (l *listNFTActivityTool) GetHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListNFTActivityArguments
		if err := request.BindArguments(&args); err != nil {
			return nil, fmt.Errorf("failed to bind arguments: %w", err)
		}

		var userID *string
		if args.Mine {
			user, err := utils.GetAuthenticatedUser(ctx)
			if err != nil {
				return mcp.NewToolResultError("Sign in with a wallet to list your own activity"), nil
			}
			userID = &user.Sub
		}

		activities, err := l.nftService.ListActivity(userID, args.Limit)
		if err != nil {
			return errorResult("list nft activity", err), nil
		}
		return jsonResult(fmt.Sprintf("Found %d activity entries:", len(activities)), activities)
	}
}
