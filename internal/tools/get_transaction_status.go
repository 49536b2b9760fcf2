package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
)

type getTransactionStatusTool struct {
	txService services.TransactionService
}

type GetTransactionStatusArguments struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
}

type TransactionStatusResult struct {
	SessionID     string `json:"session_id"`
	Operation     string `json:"operation"`
	FunctionName  string `json:"function_name"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
	Network       string `json:"network"`
	ExpiresAt     string `json:"expires_at"`
}

func NewGetTransactionStatusTool(txService services.TransactionService) *getTransactionStatusTool {
	return &getTransactionStatusTool{txService: txService}
}

func (g *getTransactionStatusTool) GetTool() mcp.Tool {
	return mcp.NewTool("get_transaction_status",
		mcp.WithDescription("Get the status of a transaction session created by mint_nft, transfer_nft or lease_nft"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session ID returned when the transaction was created"),
		),
	)
}

func (g *getTransactionStatusTool) GetHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args GetTransactionStatusArguments
		if err := request.BindArguments(&args); err != nil {
			return nil, fmt.Errorf("failed to bind arguments: %w", err)
		}

		if err := validator.New().Struct(args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		session, err := g.txService.GetTransactionSession(args.SessionID)
		if err != nil {
			return errorResult("get transaction session", err), nil
		}

		return jsonResult(fmt.Sprintf("Transaction session %s is %s:", session.ID, session.TransactionStatus), TransactionStatusResult{
			SessionID:     session.ID,
			Operation:     string(session.Call.Operation),
			FunctionName:  session.Call.FunctionName,
			Status:        string(session.TransactionStatus),
			TransactionID: session.TransactionID,
			FailureReason: session.FailureReason,
			Network:       session.Chain.NetworkID,
			ExpiresAt:     session.ExpiresAt.Format(time.RFC3339),
		})
	}
}
