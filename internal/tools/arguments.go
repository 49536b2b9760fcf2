package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
)

// errorResult turns a service error into a tool error the model can act on.
func errorResult(action string, err error) *mcp.CallToolResult {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", verr))
	}
	var qerr *services.QueryError
	if errors.As(err, &qerr) {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read from contract: %v", qerr))
	}
	return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err))
}

func jsonResult(summary string, v any) (*mcp.CallToolResult, error) {
	resultJSON, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(summary),
			mcp.NewTextContent(string(resultJSON)),
		},
	}, nil
}

func submissionResult(submission *services.Submission, description string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(fmt.Sprintf("%s transaction session created: %s", description, submission.SessionID)),
			mcp.NewTextContent("Please sign the contract call in the URL:"),
			mcp.NewTextContent(submission.URL),
		},
	}
}
