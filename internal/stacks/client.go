package stacks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rxtech-lab/starpass-mcp/internal/clarity"
)

// ReadOnlyCall addresses a read-only contract function.
type ReadOnlyCall struct {
	ContractAddress string
	ContractName    string
	FunctionName    string
	FunctionArgs    []clarity.Value
	// Sender is the principal the call is evaluated as. Defaults to the
	// contract address.
	Sender string
}

// Client talks to the Stacks node HTTP API.
type Client struct {
	URL     string
	client  *http.Client
	timeout time.Duration
}

// NewClient creates a new client for the node API at the given URL.
func NewClient(apiURL string) *Client {
	return &Client{
		URL:     strings.TrimRight(apiURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		timeout: 30 * time.Second,
	}
}

// SetTimeout sets the timeout for API requests
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
	c.client.Timeout = timeout
}

type callReadRequest struct {
	Sender    string   `json:"sender"`
	Arguments []string `json:"arguments"`
}

type callReadResponse struct {
	Okay   bool   `json:"okay"`
	Result string `json:"result,omitempty"`
	Cause  string `json:"cause,omitempty"`
}

// CallReadOnly evaluates a read-only function and decodes its Clarity result.
func (c *Client) CallReadOnly(ctx context.Context, call ReadOnlyCall) (clarity.Value, error) {
	args := make([]string, len(call.FunctionArgs))
	for i, arg := range call.FunctionArgs {
		encoded, err := arg.Hex()
		if err != nil {
			return clarity.Value{}, fmt.Errorf("failed to encode argument %d: %w", i, err)
		}
		args[i] = encoded
	}

	sender := call.Sender
	if sender == "" {
		sender = call.ContractAddress
	}

	jsonData, err := json.Marshal(callReadRequest{Sender: sender, Arguments: args})
	if err != nil {
		return clarity.Value{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/contracts/call-read/%s/%s/%s",
		c.URL,
		url.PathEscape(call.ContractAddress),
		url.PathEscape(call.ContractName),
		url.PathEscape(call.FunctionName),
	)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return clarity.Value{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return clarity.Value{}, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return clarity.Value{}, fmt.Errorf("read-only call %s returned HTTP %d", call.FunctionName, resp.StatusCode)
	}

	var response callReadResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return clarity.Value{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if !response.Okay {
		return clarity.Value{}, fmt.Errorf("read-only call %s failed: %s", call.FunctionName, response.Cause)
	}

	value, err := clarity.DeserializeHex(response.Result)
	if err != nil {
		return clarity.Value{}, fmt.Errorf("failed to decode result of %s: %w", call.FunctionName, err)
	}
	return value, nil
}
