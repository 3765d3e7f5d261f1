package domain

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/cypress-simulator/internal/platform/id"
)

// InvocationIDKey is the result metadata key carrying the tool invocation id.
const InvocationIDKey = "invocation_id"

// NewInvocationID returns an identifier for one tool call.
func NewInvocationID() (string, error) {
	invocationID, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("generate invocation id: %w", err)
	}
	return invocationID, nil
}

// CallToolResultWithMetadata returns a result envelope carrying the
// invocation id. Structured output is filled in by the SDK.
func CallToolResultWithMetadata(invocationID string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Meta: map[string]any{
			InvocationIDKey: invocationID,
		},
	}
}
