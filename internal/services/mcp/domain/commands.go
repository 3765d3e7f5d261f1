package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/louisbranch/cypress-simulator/internal/simulator/command"
)

const tracerName = "github.com/louisbranch/cypress-simulator/internal/services/mcp/domain"

// CommandsResourceURI addresses the command catalog resource.
const CommandsResourceURI = "cypress://commands"

// Classifier turns a raw entry into a result.
type Classifier interface {
	Classify(raw string) command.Result
}

// Catalog lists the registered commands.
type Catalog interface {
	Catalog() []command.CatalogEntry
}

// SimulateCommandInput represents the MCP tool input for simulating a command.
type SimulateCommandInput struct {
	Command string `json:"command" jsonschema:"the text typed into the simulator, for example cy.get('#id')"`
}

// SimulateCommandResult represents the MCP tool output for a simulated command.
type SimulateCommandResult struct {
	Kind     string `json:"kind" jsonschema:"result kind (success, error, warning, help)"`
	Headline string `json:"headline" jsonschema:"first line shown in the output area"`
	Detail   string `json:"detail,omitempty" jsonschema:"remaining output, may span lines"`
	Message  string `json:"message" jsonschema:"headline and detail as rendered"`
	LinkText string `json:"link_text,omitempty" jsonschema:"text of the documentation link, if any"`
	LinkURL  string `json:"link_url,omitempty" jsonschema:"URL of the documentation link, if any"`
}

// SimulateCommandTool defines the MCP tool schema for simulating a command.
func SimulateCommandTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "simulate_command",
		Description: "Classifies a Cypress command the way the simulator's Run button does and returns the output area content.",
	}
}

// SimulateCommandHandler executes a simulate request.
func SimulateCommandHandler(classifier Classifier) mcp.ToolHandlerFor[SimulateCommandInput, SimulateCommandResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SimulateCommandInput) (*mcp.CallToolResult, SimulateCommandResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, SimulateCommandResult{}, err
		}
		if strings.TrimSpace(input.Command) == "" {
			return nil, SimulateCommandResult{}, fmt.Errorf("command is required")
		}

		_, span := otel.Tracer(tracerName).Start(ctx, "mcp.simulate_command")
		defer span.End()

		result := classifier.Classify(input.Command)
		span.SetAttributes(
			attribute.String("simulator.invocation_id", invocationID),
			attribute.String("simulator.result_kind", string(result.Kind)),
		)

		out := SimulateCommandResult{
			Kind:     string(result.Kind),
			Headline: result.Headline,
			Detail:   result.Detail,
			Message:  result.Message(),
		}
		if result.Link != nil {
			out.LinkText = result.Link.Text
			out.LinkURL = result.Link.URL
		}
		return CallToolResultWithMetadata(invocationID), out, nil
	}
}

// ListCommandsInput represents the MCP tool input for listing commands.
type ListCommandsInput struct {
	ImplementedOnly bool `json:"implemented_only,omitempty" jsonschema:"only list commands that produce a simulated result"`
}

// CommandInfo describes one registered command.
type CommandInfo struct {
	Name        string `json:"name" jsonschema:"command name including the cy. prefix"`
	Usage       string `json:"usage,omitempty" jsonschema:"example invocation"`
	Description string `json:"description,omitempty" jsonschema:"what the simulated command reports"`
	Implemented bool   `json:"implemented" jsonschema:"false when the simulator answers with a not-implemented warning"`
}

// ListCommandsResult represents the MCP tool output for listing commands.
type ListCommandsResult struct {
	Commands []CommandInfo `json:"commands" jsonschema:"registered commands ordered by name"`
}

// ListCommandsTool defines the MCP tool schema for listing commands.
func ListCommandsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_commands",
		Description: "Lists the Cypress commands the simulator recognizes.",
	}
}

// ListCommandsHandler executes a list request.
func ListCommandsHandler(catalog Catalog) mcp.ToolHandlerFor[ListCommandsInput, ListCommandsResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ListCommandsInput) (*mcp.CallToolResult, ListCommandsResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, ListCommandsResult{}, err
		}
		return CallToolResultWithMetadata(invocationID), ListCommandsResult{Commands: commandInfos(catalog, input.ImplementedOnly)}, nil
	}
}

func commandInfos(catalog Catalog, implementedOnly bool) []CommandInfo {
	entries := catalog.Catalog()
	infos := make([]CommandInfo, 0, len(entries))
	for _, entry := range entries {
		if implementedOnly && !entry.Implemented {
			continue
		}
		infos = append(infos, CommandInfo{
			Name:        entry.Name,
			Usage:       entry.Usage,
			Description: entry.Description,
			Implemented: entry.Implemented,
		})
	}
	return infos
}

// CommandsResource defines the command catalog resource.
func CommandsResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "commands",
		Title:       "Cypress Commands",
		Description: "Readable catalog of the commands the simulator recognizes",
		MIMEType:    "application/json",
		URI:         CommandsResourceURI,
	}
}

// CommandsResourceHandler reads the command catalog.
func CommandsResourceHandler(catalog Catalog) mcp.ResourceHandler {
	return func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := CommandsResourceURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		if uri != CommandsResourceURI {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		data, err := json.MarshalIndent(ListCommandsResult{Commands: commandInfos(catalog, false)}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal command catalog: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}
