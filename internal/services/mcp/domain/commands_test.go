package domain

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/cypress-simulator/internal/simulator/command"
)

func TestSimulateCommandHandler(t *testing.T) {
	t.Parallel()

	handler := SimulateCommandHandler(command.New(nil))
	tests := []struct {
		input    string
		kind     command.Kind
		contains string
	}{
		{input: "cy.log('Yay!')", kind: command.KindSuccess, contains: "Logged message 'Yay!'"},
		{input: "cy.run()", kind: command.KindError, contains: "Invalid Cypress command: cy.run()"},
		{input: "cy.visit", kind: command.KindError, contains: "Missing parentheses"},
		{input: "help", kind: command.KindHelp, contains: "Common Cypress commands"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			res, out, err := handler(context.Background(), nil, SimulateCommandInput{Command: tc.input})
			if err != nil {
				t.Fatalf("handler: %v", err)
			}
			if out.Kind != string(tc.kind) {
				t.Fatalf("kind = %q, want %q", out.Kind, tc.kind)
			}
			if !strings.Contains(out.Message, tc.contains) {
				t.Fatalf("message %q does not contain %q", out.Message, tc.contains)
			}
			if res == nil || res.Meta[InvocationIDKey] == "" {
				t.Fatal("expected invocation id in result metadata")
			}
		})
	}
}

func TestSimulateCommandHelpLink(t *testing.T) {
	t.Parallel()

	_, out, err := SimulateCommandHandler(command.New(nil))(context.Background(), nil, SimulateCommandInput{Command: "help"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if out.LinkURL != command.DocsURL {
		t.Fatalf("link url = %q, want %q", out.LinkURL, command.DocsURL)
	}
}

func TestSimulateCommandRequiresInput(t *testing.T) {
	t.Parallel()

	if _, _, err := SimulateCommandHandler(command.New(nil))(context.Background(), nil, SimulateCommandInput{Command: "  "}); err == nil {
		t.Fatal("expected error for blank command")
	}
}

func TestListCommandsHandler(t *testing.T) {
	t.Parallel()

	registry := command.DefaultRegistry()
	_, all, err := ListCommandsHandler(registry)(context.Background(), nil, ListCommandsInput{})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(all.Commands) != len(registry.Catalog()) {
		t.Fatalf("listed %d commands, want %d", len(all.Commands), len(registry.Catalog()))
	}

	_, implemented, err := ListCommandsHandler(registry)(context.Background(), nil, ListCommandsInput{ImplementedOnly: true})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	for _, info := range implemented.Commands {
		if !info.Implemented {
			t.Fatalf("%s is not implemented", info.Name)
		}
	}
	if len(implemented.Commands) > len(all.Commands) {
		t.Fatal("filter must not add commands")
	}
}

func TestCommandsResourceHandler(t *testing.T) {
	t.Parallel()

	handler := CommandsResourceHandler(command.DefaultRegistry())
	res, err := handler(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: CommandsResourceURI}})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(res.Contents) != 1 || res.Contents[0].MIMEType != "application/json" {
		t.Fatalf("unexpected contents %+v", res.Contents)
	}
	var payload ListCommandsResult
	if err := json.Unmarshal([]byte(res.Contents[0].Text), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Commands) == 0 {
		t.Fatal("catalog is empty")
	}

	if _, err := handler(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "cypress://other"}}); err == nil {
		t.Fatal("expected not found for unknown uri")
	}
}
