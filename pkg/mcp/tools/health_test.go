package tools

import (
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/server"
)

func TestHealthTool_Execute(t *testing.T) {
	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	RegisterHealthTool(mcpServer, "1.2.3", "groq", "llama-3.1-70b-versatile")

	response := callTool(t, mcpServer, "health", nil)

	var health healthResult
	if err := json.Unmarshal([]byte(response.text(t)), &health); err != nil {
		t.Fatalf("failed to unmarshal health result: %v", err)
	}

	if health.Status != "ok" {
		t.Errorf("expected status 'ok', got '%s'", health.Status)
	}
	if health.Version != "1.2.3" {
		t.Errorf("expected version '1.2.3', got '%s'", health.Version)
	}
	if health.Provider != "groq" || health.Model != "llama-3.1-70b-versatile" {
		t.Errorf("unexpected model info: %+v", health)
	}
}

func TestHealthTool_VersionWithSpecialChars(t *testing.T) {
	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	version := `1.0.0-beta"test`
	RegisterHealthTool(mcpServer, version, "claude", "")

	response := callTool(t, mcpServer, "health", nil)

	var health healthResult
	if err := json.Unmarshal([]byte(response.text(t)), &health); err != nil {
		t.Fatalf("failed to unmarshal health result: %v", err)
	}
	if health.Version != version {
		t.Errorf("expected version %q, got %q", version, health.Version)
	}
}
