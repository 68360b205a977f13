package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/setupwizard/internal/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestServer creates a server over a fresh profile on disk.
func setupTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "device.yml")
	p := device.DefaultProfile(device.Component{Package: "org.cyanogenmod.setupwizard", Name: "SetupWizardActivity"}, "vendor")
	p.Path = path
	require.NoError(t, p.Save())
	return New(path), path
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// extractText extracts text from CallToolResult.Content[0]
func extractText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := result.Content[0].(mcp.TextContent); ok {
		return textContent.Text
	}
	return ""
}

func load(t *testing.T, path string) *device.Profile {
	t.Helper()
	p, err := device.LoadProfile(path)
	require.NoError(t, err)
	return p
}

func TestHandleStatus(t *testing.T) {
	t.Parallel()
	srv, _ := setupTestServer(t)

	result, err := srv.handleStatus(context.Background(), call("device-status", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var got status
	require.NoError(t, json.Unmarshal([]byte(extractText(result)), &got))
	assert.False(t, got.Provisioned)
	assert.False(t, got.SimPresent)
	assert.True(t, got.ServicesAvailable)
	assert.Empty(t, got.Accounts)
}

func TestBoolSetters(t *testing.T) {
	t.Parallel()
	srv, path := setupTestServer(t)
	ctx := context.Background()

	result, err := srv.boolSetter("present", func(p *device.Profile, v bool) { p.SIM = v })(ctx, call("set-sim", map[string]any{"present": true}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "present set to true", extractText(result))
	assert.True(t, load(t, path).SIM)

	result, err = srv.boolSetter("connected", func(p *device.Profile, v bool) { p.Network = v })(ctx, call("set-network", map[string]any{"connected": "yes"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.False(t, load(t, path).Network)

	result, err = srv.boolSetter("connected", func(p *device.Profile, v bool) { p.Network = v })(ctx, call("set-network", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleAccounts(t *testing.T) {
	t.Parallel()
	srv, path := setupTestServer(t)
	ctx := context.Background()

	result, err := srv.handleAddAccount(ctx, call("add-account", map[string]any{"type": "cm"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	_, err = srv.handleAddAccount(ctx, call("add-account", map[string]any{"type": "cm"}))
	require.NoError(t, err)
	assert.Equal(t, []string{device.AccountTypeCM}, load(t, path).Accounts, "adding twice keeps one account")

	result, err = srv.handleAddAccount(ctx, call("add-account", map[string]any{"type": "myspace"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "unknown account type")

	result, err = srv.handleRemoveAccount(ctx, call("remove-account", map[string]any{"type": "cm"}))
	require.NoError(t, err)
	assert.Equal(t, "removed com.cyanogenmod.id account", extractText(result))
	assert.Empty(t, load(t, path).Accounts)

	result, err = srv.handleRemoveAccount(ctx, call("remove-account", map[string]any{"type": "google"}))
	require.NoError(t, err)
	assert.Contains(t, extractText(result), "no com.google account")
}

func TestMissingProfile(t *testing.T) {
	t.Parallel()
	srv := New(filepath.Join(t.TempDir(), "missing.yml"))

	result, err := srv.handleStatus(context.Background(), call("device-status", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestStartStop(t *testing.T) {
	t.Parallel()
	srv, _ := setupTestServer(t)

	port, err := srv.Start(context.Background())
	require.NoError(t, err)
	assert.NotZero(t, port)
	assert.Contains(t, srv.URL(), "/mcp")

	_, err = srv.Start(context.Background())
	assert.Error(t, err, "already started")

	require.NoError(t, srv.Stop())
	require.NoError(t, srv.Stop())
}
