package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/setupwizard/internal/device"
)

// accountTypes maps tool arguments to device account types.
var accountTypes = map[string]string{
	"google": device.AccountTypeGoogle,
	"cm":     device.AccountTypeCM,
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("device-status",
			mcp.WithDescription("Report the simulated device's connectivity, SIM, accounts and provisioning flags"),
		),
		s.handleStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set-sim",
			mcp.WithDescription("Insert or remove the SIM card"),
			mcp.WithBoolean("present", mcp.Required(), mcp.Description("Whether a SIM is inserted")),
		),
		s.boolSetter("present", func(p *device.Profile, v bool) { p.SIM = v }),
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set-network",
			mcp.WithDescription("Connect or disconnect the network"),
			mcp.WithBoolean("connected", mcp.Required(), mcp.Description("Whether the device has connectivity")),
		),
		s.boolSetter("connected", func(p *device.Profile, v bool) { p.Network = v }),
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set-services",
			mcp.WithDescription("Make Google services available or unavailable"),
			mcp.WithBoolean("available", mcp.Required(), mcp.Description("Whether Google services are installed")),
		),
		s.boolSetter("available", func(p *device.Profile, v bool) { p.Services = v }),
	)

	s.mcpServer.AddTool(
		mcp.NewTool("add-account",
			mcp.WithDescription("Sign in: register an account on the device"),
			mcp.WithString("type", mcp.Required(), mcp.Enum("google", "cm"), mcp.Description("Account kind")),
		),
		s.handleAddAccount,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("remove-account",
			mcp.WithDescription("Sign out: remove an account from the device"),
			mcp.WithString("type", mcp.Required(), mcp.Enum("google", "cm"), mcp.Description("Account kind")),
		),
		s.handleRemoveAccount,
	)
}

// status is the device-status payload.
type status struct {
	Provisioned       bool     `json:"provisioned"`
	UserSetupComplete bool     `json:"user_setup_complete"`
	NetworkConnected  bool     `json:"network_connected"`
	WifiEnabled       bool     `json:"wifi_enabled"`
	SimPresent        bool     `json:"sim_present"`
	ServicesAvailable bool     `json:"services_available"`
	Accounts          []string `json:"accounts"`
}

// update reloads the profile, applies fn and saves it. A nil fn only reads.
func (s *Server) update(fn func(*device.Profile) error) (*device.Profile, error) {
	s.profileMu.Lock()
	defer s.profileMu.Unlock()

	p, err := device.LoadProfile(s.profilePath)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return p, nil
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := p.Save(); err != nil {
		return nil, err
	}
	return p, nil
}

// handleStatus returns the device state as JSON.
func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := s.update(nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read device profile: %v", err)), nil
	}

	out, err := json.Marshal(status{
		Provisioned:       p.GetInt(device.NamespaceGlobal, device.DeviceProvisioned, 0) == 1,
		UserSetupComplete: p.GetInt(device.NamespaceSecure, device.UserSetupComplete, 0) == 1,
		NetworkConnected:  p.Network,
		WifiEnabled:       p.Wifi,
		SimPresent:        p.SIM,
		ServicesAvailable: p.Services,
		Accounts:          p.Accounts,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// boolSetter builds a handler that writes one boolean argument into the profile.
func (s *Server) boolSetter(arg string, set func(*device.Profile, bool)) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			return mcp.NewToolResultError("no arguments provided"), nil
		}
		value, ok := args[arg].(bool)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("missing or non-boolean '%s' parameter", arg)), nil
		}

		if _, err := s.update(func(p *device.Profile) error {
			set(p, value)
			return nil
		}); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to update device profile: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s set to %v", arg, value)), nil
	}
}

func accountArg(request mcp.CallToolRequest) (string, string) {
	args := request.GetArguments()
	if args == nil {
		return "", "no arguments provided"
	}
	kind, ok := args["type"].(string)
	if !ok || kind == "" {
		return "", "missing 'type' parameter"
	}
	accountType, ok := accountTypes[kind]
	if !ok {
		return "", fmt.Sprintf("unknown account type %q: use google or cm", kind)
	}
	return accountType, ""
}

// handleAddAccount registers an account of the requested kind.
func (s *Server) handleAddAccount(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	accountType, problem := accountArg(request)
	if problem != "" {
		return mcp.NewToolResultError(problem), nil
	}

	if _, err := s.update(func(p *device.Profile) error {
		if !slices.Contains(p.Accounts, accountType) {
			p.Accounts = append(p.Accounts, accountType)
		}
		return nil
	}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update device profile: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added %s account", accountType)), nil
}

// handleRemoveAccount removes an account of the requested kind.
func (s *Server) handleRemoveAccount(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	accountType, problem := accountArg(request)
	if problem != "" {
		return mcp.NewToolResultError(problem), nil
	}

	removed := false
	if _, err := s.update(func(p *device.Profile) error {
		if i := slices.Index(p.Accounts, accountType); i >= 0 {
			p.Accounts = slices.Delete(p.Accounts, i, i+1)
			removed = true
		}
		return nil
	}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update device profile: %v", err)), nil
	}
	if !removed {
		return mcp.NewToolResultText(fmt.Sprintf("no %s account on the device", accountType)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed %s account", accountType)), nil
}
