package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	defaultLeaderboardSort  = "money"
)

func normalizeLeaderboardSort(v string) string {
	if v == "" {
		return defaultLeaderboardSort
	}
	return v
}

func isAllowedLeaderboardSort(v string) bool {
	return v == "money" || v == "rebirths" || v == "clicks" || v == "wins"
}

func clampLeaderboardLimit(limit int) int {
	if limit <= 0 {
		return defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		return maxLeaderboardLimit
	}
	return limit
}

// authOptions are the credentials every tool takes.
func authOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("username", mcp.Required(), mcp.Description("Account username")),
		mcp.WithString("token", mcp.Required(), mcp.Description("Session token returned by login")),
	}
}

func newAuthedTool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	all := append([]mcp.ToolOption{mcp.WithDescription(description)}, authOptions()...)
	return mcp.NewTool(name, append(all, opts...)...)
}
