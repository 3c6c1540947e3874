package mcpserver

import (
	"context"

	"neon-tycoon/internal/game/viewmodel"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPublicTools() {
	s.mcpServer.AddTool(
		newAuthedTool(
			"get_leaderboard",
			"Get the player leaderboard",
			mcp.WithString("sort", mcp.Description("money|rebirths|clicks|wins")),
			mcp.WithNumber("limit", mcp.Description("Rows, default 10, max 100")),
		),
		s.handleGetLeaderboard,
	)

	s.mcpServer.AddTool(
		newAuthedTool(
			"list_upgrades",
			"List upgrades with the caller's owned counts, prices and availability",
		),
		s.handleListUpgrades,
	)
}

func (s *Server) handleGetLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, errResp := s.authSession(request); errResp != nil {
		return errResp, nil
	}
	sortBy := normalizeLeaderboardSort(request.GetString("sort", ""))
	if !isAllowedLeaderboardSort(sortBy) {
		return toolError("invalid_request", "sort must be money|rebirths|clicks|wins"), nil
	}
	limit := clampLeaderboardLimit(request.GetInt("limit", defaultLeaderboardLimit))
	resp, err := s.publicSvc.Leaderboard(ctx, sortBy, limit)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleListUpgrades(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResp := s.authSession(request)
	if errResp != nil {
		return errResp, nil
	}
	snap := sess.Snapshot()
	return toolResult(map[string]any{
		"items": viewmodel.BuildUpgrades(s.mgr.Engine(), snap.Progress),
	}), nil
}
