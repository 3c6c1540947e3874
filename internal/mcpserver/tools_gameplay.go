package mcpserver

import (
	"context"
	"strings"

	"neon-tycoon/internal/format"
	"neon-tycoon/internal/game"
	"neon-tycoon/internal/game/viewmodel"
	"neon-tycoon/internal/session"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerGameplayTools() {
	s.mcpServer.AddTool(
		newAuthedTool("get_state", "Get the caller's company state, income and market"),
		s.handleGetState,
	)
	s.mcpServer.AddTool(
		newAuthedTool("click", "Work manually once for the current click value"),
		s.handleClick,
	)
	s.mcpServer.AddTool(
		newAuthedTool(
			"buy_upgrade",
			"Buy one unit of an upgrade",
			mcp.WithString("upgrade_id", mcp.Required(), mcp.Description("Upgrade id from list_upgrades")),
		),
		s.handleBuyUpgrade,
	)
	s.mcpServer.AddTool(
		newAuthedTool("rebirth", "Reset the run for a permanent income multiplier"),
		s.handleRebirth,
	)
	s.mcpServer.AddTool(
		newAuthedTool(
			"blackjack_deal",
			"Start a blackjack round",
			mcp.WithNumber("bet", mcp.Required(), mcp.Description("Stake, capped at current money")),
		),
		s.handleBlackjackDeal,
	)
	s.mcpServer.AddTool(
		newAuthedTool("blackjack_hit", "Draw a card in the current blackjack round"),
		s.handleBlackjackHit,
	)
	s.mcpServer.AddTool(
		newAuthedTool("blackjack_stand", "Stand and let the dealer play"),
		s.handleBlackjackStand,
	)
}

func (s *Server) state(snap session.Snapshot) viewmodel.PlayerStateView {
	return viewmodel.BuildPlayerState(s.mgr.Engine(), snap)
}

func (s *Server) handleGetState(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResp := s.authSession(request)
	if errResp != nil {
		return errResp, nil
	}
	return toolResult(s.state(sess.Snapshot())), nil
}

func (s *Server) handleClick(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResp := s.authSession(request)
	if errResp != nil {
		return errResp, nil
	}
	earned, snap := sess.Click()
	return toolResult(map[string]any{"earned": earned, "state": s.state(snap)}), nil
}

func (s *Server) handleBuyUpgrade(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResp := s.authSession(request)
	if errResp != nil {
		return errResp, nil
	}
	id := strings.TrimSpace(request.GetString("upgrade_id", ""))
	if id == "" {
		return toolError("invalid_request", "upgrade_id is required"), nil
	}
	applied, snap := sess.BuyUpgrade(ctx, id)
	return toolResult(map[string]any{"applied": applied, "state": s.state(snap)}), nil
}

func (s *Server) handleRebirth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResp := s.authSession(request)
	if errResp != nil {
		return errResp, nil
	}
	applied, snap := sess.Rebirth(ctx)
	return toolResult(map[string]any{"applied": applied, "state": s.state(snap)}), nil
}

func (s *Server) handleBlackjackDeal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResp := s.authSession(request)
	if errResp != nil {
		return errResp, nil
	}
	bet := request.GetFloat("bet", 0)
	return s.blackjackResult(sess, func() (game.Snapshot, error) { return sess.BlackjackDeal(ctx, bet) })
}

func (s *Server) handleBlackjackHit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResp := s.authSession(request)
	if errResp != nil {
		return errResp, nil
	}
	return s.blackjackResult(sess, func() (game.Snapshot, error) { return sess.BlackjackHit(ctx) })
}

func (s *Server) handleBlackjackStand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResp := s.authSession(request)
	if errResp != nil {
		return errResp, nil
	}
	return s.blackjackResult(sess, func() (game.Snapshot, error) { return sess.BlackjackStand(ctx) })
}

func (s *Server) blackjackResult(sess *session.Session, act func() (game.Snapshot, error)) (*mcp.CallToolResult, error) {
	round, err := act()
	if err != nil {
		return mapDomainError(err), nil
	}
	snap := sess.Snapshot()
	return toolResult(map[string]any{"round": round, "money": snap.Progress.Money, "money_text": format.Number(snap.Progress.Money)}), nil
}
