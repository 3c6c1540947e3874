package mcpserver

import (
	"encoding/json"
	"errors"
	"fmt"

	apppublic "neon-tycoon/internal/app/public"
	"neon-tycoon/internal/game"

	"github.com/mark3labs/mcp-go/mcp"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

func mapDomainError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return toolError("internal_error", "unknown error")
	case errors.Is(err, apppublic.ErrInvalidRequest):
		return toolError("invalid_request", err.Error())
	case errors.Is(err, apppublic.ErrPlayerNotFound):
		return toolError("not_found", err.Error())
	case errors.Is(err, game.ErrInvalidBet):
		return toolError("invalid_bet", err.Error())
	case errors.Is(err, game.ErrInvalidAction):
		return toolError("invalid_action", err.Error())
	case errors.Is(err, game.ErrDeckEmpty):
		return toolError("deck_empty", err.Error())
	default:
		return toolError("internal_error", err.Error())
	}
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
