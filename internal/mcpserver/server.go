package mcpserver

import (
	"context"
	"net/http"
	"strings"

	apppublic "neon-tycoon/internal/app/public"
	"neon-tycoon/internal/session"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type Server struct {
	mgr       *session.Manager
	publicSvc *apppublic.Service

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(mgr *session.Manager, publicSvc *apppublic.Service) *Server {
	mcpSrv := server.NewMCPServer(
		"neon-tycoon",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		mgr:        mgr,
		publicSvc:  publicSvc,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerPublicTools()
	s.registerGameplayTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcp.NewResource(
			"market://current",
			"market_current",
			mcp.WithResourceDescription("Market event currently applied to every player"),
			mcp.WithMIMEType("application/json"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			payload, err := marshalJSON(s.publicSvc.Market())
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      request.Params.URI,
					MIMEType: "application/json",
					Text:     payload,
				},
			}, nil
		},
	)
}

// authSession resolves a live session from a login token and checks that it
// belongs to username.
func (s *Server) authSession(request mcp.CallToolRequest) (*session.Session, *mcp.CallToolResult) {
	username := strings.TrimSpace(request.GetString("username", ""))
	token := strings.TrimSpace(request.GetString("token", ""))
	if username == "" || token == "" {
		return nil, toolError("invalid_request", "username and token are required")
	}
	sess, err := s.mgr.Lookup(token)
	if err != nil {
		return nil, toolError("unauthorized", "invalid token")
	}
	if sess.Username() != username {
		return nil, toolError("unauthorized", "username does not match token")
	}
	return sess, nil
}
