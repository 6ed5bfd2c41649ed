// Package server exposes the persona chatbot over HTTP: an embedded
// single-page chat UI plus a JSON API for chat turns and session
// transcripts, built on the Hertz framework.
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/network/netpoll"

	"github.com/personabot-ai/personabot/internal/config"
	"github.com/personabot-ai/personabot/internal/logging"
	"github.com/personabot-ai/personabot/internal/provider"
	"github.com/personabot-ai/personabot/internal/session"
)

// ChatService runs one chat turn for the web API. Implemented by
// agent.Agent.
type ChatService interface {
	// ChatTurn answers userMessage given the prior transcript and returns
	// the reply plus the grown transcript.
	ChatTurn(ctx context.Context, history []provider.Message, userMessage string) (string, []provider.Message, error)

	// Model reports the model new sessions are tagged with.
	Model() string
}

// Server wraps a Hertz instance serving the chat UI and API.
type Server struct {
	cfg     *config.Config
	chat    ChatService
	store   session.Store
	logger  *log.Logger
	h       *server.Hertz
	addr    string
	timeout time.Duration
}

// New resolves the listen address and builds the configured server.
// A listen port of 0 is resolved to a free port here, before the Hertz
// instance is constructed, so Addr is final once New returns.
func New(cfg *config.Config, chat ChatService, store session.Store, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	addr, err := resolveAddr(cfg.Server.Listen)
	if err != nil {
		return nil, err
	}

	// Route Hertz's own logging through the shared logger.
	hlog.SetLogger(logging.NewHertzAdapter(logger))
	hlog.SetLevel(hlog.LevelWarn)

	h := server.New(
		server.WithHostPorts(addr),
		server.WithTransport(netpoll.NewTransporter),
		server.WithMaxRequestBodySize(cfg.Server.MaxBodyBytes),
	)

	s := &Server{
		cfg:     cfg,
		chat:    chat,
		store:   store,
		logger:  logger,
		h:       h,
		addr:    addr,
		timeout: time.Duration(cfg.Server.RequestTimeoutSec) * time.Second,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.h.Use(Recovery(s.logger))
	s.h.Use(RequestLogger(s.logger))
	s.h.Use(CORS())

	s.h.GET("/", s.handleIndex)
	s.h.GET("/healthz", s.handleHealthz)

	api := s.h.Group("/api")
	{
		api.POST("/chat", s.handleChat)

		sessions := api.Group("/sessions")
		{
			sessions.GET("", s.handleListSessions)
			sessions.GET("/:id", s.handleGetSession)
			sessions.DELETE("/:id", s.handleDeleteSession)
		}
	}
}

// Addr returns the resolved listen address.
func (s *Server) Addr() string { return s.addr }

// URL returns the browsable base URL.
func (s *Server) URL() string { return "http://" + s.addr }

// Run starts serving and blocks until Shutdown.
func (s *Server) Run() error {
	s.logger.Info("chat UI listening", "url", s.URL())
	return s.h.Run()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.h.Shutdown(ctx)
}

// resolveAddr turns a host:0 listen address into host:port with a real
// free port by briefly binding it. Non-zero ports pass through.
func resolveAddr(listen string) (string, error) {
	_, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "", fmt.Errorf("invalid listen address %q: %w", listen, err)
	}
	if port != "0" {
		return listen, nil
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return "", fmt.Errorf("resolve ephemeral port: %w", err)
	}
	addr := ln.Addr().String()
	if err := ln.Close(); err != nil {
		return "", fmt.Errorf("resolve ephemeral port: %w", err)
	}
	return addr, nil
}
