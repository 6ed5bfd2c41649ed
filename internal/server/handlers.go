package server

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"

	"github.com/personabot-ai/personabot/internal/domain"
	"github.com/personabot-ai/personabot/internal/session"
)

//go:embed static/index.html
var indexHTML []byte

// maxMessageBytes caps a single chat message.
const maxMessageBytes = 8 << 10

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatReply struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

func validateChatRequest(req *chatRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return domain.NewInvalidInputError("message must not be empty")
	}
	if len(req.Message) > maxMessageBytes {
		return domain.NewInvalidInputError(fmt.Sprintf("message exceeds %d bytes", maxMessageBytes))
	}
	if req.SessionID != "" {
		if _, err := uuid.Parse(req.SessionID); err != nil {
			return domain.NewInvalidInputError("session_id must be a valid uuid")
		}
	}
	return nil
}

// handleIndex serves the embedded chat page.
func (s *Server) handleIndex(ctx context.Context, c *app.RequestContext) {
	c.Data(consts.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) handleHealthz(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "ok"})
}

// handleChat runs one chat turn: load or create the session, call the
// model, persist the grown transcript, answer with the assistant reply.
func (s *Server) handleChat(ctx context.Context, c *app.RequestContext) {
	var req chatRequest
	if err := c.BindJSON(&req); err != nil {
		s.logger.Warn("malformed chat request", "err", err)
		ErrorResponse(c, domain.NewInvalidInputError("request body must be valid JSON"))
		return
	}
	if err := validateChatRequest(&req); err != nil {
		ErrorResponse(c, err)
		return
	}

	sess, err := s.loadOrCreateSession(ctx, req.SessionID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	turnCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, messages, err := s.chat.ChatTurn(turnCtx, sess.Messages, req.Message)
	if err != nil {
		s.logger.Error("chat turn failed", "session", sess.ID, "err", err)
		ErrorResponse(c, domain.NewUnavailableError("the model request failed", err))
		return
	}

	sess.Messages = messages
	if err := s.store.Save(ctx, sess); err != nil {
		s.logger.Error("session save failed", "session", sess.ID, "err", err)
		ErrorResponse(c, domain.NewInternalError(err))
		return
	}

	SuccessResponse(c, chatReply{SessionID: sess.ID, Reply: reply})
}

func (s *Server) loadOrCreateSession(ctx context.Context, id string) (*session.Session, error) {
	if id == "" {
		sess := session.New(s.cfg.Provider, s.chat.Model())
		s.logger.Info("new chat session", "session", sess.ID)
		return sess, nil
	}
	return s.store.Load(ctx, id)
}

func (s *Server) handleListSessions(ctx context.Context, c *app.RequestContext) {
	infos, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("session list failed", "err", err)
		ErrorResponse(c, domain.NewInternalError(err))
		return
	}
	SuccessResponse(c, ListResponse{Items: infos, TotalCount: len(infos)})
}

func (s *Server) handleGetSession(ctx context.Context, c *app.RequestContext) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		ErrorResponse(c, domain.NewInvalidInputError("session id must be a valid uuid"))
		return
	}

	sess, err := s.store.Load(ctx, id)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, sess)
}

func (s *Server) handleDeleteSession(ctx context.Context, c *app.RequestContext) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		ErrorResponse(c, domain.NewInvalidInputError("session id must be a valid uuid"))
		return
	}

	if err := s.store.Delete(ctx, id); err != nil {
		ErrorResponse(c, err)
		return
	}
	s.logger.Info("session deleted", "session", id)
	NoContentResponse(c)
}
