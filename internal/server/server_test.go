package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/google/uuid"

	"github.com/personabot-ai/personabot/internal/config"
	"github.com/personabot-ai/personabot/internal/provider"
	"github.com/personabot-ai/personabot/internal/session"
)

// fakeChat answers every turn with a fixed reply, or fails with err.
type fakeChat struct {
	reply       string
	err         error
	calls       int
	lastMessage string
	lastHistory []provider.Message
}

func (f *fakeChat) ChatTurn(ctx context.Context, history []provider.Message, userMessage string) (string, []provider.Message, error) {
	f.calls++
	f.lastMessage = userMessage
	f.lastHistory = history
	if f.err != nil {
		return "", history, f.err
	}
	messages := append(append([]provider.Message{}, history...), provider.UserMessage(userMessage))
	messages = append(messages, provider.AssistantMessage(f.reply, nil))
	return f.reply, messages, nil
}

func (f *fakeChat) Model() string { return "gpt-4o-mini" }

func newTestServer(t *testing.T, chat ChatService) (*Server, session.Store) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.Listen = "127.0.0.1:0"
	store := session.NewMemoryStore()
	srv, err := New(cfg, chat, store, log.New(io.Discard))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return srv, store
}

func doRequest(t *testing.T, srv *Server, method, url string, payload any, headers ...ut.Header) *protocol.Response {
	t.Helper()
	var body *ut.Body
	if payload != nil {
		var b []byte
		switch p := payload.(type) {
		case string:
			b = []byte(p)
		default:
			var err error
			b, err = json.Marshal(payload)
			if err != nil {
				t.Fatalf("marshal request: %v", err)
			}
		}
		body = &ut.Body{Body: bytes.NewReader(b), Len: len(b)}
		headers = append(headers, ut.Header{Key: "Content-Type", Value: "application/json"})
	}
	w := ut.PerformRequest(srv.h.Engine, method, url, body, headers...)
	return w.Result()
}

func decodeEnvelope(t *testing.T, resp *protocol.Response) Response {
	t.Helper()
	var env Response
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, resp.Body())
	}
	return env
}

func dataField(t *testing.T, env Response, key string) any {
	t.Helper()
	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("envelope data is %T, want object", env.Data)
	}
	return data[key]
}

// --- route tests ---

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &fakeChat{reply: "hi"})

	resp := doRequest(t, srv, "GET", "/healthz", nil)
	if resp.StatusCode() != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode())
	}
	if !strings.Contains(string(resp.Body()), `"ok"`) {
		t.Errorf("body = %s, want status ok", resp.Body())
	}
}

func TestIndexPage(t *testing.T) {
	srv, _ := newTestServer(t, &fakeChat{reply: "hi"})

	resp := doRequest(t, srv, "GET", "/", nil)
	if resp.StatusCode() != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode())
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	page := string(resp.Body())
	if !strings.Contains(page, "/api/chat") {
		t.Errorf("page does not reference the chat endpoint")
	}
}

// --- chat endpoint tests ---

func TestChat_NewSession(t *testing.T) {
	chat := &fakeChat{reply: "Hello, nice to meet you."}
	srv, store := newTestServer(t, chat)

	resp := doRequest(t, srv, "POST", "/api/chat", map[string]any{"message": "hello"})
	if resp.StatusCode() != 200 {
		t.Fatalf("status = %d, want 200 (body: %s)", resp.StatusCode(), resp.Body())
	}

	env := decodeEnvelope(t, resp)
	if env.Code != "SUCCESS" {
		t.Errorf("code = %q, want SUCCESS", env.Code)
	}
	reply, _ := dataField(t, env, "reply").(string)
	if reply != chat.reply {
		t.Errorf("reply = %q, want %q", reply, chat.reply)
	}
	sid, _ := dataField(t, env, "session_id").(string)
	if _, err := uuid.Parse(sid); err != nil {
		t.Fatalf("session_id %q is not a uuid: %v", sid, err)
	}

	if len(chat.lastHistory) != 0 {
		t.Errorf("new session passed %d history messages, want 0", len(chat.lastHistory))
	}
	if chat.lastMessage != "hello" {
		t.Errorf("user message = %q, want %q", chat.lastMessage, "hello")
	}

	saved, err := store.Load(context.Background(), sid)
	if err != nil {
		t.Fatalf("session was not saved: %v", err)
	}
	if len(saved.Messages) != 2 {
		t.Errorf("saved %d messages, want 2", len(saved.Messages))
	}
}

func TestChat_ExistingSession(t *testing.T) {
	chat := &fakeChat{reply: "And two more."}
	srv, store := newTestServer(t, chat)

	sess := session.New("openai", "gpt-4o-mini")
	sess.Messages = []provider.Message{
		provider.UserMessage("first"),
		provider.AssistantMessage("First answer.", nil),
	}
	if err := store.Save(context.Background(), sess); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	resp := doRequest(t, srv, "POST", "/api/chat", map[string]any{
		"session_id": sess.ID,
		"message":    "second",
	})
	if resp.StatusCode() != 200 {
		t.Fatalf("status = %d, want 200 (body: %s)", resp.StatusCode(), resp.Body())
	}

	env := decodeEnvelope(t, resp)
	if sid, _ := dataField(t, env, "session_id").(string); sid != sess.ID {
		t.Errorf("session_id = %q, want %q", sid, sess.ID)
	}
	if len(chat.lastHistory) != 2 {
		t.Errorf("passed %d history messages, want 2", len(chat.lastHistory))
	}

	saved, err := store.Load(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if len(saved.Messages) != 4 {
		t.Errorf("saved %d messages, want 4", len(saved.Messages))
	}
}

func TestChat_Validation(t *testing.T) {
	tests := []struct {
		name    string
		payload any
	}{
		{"empty message", map[string]any{"message": ""}},
		{"whitespace message", map[string]any{"message": "   \n\t"}},
		{"oversized message", map[string]any{"message": strings.Repeat("a", maxMessageBytes+1)}},
		{"malformed session id", map[string]any{"session_id": "not-a-uuid", "message": "hi"}},
		{"malformed body", `{"message": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &fakeChat{reply: "unused"}
			srv, _ := newTestServer(t, chat)

			resp := doRequest(t, srv, "POST", "/api/chat", tt.payload)
			if resp.StatusCode() != 400 {
				t.Fatalf("status = %d, want 400 (body: %s)", resp.StatusCode(), resp.Body())
			}
			if env := decodeEnvelope(t, resp); env.Code != "INVALID_INPUT" {
				t.Errorf("code = %q, want INVALID_INPUT", env.Code)
			}
			if chat.calls != 0 {
				t.Errorf("chat service was called %d times for an invalid request", chat.calls)
			}
		})
	}
}

func TestChat_MessageAtLimitAccepted(t *testing.T) {
	srv, _ := newTestServer(t, &fakeChat{reply: "ok"})

	resp := doRequest(t, srv, "POST", "/api/chat", map[string]any{
		"message": strings.Repeat("a", maxMessageBytes),
	})
	if resp.StatusCode() != 200 {
		t.Fatalf("status = %d, want 200 (body: %s)", resp.StatusCode(), resp.Body())
	}
}

func TestChat_UnknownSession(t *testing.T) {
	srv, _ := newTestServer(t, &fakeChat{reply: "unused"})

	resp := doRequest(t, srv, "POST", "/api/chat", map[string]any{
		"session_id": uuid.NewString(),
		"message":    "hi",
	})
	if resp.StatusCode() != 404 {
		t.Fatalf("status = %d, want 404 (body: %s)", resp.StatusCode(), resp.Body())
	}
	if env := decodeEnvelope(t, resp); env.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", env.Code)
	}
}

func TestChat_ModelFailure(t *testing.T) {
	chat := &fakeChat{err: errors.New("api error 529: overloaded")}
	srv, store := newTestServer(t, chat)

	resp := doRequest(t, srv, "POST", "/api/chat", map[string]any{"message": "hi"})
	if resp.StatusCode() != 502 {
		t.Fatalf("status = %d, want 502 (body: %s)", resp.StatusCode(), resp.Body())
	}
	env := decodeEnvelope(t, resp)
	if env.Code != "UPSTREAM_UNAVAILABLE" {
		t.Errorf("code = %q, want UPSTREAM_UNAVAILABLE", env.Code)
	}
	if strings.Contains(env.Message, "529") {
		t.Errorf("message %q leaks upstream detail", env.Message)
	}

	infos, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("failed turn persisted %d sessions, want 0", len(infos))
	}
}

// --- session endpoint tests ---

func TestSessions_ListGetDelete(t *testing.T) {
	srv, store := newTestServer(t, &fakeChat{reply: "hi"})

	first := session.New("openai", "gpt-4o-mini")
	first.Messages = []provider.Message{provider.UserMessage("hello")}
	second := session.New("openai", "gpt-4o-mini")
	for _, sess := range []*session.Session{first, second} {
		if err := store.Save(context.Background(), sess); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}

	resp := doRequest(t, srv, "GET", "/api/sessions", nil)
	if resp.StatusCode() != 200 {
		t.Fatalf("list status = %d, want 200", resp.StatusCode())
	}
	env := decodeEnvelope(t, resp)
	if count, _ := dataField(t, env, "totalCount").(float64); int(count) != 2 {
		t.Errorf("totalCount = %v, want 2", dataField(t, env, "totalCount"))
	}

	resp = doRequest(t, srv, "GET", "/api/sessions/"+first.ID, nil)
	if resp.StatusCode() != 200 {
		t.Fatalf("get status = %d, want 200 (body: %s)", resp.StatusCode(), resp.Body())
	}
	env = decodeEnvelope(t, resp)
	if id, _ := dataField(t, env, "id").(string); id != first.ID {
		t.Errorf("transcript id = %q, want %q", id, first.ID)
	}

	resp = doRequest(t, srv, "DELETE", "/api/sessions/"+first.ID, nil)
	if resp.StatusCode() != 204 {
		t.Fatalf("delete status = %d, want 204 (body: %s)", resp.StatusCode(), resp.Body())
	}

	resp = doRequest(t, srv, "GET", "/api/sessions/"+first.ID, nil)
	if resp.StatusCode() != 404 {
		t.Errorf("get after delete status = %d, want 404", resp.StatusCode())
	}
}

func TestSessions_InvalidAndMissingIDs(t *testing.T) {
	srv, _ := newTestServer(t, &fakeChat{reply: "hi"})

	resp := doRequest(t, srv, "GET", "/api/sessions/not-a-uuid", nil)
	if resp.StatusCode() != 400 {
		t.Errorf("get invalid id status = %d, want 400", resp.StatusCode())
	}

	resp = doRequest(t, srv, "DELETE", "/api/sessions/not-a-uuid", nil)
	if resp.StatusCode() != 400 {
		t.Errorf("delete invalid id status = %d, want 400", resp.StatusCode())
	}

	resp = doRequest(t, srv, "DELETE", "/api/sessions/"+uuid.NewString(), nil)
	if resp.StatusCode() != 404 {
		t.Errorf("delete missing id status = %d, want 404", resp.StatusCode())
	}
}

// --- middleware tests ---

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, &fakeChat{reply: "hi"})

	resp := doRequest(t, srv, "OPTIONS", "/api/chat", nil)
	if resp.StatusCode() != 204 {
		t.Fatalf("status = %d, want 204", resp.StatusCode())
	}
	if origin := resp.Header.Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", origin)
	}
}

func TestRequestIDAssignedAndEchoed(t *testing.T) {
	srv, _ := newTestServer(t, &fakeChat{reply: "hi"})

	resp := doRequest(t, srv, "GET", "/healthz", nil)
	if id := resp.Header.Get(RequestIDHeader); id == "" {
		t.Error("response is missing a generated request id")
	}

	resp = doRequest(t, srv, "GET", "/healthz", nil, ut.Header{Key: RequestIDHeader, Value: "trace-me"})
	if id := resp.Header.Get(RequestIDHeader); id != "trace-me" {
		t.Errorf("request id = %q, want the caller-supplied trace-me", id)
	}
}

// --- address resolution tests ---

func TestResolveAddr(t *testing.T) {
	addr, err := resolveAddr("127.0.0.1:0")
	if err != nil {
		t.Fatalf("resolveAddr: %v", err)
	}
	if strings.HasSuffix(addr, ":0") {
		t.Errorf("addr = %q, port was not resolved", addr)
	}
	if !strings.HasPrefix(addr, "127.0.0.1:") {
		t.Errorf("addr = %q, host changed during resolution", addr)
	}

	addr, err = resolveAddr("127.0.0.1:8321")
	if err != nil {
		t.Fatalf("resolveAddr fixed port: %v", err)
	}
	if addr != "127.0.0.1:8321" {
		t.Errorf("fixed port addr = %q, want passthrough", addr)
	}

	if _, err := resolveAddr("no-port"); err == nil {
		t.Error("resolveAddr accepted an address without a port")
	}
}
