// Package session persists conversation transcripts keyed by session ID.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/personabot-ai/personabot/internal/provider"
)

// Session holds one conversation: the transcript plus the provider and
// model that produced it.
type Session struct {
	ID        string             `json:"id"`
	Provider  string             `json:"provider"`
	Model     string             `json:"model"`
	Messages  []provider.Message `json:"messages"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Info is the listing view of a session, without the transcript.
type Info struct {
	ID           string    `json:"id"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// New creates an empty session with a fresh ID.
func New(providerName, model string) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Provider:  providerName,
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
