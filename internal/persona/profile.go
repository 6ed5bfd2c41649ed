// Package persona loads the identity the chatbot presents: the
// persona's name, a short background summary and the bio text pulled
// from the resume PDF.
package persona

import (
	"fmt"
	"os"

	"github.com/personabot-ai/personabot/internal/config"
)

// TextExtractor pulls plain text out of a document on disk.
type TextExtractor interface {
	ExtractText(path string) (string, error)
}

// Profile holds the persona data embedded in the system prompt.
// Loaded once at startup and never mutated afterwards.
type Profile struct {
	Name    string
	Summary string
	Bio     string
}

// LoadProfile reads the summary file and extracts the resume text.
// Both files are required; their contents are kept byte for byte.
func LoadProfile(cfg config.PersonaConfig, extractor TextExtractor) (*Profile, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("persona name is required")
	}
	summary, err := os.ReadFile(cfg.SummaryPath)
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}
	bio, err := extractor.ExtractText(cfg.ResumePath)
	if err != nil {
		return nil, fmt.Errorf("extract resume text: %w", err)
	}
	return &Profile{
		Name:    cfg.Name,
		Summary: string(summary),
		Bio:     bio,
	}, nil
}

// SystemPrompt renders the instruction block the model receives on
// every turn. Name, summary and bio are embedded verbatim.
func (p *Profile) SystemPrompt() string {
	return fmt.Sprintf("You are acting as %[1]s. You are answering questions on %[1]s's website, "+
		"particularly questions related to %[1]s's career, background, skills and experience. "+
		"Your responsibility is to represent %[1]s for interactions on the website as faithfully as possible. "+
		"You are given a summary of %[1]s's background and bio profile which you can use to answer questions. "+
		"Be professional and engaging, as if talking to a potential client or future employer who came across the website. "+
		"If you don't know the answer to any question, use your record_unknown_question tool to record the question that you couldn't answer, even if it's about something trivial or unrelated to career. "+
		"If the user is engaging in discussion, try to steer them towards getting in touch via email; ask for their email and record it using your record_user_details tool. "+
		"\n\n## Summary:\n%[2]s\n\n## bio Profile:\n%[3]s\n\n"+
		"With this context, please chat with the user, always staying in character as %[1]s.",
		p.Name, p.Summary, p.Bio)
}
