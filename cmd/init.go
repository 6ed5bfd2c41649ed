package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/personabot-ai/personabot/internal/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactive setup wizard",
		Long: "Guides you through setting up personabot: choose a provider, name your\n" +
			"persona, and scaffold the config, data and .env files.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit()
		},
	}
}

const envTemplate = `# personabot environment
# The LLM key for your configured provider:
OPENAI_API_KEY=
# ANTHROPIC_API_KEY=

# Pushover notification credentials (leave empty to disable push delivery):
PUSHOVER_TOKEN=
PUSHOVER_USER=
PUSHOVER_URL=https://api.pushover.net/1/messages.json
`

const summaryTemplate = `Replace this file with a short plain-text summary of your background:
what you do, where you have worked, and what you want site visitors to know.
`

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Welcome to personabot setup!")
	fmt.Println()

	// Provider selection
	providers := []string{
		"openai", "anthropic", "deepseek", "minimax",
		"kimi", "qwen", "glm", "doubao", "groq",
	}
	fmt.Println("Available providers:")
	for i, p := range providers {
		fmt.Printf("  %d. %s\n", i+1, p)
	}
	fmt.Print("\nSelect provider (1-9) [1]: ")
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)

	selectedIdx := 0
	if input != "" {
		n := 0
		for _, c := range input {
			if c >= '0' && c <= '9' {
				n = n*10 + int(c-'0')
			}
		}
		if n >= 1 && n <= len(providers) {
			selectedIdx = n - 1
		}
	}
	providerName := providers[selectedIdx]
	fmt.Printf("Selected: %s\n\n", providerName)

	// Persona name
	fmt.Print("Full name the chatbot answers as: ")
	personaName, _ := reader.ReadString('\n')
	personaName = strings.TrimSpace(personaName)
	if personaName == "" {
		return fmt.Errorf("persona name cannot be empty")
	}

	// Build config YAML
	configData := map[string]any{
		"provider": providerName,
		"persona": map[string]any{
			"name":         personaName,
			"summary_path": filepath.Join("data", "summary.txt"),
			"resume_path":  filepath.Join("data", "resume.pdf"),
		},
	}

	data, err := yaml.Marshal(configData)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// Scaffold, never overwriting what already exists.
	if err := os.MkdirAll("data", 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	wrote := false
	for _, f := range []struct {
		path    string
		content []byte
		mode    os.FileMode
	}{
		{"personabot.yaml", data, 0600},
		{".env", []byte(envTemplate), 0600},
		{filepath.Join("data", "summary.txt"), []byte(summaryTemplate), 0644},
	} {
		if _, err := os.Stat(f.path); err == nil {
			fmt.Printf("  %s already exists, skipping\n", f.path)
			continue
		}
		if err := os.WriteFile(f.path, f.content, f.mode); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
		fmt.Printf("  wrote %s\n", f.path)
		wrote = true
	}
	if !wrote {
		fmt.Println("\nNothing to do.")
		return nil
	}

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Put your API key in .env (and Pushover credentials if you use them)\n")
	fmt.Printf("  2. Replace %s with your background summary\n", filepath.Join("data", "summary.txt"))
	fmt.Printf("  3. Copy your resume PDF to %s\n", config.DefaultConfig().Persona.ResumePath)
	fmt.Println("  4. Run: personabot")
	return nil
}
