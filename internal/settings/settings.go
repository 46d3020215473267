// Package settings holds the answering-provider settings record stored by
// the backend, and the commands that load and save it.
package settings

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/wilbur182/docchat/internal/api"
	"github.com/wilbur182/docchat/internal/notify"
)

// DefaultPrompt is the answer template used when none is stored.
const DefaultPrompt = "Given the following context:\n\n{{context}}\n\nAnswer the question: {{query}}"

// Settings is the backend's provider configuration record.
type Settings struct {
	LLMProvider     string `json:"llm_provider"`
	OpenAIAPIKey    string `json:"openai_api_key"`
	OpenAIModel     string `json:"openai_model"`
	ClaudeAPIKey    string `json:"claude_api_key"`
	ClaudeModel     string `json:"claude_model"`
	GeminiAPIKey    string `json:"gemini_api_key"`
	GeminiModel     string `json:"gemini_model"`
	OllamaEndpoint  string `json:"ollama_endpoint"`
	OllamaModel     string `json:"ollama_model"`
	CustomLLMPrompt string `json:"custom_llm_prompt"`
}

// Defaults returns the record shown before anything has been stored.
func Defaults() Settings {
	return Settings{
		LLMProvider:     "openai",
		OpenAIModel:     "gpt-3.5-turbo",
		ClaudeModel:     "claude-3-sonnet-20240229",
		GeminiModel:     "gemini-pro",
		OllamaEndpoint:  "http://localhost:11434",
		OllamaModel:     "llama2",
		CustomLLMPrompt: DefaultPrompt,
	}
}

// Field is one editable key of the record.
type Field struct {
	Key    string
	Label  string
	Secret bool
}

// Fields lists the editable keys in form order.
var Fields = []Field{
	{Key: "llm_provider", Label: "Provider"},
	{Key: "openai_api_key", Label: "OpenAI API key", Secret: true},
	{Key: "openai_model", Label: "OpenAI model"},
	{Key: "claude_api_key", Label: "Claude API key", Secret: true},
	{Key: "claude_model", Label: "Claude model"},
	{Key: "gemini_api_key", Label: "Gemini API key", Secret: true},
	{Key: "gemini_model", Label: "Gemini model"},
	{Key: "ollama_endpoint", Label: "Ollama endpoint"},
	{Key: "ollama_model", Label: "Ollama model"},
	{Key: "custom_llm_prompt", Label: "Answer prompt"},
}

func (s *Settings) ref(key string) *string {
	switch key {
	case "llm_provider":
		return &s.LLMProvider
	case "openai_api_key":
		return &s.OpenAIAPIKey
	case "openai_model":
		return &s.OpenAIModel
	case "claude_api_key":
		return &s.ClaudeAPIKey
	case "claude_model":
		return &s.ClaudeModel
	case "gemini_api_key":
		return &s.GeminiAPIKey
	case "gemini_model":
		return &s.GeminiModel
	case "ollama_endpoint":
		return &s.OllamaEndpoint
	case "ollama_model":
		return &s.OllamaModel
	case "custom_llm_prompt":
		return &s.CustomLLMPrompt
	}
	return nil
}

// Get returns the value stored under key, or "" for unknown keys.
func (s Settings) Get(key string) string {
	if p := s.ref(key); p != nil {
		return *p
	}
	return ""
}

// Set stores value under key. Unknown keys are ignored.
func (s *Settings) Set(key, value string) {
	if p := s.ref(key); p != nil {
		*p = value
	}
}

// Model returns the model configured for the active provider.
func (s Settings) Model() string {
	p, ok := LookupProvider(s.LLMProvider)
	if !ok {
		return ""
	}
	return s.Get(p.ModelField)
}

var placeholders = regexp.MustCompile(`\{\{(context|query)\}\}`)

func containsPlaceholders(value any) error {
	v, _ := value.(string)
	found := map[string]bool{}
	for _, m := range placeholders.FindAllStringSubmatch(v, -1) {
		found[m[1]] = true
	}
	if !found["query"] || !found["context"] {
		return validation.NewError("validation_prompt_placeholders", "must contain {{context}} and {{query}}")
	}
	return nil
}

// Validate checks the record before it is sent.
func (s Settings) Validate() error {
	providers := make([]any, 0, len(builtinProviders))
	for _, id := range ProviderIDs() {
		providers = append(providers, id)
	}
	return validation.ValidateStruct(&s,
		validation.Field(&s.LLMProvider, validation.Required, validation.In(providers...)),
		validation.Field(&s.OllamaEndpoint, validation.Required.When(s.LLMProvider == "ollama"), is.URL),
		validation.Field(&s.CustomLLMPrompt, validation.Required, validation.By(containsPlaceholders)),
	)
}

// merge overlays a decoded record onto the defaults.
func merge(stored Settings) Settings {
	out := Defaults()
	for _, f := range Fields {
		if v := stored.Get(f.Key); v != "" {
			out.Set(f.Key, v)
		}
	}
	if strings.TrimSpace(out.CustomLLMPrompt) == "" {
		out.CustomLLMPrompt = DefaultPrompt
	}
	return out
}

// Backend is the part of the API client the store uses.
type Backend interface {
	GetSettings(ctx context.Context, out any) error
	SaveSettings(ctx context.Context, settings any) error
}

// LoadedMsg carries the stored record.
type LoadedMsg struct {
	Settings Settings
	Err      error
}

// SavedMsg reports the outcome of a save.
type SavedMsg struct {
	Settings Settings
	Err      error
}

// Store keeps the last loaded record and a draft being edited.
type Store struct {
	backend  Backend
	notifier notify.Notifier
	current  Settings
	draft    Settings
	loaded   bool
	saving   bool
}

// NewStore creates a store holding the defaults until Load completes.
func NewStore(b Backend, n notify.Notifier) *Store {
	d := Defaults()
	return &Store{backend: b, notifier: n, current: d, draft: d}
}

func (s *Store) Current() Settings { return s.current }
func (s *Store) Draft() Settings   { return s.draft }
func (s *Store) Loaded() bool      { return s.loaded }
func (s *Store) Saving() bool      { return s.saving }
func (s *Store) Dirty() bool       { return s.draft != s.current }

// SetDraft replaces the record being edited.
func (s *Store) SetDraft(d Settings) { s.draft = d }

// Revert discards unsaved edits.
func (s *Store) Revert() { s.draft = s.current }

// Load fetches the stored record.
func (s *Store) Load() tea.Cmd {
	b := s.backend
	return func() tea.Msg {
		var stored Settings
		err := b.GetSettings(context.Background(), &stored)
		return LoadedMsg{Settings: merge(stored), Err: err}
	}
}

// Save validates the draft and sends it.
func (s *Store) Save() tea.Cmd {
	if s.saving {
		return nil
	}
	d := s.draft
	if err := d.Validate(); err != nil {
		return s.notifier.Notify(err.Error(), notify.Error)
	}
	s.saving = true
	b := s.backend
	return func() tea.Msg {
		return SavedMsg{Settings: d, Err: b.SaveSettings(context.Background(), d)}
	}
}

// Update applies load and save results.
func (s *Store) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Err != nil {
			slog.Warn("load settings", "err", msg.Err)
			return s.notifier.Notify("Failed to load settings", notify.Error)
		}
		s.current = msg.Settings
		s.draft = msg.Settings
		s.loaded = true

	case SavedMsg:
		s.saving = false
		if msg.Err != nil {
			text := api.Message(msg.Err)
			if text == "" {
				text = "Failed to save settings"
			}
			return s.notifier.Notify(text, notify.Error)
		}
		s.current = msg.Settings
		return s.notifier.Notify("Settings saved successfully!", notify.Success)
	}
	return nil
}
