package curated

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "codeberg.org/askrouter/server/internal/errors"
	"codeberg.org/askrouter/server/internal/logger"
)

// produces the full curated set; every Initialize calls Load again
type Source interface {
	Load() ([]Entry, error)
}

// on-disk layout of one curated entry
type fileEntry struct {
	ID         string   `yaml:"id" json:"id"`
	Question   string   `yaml:"question" json:"question"`
	Variations []string `yaml:"variations" json:"variations"`
	Answer     string   `yaml:"answer" json:"answer"`
	Template   string   `yaml:"template" json:"template"`
	Kind       string   `yaml:"kind" json:"kind"`
}

// reads entries from a YAML or JSON file (by extension)
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// a missing file is an empty set; a malformed one is ErrData
func (s *FileSource) Load() ([]Entry, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("curated source not found, starting with no entries", "path", s.Path)
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read curated source %s: %w", s.Path, err)
	}

	var raw []fileEntry

	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".json":
		err = json.Unmarshal(data, &raw)
	default:
		err = yaml.Unmarshal(data, &raw)
	}

	if err != nil {
		return nil, fmt.Errorf("invalid curated source %s: %w: %w", s.Path, apperrors.ErrData, err)
	}

	return toEntries(raw)
}

func toEntries(raw []fileEntry) ([]Entry, error) {
	entries := make([]Entry, 0, len(raw))

	for i, r := range raw {
		if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.Question) == "" {
			return nil, fmt.Errorf("entry %d: id and question are required: %w", i, apperrors.ErrData)
		}

		entry := Entry{
			ID:         r.ID,
			Question:   r.Question,
			Variations: r.Variations,
			Kind:       KindFAQ,
		}

		if r.Kind != "" {
			entry.Kind = Kind(r.Kind)
		}

		switch {
		case r.Template == string(DeferredTimeGreeting):
			entry.Answer = Deferred(DeferredTimeGreeting)
		case r.Template != "":
			return nil, fmt.Errorf("entry %s: unknown answer template %q: %w", r.ID, r.Template, apperrors.ErrData)
		case r.Answer == "":
			return nil, fmt.Errorf("entry %s: answer is required: %w", r.ID, apperrors.ErrData)
		default:
			entry.Answer = Literal(r.Answer)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// generated conversational entries (greetings, thanks, goodbyes)
type GreetingSource struct{}

func (GreetingSource) Load() ([]Entry, error) {
	return []Entry{
		{
			ID:       "conversational-hello",
			Question: "hello",
			Variations: []string{
				"hi", "hey", "hi there", "hello there", "hey there",
				"good morning", "good afternoon", "good evening", "greetings",
			},
			Answer: Deferred(DeferredTimeGreeting),
			Kind:   KindConversational,
		},
		{
			ID:         "conversational-how-are-you",
			Question:   "how are you",
			Variations: []string{"how are you doing", "how's it going", "how do you do"},
			Answer:     Literal("I'm doing well, thanks for asking! How can I help you today?"),
			Kind:       KindConversational,
		},
		{
			ID:         "conversational-thanks",
			Question:   "thank you",
			Variations: []string{"thanks", "thanks a lot", "thank you so much", "cheers"},
			Answer:     Literal("You're welcome! Is there anything else I can help you with?"),
			Kind:       KindConversational,
		},
		{
			ID:         "conversational-goodbye",
			Question:   "goodbye",
			Variations: []string{"bye", "good bye", "see you", "see you later"},
			Answer:     Literal("Goodbye! Have a great day."),
			Kind:       KindConversational,
		},
	}, nil
}

// concatenates sources in order; the first failure aborts the load
type MultiSource []Source

func (m MultiSource) Load() ([]Entry, error) {
	var entries []Entry

	for _, source := range m {
		loaded, err := source.Load()
		if err != nil {
			return nil, err
		}

		entries = append(entries, loaded...)
	}

	return entries, nil
}

// a fixed entry list, mostly for tests
type StaticSource []Entry

func (s StaticSource) Load() ([]Entry, error) {
	return append([]Entry(nil), s...), nil
}
