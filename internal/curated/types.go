package curated

import (
	"fmt"
	"time"
)

// distinguishes hand-authored FAQ entries from generated conversational ones
// matching ignores it
type Kind string

const (
	KindFAQ            Kind = "faq"
	KindConversational Kind = "conversational"
)

// an answer computed at resolve time rather than stored as text
type DeferredKind string

const (
	// "Good morning/afternoon/evening! ..." from the server clock
	DeferredTimeGreeting DeferredKind = "time_greeting"
)

// either literal text or a deferred template, never both
type Answer struct {
	text     string
	deferred DeferredKind
}

func Literal(text string) Answer {
	return Answer{text: text}
}

func Deferred(kind DeferredKind) Answer {
	return Answer{deferred: kind}
}

func (a Answer) IsDeferred() bool {
	return a.deferred != ""
}

func (a Answer) Text() string {
	return a.text
}

// returns the answer text as of now
func (a Answer) Resolve(now time.Time) string {
	switch a.deferred {
	case "":
		return a.text
	case DeferredTimeGreeting:
		return timeGreeting(now)
	default:
		return a.text
	}
}

func (a Answer) String() string {
	if a.IsDeferred() {
		return fmt.Sprintf("<%s>", a.deferred)
	}

	return a.text
}

type Entry struct {
	ID         string
	Question   string
	Variations []string
	Answer     Answer
	Kind       Kind
}

// all phrasings that feed the exact index, canonical question first
func (e *Entry) Phrasings() []string {
	return append([]string{e.Question}, e.Variations...)
}

type Method string

const (
	MethodExact    Method = "exact"
	MethodSemantic Method = "semantic"
)

type Match struct {
	Entry  *Entry
	Answer string
	Method Method

	// nil for exact matches
	Confidence *float64
}

// what the last Initialize did
type Stats struct {
	Entries       int       `json:"entries"`
	ExactKeys     int       `json:"exact_keys"`
	Vectors       int       `json:"vectors"`
	CacheHits     int       `json:"cache_hits"`
	ProviderCalls int       `json:"provider_calls"`
	Skipped       int       `json:"skipped"`
	LoadedAt      time.Time `json:"loaded_at"`
}

func timeGreeting(now time.Time) string {
	hour := now.Hour()

	switch {
	case hour < 12:
		return "Good morning! How can I help you today?"
	case hour < 18:
		return "Good afternoon! How can I help you today?"
	default:
		return "Good evening! How can I help you today?"
	}
}
