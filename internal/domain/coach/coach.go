// Package coach produces training reports and advice text for a user.
//
// Advice comes from an Advisor (an LLM) when one is configured. Without an
// advisor, or when it fails, deterministic text is returned instead.
package coach

import (
	"context"
	"strings"
)

// Advice sources reported alongside the text.
const (
	SourceLLM         = "llm"
	SourceFallback    = "fallback"
	SourceSimulated   = "simulated"
	SourceUnavailable = "unavailable"
)

// Advisor generates free-form advice from a prompt.
type Advisor interface {
	Advise(ctx context.Context, system, prompt string) (string, error)
}

// Prompt is a system and user message pair.
type Prompt struct {
	System string
	User   string
}

// Coach builds advice with an optional Advisor.
type Coach struct {
	advisor Advisor
}

// Option configures a Coach.
type Option func(*Coach)

// WithAdvisor enables LLM advice. A nil advisor leaves the coach offline.
func WithAdvisor(a Advisor) Option {
	return func(c *Coach) {
		c.advisor = a
	}
}

// New creates a Coach.
func New(opts ...Option) *Coach {
	c := &Coach{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Online reports whether an advisor is configured.
func (c *Coach) Online() bool {
	return c.advisor != nil
}

// advise asks the advisor, falling back to onError or offline text.
func (c *Coach) advise(ctx context.Context, p Prompt, offline func() (string, string), onError func() (string, string)) (string, string, error) {
	if c.advisor == nil {
		text, src := offline()
		return text, src, nil
	}
	text, err := c.advisor.Advise(ctx, p.System, p.User)
	if err != nil {
		fb, src := onError()
		return fb, src, err
	}
	if strings.TrimSpace(text) == "" {
		text = "No advice generated."
	}
	return text, SourceLLM, nil
}

func humanize(slug string) string {
	return strings.ReplaceAll(slug, "-", " ")
}
