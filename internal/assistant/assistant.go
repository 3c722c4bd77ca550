// Package assistant answers questions about the part a user is studying.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"simvex/internal/common/metrics"
)

var ErrNotConfigured = errors.New("assistant not configured")

// WholeModel is the part label used when nothing is selected.
const WholeModel = "entire model"

const defaultSystemPrompt = `You are the assistant of SIMVEX, a 3D engineering study platform.
Explain the selected mechanical part: its engineering principle, material, and role in the assembly.
Be accurate but easy to follow. Answer in the language of the question, in about three sentences.`

// Question is one user question in the context of a part.
type Question struct {
	Part    string
	Related []string
	Text    string
}

// Assistant answers a single question. Calls are independent: no history,
// no retries.
type Assistant interface {
	Answer(ctx context.Context, q Question) (string, error)
}

// Prompt renders the user prompt sent to a model.
func (q Question) Prompt() string {
	part := strings.TrimSpace(q.Part)
	if part == "" {
		part = WholeModel
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Selected part: %s\n", part)
	if len(q.Related) > 0 {
		fmt.Fprintf(&b, "Also marked by the user: %s\n", strings.Join(q.Related, ", "))
	}
	fmt.Fprintf(&b, "Question: %s", q.Text)
	return b.String()
}

// ============================================================
// Factory
// ============================================================

type Config struct {
	Provider      string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiModel   string
	Timeout       time.Duration
	SystemPrompt  string
}

// New builds the configured provider wrapped with metrics and logging.
// A provider without credentials yields an assistant that always fails with
// ErrNotConfigured, so the rest of the service still starts.
func New(ctx context.Context, cfg Config, log *zap.Logger) (Assistant, error) {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	if log == nil {
		log = zap.NewNop()
	}
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = "openai"
	}

	var (
		inner Assistant
		err   error
	)
	switch provider {
	case "openai":
		if cfg.OpenAIKey == "" {
			inner = unconfigured{}
			break
		}
		inner = NewOpenAIClient(OpenAIConfig{
			APIKey:       cfg.OpenAIKey,
			BaseURL:      cfg.OpenAIBaseURL,
			Model:        cfg.OpenAIModel,
			Timeout:      cfg.Timeout,
			SystemPrompt: cfg.SystemPrompt,
		})
	case "gemini":
		if cfg.GeminiKey == "" {
			inner = unconfigured{}
			break
		}
		inner, err = NewGeminiClient(ctx, GeminiConfig{
			APIKey:       cfg.GeminiKey,
			Model:        cfg.GeminiModel,
			SystemPrompt: cfg.SystemPrompt,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown assistant provider %q", cfg.Provider)
	}

	return &instrumented{inner: inner, provider: provider, log: log}, nil
}

type unconfigured struct{}

func (unconfigured) Answer(context.Context, Question) (string, error) {
	return "", ErrNotConfigured
}

type instrumented struct {
	inner    Assistant
	provider string
	log      *zap.Logger
}

func (a *instrumented) Answer(ctx context.Context, q Question) (string, error) {
	start := time.Now()
	answer, err := a.inner.Answer(ctx, q)
	metrics.RecordAssistant(a.provider, start, err)
	if err != nil {
		a.log.Warn("assistant request failed",
			zap.String("provider", a.provider),
			zap.String("part", q.Part),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", err
	}
	a.log.Debug("assistant answered",
		zap.String("provider", a.provider),
		zap.String("part", q.Part),
		zap.Int("answer_len", len(answer)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return answer, nil
}
