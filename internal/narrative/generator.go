package narrative

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/cory-johannsen/dungeon/internal/narrative"

// Provider completes a rendered Prompt into raw model output.
type Provider interface {
	// Name identifies the provider in logs and spans.
	Name() string
	// Complete returns the model's reply to p.
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Generator produces story continuations.
type Generator struct {
	provider Provider
	prompts  *PromptBuilder
	timeout  time.Duration
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewGenerator creates a Generator. A nil provider runs offline: every turn
// is served by LocalFallback.
//
// Precondition: logger must be non-nil. timeout <= 0 disables the per-call deadline.
// Postcondition: returns a ready Generator or a non-nil error.
func NewGenerator(provider Provider, timeout time.Duration, logger *zap.Logger) (*Generator, error) {
	prompts, err := NewPromptBuilder()
	if err != nil {
		return nil, err
	}
	return &Generator{
		provider: provider,
		prompts:  prompts,
		timeout:  timeout,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}, nil
}

// WithTracerProvider replaces the global tracer provider. Used by tests.
func (g *Generator) WithTracerProvider(tp trace.TracerProvider) *Generator {
	g.tracer = tp.Tracer(tracerName)
	return g
}

// ProviderName returns the configured provider's name, or "offline".
func (g *Generator) ProviderName() string {
	if g.provider == nil {
		return "offline"
	}
	return g.provider.Name()
}

// Generate produces the continuation for req.
//
// A rejected request returns a *validation.Error and a zero Response. A
// provider failure returns LocalFallback(req) together with an error
// wrapping ErrProvider, so callers that tolerate degraded play can still
// use the Response.
func (g *Generator) Generate(ctx context.Context, req Request) (Response, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return Response{}, err
	}

	ctx, span := g.tracer.Start(ctx, "narrative.Generate", trace.WithAttributes(
		attribute.String("narrative.provider", g.ProviderName()),
		attribute.String("narrative.genre", req.Genre),
	))
	defer span.End()

	if g.provider == nil {
		return LocalFallback(req), nil
	}

	resp, err := g.complete(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider failed")
		g.logger.Warn("narrative provider failed, using local fallback",
			zap.String("provider", g.provider.Name()),
			zap.Error(err),
		)
		return LocalFallback(req), fmt.Errorf("%w: %s: %w", ErrProvider, g.provider.Name(), err)
	}

	span.SetAttributes(
		attribute.Bool("narrative.enemy", resp.Enemy != nil),
		attribute.Int("narrative.items", len(resp.Items)),
	)
	g.logger.Info("story generated",
		zap.String("provider", g.provider.Name()),
		zap.String("genre", req.Genre),
		zap.Bool("enemy", resp.Enemy != nil),
		zap.Int("items", len(resp.Items)),
	)
	return resp, nil
}

func (g *Generator) complete(ctx context.Context, req Request) (Response, error) {
	prompt, err := g.prompts.Build(req)
	if err != nil {
		return Response{}, err
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	raw, err := g.provider.Complete(ctx, prompt)
	if err != nil {
		return Response{}, err
	}
	resp, err := Parse(raw)
	if err != nil {
		g.logger.Debug("unparseable provider payload", zap.String("raw", raw))
		return Response{}, err
	}
	return resp, nil
}
