package narrative

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/dungeon/internal/config"
)

// NewProvider builds the Provider selected by cfg. The offline provider is
// represented by a nil Provider. The returned cleanup is never nil.
//
// Precondition: cfg has passed config validation.
func NewProvider(ctx context.Context, cfg config.NarratorConfig) (Provider, func(), error) {
	noop := func() {}
	switch cfg.Provider {
	case config.ProviderOffline:
		return nil, noop, nil
	case config.ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), noop, nil
	case config.ProviderGemini:
		p, err := NewGeminiProvider(ctx, cfg.APIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens)
		if err != nil {
			return nil, noop, err
		}
		return p, func() { _ = p.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown narrator provider %q", cfg.Provider)
	}
}
